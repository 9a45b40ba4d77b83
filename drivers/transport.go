package drivers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/monitor"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/ops"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/solver"
	"github.com/unicfd/uniflow/tensor"
)

// Transport is the scalar convection-diffusion driver: M = div(T,F,mu) -
// lap(T,mu) in the reference solver's notation, which is exactly
// ops.Convection(T,F,mu,ctl) here since ops.Lap already carries the sign a
// transport equation's implicit diffusion term needs. F is an externally
// supplied face flux field, not derived from a momentum solve the way
// PISO's is.
type Transport struct {
	Mesh *mesh.Mesh
	Ctl  *paramstore.Controls

	T   *field.Field[tensor.Scalar]
	F   *field.Field[tensor.Scalar]
	tBC *bcond.Registry[tensor.Scalar]

	tHist *ops.History[tensor.Scalar]

	Mu float64

	Network mp.MP
	Sink    monitor.Sink
}

func NewTransport(m *mesh.Mesh, ctl *paramstore.Controls, F *field.Field[tensor.Scalar], tBC *bcond.Registry[tensor.Scalar], network mp.MP) *Transport {
	T := field.NewCell[tensor.Scalar]("T", field.ReadWrite, m)
	return &Transport{
		Mesh: m, Ctl: ctl, T: T, F: F, tBC: tBC,
		tHist:   ops.NewHistory(T, 1),
		Mu:      ctl.Viscosity,
		Network: network,
	}
}

func (tr *Transport) Step(stepIndex int) error {
	m := tr.Mesh
	ctl := tr.Ctl
	steady := ctl.State == paramstore.Steady

	tr.T.UpdateExplicitBCs(tr.tBC, tr.Network, true, false)

	muf := field.NewFace[tensor.Scalar]("", field.None, m)
	muf.Fill(tensor.Scalar(tr.Mu))
	M := ops.Convection(tr.T, tr.F, muf, ctl)

	if !steady {
		blendCrankNicolson(M, tr.T, ctl.TimeSchemeFactor)
		M.AddInPlace(ops.Ddt(tr.T, 1, tr.tHist, ctl))
	}

	res, err := solver.Solve(tr.T, M, ctl, tr.Network)
	if err != nil {
		return fmt.Errorf("drivers: transport solve: %w", err)
	}
	if !res.Converged {
		logrus.WithField("field", "T").WithField("residual", res.Residual).WithField("iterations", res.Iterations).
			Warn("drivers: transport solve did not converge")
	}
	tr.T.UpdateExplicitBCs(tr.tBC, tr.Network, true, false)
	tr.tHist.Advance(tr.T)

	if tr.Sink != nil {
		tr.Sink.Push(monitor.Update{
			Step:      stepIndex,
			Time:      float64(stepIndex) * ctl.Dt,
			Residuals: map[string]float64{"T": res.Residual},
		})
	}
	return nil
}
