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

// Diffusion is the pure-conduction driver: -lap(T,mu) == 0, steady or
// blended against ddt(T) for a transient run. Grounded on the reference
// solver's diffusion() loop, which never builds a convection term at all.
type Diffusion struct {
	Mesh *mesh.Mesh
	Ctl  *paramstore.Controls

	T   *field.Field[tensor.Scalar]
	tBC *bcond.Registry[tensor.Scalar]

	tHist *ops.History[tensor.Scalar]

	Mu float64

	Network mp.MP
	Sink    monitor.Sink
}

func NewDiffusion(m *mesh.Mesh, ctl *paramstore.Controls, tBC *bcond.Registry[tensor.Scalar], network mp.MP) *Diffusion {
	T := field.NewCell[tensor.Scalar]("T", field.ReadWrite, m)
	return &Diffusion{
		Mesh: m, Ctl: ctl, T: T, tBC: tBC,
		tHist:   ops.NewHistory(T, 1),
		Mu:      ctl.Viscosity,
		Network: network,
	}
}

func (d *Diffusion) Step(stepIndex int) error {
	m := d.Mesh
	ctl := d.Ctl
	steady := ctl.State == paramstore.Steady

	d.T.UpdateExplicitBCs(d.tBC, d.Network, true, false)

	muf := field.NewFace[tensor.Scalar]("", field.None, m)
	muf.Fill(tensor.Scalar(d.Mu))
	M := ops.Lap(d.T, muf, ctl)

	if !steady {
		blendCrankNicolson(M, d.T, ctl.TimeSchemeFactor)
		M.AddInPlace(ops.Ddt(d.T, 1, d.tHist, ctl))
	}

	res, err := solver.Solve(d.T, M, ctl, d.Network)
	if err != nil {
		return fmt.Errorf("drivers: diffusion solve: %w", err)
	}
	if !res.Converged {
		logrus.WithField("field", "T").WithField("residual", res.Residual).WithField("iterations", res.Iterations).
			Warn("drivers: diffusion solve did not converge")
	}
	d.T.UpdateExplicitBCs(d.tBC, d.Network, true, false)
	d.tHist.Advance(d.T)

	if d.Sink != nil {
		d.Sink.Push(monitor.Update{
			Step:      stepIndex,
			Time:      float64(stepIndex) * ctl.Dt,
			Residuals: map[string]float64{"T": res.Residual},
		})
	}
	return nil
}
