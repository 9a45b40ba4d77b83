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

// Potential is the irrotational-flow initializer: starting from a
// boundary-driven U, solve lap(p,1) == div(U) in n_ORTHO+1 sweeps and
// correct U -= grad(p) until it is divergence-free. Used to produce a
// sane initial velocity field for PISO rather than to model viscous flow
// itself, matching the reference solver's potential().
type Potential struct {
	Mesh *mesh.Mesh
	Ctl  *paramstore.Controls

	U *field.Field[tensor.Vector]
	P *field.Field[tensor.Scalar]

	uBC *bcond.Registry[tensor.Vector]
	pBC *bcond.Registry[tensor.Scalar]

	NOrtho int

	Network mp.MP
	Sink    monitor.Sink
}

func NewPotential(m *mesh.Mesh, ctl *paramstore.Controls, uBC *bcond.Registry[tensor.Vector], pBC *bcond.Registry[tensor.Scalar], network mp.MP) *Potential {
	U := field.NewCell[tensor.Vector]("U", field.ReadWrite, m)
	P := field.NewCell[tensor.Scalar]("p", field.ReadWrite, m)
	return &Potential{
		Mesh: m, Ctl: ctl, U: U, P: P,
		uBC: uBC, pBC: pBC,
		NOrtho:  3,
		Network: network,
	}
}

// Solve runs the whole n_ORTHO correction loop in one call; unlike PISO
// there is no outer time step, the reference solver runs this once at
// startup.
func (po *Potential) Solve() error {
	m := po.Mesh
	ctl := po.Ctl

	po.U.UpdateExplicitBCs(po.uBC, po.Network, true, false)

	one := field.NewFace[tensor.Scalar]("", field.None, m)
	one.Fill(1)

	var lastResidual float64
	for k := 0; k <= po.NOrtho; k++ {
		Mp := ops.Lap(po.P, one, ctl)
		divU := ops.Div(po.U)
		for c := 0; c < m.NInteriorCells(); c++ {
			Mp.AddSu(c, tensor.Scalar(float64(divU.Data[c])*m.Cells[c].CV))
		}
		res, err := solver.Solve(po.P, Mp, ctl, po.Network)
		if err != nil {
			return fmt.Errorf("drivers: potential pressure solve: %w", err)
		}
		if !res.Converged {
			logrus.WithField("field", "p").WithField("residual", res.Residual).WithField("iterations", res.Iterations).
				Warn("drivers: potential pressure solve did not converge")
		}
		lastResidual = res.Residual
		po.P.UpdateExplicitBCs(po.pBC, po.Network, true, false)

		gP := ops.Grad(po.P)
		for c := range po.U.Data[:m.NInteriorCells()] {
			po.U.Data[c] = po.U.Data[c].Sub(gP.Data[c])
		}
		po.U.UpdateExplicitBCs(po.uBC, po.Network, true, false)
	}

	if po.Sink != nil {
		po.Sink.Push(monitor.Update{
			Residuals: map[string]float64{"p": lastResidual},
		})
	}
	return nil
}
