package solver

import (
	"github.com/sirupsen/logrus"

	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/matrix"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

// Solve finds phi such that M describes (Ap+Sp)*phi - sum(An*phi_opp) ==
// Su, per ctl.Method (PCG or BICGSTAB) and ctl.Preconditioner, updating
// phi.Data in place over its interior cells. Boundary/ghost values are
// left untouched — they are the job of bcond, not the linear solver.
// Vector- and tensor-valued phi are solved one flattened component at a
// time against the same scalar System, since Ap/An/Sp never couple
// components.
func Solve[T tensor.Algebra[T]](phi *field.Field[T], M *matrix.MeshMatrix[T], ctl *paramstore.Controls, network mp.MP) (Result, error) {
	sys := systemOf(M)
	precond := NewPreconditioner(ctl.Preconditioner, ctl)
	precond.Setup(sys)

	nc := len(M.Ap)
	ncomp := len(phi.Data[0].Flatten())
	worst := Result{Converged: true}

	for k := 0; k < ncomp; k++ {
		b := make([]float64, nc)
		x0 := make([]float64, nc)
		for i := 0; i < nc; i++ {
			b[i] = M.Su[i].Flatten()[k]
			x0[i] = phi.Data[i].Flatten()[k]
		}

		var xk []float64
		var res Result
		switch ctl.Method {
		case paramstore.BiCGStab:
			xk, res = bicgstab(sys, b, x0, precond, network, ctl.Tolerance, ctl.MaxIterations)
		default:
			xk, res = pcg(sys, b, x0, precond, network, ctl.Tolerance, ctl.MaxIterations)
		}

		for i := 0; i < nc; i++ {
			comp := phi.Data[i].Flatten()
			comp[k] = xk[i]
			phi.Data[i] = phi.Data[i].Unflatten(comp)
		}

		if ctl.Probe {
			logrus.WithField("field", phi.Name).WithField("component", k).
				WithField("iterations", res.Iterations).WithField("residual", res.Residual).
				Info("solver: component solve")
		}

		if res.Residual > worst.Residual {
			worst.Residual = res.Residual
		}
		if res.Iterations > worst.Iterations {
			worst.Iterations = res.Iterations
		}
		worst.Converged = worst.Converged && res.Converged
	}
	return worst, nil
}
