// Package solver implements the linear-solver layer: PCG and BiCGStab
// against the scalar system a MeshMatrix carries (Ap/An/Sp), with DIAG,
// DILU and SOR preconditioners, run componentwise for vector- and
// tensor-valued fields so the same sparse pattern and factorization
// serve every component.
//
// MeshMatrix.Su is the right-hand side b directly: Solve finds x such
// that (Ap+Sp)*x - sum(An*x_opp) == Su, the conventional Ax=b form. This
// is deliberately narrower than MeshMatrix.Mul, which folds Su into the
// product for GetRHS's benefit; the solver never calls Mul.
package solver

import (
	"gonum.org/v1/gonum/floats"

	"github.com/unicfd/uniflow/matrix"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/tensor"
)

// System is the scalar skeleton of a MeshMatrix[T]: the coefficient
// arrays are shared by every component of T, so PCG/BiCGStab and the
// preconditioners work against System and never need to know T.
type System struct {
	Mesh *mesh.Mesh
	Ap   []float64
	An   [2][]float64
	Sp   []float64
}

func systemOf[T tensor.Algebra[T]](M *matrix.MeshMatrix[T]) *System {
	return &System{Mesh: M.Mesh, Ap: M.Ap, An: M.An, Sp: M.Sp}
}

// MulVec computes A*x for the conventional Ax=b system: diagonal
// (Ap+Sp) minus the off-diagonal face contributions, matching
// MeshMatrix.ToCSR's explicit pattern and MeshMatrix.Mul's operator
// shape minus its Su term.
func (s *System) MulVec(x []float64) []float64 {
	nc := len(s.Ap)
	y := make([]float64, nc)
	for i := 0; i < nc; i++ {
		acc := x[i] * (s.Ap[i] + s.Sp[i])
		for _, f := range s.Mesh.Cells[i].Faces {
			if s.Mesh.IsBoundary(f) {
				continue
			}
			side := s.Mesh.Side(f, i)
			opp := s.Mesh.Opposite(f, i)
			if opp >= nc {
				continue
			}
			acc -= s.An[side][f] * x[opp]
		}
		y[i] = acc
	}
	return y
}

func dot(a, b []float64) float64 { return floats.Dot(a, b) }

func axpy(alpha float64, x []float64, y []float64) []float64 {
	out := append([]float64{}, y...)
	floats.AddScaled(out, alpha, x)
	return out
}

func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.SubTo(out, a, b)
	return out
}
