// Package matrix implements MeshMatrix[T], the face-centric sparse
// linear operator: a diagonal ap, per-face off-diagonals
// an[owner-side, neighbor-side], an explicit source Su and an implicit
// source Sp folded into the diagonal at solve time.
package matrix

import (
	"fmt"

	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/tensor"
)

// MeshMatrix owns its coefficient storage and holds a non-owning pointer
// to the mesh it was assembled against. It never aliases the unknown
// field directly — operators build it from a field's current values but
// the matrix itself only stores coefficients.
type MeshMatrix[T tensor.Algebra[T]] struct {
	Mesh *mesh.Mesh
	Ap   []float64 // diagonal, per cell
	An   [2][]float64 // per-face coefficients: An[0] owner-side, An[1] neighbor-side
	Su   []T       // explicit source / RHS, per cell
	Sp   []float64 // implicit source, added to Ap at assembly/solve time
}

// New allocates a zero matrix sized to m's interior cells and faces.
func New[T tensor.Algebra[T]](m *mesh.Mesh) *MeshMatrix[T] {
	nc := m.NInteriorCells()
	nf := m.NFaces()
	return &MeshMatrix[T]{
		Mesh: m,
		Ap:   make([]float64, nc),
		An:   [2][]float64{make([]float64, nf), make([]float64, nf)},
		Su:   make([]T, nc),
		Sp:   make([]float64, nc),
	}
}

// AddFaceCoeff adds a contribution to a face's owner- or neighbor-side
// off-diagonal coefficient. side is 0 for owner, 1 for neighbor, matching
// mesh.Mesh.Side.
func (M *MeshMatrix[T]) AddFaceCoeff(face, side int, v float64) {
	M.An[side][face] += v
}

// AddAp adds to a cell's diagonal coefficient.
func (M *MeshMatrix[T]) AddAp(cell int, v float64) { M.Ap[cell] += v }

// AddSu adds to a cell's explicit source.
func (M *MeshMatrix[T]) AddSu(cell int, v T) { M.Su[cell] = M.Su[cell].Add(v) }

// AddSp adds to a cell's implicit source.
func (M *MeshMatrix[T]) AddSp(cell int, v float64) { M.Sp[cell] += v }

// Mul computes the matrix-vector product against a cell field x (length
// NInteriorCells):
//
//	y[i] = ap[i]*x[i] + Sp[i]*x[i] - sum_{faces f of i} an[side(f,i)]*x[opp(f,i)]
//	y[i] += Su[i]
func (M *MeshMatrix[T]) Mul(x []T) []T {
	nc := len(M.Ap)
	y := make([]T, nc)
	for i := 0; i < nc; i++ {
		acc := x[i].Scale(M.Ap[i] + M.Sp[i])
		for _, f := range M.Mesh.Cells[i].Faces {
			if M.Mesh.IsBoundary(f) {
				continue
			}
			side := M.Mesh.Side(f, i)
			opp := M.Mesh.Opposite(f, i)
			if opp >= nc {
				continue
			}
			acc = acc.Sub(x[opp].Scale(M.An[side][f]))
		}
		y[i] = acc.Add(M.Su[i])
	}
	return y
}

// GetRHS implements the "H(U)/ap"-style operator used by PISO: the
// off-diagonal contributions of M applied to x, plus Su, without the
// diagonal term — i.e. getRHS(M) = (ap*x + Sp*x - sum an*x_neigh) + Su -
// ap*x, which simplifies to Sp*x - sum(an*x_neigh) + Su. Kept as the
// unsimplified expression so it stays obviously derived from Mul rather
// than an independently maintained formula.
func (M *MeshMatrix[T]) GetRHS(x []T) []T {
	full := M.Mul(x)
	nc := len(M.Ap)
	out := make([]T, nc)
	for i := 0; i < nc; i++ {
		out[i] = full[i].Sub(x[i].Scale(M.Ap[i]))
	}
	return out
}

// Relax applies under-relaxation to the matrix in place: ap /= alpha; Su +=
// (1-alpha)/alpha * ap * x_current.
func (M *MeshMatrix[T]) Relax(x []T, alpha float64) {
	if alpha <= 0 {
		panic(fmt.Sprintf("matrix: relaxation factor must be > 0, got %g", alpha))
	}
	factor := (1 - alpha) / alpha
	for i := range M.Ap {
		M.Ap[i] /= alpha
		M.Su[i] = M.Su[i].Add(x[i].Scale(factor * M.Ap[i]))
	}
}

// AddInPlace implements M += N: coefficient arrays add elementwise.
func (M *MeshMatrix[T]) AddInPlace(N *MeshMatrix[T]) {
	for i := range M.Ap {
		M.Ap[i] += N.Ap[i]
		M.Sp[i] += N.Sp[i]
		M.Su[i] = M.Su[i].Add(N.Su[i])
	}
	for s := 0; s < 2; s++ {
		for f := range M.An[s] {
			M.An[s][f] += N.An[s][f]
		}
	}
}

// ScaleInPlace implements M *= factor: scales every coefficient array and
// Su by the same factor, leaving the matrix's null space (and hence
// Solve's fixed point) unchanged except for the row scaling itself.
func (M *MeshMatrix[T]) ScaleInPlace(factor float64) {
	for i := range M.Ap {
		M.Ap[i] *= factor
		M.Sp[i] *= factor
		M.Su[i] = M.Su[i].Scale(factor)
	}
	for s := 0; s < 2; s++ {
		for f := range M.An[s] {
			M.An[s][f] *= factor
		}
	}
}

// Clone makes a deep copy, used where a driver needs to scale or relax a
// matrix without mutating the caller's copy (e.g. the Crank-Nicolson
// blend computing M*U before M is itself rescaled).
func (M *MeshMatrix[T]) Clone() *MeshMatrix[T] {
	out := &MeshMatrix[T]{
		Mesh: M.Mesh,
		Ap:   append([]float64{}, M.Ap...),
		Su:   append([]T{}, M.Su...),
		Sp:   append([]float64{}, M.Sp...),
	}
	out.An[0] = append([]float64{}, M.An[0]...)
	out.An[1] = append([]float64{}, M.An[1]...)
	return out
}
