package matrix

import (
	"github.com/james-bowman/sparse"

	"github.com/unicfd/uniflow/tensor"
)

// ToCSR materializes the explicit sparse pattern (diagonal + off-diagonal
// coefficients) for diagnostics and tests, using james-bowman/sparse's
// DOK/CSR builder; the solver and its preconditioners work on Ap/An
// directly and never call it. The coefficient pattern is the
// same for every value type T — Ap/An are always plain float64 — so this
// lives on MeshMatrix without re-deriving it per T.
func (M *MeshMatrix[T]) ToCSR() *sparse.CSR {
	nc := len(M.Ap)
	dok := sparse.NewDOK(nc, nc)
	for i := 0; i < nc; i++ {
		dok.Set(i, i, M.Ap[i]+M.Sp[i])
	}
	for _, f := range allInteriorFaces(M) {
		owner := M.Mesh.Faces[f].Owner
		neighbor := M.Mesh.Faces[f].Neighbor
		if owner >= nc || neighbor >= nc {
			continue
		}
		// Row `owner` loses An[0][f]*x[neighbor]; row `neighbor` loses
		// An[1][f]*x[owner], matching MeshMatrix's Mul definition.
		dok.Set(owner, neighbor, dok.At(owner, neighbor)-M.An[0][f])
		dok.Set(neighbor, owner, dok.At(neighbor, owner)-M.An[1][f])
	}
	return dok.ToCSR()
}

func allInteriorFaces[T tensor.Algebra[T]](M *MeshMatrix[T]) []int {
	out := make([]int, 0, M.Mesh.NFaces())
	for f := 0; f < M.Mesh.NFaces(); f++ {
		if !M.Mesh.IsBoundary(f) {
			out = append(out, f)
		}
	}
	return out
}
