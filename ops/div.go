package ops

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/tensor"
)

// Div computes the cell-centered divergence of a vector field directly
// from its face-interpolated values, without building a flux field first:
//
//	div(U)_c = (1/V_c) * sum_f (U_f . A_f)
func Div(U *field.Field[tensor.Vector]) *field.Field[tensor.Scalar] {
	m := U.Mesh
	out := field.NewCell[tensor.Scalar]("", field.None, m)
	for c := 0; c < m.NInteriorCells(); c++ {
		var sum float64
		for _, f := range m.FacesOf(c) {
			fv := faceValue(U, m, f)
			n := m.Faces[f].FN
			if m.Side(f, c) == 1 {
				n = n.Neg()
			}
			sum += fv.Dot(n)
		}
		out.Data[c] = tensor.Scalar(sum / m.Cells[c].CV)
	}
	return out
}
