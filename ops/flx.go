package ops

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/tensor"
)

// Flx computes the face mass flux of a (already density-scaled) velocity
// field: flux_f = (rhoU)_f . A_f, oriented owner -> neighbor.
func Flx(rhoU *field.Field[tensor.Vector]) *field.Field[tensor.Scalar] {
	m := rhoU.Mesh
	out := field.NewFace[tensor.Scalar]("", field.None, m)
	for f := 0; f < m.NFaces(); f++ {
		fv := faceValue(rhoU, m, f)
		out.Data[f] = tensor.Scalar(fv.Dot(m.Faces[f].FN))
	}
	return out
}
