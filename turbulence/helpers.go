package turbulence

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/tensor"
)

// cellToFace writes a per-interior-cell eddy-viscosity array into a
// face-located field by linear (FI-weighted) interpolation on interior
// faces and zero-gradient extrapolation (owner value) at boundaries,
// since every closure here already folds wall damping into the
// interior-cell value it computes.
func cellToFace(m *mesh.Mesh, cellValue []float64, out *field.Field[tensor.Scalar]) {
	for f := 0; f < m.NFaces(); f++ {
		face := m.Faces[f]
		if m.IsBoundary(f) {
			out.Data[f] = tensor.Scalar(cellValue[face.Owner])
			continue
		}
		ov, nv := cellValue[face.Owner], cellValue[face.Neighbor]
		out.Data[f] = tensor.Scalar(ov*face.FI + nv*(1-face.FI))
	}
}
