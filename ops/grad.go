package ops

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/tensor"
)

// Grad is the Green-Gauss cell gradient: for cell c,
//
//	grad(phi)_c = (1/V_c) * sum_f phi_f * A_f
//
// summed over c's faces with A_f oriented outward from c (mesh.Face.FN
// points owner -> neighbor, so it is negated when c is on the neighbor
// side).
func Grad(phi *field.Field[tensor.Scalar]) *field.Field[tensor.Vector] {
	m := phi.Mesh
	out := field.NewCell[tensor.Vector]("", field.None, m)
	for c := 0; c < m.NInteriorCells(); c++ {
		var sum tensor.Vector
		for _, f := range m.FacesOf(c) {
			fv := faceValue(phi, m, f)
			n := m.Faces[f].FN
			if m.Side(f, c) == 1 {
				n = n.Neg()
			}
			sum = sum.Add(n.Scale(float64(fv)))
		}
		out.Data[c] = sum.Scale(1 / m.Cells[c].CV)
	}
	return out
}

// GradV is grad with the naming the PISO driver uses at the pressure
// gradient call site; the sign handling it needs (gP = -grad(p)) is the
// caller's job, not this function's.
func GradV(phi *field.Field[tensor.Scalar]) *field.Field[tensor.Vector] {
	return Grad(phi)
}

// GradTensor is the Green-Gauss gradient of a vector field, the velocity
// gradient tensor turbulence closures build their strain rate from:
//
//	grad(U)_c = (1/V_c) * sum_f U_f (x) A_f
//
// It returns a plain per-interior-cell slice rather than a field.Field:
// the velocity gradient never goes through boundary exchange, relaxation
// or file I/O, so it does not need tensor.Tensor to satisfy Algebra.
func GradTensor(U *field.Field[tensor.Vector]) []tensor.Tensor {
	m := U.Mesh
	out := make([]tensor.Tensor, m.NInteriorCells())
	for c := 0; c < m.NInteriorCells(); c++ {
		var sum tensor.Tensor
		for _, f := range m.FacesOf(c) {
			fv := faceValue(U, m, f)
			n := m.Faces[f].FN
			if m.Side(f, c) == 1 {
				n = n.Neg()
			}
			sum = sum.Add(tensor.Outer(fv, n))
		}
		out[c] = sum.Scale(1 / m.Cells[c].CV)
	}
	return out
}
