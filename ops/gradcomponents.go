package ops

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/tensor"
)

// componentGradients computes the Green-Gauss gradient of every flattened
// component of phi, independently, via Grad. It lets the non-orthogonal
// correction in Lap work the same way for a Scalar field (one component)
// and a Vector field (three components) without a value-type switch: the
// correction term is just the flattened gradient dotted with a face
// vector, component by component, then folded back with Unflatten.
func componentGradients[T tensor.Algebra[T]](phi *field.Field[T]) [][]tensor.Vector {
	n := len(phi.Data[0].Flatten())
	out := make([][]tensor.Vector, n)
	scratch := field.NewCell[tensor.Scalar]("", field.None, phi.Mesh)
	for k := 0; k < n; k++ {
		for i, v := range phi.Data {
			scratch.Data[i] = tensor.Scalar(v.Flatten()[k])
		}
		g := Grad(scratch)
		out[k] = g.Data
	}
	return out
}

// faceGradDot returns the component-wise dot of phi's face-interpolated
// gradient with v, folded back into T via Unflatten.
func faceGradDot[T tensor.Algebra[T]](grads [][]tensor.Vector, owner, neighbor int, fI float64, v tensor.Vector, zero T) T {
	comp := make([]float64, len(grads))
	for k, g := range grads {
		gf := g[owner].Scale(fI).Add(g[neighbor].Scale(1 - fI))
		comp[k] = gf.Dot(v)
	}
	return zero.Unflatten(comp)
}
