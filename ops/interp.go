// Package ops implements the discretization operators that turn fields
// into matrices and matrices into other fields: grad, div, flx, the
// convection and diffusion (Laplacian) matrix builders, and the time
// derivative. Every assembly loop here iterates faces in ascending id and
// visits a cell's faces in the order mesh.Mesh stores them, so two runs
// over the same mesh produce bitwise-identical coefficient sequences.
package ops

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/tensor"
)

// faceValue returns the central-differenced value of phi at face f:
// fI*phi[owner] + (1-fI)*phi[neighbor].
func faceValue[T tensor.Algebra[T]](phi *field.Field[T], m *mesh.Mesh, f int) T {
	face := m.Faces[f]
	o, n := phi.Data[face.Owner], phi.Data[face.Neighbor]
	return o.Scale(face.FI).Add(n.Scale(1 - face.FI))
}

// faceDelta is d_f = cellCenter(neighbor) - cellCenter(owner).
func faceDelta(m *mesh.Mesh, f int) tensor.Vector {
	face := m.Faces[f]
	return m.Cells[face.Neighbor].CC.Sub(m.Cells[face.Owner].CC)
}
