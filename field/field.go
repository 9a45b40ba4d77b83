// Package field implements Field[T], the per-cell or per-face array that
// every operator, boundary condition and linear solver in the module
// reads and writes. A Field is generic over tensor.Algebra[T] so the same
// container and the same updateExplicitBCs logic serve Scalar fields (p,
// T, k, x) and Vector fields (U) alike.
package field

import (
	"fmt"
	"math"

	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/tensor"
)

// Access is the {NONE,READ,WRITE,READWRITE} flag controlling whether a
// named field participates in step-boundary I/O.
type Access int

const (
	None Access = iota
	Read
	Write
	ReadWrite
)

// Location distinguishes a cell field (length Nc) from a face field
// (length Nf).
type Location int

const (
	CellField Location = iota
	FaceField
)

// Field is a length-Nc or length-Nf array of T. Constructing it with a
// name auto-registers it for read/write at step boundaries (via the
// Registry below); constructing it anonymously (name == "") makes it
// transient — never written, never read back.
type Field[T tensor.Algebra[T]] struct {
	Name     string
	Access   Access
	Location Location
	Mesh     *mesh.Mesh
	Data     []T
}

// New allocates a zero-valued field of the given location and length. Use
// NewCell/NewFace for the common cases, which also size Data from the
// mesh.
func New[T tensor.Algebra[T]](name string, access Access, loc Location, m *mesh.Mesh) *Field[T] {
	n := m.NCells()
	if loc == FaceField {
		n = m.NFaces()
	}
	f := &Field[T]{Name: name, Access: access, Location: loc, Mesh: m, Data: make([]T, n)}
	if name != "" {
		defaultRegistry.mu.Lock()
		defaultRegistry.byName[name] = f
		defaultRegistry.mu.Unlock()
	}
	return f
}

func NewCell[T tensor.Algebra[T]](name string, access Access, m *mesh.Mesh) *Field[T] {
	return New[T](name, access, CellField, m)
}

func NewFace[T tensor.Algebra[T]](name string, access Access, m *mesh.Mesh) *Field[T] {
	return New[T](name, access, FaceField, m)
}

func (f *Field[T]) Len() int { return len(f.Data) }

// Fill sets every element to v — the field-algebra equivalent of the
// original's "ScalarCellField x = Scalar(0)" constant-assignment idiom.
func (f *Field[T]) Fill(v T) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// Clone returns a new, anonymous field with a copy of this field's data;
// used by drivers that need an "old value" snapshot (e.g. under-relaxation
// and the Crank-Nicolson blend) without aliasing the original.
func (f *Field[T]) Clone() *Field[T] {
	data := make([]T, len(f.Data))
	copy(data, f.Data)
	return &Field[T]{Access: None, Location: f.Location, Mesh: f.Mesh, Data: data}
}

// Add/Sub/Scale/AddScaled return new, anonymous fields. Elementwise
// arithmetic never mutates its operands.
func (f *Field[T]) Add(g *Field[T]) *Field[T] { return f.zipNew(g, func(a, b T) T { return a.Add(b) }) }
func (f *Field[T]) Sub(g *Field[T]) *Field[T] { return f.zipNew(g, func(a, b T) T { return a.Sub(b) }) }

func (f *Field[T]) Scale(s float64) *Field[T] {
	out := f.Clone()
	for i := range out.Data {
		out.Data[i] = out.Data[i].Scale(s)
	}
	return out
}

// AddScaled returns f + s*g, the workhorse of under-relaxation and
// deferred-correction accumulation.
func (f *Field[T]) AddScaled(g *Field[T], s float64) *Field[T] {
	return f.zipNew(g, func(a, b T) T { return a.Add(b.Scale(s)) })
}

func (f *Field[T]) zipNew(g *Field[T], op func(a, b T) T) *Field[T] {
	if len(f.Data) != len(g.Data) {
		panic(fmt.Sprintf("field: length mismatch %d vs %d", len(f.Data), len(g.Data)))
	}
	out := make([]T, len(f.Data))
	for i := range out {
		out[i] = op(f.Data[i], g.Data[i])
	}
	return &Field[T]{Access: None, Location: f.Location, Mesh: f.Mesh, Data: out}
}

// Assign is the in-place update operator ("U = ..." in the original):
// copies g's data into f without allocating a new field.
func (f *Field[T]) Assign(g *Field[T]) {
	if len(f.Data) != len(g.Data) {
		panic(fmt.Sprintf("field: length mismatch %d vs %d", len(f.Data), len(g.Data)))
	}
	copy(f.Data, g.Data)
}

// AddInPlace/SubInPlace/ScaleInPlace mutate f directly, used by drivers
// accumulating running statistics (LES averaging) where allocating a new
// field every step would be wasteful and where the original's semantics
// are explicitly in-place (+=, -=, /=).
func (f *Field[T]) AddInPlace(g *Field[T]) {
	for i := range f.Data {
		f.Data[i] = f.Data[i].Add(g.Data[i])
	}
}

func (f *Field[T]) SubInPlace(g *Field[T]) {
	for i := range f.Data {
		f.Data[i] = f.Data[i].Sub(g.Data[i])
	}
}

func (f *Field[T]) ScaleInPlace(s float64) {
	for i := range f.Data {
		f.Data[i] = f.Data[i].Scale(s)
	}
}

// Relax applies under-relaxation against a previous value: x_new = x_old +
// alpha*(x_solve - x_old), i.e. f itself holds x_solve going in and x_old
// coming in as `old`; f is mutated to hold x_new.
func (f *Field[T]) Relax(old *Field[T], alpha float64) {
	for i := range f.Data {
		delta := f.Data[i].Sub(old.Data[i]).Scale(alpha)
		f.Data[i] = old.Data[i].Add(delta)
	}
}

// Norm2 is the L2 norm of the field, reduced across ranks via mp so every
// rank sees the same value. The linear solver does not use it; it reduces
// its own residual norms over plain float64 slices.
func (f *Field[T]) Norm2(m mp.MP) float64 {
	var local float64
	for _, v := range f.Data {
		local += v.Dot(v)
	}
	total := m.SumScalar(local)
	if total < 0 {
		total = 0
	}
	return math.Sqrt(total)
}
