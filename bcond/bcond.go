// Package bcond implements BCondition<T>, the process-wide boundary
// condition registry keyed by (field name, patch name), and the per-kind
// rule for turning an interior value into a ghost-cell value and a matrix
// row contribution. BCs are created once by a driver before the first
// field update, mutated only by InitIndices, and never mutated again.
package bcond

import (
	"fmt"

	"github.com/unicfd/uniflow/mesh"
)

// Kind enumerates the boundary condition families. Wall marks patches
// that turbulence wall functions treat specially; the generic ghost-cell
// rule sets a Wall patch's ghosts to Value, as for Dirichlet.
type Kind int

const (
	Dirichlet Kind = iota
	Neumann
	Robin
	Symmetry
	Cyclic
	Wall
)

func (k Kind) String() string {
	switch k {
	case Dirichlet:
		return "DIRICHLET"
	case Neumann:
		return "NEUMANN"
	case Robin:
		return "ROBIN"
	case Symmetry:
		return "SYMMETRY"
	case Cyclic:
		return "CYCLIC"
	case Wall:
		return "WALL"
	default:
		return "UNKNOWN"
	}
}

// Condition is BCondition<T> genericized over the tensor value types
// (float64, tensor.Vector, ...) that Field[T] can carry.
type Condition[T any] struct {
	FieldName string
	PatchName string
	Kind      Kind
	Value     T
	Slope     T // used by Neumann/Robin: ghost = interior + slope*|d|
	RobinA    float64 // Robin: a*ghost + b*slope*|d| == value (a==0 is taken as 1)
	RobinB    float64

	PairedPatch string // Cyclic only: the patch this one is matched against

	indices []int // face ids in this patch, set once by InitIndices
	inited  bool
}

// New constructs a BC; InitIndices must be called exactly once, before the
// first field update, to populate the face index list from the mesh.
func New[T any](fieldName, patchName string, kind Kind, value, slope T) *Condition[T] {
	return &Condition[T]{FieldName: fieldName, PatchName: patchName, Kind: kind, Value: value, Slope: slope}
}

// InitIndices freezes the face range covered by this BC's patch. Calling
// it twice is a programming error: indices never change after the first
// field update.
func (c *Condition[T]) InitIndices(m *mesh.Mesh) error {
	if c.inited {
		return fmt.Errorf("bcond: InitIndices called twice for %s/%s", c.FieldName, c.PatchName)
	}
	b, ok := m.BoundaryByName(c.PatchName)
	if !ok {
		return fmt.Errorf("bcond: unknown patch %q for field %q", c.PatchName, c.FieldName)
	}
	c.indices = make([]int, 0, b.FaceEnd-b.FaceStart)
	for f := b.FaceStart; f < b.FaceEnd; f++ {
		c.indices = append(c.indices, f)
	}
	c.inited = true
	return nil
}

func (c *Condition[T]) Indices() []int { return c.indices }

// Key returns the registry key for this BC.
func (c *Condition[T]) Key() Key { return Key{Field: c.FieldName, Patch: c.PatchName} }

// Key is the (field_name, patch_name) registry key.
type Key struct {
	Field string
	Patch string
}

// Registry owns every BCondition in the process, keyed by (field,patch).
// The registry is populated during startup and is read-only during the
// time loop.
type Registry[T any] struct {
	byKey map[Key]*Condition[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{byKey: make(map[Key]*Condition[T])}
}

func (r *Registry[T]) Add(c *Condition[T]) {
	r.byKey[c.Key()] = c
}

func (r *Registry[T]) Get(fieldName, patchName string) (*Condition[T], bool) {
	c, ok := r.byKey[Key{Field: fieldName, Patch: patchName}]
	return c, ok
}

// ForField returns every BC registered for a field, across all patches,
// in no particular order (callers that need determinism sort by PatchName
// themselves; the registry itself just owns storage).
func (r *Registry[T]) ForField(fieldName string) []*Condition[T] {
	var out []*Condition[T]
	for k, c := range r.byKey {
		if k.Field == fieldName {
			out = append(out, c)
		}
	}
	return out
}
