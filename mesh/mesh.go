// Package mesh holds the immutable-after-load unstructured mesh topology:
// cells, faces, boundary patches and the geometry derived from them. A Mesh
// is read-only from the moment initGeomMeshFields has run; every other
// package borrows it, never mutates it.
package mesh

import (
	"fmt"
	"sort"

	"github.com/unicfd/uniflow/tensor"
)

// NoNeighbor marks a face with no owner-side neighbor cell, i.e. a boundary
// face. It is never a valid index into Cells.
const NoNeighbor = -1

// Face stores the two adjacent cell indices, its geometry and the
// owner-side interpolation weight used by every central-differencing
// operator in package ops.
type Face struct {
	Owner    int // interior cell on the "owner" side, always < gBCellsStart
	Neighbor int // interior or ghost cell on the other side; NoNeighbor if none was assigned yet
	FC       tensor.Vector
	FN       tensor.Vector // oriented area vector, points owner -> neighbor
	FI       float64       // distance-weighted interpolation factor in [0,1]
}

// Cell stores the faces bounding it and its derived geometry. Cells with
// index >= Mesh.GBCellsStart are boundary ghost cells: one per boundary
// face, mirroring the adjacent interior cell and carrying BC values.
type Cell struct {
	Faces []int
	CC    tensor.Vector
	CV    float64
}

// Boundary is a contiguous half-open range of face indices sharing a patch
// name; each face's ghost cell is that face's Neighbor index.
type Boundary struct {
	Name      string
	FaceStart int
	FaceEnd   int // exclusive
}

// Mesh is the unstructured topology. Face FI and cell CV are populated by
// InitGeomMeshFields and are zero before that call; face FC/FN and cell CC
// are supplied by whoever builds the mesh.
type Mesh struct {
	Cells        []Cell
	Faces        []Face
	Boundaries   []Boundary
	byName       map[string]int // patch name -> index into Boundaries
	GBCellsStart int            // [0, GBCellsStart) interior, [GBCellsStart, Nc) ghost
	YWall        []float64      // wall distance per cell, filled by an external pass
}

// New constructs an empty mesh with nc interior cells and capacity for
// nf faces; callers (mesh readers, meshtest fixtures) fill in Faces/Cells/
// Boundaries and then call InitGeomMeshFields.
func New(nc, nf int) *Mesh {
	return &Mesh{
		Cells:  make([]Cell, nc),
		Faces:  make([]Face, nf),
		byName: make(map[string]int),
	}
}

// AddBoundary registers a contiguous face range under a patch name. Patch
// ranges must be added in ascending face-id order and must exactly cover
// [interior-face-count, Nf); this is checked by InitGeomMeshFields via the
// owner<neighbor<GBCellsStart invariant, not here.
func (m *Mesh) AddBoundary(name string, start, end int) {
	m.Boundaries = append(m.Boundaries, Boundary{Name: name, FaceStart: start, FaceEnd: end})
	m.byName[name] = len(m.Boundaries) - 1
}

// PatchOf returns the patch name owning boundary face f, or "" if f is an
// interior face.
func (m *Mesh) PatchOf(f int) string {
	for _, b := range m.Boundaries {
		if f >= b.FaceStart && f < b.FaceEnd {
			return b.Name
		}
	}
	return ""
}

// BoundaryByName looks up a patch's face range; ok is false for an unknown
// patch name (never fatal — callers log and skip, per the configuration
// error taxonomy).
func (m *Mesh) BoundaryByName(name string) (Boundary, bool) {
	idx, ok := m.byName[name]
	if !ok {
		return Boundary{}, false
	}
	return m.Boundaries[idx], true
}

// NCells/NFaces are the usual accessors; NInteriorCells excludes ghosts.
func (m *Mesh) NCells() int         { return len(m.Cells) }
func (m *Mesh) NFaces() int         { return len(m.Faces) }
func (m *Mesh) NInteriorCells() int { return m.GBCellsStart }

func (m *Mesh) IsBoundary(f int) bool {
	return m.Faces[f].Neighbor >= m.GBCellsStart
}

// FacesOf returns the faces bounding cell c, in the order they were stored
// (operator assembly must preserve this order for determinism).
func (m *Mesh) FacesOf(c int) []int { return m.Cells[c].Faces }

// Opposite returns the cell on the other side of face f from cell c. c
// must be either the owner or the neighbor of f.
func (m *Mesh) Opposite(f, c int) int {
	face := m.Faces[f]
	if face.Owner == c {
		return face.Neighbor
	}
	if face.Neighbor == c {
		return face.Owner
	}
	panic(fmt.Sprintf("mesh: cell %d is not adjacent to face %d", c, f))
}

// Side reports whether c is the owner (0) or neighbor (1) side of face f,
// matching MeshMatrix's an[2] indexing convention.
func (m *Mesh) Side(f, c int) int {
	if m.Faces[f].Owner == c {
		return 0
	}
	return 1
}

// InitGeomMeshFields computes fI for every face, cV for every cell (via the
// divergence theorem applied to the stored face normals) and
// checks the two geometry invariants from the data model: per interior
// cell, faces sum to a zero oriented area, and owner < neighbor <
// GBCellsStart. ownerC/neighborC give each face's two endpoint centers so
// fI = |fC-nC| / (|fC-oC| + |fC-nC|) can be computed without re-deriving
// cell centers from face data (the caller already knows them from the mesh
// file). fC and fN are not computed here: they must already be set on
// every face.
func (m *Mesh) InitGeomMeshFields(ownerC, neighborC []tensor.Vector) error {
	for i, f := range m.Faces {
		interior := f.Neighbor < m.GBCellsStart
		if interior && !(f.Owner < f.Neighbor) {
			return fmt.Errorf("mesh: face %d violates owner<neighbor<GBCellsStart (owner=%d neighbor=%d)", i, f.Owner, f.Neighbor)
		}
		oc, nc := ownerC[i], neighborC[i]
		do := f.FC.Sub(oc).Mag()
		dn := f.FC.Sub(nc).Mag()
		fi := 1.0
		if do+dn > 0 {
			fi = dn / (do + dn)
		}
		m.Faces[i].FI = fi
	}
	// cV by the divergence theorem: V = (1/3) sum_f (fC . fN), oriented
	// outward from the cell.
	for c := range m.Cells {
		var vol float64
		var sum tensor.Vector
		for _, fidx := range m.Cells[c].Faces {
			face := m.Faces[fidx]
			n := face.FN
			if face.Neighbor == c && face.Owner != c {
				n = n.Neg()
			}
			vol += face.FC.Dot(n)
			sum = sum.Add(n)
		}
		vol /= 3
		m.Cells[c].CV = vol
		if c < m.GBCellsStart && sum.Mag() > 1e-6*(1+vol) {
			return fmt.Errorf("mesh: cell %d violates sum(fN)==0 geometry invariant (residual %.3e)", c, sum.Mag())
		}
	}
	return nil
}

// SortedPatchNames is used by writers/tests that want deterministic
// iteration order over boundary patches.
func (m *Mesh) SortedPatchNames() []string {
	names := make([]string, 0, len(m.Boundaries))
	for _, b := range m.Boundaries {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}
