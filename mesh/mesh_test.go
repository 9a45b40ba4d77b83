package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unicfd/uniflow/meshtest"
)

func TestBoxMeshPartitionsInteriorAndGhostCells(t *testing.T) {
	b := meshtest.NewBox(meshtest.Box{Nx: 3, Ny: 2, Nz: 2, Lx: 1, Ly: 1, Lz: 1})
	m := b.Mesh

	nInterior := 3 * 2 * 2
	assert.Equal(t, nInterior, m.NInteriorCells())
	assert.Greater(t, m.NCells(), m.NInteriorCells(), "box mesh must allocate ghost cells beyond the interior")

	for f := 0; f < m.NFaces(); f++ {
		face := m.Faces[f]
		assert.Less(t, face.Owner, m.NInteriorCells(), "every face owner must be an interior cell")
		if m.IsBoundary(f) {
			assert.GreaterOrEqual(t, face.Neighbor, m.NInteriorCells())
		} else {
			assert.Less(t, face.Neighbor, m.NInteriorCells())
		}
	}
}

func TestBoxMeshRegistersSixPatchesInFixedOrder(t *testing.T) {
	b := meshtest.NewBox(meshtest.Box{Nx: 2, Ny: 2, Nz: 2, Lx: 1, Ly: 1, Lz: 1})
	want := [6]string{"x-", "x+", "y-", "y+", "z-", "z+"}
	assert.Equal(t, want, b.Patches)

	for _, name := range want {
		bd, ok := b.Mesh.BoundaryByName(name)
		assert.True(t, ok, "patch %q must be registered", name)
		assert.Less(t, bd.FaceStart, bd.FaceEnd)
		for f := bd.FaceStart; f < bd.FaceEnd; f++ {
			assert.Equal(t, name, b.Mesh.PatchOf(f))
		}
	}
	_, ok := b.Mesh.BoundaryByName("no-such-patch")
	assert.False(t, ok)
}

func TestMeshSideAndOppositeAreConsistent(t *testing.T) {
	b := meshtest.NewBox(meshtest.Box{Nx: 4, Ny: 1, Nz: 1, Lx: 1, Ly: 1, Lz: 1})
	m := b.Mesh

	for c := 0; c < m.NInteriorCells(); c++ {
		for _, f := range m.FacesOf(c) {
			if m.IsBoundary(f) {
				continue
			}
			side := m.Side(f, c)
			opp := m.Opposite(f, c)
			if side == 0 {
				assert.Equal(t, m.Faces[f].Owner, c)
				assert.Equal(t, m.Faces[f].Neighbor, opp)
			} else {
				assert.Equal(t, m.Faces[f].Neighbor, c)
				assert.Equal(t, m.Faces[f].Owner, opp)
			}
		}
	}
}
