// Package meshtest builds small synthetic meshes in memory for package
// tests across the module, standing in for an external mesh-file reader,
// which is out of scope for this core.
package meshtest

import (
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/tensor"
)

// Box describes a structured Nx x Ny x Nz hexahedral box mesh spanning
// [0,Lx] x [0,Ly] x [0,Lz], used by the package tests and by the named
// cube, cavity and channel meshes the CLI builds.
type Box struct {
	Nx, Ny, Nz int
	Lx, Ly, Lz float64
}

// Built is a box mesh plus the owner/neighbor cell-center lookup
// InitGeomMeshFields needs and the six patch names ("x-", "x+", "y-",
// "y+", "z-", "z+") it registered, in that order.
type Built struct {
	Mesh    *mesh.Mesh
	CellIdx func(i, j, k int) int
	Patches [6]string
}

// NewBox builds an axis-aligned structured mesh: one cell per (i,j,k),
// ghost cells mirroring every boundary face appended after the interior
// cells, west/east/south/north/bottom/top patches in that fixed order.
func NewBox(b Box) *Built {
	nx, ny, nz := b.Nx, b.Ny, b.Nz
	dx, dy, dz := b.Lx/float64(nx), b.Ly/float64(ny), b.Lz/float64(nz)
	nc := nx * ny * nz

	idx := func(i, j, k int) int { return (k*ny+j)*nx + i }

	// Count faces: interior faces between neighboring cells along each
	// axis, plus one boundary face per exposed cell face.
	nInteriorX := (nx - 1) * ny * nz
	nInteriorY := nx * (ny - 1) * nz
	nInteriorZ := nx * ny * (nz - 1)
	nBoundaryX := 2 * ny * nz
	nBoundaryY := 2 * nx * nz
	nBoundaryZ := 2 * nx * ny
	nInterior := nInteriorX + nInteriorY + nInteriorZ
	nBoundary := nBoundaryX + nBoundaryY + nBoundaryZ
	nf := nInterior + nBoundary
	nGhost := nBoundary

	m := mesh.New(nc+nGhost, nf)

	cc := make([]tensor.Vector, nc+nGhost)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				cc[idx(i, j, k)] = tensor.NewVector(
					(float64(i)+0.5)*dx,
					(float64(j)+0.5)*dy,
					(float64(k)+0.5)*dz,
				)
			}
		}
	}

	ownerC := make([]tensor.Vector, nf)
	neighborC := make([]tensor.Vector, nf)

	fidx := 0
	addFace := func(owner, neighbor int, fc, fn tensor.Vector) int {
		f := fidx
		m.Faces[f] = mesh.Face{Owner: owner, Neighbor: neighbor, FC: fc, FN: fn}
		ownerC[f] = cc[owner]
		m.Cells[owner].Faces = append(m.Cells[owner].Faces, f)
		if neighbor >= 0 && neighbor < nc {
			m.Cells[neighbor].Faces = append(m.Cells[neighbor].Faces, f)
		}
		fidx++
		return f
	}

	// Interior faces, ascending id within each axis sweep (x, then y, then z),
	// so face ordering is deterministic across runs.
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx-1; i++ {
				o, n := idx(i, j, k), idx(i+1, j, k)
				fc := cc[o].Add(tensor.NewVector(dx/2, 0, 0))
				area := dy * dz
				f := addFace(o, n, fc, tensor.NewVector(area, 0, 0))
				neighborC[f] = cc[n]
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny-1; j++ {
			for i := 0; i < nx; i++ {
				o, n := idx(i, j, k), idx(i, j+1, k)
				fc := cc[o].Add(tensor.NewVector(0, dy/2, 0))
				area := dx * dz
				f := addFace(o, n, fc, tensor.NewVector(0, area, 0))
				neighborC[f] = cc[n]
			}
		}
	}
	for k := 0; k < nz-1; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				o, n := idx(i, j, k), idx(i, j, k+1)
				fc := cc[o].Add(tensor.NewVector(0, 0, dz/2))
				area := dx * dy
				f := addFace(o, n, fc, tensor.NewVector(0, 0, area))
				neighborC[f] = cc[n]
			}
		}
	}

	ghost := nc
	var patches [6]string
	addBoundaryPatch := func(name string, faces func()) {
		start := fidx
		faces()
		m.AddBoundary(name, start, fidx)
	}

	// x- (west) and x+ (east)
	addBoundaryPatch("x-", func() {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				o := idx(0, j, k)
				fc := cc[o].Sub(tensor.NewVector(dx/2, 0, 0))
				area := dy * dz
				g := ghost
				cc[g] = fc
				f := addFace(o, g, fc, tensor.NewVector(-area, 0, 0))
				neighborC[f] = cc[g]
				ghost++
			}
		}
	})
	patches[0] = "x-"
	addBoundaryPatch("x+", func() {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				o := idx(nx-1, j, k)
				fc := cc[o].Add(tensor.NewVector(dx/2, 0, 0))
				area := dy * dz
				g := ghost
				cc[g] = fc
				f := addFace(o, g, fc, tensor.NewVector(area, 0, 0))
				neighborC[f] = cc[g]
				ghost++
			}
		}
	})
	patches[1] = "x+"
	addBoundaryPatch("y-", func() {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				o := idx(i, 0, k)
				fc := cc[o].Sub(tensor.NewVector(0, dy/2, 0))
				area := dx * dz
				g := ghost
				cc[g] = fc
				f := addFace(o, g, fc, tensor.NewVector(0, -area, 0))
				neighborC[f] = cc[g]
				ghost++
			}
		}
	})
	patches[2] = "y-"
	addBoundaryPatch("y+", func() {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				o := idx(i, ny-1, k)
				fc := cc[o].Add(tensor.NewVector(0, dy/2, 0))
				area := dx * dz
				g := ghost
				cc[g] = fc
				f := addFace(o, g, fc, tensor.NewVector(0, area, 0))
				neighborC[f] = cc[g]
				ghost++
			}
		}
	})
	patches[3] = "y+"
	addBoundaryPatch("z-", func() {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				o := idx(i, j, 0)
				fc := cc[o].Sub(tensor.NewVector(0, 0, dz/2))
				area := dx * dy
				g := ghost
				cc[g] = fc
				f := addFace(o, g, fc, tensor.NewVector(0, 0, -area))
				neighborC[f] = cc[g]
				ghost++
			}
		}
	})
	patches[4] = "z-"
	addBoundaryPatch("z+", func() {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				o := idx(i, j, nz-1)
				fc := cc[o].Add(tensor.NewVector(0, 0, dz/2))
				area := dx * dy
				g := ghost
				cc[g] = fc
				f := addFace(o, g, fc, tensor.NewVector(0, 0, area))
				neighborC[f] = cc[g]
				ghost++
			}
		}
	})
	patches[5] = "z+"

	m.GBCellsStart = nc
	for i := range m.Cells {
		m.Cells[i].CC = cc[i]
	}
	if err := m.InitGeomMeshFields(ownerC, neighborC); err != nil {
		panic(err)
	}

	return &Built{Mesh: m, CellIdx: idx, Patches: patches}
}
