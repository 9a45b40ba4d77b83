// Package meshprep implements the optional 2-D Delaunay refinement pass
// a controls file's "prepare"/"refinement" block configures, run once
// before a mesh is read, never from inside the solve loop. It produces
// a refined polygon soup; turning that into a mesh directory is the
// external mesh writer's job, out of this core's scope.
package meshprep

import (
	"fmt"

	"github.com/pradeep-pyro/triangle"

	"github.com/unicfd/uniflow/tensor"
)

// Boundary is a closed polygon boundary loop, ordered counter-clockwise,
// the input to Refine.
type Boundary struct {
	Points []tensor.Vector // z ignored; refinement is strictly 2-D
}

// Refined is the triangulated result: the point set (original boundary
// points followed by any Steiner points Triangle inserted) and the
// triangle connectivity, one row of three point indices per triangle.
type Refined struct {
	Points    []tensor.Vector
	Triangles [][3]int
}

// Refine triangulates loop under a maximum-area constraint, inserting
// Steiner points as needed to satisfy it (Shewchuk's "quality mesh"
// switches: p for a planar straight-line graph, q for quality, a<area>
// for the area bound). maxArea <= 0 disables the area constraint and
// produces the unrefined constrained Delaunay triangulation.
func Refine(loop Boundary, maxArea float64) (*Refined, error) {
	n := len(loop.Points)
	if n < 3 {
		return nil, fmt.Errorf("meshprep: boundary loop needs at least 3 points, got %d", n)
	}

	in := &triangle.Triangulateio{}
	in.Pointlist = make([]float64, 0, 2*n)
	for _, p := range loop.Points {
		in.Pointlist = append(in.Pointlist, p[0], p[1])
	}
	in.Numberofpoints = int32(n)

	in.Segmentlist = make([]int32, 0, 2*n)
	for i := 0; i < n; i++ {
		in.Segmentlist = append(in.Segmentlist, int32(i), int32((i+1)%n))
	}
	in.Numberofsegments = int32(n)

	switches := "pzQ"
	if maxArea > 0 {
		switches = fmt.Sprintf("pzQa%g", maxArea)
	}

	out := &triangle.Triangulateio{}
	if err := triangle.Triangulate(switches, in, out, nil); err != nil {
		return nil, fmt.Errorf("meshprep: triangulate: %w", err)
	}

	points := make([]tensor.Vector, 0, out.Numberofpoints)
	for i := 0; i < int(out.Numberofpoints); i++ {
		points = append(points, tensor.NewVector(out.Pointlist[2*i], out.Pointlist[2*i+1], 0))
	}
	tris := make([][3]int, 0, out.Numberoftriangles)
	for i := 0; i < int(out.Numberoftriangles); i++ {
		tris = append(tris, [3]int{
			int(out.Trianglelist[3*i]),
			int(out.Trianglelist[3*i+1]),
			int(out.Trianglelist[3*i+2]),
		})
	}
	return &Refined{Points: points, Triangles: tris}, nil
}
