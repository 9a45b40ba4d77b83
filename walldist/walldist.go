// Package walldist implements the approximate nearest-wall-distance pass:
// solve lap(phi,1) = -cV with phi=0 at WALL patches and zero-gradient
// everywhere else, then recover the distance from phi and its gradient via
// Spalding's closed-form estimator. Grounded directly on Mesh::calc_walldist
// in the reference solver: every patch whose name contains "WALL" gets a
// Dirichlet zero, every other patch gets Neumann zero.
package walldist

import (
	"fmt"
	"strings"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/ops"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/solver"
	"github.com/unicfd/uniflow/tensor"
)

// Compute solves for phi, derives the wall distance per cell and writes it
// into m.YWall. ctl.NonOrthoScheme governs the Poisson solve's correction
// scheme the same way it governs any other lap() call; ctl.Method/
// Preconditioner likewise carry over unchanged.
func Compute(m *mesh.Mesh, ctl *paramstore.Controls, network mp.MP) error {
	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	reg := bcond.NewRegistry[tensor.Scalar]()

	for _, b := range m.Boundaries {
		var c *bcond.Condition[tensor.Scalar]
		if strings.Contains(strings.ToUpper(b.Name), "WALL") {
			c = bcond.New[tensor.Scalar]("", b.Name, bcond.Dirichlet, 0, 0)
		} else {
			c = bcond.New[tensor.Scalar]("", b.Name, bcond.Neumann, 0, 0)
		}
		if err := c.InitIndices(m); err != nil {
			return fmt.Errorf("walldist: %w", err)
		}
		reg.Add(c)
	}
	phi.FillBoundaryValues(reg)

	one := field.NewFace[tensor.Scalar]("", field.None, m)
	one.Fill(1)
	M := ops.Lap(phi, one, ctl)
	nc := m.NInteriorCells()
	for c := 0; c < nc; c++ {
		M.AddSu(c, tensor.Scalar(-m.Cells[c].CV))
	}
	if _, err := solver.Solve(phi, M, ctl, network); err != nil {
		return fmt.Errorf("walldist: %w", err)
	}
	phi.FillBoundaryValues(reg)

	g := ops.Grad(phi)

	if len(m.YWall) != m.NCells() {
		m.YWall = make([]float64, m.NCells())
	}
	for c := 0; c < nc; c++ {
		gv := g.Data[c]
		gg := gv.Dot(gv)
		p := float64(phi.Data[c])
		inner := gg + 2*p
		if inner < 0 {
			inner = 0
		}
		m.YWall[c] = tensor.Sqrt(inner) - gv.Mag()
	}
	return nil
}
