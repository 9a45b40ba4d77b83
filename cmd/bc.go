package cmd

import (
	"fmt"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/tensor"
)

// scenarioBCs builds the boundary-condition registries for one of the
// named mesh scenarios, standing in for the controls-file BC block the
// reference solver's case directories carry alongside their mesh files.
// A BCondition is always constructed by the driver before the first
// field update, never read back from an external format, and this is
// that construction.
func scenarioBCs(name string, m *mesh.Mesh) (*bcond.Registry[tensor.Vector], *bcond.Registry[tensor.Scalar], error) {
	uReg := bcond.NewRegistry[tensor.Vector]()
	pReg := bcond.NewRegistry[tensor.Scalar]()

	add := func(field string, patch string, kind bcond.Kind, v tensor.Vector) error {
		c := bcond.New[tensor.Vector](field, patch, kind, v, tensor.Vector{})
		if err := c.InitIndices(m); err != nil {
			return err
		}
		uReg.Add(c)
		return nil
	}
	addP := func(field string, patch string, kind bcond.Kind, v float64) error {
		c := bcond.New[tensor.Scalar](field, patch, kind, tensor.Scalar(v), 0)
		if err := c.InitIndices(m); err != nil {
			return err
		}
		pReg.Add(c)
		return nil
	}

	switch name {
	case "cavity":
		walls := []string{"x-", "x+", "y-", "z-", "z+"}
		for _, p := range walls {
			if err := add("U", p, bcond.Wall, tensor.Vector{}); err != nil {
				return nil, nil, err
			}
			if err := addP("p", p, bcond.Neumann, 0); err != nil {
				return nil, nil, err
			}
		}
		if err := add("U", "y+", bcond.Dirichlet, tensor.NewVector(1, 0, 0)); err != nil {
			return nil, nil, err
		}
		if err := addP("p", "y+", bcond.Neumann, 0); err != nil {
			return nil, nil, err
		}
	case "channel":
		if err := add("U", "x-", bcond.Dirichlet, tensor.NewVector(1, 0, 0)); err != nil {
			return nil, nil, err
		}
		if err := addP("p", "x-", bcond.Neumann, 0); err != nil {
			return nil, nil, err
		}
		if err := add("U", "x+", bcond.Neumann, tensor.Vector{}); err != nil {
			return nil, nil, err
		}
		if err := addP("p", "x+", bcond.Dirichlet, 0); err != nil {
			return nil, nil, err
		}
		for _, p := range []string{"y-", "y+", "z-", "z+"} {
			if err := add("U", p, bcond.Wall, tensor.Vector{}); err != nil {
				return nil, nil, err
			}
			if err := addP("p", p, bcond.Neumann, 0); err != nil {
				return nil, nil, err
			}
		}
	case "cube":
		for _, p := range []string{"x-", "x+", "y-", "y+", "z-", "z+"} {
			if err := add("U", p, bcond.Wall, tensor.Vector{}); err != nil {
				return nil, nil, err
			}
			if err := addP("p", p, bcond.Neumann, 0); err != nil {
				return nil, nil, err
			}
		}
	default:
		return nil, nil, fmt.Errorf("cmd: no boundary conditions registered for mesh %q", name)
	}
	return uReg, pReg, nil
}
