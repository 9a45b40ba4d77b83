package paramstore

import "io"

// LoadControls reads a controls file and returns a Controls populated on
// top of Default(): every block is optional, every key inside a block
// is optional, and an unrecognized block is bound to an empty table, so
// each of its keys is logged as UNKNOWN and otherwise ignored.
func LoadControls(r io.Reader) (*Controls, error) {
	c := Default()
	blocks, err := Parse(r)
	if err != nil {
		return nil, err
	}

	general := NewTable("general")
	general.EnrollString("solver", &c.Solver)
	general.EnrollString("mesh", &c.Mesh)
	general.EnrollEnum("state", (*int)(&c.State), []string{"STEADY", "TRANSIENT"})
	general.EnrollInt("start_step", &c.StartStep)
	general.EnrollInt("end_step", &c.EndStep)
	general.EnrollInt("write_interval", &c.WriteInterval)
	general.EnrollScalar("dt", &c.Dt)
	general.EnrollScalar("density", &c.Density)
	general.EnrollScalar("viscosity", &c.Viscosity)
	general.EnrollVector("gravity", &c.Gravity)
	general.EnrollBool("probe", &c.Probe)

	discretization := NewTable("discretization")
	discretization.EnrollEnum("convection_scheme", (*int)(&c.ConvectionScheme), convectionSchemeNames)
	discretization.EnrollEnum("non_ortho_scheme", (*int)(&c.NonOrthoScheme), nonOrthoSchemeNames)
	discretization.EnrollEnum("time_scheme", (*int)(&c.TimeScheme), timeSchemeNames)
	discretization.EnrollScalar("time_scheme_factor", &c.TimeSchemeFactor)
	discretization.EnrollInt("runge_kutta_order", &c.RungeKuttaOrder)
	discretization.EnrollScalar("implicit_factor", &c.ImplicitFactor)
	discretization.EnrollScalar("blend_factor", &c.BlendFactor)

	solver := NewTable("solver")
	solver.EnrollEnum("method", (*int)(&c.Method), []string{"PCG", "BICGSTAB"})
	solver.EnrollEnum("preconditioner", (*int)(&c.Preconditioner), []string{"DIAG", "DILU", "SOR"})
	solver.EnrollScalar("tolerance", &c.Tolerance)
	solver.EnrollInt("max_iterations", &c.MaxIterations)
	solver.EnrollScalar("sor_omega", &c.SOROmega)
	solver.EnrollEnum("parallel_method", (*int)(&c.ParallelMethod), []string{"BLOCKED", "ASYNCHRONOUS"})

	turbulence := NewTable("turbulence")
	model := int(c.TurbulenceModel)
	turbulence.EnrollEnum("model", &model, turbulenceModelNames)

	children := map[string]*Table{
		"general":        general,
		"discretization": discretization,
		"solver":         solver,
		"piso":           solver,
		"diffusion":      solver,
		"transport":      solver,
		"turbulence":     turbulence,
	}

	for _, b := range blocks {
		t, ok := children[b.Name]
		if !ok {
			t = NewTable(b.Name) // still bound, so unknown keys are logged rather than silently dropped
		}
		if err := Bind(b, t, children); err != nil {
			return nil, err
		}
	}
	c.TurbulenceModel = TurbulenceModel(model)
	return c, nil
}
