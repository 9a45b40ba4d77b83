// Package paramstore implements the external ParamStore interface: a
// tagged enrollment table that dispatches string keys from a controls
// file to typed slots, plus the nested-block reader for the controls
// file format itself and the Controls struct that holds process-wide
// configuration once loaded.
package paramstore

import "github.com/unicfd/uniflow/tensor"

// State is the STEADY/TRANSIENT toggle.
type State int

const (
	Steady State = iota
	Transient
)

func (s State) String() string {
	if s == Steady {
		return "STEADY"
	}
	return "TRANSIENT"
}

// ConvectionScheme enumerates the div(phi,F,mu) discretizations.
type ConvectionScheme int

const (
	UDS ConvectionScheme = iota
	CDS
	Blended
	MinMod
	Superbee
	VanLeer
	Muscl
)

var convectionSchemeNames = []string{"UDS", "CDS", "BLENDED", "MINMOD", "SUPERBEE", "VANLEER", "MUSCL"}

func (s ConvectionScheme) String() string { return nameOrUnknown(convectionSchemeNames, int(s)) }

// NonOrthoScheme enumerates the non-orthogonal correction families used
// by lap().
type NonOrthoScheme int

const (
	Orthogonal NonOrthoScheme = iota
	Minimum
	OrthogonalCorrection
	OverRelaxed
)

var nonOrthoSchemeNames = []string{"ORTHOGONAL", "MINIMUM", "ORTHOGONAL_CORRECTION", "OVER_RELAXED"}

func (s NonOrthoScheme) String() string { return nameOrUnknown(nonOrthoSchemeNames, int(s)) }

// TimeScheme enumerates ddt()'s time-discretization families.
type TimeScheme int

const (
	Euler TimeScheme = iota
	BDF1
	BDF2
	RungeKutta
)

var timeSchemeNames = []string{"EULER", "BDF1", "BDF2", "RUNGE_KUTTA"}

func (s TimeScheme) String() string { return nameOrUnknown(timeSchemeNames, int(s)) }

// SolverMethod enumerates the linear solver families.
type SolverMethod int

const (
	PCG SolverMethod = iota
	BiCGStab
)

// Preconditioner enumerates the preconditioners.
type Preconditioner int

const (
	DIAG Preconditioner = iota
	DILU
	SOR
)

// ParallelMethod selects how halo exchange overlaps with SpMV.
type ParallelMethod int

const (
	Blocked ParallelMethod = iota
	Asynchronous
)

// TurbulenceModel enumerates the turbulence closures.
type TurbulenceModel int

const (
	NoTurbulence TurbulenceModel = iota
	MixingLength
	KE
	RNGKE
	RealizableKE
	KW
	LES
)

var turbulenceModelNames = []string{"NONE", "MIXING_LENGTH", "KE", "RNG_KE", "REALIZABLE_KE", "KW", "LES"}

func (s TurbulenceModel) String() string { return nameOrUnknown(turbulenceModelNames, int(s)) }

func nameOrUnknown(names []string, idx int) string {
	if idx < 0 || idx >= len(names) {
		return "UNKNOWN"
	}
	return names[idx]
}

// Controls is the process-wide configuration: populated once at startup
// by the controls-file reader, never mutated inside the time loop.
type Controls struct {
	Solver string // "piso" | "diffusion" | "transport" | "potential"
	Mesh   string
	State  State

	StartStep     int
	EndStep       int
	WriteInterval int
	Dt            float64

	ConvectionScheme   ConvectionScheme
	NonOrthoScheme     NonOrthoScheme
	TimeScheme         TimeScheme
	TimeSchemeFactor   float64 // Crank-Nicolson blend, 1 == pure backward Euler
	RungeKuttaOrder    int
	ImplicitFactor     float64
	BlendFactor        float64 // UDS<->CDS blend for BLENDED convection scheme

	Method         SolverMethod
	Preconditioner Preconditioner
	Tolerance      float64
	MaxIterations  int
	SOROmega       float64
	ParallelMethod ParallelMethod

	TurbulenceModel TurbulenceModel

	Probe     bool // general.probe: emit a logrus line per component solve (field, iterations, residual)
	Gravity   tensor.Vector
	Density   float64
	Viscosity float64
}

// Default returns Controls populated with the reference solver's
// enrollment defaults.
func Default() *Controls {
	return &Controls{
		Solver:           "piso",
		State:            Steady,
		WriteInterval:    1,
		Dt:                1,
		EndStep:           100,
		ConvectionScheme:  UDS,
		NonOrthoScheme:    OverRelaxed,
		TimeScheme:        Euler,
		TimeSchemeFactor:  1,
		ImplicitFactor:    1,
		BlendFactor:       0.2,
		Method:            PCG,
		Preconditioner:    DIAG,
		Tolerance:         1e-6,
		MaxIterations:     500,
		SOROmega:          1.2,
		ParallelMethod:    Blocked,
		Density:           1,
		Viscosity:         1e-5,
	}
}
