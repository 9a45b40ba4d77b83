// Package turbulence implements the RANS/LES closures, each producing an
// eddy viscosity field that a coupling driver folds into the momentum
// diffusion coefficient, plus (for the two-equation RANS models) the
// transport equations for their own turbulence quantities. Wall
// treatment follows the reference solver's log-law estimator,
// generalized to every model's dissipation-rate variable.
package turbulence

import (
	"fmt"
	"math"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

// Kappa is the von Karman constant, named rather than inlined, matching
// the btracey-turbulence SST package's constant-naming convention.
const Kappa = 0.41

// Model is the closure every coupling driver calls once per outer
// iteration, after the momentum predictor and before the next pressure
// solve (mirroring the original's "turb->solve()" call in its PISO
// loop).
type Model interface {
	// EddyViscosity returns the current turbulent viscosity field
	// (face-located, for direct use as ops.Lap/ops.Convection's mu).
	EddyViscosity() *field.Field[tensor.Scalar]
	// Solve advances the model's own transport equations (if any) by one
	// step using the current velocity field and its gradient.
	Solve(U *field.Field[tensor.Vector], rho float64, ctl *paramstore.Controls, network mp.MP) error
}

// NewModel builds the closure ctl.TurbulenceModel names. kReg/xReg carry
// the BCs for the model's own transport variables ("k" plus "epsilon" or
// "omega"); a NoTurbulence, MixingLength or LES model never reads them.
// Building a two-equation model without a BC registered on every boundary
// patch is rejected rather than left to silently default the missing
// ghost values to zero — see ValidateBCs.
func NewModel(kind paramstore.TurbulenceModel, m *mesh.Mesh, kReg, xReg *bcond.Registry[tensor.Scalar]) (Model, error) {
	if err := ValidateBCs(kind, m, kReg, xReg); err != nil {
		return nil, err
	}
	switch kind {
	case paramstore.MixingLength:
		return NewMixingLength(m), nil
	case paramstore.KE:
		return newKEModel(m, kReg, xReg, standardKEConstants()), nil
	case paramstore.RNGKE:
		return newKEModel(m, kReg, xReg, rngKEConstants()), nil
	case paramstore.RealizableKE:
		return newKEModel(m, kReg, xReg, realizableKEConstants()), nil
	case paramstore.KW:
		return NewKWModel(m, kReg, xReg), nil
	case paramstore.LES:
		return NewLES(m), nil
	default:
		return NoModel{mesh: m}, nil
	}
}

// secondVariable names the closure's second transport field ("epsilon" or
// "omega"), alongside "k"; ok is false for closures with no transport
// equations of their own (laminar, mixing length, LES).
func secondVariable(kind paramstore.TurbulenceModel) (name string, ok bool) {
	switch kind {
	case paramstore.KE, paramstore.RNGKE, paramstore.RealizableKE:
		return "epsilon", true
	case paramstore.KW:
		return "omega", true
	default:
		return "", false
	}
}

// ValidateBCs requires a "k" and second-variable BC registered for every
// boundary patch on m before a two-equation closure is built. Turbulence
// inlet/outlet values are mandatory configuration, not something this
// module should guess a zero default for.
func ValidateBCs(kind paramstore.TurbulenceModel, m *mesh.Mesh, kReg, xReg *bcond.Registry[tensor.Scalar]) error {
	second, ok := secondVariable(kind)
	if !ok {
		return nil
	}
	for _, patch := range m.SortedPatchNames() {
		if _, ok := kReg.Get("k", patch); !ok {
			return fmt.Errorf("turbulence: %s model requires a %q boundary condition on patch %q", kind, "k", patch)
		}
		if _, ok := xReg.Get(second, patch); !ok {
			return fmt.Errorf("turbulence: %s model requires a %q boundary condition on patch %q", kind, second, patch)
		}
	}
	return nil
}

// UStar is the Spalding/log-law friction velocity estimate from k at the
// wall-adjacent cell, shared by every model's wall treatment.
func UStar(cmu, k float64) float64 {
	if k < 0 {
		k = 0
	}
	return math.Sqrt(math.Sqrt(cmu)) * math.Sqrt(k)
}

// WallDissipation is the log-law epsilon at distance y from the wall,
// the direct generalization of ke.h's calcX(ustar,kappa,y) =
// ustar^3/(kappa*y).
func WallDissipation(ustar, y float64) float64 {
	if y <= 0 {
		return 0
	}
	return ustar * ustar * ustar / (Kappa * y)
}

// WallOmega is the log-law specific dissipation rate at distance y,
// omega = ustar/(sqrt(BetaStar)*kappa*y), the k-omega family's analogue
// of WallDissipation.
func WallOmega(ustar, y, betaStar float64) float64 {
	if y <= 0 {
		return 0
	}
	return ustar / (math.Sqrt(betaStar) * Kappa * y)
}

// NoModel is the laminar closure: zero eddy viscosity, nothing to solve.
type NoModel struct {
	mesh *mesh.Mesh
}

func (n NoModel) EddyViscosity() *field.Field[tensor.Scalar] {
	return field.NewFace[tensor.Scalar]("", field.None, n.mesh)
}

func (n NoModel) Solve(*field.Field[tensor.Vector], float64, *paramstore.Controls, mp.MP) error { return nil }
