package turbulence

import (
	"math"

	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/ops"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

// SmagorinskyCs is the Smagorinsky constant; 0.17 is the standard
// isotropic-turbulence value used absent a dynamic procedure.
const SmagorinskyCs = 0.17

// LES is the constant-coefficient Smagorinsky subgrid model: nut =
// (Cs*Delta)^2*|S|, Delta = V_c^(1/3). The running time-average of U/p a
// driver keeps for statistics lives in package drivers, not here — this
// model only ever produces an instantaneous eddy viscosity.
type LES struct {
	mesh *mesh.Mesh
	mut  *field.Field[tensor.Scalar]
}

func NewLES(m *mesh.Mesh) *LES {
	return &LES{mesh: m, mut: field.NewFace[tensor.Scalar]("", field.None, m)}
}

func (l *LES) EddyViscosity() *field.Field[tensor.Scalar] { return l.mut }

func (l *LES) Solve(U *field.Field[tensor.Vector], rho float64, ctl *paramstore.Controls, network mp.MP) error {
	m := l.mesh
	gradU := ops.GradTensor(U)
	sMag := strainMag(gradU)

	nut := make([]float64, m.NInteriorCells())
	for c := range nut {
		delta := math.Cbrt(m.Cells[c].CV)
		ls := SmagorinskyCs * delta
		nut[c] = rho * ls * ls * sMag[c]
	}
	cellToFace(m, nut, l.mut)
	return nil
}
