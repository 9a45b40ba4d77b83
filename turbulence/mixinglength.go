package turbulence

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/ops"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

// MixingLength is Prandtl's algebraic closure: nut = (kappa*min(y,
// LimitLength))^2 * |S|, no transport equation of its own.
type MixingLength struct {
	mesh        *mesh.Mesh
	LimitLength float64
	mut         *field.Field[tensor.Scalar]
}

// NewMixingLength defaults LimitLength to the largest wall distance in
// the mesh, so an unconfigured case degrades to unclipped Prandtl mixing
// length rather than zero viscosity everywhere.
func NewMixingLength(m *mesh.Mesh) *MixingLength {
	limit := 0.0
	for _, y := range m.YWall {
		if y > limit {
			limit = y
		}
	}
	return &MixingLength{mesh: m, LimitLength: limit, mut: field.NewFace[tensor.Scalar]("", field.None, m)}
}

func (ml *MixingLength) EddyViscosity() *field.Field[tensor.Scalar] { return ml.mut }

func (ml *MixingLength) Solve(U *field.Field[tensor.Vector], rho float64, ctl *paramstore.Controls, network mp.MP) error {
	m := ml.mesh
	gradU := ops.GradTensor(U)
	sMag := strainMag(gradU)

	nut := make([]float64, m.NInteriorCells())
	for c := range nut {
		y := ml.LimitLength
		if c < len(m.YWall) && m.YWall[c] < y {
			y = m.YWall[c]
		}
		l := Kappa * y
		nut[c] = rho * l * l * sMag[c]
	}
	cellToFace(m, nut, ml.mut)
	return nil
}
