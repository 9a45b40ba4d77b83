package turbulence

import (
	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/ops"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/solver"
	"github.com/unicfd/uniflow/tensor"
)

// kwConstants mirrors the Wilcox k-omega constant set. There is a single
// set, without the SST reference's "1"/"2" subscripts, since this model
// never blends toward the k-epsilon limit.
const (
	kwBetaStar = 0.09
	kwSigmaK   = 0.5
	kwSigmaW   = 0.5
	kwBeta     = 0.075
	kwGamma    = 0.52
)

// KWModel is the Wilcox two-equation k-omega closure: eddy_mu =
// rho*k/omega, transported by its own k/omega equations. Constants
// follow the SigmaK1/SigmaW1/Beta1 branch of the reference SST set with
// no blending function, since this model never transitions to the
// k-epsilon far-field limit SST uses.
type KWModel struct {
	mesh *mesh.Mesh

	k, omega       *field.Field[tensor.Scalar]
	kHist, wHist   *ops.History[tensor.Scalar]
	kBC, omegaBC   *bcond.Registry[tensor.Scalar]

	mut *field.Field[tensor.Scalar]
}

func NewKWModel(m *mesh.Mesh, kReg, omegaReg *bcond.Registry[tensor.Scalar]) *KWModel {
	k := field.NewCell[tensor.Scalar]("k", field.ReadWrite, m)
	omega := field.NewCell[tensor.Scalar]("omega", field.ReadWrite, m)
	k.Fill(tensor.Scalar(1e-6))
	omega.Fill(tensor.Scalar(1))
	return &KWModel{
		mesh: m, k: k, omega: omega,
		kHist: ops.NewHistory(k, 1), wHist: ops.NewHistory(omega, 1),
		kBC: kReg, omegaBC: omegaReg,
		mut: field.NewFace[tensor.Scalar]("", field.None, m),
	}
}

func (kw *KWModel) EddyViscosity() *field.Field[tensor.Scalar] { return kw.mut }

func (kw *KWModel) Solve(U *field.Field[tensor.Vector], rho float64, ctl *paramstore.Controls, network mp.MP) error {
	m := kw.mesh
	nc := m.NInteriorCells()
	muLam := rho * ctl.Viscosity

	gradU := ops.GradTensor(U)
	sMag := strainMag(gradU)

	cellMut := make([]float64, nc)
	for c := 0; c < nc; c++ {
		wc := float64(kw.omega.Data[c])
		if wc <= 0 {
			continue
		}
		cellMut[c] = rho * float64(kw.k.Data[c]) / wc
	}
	cellToFace(m, cellMut, kw.mut)

	kw.k.UpdateExplicitBCs(kw.kBC, network, true, false)
	kw.omega.UpdateExplicitBCs(kw.omegaBC, network, true, false)
	kw.applyWallFunctions()

	F := ops.Flx(U.Scale(rho))

	gammaK := faceGamma(m, kw.mut, muLam, 1/kwSigmaK)
	Mk := ops.Convection(kw.k, F, gammaK, ctl)
	Mk.AddInPlace(ops.Ddt(kw.k, rho, kw.kHist, ctl))

	gammaW := faceGamma(m, kw.mut, muLam, 1/kwSigmaW)
	Mw := ops.Convection(kw.omega, F, gammaW, ctl)
	Mw.AddInPlace(ops.Ddt(kw.omega, rho, kw.wHist, ctl))

	for c := 0; c < nc; c++ {
		_, wc := float64(kw.k.Data[c]), float64(kw.omega.Data[c])
		if wc <= 0 {
			wc = 1e-10
		}
		vol := m.Cells[c].CV
		production := cellMut[c] * sMag[c] * sMag[c]

		Mk.AddSu(c, tensor.Scalar(vol*production))
		Mk.AddSp(c, kwBetaStar*rho*vol*wc)

		Mw.AddSu(c, tensor.Scalar(vol*kwGamma*rho*sMag[c]*sMag[c]))
		Mw.AddSp(c, kwBeta*rho*vol*wc)
	}

	if _, err := solver.Solve(kw.k, Mk, ctl, network); err != nil {
		return err
	}
	if _, err := solver.Solve(kw.omega, Mw, ctl, network); err != nil {
		return err
	}
	kw.kHist.Advance(kw.k)
	kw.wHist.Advance(kw.omega)
	return nil
}

// applyWallFunctions mirrors KEModel's, using WallOmega instead of
// WallDissipation, per Wilcox's omega wall boundary condition.
func (kw *KWModel) applyWallFunctions() {
	m := kw.mesh
	for _, bc := range kw.omegaBC.ForField(kw.omega.Name) {
		if bc.Kind != bcond.Wall {
			continue
		}
		for _, f := range bc.Indices() {
			owner := m.Faces[f].Owner
			if owner >= len(m.YWall) {
				continue
			}
			y := m.YWall[owner]
			if y <= 0 {
				continue
			}
			ustar := UStar(kwBetaStar, float64(kw.k.Data[owner]))
			ghost := m.Faces[f].Neighbor
			kw.omega.Data[ghost] = tensor.Scalar(WallOmega(ustar, y, kwBetaStar))
		}
	}
}
