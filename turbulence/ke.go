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

// keConstants is the model-constant set a k-epsilon variant is built
// from; eddyMu below is ke.h's calcEddyMu generalized to a configurable
// Cmu (RNG/Realizable only change the constant set, never the equation
// shape).
type keConstants struct {
	Cmu, C1, C2, SigmaK, SigmaEps float64
}

func standardKEConstants() keConstants {
	return keConstants{Cmu: 0.09, C1: 1.44, C2: 1.92, SigmaK: 1.0, SigmaEps: 1.3}
}

func rngKEConstants() keConstants {
	return keConstants{Cmu: 0.0845, C1: 1.42, C2: 1.68, SigmaK: 0.7179, SigmaEps: 0.7179}
}

func realizableKEConstants() keConstants {
	return keConstants{Cmu: 0.09, C1: 1.44, C2: 1.9, SigmaK: 1.0, SigmaEps: 1.2}
}

// KEModel is the standard two-equation k-epsilon closure: eddy_mu =
// rho*Cmu*k^2/eps (ke.h's calcEddyMu), transported by its own k/epsilon
// equations with the usual production/linear-destruction source pair.
type KEModel struct {
	mesh *mesh.Mesh
	c    keConstants

	k, eps         *field.Field[tensor.Scalar]
	kHist, epsHist *ops.History[tensor.Scalar]
	kBC, epsBC     *bcond.Registry[tensor.Scalar]

	mut *field.Field[tensor.Scalar] // face-located, for ops.Lap/Convection
}

func newKEModel(m *mesh.Mesh, kReg, epsReg *bcond.Registry[tensor.Scalar], c keConstants) *KEModel {
	k := field.NewCell[tensor.Scalar]("k", field.ReadWrite, m)
	eps := field.NewCell[tensor.Scalar]("epsilon", field.ReadWrite, m)
	k.Fill(tensor.Scalar(1e-6))
	eps.Fill(tensor.Scalar(1e-6))
	return &KEModel{
		mesh: m, c: c, k: k, eps: eps,
		kHist: ops.NewHistory(k, 1), epsHist: ops.NewHistory(eps, 1),
		kBC: kReg, epsBC: epsReg,
		mut: field.NewFace[tensor.Scalar]("", field.None, m),
	}
}

func (ke *KEModel) EddyViscosity() *field.Field[tensor.Scalar] { return ke.mut }

func (ke *KEModel) Solve(U *field.Field[tensor.Vector], rho float64, ctl *paramstore.Controls, network mp.MP) error {
	m := ke.mesh
	nc := m.NInteriorCells()
	muLam := rho * ctl.Viscosity

	gradU := ops.GradTensor(U)
	sMag := strainMag(gradU)

	cellMut := make([]float64, nc)
	for c := 0; c < nc; c++ {
		kc, ec := float64(ke.k.Data[c]), float64(ke.eps.Data[c])
		if ec <= 0 {
			continue
		}
		cellMut[c] = rho * ke.c.Cmu * kc * kc / ec
	}
	cellToFace(m, cellMut, ke.mut)

	ke.k.UpdateExplicitBCs(ke.kBC, network, true, false)
	ke.eps.UpdateExplicitBCs(ke.epsBC, network, true, false)
	ke.applyWallFunctions()

	F := ops.Flx(U.Scale(rho))

	gammaK := faceGamma(m, ke.mut, muLam, ke.c.SigmaK)
	Mk := ops.Convection(ke.k, F, gammaK, ctl)
	Mk.AddInPlace(ops.Ddt(ke.k, rho, ke.kHist, ctl))

	gammaEps := faceGamma(m, ke.mut, muLam, ke.c.SigmaEps)
	Me := ops.Convection(ke.eps, F, gammaEps, ctl)
	Me.AddInPlace(ops.Ddt(ke.eps, rho, ke.epsHist, ctl))

	for c := 0; c < nc; c++ {
		kc, ec := float64(ke.k.Data[c]), float64(ke.eps.Data[c])
		if kc <= 0 {
			kc = 1e-10
		}
		vol := m.Cells[c].CV
		production := 2 * cellMut[c] * sMag[c] * sMag[c]

		Mk.AddSu(c, tensor.Scalar(vol*production))
		Mk.AddSp(c, rho*vol*ec/kc)

		Me.AddSu(c, tensor.Scalar(vol*ke.c.C1*ec/kc*production))
		Me.AddSp(c, ke.c.C2*rho*vol*ec/kc)
	}

	if _, err := solver.Solve(ke.k, Mk, ctl, network); err != nil {
		return err
	}
	if _, err := solver.Solve(ke.eps, Me, ctl, network); err != nil {
		return err
	}
	ke.kHist.Advance(ke.k)
	ke.epsHist.Advance(ke.eps)
	return nil
}

// applyWallFunctions overwrites epsilon's wall-patch ghost cells with the
// log-law estimate derived from the adjacent cell's own k value, the
// direct generalization of ke.h's calcX; this runs after the generic BC
// pass, which otherwise leaves epsilon's wall ghosts at whatever Dirichlet
// value the controls file configured.
func (ke *KEModel) applyWallFunctions() {
	m := ke.mesh
	for _, bc := range ke.epsBC.ForField(ke.eps.Name) {
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
			ustar := UStar(ke.c.Cmu, float64(ke.k.Data[owner]))
			ghost := m.Faces[f].Neighbor
			ke.eps.Data[ghost] = tensor.Scalar(WallDissipation(ustar, y))
		}
	}
}

func faceGamma(m *mesh.Mesh, mut *field.Field[tensor.Scalar], muLam, sigma float64) *field.Field[tensor.Scalar] {
	out := field.NewFace[tensor.Scalar]("", field.None, m)
	for f := range out.Data {
		out.Data[f] = tensor.Scalar(muLam + float64(mut.Data[f])/sigma)
	}
	return out
}
