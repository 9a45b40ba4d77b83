// Package drivers implements component I: the four coupling loops a
// controls file's "solver" key selects (piso, diffusion, transport,
// potential), each grounded line-for-line on the corresponding function in
// the reference solver. Every driver takes an optional monitor.Sink that it
// pushes residual/step updates to after each outer iteration; a nil Sink
// never changes what a driver computes, only whether anyone is watching.
package drivers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/matrix"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/monitor"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/ops"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/solver"
	"github.com/unicfd/uniflow/tensor"
	"github.com/unicfd/uniflow/turbulence"
)

// PISO is the Navier-Stokes pressure-velocity coupling driver: predict U
// against the current pressure gradient, then iterate the Rhie-Chow
// pressure correction n_PISO times per step. Deferred correction
// (n_DEFERRED) repeats the whole predict/correct pass within a step so
// higher-order convection schemes and boundary conditions relinearize
// against the updated field before the step is considered converged.
type PISO struct {
	Mesh *mesh.Mesh
	Ctl  *paramstore.Controls

	U *field.Field[tensor.Vector]
	P *field.Field[tensor.Scalar]

	uBC *bcond.Registry[tensor.Vector]
	pBC *bcond.Registry[tensor.Scalar]

	uHist *ops.History[tensor.Vector]

	Turb turbulence.Model

	NPISO, NOrtho, NDeferred int
	VelocityUR, PressureUR   float64

	avg *lesAverage

	Network mp.MP
	Sink    monitor.Sink
}

// NewPISO wires a fresh driver around an already-constructed mesh and
// field set, defaulting to the original's n_PISO=1, velocity_UR=0.8,
// pressure_UR=0.5.
func NewPISO(m *mesh.Mesh, ctl *paramstore.Controls, uBC *bcond.Registry[tensor.Vector], pBC *bcond.Registry[tensor.Scalar], turb turbulence.Model, network mp.MP) *PISO {
	U := field.NewCell[tensor.Vector]("U", field.ReadWrite, m)
	P := field.NewCell[tensor.Scalar]("p", field.ReadWrite, m)
	return &PISO{
		Mesh: m, Ctl: ctl, U: U, P: P,
		uBC: uBC, pBC: pBC,
		uHist:      ops.NewHistory(U, 2),
		Turb:       turb,
		NPISO:      1,
		VelocityUR: 0.8,
		PressureUR: 0.5,
		Network:    network,
	}
}

// EnableLESAverage turns on the running Uavg/Ustd/pavg/pstd bookkeeping the
// reference solver performs when les_average is set: each write interval,
// mean and std are derived from the running sums for the write while the
// running sums themselves stay untouched, so accumulation continues
// unaffected. The derivation uses sum/n and sumSq/n - mean^2 directly; it
// is algebraically equal to the reference solver's in-place
// update-and-restore sequence but does not repeat that arithmetic step by
// step, so the written values can differ from it in the last bits.
func (p *PISO) EnableLESAverage() {
	p.avg = newLESAverage(p.Mesh)
}

// Step advances the flow field by one outer iteration (one time step for
// TRANSIENT, one sweep for STEADY), performing n_DEFERRED+1 predict/correct
// passes (a single pass for STEADY, where n_DEFERRED is ignored) and
// pushing a monitor update at the end.
func (p *PISO) Step(stepIndex int) error {
	m := p.Mesh
	ctl := p.Ctl
	rho := ctl.Density
	steady := ctl.State == paramstore.Steady
	nDeferred := p.NDeferred
	if steady {
		nDeferred = 0
	}

	gP := ops.Grad(p.P).Scale(-1)
	F := ops.Flx(p.U.Scale(rho))

	var lastResidual float64
	for n := 0; n <= nDeferred; n++ {
		muf := field.NewFace[tensor.Scalar]("", field.None, m)
		muf.Fill(tensor.Scalar(rho * ctl.Viscosity))

		M := ops.Convection(p.U, F, muf, ctl)
		if p.Turb != nil {
			// addTurbulentStress: fold the eddy viscosity into the momentum
			// diffusion term as a second, independent Laplacian contribution,
			// grounded on KE_Model::addTurbulentStress's div(mut*grad(U)).
			M.AddInPlace(ops.Lap(p.U, p.Turb.EddyViscosity(), ctl))
		}

		if steady {
			M.Relax(p.U.Data, p.VelocityUR)
		} else {
			blendCrankNicolson(M, p.U, ctl.TimeSchemeFactor)
			M.AddInPlace(ops.Ddt(p.U, rho, p.uHist, ctl))
		}
		M.Su = addField(M.Su, gP.Data[:len(M.Su)])

		res, err := solver.Solve(p.U, M, ctl, p.Network)
		if err != nil {
			return fmt.Errorf("drivers: piso momentum solve: %w", err)
		}
		if !res.Converged {
			logrus.WithField("field", "U").WithField("residual", res.Residual).WithField("iterations", res.Iterations).
				Warn("drivers: piso momentum solve did not converge")
		}

		api := make([]float64, len(M.Ap))
		for c := range api {
			api[c] = 1 / (M.Ap[c] + M.Sp[c])
		}

		for j := 0; j < p.NPISO; j++ {
			rhs := M.GetRHS(p.U.Data)
			for c := range p.U.Data[:m.NInteriorCells()] {
				p.U.Data[c] = rhs[c].Scale(api[c])
			}
			p.U.UpdateExplicitBCs(p.uBC, p.Network, true, false)

			var pOld *field.Field[tensor.Scalar]
			if steady {
				pOld = p.P.Clone()
			}
			gamma := interpToFace(m, scaleByAPI(rho, api, m))
			for k := 0; k <= p.NOrtho; k++ {
				Mp := ops.Lap(p.P, gamma, ctl)
				divRhoU := ops.Div(p.U.Scale(rho))
				for c := 0; c < m.NInteriorCells(); c++ {
					Mp.AddSu(c, tensor.Scalar(float64(divRhoU.Data[c])*m.Cells[c].CV))
				}
				res, err := solver.Solve(p.P, Mp, ctl, p.Network)
				if err != nil {
					return fmt.Errorf("drivers: piso pressure solve: %w", err)
				}
				if !res.Converged {
					logrus.WithField("field", "p").WithField("residual", res.Residual).WithField("iterations", res.Iterations).
						Warn("drivers: piso pressure solve did not converge")
				}
				lastResidual = res.Residual
				p.P.UpdateExplicitBCs(p.pBC, p.Network, true, false)
			}
			if steady {
				p.P.Relax(pOld, p.PressureUR)
			}

			gP = ops.Grad(p.P).Scale(-1)
			for c := range p.U.Data[:m.NInteriorCells()] {
				p.U.Data[c] = p.U.Data[c].Sub(gP.Data[c].Scale(api[c]))
			}
			p.U.UpdateExplicitBCs(p.uBC, p.Network, true, false)
		}

		p.U.UpdateExplicitBCs(p.uBC, p.Network, true, true)
		F = ops.Flx(p.U.Scale(rho))

		if p.Turb != nil {
			if err := p.Turb.Solve(p.U, rho, ctl, p.Network); err != nil {
				return fmt.Errorf("drivers: piso turbulence solve: %w", err)
			}
		}
	}

	if p.avg != nil {
		p.avg.accumulate(p.U, p.P)
	}
	p.uHist.Advance(p.U)

	if p.Sink != nil {
		p.Sink.Push(monitor.Update{
			Step: stepIndex,
			Time: float64(stepIndex) * ctl.Dt,
			Residuals: map[string]float64{
				"p": lastResidual,
			},
		})
	}
	return nil
}

// WriteAverages returns mean/std fields derived from the running sums for
// writing; the running sums themselves are left unchanged, so
// accumulation resumes unaffected.
func (p *PISO) WriteAverages(stepCount int) (Uavg, Ustd *field.Field[tensor.Vector], pavg, pstd *field.Field[tensor.Scalar]) {
	return p.avg.snapshot(float64(stepCount))
}

func addField(su []tensor.Vector, g []tensor.Vector) []tensor.Vector {
	out := make([]tensor.Vector, len(su))
	for i := range su {
		out[i] = su[i].Add(g[i])
	}
	return out
}

func scaleByAPI(rho float64, api []float64, m *mesh.Mesh) []float64 {
	out := make([]float64, len(api))
	for c := range api {
		out[c] = rho * api[c] * m.Cells[c].CV
	}
	return out
}

// interpToFace linearly interpolates a per-interior-cell array to a face
// field using each face's FI weight, zero-gradient (owner value) at
// boundaries, matching the implicit CellField->FacetField conversion the
// reference framework performs when a cell quantity is passed where a
// facet field is expected.
func interpToFace(m *mesh.Mesh, cellValue []float64) *field.Field[tensor.Scalar] {
	out := field.NewFace[tensor.Scalar]("", field.None, m)
	for f := 0; f < m.NFaces(); f++ {
		face := m.Faces[f]
		if m.IsBoundary(f) {
			out.Data[f] = tensor.Scalar(cellValue[face.Owner])
			continue
		}
		ov, nv := cellValue[face.Owner], cellValue[face.Neighbor]
		out.Data[f] = tensor.Scalar(ov*face.FI + nv*(1-face.FI))
	}
	return out
}

// blendCrankNicolson implements the "if(!equal(time_factor,1))" branch:
// M.Su -= (1-factor)*po where po = M*U (evaluated before the blend), then
// M *= factor. factor==1 degenerates to pure backward Euler, left
// untouched.
func blendCrankNicolson[T tensor.Algebra[T]](M *matrix.MeshMatrix[T], phi *field.Field[T], factor float64) {
	if factor == 1 || factor == 0 {
		return
	}
	po := M.Mul(phi.Data[:len(M.Ap)])
	M.ScaleInPlace(factor)
	for i := range M.Su {
		M.Su[i] = M.Su[i].Sub(po[i].Scale(1 - factor))
	}
}
