package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/matrix"
	"github.com/unicfd/uniflow/meshtest"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

func poissonSystem(t *testing.T) (*field.Field[tensor.Scalar], *matrix.MeshMatrix[tensor.Scalar]) {
	t.Helper()
	b := meshtest.NewBox(meshtest.Box{Nx: 4, Ny: 4, Nz: 4, Lx: 1, Ly: 1, Lz: 1})
	m := b.Mesh
	nc := m.NInteriorCells()

	M := matrix.New[tensor.Scalar](m)
	for c := 0; c < nc; c++ {
		diag := 6.0
		M.AddAp(c, diag)
	}
	for f := 0; f < m.NFaces(); f++ {
		if m.IsBoundary(f) {
			continue
		}
		M.AddFaceCoeff(f, 0, 1)
		M.AddFaceCoeff(f, 1, 1)
	}
	for c := 0; c < nc; c++ {
		M.AddSu(c, tensor.Scalar(1))
	}

	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	return phi, M
}

// PCG against a diagonally dominant SPD system converges to the
// tolerance requested within the iteration limit.
func TestPCGConverges(t *testing.T) {
	phi, M := poissonSystem(t)
	ctl := paramstore.Default()
	ctl.Tolerance = 1e-10
	ctl.MaxIterations = 200

	res, err := Solve(phi, M, ctl, mp.NewLocal())
	assert.NoError(t, err)
	assert.True(t, res.Converged, "expected PCG to converge, got residual %g after %d iterations", res.Residual, res.Iterations)
	assert.Less(t, res.Residual, ctl.Tolerance*10)
}

// Scaling a matrix by a positive constant does not change its solution:
// M.ScaleInPlace(k) followed by a solve reproduces the unscaled result.
func TestScalingInvarianceOfSolution(t *testing.T) {
	phi1, M1 := poissonSystem(t)
	phi2, M2 := poissonSystem(t)
	M2.ScaleInPlace(3.5)

	ctl := paramstore.Default()
	ctl.Tolerance = 1e-10
	ctl.MaxIterations = 200

	_, err1 := Solve(phi1, M1, ctl, mp.NewLocal())
	_, err2 := Solve(phi2, M2, ctl, mp.NewLocal())
	assert.NoError(t, err1)
	assert.NoError(t, err2)

	for i := range phi1.Data[:M1.Mesh.NInteriorCells()] {
		assert.InDelta(t, float64(phi1.Data[i]), float64(phi2.Data[i]), 1e-6)
	}
}

// BiCGStab reproduces PCG's solution on a symmetric system (BiCGStab is
// a strict generalization of CG for the SPD case, modulo iteration path).
func TestBiCGStabMatchesPCGOnSPDSystem(t *testing.T) {
	phiPCG, mPCG := poissonSystem(t)
	phiBiCG, mBiCG := poissonSystem(t)

	ctl := paramstore.Default()
	ctl.Tolerance = 1e-10
	ctl.MaxIterations = 500

	_, err := Solve(phiPCG, mPCG, ctl, mp.NewLocal())
	assert.NoError(t, err)

	ctl.Method = paramstore.BiCGStab
	_, err = Solve(phiBiCG, mBiCG, ctl, mp.NewLocal())
	assert.NoError(t, err)

	for i := range phiPCG.Data[:mPCG.Mesh.NInteriorCells()] {
		assert.InDelta(t, float64(phiPCG.Data[i]), float64(phiBiCG.Data[i]), 1e-4)
	}
}

// DILU and SOR preconditioners must not change the converged solution,
// only the iteration count needed to reach it.
func TestPreconditionersAgreeOnSolution(t *testing.T) {
	ctl := paramstore.Default()
	ctl.Tolerance = 1e-10
	ctl.MaxIterations = 500

	var results [][]float64
	for _, pc := range []paramstore.Preconditioner{paramstore.DIAG, paramstore.DILU, paramstore.SOR} {
		phi, M := poissonSystem(t)
		ctl.Preconditioner = pc
		_, err := Solve(phi, M, ctl, mp.NewLocal())
		assert.NoError(t, err)
		vals := make([]float64, M.Mesh.NInteriorCells())
		for i := range vals {
			vals[i] = float64(phi.Data[i])
		}
		results = append(results, vals)
	}
	for i := range results[0] {
		assert.InDelta(t, results[0][i], results[1][i], 1e-5)
		assert.InDelta(t, results[0][i], results[2][i], 1e-5)
	}
}
