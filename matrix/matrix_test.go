package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicfd/uniflow/meshtest"
	"github.com/unicfd/uniflow/tensor"
)

func buildLine(t *testing.T) *MeshMatrix[tensor.Scalar] {
	t.Helper()
	b := meshtest.NewBox(meshtest.Box{Nx: 3, Ny: 1, Nz: 1, Lx: 3, Ly: 1, Lz: 1})
	M := New[tensor.Scalar](b.Mesh)
	// A trivial tri-diagonal system: ap=2, an=1 on both sides of every
	// interior face, Su=0 — i.e. a discrete 1-D Laplacian with unit
	// spacing, which is symmetric by construction.
	for i := range M.Ap {
		M.Ap[i] = 2
	}
	for f := 0; f < b.Mesh.NFaces(); f++ {
		if !b.Mesh.IsBoundary(f) {
			M.An[0][f] = 1
			M.An[1][f] = 1
		}
	}
	return M
}

func TestMulMatchesRowDefinition(t *testing.T) {
	M := buildLine(t)
	x := []tensor.Scalar{1, 2, 3}
	y := M.Mul(x)
	// Row 0: ap*x0 - an*x1 = 2*1 - 1*2 = 0
	// Row 1: ap*x1 - an*x0 - an*x2 = 2*2 - 1*1 - 1*3 = 0
	// Row 2: ap*x2 - an*x1 = 2*3 - 1*2 = 4
	require.Len(t, y, 3)
	assert.InDelta(t, 0, float64(y[0]), 1e-12)
	assert.InDelta(t, 0, float64(y[1]), 1e-12)
	assert.InDelta(t, 4, float64(y[2]), 1e-12)
}

func TestRelaxFormula(t *testing.T) {
	M := buildLine(t)
	x := []tensor.Scalar{1, 2, 3}
	apBefore := append([]float64{}, M.Ap...)
	M.Relax(x, 0.5)
	for i := range M.Ap {
		assert.InDelta(t, apBefore[i]/0.5, M.Ap[i], 1e-12)
	}
}

func TestScaleInPlacePreservesFixedPoint(t *testing.T) {
	M := buildLine(t)
	x := []tensor.Scalar{1, 2, 3}
	before := M.Mul(x)
	M.ScaleInPlace(3.0)
	after := M.Mul(x)
	for i := range before {
		assert.InDelta(t, float64(before[i])*3.0, float64(after[i]), 1e-9)
	}
}

func TestToCSRIsSymmetricForSymmetricCoefficients(t *testing.T) {
	M := buildLine(t)
	csr := M.ToCSR()
	nr, nc := csr.Dims()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			assert.InDelta(t, csr.At(i, j), csr.At(j, i), 1e-12)
		}
	}
}
