package field

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/meshtest"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/tensor"
)

func buildTinyMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	b := meshtest.NewBox(meshtest.Box{Nx: 3, Ny: 1, Nz: 1, Lx: 3, Ly: 1, Lz: 1})
	return b.Mesh
}

func field3(m *mesh.Mesh, v0, v1, v2 float64) *Field[tensor.Scalar] {
	f := NewCell[tensor.Scalar]("", None, m)
	f.Data[0], f.Data[1], f.Data[2] = tensor.Scalar(v0), tensor.Scalar(v1), tensor.Scalar(v2)
	return f
}

func TestFieldArithmeticDoesNotAliasOperands(t *testing.T) {
	m := buildTinyMesh(t)
	a := field3(m, 1, 2, 3)
	b := field3(m, 10, 20, 30)

	sum := a.Add(b)
	ghosts := make([]tensor.Scalar, m.NCells()-3)
	require.Equal(t, append([]tensor.Scalar{1, 2, 3}, ghosts...), a.Data)
	require.Equal(t, append([]tensor.Scalar{11, 22, 33}, ghosts...), sum.Data)
}

func TestRelaxMatchesUnderRelaxationFormula(t *testing.T) {
	m := buildTinyMesh(t)
	xOld := field3(m, 0, 0, 0)
	xSolve := field3(m, 10, 10, 10)
	xSolve.Relax(xOld, 0.5)
	assert.Equal(t, append([]tensor.Scalar{5, 5, 5}, make([]tensor.Scalar, m.NCells()-3)...), xSolve.Data)
}

func TestFieldRoundTripIsBitIdentical(t *testing.T) {
	m := buildTinyMesh(t)
	f := NewCell[tensor.Scalar]("T", ReadWrite, m)
	f.Data[0] = 0.1
	f.Data[1] = 1.0 / 3.0
	f.Data[2] = -7.654321

	var buf bytes.Buffer
	require.NoError(t, f.WriteTo(&buf))

	g := NewCell[tensor.Scalar]("T", ReadWrite, m)
	require.NoError(t, g.ReadFrom(&buf))
	assert.Equal(t, f.Data, g.Data)
}

func TestHaloIdempotenceSingleRank(t *testing.T) {
	m := buildTinyMesh(t)
	reg := bcond.NewRegistry[tensor.Scalar]()
	bc := bcond.New[tensor.Scalar]("T", "x-", bcond.Dirichlet, tensor.Scalar(5), tensor.Scalar(0))
	require.NoError(t, bc.InitIndices(m))
	reg.Add(bc)

	f := NewCell[tensor.Scalar]("T", ReadWrite, m)
	loc := mp.NewLocal()
	f.UpdateExplicitBCs(reg, loc, true, false)
	snap := append([]tensor.Scalar{}, f.Data...)
	f.UpdateExplicitBCs(reg, loc, true, false)
	assert.Equal(t, snap, f.Data)
}
