package bcond_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/meshtest"
	"github.com/unicfd/uniflow/tensor"
)

func TestRegistryAddGetForField(t *testing.T) {
	reg := bcond.NewRegistry[tensor.Scalar]()
	a := bcond.New[tensor.Scalar]("T", "x-", bcond.Dirichlet, 1, 0)
	b := bcond.New[tensor.Scalar]("T", "x+", bcond.Neumann, 0, 0)
	other := bcond.New[tensor.Scalar]("p", "x-", bcond.Neumann, 0, 0)
	reg.Add(a)
	reg.Add(b)
	reg.Add(other)

	got, ok := reg.Get("T", "x-")
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = reg.Get("T", "no-such-patch")
	assert.False(t, ok)

	tConds := reg.ForField("T")
	assert.Len(t, tConds, 2)
}

func TestInitIndicesRejectsUnknownPatch(t *testing.T) {
	built := meshtest.NewBox(meshtest.Box{Nx: 2, Ny: 2, Nz: 2, Lx: 1, Ly: 1, Lz: 1})
	c := bcond.New[tensor.Scalar]("T", "does-not-exist", bcond.Dirichlet, 1, 0)
	err := c.InitIndices(built.Mesh)
	assert.Error(t, err)
}

func TestInitIndicesIsOneShot(t *testing.T) {
	built := meshtest.NewBox(meshtest.Box{Nx: 2, Ny: 2, Nz: 2, Lx: 1, Ly: 1, Lz: 1})
	c := bcond.New[tensor.Scalar]("T", "x-", bcond.Dirichlet, 1, 0)

	assert.NoError(t, c.InitIndices(built.Mesh))
	assert.NotEmpty(t, c.Indices())

	err := c.InitIndices(built.Mesh)
	assert.Error(t, err, "a second InitIndices call must fail rather than silently re-populate")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "DIRICHLET", bcond.Dirichlet.String())
	assert.Equal(t, "NEUMANN", bcond.Neumann.String())
	assert.Equal(t, "SYMMETRY", bcond.Symmetry.String())
	assert.Equal(t, "UNKNOWN", bcond.Kind(99).String())
}
