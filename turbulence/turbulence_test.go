package turbulence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/meshtest"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

func shearBox() *meshtest.Built {
	b := meshtest.NewBox(meshtest.Box{Nx: 4, Ny: 4, Nz: 4, Lx: 1, Ly: 1, Lz: 1})
	b.Mesh.YWall = make([]float64, b.Mesh.NCells())
	for c := 0; c < b.Mesh.NInteriorCells(); c++ {
		b.Mesh.YWall[c] = b.Mesh.Cells[c].CC[1]
	}
	return b
}

func shearVelocity(b *meshtest.Built) *field.Field[tensor.Vector] {
	U := field.NewCell[tensor.Vector]("U", field.ReadWrite, b.Mesh)
	for c := range U.Data {
		y := b.Mesh.Cells[c].CC[1]
		U.Data[c] = tensor.NewVector(2*y, 0, 0)
	}
	return U
}

func TestUStarNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, UStar(0.09, -1))
	assert.InDelta(t, math.Sqrt(math.Sqrt(0.09))*math.Sqrt(2.0), UStar(0.09, 2.0), 1e-12)
}

func TestWallDissipationMatchesLogLaw(t *testing.T) {
	ustar := 0.3
	y := 0.05
	got := WallDissipation(ustar, y)
	want := ustar * ustar * ustar / (Kappa * y)
	assert.InDelta(t, want, got, 1e-12)
	assert.Equal(t, 0.0, WallDissipation(ustar, 0))
}

func TestWallOmegaMatchesLogLaw(t *testing.T) {
	ustar, y, betaStar := 0.3, 0.05, 0.09
	got := WallOmega(ustar, y, betaStar)
	want := ustar / (math.Sqrt(betaStar) * Kappa * y)
	assert.InDelta(t, want, got, 1e-12)
}

func TestMixingLengthProducesNonNegativeViscosity(t *testing.T) {
	b := shearBox()
	U := shearVelocity(b)
	ml := NewMixingLength(b.Mesh)
	err := ml.Solve(U, 1.0, paramstore.Default(), nil)
	assert.NoError(t, err)
	for _, v := range ml.EddyViscosity().Data {
		assert.GreaterOrEqual(t, float64(v), 0.0)
	}
}

func TestMixingLengthZeroForUniformFlow(t *testing.T) {
	b := shearBox()
	U := field.NewCell[tensor.Vector]("U", field.ReadWrite, b.Mesh)
	U.Fill(tensor.NewVector(1, 0, 0))
	ml := NewMixingLength(b.Mesh)
	err := ml.Solve(U, 1.0, paramstore.Default(), nil)
	assert.NoError(t, err)
	for _, v := range ml.EddyViscosity().Data {
		assert.InDelta(t, 0.0, float64(v), 1e-9)
	}
}

func TestLESProducesNonNegativeViscosity(t *testing.T) {
	b := shearBox()
	U := shearVelocity(b)
	les := NewLES(b.Mesh)
	err := les.Solve(U, 1.0, paramstore.Default(), nil)
	assert.NoError(t, err)
	for _, v := range les.EddyViscosity().Data {
		assert.GreaterOrEqual(t, float64(v), 0.0)
	}
}

func TestNoModelIsZeroEverywhere(t *testing.T) {
	b := shearBox()
	n, err := NewModel(paramstore.NoTurbulence, b.Mesh, nil, nil)
	assert.NoError(t, err)
	mut := n.EddyViscosity()
	for _, v := range mut.Data {
		assert.Equal(t, tensor.Scalar(0), v)
	}
}

func emptyScalarBC() *bcond.Registry[tensor.Scalar] { return bcond.NewRegistry[tensor.Scalar]() }

func TestKEModelStepProducesFiniteFields(t *testing.T) {
	b := shearBox()
	U := shearVelocity(b)
	kReg, epsReg := emptyScalarBC(), emptyScalarBC()
	ke := newKEModel(b.Mesh, kReg, epsReg, standardKEConstants())

	ctl := paramstore.Default()
	ctl.Dt = 0.01
	err := ke.Solve(U, 1.0, ctl, mp.NewLocal())
	assert.NoError(t, err)
	for _, v := range ke.k.Data[:b.Mesh.NInteriorCells()] {
		assert.False(t, math.IsNaN(float64(v)))
		assert.GreaterOrEqual(t, float64(v), 0.0)
	}
	for _, v := range ke.eps.Data[:b.Mesh.NInteriorCells()] {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestKWModelStepProducesFiniteFields(t *testing.T) {
	b := shearBox()
	U := shearVelocity(b)
	kReg, wReg := emptyScalarBC(), emptyScalarBC()
	kw := NewKWModel(b.Mesh, kReg, wReg)

	ctl := paramstore.Default()
	ctl.Dt = 0.01
	err := kw.Solve(U, 1.0, ctl, mp.NewLocal())
	assert.NoError(t, err)
	for _, v := range kw.k.Data[:b.Mesh.NInteriorCells()] {
		assert.False(t, math.IsNaN(float64(v)))
	}
	for _, v := range kw.omega.Data[:b.Mesh.NInteriorCells()] {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestValidateBCsRejectsMissingPatchCoverage(t *testing.T) {
	b := shearBox()
	kReg, epsReg := emptyScalarBC(), emptyScalarBC()
	err := ValidateBCs(paramstore.KE, b.Mesh, kReg, epsReg)
	assert.Error(t, err)

	_, err = NewModel(paramstore.KW, b.Mesh, kReg, epsReg)
	assert.Error(t, err)
}

func TestValidateBCsAcceptsFullPatchCoverage(t *testing.T) {
	b := shearBox()
	kReg, epsReg := emptyScalarBC(), emptyScalarBC()
	for _, patch := range b.Mesh.SortedPatchNames() {
		k := bcond.New[tensor.Scalar]("k", patch, bcond.Neumann, 0, 0)
		assert.NoError(t, k.InitIndices(b.Mesh))
		kReg.Add(k)

		eps := bcond.New[tensor.Scalar]("epsilon", patch, bcond.Neumann, 0, 0)
		assert.NoError(t, eps.InitIndices(b.Mesh))
		epsReg.Add(eps)
	}
	assert.NoError(t, ValidateBCs(paramstore.KE, b.Mesh, kReg, epsReg))

	m, err := NewModel(paramstore.KE, b.Mesh, kReg, epsReg)
	assert.NoError(t, err)
	assert.NotNil(t, m)

	assert.NoError(t, ValidateBCs(paramstore.NoTurbulence, b.Mesh, nil, nil))
}
