package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/meshtest"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

func box(nx, ny, nz int) *meshtest.Built {
	return meshtest.NewBox(meshtest.Box{Nx: nx, Ny: ny, Nz: nz, Lx: 1, Ly: 1, Lz: 1})
}

// linear phi = a.CC + c is exactly reproduced by Green-Gauss on a
// uniform orthogonal mesh: Grad(phi) should equal a at every cell.
func TestGradLinearExactness(t *testing.T) {
	b := box(4, 4, 4)
	m := b.Mesh
	a := tensor.NewVector(2, -1, 3)
	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	for i := range phi.Data {
		phi.Data[i] = tensor.Scalar(a.Dot(m.Cells[i].CC) + 5)
	}

	g := Grad(phi)
	for c := 0; c < m.NInteriorCells(); c++ {
		assert.InDelta(t, a[0], g.Data[c][0], 1e-9)
		assert.InDelta(t, a[1], g.Data[c][1], 1e-9)
		assert.InDelta(t, a[2], g.Data[c][2], 1e-9)
	}
}

// div(U) of a uniform field is exactly zero everywhere (no sources, no
// sinks); this also exercises Flx's face interpolation, since Div and
// Flx both route through faceValue.
func TestDivUniformFieldIsZero(t *testing.T) {
	b := box(3, 3, 3)
	m := b.Mesh
	U := field.NewCell[tensor.Vector]("", field.None, m)
	U.Fill(tensor.NewVector(1, 2, 3))

	d := Div(U)
	for c := 0; c < m.NInteriorCells(); c++ {
		assert.InDelta(t, 0, float64(d.Data[c]), 1e-9)
	}
}

// Flx of a constant velocity field across the unit box sums to zero net
// mass flow through the domain's own interior cells (mass conservation).
func TestFlxUniformFieldNetZeroPerCell(t *testing.T) {
	b := box(3, 3, 3)
	m := b.Mesh
	U := field.NewCell[tensor.Vector]("", field.None, m)
	U.Fill(tensor.NewVector(1, 0, 0))
	flx := Flx(U)

	for c := 0; c < m.NInteriorCells(); c++ {
		var sum float64
		for _, f := range m.FacesOf(c) {
			sign := 1.0
			if m.Side(f, c) == 1 {
				sign = -1
			}
			sum += sign * float64(flx.Data[f])
		}
		assert.InDelta(t, 0, sum, 1e-9)
	}
}

// Lap's face coefficients are symmetric (An[0][f] == An[1][f]) by
// construction: both sides of an interior face share the same
// coeff = mu_f*|A_f|^2/(A_f.d_f) term.
func TestLapSymmetricCoefficients(t *testing.T) {
	b := box(3, 3, 3)
	m := b.Mesh
	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	mu := field.NewFace[tensor.Scalar]("", field.None, m)
	mu.Fill(tensor.Scalar(0.4))
	ctl := paramstore.Default()

	M := Lap(phi, mu, ctl)
	for f := 0; f < m.NFaces(); f++ {
		if m.IsBoundary(f) {
			continue
		}
		assert.InDelta(t, M.An[0][f], M.An[1][f], 1e-12)
	}
}

// Lap assembled against a uniform mu is positive-diagonal and every
// off-diagonal is non-negative, the diagonal-dominance property a PCG
// solve against it relies on.
func TestLapDiagonallyDominant(t *testing.T) {
	b := box(3, 3, 3)
	m := b.Mesh
	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	mu := field.NewFace[tensor.Scalar]("", field.None, m)
	mu.Fill(tensor.Scalar(1))
	ctl := paramstore.Default()

	M := Lap(phi, mu, ctl)
	for c := 0; c < m.NInteriorCells(); c++ {
		assert.Greater(t, M.Ap[c], 0.0)
		var offSum float64
		for _, f := range m.FacesOf(c) {
			if m.IsBoundary(f) {
				continue
			}
			side := m.Side(f, c)
			assert.GreaterOrEqual(t, M.An[side][f], 0.0)
			offSum += M.An[side][f]
		}
		assert.GreaterOrEqual(t, M.Ap[c]+1e-9, offSum)
	}
}

// Ddt under EULER assembles a positive diagonal rho*V/dt and an Su term
// equal to that coefficient times the previous time level.
func TestDdtEuler(t *testing.T) {
	b := box(2, 2, 2)
	m := b.Mesh
	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	for i := range phi.Data {
		phi.Data[i] = tensor.Scalar(1)
	}
	hist := NewHistory(phi, 1)

	ctl := paramstore.Default()
	ctl.Dt = 0.1
	ctl.TimeScheme = paramstore.Euler
	rho := 1.2

	M := Ddt(phi, rho, hist, ctl)
	for c := 0; c < m.NInteriorCells(); c++ {
		coeff := rho * m.Cells[c].CV / ctl.Dt
		assert.InDelta(t, coeff, M.Ap[c], 1e-9)
		assert.InDelta(t, coeff*1, float64(M.Su[c]), 1e-9)
	}
}

// History.Advance rotates time levels: after advancing twice with
// distinct snapshots, Prev[0] holds the most recent and Prev[1] the one
// before it.
func TestHistoryAdvanceRotatesLevels(t *testing.T) {
	b := box(2, 2, 2)
	m := b.Mesh
	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	phi.Fill(tensor.Scalar(1))
	hist := NewHistory(phi, 2)

	phi.Fill(tensor.Scalar(2))
	hist.Advance(phi)
	phi.Fill(tensor.Scalar(3))
	hist.Advance(phi)

	assert.Equal(t, tensor.Scalar(3), hist.Prev[0].Data[0])
	assert.Equal(t, tensor.Scalar(2), hist.Prev[1].Data[0])
}

// Convection's implicit UDS coefficients are bounded by the face flux
// magnitude: Ap's convective contribution never exceeds sum(|F|), the
// boundedness property that makes pure upwinding unconditionally stable.
func TestConvectionUDSBounded(t *testing.T) {
	b := box(3, 3, 3)
	m := b.Mesh
	phi := field.NewCell[tensor.Scalar]("", field.None, m)
	F := field.NewFace[tensor.Scalar]("", field.None, m)
	for f := range F.Data {
		F.Data[f] = tensor.Scalar(0.5)
	}
	ctl := paramstore.Default()
	ctl.ConvectionScheme = paramstore.UDS

	M := Convection[tensor.Scalar](phi, F, nil, ctl)
	for c := 0; c < m.NInteriorCells(); c++ {
		var faceFluxSum float64
		for _, f := range m.FacesOf(c) {
			if m.IsBoundary(f) {
				continue
			}
			faceFluxSum += math.Abs(float64(F.Data[f]))
		}
		assert.LessOrEqual(t, M.Ap[c], faceFluxSum+1e-9)
	}
}
