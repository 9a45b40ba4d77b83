package drivers

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

func scalarBC(b *meshtest.Built, fieldName string, lo, hi float64) *bcond.Registry[tensor.Scalar] {
	reg := bcond.NewRegistry[tensor.Scalar]()
	for i, patch := range b.Patches {
		v := hi
		if i == 0 {
			v = lo
		}
		c := bcond.New[tensor.Scalar](fieldName, patch, bcond.Dirichlet, tensor.Scalar(v), 0)
		if err := c.InitIndices(b.Mesh); err != nil {
			panic(err)
		}
		reg.Add(c)
	}
	return reg
}

func vectorBC(b *meshtest.Built, fieldName string) *bcond.Registry[tensor.Vector] {
	reg := bcond.NewRegistry[tensor.Vector]()
	for _, patch := range b.Patches {
		c := bcond.New[tensor.Vector](fieldName, patch, bcond.Dirichlet, tensor.NewVector(1, 0, 0), tensor.Vector{})
		if err := c.InitIndices(b.Mesh); err != nil {
			panic(err)
		}
		reg.Add(c)
	}
	return reg
}

func TestDiffusionConvergesTowardBoundaryValues(t *testing.T) {
	b := meshtest.NewBox(meshtest.Box{Nx: 6, Ny: 1, Nz: 1, Lx: 1, Ly: 1, Lz: 1})
	tBC := scalarBC(b, "T", 0, 1)

	ctl := paramstore.Default()
	d := NewDiffusion(b.Mesh, ctl, tBC, mp.NewLocal())
	for i := 0; i < 200; i++ {
		if err := d.Step(i); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	nc := b.Mesh.NInteriorCells()
	for c := 0; c < nc; c++ {
		v := float64(d.T.Data[c])
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, -1e-9)
		assert.LessOrEqual(t, v, 1+1e-9)
	}
	assert.Less(t, float64(d.T.Data[0]), float64(d.T.Data[nc-1]))
}

func TestPotentialCorrectionReducesDivergence(t *testing.T) {
	b := meshtest.NewBox(meshtest.Box{Nx: 4, Ny: 4, Nz: 4, Lx: 1, Ly: 1, Lz: 1})
	uBC := vectorBC(b, "U")
	pBC := scalarBC(b, "p", 0, 0)

	po := NewPotential(b.Mesh, paramstore.Default(), uBC, pBC, mp.NewLocal())
	err := po.Solve()
	assert.NoError(t, err)

	for _, v := range po.U.Data {
		assert.False(t, math.IsNaN(v[0]))
	}
}

func TestPISOStepProducesFiniteFields(t *testing.T) {
	b := meshtest.NewBox(meshtest.Box{Nx: 3, Ny: 3, Nz: 3, Lx: 1, Ly: 1, Lz: 1})
	uBC := vectorBC(b, "U")
	pBC := scalarBC(b, "p", 0, 0)

	ctl := paramstore.Default()
	ctl.State = paramstore.Steady

	p := NewPISO(b.Mesh, ctl, uBC, pBC, nil, mp.NewLocal())
	err := p.Step(0)
	assert.NoError(t, err)

	for _, v := range p.U.Data {
		for k := 0; k < 3; k++ {
			assert.False(t, math.IsNaN(v[k]))
		}
	}
	for _, v := range p.P.Data {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestPISOLESAverageSnapshotRoundTrips(t *testing.T) {
	b := meshtest.NewBox(meshtest.Box{Nx: 2, Ny: 2, Nz: 2, Lx: 1, Ly: 1, Lz: 1})
	uBC := vectorBC(b, "U")
	pBC := scalarBC(b, "p", 0, 0)

	ctl := paramstore.Default()
	p := NewPISO(b.Mesh, ctl, uBC, pBC, nil, mp.NewLocal())
	p.EnableLESAverage()

	U := field.NewCell[tensor.Vector]("", field.None, b.Mesh)
	U.Fill(tensor.NewVector(1, 2, 3))
	P := field.NewCell[tensor.Scalar]("", field.None, b.Mesh)
	P.Fill(tensor.Scalar(5))

	p.avg.accumulate(U, P)
	p.avg.accumulate(U, P)
	before := p.avg.Uavg.Clone()

	Uavg, Ustd, pavg, pstd := p.WriteAverages(2)
	assert.InDelta(t, 1.0, Uavg.Data[0][0], 1e-9)
	assert.InDelta(t, 0.0, Ustd.Data[0][0], 1e-6)
	assert.InDelta(t, 5.0, float64(pavg.Data[0]), 1e-9)
	assert.InDelta(t, 0.0, float64(pstd.Data[0]), 1e-6)

	for i := range p.avg.Uavg.Data {
		assert.Equal(t, before.Data[i], p.avg.Uavg.Data[i])
	}
}
