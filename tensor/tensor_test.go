package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorArithmetic(t *testing.T) {
	a := NewVector(1, 2, 3)
	b := NewVector(4, 5, 6)

	assert.Equal(t, NewVector(5, 7, 9), a.Add(b))
	assert.Equal(t, NewVector(-3, -3, -3), a.Sub(b))
	assert.Equal(t, 32.0, a.Dot(b))
	assert.Equal(t, NewVector(-3, 6, -3), a.Cross(b))
	assert.InDelta(t, math.Sqrt(14), a.Mag(), 1e-12)
}

func TestVectorDivByZeroIsNotFatal(t *testing.T) {
	a := NewVector(1, -1, 0)
	z := NewVector(0, 0, 0)
	r := a.Div(z)
	assert.True(t, math.IsInf(r[0], 1))
	assert.True(t, math.IsInf(r[1], -1))
	assert.True(t, math.IsNaN(r[2]))
}

func TestTensorIdentityDot(t *testing.T) {
	v := NewVector(3, -1, 2)
	assert.Equal(t, v, Identity().Dot(v))
}

func TestTensorTranspose(t *testing.T) {
	tn := Outer(NewVector(1, 2, 3), NewVector(4, 5, 6))
	assert.Equal(t, tn, tn.Trn().Trn())
	assert.NotEqual(t, tn, tn.Trn())
}

func TestSTensorFullIsSymmetric(t *testing.T) {
	s := NewSTensor(1, 2, 3, 4, 5, 6)
	full := s.Full()
	assert.Equal(t, full, full.Trn())
}
