// Package tensor implements the fixed-size value types that carry field
// data through the rest of the core: Scalar, Vector, Tensor and STensor.
// None of these allocate; all arithmetic is exception-free, including
// division by zero, which is left to produce IEEE infinities rather than
// panic so that a stagnating solve degrades into NaNs a caller can detect
// instead of crashing mid-assembly.
package tensor

import "math"

// Scalar is a defined float64, not an alias, so it can carry the same
// Add/Sub/Scale method set as Vector/Tensor/STensor and satisfy the
// Algebra constraint that field containers are generic over.
type Scalar float64

func (a Scalar) Add(b Scalar) Scalar   { return a + b }
func (a Scalar) Sub(b Scalar) Scalar   { return a - b }
func (a Scalar) Scale(s float64) Scalar { return Scalar(float64(a) * s) }
func (a Scalar) Mul(b Scalar) Scalar   { return a * b }
func (a Scalar) Dot(b Scalar) float64  { return float64(a * b) }
func (a Scalar) Mag() float64          { return math.Abs(float64(a)) }
func (a Scalar) Neg() Scalar           { return -a }
func (a Scalar) Flatten() []float64    { return []float64{float64(a)} }
func (a Scalar) Unflatten(v []float64) Scalar { return Scalar(v[0]) }

// Reflect is the identity for a scalar: there is no normal component to
// flip for a quantity that has no direction.
func (a Scalar) Reflect(Vector) Scalar { return a }

// Algebra is the arithmetic contract Field[T] requires of its value type:
// addition, subtraction and scaling by a plain float64, the Dot/Mag that
// field norms (Field.Norm2) are built from, Flatten/Unflatten
// for the wire format halo exchange and field-file I/O use, and Reflect
// for the SYMMETRY boundary condition rule.
type Algebra[T any] interface {
	Add(T) T
	Sub(T) T
	Scale(float64) T
	Dot(T) float64
	Mag() float64
	Flatten() []float64
	Unflatten([]float64) T
	Reflect(n Vector) T
}

// Vector is a 3-component value type.
type Vector [3]float64

func NewVector(x, y, z float64) Vector { return Vector{x, y, z} }

func (a Vector) Add(b Vector) Vector { return Vector{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vector) Sub(b Vector) Vector { return Vector{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a Vector) Scale(s float64) Vector {
	return Vector{a[0] * s, a[1] * s, a[2] * s}
}

// Mul is componentwise multiplication, used when a vector is scaled by a
// per-component Vector (e.g. anisotropic relaxation), not the dot product.
func (a Vector) Mul(b Vector) Vector { return Vector{a[0] * b[0], a[1] * b[1], a[2] * b[2]} }

// Div is componentwise division; zero denominators produce +/-Inf or NaN,
// never a panic.
func (a Vector) Div(b Vector) Vector { return Vector{a[0] / b[0], a[1] / b[1], a[2] / b[2]} }

func (a Vector) Dot(b Vector) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a Vector) Flatten() []float64 { return []float64{a[0], a[1], a[2]} }

func (a Vector) Unflatten(v []float64) Vector { return Vector{v[0], v[1], v[2]} }

// Reflect flips the component of a along the face normal n and leaves
// the tangential component unchanged, the SYMMETRY boundary rule.
func (a Vector) Reflect(n Vector) Vector {
	nn := n.Mag()
	if nn == 0 {
		return a
	}
	unit := n.Scale(1 / nn)
	normalComp := a.Dot(unit)
	return a.Sub(unit.Scale(2 * normalComp))
}

func (a Vector) Cross(b Vector) Vector {
	return Vector{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a Vector) Mag() float64 { return math.Sqrt(a.Dot(a)) }

func (a Vector) Neg() Vector { return Vector{-a[0], -a[1], -a[2]} }

// Equal does an elementwise float comparison; used by tests only, never by
// solver control flow (floats are never compared for convergence this way).
func (a Vector) Equal(b Vector) bool { return a[0] == b[0] && a[1] == b[1] && a[2] == b[2] }

// Tensor is a full 3x3, row-major.
type Tensor [9]float64

func (t Tensor) at(i, j int) float64 { return t[3*i+j] }

// Dot applies the tensor to a vector: (T . v)_i = sum_j T_ij v_j.
func (t Tensor) Dot(v Vector) Vector {
	var r Vector
	for i := 0; i < 3; i++ {
		s := 0.0
		for j := 0; j < 3; j++ {
			s += t.at(i, j) * v[j]
		}
		r[i] = s
	}
	return r
}

func (t Tensor) Trn() Tensor {
	var r Tensor
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[3*i+j] = t.at(j, i)
		}
	}
	return r
}

func (t Tensor) Add(o Tensor) Tensor {
	var r Tensor
	for i := range t {
		r[i] = t[i] + o[i]
	}
	return r
}

func (t Tensor) Scale(s float64) Tensor {
	var r Tensor
	for i := range t {
		r[i] = t[i] * s
	}
	return r
}

// Outer is the outer product a (x) b used to build the Reynolds-stress-like
// terms turbulence closures add to the momentum matrix.
func Outer(a, b Vector) Tensor {
	var t Tensor
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[3*i+j] = a[i] * b[j]
		}
	}
	return t
}

func Identity() Tensor {
	return Tensor{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// STensor is the symmetric 3x3 stored as its six independent components
// in the order xx, xy, xz, yy, yz, zz.
type STensor [6]float64

func NewSTensor(xx, xy, xz, yy, yz, zz float64) STensor {
	return STensor{xx, xy, xz, yy, yz, zz}
}

func (s STensor) Full() Tensor {
	return Tensor{
		s[0], s[1], s[2],
		s[1], s[3], s[4],
		s[2], s[4], s[5],
	}
}

func (s STensor) Add(o STensor) STensor {
	var r STensor
	for i := range s {
		r[i] = s[i] + o[i]
	}
	return r
}

func (s STensor) Scale(f float64) STensor {
	var r STensor
	for i := range s {
		r[i] = s[i] * f
	}
	return r
}

func (s STensor) Trace() float64 { return s[0] + s[3] + s[5] }

// Sqrt is an elementwise sqrt; used on squared invariants such as |grad|^2,
// never expected to see a negative input from a well-posed assembly, but it
// is exception-free regardless (NaN propagates rather than panicking).
func Sqrt(x float64) float64 { return math.Sqrt(x) }

// Mag is |x| for a plain scalar, kept for symmetry with Vector.Mag so
// operator code can write mag(x) regardless of value type.
func Mag(x float64) float64 { return math.Abs(x) }
