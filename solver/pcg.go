package solver

import (
	"math"

	"github.com/unicfd/uniflow/mp"
)

// Result reports how a scalar solve terminated.
type Result struct {
	Iterations int
	Residual   float64
	Converged  bool
}

// pcg is preconditioned conjugate gradient against s.MulVec, valid for
// the SPD systems Lap produces (pressure, wall distance, pure
// diffusion). network reduces every dot product across ranks so every
// rank takes the identical number of iterations.
func pcg(s *System, b, x0 []float64, precond Preconditioner, network mp.MP, tol float64, maxIter int) ([]float64, Result) {
	x := append([]float64{}, x0...)
	r := sub(b, s.MulVec(x))
	bNorm := globalNorm(network, b)
	if bNorm == 0 {
		bNorm = 1
	}
	res := globalNorm(network, r) / bNorm
	if res <= tol {
		return x, Result{Iterations: 0, Residual: res, Converged: true}
	}

	z := precond.Apply(r)
	p := append([]float64{}, z...)
	rz := globalDot(network, r, z)

	for iter := 1; iter <= maxIter; iter++ {
		Ap := s.MulVec(p)
		pAp := globalDot(network, p, Ap)
		if pAp == 0 {
			return x, Result{Iterations: iter - 1, Residual: res, Converged: false}
		}
		alpha := rz / pAp
		x = axpy(alpha, p, x)
		r = axpy(-alpha, Ap, r)

		res = globalNorm(network, r) / bNorm
		if res <= tol {
			return x, Result{Iterations: iter, Residual: res, Converged: true}
		}

		z = precond.Apply(r)
		rzNew := globalDot(network, r, z)
		beta := rzNew / rz
		p = axpy(beta, p, z)
		rz = rzNew
	}
	return x, Result{Iterations: maxIter, Residual: res, Converged: false}
}

func globalDot(network mp.MP, a, b []float64) float64 {
	return network.SumScalar(dot(a, b))
}

func globalNorm(network mp.MP, a []float64) float64 {
	return math.Sqrt(network.SumScalar(dot(a, a)))
}
