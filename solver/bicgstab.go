package solver

import "github.com/unicfd/uniflow/mp"

// bicgstab is preconditioned BiCGStab, used against the non-symmetric
// systems Convection produces (convection-diffusion transport, momentum
// prediction).
func bicgstab(s *System, b, x0 []float64, precond Preconditioner, network mp.MP, tol float64, maxIter int) ([]float64, Result) {
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

	rHat := append([]float64{}, r...)
	rho, alpha, omega := 1.0, 1.0, 1.0
	v := make([]float64, len(x))
	p := make([]float64, len(x))

	for iter := 1; iter <= maxIter; iter++ {
		rhoNew := globalDot(network, rHat, r)
		if rhoNew == 0 {
			return x, Result{Iterations: iter - 1, Residual: res, Converged: false}
		}
		if iter == 1 {
			p = append([]float64{}, r...)
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			p = axpy(beta, axpy(-omega, v, p), r)
		}
		rho = rhoNew

		pHat := precond.Apply(p)
		v = s.MulVec(pHat)
		alpha = rho / globalDot(network, rHat, v)

		h := axpy(alpha, pHat, x)
		sres := axpy(-alpha, v, r)
		sresNorm := globalNorm(network, sres) / bNorm
		if sresNorm <= tol {
			return h, Result{Iterations: iter, Residual: sresNorm, Converged: true}
		}

		sHat := precond.Apply(sres)
		t := s.MulVec(sHat)
		tDotT := globalDot(network, t, t)
		if tDotT == 0 {
			return h, Result{Iterations: iter, Residual: sresNorm, Converged: false}
		}
		omega = globalDot(network, t, sres) / tDotT

		x = axpy(omega, sHat, h)
		r = axpy(-omega, t, sres)

		res = globalNorm(network, r) / bNorm
		if res <= tol {
			return x, Result{Iterations: iter, Residual: res, Converged: true}
		}
	}
	return x, Result{Iterations: maxIter, Residual: res, Converged: false}
}
