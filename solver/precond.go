package solver

import "github.com/unicfd/uniflow/paramstore"

// Preconditioner computes z = M^-1 r for some approximation M of the
// system matrix. Setup is called once per System; Apply may be called
// many times against different residuals during one solve.
type Preconditioner interface {
	Setup(s *System)
	Apply(r []float64) []float64
}

// NewPreconditioner builds the preconditioner ctl.Preconditioner names.
func NewPreconditioner(kind paramstore.Preconditioner, ctl *paramstore.Controls) Preconditioner {
	switch kind {
	case paramstore.DILU:
		return &DILU{}
	case paramstore.SOR:
		return &SOR{omega: ctl.SOROmega}
	default:
		return &Diag{}
	}
}

// Diag is Jacobi preconditioning: z[i] = r[i] / (Ap[i]+Sp[i]).
type Diag struct {
	inv []float64
}

func (p *Diag) Setup(s *System) {
	p.inv = make([]float64, len(s.Ap))
	for i := range p.inv {
		d := s.Ap[i] + s.Sp[i]
		if d != 0 {
			p.inv[i] = 1 / d
		}
	}
}

func (p *Diag) Apply(r []float64) []float64 {
	z := make([]float64, len(r))
	for i := range r {
		z[i] = r[i] * p.inv[i]
	}
	return z
}
