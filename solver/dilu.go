package solver

// DILU is the diagonal incomplete-LU preconditioner standard in
// collocated-grid FV solvers: an incomplete factorization that only
// touches the existing sparsity pattern, applied as a forward sweep
// (lower triangle) followed by a backward sweep (upper triangle), each
// using the reciprocal of the factored diagonal rD.
type DILU struct {
	sys *System
	rD  []float64
}

func (p *DILU) Setup(s *System) {
	p.sys = s
	nc := len(s.Ap)
	rD := make([]float64, nc)
	for i := range rD {
		rD[i] = s.Ap[i] + s.Sp[i]
	}
	for f := 0; f < s.Mesh.NFaces(); f++ {
		if s.Mesh.IsBoundary(f) {
			continue
		}
		face := s.Mesh.Faces[f]
		o, n := face.Owner, face.Neighbor
		if o >= nc || n >= nc || rD[o] == 0 {
			continue
		}
		rD[n] -= s.An[1][f] * s.An[0][f] / rD[o]
	}
	for i := range rD {
		if rD[i] != 0 {
			rD[i] = 1 / rD[i]
		}
	}
	p.rD = rD
}

func (p *DILU) Apply(r []float64) []float64 {
	s := p.sys
	nc := len(p.rD)
	w := make([]float64, nc)
	for i := 0; i < nc; i++ {
		w[i] = r[i] * p.rD[i]
	}
	for f := 0; f < s.Mesh.NFaces(); f++ {
		if s.Mesh.IsBoundary(f) {
			continue
		}
		face := s.Mesh.Faces[f]
		o, n := face.Owner, face.Neighbor
		if o >= nc || n >= nc {
			continue
		}
		w[n] += p.rD[n] * s.An[1][f] * w[o]
	}
	for f := s.Mesh.NFaces() - 1; f >= 0; f-- {
		if s.Mesh.IsBoundary(f) {
			continue
		}
		face := s.Mesh.Faces[f]
		o, n := face.Owner, face.Neighbor
		if o >= nc || n >= nc {
			continue
		}
		w[o] += p.rD[o] * s.An[0][f] * w[n]
	}
	return w
}
