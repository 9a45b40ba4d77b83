package turbulence

import (
	"math"

	"github.com/unicfd/uniflow/tensor"
)

// strainMag returns |S| = sqrt(2*Sij*Sij) per cell from the velocity
// gradient tensor, S = 0.5*(gradU + gradU^T), the invariant every
// eddy-viscosity closure's production term is built from.
func strainMag(gradU []tensor.Tensor) []float64 {
	out := make([]float64, len(gradU))
	for c, g := range gradU {
		s := g.Add(g.Trn()).Scale(0.5)
		var sum float64
		for _, v := range s {
			sum += v * v
		}
		out[c] = math.Sqrt(2 * sum)
	}
	return out
}
