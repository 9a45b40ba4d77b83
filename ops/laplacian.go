package ops

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/matrix"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

// Lap assembles the matrix form of -div(mu*grad(phi)): positive diagonal,
// diagonally dominant, ready for a direct PCG solve against a Poisson
// right-hand side (pressure, wall distance) or addition into a transport
// matrix's implicit diffusion term without any extra sign flip at the
// call site.
//
// mu is a face field (mu_f per face); the non-orthogonal correction is
// applied on interior faces only.
func Lap[T tensor.Algebra[T]](phi *field.Field[T], mu *field.Field[tensor.Scalar], ctl *paramstore.Controls) *matrix.MeshMatrix[T] {
	m := phi.Mesh
	M := matrix.New[T](m)
	grads := componentGradients(phi)
	var zero T

	for f := 0; f < m.NFaces(); f++ {
		if m.IsBoundary(f) {
			continue
		}
		face := m.Faces[f]
		owner, neighbor := face.Owner, face.Neighbor
		a := face.FN
		d := faceDelta(m, f)
		ad := a.Dot(d)
		if ad == 0 {
			continue
		}
		muf := float64(mu.Data[f])
		coeff := muf * a.Dot(a) / ad

		M.AddAp(owner, coeff)
		M.AddAp(neighbor, coeff)
		M.AddFaceCoeff(f, 0, coeff)
		M.AddFaceCoeff(f, 1, coeff)

		delta := nonOrthoDelta(ctl.NonOrthoScheme, a, d, ad)
		correction := a.Sub(delta)
		if correction.Mag() < 1e-14 {
			continue
		}
		corr := faceGradDot(grads, owner, neighbor, face.FI, correction, zero)
		M.AddSu(owner, corr.Scale(-muf))
		M.AddSu(neighbor, corr.Scale(muf))
	}
	return M
}

// nonOrthoDelta picks the orthogonal split vector delta_f according to
// the configured non-orthogonal correction family.
func nonOrthoDelta(scheme paramstore.NonOrthoScheme, a, d tensor.Vector, ad float64) tensor.Vector {
	switch scheme {
	case paramstore.Minimum:
		d2 := d.Dot(d)
		if d2 == 0 {
			return a
		}
		return d.Scale(a.Dot(d) / d2)
	case paramstore.OrthogonalCorrection:
		if ad == 0 {
			return a
		}
		return d.Scale(a.Dot(a) / ad)
	case paramstore.OverRelaxed:
		if ad == 0 {
			return a
		}
		return a.Scale(a.Dot(a) / ad)
	default: // Orthogonal: no correction, delta == a
		return a
	}
}
