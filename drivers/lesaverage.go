package drivers

import (
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/tensor"
)

// lesAverage holds the running sums PISO.EnableLESAverage turns on: Uavg/pavg
// accumulate the field itself, Ustd/pstd accumulate its square. Both stay in
// running-sum form between accumulate calls; snapshot is the only place they
// are ever seen as an actual mean/std, and only for the duration of a write.
type lesAverage struct {
	Uavg, Ustd *field.Field[tensor.Vector]
	pavg, pstd *field.Field[tensor.Scalar]
}

func newLESAverage(m *mesh.Mesh) *lesAverage {
	return &lesAverage{
		Uavg: field.NewCell[tensor.Vector]("Uavg", field.ReadWrite, m),
		Ustd: field.NewCell[tensor.Vector]("Ustd", field.ReadWrite, m),
		pavg: field.NewCell[tensor.Scalar]("pavg", field.ReadWrite, m),
		pstd: field.NewCell[tensor.Scalar]("pstd", field.ReadWrite, m),
	}
}

func (a *lesAverage) accumulate(U *field.Field[tensor.Vector], P *field.Field[tensor.Scalar]) {
	a.Uavg.AddInPlace(U)
	a.pavg.AddInPlace(P)
	for i := range a.Ustd.Data {
		a.Ustd.Data[i] = a.Ustd.Data[i].Add(U.Data[i].Mul(U.Data[i]))
	}
	for i := range a.pstd.Data {
		a.pstd.Data[i] = a.pstd.Data[i].Add(P.Data[i] * P.Data[i])
	}
}

// snapshot converts the n-step running sums to mean/std, returns them, and
// restores the running sums so accumulate keeps working afterward. Ustd's
// variance identity (Us - Ua^2/n)/n falls out of the original's
// Ustd += Uavg*(n*Uavg-2*Ua) step once Uavg has already been divided by n;
// done here directly rather than replayed through that intermediate form.
func (a *lesAverage) snapshot(n float64) (Uavg, Ustd *field.Field[tensor.Vector], pavg, pstd *field.Field[tensor.Scalar]) {
	Ua := a.Uavg.Clone()
	Us := a.Ustd.Clone()
	pa := a.pavg.Clone()
	ps := a.pstd.Clone()

	mean := make([]tensor.Vector, len(a.Uavg.Data))
	for i := range mean {
		mean[i] = Ua.Data[i].Scale(1 / n)
	}
	uVar := make([]tensor.Vector, len(mean))
	for i := range uVar {
		m2 := mean[i].Mul(mean[i])
		uVar[i] = Us.Data[i].Scale(1 / n).Sub(m2)
	}
	uOut := &field.Field[tensor.Vector]{Access: field.None, Location: field.CellField, Mesh: a.Uavg.Mesh, Data: mean}
	sOut := &field.Field[tensor.Vector]{Access: field.None, Location: field.CellField, Mesh: a.Ustd.Mesh, Data: sqrtVectorClamped(uVar)}

	pMean := make([]tensor.Scalar, len(a.pavg.Data))
	pVar := make([]tensor.Scalar, len(pMean))
	for i := range pMean {
		pMean[i] = pa.Data[i] / tensor.Scalar(n)
		pVar[i] = ps.Data[i]/tensor.Scalar(n) - pMean[i]*pMean[i]
	}
	pOut := &field.Field[tensor.Scalar]{Access: field.None, Location: field.CellField, Mesh: a.pavg.Mesh, Data: pMean}
	psOut := &field.Field[tensor.Scalar]{Access: field.None, Location: field.CellField, Mesh: a.pstd.Mesh, Data: sqrtScalarClamped(pVar)}

	a.Uavg.Assign(Ua)
	a.Ustd.Assign(Us)
	a.pavg.Assign(pa)
	a.pstd.Assign(ps)

	return uOut, sOut, pOut, psOut
}

func sqrtVectorClamped(v []tensor.Vector) []tensor.Vector {
	out := make([]tensor.Vector, len(v))
	for i, x := range v {
		var r tensor.Vector
		for k := 0; k < 3; k++ {
			if x[k] < 0 {
				x[k] = 0
			}
			r[k] = tensor.Sqrt(x[k])
		}
		out[i] = r
	}
	return out
}

func sqrtScalarClamped(v []tensor.Scalar) []tensor.Scalar {
	out := make([]tensor.Scalar, len(v))
	for i, x := range v {
		if x < 0 {
			x = 0
		}
		out[i] = tensor.Scalar(tensor.Sqrt(float64(x)))
	}
	return out
}
