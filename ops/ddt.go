package ops

import (
	"fmt"

	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/matrix"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
)

// History holds the time levels a multi-step scheme needs beyond the
// current field value: Prev[0] is phi at the end of the previous step,
// Prev[1] two steps back, and so on. A driver owns one History per
// time-stepped field and advances it once per step after Ddt has been
// used to assemble that step's matrix.
type History[T tensor.Algebra[T]] struct {
	Prev []*field.Field[T]
}

// NewHistory allocates a History with n time levels, each a clone of
// initial (so BDF2's first step has a sane phi^{n-2} before enough
// history has accumulated).
func NewHistory[T tensor.Algebra[T]](initial *field.Field[T], n int) *History[T] {
	h := &History[T]{Prev: make([]*field.Field[T], n)}
	for i := range h.Prev {
		h.Prev[i] = initial.Clone()
	}
	return h
}

// Advance pushes current onto the history, oldest value dropped.
func (h *History[T]) Advance(current *field.Field[T]) {
	for i := len(h.Prev) - 1; i > 0; i-- {
		h.Prev[i].Assign(h.Prev[i-1])
	}
	if len(h.Prev) > 0 {
		h.Prev[0].Assign(current)
	}
}

// Ddt assembles the time-derivative matrix per ctl.TimeScheme:
//
//	EULER, BDF1: ap += rho*V/dt, Su += rho*V*phi_old/dt
//	BDF2: ap += 1.5*rho*V/dt, Su += rho*V/dt*(2*phi_old - 0.5*phi_oldold)
//	RUNGE_KUTTA: ap += rho*V/(ImplicitFactor*dt), one explicit stage
//
// rho is taken as a uniform density; a variable-density field is
// outside this core's incompressible-flow scope.
func Ddt[T tensor.Algebra[T]](phi *field.Field[T], rho float64, hist *History[T], ctl *paramstore.Controls) *matrix.MeshMatrix[T] {
	m := phi.Mesh
	M := matrix.New[T](m)
	dt := ctl.Dt
	if dt <= 0 {
		panic(fmt.Sprintf("ops: Ddt requires a positive time step, got %g", dt))
	}

	switch ctl.TimeScheme {
	case paramstore.BDF2:
		if len(hist.Prev) < 2 {
			panic("ops: BDF2 requires a History with at least 2 time levels")
		}
		for c := 0; c < m.NInteriorCells(); c++ {
			coeff := 1.5 * rho * m.Cells[c].CV / dt
			M.AddAp(c, coeff)
			old1 := hist.Prev[0].Data[c].Scale(2 * rho * m.Cells[c].CV / dt)
			old2 := hist.Prev[1].Data[c].Scale(0.5 * rho * m.Cells[c].CV / dt)
			M.AddSu(c, old1.Sub(old2))
		}
	case paramstore.RungeKutta:
		alpha := ctl.ImplicitFactor
		if alpha <= 0 {
			alpha = 1
		}
		for c := 0; c < m.NInteriorCells(); c++ {
			coeff := rho * m.Cells[c].CV / (alpha * dt)
			M.AddAp(c, coeff)
			M.AddSu(c, hist.Prev[0].Data[c].Scale(coeff))
		}
	default: // EULER, BDF1: first-order backward Euler
		for c := 0; c < m.NInteriorCells(); c++ {
			coeff := rho * m.Cells[c].CV / dt
			M.AddAp(c, coeff)
			M.AddSu(c, hist.Prev[0].Data[c].Scale(coeff))
		}
	}
	return M
}
