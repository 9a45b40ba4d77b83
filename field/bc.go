package field

import (
	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/mp"
)

// UpdateExplicitBCs writes ghost-cell values from the BCs registered for
// this field's name and, when doBoundaries is set, performs the
// inter-rank halo exchange for PROCESSOR-tagged patches (any patch whose
// name starts with "proc"). doFluctuations selects the fluctuation-aware
// pass the PISO driver runs after the pressure correction; the rule below
// always re-derives ghost values from the current interior field, so it
// already behaves correctly for both calls.
func (f *Field[T]) UpdateExplicitBCs(reg *bcond.Registry[T], m mp.MP, doBoundaries, doFluctuations bool) {
	for _, bc := range reg.ForField(f.Name) {
		f.applyBC(bc)
	}
	if doBoundaries {
		f.exchangeProcessorHalos(m)
	}
	_ = doFluctuations
}

// FillBoundaryValues applies the registered BCs without the halo
// exchange, used by components (like wall-distance) that only need ghost
// cells consistent with a single-rank view of the field they just solved.
func (f *Field[T]) FillBoundaryValues(reg *bcond.Registry[T]) {
	for _, bc := range reg.ForField(f.Name) {
		f.applyBC(bc)
	}
}

func (f *Field[T]) applyBC(bc *bcond.Condition[T]) {
	switch bc.Kind {
	case bcond.Dirichlet:
		for _, fc := range bc.Indices() {
			f.Data[f.ghostOf(fc)] = bc.Value
		}
	case bcond.Neumann:
		for _, fc := range bc.Indices() {
			owner := f.Mesh.Faces[fc].Owner
			d := f.Mesh.Faces[fc].FC.Sub(f.Mesh.Cells[owner].CC).Mag()
			f.Data[f.ghostOf(fc)] = f.Data[owner].Add(bc.Slope.Scale(d))
		}
	case bcond.Robin:
		for _, fc := range bc.Indices() {
			owner := f.Mesh.Faces[fc].Owner
			d := f.Mesh.Faces[fc].FC.Sub(f.Mesh.Cells[owner].CC).Mag()
			a := bc.RobinA
			if a == 0 {
				a = 1
			}
			// a*ghost + b*slope*d == value, linearly combining the
			// Dirichlet and Neumann contributions.
			rhs := bc.Value.Sub(bc.Slope.Scale(bc.RobinB * d))
			f.Data[f.ghostOf(fc)] = rhs.Scale(1 / a)
		}
	case bcond.Symmetry:
		for _, fc := range bc.Indices() {
			owner := f.Mesh.Faces[fc].Owner
			f.Data[f.ghostOf(fc)] = f.Data[owner].Reflect(f.Mesh.Faces[fc].FN)
		}
	case bcond.Cyclic:
		own, ok := f.Mesh.BoundaryByName(bc.PatchName)
		paired, pairedOK := f.Mesh.BoundaryByName(bc.PairedPatch)
		if !ok || !pairedOK {
			return
		}
		for _, fc := range bc.Indices() {
			offset := fc - own.FaceStart
			matchFace := paired.FaceStart + offset
			owner := f.Mesh.Faces[matchFace].Owner
			f.Data[f.ghostOf(fc)] = f.Data[owner]
		}
	case bcond.Wall:
		// Ordinary fields degrade to Dirichlet at the BC's configured
		// value; turbulence quantities get their own log-law derivation
		// in package turbulence, applied after this generic pass runs.
		for _, fc := range bc.Indices() {
			f.Data[f.ghostOf(fc)] = bc.Value
		}
	}
}

func (f *Field[T]) ghostOf(faceID int) int {
	return f.Mesh.Faces[faceID].Neighbor
}

// exchangeProcessorHalos sends this field's owner-side values for every
// "proc*" patch to the paired rank and writes what comes back into the
// matching ghost cells. On a single-rank run mp.ExchangeHalo is a no-op
// (it returns what it was given), so this degenerates to copying each
// owner cell into its own ghost.
func (f *Field[T]) exchangeProcessorHalos(m mp.MP) {
	if f.Location != CellField {
		return
	}
	for _, b := range f.Mesh.Boundaries {
		if !isProcessorPatch(b.Name) {
			continue
		}
		n := b.FaceEnd - b.FaceStart
		if n == 0 {
			continue
		}
		width := len(f.Data[0].Flatten())
		outgoing := make([]float64, 0, n*width)
		for i := 0; i < n; i++ {
			owner := f.Mesh.Faces[b.FaceStart+i].Owner
			outgoing = append(outgoing, f.Data[owner].Flatten()...)
		}
		incoming, err := m.ExchangeHalo(b.Name, outgoing)
		if err != nil || len(incoming) != len(outgoing) {
			continue
		}
		for i := 0; i < n; i++ {
			ghost := f.Mesh.Faces[b.FaceStart+i].Neighbor
			f.Data[ghost] = f.Data[ghost].Unflatten(incoming[i*width : (i+1)*width])
		}
	}
}

func isProcessorPatch(name string) bool {
	return len(name) >= 4 && (name[:4] == "proc" || name[:4] == "PROC")
}
