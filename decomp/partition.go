// Package decomp reads the YAML decomposition sidecar an external
// partitioning tool produces: which cell ranges this rank owns, out of
// how many ranks total. It is read-only and descriptive; nothing in
// this package computes a partition, only loads one.
package decomp

import (
	"fmt"
	"io"

	"github.com/ghodss/yaml"
)

// CellRange is a half-open [Start,End) run of global cell indices owned
// by one rank.
type CellRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// PartitionMap is the rank's view of a decomposition: its own identity
// plus the cell ranges it owns. Ranges need not be contiguous across
// ranks; a rank may own several disjoint runs.
type PartitionMap struct {
	Rank   int         `json:"rank"`
	NRanks int         `json:"nRanks"`
	Ranges []CellRange `json:"ranges"`
}

// Load parses a decomposition sidecar. It does not validate that the
// union of all ranks' ranges covers the mesh; that check belongs to
// whatever produced the sidecar, not to the rank reading its own slice
// of it.
func Load(r io.Reader) (*PartitionMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decomp: reading partition map: %w", err)
	}
	pm := &PartitionMap{}
	if err := yaml.Unmarshal(data, pm); err != nil {
		return nil, fmt.Errorf("decomp: parsing partition map: %w", err)
	}
	return pm, nil
}

// Owns reports whether global cell index c falls in one of this rank's
// ranges.
func (pm *PartitionMap) Owns(c int) bool {
	for _, rg := range pm.Ranges {
		if c >= rg.Start && c < rg.End {
			return true
		}
	}
	return false
}
