package paramstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicfd/uniflow/tensor"
)

func TestParseNestedBlocks(t *testing.T) {
	src := `
general {
	solver piso
	dt 0.01
	gravity 0 -9.81 0
}
turbulence {
	model KE
}
`
	blocks, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "general", blocks[0].Name)
	assert.Equal(t, "turbulence", blocks[1].Name)

	var gravity Entry
	for _, e := range blocks[0].Entries {
		if e.Key == "gravity" {
			gravity = e
		}
	}
	assert.Equal(t, []string{"0", "-9.81", "0"}, gravity.Tokens)
}

func TestParseListLiteralSpansLines(t *testing.T) {
	src := `
decomposition {
	ranks 3 {
		0
		1
		2
	}
}
`
	blocks, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Entries, 1)
	assert.Equal(t, "ranks", blocks[0].Entries[0].Key)
	assert.Equal(t, []string{"3", "{", "0", "1", "2", "}"}, blocks[0].Entries[0].Tokens)
}

func TestParseIgnoresCommentsAndSubBlocks(t *testing.T) {
	src := `
general { # trailing comment
	# a full-line comment
	dt 0.5
	sub {
		x 1
	}
}
`
	blocks, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Entries, 1)
	require.Len(t, blocks[0].Children, 1)
	assert.Equal(t, "sub", blocks[0].Children[0].Name)
}

func TestLoadControlsOverridesDefaults(t *testing.T) {
	src := `
general {
	solver transport
	dt 0.25
	end_step 50
	state TRANSIENT
}
solver {
	method BICGSTAB
	preconditioner DILU
	tolerance 1e-9
}
turbulence {
	model KE
}
`
	c, err := LoadControls(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "transport", c.Solver)
	assert.Equal(t, Transient, c.State)
	assert.InDelta(t, 0.25, c.Dt, 1e-12)
	assert.Equal(t, 50, c.EndStep)
	assert.Equal(t, BiCGStab, c.Method)
	assert.Equal(t, DILU, c.Preconditioner)
	assert.InDelta(t, 1e-9, c.Tolerance, 1e-15)
	assert.Equal(t, KE, c.TurbulenceModel)
	// Untouched defaults survive.
	assert.InDelta(t, 1.0, c.Density, 1e-12)
}

func TestLoadControlsUnknownKeyIsNotFatal(t *testing.T) {
	src := `
general {
	not_a_real_key 42
	dt 2
}
`
	c, err := LoadControls(strings.NewReader(src))
	require.NoError(t, err)
	assert.InDelta(t, 2, c.Dt, 1e-12)
}

func TestTableSetRejectsMalformedVector(t *testing.T) {
	tbl := NewTable("general")
	var gravity tensor.Vector
	tbl.EnrollVector("gravity", &gravity)
	err := tbl.Set("gravity", []string{"1", "2"})
	assert.Error(t, err)
}
