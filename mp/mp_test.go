package mp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalCollectivesAreIdentity(t *testing.T) {
	m := NewLocal()
	assert.Equal(t, 0, m.HostID())
	assert.Equal(t, 1, m.NHosts())
	assert.Equal(t, 3.5, m.SumScalar(3.5))
	assert.Equal(t, 3.5, m.MaxScalar(3.5))

	out, err := m.ExchangeHalo("U", []float64{1, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, out)
}
