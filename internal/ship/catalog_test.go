package ship_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/orbitclicker/internal/ship"
)

func TestDefault_HasAllLoadouts(t *testing.T) {
	c := ship.Default()
	for _, id := range []string{
		"default", "technical", "social", "crew", "solo", "overlord",
		"digitalGod", "transcendent", "shadowKing", "systemController", "redeemedLegend",
	} {
		_, ok := c.Get(id)
		assert.True(t, ok, "missing loadout %q", id)
	}
	def := c.MustDefault()
	assert.Equal(t, 1.0, def.Size)
	assert.Equal(t, 20.0, def.SatelliteSize(20))
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := ship.Load(strings.NewReader(`
ships:
  - id: default
    size: 1
    warp_drive: true
    weapon: { bullet_count: 1 }
`))
	require.Error(t, err)
}

func TestLoad_RequiresDefault(t *testing.T) {
	_, err := ship.Load(strings.NewReader(`
ships:
  - id: other
    size: 1
    weapon: { bullet_count: 1 }
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"default"`)
}

func TestLoad_RejectsDuplicateAndInvalid(t *testing.T) {
	_, err := ship.Load(strings.NewReader(`
ships:
  - id: default
    size: 1
    weapon: { bullet_count: 1 }
  - id: default
    size: 1
    weapon: { bullet_count: 1 }
  - id: broken
    size: 0
    weapon: { bullet_count: 0 }
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
	assert.Contains(t, err.Error(), "size must be > 0")
}

func TestIDs_Sorted(t *testing.T) {
	ids := ship.Default().IDs()
	require.NotEmpty(t, ids)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}
