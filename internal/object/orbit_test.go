package object_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/orbitclicker/internal/object"
	"github.com/tomz197/orbitclicker/internal/ship"
)

func TestOrbit_PositionThenIncrement(t *testing.T) {
	o := object.NewOrbit(400, 300, 200, 0.015, 20)
	o.Advance(1.5, ship.Companions{}, 0)

	assert.InDelta(t, 600, o.Satellite.X, 1e-9)
	assert.InDelta(t, 300, o.Satellite.Y, 1e-9)
	assert.Equal(t, 30.0, o.Satellite.Size)
	assert.InDelta(t, 0.015, o.Angle, 1e-12)

	o.Advance(1, ship.Companions{}, 0)
	assert.InDelta(t, 400+200*math.Cos(0.015), o.Satellite.X, 1e-9)
	assert.InDelta(t, 300+200*math.Sin(0.015), o.Satellite.Y, 1e-9)
}

func TestOrbit_CompanionsFollowSatellite(t *testing.T) {
	o := object.NewOrbit(400, 300, 200, 0.015, 20)
	cc := ship.Companions{Enabled: true, Count: 4, Size: 5, OrbitDistance: 30, OrbitSpeed: 2}
	o.Advance(1, cc, 0)

	require.Len(t, o.Companions, 4)
	for i, c := range o.Companions {
		want := 2*math.Pi*float64(i)/4 + 0.02
		assert.InDelta(t, want, c.Angle, 1e-9)
		assert.InDelta(t, 30, math.Hypot(c.X-o.Satellite.X, c.Y-o.Satellite.Y), 1e-9)
		assert.Equal(t, 5.0, c.Size)
	}
}

func TestOrbit_ResizePreservesPhase(t *testing.T) {
	o := object.NewOrbit(400, 300, 200, 0.015, 20)
	cc := ship.Companions{Enabled: true, Count: 2, Size: 4, OrbitDistance: 30, OrbitSpeed: 1}
	for i := 0; i < 10; i++ {
		o.Advance(1, cc, 0)
	}
	before := []float64{o.Companions[0].Angle, o.Companions[1].Angle}

	cc.Count = 3
	o.Advance(1, cc, 0)
	require.Len(t, o.Companions, 3)
	assert.InDelta(t, before[0]+0.01, o.Companions[0].Angle, 1e-9)
	assert.InDelta(t, before[1]+0.01, o.Companions[1].Angle, 1e-9)

	cc.Enabled = false
	o.Advance(1, cc, 0)
	assert.Empty(t, o.Companions)
}

func TestOrbit_ExtraCompanionsWithoutLoadout(t *testing.T) {
	o := object.NewOrbit(400, 300, 200, 0.015, 20)
	o.Advance(1, ship.Companions{Size: 4, OrbitDistance: 30, OrbitSpeed: 2}, 2)
	assert.Len(t, o.Companions, 2)
}
