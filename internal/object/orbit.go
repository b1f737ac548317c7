package object

import (
	"math"

	"github.com/tomz197/orbitclicker/internal/ship"
)

// Satellite is the player's orbiting ship.
type Satellite struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Companion is a drone orbiting the satellite.
type Companion struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	Size  float64 `json:"size"`
}

// CompanionSpeedScale converts configured companion orbit speed to radians per tick.
const CompanionSpeedScale = 0.01

// Orbit drives the satellite around the planet and the companions around the
// satellite. All quantities advance once per tick.
type Orbit struct {
	CenterX  float64
	CenterY  float64
	Radius   float64
	Speed    float64 // radians per tick
	BaseSize float64 // hull size before the loadout multiplier

	Angle         float64
	AnimationTime float64
	Satellite     Satellite
	Companions    []Companion
}

// NewOrbit places the satellite at angle 0.
func NewOrbit(cx, cy, radius, speed, baseSize float64) *Orbit {
	o := &Orbit{CenterX: cx, CenterY: cy, Radius: radius, Speed: speed, BaseSize: baseSize}
	o.Satellite = Satellite{X: cx + radius, Y: cy, Size: baseSize}
	return o
}

// Advance positions the satellite at the current angle, then increments the
// angle. Companions are resized to the configured count and orbit the
// satellite's new position. extra adds companions beyond the loadout's count.
func (o *Orbit) Advance(hullSize float64, cc ship.Companions, extra int) {
	o.Satellite.X = o.CenterX + math.Cos(o.Angle)*o.Radius
	o.Satellite.Y = o.CenterY + math.Sin(o.Angle)*o.Radius
	o.Satellite.Size = o.BaseSize * hullSize
	o.Angle += o.Speed
	o.AnimationTime += 0.1

	count := extra
	if cc.Enabled {
		count += cc.Count
	}
	o.ResizeCompanions(count, cc.Size)

	for i := range o.Companions {
		c := &o.Companions[i]
		c.Angle += cc.OrbitSpeed * CompanionSpeedScale
		c.X = o.Satellite.X + math.Cos(c.Angle)*cc.OrbitDistance
		c.Y = o.Satellite.Y + math.Sin(c.Angle)*cc.OrbitDistance
	}
}

// ResizeCompanions grows or shrinks the companion set to n. Existing
// companions keep their phase; new ones are spaced evenly at 2*pi*i/n.
func (o *Orbit) ResizeCompanions(n int, size float64) {
	if n <= 0 {
		o.Companions = o.Companions[:0]
		return
	}
	if len(o.Companions) > n {
		o.Companions = o.Companions[:n]
	}
	for i := len(o.Companions); i < n; i++ {
		o.Companions = append(o.Companions, Companion{
			Angle: 2 * math.Pi * float64(i) / float64(n),
			X:     o.Satellite.X,
			Y:     o.Satellite.Y,
		})
	}
	for i := range o.Companions {
		o.Companions[i].Size = size
	}
}
