// Package object holds the simulation entities: planet blocks, projectiles,
// particles and the orbiting satellite.
package object

// Bounds is the rectangular play area. Projectiles leaving it are discarded.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether (x, y) lies inside the closed rectangle.
func (b Bounds) Contains(x, y float64) bool {
	return x >= 0 && x <= b.Width && y >= 0 && y <= b.Height
}

// Epsilon floors applied when deriving render sizes from shrinking values.
const (
	MinDrawRadius   = 0.5
	MinLineWidth    = 0.1
	MinParticleSize = 0.5
)

// Palette shared by the entities and the renderers.
const (
	ColorHigh      = "#00FF41"
	ColorMedium    = "#FFD700"
	ColorLow       = "#FF073A"
	ColorDestroyed = "#FF073A"
	ColorExplosion = "#FF6B00"
)
