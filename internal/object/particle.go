package object

import (
	"math"

	"github.com/tomz197/orbitclicker/internal/random"
	"github.com/tomz197/orbitclicker/internal/ship"
)

// Drag and fade applied to the two particle families.
const (
	DebrisDrag = 0.98
	DebrisFade = 1.0
	TrailDrag  = 0.95
	MinFade    = 0.1
)

// Particle is a short-lived visual effect. Life counts down in ticks.
type Particle struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	Life    float64 `json:"life"`
	MaxLife float64 `json:"maxLife"`
	Color   string  `json:"color"`
	Size    float64 `json:"size"`
}

// Alpha returns the remaining-life fraction, never negative.
func (p *Particle) Alpha() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	return math.Max(0, p.Life/p.MaxLife)
}

// DrawRadius returns the fading radius, floored at MinDrawRadius.
func (p *Particle) DrawRadius() float64 {
	return math.Max(MinDrawRadius, p.Size*p.Alpha())
}

// LineWidth returns the fading stroke width, floored at MinLineWidth.
func (p *Particle) LineWidth() float64 {
	return math.Max(MinLineWidth, p.Size*p.Alpha())
}

// UpdateParticles moves every particle, applies drag, subtracts fade from its
// life and drops the dead ones. Survivors keep their order and are compacted
// into the front of ps, so the backing array is reused.
func UpdateParticles(ps []Particle, drag, fade float64) []Particle {
	kept := ps[:0]
	for i := range ps {
		p := ps[i]
		p.X += p.VX
		p.Y += p.VY
		p.Life -= fade
		p.VX *= drag
		p.VY *= drag
		if p.Life > 0 {
			kept = append(kept, p)
		}
	}
	clear(ps[len(kept):])
	return kept
}

// TrailFade returns the per-tick life decrement for a trail.
func TrailFade(t ship.Trail) float64 {
	return math.Max(MinFade, t.FadeSpeed*10)
}

// CreateTrail emits exhaust particles behind the satellite, moving away along
// the orbital tangent. Particle i sits 5+6i behind the hull and is slower,
// shorter lived and smaller than particle i-1.
func CreateTrail(sat Satellite, angle float64, t ship.Trail, src random.Source) []Particle {
	if !t.Enabled || t.ParticleCount <= 0 {
		return nil
	}
	tangent := angle - math.Pi/2
	dx, dy := math.Cos(tangent), math.Sin(tangent)
	backX := sat.X + dx*sat.Size*1.4
	backY := sat.Y + dy*sat.Size*1.4

	out := make([]Particle, 0, t.ParticleCount)
	for i := 0; i < t.ParticleCount; i++ {
		fi := float64(i)
		dist := 5 + fi*6
		speed := 1.2 - fi*0.2
		out = append(out, Particle{
			X:       backX - dx*dist + (src.Float64()-0.5)*1.5,
			Y:       backY - dy*dist + (src.Float64()-0.5)*2.5,
			VX:      -dx * speed,
			VY:      -dy * speed,
			Life:    20 + fi*10,
			MaxLife: 30 + fi*4,
			Color:   t.Color,
			Size:    math.Max(MinParticleSize, 2.5-fi*0.3),
		})
	}
	return out
}

// DebrisCount is the number of particles in a block burst.
const DebrisCount = 12

// CreateDebris emits a ring of 12 particles at a block centre.
func CreateDebris(cx, cy float64, color string, src random.Source) []Particle {
	out := make([]Particle, 0, DebrisCount)
	for i := 0; i < DebrisCount; i++ {
		a := 2 * math.Pi * float64(i) / DebrisCount
		speed := src.Float64()*3 + 2
		out = append(out, Particle{
			X:       cx,
			Y:       cy,
			VX:      math.Cos(a) * speed,
			VY:      math.Sin(a) * speed,
			Life:    40,
			MaxLife: 40,
			Color:   color,
			Size:    math.Max(1, src.Float64()*3+1),
		})
	}
	return out
}

// ExplosionRingCount is the number of particles in an explosion ring.
const ExplosionRingCount = 24

// CreateExplosionRing emits the orange ring that marks an area hit.
func CreateExplosionRing(cx, cy, radius float64, src random.Source) []Particle {
	radius = math.Max(0, radius)
	out := make([]Particle, 0, ExplosionRingCount)
	for i := 0; i < ExplosionRingCount; i++ {
		a := 2 * math.Pi * float64(i) / ExplosionRingCount
		cos, sin := math.Cos(a), math.Sin(a)
		dist := src.Float64() * radius
		speed := src.Float64()*4 + 2
		out = append(out, Particle{
			X:       cx + cos*dist,
			Y:       cy + sin*dist,
			VX:      cos * speed,
			VY:      sin * speed,
			Life:    30 + src.Float64()*20,
			MaxLife: 50,
			Color:   ColorExplosion,
			Size:    src.Float64()*4 + 2,
		})
	}
	return out
}
