package weapon

import (
	"math"

	"github.com/tomz197/orbitclicker/internal/object"
	"github.com/tomz197/orbitclicker/internal/physics"
)

// Result collects the outcome of one resolution pass.
type Result struct {
	// Destroyed counts blocks that transitioned to destroyed.
	Destroyed int
	// Blocks holds a copy of each destroyed block, in destruction order.
	Blocks []object.Block
	// Particles are the debris and explosion effects to spawn.
	Particles []object.Particle
}

func (r *Result) destroyed(b object.Block) {
	r.Destroyed++
	r.Blocks = append(r.Blocks, b)
}

// ExplosionDamage is the damage dealt at distance d from the centre of an
// explosion of radius r. It falls off linearly and never drops below 1.
func ExplosionDamage(d, r, multiplier float64) float64 {
	return math.Max(1, multiplier*physics.Falloff(d, r))
}

// Resolve tests every projectile against the planet, applies damage, and
// drops projectiles that were used up or left bounds. Survivors are compacted
// into the front of ps in their original order.
//
// Each projectile hits the first live block (in block order) whose centre is
// strictly within half a block of it, not the nearest one. A piercing
// projectile never hits the same block twice, so it damages distinct blocks
// along its path.
func (s *System) Resolve(ps []object.Projectile, planet *object.Planet, bounds object.Bounds) ([]object.Projectile, Result) {
	var res Result
	kept := ps[:0]
	for i := range ps {
		p := ps[i]
		s.resolveOne(&p, planet, &res)
		if p.IsDestroyed() {
			continue
		}
		if p.OutOfBounds(bounds) {
			continue
		}
		kept = append(kept, p)
	}
	clear(ps[len(kept):])
	return kept, res
}

func (s *System) resolveOne(p *object.Projectile, planet *object.Planet, res *Result) {
	for _, idx := range planet.HitCandidates(p.X, p.Y, planet.HitReach()) {
		b := &planet.Blocks[idx]
		if b.Destroyed || p.Pierced(planet.Generation, idx) {
			continue
		}
		cx, cy := b.Center()
		damage := p.Damage
		if damage <= 0 {
			damage = 1
		}
		if b.Damage(damage) {
			res.destroyed(*b)
		}

		switch {
		case p.Explosive:
			res.Particles = append(res.Particles, object.CreateDebris(cx, cy, b.Color(), s.src)...)
			s.explode(cx, cy, p.ExplosionRadius, planet, res)
			p.MarkDestroyed()
			return

		case p.Piercing && p.PierceRemaining > 0:
			p.PierceRemaining--
			p.MarkPierced(planet.Generation, idx)
			res.Particles = append(res.Particles, object.CreateDebris(cx, cy, b.Color(), s.src)...)
			if p.PierceRemaining > 0 {
				continue
			}
			return

		default:
			res.Particles = append(res.Particles, object.CreateDebris(cx, cy, b.Color(), s.src)...)
			p.MarkDestroyed()
			return
		}
	}
}

// Explode damages every live block within radius of (cx, cy) and returns the
// outcome. Damage uses the current decision damage multiplier.
func (s *System) Explode(cx, cy, radius float64, planet *object.Planet) Result {
	var res Result
	s.explode(cx, cy, radius, planet, &res)
	return res
}

func (s *System) explode(cx, cy, radius float64, planet *object.Planet, res *Result) {
	if radius > 0 {
		for _, idx := range planet.BlocksWithin(cx, cy, radius) {
			b := &planet.Blocks[idx]
			bx, by := b.Center()
			d := physics.Distance(bx, by, cx, cy)
			if b.Damage(ExplosionDamage(d, radius, s.upgrades.DamageMultiplier)) {
				res.destroyed(*b)
			}
			res.Particles = append(res.Particles, object.CreateDebris(bx, by, b.Color(), s.src)...)
		}
	}
	res.Particles = append(res.Particles, object.CreateExplosionRing(cx, cy, radius, s.src)...)
}
