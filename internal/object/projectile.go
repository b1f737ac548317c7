package object

// Projectile speed in world units per tick and its rendered size.
const (
	ProjectileSpeed = 6.0
	ProjectileSize  = 3.0
)

// Projectile is a bullet travelling toward the planet.
type Projectile struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	VX              float64 `json:"vx"`
	VY              float64 `json:"vy"`
	Size            float64 `json:"size"`
	Damage          float64 `json:"damage"`
	Kind            string  `json:"kind,omitempty"`
	Color           string  `json:"color,omitempty"`
	Piercing        bool    `json:"piercing,omitempty"`
	PierceRemaining int     `json:"pierceRemaining,omitempty"`
	Explosive       bool    `json:"explosive,omitempty"`
	ExplosionRadius float64 `json:"explosionRadius,omitempty"`

	destroyed bool
	// pierced holds the indices of blocks already passed through on planet
	// generation piercedGen.
	pierced    []int
	piercedGen int
}

// Move advances the projectile by one tick of velocity.
func (p *Projectile) Move() {
	p.X += p.VX
	p.Y += p.VY
}

// OutOfBounds reports whether the projectile has left the play area.
func (p *Projectile) OutOfBounds(b Bounds) bool {
	return !b.Contains(p.X, p.Y)
}

// Pierced reports whether the projectile already passed through block idx of
// the given planet generation.
func (p *Projectile) Pierced(generation, idx int) bool {
	if generation != p.piercedGen {
		return false
	}
	for _, i := range p.pierced {
		if i == idx {
			return true
		}
	}
	return false
}

// MarkPierced records that the projectile passed through block idx. Marks
// from an earlier planet generation are dropped.
func (p *Projectile) MarkPierced(generation, idx int) {
	if generation != p.piercedGen {
		p.pierced = nil
		p.piercedGen = generation
	}
	p.pierced = append(p.pierced, idx)
}

func (p *Projectile) MarkDestroyed()    { p.destroyed = true }
func (p *Projectile) IsDestroyed() bool { return p.destroyed }

// MoveProjectiles advances every projectile one tick.
func MoveProjectiles(ps []Projectile) {
	for i := range ps {
		ps[i].Move()
	}
}
