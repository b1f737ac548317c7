// Package weapon spawns projectiles from the satellite and resolves their hits
// against the planet.
package weapon

import (
	"fmt"
	"math"
	"time"

	"github.com/tomz197/orbitclicker/internal/decision"
	"github.com/tomz197/orbitclicker/internal/object"
	"github.com/tomz197/orbitclicker/internal/physics"
	"github.com/tomz197/orbitclicker/internal/random"
	"github.com/tomz197/orbitclicker/internal/ship"
)

// SpreadStep is the angular gap in radians between bullets of one volley.
const SpreadStep = 0.15

// MinFireRate floors the auto-fire rate so the period stays finite.
const MinFireRate = 0.1

// System combines a loadout's base weapon with the decision upgrades.
type System struct {
	base     ship.Weapon
	upgrades decision.WeaponUpgrades
	src      random.Source
}

// NewSystem creates a weapon system with no upgrades.
func NewSystem(base ship.Weapon, src random.Source) *System {
	return &System{base: base, upgrades: decision.DefaultWeaponUpgrades(), src: src}
}

// SetBase replaces the base weapon, e.g. after a loadout change.
func (s *System) SetBase(w ship.Weapon) { s.base = w }

// SetUpgrades replaces the upgrade state.
func (s *System) SetUpgrades(u decision.WeaponUpgrades) { s.upgrades = u }

// Upgrades returns the current upgrade state.
func (s *System) Upgrades() decision.WeaponUpgrades { return s.upgrades }

func (s *System) baseDamage() float64 {
	if s.base.Damage <= 0 {
		return 1
	}
	return s.base.Damage
}

func (s *System) baseBullets() int {
	if s.base.BulletCount <= 0 {
		return 1
	}
	return s.base.BulletCount
}

// TotalDamage is the per-bullet damage for extra click damage.
func (s *System) TotalDamage(extra float64) float64 {
	return (s.baseDamage() + extra) * s.upgrades.DamageMultiplier
}

// TotalBulletCount is the volley size for extra bullets.
func (s *System) TotalBulletCount(extra int) int {
	return s.baseBullets() + extra + s.upgrades.BulletCountBonus
}

// ShouldAutoFire reports whether the auto-fire upgrade is active.
func (s *System) ShouldAutoFire() bool { return s.upgrades.AutoBullets }

// AutoFireRate is the auto-fire rate in volleys per second.
func (s *System) AutoFireRate() float64 {
	return s.base.FireRate + s.upgrades.FireRateBonus
}

// AutoFirePeriod is the interval between auto-fire volleys.
func (s *System) AutoFirePeriod() time.Duration {
	rate := math.Max(MinFireRate, s.AutoFireRate())
	return time.Duration(math.Round(float64(time.Second) / rate))
}

// Spawn fires one volley from the satellite toward (tx, ty). Bullets leave
// from a point offset radially by a third of the hull size and fan out
// symmetrically around the aim direction.
func (s *System) Spawn(sat object.Satellite, angle, tx, ty, extraDamage float64, extraBullets int) []object.Projectile {
	n := s.TotalBulletCount(extraBullets)
	if n <= 0 {
		return nil
	}

	tangent := angle - math.Pi/2
	side := sat.Size / 3
	startX := sat.X + math.Cos(tangent+math.Pi/2)*side
	startY := sat.Y + math.Sin(tangent+math.Pi/2)*side

	dx, dy, dist := physics.Normalize(tx-startX, ty-startY)
	if dist == 0 {
		dx, dy = -math.Cos(angle), -math.Sin(angle)
	}
	aim := math.Atan2(dy, dx)
	damage := s.TotalDamage(extraDamage)

	out := make([]object.Projectile, 0, n)
	for i := 0; i < n; i++ {
		spread := (float64(i) - float64(n-1)/2) * SpreadStep
		a := aim + spread
		p := object.Projectile{
			X:      startX,
			Y:      startY,
			VX:     math.Cos(a) * object.ProjectileSpeed,
			VY:     math.Sin(a) * object.ProjectileSpeed,
			Size:   object.ProjectileSize,
			Damage: damage,
			Kind:   s.base.Kind,
			Color:  s.base.Color,
		}
		if s.upgrades.PiercingBullets {
			p.Piercing = true
			p.PierceRemaining = s.upgrades.PierceCount
		}
		if s.upgrades.ExplosiveBullets {
			p.Explosive = true
			p.ExplosionRadius = s.upgrades.ExplosionRadius
		}
		out = append(out, p)
	}
	return out
}

// Status summarises the weapon for display.
type Status struct {
	Damage           float64  `json:"damage"`
	BulletCount      int      `json:"bulletCount"`
	FireRate         float64  `json:"fireRate"`
	SpecialAbilities []string `json:"specialAbilities"`
}

// Status reports the effective weapon numbers without skill bonuses.
func (s *System) Status() Status {
	st := Status{
		Damage:           s.TotalDamage(0),
		BulletCount:      s.TotalBulletCount(0),
		FireRate:         s.AutoFireRate(),
		SpecialAbilities: []string{},
	}
	if s.upgrades.AutoBullets {
		st.SpecialAbilities = append(st.SpecialAbilities, "Auto-Fire")
	}
	if s.upgrades.PiercingBullets {
		st.SpecialAbilities = append(st.SpecialAbilities, fmt.Sprintf("Piercing (%d)", s.upgrades.PierceCount))
	}
	if s.upgrades.ExplosiveBullets {
		st.SpecialAbilities = append(st.SpecialAbilities, fmt.Sprintf("Explosive (%g)", s.upgrades.ExplosionRadius))
	}
	return st
}
