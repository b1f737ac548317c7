// Package progression implements the skill tree: purchasable skills whose
// effects reshape the player's stats and hook into clicks, block destruction
// and passive income.
package progression

import "slices"

// Special effect tags carried in Stats.SpecialEffects.
const (
	EffectExplosion = "explosion"
	EffectQuantum   = "quantum"
	EffectDestroyer = "destroyer"
)

// Stats is the aggregate of every purchased skill's stat modifier.
type Stats struct {
	ClickDamage        float64  `json:"clickDamage"`
	PassiveIncome      int      `json:"passiveIncome"`
	AutoClickRate      float64  `json:"autoClickRate"`
	BulletCount        int      `json:"bulletCount"`
	CurrencyMultiplier float64  `json:"currencyMultiplier"`
	AutoSatellites     int      `json:"autoSatellites"`
	SpecialEffects     []string `json:"specialEffects"`
}

// Baseline returns the stats with no skills purchased.
func Baseline() Stats {
	return Stats{
		ClickDamage:        1,
		BulletCount:        1,
		CurrencyMultiplier: 1,
		SpecialEffects:     []string{},
	}
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	s.SpecialEffects = slices.Clone(s.SpecialEffects)
	if s.SpecialEffects == nil {
		s.SpecialEffects = []string{}
	}
	return s
}

// HasEffect reports whether tag is among the special effects.
func (s Stats) HasEffect(tag string) bool {
	return slices.Contains(s.SpecialEffects, tag)
}

// ExtraDamage is the click damage beyond the baseline of 1.
func (s Stats) ExtraDamage() float64 { return s.ClickDamage - 1 }

// ExtraBullets is the bullet count beyond the baseline of 1.
func (s Stats) ExtraBullets() int { return s.BulletCount - 1 }
