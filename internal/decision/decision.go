// Package decision implements the staged narrative choices that upgrade the
// weapon and track the player's path alignment.
package decision

import (
	"slices"

	"github.com/tomz197/orbitclicker/internal/economy"
)

// Alignment classifies the player's path from the two point counters.
type Alignment string

const (
	Neutral    Alignment = "neutral"
	Evil       Alignment = "evil"
	Redemption Alignment = "redemption"
)

// AlignmentThreshold is the point difference that tips the path away from neutral.
const AlignmentThreshold = 3

// DeterminePathAlignment returns evil when evil-redemption >= 3, redemption
// when it is <= -3 and neutral otherwise.
func DeterminePathAlignment(evil, redemption int) Alignment {
	diff := evil - redemption
	switch {
	case diff >= AlignmentThreshold:
		return Evil
	case diff <= -AlignmentThreshold:
		return Redemption
	default:
		return Neutral
	}
}

// stageLadder maps total selected choices to the stage reached.
var stageLadder = []int{5, 10, 15, 20}

// StageForChoices returns the stage reached after n selected choices.
func StageForChoices(n int) int {
	stage := 1
	for _, threshold := range stageLadder {
		if n >= threshold {
			stage++
		}
	}
	return stage
}

// Effects are the mutations a choice applies when selected. Zero values mean
// "no change" for every field.
type Effects struct {
	EnableAutoBullets      bool    `yaml:"enable_auto_bullets" json:"enableAutoBullets,omitempty"`
	EnablePiercingBullets  bool    `yaml:"enable_piercing_bullets" json:"enablePiercingBullets,omitempty"`
	EnableExplosiveBullets bool    `yaml:"enable_explosive_bullets" json:"enableExplosiveBullets,omitempty"`
	DamageMultiplier       float64 `yaml:"damage_multiplier" json:"damageMultiplier,omitempty"`
	BulletCountBonus       int     `yaml:"bullet_count_bonus" json:"bulletCountBonus,omitempty"`
	FireRateBonus          float64 `yaml:"fire_rate_bonus" json:"fireRateBonus,omitempty"`
	ExplosionRadius        float64 `yaml:"explosion_radius" json:"explosionRadius,omitempty"`
	PierceCount            int     `yaml:"pierce_count" json:"pierceCount,omitempty"`
	ShipConfig             string  `yaml:"ship_config" json:"shipConfig,omitempty"`
	EvilPoints             int     `yaml:"evil_points" json:"evilPoints,omitempty"`
	RedemptionPoints       int     `yaml:"redemption_points" json:"redemptionPoints,omitempty"`
}

// Requirements gate a choice beyond its stage threshold.
type Requirements struct {
	BlocksDestroyed int       `yaml:"blocks_destroyed" json:"blocksDestroyed,omitempty"`
	CurrentStage    int       `yaml:"current_stage" json:"currentStage,omitempty"`
	HasChoice       []string  `yaml:"has_choice" json:"hasChoice,omitempty"`
	PathAlignment   Alignment `yaml:"path_alignment" json:"pathAlignment,omitempty"`
}

// Choice is one purchasable option within a stage.
type Choice struct {
	ID           string       `yaml:"id" json:"id"`
	Code         int          `yaml:"code" json:"code"`
	Title        string       `yaml:"title" json:"title"`
	Description  string       `yaml:"description" json:"description"`
	Cost         economy.Cost `yaml:"cost" json:"cost"`
	Effects      Effects      `yaml:"effects" json:"effects"`
	Requirements Requirements `yaml:"requirements" json:"requirements"`
}

// Stage groups the choices unlocked at a cumulative blocks-destroyed threshold.
type Stage struct {
	ID               int      `yaml:"id" json:"id"`
	Title            string   `yaml:"title" json:"title"`
	Description      string   `yaml:"description" json:"description"`
	RequiredProgress int      `yaml:"required_progress" json:"requiredProgress"`
	Choices          []Choice `yaml:"choices" json:"choices"`
}

// WeaponUpgrades is the accumulated weapon state produced by choices.
type WeaponUpgrades struct {
	AutoBullets      bool    `json:"autoBullets"`
	PiercingBullets  bool    `json:"piercingBullets"`
	ExplosiveBullets bool    `json:"explosiveBullets"`
	DamageMultiplier float64 `json:"damageMultiplier"`
	BulletCountBonus int     `json:"bulletCountBonus"`
	FireRateBonus    float64 `json:"fireRateBonus"`
	ExplosionRadius  float64 `json:"explosionRadius"`
	PierceCount      int     `json:"pierceCount"`
}

// DefaultWeaponUpgrades returns the state before any choice.
func DefaultWeaponUpgrades() WeaponUpgrades {
	return WeaponUpgrades{DamageMultiplier: 1}
}

// Apply folds e into the upgrades. Booleans only ever turn on, the damage
// multiplier compounds, bonuses add, and radius and pierce count overwrite.
func (w WeaponUpgrades) Apply(e Effects) WeaponUpgrades {
	w.AutoBullets = w.AutoBullets || e.EnableAutoBullets
	w.PiercingBullets = w.PiercingBullets || e.EnablePiercingBullets
	w.ExplosiveBullets = w.ExplosiveBullets || e.EnableExplosiveBullets
	if e.DamageMultiplier != 0 {
		w.DamageMultiplier *= e.DamageMultiplier
	}
	w.BulletCountBonus += e.BulletCountBonus
	w.FireRateBonus += e.FireRateBonus
	if e.ExplosionRadius != 0 {
		w.ExplosionRadius = e.ExplosionRadius
	}
	if e.PierceCount != 0 {
		w.PierceCount = e.PierceCount
	}
	return w
}

// PlayerState is the decision progress of one session.
//
// Invariant: SelectedChoices only grows; PathAlignment always equals
// DeterminePathAlignment(EvilPoints, RedemptionPoints).
type PlayerState struct {
	CurrentStage     int            `json:"currentStage"`
	SelectedChoices  []string       `json:"selectedChoices"`
	EvilPoints       int            `json:"evilPoints"`
	RedemptionPoints int            `json:"redemptionPoints"`
	PathAlignment    Alignment      `json:"pathAlignment"`
	WeaponUpgrades   WeaponUpgrades `json:"weaponUpgrades"`
}

// NewPlayerState returns the state at session start.
func NewPlayerState() PlayerState {
	return PlayerState{
		CurrentStage:    1,
		SelectedChoices: []string{},
		PathAlignment:   Neutral,
		WeaponUpgrades:  DefaultWeaponUpgrades(),
	}
}

// HasSelected reports whether id was already chosen.
func (s PlayerState) HasSelected(id string) bool {
	return slices.Contains(s.SelectedChoices, id)
}

// Clone returns a deep copy.
func (s PlayerState) Clone() PlayerState {
	s.SelectedChoices = slices.Clone(s.SelectedChoices)
	return s
}

// IsAvailable reports whether c in stage can be selected given the state and
// cumulative blocks destroyed.
func IsAvailable(stage Stage, c Choice, s PlayerState, blocksDestroyed int) bool {
	if blocksDestroyed < stage.RequiredProgress {
		return false
	}
	if s.HasSelected(c.ID) {
		return false
	}
	req := c.Requirements
	if req.BlocksDestroyed > 0 && blocksDestroyed < req.BlocksDestroyed {
		return false
	}
	if req.CurrentStage > 0 && req.CurrentStage > s.CurrentStage {
		return false
	}
	for _, id := range req.HasChoice {
		if !s.HasSelected(id) {
			return false
		}
	}
	if req.PathAlignment != "" && req.PathAlignment != s.PathAlignment {
		return false
	}
	return true
}

// Available returns every choice selectable right now, in catalog order.
// It is a pure function of its arguments.
func Available(stages []Stage, s PlayerState, blocksDestroyed int) []Choice {
	var out []Choice
	for _, st := range stages {
		for _, c := range st.Choices {
			if IsAvailable(st, c, s, blocksDestroyed) {
				out = append(out, c)
			}
		}
	}
	return out
}

// ApplyChoice returns the state after selecting c. It does not check cost or
// availability.
func ApplyChoice(s PlayerState, c Choice) PlayerState {
	s = s.Clone()
	s.WeaponUpgrades = s.WeaponUpgrades.Apply(c.Effects)
	s.EvilPoints += c.Effects.EvilPoints
	s.RedemptionPoints += c.Effects.RedemptionPoints
	s.PathAlignment = DeterminePathAlignment(s.EvilPoints, s.RedemptionPoints)
	s.SelectedChoices = append(s.SelectedChoices, c.ID)
	s.CurrentStage = StageForChoices(len(s.SelectedChoices))
	return s
}
