// Package ship defines satellite loadouts: hull size, trail, companions and base weapon.
package ship

import (
	"errors"
	"fmt"
)

// Shape selects the hull outline drawn for a loadout.
type Shape string

const (
	ShapeTriangle Shape = "triangle"
	ShapeAngular  Shape = "angular"
	ShapeFluid    Shape = "fluid"
	ShapeEnlarged Shape = "enlarged"
	ShapeGhostly  Shape = "ghostly"
)

// DefaultID is the loadout every session starts with.
const DefaultID = "default"

// Trail configures the exhaust particles emitted behind the satellite.
type Trail struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	Type          string  `yaml:"type" json:"type"`
	Color         string  `yaml:"color" json:"color"`
	Length        int     `yaml:"length" json:"length"`
	FadeSpeed     float64 `yaml:"fade_speed" json:"fadeSpeed"`
	ParticleCount int     `yaml:"particle_count" json:"particleCount"`
}

// Companions configures the drones orbiting the satellite.
type Companions struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	Count         int     `yaml:"count" json:"count"`
	Size          float64 `yaml:"size" json:"size"`
	OrbitDistance float64 `yaml:"orbit_distance" json:"orbitDistance"`
	OrbitSpeed    float64 `yaml:"orbit_speed" json:"orbitSpeed"`
}

// Weapon is the base weapon of a loadout before upgrades.
type Weapon struct {
	Kind        string  `yaml:"kind" json:"kind"`
	Color       string  `yaml:"color" json:"color"`
	Damage      float64 `yaml:"damage" json:"damage"`
	BulletCount int     `yaml:"bullet_count" json:"bulletCount"`
	FireRate    float64 `yaml:"fire_rate" json:"fireRate"`
}

// Config is one named loadout.
type Config struct {
	ID           string     `yaml:"id" json:"id"`
	Name         string     `yaml:"name" json:"name"`
	Shape        Shape      `yaml:"shape" json:"shape"`
	Size         float64    `yaml:"size" json:"size"`
	PrimaryColor string     `yaml:"primary_color" json:"primaryColor"`
	Trail        Trail      `yaml:"trail" json:"trail"`
	Companions   Companions `yaml:"companions" json:"companions"`
	Weapon       Weapon     `yaml:"weapon" json:"weapon"`
}

// Validate checks that the loadout is usable by the simulation.
func (c Config) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Size <= 0 {
		errs = append(errs, fmt.Errorf("size must be > 0, got %v", c.Size))
	}
	if c.Trail.Enabled && c.Trail.Length < 1 {
		errs = append(errs, fmt.Errorf("trail length must be >= 1, got %d", c.Trail.Length))
	}
	if c.Trail.ParticleCount < 0 {
		errs = append(errs, fmt.Errorf("trail particle_count must be >= 0, got %d", c.Trail.ParticleCount))
	}
	if c.Companions.Count < 0 {
		errs = append(errs, fmt.Errorf("companion count must be >= 0, got %d", c.Companions.Count))
	}
	if c.Weapon.Damage < 0 {
		errs = append(errs, fmt.Errorf("weapon damage must be >= 0, got %v", c.Weapon.Damage))
	}
	if c.Weapon.BulletCount < 1 {
		errs = append(errs, fmt.Errorf("weapon bullet_count must be >= 1, got %d", c.Weapon.BulletCount))
	}
	if c.Weapon.FireRate < 0 {
		errs = append(errs, fmt.Errorf("weapon fire_rate must be >= 0, got %v", c.Weapon.FireRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ship %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// SatelliteSize returns the on-screen satellite size for a base hull size.
func (c Config) SatelliteSize(base float64) float64 {
	return base * c.Size
}
