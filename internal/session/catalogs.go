package session

import (
	"fmt"

	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/decision"
	"github.com/tomz197/orbitclicker/internal/progression"
	"github.com/tomz197/orbitclicker/internal/ship"
)

// Catalogs are the static definitions shared by every session.
type Catalogs struct {
	Skills *progression.Catalog
	Stages *decision.Catalog
	Ships  *ship.Catalog
}

// DefaultCatalogs returns the embedded catalogs.
func DefaultCatalogs() Catalogs {
	return Catalogs{
		Skills: progression.Default(),
		Stages: decision.Default(),
		Ships:  ship.Default(),
	}
}

// LoadCatalogs loads each catalog from its configured path, falling back to
// the embedded default when the path is empty.
func LoadCatalogs(g config.GameConfig) (Catalogs, error) {
	c := DefaultCatalogs()
	var err error
	if g.SkillsPath != "" {
		if c.Skills, err = progression.LoadFile(g.SkillsPath); err != nil {
			return Catalogs{}, fmt.Errorf("loading skills: %w", err)
		}
	}
	if g.StagesPath != "" {
		if c.Stages, err = decision.LoadFile(g.StagesPath); err != nil {
			return Catalogs{}, fmt.Errorf("loading stages: %w", err)
		}
	}
	if g.ShipsPath != "" {
		if c.Ships, err = ship.LoadFile(g.ShipsPath); err != nil {
			return Catalogs{}, fmt.Errorf("loading ships: %w", err)
		}
	}
	if _, ok := c.Ships.Get(g.Ship); !ok {
		return Catalogs{}, fmt.Errorf("ship %q not in catalog", g.Ship)
	}
	return c, nil
}
