package progression

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/orbitclicker/internal/economy"
)

//go:embed data/skills.yaml
var defaultSkills []byte

// Skill is a static skill tree node.
type Skill struct {
	ID            string       `yaml:"id" json:"id"`
	Name          string       `yaml:"name" json:"name"`
	Description   string       `yaml:"description" json:"description"`
	Cost          economy.Cost `yaml:"cost" json:"cost"`
	Prerequisites []string     `yaml:"prerequisites" json:"prerequisites"`
	Tier          int          `yaml:"tier" json:"tier"`
	Branch        string       `yaml:"branch" json:"branch"`
	Goal          bool         `yaml:"goal" json:"isGoal"`
	Hidden        bool         `yaml:"hidden" json:"hidden,omitempty"`
	// Script is Lua source defining any of modify_stats, on_click,
	// on_block_destroy and passive.
	Script string `yaml:"script" json:"-"`
}

// Catalog is the validated, ordered list of skills.
type Catalog struct {
	skills []Skill
	index  map[string]int
}

type catalogFile struct {
	Skills []Skill `yaml:"skills"`
}

// Load decodes and validates a skill catalog. Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding skill catalog: %w", err)
	}
	return NewCatalog(f.Skills)
}

// LoadFile loads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening skill catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultSkills))
	if err != nil {
		panic(fmt.Sprintf("progression: embedded catalog invalid: %v", err))
	}
	return c
}

// NewCatalog validates skills and indexes them by id.
func NewCatalog(skills []Skill) (*Catalog, error) {
	c := &Catalog{skills: skills, index: make(map[string]int, len(skills))}
	var errs []error

	for i, s := range skills {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("skill %d has no id", i))
			continue
		}
		if _, dup := c.index[s.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate skill id %q", s.ID))
			continue
		}
		c.index[s.ID] = i
		if err := s.Cost.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("skill %q: %w", s.ID, err))
		}
	}
	for _, s := range skills {
		for _, p := range s.Prerequisites {
			if _, ok := c.index[p]; !ok {
				errs = append(errs, fmt.Errorf("skill %q: unknown prerequisite %q", s.ID, p))
			}
		}
	}
	if len(errs) == 0 {
		if cyc := c.findCycle(); cyc != "" {
			errs = append(errs, fmt.Errorf("prerequisite cycle through %q", cyc))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// findCycle returns a skill id on a prerequisite cycle, or "".
func (c *Catalog) findCycle() string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(c.skills))
	var visit func(i int) string
	visit = func(i int) string {
		switch state[i] {
		case visiting:
			return c.skills[i].ID
		case done:
			return ""
		}
		state[i] = visiting
		for _, p := range c.skills[i].Prerequisites {
			if id := visit(c.index[p]); id != "" {
				return id
			}
		}
		state[i] = done
		return ""
	}
	for i := range c.skills {
		if id := visit(i); id != "" {
			return id
		}
	}
	return ""
}

// Skills returns the skills in catalog order.
func (c *Catalog) Skills() []Skill {
	out := make([]Skill, len(c.skills))
	copy(out, c.skills)
	return out
}

// Skill looks up a skill by id.
func (c *Catalog) Skill(id string) (Skill, bool) {
	i, ok := c.index[id]
	if !ok {
		return Skill{}, false
	}
	return c.skills[i], true
}

// Len returns the number of skills.
func (c *Catalog) Len() int { return len(c.skills) }
