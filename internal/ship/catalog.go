package ship

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/ships.yaml
var defaultShips []byte

// Catalog is an immutable set of loadouts keyed by id.
type Catalog struct {
	byID map[string]Config
}

type catalogFile struct {
	Ships []Config `yaml:"ships"`
}

// Load decodes a catalog from YAML. Unknown fields are rejected.
//
// Postcondition: the returned catalog contains DefaultID and every loadout validates.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding ship catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]Config, len(f.Ships))}
	var errs []error
	for _, s := range f.Ships {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.byID[s.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate ship id %q", s.ID))
			continue
		}
		c.byID[s.ID] = s
	}
	if _, ok := c.byID[DefaultID]; !ok {
		errs = append(errs, fmt.Errorf("catalog must define %q", DefaultID))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// LoadFile loads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ship catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultShips))
	if err != nil {
		panic(fmt.Sprintf("ship: embedded catalog invalid: %v", err))
	}
	return c
}

// Get returns the loadout with id.
func (c *Catalog) Get(id string) (Config, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// MustDefault returns the default loadout.
func (c *Catalog) MustDefault() Config {
	return c.byID[DefaultID]
}

// IDs returns all loadout ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
