package decision

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/stages.yaml
var defaultStages []byte

// MaxChoiceCode is the largest numeric choice code accepted in session summaries.
const MaxChoiceCode = 50

// Catalog is the immutable stage list loaded at startup.
type Catalog struct {
	stages []Stage
	byID   map[string]locator
}

type locator struct {
	stage  int
	choice int
}

type catalogFile struct {
	Stages []Stage `yaml:"stages"`
}

// Load decodes and validates a stage catalog. Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding stage catalog: %w", err)
	}
	return NewCatalog(f.Stages)
}

// NewCatalog validates stages and builds the id index.
func NewCatalog(stages []Stage) (*Catalog, error) {
	c := &Catalog{stages: stages, byID: make(map[string]locator)}
	codes := make(map[int]string)
	var errs []error

	for si, st := range stages {
		if si > 0 && st.RequiredProgress < stages[si-1].RequiredProgress {
			errs = append(errs, fmt.Errorf("stage %d: required_progress decreases", st.ID))
		}
		for ci, ch := range st.Choices {
			if ch.ID == "" {
				errs = append(errs, fmt.Errorf("stage %d: choice %d has no id", st.ID, ci))
				continue
			}
			if _, dup := c.byID[ch.ID]; dup {
				errs = append(errs, fmt.Errorf("duplicate choice id %q", ch.ID))
				continue
			}
			c.byID[ch.ID] = locator{stage: si, choice: ci}

			if ch.Code < 1 || ch.Code > MaxChoiceCode {
				errs = append(errs, fmt.Errorf("choice %q: code %d out of range [1, %d]", ch.ID, ch.Code, MaxChoiceCode))
			} else if other, dup := codes[ch.Code]; dup {
				errs = append(errs, fmt.Errorf("choice %q: code %d already used by %q", ch.ID, ch.Code, other))
			} else {
				codes[ch.Code] = ch.ID
			}
			if err := ch.Cost.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("choice %q: %w", ch.ID, err))
			}
			switch ch.Requirements.PathAlignment {
			case "", Neutral, Evil, Redemption:
			default:
				errs = append(errs, fmt.Errorf("choice %q: unknown path alignment %q", ch.ID, ch.Requirements.PathAlignment))
			}
		}
	}

	for _, st := range stages {
		for _, ch := range st.Choices {
			for _, dep := range ch.Requirements.HasChoice {
				if _, ok := c.byID[dep]; !ok {
					errs = append(errs, fmt.Errorf("choice %q requires unknown choice %q", ch.ID, dep))
				}
			}
		}
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
		return nil, fmt.Errorf("opening stage catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in five-stage catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultStages))
	if err != nil {
		panic(fmt.Sprintf("decision: embedded catalog invalid: %v", err))
	}
	return c
}

// Stages returns the stage list. Callers must not modify it.
func (c *Catalog) Stages() []Stage { return c.stages }

// Choice looks up a choice and its stage by id.
func (c *Catalog) Choice(id string) (Stage, Choice, bool) {
	loc, ok := c.byID[id]
	if !ok {
		return Stage{}, Choice{}, false
	}
	st := c.stages[loc.stage]
	return st, st.Choices[loc.choice], true
}

// Code returns the numeric code for a choice id.
func (c *Catalog) Code(id string) (int, bool) {
	_, ch, ok := c.Choice(id)
	return ch.Code, ok
}
