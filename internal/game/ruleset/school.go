package ruleset

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"slices"

	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// ErrUnknownSchool is returned when a spell school ID is not in the catalog.
var ErrUnknownSchool = errors.New("no such spell school")

// SpellSchool holds the scaling stats and cost multipliers for a school of magic.
// Spellcasting callers compute mana cost as base × ManaMultiplier and cooldown
// as base × CooldownMultiplier.
type SpellSchool struct {
	ID                 string     `yaml:"id"`
	Name               string     `yaml:"name"`
	Description        string     `yaml:"description"`
	PrimaryStat        stats.Name `yaml:"primary_stat"`
	SecondaryStat      stats.Name `yaml:"secondary_stat"`
	ManaMultiplier     float64    `yaml:"mana_multiplier"`
	CooldownMultiplier float64    `yaml:"cooldown_multiplier"`
}

func (s *SpellSchool) validate() error {
	if s.ID == "" {
		return errors.New("school id must not be empty")
	}
	if _, err := stats.ParseName(string(s.PrimaryStat)); err != nil {
		return fmt.Errorf("school %q: primary_stat: %w", s.ID, err)
	}
	if _, err := stats.ParseName(string(s.SecondaryStat)); err != nil {
		return fmt.Errorf("school %q: secondary_stat: %w", s.ID, err)
	}
	if s.ManaMultiplier <= 0 {
		return fmt.Errorf("school %q: mana_multiplier must be > 0, got %g", s.ID, s.ManaMultiplier)
	}
	if s.CooldownMultiplier <= 0 {
		return fmt.Errorf("school %q: cooldown_multiplier must be > 0, got %g", s.ID, s.CooldownMultiplier)
	}
	return nil
}

// LoadSchools reads every .yaml file in dir of fsys and parses each as a SpellSchool.
//
// Precondition: dir must be a readable directory in fsys.
// Postcondition: Returns all parsed and validated schools, or a non-nil error.
func LoadSchools(fsys fs.FS, dir string) ([]*SpellSchool, error) {
	files, err := yamlFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	schools := make([]*SpellSchool, 0, len(files))
	for _, p := range files {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var s SpellSchool
		if err := decodeStrict(data, &s); err != nil {
			return nil, fmt.Errorf("parsing school file %s: %w", p, err)
		}
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("validating school file %s: %w", p, err)
		}
		schools = append(schools, &s)
	}
	return schools, nil
}

// SchoolCatalog provides lookup of spell schools by ID. Immutable once built.
type SchoolCatalog struct {
	schools map[string]*SpellSchool
	ids     []string
}

// NewSchoolCatalog builds a catalog from schools.
//
// Postcondition: Returns an error if two schools share an ID.
func NewSchoolCatalog(schools []*SpellSchool) (*SchoolCatalog, error) {
	cat := &SchoolCatalog{schools: make(map[string]*SpellSchool, len(schools))}
	for _, s := range schools {
		if _, dup := cat.schools[s.ID]; dup {
			return nil, fmt.Errorf("duplicate spell school id %q", s.ID)
		}
		cat.schools[s.ID] = s
		cat.ids = append(cat.ids, s.ID)
	}
	slices.Sort(cat.ids)
	return cat, nil
}

// Lookup returns the school with the given ID, or an error wrapping ErrUnknownSchool.
func (c *SchoolCatalog) Lookup(id string) (*SpellSchool, error) {
	s, ok := c.schools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchool, id)
	}
	return s, nil
}

// IDs yields every school ID in lexical order.
func (c *SchoolCatalog) IDs() iter.Seq[string] {
	return slices.Values(c.ids)
}
