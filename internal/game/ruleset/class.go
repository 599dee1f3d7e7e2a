package ruleset

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// ErrUnknownClass is returned when a class ID is not in the catalog.
var ErrUnknownClass = errors.New("no such class")

// Class defines a playable character class.
//
// Precondition: ID and Name must be non-empty after loading.
type Class struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// BaseStats are the level-1 attribute values.
	BaseStats stats.Block `yaml:"base_stats"`
	// StatWeights are proportional shares of the per-level growth pool, keyed by stat name.
	StatWeights       map[string]int `yaml:"stat_weights"`
	HitPointsPerLevel int            `yaml:"hit_points_per_level"`
	// Immunities lists status effect IDs this class resists.
	Immunities []string `yaml:"immunities"`
}

// Weights returns StatWeights keyed by validated stat Name.
// Unknown stat names and non-positive weights are skipped.
func (c *Class) Weights() map[stats.Name]int {
	out := make(map[stats.Name]int, len(c.StatWeights))
	for k, w := range c.StatWeights {
		n, err := stats.ParseName(k)
		if err != nil || w <= 0 {
			continue
		}
		out[n] = w
	}
	return out
}

// ImmuneTo reports whether effectID is listed in the class's immunities.
func (c *Class) ImmuneTo(effectID string) bool {
	return slices.Contains(c.Immunities, effectID)
}

func (c *Class) validate() error {
	if c.ID == "" {
		return errors.New("class id must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", c.ID)
	}
	if c.HitPointsPerLevel < 0 {
		return fmt.Errorf("class %q: hit_points_per_level must be >= 0, got %d", c.ID, c.HitPointsPerLevel)
	}
	for k, w := range c.StatWeights {
		if _, err := stats.ParseName(k); err != nil {
			return fmt.Errorf("class %q: stat_weights: %w", c.ID, err)
		}
		if w < 0 {
			return fmt.Errorf("class %q: stat_weights.%s must be >= 0, got %d", c.ID, k, w)
		}
	}
	return nil
}

// LoadClasses reads every .yaml file in dir of fsys and parses each as a Class.
//
// Precondition: dir must be a readable directory in fsys.
// Postcondition: Returns all parsed and validated classes sorted by file name, or a non-nil error.
func LoadClasses(fsys fs.FS, dir string) ([]*Class, error) {
	files, err := yamlFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(files))
	for _, p := range files {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var c Class
		if err := decodeStrict(data, &c); err != nil {
			return nil, fmt.Errorf("parsing class file %s: %w", p, err)
		}
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("validating class file %s: %w", p, err)
		}
		classes = append(classes, &c)
	}
	return classes, nil
}
