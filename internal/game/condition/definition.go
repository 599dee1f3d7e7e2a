// Package condition defines status effects: their static catalog and the
// per-character set of effects currently applied.
package condition

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// ErrUnknownEffect is returned when an effect ID is not in the registry.
var ErrUnknownEffect = errors.New("no such effect")

// EffectDef is the static definition of a status effect, loaded from YAML.
type EffectDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Duration is the number of turns the effect lasts; 0 = instantaneous.
	Duration      int `yaml:"duration"`
	DamagePerTurn int `yaml:"damage_per_turn"`
	// HealAmount is healed each turn, or once for an instantaneous effect.
	HealAmount     int        `yaml:"heal_amount"`
	ModifierStat   stats.Name `yaml:"modifier_stat"`
	ModifierAmount int        `yaml:"modifier_amount"`
	ImmuneClasses  []string   `yaml:"immune_classes"`
	// OnTick names an optional scripted hook called once per turn while active.
	OnTick string `yaml:"on_tick"`
}

// Instant reports whether the effect is applied once and never tracked.
func (d *EffectDef) Instant() bool {
	return d.Duration == 0
}

// HasModifier reports whether the effect adjusts a stat while active.
func (d *EffectDef) HasModifier() bool {
	return d.ModifierStat != "" && d.ModifierAmount != 0
}

// ImmuneTo reports whether classID is in the effect's immune class list.
func (d *EffectDef) ImmuneTo(classID string) bool {
	return slices.Contains(d.ImmuneClasses, classID)
}

// Validate checks the definition's invariants.
func (d *EffectDef) Validate() error {
	var errs []string
	if d.ID == "" {
		return errors.New("effect id must not be empty")
	}
	if d.Duration < 0 {
		errs = append(errs, fmt.Sprintf("duration must be >= 0, got %d", d.Duration))
	}
	if d.DamagePerTurn < 0 {
		errs = append(errs, fmt.Sprintf("damage_per_turn must be >= 0, got %d", d.DamagePerTurn))
	}
	if d.HealAmount < 0 {
		errs = append(errs, fmt.Sprintf("heal_amount must be >= 0, got %d", d.HealAmount))
	}
	if d.ModifierStat != "" {
		if _, err := stats.ParseName(string(d.ModifierStat)); err != nil {
			errs = append(errs, fmt.Sprintf("modifier_stat: %v", err))
		}
	}
	if d.ModifierAmount != 0 && d.ModifierStat == "" {
		errs = append(errs, "modifier_amount requires modifier_stat")
	}
	if d.Instant() && d.HasModifier() {
		errs = append(errs, "instantaneous effects cannot carry a stat modifier")
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Registry holds all known EffectDefs keyed by ID. It is read-only once
// loading completes and safe for concurrent reads after that point.
type Registry struct {
	defs map[string]*EffectDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*EffectDef)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *EffectDef) {
	if def == nil || def.ID == "" {
		panic("Registry.Register: precondition violated: def must be non-nil with a non-empty ID")
	}
	r.defs[def.ID] = def
}

// Lookup returns the EffectDef for id, or an error wrapping ErrUnknownEffect.
func (r *Registry) Lookup(id string) (*EffectDef, error) {
	d, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, id)
	}
	return d, nil
}

// All returns a snapshot slice of all registered EffectDefs sorted by ID.
func (r *Registry) All() []*EffectDef {
	out := make([]*EffectDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir of fsys, parses and validates
// each as an EffectDef, and returns a populated Registry.
// Precondition: dir must be a readable directory in fsys.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		var def EffectDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", p, err)
		}
		if _, dup := reg.defs[def.ID]; dup {
			return nil, fmt.Errorf("%q: duplicate effect id %q", p, def.ID)
		}
		reg.Register(&def)
	}
	return reg, nil
}
