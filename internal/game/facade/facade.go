// Package facade is the single entry point to the rules engine. It puts the
// catalogs, progression engine, and effect resolver behind one surface.
package facade

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rpgrules/internal/config"
	"github.com/cory-johannsen/rpgrules/internal/content"
	"github.com/cory-johannsen/rpgrules/internal/game/character"
	"github.com/cory-johannsen/rpgrules/internal/game/condition"
	"github.com/cory-johannsen/rpgrules/internal/game/progression"
	"github.com/cory-johannsen/rpgrules/internal/game/resolver"
	"github.com/cory-johannsen/rpgrules/internal/game/ruleset"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// Facade wires the rules components together. It holds only read-only state
// and may be shared by every session; Characters passed to it must still be
// driven by one caller at a time.
type Facade struct {
	bundle   *content.Bundle
	rules    config.RulesConfig
	engine   *progression.Engine
	resolver *resolver.Resolver
	logger   *zap.Logger
}

// New builds a Facade over bundle using the rules constants. hook may be nil
// to disable scripted effect ticks.
//
// Precondition: bundle and logger must be non-nil.
// Postcondition: Returns a ready Facade, or an error if the threshold table is invalid.
func New(bundle *content.Bundle, rules config.RulesConfig, hook resolver.TickHook, logger *zap.Logger) (*Facade, error) {
	if bundle == nil || logger == nil {
		panic("facade.New: precondition violated: bundle and logger must be non-nil")
	}
	table, err := progression.NewTable(rules.ExperienceBase, rules.MaxLevel, rules.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("building threshold table: %w", err)
	}
	return &Facade{
		bundle:   bundle,
		rules:    rules,
		engine:   progression.NewEngine(table, bundle.Classes, rules.PointsPerLevel, logger),
		resolver: resolver.New(bundle.Effects, bundle.Classes, hook, logger),
		logger:   logger,
	}, nil
}

// Create builds a new level-1 character of classID.
//
// Postcondition: Returns the character, or an error wrapping ruleset.ErrUnknownClass.
func (f *Facade) Create(name, classID string) (*character.Character, error) {
	class, err := f.bundle.Classes.Lookup(classID)
	if err != nil {
		return nil, err
	}
	c, err := character.Build(name, class, f.rules.Bounds(), f.rules.BaseHealth)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("character created",
		zap.String("character", c.ID),
		zap.String("name", c.Name),
		zap.String("class", c.Class),
		zap.Int("max_health", c.MaxHealth),
	)
	return c, nil
}

// AddExperience awards experience to c and applies any resulting level-ups.
func (f *Facade) AddExperience(c *character.Character, amount int) (progression.Result, error) {
	return f.engine.AddExperience(c, amount)
}

// LevelUp advances c by exactly one level regardless of experience.
func (f *Facade) LevelUp(c *character.Character) (progression.Result, error) {
	return f.engine.LevelUp(c)
}

// ApplyEffect applies effectID from source to c.
func (f *Facade) ApplyEffect(c *character.Character, effectID, source string) (resolver.Outcome, error) {
	return f.resolver.ApplyEffect(c, effectID, source)
}

// AdvanceTurn processes one turn of c's active effects.
func (f *Facade) AdvanceTurn(c *character.Character) (resolver.TurnReport, error) {
	return f.resolver.AdvanceTurn(c)
}

// Reset returns c to level 1 with no experience, base stats, full health,
// and no active effects.
//
// Postcondition: c keeps its ID and Name; returns an error if its class is no longer known.
func (f *Facade) Reset(c *character.Character) error {
	class, err := f.bundle.Classes.Lookup(c.Class)
	if err != nil {
		return err
	}
	character.Reset(c, class, f.rules.BaseHealth)
	f.logger.Debug("character reset", zap.String("character", c.ID))
	return nil
}

// School returns the spell school with the given ID.
func (f *Facade) School(id string) (*ruleset.SpellSchool, error) {
	return f.bundle.Schools.Lookup(id)
}

// Classes yields every class ID in lexical order.
func (f *Facade) Classes() iter.Seq[string] {
	return f.bundle.Classes.IDs()
}

// ClassLookup returns the class definition with the given ID.
func (f *Facade) ClassLookup(id string) (*ruleset.Class, error) {
	return f.bundle.Classes.Lookup(id)
}

// Effects returns every known effect definition sorted by ID.
func (f *Facade) Effects() []*condition.EffectDef {
	return f.bundle.Effects.All()
}

// MaxLevel returns the configured level cap.
func (f *Facade) MaxLevel() int {
	return f.engine.Table().MaxLevel()
}

// ExperienceFor returns the cumulative experience required to reach level.
func (f *Facade) ExperienceFor(level int) int {
	return f.engine.Table().Threshold(level)
}

// EffectView is a read-only snapshot of one active effect.
type EffectView struct {
	ID        string
	Name      string
	Remaining int
	Source    string
}

// View is a read-only snapshot of a character for presentation layers.
// It shares no memory with the character.
type View struct {
	ID         string
	Name       string
	Class      string
	Level      int
	Experience int
	// NextThreshold is the experience needed for the next level; zero at the cap.
	NextThreshold int
	AtMaxLevel    bool
	Health        int
	MaxHealth     int
	Defeated      bool
	Stats         stats.Block
	// Modifiers is the net stat change currently held by active effects.
	Modifiers map[stats.Name]int
	// Effects lists active effects in application order.
	Effects []EffectView
}

// View returns a snapshot of c.
func (f *Facade) View(c *character.Character) View {
	next, ok := f.engine.NextThreshold(c)
	v := View{
		ID:            c.ID,
		Name:          c.Name,
		Class:         c.Class,
		Level:         c.Level,
		Experience:    c.Experience,
		NextThreshold: next,
		AtMaxLevel:    !ok,
		Health:        c.Health,
		MaxHealth:     c.MaxHealth,
		Defeated:      c.Defeated(),
		Stats:         c.Stats,
		Modifiers:     c.Modifiers(),
	}
	for _, a := range c.Effects.All() {
		v.Effects = append(v.Effects, EffectView{
			ID:        a.ID(),
			Name:      a.Def.Name,
			Remaining: a.Remaining,
			Source:    a.Source,
		})
	}
	return v
}
