package character

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/rpgrules/internal/game/condition"
	"github.com/cory-johannsen/rpgrules/internal/game/ruleset"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// StartingHealth returns the level-1 maximum health for a class:
// max(1, baseHealth + HitPointsPerLevel + constitution modifier).
func StartingHealth(class *ruleset.Class, abilities stats.Block, baseHealth int) int {
	hp := baseHealth + class.HitPointsPerLevel + abilities.Modifier(stats.Constitution)
	if hp < 1 {
		hp = 1
	}
	return hp
}

// Build constructs a new level-1 Character of the given class.
// Stats start at the class base values clamped to bounds; health starts full.
//
// Precondition: name must be non-empty; class must be non-nil; bounds.Min <= bounds.Max.
// Postcondition: Returns a Character with a fresh ID, or a non-nil error.
func Build(name string, class *ruleset.Class, bounds stats.Bounds, baseHealth int) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}
	if bounds.Min > bounds.Max {
		return nil, errors.New("stat bounds min must not exceed max")
	}

	abilities := class.BaseStats.Clamped(bounds)
	maxHP := StartingHealth(class, abilities, baseHealth)

	return &Character{
		ID:        uuid.New().String(),
		Name:      name,
		Class:     class.ID,
		Level:     1,
		Base:      abilities,
		Stats:     abilities,
		Bounds:    bounds,
		MaxHealth: maxHP,
		Health:    maxHP,
		Effects:   condition.NewActiveSet(),
		CreatedAt: time.Now(),
	}, nil
}

// Reset returns c to its freshly built state for class: level 1, no
// experience, base stats, full health, and no active effects. ID and Name are kept.
//
// Precondition: class must be non-nil.
func Reset(c *Character, class *ruleset.Class, baseHealth int) {
	c.Class = class.ID
	c.Level = 1
	c.Experience = 0
	c.Base = class.BaseStats.Clamped(c.Bounds)
	c.Stats = c.Base
	c.MaxHealth = StartingHealth(class, c.Stats, baseHealth)
	c.Health = c.MaxHealth
	c.Effects.Clear()
}
