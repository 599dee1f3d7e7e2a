// Package character defines the character domain model and pure creation logic.
package character

import (
	"time"

	"github.com/cory-johannsen/rpgrules/internal/game/condition"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// Character is a player character's live rules state.
//
// A Character is owned by exactly one session and is not safe for concurrent use.
type Character struct {
	ID    string
	Name  string
	Class string // class ID
	Level int
	// Experience is cumulative and only decreases on Reset.
	Experience int

	// Base holds the stats earned from class and level-ups. Stats is Base
	// plus the modifiers of active effects, clamped to Bounds.
	Base   stats.Block
	Stats  stats.Block
	Bounds stats.Bounds

	MaxHealth int
	Health    int

	Effects *condition.ActiveSet

	CreatedAt time.Time
}

// AdjustStat adds delta to the base value of stat n, clamped to the
// character's bounds, and refreshes the effective value.
//
// Postcondition: Returns the amount actually applied to the base value.
func (c *Character) AdjustStat(n stats.Name, delta int) (int, error) {
	applied, err := c.Base.Adjust(n, delta, c.Bounds)
	if err != nil {
		return 0, err
	}
	if _, err := c.RefreshStat(n); err != nil {
		return applied, err
	}
	return applied, nil
}

// RefreshStat recomputes the effective value of stat n from its base value
// and the modifiers of the effects currently active.
//
// Postcondition: Returns the change in the effective value.
func (c *Character) RefreshStat(n stats.Name) (int, error) {
	base, err := c.Base.Get(n)
	if err != nil {
		return 0, err
	}
	current, _ := c.Stats.Get(n)
	target := stats.AddSaturating(base, c.modifiers()[n])
	return c.Stats.Adjust(n, c.Bounds.Clamp(target)-current, c.Bounds)
}

// RefreshStats recomputes every effective stat. Call it after effects are
// removed without going through the resolver.
func (c *Character) RefreshStats() {
	for _, n := range stats.Names {
		_, _ = c.RefreshStat(n)
	}
}

// Modifiers returns the net effective change per stat that active effects
// currently hold over the base values. Stats at zero are omitted.
func (c *Character) Modifiers() map[stats.Name]int {
	out := make(map[stats.Name]int)
	for _, n := range stats.Names {
		base, _ := c.Base.Get(n)
		eff, _ := c.Stats.Get(n)
		if eff != base {
			out[n] = eff - base
		}
	}
	return out
}

func (c *Character) modifiers() map[stats.Name]int {
	if c.Effects == nil {
		return nil
	}
	return condition.StatModifiers(c.Effects)
}

// AdjustHealth adds delta to Health, clamped to [0, MaxHealth].
//
// Postcondition: Returns the amount actually applied; 0 <= Health <= MaxHealth.
func (c *Character) AdjustHealth(delta int) int {
	before := c.Health
	h := stats.AddSaturating(before, delta)
	if h < 0 {
		h = 0
	}
	if h > c.MaxHealth {
		h = c.MaxHealth
	}
	c.Health = h
	return h - before
}

// Defeated reports whether the character's health has reached zero.
func (c *Character) Defeated() bool {
	return c.Health <= 0
}
