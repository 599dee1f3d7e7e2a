package condition

import (
	"slices"
	"strings"

	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// Applied tracks one status effect currently active on a character.
type Applied struct {
	Def       *EffectDef
	Remaining int
	// Source identifies who or what applied the effect.
	Source string
	// StatDelta is the change the modifier made to the effective value of
	// Def.ModifierStat when the effect was applied, after clamping.
	StatDelta int
}

// ID returns the effect identifier.
func (a *Applied) ID() string {
	return a.Def.ID
}

// ActiveSet is the ordered sequence of effects applied to one character, in
// application order. It holds at most one entry per effect ID.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	entries []*Applied
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{}
}

// Get returns the active entry for id, if present.
func (s *ActiveSet) Get(id string) (*Applied, bool) {
	for _, a := range s.entries {
		if a.Def.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Has reports whether the effect with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Add appends a new entry with Def.Duration turns remaining.
//
// Precondition: def must be non-nil, non-instant, and not already present.
// Postcondition: Has(def.ID) is true.
func (s *ActiveSet) Add(def *EffectDef, source string, statDelta int) *Applied {
	if def == nil || def.Instant() {
		panic("ActiveSet.Add: precondition violated: def must be a non-nil tracked effect")
	}
	if s.Has(def.ID) {
		panic("ActiveSet.Add: precondition violated: effect " + def.ID + " already active")
	}
	a := &Applied{Def: def, Remaining: def.Duration, Source: source, StatDelta: statDelta}
	s.entries = append(s.entries, a)
	return a
}

// Refresh resets the remaining duration of id to the definition's full
// duration and records source as the latest applier.
//
// Postcondition: Returns false if id is not active; otherwise Remaining == Def.Duration.
func (s *ActiveSet) Refresh(id, source string) bool {
	a, ok := s.Get(id)
	if !ok {
		return false
	}
	a.Remaining = a.Def.Duration
	a.Source = source
	return true
}

// Remove deletes the entry with the given ID and returns it.
// If the effect is not present, Remove is a no-op returning nil.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) *Applied {
	for i, a := range s.entries {
		if a.Def.ID == id {
			s.entries = slices.Delete(s.entries, i, i+1)
			return a
		}
	}
	return nil
}

// Expired returns the entries whose remaining duration has reached 0, in ID order.
func (s *ActiveSet) Expired() []*Applied {
	var out []*Applied
	for _, a := range s.Sorted() {
		if a.Remaining <= 0 {
			out = append(out, a)
		}
	}
	return out
}

// Sorted returns the active entries ordered by effect ID.
// The slice is a new allocation; the pointed-to entries are shared.
func (s *ActiveSet) Sorted() []*Applied {
	out := slices.Clone(s.entries)
	slices.SortFunc(out, func(a, b *Applied) int { return strings.Compare(a.Def.ID, b.Def.ID) })
	return out
}

// All returns the active entries in application order.
// The slice is a new allocation; the pointed-to entries are shared and
// callers must not modify them.
func (s *ActiveSet) All() []*Applied {
	return slices.Clone(s.entries)
}

// Len returns the number of active effects.
func (s *ActiveSet) Len() int {
	return len(s.entries)
}

// Clear removes every entry without reverting modifiers and returns them.
func (s *ActiveSet) Clear() []*Applied {
	out := s.entries
	s.entries = nil
	return out
}

// StatModifiers returns the net modifier per stat that the active entries'
// definitions call for, before any clamping.
func StatModifiers(s *ActiveSet) map[stats.Name]int {
	out := make(map[stats.Name]int)
	for _, a := range s.entries {
		if a.Def.HasModifier() {
			out[a.Def.ModifierStat] = stats.AddSaturating(out[a.Def.ModifierStat], a.Def.ModifierAmount)
		}
	}
	return out
}
