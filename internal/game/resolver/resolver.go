// Package resolver applies status effects to characters and advances them
// turn by turn.
package resolver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/rpgrules/internal/game/character"
	"github.com/cory-johannsen/rpgrules/internal/game/condition"
)

// Status classifies the outcome of ApplyEffect.
type Status string

const (
	// StatusApplied means the effect took hold (or resolved instantly).
	StatusApplied Status = "applied"
	// StatusRefreshed means an already active effect had its duration reset.
	StatusRefreshed Status = "refreshed"
	// StatusResisted means the character's class is immune; nothing changed.
	StatusResisted Status = "resisted"
)

// EffectLookup resolves effect definitions by ID.
type EffectLookup interface {
	Lookup(id string) (*condition.EffectDef, error)
}

// ImmunityChecker reports class-side immunities.
type ImmunityChecker interface {
	IsImmune(classID, effectID string) bool
}

// TickHook runs a scripted per-turn hook for an active effect and returns an
// extra health delta (positive heals, negative damages).
type TickHook interface {
	EffectTick(hook, characterID, effectID string, remaining int) (int, error)
}

// Outcome reports what ApplyEffect did.
type Outcome struct {
	Status   Status
	EffectID string
	Source   string
	// Instant is true when the effect resolved immediately and was not tracked.
	Instant bool
	// HealthDelta is the clamped health change made by an instant effect.
	HealthDelta int
	// StatDelta is the change to the effective stat made by a newly tracked effect.
	StatDelta int
	// Remaining is the tracked effect's remaining duration after the call.
	Remaining int
	Defeated  bool
}

// Tick reports one effect's processing during AdvanceTurn.
type Tick struct {
	EffectID    string
	Damage      int
	Heal        int
	Scripted    int
	HealthDelta int
	Remaining   int
}

// TurnReport summarizes one AdvanceTurn call.
type TurnReport struct {
	Ticks []Tick
	// Expired lists effects removed at the end of the turn, in ID order.
	Expired      []string
	HealthBefore int
	HealthAfter  int
	Defeated     bool
}

// Resolver applies and advances status effects. It holds only read-only
// catalogs and may be shared across sessions; each Character must still be
// driven by one caller at a time.
type Resolver struct {
	effects EffectLookup
	classes ImmunityChecker
	hook    TickHook
	logger  *zap.Logger
}

// New creates a Resolver. hook may be nil to disable scripted ticks.
//
// Precondition: effects, classes, and logger must be non-nil.
func New(effects EffectLookup, classes ImmunityChecker, hook TickHook, logger *zap.Logger) *Resolver {
	if effects == nil || classes == nil || logger == nil {
		panic("resolver.New: precondition violated: effects, classes, and logger must be non-nil")
	}
	return &Resolver{effects: effects, classes: classes, hook: hook, logger: logger}
}

// ApplyEffect applies effectID from source to c.
//
// Immune characters are reported as StatusResisted with no state change.
// Instantaneous effects adjust health once and are never tracked. Reapplying
// an active effect refreshes its duration instead of stacking.
//
// Postcondition: c.Effects holds at most one entry for effectID; returns an
// error wrapping condition.ErrUnknownEffect for unknown IDs.
func (r *Resolver) ApplyEffect(c *character.Character, effectID, source string) (Outcome, error) {
	def, err := r.effects.Lookup(effectID)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{EffectID: def.ID, Source: source}

	if r.classes.IsImmune(c.Class, def.ID) || def.ImmuneTo(c.Class) {
		out.Status = StatusResisted
		r.logger.Debug("effect resisted",
			zap.String("character", c.ID),
			zap.String("effect", def.ID),
			zap.String("class", c.Class),
		)
		return out, nil
	}

	if def.Instant() {
		out.Status = StatusApplied
		out.Instant = true
		out.HealthDelta = c.AdjustHealth(def.HealAmount - def.DamagePerTurn)
		out.Defeated = c.Defeated()
		r.logger.Debug("instant effect applied",
			zap.String("character", c.ID),
			zap.String("effect", def.ID),
			zap.Int("health_delta", out.HealthDelta),
		)
		return out, nil
	}

	if c.Effects.Refresh(def.ID, source) {
		out.Status = StatusRefreshed
		out.Remaining = def.Duration
		r.logger.Debug("effect refreshed",
			zap.String("character", c.ID),
			zap.String("effect", def.ID),
			zap.Int("remaining", def.Duration),
		)
		return out, nil
	}

	a := c.Effects.Add(def, source, 0)
	if def.HasModifier() {
		applied, err := c.RefreshStat(def.ModifierStat)
		if err != nil {
			c.Effects.Remove(def.ID)
			return Outcome{}, err
		}
		a.StatDelta = applied
		out.StatDelta = applied
	}
	out.Status = StatusApplied
	out.Remaining = a.Remaining
	r.logger.Debug("effect applied",
		zap.String("character", c.ID),
		zap.String("effect", def.ID),
		zap.String("source", source),
		zap.Int("remaining", a.Remaining),
		zap.Int("stat_delta", out.StatDelta),
	)
	return out, nil
}

// AdvanceTurn resolves one turn of every active effect on c in effect-ID
// order: per-turn damage and healing, then any scripted hook, then the
// duration decrement. Effects whose duration reached zero are removed only
// after all effects have ticked, and the stats they modified are recomputed
// from the character's base values.
//
// Postcondition: 0 <= c.Health <= c.MaxHealth; with no active effects c is unchanged.
func (r *Resolver) AdvanceTurn(c *character.Character) (TurnReport, error) {
	rep := TurnReport{HealthBefore: c.Health}

	for _, a := range c.Effects.Sorted() {
		tk := Tick{EffectID: a.ID(), Damage: a.Def.DamagePerTurn, Heal: a.Def.HealAmount}
		if a.Def.OnTick != "" && r.hook != nil {
			extra, err := r.hook.EffectTick(a.Def.OnTick, c.ID, a.ID(), a.Remaining)
			if err != nil {
				r.logger.Warn("effect tick hook failed",
					zap.String("character", c.ID),
					zap.String("effect", a.ID()),
					zap.String("hook", a.Def.OnTick),
					zap.Error(err),
				)
			} else {
				tk.Scripted = extra
			}
		}
		tk.HealthDelta = c.AdjustHealth(tk.Heal - tk.Damage + tk.Scripted)
		a.Remaining--
		if a.Remaining < 0 {
			a.Remaining = 0
		}
		tk.Remaining = a.Remaining
		rep.Ticks = append(rep.Ticks, tk)
	}

	for _, a := range c.Effects.Expired() {
		c.Effects.Remove(a.ID())
		if a.Def.HasModifier() {
			if _, err := c.RefreshStat(a.Def.ModifierStat); err != nil {
				return rep, err
			}
		}
		rep.Expired = append(rep.Expired, a.ID())
	}

	rep.HealthAfter = c.Health
	rep.Defeated = c.Defeated()
	if len(rep.Ticks) > 0 {
		r.logger.Debug("turn advanced",
			zap.String("character", c.ID),
			zap.Int("effects", len(rep.Ticks)),
			zap.Strings("expired", rep.Expired),
			zap.Int("health", c.Health),
			zap.Bool("defeated", rep.Defeated),
		)
	}
	return rep, nil
}
