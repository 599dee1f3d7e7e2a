package progression

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rpgrules/internal/game/character"
	"github.com/cory-johannsen/rpgrules/internal/game/ruleset"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// ErrInvalidAmount is returned when a negative experience amount is awarded.
var ErrInvalidAmount = errors.New("experience amount must not be negative")

// ClassLookup resolves class definitions by ID.
type ClassLookup interface {
	Lookup(id string) (*ruleset.Class, error)
}

// LevelUpEvent records one level gained, for callers to log or animate.
type LevelUpEvent struct {
	CharacterID string
	From        int
	To          int
	// Gains is the stat increase actually applied per stat after clamping.
	Gains map[stats.Name]int
	// Saturated lists stats whose allotted points were cut short by the stat cap.
	Saturated []stats.Name
	// HealthGain is added to MaxHealth. Current health rises by the same
	// amount unless the character is defeated.
	HealthGain int
}

// Result is the outcome of an experience award or explicit level-up.
type Result struct {
	Experience int
	Level      int
	Events     []LevelUpEvent
	// MaxLevelReached is informational: the character is at the level cap.
	MaxLevelReached bool
}

// Engine applies experience and level-ups to characters.
// It holds only read-only state and is safe to share across sessions.
type Engine struct {
	table          *Table
	classes        ClassLookup
	pointsPerLevel int
	logger         *zap.Logger
}

// NewEngine creates a progression Engine.
//
// Precondition: table, classes, and logger must be non-nil; pointsPerLevel >= 0.
func NewEngine(table *Table, classes ClassLookup, pointsPerLevel int, logger *zap.Logger) *Engine {
	if table == nil || classes == nil || logger == nil {
		panic("progression.NewEngine: precondition violated: table, classes, and logger must be non-nil")
	}
	return &Engine{table: table, classes: classes, pointsPerLevel: pointsPerLevel, logger: logger}
}

// Table returns the engine's threshold table.
func (e *Engine) Table() *Table {
	return e.table
}

// AddExperience awards amount experience to c, then applies one level-up for
// every threshold the new total crosses. At the level cap experience still
// accumulates but no events are produced. The total saturates at math.MaxInt.
//
// Precondition: c must be non-nil.
// Postcondition: c.Experience and c.Level never decrease; returns ErrInvalidAmount for amount < 0.
func (e *Engine) AddExperience(c *character.Character, amount int) (Result, error) {
	if amount < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	class, err := e.classes.Lookup(c.Class)
	if err != nil {
		return Result{}, err
	}

	c.Experience = stats.AddSaturating(c.Experience, amount)
	var events []LevelUpEvent
	for c.Level < e.table.MaxLevel() && c.Experience >= e.table.Threshold(c.Level+1) {
		events = append(events, e.advance(c, class))
	}
	return e.result(c, events), nil
}

// LevelUp advances c by exactly one level regardless of experience. At the
// level cap it changes nothing and reports MaxLevelReached.
//
// Precondition: c must be non-nil.
func (e *Engine) LevelUp(c *character.Character) (Result, error) {
	class, err := e.classes.Lookup(c.Class)
	if err != nil {
		return Result{}, err
	}
	var events []LevelUpEvent
	if c.Level < e.table.MaxLevel() {
		events = append(events, e.advance(c, class))
	}
	return e.result(c, events), nil
}

// NextThreshold returns the experience needed for c's next level, and false at the cap.
func (e *Engine) NextThreshold(c *character.Character) (int, bool) {
	if c.Level >= e.table.MaxLevel() {
		return 0, false
	}
	return e.table.Threshold(c.Level + 1), true
}

func (e *Engine) result(c *character.Character, events []LevelUpEvent) Result {
	return Result{
		Experience:      c.Experience,
		Level:           c.Level,
		Events:          events,
		MaxLevelReached: c.Level >= e.table.MaxLevel(),
	}
}

func (e *Engine) advance(c *character.Character, class *ruleset.Class) LevelUpEvent {
	ev := LevelUpEvent{
		CharacterID: c.ID,
		From:        c.Level,
		To:          c.Level + 1,
		Gains:       make(map[stats.Name]int),
	}
	c.Level++

	alloc := Distribute(e.pointsPerLevel, class.Weights())
	for _, n := range stats.Names {
		points, ok := alloc[n]
		if !ok {
			continue
		}
		applied, _ := c.AdjustStat(n, points)
		if applied != 0 {
			ev.Gains[n] = applied
		}
		if applied < points {
			ev.Saturated = append(ev.Saturated, n)
		}
	}

	gain := class.HitPointsPerLevel + c.Stats.Modifier(stats.Constitution)
	if gain < 1 {
		gain = 1
	}
	c.MaxHealth += gain
	if !c.Defeated() {
		c.Health += gain
	}
	ev.HealthGain = gain

	e.logger.Debug("level up",
		zap.String("character", c.ID),
		zap.String("class", c.Class),
		zap.Int("from", ev.From),
		zap.Int("to", ev.To),
		zap.Any("gains", ev.Gains),
		zap.Int("health_gain", gain),
	)
	return ev
}
