// Package progression computes experience thresholds and applies level-ups
// with class-weighted stat growth.
package progression

import (
	"errors"
	"fmt"
)

// DefaultExperienceBase is the level-2 threshold of the default triangular table.
const DefaultExperienceBase = 100

// Table maps levels to the cumulative experience required to reach them.
//
// Level 1 always requires 0. An explicit threshold list covers levels
// 2..len+1; beyond it, or when no list is given, thresholds follow
// base × (L-1) × L / 2 (100, 300, 600, ... for base 100).
type Table struct {
	base       int
	thresholds []int
	maxLevel   int
}

// NewTable builds a threshold table.
//
// Precondition: maxLevel >= 1; base > 0; explicit must be strictly increasing and positive.
// When maxLevel reaches past the explicit list, its last value must stay below
// the generated threshold for the first level after it.
// Postcondition: Returns a Table or a non-nil error describing the violation.
func NewTable(base, maxLevel int, explicit []int) (*Table, error) {
	if maxLevel < 1 {
		return nil, fmt.Errorf("max level must be >= 1, got %d", maxLevel)
	}
	if base <= 0 {
		return nil, fmt.Errorf("experience base must be > 0, got %d", base)
	}
	prev := 0
	for i, v := range explicit {
		if v <= prev {
			return nil, fmt.Errorf("threshold for level %d (%d) must exceed %d", i+2, v, prev)
		}
		prev = v
	}
	t := &Table{base: base, maxLevel: maxLevel, thresholds: append([]int(nil), explicit...)}
	if len(explicit) > 0 && maxLevel > len(explicit)+1 && t.triangular(len(explicit)+2) <= prev {
		return nil, errors.New("explicit thresholds must end below the generated curve")
	}
	return t, nil
}

func (t *Table) triangular(level int) int {
	n := level - 1
	return t.base * n * (n + 1) / 2
}

// MaxLevel returns the configured level cap.
func (t *Table) MaxLevel() int {
	return t.maxLevel
}

// Threshold returns the cumulative experience needed to reach level.
// Levels <= 1 return 0.
func (t *Table) Threshold(level int) int {
	if level <= 1 {
		return 0
	}
	if i := level - 2; i < len(t.thresholds) {
		return t.thresholds[i]
	}
	return t.triangular(level)
}

// LevelFor returns the level reached with xp cumulative experience, capped at MaxLevel.
func (t *Table) LevelFor(xp int) int {
	level := 1
	for level < t.maxLevel && xp >= t.Threshold(level+1) {
		level++
	}
	return level
}
