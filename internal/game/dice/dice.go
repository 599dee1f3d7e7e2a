// Package dice rolls dice expressions such as "3d20+10" for the simulation
// tools. The rules core itself is deterministic and never rolls.
package dice

import "fmt"

// RollResult is the audit trail of one roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	// Dice holds the kept die faces before the modifier.
	Dice     []int
	Modifier int
}

// Total returns the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String formats the roll as "2d6+3: [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s: %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for rolls.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a value in [0, n). Precondition: n > 0.
	Intn(n int) int
}
