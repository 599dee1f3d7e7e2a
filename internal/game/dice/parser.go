package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Limits on a parsed expression.
const (
	MaxCount    = 1000
	MaxSides    = 1000
	MaxModifier = 1_000_000
)

// Expression is a parsed dice expression.
//
// Invariant: 1 <= Count <= MaxCount; 2 <= Sides <= MaxSides; 0 <= KeepHighest < Count;
// |Modifier| <= MaxModifier.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
	// KeepHighest keeps only the N highest faces when > 0 (as in "4d6kh3").
	KeepHighest int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse parses "d20", "2d6", "2d6+3", "4d8-2", or "4d6kh3".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	m := exprPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(expr)))
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	e := Expression{Raw: expr, Count: 1}
	var err error
	if m[1] != "" {
		if e.Count, err = strconv.Atoi(m[1]); err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", expr, err)
		}
	}
	if e.Sides, err = strconv.Atoi(m[2]); err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", expr, err)
	}
	if m[3] != "" {
		if e.KeepHighest, err = strconv.Atoi(m[3]); err != nil {
			return Expression{}, fmt.Errorf("dice: invalid kh value in %q: %w", expr, err)
		}
	}
	if m[4] != "" {
		if e.Modifier, err = strconv.Atoi(m[4]); err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
	}

	switch {
	case e.Count < 1 || e.Count > MaxCount:
		return Expression{}, fmt.Errorf("dice: die count in %q must be within [1, %d]", expr, MaxCount)
	case e.Sides < 2 || e.Sides > MaxSides:
		return Expression{}, fmt.Errorf("dice: die sides in %q must be within [2, %d]", expr, MaxSides)
	case e.Modifier < -MaxModifier || e.Modifier > MaxModifier:
		return Expression{}, fmt.Errorf("dice: modifier in %q must be within +/-%d", expr, MaxModifier)
	case m[3] != "" && (e.KeepHighest < 1 || e.KeepHighest >= e.Count):
		return Expression{}, fmt.Errorf("dice: kh %d in %q must be within [1, %d)", e.KeepHighest, expr, e.Count)
	}
	return e, nil
}

// MustParse is Parse that panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err.Error())
	}
	return e
}
