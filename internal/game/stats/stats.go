// Package stats defines the six core character attributes and their bounded
// arithmetic.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownStat is returned when a stat name is not one of the six core attributes.
var ErrUnknownStat = errors.New("no such stat")

// Name identifies one of the six core attributes.
type Name string

const (
	Strength     Name = "strength"
	Dexterity    Name = "dexterity"
	Constitution Name = "constitution"
	Intelligence Name = "intelligence"
	Wisdom       Name = "wisdom"
	Charisma     Name = "charisma"
)

// Names lists the six attributes in canonical display order.
var Names = []Name{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// ParseName validates s as a stat name.
//
// Postcondition: Returns the Name, or an error wrapping ErrUnknownStat.
func ParseName(s string) (Name, error) {
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStat, s)
}

// Short returns the three-letter display label for n.
func (n Name) Short() string {
	switch n {
	case Strength:
		return "STR"
	case Dexterity:
		return "DEX"
	case Constitution:
		return "CON"
	case Intelligence:
		return "INT"
	case Wisdom:
		return "WIS"
	case Charisma:
		return "CHA"
	}
	return fmt.Sprintf("<%s>", string(n))
}

// Bounds is the inclusive valid range for every stat value.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds returns the 1-99 range used when no configuration overrides it.
func DefaultBounds() Bounds {
	return Bounds{Min: 1, Max: 99}
}

// Clamp returns v limited to [b.Min, b.Max].
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// AddSaturating returns a+b, pinned to math.MaxInt or math.MinInt instead of
// wrapping.
func AddSaturating(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// Block holds the six core attribute values for a character.
type Block struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Constitution int `yaml:"constitution"`
	Intelligence int `yaml:"intelligence"`
	Wisdom       int `yaml:"wisdom"`
	Charisma     int `yaml:"charisma"`
}

// Uniform returns a Block with every stat set to v.
func Uniform(v int) Block {
	return Block{v, v, v, v, v, v}
}

func (b *Block) field(n Name) (*int, error) {
	switch n {
	case Strength:
		return &b.Strength, nil
	case Dexterity:
		return &b.Dexterity, nil
	case Constitution:
		return &b.Constitution, nil
	case Intelligence:
		return &b.Intelligence, nil
	case Wisdom:
		return &b.Wisdom, nil
	case Charisma:
		return &b.Charisma, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStat, string(n))
}

// Get returns the value of stat n.
func (b Block) Get(n Name) (int, error) {
	p, err := b.field(n)
	if err != nil {
		return 0, err
	}
	return *p, nil
}

// Adjust adds delta to stat n, clamping the result to bounds. It never fails
// on saturation; the amount actually applied is returned so callers can tell
// when the stat hit a limit (applied != delta).
//
// Postcondition: bounds.Min <= Get(n) <= bounds.Max.
func (b *Block) Adjust(n Name, delta int, bounds Bounds) (int, error) {
	p, err := b.field(n)
	if err != nil {
		return 0, err
	}
	before := *p
	*p = bounds.Clamp(AddSaturating(before, delta))
	return *p - before, nil
}

// Clamped returns a copy of b with every stat limited to bounds.
func (b Block) Clamped(bounds Bounds) Block {
	out := b
	for _, n := range Names {
		p, _ := out.field(n)
		*p = bounds.Clamp(*p)
	}
	return out
}

// Total returns the sum of all six stats.
func (b Block) Total() int {
	return b.Strength + b.Dexterity + b.Constitution + b.Intelligence + b.Wisdom + b.Charisma
}

// Modifier returns the ability modifier for stat n: floor((score - 10) / 2).
func (b Block) Modifier(n Name) int {
	v, err := b.Get(n)
	if err != nil {
		return 0
	}
	d := v - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// Map returns the stats keyed by Name.
func (b Block) Map() map[Name]int {
	out := make(map[Name]int, len(Names))
	for _, n := range Names {
		v, _ := b.Get(n)
		out[n] = v
	}
	return out
}
