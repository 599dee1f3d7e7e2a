package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rpgrules/internal/game/dice"
)

// fixedSource returns its values in order, cycling.
type fixedSource struct {
	vals []int
	i    int
}

func (f *fixedSource) Intn(n int) int {
	v := f.vals[f.i%len(f.vals)] % n
	f.i++
	return v
}

func TestRollResult_TotalAndString(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
	assert.Equal(t, "2d6+3: [4 5] +3 = 12", r.String())
}

func TestParse_Forms(t *testing.T) {
	cases := map[string]dice.Expression{
		"d20":     {Raw: "d20", Count: 1, Sides: 20},
		"2d6":     {Raw: "2d6", Count: 2, Sides: 6},
		"2d6+3":   {Raw: "2d6+3", Count: 2, Sides: 6, Modifier: 3},
		"4d8-2":   {Raw: "4d8-2", Count: 4, Sides: 8, Modifier: -2},
		"4d6kh3":  {Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3},
		"3D20+10": {Raw: "3D20+10", Count: 3, Sides: 20, Modifier: 10},
	}
	for in, want := range cases {
		got, err := dice.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{
		"", "20", "0d6", "2d1", "2d", "4d6kh4", "4d6kh0", "d6+", "2x6",
		"99999999999999999999d6", "1d99999999999999999999", "2d6+99999999999999999999",
		"4d6kh99999999999999999999", "1001d6", "1d1001", "1d6+1000001",
	} {
		_, err := dice.Parse(in)
		assert.Error(t, err, in)
	}
}

func TestParse_AcceptsLimits(t *testing.T) {
	e, err := dice.Parse("1000d1000-1000000")
	require.NoError(t, err)
	assert.Equal(t, dice.MaxCount, e.Count)
	assert.Equal(t, dice.MaxSides, e.Sides)
	assert.Equal(t, -dice.MaxModifier, e.Modifier)
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestRoll_KeepHighest(t *testing.T) {
	src := &fixedSource{vals: []int{0, 5, 2, 3}}
	res := dice.Roll(dice.MustParse("4d6kh3"), src)
	assert.Equal(t, []int{6, 4, 3}, res.Dice)
	assert.Equal(t, 13, res.Total())
}

func TestRoller_LogsRoll(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewRoller(&fixedSource{vals: []int{4}}, zap.New(core))
	res, err := r.RollExpr("1d6+1")
	require.NoError(t, err)
	assert.Equal(t, 6, res.Total())
	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(6), entries[0].ContextMap()["total"])
}

func TestSeededSource_Reproducible(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for range 100 {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestCryptoSource_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestPropertyRoll_WithinRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		mod := rapid.IntRange(-50, 50).Draw(rt, "mod")
		seed := rapid.Uint64().Draw(rt, "seed")
		expr := dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}
		res := dice.Roll(expr, dice.NewSeededSource(seed))
		if len(res.Dice) != count {
			rt.Fatalf("got %d dice, want %d", len(res.Dice), count)
		}
		for _, d := range res.Dice {
			if d < 1 || d > sides {
				rt.Fatalf("face %d outside [1, %d]", d, sides)
			}
		}
		if res.Total() < count+mod || res.Total() > count*sides+mod {
			rt.Fatalf("total %d out of range", res.Total())
		}
	})
}
