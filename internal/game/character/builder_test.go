package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rpgrules/internal/game/character"
	"github.com/cory-johannsen/rpgrules/internal/game/condition"
	"github.com/cory-johannsen/rpgrules/internal/game/ruleset"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

func makeClass(con, hpPerLevel int) *ruleset.Class {
	return &ruleset.Class{
		ID:                "test_class",
		Name:              "Test Class",
		BaseStats:         stats.Block{Strength: 12, Dexterity: 10, Constitution: con, Intelligence: 14, Wisdom: 10, Charisma: 8},
		HitPointsPerLevel: hpPerLevel,
	}
}

func TestBuild_UsesClassBaseStats(t *testing.T) {
	c, err := character.Build("Hero", makeClass(14, 8), stats.DefaultBounds(), 10)
	require.NoError(t, err)

	assert.Equal(t, 12, c.Stats.Strength)
	assert.Equal(t, 14, c.Stats.Intelligence)
	assert.Equal(t, 8, c.Stats.Charisma)
	assert.Equal(t, "test_class", c.Class)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.Experience)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 0, c.Effects.Len())
}

func TestBuild_CalculatesHealth(t *testing.T) {
	c, err := character.Build("Hero", makeClass(14, 8), stats.DefaultBounds(), 10)
	require.NoError(t, err)
	// 10 base + 8 per level + 2 con modifier
	assert.Equal(t, 20, c.MaxHealth)
	assert.Equal(t, 20, c.Health)
}

func TestBuild_ClampsBaseStats(t *testing.T) {
	class := makeClass(14, 8)
	class.BaseStats.Strength = 150
	c, err := character.Build("Hero", class, stats.Bounds{Min: 3, Max: 18}, 10)
	require.NoError(t, err)
	assert.Equal(t, 18, c.Stats.Strength)
}

func TestBuild_DistinctIDs(t *testing.T) {
	a, err := character.Build("A", makeClass(10, 6), stats.DefaultBounds(), 10)
	require.NoError(t, err)
	b, err := character.Build("B", makeClass(10, 6), stats.DefaultBounds(), 10)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestBuild_EmptyNameError(t *testing.T) {
	_, err := character.Build("", makeClass(10, 6), stats.DefaultBounds(), 10)
	require.Error(t, err)
}

func TestBuild_NilClassError(t *testing.T) {
	_, err := character.Build("Hero", nil, stats.DefaultBounds(), 10)
	require.Error(t, err)
}

func TestBuild_InvertedBoundsError(t *testing.T) {
	_, err := character.Build("Hero", makeClass(10, 6), stats.Bounds{Min: 10, Max: 1}, 10)
	require.Error(t, err)
}

func TestAdjustHealth_Clamps(t *testing.T) {
	c := &character.Character{Health: 40, MaxHealth: 50}
	assert.Equal(t, 5, c.AdjustHealth(5))
	assert.Equal(t, 45, c.Health)
	assert.Equal(t, 5, c.AdjustHealth(20))
	assert.Equal(t, 50, c.Health)
	assert.Equal(t, -50, c.AdjustHealth(-80))
	assert.Equal(t, 0, c.Health)
	assert.True(t, c.Defeated())
}

func TestReset_RestoresStartingState(t *testing.T) {
	class := makeClass(12, 6)
	c, err := character.Build("Hero", class, stats.DefaultBounds(), 10)
	require.NoError(t, err)
	id := c.ID
	c.Level = 5
	c.Experience = 900
	c.Stats.Intelligence = 30
	c.Health = 1
	c.Effects.Add(&condition.EffectDef{ID: "poison", Duration: 3}, "spider", 0)

	character.Reset(c, class, 10)

	assert.Equal(t, id, c.ID)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.Experience)
	assert.Equal(t, 14, c.Stats.Intelligence)
	assert.Equal(t, c.MaxHealth, c.Health)
	assert.Equal(t, 0, c.Effects.Len())
}

func TestRefreshStat_EffectiveIsBasePlusModifiers(t *testing.T) {
	class := makeClass(12, 6)
	c, err := character.Build("Hero", class, stats.DefaultBounds(), 10)
	require.NoError(t, err)
	require.Equal(t, c.Base, c.Stats)

	c.Effects.Add(&condition.EffectDef{ID: "focus", Duration: 2, ModifierStat: stats.Intelligence, ModifierAmount: 3}, "sage", 0)
	c.Effects.Add(&condition.EffectDef{ID: "fog", Duration: 2, ModifierStat: stats.Intelligence, ModifierAmount: -1}, "swamp", 0)
	changed, err := c.RefreshStat(stats.Intelligence)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, 16, c.Stats.Intelligence)
	assert.Equal(t, map[stats.Name]int{stats.Intelligence: 2}, c.Modifiers())

	c.Effects.Remove("focus")
	c.RefreshStats()
	assert.Equal(t, 13, c.Stats.Intelligence)
	assert.Equal(t, 14, c.Base.Intelligence)
}

// Property: MaxHealth is always >= 1 regardless of constitution.
func TestBuild_MaxHealthAlwaysPositive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		con := rapid.IntRange(1, 30).Draw(rt, "con")
		hpPerLevel := rapid.IntRange(0, 12).Draw(rt, "hpPerLevel")
		base := rapid.IntRange(0, 20).Draw(rt, "base")
		c, err := character.Build("Hero", makeClass(con, hpPerLevel), stats.DefaultBounds(), base)
		if err != nil {
			rt.Fatal(err)
		}
		if c.MaxHealth < 1 {
			rt.Fatalf("MaxHealth %d < 1 with con=%d hpPerLevel=%d base=%d", c.MaxHealth, con, hpPerLevel, base)
		}
		if c.Health != c.MaxHealth {
			rt.Fatalf("Health %d != MaxHealth %d on new character", c.Health, c.MaxHealth)
		}
	})
}
