package content_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rpgrules/internal/content"
	"github.com/cory-johannsen/rpgrules/internal/game/condition"
	"github.com/cory-johannsen/rpgrules/internal/game/ruleset"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

func TestDefault_LoadsEmbeddedTables(t *testing.T) {
	b, err := content.Default()
	require.NoError(t, err)

	assert.Equal(t, 6, b.Classes.Len())
	assert.Len(t, b.Effects.All(), 8)

	var schools []string
	for id := range b.Schools.IDs() {
		schools = append(schools, id)
	}
	assert.Equal(t, []string{"abjuration", "divination", "enchantment", "evocation", "illusion", "necromancy"}, schools)
}

func TestDefault_WarriorResistsStun(t *testing.T) {
	b, err := content.Default()
	require.NoError(t, err)
	assert.True(t, b.Classes.IsImmune("warrior", "stun"))
	assert.False(t, b.Classes.IsImmune("mage", "stun"))
}

func TestDefault_MageFavorsIntelligence(t *testing.T) {
	b, err := content.Default()
	require.NoError(t, err)
	mage, err := b.Classes.Lookup("mage")
	require.NoError(t, err)

	w := mage.Weights()
	for _, n := range stats.Names {
		if n != stats.Intelligence {
			assert.Greater(t, w[stats.Intelligence], w[n], "intelligence should outweigh %s", n)
		}
	}
}

func TestDefault_HealAndPoisonMatchTables(t *testing.T) {
	b, err := content.Default()
	require.NoError(t, err)

	heal, err := b.Effects.Lookup("heal")
	require.NoError(t, err)
	assert.True(t, heal.Instant())
	assert.Equal(t, 5, heal.HealAmount)

	poison, err := b.Effects.Lookup("poison")
	require.NoError(t, err)
	assert.Equal(t, 3, poison.Duration)
	assert.Equal(t, 2, poison.DamagePerTurn)
}

func TestDefault_SchoolMultipliers(t *testing.T) {
	b, err := content.Default()
	require.NoError(t, err)
	nec, err := b.Schools.Lookup("necromancy")
	require.NoError(t, err)
	assert.Equal(t, stats.Intelligence, nec.PrimaryStat)
	assert.InDelta(t, 1.2, nec.ManaMultiplier, 1e-9)

	_, err = b.Schools.Lookup("chronomancy")
	assert.ErrorIs(t, err, ruleset.ErrUnknownSchool)
}

func minimalFS() fstest.MapFS {
	return fstest.MapFS{
		"classes/knight.yaml": {Data: []byte("id: knight\nname: Knight\nimmunities: [fear]\n")},
		"effects/fear.yaml":   {Data: []byte("id: fear\nname: Fear\nduration: 2\n")},
		"schools/rune.yaml": {Data: []byte(
			"id: rune\nname: Rune\nprimary_stat: wisdom\nsecondary_stat: strength\nmana_multiplier: 1\ncooldown_multiplier: 1\n")},
	}
}

func TestLoad_MinimalTables(t *testing.T) {
	b, err := content.Load(minimalFS())
	require.NoError(t, err)
	assert.True(t, b.Classes.IsImmune("knight", "fear"))
}

func TestLoad_ClassImmunityToUnknownEffect(t *testing.T) {
	fsys := minimalFS()
	fsys["classes/knight.yaml"] = &fstest.MapFile{Data: []byte("id: knight\nname: Knight\nimmunities: [plague]\n")}
	_, err := content.Load(fsys)
	require.Error(t, err)
	assert.ErrorIs(t, err, condition.ErrUnknownEffect)
	assert.Contains(t, err.Error(), "plague")
}

func TestLoad_EffectImmuneUnknownClass(t *testing.T) {
	fsys := minimalFS()
	fsys["effects/fear.yaml"] = &fstest.MapFile{Data: []byte("id: fear\nname: Fear\nduration: 2\nimmune_classes: [paladin]\n")}
	_, err := content.Load(fsys)
	require.Error(t, err)
	assert.ErrorIs(t, err, ruleset.ErrUnknownClass)
}

func TestLoad_MissingDirectory(t *testing.T) {
	fsys := minimalFS()
	delete(fsys, "schools/rune.yaml")
	_, err := content.Load(fsys)
	assert.Error(t, err)
}

func TestLoadDir_FromDisk(t *testing.T) {
	dir := t.TempDir()
	for name, f := range minimalFS() {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, f.Data, 0644))
	}
	b, err := content.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Classes.Len())
}

func TestLoadDir_EmptyUsesEmbedded(t *testing.T) {
	b, err := content.LoadDir("")
	require.NoError(t, err)
	assert.Equal(t, 6, b.Classes.Len())
}
