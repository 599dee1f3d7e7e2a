package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rpgrules/internal/game/character"
	"github.com/cory-johannsen/rpgrules/internal/game/condition"
	"github.com/cory-johannsen/rpgrules/internal/game/ruleset"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

var testClass = &ruleset.Class{
	ID:                "fighter",
	Name:              "Fighter",
	BaseStats:         stats.Uniform(10),
	HitPointsPerLevel: 8,
}

func newCharacter(t require.TestingT, name string) *character.Character {
	c, err := character.Build(name, testClass, stats.DefaultBounds(), 10)
	require.NoError(t, err)
	return c
}

func TestManager_Start(t *testing.T) {
	m := NewManager(zap.NewNop())
	sess := m.Start("alice")
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "alice", sess.Owner)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(zap.NewNop())
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_AdoptDuplicate(t *testing.T) {
	sess := NewManager(zap.NewNop()).Start("alice")
	c := newCharacter(t, "Brom")
	require.NoError(t, sess.Adopt(c))
	err := sess.Adopt(c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already owned")
}

func TestSession_DoRunsAgainstOwnedCharacter(t *testing.T) {
	sess := NewManager(zap.NewNop()).Start("alice")
	c := newCharacter(t, "Brom")
	require.NoError(t, sess.Adopt(c))

	err := sess.Do(c.ID, func(c *character.Character) error {
		c.Experience += 50
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 50, c.Experience)

	err = sess.Do("missing", func(*character.Character) error { return nil })
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestSession_DoPropagatesError(t *testing.T) {
	sess := NewManager(zap.NewNop()).Start("alice")
	c := newCharacter(t, "Brom")
	require.NoError(t, sess.Adopt(c))
	want := fmt.Errorf("boom")
	assert.Equal(t, want, sess.Do(c.ID, func(*character.Character) error { return want }))
}

func TestSession_Release(t *testing.T) {
	sess := NewManager(zap.NewNop()).Start("alice")
	a, b := newCharacter(t, "A"), newCharacter(t, "B")
	require.NoError(t, sess.Adopt(a))
	require.NoError(t, sess.Adopt(b))
	assert.Equal(t, []string{a.ID, b.ID}, sess.CharacterIDs())

	got, err := sess.Release(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, []string{b.ID}, sess.CharacterIDs())

	_, err = sess.Release(a.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestManager_EndClearsEffects(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewManager(zap.New(core))
	sess := m.Start("alice")
	c := newCharacter(t, "Brom")
	c.Effects.Add(&condition.EffectDef{ID: "poison", Duration: 3, DamagePerTurn: 2}, "spider", 0)
	c.Effects.Add(&condition.EffectDef{ID: "haste", Duration: 2, ModifierStat: stats.Dexterity, ModifierAmount: 2}, "scroll", 0)
	c.RefreshStats()
	require.Equal(t, c.Base.Dexterity+2, c.Stats.Dexterity)
	require.NoError(t, sess.Adopt(c))

	require.NoError(t, m.End(sess.ID))
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, c.Effects.Len())
	assert.Equal(t, c.Base, c.Stats)
	assert.Empty(t, sess.CharacterIDs())
	assert.Equal(t, 1, logs.FilterMessage("session ended").Len())

	err := sess.Do(c.ID, func(*character.Character) error { return nil })
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.ErrorIs(t, sess.Adopt(newCharacter(t, "Late")), ErrSessionEnded)
	assert.ErrorIs(t, m.End(sess.ID), ErrSessionNotFound)
}

func TestSession_ConcurrentDoIsSerialized(t *testing.T) {
	sess := NewManager(zap.NewNop()).Start("alice")
	c := newCharacter(t, "Brom")
	require.NoError(t, sess.Adopt(c))

	const workers, perWorker = 8, 100
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				_ = sess.Do(c.ID, func(c *character.Character) error {
					c.Experience++
					return nil
				})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, workers*perWorker, c.Experience)
}

func TestManager_ConcurrentStartEnd(t *testing.T) {
	m := NewManager(zap.NewNop())
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := m.Start(fmt.Sprintf("p%d", i))
			if i%2 == 0 {
				_ = m.End(sess.ID)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, m.Count())
}

func TestPropertyManager_CountTracksLiveSessions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := NewManager(zap.NewNop())
		var live []string
		ops := rapid.SliceOfN(rapid.Bool(), 1, 50).Draw(rt, "ops")
		for _, start := range ops {
			if start || len(live) == 0 {
				live = append(live, m.Start("p").ID)
				continue
			}
			require.NoError(rt, m.End(live[0]))
			live = live[1:]
		}
		if m.Count() != len(live) {
			rt.Fatalf("count %d, want %d", m.Count(), len(live))
		}
	})
}
