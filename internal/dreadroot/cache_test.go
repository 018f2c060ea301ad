package dreadroot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"better-dreadroot/internal/options"
)

func TestCadenceCounterFiresEveryTenth(t *testing.T) {
	c := NewCadenceCounter(DefaultCadence)
	for call := 1; call <= 35; call++ {
		got := c.Tick()
		want := call%10 == 0
		if got != want {
			t.Fatalf("call %d: Tick() = %v, want %v", call, got, want)
		}
		if got && c.Count() != 0 {
			t.Fatalf("call %d: counter not reset, count=%d", call, c.Count())
		}
	}
	assert.Equal(t, 5, c.Count())
}

func TestCadenceCounterDefaultsNonPositive(t *testing.T) {
	assert.Equal(t, DefaultCadence, NewCadenceCounter(0).Cadence)
	assert.Equal(t, DefaultCadence, NewCadenceCounter(-3).Cadence)
}

type stubCounter struct {
	due bool
}

func (s *stubCounter) Tick() bool { return s.due }

func TestCacheRefreshIsLazy(t *testing.T) {
	store := options.NewMapStore(map[string]string{options.KeyEnabled: "Yes"})
	counter := &stubCounter{}
	cache := NewCache(store, counter)
	assert.True(t, cache.Toggles().Enabled)
	assert.Equal(t, 1, cache.Loads())

	store.Set(options.KeyEnabled, "No")
	store.Set(options.KeyHostile, "yes")
	assert.False(t, cache.RefreshIfDue())
	assert.True(t, cache.Toggles().Enabled, "stale until the cadence comes round")

	counter.due = true
	assert.True(t, cache.RefreshIfDue())
	assert.Equal(t, Toggles{Hostile: true}, cache.Toggles())
	assert.Equal(t, 2, cache.Loads())
}

func TestCacheRefreshesOnTenthRun(t *testing.T) {
	store := options.NewMapStore(nil)
	cache := NewCache(store, nil)
	store.SetBool(options.KeyUpdateOld, true)

	for i := 1; i < 10; i++ {
		assert.False(t, cache.RefreshIfDue(), "run %d", i)
	}
	assert.False(t, cache.Toggles().SkipExisting)
	assert.True(t, cache.RefreshIfDue())
	assert.True(t, cache.Toggles().SkipExisting)
}

func TestLoadTogglesMissingValuesAreFalse(t *testing.T) {
	assert.Equal(t, Toggles{}, LoadToggles(options.NewMapStore(map[string]string{options.KeySolid: "maybe"})))
	assert.Equal(t, Toggles{}, LoadToggles(nil))
}
