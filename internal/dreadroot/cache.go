package dreadroot

import "better-dreadroot/internal/options"

// DefaultCadence is how many pipeline runs share one snapshot of the toggles.
const DefaultCadence = 10

// Toggles are the feature switches read from the option store.
type Toggles struct {
	Enabled      bool
	Solid        bool
	Hostile      bool
	SkipExisting bool
}

// LoadToggles reads every toggle from store.
func LoadToggles(store options.Store) Toggles {
	return Toggles{
		Enabled:      options.Bool(store, options.KeyEnabled),
		Solid:        options.Bool(store, options.KeySolid),
		Hostile:      options.Bool(store, options.KeyHostile),
		SkipExisting: options.Bool(store, options.KeyUpdateOld),
	}
}

// Counter decides when cached toggles are stale.
type Counter interface {
	// Tick counts one pipeline run and reports whether a refresh is due.
	Tick() bool
}

// CadenceCounter fires on every Cadence-th tick and restarts from zero when
// it does.
type CadenceCounter struct {
	Cadence int
	count   int
}

func NewCadenceCounter(cadence int) *CadenceCounter {
	if cadence <= 0 {
		cadence = DefaultCadence
	}
	return &CadenceCounter{Cadence: cadence}
}

func (c *CadenceCounter) Tick() bool {
	c.count++
	if c.count%c.Cadence != 0 {
		return false
	}
	c.count = 0
	return true
}

// Count is the number of ticks since the last refresh.
func (c *CadenceCounter) Count() int {
	return c.count
}

// Cache holds a snapshot of the toggles and reloads it on the counter's
// cadence rather than on every read. It is not safe for concurrent use.
type Cache struct {
	store   options.Store
	counter Counter
	toggles Toggles
	loads   int
}

// NewCache loads the toggles immediately. A nil counter uses the default
// cadence.
func NewCache(store options.Store, counter Counter) *Cache {
	if counter == nil {
		counter = NewCadenceCounter(DefaultCadence)
	}
	c := &Cache{store: store, counter: counter}
	c.Refresh()
	return c
}

// Refresh replaces the whole snapshot from the store.
func (c *Cache) Refresh() {
	c.toggles = LoadToggles(c.store)
	c.loads++
}

// ShouldRefresh counts one pipeline run against the cadence.
func (c *Cache) ShouldRefresh() bool {
	return c.counter.Tick()
}

// RefreshIfDue counts one run and reloads when the cadence comes round. It
// reports whether a reload happened.
func (c *Cache) RefreshIfDue() bool {
	if !c.ShouldRefresh() {
		return false
	}
	c.Refresh()
	return true
}

func (c *Cache) Toggles() Toggles {
	return c.toggles
}

// Loads counts snapshots taken, including the initial one.
func (c *Cache) Loads() int {
	return c.loads
}
