// Package options is the string-keyed option store the mutation pipeline
// reads its toggles from.
package options

import (
	"strings"
	"sync"
)

const (
	KeyEnabled   = "OptionDreadrootEnabled"
	KeySolid     = "OptionDreadrootSolid"
	KeyHostile   = "OptionDreadrootHostile"
	KeyUpdateOld = "OptionDreadrootUpdateOld"
	KeyLogging   = "OptionDreadrootLogging"
)

// Keys lists every option the pipeline understands.
var Keys = []string{KeyEnabled, KeySolid, KeyHostile, KeyUpdateOld, KeyLogging}

const (
	Yes = "Yes"
	No  = "No"
)

// Store looks up option values. Missing options return "".
type Store interface {
	Option(key string) string
}

// Bool reports whether key is set to "Yes", ignoring case. Anything else,
// including a missing option, is false.
func Bool(store Store, key string) bool {
	if store == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(store.Option(key)), Yes)
}

// FormatBool renders b the way option files spell it.
func FormatBool(b bool) string {
	if b {
		return Yes
	}
	return No
}

// MapStore is an in-memory Store.
type MapStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMapStore(values map[string]string) *MapStore {
	s := &MapStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MapStore) Option(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *MapStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
}

func (s *MapStore) SetBool(key string, value bool) {
	s.Set(key, FormatBool(value))
}

func (s *MapStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
