package options

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// EnvPrefix precedes the upper-cased option key in environment overrides,
// e.g. DREADROOT_OPTIONS_OPTIONDREADROOTENABLED=Yes.
const EnvPrefix = "DREADROOT_OPTIONS_"

// FileStore serves options from a YAML mapping of key to value. Environment
// overrides always win over the file. Reload swaps the whole value set at
// once; a failed reload keeps the previous values.
type FileStore struct {
	path   string
	lookup func(string) (string, bool)

	mu      sync.RWMutex
	values  map[string]string
	unknown []string
}

// OpenFile loads path into a new FileStore.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, lookup: os.LookupEnv}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseFile builds a FileStore from an in-memory document. The store has no
// backing path, so Reload re-applies environment overrides only.
func ParseFile(data []byte) (*FileStore, error) {
	values, err := decode(data)
	if err != nil {
		return nil, err
	}
	s := &FileStore{lookup: os.LookupEnv}
	s.swap(values)
	return s, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Option(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Unknown lists keys present in the file that the pipeline does not read.
func (s *FileStore) Unknown() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.unknown...)
}

func (s *FileStore) Reload() error {
	if s.path == "" {
		s.mu.RLock()
		current := make(map[string]string, len(s.values))
		for k, v := range s.values {
			current[k] = v
		}
		s.mu.RUnlock()
		s.swap(current)
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read option file %q: %w", s.path, err)
	}
	values, err := decode(data)
	if err != nil {
		return fmt.Errorf("option file %q: %w", s.path, err)
	}
	s.swap(values)
	return nil
}

func (s *FileStore) swap(values map[string]string) {
	s.applyEnvOverrides(values)
	unknown := unknownKeys(values)
	s.mu.Lock()
	s.values = values
	s.unknown = unknown
	s.mu.Unlock()
}

func (s *FileStore) applyEnvOverrides(values map[string]string) {
	lookup := s.lookup
	if lookup == nil {
		return
	}
	for _, key := range Keys {
		if val, ok := lookup(EnvPrefix + strings.ToUpper(key)); ok {
			values[key] = val
		}
	}
}

func decode(data []byte) (map[string]string, error) {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch typed := v.(type) {
		case nil:
			continue
		case bool:
			// true/false are accepted as Yes/No.
			values[k] = FormatBool(typed)
		default:
			values[k] = fmt.Sprint(typed)
		}
	}
	return values, nil
}

func unknownKeys(values map[string]string) []string {
	known := make(map[string]struct{}, len(Keys))
	for _, k := range Keys {
		known[k] = struct{}{}
	}
	var unknown []string
	for k := range values {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}
