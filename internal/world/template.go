package world

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// PhysicsSpec seeds the physics facet of instances created from a template.
type PhysicsSpec struct {
	Solid bool `yaml:"solid"`
}

// BrainSpec seeds the behavior facet of instances created from a template.
type BrainSpec struct {
	Passive  bool           `yaml:"passive"`
	Hostile  bool           `yaml:"hostile"`
	Factions map[string]int `yaml:"factions"`
}

// Template is a shared blueprint. A single Template value backs every
// instance created from it, so changes made here are seen by all future
// instantiations but never by instances that already exist.
type Template struct {
	Name        string            `yaml:"name"`
	DisplayName string            `yaml:"displayName"`
	Tags        map[string]string `yaml:"tags"`
	Physics     *PhysicsSpec      `yaml:"physics"`
	Brain       *BrainSpec        `yaml:"brain"`
}

func (t *Template) HasTag(tag string) bool {
	if t == nil {
		return false
	}
	_, ok := t.Tags[tag]
	return ok
}

func (t *Template) removeTag(tag string) bool {
	if !t.HasTag(tag) {
		return false
	}
	delete(t.Tags, tag)
	return true
}

// Label returns the display name, falling back to the blueprint name.
func (t *Template) Label() string {
	if t == nil {
		return ""
	}
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}

var ErrUnknownBlueprint = errors.New("unknown blueprint")

// Registry resolves blueprints by name, ignoring markup and case. It is not
// safe for concurrent use; the host mutates it from its event dispatch loop.
type Registry struct {
	templates map[string]*Template
}

func NewRegistry(templates ...*Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(t *Template) error {
	if t == nil || NormalizeName(t.Name) == "" {
		return errors.New("blueprint name is required")
	}
	key := NormalizeName(t.Name)
	if _, exists := r.templates[key]; exists {
		return fmt.Errorf("blueprint %q registered twice", t.Name)
	}
	if t.Tags == nil {
		t.Tags = make(map[string]string)
	}
	r.templates[key] = t
	return nil
}

func (r *Registry) Blueprint(name string) (*Template, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.templates[NormalizeName(name)]
	return t, ok
}

// StripTagFromTemplate removes tag from the shared template registered under
// name. The change is permanent for the life of the registry and applies to
// every instance created afterwards. It reports whether a tag was removed.
func (r *Registry) StripTagFromTemplate(name, tag string) bool {
	t, ok := r.Blueprint(name)
	if !ok {
		return false
	}
	return t.removeTag(tag)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for _, t := range r.templates {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

type blueprintFile struct {
	Blueprints []*Template `yaml:"blueprints"`
}

// ParseBlueprints decodes a YAML blueprint document into a registry.
func ParseBlueprints(data []byte) (*Registry, error) {
	var file blueprintFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse blueprints: %w", err)
	}
	return NewRegistry(file.Blueprints...)
}

// LoadBlueprints reads a YAML blueprint file from disk.
func LoadBlueprints(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint file %q: %w", path, err)
	}
	registry, err := ParseBlueprints(data)
	if err != nil {
		return nil, fmt.Errorf("blueprint file %q: %w", path, err)
	}
	return registry, nil
}

const (
	BlueprintDreadroot     = "Dreadroot"
	TagExcludeFromHostiles = "ExcludeFromHostiles"
)

// DefaultBlueprints returns the stock templates used when no blueprint file
// is configured.
func DefaultBlueprints() []*Template {
	return []*Template{
		{
			Name:        BlueprintDreadroot,
			DisplayName: "{{K|dreadroot}}",
			Tags:        map[string]string{TagExcludeFromHostiles: "", "Plant": ""},
			Physics:     &PhysicsSpec{Solid: false},
			Brain:       &BrainSpec{Passive: true, Factions: map[string]int{"Roots": 100}},
		},
		{
			Name:        "Witchwood Tree",
			DisplayName: "{{g|witchwood tree}}",
			Tags:        map[string]string{"Plant": ""},
			Physics:     &PhysicsSpec{Solid: true},
		},
		{
			Name:        "Snapjaw",
			DisplayName: "snapjaw scavenger",
			Tags:        map[string]string{},
			Physics:     &PhysicsSpec{Solid: true},
			Brain:       &BrainSpec{Hostile: true, Factions: map[string]int{"Snapjaws": 100, "Player": -100}},
		},
	}
}
