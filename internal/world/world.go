package world

import (
	"sync"

	"github.com/google/uuid"
)

// World is the in-process entity store. Events are dispatched on a single
// goroutine, so entity state is unsynchronized; only the player message log
// is guarded because logging sinks may write it from their own workers.
type World struct {
	registry *Registry
	entities map[Handle]*Entity
	order    []Handle
	newID    func() Handle

	msgMu    sync.Mutex
	messages []string
}

type Option func(*World)

// WithIDSource overrides handle generation, mainly for deterministic tests.
func WithIDSource(next func() Handle) Option {
	return func(w *World) {
		if next != nil {
			w.newID = next
		}
	}
}

func New(registry *Registry, opts ...Option) *World {
	if registry == nil {
		registry = &Registry{templates: make(map[string]*Template)}
	}
	w := &World{
		registry: registry,
		entities: make(map[Handle]*Entity),
		newID:    func() Handle { return Handle(uuid.New().String()) },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Registry() *Registry {
	return w.registry
}

// Create instantiates the named blueprint.
func (w *World) Create(blueprint string) (Ref, error) {
	t, ok := w.registry.Blueprint(blueprint)
	if !ok {
		return Absent, ErrUnknownBlueprint
	}
	return w.Instantiate(t), nil
}

// Instantiate builds a fresh instance from the template's current state.
func (w *World) Instantiate(t *Template) Ref {
	if t == nil {
		return Absent
	}
	e := &Entity{
		ID:          w.newID(),
		DisplayName: t.Label(),
		Blueprint:   t.Name,
		Tags:        make(map[string]string, len(t.Tags)),
	}
	for k, v := range t.Tags {
		e.Tags[k] = v
	}
	if t.Physics != nil {
		e.Physics = &Physics{Solid: t.Physics.Solid}
	}
	if t.Brain != nil {
		e.Brain = &Brain{
			Allegiance: Allegiance{Hostile: t.Brain.Hostile, Standing: make(map[string]int, len(t.Brain.Factions))},
			Passive:    t.Brain.Passive,
		}
		for faction, value := range t.Brain.Factions {
			e.Brain.Allegiance.Standing[faction] = value
		}
	}
	w.entities[e.ID] = e
	w.order = append(w.order, e.ID)
	return RefTo(e)
}

// Blueprint resolves the template an entity was created from.
func (w *World) Blueprint(ref Ref) (*Template, bool) {
	e, ok := ref.Get()
	if !ok {
		return nil, false
	}
	return w.registry.Blueprint(e.Blueprint)
}

func (w *World) StripTagFromTemplate(name, tag string) bool {
	return w.registry.StripTagFromTemplate(name, tag)
}

func (w *World) Place(ref Ref, region string) {
	if e, ok := ref.Get(); ok {
		e.Region = region
	}
}

// Replace moves the replacement into the original's region. The original is
// left alive; callers decide whether to Destroy it.
func (w *World) Replace(original, replacement Ref) {
	if original.Same(replacement) {
		return
	}
	src, ok := original.Get()
	if !ok {
		return
	}
	if dst, ok := replacement.Get(); ok && dst.Region == "" {
		dst.Region = src.Region
	}
}

// Destroy removes an instance from the world. It reports whether the
// instance was live.
func (w *World) Destroy(ref Ref) bool {
	id := ref.ID()
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	for i, candidate := range w.order {
		if candidate == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

func (w *World) Entity(id Handle) Ref {
	return RefTo(w.entities[id])
}

// Entities returns live instances in creation order.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.entities[id])
	}
	return out
}

func (w *World) AddPlayerMessage(message string) {
	w.msgMu.Lock()
	defer w.msgMu.Unlock()
	w.messages = append(w.messages, message)
}

func (w *World) Messages() []string {
	w.msgMu.Lock()
	defer w.msgMu.Unlock()
	return append([]string(nil), w.messages...)
}
