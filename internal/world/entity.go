package world

// Handle identifies one entity instance. A replacement instance always gets a
// new handle.
type Handle string

// Physics is the physical facet of an entity.
type Physics struct {
	Solid bool
}

// Allegiance is the set of faction standings an entity starts with.
type Allegiance struct {
	Hostile  bool
	Standing map[string]int
}

// TryAdd records a standing toward faction only when none exists yet. It
// reports whether the value was added.
func (a *Allegiance) TryAdd(faction string, value int) bool {
	if _, exists := a.Standing[faction]; exists {
		return false
	}
	if a.Standing == nil {
		a.Standing = make(map[string]int, 1)
	}
	a.Standing[faction] = value
	return true
}

// Brain is the behavior facet of an entity.
type Brain struct {
	Allegiance      Allegiance
	FactionFeelings map[string]int
	Passive         bool
}

// SetFactionFeeling overrides the feeling toward faction.
func (b *Brain) SetFactionFeeling(faction string, value int) {
	if b.FactionFeelings == nil {
		b.FactionFeelings = make(map[string]int, 1)
	}
	b.FactionFeelings[faction] = value
}

// FactionFeeling returns the effective feeling toward faction. Overrides win
// over allegiance standings.
func (b *Brain) FactionFeeling(faction string) (int, bool) {
	if value, ok := b.FactionFeelings[faction]; ok {
		return value, true
	}
	value, ok := b.Allegiance.Standing[faction]
	return value, ok
}

// Entity is one live instance in the world. Tags is a snapshot of the
// template's tags taken at instantiation.
type Entity struct {
	ID          Handle
	DisplayName string
	Blueprint   string
	Region      string
	Tags        map[string]string
	Physics     *Physics
	Brain       *Brain
}

func (e *Entity) HasTag(tag string) bool {
	_, ok := e.Tags[tag]
	return ok
}

// CanBeTargetedByPlayer reports whether the player may pick the entity as an
// attack target.
func (e *Entity) CanBeTargetedByPlayer() bool {
	if e == nil || e.Brain == nil {
		return false
	}
	if e.HasTag(TagExcludeFromHostiles) {
		return false
	}
	if e.Brain.Allegiance.Hostile {
		return true
	}
	if feeling, ok := e.Brain.FactionFeeling(FactionPlayer); ok && feeling < 0 {
		return true
	}
	return !e.Brain.Passive
}

const FactionPlayer = "Player"

// Ref is an optional reference to an entity. The zero value is absent.
type Ref struct {
	entity *Entity
}

var Absent = Ref{}

func RefTo(e *Entity) Ref {
	return Ref{entity: e}
}

func (r Ref) Get() (*Entity, bool) {
	return r.entity, r.entity != nil
}

func (r Ref) IsAbsent() bool {
	return r.entity == nil
}

func (r Ref) ID() Handle {
	if r.entity == nil {
		return ""
	}
	return r.entity.ID
}

// Same reports whether both refs point at the same instance.
func (r Ref) Same(other Ref) bool {
	return r.entity == other.entity
}

// Or returns r unless it is absent.
func (r Ref) Or(fallback Ref) Ref {
	if r.entity == nil {
		return fallback
	}
	return r
}

func (r Ref) DisplayName() string {
	if r.entity == nil {
		return ""
	}
	return r.entity.DisplayName
}

func (r Ref) Blueprint() string {
	if r.entity == nil {
		return ""
	}
	return r.entity.Blueprint
}
