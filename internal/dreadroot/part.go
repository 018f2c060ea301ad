// Package dreadroot rewrites Dreadroot entities as they are created or move
// through the world: it strips the tag that keeps them out of hostile
// treatment, makes them solid and turns them against the player, each step
// behind its own option toggle.
package dreadroot

import (
	"context"

	"better-dreadroot/internal/events"
	"better-dreadroot/internal/options"
	"better-dreadroot/internal/world"
	"better-dreadroot/logging"
	"better-dreadroot/logging/mutation"
)

type Config struct {
	// Identity is the governed blueprint name.
	Identity string
	// Tag is stripped from the governed template.
	Tag string
	// Cadence is how many pipeline runs share one toggle snapshot.
	Cadence int
	Policy  ReplacementPolicy
	// Prefix tags every diagnostic line.
	Prefix string
}

func DefaultConfig() Config {
	return Config{
		Identity: world.BlueprintDreadroot,
		Tag:      world.TagExcludeFromHostiles,
		Cadence:  DefaultCadence,
		Policy:   RetainOriginal,
		Prefix:   logging.DefaultPrefix,
	}
}

func (cfg Config) normalized() Config {
	def := DefaultConfig()
	if cfg.Identity == "" {
		cfg.Identity = def.Identity
	}
	if cfg.Tag == "" {
		cfg.Tag = def.Tag
	}
	if cfg.Cadence <= 0 {
		cfg.Cadence = def.Cadence
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	return cfg
}

type Deps struct {
	World     World
	Options   options.Store
	Publisher logging.Publisher
	Recorder  Recorder
	// Counter overrides the cadence counter built from Config.Cadence.
	Counter Counter
}

// Part listens for lifecycle events and runs the mutation pipeline against
// the entity they name. Parent tracks the entity the part currently speaks
// for and follows it across replacements. A Part must only be driven from
// the world's dispatch goroutine.
type Part struct {
	cfg       Config
	parent    world.Ref
	world     World
	cache     *Cache
	matcher   Matcher
	recreator Recreator
	diag      Diagnostics
	rec       Recorder
}

func NewPart(cfg Config, deps Deps) *Part {
	cfg = cfg.normalized()
	rec := deps.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	counter := deps.Counter
	if counter == nil {
		counter = NewCadenceCounter(cfg.Cadence)
	}
	diag := NewDiagnostics(deps.Options, deps.Publisher, cfg.Prefix)
	return &Part{
		cfg:       cfg,
		world:     deps.World,
		cache:     NewCache(deps.Options, counter),
		matcher:   NewMatcher(cfg.Identity),
		recreator: NewRecreator(deps.World, diag, rec),
		diag:      diag,
		rec:       rec,
	}
}

func (p *Part) Parent() world.Ref {
	return p.parent
}

// Attach sets the entity the part speaks for when an event names none.
func (p *Part) Attach(ref world.Ref) {
	p.parent = ref
}

func (p *Part) Cache() *Cache {
	return p.cache
}

func (p *Part) WantsEvent(id events.ID) bool {
	return id == events.ObjectCreated || id == events.EnteredCell
}

// HandleEvent applies the pipeline to the event's entity. It never stops
// propagation.
func (p *Part) HandleEvent(ctx context.Context, trigger events.Trigger) bool {
	if trigger == nil {
		return true
	}
	toggles := p.cache.Toggles()
	if !toggles.Enabled {
		p.rec.PipelineSkip(SkipDisabled)
		return true
	}
	if trigger.ID() == events.EnteredCell && toggles.SkipExisting {
		p.rec.PipelineSkip(SkipExisting)
		return true
	}

	original := trigger.Object().Or(p.parent)
	p.rec.PipelineRun(trigger.ID().String())
	updated := p.Process(ctx, original)
	if updated.Same(original) {
		return true
	}

	destroyed := false
	if replacer, ok := trigger.(events.Replacer); ok {
		replacer.SetReplacement(updated)
		if p.cfg.Policy == DestroyOriginal && p.world != nil {
			destroyed = p.world.Destroy(original)
		}
	}
	p.rec.Replacement(trigger.ID().String())
	p.diag.Info(ctx, mutation.EventReplaced, original,
		mutation.ReplacedPayload{Trigger: trigger.ID().String(), Replacement: string(updated.ID()), Destroyed: destroyed},
		"%s: replaced '%s' with '%s'.", trigger.ID(), original.DisplayName(), updated.DisplayName())
	p.parent = updated
	return true
}

// Process runs the pipeline on one entity and returns the entity that should
// stand in its place: the input itself, or a new instance when the governed
// tag had to be stripped. Every call counts toward the refresh cadence.
func (p *Part) Process(ctx context.Context, ref world.Ref) world.Ref {
	if p.cache.RefreshIfDue() {
		p.rec.ConfigRefresh()
	}
	if ref.IsAbsent() {
		p.rec.PipelineSkip(SkipAbsent)
		p.diag.Info(ctx, mutation.EventSkipped, ref, mutation.SkippedPayload{Stage: "process", Reason: SkipAbsent},
			"Process: no entity found, skipping.")
		return ref
	}

	p.diag.Info(ctx, mutation.EventProcessing, ref, nil,
		"Process: processing '%s' with blueprint '%s'.", ref.DisplayName(), ref.Blueprint())
	if !p.matcher.Governs(ref) {
		p.rec.PipelineSkip(SkipNotGoverned)
		p.diag.Info(ctx, mutation.EventSkipped, ref, mutation.SkippedPayload{Stage: "match", Reason: SkipNotGoverned},
			"Process: not a %s, skipping.", p.cfg.Identity)
		return ref
	}

	updated := p.recreator.StripTag(ctx, ref, p.cfg.Tag)
	toggles := p.cache.Toggles()
	if toggles.Solid {
		p.setSolid(ctx, updated)
	}
	if toggles.Hostile {
		p.setHostile(ctx, updated)
	}
	return updated
}

func (p *Part) setSolid(ctx context.Context, ref world.Ref) {
	if !SetSolid(ref) {
		p.diag.Info(ctx, mutation.EventSkipped, ref, mutation.SkippedPayload{Stage: "solid", Reason: "no_physics"},
			"SetSolid: entity has no physics, skipping.")
		return
	}
	p.rec.Mutation(MutationSolid)
	p.diag.Info(ctx, mutation.EventSolid, ref, nil, "SetSolid: '%s' set to solid.", ref.DisplayName())
}

func (p *Part) setHostile(ctx context.Context, ref world.Ref) {
	if !SetHostile(ref) {
		p.diag.Info(ctx, mutation.EventSkipped, ref, mutation.SkippedPayload{Stage: "hostile", Reason: "no_brain"},
			"SetHostile: entity has no brain, skipping.")
		return
	}
	p.rec.Mutation(MutationHostile)
	e, _ := ref.Get()
	targetable := e.CanBeTargetedByPlayer()
	p.diag.Info(ctx, mutation.EventHostile, ref,
		mutation.HostilePayload{Faction: world.FactionPlayer, Standing: PlayerStanding, Targetable: targetable},
		"SetHostile: '%s' set to hostile, %s faction now hated.\nTargetable by player: %t", ref.DisplayName(), world.FactionPlayer, targetable)
}
