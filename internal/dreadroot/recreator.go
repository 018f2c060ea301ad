package dreadroot

import (
	"context"

	"better-dreadroot/internal/world"
	"better-dreadroot/logging/mutation"
)

// World is the slice of the entity store the pipeline needs.
type World interface {
	Blueprint(ref world.Ref) (*world.Template, bool)
	StripTagFromTemplate(name, tag string) bool
	Instantiate(t *world.Template) world.Ref
	Destroy(ref world.Ref) bool
}

// Recreator removes a tag from an entity's shared template and returns a
// fresh instance built from the stripped template. Instance tags are fixed at
// creation, so recreation is the only way to drop one.
type Recreator struct {
	world World
	diag  Diagnostics
	rec   Recorder
}

func NewRecreator(w World, diag Diagnostics, rec Recorder) Recreator {
	if rec == nil {
		rec = nopRecorder{}
	}
	return Recreator{world: w, diag: diag, rec: rec}
}

// StripTag returns ref unchanged when it is absent, its blueprint is unknown
// or the blueprint lacks tag. Otherwise the template loses the tag for good
// and a new instance is returned. The original instance is left alive.
func (r Recreator) StripTag(ctx context.Context, ref world.Ref, tag string) world.Ref {
	if ref.IsAbsent() || r.world == nil {
		r.diag.Info(ctx, mutation.EventSkipped, ref, mutation.SkippedPayload{Stage: "strip_tag", Reason: SkipAbsent},
			"StripTag: no entity to strip '%s' from, skipping.", tag)
		return ref
	}
	blueprint, ok := r.world.Blueprint(ref)
	if !ok || !blueprint.HasTag(tag) {
		r.diag.Info(ctx, mutation.EventSkipped, ref, mutation.SkippedPayload{Stage: "strip_tag", Reason: "tag_missing"},
			"StripTag: blueprint of '%s' does not contain tag '%s', skipping.", ref.DisplayName(), tag)
		return ref
	}

	r.diag.Info(ctx, mutation.EventTagStripped, ref, mutation.TagStrippedPayload{Template: blueprint.Name, Tag: tag},
		"StripTag: removing tag '%s' from '%s'.", tag, blueprint.Label())
	if !r.world.StripTagFromTemplate(blueprint.Name, tag) {
		return ref
	}
	r.rec.Mutation(MutationTagStrip)

	// The template has already lost the tag; returning ref keeps the
	// pipeline going on the old instance, which still carries it.
	created := r.world.Instantiate(blueprint)
	if created.IsAbsent() {
		r.rec.PipelineSkip(SkipRecreateFailed)
		r.diag.Info(ctx, mutation.EventSkipped, ref, mutation.SkippedPayload{Stage: "strip_tag", Reason: SkipRecreateFailed},
			"StripTag: failed to recreate '%s' from '%s', keeping the original.", ref.DisplayName(), blueprint.Label())
		return ref
	}
	r.diag.Info(ctx, mutation.EventRecreated, created, nil,
		"StripTag: created new entity '%s'.", created.DisplayName())
	return created
}
