package dreadroot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"better-dreadroot/internal/options"
	"better-dreadroot/internal/world"
	"better-dreadroot/logging"
	"better-dreadroot/logging/sinks"
)

type fixture struct {
	world   *world.World
	store   *options.MapStore
	log     *sinks.Memory
	rec     *countingRecorder
	part    *Part
	counter *CadenceCounter
}

type countingRecorder struct {
	runs         map[string]int
	skips        map[string]int
	replacements map[string]int
	mutations    map[string]int
	refreshes    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		runs:         map[string]int{},
		skips:        map[string]int{},
		replacements: map[string]int{},
		mutations:    map[string]int{},
	}
}

func (r *countingRecorder) PipelineRun(trigger string) { r.runs[trigger]++ }
func (r *countingRecorder) PipelineSkip(reason string) { r.skips[reason]++ }
func (r *countingRecorder) Replacement(trigger string) { r.replacements[trigger]++ }
func (r *countingRecorder) Mutation(kind string)       { r.mutations[kind]++ }
func (r *countingRecorder) ConfigRefresh()             { r.refreshes++ }

func allOn() map[string]string {
	return map[string]string{
		options.KeyEnabled:   options.Yes,
		options.KeySolid:     options.Yes,
		options.KeyHostile:   options.Yes,
		options.KeyUpdateOld: options.No,
		options.KeyLogging:   options.Yes,
	}
}

func newFixture(t *testing.T, values map[string]string, cfg Config) *fixture {
	t.Helper()
	registry, err := world.NewRegistry(world.DefaultBlueprints()...)
	require.NoError(t, err)
	n := 0
	w := world.New(registry, world.WithIDSource(func() world.Handle {
		n++
		return world.Handle(fmt.Sprintf("e%d", n))
	}))

	f := &fixture{
		world:   w,
		store:   options.NewMapStore(values),
		log:     sinks.NewMemory(),
		rec:     newCountingRecorder(),
		counter: NewCadenceCounter(DefaultCadence),
	}
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		f.log.Write(event)
	})
	f.part = NewPart(cfg, Deps{
		World:     w,
		Options:   f.store,
		Publisher: pub,
		Recorder:  f.rec,
		Counter:   f.counter,
	})
	return f
}

func (f *fixture) spawn(t *testing.T, blueprint string) world.Ref {
	t.Helper()
	ref, err := f.world.Create(blueprint)
	require.NoError(t, err)
	return ref
}

func (f *fixture) template(t *testing.T, name string) *world.Template {
	t.Helper()
	tpl, ok := f.world.Registry().Blueprint(name)
	require.True(t, ok)
	return tpl
}
