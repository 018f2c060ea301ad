package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"better-dreadroot/internal/dreadroot"
	"better-dreadroot/internal/options"
	"better-dreadroot/internal/world"
	"better-dreadroot/logging"
)

func TestRunDefaultSimulation(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()

	report, err := Run(context.Background(), cfg, &out)
	require.NoError(t, err)

	// Only the first governed creation finds the tag on the template.
	assert.Equal(t, 1, report.Replaced)
	assert.Equal(t, cfg.Simulation.Governed*(1+len(cfg.Simulation.Others)), report.Created)
	assert.Equal(t, len(cfg.Simulation.Regions)*len(report.Entities), report.Moves)
	assert.Positive(t, report.Messages)
	assert.Positive(t, report.LoggedEvents)

	var governed int
	for _, e := range report.Entities {
		if !world.SameName(e.Blueprint, world.BlueprintDreadroot) {
			continue
		}
		governed++
		assert.True(t, e.Solid, "governed entity %s should be solid", e.ID)
		assert.True(t, e.Hostile, "governed entity %s should be hostile", e.ID)
		assert.Equal(t, dreadroot.HostileDisplayName, e.Name)
		assert.Equal(t, cfg.Simulation.Regions[len(cfg.Simulation.Regions)-1], e.Region)
	}
	// legacy + governed + the retained original of the replaced entity
	assert.Equal(t, cfg.Simulation.Legacy+cfg.Simulation.Governed+1, governed)

	text := out.String()
	assert.Contains(t, text, "[Laurus] ")
	assert.Contains(t, text, "created=")
	assert.Contains(t, text, "TARGETABLE")
}

func TestRunWithDestroyPolicyAndOptionFile(t *testing.T) {
	dir := t.TempDir()
	optionsPath := filepath.Join(dir, "options.yaml")
	require.NoError(t, os.WriteFile(optionsPath, []byte(strings.Join([]string{
		"OptionDreadrootEnabled: Yes",
		"OptionDreadrootSolid: Yes",
		"OptionDreadrootHostile: No",
		"OptionDreadrootUpdateOld: Yes",
		"OptionDreadrootLogging: No",
	}, "\n")), 0o644))

	cfg := DefaultConfig()
	cfg.Options.Path = optionsPath
	cfg.Pipeline.ReplacementPolicy = string(dreadroot.DestroyOriginal)
	cfg.Simulation.Others = nil
	require.NoError(t, cfg.Validate())

	var out bytes.Buffer
	report, err := Run(context.Background(), cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Replaced)
	assert.Zero(t, report.Messages, "logging option is off")
	assert.NotContains(t, out.String(), "[Laurus]")
	require.Len(t, report.Entities, cfg.Simulation.Legacy+cfg.Simulation.Governed)
	for _, e := range report.Entities {
		assert.False(t, e.Hostile)
	}

	var solid int
	for _, e := range report.Entities {
		if e.Solid {
			solid++
		}
	}
	assert.Equal(t, cfg.Simulation.Governed, solid, "skip-existing leaves legacy entities alone")
}

func TestNewHostRejectsMissingFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blueprints.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := NewHost(cfg, &bytes.Buffer{})
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Options.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewHost(cfg, &bytes.Buffer{})
	require.Error(t, err)
}

func writeOptions(t *testing.T, path string, solid string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"OptionDreadrootEnabled: Yes",
		"OptionDreadrootSolid: " + solid,
		"OptionDreadrootHostile: Yes",
		"OptionDreadrootUpdateOld: No",
		"OptionDreadrootLogging: No",
	}, "\n")), 0o644))
}

func newWatchedHost(t *testing.T, refreshOnReload bool) (*Host, *options.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "options.yaml")
	writeOptions(t, path, options.Yes)
	cfg := DefaultConfig()
	cfg.Options.Path = path
	cfg.Options.Watch = true
	cfg.Options.RefreshOnReload = refreshOnReload
	require.NoError(t, cfg.Validate())

	host, err := NewHost(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { host.Close(context.Background()) })
	store, ok := host.Options.(*options.FileStore)
	require.True(t, ok)
	return host, store, path
}

func TestOptionEditWaitsForRefreshCadence(t *testing.T) {
	host, store, path := newWatchedHost(t, false)
	ctx := context.Background()
	loads := host.Part.Cache().Loads()

	writeOptions(t, path, options.No)
	require.NoError(t, store.Reload())
	host.optionsReloaded(nil)
	assert.False(t, host.ApplyPendingReloads())
	require.False(t, options.Bool(store, options.KeySolid), "the store itself sees the edit")

	snapjaw, err := host.World.Create("Snapjaw")
	require.NoError(t, err)
	for i := 0; i < dreadroot.DefaultCadence-1; i++ {
		host.Bus.Entered(ctx, snapjaw, "Joppa")
		require.True(t, host.Part.Cache().Toggles().Solid, "run %d sees the old snapshot", i+1)
	}
	assert.Equal(t, loads, host.Part.Cache().Loads())

	host.Bus.Entered(ctx, snapjaw, "Joppa")
	assert.False(t, host.Part.Cache().Toggles().Solid)
	assert.Equal(t, loads+1, host.Part.Cache().Loads())
}

func TestRefreshOnReloadAppliesImmediately(t *testing.T) {
	host, store, path := newWatchedHost(t, true)
	loads := host.Part.Cache().Loads()

	assert.False(t, host.ApplyPendingReloads())
	writeOptions(t, path, options.No)
	require.NoError(t, store.Reload())
	host.optionsReloaded(nil)

	assert.True(t, host.ApplyPendingReloads())
	assert.False(t, host.Part.Cache().Toggles().Solid)
	assert.Equal(t, loads+1, host.Part.Cache().Loads())

	host.optionsReloaded(errors.New("bad yaml"))
	assert.False(t, host.ApplyPendingReloads(), "failed reloads are not signalled")
}

func TestHostReleasesWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.yaml")
	writeOptions(t, path, options.Yes)

	cfg := DefaultConfig()
	cfg.Options.Path = path
	cfg.Options.Watch = true
	before := runtime.NumGoroutine()

	broken := cfg
	broken.Logging.EnabledSinks = []string{logging.SinkJSON}
	broken.Logging.JSON.FilePath = filepath.Join(dir, "missing", "events.jsonl")
	for i := 0; i < 10; i++ {
		_, err := NewHost(broken, &bytes.Buffer{})
		require.Error(t, err)
	}

	// Closed without ever being started.
	for i := 0; i < 10; i++ {
		host, err := NewHost(cfg, &bytes.Buffer{})
		require.NoError(t, err)
		require.NoError(t, host.Close(context.Background()))
	}

	require.Eventually(t, func() bool { return runtime.NumGoroutine() <= before },
		2*time.Second, 10*time.Millisecond, "watcher goroutines leaked")
}
