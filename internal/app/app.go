package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"better-dreadroot/internal/dreadroot"
	"better-dreadroot/internal/events"
	"better-dreadroot/internal/options"
	"better-dreadroot/internal/telemetry"
	"better-dreadroot/internal/world"
	"better-dreadroot/logging"
	loggingSinks "better-dreadroot/logging/sinks"
)

// Host bundles everything one simulated world needs. Build it with NewHost
// and drive it from a single goroutine.
type Host struct {
	cfg     Config
	logger  telemetry.Logger
	World   *world.World
	Bus     *events.Bus
	Part    *dreadroot.Part
	Options options.Store
	Metrics *telemetry.Metrics
	Router  *logging.Router

	watcher *options.Watcher
	reloads chan struct{}
	closers []func(context.Context) error
}

// NewHost wires the world, option store, logging router, metrics and the
// mutation part according to cfg. Console output goes to out.
func NewHost(cfg Config, out io.Writer) (*Host, error) {
	if out == nil {
		out = os.Stdout
	}
	consoleLogger := log.New(out, "", log.LstdFlags)
	h := &Host{cfg: cfg, logger: telemetry.WrapLogger(consoleLogger), reloads: make(chan struct{}, 1)}

	registry, err := loadRegistry(cfg.Blueprints)
	if err != nil {
		return nil, err
	}
	h.World = world.New(registry)

	store, err := h.openOptions(consoleLogger)
	if err != nil {
		return nil, err
	}
	h.Options = store

	namedSinks, err := h.buildSinks(consoleLogger)
	if err != nil {
		h.close(context.Background())
		return nil, err
	}
	router, err := logging.NewRouter(logging.ClockFunc(time.Now), cfg.Logging, namedSinks)
	if err != nil {
		h.close(context.Background())
		return nil, fmt.Errorf("failed to construct logging router: %w", err)
	}
	router.SetFallback(consoleLogger)
	h.Router = router
	h.closers = append(h.closers, router.Close)

	h.Metrics = telemetry.NewMetrics(telemetry.MetricsConfig{Namespace: cfg.Metrics.Namespace}, nil)
	h.Part = dreadroot.NewPart(cfg.PartConfig(), dreadroot.Deps{
		World:     h.World,
		Options:   store,
		Publisher: router,
		Recorder:  h.Metrics,
	})
	h.Bus = events.NewBus(h.Part)
	return h, nil
}

func loadRegistry(cfg BlueprintsConfig) (*world.Registry, error) {
	if cfg.Path == "" {
		return world.NewRegistry(world.DefaultBlueprints()...)
	}
	return world.LoadBlueprints(cfg.Path)
}

func (h *Host) openOptions(logger *log.Logger) (options.Store, error) {
	if h.cfg.Options.Path == "" {
		return options.NewMapStore(DefaultOptionValues()), nil
	}
	store, err := options.OpenFile(h.cfg.Options.Path)
	if err != nil {
		return nil, err
	}
	for _, key := range store.Unknown() {
		h.logger.Printf("ignoring unknown option %q in %s", key, store.Path())
	}
	if !h.cfg.Options.Watch {
		return store, nil
	}
	watcher, err := options.NewWatcher(store, options.WatcherConfig{
		Debounce: h.cfg.Options.Debounce,
		Logger:   logger,
		OnReload: h.optionsReloaded,
	})
	if err != nil {
		return nil, err
	}
	h.watcher = watcher
	h.closers = append(h.closers, func(context.Context) error { return watcher.Close() })
	return store, nil
}

// optionsReloaded runs on the watcher's goroutine after the file store has
// been reloaded. The toggle cache still only sees the new values on its next
// due refresh, unless RefreshOnReload asks the dispatch loop to refresh now.
func (h *Host) optionsReloaded(err error) {
	if err != nil || !h.cfg.Options.RefreshOnReload {
		return
	}
	select {
	case h.reloads <- struct{}{}:
	default:
	}
}

func (h *Host) buildSinks(console *log.Logger) ([]logging.NamedSink, error) {
	var named []logging.NamedSink
	for _, name := range h.cfg.Logging.EnabledSinks {
		switch name {
		case logging.SinkMessages:
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewMessages(h.World)})
		case logging.SinkConsole:
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleWithLogger(console)})
		case logging.SinkJSON:
			file, err := os.OpenFile(h.cfg.Logging.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("failed to open json log %q: %w", h.cfg.Logging.JSON.FilePath, err)
			}
			h.closers = append(h.closers, func(context.Context) error { return file.Close() })
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(file, h.cfg.Logging.JSON.FlushInterval)})
		}
	}
	return named, nil
}

// Start launches background services: the option watcher and the metrics
// endpoint. They stop when ctx is cancelled or Close is called.
func (h *Host) Start(ctx context.Context) {
	if h.watcher != nil {
		go func() {
			if err := h.watcher.Run(ctx); err != nil {
				h.logger.Printf("option watcher stopped: %v", err)
			}
		}()
	}
	if h.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", h.Metrics.Handler())
		srv := &http.Server{Addr: h.cfg.Metrics.ListenAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		h.closers = append(h.closers, srv.Shutdown)
		go func() {
			h.logger.Printf("metrics listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				h.logger.Printf("metrics server failed: %v", err)
			}
		}()
	}
}

// ApplyPendingReloads refreshes the part's toggles if the option file changed
// since the last call and options.refreshOnReload is set. It must run on the
// dispatch goroutine.
func (h *Host) ApplyPendingReloads() bool {
	select {
	case <-h.reloads:
		h.Part.Cache().Refresh()
		return true
	default:
		return false
	}
}

func (h *Host) Close(ctx context.Context) error {
	return h.close(ctx)
}

func (h *Host) close(ctx context.Context) error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}

// Run builds a host, plays the configured simulation and prints its report.
func Run(ctx context.Context, cfg Config, out io.Writer) (Report, error) {
	host, err := NewHost(cfg, out)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if cerr := host.Close(context.Background()); cerr != nil {
			host.logger.Printf("failed to close host: %v", cerr)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	host.Start(runCtx)

	report, err := host.Simulate(runCtx, cfg.Simulation)
	if err != nil {
		return report, err
	}
	report.Print(out)
	return report, nil
}
