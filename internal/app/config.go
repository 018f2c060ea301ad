package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"better-dreadroot/internal/dreadroot"
	"better-dreadroot/internal/options"
	"better-dreadroot/logging"
)

// Config is the host configuration. It is distinct from the option store:
// options are the player-facing toggles, Config is how the host is wired.
type Config struct {
	Options    OptionsConfig    `yaml:"options"`
	Blueprints BlueprintsConfig `yaml:"blueprints"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Logging    logging.Config   `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Simulation SimulationConfig `yaml:"simulation"`
}

type OptionsConfig struct {
	// Path is a YAML option file. Empty means the built-in defaults.
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
	// RefreshOnReload refreshes the toggle cache as soon as the watcher
	// reloads the file instead of waiting for the refresh cadence. A part
	// that starts disabled never reaches its cadence, so this is the only way
	// for it to notice being enabled while running.
	RefreshOnReload bool `yaml:"refreshOnReload"`
}

type BlueprintsConfig struct {
	// Path is a YAML blueprint file. Empty means the stock blueprints.
	Path string `yaml:"path"`
}

type PipelineConfig struct {
	Identity          string `yaml:"identity"`
	Tag               string `yaml:"tag"`
	Cadence           int    `yaml:"cadence"`
	ReplacementPolicy string `yaml:"replacementPolicy"`
}

type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listenAddress"`
	Namespace     string `yaml:"namespace"`
}

type SimulationConfig struct {
	// Legacy governed entities exist before the pipeline starts listening.
	Legacy   int      `yaml:"legacy"`
	Governed int      `yaml:"governed"`
	Others   []string `yaml:"others"`
	Regions  []string `yaml:"regions"`
}

// DefaultOptionValues turns every feature on and leaves existing instances
// eligible for retrofitting.
func DefaultOptionValues() map[string]string {
	return map[string]string{
		options.KeyEnabled:   options.Yes,
		options.KeySolid:     options.Yes,
		options.KeyHostile:   options.Yes,
		options.KeyUpdateOld: options.No,
		options.KeyLogging:   options.Yes,
	}
}

func DefaultConfig() Config {
	pipeline := dreadroot.DefaultConfig()
	return Config{
		Options: OptionsConfig{Debounce: options.DefaultDebounce},
		Pipeline: PipelineConfig{
			Identity:          pipeline.Identity,
			Tag:               pipeline.Tag,
			Cadence:           pipeline.Cadence,
			ReplacementPolicy: string(pipeline.Policy),
		},
		Logging: logging.DefaultConfig(),
		Metrics: MetricsConfig{ListenAddress: ":9090"},
		Simulation: SimulationConfig{
			Legacy:   2,
			Governed: 3,
			Others:   []string{"Witchwood Tree", "Snapjaw"},
			Regions:  []string{"Joppa", "Red Rock"},
		},
	}
}

// LoadConfig reads a YAML host configuration, fills defaults, applies
// environment overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}
	cfg = cfg.normalized()
	applyEnvOverrides(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (cfg Config) normalized() Config {
	def := DefaultConfig()
	if cfg.Options.Debounce <= 0 {
		cfg.Options.Debounce = def.Options.Debounce
	}
	if strings.TrimSpace(cfg.Pipeline.Identity) == "" {
		cfg.Pipeline.Identity = def.Pipeline.Identity
	}
	if strings.TrimSpace(cfg.Pipeline.Tag) == "" {
		cfg.Pipeline.Tag = def.Pipeline.Tag
	}
	if cfg.Pipeline.Cadence <= 0 {
		cfg.Pipeline.Cadence = def.Pipeline.Cadence
	}
	if len(cfg.Logging.EnabledSinks) == 0 {
		cfg.Logging.EnabledSinks = def.Logging.EnabledSinks
	}
	if cfg.Logging.Prefix == "" {
		cfg.Logging.Prefix = def.Logging.Prefix
	}
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = def.Metrics.ListenAddress
	}
	if cfg.Simulation.Legacy < 0 {
		cfg.Simulation.Legacy = 0
	}
	if cfg.Simulation.Governed < 0 {
		cfg.Simulation.Governed = 0
	}
	return cfg
}

// applyEnvOverrides applies DREADROOT_* variables on top of the file.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	if val, ok := lookup("DREADROOT_OPTIONS_PATH"); ok {
		cfg.Options.Path = val
	}
	if val, ok := lookup("DREADROOT_OPTIONS_WATCH"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Options.Watch = b
		}
	}
	if val, ok := lookup("DREADROOT_OPTIONS_REFRESH_ON_RELOAD"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Options.RefreshOnReload = b
		}
	}
	if val, ok := lookup("DREADROOT_BLUEPRINTS_PATH"); ok {
		cfg.Blueprints.Path = val
	}
	if val, ok := lookup("DREADROOT_REPLACEMENT_POLICY"); ok {
		cfg.Pipeline.ReplacementPolicy = val
	}
	if val, ok := lookup("DREADROOT_REFRESH_CADENCE"); ok {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Pipeline.Cadence = i
		}
	}
	if val, ok := lookup("DREADROOT_LOG_SINKS"); ok {
		var sinks []string
		for _, name := range strings.Split(val, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sinks = append(sinks, name)
			}
		}
		cfg.Logging.EnabledSinks = sinks
	}
	if val, ok := lookup("DREADROOT_LOG_JSON_PATH"); ok {
		cfg.Logging.JSON.FilePath = val
	}
	if val, ok := lookup("DREADROOT_METRICS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val, ok := lookup("DREADROOT_METRICS_ADDRESS"); ok {
		cfg.Metrics.ListenAddress = val
	}
}

func (cfg Config) Validate() error {
	var errs []error
	if _, err := dreadroot.ParsePolicy(cfg.Pipeline.ReplacementPolicy); err != nil {
		errs = append(errs, fmt.Errorf("pipeline.replacementPolicy: %w", err))
	}
	if cfg.Pipeline.Cadence <= 0 {
		errs = append(errs, errors.New("pipeline.cadence must be positive"))
	}
	if cfg.Options.Watch && cfg.Options.Path == "" {
		errs = append(errs, errors.New("options.watch requires options.path"))
	}
	if cfg.Options.RefreshOnReload && !cfg.Options.Watch {
		errs = append(errs, errors.New("options.refreshOnReload requires options.watch"))
	}
	for _, name := range cfg.Logging.EnabledSinks {
		switch name {
		case logging.SinkConsole, logging.SinkMessages:
		case logging.SinkJSON:
			if cfg.Logging.JSON.FilePath == "" {
				errs = append(errs, errors.New("logging.json.filePath is required for the json sink"))
			}
		default:
			errs = append(errs, fmt.Errorf("logging.enabledSinks: unknown sink %q", name))
		}
	}
	return errors.Join(errs...)
}

// PartConfig converts the validated pipeline section.
func (cfg Config) PartConfig() dreadroot.Config {
	policy, _ := dreadroot.ParsePolicy(cfg.Pipeline.ReplacementPolicy)
	return dreadroot.Config{
		Identity: cfg.Pipeline.Identity,
		Tag:      cfg.Pipeline.Tag,
		Cadence:  cfg.Pipeline.Cadence,
		Policy:   policy,
		Prefix:   cfg.Logging.Prefix,
	}
}
