// Package config loads turtle's settings from an optional YAML file and
// TURTLE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/turtlefleet/turtle/internal/action"
	"github.com/turtlefleet/turtle/internal/llm"
	"github.com/turtlefleet/turtle/internal/observe"
)

// ObserverConfig controls snapshot collection.
type ObserverConfig struct {
	ProcessLimit   int    `yaml:"process_limit"`
	InspectWindows bool   `yaml:"inspect_windows"`
	DiskPath       string `yaml:"disk_path"`
}

// ProbeConfig controls the network reachability probe.
type ProbeConfig struct {
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`
}

// LaunchConfig controls window placement after an application starts.
type LaunchConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// ApprovalConfig controls confirmation prompts.
type ApprovalConfig struct {
	ConfirmCritical bool `yaml:"confirm_critical"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	// File receives logs instead of stderr when set. The full-screen shell
	// logs nowhere unless a file is given.
	File string `yaml:"file"`
}

// Config is the complete runtime configuration.
type Config struct {
	Monitors action.Monitors `yaml:"monitors"`
	Observer ObserverConfig  `yaml:"observer"`
	Probe    ProbeConfig     `yaml:"probe"`
	Launch   LaunchConfig    `yaml:"launch"`
	Approval ApprovalConfig  `yaml:"approval"`
	LLM      llm.Config      `yaml:"llm"`
	Log      LogConfig       `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	obs := observe.DefaultOptions()
	return Config{
		Monitors: action.DefaultMonitors(),
		Observer: ObserverConfig{
			ProcessLimit:   obs.ProcessLimit,
			InspectWindows: true,
			DiskPath:       obs.DiskPath,
		},
		Probe:  ProbeConfig{Host: obs.ProbeHost, Timeout: obs.ProbeTimeout},
		Launch: LaunchConfig{SettleDelay: action.DefaultSettleDelay},
		LLM:    llm.DefaultConfig(),
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultPath is ~/.turtle/config.yaml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".turtle", "config.yaml")
}

// Load builds the configuration. An explicit path (or TURTLE_CONFIG) must
// exist; the default path is optional. Environment variables override file
// values; invalid environment values are ignored.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = getenv("TURTLE_CONFIG")
	}
	if path == "" {
		path, explicit = DefaultPath(), false
	}

	if path != "" {
		err := cfg.mergeFile(path)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, err
		}
	}

	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	// A monitors table in the file replaces the built-in one entirely.
	defaults := c.Monitors
	c.Monitors = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		c.Monitors = defaults
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(c.Monitors) == 0 {
		c.Monitors = defaults
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("TURTLE_PROCESS_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Observer.ProcessLimit = n
		}
	}
	if v := getenv("TURTLE_INSPECT_WINDOWS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Observer.InspectWindows = b
		}
	}
	if v := getenv("TURTLE_PROBE_HOST"); v != "" {
		c.Probe.Host = v
	}
	if v := getenv("TURTLE_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Probe.Timeout = d
		}
	}
	if v := getenv("TURTLE_SETTLE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Launch.SettleDelay = d
		}
	}
	if v := getenv("TURTLE_CONFIRM_CRITICAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Approval.ConfirmCritical = b
		}
	}
	if v := getenv("TURTLE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("TURTLE_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	c.LLM.ApplyEnv(getenv)
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	if c.Observer.ProcessLimit <= 0 {
		return fmt.Errorf("observer.process_limit must be positive, got %d", c.Observer.ProcessLimit)
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive, got %s", c.Probe.Timeout)
	}
	if c.Launch.SettleDelay < 0 {
		return fmt.Errorf("launch.settle_delay must not be negative, got %s", c.Launch.SettleDelay)
	}
	for idx, g := range c.Monitors {
		if g.Width <= 0 || g.Height <= 0 {
			return fmt.Errorf("monitors.%s: width and height must be positive", idx)
		}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ObserverOptions converts the observer and probe sections.
func (c Config) ObserverOptions() observe.Options {
	return observe.Options{
		ProcessLimit: c.Observer.ProcessLimit,
		ProbeHost:    c.Probe.Host,
		ProbeTimeout: c.Probe.Timeout,
		DiskPath:     c.Observer.DiskPath,
	}
}

// Logger builds a production zap logger at the configured level, or at
// debug when verbose is set.
func (c Config) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if c.Log.File != "" {
		zc.OutputPaths = []string{c.Log.File}
		zc.ErrorOutputPaths = []string{c.Log.File}
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
