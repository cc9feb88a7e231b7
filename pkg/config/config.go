// Package config loads sceneflow settings from YAML or JSON files and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/sceneflow/pkg/adapters/memory"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLogLevel    = "SCENEFLOW_LOG_LEVEL"
	EnvHTTPAddr    = "SCENEFLOW_HTTP_ADDR"
	EnvRedisAddr   = "SCENEFLOW_REDIS_ADDR"
	EnvJournalPath = "SCENEFLOW_JOURNAL_PATH"
)

// Journal drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration.
type Config struct {
	LogLevel    string        `mapstructure:"log_level"`
	MinDisplay  time.Duration `mapstructure:"min_display"`
	Tick        time.Duration `mapstructure:"tick"`
	Gated       bool          `mapstructure:"gated"`
	ActiveScene int           `mapstructure:"active_scene"`
	Scenes      []Scene       `mapstructure:"scenes"`
	HTTP        HTTP          `mapstructure:"http"`
	Journal     Journal       `mapstructure:"journal"`
}

// Scene describes one entry of the simulated host catalog.
type Scene struct {
	Name           string        `mapstructure:"name"`
	LoadTime       time.Duration `mapstructure:"load_time"`
	ActivationTime time.Duration `mapstructure:"activation_time"`
	Fail           string        `mapstructure:"fail"`
	FailAt         float64       `mapstructure:"fail_at"`
}

// HTTP configures the API server.
type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// Journal selects where finished transitions are recorded.
type Journal struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Redis  Redis  `mapstructure:"redis"`
}

// Redis configures the redis journal.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:   "info",
		MinDisplay: 2 * time.Second,
		Tick:       16 * time.Millisecond,
		Gated:      true,
		Scenes: []Scene{
			{Name: "Boot"},
			{Name: "MainMenu", LoadTime: 800 * time.Millisecond, ActivationTime: 100 * time.Millisecond},
			{Name: "Level1", LoadTime: 3 * time.Second, ActivationTime: 300 * time.Millisecond},
			{Name: "Level2", LoadTime: 5 * time.Second, ActivationTime: 300 * time.Millisecond},
		},
		HTTP: HTTP{Addr: ":8080"},
		Journal: Journal{
			Driver: DriverMemory,
			Path:   ".sceneflow/history",
			Redis:  Redis{Addr: "localhost:6379"},
		},
	}
}

// Load reads a YAML or JSON file on top of the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readRaw(path)
		if err != nil {
			return Config{}, err
		}
		if raw != nil {
			if err := decode(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		ZeroFields:  true, // lists replace the defaults instead of merging into them
		Result:      cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Journal.Redis.Addr = v
	}
	if v := os.Getenv(EnvJournalPath); v != "" {
		cfg.Journal.Path = v
	}
}

// Validate checks the configuration for values the runtime cannot use.
func (c Config) Validate() error {
	switch c.Journal.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("%w: unknown journal driver %q", ErrInvalidConfig, c.Journal.Driver)
	}
	if c.MinDisplay < 0 {
		return fmt.Errorf("%w: min_display must not be negative", ErrInvalidConfig)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive", ErrInvalidConfig)
	}
	if len(c.Scenes) == 0 {
		return fmt.Errorf("%w: at least one scene is required", ErrInvalidConfig)
	}
	if c.ActiveScene < 0 || c.ActiveScene >= len(c.Scenes) {
		return fmt.Errorf("%w: active_scene %d out of range", ErrInvalidConfig, c.ActiveScene)
	}
	seen := make(map[string]bool, len(c.Scenes))
	for i, s := range c.Scenes {
		if s.Name == "" {
			return fmt.Errorf("%w: scene %d has no name", ErrInvalidConfig, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate scene %q", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Catalog converts the scene list for the simulated host.
func (c Config) Catalog() []memory.SceneSpec {
	specs := make([]memory.SceneSpec, len(c.Scenes))
	for i, s := range c.Scenes {
		specs[i] = memory.SceneSpec{
			Name:           s.Name,
			LoadTime:       s.LoadTime,
			ActivationTime: s.ActivationTime,
			FailAt:         s.FailAt,
		}
		if s.Fail != "" {
			specs[i].Fail = errors.New(s.Fail)
		}
	}
	return specs
}
