package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load battery parameters from a separate YAML (e.g. examples/batteries/*.yaml).
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string        `yaml:"battery_file"`
	Battery     BatteryConfig `yaml:"battery"`
	Signal      SignalConfig  `yaml:"signal"`
	Feed        FeedConfig    `yaml:"feed"`
	Store       StoreConfig   `yaml:"store"`
	Logging     LoggingConfig `yaml:"logging"`
	Demo        DemoConfig    `yaml:"demo"`
}

type BatteryConfig struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	BatterySize float64 `yaml:"battery_size"`
	Duration    float64 `yaml:"duration"`
	Efficiency  float64 `yaml:"efficiency"`
	// CyclingCost is a pointer so an explicit 0 survives merging.
	CyclingCost *float64 `yaml:"cycling_cost"`
}

// SignalConfig holds optional classifier cut points; unset values take the
// defaults.
type SignalConfig struct {
	StrongAbove   *float64 `yaml:"strong_above"`
	ModerateAbove *float64 `yaml:"moderate_above"`
}

type FeedConfig struct {
	BaseURL string `yaml:"base_url"`
	// APIKey may be left empty and supplied through PJM_API_KEY instead.
	APIKey          string `yaml:"api_key"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`

	// Client-side request budget. Zero takes the default.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type StoreConfig struct {
	// Path to the SQLite database. Empty disables persistence.
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type DemoConfig struct {
	// Fallback serves the demo curve when no real data is available.
	// Defaults to true.
	Fallback *bool `yaml:"fallback"`
}

const (
	DefaultFeedBaseURL     = "https://api.pjm.com/api/v1"
	DefaultLogLevel        = "info"
	apiKeyEnv              = "PJM_API_KEY"
	defaultTimeoutSeconds  = 10
	defaultCacheTTLMinutes = 60
	defaultRequestsPerSec  = 5
)

// Default returns a configuration usable without any file.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it or fill
// defaults. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.BatteryFile != "" {
		batteryPath := c.BatteryFile
		if !filepath.IsAbs(batteryPath) {
			// Relative to the config file first, then to cwd.
			cand := filepath.Join(filepath.Dir(path), batteryPath)
			if _, err := os.Stat(cand); err == nil {
				batteryPath = cand
			}
		}
		loaded, err := LoadBatteryFile(batteryPath)
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	def := model.DefaultBatteryConfig()
	c.Battery = MergeBattery(BatteryConfig{
		BatterySize: def.BatterySize,
		Duration:    def.Duration,
		Efficiency:  def.Efficiency,
		CyclingCost: Float(def.CyclingCost),
	}, c.Battery)

	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = DefaultFeedBaseURL
	}
	if c.Feed.APIKey == "" {
		c.Feed.APIKey = os.Getenv(apiKeyEnv)
	}
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Feed.CacheTTLMinutes <= 0 {
		c.Feed.CacheTTLMinutes = defaultCacheTTLMinutes
	}
	if c.Feed.RequestsPerSecond <= 0 {
		c.Feed.RequestsPerSecond = defaultRequestsPerSec
	}
	if c.Feed.Burst <= 0 {
		c.Feed.Burst = int(c.Feed.RequestsPerSecond)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Battery.ToModel().Validate(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	th := c.Signal.Thresholds()
	if th.Strong < th.Moderate {
		return fmt.Errorf("signal.strong_above (%v) must be >= signal.moderate_above (%v)", th.Strong, th.Moderate)
	}
	return nil
}

func (b BatteryConfig) ToModel() model.BatteryConfig {
	out := model.BatteryConfig{
		BatterySize: b.BatterySize,
		Duration:    b.Duration,
		Efficiency:  b.Efficiency,
	}
	if b.CyclingCost != nil {
		out.CyclingCost = *b.CyclingCost
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

func (s SignalConfig) Thresholds() strategy.Thresholds {
	th := strategy.DefaultThresholds()
	if s.StrongAbove != nil {
		th.Strong = *s.StrongAbove
	}
	if s.ModerateAbove != nil {
		th.Moderate = *s.ModerateAbove
	}
	return th
}

func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func (f FeedConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLMinutes) * time.Minute
}

func (d DemoConfig) FallbackEnabled() bool {
	return d.Fallback == nil || *d.Fallback
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a battery preset (`battery:` block) from YAML.
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Battery, nil
}

// MergeBattery overlays non-zero fields from override onto base. CyclingCost
// is taken whenever it is set, including an explicit zero.
// Used when loading a battery file and then applying overrides from a
// config or a request.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.BatterySize != 0 {
		out.BatterySize = override.BatterySize
	}
	if override.Duration != 0 {
		out.Duration = override.Duration
	}
	if override.Efficiency != 0 {
		out.Efficiency = override.Efficiency
	}
	if override.CyclingCost != nil {
		out.CyclingCost = Float(*override.CyclingCost)
	}
	return out
}
