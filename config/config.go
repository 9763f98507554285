// Package config loads axsim settings from a YAML file. Every field has a
// default, so an empty or missing file is a valid configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/axsim/analyze"
	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/livepage"
	"github.com/hazyhaar/axsim/screenreader"
)

// Config is the top-level configuration.
type Config struct {
	Builder      BuilderConfig      `yaml:"builder"`
	ReadingOrder ReadingOrderConfig `yaml:"reading_order"`
	LiveRegions  LiveRegionConfig   `yaml:"live_regions"`
	Simulator    SimulatorConfig    `yaml:"simulator"`
	Watch        WatchConfig        `yaml:"watch"`
	Live         LiveConfig         `yaml:"live"`
	Server       ServerConfig       `yaml:"server"`
}

// BuilderConfig controls tree construction.
type BuilderConfig struct {
	KeepHidden bool `yaml:"keep_hidden"`
	Sanitize   bool `yaml:"sanitize"`
}

// ReadingOrderConfig tunes the reading order analyzer, in pixels.
type ReadingOrderConfig struct {
	RowTolerance       float64 `yaml:"row_tolerance"`
	DeviationTolerance int     `yaml:"deviation_tolerance"`
	VerticalJump       float64 `yaml:"vertical_jump"`
	BackwardJump       float64 `yaml:"backward_jump"`
}

// LiveRegionConfig tunes the live region analyzer.
type LiveRegionConfig struct {
	MaxUpdateRate float64 `yaml:"max_update_rate"` // updates per second
}

// SimulatorConfig selects and tunes a screen reader simulator.
type SimulatorConfig struct {
	Vendor        string `yaml:"vendor"`         // nvda | jaws | voiceover
	Verbosity     string `yaml:"verbosity"`      // minimal | normal | verbose
	Browser       string `yaml:"browser"`
	Platform      string `yaml:"platform"`       // macos | ios
	DocumentOrder string `yaml:"document_order"` // tree | geometry
}

// WatchConfig controls file watching.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Debounce time.Duration `yaml:"debounce"`
	Detector string        `yaml:"detector"` // stat | hash | fsnotify
}

// LiveConfig controls the headless browser.
type LiveConfig struct {
	Remote      string         `yaml:"remote"` // DevTools websocket URL; empty launches Chrome
	Stealth     bool           `yaml:"stealth"`
	Block       []string       `yaml:"block"` // images | fonts | media | stylesheets
	LoadTimeout time.Duration  `yaml:"load_timeout"`
	Debounce    DebounceConfig `yaml:"debounce"`
}

// DebounceConfig controls mutation batching.
type DebounceConfig struct {
	Window    time.Duration `yaml:"window"`
	MaxBuffer int           `yaml:"max_buffer"`
}

// ServerConfig controls axsim serve.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	DB        string `yaml:"db"`
	MetricsDB string `yaml:"metrics_db"`
	// RateLimits is keyed "METHOD /path".
	RateLimits map[string]RateLimit `yaml:"rate_limits"`
}

// RateLimit caps requests per client in a fixed window.
type RateLimit struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadFile reads a YAML configuration file. A missing file yields Default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ReadingOrder.RowTolerance <= 0 {
		c.ReadingOrder.RowTolerance = 10
	}
	if c.ReadingOrder.DeviationTolerance <= 0 {
		c.ReadingOrder.DeviationTolerance = 2
	}
	if c.ReadingOrder.VerticalJump <= 0 {
		c.ReadingOrder.VerticalJump = 200
	}
	if c.ReadingOrder.BackwardJump <= 0 {
		c.ReadingOrder.BackwardJump = 50
	}
	if c.LiveRegions.MaxUpdateRate <= 0 {
		c.LiveRegions.MaxUpdateRate = 1
	}
	if c.Simulator.Vendor == "" {
		c.Simulator.Vendor = string(announce.NVDA)
	}
	if c.Simulator.Verbosity == "" {
		c.Simulator.Verbosity = string(announce.Normal)
	}
	if c.Simulator.Browser == "" {
		c.Simulator.Browser = "chrome"
	}
	if c.Simulator.Platform == "" {
		c.Simulator.Platform = string(screenreader.MacOS)
	}
	if c.Simulator.DocumentOrder == "" {
		c.Simulator.DocumentOrder = "tree"
	}
	if c.Watch.Interval <= 0 {
		c.Watch.Interval = 500 * time.Millisecond
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 300 * time.Millisecond
	}
	if c.Watch.Detector == "" {
		c.Watch.Detector = "hash"
	}
	if c.Live.LoadTimeout <= 0 {
		c.Live.LoadTimeout = 30 * time.Second
	}
	if c.Live.Debounce.Window <= 0 {
		c.Live.Debounce.Window = 250 * time.Millisecond
	}
	if c.Live.Debounce.MaxBuffer <= 0 {
		c.Live.Debounce.MaxBuffer = 1000
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8087"
	}
	if c.Server.DB == "" {
		c.Server.DB = "axsim.db"
	}
	if c.Server.RateLimits == nil {
		c.Server.RateLimits = map[string]RateLimit{
			"POST /api/audit":    {MaxRequests: 60, Window: time.Minute},
			"POST /api/simulate": {MaxRequests: 120, Window: time.Minute},
			"POST /api/tree":     {MaxRequests: 120, Window: time.Minute},
		}
	}
	for k, rl := range c.Server.RateLimits {
		if rl.Window <= 0 {
			rl.Window = time.Minute
			c.Server.RateLimits[k] = rl
		}
	}
}

// Validate checks enumerated settings. Parse calls it; callers that
// override fields after loading call it again.
func (c *Config) Validate() error {
	if _, err := announce.ParseVendor(c.Simulator.Vendor); err != nil {
		return fmt.Errorf("config: simulator.vendor: %w", err)
	}
	if _, err := announce.ParseVerbosity(c.Simulator.Verbosity); err != nil {
		return fmt.Errorf("config: simulator.verbosity: %w", err)
	}
	switch c.Simulator.Platform {
	case string(screenreader.MacOS), string(screenreader.IOS):
	default:
		return fmt.Errorf("config: simulator.platform: unknown platform %q", c.Simulator.Platform)
	}
	switch c.Simulator.DocumentOrder {
	case "tree", "geometry":
	default:
		return fmt.Errorf("config: simulator.document_order: unknown order %q", c.Simulator.DocumentOrder)
	}
	switch c.Watch.Detector {
	case "stat", "hash", "fsnotify":
	default:
		return fmt.Errorf("config: watch.detector: unknown detector %q", c.Watch.Detector)
	}
	return nil
}

// BuilderOptions returns the tree builder options.
func (c *Config) BuilderOptions() []axtree.Option {
	if c.Builder.KeepHidden {
		return []axtree.Option{axtree.WithHiddenNodes()}
	}
	return nil
}

// LivePage returns the livepage configuration.
func (c *Config) LivePage(logger *slog.Logger) livepage.Config {
	return livepage.Config{
		Remote:      c.Live.Remote,
		Stealth:     c.Live.Stealth,
		LoadTimeout: c.Live.LoadTimeout,
		Block:       c.Live.Block,
		Debounce:    c.Live.Debounce.Window,
		MaxBuffer:   c.Live.Debounce.MaxBuffer,
		Logger:      logger,
	}
}

// AuditOptions returns the auditor options for the analyzer settings.
func (c *Config) AuditOptions() []audit.Option {
	ro := c.ReadingOrder
	return []audit.Option{
		audit.WithBuilderOptions(c.BuilderOptions()...),
		audit.WithReadingOrderOptions(
			analyze.WithRowTolerance(ro.RowTolerance),
			analyze.WithDeviationTolerance(ro.DeviationTolerance),
			analyze.WithVerticalJump(ro.VerticalJump),
			analyze.WithBackwardJump(ro.BackwardJump),
		),
		audit.WithLiveRegionOptions(analyze.WithMaxUpdateRate(c.LiveRegions.MaxUpdateRate)),
	}
}

// SimulatorOptions returns the vendor and options for screenreader.New.
func (c *Config) SimulatorOptions() (announce.Vendor, []screenreader.Option, error) {
	v, err := announce.ParseVendor(c.Simulator.Vendor)
	if err != nil {
		return "", nil, fmt.Errorf("config: %w", err)
	}
	verb, err := announce.ParseVerbosity(c.Simulator.Verbosity)
	if err != nil {
		return "", nil, fmt.Errorf("config: %w", err)
	}
	opts := []screenreader.Option{
		screenreader.WithVerbosity(verb),
		screenreader.WithBrowser(c.Simulator.Browser),
		screenreader.WithPlatform(screenreader.Platform(c.Simulator.Platform)),
	}
	if c.Simulator.DocumentOrder == "geometry" {
		opts = append(opts, screenreader.WithDocumentOrder(screenreader.OrderGeometry))
	}
	return v, opts, nil
}
