package config

import (
	"time"

	"github.com/amoylab/coursechat/internal/common/cnst"
)

type (
	// WidgetConfig is the configuration of the chat widget client
	WidgetConfig struct {
		Backend     BackendClientConfig `yaml:"backend"`
		Persona     string              `yaml:"persona"`
		Language    string              `yaml:"language"` // en, zh
		Geo         GeoConfig           `yaml:"geo"`
		Identity    IdentityConfig      `yaml:"identity"`
		Telemetry   TelemetryConfig     `yaml:"telemetry"`
		Environment EnvironmentConfig   `yaml:"environment"`
		Overlay     OverlayConfig       `yaml:"overlay"`
		Logger      LoggerConfig        `yaml:"logger"`
		Tracing     TracingConfig       `yaml:"tracing"`
	}

	// BackendClientConfig points the widget at the conversational backend
	BackendClientConfig struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"` // 0 means no client-side timeout
	}

	// GeoConfig configures the best-effort IP geolocation lookup
	GeoConfig struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url"`
		Token   string        `yaml:"token"`
		Timeout time.Duration `yaml:"timeout"`
	}

	// IdentityConfig configures where the visitor session id is persisted
	IdentityConfig struct {
		Store IdentityStoreConfig `yaml:"store"`
	}

	// IdentityStoreConfig selects the durable store for the session id
	IdentityStoreConfig struct {
		Type  string              `yaml:"type"` // memory, disk or redis
		Disk  DiskStoreConfig     `yaml:"disk"`
		Redis IdentityRedisConfig `yaml:"redis"`
	}

	// DiskStoreConfig represents the disk-backed key/value file
	DiskStoreConfig struct {
		Path string `yaml:"path"`
	}

	// IdentityRedisConfig represents the Redis configuration for the identity store
	IdentityRedisConfig struct {
		Addr     string        `yaml:"addr"`
		Username string        `yaml:"username"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		TTL      time.Duration `yaml:"ttl"` // 0 keeps keys forever
	}

	// TelemetryConfig configures click and pointer-move batching
	TelemetryConfig struct {
		Enabled        *bool `yaml:"enabled"`
		ClickThreshold int   `yaml:"click_threshold"`
		MoveThreshold  int   `yaml:"move_threshold"`
	}

	// EnvironmentConfig describes the runtime the widget is embedded in
	EnvironmentConfig struct {
		PageURL        string `yaml:"page_url"`
		Referrer       string `yaml:"referrer"`
		UserAgent      string `yaml:"user_agent"`
		BrowserName    string `yaml:"browser_name"`
		BrowserVersion string `yaml:"browser_version"`
		Platform       string `yaml:"platform"`
		ScreenWidth    int    `yaml:"screen_width"`
		ScreenHeight   int    `yaml:"screen_height"`
	}

	// OverlayConfig tunes overlay presentation
	OverlayConfig struct {
		Slideshow SlideshowConfig `yaml:"slideshow"`
		Upcoming  UpcomingConfig  `yaml:"upcoming"`
	}

	SlideshowConfig struct {
		Transition  time.Duration `yaml:"transition"`
		AutoAdvance time.Duration `yaml:"auto_advance"` // 0 disables auto-advance
	}

	UpcomingConfig struct {
		DateLayout string `yaml:"date_layout"`
	}
)

// TelemetryEnabled reports whether click and move logging is on (default true)
func (c *TelemetryConfig) TelemetryEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c *WidgetConfig) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = cnst.DefaultBackendURL
	}
	if c.Persona == "" {
		c.Persona = cnst.DefaultPersona
	}
	if c.Language == "" {
		c.Language = cnst.LangEN
	}
	if c.Geo.URL == "" {
		c.Geo.URL = cnst.DefaultGeoURL
	}
	if c.Identity.Store.Type == "" {
		c.Identity.Store.Type = "disk"
	}
	if c.Identity.Store.Disk.Path == "" {
		c.Identity.Store.Disk.Path = "data/identity.json"
	}
	if c.Identity.Store.Redis.Prefix == "" {
		c.Identity.Store.Redis.Prefix = "coursechat"
	}
	if c.Telemetry.ClickThreshold <= 0 {
		c.Telemetry.ClickThreshold = cnst.ClickFlushThreshold
	}
	if c.Telemetry.MoveThreshold <= 0 {
		c.Telemetry.MoveThreshold = cnst.MoveFlushThreshold
	}
	if c.Environment.Platform == "" {
		c.Environment.Platform = "unknown"
	}
	defaultDuration(&c.Overlay.Slideshow.Transition, cnst.SlideTransition)
	if c.Overlay.Upcoming.DateLayout == "" {
		c.Overlay.Upcoming.DateLayout = cnst.DefaultDateLayout
	}
	// stdout carries the conversation
	if c.Logger.Output == "" {
		c.Logger.Output = "stderr"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "warn"
	}
	c.Logger.applyDefaults()
	c.Tracing.applyDefaults("coursechat")
}
