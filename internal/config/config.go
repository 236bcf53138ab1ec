package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/serpgap/serpgap/internal/curve"
	"github.com/serpgap/serpgap/internal/engine"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultBatchTTL          = 24 * time.Hour
	DefaultBroadcastInterval = 5 * time.Second
	DefaultAuthHeader        = "X-API-Key"
)

// Config is the top-level configuration for both binaries.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
}

// EngineConfig holds the deterministic core's tuning knobs.
type EngineConfig struct {
	// PeriodMonths is the reporting period length, for the monthly
	// search-volume estimate.
	PeriodMonths float64 `yaml:"period_months"`

	// ActionPercentile is the batch percentile a score must clear to
	// make a row actionable.
	ActionPercentile float64 `yaml:"action_percentile"`

	// WatchPercentile is the lower bar for the monitor bucket.
	WatchPercentile float64 `yaml:"watch_percentile"`

	// BrandTerms mark queries as brand traffic.
	BrandTerms []string `yaml:"brand_terms"`

	// Curve overrides the built-in position→CTR step curve.
	Curve CurveConfig `yaml:"curve"`

	// SERP overrides the built-in layout-feature penalty table.
	SERP SERPConfig `yaml:"serp"`

	// NearMiss bounds the expand-score position zone.
	NearMiss NearMissConfig `yaml:"near_miss"`
}

// CurveConfig is the YAML form of the CTR curve. Empty bands keep the
// built-in curve.
type CurveConfig struct {
	Bands []curve.Band `yaml:"bands"`
	Floor float64      `yaml:"floor"`
}

// SERPConfig is the YAML form of the layout penalty table. Empty penalties
// keep the built-in table.
type SERPConfig struct {
	Penalties  map[string]float64 `yaml:"penalties"`
	MaxPenalty float64            `yaml:"max_penalty"`
}

// NearMissConfig is the YAML form of the expand zone. All-zero keeps the
// built-in zone.
type NearMissConfig struct {
	Top  float64 `yaml:"top"`
	Peak float64 `yaml:"peak"`
	Fade float64 `yaml:"fade"`
}

// ServerConfig holds the operational wrapper's settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket feed and /metrics
	// listen on.
	HTTPPort int `yaml:"http_port"`

	// InputDir is watched for incoming performance exports (*.csv).
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the enriched CSV written for each processed
	// batch. Empty disables CSV output on the server.
	OutputDir string `yaml:"output_dir"`

	// BatchTTL is how long a processed batch stays in the store after its
	// last update.
	BatchTTL time.Duration `yaml:"batch_ttl"`

	// BroadcastInterval controls how often the WebSocket hub pushes the
	// current overview to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Auth configures REST API authentication.
	Auth AuthConfig `yaml:"auth"`

	// Alerts holds alerting rule and webhook delivery configuration.
	Alerts AlertsConfig `yaml:"alerts"`
}

// AuthConfig configures API-key authentication for the HTTP surface.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header the key is expected in.
	Header string `yaml:"header"`

	// KeyEnv names the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment. Empty when KeyEnv
// is unset or the variable is absent.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header or the default.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return DefaultAuthHeader
	}
	return a.Header
}

// AlertsConfig holds all alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines a threshold-based alert condition over batch summaries.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "cannibal_groups > 10" or
	// "defective_pct > 20".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv names the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			PeriodMonths:     engine.DefaultPeriodMonths,
			ActionPercentile: engine.DefaultActionPercentile,
			WatchPercentile:  engine.DefaultWatchPercentile,
		},
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BatchTTL:          DefaultBatchTTL,
			BroadcastInterval: DefaultBroadcastInterval,
		},
	}
}

// Runtime converts the YAML engine settings into the engine's validated
// runtime configuration, building the curve model and layout adjuster.
func (c EngineConfig) Runtime() (engine.Config, error) {
	out := engine.Config{
		PeriodMonths:     c.PeriodMonths,
		ActionPercentile: c.ActionPercentile,
		WatchPercentile:  c.WatchPercentile,
		BrandTerms:       c.BrandTerms,
	}
	if len(c.Curve.Bands) > 0 {
		m, err := curve.New(c.Curve.Bands, c.Curve.Floor)
		if err != nil {
			return engine.Config{}, err
		}
		out.Curve = m
	}
	if len(c.SERP.Penalties) > 0 {
		a, err := curve.NewAdjuster(c.SERP.Penalties, c.SERP.MaxPenalty)
		if err != nil {
			return engine.Config{}, err
		}
		out.SERP = a
	}
	if c.NearMiss != (NearMissConfig{}) {
		out.NearMiss = engine.NearMiss{Top: c.NearMiss.Top, Peak: c.NearMiss.Peak, Fade: c.NearMiss.Fade}
	}
	return out, nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	e := cfg.Engine
	// Zero is rejected rather than accepted: the engine treats a non-positive
	// percentile as unset and falls back to its default, so an explicit 0
	// would silently become something else.
	if e.ActionPercentile <= 0 || e.ActionPercentile > 100 {
		return fmt.Errorf("engine.action_percentile must be in (0,100]")
	}
	if e.WatchPercentile <= 0 || e.WatchPercentile > 100 {
		return fmt.Errorf("engine.watch_percentile must be in (0,100]")
	}
	if e.WatchPercentile > e.ActionPercentile {
		return fmt.Errorf("engine.watch_percentile must not exceed engine.action_percentile")
	}
	if e.PeriodMonths < 0 {
		return fmt.Errorf("engine.period_months must not be negative")
	}
	nm := e.NearMiss
	if nm != (NearMissConfig{}) && !(nm.Top < nm.Peak && nm.Peak < nm.Fade) {
		return fmt.Errorf("engine.near_miss requires top < peak < fade")
	}
	if _, err := e.Runtime(); err != nil {
		return err
	}

	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be a valid port")
	}
	if s.BatchTTL <= 0 {
		return fmt.Errorf("server.batch_ttl must be positive")
	}
	if s.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode: unknown mode %q", s.Auth.Mode)
	}
	for i, rule := range s.Alerts.Rules {
		if rule.Name == "" {
			return fmt.Errorf("server.alerts.rules[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("server.alerts.rules[%d] %q: condition is required", i, rule.Name)
		}
		switch rule.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("server.alerts.rules[%d] %q: unknown severity %q", i, rule.Name, rule.Severity)
		}
	}
	for i, wh := range s.Alerts.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("server.alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
	}
	return nil
}
