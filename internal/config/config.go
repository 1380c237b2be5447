// Package config loads and validates archiver configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Archive ArchiveConfig `mapstructure:"archive"`
	Probe   ProbeConfig   `mapstructure:"probe"`
	Render  RenderConfig  `mapstructure:"render"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ArchiveConfig governs destination roots and pool sizing.
type ArchiveConfig struct {
	GoogleDocsRoot string `mapstructure:"google_docs_root"`
	WebpagesRoot   string `mapstructure:"webpages_root"`
	Workers        int    `mapstructure:"workers"`
}

// ProbeConfig configures the response-time prober.
type ProbeConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// RenderConfig configures the headless PDF renderer.
type RenderConfig struct {
	SettleDelayMs   int     `mapstructure:"settle_delay_ms"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	MaxConcurrency  int     `mapstructure:"max_concurrency"`
	PerHostQPS      float64 `mapstructure:"per_host_qps"`
	AllowLocalFiles bool    `mapstructure:"allow_local_files"`
}

// StorageConfig selects the optional PDF mirror backend.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// ServerConfig controls the optional metrics listener.
type ServerConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("URLTOPDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("archive.google_docs_root", "GCP-KnowledgeBase")
	v.SetDefault("archive.webpages_root", "KnowledgeBase")
	v.SetDefault("archive.workers", 4)
	v.SetDefault("probe.timeout_seconds", 10)
	v.SetDefault("probe.user_agent", "urltopdf/1.0 (+https://github.com/saahil-mehta/urltopdf)")
	v.SetDefault("render.settle_delay_ms", 1000)
	v.SetDefault("render.timeout_seconds", 90)
	v.SetDefault("render.max_concurrency", 4)
	v.SetDefault("render.per_host_qps", 0)
	v.SetDefault("render.allow_local_files", true)
	v.SetDefault("storage.provider", "noop")
	v.SetDefault("server.metrics_enabled", false)
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Archive.GoogleDocsRoot == "" {
		return fmt.Errorf("archive.google_docs_root must be set")
	}
	if c.Archive.WebpagesRoot == "" {
		return fmt.Errorf("archive.webpages_root must be set")
	}
	if c.Archive.Workers <= 0 {
		return fmt.Errorf("archive.workers must be > 0")
	}
	if c.Probe.TimeoutSeconds <= 0 {
		return fmt.Errorf("probe.timeout_seconds must be > 0")
	}
	if c.Render.SettleDelayMs < 0 {
		return fmt.Errorf("render.settle_delay_ms must be >= 0")
	}
	if c.Render.TimeoutSeconds <= 0 {
		return fmt.Errorf("render.timeout_seconds must be > 0")
	}
	if c.Render.MaxConcurrency <= 0 {
		return fmt.Errorf("render.max_concurrency must be > 0")
	}
	if c.Render.PerHostQPS < 0 {
		return fmt.Errorf("render.per_host_qps must be >= 0")
	}
	switch c.Storage.Provider {
	case "noop":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
		}
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	if c.Server.MetricsEnabled && c.Server.MetricsAddr == "" {
		return fmt.Errorf("server.metrics_addr must be set when metrics are enabled")
	}
	return nil
}

// ProbeTimeout returns the probe timeout as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutSeconds) * time.Second
}

// SettleDelay returns the render settle delay as a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Render.SettleDelayMs) * time.Millisecond
}

// RenderTimeout returns the per-render timeout as a duration.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.TimeoutSeconds) * time.Second
}
