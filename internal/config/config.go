// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all harvester configuration knobs loaded via Viper.
type Config struct {
	Page       PageConfig       `mapstructure:"page"`
	Download   DownloadConfig   `mapstructure:"download"`
	Processing ProcessingConfig `mapstructure:"processing"`
	History    HistoryConfig    `mapstructure:"history"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PageConfig identifies the page to harvest and how to fetch it.
type PageConfig struct {
	URL                string `mapstructure:"url"`
	Selector           string `mapstructure:"selector"`
	LoadTimeoutSeconds int    `mapstructure:"load_timeout_seconds"`
	UserAgent          string `mapstructure:"user_agent"`
}

// DownloadConfig governs the batch download pipeline.
type DownloadConfig struct {
	Dir            string `mapstructure:"dir"`
	Concurrency    int    `mapstructure:"concurrency"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ProcessingConfig controls post-processing of downloaded files.
type ProcessingConfig struct {
	Dir         string   `mapstructure:"dir"`
	ExtractTool string   `mapstructure:"extract_tool"`
	ExtractArgs []string `mapstructure:"extract_args"`
}

// HistoryConfig enables the optional sqlite run-history store.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
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
	v.SetDefault("page.load_timeout_seconds", 60)
	v.SetDefault("page.user_agent", "statdocs-harvester/0.1")
	v.SetDefault("download.dir", "downloads")
	v.SetDefault("download.concurrency", 5)
	v.SetDefault("download.timeout_seconds", 120)
	v.SetDefault("processing.dir", "processing")
	v.SetDefault("processing.extract_tool", "unzip")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Page.URL == "" {
		return fmt.Errorf("page.url must be set")
	}
	if c.Page.Selector == "" {
		return fmt.Errorf("page.selector must be set")
	}
	if c.Download.Concurrency <= 0 {
		return fmt.Errorf("download.concurrency must be > 0")
	}
	if c.Download.TimeoutSeconds <= 0 {
		return fmt.Errorf("download.timeout_seconds must be > 0")
	}
	if c.Page.LoadTimeoutSeconds <= 0 {
		return fmt.Errorf("page.load_timeout_seconds must be > 0")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// DownloadTimeout returns the per-download timeout as a duration.
func (c Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}

// PageLoadTimeout returns the page navigation timeout as a duration.
func (c Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.Page.LoadTimeoutSeconds) * time.Second
}
