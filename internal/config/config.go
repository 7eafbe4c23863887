package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL is optional; translation history is disabled without it.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"4"`

	NativeBridgeURL     string        `envconfig:"NATIVE_BRIDGE_URL" default:""`
	NativeBridgeTimeout time.Duration `envconfig:"NATIVE_BRIDGE_TIMEOUT" default:"5m"`

	LibreTranslateURL    string `envconfig:"LIBRETRANSLATE_URL" default:"https://libretranslate.com"`
	LibreTranslateAPIKey string `envconfig:"LIBRETRANSLATE_API_KEY" default:""`
	MyMemoryURL          string `envconfig:"MYMEMORY_URL" default:"https://api.mymemory.translated.net"`
	MyMemoryEmail        string `envconfig:"MYMEMORY_EMAIL" default:""`

	TranslationHTTPTimeout time.Duration `envconfig:"TRANSLATION_HTTP_TIMEOUT" default:"15s"`
	Simulate               bool          `envconfig:"TRANSLATION_SIMULATE" default:"false"`
	SimulateDelay          time.Duration `envconfig:"TRANSLATION_SIMULATE_DELAY" default:"600ms"`
	ClearErrorOnStart      bool          `envconfig:"TRANSLATION_CLEAR_ERROR_ON_START" default:"false"`

	LanguageCatalogFile string `envconfig:"LANGUAGE_CATALOG_FILE" default:""`
	DefaultSourceLang   string `envconfig:"DEFAULT_SOURCE_LANG" default:"de"`
	DefaultTargetLang   string `envconfig:"DEFAULT_TARGET_LANG" default:"en"`

	APIKeyHash         string `envconfig:"API_KEY_HASH" default:""`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if err := validateOptionalURL("NATIVE_BRIDGE_URL", c.NativeBridgeURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.LibreTranslateURL) == "" {
		return fmt.Errorf("LIBRETRANSLATE_URL is required")
	}
	if err := validateOptionalURL("LIBRETRANSLATE_URL", c.LibreTranslateURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.MyMemoryURL) == "" {
		return fmt.Errorf("MYMEMORY_URL is required")
	}
	if err := validateOptionalURL("MYMEMORY_URL", c.MyMemoryURL); err != nil {
		return err
	}
	if c.TranslationHTTPTimeout <= 0 {
		return fmt.Errorf("TRANSLATION_HTTP_TIMEOUT must be > 0")
	}
	if c.NativeBridgeTimeout <= 0 {
		return fmt.Errorf("NATIVE_BRIDGE_TIMEOUT must be > 0")
	}
	if c.SimulateDelay < 0 {
		return fmt.Errorf("TRANSLATION_SIMULATE_DELAY must be >= 0")
	}
	if strings.TrimSpace(c.DefaultSourceLang) == "" {
		return fmt.Errorf("DEFAULT_SOURCE_LANG is required")
	}
	if strings.TrimSpace(c.DefaultTargetLang) == "" {
		return fmt.Errorf("DEFAULT_TARGET_LANG is required")
	}
	return nil
}

// HistoryEnabled reports whether a database is configured for translation history.
func (c *Config) HistoryEnabled() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

func validateOptionalURL(name, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", name)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
