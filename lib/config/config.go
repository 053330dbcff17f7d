// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the tessera CLI.
type Config struct {
	// Catalog configures the connection to the catalog service.
	Catalog CatalogConfig `yaml:"catalog"`

	// Cache configures the local blob cache.
	Cache CacheConfig `yaml:"cache"`

	// Locale is the BCP 47 tag used for locale-aware ordering in
	// fragment listings ("sv", "de-DE"). Empty selects root
	// collation, which is stable across machines.
	Locale string `yaml:"locale"`

	// LogLevel is the command log level: debug, info, warn, or
	// error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// CatalogConfig configures the catalog service connection.
type CatalogConfig struct {
	// URL is the base URL of the catalog service.
	// Default: http://localhost:8321
	URL string `yaml:"url"`

	// TokenFile is the path of the bearer token file. Empty means
	// requests go out unauthenticated, which only works against a
	// catalog running without auth.
	TokenFile string `yaml:"token_file"`

	// Timeout is the per-request timeout as a Go duration string.
	// Default: 30s
	Timeout string `yaml:"timeout"`
}

// CacheConfig configures the local blob cache.
type CacheConfig struct {
	// Dir is the directory holding cached blob payloads and their
	// records. Default: ~/.cache/tessera/blobs
	Dir string `yaml:"dir"`

	// MaxAge is the prune horizon as a Go duration string; entries
	// written longer ago are deleted by `tessera cache prune`.
	// Default: 720h (30 days)
	MaxAge string `yaml:"max_age"`

	// KeyFile is the path of a key file used to encrypt cached
	// payloads at rest. Empty stores payloads unencrypted.
	KeyFile string `yaml:"key_file"`
}

// Default returns the default configuration. These defaults make the
// CLI usable against a local catalog with no config file at all; a
// file is only needed to point somewhere else.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Catalog: CatalogConfig{
			URL:     "http://localhost:8321",
			Timeout: "30s",
		},
		Cache: CacheConfig{
			Dir:    filepath.Join(homeDir, ".cache", "tessera", "blobs"),
			MaxAge: "720h",
		},
		LogLevel: "info",
	}
}

// Load loads configuration from the file named by the TESSERA_CONFIG
// environment variable. If the variable is unset the defaults are
// returned unchanged, so a bare `tessera` invocation works against a
// local catalog.
func Load() (*Config, error) {
	configPath := os.Getenv("TESSERA_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging
// over the defaults. Unknown keys are an error: a typo in a config
// file should fail loudly, not silently fall back to a default.
//
// Environment variables do not override config values. The only
// expansion performed is ${VAR} and ${VAR:-default} in path fields,
// for portability of shared config files.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Cache.Dir = expandVars(c.Cache.Dir, vars)
	c.Cache.KeyFile = expandVars(c.Cache.KeyFile, vars)
	c.Catalog.TokenFile = expandVars(c.Catalog.TokenFile, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// logLevels are the accepted log_level values.
var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration, collecting every problem rather
// than stopping at the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Catalog.URL == "" {
		errs = append(errs, fmt.Errorf("catalog.url is required"))
	} else if parsed, err := url.Parse(c.Catalog.URL); err != nil {
		errs = append(errs, fmt.Errorf("catalog.url: %w", err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Errorf("catalog.url must be http or https, got %q", c.Catalog.URL))
	}

	if c.Catalog.Timeout != "" {
		if d, err := time.ParseDuration(c.Catalog.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("catalog.timeout: %w", err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("catalog.timeout must be positive, got %s", c.Catalog.Timeout))
		}
	}

	if c.Cache.Dir == "" {
		errs = append(errs, fmt.Errorf("cache.dir is required"))
	}

	if c.Cache.MaxAge != "" {
		if d, err := time.ParseDuration(c.Cache.MaxAge); err != nil {
			errs = append(errs, fmt.Errorf("cache.max_age: %w", err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("cache.max_age must be positive, got %s", c.Cache.MaxAge))
		}
	}

	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			errs = append(errs, fmt.Errorf("locale: %w", err))
		}
	}

	if !contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("log_level must be one of: %v", logLevels))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// CatalogTimeout returns the parsed per-request timeout. Call
// Validate first; an unparseable value falls back to 30 seconds here
// rather than failing twice.
func (c *Config) CatalogTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// CacheMaxAge returns the parsed prune horizon, falling back to 30
// days for an unset or unparseable value.
func (c *Config) CacheMaxAge() time.Duration {
	d, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

// LocaleTag returns the parsed locale tag, or language.Und when the
// locale is unset or malformed.
func (c *Config) LocaleTag() language.Tag {
	if c.Locale == "" {
		return language.Und
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
