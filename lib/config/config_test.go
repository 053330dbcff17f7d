// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Catalog.URL != "http://localhost:8321" {
		t.Errorf("expected catalog.url=http://localhost:8321, got %s", cfg.Catalog.URL)
	}
	if cfg.Catalog.Timeout != "30s" {
		t.Errorf("expected catalog.timeout=30s, got %s", cfg.Catalog.Timeout)
	}
	if cfg.Cache.MaxAge != "720h" {
		t.Errorf("expected cache.max_age=720h, got %s", cfg.Cache.MaxAge)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log_level=info, got %s", cfg.LogLevel)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoad_WithoutTesseraConfig(t *testing.T) {
	t.Setenv("TESSERA_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Catalog.URL != Default().Catalog.URL {
		t.Errorf("expected defaults when TESSERA_CONFIG unset, got url=%s", cfg.Catalog.URL)
	}
}

func TestLoad_WithTesseraConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tessera.yaml")

	configContent := `
catalog:
  url: https://catalog.example.org
cache:
  dir: /test/cache
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("TESSERA_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Catalog.URL != "https://catalog.example.org" {
		t.Errorf("expected url=https://catalog.example.org, got %s", cfg.Catalog.URL)
	}
	if cfg.Cache.Dir != "/test/cache" {
		t.Errorf("expected cache.dir=/test/cache, got %s", cfg.Cache.Dir)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tessera.yaml")

	configContent := `
catalog:
  url: https://catalog.example.org
  token_file: /secrets/token
  timeout: 5s

cache:
  dir: /custom/cache
  max_age: 48h
  key_file: /secrets/cache.key

locale: sv
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Catalog.URL != "https://catalog.example.org" {
		t.Errorf("expected url=https://catalog.example.org, got %s", cfg.Catalog.URL)
	}
	if cfg.Catalog.TokenFile != "/secrets/token" {
		t.Errorf("expected token_file=/secrets/token, got %s", cfg.Catalog.TokenFile)
	}
	if cfg.Cache.Dir != "/custom/cache" {
		t.Errorf("expected cache.dir=/custom/cache, got %s", cfg.Cache.Dir)
	}
	if cfg.Cache.KeyFile != "/secrets/cache.key" {
		t.Errorf("expected key_file=/secrets/cache.key, got %s", cfg.Cache.KeyFile)
	}
	if cfg.Locale != "sv" {
		t.Errorf("expected locale=sv, got %s", cfg.Locale)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level=debug, got %s", cfg.LogLevel)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config failed validation: %v", err)
	}
	if got := cfg.CatalogTimeout(); got != 5*time.Second {
		t.Errorf("CatalogTimeout() = %v, want 5s", got)
	}
	if got := cfg.CacheMaxAge(); got != 48*time.Hour {
		t.Errorf("CacheMaxAge() = %v, want 48h", got)
	}
	if got := cfg.LocaleTag(); got != language.Swedish {
		t.Errorf("LocaleTag() = %v, want sv", got)
	}
}

func TestLoadFile_UnknownKeyFails(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tessera.yaml")

	// "catalogue" is a typo for "catalog"; silently ignoring it
	// would leave the user talking to the default endpoint.
	configContent := `
catalogue:
  url: https://catalog.example.org
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("TESSERA_TEST_SECRETS", "/mnt/secrets")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tessera.yaml")

	configContent := `
catalog:
  token_file: ${TESSERA_TEST_SECRETS}/token
cache:
  dir: ${HOME}/.cache/tessera/blobs
  key_file: ${TESSERA_TEST_UNSET:-/fallback/cache.key}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Catalog.TokenFile != "/mnt/secrets/token" {
		t.Errorf("expected token_file=/mnt/secrets/token, got %s", cfg.Catalog.TokenFile)
	}
	home := os.Getenv("HOME")
	if home != "" && cfg.Cache.Dir != home+"/.cache/tessera/blobs" {
		t.Errorf("expected cache.dir under %s, got %s", home, cfg.Cache.Dir)
	}
	if cfg.Cache.KeyFile != "/fallback/cache.key" {
		t.Errorf("expected key_file=/fallback/cache.key from default, got %s", cfg.Cache.KeyFile)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Environment variables must not override config file values;
	// the file is the single source of truth.
	t.Setenv("TESSERA_CATALOG_URL", "https://env.example.org")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tessera.yaml")

	configContent := `
catalog:
  url: https://file.example.org
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Catalog.URL != "https://file.example.org" {
		t.Errorf("expected url from file, got %s", cfg.Catalog.URL)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Catalog: CatalogConfig{
			URL:     "ftp://catalog.example.org",
			Timeout: "soon",
		},
		Cache: CacheConfig{
			MaxAge: "-1h",
		},
		Locale:   "not a locale!",
		LogLevel: "loud",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}

	message := err.Error()
	for _, want := range []string{
		"catalog.url",
		"catalog.timeout",
		"cache.dir",
		"cache.max_age",
		"locale",
		"log_level",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("validation error missing %q: %s", want, message)
		}
	}
}

func TestAccessorFallbacks(t *testing.T) {
	cfg := &Config{}

	if got := cfg.CatalogTimeout(); got != 30*time.Second {
		t.Errorf("CatalogTimeout() fallback = %v, want 30s", got)
	}
	if got := cfg.CacheMaxAge(); got != 30*24*time.Hour {
		t.Errorf("CacheMaxAge() fallback = %v, want 720h", got)
	}
	if got := cfg.LocaleTag(); got != language.Und {
		t.Errorf("LocaleTag() fallback = %v, want und", got)
	}
}
