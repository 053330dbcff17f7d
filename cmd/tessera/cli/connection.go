// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/tessera-works/tessera/lib/blobcache"
	"github.com/tessera-works/tessera/lib/catalogclient"
	"github.com/tessera-works/tessera/lib/config"
)

// ConnectionParams holds the shared flags for resolving configuration and
// connecting to the catalog service. Used by every CLI command that reads
// config or talks to the catalog (asset, blob, cache, fragment).
//
// By default the configuration comes from the file named by TESSERA_CONFIG,
// falling back to built-in defaults when the variable is unset. --config
// selects a file explicitly; --catalog-url and --token-file override the
// corresponding config fields for one invocation.
//
// Usage pattern:
//
//	type childrenParams struct {
//	    cli.ConnectionParams
//	    cli.JSONOutput
//	}
//
//	// In Run:
//	client, cfg, err := params.Connect()
type ConnectionParams struct {
	ConfigPath string
	CatalogURL string
	TokenFile  string
}

// AddFlags registers --config, --catalog-url, and --token-file on the given
// flag set. [BindFlags] calls this automatically when a ConnectionParams
// field appears in a params struct.
func (p *ConnectionParams) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.ConfigPath, "config", "", "path to config file (overrides TESSERA_CONFIG)")
	flagSet.StringVar(&p.CatalogURL, "catalog-url", "", "catalog service base URL (overrides config)")
	flagSet.StringVar(&p.TokenFile, "token-file", "", "path to bearer token file (overrides config)")
}

// LoadConfig resolves the effective configuration: the --config file when
// given, otherwise TESSERA_CONFIG or built-in defaults. Flag overrides are
// applied before validation, so an invalid config file can still be
// corrected from the command line.
func (p *ConnectionParams) LoadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if p.ConfigPath != "" {
		cfg, err = config.LoadFile(p.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if p.CatalogURL != "" {
		cfg.Catalog.URL = p.CatalogURL
	}
	if p.TokenFile != "" {
		cfg.Catalog.TokenFile = p.TokenFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Connect loads the effective configuration and builds an authenticated
// catalog client from it. When the config names no token file the client
// sends unauthenticated requests, which local catalog instances accept.
func (p *ConnectionParams) Connect() (*catalogclient.Client, *config.Config, error) {
	cfg, err := p.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	options := []catalogclient.Option{
		catalogclient.WithTimeout(cfg.CatalogTimeout()),
	}

	if cfg.Catalog.TokenFile != "" {
		client, err := catalogclient.New(cfg.Catalog.URL, cfg.Catalog.TokenFile, options...)
		if err != nil {
			return nil, nil, err
		}
		return client, cfg, nil
	}
	return catalogclient.NewFromToken(cfg.Catalog.URL, "", options...), cfg, nil
}

// OpenDiskStore opens the configured on-disk cache level. When the config
// names a cache key file its contents seed payload encryption; otherwise
// payloads are stored in the clear.
func OpenDiskStore(logger *slog.Logger, cfg *config.Config) (*blobcache.DiskStore, error) {
	var options []blobcache.DiskOption
	if cfg.Cache.KeyFile != "" {
		ikm, err := os.ReadFile(cfg.Cache.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading cache key file: %w", err)
		}
		ikm = bytes.TrimSpace(ikm)
		if len(ikm) == 0 {
			return nil, fmt.Errorf("cache key file %s is empty", cfg.Cache.KeyFile)
		}
		options = append(options, blobcache.WithEncryptionKey(ikm))
	}
	return blobcache.NewDiskStore(logger, cfg.Cache.Dir, options...)
}
