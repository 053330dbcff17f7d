// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache implements the "tessera cache" CLI subcommands for
// maintaining the on-disk blob store. The store has no background
// process of its own in CLI use; prune runs are explicit (or
// scheduled externally, e.g. from a timer unit).
package cache

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/tessera-works/tessera/cmd/tessera/cli"
)

// Command returns the top-level "cache" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Maintain the on-disk blob store",
		Subcommands: []*cli.Command{
			pruneCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Prune entries older than the configured horizon",
				Command:     "tessera cache prune",
			},
			{
				Description: "Prune aggressively before copying a config to a new machine",
				Command:     "tessera cache prune --max-age 24h",
			},
		},
	}
}

// --- prune ---

type pruneParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	MaxAge time.Duration `flag:"max-age" desc:"prune horizon (default: cache.max_age from config)"`
}

func pruneCommand() *cli.Command {
	var params pruneParams

	return &cli.Command{
		Name:    "prune",
		Summary: "Delete cache entries past the prune horizon",
		Description: `Delete on-disk cache entries written longer ago than the prune
horizon. Both the record and payload files of each expired entry are
removed; unreadable records are treated as expired so a corrupt
entry cannot survive pruning forever.

The horizon defaults to cache.max_age from the configuration (30
days when unset); --max-age overrides it for one run.`,
		Usage: "tessera cache prune [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("prune", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: tessera cache prune [flags]")
			}

			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(cli.ParseLevel(cfg.LogLevel)).With("command", "cache/prune")

			store, err := cli.OpenDiskStore(logger, cfg)
			if err != nil {
				return err
			}

			maxAge := params.MaxAge
			if maxAge <= 0 {
				maxAge = cfg.CacheMaxAge()
			}

			removed, err := store.Prune(maxAge)
			if err != nil {
				return err
			}

			result := struct {
				Removed int    `json:"removed"`
				MaxAge  string `json:"max_age"`
				Dir     string `json:"dir"`
			}{
				Removed: removed,
				MaxAge:  maxAge.String(),
				Dir:     cfg.Cache.Dir,
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("pruned %d entries older than %s from %s\n", removed, maxAge, cfg.Cache.Dir)
			return nil
		},
	}
}
