// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package blob implements the "tessera blob" CLI subcommands for
// resolving blob content through the two-level cache. A fetch that
// hits the disk store never touches the network; a miss fetches from
// the catalog and persists the payload for the next invocation.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tessera-works/tessera/cmd/tessera/cli"
	"github.com/tessera-works/tessera/lib/blobcache"
	"github.com/tessera-works/tessera/lib/catalogclient"
)

// Command returns the top-level "blob" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "blob",
		Summary: "Fetch blob content through the cache",
		Description: `Resolve blob paths through the local cache. Content already in
the on-disk store is served without touching the catalog service,
which makes repeated fetches of the same path cheap and keeps
previously viewed assets available offline.

The cache location, encryption key, and prune horizon come from the
configuration; see "tessera cache prune" for maintenance.`,
		Subcommands: []*cli.Command{
			fetchCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Fetch a page image to a file",
				Command:     "tessera blob fetch --output page.png assets/42/page-1.png",
			},
			{
				Description: "Fetch to stdout for piping",
				Command:     "tessera blob fetch assets/42/data.csv | tessera table sniff /dev/stdin",
			},
		},
	}
}

// --- fetch ---

type fetchParams struct {
	cli.ConnectionParams
	OutputPath string `flag:"output,o" desc:"output file path (default: stdout)"`
	NoStore    bool   `flag:"no-store" desc:"bypass the on-disk store (fetch stays in memory only)"`
}

func fetchCommand() *cli.Command {
	var params fetchParams

	return &cli.Command{
		Name:    "fetch",
		Summary: "Fetch a blob through the cache",
		Description: `Resolve one blob path and write its content to --output or
stdout. The resolved payload is persisted in the on-disk store (and
decompressed or decrypted transparently on later hits) unless
--no-store is set.

A path the catalog does not know prints a short message and exits 1;
transport and server failures report the underlying error instead.`,
		Usage: "tessera blob fetch [flags] PATH",
		Examples: []cli.Example{
			{
				Description: "Fetch a page image to a file",
				Command:     "tessera blob fetch --output page.png assets/42/page-1.png",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("fetch", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera blob fetch [flags] PATH")
			}
			blobPath := args[0]

			client, cfg, err := params.Connect()
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(cli.ParseLevel(cfg.LogLevel)).With("command", "blob/fetch")

			options := []blobcache.Option{}
			if !params.NoStore {
				store, err := cli.OpenDiskStore(logger, cfg)
				if err != nil {
					return err
				}
				options = append(options, blobcache.WithDiskStore(store))
			}

			cache := blobcache.New(logger, client.FetchBlob, options...)
			defer cache.ReleaseAll()

			handle, err := cache.Resolve(context.Background(), blobPath)
			if err != nil {
				var resolution *blobcache.ResolutionError
				if errors.As(err, &resolution) && catalogclient.IsNotFound(resolution.Err) {
					fmt.Fprintf(os.Stderr, "blob %s not found in catalog\n", blobPath)
					return &cli.ExitError{Code: 1}
				}
				return err
			}

			data, err := handle.Bytes()
			if err != nil {
				return err
			}

			if params.OutputPath == "" || params.OutputPath == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(params.OutputPath, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", params.OutputPath, err)
			}
			fmt.Fprintf(os.Stderr, "%s: %d bytes\n", params.OutputPath, len(data))
			return nil
		},
	}
}
