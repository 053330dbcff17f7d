// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	assetcmd "github.com/tessera-works/tessera/cmd/tessera/asset"
	blobcmd "github.com/tessera-works/tessera/cmd/tessera/blob"
	cachecmd "github.com/tessera-works/tessera/cmd/tessera/cache"
	"github.com/tessera-works/tessera/cmd/tessera/cli"
	flowcmd "github.com/tessera-works/tessera/cmd/tessera/flow"
	fragmentcmd "github.com/tessera-works/tessera/cmd/tessera/fragment"
	tablecmd "github.com/tessera-works/tessera/cmd/tessera/table"
	"github.com/tessera-works/tessera/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like flow validate)
		// return an ExitError with the desired exit code. Don't print
		// a redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

// rootCommand builds the complete tessera CLI command tree.
func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "tessera",
		Description: `Tessera: client-side cache and tools for the artifact catalog.

Fetch blob content through a persistent local cache, read catalog
assets and their decomposition children, manage curated fragments,
and work with tabular data and flow definitions locally.`,
		Subcommands: []*cli.Command{
			tablecmd.Command(),
			assetcmd.Command(),
			blobcmd.Command(),
			cachecmd.Command(),
			fragmentcmd.Command(),
			flowcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("tessera %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Fetch a blob through the cache",
				Command:     "tessera blob fetch --output page.png assets/42/page-1.png",
			},
			{
				Description: "List a container's children",
				Command:     "tessera asset children 42",
			},
			{
				Description: "List an asset's fragments, most recent first",
				Command:     "tessera fragment list --sort recency 42",
			},
			{
				Description: "Detect the delimiter of a spreadsheet export",
				Command:     "tessera table sniff export.csv",
			},
			{
				Description: "Validate a flow definition before uploading it",
				Command:     "tessera flow validate my-flow.jsonc",
			},
			{
				Description: "Prune cache entries older than the configured horizon",
				Command:     "tessera cache prune",
			},
		},
	}
}
