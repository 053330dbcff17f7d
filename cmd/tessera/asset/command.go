// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package asset implements the "tessera asset" CLI subcommands for
// reading catalog assets: metadata of a single asset and the ordered
// child set of a container.
package asset

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/tessera-works/tessera/cmd/tessera/cli"
	"github.com/tessera-works/tessera/lib/catalogclient"
	"github.com/tessera-works/tessera/lib/hierarchy"
)

// Command returns the top-level "asset" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "asset",
		Summary: "Read catalog assets",
		Description: `Read assets from the catalog service: single-asset metadata and
the children of container assets (the rows of a decomposed CSV, the
pages of a PDF).

Children are always listed in part order, lowest part index first,
regardless of the order the catalog returns them in.`,
		Subcommands: []*cli.Command{
			showCommand(),
			childrenCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Show an asset's metadata",
				Command:     "tessera asset show 42",
			},
			{
				Description: "List the children of a container as JSON",
				Command:     "tessera asset children --json 42",
			},
		},
	}
}

// parseAssetID parses a positional asset id argument.
func parseAssetID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid asset id %q: expected a number", arg)
	}
	return id, nil
}

// --- show ---

type showParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show an asset's metadata",
		Description: `Fetch one asset by id and print its metadata. Container assets
additionally report their declared child count; compare it against
"tessera asset children" output to see whether decomposition has
finished.`,
		Usage: "tessera asset show [flags] ID",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera asset show [flags] ID")
			}
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}

			client, _, err := params.Connect()
			if err != nil {
				return err
			}

			asset, err := client.GetAsset(context.Background(), id)
			if err != nil {
				if catalogclient.IsNotFound(err) {
					fmt.Fprintf(os.Stderr, "asset %d not found\n", id)
					return &cli.ExitError{Code: 1}
				}
				return err
			}

			if done, err := params.EmitJSON(asset); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "id:\t%d\n", asset.ID)
			fmt.Fprintf(writer, "uuid:\t%s\n", asset.UUID)
			fmt.Fprintf(writer, "kind:\t%s\n", asset.Kind)
			fmt.Fprintf(writer, "name:\t%s\n", asset.Name)
			if asset.BlobPath != "" {
				fmt.Fprintf(writer, "blob:\t%s\n", asset.BlobPath)
			}
			if asset.SourceURL != "" {
				fmt.Fprintf(writer, "source:\t%s\n", asset.SourceURL)
			}
			if asset.IsContainer {
				fmt.Fprintf(writer, "children:\t%d\n", asset.ChildCount)
			}
			return writer.Flush()
		},
	}
}

// --- children ---

type childrenParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func childrenCommand() *cli.Command {
	var params childrenParams

	return &cli.Command{
		Name:    "children",
		Summary: "List the children of a container asset",
		Description: `Fetch the parent asset and list its children in part order. The
listing reports a conflict when the catalog's declared child count
disagrees with the realized child set, which indicates decomposition
is still in flight (or was re-run since the listing).`,
		Usage: "tessera asset children [flags] ID",
		Examples: []cli.Example{
			{
				Description: "List the pages of a decomposed PDF",
				Command:     "tessera asset children 42",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("children", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera asset children [flags] ID")
			}
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}

			client, cfg, err := params.Connect()
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(cli.ParseLevel(cfg.LogLevel)).With("command", "asset/children")

			ctx := context.Background()
			parent, err := client.GetAsset(ctx, id)
			if err != nil {
				if catalogclient.IsNotFound(err) {
					fmt.Fprintf(os.Stderr, "asset %d not found\n", id)
					return &cli.ExitError{Code: 1}
				}
				return err
			}

			store := hierarchy.NewStore(logger, *parent, client.ListChildren)
			children, err := store.LoadChildren(ctx)
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(children); done {
				return err
			}

			if len(children) == 0 {
				fmt.Fprintf(os.Stderr, "asset %d has no children\n", id)
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "PART\tID\tKIND\tNAME\n")
			for _, child := range children {
				fmt.Fprintf(writer, "%d\t%d\t%s\t%s\n", child.PartIndex, child.ID, child.Kind, child.Name)
			}
			if err := writer.Flush(); err != nil {
				return err
			}

			if parent.IsContainer && len(children) != parent.ChildCount {
				fmt.Fprintf(os.Stderr, "note: catalog declares %d children, listing returned %d (decomposition in flight?)\n",
					parent.ChildCount, len(children))
			}
			return nil
		},
	}
}
