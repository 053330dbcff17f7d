// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package fragment implements the "tessera fragment" CLI subcommands
// for reading and deleting the curated key/value data attached to an
// asset. Fragments are created by analysis and curation runs on the
// service side; the client's only mutation is deletion.
package fragment

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/tessera-works/tessera/cmd/tessera/cli"
	"github.com/tessera-works/tessera/lib/catalogclient"
	"github.com/tessera-works/tessera/lib/fragment"
)

// Command returns the top-level "fragment" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "fragment",
		Summary: "Read and delete curated asset fragments",
		Description: `Work with the curated key/value fragments attached to an asset:
document titles, extracted field values, annotation results.

Keys are namespaced ("document.title", "annotation.field.summary");
listings show the shortened display form next to the raw key. Delete
takes the raw key.`,
		Subcommands: []*cli.Command{
			listCommand(),
			deleteCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List an asset's fragments, most recent first",
				Command:     "tessera fragment list --sort recency 42",
			},
			{
				Description: "Delete a stale fragment",
				Command:     "tessera fragment delete 42 document.title",
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

// parseSortMode maps the --sort flag value to a fragment.SortMode.
func parseSortMode(s string) (fragment.SortMode, error) {
	switch strings.ToLower(s) {
	case "alphabetical":
		return fragment.SortAlphabetical, nil
	case "recency":
		return fragment.SortRecency, nil
	default:
		return 0, fmt.Errorf("unknown sort order %q (valid: alphabetical, recency)", s)
	}
}

// --- list ---

type listParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Sort string `flag:"sort" desc:"sort order: alphabetical or recency" default:"alphabetical"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List an asset's fragments",
		Description: `List the fragments attached to one asset.

Alphabetical order uses locale-aware collation: set "locale" in the
configuration to sort the way that language sorts, or leave it unset
for a stable language-neutral order. Recency order is most recent
first; fragments without a timestamp come last.`,
		Usage: "tessera fragment list [flags] ID",
		Examples: []cli.Example{
			{
				Description: "List fragments alphabetically",
				Command:     "tessera fragment list 42",
			},
			{
				Description: "Most recently curated first, as JSON",
				Command:     "tessera fragment list --sort recency --json 42",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera fragment list [flags] ID")
			}
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			mode, err := parseSortMode(params.Sort)
			if err != nil {
				return err
			}

			client, cfg, err := params.Connect()
			if err != nil {
				return err
			}

			fragments, err := client.ListFragments(context.Background(), id)
			if err != nil {
				if catalogclient.IsNotFound(err) {
					fmt.Fprintf(os.Stderr, "asset %d not found\n", id)
					return &cli.ExitError{Code: 1}
				}
				return err
			}

			collection := fragment.NewCollection(id, fragments, client,
				fragment.WithLocale(cfg.LocaleTag()))
			entries := collection.SortedEntries(mode)

			if done, err := params.EmitJSON(entries); done {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintf(os.Stderr, "asset %d has no fragments\n", id)
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "KEY\tVALUE\tRECORDED\n")
			for _, entry := range entries {
				recorded := ""
				if !entry.RecordedAt.IsZero() {
					recorded = entry.RecordedAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\n",
					fragment.DisplayKey(entry.Key), oneLine(entry.Value), recorded)
			}
			return writer.Flush()
		},
	}
}

// oneLine flattens a fragment value for table display. Values are
// free text and may contain newlines; the table shows the first line
// with an ellipsis marker.
func oneLine(value string) string {
	line, rest, found := strings.Cut(value, "\n")
	if found && strings.TrimSpace(rest) != "" {
		return line + " …"
	}
	return line
}

// --- delete ---

type deleteParams struct {
	cli.ConnectionParams
}

func deleteCommand() *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a fragment by raw key",
		Description: `Delete one fragment from an asset. The key is the raw namespaced
form ("document.title", not the shortened "title" the list view
shows); use "tessera fragment list --json" to see raw keys.

The catalog service is the authority: the delete is forwarded even
when the local listing does not contain the key, and a service-side
failure is reported as an error.`,
		Usage: "tessera fragment delete ID KEY",
		Examples: []cli.Example{
			{
				Description: "Delete a stale title fragment",
				Command:     "tessera fragment delete 42 document.title",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("delete", &params)
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: tessera fragment delete ID KEY")
			}
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			key := args[1]

			client, _, err := params.Connect()
			if err != nil {
				return err
			}

			ctx := context.Background()
			fragments, err := client.ListFragments(ctx, id)
			if err != nil {
				if catalogclient.IsNotFound(err) {
					fmt.Fprintf(os.Stderr, "asset %d not found\n", id)
					return &cli.ExitError{Code: 1}
				}
				return err
			}

			collection := fragment.NewCollection(id, fragments, client)
			if _, ok := collection.Get(key); !ok {
				fmt.Fprintf(os.Stderr, "note: asset %d has no fragment %q locally; forwarding delete anyway\n", id, key)
			}

			if err := collection.Delete(ctx, key); err != nil {
				return err
			}
			fmt.Printf("deleted %s from asset %d\n", key, id)
			return nil
		},
	}
}
