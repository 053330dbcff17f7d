// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package flow implements the "tessera flow" CLI subcommands for
// processing-flow definitions. The client never executes flows; it
// validates definition files before upload and ships a set of
// built-in definitions for the common ingestion shapes.
package flow

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/tessera-works/tessera/cmd/tessera/cli"
	"github.com/tessera-works/tessera/lib/flowdef"
	"github.com/tessera-works/tessera/lib/flows"
)

// Command returns the top-level "flow" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "flow",
		Summary: "Validate and inspect processing flow definitions",
		Description: `Work with processing-flow definitions: the staged recipes
(ingest, decompose, annotate, curate) the processing service runs
against uploaded assets.

Flow files use JSONC: JSON extended with // line comments, /* block
comments */, and trailing commas. Comments are stripped before
parsing. Validation is purely local and checks structure only; the
processing service revalidates on upload.`,
		Subcommands: []*cli.Command{
			validateCommand(),
			listCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Validate a flow definition before uploading it",
				Command:     "tessera flow validate my-flow.jsonc",
			},
			{
				Description: "List the built-in flow definitions",
				Command:     "tessera flow list",
			},
		},
	}
}

// --- validate ---

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Summary: "Validate a local flow definition file",
		Description: `Validate a flow definition file. Checks that the JSONC is
well-formed and the definition is structurally sound: the flow is
named and has at least one stage, every stage has a name and a known
kind, stage names are unique, and "needs" references point at
earlier stages.

All issues are reported at once, then the command exits 1.`,
		Usage: "tessera flow validate FILE",
		Examples: []cli.Example{
			{
				Description: "Validate a flow definition",
				Command:     "tessera flow validate my-flow.jsonc",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera flow validate FILE")
			}

			path := args[0]
			flow, err := flowdef.ReadFile(path)
			if err != nil {
				return err
			}

			issues := flowdef.Validate(flow)
			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "  - %s\n", issue)
				}
				fmt.Fprintf(os.Stderr, "%s: %d validation issue(s) found\n", path, len(issues))
				return &cli.ExitError{Code: 1}
			}

			fmt.Fprintf(os.Stdout, "%s: valid\n", path)
			return nil
		},
	}
}

// --- list ---

type listParams struct {
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the built-in flow definitions",
		Description: `List the flow definitions compiled into this binary. Each entry
shows the flow name, its stage count, and a short description. The
source hash identifies the exact embedded definition for comparison
against what a processing service reports.`,
		Usage: "tessera flow list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: tessera flow list [flags]")
			}

			builtin, err := flows.Builtin()
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(builtin); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "NAME\tSTAGES\tDESCRIPTION\n")
			for _, flow := range builtin {
				fmt.Fprintf(writer, "%s\t%d\t%s\n",
					flow.Name, len(flow.Definition.Stages), flow.Definition.Description)
			}
			return writer.Flush()
		},
	}
}
