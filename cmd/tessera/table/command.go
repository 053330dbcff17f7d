// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package table implements the "tessera table" CLI subcommands for
// working with delimited text files locally. No catalog access: the
// commands read a file, run it through lib/tabular, and print or
// write the result.
package table

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/tessera-works/tessera/cmd/tessera/cli"
	"github.com/tessera-works/tessera/lib/tabular"
)

// Command returns the top-level "table" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "table",
		Summary: "Inspect and convert delimited text files",
		Description: `Work with CSV-family files: comma, semicolon, tab, or pipe
delimited. The delimiter is detected from the header line, so the
same commands work on any of the four variants.

Conversion always emits comma-delimited output with RFC-4180-style
quoting. Embedded delimiters, quotes, and newlines survive the round
trip exactly.`,
		Subcommands: []*cli.Command{
			sniffCommand(),
			showCommand(),
			convertCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Detect the delimiter of a file",
				Command:     "tessera table sniff export.csv",
			},
			{
				Description: "Print a file as an aligned grid",
				Command:     "tessera table show measurements.tsv",
			},
			{
				Description: "Normalize a semicolon-delimited export to CSV",
				Command:     "tessera table convert --output clean.csv export.csv",
			},
		},
	}
}

// delimiterName returns the human name of a delimiter rune.
func delimiterName(delimiter rune) string {
	switch delimiter {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return fmt.Sprintf("%q", delimiter)
	}
}

// --- sniff ---

type sniffParams struct {
	cli.JSONOutput
}

func sniffCommand() *cli.Command {
	var params sniffParams

	return &cli.Command{
		Name:    "sniff",
		Summary: "Detect the delimiter of a delimited text file",
		Description: `Report which delimiter the file uses: comma, semicolon, tab, or
pipe. Detection looks at the header line only and picks the
delimiter that splits it into the most fields, preferring earlier
candidates on a tie. A header with no delimiter at all reports
comma, the parse default.`,
		Usage: "tessera table sniff [flags] FILE",
		Examples: []cli.Example{
			{
				Description: "Detect the delimiter before converting",
				Command:     "tessera table sniff export.csv",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("sniff", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera table sniff [flags] FILE")
			}

			grid, err := readGrid(args[0])
			if err != nil {
				return err
			}

			result := struct {
				Delimiter string `json:"delimiter"`
				Name      string `json:"name"`
				Columns   int    `json:"columns"`
				Rows      int    `json:"rows"`
			}{
				Delimiter: string(grid.Delimiter),
				Name:      delimiterName(grid.Delimiter),
				Columns:   len(grid.DataColumns()),
				Rows:      len(grid.Rows),
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}

			fmt.Printf("%s (%d columns, %d rows)\n", result.Name, result.Columns, result.Rows)
			return nil
		},
	}
}

// --- show ---

type showParams struct {
	cli.JSONOutput
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Print a delimited text file as an aligned grid",
		Description: `Parse the file and print it as an aligned table, with the
synthetic row-number column first. With --json, emit the rows as an
array of header-keyed objects instead.`,
		Usage: "tessera table show [flags] FILE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera table show [flags] FILE")
			}

			grid, err := readGrid(args[0])
			if err != nil {
				return err
			}

			if params.OutputJSON {
				// Key cells by header title rather than the internal
				// col_<n> keys, and drop the row-number column: JSON
				// consumers index, they don't count.
				rows := make([]map[string]string, 0, len(grid.Rows))
				for _, row := range grid.Rows {
					entry := make(map[string]string, len(grid.Columns)-1)
					for _, column := range grid.DataColumns() {
						entry[column.Title] = row[column.Key]
					}
					rows = append(rows, entry)
				}
				return cli.WriteJSON(rows)
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			for i, column := range grid.Columns {
				if i > 0 {
					fmt.Fprint(writer, "\t")
				}
				fmt.Fprint(writer, column.Title)
			}
			fmt.Fprintln(writer)
			for _, row := range grid.Rows {
				for i, column := range grid.Columns {
					if i > 0 {
						fmt.Fprint(writer, "\t")
					}
					fmt.Fprint(writer, row[column.Key])
				}
				fmt.Fprintln(writer)
			}
			return writer.Flush()
		},
	}
}

// --- convert ---

type convertParams struct {
	OutputPath string `flag:"output,o" desc:"output file path (default: stdout)"`
}

func convertCommand() *cli.Command {
	var params convertParams

	return &cli.Command{
		Name:    "convert",
		Summary: "Normalize a delimited text file to CSV",
		Description: `Parse the file with delimiter detection and re-emit it as
comma-delimited text with RFC-4180-style quoting. Header cells are
always quoted; data cells only when they contain a comma, quote, or
newline. The synthetic row-number column is not emitted.`,
		Usage: "tessera table convert [flags] FILE",
		Examples: []cli.Example{
			{
				Description: "Normalize a tab-separated export to CSV",
				Command:     "tessera table convert --output clean.csv export.tsv",
			},
			{
				Description: "Convert to stdout for piping",
				Command:     "tessera table convert export.csv | head",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("convert", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: tessera table convert [flags] FILE")
			}

			grid, err := readGrid(args[0])
			if err != nil {
				return err
			}

			serialized := tabular.Serialize(grid)
			if params.OutputPath == "" || params.OutputPath == "-" {
				_, err := os.Stdout.WriteString(serialized)
				return err
			}
			if err := os.WriteFile(params.OutputPath, []byte(serialized), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", params.OutputPath, err)
			}
			return nil
		},
	}
}

// readGrid reads and parses a delimited text file.
func readGrid(path string) (*tabular.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	grid, err := tabular.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return grid, nil
}
