// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package tabular

import "strings"

// Serialize renders a grid as comma-delimited text. The output
// delimiter is always the comma, whatever delimiter the source used:
// saving is where variant-delimited uploads normalize. The header
// line carries the column titles, always quoted; data cells are
// quoted only when they contain a comma, a double quote, or a line
// break, with embedded quotes doubled. The synthetic row-number
// column is omitted. Lines are joined by "\n" with no trailing
// newline.
func Serialize(grid *Grid) string {
	columns := grid.DataColumns()

	var out strings.Builder
	for index, column := range columns {
		if index > 0 {
			out.WriteByte(',')
		}
		out.WriteString(quote(column.Title))
	}

	for _, row := range grid.Rows {
		out.WriteByte('\n')
		for index, column := range columns {
			if index > 0 {
				out.WriteByte(',')
			}
			out.WriteString(quoteIfNeeded(row[column.Key]))
		}
	}

	return out.String()
}

// quote wraps value in double quotes with embedded quotes doubled.
func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// quoteIfNeeded quotes value only when its content would otherwise be
// read as structure. The carriage return is included so a cell ending
// in one cannot merge with the line terminator on re-parse.
func quoteIfNeeded(value string) string {
	if strings.ContainsAny(value, ",\"\n\r") {
		return quote(value)
	}
	return value
}
