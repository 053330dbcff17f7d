// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package tabular converts delimited text (CSV and its common
// variants) to and from an editable grid representation.
//
// Parsing accepts comma, semicolon, tab, or pipe as the field
// delimiter, detected from the header line. Serialization always
// emits comma-delimited output with RFC-4180-style quoting, so saving
// a grid normalizes the delimiter. The round trip preserves every
// cell value exactly, including embedded delimiters, quotes, and
// newlines.
//
// The typical flow:
//
//  1. Parse: raw bytes from a catalog blob → Grid
//  2. The presentation layer edits cell values in place
//  3. Serialize: Grid → normalized CSV for export or re-upload
package tabular

import "errors"

// RowNumKey is the column key of the synthetic row-number column that
// Parse prepends to every grid. The column holds the 1-based row
// position as a decimal string and is excluded from serialization.
const RowNumKey = "rowNum"

// RowNumTitle is the display title of the synthetic row-number column.
const RowNumTitle = "#"

// ErrEmptyInput is returned by Parse when the input contains no
// non-blank lines. There is no grid to build, not even an empty one:
// without a header line the column set is undefined.
var ErrEmptyInput = errors.New("tabular: input has no rows")

// Column describes one grid column. Key is the stable identifier rows
// are keyed by; Title is the header text as it appeared in the source
// (or "#" for the synthetic row-number column). Keys are synthesized
// as "col_<index>" so duplicate or empty header titles cannot collide.
type Column struct {
	Key   string
	Title string
}

// Row maps column keys to cell values. Every row produced by Parse
// has exactly one value per grid column; missing trailing cells in the
// source normalize to "".
type Row map[string]string

// Grid is the parsed form of a delimited-text document.
type Grid struct {
	// Delimiter is the detected input delimiter. Informational:
	// Serialize always emits commas regardless of this value.
	Delimiter rune

	// Columns in display order. Columns[0] is always the synthetic
	// row-number column.
	Columns []Column

	// Rows in source order.
	Rows []Row
}

// DataColumns returns the grid's columns without the synthetic
// row-number column, in declared order. This is the column set that
// Serialize emits.
func (g *Grid) DataColumns() []Column {
	columns := make([]Column, 0, len(g.Columns))
	for _, column := range g.Columns {
		if column.Key == RowNumKey {
			continue
		}
		columns = append(columns, column)
	}
	return columns
}
