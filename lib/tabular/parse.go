// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package tabular

import (
	"fmt"
	"strconv"
	"strings"
)

// delimiters is the candidate set tried by SniffDelimiter, in priority
// order. A later candidate must beat an earlier one strictly, so ties
// resolve to the comma.
var delimiters = []rune{',', ';', '\t', '|'}

// SniffDelimiter picks the most likely field delimiter by splitting
// the header line with each candidate and counting fields. The
// candidate producing the most fields wins; ties resolve in favor of
// the earlier candidate (comma first). This is a heuristic: a header
// whose titles contain a rival delimiter character unquoted can fool
// it, which matches how every spreadsheet importer behaves.
func SniffDelimiter(headerLine string) rune {
	best := delimiters[0]
	bestCount := countFields(headerLine, best)
	for _, candidate := range delimiters[1:] {
		if count := countFields(headerLine, candidate); count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// countFields returns the number of fields the line splits into under
// the given delimiter, honoring quoting.
func countFields(line string, delimiter rune) int {
	records := scanRecords(line, delimiter)
	if len(records) == 0 {
		return 1
	}
	return len(records[0])
}

// Parse converts delimited text into a Grid. The delimiter is
// detected from the first non-blank line (see SniffDelimiter). The
// first non-blank record becomes the header: each header cell yields
// a column keyed "col_<index>" titled with the cell text, after a
// synthetic row-number column. Every following record becomes a row;
// records shorter than the header pad missing cells with "", records
// longer than the header drop the excess.
//
// Quoting follows the common CSV convention: a double quote toggles
// quoted state, a doubled quote inside a quoted region is a literal
// quote, and delimiters and newlines inside a quoted region are cell
// content rather than structure. Blank records are skipped. Returns
// ErrEmptyInput when nothing remains.
func Parse(text string) (*Grid, error) {
	delimiter := SniffDelimiter(headerLine(text))

	records := scanRecords(text, delimiter)
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	header := records[0]
	columns := make([]Column, 0, len(header)+1)
	columns = append(columns, Column{Key: RowNumKey, Title: RowNumTitle})
	for index, title := range header {
		columns = append(columns, Column{
			Key:   fmt.Sprintf("col_%d", index),
			Title: title,
		})
	}

	rows := make([]Row, 0, len(records)-1)
	for rowIndex, record := range records[1:] {
		row := make(Row, len(columns))
		row[RowNumKey] = strconv.Itoa(rowIndex + 1)
		for index := range header {
			value := ""
			if index < len(record) {
				value = record[index]
			}
			row[columns[index+1].Key] = value
		}
		rows = append(rows, row)
	}

	return &Grid{Delimiter: delimiter, Columns: columns, Rows: rows}, nil
}

// headerLine returns the first non-blank physical line, the line the
// header record starts on. Blank records are dropped during scanning,
// so sniffing a leading blank line would report the wrong delimiter
// for the table that remains.
func headerLine(text string) string {
	rest := text
	for rest != "" {
		line, tail, _ := strings.Cut(rest, "\n")
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			return line
		}
		rest = tail
	}
	return ""
}

// scanRecords splits text into records of cells using a quote-aware
// scanner. Outside a quoted region the delimiter separates cells and
// a newline (optionally preceded by a carriage return) ends the
// record; inside a quoted region both are literal content. Records
// that consist of a single blank cell are dropped. An unterminated
// quoted region runs to end of input (lenient, like the importers
// this format round-trips with).
func scanRecords(text string, delimiter rune) [][]string {
	var (
		records  [][]string
		fields   []string
		cell     strings.Builder
		inQuotes bool
	)

	endField := func() {
		fields = append(fields, cell.String())
		cell.Reset()
	}
	endRecord := func() {
		endField()
		blank := len(fields) == 1 && strings.TrimSpace(fields[0]) == ""
		if !blank {
			records = append(records, fields)
		}
		fields = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					cell.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			cell.WriteRune(ch)
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case delimiter:
			endField()
		case '\r':
			// Part of a CRLF line ending; a bare carriage return
			// stays literal.
			if i+1 < len(runes) && runes[i+1] == '\n' {
				continue
			}
			cell.WriteRune(ch)
		case '\n':
			endRecord()
		default:
			cell.WriteRune(ch)
		}
	}

	if cell.Len() > 0 || len(fields) > 0 {
		endRecord()
	}
	return records
}
