// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package tabular

import (
	"reflect"
	"strings"
	"testing"
)

func TestSerializeEndToEnd(t *testing.T) {
	// Semicolon input, comma-normalized output.
	grid, err := Parse("Name;Age\nAna;30\nLee;41")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if grid.Delimiter != ';' {
		t.Fatalf("Delimiter = %q, want semicolon", grid.Delimiter)
	}

	got := Serialize(grid)
	want := "\"Name\",\"Age\"\nAna,30\nLee,41"
	if got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
}

func TestSerializeHeaderAlwaysQuoted(t *testing.T) {
	grid, err := Parse("plain,title\na,b")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := Serialize(grid)
	if !strings.HasPrefix(got, `"plain","title"`) {
		t.Fatalf("Serialize = %q, want quoted header first", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("Serialize = %q, want no trailing newline", got)
	}
}

func TestSerializeQuotesSpecialCells(t *testing.T) {
	grid := &Grid{
		Delimiter: ',',
		Columns: []Column{
			{Key: RowNumKey, Title: RowNumTitle},
			{Key: "col_0", Title: "v"},
		},
		Rows: []Row{
			{RowNumKey: "1", "col_0": "a,b"},
			{RowNumKey: "2", "col_0": `say "hi"`},
			{RowNumKey: "3", "col_0": "two\nlines"},
			{RowNumKey: "4", "col_0": "plain"},
		},
	}

	got := Serialize(grid)
	want := "\"v\"\n\"a,b\"\n\"say \"\"hi\"\"\"\n\"two\nlines\"\nplain"
	if got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
}

func TestSerializeExcludesRowNumColumn(t *testing.T) {
	grid, err := Parse("a,b\n1,2")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := Serialize(grid)
	if strings.Contains(got, RowNumTitle) || strings.Contains(got, "rowNum") {
		t.Fatalf("Serialize = %q, row-number column must not appear", got)
	}
}

func TestSerializeHeaderOnlyGrid(t *testing.T) {
	grid, err := Parse("h1;h2")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got, want := Serialize(grid), `"h1","h2"`; got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"comma", "a,b,c\n1,2,3\n4,5,6"},
		{"semicolon", "a;b\nx;y"},
		{"tab", "a\tb\nx\ty"},
		{"pipe", "a|b\nx|y"},
		{"quoted specials", "name,notes\n\"Smith, Jr\",\"said \"\"hi\"\"\"\nplain,\"multi\nline\""},
		{"empty cells", "a,b,c\n,,\n1,,3"},
		{"rival delimiter in cell", "a,b\nx;y,z"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			first, err := Parse(c.text)
			if err != nil {
				t.Fatalf("first Parse failed: %v", err)
			}
			second, err := Parse(Serialize(first))
			if err != nil {
				t.Fatalf("re-Parse failed: %v", err)
			}

			if !reflect.DeepEqual(first.Columns, second.Columns) {
				t.Errorf("columns changed across round trip:\n first: %+v\nsecond: %+v",
					first.Columns, second.Columns)
			}
			if !reflect.DeepEqual(first.Rows, second.Rows) {
				t.Errorf("rows changed across round trip:\n first: %+v\nsecond: %+v",
					first.Rows, second.Rows)
			}

			// Output is always comma-delimited, whatever came in.
			if second.Delimiter != ',' {
				t.Errorf("re-parsed delimiter = %q, want comma", second.Delimiter)
			}
		})
	}
}
