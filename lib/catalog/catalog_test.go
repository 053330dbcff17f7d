// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "testing"

func child(id int64, partIndex int) ChildAsset {
	return ChildAsset{Asset: Asset{ID: id, Kind: KindText}, PartIndex: partIndex}
}

func TestSortChildrenByPartIndex(t *testing.T) {
	children := []ChildAsset{child(1, 2), child(2, 0), child(3, 1)}
	SortChildren(children)

	for i, want := range []int{0, 1, 2} {
		if children[i].PartIndex != want {
			t.Fatalf("children[%d].PartIndex = %d, want %d", i, children[i].PartIndex, want)
		}
	}
}

func TestSortChildrenTieBreaksByID(t *testing.T) {
	// Duplicate part indexes can appear while the server re-indexes a
	// container; the ID tiebreak keeps the order deterministic.
	children := []ChildAsset{child(9, 0), child(3, 0), child(7, 0)}
	SortChildren(children)

	for i, want := range []int64{3, 7, 9} {
		if children[i].ID != want {
			t.Fatalf("children[%d].ID = %d, want %d", i, children[i].ID, want)
		}
	}
}

func TestSortChildrenEmpty(t *testing.T) {
	SortChildren(nil)
	SortChildren([]ChildAsset{})
}

func TestKindValid(t *testing.T) {
	for _, k := range kinds {
		if !k.Valid() {
			t.Errorf("Kind(%q).Valid() = false, want true", k)
		}
	}
	if Kind("spreadsheet").Valid() {
		t.Error(`Kind("spreadsheet").Valid() = true, want false`)
	}
	if Kind("").Valid() {
		t.Error(`Kind("").Valid() = true, want false`)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("csv")
	if err != nil {
		t.Fatalf("ParseKind(csv) failed: %v", err)
	}
	if k != KindCSV {
		t.Fatalf("ParseKind(csv) = %q, want %q", k, KindCSV)
	}

	if _, err := ParseKind("floppy"); err == nil {
		t.Fatal("ParseKind(floppy) succeeded, want error")
	}
}

func TestKindContentType(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindPDF, "application/pdf"},
		{KindCSV, "text/csv"},
		{KindArticle, "text/html"},
		{Kind("unknown"), "application/octet-stream"},
	}
	for _, c := range cases {
		if got := c.kind.ContentType(); got != c.want {
			t.Errorf("Kind(%q).ContentType() = %q, want %q", c.kind, got, c.want)
		}
	}
}
