// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package flowdef

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	source := []byte(`{
		// Pull the upload, split it, annotate each row.
		"name": "csv-ingest",
		"description": "Ingest and decompose a CSV upload",
		"stages": [
			{"name": "pull", "kind": "ingest"},
			{
				"name": "split",
				"kind": "decompose",
				"needs": ["pull"],
				"params": {
					"delimiter": "auto",
					"header": true, // trailing comma below is JSONC
				},
			},
		],
	}`)

	flow, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if flow.Name != "csv-ingest" {
		t.Errorf("Name = %q", flow.Name)
	}
	if len(flow.Stages) != 2 {
		t.Fatalf("len(Stages) = %d, want 2", len(flow.Stages))
	}
	if flow.Stages[1].Kind != StageDecompose {
		t.Errorf("Stages[1].Kind = %s", flow.Stages[1].Kind)
	}
	if flow.Stages[1].Params["delimiter"] != "auto" {
		t.Errorf("Params[delimiter] = %v", flow.Stages[1].Params["delimiter"])
	}
	if issues := Validate(flow); len(issues) != 0 {
		t.Errorf("valid flow produced issues: %v", issues)
	}
}

func TestParseUnknownField(t *testing.T) {
	t.Parallel()

	// "stagez" is a typo; silently dropping it would ship a flow
	// with no stages.
	_, err := Parse([]byte(`{"name": "f", "stagez": []}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"name": `)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "web-capture.jsonc")
	content := `{
		"name": "web-capture",
		"stages": [
			{"name": "capture", "kind": "ingest"},
		],
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing flow file: %v", err)
	}

	flow, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if flow.Name != "web-capture" {
		t.Errorf("Name = %q", flow.Name)
	}
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNameFromPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want string
	}{
		{"lib/flows/flows/csv-ingest.jsonc", "csv-ingest"},
		{"web-capture.jsonc", "web-capture"},
		{"/abs/path/mbox-digest.json", "mbox-digest"},
		{"no-extension", "no-extension"},
	}
	for _, tc := range cases {
		if got := NameFromPath(tc.path); got != tc.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
