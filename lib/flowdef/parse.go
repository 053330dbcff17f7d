// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package flowdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Flow. Unknown fields are an error: a
// misspelled key in a flow file would otherwise silently change what
// the processing service runs.
func Parse(data []byte) (*Flow, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()

	var flow Flow
	if err := decoder.Decode(&flow); err != nil {
		return nil, fmt.Errorf("parsing flow: %w", err)
	}
	return &flow, nil
}

// ReadFile reads a JSONC flow file from disk and parses it into a
// Flow. Returns a descriptive error if the file cannot be read or the
// JSON is malformed.
func ReadFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	flow, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flow, nil
}

// NameFromPath extracts a flow name from a file path by stripping the
// directory prefix and the file extension. For example,
// "lib/flows/flows/csv-ingest.jsonc" returns "csv-ingest".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}
