// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package flows provides the built-in flow definitions shipped with
// the client. Definitions are JSONC files embedded at compile time;
// a fresh deployment publishes them to the catalog so common upload
// kinds (CSV, web page, mbox) process without any authoring.
//
// Each definition carries the SHA-256 digest of its raw source so a
// deployment can detect drift between the published copy and the
// shipped version without being confused by JSON re-serialization.
package flows

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tessera-works/tessera/lib/flowdef"
)

//go:embed flows/*.jsonc
var flowFiles embed.FS

// Flow is an embedded flow definition with its name (derived from the
// filename) and parsed content.
type Flow struct {
	// Name is the flow name, derived from the filename without
	// extension ("csv-ingest" from "csv-ingest.jsonc"). It always
	// matches Definition.Name; Builtin enforces the pairing.
	Name string

	// Definition is the parsed flow.
	Definition flowdef.Flow

	// SourceHash is the SHA-256 hex digest of the raw JSONC source
	// file. Comparing hashes detects a modified published copy;
	// comparing re-serialized JSON would false-positive on field
	// ordering and whitespace.
	SourceHash string
}

// Builtin returns all embedded flow definitions, parsed and
// validated. Returns an error if any embedded file fails to parse or
// validate, or if a filename disagrees with the flow's declared name.
// Either indicates a bug in the embedded content, not a runtime
// condition.
func Builtin() ([]Flow, error) {
	entries, err := flowFiles.ReadDir("flows")
	if err != nil {
		return nil, fmt.Errorf("reading embedded flows directory: %w", err)
	}

	var flows []Flow
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".jsonc" {
			continue
		}

		path := "flows/" + entry.Name()
		data, err := flowFiles.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading embedded flow %s: %w", path, err)
		}

		definition, err := flowdef.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded flow %s: %w", path, err)
		}

		issues := flowdef.Validate(definition)
		if len(issues) > 0 {
			return nil, fmt.Errorf("validating embedded flow %s: %s", path, strings.Join(issues, "; "))
		}

		name := flowdef.NameFromPath(entry.Name())
		if definition.Name != name {
			return nil, fmt.Errorf("embedded flow %s declares name %q; filename and name must match",
				path, definition.Name)
		}

		hash := sha256.Sum256(data)

		flows = append(flows, Flow{
			Name:       name,
			Definition: *definition,
			SourceHash: hex.EncodeToString(hash[:]),
		})
	}

	return flows, nil
}
