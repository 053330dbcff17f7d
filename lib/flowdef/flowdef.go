// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package flowdef provides parsing and validation for flow
// definitions. A flow is a declarative description of how the
// processing service turns raw uploads into catalog assets: which
// stages run (ingestion, decomposition, annotation, curation) and
// what each stage depends on.
//
// The client never executes flows. It parses them for display,
// validates them before upload, and ships a set of built-in
// definitions (lib/flows) so a fresh deployment has working defaults.
// Flows are authored on disk as JSONC files (JSON extended with
// comments and trailing commas) and stored by the service as plain
// JSON.
//
// The typical use:
//
//  1. ReadFile or Parse: JSONC bytes → Flow
//  2. Validate: structural checks (stage names, kinds, dependencies)
package flowdef

import "fmt"

// Flow is one named processing flow.
type Flow struct {
	// Name identifies the flow. Catalog ingestion rules select flows
	// by name.
	Name string `json:"name"`

	// Description is optional operator-facing prose.
	Description string `json:"description,omitempty"`

	// Stages run in declaration order, subject to Needs edges.
	Stages []Stage `json:"stages"`
}

// Stage is one step of a flow.
type Stage struct {
	// Name identifies the stage within its flow.
	Name string `json:"name"`

	// Kind selects the stage implementation. See the StageKind
	// constants.
	Kind StageKind `json:"kind"`

	// Params holds kind-specific configuration. The client treats it
	// as opaque; the processing service interprets it.
	Params map[string]any `json:"params,omitempty"`

	// Needs lists stages that must complete before this one runs.
	// Each entry must name a stage declared earlier in the flow.
	Needs []string `json:"needs,omitempty"`
}

// StageKind selects a stage implementation.
type StageKind string

const (
	// StageIngest pulls raw content into the catalog (file upload,
	// web capture, mailbox import).
	StageIngest StageKind = "ingest"

	// StageDecompose splits a container asset into child assets (CSV
	// into rows, PDF into pages).
	StageDecompose StageKind = "decompose"

	// StageAnnotate runs an analysis over assets and records raw
	// results.
	StageAnnotate StageKind = "annotate"

	// StageCurate promotes analysis results into fragments attached
	// to the asset.
	StageCurate StageKind = "curate"
)

// stageKinds lists every valid stage kind. Order matters only for
// help text.
var stageKinds = []StageKind{StageIngest, StageDecompose, StageAnnotate, StageCurate}

// Valid reports whether k is one of the defined stage kinds.
func (k StageKind) Valid() bool {
	for _, known := range stageKinds {
		if k == known {
			return true
		}
	}
	return false
}

// String returns the kind tag as written in flow files.
func (k StageKind) String() string { return string(k) }

// ParseStageKind parses a stage kind from user input (CLI flags).
func ParseStageKind(s string) (StageKind, error) {
	k := StageKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown stage kind: %q", s)
	}
	return k, nil
}
