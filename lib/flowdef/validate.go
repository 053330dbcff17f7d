// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package flowdef

import (
	"fmt"
	"strings"
)

// Validate checks a Flow for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the flow is
// valid.
//
// Structural checks include:
//   - The flow must have a non-empty Name
//   - At least one stage is required
//   - Each stage must have a non-empty Name and a known Kind
//   - Stage names must be unique across the flow
//   - Needs entries must reference stages declared earlier in the
//     flow; forward and self references are rejected so declaration
//     order is a valid execution order
func Validate(flow *Flow) []string {
	var issues []string

	if flow.Name == "" {
		issues = append(issues, "flow has no name (name is required)")
	}
	if len(flow.Stages) == 0 {
		issues = append(issues, "flow has no stages (at least one stage is required)")
	}

	// Stage names must be unique. Duplicates would make Needs edges
	// ambiguous: "needs: [extract]" cannot say which extract.
	stageNames := make(map[string]int, len(flow.Stages))
	for index, stage := range flow.Stages {
		if stage.Name != "" {
			if firstIndex, exists := stageNames[stage.Name]; exists {
				issues = append(issues, fmt.Sprintf(
					"stages[%d] %q: duplicate stage name (first used at stages[%d])",
					index, stage.Name, firstIndex,
				))
			} else {
				stageNames[stage.Name] = index
			}
		}
	}

	// declared holds the names visible to Needs at each point of the
	// declaration order.
	declared := make(map[string]bool, len(flow.Stages))
	for index, stage := range flow.Stages {
		issues = append(issues, validateStage(stage, index, declared)...)
		if stage.Name != "" {
			declared[stage.Name] = true
		}
	}

	return issues
}

// validateStage checks a single stage. declared contains the names of
// stages earlier in the flow.
func validateStage(stage Stage, index int, declared map[string]bool) []string {
	var issues []string

	prefix := fmt.Sprintf("stages[%d]", index)
	if stage.Name == "" {
		issues = append(issues, fmt.Sprintf("%s: name is required", prefix))
	} else {
		prefix = fmt.Sprintf("%s %q", prefix, stage.Name)
	}

	switch {
	case stage.Kind == "":
		issues = append(issues, fmt.Sprintf("%s: kind is required", prefix))
	case !stage.Kind.Valid():
		issues = append(issues, fmt.Sprintf("%s: unknown stage kind %q (valid: %s)",
			prefix, stage.Kind, kindList()))
	}

	for _, need := range stage.Needs {
		switch {
		case need == stage.Name:
			issues = append(issues, fmt.Sprintf("%s: needs itself", prefix))
		case !declared[need]:
			issues = append(issues, fmt.Sprintf(
				"%s: needs %q which is not declared earlier in the flow", prefix, need))
		}
	}

	return issues
}

// kindList renders the valid stage kinds for error messages.
func kindList() string {
	names := make([]string, len(stageKinds))
	for i, kind := range stageKinds {
		names[i] = string(kind)
	}
	return strings.Join(names, ", ")
}
