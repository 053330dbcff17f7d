// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "time"

// Fragment is a curated key/value datum attached to an asset,
// typically promoted from the output of an external analysis run.
// The analysis and curation processes create fragments; the client
// reads, sorts, and deletes them (lib/fragment), never edits them.
type Fragment struct {
	// Key is the raw namespaced key ("document.title",
	// "annotation.field.summary"). Display normalization strips the
	// namespace prefix; see lib/fragment.DisplayKey.
	Key string `json:"key"`

	// Value is the curated value, always a string at this layer.
	Value string `json:"value"`

	// RunID identifies the analysis run that produced the value,
	// when the curation step recorded provenance.
	RunID string `json:"run_id,omitempty"`

	// SchemaField references the annotation-schema field the value
	// was promoted from, when applicable.
	SchemaField string `json:"schema_field,omitempty"`

	// RecordedAt is when the fragment was curated. The zero value
	// means the timestamp is unknown; recency ordering places such
	// entries after all timestamped ones.
	RecordedAt time.Time `json:"recorded_at"`
}
