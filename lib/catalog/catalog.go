// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog defines the data model shared by the Tessera client
// libraries: assets (content items in a hierarchical catalog), child
// assets (decomposition parts such as CSV rows or PDF pages), and
// fragments (curated key/value data attached to an asset).
//
// The catalog service owns every value in this package. Client code
// reads assets and may ask for a refresh of a container's children,
// but it never mutates them locally; see lib/hierarchy for how child
// sets are kept consistent with the server-declared count.
package catalog

import (
	"sort"

	"github.com/google/uuid"
)

// Asset is a node in the content catalog. An asset either carries its
// own content (a blob path, an external source URL, or inline text)
// or acts as a container for child assets produced by decomposition
// (a CSV decomposed into rows, a PDF into pages).
type Asset struct {
	// ID is the catalog-assigned numeric identifier. Stable for the
	// lifetime of the asset and unique across the catalog.
	ID int64 `json:"id"`

	// UUID is the catalog-assigned globally unique identifier, used
	// when assets are exported or referenced across deployments.
	UUID uuid.UUID `json:"uuid"`

	// Kind tags the content format. See the Kind constants.
	Kind Kind `json:"kind"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// BlobPath locates the asset's binary content on the catalog
	// service, when it has any. Empty for assets whose content is
	// inline text or purely external.
	BlobPath string `json:"blob_path,omitempty"`

	// SourceURL is the external origin of the asset (the web page an
	// article was captured from), when known.
	SourceURL string `json:"source_url,omitempty"`

	// TextContent is inline textual content for kinds that carry it
	// directly (article, text).
	TextContent string `json:"text_content,omitempty"`

	// Metadata holds kind-specific attributes (page count, image
	// dimensions, sender address). The catalog treats it as opaque.
	Metadata map[string]any `json:"metadata,omitempty"`

	// IsContainer reports whether the asset owns a set of child
	// assets. When true, ChildCount is the server-declared size of
	// that set; the realized child set must eventually match it.
	IsContainer bool `json:"is_container"`

	// ChildCount is the server-declared number of children. Only
	// meaningful when IsContainer is true. A transient mismatch
	// between this count and a loaded child set is allowed and
	// triggers reconciliation (lib/hierarchy).
	ChildCount int `json:"child_count"`
}

// ChildAsset is an asset that lives inside a container. PartIndex is
// its zero-based position within the parent (row number for CSV rows,
// page number for PDF pages) and establishes the sibling order.
type ChildAsset struct {
	Asset

	// PartIndex is the zero-based position within the parent.
	PartIndex int `json:"part_index"`
}

// SortChildren sorts children in place into their canonical sibling
// order: PartIndex ascending, ties broken by ID ascending. Every
// consumer-facing child list uses this order; callers never observe
// children in listing-response order.
func SortChildren(children []ChildAsset) {
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].PartIndex != children[j].PartIndex {
			return children[i].PartIndex < children[j].PartIndex
		}
		return children[i].ID < children[j].ID
	})
}
