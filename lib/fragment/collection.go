// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package fragment presents an asset's curated key/value entries in
// deterministic orders and forwards deletions to the owning catalog.
//
// A Collection is a snapshot of one asset's fragments. Sorting is
// locale-aware for the alphabetical mode and timestamp-driven for the
// recency mode; display keys strip the catalog's namespace prefixes.
// Deletion removes locally first and forwards second: a remote
// failure leaves the entry removed and surfaces the error, so the
// caller decides whether to Put it back. Rolling back silently would
// mask the failure.
package fragment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tessera-works/tessera/lib/catalog"
)

// Deleter forwards a fragment deletion to the owning catalog. The
// catalog client provides the production implementation.
type Deleter interface {
	DeleteFragment(ctx context.Context, assetID int64, key string) error
}

// SortMode selects the ordering SortedEntries returns.
type SortMode int

const (
	// SortAlphabetical orders by raw key under the collection's
	// collator.
	SortAlphabetical SortMode = iota

	// SortRecency orders by RecordedAt descending. Entries without a
	// timestamp sort after all timestamped entries, keeping their
	// original insertion order among themselves.
	SortRecency
)

func (m SortMode) String() string {
	switch m {
	case SortAlphabetical:
		return "alphabetical"
	case SortRecency:
		return "recency"
	default:
		return fmt.Sprintf("sortmode(%d)", int(m))
	}
}

// displayPrefixes are the namespace prefixes DisplayKey strips,
// ordered longest first so "annotation.field.confidence" loses
// "annotation.field." rather than "annotation.".
var displayPrefixes = []string{
	"annotation.field.",
	"annotation.",
	"fragment.",
	"document.",
	"asset.",
}

// DisplayKey strips the first matching namespace prefix from a
// fragment key. At most one prefix is removed; keys outside the known
// namespaces come back unchanged.
func DisplayKey(key string) string {
	for _, prefix := range displayPrefixes {
		if rest, found := strings.CutPrefix(key, prefix); found {
			return rest
		}
	}
	return key
}

// Collection holds one asset's fragments. Safe for concurrent use.
type Collection struct {
	assetID int64
	remote  Deleter

	mu       sync.Mutex
	entries  []catalog.Fragment
	collator *collate.Collator
}

// Option configures a Collection.
type Option func(*Collection)

// WithLocale sets the locale for alphabetical ordering. The default
// is root collation, which gives a stable language-neutral order.
func WithLocale(tag language.Tag) Option {
	return func(c *Collection) { c.collator = collate.New(tag) }
}

// NewCollection snapshots an asset's fragments. The entry order given
// here is the stable fallback order for untimestamped entries in
// recency mode. The remote deleter may be nil for read-only use;
// Delete then fails with an error rather than silently dropping the
// forward.
func NewCollection(assetID int64, entries []catalog.Fragment, remote Deleter, options ...Option) *Collection {
	collection := &Collection{
		assetID:  assetID,
		remote:   remote,
		entries:  make([]catalog.Fragment, len(entries)),
		collator: collate.New(language.Und),
	}
	copy(collection.entries, entries)
	for _, option := range options {
		option(collection)
	}
	return collection
}

// AssetID returns the owning asset's id.
func (c *Collection) AssetID() int64 { return c.assetID }

// Len returns the number of entries currently held.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns the entry for a key.
func (c *Collection) Get(key string) (catalog.Fragment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.entries {
		if entry.Key == key {
			return entry, true
		}
	}
	return catalog.Fragment{}, false
}

// SortedEntries returns the entries in the requested order. The
// returned slice is a copy.
func (c *Collection) SortedEntries(mode SortMode) []catalog.Fragment {
	c.mu.Lock()
	sorted := make([]catalog.Fragment, len(c.entries))
	copy(sorted, c.entries)
	collator := c.collator
	c.mu.Unlock()

	switch mode {
	case SortRecency:
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].RecordedAt, sorted[j].RecordedAt
			if a.IsZero() != b.IsZero() {
				// Timestamped entries come before untimestamped
				// ones; stability keeps insertion order among the
				// untimestamped.
				return !a.IsZero()
			}
			return a.After(b)
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return collator.CompareString(sorted[i].Key, sorted[j].Key) < 0
		})
	}
	return sorted
}

// Delete removes the entry for key locally and forwards the deletion
// to the remote catalog. The local removal is provisional: a remote
// failure returns the error with the entry still removed, and the
// caller may Put it back. Deleting an absent key is a no-op that
// still forwards, so a locally-stale view cannot shadow a remote
// entry.
func (c *Collection) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	for i, entry := range c.entries {
		if entry.Key == key {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if c.remote == nil {
		return fmt.Errorf("deleting fragment %q: collection has no remote", key)
	}
	if err := c.remote.DeleteFragment(ctx, c.assetID, key); err != nil {
		return fmt.Errorf("deleting fragment %q: %w", key, err)
	}
	return nil
}

// Put inserts an entry, replacing any existing entry with the same
// key. A replaced entry keeps its original position; a new entry
// appends, which also defines its stable position in untimestamped
// recency ordering.
func (c *Collection) Put(f catalog.Fragment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, entry := range c.entries {
		if entry.Key == f.Key {
			c.entries[i] = f
			return
		}
	}
	c.entries = append(c.entries, f)
}
