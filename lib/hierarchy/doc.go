// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package hierarchy keeps a parent asset's materialized children
// consistent with the catalog's declared child count.
//
// Each Store owns one parent. Children load lazily through an
// injected listing function, and the loaded set is only ever replaced
// as a whole (sorted by part index, then id), so consumers never see
// a half-updated list. A listing failure preserves the previous good
// set; the caller decides when to retry.
//
// The one piece of liveness logic lives in ObserveDeclaredCount: when
// a fresh parent snapshot declares a child count different from the
// last observation, the store re-lists automatically. Changes that
// arrive while a load is in flight coalesce into a single follow-up
// load, and repeated observations of the same count never re-trigger,
// so a count the listing persistently disagrees with cannot cause a
// reload loop.
//
// Manager maps parent ids to stores for callers that display many
// containers at once, and routes refreshed asset snapshots to the
// right store.
//
// Thread safety: all exported methods on Store and Manager are safe
// for concurrent use. Listing calls always run outside the locks.
package hierarchy
