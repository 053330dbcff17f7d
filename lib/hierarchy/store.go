// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tessera-works/tessera/lib/catalog"
)

// ListFunc fetches the current children of a parent asset from the
// catalog. The catalog client provides the production implementation;
// tests inject closures.
type ListFunc func(ctx context.Context, parentID int64) ([]catalog.ChildAsset, error)

// State describes where a store is in its loading lifecycle.
type State int

const (
	// StateEmpty is the initial state: no load has been attempted.
	StateEmpty State = iota

	// StateLoading means a child listing is in flight.
	StateLoading

	// StateLoaded means the children reflect a successful listing.
	StateLoaded

	// StateError means the most recent listing failed. Previously
	// loaded children remain available until a later load succeeds.
	StateError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ListingError reports a failed child listing, carrying the parent
// asset id and the underlying cause.
type ListingError struct {
	ParentID int64
	Err      error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing children of asset %d: %v", e.ParentID, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// pendingLoad is one in-flight child listing. Callers wait on done;
// the load goroutine fills children or err before closing it.
type pendingLoad struct {
	done     chan struct{}
	children []catalog.ChildAsset
	err      error
}

// Store owns one parent asset's child set. It loads children on
// demand, replaces them only as a whole sorted set, keeps the last
// successfully loaded set through transient failures, and reconciles
// automatically when the server-declared child count moves away from
// the last observation.
//
// All methods are safe for concurrent use. The mutex guards only
// state transitions; the listing call itself always runs outside it.
type Store struct {
	logger *slog.Logger
	list   ListFunc
	parent catalog.Asset

	mu            sync.Mutex
	state         State
	children      []catalog.ChildAsset // last known good, sorted
	lastErr       error
	declaredCount int
	pending       *pendingLoad
	reloadQueued  bool
}

// NewStore creates a store for one parent asset. The parent snapshot
// seeds the declared-count baseline: a later observation equal to the
// snapshot's ChildCount does not trigger reconciliation. The logger
// and list function are required; passing nil is a programming error.
func NewStore(logger *slog.Logger, parent catalog.Asset, list ListFunc) *Store {
	if logger == nil {
		panic("hierarchy: nil logger")
	}
	if list == nil {
		panic("hierarchy: nil list function")
	}
	return &Store{
		logger:        logger,
		list:          list,
		parent:        parent,
		declaredCount: parent.ChildCount,
	}
}

// Parent returns the parent asset snapshot the store was created
// with.
func (s *Store) Parent() catalog.Asset { return s.parent }

// LoadChildren fetches the parent's children, replacing the held set
// on success. If a listing is already in flight the caller joins it
// rather than starting a second fetch; every joined caller observes
// the same outcome. The listing runs detached from any one caller's
// context, so a caller that gives up stops waiting without cancelling
// work the store still wants; the abandoning caller gets a
// ListingError wrapping its context error.
//
// On failure the previous children survive (see Children) and no
// automatic retry happens; call LoadChildren again to retry.
func (s *Store) LoadChildren(ctx context.Context) ([]catalog.ChildAsset, error) {
	s.mu.Lock()
	if s.pending != nil {
		pending := s.pending
		s.mu.Unlock()
		return s.await(ctx, pending)
	}
	pending := &pendingLoad{done: make(chan struct{})}
	s.pending = pending
	s.state = StateLoading
	s.mu.Unlock()

	go s.runLoad(context.WithoutCancel(ctx), pending)

	return s.await(ctx, pending)
}

// await blocks until the given load completes or the caller's context
// ends, whichever comes first.
func (s *Store) await(ctx context.Context, pending *pendingLoad) ([]catalog.ChildAsset, error) {
	select {
	case <-pending.done:
		if pending.err != nil {
			return nil, pending.err
		}
		return slices.Clone(pending.children), nil
	case <-ctx.Done():
		return nil, &ListingError{ParentID: s.parent.ID, Err: ctx.Err()}
	}
}

// runLoad executes one listing plus any reconciliation that was
// queued while it ran. Queued reconciliations coalesce: no matter how
// many count changes arrive during a load, exactly one follow-up
// listing runs after it.
func (s *Store) runLoad(ctx context.Context, pending *pendingLoad) {
	for {
		children, err := s.list(ctx, s.parent.ID)

		s.mu.Lock()
		if err != nil {
			listingErr := &ListingError{ParentID: s.parent.ID, Err: err}
			s.state = StateError
			s.lastErr = listingErr
			pending.err = listingErr
			s.logger.Warn("child listing failed",
				"parent_id", s.parent.ID, "error", err)
		} else {
			sorted := slices.Clone(children)
			catalog.SortChildren(sorted)
			s.children = sorted
			s.state = StateLoaded
			s.lastErr = nil
			pending.children = sorted
			s.logger.Debug("children loaded",
				"parent_id", s.parent.ID, "count", len(sorted))
		}
		s.pending = nil
		close(pending.done)

		if !s.reloadQueued {
			s.mu.Unlock()
			return
		}
		s.reloadQueued = false
		pending = &pendingLoad{done: make(chan struct{})}
		s.pending = pending
		s.state = StateLoading
		s.mu.Unlock()

		s.logger.Debug("running queued reconciliation", "parent_id", s.parent.ID)
	}
}

// ObserveDeclaredCount records the server-declared child count from a
// fresh parent snapshot. A change relative to the previous
// observation triggers reconciliation:
//
//   - StateLoaded: one re-load starts immediately, detached from the
//     observer's context.
//   - StateLoading: the change is folded into a single follow-up load
//     that runs when the current one finishes.
//   - StateEmpty, StateError: the count is recorded but nothing
//     loads; the next LoadChildren fetches fresh data anyway.
//
// Repeat observations of the same count never re-trigger, so a
// listing that persistently disagrees with the declared count does
// not loop.
func (s *Store) ObserveDeclaredCount(ctx context.Context, count int) {
	s.mu.Lock()
	if count == s.declaredCount {
		s.mu.Unlock()
		return
	}
	previous := s.declaredCount
	s.declaredCount = count

	switch s.state {
	case StateLoading:
		s.reloadQueued = true
		s.mu.Unlock()
	case StateLoaded:
		pending := &pendingLoad{done: make(chan struct{})}
		s.pending = pending
		s.state = StateLoading
		s.mu.Unlock()
		s.logger.Debug("declared count changed, reconciling",
			"parent_id", s.parent.ID, "previous", previous, "count", count)
		go s.runLoad(context.WithoutCancel(ctx), pending)
	default:
		s.mu.Unlock()
	}
}

// Children returns the last successfully loaded child set, sorted by
// part index then id. The slice is a copy; callers may keep or mutate
// it. During StateError this still returns the previous good set.
func (s *Store) Children() []catalog.ChildAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.children)
}

// State returns the store's current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the most recent listing error, or nil when the store is
// not in StateError.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateError {
		return nil
	}
	return s.lastErr
}

// DeclaredCount returns the most recently observed server-declared
// child count.
func (s *Store) DeclaredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.declaredCount
}
