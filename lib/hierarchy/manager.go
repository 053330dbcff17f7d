// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package hierarchy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tessera-works/tessera/lib/catalog"
)

// Manager owns the per-parent stores for one catalog session. Views
// ask it for the store of the container they display; snapshot
// refresh loops feed it fresh assets so declared-count changes reach
// the right store.
//
// Thread-safe: Store and ObserveAsset are called from view
// goroutines and the refresh loop concurrently.
type Manager struct {
	mu     sync.RWMutex
	logger *slog.Logger
	list   ListFunc
	stores map[int64]*Store
}

// NewManager creates a manager whose stores all share the given list
// function.
func NewManager(logger *slog.Logger, list ListFunc) *Manager {
	if logger == nil {
		panic("hierarchy: nil logger")
	}
	if list == nil {
		panic("hierarchy: nil list function")
	}
	return &Manager{
		logger: logger,
		list:   list,
		stores: make(map[int64]*Store),
	}
}

// Store returns the store for a parent asset, creating one on first
// use. Repeat calls with the same parent id return the same store
// regardless of snapshot differences; count changes flow through
// ObserveAsset, not through re-creation.
func (m *Manager) Store(parent catalog.Asset) *Store {
	m.mu.RLock()
	store, ok := m.stores[parent.ID]
	m.mu.RUnlock()
	if ok {
		return store
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if store, ok := m.stores[parent.ID]; ok {
		return store
	}
	store = NewStore(m.logger, parent, m.list)
	m.stores[parent.ID] = store
	m.logger.Debug("hierarchy store created", "parent_id", parent.ID)
	return store
}

// ObserveAsset routes a fresh asset snapshot to the matching store's
// ObserveDeclaredCount. Assets without a store are ignored: nobody is
// watching their children, so there is nothing to reconcile.
func (m *Manager) ObserveAsset(ctx context.Context, asset catalog.Asset) {
	m.mu.RLock()
	store, ok := m.stores[asset.ID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	store.ObserveDeclaredCount(ctx, asset.ChildCount)
}

// Drop removes the store for a parent id, releasing its children.
// Dropping an unknown id is a no-op. A load in flight on the dropped
// store still completes for its callers; the store is simply no
// longer reachable through the manager.
func (m *Manager) Drop(parentID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, parentID)
}

// Len returns the number of stores currently held.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores)
}
