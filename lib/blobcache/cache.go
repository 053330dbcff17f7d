// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package blobcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc retrieves the raw bytes for a blob path. The catalog
// client provides the production implementation; tests inject
// closures. The function must be safe for concurrent calls with
// distinct paths; the cache guarantees it is never called twice
// concurrently for the same path.
type FetchFunc func(ctx context.Context, path string) ([]byte, error)

// ResolutionError reports a failed blob resolution. It carries the
// offending path and the underlying cause so presentation code can
// build a message without re-deriving either. Failures are never
// cached: a later Resolve for the same path retries the fetch.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving blob %q: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Cache resolves blob paths to handles, fetching each path at most
// once while any number of callers are concurrently interested.
// Resolved handles stay in memory until released; an optional
// DiskStore adds a second level that survives the process.
//
// Mutual exclusion is per path: concurrent resolves for distinct
// paths proceed independently, and no lock is ever held across a
// fetch.
type Cache struct {
	logger   *slog.Logger
	fetch    FetchFunc
	disk     *DiskStore
	compress bool

	group singleflight.Group

	mu         sync.RWMutex
	handles    map[string]*Handle
	generation uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithDiskStore adds a persistent second level. Disk hits perform no
// fetch; successful fetches are written back best-effort.
func WithDiskStore(store *DiskStore) Option {
	return func(c *Cache) { c.disk = store }
}

// WithCompression controls transparent payload compression (default
// on). Turning it off stores every payload verbatim; useful when the
// caller knows the content is all pre-compressed media.
func WithCompression(enabled bool) Option {
	return func(c *Cache) { c.compress = enabled }
}

// New creates a Cache around the injected fetch function. The logger
// and fetch function are required; passing nil is a programming
// error.
func New(logger *slog.Logger, fetch FetchFunc, options ...Option) *Cache {
	if logger == nil {
		panic("blobcache: nil logger")
	}
	if fetch == nil {
		panic("blobcache: nil fetch function")
	}
	cache := &Cache{
		logger:   logger,
		fetch:    fetch,
		compress: true,
		handles:  make(map[string]*Handle),
	}
	for _, option := range options {
		option(cache)
	}
	return cache
}

// Resolve returns the handle for path, fetching it if necessary.
//
// A resolved handle returns immediately with no I/O. If a resolution
// for the same path is already in flight, the caller joins it rather
// than starting a second fetch; every joined caller observes the same
// handle or the same error. The underlying fetch runs detached from
// any single caller's context, so a caller that gives up (its ctx
// done) stops waiting without cancelling the work other callers,
// or the cache itself, still want. The abandoning caller gets a
// ResolutionError wrapping its context error.
//
// Fetch failures are returned as ResolutionError and are not cached;
// the next Resolve for the path retries.
func (c *Cache) Resolve(ctx context.Context, path string) (*Handle, error) {
	c.mu.RLock()
	handle, ok := c.handles[path]
	generation := c.generation
	c.mu.RUnlock()
	if ok {
		return handle, nil
	}

	results := c.group.DoChan(path, func() (any, error) {
		return c.resolveSlow(context.WithoutCancel(ctx), path, generation)
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return nil, &ResolutionError{Path: path, Err: result.Err}
		}
		return result.Val.(*Handle), nil
	case <-ctx.Done():
		return nil, &ResolutionError{Path: path, Err: ctx.Err()}
	}
}

// resolveSlow is the body of a singleflight flight: consult the
// resolved map once more (another flight may have stored between the
// caller's fast-path miss and this flight winning), then the disk
// level, then the network.
func (c *Cache) resolveSlow(ctx context.Context, path string, generation uint64) (*Handle, error) {
	c.mu.RLock()
	handle, ok := c.handles[path]
	c.mu.RUnlock()
	if ok {
		return handle, nil
	}

	if c.disk != nil {
		handle, found, err := c.disk.Get(path)
		if err != nil {
			c.logger.Warn("disk cache read failed", "path", path, "error", err)
		}
		if found {
			c.store(path, handle, generation)
			c.logger.Debug("blob resolved from disk", "path", path, "ref", handle.Ref())
			return handle, nil
		}
	}

	data, err := c.fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	handle = c.buildHandle(path, data)
	c.store(path, handle, generation)

	if c.disk != nil {
		// Best-effort: a full or read-only disk must not fail the
		// resolve that already has the content in hand.
		if err := c.disk.Put(handle); err != nil {
			c.logger.Warn("disk cache write failed", "path", path, "error", err)
		}
	}

	c.logger.Debug("blob resolved",
		"path", path,
		"ref", handle.Ref(),
		"size", handle.Size(),
		"compression", handle.Compression().String(),
	)
	return handle, nil
}

// buildHandle hashes and (when enabled and profitable) compresses a
// fetched payload.
func (c *Cache) buildHandle(path string, data []byte) *Handle {
	payloadHash := HashPayload(data)
	payload := data
	tag := CompressionNone

	if c.compress {
		compressed, selected, err := CompressAuto(data, contentTypeForPath(path))
		if err != nil {
			c.logger.Warn("payload compression failed, caching uncompressed",
				"path", path, "error", err)
		} else {
			payload, tag = compressed, selected
		}
	}

	return newHandle(path, payloadHash, len(data), tag, payload)
}

// store records a resolved handle unless the cache has been torn down
// (ReleaseAll) since the flight began. A stale flight's result is
// still returned to its callers; it just is not kept.
func (c *Cache) store(path string, handle *Handle, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return
	}
	c.handles[path] = handle
}

// Release drops the resolved handle for path. No-op when no handle
// exists; an in-flight resolution is unaffected.
func (c *Cache) Release(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handles, path)
}

// ReleaseAll drops every resolved handle. Runs on the owning view's
// teardown path. Resolutions in flight when ReleaseAll is called
// still complete for their callers but do not repopulate the cache.
func (c *Cache) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.handles)
	c.generation++
}

// Len returns the number of resolved handles currently held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}
