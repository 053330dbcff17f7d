// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package blobcache

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tessera-works/tessera/lib/clock"
	"github.com/tessera-works/tessera/lib/codec"
)

// diskRecord is the CBOR sidecar written next to each stored payload.
// It carries everything needed to rebuild a Handle without touching
// the network, plus the integrity hash the payload is verified
// against on read.
type diskRecord struct {
	Path           string `cbor:"path"`
	PayloadHash    Hash   `cbor:"payload_hash"`
	Size           int64  `cbor:"size"`
	CompressedSize int64  `cbor:"compressed_size"`
	Compression    uint8  `cbor:"compression"`
	Encrypted      bool   `cbor:"encrypted,omitempty"`
	CreatedAt      int64  `cbor:"created_at"`
}

// DiskStore persists resolved blobs under a root directory so a
// restarted process can skip refetching. Layout is two-level
// fan-out by the hex of the path hash, one record file and one
// payload file per blob:
//
//	<root>/ab/cd/abcd1234....cbor
//	<root>/ab/cd/abcd1234....blob
//
// Writes go through a temp file and rename, so a crash mid-write
// leaves at worst an orphaned temp file, never a truncated record.
// When an encryption key is configured the payload file is sealed
// with the path hash bound in as associated data; a record copied
// between slots fails to open.
type DiskStore struct {
	logger *slog.Logger
	root   string
	key    []byte
	clock  clock.Clock
}

// DiskOption configures a DiskStore.
type DiskOption func(*DiskStore)

// WithEncryptionKey enables at-rest encryption of payload files. The
// input keying material is stretched into the store key; it does not
// need to be uniform.
func WithEncryptionKey(ikm []byte) DiskOption {
	return func(s *DiskStore) { s.key = ikm }
}

// WithDiskClock substitutes the clock used for record timestamps and
// prune scheduling. Tests pass a fake.
func WithDiskClock(c clock.Clock) DiskOption {
	return func(s *DiskStore) { s.clock = c }
}

// NewDiskStore opens (creating if needed) a disk cache rooted at
// root.
func NewDiskStore(logger *slog.Logger, root string, options ...DiskOption) (*DiskStore, error) {
	if logger == nil {
		panic("blobcache: nil logger")
	}
	store := &DiskStore{
		logger: logger,
		root:   root,
		clock:  clock.Real(),
	}
	for _, option := range options {
		option(store)
	}
	if store.key != nil {
		derived, err := deriveStoreKey(store.key)
		if err != nil {
			return nil, fmt.Errorf("deriving store key: %w", err)
		}
		store.key = derived
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return store, nil
}

const (
	recordSuffix  = ".cbor"
	payloadSuffix = ".blob"
)

// slotPaths returns the record and payload file paths for a blob
// path. Both live in the same fan-out directory keyed by the path
// hash, so lookups never scan.
func (s *DiskStore) slotPaths(blobPath string) (recordPath, payloadPath string) {
	name := FormatHash(HashPath(blobPath))
	dir := filepath.Join(s.root, name[:2], name[2:4])
	return filepath.Join(dir, name+recordSuffix), filepath.Join(dir, name+payloadSuffix)
}

// Put writes the handle's payload and record to disk, replacing any
// previous entry for the same path.
func (s *DiskStore) Put(handle *Handle) error {
	recordPath, payloadPath := s.slotPaths(handle.Path())

	pathHash := HashPath(handle.Path())
	payload := handle.payload
	encrypted := false
	if s.key != nil {
		sealed, err := sealPayload(payload, s.key, pathHash)
		if err != nil {
			return fmt.Errorf("sealing payload: %w", err)
		}
		payload = sealed
		encrypted = true
	}

	record := diskRecord{
		Path:           handle.Path(),
		PayloadHash:    handle.PayloadHash(),
		Size:           int64(handle.Size()),
		CompressedSize: int64(len(handle.payload)),
		Compression:    uint8(handle.Compression()),
		Encrypted:      encrypted,
		CreatedAt:      s.clock.Now().Unix(),
	}
	encoded, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding cache record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(recordPath), 0o700); err != nil {
		return fmt.Errorf("creating cache subdirectory: %w", err)
	}
	if err := s.writeAtomic(payloadPath, payload); err != nil {
		return fmt.Errorf("writing payload file: %w", err)
	}
	if err := s.writeAtomic(recordPath, encoded); err != nil {
		return fmt.Errorf("writing record file: %w", err)
	}
	return nil
}

// writeAtomic writes data to path via a temp file in the store root
// plus rename, so readers never observe a partial file.
func (s *DiskStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, "blob-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	success = true
	return nil
}

// Get looks up a stored blob. A missing entry is (nil, false, nil); a
// corrupt or unverifiable entry is removed and reported as a miss so
// the caller falls through to a fresh fetch.
func (s *DiskStore) Get(blobPath string) (*Handle, bool, error) {
	recordPath, payloadPath := s.slotPaths(blobPath)

	encoded, err := os.ReadFile(recordPath)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache record: %w", err)
	}
	var record diskRecord
	if err := codec.Unmarshal(encoded, &record); err != nil {
		s.evictCorrupt(blobPath, recordPath, payloadPath, fmt.Errorf("decoding cache record: %w", err))
		return nil, false, nil
	}
	if record.Path != blobPath {
		s.evictCorrupt(blobPath, recordPath, payloadPath, fmt.Errorf("record path mismatch: stored %q", record.Path))
		return nil, false, nil
	}

	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		s.evictCorrupt(blobPath, recordPath, payloadPath, fmt.Errorf("reading payload file: %w", err))
		return nil, false, nil
	}

	pathHash := HashPath(blobPath)
	if record.Encrypted {
		if s.key == nil {
			s.evictCorrupt(blobPath, recordPath, payloadPath, fmt.Errorf("entry is encrypted but no key is configured"))
			return nil, false, nil
		}
		opened, err := openPayload(payload, s.key, pathHash)
		if err != nil {
			s.evictCorrupt(blobPath, recordPath, payloadPath, fmt.Errorf("opening sealed payload: %w", err))
			return nil, false, nil
		}
		payload = opened
	}

	if int64(len(payload)) != record.CompressedSize {
		s.evictCorrupt(blobPath, recordPath, payloadPath,
			fmt.Errorf("payload size mismatch: have %d, record says %d", len(payload), record.CompressedSize))
		return nil, false, nil
	}

	tag := CompressionTag(record.Compression)
	if !record.Encrypted {
		// Sealed payloads are authenticated by the AEAD; plaintext
		// ones get an explicit hash check against the record.
		plain := payload
		if tag != CompressionNone {
			plain, err = Decompress(payload, tag, int(record.Size))
			if err != nil {
				s.evictCorrupt(blobPath, recordPath, payloadPath, fmt.Errorf("decompressing payload: %w", err))
				return nil, false, nil
			}
		}
		if HashPayload(plain) != record.PayloadHash {
			s.evictCorrupt(blobPath, recordPath, payloadPath, fmt.Errorf("payload hash mismatch"))
			return nil, false, nil
		}
	}

	handle := newHandle(blobPath, record.PayloadHash, int(record.Size), tag, payload)
	return handle, true, nil
}

// evictCorrupt removes a broken entry so it cannot shadow a good
// refetch, logging what was wrong with it.
func (s *DiskStore) evictCorrupt(blobPath, recordPath, payloadPath string, cause error) {
	s.logger.Warn("evicting corrupt disk cache entry", "path", blobPath, "error", cause)
	os.Remove(recordPath)
	os.Remove(payloadPath)
}

// Remove deletes the stored entry for a blob path. Removing an entry
// that does not exist is not an error.
func (s *DiskStore) Remove(blobPath string) error {
	recordPath, payloadPath := s.slotPaths(blobPath)
	if err := os.Remove(recordPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing record file: %w", err)
	}
	if err := os.Remove(payloadPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing payload file: %w", err)
	}
	return nil
}

// Prune removes every entry older than maxAge, returning how many
// were removed. Orphaned temp files from interrupted writes are
// cleaned up on the way through.
func (s *DiskStore) Prune(maxAge time.Duration) (int, error) {
	cutoff := s.clock.Now().Add(-maxAge).Unix()
	removed := 0

	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".tmp") {
			os.Remove(path)
			return nil
		}
		if !strings.HasSuffix(name, recordSuffix) {
			return nil
		}

		encoded, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading cache record: %w", err)
		}
		var record diskRecord
		if err := codec.Unmarshal(encoded, &record); err != nil {
			// Unreadable records are stale by definition.
			os.Remove(path)
			os.Remove(strings.TrimSuffix(path, recordSuffix) + payloadSuffix)
			removed++
			return nil
		}
		if record.CreatedAt >= cutoff {
			return nil
		}
		if err := s.Remove(record.Path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("walking cache directory: %w", err)
	}
	return removed, nil
}

// PruneLoop prunes on a fixed interval until the context is
// cancelled. Intended to be run in its own goroutine alongside a
// long-lived Cache.
func (s *DiskStore) PruneLoop(ctx context.Context, interval, maxAge time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(interval):
		}
		removed, err := s.Prune(maxAge)
		if err != nil {
			s.logger.Warn("disk cache prune failed", "error", err)
			continue
		}
		if removed > 0 {
			s.logger.Info("pruned disk cache", "removed", removed)
		}
	}
}
