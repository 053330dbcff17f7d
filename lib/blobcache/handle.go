// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package blobcache

import (
	"bytes"
	"io"
	"mime"
	"path"
	"strings"
)

// Handle is the locally-resolvable reference to fetched blob content.
// Presentation code treats a handle as an opaque source: Ref() gives a
// stable display identity, Bytes() and Open() give the content. The
// payload is held compressed when compression was profitable, so a
// cache full of CSV exports costs a fraction of its logical size.
//
// Handles are immutable after construction and safe to share across
// goroutines.
type Handle struct {
	path        string
	payloadHash Hash
	ref         string
	size        int
	compression CompressionTag
	payload     []byte
}

// newHandle wraps an already-encoded payload. size is the uncompressed
// content length; payload is the stored (possibly compressed) bytes.
func newHandle(blobPath string, payloadHash Hash, size int, compression CompressionTag, payload []byte) *Handle {
	return &Handle{
		path:        blobPath,
		payloadHash: payloadHash,
		ref:         FormatRef(payloadHash),
		size:        size,
		compression: compression,
		payload:     payload,
	}
}

// Path returns the blob locator this handle resolves.
func (h *Handle) Path() string { return h.path }

// Ref returns the short content reference ("blob-" + 12 hex chars),
// stable for identical content across fetches.
func (h *Handle) Ref() string { return h.ref }

// PayloadHash returns the full payload-domain hash of the content.
func (h *Handle) PayloadHash() Hash { return h.payloadHash }

// Size returns the uncompressed content length in bytes.
func (h *Handle) Size() int { return h.size }

// Compression returns how the payload is stored in memory.
func (h *Handle) Compression() CompressionTag { return h.compression }

// Bytes returns the blob content. The returned slice is owned by the
// caller; mutating it does not affect the cache.
func (h *Handle) Bytes() ([]byte, error) {
	if h.compression == CompressionNone {
		return bytes.Clone(h.payload), nil
	}
	return Decompress(h.payload, h.compression, h.size)
}

// Open returns a reader over the blob content. The ReadCloser's Close
// is a no-op; it exists so handles satisfy download-style consumers
// that expect to close their source.
func (h *Handle) Open() (io.ReadCloser, error) {
	data, err := h.Bytes()
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// contentTypeForPath infers a MIME type from the blob path's file
// extension, for compression selection. The charset parameter that
// mime.TypeByExtension appends to text types is stripped so the
// result compares against plain type strings. Unknown extensions
// return "".
func contentTypeForPath(blobPath string) string {
	contentType := mime.TypeByExtension(path.Ext(blobPath))
	if mediaType, _, found := strings.Cut(contentType, ";"); found {
		return strings.TrimSpace(mediaType)
	}
	return contentType
}
