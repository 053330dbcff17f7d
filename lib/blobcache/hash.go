// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package blobcache

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest. Blob paths and payloads hash to
// this size; the path hash keys the disk store layout, the payload
// hash identifies the content a handle carries.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures that the same input bytes produce different
// hashes in different contexts, preventing cross-domain collisions
// (a path whose bytes equal some payload must not share its hash).
type domainKey [32]byte

// Domain separation keys. These are fixed constants; changing them
// invalidates every existing disk cache entry. The byte values are
// the ASCII encoding of the domain name, zero-padded to 32 bytes:
// readable in hex dumps and debuggers without sacrificing any
// cryptographic property (BLAKE3 keyed mode treats the key as an
// opaque 32-byte value).
var (
	pathDomainKey = domainKey{
		't', 'e', 's', 's', 'e', 'r', 'a', '.', 'b', 'l', 'o', 'b', '.',
		'p', 'a', 't', 'h', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	payloadDomainKey = domainKey{
		't', 'e', 's', 's', 'e', 'r', 'a', '.', 'b', 'l', 'o', 'b', '.',
		'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// HashPath computes the path-domain hash of a blob locator. The disk
// store shards its layout by this hash, so lookups never parse or
// sanitize the raw path.
func HashPath(path string) Hash {
	return keyedHash(pathDomainKey, []byte(path))
}

// HashPayload computes the payload-domain hash of raw blob content
// (always the uncompressed bytes, so the identity survives changes to
// the compression choice).
func HashPayload(data []byte) Hash {
	return keyedHash(payloadDomainKey, data)
}

// FormatHash returns the hex-encoded string representation of a hash.
// This is the canonical format used in records, logs, and CLI output.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing blob hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("blob hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// FormatRef returns the short blob reference for a payload hash: the
// "blob-" prefix followed by the first 12 hex characters. Refs appear
// in logs and CLI output where a full hash would drown the line.
func FormatRef(payloadHash Hash) string {
	return "blob-" + hex.EncodeToString(payloadHash[:6])
}

// MarshalText implements encoding.TextMarshaler so hashes serialize
// as canonical hex in CBOR records and JSON output.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(FormatHash(h)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// keyedHash computes BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which domainKey guarantees.
	// The error is only returned for wrong key length, so this cannot
	// fail with our fixed-size type.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("blobcache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
