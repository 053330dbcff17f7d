// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobcache resolves catalog blob paths to local byte
// payloads, fetching each path at most once no matter how many
// concurrent callers want it. The catalog client, asset views, and
// CLI build on it.
//
// The package is organized in layers, each usable independently:
//
//   - Hashing: BLAKE3 with domain-separated keyed mode. Two domains
//     (path, payload) prevent cross-domain collisions. The path hash
//     names the on-disk slot; the payload hash verifies integrity and
//     feeds the short blob- reference shown to users.
//
//   - Cache: The in-memory level. Resolve coalesces concurrent
//     requests for the same path through singleflight, so the fetch
//     function runs once per path while everyone waiting shares the
//     result. Failures propagate to all waiters but are never cached;
//     the next request retries. Handles stay resident until Release
//     or ReleaseAll.
//
//   - Compression: Transparent per-payload compression (none, LZ4,
//     zstd). Payload hashes are computed on uncompressed bytes, so a
//     codec change never invalidates stored integrity data.
//     Content-type heuristics pick the codec; already-compressed
//     media is stored verbatim.
//
//   - DiskStore: An optional persistent second level under a root
//     directory, two-level fan-out by path hash, a CBOR record plus a
//     payload file per blob. Writes are temp-file-and-rename atomic.
//     Corrupt or unverifiable entries are evicted and reported as
//     misses so the caller falls back to a fetch. Prune removes
//     entries past a configured age.
//
//   - Encryption: Optional at-rest sealing of payload files with
//     XChaCha20-Poly1305, the store key derived from caller-supplied
//     keying material via HKDF-SHA256. The path hash is bound in as
//     associated data, so an entry copied between slots fails to
//     open.
//
// The fetch function is injected (see FetchFunc), keeping the package
// free of transport concerns; lib/catalogclient provides the
// production implementation over the catalog HTTP API.
package blobcache
