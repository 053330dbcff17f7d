// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Tessera's standard CBOR encoding configuration.
//
// Tessera uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the catalog HTTP API, flow
//     definition files (JSONC), and CLI --json output.
//   - CBOR for local persistence: blob cache records on disk.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
//   - `cbor` tag: the type is only ever serialized as CBOR (cache
//     records).
//   - `json` tag: the type may serve both JSON and CBOR; fxamacker/cbor
//     reads `json` tags as fallback, so one tag controls field naming
//     and omitempty for both formats (catalog model types).
//
// Never use both tags on the same field: the tag choice documents
// whether a type participates in the JSON surfaces.
package codec
