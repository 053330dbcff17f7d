// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleRecord is a representative on-disk record using cbor struct
// tags (the convention for purely-internal types).
type sampleRecord struct {
	Path        string `cbor:"path"`
	Size        int64  `cbor:"size"`
	Compression uint8  `cbor:"compression,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Path:        "assets/7f/report.csv",
		Size:        48213,
		Compression: 2,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	record := sampleRecord{Path: "a/b", Size: 7}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("deterministic encoding produced different bytes for the same value")
	}
}

func TestUnmarshalAnyMapType(t *testing.T) {
	// Decoding into any must produce map[string]any, not the CBOR
	// default map[interface{}]interface{}, or metadata values become
	// unusable by the rest of the codebase.
	data, err := Marshal(map[string]any{"pages": 12})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded.(map[string]any); !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	// Old binaries must read records written by newer ones.
	data, err := Marshal(map[string]any{
		"path":        "a/b",
		"size":        int64(3),
		"brand_new":   true,
		"compression": uint8(1),
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Path != "a/b" || decoded.Size != 3 {
		t.Errorf("decoded = %+v, want path a/b size 3", decoded)
	}
}
