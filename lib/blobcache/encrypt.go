// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package blobcache

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// keySize is the size in bytes of the disk store encryption key.
const keySize = 32

// encryptedPayloadVersion is the version byte prepended to encrypted
// payload files. Included as additional authenticated data (AAD) in
// the AEAD Seal/Open call, so tampering with the version byte causes
// authentication failure.
const encryptedPayloadVersion byte = 0x01

// encryptedPayloadOverhead is the total byte overhead per encrypted
// payload file: 1 (version) + 24 (XChaCha20-Poly1305 nonce) + 16
// (Poly1305 tag).
const encryptedPayloadOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoDiskPayload is the "info" parameter to HKDF-SHA256 for the
// disk store key derivation. Changing it invalidates every encrypted
// cache directory.
var hkdfInfoDiskPayload = []byte("tessera.blobcache.disk.v1")

// deriveStoreKey derives the 32-byte disk store encryption key from
// caller-provided input key material. The salt is nil: the IKM is
// expected to already be high-entropy (a deployment token or OS
// keystore secret), so HKDF's extract phase with nil salt
// (HMAC-SHA256 with zero key) is appropriate per RFC 5869.
func deriveStoreKey(inputKeyMaterial []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, inputKeyMaterial, nil, hkdfInfoDiskPayload)
	derived := make([]byte, keySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	return derived, nil
}

// sealPayload encrypts a payload file using XChaCha20-Poly1305 and
// returns the standard on-disk format:
//
//	[Version: 1 byte (0x01)] [Nonce: 24 bytes (random)] [Ciphertext+Tag: N+16 bytes]
//
// The version byte and the blob's path hash are included as AAD. The
// path hash binds the ciphertext to its cache entry, so moving a
// payload file between entries fails authentication instead of
// serving the wrong content.
func sealPayload(plaintext []byte, key []byte, pathHash Hash) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	aad := buildAAD(encryptedPayloadVersion, pathHash)

	output := make([]byte, 1+chacha20poly1305.NonceSizeX, 1+chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	output[0] = encryptedPayloadVersion
	copy(output[1:], nonce[:])

	// Seal appends the ciphertext+tag to output.
	return aead.Seal(output, nonce[:], plaintext, aad), nil
}

// openPayload decrypts a payload file produced by sealPayload. It
// verifies the version byte, extracts the nonce, and authenticates
// the ciphertext against the AAD (version byte + path hash).
func openPayload(encrypted []byte, key []byte, pathHash Hash) ([]byte, error) {
	if len(encrypted) < encryptedPayloadOverhead {
		return nil, fmt.Errorf("encrypted payload is %d bytes, minimum is %d (version + nonce + tag)",
			len(encrypted), encryptedPayloadOverhead)
	}

	version := encrypted[0]
	if version != encryptedPayloadVersion {
		return nil, fmt.Errorf("encrypted payload version %d is not supported (expected %d)",
			version, encryptedPayloadVersion)
	}

	nonce := encrypted[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := encrypted[1+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	aad := buildAAD(version, pathHash)

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("AEAD decryption failed (wrong key, tampered data, or mismatched entry): %w", err)
	}
	return plaintext, nil
}

// buildAAD constructs the additional authenticated data for AEAD
// operations: the version byte followed by the path hash.
func buildAAD(version byte, pathHash Hash) []byte {
	aad := make([]byte, 1+len(pathHash))
	aad[0] = version
	copy(aad[1:], pathHash[:])
	return aad
}
