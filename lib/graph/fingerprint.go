// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// fingerprintDomainKey is the 32-byte BLAKE3 key for graph snapshot
// fingerprints. Domain separation keeps these hashes from colliding
// with any other keyed-hash use. ASCII domain name, zero-padded, so
// the key is inspectable in hex dumps.
var fingerprintDomainKey = [32]byte{
	't', 'a', 'i', 'l', 'm', 'a', 'p', '.', 'g', 'r', 'a', 'p', 'h', '.',
	's', 'n', 'a', 'p', 's', 'h', 'o', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint returns the hex-encoded keyed BLAKE3 digest of the
// graph's deterministic CBOR encoding. Two builds of the same policy
// document produce the same fingerprint; any change to a node, edge,
// or metadata entry changes it. Useful for change detection and for
// asserting build idempotence.
func (g *Graph) Fingerprint() (string, error) {
	encoded, err := g.MarshalCBOR()
	if err != nil {
		return "", fmt.Errorf("encoding graph for fingerprint: %w", err)
	}

	hasher, err := blake3.NewKeyed(fingerprintDomainKey[:])
	if err != nil {
		// NewKeyed only fails on wrong key length, which the fixed
		// array rules out.
		panic("graph: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(encoded)

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
