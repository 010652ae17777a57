// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Format selects the export encoding for a graph snapshot.
type Format string

const (
	// FormatJSON is indented JSON, for embedding in a rendering page
	// or inspecting by hand.
	FormatJSON Format = "json"

	// FormatCBOR is RFC 8949 Core Deterministic Encoding: sorted map
	// keys, smallest integer encoding. The same graph always encodes
	// to identical bytes, which also backs Fingerprint.
	FormatCBOR Format = "cbor"

	// FormatJSONZstd is JSON compressed with zstd, for large graphs
	// shipped to a remote viewer.
	FormatJSONZstd Format = "json-zstd"
)

// ParseFormat parses an export format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatCBOR, FormatJSONZstd:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown export format %q (valid: json, cbor, json-zstd)", name)
	}
}

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2). Same logical graph always produces
// identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("graph: CBOR encoder initialization failed: " + err.Error())
	}
}

// zstdEncoder is reused across exports; zstd.Encoder is safe for
// concurrent use with EncodeAll.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("graph: zstd encoder initialization failed: " + err.Error())
	}
}

// Export writes the graph snapshot to w in the requested format.
func Export(w io.Writer, g *Graph, format Format) error {
	switch format {
	case FormatJSON:
		encoded, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding graph as JSON: %w", err)
		}
		_, err = w.Write(append(encoded, '\n'))
		return err

	case FormatCBOR:
		encoded, err := encMode.Marshal(g)
		if err != nil {
			return fmt.Errorf("encoding graph as CBOR: %w", err)
		}
		_, err = w.Write(encoded)
		return err

	case FormatJSONZstd:
		encoded, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encoding graph as JSON: %w", err)
		}
		_, err = w.Write(zstdEncoder.EncodeAll(encoded, nil))
		return err

	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// MarshalCBOR encodes the graph with the deterministic encoder.
// Exposed for the fingerprint and for callers that embed the graph in
// a larger CBOR structure.
func (g *Graph) MarshalCBOR() ([]byte, error) {
	type plain Graph // avoid recursing into this method
	return encMode.Marshal((*plain)(g))
}
