// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package policydef

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/jsonc"

	"github.com/tailmap/tailmap/lib/policy"
)

// ScanRuleLines scans raw HuJSON policy bytes and returns the 1-based
// source line of each rule object in the "acls" and "grants" arrays.
// jsonc.ToJSON replaces comments and trailing commas with spaces
// without changing the input length, so line numbers computed on the
// stripped bytes refer to the original file.
//
// The scan is best-effort: on malformed input it returns whatever was
// recorded before the error. Callers pass the result to the graph
// builder for tooltip traceability; a missing or short table simply
// drops the "(Ln N)" annotations.
func ScanRuleLines(data []byte) *policy.RuleLineNumbers {
	stripped := jsonc.ToJSON(data)
	lines := &policy.RuleLineNumbers{}

	decoder := json.NewDecoder(bytes.NewReader(stripped))

	token, err := decoder.Token()
	if err != nil || token != json.Delim('{') {
		return lines
	}

	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return lines
		}
		key, _ := keyToken.(string)

		switch key {
		case "acls":
			lines.ACLs = scanRuleArray(decoder, stripped)
		case "grants":
			lines.Grants = scanRuleArray(decoder, stripped)
		default:
			if !skipValue(decoder) {
				return lines
			}
		}
	}

	return lines
}

// scanRuleArray records the source line of each element of the JSON
// array the decoder is positioned at, then consumes the array.
func scanRuleArray(decoder *json.Decoder, stripped []byte) []int {
	token, err := decoder.Token()
	if err != nil || token != json.Delim('[') {
		return nil
	}

	var result []int
	for decoder.More() {
		// InputOffset points just past the previous token; advance
		// over whitespace and the element separator to find where
		// the value itself starts.
		start := decoder.InputOffset()
		for start < int64(len(stripped)) && isSeparator(stripped[start]) {
			start++
		}
		result = append(result, 1+bytes.Count(stripped[:start], []byte{'\n'}))

		if !skipValue(decoder) {
			return result
		}
	}

	// Consume the closing ']'.
	decoder.Token()
	return result
}

// skipValue consumes one complete JSON value (scalar, object, or
// array) from the decoder. Returns false on decode error.
func skipValue(decoder *json.Decoder) bool {
	token, err := decoder.Token()
	if err != nil {
		return false
	}
	delim, ok := token.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return true
	}

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return false
		}
		if d, ok := token.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return true
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', ',':
		return true
	}
	return false
}
