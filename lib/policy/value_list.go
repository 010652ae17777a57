// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"bytes"
	"encoding/json"
	"sort"
)

// ValueKind describes the wire-level JSON shape a rule field carried.
// Policy files are authored by hand, so rule fields routinely arrive
// with the wrong shape (a bare string where a list is required, a
// mapping for the app field). Decoding records the shape instead of
// failing so the validator can report the violation with the rule's
// index and field name rather than a bare json.UnmarshalTypeError.
type ValueKind int

const (
	// KindAbsent means the field was not present (or was JSON null).
	KindAbsent ValueKind = iota

	// KindList means the field was a JSON array of strings.
	KindList

	// KindString means the field was a single JSON string.
	KindString

	// KindMapping means the field was a JSON object. Values holds the
	// object's keys in sorted order.
	KindMapping

	// KindInvalid means the field had some other shape (number, bool,
	// array of non-strings).
	KindInvalid
)

// String returns the human-readable name of a value kind, used in
// validation error messages.
func (k ValueKind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	default:
		return "invalid"
	}
}

// ValueList is a rule field that is nominally a JSON array of strings
// but is decoded tolerantly so malformed shapes survive to validation.
// After a successful Validate pass, Values holds the normalized string
// list: array elements for KindList, the single string for KindString,
// and sorted object keys for KindMapping (the grant app field's
// capability-identifier → config mapping normalizes to its keys).
type ValueList struct {
	Kind   ValueKind
	Values []string
}

// List returns a ValueList holding the given values with KindList.
// Used by tests and programmatic document construction.
func List(values ...string) ValueList {
	return ValueList{Kind: KindList, Values: values}
}

// Present reports whether the field appeared in the document at all.
func (l ValueList) Present() bool {
	return l.Kind != KindAbsent
}

// UnmarshalJSON decodes any JSON shape into a tagged ValueList. It
// never returns an error: shape violations are recorded in Kind for
// the validator to report with rule context.
func (l *ValueList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		l.Kind = KindInvalid
		return nil
	}

	switch trimmed[0] {
	case '[':
		var values []string
		if err := json.Unmarshal(trimmed, &values); err != nil {
			l.Kind = KindInvalid
			return nil
		}
		l.Kind = KindList
		l.Values = values

	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			l.Kind = KindInvalid
			return nil
		}
		l.Kind = KindString
		l.Values = []string{value}

	case '{':
		var mapping map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &mapping); err != nil {
			l.Kind = KindInvalid
			return nil
		}
		keys := make([]string, 0, len(mapping))
		for key := range mapping {
			keys = append(keys, key)
		}
		// Sorted so that mapping-form fields normalize deterministically.
		sort.Strings(keys)
		l.Kind = KindMapping
		l.Values = keys

	case 'n':
		l.Kind = KindAbsent

	default:
		l.Kind = KindInvalid
	}

	return nil
}

// MarshalJSON re-encodes the normalized value list as a JSON array.
// Round-tripping a document loses the original wire shape (string and
// mapping forms come back as arrays); graph building only ever reads
// the normalized Values.
func (l ValueList) MarshalJSON() ([]byte, error) {
	if l.Kind == KindAbsent {
		return []byte("null"), nil
	}
	if l.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Values)
}
