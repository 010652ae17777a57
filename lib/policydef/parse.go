// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

// Package policydef provides parsing and structural validation for
// Tailscale-style policy files. Policy files are authored as HuJSON
// (JSON extended with // line comments, /* block comments */, and
// trailing commas); plain JSON is a valid subset.
//
// The typical flow:
//
//  1. ReadFile or Parse: HuJSON bytes → policy.Document
//  2. ScanRuleLines: HuJSON bytes → rule-index → source-line table
//  3. Validate: structural checks (required fields, list shapes,
//     protocol/port spec syntax)
//  4. graph.Build: validated document → access graph (lib/graph)
//
// Validate is the single gate: graph construction assumes a document
// that passed it.
package policydef

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/tailmap/tailmap/lib/policy"
)

// Parse strips HuJSON comments and trailing commas from data, then
// unmarshals the result into a policy.Document. Rule fields with the
// wrong JSON shape do not fail here — they decode into tagged
// ValueList values and are reported by Validate with rule context.
func Parse(data []byte) (*policy.Document, error) {
	stripped := jsonc.ToJSON(data)

	var document policy.Document
	if err := json.Unmarshal(stripped, &document); err != nil {
		return nil, fmt.Errorf("parsing policy: %w", err)
	}

	return &document, nil
}

// ReadFile reads a HuJSON policy file from disk and parses it into a
// policy.Document. Returns a descriptive error if the file cannot be
// read or the JSON is malformed.
func ReadFile(path string) (*policy.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	document, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return document, nil
}
