// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy defines the in-memory representation of a parsed
// Tailscale-style network access policy: groups, hosts, tag owners,
// legacy ACL rules, and modern grant rules.
//
// The types here are validated storage with lookup helpers and no
// graph logic. Parsing from HuJSON bytes and structural validation
// live in lib/policydef; graph derivation lives in lib/graph.
package policy
