// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

// Package graph derives a directed access graph from a validated
// policy document. Each node is a subject or destination identifier
// with a color (tag/group/host classification), a shape encoding
// which rule dialects reference it (dot: ACL only, triangle: grant
// only, hexagon: both), and a tooltip composed from accumulated rule
// metadata. Each edge means "src may initiate access to dst" under at
// least one rule; edges are deduplicated globally across both
// dialects.
//
// Construction is two-phase. Phase 1 walks ACL rules then grant rules
// in document order, accumulating nodes, edges, and per-node metadata.
// Phase 2 computes the set of base identifiers referenced by both
// dialects, promotes every matching node (including protocol-enhanced
// destination variants) to the hexagon shape, and composes all
// tooltips once from the complete metadata. Nothing is finalized
// mid-stream: a node's dialect mix is a global property of the whole
// rule set.
//
// A Builder is single-use and not safe for concurrent use. The Graph
// it emits is a plain-data snapshot, safe for concurrent reads, and
// serializable for the rendering layer (JSON, deterministic CBOR, or
// zstd-compressed JSON).
package graph
