// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "strings"

// Shape is the rendered node shape, encoding which rule dialects
// reference the node.
type Shape string

const (
	// ShapeDot marks nodes referenced only by ACL rules.
	ShapeDot Shape = "dot"

	// ShapeTriangle marks nodes referenced only by grant rules.
	ShapeTriangle Shape = "triangle"

	// ShapeHexagon marks mixed nodes: base identifier referenced by
	// both dialects somewhere in the document. Terminal — assigned in
	// phase 2, never reverted.
	ShapeHexagon Shape = "hexagon"
)

// RuleType is the rule dialect (or mix of dialects) that references a
// node or created an edge.
type RuleType string

const (
	RuleACL   RuleType = "ACL"
	RuleGrant RuleType = "Grant"
	RuleMixed RuleType = "Mixed"
)

// Kind is the closed classification of a node identifier, determined
// once from its prefix at node-creation time.
type Kind int

const (
	// KindHost is any identifier without a recognized prefix: a host
	// name, subnet, email, or wildcard.
	KindHost Kind = iota

	// KindTag is a "tag:" identifier.
	KindTag

	// KindGroup is a "group:" identifier.
	KindGroup

	// KindAutogroup is a built-in dynamic "autogroup:" identifier.
	KindAutogroup
)

// Classify returns the kind of a node identifier.
func Classify(id string) Kind {
	switch {
	case strings.HasPrefix(id, "tag:"):
		return KindTag
	case strings.HasPrefix(id, "group:"):
		return KindGroup
	case strings.HasPrefix(id, "autogroup:"):
		return KindAutogroup
	default:
		return KindHost
	}
}

// Node is a materialized graph node. The ID is the full node identity,
// which for grant destinations may carry a bracketed protocol
// annotation ("server [tcp:443, udp:53]") distinguishing it from the
// bare destination node.
type Node struct {
	ID      string `json:"id"`
	Color   string `json:"color"`
	Shape   Shape  `json:"shape"`
	Tooltip string `json:"tooltip"`
}

// Edge is a directed access path: Src may initiate access to Dst
// under at least one rule. Rule provenance lives in the search index,
// keyed by the same pair.
type Edge struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// EdgeKey returns the search-index key for a directed pair.
func EdgeKey(src, dst string) string {
	return src + "->" + dst
}

// BaseID strips the bracketed protocol annotation from an enhanced
// destination identity, returning the identifier that keys the node's
// metadata. Identifiers without an annotation are returned unchanged
// (an embedded ACL ":port" suffix is part of the base identity, not
// an annotation).
func BaseID(id string) string {
	if strings.HasSuffix(id, "]") {
		if i := strings.LastIndex(id, " ["); i >= 0 {
			return id[:i]
		}
	}
	return id
}
