// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

// NodeMetadata is the searchable record for one base node identifier.
// It accumulates across every rule that references the node — directly
// or through a protocol-enhanced destination variant sharing the same
// base. The accumulator lists keep duplicates; consumers deduplicate
// at read time (see Dedupe), which keeps phase 1 purely additive.
type NodeMetadata struct {
	// RuleType is ACL, Grant, or Mixed once the node has been seen
	// under both dialects.
	RuleType RuleType `json:"rule_type"`

	// SrcRules and DstRules hold human-readable rule references
	// ("ACL rule 1", "Grant rule 2 (Ln 45)") for each rule that
	// listed the node in the corresponding role.
	SrcRules []string `json:"src_rules,omitempty"`
	DstRules []string `json:"dst_rules,omitempty"`

	// Protocols, Via, and Apps accumulate the referencing grants'
	// ip, via, and normalized app fields (plus the legacy ACL proto
	// field for Protocols).
	Protocols []string `json:"protocols,omitempty"`
	Via       []string `json:"via,omitempty"`
	Apps      []string `json:"apps,omitempty"`

	// Posture accumulates posture checks by role: srcPosture from
	// rules where the node is a source, dstPosture where it is a
	// destination.
	Posture []string `json:"posture,omitempty"`

	// Members is the group member list when the base identifier is a
	// defined group, else empty.
	Members []string `json:"members,omitempty"`
}

// EdgeMetadata records the provenance of a directed edge for the
// search index. When multiple rules collapse onto one edge, the first
// rule to produce the pair owns this record (first-writer-wins);
// later rules still contribute to the node-level accumulators.
type EdgeMetadata struct {
	// RuleType is the dialect of the owning rule.
	RuleType RuleType `json:"rule_type"`

	// RuleIndex is the owning rule's 1-based index within its dialect.
	RuleIndex int `json:"rule_index"`

	// Action is the ACL action string; empty for grant-owned edges.
	Action string `json:"action,omitempty"`

	// Protocols, Via, Posture, and Apps mirror the owning rule's
	// fields (grant ip/via/posture/app, or the legacy ACL proto).
	Protocols []string `json:"protocols,omitempty"`
	Via       []string `json:"via,omitempty"`
	Posture   []string `json:"posture,omitempty"`
	Apps      []string `json:"apps,omitempty"`
}

// SearchIndex is the per-node and per-edge metadata exposed to the
// rendering layer's client-side search. Nodes are keyed by base
// identifier; edges by "src->dst" of the (possibly enhanced) pair.
type SearchIndex struct {
	Nodes map[string]*NodeMetadata `json:"nodes"`
	Edges map[string]*EdgeMetadata `json:"edges"`
}

// Dedupe returns values with duplicates removed, preserving first
// appearance order. Metadata accumulators are append-only during the
// build; rendering and search consumers deduplicate through this.
func Dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		result = append(result, value)
	}
	return result
}
