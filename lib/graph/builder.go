// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"

	"github.com/tailmap/tailmap/lib/mapconfig"
	"github.com/tailmap/tailmap/lib/policy"
)

// Options configures node classification for a build.
type Options struct {
	// CompanyDomain classifies any identifier containing it as
	// group-colored. Substring test, deliberately permissive.
	CompanyDomain string

	// Colors is the node color scheme.
	Colors mapconfig.NodeColors
}

// DefaultOptions returns build options from the default mapconfig,
// including the TS_COMPANY_DOMAIN environment override.
func DefaultOptions() Options {
	cfg := mapconfig.Load()
	return Options{CompanyDomain: cfg.CompanyDomain, Colors: cfg.Colors}
}

// Builder accumulates nodes, edges, and metadata over a policy
// document's rules and emits an immutable Graph snapshot. A Builder
// is single-use and not safe for concurrent use; the build is a pure
// in-memory transform with no I/O.
type Builder struct {
	document *policy.Document
	lines    *policy.RuleLineNumbers
	options  Options

	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]Edge
	edgeOrder []string

	// metadata is keyed by base identifier: enhanced destination
	// variants share their base's record.
	metadata map[string]*NodeMetadata
	edgeMeta map[string]*EdgeMetadata

	// seenACL and seenGrant track base identifiers per dialect for
	// the phase-2 mixed-node intersection.
	seenACL   map[string]bool
	seenGrant map[string]bool
}

// NewBuilder creates a builder for a validated document. lines may be
// nil; tooltips then omit source-line annotations. The document must
// have passed policydef.Validate — the builder trusts field shapes.
func NewBuilder(document *policy.Document, lines *policy.RuleLineNumbers, options Options) *Builder {
	return &Builder{
		document:  document,
		lines:     lines,
		options:   options,
		nodes:     make(map[string]*Node),
		edges:     make(map[string]Edge),
		metadata:  make(map[string]*NodeMetadata),
		edgeMeta:  make(map[string]*EdgeMetadata),
		seenACL:   make(map[string]bool),
		seenGrant: make(map[string]bool),
	}
}

// Build runs both phases and returns the graph snapshot. Rules are
// processed in document order, ACLs before grants, so rule-index
// references in tooltips match the document.
func Build(document *policy.Document, lines *policy.RuleLineNumbers, options Options) *Graph {
	return NewBuilder(document, lines, options).Build()
}

// Build derives the graph. Phase 1 accumulates per rule; phase 2
// promotes mixed nodes and composes every tooltip once from the
// complete metadata.
func (b *Builder) Build() *Graph {
	for i, acl := range b.document.ACLs {
		b.processACL(acl, i+1)
	}
	for i, grant := range b.document.Grants {
		b.processGrant(grant, i+1)
	}

	b.reconcile()

	return b.snapshot()
}

// role distinguishes which side of a rule a node appeared on, which
// decides the reference list and the posture field it receives.
type role int

const (
	roleSource role = iota
	roleDestination
)

// ruleFields carries the accumulator contributions of one rule for
// one role.
type ruleFields struct {
	protocols []string
	via       []string
	posture   []string
	apps      []string
}

func (b *Builder) processACL(acl policy.ACLRule, index int) {
	ref := ruleReference(RuleACL, index, b.lines.ACLLine(index))

	var protocols []string
	if acl.Proto != "" {
		protocols = []string{acl.Proto}
	}
	fields := ruleFields{protocols: protocols}

	srcSet := Dedupe(acl.Src.Values)
	dstSet := Dedupe(acl.Dst.Values)

	for _, src := range srcSet {
		b.touchNode(src, RuleACL, roleSource, ref, fields)
	}
	for _, dst := range dstSet {
		b.touchNode(dst, RuleACL, roleDestination, ref, fields)
	}

	for _, src := range srcSet {
		for _, dst := range dstSet {
			b.addEdge(src, dst, &EdgeMetadata{
				RuleType:  RuleACL,
				RuleIndex: index,
				Action:    acl.Action,
				Protocols: protocols,
			})
		}
	}
}

func (b *Builder) processGrant(grant policy.GrantRule, index int) {
	ref := ruleReference(RuleGrant, index, b.lines.GrantLine(index))

	// A wildcard ip field carries no protocol information: the
	// destination stays bare and the accumulators get nothing.
	restricted := grant.IP.Present() && !isWildcardIP(grant.IP.Values)

	var protocols []string
	if restricted {
		protocols = grant.IP.Values
	}

	srcFields := ruleFields{
		protocols: protocols,
		via:       grant.Via.Values,
		posture:   grant.SrcPosture.Values,
		apps:      grant.App.Values,
	}
	dstFields := ruleFields{
		protocols: protocols,
		via:       grant.Via.Values,
		posture:   grant.DstPosture.Values,
		apps:      grant.App.Values,
	}

	srcSet := Dedupe(grant.Src.Values)
	dstSet := Dedupe(grant.Dst.Values)
	if restricted {
		enhanced := make([]string, len(dstSet))
		for i, dst := range dstSet {
			enhanced[i] = enhanceDestination(dst, grant.IP.Values)
		}
		dstSet = enhanced
	}

	for _, src := range srcSet {
		b.touchNode(src, RuleGrant, roleSource, ref, srcFields)
	}
	for _, dst := range dstSet {
		b.touchNode(dst, RuleGrant, roleDestination, ref, dstFields)
	}

	posture := append(append([]string(nil), grant.SrcPosture.Values...), grant.DstPosture.Values...)
	for _, src := range srcSet {
		for _, dst := range dstSet {
			b.addEdge(src, dst, &EdgeMetadata{
				RuleType:  RuleGrant,
				RuleIndex: index,
				Protocols: grant.IP.Values,
				Via:       grant.Via.Values,
				Posture:   posture,
				Apps:      grant.App.Values,
			})
		}
	}
}

// touchNode records one rule reference to a node identity: it creates
// the node and its base metadata record on first sight, promotes the
// record to Mixed when the other dialect has already touched the
// base, and extends the accumulators. The node's shape here reflects
// the first-touch dialect only; phase 2 corrects mixed nodes.
func (b *Builder) touchNode(id string, dialect RuleType, nodeRole role, ref string, fields ruleFields) {
	base := BaseID(id)

	meta := b.metadata[base]
	if meta == nil {
		meta = &NodeMetadata{RuleType: dialect}
		if members := b.document.GroupMembers(base); len(members) > 0 {
			meta.Members = append([]string(nil), members...)
		}
		b.metadata[base] = meta
	} else if meta.RuleType != dialect {
		meta.RuleType = RuleMixed
	}

	if nodeRole == roleSource {
		meta.SrcRules = append(meta.SrcRules, ref)
	} else {
		meta.DstRules = append(meta.DstRules, ref)
	}
	meta.Protocols = append(meta.Protocols, fields.protocols...)
	meta.Via = append(meta.Via, fields.via...)
	meta.Posture = append(meta.Posture, fields.posture...)
	meta.Apps = append(meta.Apps, fields.apps...)

	if dialect == RuleACL {
		b.seenACL[base] = true
	} else {
		b.seenGrant[base] = true
	}

	if _, exists := b.nodes[id]; !exists {
		shape := ShapeDot
		if dialect == RuleGrant {
			shape = ShapeTriangle
		}
		b.nodes[id] = &Node{ID: id, Color: b.colorFor(id), Shape: shape}
		b.nodeOrder = append(b.nodeOrder, id)
	}
}

// addEdge records a directed pair. The edge set is deduplicated
// globally across rules and dialects; edge metadata is
// first-writer-wins — the first rule to produce the pair owns the
// search-index entry.
func (b *Builder) addEdge(src, dst string, meta *EdgeMetadata) {
	key := EdgeKey(src, dst)
	if _, exists := b.edges[key]; exists {
		return
	}
	b.edges[key] = Edge{Src: src, Dst: dst}
	b.edgeOrder = append(b.edgeOrder, key)
	b.edgeMeta[key] = meta
}

// reconcile is phase 2: compute the ACL∩Grant base-identifier
// intersection, force the hexagon shape onto every node whose base is
// in it (enhanced variants included), and compose each tooltip from
// the now-complete metadata.
func (b *Builder) reconcile() {
	for _, id := range b.nodeOrder {
		node := b.nodes[id]
		base := BaseID(id)

		if b.seenACL[base] && b.seenGrant[base] {
			node.Shape = ShapeHexagon
		}
		node.Tooltip = b.composeTooltip(id, base, b.metadata[base])
	}
}

// snapshot emits the immutable graph in insertion order, which is
// deterministic for a given document.
func (b *Builder) snapshot() *Graph {
	nodes := make([]Node, 0, len(b.nodeOrder))
	for _, id := range b.nodeOrder {
		nodes = append(nodes, *b.nodes[id])
	}
	edges := make([]Edge, 0, len(b.edgeOrder))
	for _, key := range b.edgeOrder {
		edges = append(edges, b.edges[key])
	}

	return &Graph{
		Nodes:  nodes,
		Edges:  edges,
		Search: SearchIndex{Nodes: b.metadata, Edges: b.edgeMeta},
	}
}

// colorFor assigns the node color purely from the identifier: tags
// green, groups/autogroups and anything containing the company domain
// yellow, everything else red (with the default scheme).
func (b *Builder) colorFor(id string) string {
	switch {
	case strings.HasPrefix(id, "tag:"):
		return b.options.Colors.Tag
	case strings.HasPrefix(id, "group:"), strings.HasPrefix(id, "autogroup:"):
		return b.options.Colors.Group
	case b.options.CompanyDomain != "" && strings.Contains(id, b.options.CompanyDomain):
		return b.options.Colors.Group
	default:
		return b.options.Colors.Host
	}
}

// ruleReference formats the human-readable reference for one rule,
// with the source line when the line table knows it.
func ruleReference(dialect RuleType, index, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s rule %d (Ln %d)", dialect, index, line)
	}
	return fmt.Sprintf("%s rule %d", dialect, index)
}
