// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

// Graph is the immutable result of a build: the node set (insertion
// order), the deduplicated directed edge list, and the search index.
// Plain serializable data with no behavior beyond lookups — the
// rendering layer embeds it directly.
type Graph struct {
	Nodes  []Node      `json:"nodes"`
	Edges  []Edge      `json:"edges"`
	Search SearchIndex `json:"search"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// Node returns the node with the given full identity, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// HasEdge reports whether the directed pair is present.
func (g *Graph) HasEdge(src, dst string) bool {
	for _, edge := range g.Edges {
		if edge.Src == src && edge.Dst == dst {
			return true
		}
	}
	return false
}

// NodeIDs returns the set of full node identities.
func (g *Graph) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		ids[node.ID] = true
	}
	return ids
}

// EdgePairs returns the set of directed pairs keyed "src->dst".
func (g *Graph) EdgePairs() map[string]bool {
	pairs := make(map[string]bool, len(g.Edges))
	for _, edge := range g.Edges {
		pairs[EdgeKey(edge.Src, edge.Dst)] = true
	}
	return pairs
}
