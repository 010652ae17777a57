// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tailmap/tailmap/lib/mapconfig"
	"github.com/tailmap/tailmap/lib/policy"
)

func testOptions() Options {
	return Options{
		CompanyDomain: "example.com",
		Colors:        mapconfig.NodeColors{Tag: "#00cc66", Group: "#FFFF00", Host: "#ff6666"},
	}
}

func TestBuildEmptyDocument(t *testing.T) {
	t.Parallel()

	g := Build(&policy.Document{}, nil, testOptions())
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty document produced %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestBuildACLOnly(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		ACLs: []policy.ACLRule{{
			Action: "accept",
			Src:    policy.List("group:admin", "tag:web"),
			Dst:    policy.List("server:22", "db:5432"),
		}},
	}

	g := Build(document, nil, testOptions())

	if g.NodeCount() != 4 {
		t.Fatalf("nodes = %d, want 4", g.NodeCount())
	}
	for _, id := range []string{"group:admin", "tag:web", "server:22", "db:5432"} {
		node := g.Node(id)
		if node == nil {
			t.Fatalf("missing node %q", id)
		}
		if node.Shape != ShapeDot {
			t.Errorf("node %q shape = %q, want dot", id, node.Shape)
		}
	}

	// Cross product: 2 sources x 2 destinations.
	if g.EdgeCount() != 4 {
		t.Errorf("edges = %d, want 4", g.EdgeCount())
	}
	if !g.HasEdge("group:admin", "server:22") || !g.HasEdge("tag:web", "db:5432") {
		t.Errorf("missing cross-product edges, got %v", g.EdgePairs())
	}

	meta := g.Search.Edges[EdgeKey("group:admin", "server:22")]
	if meta == nil {
		t.Fatal("missing edge metadata")
	}
	if meta.RuleType != RuleACL || meta.RuleIndex != 1 || meta.Action != "accept" {
		t.Errorf("edge metadata = %+v", meta)
	}

	nodeMeta := g.Search.Nodes["group:admin"]
	if nodeMeta == nil {
		t.Fatal("missing node metadata for group:admin")
	}
	if nodeMeta.RuleType != RuleACL {
		t.Errorf("rule type = %q, want ACL", nodeMeta.RuleType)
	}
	if want := []string{"ACL rule 1"}; !reflect.DeepEqual(nodeMeta.SrcRules, want) {
		t.Errorf("src rules = %v, want %v", nodeMeta.SrcRules, want)
	}
}

func TestBuildGrantEnhancedDestination(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		Grants: []policy.GrantRule{{
			Src: policy.List("group:admin"),
			Dst: policy.List("server"),
			IP:  policy.List("tcp:443", "tcp:80", "udp:53"),
		}},
	}

	g := Build(document, nil, testOptions())

	enhanced := "server [tcp:443,80, udp:53]"
	node := g.Node(enhanced)
	if node == nil {
		t.Fatalf("missing enhanced node %q, have %v", enhanced, g.NodeIDs())
	}
	if node.Shape != ShapeTriangle {
		t.Errorf("enhanced node shape = %q, want triangle", node.Shape)
	}
	if g.Node("server") != nil {
		t.Error("bare destination should not exist when the grant restricts protocols")
	}

	if !g.HasEdge("group:admin", enhanced) {
		t.Errorf("missing edge to enhanced destination, got %v", g.EdgePairs())
	}

	// Metadata is keyed by the base identifier, shared with any other
	// variants of the same destination.
	meta := g.Search.Nodes["server"]
	if meta == nil {
		t.Fatal("missing base metadata for server")
	}
	if want := []string{"tcp:443", "tcp:80", "udp:53"}; !reflect.DeepEqual(meta.Protocols, want) {
		t.Errorf("protocols = %v, want %v", meta.Protocols, want)
	}
}

func TestBuildWildcardGrant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   policy.ValueList
	}{
		{name: "absent ip", ip: policy.ValueList{}},
		{name: "empty ip", ip: policy.List()},
		{name: "star ip", ip: policy.List("*")},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			document := &policy.Document{
				Grants: []policy.GrantRule{{
					Src: policy.List("group:admin"),
					Dst: policy.List("server"),
					IP:  test.ip,
				}},
			}

			g := Build(document, nil, testOptions())

			if g.Node("server") == nil {
				t.Fatalf("wildcard grant should keep the bare destination, have %v", g.NodeIDs())
			}
			if !g.HasEdge("group:admin", "server") {
				t.Error("missing edge to bare destination")
			}
			if meta := g.Search.Nodes["server"]; len(meta.Protocols) != 0 {
				t.Errorf("wildcard grant accumulated protocols %v", meta.Protocols)
			}
		})
	}
}

func TestBuildMixedPromotion(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		ACLs: []policy.ACLRule{{
			Action: "accept",
			Src:    policy.List("group:admin"),
			Dst:    policy.List("server"),
		}},
		Grants: []policy.GrantRule{{
			Src: policy.List("group:admin"),
			Dst: policy.List("server"),
			IP:  policy.List("tcp:443"),
		}},
	}

	g := Build(document, nil, testOptions())

	// Both the bare node and the enhanced variant share the base
	// "server", which is referenced by both dialects.
	for _, id := range []string{"group:admin", "server", "server [tcp:443]"} {
		node := g.Node(id)
		if node == nil {
			t.Fatalf("missing node %q, have %v", id, g.NodeIDs())
		}
		if node.Shape != ShapeHexagon {
			t.Errorf("node %q shape = %q, want hexagon", id, node.Shape)
		}
	}

	meta := g.Search.Nodes["server"]
	if meta.RuleType != RuleMixed {
		t.Errorf("rule type = %q, want Mixed", meta.RuleType)
	}
	if g.Search.Nodes["server [tcp:443]"] != nil {
		t.Error("enhanced variant must not have its own metadata record")
	}
}

func TestBuildEdgeDedup(t *testing.T) {
	t.Parallel()

	// Two ACLs and a wildcard grant all produce the same directed
	// pair. The edge appears once; its metadata belongs to the first
	// rule that produced it.
	document := &policy.Document{
		ACLs: []policy.ACLRule{
			{Action: "accept", Src: policy.List("a"), Dst: policy.List("b")},
			{Action: "deny", Src: policy.List("a"), Dst: policy.List("b")},
		},
		Grants: []policy.GrantRule{
			{Src: policy.List("a"), Dst: policy.List("b")},
		},
	}

	g := Build(document, nil, testOptions())

	if g.EdgeCount() != 1 {
		t.Fatalf("edges = %d, want 1", g.EdgeCount())
	}

	meta := g.Search.Edges[EdgeKey("a", "b")]
	if meta.RuleType != RuleACL || meta.RuleIndex != 1 || meta.Action != "accept" {
		t.Errorf("edge metadata = %+v, want ACL rule 1", meta)
	}

	// Every rule still lands in the node-level reference lists.
	nodeMeta := g.Search.Nodes["a"]
	if want := []string{"ACL rule 1", "ACL rule 2", "Grant rule 1"}; !reflect.DeepEqual(nodeMeta.SrcRules, want) {
		t.Errorf("src rules = %v, want %v", nodeMeta.SrcRules, want)
	}
}

func TestBuildDuplicateSpecsWithinRule(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		ACLs: []policy.ACLRule{{
			Action: "accept",
			Src:    policy.List("a", "a"),
			Dst:    policy.List("b", "b"),
		}},
	}

	g := Build(document, nil, testOptions())
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("got %d nodes, %d edges, want 2 and 1", g.NodeCount(), g.EdgeCount())
	}
}

func TestColorAssignment(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		Grants: []policy.GrantRule{{
			Src: policy.List("tag:web", "group:admin", "autogroup:member", "alice@example.com", "server"),
			Dst: policy.List("db"),
		}},
	}

	g := Build(document, nil, testOptions())

	tests := []struct {
		id   string
		want string
	}{
		{"tag:web", "#00cc66"},
		{"group:admin", "#FFFF00"},
		{"autogroup:member", "#FFFF00"},
		{"alice@example.com", "#FFFF00"}, // contains the company domain
		{"server", "#ff6666"},
		{"db", "#ff6666"},
	}
	for _, test := range tests {
		node := g.Node(test.id)
		if node == nil {
			t.Fatalf("missing node %q", test.id)
		}
		if node.Color != test.want {
			t.Errorf("node %q color = %q, want %q", test.id, node.Color, test.want)
		}
	}
}

func TestBuildRuleLineReferences(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		ACLs: []policy.ACLRule{{
			Action: "accept",
			Src:    policy.List("a"),
			Dst:    policy.List("b"),
		}},
		Grants: []policy.GrantRule{{
			Src: policy.List("a"),
			Dst: policy.List("c"),
		}},
	}
	lines := &policy.RuleLineNumbers{ACLs: []int{10}, Grants: []int{45}}

	g := Build(document, lines, testOptions())

	meta := g.Search.Nodes["a"]
	if want := []string{"ACL rule 1 (Ln 10)", "Grant rule 1 (Ln 45)"}; !reflect.DeepEqual(meta.SrcRules, want) {
		t.Errorf("src rules = %v, want %v", meta.SrcRules, want)
	}
}

func TestBuildIdempotence(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		Groups: map[string][]string{"group:admin": {"a@example.com"}},
		Hosts:  map[string]string{"server": "10.0.0.1"},
		ACLs: []policy.ACLRule{
			{Action: "accept", Src: policy.List("group:admin"), Dst: policy.List("server:22")},
		},
		Grants: []policy.GrantRule{
			{Src: policy.List("group:admin"), Dst: policy.List("server"), IP: policy.List("tcp:443")},
		},
	}
	lines := &policy.RuleLineNumbers{ACLs: []int{10}, Grants: []int{20}}

	first := Build(document, lines, testOptions())
	second := Build(document, lines, testOptions())

	firstPrint, err := first.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	secondPrint, err := second.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if firstPrint != secondPrint {
		t.Errorf("fingerprints differ across identical builds: %s vs %s", firstPrint, secondPrint)
	}
	if !reflect.DeepEqual(first.Nodes, second.Nodes) {
		t.Error("node lists differ across identical builds")
	}
	if !reflect.DeepEqual(first.Edges, second.Edges) {
		t.Error("edge lists differ across identical builds")
	}
}

func TestTooltipContent(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		Groups: map[string][]string{"group:admin": {"a@example.com", "b@example.com"}},
		Hosts:  map[string]string{"server": "10.0.0.1"},
		ACLs: []policy.ACLRule{
			{Action: "accept", Src: policy.List("group:admin"), Dst: policy.List("server")},
		},
		Grants: []policy.GrantRule{{
			Src:        policy.List("group:admin"),
			Dst:        policy.List("server"),
			IP:         policy.List("tcp:443"),
			Via:        policy.List("gateway"),
			SrcPosture: policy.List("posture:trusted"),
			App:        policy.List("example.com/webapp"),
		}},
	}
	lines := &policy.RuleLineNumbers{ACLs: []int{5}, Grants: []int{12}}

	g := Build(document, lines, testOptions())

	server := g.Node("server")
	if server == nil {
		t.Fatal("missing server node")
	}
	for _, want := range []string{
		"server",
		"🖥️ IP: 10.0.0.1",
		"🔄 Mixed (ACL + Grant Rules)",
		"Referenced in both ACL and Grant rules",
		"📋 Rule References:",
		"  Destination: ACL rule 1 (Ln 5), Grant rule 1 (Ln 12)",
		"🌐 Protocols: tcp:443",
		"🛤️  Via Routes: gateway",
		"📦 Apps: example.com/webapp",
	} {
		if !strings.Contains(server.Tooltip, want) {
			t.Errorf("server tooltip missing %q:\n%s", want, server.Tooltip)
		}
	}
	// srcPosture belongs to source nodes only.
	if strings.Contains(server.Tooltip, "posture:trusted") {
		t.Errorf("server tooltip should not carry the source posture:\n%s", server.Tooltip)
	}

	// The enhanced variant shares the base metadata but never repeats
	// the IP line; its id already carries the annotation.
	enhanced := g.Node("server [tcp:443]")
	if enhanced == nil {
		t.Fatal("missing enhanced node")
	}
	if !strings.HasPrefix(enhanced.Tooltip, "server [tcp:443]\n") {
		t.Errorf("enhanced tooltip should open with the full id:\n%s", enhanced.Tooltip)
	}
	if strings.Contains(enhanced.Tooltip, "IP:") {
		t.Errorf("enhanced tooltip should not carry the IP line:\n%s", enhanced.Tooltip)
	}

	admin := g.Node("group:admin")
	for _, want := range []string{
		"👥 Group Members: a@example.com, b@example.com",
		"  Source: ACL rule 1 (Ln 5), Grant rule 1 (Ln 12)",
		"🔐 Posture Checks: posture:trusted",
	} {
		if !strings.Contains(admin.Tooltip, want) {
			t.Errorf("group tooltip missing %q:\n%s", want, admin.Tooltip)
		}
	}
}

func TestTooltipRuleTypeLines(t *testing.T) {
	t.Parallel()

	document := &policy.Document{
		ACLs: []policy.ACLRule{
			{Action: "accept", Src: policy.List("a"), Dst: policy.List("b")},
		},
		Grants: []policy.GrantRule{
			{Src: policy.List("c"), Dst: policy.List("d")},
		},
	}

	g := Build(document, nil, testOptions())

	if tooltip := g.Node("a").Tooltip; !strings.Contains(tooltip, "📜 ACL Rules Only") {
		t.Errorf("ACL-only tooltip missing marker:\n%s", tooltip)
	}
	if tooltip := g.Node("c").Tooltip; !strings.Contains(tooltip, "🎫 Grant Rules Only") {
		t.Errorf("grant-only tooltip missing marker:\n%s", tooltip)
	}
}

func TestFormatMembers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		members []string
		want    string
	}{
		{
			name:    "small group shown in full",
			members: []string{"a", "b", "c"},
			want:    "a, b, c",
		},
		{
			name:    "at the limit shown in full",
			members: []string{"a", "b", "c", "d", "e"},
			want:    "a, b, c, d, e",
		},
		{
			name:    "over the limit truncates",
			members: []string{"a", "b", "c", "d", "e", "f", "g"},
			want:    "a, b, c, +4 more",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if got := formatMembers(test.members); got != test.want {
				t.Errorf("formatMembers(%v) = %q, want %q", test.members, got, test.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	got := Dedupe([]string{"b", "a", "b", "c", "a"})
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %v, want %v", got, want)
	}

	single := []string{"only"}
	if got := Dedupe(single); !reflect.DeepEqual(got, single) {
		t.Errorf("Dedupe(single) = %v", got)
	}
	if got := Dedupe(nil); got != nil {
		t.Errorf("Dedupe(nil) = %v, want nil", got)
	}
}
