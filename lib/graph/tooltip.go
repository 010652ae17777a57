// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"
)

// memberDisplayLimit is the membership size above which the tooltip
// truncates to the first few members with a "+N more" suffix.
const memberDisplayLimit = 5

// memberDisplayCount is how many members are shown when truncating.
const memberDisplayCount = 3

// composeTooltip renders the final tooltip for one node from its
// fully accumulated base metadata. Called only from phase 2, after
// every rule has been processed — never from a per-rule snapshot.
func (b *Builder) composeTooltip(id, base string, meta *NodeMetadata) string {
	lines := []string{id}

	// Bare hosts with a known address get the IP line. Enhanced
	// destination variants (id != base) show the annotation in the id
	// itself and resolve through the search index instead.
	if Classify(base) == KindHost && id == base {
		if ip := b.document.HostIP(base); ip != "" {
			lines = append(lines, "🖥️ IP: "+ip)
		}
	}

	if len(meta.Members) > 0 {
		lines = append(lines, "👥 Group Members: "+formatMembers(meta.Members))
	}

	switch meta.RuleType {
	case RuleMixed:
		lines = append(lines,
			"🔄 Mixed (ACL + Grant Rules)",
			"Referenced in both ACL and Grant rules")
	case RuleACL:
		lines = append(lines, "📜 ACL Rules Only")
	case RuleGrant:
		lines = append(lines, "🎫 Grant Rules Only")
	}

	if len(meta.SrcRules) > 0 || len(meta.DstRules) > 0 {
		lines = append(lines, "📋 Rule References:")
		if len(meta.SrcRules) > 0 {
			lines = append(lines, "  Source: "+strings.Join(Dedupe(meta.SrcRules), ", "))
		}
		if len(meta.DstRules) > 0 {
			lines = append(lines, "  Destination: "+strings.Join(Dedupe(meta.DstRules), ", "))
		}
	}

	if len(meta.Protocols) > 0 {
		lines = append(lines, "🌐 Protocols: "+strings.Join(Dedupe(meta.Protocols), ", "))
	}
	if len(meta.Via) > 0 {
		lines = append(lines, "🛤️  Via Routes: "+strings.Join(Dedupe(meta.Via), ", "))
	}
	if len(meta.Posture) > 0 {
		lines = append(lines, "🔐 Posture Checks: "+strings.Join(Dedupe(meta.Posture), ", "))
	}
	if len(meta.Apps) > 0 {
		lines = append(lines, "📦 Apps: "+strings.Join(Dedupe(meta.Apps), ", "))
	}

	return strings.Join(lines, "\n")
}

// formatMembers joins a group's member list, truncating large groups
// to the first three members plus a count of the rest.
func formatMembers(members []string) string {
	if len(members) <= memberDisplayLimit {
		return strings.Join(members, ", ")
	}
	shown := strings.Join(members[:memberDisplayCount], ", ")
	return fmt.Sprintf("%s, +%d more", shown, len(members)-memberDisplayCount)
}
