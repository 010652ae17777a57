// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "strings"

// ConsolidateIPSpecs collapses a grant's ip specs into a compact
// canonical label. Specs are processed in order; each maximal run of
// "proto:port" specs sharing a protocol merges its ports into one
// comma-joined token ("tcp:443,80"). A bare spec (no colon) or a
// switch to a different protocol closes the current run and the bare
// spec becomes its own token. Tokens are joined with ", ".
//
//	["tcp:443", "tcp:80", "udp:53"] → "tcp:443,80, udp:53"
//	["tcp", "udp:53"]               → "tcp, udp:53"
func ConsolidateIPSpecs(specs []string) string {
	var tokens []string
	currentProtocol := ""
	var currentPorts []string

	flush := func() {
		if currentProtocol != "" {
			tokens = append(tokens, currentProtocol+":"+strings.Join(currentPorts, ","))
			currentProtocol = ""
			currentPorts = nil
		}
	}

	for _, spec := range specs {
		protocol, port, found := strings.Cut(spec, ":")
		if !found {
			flush()
			tokens = append(tokens, spec)
			continue
		}
		if protocol != currentProtocol {
			flush()
			currentProtocol = protocol
		}
		currentPorts = append(currentPorts, port)
	}
	flush()

	return strings.Join(tokens, ", ")
}

// enhanceDestination appends the bracketed consolidated protocol
// annotation to a grant destination identifier. The result is a
// distinct node identity; BaseID recovers the bare destination.
func enhanceDestination(dst string, specs []string) string {
	return dst + " [" + ConsolidateIPSpecs(specs) + "]"
}

// isWildcardIP reports whether a grant's ip field imposes no protocol
// restriction: absent, empty, or exactly ["*"].
func isWildcardIP(specs []string) bool {
	return len(specs) == 0 || (len(specs) == 1 && specs[0] == "*")
}
