// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package policydef

import (
	"fmt"
	"strings"

	"github.com/tailmap/tailmap/lib/mapconfig"
)

// StructuralError reports a rule that violates the required document
// shape: a missing required field or a field with the wrong JSON type.
// Always fatal — graph construction must not proceed on a document
// that produced one.
type StructuralError struct {
	// Rule is the rule dialect, "ACL" or "Grant".
	Rule string

	// Index is the 1-based index of the offending rule within its
	// dialect's array.
	Index int

	// Field is the offending field name ("src", "dst", "ip", ...).
	Field string

	// Reason distinguishes the violation: "missing" or the wire shape
	// that was found instead of a list.
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Reason == "missing" {
		return fmt.Sprintf("%s %d missing required '%s' field", e.Rule, e.Index, e.Field)
	}
	return fmt.Sprintf("%s %d '%s' field must be a list, got %s", e.Rule, e.Index, e.Field, e.Reason)
}

// ProtocolError reports an ip spec with a protocol outside the fixed
// whitelist. This is a hard error both for "proto:port" specs and for
// bare tokens that are neither a port, a port range, nor a known
// protocol name.
type ProtocolError struct {
	// Index is the 1-based grant index.
	Index int

	// Spec is the full offending ip spec.
	Spec string

	// Protocol is the unrecognized protocol token.
	Protocol string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("Grant %d: invalid protocol %q in spec %q (valid protocols: %s)",
		e.Index, e.Protocol, e.Spec, strings.Join(mapconfig.ValidProtocols(), ", "))
}

// PortRangeError reports an ip spec whose port component is malformed
// or out of the valid 1-65535 range.
type PortRangeError struct {
	// Index is the 1-based grant index.
	Index int

	// Spec is the full offending ip spec.
	Spec string

	// Reason describes the violation.
	Reason string
}

func (e *PortRangeError) Error() string {
	return fmt.Sprintf("Grant %d: %s in %q", e.Index, e.Reason, e.Spec)
}
