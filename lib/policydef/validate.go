// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package policydef

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tailmap/tailmap/lib/mapconfig"
	"github.com/tailmap/tailmap/lib/policy"
)

// Validate checks a parsed policy document for structural issues and
// returns the first violation found. A nil return means the document
// can be handed to the graph builder.
//
// Checks:
//   - every ACL has src and dst
//   - every grant has src and dst, both list-typed
//   - grant ip, via, srcPosture, and dstPosture must be list-typed
//     when present; app may be a string, list, or mapping
//   - every ip spec is "*", a bare port, a port range, a whitelisted
//     protocol name, or "proto:port(-range)"
//   - ports are within 1-65535 and range starts do not exceed ends
//
// A bare spec token that is neither numeric nor a whitelisted protocol
// is a hard error, the same as an unknown protocol paired with a port.
// Validate does not mutate the document.
func Validate(document *policy.Document) error {
	for i, grant := range document.Grants {
		if err := validateGrant(grant, i+1); err != nil {
			return err
		}
	}

	for i, acl := range document.ACLs {
		if err := validateACL(acl, i+1); err != nil {
			return err
		}
	}

	return nil
}

func validateACL(acl policy.ACLRule, index int) error {
	if !acl.Src.Present() {
		return &StructuralError{Rule: "ACL", Index: index, Field: "src", Reason: "missing"}
	}
	if !acl.Dst.Present() {
		return &StructuralError{Rule: "ACL", Index: index, Field: "dst", Reason: "missing"}
	}
	return nil
}

func validateGrant(grant policy.GrantRule, index int) error {
	if !grant.Src.Present() {
		return &StructuralError{Rule: "Grant", Index: index, Field: "src", Reason: "missing"}
	}
	if grant.Src.Kind != policy.KindList {
		return &StructuralError{Rule: "Grant", Index: index, Field: "src", Reason: grant.Src.Kind.String()}
	}
	if !grant.Dst.Present() {
		return &StructuralError{Rule: "Grant", Index: index, Field: "dst", Reason: "missing"}
	}
	if grant.Dst.Kind != policy.KindList {
		return &StructuralError{Rule: "Grant", Index: index, Field: "dst", Reason: grant.Dst.Kind.String()}
	}

	// Optional fields must be lists when present. The app field alone
	// accepts all three wire shapes (string, list, mapping) and has
	// already been normalized to a value list by decoding.
	optional := []struct {
		name  string
		value policy.ValueList
	}{
		{"ip", grant.IP},
		{"via", grant.Via},
		{"srcPosture", grant.SrcPosture},
		{"dstPosture", grant.DstPosture},
	}
	for _, field := range optional {
		if field.value.Present() && field.value.Kind != policy.KindList {
			return &StructuralError{Rule: "Grant", Index: index, Field: field.name, Reason: field.value.Kind.String()}
		}
	}
	if grant.App.Kind == policy.KindInvalid {
		return &StructuralError{Rule: "Grant", Index: index, Field: "app", Reason: "invalid"}
	}

	if grant.IP.Present() {
		if err := validateIPSpecs(grant.IP.Values, index); err != nil {
			return err
		}
	}

	return nil
}

// validateIPSpecs checks every protocol/port spec of a grant's ip
// list. index is the 1-based grant index for error reporting.
func validateIPSpecs(specs []string, index int) error {
	for _, spec := range specs {
		if spec == "*" {
			continue
		}

		if protocol, portSpec, found := strings.Cut(spec, ":"); found {
			if !mapconfig.IsValidProtocol(protocol) {
				return &ProtocolError{Index: index, Spec: spec, Protocol: protocol}
			}
			if err := validatePortSpec(portSpec, index, spec); err != nil {
				return err
			}
			continue
		}

		// No colon: a bare port, a port range, or a bare protocol
		// name. The numeric checks run first so that "8000-8999" is
		// not mistaken for a protocol, and "ipv6-icmp" (which contains
		// a dash but no digits) falls through to the whitelist.
		switch {
		case isPortOrRange(spec):
			if err := validatePortSpec(spec, index, spec); err != nil {
				return err
			}
		case mapconfig.IsValidProtocol(spec):
			// Bare protocol: all traffic for that protocol.
		default:
			return &ProtocolError{Index: index, Spec: spec, Protocol: spec}
		}
	}

	return nil
}

// isPortOrRange reports whether spec parses as an integer port or an
// integer-integer range. It does not check bounds — validatePortSpec
// does that with a descriptive error.
func isPortOrRange(spec string) bool {
	if start, end, found := strings.Cut(spec, "-"); found {
		_, startErr := strconv.Atoi(start)
		_, endErr := strconv.Atoi(end)
		return startErr == nil && endErr == nil
	}
	_, err := strconv.Atoi(spec)
	return err == nil
}

// validatePortSpec checks a port or port-range component. fullSpec is
// the complete ip spec for error context.
func validatePortSpec(portSpec string, index int, fullSpec string) error {
	if start, end, found := strings.Cut(portSpec, "-"); found {
		startPort, err := strconv.Atoi(start)
		if err != nil {
			return &PortRangeError{Index: index, Spec: fullSpec, Reason: "invalid port range format"}
		}
		endPort, err := strconv.Atoi(end)
		if err != nil {
			return &PortRangeError{Index: index, Spec: fullSpec, Reason: "invalid port range format"}
		}

		if startPort < mapconfig.MinPort || startPort > mapconfig.MaxPort {
			return &PortRangeError{Index: index, Spec: fullSpec,
				Reason: fmt.Sprintf("start port %d out of valid range (%d-%d)", startPort, mapconfig.MinPort, mapconfig.MaxPort)}
		}
		if endPort < mapconfig.MinPort || endPort > mapconfig.MaxPort {
			return &PortRangeError{Index: index, Spec: fullSpec,
				Reason: fmt.Sprintf("end port %d out of valid range (%d-%d)", endPort, mapconfig.MinPort, mapconfig.MaxPort)}
		}
		if startPort > endPort {
			return &PortRangeError{Index: index, Spec: fullSpec,
				Reason: fmt.Sprintf("invalid port range %d-%d (start exceeds end)", startPort, endPort)}
		}
		return nil
	}

	port, err := strconv.Atoi(portSpec)
	if err != nil {
		return &PortRangeError{Index: index, Spec: fullSpec, Reason: "invalid port format"}
	}
	if port < mapconfig.MinPort || port > mapconfig.MaxPort {
		return &PortRangeError{Index: index, Spec: fullSpec,
			Reason: fmt.Sprintf("port %d out of valid range (%d-%d)", port, mapconfig.MinPort, mapconfig.MaxPort)}
	}
	return nil
}
