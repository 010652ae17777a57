// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package policy

// Document is a parsed policy file. Top-level keys that are absent
// from the file decode to empty maps and nil slices; rule order is
// document order, which the graph builder relies on for 1-based rule
// references in tooltips.
type Document struct {
	// Groups maps a group name (by convention prefixed "group:",
	// not enforced) to its ordered member identifiers — emails or
	// other group names.
	Groups map[string][]string `json:"groups,omitempty"`

	// Hosts maps a host name to an IP address or CIDR string.
	Hosts map[string]string `json:"hosts,omitempty"`

	// TagOwners maps a tag name (prefixed "tag:") to the identifiers
	// of the groups or users allowed to apply the tag.
	TagOwners map[string][]string `json:"tagOwners,omitempty"`

	// ACLs is the ordered list of legacy ACL rules.
	ACLs []ACLRule `json:"acls,omitempty"`

	// Grants is the ordered list of modern grant rules.
	Grants []GrantRule `json:"grants,omitempty"`
}

// ACLRule is a legacy policy rule. Destinations may embed a trailing
// ":port" suffix directly in the identifier string ("server:22"); such
// an identifier is a distinct graph node from the bare host.
type ACLRule struct {
	// Action is informational ("accept" in every real policy; the
	// legacy dialect has no deny semantics).
	Action string `json:"action,omitempty"`

	// Proto is the optional legacy protocol filter.
	Proto string `json:"proto,omitempty"`

	// Src lists subject identifiers. Required, list-typed.
	Src ValueList `json:"src,omitempty"`

	// Dst lists destination identifiers, optionally with embedded
	// port suffixes. Required, list-typed.
	Dst ValueList `json:"dst,omitempty"`
}

// GrantRule is a modern policy rule with protocol, routing, posture,
// and application constraints.
type GrantRule struct {
	// Src lists subject identifiers. Required, list-typed.
	Src ValueList `json:"src,omitempty"`

	// Dst lists destination identifiers. Required, list-typed.
	Dst ValueList `json:"dst,omitempty"`

	// IP lists protocol/port specs ("*", "53", "8000-8999", "tcp",
	// "tcp:443", "udp:53-54"). Absent means ["*"]: unrestricted.
	IP ValueList `json:"ip,omitempty"`

	// Via lists routing-node identifiers the traffic must traverse.
	Via ValueList `json:"via,omitempty"`

	// SrcPosture lists device-posture checks required of sources.
	SrcPosture ValueList `json:"srcPosture,omitempty"`

	// DstPosture lists device-posture checks required of destinations.
	DstPosture ValueList `json:"dstPosture,omitempty"`

	// App is the application-layer capability field. On the wire it
	// may be a single string, a list of capability identifiers, or a
	// mapping capability-identifier → config; all three normalize to
	// a list of identifiers (see ValueList).
	App ValueList `json:"app,omitempty"`
}

// RuleLineNumbers maps rule indexes to the 1-based source line of the
// rule object in the original policy file. Optional companion to a
// Document: when absent, rule references in tooltips omit the line
// annotation. A zero entry means the line is unknown for that rule.
type RuleLineNumbers struct {
	ACLs   []int `json:"acls,omitempty"`
	Grants []int `json:"grants,omitempty"`
}

// ACLLine returns the source line for the 1-based ACL rule index, or
// zero when unknown.
func (r *RuleLineNumbers) ACLLine(index int) int {
	if r == nil || index < 1 || index > len(r.ACLs) {
		return 0
	}
	return r.ACLs[index-1]
}

// GrantLine returns the source line for the 1-based grant rule index,
// or zero when unknown.
func (r *RuleLineNumbers) GrantLine(index int) int {
	if r == nil || index < 1 || index > len(r.Grants) {
		return 0
	}
	return r.Grants[index-1]
}

// IsGroup reports whether name is defined in the groups table.
func (d *Document) IsGroup(name string) bool {
	_, ok := d.Groups[name]
	return ok
}

// GroupMembers returns the member list for a defined group, or nil.
func (d *Document) GroupMembers(name string) []string {
	return d.Groups[name]
}

// IsTag reports whether name is defined in the tagOwners table.
func (d *Document) IsTag(name string) bool {
	_, ok := d.TagOwners[name]
	return ok
}

// TagOwnerList returns the owner list for a defined tag, or nil.
func (d *Document) TagOwnerList(name string) []string {
	return d.TagOwners[name]
}

// IsHost reports whether name is defined in the hosts table.
func (d *Document) IsHost(name string) bool {
	_, ok := d.Hosts[name]
	return ok
}

// HostIP returns the IP/CIDR string for a defined host, or "".
func (d *Document) HostIP(name string) string {
	return d.Hosts[name]
}

// Stats summarizes the size of a policy document.
type Stats struct {
	Groups    int `json:"groups"`
	Hosts     int `json:"hosts"`
	TagOwners int `json:"tag_owners"`
	ACLs      int `json:"acls"`
	Grants    int `json:"grants"`
}

// Stats returns counts of the document's top-level collections.
func (d *Document) Stats() Stats {
	return Stats{
		Groups:    len(d.Groups),
		Hosts:     len(d.Hosts),
		TagOwners: len(d.TagOwners),
		ACLs:      len(d.ACLs),
		Grants:    len(d.Grants),
	}
}
