// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapconfig provides configuration for the policy-to-graph
// compiler: the company domain used for subject classification, the
// node color scheme, and the protocol/port validation limits.
//
// Configuration is optional. Default() covers normal use; a YAML file
// can override the domain and colors, and the TS_COMPANY_DOMAIN
// environment variable overrides the domain last. There is no
// automatic file discovery — callers pass an explicit path.
package mapconfig

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Port bounds for protocol/port specs in grant rules.
const (
	MinPort = 1
	MaxPort = 65535
)

// validProtocols is the fixed whitelist of protocol names accepted in
// grant ip specs.
var validProtocols = map[string]bool{
	"tcp":       true,
	"udp":       true,
	"icmp":      true,
	"ah":        true,
	"esp":       true,
	"gre":       true,
	"ipv6-icmp": true,
	"ospf":      true,
	"sctp":      true,
}

// IsValidProtocol reports whether name is a whitelisted protocol.
func IsValidProtocol(name string) bool {
	return validProtocols[name]
}

// ValidProtocols returns the protocol whitelist in sorted order, for
// error messages and documentation output.
func ValidProtocols() []string {
	names := make([]string, 0, len(validProtocols))
	for name := range validProtocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeColors is the color scheme for graph nodes, keyed by node
// classification.
type NodeColors struct {
	// Tag is the color for tag: nodes.
	Tag string `yaml:"tag"`

	// Group is the color for group:/autogroup: nodes and identifiers
	// containing the company domain.
	Group string `yaml:"group"`

	// Host is the color for everything else.
	Host string `yaml:"host"`
}

// Config holds the tunable settings of the compiler.
type Config struct {
	// CompanyDomain classifies identifiers as group-colored when they
	// contain this substring anywhere. This is deliberately a
	// substring test, not an email-domain match; downstream tooling
	// depends on the permissive behavior.
	CompanyDomain string `yaml:"company_domain"`

	// Colors is the node color scheme.
	Colors NodeColors `yaml:"colors"`
}

// Default returns the built-in configuration: example.com domain,
// green tags, yellow groups, red hosts.
func Default() *Config {
	return &Config{
		CompanyDomain: "example.com",
		Colors: NodeColors{
			Tag:   "#00cc66",
			Group: "#FFFF00",
			Host:  "#ff6666",
		},
	}
}

// Load returns the default configuration with the TS_COMPANY_DOMAIN
// environment override applied.
func Load() *Config {
	cfg := Default()
	cfg.applyEnvironment()
	return cfg
}

// LoadFile loads configuration from a YAML file, merged over the
// defaults, then applies the TS_COMPANY_DOMAIN environment override.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvironment applies environment variable overrides. The
// environment wins over both defaults and file values.
func (c *Config) applyEnvironment() {
	if domain := os.Getenv("TS_COMPANY_DOMAIN"); domain != "" {
		c.CompanyDomain = domain
	}
}

// colorPattern matches a six-digit hex color with leading '#'.
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.CompanyDomain == "" {
		errs = append(errs, fmt.Errorf("company_domain is required"))
	}

	colors := map[string]string{
		"colors.tag":   c.Colors.Tag,
		"colors.group": c.Colors.Group,
		"colors.host":  c.Colors.Host,
	}
	// Sorted iteration keeps the joined error deterministic.
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !colorPattern.MatchString(colors[name]) {
			errs = append(errs, fmt.Errorf("%s must be a hex color like #ff6666, got %q", name, colors[name]))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
