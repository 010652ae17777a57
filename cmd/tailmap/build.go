// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/tailmap/tailmap/lib/graph"
	"github.com/tailmap/tailmap/lib/mapconfig"
	"github.com/tailmap/tailmap/lib/policy"
	"github.com/tailmap/tailmap/lib/policydef"
)

// buildCmd loads a policy file, validates it, builds the access
// graph, and writes the export.
func buildCmd(args []string, logger *slog.Logger) error {
	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	outputPath := flags.StringP("output", "o", "", "write the export to a file instead of stdout")
	formatName := flags.String("format", "json", "export format: json, cbor, json-zstd")
	configPath := flags.String("config", "", "YAML config file")
	printFingerprint := flags.Bool("fingerprint", false, "print the graph fingerprint to stderr")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("expected 1 positional argument (policy file), got %d", flags.NArg())
	}
	policyPath := flags.Arg(0)

	format, err := graph.ParseFormat(*formatName)
	if err != nil {
		return err
	}

	options, err := loadOptions(*configPath)
	if err != nil {
		return err
	}

	document, lines, err := loadPolicy(policyPath)
	if err != nil {
		return err
	}
	if err := policydef.Validate(document); err != nil {
		return fmt.Errorf("%s: %w", policyPath, err)
	}

	result := graph.Build(document, lines, options)
	logger.Info("graph built",
		"nodes", result.NodeCount(),
		"edges", result.EdgeCount(),
		"acls", len(document.ACLs),
		"grants", len(document.Grants))

	if *printFingerprint {
		fingerprint, err := result.Fingerprint()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "fingerprint: %s\n", fingerprint)
	}

	output := os.Stdout
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *outputPath, err)
		}
		defer file.Close()
		output = file
	}

	return graph.Export(output, result, format)
}

// validateCmd parses and validates a policy file, reporting the first
// structural problem found.
func validateCmd(args []string, logger *slog.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("expected 1 positional argument (policy file), got %d", len(args))
	}
	policyPath := args[0]

	document, _, err := loadPolicy(policyPath)
	if err != nil {
		return err
	}
	if err := policydef.Validate(document); err != nil {
		return fmt.Errorf("%s: %w", policyPath, err)
	}

	stats := document.Stats()
	logger.Info("policy is valid",
		"groups", stats.Groups,
		"hosts", stats.Hosts,
		"tag_owners", stats.TagOwners,
		"acls", stats.ACLs,
		"grants", stats.Grants)
	fmt.Printf("%s: OK\n", policyPath)
	return nil
}

// statsCmd prints policy collection counts and the resulting graph
// size.
func statsCmd(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected 1 positional argument (policy file), got %d", len(args))
	}
	policyPath := args[0]

	document, lines, err := loadPolicy(policyPath)
	if err != nil {
		return err
	}
	if err := policydef.Validate(document); err != nil {
		return fmt.Errorf("%s: %w", policyPath, err)
	}

	result := graph.Build(document, lines, graph.DefaultOptions())
	stats := document.Stats()
	fmt.Printf("groups:     %d\n", stats.Groups)
	fmt.Printf("hosts:      %d\n", stats.Hosts)
	fmt.Printf("tag owners: %d\n", stats.TagOwners)
	fmt.Printf("acl rules:  %d\n", stats.ACLs)
	fmt.Printf("grants:     %d\n", stats.Grants)
	fmt.Printf("nodes:      %d\n", result.NodeCount())
	fmt.Printf("edges:      %d\n", result.EdgeCount())
	return nil
}

// loadPolicy reads a policy file and scans rule source lines for
// tooltip traceability.
func loadPolicy(path string) (*policy.Document, *policy.RuleLineNumbers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	parsed, err := policydef.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, policydef.ScanRuleLines(data), nil
}

// loadOptions builds graph options from the optional config file,
// falling back to the defaults (with environment overrides).
func loadOptions(configPath string) (graph.Options, error) {
	if configPath == "" {
		return graph.DefaultOptions(), nil
	}
	cfg, err := mapconfig.LoadFile(configPath)
	if err != nil {
		return graph.Options{}, err
	}
	return graph.Options{CompanyDomain: cfg.CompanyDomain, Colors: cfg.Colors}, nil
}
