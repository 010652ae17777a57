// Copyright 2026 The Tailmap Authors
// SPDX-License-Identifier: Apache-2.0

// tailmap compiles a Tailscale-style HuJSON policy file into a
// directed access graph for visualization and audit.
//
// Usage:
//
//	tailmap build [flags] <policy-file>
//	tailmap validate <policy-file>
//	tailmap stats <policy-file>
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tailmap/tailmap/lib/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if os.Getenv("TAILMAP_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "build":
		err = buildCmd(args, logger)
	case "validate":
		err = validateCmd(args, logger)
	case "stats":
		err = statsCmd(args)
	case "version", "--version", "-v":
		fmt.Printf("tailmap %s\n", version.Info())
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `tailmap - policy-to-graph compiler for Tailscale ACL files

Usage:
  tailmap build [flags] <policy-file>     Build the access graph and export it
  tailmap validate <policy-file>          Parse and validate, report problems
  tailmap stats <policy-file>             Print policy and graph counts
  tailmap version                         Print version

Build flags:
  -o, --output <path>     Write the export to a file (default: stdout)
      --format <name>     Export format: json, cbor, json-zstd (default: json)
      --config <path>     YAML config file (company domain, colors)
      --fingerprint       Print the graph fingerprint to stderr

Environment:
  TS_COMPANY_DOMAIN       Override the company domain used for node coloring
  TAILMAP_DEBUG           Enable debug logging when set
`)
}
