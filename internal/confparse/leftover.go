// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package confparse implements the three line parsers the configuration
// loader dispatches every input line to (global, node, partition), plus the
// shared leftover-token and localhost-substitution helpers they all use.
package confparse

import (
	"fmt"
	"os"
	"strings"

	"github.com/jontk/slurmctld/internal/kvparser"
	"github.com/jontk/slurmctld/pkg/logging"
)

// ReportLeftover scans line for any remaining non-whitespace character —
// meaning no parser recognized it — and logs exactly one warning naming the
// line number, per the report_leftover contract shared by all three parsers.
func ReportLeftover(line *kvparser.Line, lineNum int, logger logging.Logger) {
	s := line.String()
	badIndex := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		badIndex = i
		break
	}
	if badIndex == -1 {
		return
	}
	logger.Warn("ignored input on configuration line",
		"line", lineNum,
		"remainder", strings.TrimRight(s[badIndex:], "\n"),
	)
}

// ResolveLocalhost is the single consolidated helper both the node parser
// and the partition parser use to replace the literal "localhost" with the
// machine's actual hostname — consolidating what read_config.c duplicated
// inline in both parse_node_spec and parse_part_spec.
func ResolveLocalhost(name string) (string, error) {
	if name != "localhost" {
		return name, nil
	}
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("confparse: resolve localhost: %w", err)
	}
	return host, nil
}
