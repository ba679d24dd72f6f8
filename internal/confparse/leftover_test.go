// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package confparse

import (
	"strings"
	"testing"

	"github.com/jontk/slurmctld/internal/kvparser"
	"github.com/jontk/slurmctld/pkg/logging"
)

type capturingLogger struct {
	logging.NoOpLogger
	warnings []string
}

func (c *capturingLogger) Warn(msg string, args ...any) {
	c.warnings = append(c.warnings, msg)
}

func TestReportLeftoverCleanLine(t *testing.T) {
	line := kvparser.NewLine("   ")
	logger := &capturingLogger{}
	ReportLeftover(line, 1, logger)
	if len(logger.warnings) != 0 {
		t.Fatalf("expected no warning for an all-blank line, got %v", logger.warnings)
	}
}

func TestReportLeftoverUnrecognizedToken(t *testing.T) {
	line := kvparser.NewLine("NodeName=n0   Bogus=1")
	kvparser.LoadString(line, "NodeName=")
	logger := &capturingLogger{}
	ReportLeftover(line, 7, logger)
	if len(logger.warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d", len(logger.warnings))
	}
	if !strings.Contains(logger.warnings[0], "ignored") {
		t.Fatalf("warning message = %q, want it to mention ignored input", logger.warnings[0])
	}
}

func TestResolveLocalhostPassesThroughConcreteName(t *testing.T) {
	got, err := ResolveLocalhost("node01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "node01" {
		t.Fatalf("ResolveLocalhost(%q) = %q, want unchanged", "node01", got)
	}
}

func TestResolveLocalhostSubstitutesHostname(t *testing.T) {
	got, err := ResolveLocalhost("localhost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "localhost" || got == "" {
		t.Fatalf("ResolveLocalhost(localhost) = %q, want the actual hostname", got)
	}
}
