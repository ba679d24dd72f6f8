// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package kvparser

import "testing"

func TestLoadStringConsumesToken(t *testing.T) {
	line := NewLine("NodeName=node[0-3] Procs=2")
	name, ok := LoadString(line, "NodeName=")
	if !ok || name != "node[0-3]" {
		t.Fatalf("LoadString() = %q, %v, want node[0-3], true", name, ok)
	}
	if line.String() != "                   Procs=2" {
		t.Fatalf("line after LoadString = %q", line.String())
	}
}

func TestLoadStringAbsent(t *testing.T) {
	line := NewLine("Procs=2")
	if _, ok := LoadString(line, "NodeName="); ok {
		t.Fatal("expected no match for absent key")
	}
}

func TestParseMixedTypes(t *testing.T) {
	line := NewLine("Procs=4 Feature=fast RealMemory=2048")
	var procs, mem int
	var feature string
	err := Parse(line,
		Spec{Key: "Procs=", Kind: KindInt, Int: &procs},
		Spec{Key: "Feature=", Kind: KindString, Str: &feature},
		Spec{Key: "RealMemory=", Kind: KindInt, Int: &mem},
	)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if procs != 4 || feature != "fast" || mem != 2048 {
		t.Fatalf("got procs=%d feature=%q mem=%d", procs, feature, mem)
	}
}

func TestParseLeavesUnmatchedKeysUntouched(t *testing.T) {
	line := NewLine("Procs=4")
	weight := 7
	err := Parse(line, Spec{Key: "Weight=", Kind: KindInt, Int: &weight})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if weight != 7 {
		t.Fatalf("weight = %d, want unchanged 7", weight)
	}
}

func TestParseInvalidIntReturnsError(t *testing.T) {
	line := NewLine("Procs=notanumber")
	var procs int
	err := Parse(line, Spec{Key: "Procs=", Kind: KindInt, Int: &procs})
	if err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

func TestParseOverwritesWithSpacesForChaining(t *testing.T) {
	line := NewLine("NodeName=n0 Procs=2 State=IDLE")
	_, _ = LoadString(line, "NodeName=")
	var procs int
	var state string
	if err := Parse(line,
		Spec{Key: "Procs=", Kind: KindInt, Int: &procs},
		Spec{Key: "State=", Kind: KindString, Str: &state},
	); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	for _, r := range line.String() {
		if r != ' ' {
			t.Fatalf("expected fully blanked line, got %q", line.String())
		}
	}
}

func TestLeftoverTokenDetected(t *testing.T) {
	line := NewLine("NodeName=n0 Bogus=1")
	_, _ = LoadString(line, "NodeName=")
	remaining := line.String()
	hasNonSpace := false
	for _, r := range remaining {
		if r != ' ' {
			hasNonSpace = true
			break
		}
	}
	if !hasNonSpace {
		t.Fatal("expected leftover non-whitespace for unrecognized token")
	}
}
