// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmctld

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jontk/slurmctld/internal/nodetable"
	"github.com/jontk/slurmctld/pkg/logging"
)

func writeConf(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "slurm.conf")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

const minimalConf = `
ControlMachine=ctrl1
NodeName=node[1-4] Procs=4 RealMemory=8000
PartitionName=compute Nodes=node[1-4] Default=YES
`

func TestReadSlurmConfLoadsMinimalConfiguration(t *testing.T) {
	path := writeConf(t, minimalConf)
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := loader.Snapshot()
	if snap.Config.ControlMachine != "ctrl1" {
		t.Fatalf("ControlMachine = %q, want ctrl1", snap.Config.ControlMachine)
	}
	if len(snap.Nodes) != 4 {
		t.Fatalf("len(Nodes) = %d, want 4", len(snap.Nodes))
	}
	if len(snap.Partitions) != 1 || snap.Partitions[0].Name != "compute" {
		t.Fatalf("Partitions = %+v, want one partition named compute", snap.Partitions)
	}
	if snap.Partitions[0].TotalNodes != 4 {
		t.Fatalf("TotalNodes = %d, want 4", snap.Partitions[0].TotalNodes)
	}
	for _, n := range snap.Nodes {
		if !snap.UpNodeBitmap.Test(n.Index) {
			t.Fatalf("expected node %s to be up", n.Name)
		}
	}
}

func TestReadSlurmConfFailsWithoutControlMachine(t *testing.T) {
	path := writeConf(t, "NodeName=node1 Procs=4\nPartitionName=compute Nodes=node1 Default=YES\n")
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err == nil {
		t.Fatal("expected an error when ControlMachine is missing")
	}
}

func TestReadSlurmConfFailsWithoutDefaultPartition(t *testing.T) {
	path := writeConf(t, "ControlMachine=ctrl1\nNodeName=node1 Procs=4\nPartitionName=compute Nodes=node1\n")
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err == nil {
		t.Fatal("expected an error when no partition is marked default")
	}
}

func TestReadSlurmConfFailsWithoutNodes(t *testing.T) {
	path := writeConf(t, "ControlMachine=ctrl1\nPartitionName=compute Default=YES\n")
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err == nil {
		t.Fatal("expected an error when no nodes are configured")
	}
}

func TestReadSlurmConfPreservesNodeStateAcrossReload(t *testing.T) {
	path := writeConf(t, minimalConf)
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loader.state.mu.Lock()
	loader.state.nodes.Find("node2").State = nodetable.StateDrained
	loader.state.mu.Unlock()

	if err := loader.ReadSlurmConf(context.Background(), false); err != nil {
		t.Fatalf("unexpected error on reload: %v", err)
	}
	snap := loader.Snapshot()
	for _, n := range snap.Nodes {
		if n.Name == "node2" && n.State != nodetable.StateDrained {
			t.Fatalf("node2 state = %v, want Drained to survive the reload", n.State)
		}
	}
}

func TestReadSlurmConfRestoresPriorStateOnFailedReload(t *testing.T) {
	path := writeConf(t, minimalConf)
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))
	if err := loader.ReadSlurmConf(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(path, []byte("ControlMachine=ctrl1\n"), 0o600); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}
	if err := loader.ReadSlurmConf(context.Background(), false); err == nil {
		t.Fatal("expected the broken reload to fail")
	}

	snap := loader.Snapshot()
	if len(snap.Nodes) != 4 {
		t.Fatalf("len(Nodes) = %d, want the prior 4-node state preserved after a failed reload", len(snap.Nodes))
	}
}

func TestReadSlurmConfCreatesStateSaveLocation(t *testing.T) {
	dir := t.TempDir()
	saveDir := filepath.Join(dir, "save")
	conf := "ControlMachine=ctrl1\nStateSaveLocation=" + saveDir + "\nNodeName=node1 Procs=4\nPartitionName=compute Nodes=node1 Default=YES\n"
	path := writeConf(t, conf)
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(saveDir)
	if err != nil {
		t.Fatalf("expected StateSaveLocation to be created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("StateSaveLocation = not a directory")
	}
}

func TestReadSlurmConfRejectsLineAtBufSizeLimit(t *testing.T) {
	long := "ControlMachine=" + strings.Repeat("a", 1024)
	path := writeConf(t, long+"\nNodeName=node1 Procs=4\nPartitionName=compute Nodes=node1 Default=YES\n")
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err == nil {
		t.Fatal("expected a line at the 1024-byte BUF_SIZE limit to be rejected")
	}
}

func TestReadSlurmConfAcceptsLineUnderBufSizeLimit(t *testing.T) {
	long := "ControlMachine=ctrl1 Prioritize=" + strings.Repeat("a", 900)
	path := writeConf(t, long+"\nNodeName=node1 Procs=4\nPartitionName=compute Nodes=node1 Default=YES\n")
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))

	if err := loader.ReadSlurmConf(context.Background(), false); err != nil {
		t.Fatalf("unexpected error for a line under the BUF_SIZE limit: %v", err)
	}
}

func TestReadSlurmConfDetectsDuplicatePartitionNode(t *testing.T) {
	conf := `
ControlMachine=ctrl1
NodeName=node[1-2] Procs=4
PartitionName=a Nodes=node1 Default=YES
PartitionName=b Nodes=node[1-2]
`
	path := writeConf(t, conf)
	loader := NewLoader(path, WithLogger(logging.NoOpLogger{}))
	if err := loader.ReadSlurmConf(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := loader.Snapshot()
	for _, p := range snap.Partitions {
		if p.Name == "a" && p.TotalNodes != 1 {
			t.Fatalf("partition a TotalNodes = %d, want 1", p.TotalNodes)
		}
		if p.Name == "b" && p.TotalNodes != 1 {
			t.Fatalf("partition b TotalNodes = %d, want 1 (node1 already claimed by partition a)", p.TotalNodes)
		}
	}
}
