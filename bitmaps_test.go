// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmctld

import (
	"testing"

	"github.com/jontk/slurmctld/internal/nodetable"
	"github.com/jontk/slurmctld/pkg/config"
	"github.com/jontk/slurmctld/pkg/logging"
)

func TestBuildBitmapsMarksIdleAndUpNodes(t *testing.T) {
	state := newControllerState(config.NewDefault())
	cfgRec := state.configs.Create()
	n := state.nodes.Create("node1", cfgRec)
	n.State = nodetable.StateIdle

	if err := buildBitmaps(state, logging.NoOpLogger{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.idleNodeBitmap.Test(n.Index) {
		t.Fatal("expected node1 in the idle bitmap")
	}
	if !state.upNodeBitmap.Test(n.Index) {
		t.Fatal("expected node1 in the up bitmap")
	}
	if !cfgRec.NodeBitmap.Test(n.Index) {
		t.Fatal("expected node1 in its config-group bitmap")
	}
}

func TestBuildBitmapsExcludesDownAndNoRespondFromUp(t *testing.T) {
	state := newControllerState(config.NewDefault())
	down := state.nodes.Create("down1", nil)
	down.State = nodetable.StateDown
	noResp := state.nodes.Create("noresp1", nil)
	noResp.State = nodetable.StateIdle
	noResp.NoRespond = true

	if err := buildBitmaps(state, logging.NoOpLogger{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.upNodeBitmap.Test(down.Index) {
		t.Fatal("a DOWN node must not be in the up bitmap")
	}
	if state.upNodeBitmap.Test(noResp.Index) {
		t.Fatal("a no-respond node must not be in the up bitmap")
	}
	if !state.idleNodeBitmap.Test(noResp.Index) {
		t.Fatal("the no-respond node is still IDLE and must remain in the idle bitmap")
	}
}

func TestBuildBitmapsAssignsPartitionMembershipAndTotals(t *testing.T) {
	state := newControllerState(config.NewDefault())
	cfgRec := state.configs.Create()
	cfgRec.CPUs = 4
	state.nodes.Create("node1", cfgRec)
	state.nodes.Create("node2", cfgRec)

	part := state.partitions.Create("compute")
	part.Nodes = "node[1-2]"

	if err := buildBitmaps(state, logging.NoOpLogger{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if part.TotalNodes != 2 {
		t.Fatalf("TotalNodes = %d, want 2", part.TotalNodes)
	}
	if part.TotalCPUs != 8 {
		t.Fatalf("TotalCPUs = %d, want 8", part.TotalCPUs)
	}
	if state.nodes.Find("node1").PartitionPtr != part {
		t.Fatal("expected node1.PartitionPtr to point at compute")
	}
}

func TestBuildBitmapsFirstPartitionWinsOnOverlap(t *testing.T) {
	state := newControllerState(config.NewDefault())
	state.nodes.Create("node1", nil)

	first := state.partitions.Create("a")
	first.Nodes = "node1"
	second := state.partitions.Create("b")
	second.Nodes = "node1"

	if err := buildBitmaps(state, logging.NoOpLogger{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalNodes != 1 {
		t.Fatalf("first partition TotalNodes = %d, want 1", first.TotalNodes)
	}
	if second.TotalNodes != 0 {
		t.Fatalf("second partition TotalNodes = %d, want 0 (first declaration wins)", second.TotalNodes)
	}
}
