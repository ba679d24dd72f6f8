// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmctld

import (
	"github.com/jontk/slurmctld/internal/bitmap"
	"github.com/jontk/slurmctld/internal/hostlist"
	"github.com/jontk/slurmctld/internal/nodetable"
	"github.com/jontk/slurmctld/pkg/logging"
)

// buildBitmaps rebuilds the idle/up bitmaps, every config-group's node
// bitmap, and every partition's node bitmap from scratch, and sets each
// partition's TotalNodes/TotalCPUs. Grounded line-for-line on build_bitmaps
// in read_config.c. Caller must hold state's writer lock.
func buildBitmaps(state *ControllerState, logger logging.Logger) error {
	n := state.nodes.Count()

	state.idleNodeBitmap = bitmap.New(n)
	state.upNodeBitmap = bitmap.New(n)
	state.configs.AllocateBitmaps(n)
	state.partitions.AllocateBitmaps(n)

	for _, node := range state.nodes.Nodes() {
		if node.Name == "" {
			continue // defunct
		}
		i := node.Index
		if node.State == nodetable.StateIdle {
			state.idleNodeBitmap.Set(i)
		}
		up := node.State != nodetable.StateDown &&
			node.State != nodetable.StateUnknown &&
			node.State != nodetable.StateDrained &&
			!node.NoRespond
		if up {
			state.upNodeBitmap.Set(i)
		}
		if node.ConfigPtr != nil && node.ConfigPtr.NodeBitmap != nil {
			node.ConfigPtr.NodeBitmap.Set(i)
		}
	}

	allPartNodeBitmap := bitmap.New(n)
	for _, part := range state.partitions.Records() {
		if part.Nodes == "" {
			continue
		}
		expander, err := hostlist.Expand(part.Nodes)
		if err != nil {
			logger.Error("build_bitmaps: hostlist_create error", "partition", part.Name, "nodes", part.Nodes, "error", err)
			continue
		}
		for {
			name, ok := expander.Shift()
			if !ok {
				break
			}
			node := state.nodes.Find(name)
			if node == nil {
				logger.Error("build_bitmaps: invalid node name specified", "partition", part.Name, "node", name)
				continue
			}
			j := node.Index
			if allPartNodeBitmap.Test(j) {
				logger.Warn("build_bitmaps: node defined in more than one partition, only the first specification is honored",
					"node", name, "partition", part.Name)
				continue
			}
			part.NodeBitmap.Set(j)
			allPartNodeBitmap.Set(j)
			part.TotalNodes++
			if node.ConfigPtr != nil {
				part.TotalCPUs += int64(node.ConfigPtr.CPUs)
			}
			node.PartitionPtr = part
		}
	}
	return nil
}
