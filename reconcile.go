// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmctld

import (
	"github.com/jontk/slurmctld/internal/nodetable"
)

// syncNodesToJobs marks every node referenced by a non-terminal job's
// bitmap as ALLOCATED, preserving NoRespond, and returns the count of nodes
// changed. Grounded line-for-line on sync_nodes_to_jobs in read_config.c:
// on restart, jobs are authoritative over node allocation state, since the
// node count vastly exceeds the job count and a full node-state replay
// would be needlessly expensive.
func syncNodesToJobs(state *ControllerState) int {
	updateCount := 0
	nodeCount := state.nodes.Count()
	for _, job := range state.jobs.Jobs() {
		if job.State.Terminal() {
			continue
		}
		if job.NodeBitmap == nil {
			continue
		}
		for i := 0; i < nodeCount; i++ {
			if !job.NodeBitmap.Test(i) {
				continue
			}
			node := state.nodes.Nodes()[i]
			if node.State == nodetable.StateAllocated {
				continue // already in proper state
			}
			node.State = nodetable.StateAllocated
			updateCount++
		}
	}
	return updateCount
}
