// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package staterestore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jontk/slurmctld/internal/bitmap"
	"github.com/jontk/slurmctld/internal/jobtable"
	"github.com/jontk/slurmctld/internal/nodetable"
	"github.com/jontk/slurmctld/internal/partition"
)

// LoadNodeState replays a node state-save stream, overwriting State and
// NoRespond on every node the stream names that still exists in nodes. A
// name no longer present in the loaded table (a node removed from the
// configuration file) is skipped, not an error: node removal is this
// core's Non-goal, but a stream written before that removal can still be
// replayed safely. Returns the number of nodes updated.
func LoadNodeState(r io.Reader, nodes *nodetable.Table) (int, error) {
	count := 0
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec nodeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return count, fmt.Errorf("staterestore: node state line %d: %w", lineNum, err)
		}
		n := nodes.Find(rec.Name)
		if n == nil {
			continue
		}
		n.State = nodetable.State(rec.State)
		n.NoRespond = rec.NoRespond
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("staterestore: reading node state stream: %w", err)
	}
	return count, nil
}

// LoadPartitionState replays a partition state-save stream, overwriting
// TotalNodes and TotalCPUs on every partition the stream names. These
// fields are also recomputed by build_bitmaps: in ReadSlurmConf this replay
// runs before build_bitmaps, which resets and recounts both fields, so the
// replayed values do not survive a load.
func LoadPartitionState(r io.Reader, parts *partition.Table) (int, error) {
	count := 0
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec partitionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return count, fmt.Errorf("staterestore: partition state line %d: %w", lineNum, err)
		}
		p := parts.Find(rec.Name)
		if p == nil {
			continue
		}
		p.TotalNodes = rec.TotalNodes
		p.TotalCPUs = rec.TotalCPUs
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("staterestore: reading partition state stream: %w", err)
	}
	return count, nil
}

// LoadJobState replays a job state-save stream into jobs, rebuilding each
// job's NodeBitmap at the current node-table width from the saved node
// indices. This is the input to sync_nodes_to_jobs: jobs are authoritative
// over node allocation on restart.
func LoadJobState(r io.Reader, jobs *jobtable.Table, nodeCount int) (int, error) {
	count := 0
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		lineNum++
		if len(line) == 0 {
			continue
		}
		var rec jobRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return count, fmt.Errorf("staterestore: job state line %d: %w", lineNum, err)
		}
		bm := bitmap.New(nodeCount)
		for _, idx := range rec.NodeIndices {
			if idx < 0 || idx >= nodeCount {
				continue // node no longer in the table; ignore the stale index
			}
			bm.Set(idx)
		}
		jobs.Add(&jobtable.Job{
			ID:         rec.ID,
			State:      jobtable.State(rec.State),
			NodeBitmap: bm,
		})
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("staterestore: reading job state stream: %w", err)
	}
	return count, nil
}
