// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmctld

import (
	"sync"
	"time"

	"github.com/jontk/slurmctld/internal/bitmap"
	"github.com/jontk/slurmctld/internal/configgroup"
	"github.com/jontk/slurmctld/internal/jobtable"
	"github.com/jontk/slurmctld/internal/nodetable"
	"github.com/jontk/slurmctld/internal/partition"
	"github.com/jontk/slurmctld/pkg/config"
)

// ControllerState bundles the node, config-group, partition and job tables
// together with the derived bitmaps and the controller-wide configuration,
// behind a single reader/writer lock. ReadSlurmConf holds the writer role
// exclusively for the duration of a load; Snapshot takes the reader role,
// so callers never observe a partially-built table set.
type ControllerState struct {
	mu sync.RWMutex

	config     *config.Config
	nodes      *nodetable.Table
	configs    *configgroup.Table
	partitions *partition.Table
	jobs       *jobtable.Table

	idleNodeBitmap *bitmap.Bitmap
	upNodeBitmap   *bitmap.Bitmap
}

// newControllerState returns a freshly initialized state, equivalent to
// init_slurm_conf: empty node/config/partition/job tables and no bitmaps
// until the next build_bitmaps pass.
func newControllerState(cfg *config.Config) *ControllerState {
	return &ControllerState{
		config:     cfg,
		nodes:      nodetable.NewTable(),
		configs:    configgroup.NewTable(),
		partitions: partition.NewTable(),
		jobs:       jobtable.NewTable(),
	}
}

// Snapshot is a read-only view of the controller state at one point in
// time, the shape pkg/statusserver and tests consult.
type Snapshot struct {
	Config       config.Config
	Nodes        []*nodetable.Node
	ConfigGroups []*configgroup.Record
	Partitions   []*partition.Record
	Jobs         []*jobtable.Job

	IdleNodeBitmap *bitmap.Bitmap
	UpNodeBitmap   *bitmap.Bitmap
}

// Snapshot returns the current state under the reader lock.
func (s *ControllerState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Config:         *s.config,
		Nodes:          s.nodes.Nodes(),
		ConfigGroups:   s.configs.Records(),
		Partitions:     s.partitions.Records(),
		Jobs:           s.jobs.Jobs(),
		IdleNodeBitmap: s.idleNodeBitmap,
		UpNodeBitmap:   s.upNodeBitmap,
	}
}

// stampLastUpdate stamps the configuration's LastUpdate field; called at the end
// of a successful load, under the writer lock the caller already holds.
func (s *ControllerState) stampLastUpdate(t time.Time) {
	s.config.LastUpdate = t
}
