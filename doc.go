// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

/*
Package slurmctld is the configuration-loading and state-reconciliation
core of a cluster resource manager's central controller.

It owns the node, config-group, and partition tables, derives the
scheduling bitmaps used by the rest of the controller, and reconciles
restored job state against restored node state after a controller
restart. The RPC layer, scheduler proper, authentication, and worker-daemon
protocol are external collaborators; this package only touches them at
their interface (a job's node bitmap, a node's saved state).

# Overview

A single Loader owns a ControllerState: the node table, the config-group
table, the partition table, and the global singletons (controller
configuration, default templates, default-partition pointer, idle/up
bitmaps). ReadSlurmConf loads (or reloads) that state from a configuration
file:

	loader := slurmctld.NewLoader(cfgPath, slurmctld.WithLogger(logger))
	if err := loader.ReadSlurmConf(ctx, false); err != nil {
	    log.Fatal(err)
	}
	snap := loader.Snapshot()

# Reconfiguration

ReadSlurmConf may be called more than once. Each call holds the
controller's write lock for its duration; readers (via Snapshot) always
see a complete pre-load or post-load state, never an intermediate one. On
any failure, the previous state is kept unchanged. On success, each node's
state from the previous node table is copied by name into the freshly
parsed table, so existing node state survives a config change.

# Restart recovery

When recover is true, ReadSlurmConf additionally replays saved node,
partition, and job state from the configured state-save location (see
internal/staterestore) and then reconciles node state against restored
job state: jobs are authoritative over nodes on restart, and any node
referenced by a non-terminal job's bitmap is promoted to the allocated
state.

# Error handling

Errors are classified through pkg/errors into four categories: parse
errors and semantic errors abort the in-progress load; warnings are
logged and the load continues; fatal errors (allocation failure, an
unopenable configuration file) abort the load and are returned with the
fatal category (see SlurmError.IsFatal). ReadSlurmConf does not exit the
process itself; that is left to the caller.
*/
package slurmctld
