// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package jobtable holds the job records the configuration loader reads
// (never writes) during restart reconciliation. Ownership of jobs belongs
// to the scheduler; this core only consults State and NodeBitmap.
package jobtable

import "github.com/jontk/slurmctld/internal/bitmap"

// State is a job's scheduling state.
type State int

const (
	StatePending State = iota
	StateRunning
	StateSuspended
	StateComplete
	StateFailed
	StateTimeout
)

// Terminal reports whether jobs in this state are excluded from restart
// reconciliation: PENDING, COMPLETE, FAILED, TIMEOUT never hold nodes busy.
func (s State) Terminal() bool {
	switch s {
	case StatePending, StateComplete, StateFailed, StateTimeout:
		return true
	default:
		return false
	}
}

// Job is a job record, as read by the reconciliation step.
type Job struct {
	ID         int64
	State      State
	NodeBitmap *bitmap.Bitmap
}

// Table is the read-only view of the job list this core consults.
type Table struct {
	jobs []*Job
}

// NewTable returns an empty job table, used by tests and by callers that
// have no restart state to replay.
func NewTable() *Table {
	return &Table{}
}

// Add registers a job, used by internal/staterestore when replaying saved
// job state and by tests constructing a reconciliation fixture.
func (t *Table) Add(j *Job) {
	t.jobs = append(t.jobs, j)
}

// Jobs returns every job this core knows about.
func (t *Table) Jobs() []*Job {
	return t.jobs
}
