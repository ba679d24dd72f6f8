// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package jobtable

import (
	"testing"

	"github.com/jontk/slurmctld/internal/bitmap"
)

func TestTerminalStates(t *testing.T) {
	cases := map[State]bool{
		StatePending:   true,
		StateRunning:   false,
		StateSuspended: false,
		StateComplete:  true,
		StateFailed:    true,
		StateTimeout:   true,
	}
	for state, want := range cases {
		if got := state.Terminal(); got != want {
			t.Fatalf("State(%d).Terminal() = %v, want %v", state, got, want)
		}
	}
}

func TestAddAndJobs(t *testing.T) {
	tbl := NewTable()
	bm := bitmap.New(4)
	bm.Set(1)
	tbl.Add(&Job{ID: 1, State: StateRunning, NodeBitmap: bm})

	jobs := tbl.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("len(Jobs()) = %d, want 1", len(jobs))
	}
	if jobs[0].ID != 1 || jobs[0].State != StateRunning {
		t.Fatalf("jobs[0] = %+v, want ID=1 State=Running", jobs[0])
	}
	if !jobs[0].NodeBitmap.Test(1) {
		t.Fatal("expected NodeBitmap bit 1 set")
	}
}

func TestNewTableEmpty(t *testing.T) {
	tbl := NewTable()
	if len(tbl.Jobs()) != 0 {
		t.Fatal("expected a fresh table to have no jobs")
	}
}
