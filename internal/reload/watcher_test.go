// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package reload

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jontk/slurmctld/pkg/logging"
)

func TestWatcherTriggersReloadOnModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slurm.conf")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	var calls int32
	w := NewWatcher(path, 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, logging.NoOpLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("expected no reload before the file changes")
	}

	time.Sleep(15 * time.Millisecond) // ensure a distinct mtime on coarse filesystems
	if err := os.WriteFile(path, []byte("v2"), 0o600); err != nil {
		t.Fatalf("modifying file: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&calls) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&calls) == 0 {
		t.Fatal("expected at least one reload after the file changed")
	}
}

func TestWatcherStopEndsPolling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slurm.conf")
	os.WriteFile(path, []byte("v1"), 0o600)

	w := NewWatcher(path, 5*time.Millisecond, func(ctx context.Context) error { return nil }, logging.NoOpLogger{})
	w.Start(context.Background())
	w.Stop()
	// Stop must return once the goroutine has exited; reaching here is the assertion.
}
