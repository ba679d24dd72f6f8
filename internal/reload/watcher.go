// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package reload polls a configuration file's modification time on an
// interval and reruns a load function when it changes. This supplements
// read_slurm_conf, which in the original daemon reconfigures only on
// SIGHUP or an explicit RPC — both out of scope here (spec.md §1 excludes
// the RPC layer) — with the simplest trigger that fits a library boundary.
package reload

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/jontk/slurmctld/pkg/logging"
)

// LoadFunc reruns the configuration load. Watcher does not know or care
// what it does beyond the returned error, which it logs.
type LoadFunc func(ctx context.Context) error

// Watcher polls path's mtime every Interval and invokes Load when it
// changes. The zero value is not usable; construct with NewWatcher.
type Watcher struct {
	path     string
	interval time.Duration
	load     LoadFunc
	logger   logging.Logger

	mu      sync.Mutex
	lastMod time.Time

	stop chan struct{}
	done chan struct{}
}

// NewWatcher returns a Watcher for path, polling every interval. It does
// not start polling; call Start.
func NewWatcher(path string, interval time.Duration, load LoadFunc, logger logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Watcher{
		path:     path,
		interval: interval,
		load:     load,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling in a background goroutine. It stats path once
// up front so the first subsequent change triggers a reload rather than
// the watcher's own startup.
func (w *Watcher) Start(ctx context.Context) {
	if fi, err := os.Stat(w.path); err == nil {
		w.lastMod = fi.ModTime()
	}

	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				w.checkAndReload(ctx)
			}
		}
	}()
}

// Stop signals the polling goroutine to exit and waits for it to finish.
func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Watcher) checkAndReload(ctx context.Context) {
	fi, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn("reload: unable to stat configuration file", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	changed := fi.ModTime().After(w.lastMod)
	if changed {
		w.lastMod = fi.ModTime()
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	w.logger.Info("reload: configuration file changed, reloading", "path", w.path)
	if err := w.load(ctx); err != nil {
		w.logger.Warn("reload: reload failed", "path", w.path, "error", err)
	}
}
