// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmctld

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jontk/slurmctld/internal/confparse"
	"github.com/jontk/slurmctld/internal/kvparser"
	"github.com/jontk/slurmctld/internal/staterestore"
	"github.com/jontk/slurmctld/pkg/config"
	slurmerrors "github.com/jontk/slurmctld/pkg/errors"
	"github.com/jontk/slurmctld/pkg/logging"
	"github.com/jontk/slurmctld/pkg/metrics"
	"github.com/jontk/slurmctld/pkg/retry"
)

// RecoverPaths names the optional state-save streams replayed when
// ReadSlurmConf is called with recover=true. A zero value for any field
// skips replay of that stream.
type RecoverPaths struct {
	NodeStatePath      string
	PartitionStatePath string
	JobStatePath       string
}

// Loader owns one ControllerState and the configuration path it is loaded
// from. A Loader is safe for concurrent use: Snapshot and ReadSlurmConf
// both go through ControllerState's lock.
type Loader struct {
	confPath string
	state    *ControllerState

	logger  logging.Logger
	metrics metrics.Collector
	backoff retry.BackoffStrategy

	recoverPaths RecoverPaths
}

// Option configures a Loader at construction.
type Option func(*Loader)

// WithLogger overrides the Loader's logger. Defaults to logging.DefaultLogger.
func WithLogger(logger logging.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithMetrics overrides the Loader's metrics collector. Defaults to a
// fresh metrics.InMemoryCollector.
func WithMetrics(collector metrics.Collector) Option {
	return func(l *Loader) { l.metrics = collector }
}

// WithBackoff overrides the backoff strategy used to open recover-mode
// state-save streams. Defaults to retry.NewExponentialBackoff().
func WithBackoff(backoff retry.BackoffStrategy) Option {
	return func(l *Loader) { l.backoff = backoff }
}

// WithRecoverPaths configures the state-save streams replayed when
// ReadSlurmConf(ctx, true) is called.
func WithRecoverPaths(paths RecoverPaths) Option {
	return func(l *Loader) { l.recoverPaths = paths }
}

// NewLoader returns a Loader configured to read confPath.
func NewLoader(confPath string, opts ...Option) *Loader {
	cfg := config.NewDefault()
	cfg.SlurmConfFile = confPath

	l := &Loader{
		confPath: confPath,
		state:    newControllerState(cfg),
		logger:   logging.DefaultLogger,
		metrics:  metrics.NewInMemoryCollector(),
		backoff:  retry.NewExponentialBackoff(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Snapshot returns the current controller state.
func (l *Loader) Snapshot() Snapshot {
	return l.state.Snapshot()
}

// ReadSlurmConf loads slurmctld.confPath into a fresh ControllerState, in
// the same step order as read_slurm_conf: parse every line, validate the
// required fields, rehash the node table, restore node run-state from the
// prior load by name, optionally replay recovery state, rebuild the
// bitmaps, and, if recovering, reconcile node state against job state. The
// new state replaces the old only on success; on any failure the prior
// state is restored untouched.
func (l *Loader) ReadSlurmConf(ctx context.Context, recover bool) error {
	loadID := uuid.New()
	start := time.Now()
	logger := l.logger.With("load_id", loadID.String(), "conf_path", l.confPath)

	err := l.readSlurmConf(ctx, recover, logger)

	duration := time.Since(start)
	l.metrics.RecordLoad(recover, duration, err)
	if err != nil {
		logging.LogError(logger, err, "read_slurm_conf", "duration_ms", duration.Milliseconds())
		return err
	}
	logger.Info("read_slurm_conf: finished loading configuration",
		"duration_ms", duration.Milliseconds())
	return nil
}

func (l *Loader) readSlurmConf(ctx context.Context, recover bool, logger logging.Logger) error {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	oldNodes := l.state.nodes
	oldConfig := l.state.config

	cfg := config.NewDefault()
	cfg.SlurmConfFile = oldConfig.SlurmConfFile
	cfg.StateSaveLocation = oldConfig.StateSaveLocation
	newState := newControllerState(cfg)

	if err := l.parseFile(newState, logger); err != nil {
		return err
	}

	if err := validateLoadedState(newState); err != nil {
		return err
	}

	if err := ensureStateSaveLocation(newState.config.StateSaveLocation); err != nil {
		return err
	}

	newState.nodes.Rehash()
	newState.nodes.RestoreStatesByName(oldNodes)

	if recover {
		if err := l.replayRecoverState(ctx, newState, logger); err != nil {
			return err
		}
	}

	if err := buildBitmaps(newState, logger); err != nil {
		return err
	}

	if recover {
		changed := syncNodesToJobs(newState)
		l.metrics.RecordReconcile(changed)
		if changed > 0 {
			logger.Info("sync_nodes_to_jobs updated node state", "nodes_changed", changed)
		}
	}

	newState.configs.SortByWeight()
	newState.stampLastUpdate(time.Now())

	l.state.config = newState.config
	l.state.nodes = newState.nodes
	l.state.configs = newState.configs
	l.state.partitions = newState.partitions
	l.state.jobs = newState.jobs
	l.state.idleNodeBitmap = newState.idleNodeBitmap
	l.state.upNodeBitmap = newState.upNodeBitmap
	return nil
}

// parseFile reads confPath line by line, stripping comments, and dispatches
// each line to the global, node, and partition parsers in turn, then
// reports any leftover unrecognized tokens.
func (l *Loader) parseFile(state *ControllerState, logger logging.Logger) error {
	f, err := os.Open(state.config.SlurmConfFile)
	if err != nil {
		return slurmerrors.NewFatalError(slurmerrors.ErrorCodeFileNotOpenable,
			fmt.Sprintf("opening configuration file %s", state.config.SlurmConfFile), err)
	}
	defer f.Close()

	logger.Info("read_slurm_conf: loading configuration", "path", state.config.SlurmConfFile)

	global := &confparse.GlobalParser{Config: state.config}
	nodeParser := &confparse.NodeParser{Nodes: state.nodes, Configs: state.configs, Logger: logger}
	partParser := &confparse.PartitionParser{Partitions: state.partitions, Logger: logger}

	const maxLineLength = 1024      // matches read_config.c's BUF_SIZE (rejected at strlen >= BUF_SIZE-1)
	const scannerBufCap = 1 << 16   // generous headroom so the scanner itself never truncates first
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, scannerBufCap), scannerBufCap)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := stripComment(scanner.Text())
		if len(raw) >= maxLineLength-1 {
			return slurmerrors.NewParseError(slurmerrors.ErrorCodeLineTooLong,
				fmt.Sprintf("line %d too long", lineNum), state.config.SlurmConfFile, lineNum, raw)
		}

		line := kvparser.NewLine(raw)
		if err := global.Parse(line); err != nil {
			return annotateParseError(err, state.config.SlurmConfFile, lineNum)
		}
		if err := nodeParser.Parse(line); err != nil {
			return annotateParseError(err, state.config.SlurmConfFile, lineNum)
		}
		if err := partParser.Parse(line); err != nil {
			return annotateParseError(err, state.config.SlurmConfFile, lineNum)
		}
		confparse.ReportLeftover(line, lineNum, logger)
	}
	if err := scanner.Err(); err != nil {
		return slurmerrors.NewFatalError(slurmerrors.ErrorCodeFileNotOpenable, "reading configuration file", err)
	}
	return nil
}

// stripComment truncates s at the first unescaped '#', matching
// read_slurm_conf's comment-stripping loop.
func stripComment(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '#' && !escaped {
			break
		}
		escaped = r == '\\'
		b.WriteRune(r)
	}
	return b.String()
}

func annotateParseError(err error, file string, lineNum int) error {
	var slurmErr *slurmerrors.SlurmError
	if se, ok := err.(*slurmerrors.SlurmError); ok {
		slurmErr = se
	} else if pe, ok := err.(*slurmerrors.ParseError); ok {
		slurmErr = pe.SlurmError
	} else {
		return err
	}
	slurmErr.File = file
	slurmErr.Line = lineNum
	return slurmErr
}

func validateLoadedState(state *ControllerState) error {
	if state.config.ControlMachine == "" {
		return slurmerrors.NewSemanticError(slurmerrors.ErrorCodeNoControlMachine,
			"read_slurm_conf: control_machine value not specified")
	}
	if state.partitions.DefaultRecord() == nil {
		return slurmerrors.NewSemanticError(slurmerrors.ErrorCodeNoDefaultPart,
			"read_slurm_conf: default partition not set")
	}
	if state.nodes.Count() < 1 {
		return slurmerrors.NewSemanticError(slurmerrors.ErrorCodeNoNodes,
			"read_slurm_conf: no nodes configured")
	}
	return nil
}

// ensureStateSaveLocation creates the state-save directory if it does not
// already exist, whether the path came from an explicit StateSaveLocation=
// line or the default, matching read_config.c's mkdir of StateSaveLocation.
func ensureStateSaveLocation(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(path, 0o744); err != nil {
		return slurmerrors.NewSlurmErrorWithCause(slurmerrors.ErrorCodeFileNotOpenable,
			fmt.Sprintf("creating StateSaveLocation %s", path), err)
	}
	return nil
}

func (l *Loader) replayRecoverState(ctx context.Context, state *ControllerState, logger logging.Logger) error {
	if l.recoverPaths.NodeStatePath != "" {
		f, err := staterestore.OpenStream(ctx, l.recoverPaths.NodeStatePath, l.backoff)
		if err != nil {
			logger.Warn("load_node_state: unable to open state file", "path", l.recoverPaths.NodeStatePath, "error", err)
		} else {
			count, err := staterestore.LoadNodeState(f, state.nodes)
			f.Close()
			if err != nil {
				logger.Warn("load_node_state failed", "error", err)
			} else {
				logger.Info("load_node_state replayed saved node state", "count", count)
			}
		}
	}
	if l.recoverPaths.PartitionStatePath != "" {
		f, err := staterestore.OpenStream(ctx, l.recoverPaths.PartitionStatePath, l.backoff)
		if err != nil {
			logger.Warn("load_part_state: unable to open state file", "path", l.recoverPaths.PartitionStatePath, "error", err)
		} else {
			count, err := staterestore.LoadPartitionState(f, state.partitions)
			f.Close()
			if err != nil {
				logger.Warn("load_part_state failed", "error", err)
			} else {
				logger.Info("load_part_state replayed saved partition state", "count", count)
			}
		}
	}
	if l.recoverPaths.JobStatePath != "" {
		f, err := staterestore.OpenStream(ctx, l.recoverPaths.JobStatePath, l.backoff)
		if err != nil {
			logger.Warn("load_job_state: unable to open state file", "path", l.recoverPaths.JobStatePath, "error", err)
		} else {
			count, err := staterestore.LoadJobState(f, state.jobs, state.nodes.Count())
			f.Close()
			if err != nil {
				logger.Warn("load_job_state failed", "error", err)
			} else {
				logger.Info("load_job_state replayed saved job state", "count", count)
			}
		}
	}
	return nil
}
