// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Command slurmctld-statusd loads a configuration file, watches it for
// changes, and serves a read-only snapshot of the resulting state over
// HTTP and WebSocket via pkg/statusserver.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jontk/slurmctld"
	"github.com/jontk/slurmctld/internal/reload"
	"github.com/jontk/slurmctld/pkg/logging"
	"github.com/jontk/slurmctld/pkg/statusserver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr         string
		pollInterval time.Duration
		withRecover  bool
	)

	cmd := &cobra.Command{
		Use:          "slurmctld-statusd [config-file]",
		Short:        "serve a read-only snapshot of a slurm-style configuration over HTTP",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatusd(cmd, args[0], addr, pollInterval, withRecover)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to serve /snapshot and /ws on")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 5*time.Second, "how often to check the configuration file for changes")
	cmd.Flags().BoolVar(&withRecover, "recover", false, "replay saved node/partition/job state on every reload")
	return cmd
}

func runStatusd(cmd *cobra.Command, confPath, addr string, pollInterval time.Duration, withRecover bool) error {
	logger := logging.DefaultLogger
	loader := slurmctld.NewLoader(confPath, slurmctld.WithLogger(logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loader.ReadSlurmConf(ctx, withRecover); err != nil {
		return fmt.Errorf("loading %s: %w", confPath, err)
	}

	srv := statusserver.NewServer(loader, logger)

	watcher := reload.NewWatcher(confPath, pollInterval, func(ctx context.Context) error {
		if err := loader.ReadSlurmConf(ctx, withRecover); err != nil {
			return err
		}
		srv.BroadcastReload()
		return nil
	}, logger)
	watcher.Start(ctx)
	defer watcher.Stop()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("slurmctld-statusd: serving", "addr", addr, "conf_path", confPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("slurmctld-statusd: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
