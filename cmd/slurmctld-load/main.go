// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Command slurmctld-load loads a configuration file with the slurmctld
// package and prints a summary of the resulting node, config-group, and
// partition tables.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jontk/slurmctld"
	"github.com/jontk/slurmctld/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var withRecover bool

	cmd := &cobra.Command{
		Use:          "slurmctld-load [config-file]",
		Short:        "load a slurm-style configuration file and print a summary",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], withRecover)
		},
	}
	cmd.Flags().BoolVar(&withRecover, "recover", false, "replay saved node/partition/job state before reconciling")
	return cmd
}

func runLoad(cmd *cobra.Command, confPath string, withRecover bool) error {
	loader := slurmctld.NewLoader(confPath, slurmctld.WithLogger(logging.DefaultLogger))

	if err := loader.ReadSlurmConf(context.Background(), withRecover); err != nil {
		return fmt.Errorf("loading %s: %w", confPath, err)
	}

	snap := loader.Snapshot()
	titleCaser := cases.Title(language.English)

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", titleCaser.String("control machine"), snap.Config.ControlMachine)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", titleCaser.String("nodes"), len(snap.Nodes))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", titleCaser.String("config groups"), len(snap.ConfigGroups))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", titleCaser.String("partitions"), len(snap.Partitions))
	for _, p := range snap.Partitions {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: nodes=%d cpus=%d\n", p.Name, p.TotalNodes, p.TotalCPUs)
	}
	return nil
}
