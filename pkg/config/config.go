// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package config holds the controller-wide singleton configuration values
// parsed from the "overall configuration" lines of the configuration file.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the controller-wide configuration values. Fields mirror the
// "overall configuration" keywords accepted by the configuration file's
// top-level (non-NodeName, non-PartitionName) lines.
type Config struct {
	// ControlMachine is the hostname of the primary controller. Required.
	ControlMachine string

	// BackupController is the hostname of the standby controller, if any.
	BackupController string

	// SlurmConfFile is the path to the configuration file to load.
	SlurmConfFile string

	// StateSaveLocation is the directory holding saved node/partition/job state.
	StateSaveLocation string

	// Epilog and Prolog are paths to job epilogue/prologue scripts.
	Epilog string
	Prolog string

	// FastSchedule, when non-zero, schedules based on configured rather than
	// actual node resources.
	FastSchedule int

	// FirstJobID is the numeric ID assigned to the first job submitted.
	FirstJobID int64

	// HashBase is the node-name hashing base set by HashBase=. The node
	// table hashes names with a Go map and does not read this value.
	HashBase int

	// HeartbeatInterval is the seconds between expected worker-node heartbeats.
	HeartbeatInterval int

	// KillWait is the seconds given to a job to terminate gracefully.
	KillWait int

	// Prioritize is the path to an external job-priority plugin, if any.
	Prioritize string

	// SlurmctldPort and SlurmdPort are the controller/worker-daemon RPC ports.
	SlurmctldPort int
	SlurmdPort    int

	// SlurmctldTimeout and SlurmdTimeout are failover/dead-node timeouts, in seconds.
	SlurmctldTimeout int
	SlurmdTimeout    int

	// TmpFS is the path used for a node's temporary disk space.
	TmpFS string

	// JobCredentialPrivateKey and JobCredentialPublicCertificate locate the
	// keypair used to sign/verify job credentials.
	JobCredentialPrivateKey        string
	JobCredentialPublicCertificate string

	// LastUpdate is the timestamp of the most recently completed load.
	LastUpdate time.Time
}

// NewDefault creates a new configuration with default values, overridable
// by environment variables sharing the controller's historical naming.
func NewDefault() *Config {
	return &Config{
		SlurmConfFile:     getEnvOrDefault("SLURMCTLD_CONF", "/etc/slurm/slurm.conf"),
		StateSaveLocation: getEnvOrDefault("SLURMCTLD_STATE_SAVE_LOCATION", "/var/spool/slurmctld"),
		FastSchedule:      1,
		FirstJobID:        1,
		HashBase:          10,
		HeartbeatInterval: 60,
		KillWait:          30,
		SlurmctldPort:     6817,
		SlurmdPort:        6818,
		SlurmctldTimeout:  300,
		SlurmdTimeout:     300,
		TmpFS:             "/tmp",
	}
}

// Load loads configuration from environment variables, overriding any
// already-set fields.
func (c *Config) Load() {
	if v := os.Getenv("SLURMCTLD_CONF"); v != "" {
		c.SlurmConfFile = v
	}
	if v := os.Getenv("SLURMCTLD_STATE_SAVE_LOCATION"); v != "" {
		c.StateSaveLocation = v
	}
	if v := os.Getenv("SLURMCTLD_CONTROL_MACHINE"); v != "" {
		c.ControlMachine = v
	}
	if v := os.Getenv("SLURMCTLD_FAST_SCHEDULE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.FastSchedule = i
		}
	}
}

// Validate validates the configuration invariants that must hold before a
// load is attempted.
func (c *Config) Validate() error {
	if c.SlurmConfFile == "" {
		return ErrMissingConfFile
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
