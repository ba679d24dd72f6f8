package config

import "errors"

var (
	// ErrMissingConfFile is returned when no configuration file path is set.
	ErrMissingConfFile = errors.New("configuration file path is required")

	// ErrNoControlMachine describes a configuration that never sets a
	// control machine. The loader does not return it; it reports that case
	// as a pkg/errors semantic error with ErrorCodeNoControlMachine.
	ErrNoControlMachine = errors.New("control_machine value not specified")
)
