// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package confparse

import (
	"fmt"
	"net"
	"strconv"

	"github.com/jontk/slurmctld/internal/kvparser"
	"github.com/jontk/slurmctld/pkg/config"
	slurmerrors "github.com/jontk/slurmctld/pkg/errors"
)

// GlobalParser recognizes the overall-configuration keywords that appear
// outside any NodeName=/PartitionName= line, mirroring parse_config_spec.
type GlobalParser struct {
	Config *config.Config
}

// Parse consumes every overall-configuration key present on line. Keys
// absent from the line leave the corresponding Config field untouched, so
// calling this once per line across the whole file accumulates the final
// configuration incrementally.
func (p *GlobalParser) Parse(line *kvparser.Line) error {
	if err := p.parse(line); err != nil {
		return slurmerrors.NewParseError(slurmerrors.ErrorCodeBadToken, err.Error(), "", 0, line.String())
	}
	return nil
}

func (p *GlobalParser) parse(line *kvparser.Line) error {
	var slurmctldPort, slurmdPort string

	if err := kvparser.Parse(line,
		kvparser.Spec{Key: "ControlMachine=", Kind: kvparser.KindString, Str: &p.Config.ControlMachine},
		kvparser.Spec{Key: "BackupController=", Kind: kvparser.KindString, Str: &p.Config.BackupController},
		kvparser.Spec{Key: "StateSaveLocation=", Kind: kvparser.KindString, Str: &p.Config.StateSaveLocation},
		kvparser.Spec{Key: "Epilog=", Kind: kvparser.KindString, Str: &p.Config.Epilog},
		kvparser.Spec{Key: "Prolog=", Kind: kvparser.KindString, Str: &p.Config.Prolog},
		kvparser.Spec{Key: "FastSchedule=", Kind: kvparser.KindInt, Int: &p.Config.FastSchedule},
		kvparser.Spec{Key: "FirstJobId=", Kind: kvparser.KindLong, Long: &p.Config.FirstJobID},
		kvparser.Spec{Key: "HashBase=", Kind: kvparser.KindInt, Int: &p.Config.HashBase},
		kvparser.Spec{Key: "HeartbeatInterval=", Kind: kvparser.KindInt, Int: &p.Config.HeartbeatInterval},
		kvparser.Spec{Key: "KillWait=", Kind: kvparser.KindInt, Int: &p.Config.KillWait},
		kvparser.Spec{Key: "Prioritize=", Kind: kvparser.KindString, Str: &p.Config.Prioritize},
		kvparser.Spec{Key: "SlurmctldPort=", Kind: kvparser.KindString, Str: &slurmctldPort},
		kvparser.Spec{Key: "SlurmdPort=", Kind: kvparser.KindString, Str: &slurmdPort},
		kvparser.Spec{Key: "SlurmctldTimeout=", Kind: kvparser.KindInt, Int: &p.Config.SlurmctldTimeout},
		kvparser.Spec{Key: "SlurmdTimeout=", Kind: kvparser.KindInt, Int: &p.Config.SlurmdTimeout},
		kvparser.Spec{Key: "TmpFS=", Kind: kvparser.KindString, Str: &p.Config.TmpFS},
		kvparser.Spec{Key: "JobCredentialPrivateKey=", Kind: kvparser.KindString, Str: &p.Config.JobCredentialPrivateKey},
		kvparser.Spec{Key: "JobCredentialPublicCertificate=", Kind: kvparser.KindString, Str: &p.Config.JobCredentialPublicCertificate},
	); err != nil {
		return err
	}

	if slurmctldPort != "" {
		port, err := resolvePort(slurmctldPort)
		if err != nil {
			return fmt.Errorf("SlurmctldPort=: %w", err)
		}
		p.Config.SlurmctldPort = port
	}
	if slurmdPort != "" {
		port, err := resolvePort(slurmdPort)
		if err != nil {
			return fmt.Errorf("SlurmdPort=: %w", err)
		}
		p.Config.SlurmdPort = port
	}

	return nil
}

// resolvePort accepts either a numeric port or a service name resolved
// through the OS service database, matching read_config.c's acceptance of
// either form for SlurmctldPort=/SlurmdPort=.
func resolvePort(value string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	port, err := net.LookupPort("tcp", value)
	if err != nil {
		return 0, fmt.Errorf("invalid port or service name %q: %w", value, err)
	}
	return port, nil
}
