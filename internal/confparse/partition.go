// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package confparse

import (
	"fmt"

	"github.com/jontk/slurmctld/internal/kvparser"
	"github.com/jontk/slurmctld/internal/partition"
	slurmerrors "github.com/jontk/slurmctld/pkg/errors"
	"github.com/jontk/slurmctld/pkg/logging"
)

// PartitionParser recognizes PartitionName= lines, mirroring parse_part_spec.
type PartitionParser struct {
	Partitions *partition.Table
	Logger     logging.Logger
}

// Parse dispatches one PartitionName= line. A line naming "DEFAULT" updates
// the partition template without creating a partition; Default=YES on a
// concrete partition repoints the default-partition designation.
func (p *PartitionParser) Parse(line *kvparser.Line) error {
	nameField, ok := kvparser.LoadString(line, "PartitionName=")
	if !ok {
		return nil
	}

	maxTime, maxNodes := partition.NoVal, partition.NoVal
	var rootOnlyStr, stateStr, sharedStr, defaultStr, allowGroups, nodes string

	if err := kvparser.Parse(line,
		kvparser.Spec{Key: "MaxTime=", Kind: kvparser.KindInt, Int: &maxTime},
		kvparser.Spec{Key: "MaxNodes=", Kind: kvparser.KindInt, Int: &maxNodes},
		kvparser.Spec{Key: "RootOnly=", Kind: kvparser.KindString, Str: &rootOnlyStr},
		kvparser.Spec{Key: "State=", Kind: kvparser.KindString, Str: &stateStr},
		kvparser.Spec{Key: "Shared=", Kind: kvparser.KindString, Str: &sharedStr},
		kvparser.Spec{Key: "Default=", Kind: kvparser.KindString, Str: &defaultStr},
		kvparser.Spec{Key: "AllowGroups=", Kind: kvparser.KindString, Str: &allowGroups},
		kvparser.Spec{Key: "Nodes=", Kind: kvparser.KindString, Str: &nodes},
	); err != nil {
		return slurmerrors.NewParseError(slurmerrors.ErrorCodeBadToken, err.Error(), "", 0, line.String())
	}

	rootOnly, err := parseYesNo("RootOnly", rootOnlyStr)
	if err != nil {
		return slurmerrors.NewParseError(slurmerrors.ErrorCodeBadToken, err.Error(), "", 0, line.String())
	}
	stateUp, err := parseUpDown(stateStr)
	if err != nil {
		return slurmerrors.NewParseError(slurmerrors.ErrorCodeBadToken, err.Error(), "", 0, line.String())
	}
	shared, err := parseShared(sharedStr)
	if err != nil {
		return slurmerrors.NewParseError(slurmerrors.ErrorCodeInvalidShared, err.Error(), "", 0, line.String())
	}

	if nodes != "" {
		resolved, err := ResolveLocalhost(nodes)
		if err != nil {
			return slurmerrors.NewSlurmErrorWithCause(slurmerrors.ErrorCodeBadToken, "resolving localhost", err)
		}
		nodes = resolved
	}

	if nameField == "DEFAULT" {
		p.Partitions.ApplyDefault(int32(maxTime), int32(maxNodes), rootOnly, stateUp, shared, allowGroups, nodes)
		return nil
	}

	rec := p.Partitions.Find(nameField)
	if rec == nil {
		rec = p.Partitions.Create(nameField)
	} else if p.Logger != nil {
		p.Logger.Warn("duplicate PartitionName= entry, merging into the existing record",
			"partition", nameField)
	}
	if maxTime != partition.NoVal {
		rec.MaxTime = int32(maxTime)
	}
	if maxNodes != partition.NoVal {
		rec.MaxNodes = int32(maxNodes)
	}
	if rootOnly != nil {
		rec.RootOnly = *rootOnly
	}
	if stateUp != nil {
		rec.StateUp = *stateUp
	}
	if shared != nil {
		rec.Shared = *shared
	}
	if allowGroups != "" {
		rec.AllowGroups = allowGroups
	}
	if nodes != "" {
		rec.Nodes = nodes
	}

	if isYes(defaultStr) {
		if prior := p.Partitions.DefaultName(); prior != "" && prior != nameField && p.Logger != nil {
			p.Logger.Info("default partition repointed", "from", prior, "to", nameField)
		}
		p.Partitions.SetDefault(nameField, rec)
	}
	return nil
}

func parseYesNo(field, s string) (*bool, error) {
	switch s {
	case "":
		return nil, nil
	case "YES":
		v := true
		return &v, nil
	case "NO":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("confparse: invalid %s value %q", field, s)
	}
}

func parseUpDown(s string) (*bool, error) {
	switch s {
	case "":
		return nil, nil
	case "UP":
		v := true
		return &v, nil
	case "DOWN":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("confparse: invalid partition State value %q", s)
	}
}

func parseShared(s string) (*partition.SharedPolicy, error) {
	switch s {
	case "":
		return nil, nil
	case "NO":
		v := partition.SharedNo
		return &v, nil
	case "YES":
		v := partition.SharedYes
		return &v, nil
	case "FORCE":
		v := partition.SharedForce
		return &v, nil
	default:
		return nil, fmt.Errorf("confparse: invalid Shared value %q", s)
	}
}

func isYes(s string) bool {
	return s == "YES"
}
