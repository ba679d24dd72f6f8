// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package confparse

import (
	"fmt"

	"github.com/jontk/slurmctld/internal/configgroup"
	"github.com/jontk/slurmctld/internal/hostlist"
	"github.com/jontk/slurmctld/internal/kvparser"
	"github.com/jontk/slurmctld/internal/nodetable"
	slurmerrors "github.com/jontk/slurmctld/pkg/errors"
	"github.com/jontk/slurmctld/pkg/logging"
)

// NodeParser recognizes NodeName= lines, mirroring parse_node_spec.
type NodeParser struct {
	Nodes   *nodetable.Table
	Configs *configgroup.Table
	Logger  logging.Logger
}

// Parse dispatches one NodeName= line. Every name the host expression
// expands to is checked for "DEFAULT" individually, matching
// parse_node_spec's per-name check after localhost substitution: a bare
// NodeName=DEFAULT line updates the config-group and node-state default
// templates without creating any node, and a DEFAULT token found partway
// through an expanded expression (e.g. "DEFAULT,n0") aborts the rest of
// that expression with a warning rather than creating a node literally
// named "DEFAULT". Otherwise one node plus, for the first concrete name on
// the line, one config-group record is created.
func (p *NodeParser) Parse(line *kvparser.Line) error {
	nameField, ok := kvparser.LoadString(line, "NodeName=")
	if !ok {
		return nil
	}

	var procs, weight int
	var realMemory, tmpDisk int64
	var feature, stateStr string
	procs, weight = configgroup.NoVal, configgroup.NoVal
	realMemory, tmpDisk = configgroup.NoVal, configgroup.NoVal

	if err := kvparser.Parse(line,
		kvparser.Spec{Key: "Procs=", Kind: kvparser.KindInt, Int: &procs},
		kvparser.Spec{Key: "RealMemory=", Kind: kvparser.KindLong, Long: &realMemory},
		kvparser.Spec{Key: "TmpDisk=", Kind: kvparser.KindLong, Long: &tmpDisk},
		kvparser.Spec{Key: "Weight=", Kind: kvparser.KindInt, Int: &weight},
		kvparser.Spec{Key: "Feature=", Kind: kvparser.KindString, Str: &feature},
		kvparser.Spec{Key: "State=", Kind: kvparser.KindString, Str: &stateStr},
	); err != nil {
		return slurmerrors.NewParseError(slurmerrors.ErrorCodeBadToken, err.Error(), "", 0, line.String())
	}

	var state nodetable.State
	var hasState bool
	if stateStr != "" {
		s, ok := nodetable.StateName(stateStr)
		if !ok {
			return slurmerrors.NewParseError(slurmerrors.ErrorCodeInvalidState,
				fmt.Sprintf("unrecognized node state %q", stateStr), "", 0, line.String())
		}
		state, hasState = s, true
	}

	resolved, err := ResolveLocalhost(nameField)
	if err != nil {
		return slurmerrors.NewSlurmErrorWithCause(slurmerrors.ErrorCodeBadToken, "resolving localhost", err)
	}

	expander, err := hostlist.Expand(resolved)
	if err != nil {
		return slurmerrors.NewParseError(slurmerrors.ErrorCodeBadToken, err.Error(), "", 0, line.String())
	}

	var configRec *configgroup.Record
	for {
		name, ok := expander.Shift()
		if !ok {
			break
		}
		name, err = ResolveLocalhost(name)
		if err != nil {
			return slurmerrors.NewSlurmErrorWithCause(slurmerrors.ErrorCodeBadToken, "resolving localhost", err)
		}

		if name == "DEFAULT" {
			p.Configs.ApplyDefault(int32(procs), realMemory, tmpDisk, int32(weight), feature)
			if hasState {
				p.Nodes.SetDefaultState(state)
			}
			if next, more := expander.Shift(); more && p.Logger != nil {
				p.Logger.Warn("NodeName=DEFAULT aborts the remainder of the host expression",
					"dropped", next, "line", line.String())
			}
			return nil
		}

		// A name past the highest one declared so far cannot already be in
		// the table, so the hash lookup is only needed when it might collide
		// with an earlier, out-of-order declaration.
		if name <= p.Nodes.HighestName() && p.Nodes.Find(name) != nil {
			continue // already declared on an earlier line; first declaration wins
		}
		if configRec == nil {
			configRec = p.Configs.Create()
			if procs != configgroup.NoVal {
				configRec.CPUs = int32(procs)
			}
			if realMemory != configgroup.NoVal {
				configRec.RealMemory = realMemory
			}
			if tmpDisk != configgroup.NoVal {
				configRec.TmpDisk = tmpDisk
			}
			if weight != configgroup.NoVal {
				configRec.Weight = int32(weight)
			}
			if feature != "" {
				configRec.Feature = feature
			}
			configRec.Nodes = resolved
		}

		n := p.Nodes.Create(name, configRec)
		if hasState && state != nodetable.StateUnknown {
			n.State = state
		}
	}
	return nil
}
