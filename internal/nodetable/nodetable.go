// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package nodetable owns node records and the name-to-index hash that
// resolves a node name to its stable position in the node array.
package nodetable

import (
	"time"

	"github.com/jontk/slurmctld/internal/configgroup"
	"github.com/jontk/slurmctld/internal/partition"
)

// State is a node's runtime state.
type State int

const (
	StateDown State = iota
	StateUnknown
	StateIdle
	StateAllocated
	StateDrained
)

// StateName maps a node-state name from the configuration file to its
// enumeration value. ok is false for an unrecognized name.
func StateName(name string) (State, bool) {
	switch name {
	case "DOWN":
		return StateDown, true
	case "UNKNOWN":
		return StateUnknown, true
	case "IDLE":
		return StateIdle, true
	case "ALLOCATED":
		return StateAllocated, true
	case "DRAINED":
		return StateDrained, true
	default:
		return 0, false
	}
}

// Node is a single compute host.
type Node struct {
	Name         string
	Index        int
	ConfigPtr    *configgroup.Record
	PartitionPtr *partition.Record
	State        State
	NoRespond    bool
	LastResponse time.Time
}

// Table owns the node array and the name-to-index hash.
type Table struct {
	nodes        []*Node
	byName       map[string]int
	highestName  string
	defaultState State
}

// NewTable returns an empty node table (equivalent to init_node_conf), with
// the default node state template reset to IDLE.
func NewTable() *Table {
	return &Table{
		byName:       make(map[string]int),
		defaultState: StateIdle,
	}
}

// DefaultState returns the current default node state template.
func (t *Table) DefaultState() State {
	return t.defaultState
}

// SetDefaultState updates the default node state template, as the
// NodeName=DEFAULT handler does when State= is supplied.
func (t *Table) SetDefaultState(s State) {
	t.defaultState = s
}

// HighestName returns the lexicographically-greatest node name seen so far
// by Create, the "highest name" watermark used to skip hash lookups for
// strictly-ascending declarations.
func (t *Table) HighestName() string {
	return t.highestName
}

// Create appends a node with the given name and config pointer, assigning
// the next stable index and registering it in the name-to-index hash. It
// does not check for an existing name: callers (the node parser) consult
// Find or the watermark first, per the specified control flow.
func (t *Table) Create(name string, configPtr *configgroup.Record) *Node {
	n := &Node{
		Name:      name,
		Index:     len(t.nodes),
		ConfigPtr: configPtr,
		State:     t.defaultState,
	}
	t.nodes = append(t.nodes, n)
	t.byName[name] = n.Index
	if name > t.highestName {
		t.highestName = name
	}
	return n
}

// Find looks up a node by name via the hash map.
func (t *Table) Find(name string) *Node {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.nodes[i]
}

// Rehash rebuilds the name-to-index map from the node array. Required after
// bulk population and before any Find call that follows it, since Create
// during parsing keeps the hash current but a restored/replayed table might
// not.
func (t *Table) Rehash() {
	t.byName = make(map[string]int, len(t.nodes))
	for i, n := range t.nodes {
		if n.Name == "" {
			continue // defunct
		}
		t.byName[n.Name] = i
		n.Index = i
	}
}

// Nodes returns every node record, in table order (index order).
func (t *Table) Nodes() []*Node {
	return t.nodes
}

// Count returns node_record_count: the width every bitmap must share.
func (t *Table) Count() int {
	return len(t.nodes)
}

// RestoreStatesByName copies State and NoRespond from a previous table's
// nodes into this one, matched by name — the reload-preservation step in
// read_slurm_conf step 7.
func (t *Table) RestoreStatesByName(old *Table) {
	if old == nil {
		return
	}
	for _, oldNode := range old.nodes {
		if oldNode.Name == "" {
			continue
		}
		if n := t.Find(oldNode.Name); n != nil {
			n.State = oldNode.State
			n.NoRespond = oldNode.NoRespond
		}
	}
}
