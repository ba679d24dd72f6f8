// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package partition owns partition records: named scheduling domains over
// groups of nodes.
package partition

import (
	"github.com/jontk/slurmctld/internal/bitmap"
)

// NoVal marks a field as "not supplied on this line".
const NoVal = -1

// SharedPolicy is a partition's job co-location policy.
type SharedPolicy int

const (
	SharedNo SharedPolicy = iota
	SharedYes
	SharedForce
)

// Record is a named scheduling domain.
type Record struct {
	Name        string
	MaxTime     int32
	MaxNodes    int32
	RootOnly    bool
	StateUp     bool
	Shared      SharedPolicy
	AllowGroups string
	Nodes       string // node-expression string, expanded later by build_bitmaps

	NodeBitmap *bitmap.Bitmap
	TotalNodes int32
	TotalCPUs  int64
}

// Table owns every partition record created during one load, plus the
// DEFAULT template and the default-partition designation.
type Table struct {
	records     []*Record
	deflt       Record
	defaultName string
	defaultPtr  *Record
}

// NewTable returns an empty partition table.
func NewTable() *Table {
	t := &Table{}
	t.deflt.StateUp = true
	return t
}

// Default returns the current default template.
func (t *Table) Default() Record {
	return t.deflt
}

// Find does a linear scan for a partition by name; the table is small
// enough that this is the specified strategy rather than a hash lookup.
func (t *Table) Find(name string) *Record {
	for _, r := range t.records {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Create appends a new partition record, initialized from the default
// template, with the given name.
func (t *Table) Create(name string) *Record {
	d := t.deflt
	rec := &Record{
		Name:        name,
		MaxTime:     d.MaxTime,
		MaxNodes:    d.MaxNodes,
		RootOnly:    d.RootOnly,
		StateUp:     d.StateUp,
		Shared:      d.Shared,
		AllowGroups: d.AllowGroups,
		Nodes:       d.Nodes,
	}
	t.records = append(t.records, rec)
	return rec
}

// Records returns every partition record, in creation order.
func (t *Table) Records() []*Record {
	return t.records
}

// SetDefault repoints the default-partition designation. name and rec must
// agree (or both be empty/nil) per invariant 7.
func (t *Table) SetDefault(name string, rec *Record) {
	t.defaultName = name
	t.defaultPtr = rec
}

// DefaultName returns the current default partition's name, or "" if none.
func (t *Table) DefaultName() string {
	return t.defaultName
}

// DefaultRecord returns the current default partition, or nil if none.
func (t *Table) DefaultRecord() *Record {
	return t.defaultPtr
}

// ApplyDefault merges supplied fields into the DEFAULT template, mirroring
// the PartitionName=DEFAULT handling in the partition parser.
func (t *Table) ApplyDefault(maxTime, maxNodes int32, rootOnly, stateUp *bool, shared *SharedPolicy, allowGroups, nodes string) {
	if maxTime != NoVal {
		t.deflt.MaxTime = maxTime
	}
	if maxNodes != NoVal {
		t.deflt.MaxNodes = maxNodes
	}
	if rootOnly != nil {
		t.deflt.RootOnly = *rootOnly
	}
	if stateUp != nil {
		t.deflt.StateUp = *stateUp
	}
	if shared != nil {
		t.deflt.Shared = *shared
	}
	if allowGroups != "" {
		t.deflt.AllowGroups = allowGroups
	}
	if nodes != "" {
		t.deflt.Nodes = nodes
	}
}

// AllocateBitmaps releases every record's prior bitmap and allocates a
// fresh one sized for size, as build_bitmaps requires on every load.
func (t *Table) AllocateBitmaps(size int) {
	for _, r := range t.records {
		r.NodeBitmap = bitmap.New(size)
		r.TotalNodes = 0
		r.TotalCPUs = 0
	}
}
