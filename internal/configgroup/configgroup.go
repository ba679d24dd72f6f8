// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package configgroup owns configuration-group records: the shared
// hardware profile declared for one or more nodes grouped together on a
// single NodeName= line.
package configgroup

import (
	"sort"

	"github.com/jontk/slurmctld/internal/bitmap"
)

// NoVal marks a field as "not supplied on this line", distinguishing it
// from a supplied zero so default-inheritance can tell the two apart.
const NoVal = -1

// Record is the shared hardware profile for a group of nodes.
type Record struct {
	CPUs       int32
	RealMemory int64
	TmpDisk    int64
	Weight     int32
	Feature    string
	Nodes      string // the original, un-expanded NodeName= host expression

	NodeBitmap *bitmap.Bitmap
}

// Table owns every config record created during one load.
type Table struct {
	records []*Record
	deflt   Record
}

// NewTable returns an empty config-group table with defaults reset to the
// zero-state the configuration loader uses when no DEFAULT line is seen.
func NewTable() *Table {
	return &Table{}
}

// Default returns the current default template.
func (t *Table) Default() Record {
	return t.deflt
}

// ApplyDefault merges supplied (non-NoVal, non-empty) fields into the
// default template, mirroring the NodeName=DEFAULT handling in the node
// parser.
func (t *Table) ApplyDefault(cpus int32, realMemory, tmpDisk int64, weight int32, feature string) {
	if cpus != NoVal {
		t.deflt.CPUs = cpus
	}
	if realMemory != NoVal {
		t.deflt.RealMemory = realMemory
	}
	if tmpDisk != NoVal {
		t.deflt.TmpDisk = tmpDisk
	}
	if weight != NoVal {
		t.deflt.Weight = weight
	}
	if feature != "" {
		t.deflt.Feature = feature
	}
}

// Create appends a new config record initialized from the current default
// template.
func (t *Table) Create() *Record {
	r := t.deflt
	rec := &Record{
		CPUs:       r.CPUs,
		RealMemory: r.RealMemory,
		TmpDisk:    r.TmpDisk,
		Weight:     r.Weight,
		Feature:    r.Feature,
	}
	t.records = append(t.records, rec)
	return rec
}

// Records returns every config record created during this load, in
// creation order.
func (t *Table) Records() []*Record {
	return t.records
}

// SortByWeight stably sorts records by ascending weight, giving the
// scheduler first-fit-by-weight behavior.
func (t *Table) SortByWeight() {
	sort.SliceStable(t.records, func(i, j int) bool {
		return t.records[i].Weight < t.records[j].Weight
	})
}

// AllocateBitmaps releases every record's prior bitmap and allocates a
// fresh one sized for size, as build_bitmaps requires on every load.
func (t *Table) AllocateBitmaps(size int) {
	for _, r := range t.records {
		r.NodeBitmap = bitmap.New(size)
	}
}
