// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package bitmap

import (
	"encoding/json"
	"testing"
)

func TestSetClearTest(t *testing.T) {
	b := New(10)
	if b.Test(3) {
		t.Fatal("expected bit 3 clear on fresh bitmap")
	}
	b.Set(3)
	if !b.Test(3) {
		t.Fatal("expected bit 3 set after Set")
	}
	b.Clear(3)
	if b.Test(3) {
		t.Fatal("expected bit 3 clear after Clear")
	}
}

func TestPopCount(t *testing.T) {
	b := New(130)
	for _, i := range []int{0, 1, 63, 64, 65, 129} {
		b.Set(i)
	}
	if got := b.PopCount(); got != 6 {
		t.Fatalf("PopCount() = %d, want 6", got)
	}
}

func TestFindFirstSet(t *testing.T) {
	b := New(200)
	if got := b.FindFirstSet(); got != -1 {
		t.Fatalf("FindFirstSet() on empty = %d, want -1", got)
	}
	b.Set(128)
	b.Set(5)
	if got := b.FindFirstSet(); got != 5 {
		t.Fatalf("FindFirstSet() = %d, want 5", got)
	}
}

func TestForEachSet(t *testing.T) {
	b := New(70)
	want := []int{0, 10, 69}
	for _, i := range want {
		b.Set(i)
	}
	var got []int
	b.ForEachSet(func(i int) { got = append(got, i) })
	if len(got) != len(want) {
		t.Fatalf("ForEachSet visited %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ForEachSet()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New(8)
	b.Set(2)
	c := b.Clone()
	c.Set(5)
	if b.Test(5) {
		t.Fatal("mutating clone affected original")
	}
	if !c.Test(2) {
		t.Fatal("clone lost bit copied from original")
	}
}

func TestMarshalJSONEncodesSizeAndSetIndices(t *testing.T) {
	b := New(8)
	b.Set(1)
	b.Set(4)

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Size int   `json:"size"`
		Set  []int `json:"set"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Size != 8 {
		t.Fatalf("Size = %d, want 8", decoded.Size)
	}
	if len(decoded.Set) != 2 || decoded.Set[0] != 1 || decoded.Set[1] != 4 {
		t.Fatalf("Set = %v, want [1 4]", decoded.Set)
	}
}

func TestSetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range Set")
		}
	}()
	b := New(4)
	b.Set(4)
}
