// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package massif

import (
	"errors"
	"strings"
	"testing"
)

const sampleArtifact = `desc: --massif-out-file=massif.ML-KEM-768.0.0.out --stacks=yes
cmd: ./test_kem_mem ML-KEM-768 0
time_unit: i

#-----------
snapshot=0
#-----------
time=0
mem_heap_B=0
mem_heap_extra_B=0
mem_stacks_B=512
heap_tree=empty
#-----------
snapshot=1
#-----------
time=140563
mem_heap_B=2048
mem_heap_extra_B=56
mem_stacks_B=1120
heap_tree=detailed
n2: 2048 (heap allocation functions) malloc/new/new[], --alloc-fns, etc.
 n1: 2048 0x10F2A3: OQS_MEM_malloc (malloc.c:12)
  n0: 2048 0x10E881: main (test_kem_mem.c:44)
#-----------
snapshot=2
#-----------
time=390211
mem_heap_B=1024
mem_heap_extra_B=72
mem_stacks_B=896
`

func TestParse(t *testing.T) {
	trace, err := Parse(strings.NewReader(sampleArtifact), "massif.out")
	if err != nil {
		t.Fatal(err)
	}
	if trace.Cmd != "./test_kem_mem ML-KEM-768 0" {
		t.Errorf("Cmd = %q", trace.Cmd)
	}
	if trace.TimeUnit != "i" {
		t.Errorf("TimeUnit = %q", trace.TimeUnit)
	}
	want := []Snapshot{
		{Time: 0, HeapB: 0, HeapExtraB: 0, StackB: 512},
		{Time: 140563, HeapB: 2048, HeapExtraB: 56, StackB: 1120},
		{Time: 390211, HeapB: 1024, HeapExtraB: 72, StackB: 896},
	}
	if len(trace.Snapshots) != len(want) {
		t.Fatalf("got %d snapshots, want %d", len(trace.Snapshots), len(want))
	}
	for i, s := range trace.Snapshots {
		if s != want[i] {
			t.Errorf("snapshot %d = %+v, want %+v", i, s, want[i])
		}
	}
}

func TestPeakPerField(t *testing.T) {
	// The peak heap and peak stack come from different snapshots.
	trace := &Trace{Snapshots: []Snapshot{
		{Time: 0, HeapB: 100, StackB: 10},
		{Time: 1, HeapB: 50, StackB: 20},
		{Time: 2, HeapB: 80, StackB: 5},
	}}
	p, err := trace.Peak()
	if err != nil {
		t.Fatal(err)
	}
	if p.HeapB != 100 {
		t.Errorf("HeapB = %d, want 100", p.HeapB)
	}
	if p.StackB != 20 {
		t.Errorf("StackB = %d, want 20", p.StackB)
	}
	if p.TotalB != 110 {
		t.Errorf("TotalB = %d, want 110", p.TotalB)
	}
	if p.Insts != 0 {
		t.Errorf("Insts = %d, want 0 (snapshot with largest total)", p.Insts)
	}
}

func TestPeakSampleArtifact(t *testing.T) {
	trace, err := Parse(strings.NewReader(sampleArtifact), "massif.out")
	if err != nil {
		t.Fatal(err)
	}
	p, err := trace.Peak()
	if err != nil {
		t.Fatal(err)
	}
	want := Peak{HeapB: 2048, HeapExtraB: 72, StackB: 1120, TotalB: 3224, Insts: 140563}
	if p != want {
		t.Errorf("Peak = %+v, want %+v", p, want)
	}
}

func TestPeakEmptyTrace(t *testing.T) {
	_, err := new(Trace).Peak()
	if !errors.Is(err, ErrTraceEmpty) {
		t.Errorf("got %v, want ErrTraceEmpty", err)
	}
}

func TestParseMissingFieldsAreZero(t *testing.T) {
	trace, err := Parse(strings.NewReader("snapshot=0\ntime=7\nmem_heap_B=64\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	got := trace.Snapshots[0]
	if got.HeapExtraB != 0 || got.StackB != 0 {
		t.Errorf("unreported fields = %+v, want zero", got)
	}
	if got.TotalB() != 64 {
		t.Errorf("TotalB = %d, want 64", got.TotalB())
	}
}

func TestParseErrors(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input string
	}{
		{"bad number", "snapshot=0\nmem_heap_B=banana\n"},
		{"field before snapshot", "mem_heap_B=12\n"},
	} {
		_, err := Parse(strings.NewReader(tt.input), "bad.out")
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("%s: got %v, want *SyntaxError", tt.name, err)
			continue
		}
		if serr.FileName != "bad.out" || serr.Line == 0 {
			t.Errorf("%s: position = %s:%d", tt.name, serr.FileName, serr.Line)
		}
	}
}
