// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package massif parses Valgrind Massif artifact files and reduces a
// trace to its peak memory figures.
//
// A Massif artifact is a sequence of snapshots, each a point-in-time
// measurement of heap, extra-heap, and stack bytes:
//
//	snapshot=0
//	time=1405639
//	mem_heap_B=2048
//	mem_heap_extra_B=56
//	mem_stacks_B=1120
//
// A trace's peaks are taken per field: the peak heap and peak stack
// need not occur at the same snapshot.
package massif

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrTraceEmpty reports a trace with no snapshots. It is a per-run
// failure: the run is skipped, not the batch.
var ErrTraceEmpty = errors.New("massif: trace contains no snapshots")

// A SyntaxError represents a malformed line in a Massif artifact.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// A Snapshot is one profiler measurement. A field the profiler did
// not report is zero; zero participates in max-comparison like any
// other value.
type Snapshot struct {
	// Time is the snapshot's position on the profiler's time axis
	// (instructions executed when time_unit is "i").
	Time       int64
	HeapB      int64
	HeapExtraB int64
	StackB     int64
}

// TotalB returns the snapshot's total footprint: useful heap plus
// allocator overhead plus stacks.
func (s Snapshot) TotalB() int64 {
	return s.HeapB + s.HeapExtraB + s.StackB
}

// A Trace is the parsed snapshot sequence from one profiler run, in
// snapshot order. Traces are transient: the collector discards them
// after reduction to a Peak.
type Trace struct {
	Cmd       string
	TimeUnit  string
	Snapshots []Snapshot
}

// Parse reads a Massif artifact from r. fileName is used in error
// messages; it is purely diagnostic.
func Parse(r io.Reader, fileName string) (*Trace, error) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	t := new(Trace)
	var cur *Snapshot
	s := bufio.NewScanner(r)
	lineNum := 0
	for s.Scan() {
		lineNum++
		line := s.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Header lines ("desc:", "cmd:", "time_unit:") come before
		// the first snapshot and may themselves contain '='.
		if val, ok := strings.CutPrefix(line, "cmd:"); ok {
			t.Cmd = strings.TrimSpace(val)
			continue
		}
		if val, ok := strings.CutPrefix(line, "time_unit:"); ok {
			t.TimeUnit = strings.TrimSpace(val)
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "snapshot":
			t.Snapshots = append(t.Snapshots, Snapshot{})
			cur = &t.Snapshots[len(t.Snapshots)-1]
		case "time", "mem_heap_B", "mem_heap_extra_B", "mem_stacks_B":
			if cur == nil {
				return nil, &SyntaxError{fileName, lineNum, key + " before first snapshot"}
			}
			n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return nil, &SyntaxError{fileName, lineNum, "parsing " + key + ": " + err.Error()}
			}
			switch key {
			case "time":
				cur.Time = n
			case "mem_heap_B":
				cur.HeapB = n
			case "mem_heap_extra_B":
				cur.HeapExtraB = n
			case "mem_stacks_B":
				cur.StackB = n
			}
		}
		// Other keys (heap_tree and its children) are ignored.
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%s:%d: %w", fileName, lineNum, err)
	}
	return t, nil
}

// ParseFile reads the Massif artifact at path.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// A Peak holds the per-field maxima of one trace. Each field is
// maximized independently over all snapshots.
type Peak struct {
	HeapB      int64
	HeapExtraB int64
	StackB     int64
	TotalB     int64
	// Insts is the time-axis position of the snapshot with the
	// largest total footprint. With the default time_unit "i"
	// this is an instruction count.
	Insts int64
}

// Peak reduces the trace to its peak figures. A trace with zero
// snapshots returns ErrTraceEmpty.
func (t *Trace) Peak() (Peak, error) {
	if len(t.Snapshots) == 0 {
		return Peak{}, ErrTraceEmpty
	}
	var p Peak
	maxTotal := int64(-1)
	for _, s := range t.Snapshots {
		p.HeapB = max(p.HeapB, s.HeapB)
		p.HeapExtraB = max(p.HeapExtraB, s.HeapExtraB)
		p.StackB = max(p.StackB, s.StackB)
		if tot := s.TotalB(); tot > maxTotal {
			maxTotal = tot
			p.Insts = s.Time
		}
	}
	p.TotalB = maxTotal
	return p, nil
}
