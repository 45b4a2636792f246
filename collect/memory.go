// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collect

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pqcbench/pqcbench/massif"
	"github.com/pqcbench/pqcbench/oqs"
)

// A RunPeak is the peak memory reduction of one profiler run.
type RunPeak struct {
	Run int // 0-based run index
	massif.Peak
}

// A PeakSet is the ordered sequence of per-run peaks for one
// algorithm/operation, with the same requested-versus-used accounting
// as SampleSet.
type PeakSet struct {
	Key      oqs.Key
	NTotal   int
	Peaks    []RunPeak
	Failures []Failure
}

// Failed returns a *CollectionError if no run succeeded, else nil.
func (s *PeakSet) Failed() error {
	if len(s.Peaks) == 0 {
		return &CollectionError{s.Key, s.NTotal}
	}
	return nil
}

// Series projects one numeric field of every peak, in run order.
func (s *PeakSet) Series(field func(massif.Peak) float64) []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = field(p.Peak)
	}
	return out
}

// Memory collects peak-memory samples by running a memory test
// binary under the Massif profiler.
//
// Memory measurement under a profiler is itself perturbative, so the
// replication unit is an independent full-process run: each run
// produces one trace, reduced to one peak, and statistics are
// computed across runs, never across the snapshots within one trace.
type Memory struct {
	// Runner invokes the profiler (valgrind). Binary is the
	// memory test executable the profiler wraps.
	Runner Runner
	Binary string
	// ScratchDir receives the per-run artifact files. The caller
	// owns their cleanup.
	ScratchDir  string
	Repetitions int
	Timeout     time.Duration
	Log         *log.Logger
}

// Collect profiles alg/op Repetitions times and returns the per-run
// peaks in run order. A run whose profiler invocation fails, whose
// artifact cannot be parsed, or whose trace is empty is recorded as a
// failure and skipped.
func (c *Memory) Collect(ctx context.Context, alg string, op oqs.Operation) (*PeakSet, error) {
	if c.Repetitions < 1 {
		return nil, fmt.Errorf("collect: repetitions must be >= 1 (got %d)", c.Repetitions)
	}
	set := &PeakSet{Key: oqs.Key{Algorithm: alg, Op: op}, NTotal: c.Repetitions}

	for run := 0; run < c.Repetitions; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		peak, err := c.runOnce(ctx, alg, op, run)
		if err != nil {
			c.logf("%s run %d/%d failed: %v", set.Key, run+1, c.Repetitions, err)
			set.Failures = append(set.Failures, Failure{run, err})
			continue
		}
		set.Peaks = append(set.Peaks, RunPeak{Run: run, Peak: peak})
	}
	return set, nil
}

func (c *Memory) runOnce(ctx context.Context, alg string, op oqs.Operation, run int) (massif.Peak, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	artifact := filepath.Join(c.ScratchDir, fmt.Sprintf("massif.%s.%d.%d.out", alg, op.Code(), run))
	args := []string{
		"--tool=massif",
		"--stacks=yes",
		"--massif-out-file=" + artifact,
		c.Binary,
		alg,
		strconv.Itoa(op.Code()),
	}
	if _, err := c.Runner.Run(ctx, args...); err != nil {
		return massif.Peak{}, err
	}
	trace, err := massif.ParseFile(artifact)
	if err != nil {
		return massif.Peak{}, err
	}
	return trace.Peak()
}

func (c *Memory) logf(format string, args ...any) {
	if c.Log != nil {
		c.Log.Printf(format, args...)
	}
}
