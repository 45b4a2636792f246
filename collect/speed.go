// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collect

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pqcbench/pqcbench/oqs"
	"github.com/pqcbench/pqcbench/speedfmt"
)

// A RawSample is one timing observation: the parsed measurement of
// one operation from one run of the speed binary. Samples are
// immutable once recorded and are only persisted through aggregation.
type RawSample struct {
	Key oqs.Key
	Run int // 0-based run index

	// TimeUS is the mean time per operation in microseconds.
	TimeUS float64
	// Cycles is the mean CPU cycle count per operation.
	Cycles float64
	// Iters and TotalSec describe how the producer averaged this
	// sample internally.
	Iters    int
	TotalSec float64
}

// A SampleSet is the ordered sequence of successful samples for one
// algorithm/operation, plus the failures, so that every requested run
// is accounted for: len(Samples) + len(Failures) == NTotal.
type SampleSet struct {
	Key      oqs.Key
	NTotal   int // runs requested
	Samples  []RawSample
	Failures []Failure

	Sizes     speedfmt.Sizes
	HaveSizes bool
}

// Failed returns a *CollectionError if no run succeeded, else nil.
func (s *SampleSet) Failed() error {
	if len(s.Samples) == 0 {
		return &CollectionError{s.Key, s.NTotal}
	}
	return nil
}

// Times returns the sample times in run order, in microseconds.
func (s *SampleSet) Times() []float64 {
	out := make([]float64, len(s.Samples))
	for i, r := range s.Samples {
		out[i] = r.TimeUS
	}
	return out
}

// Cycles returns the sample cycle counts in run order.
func (s *SampleSet) Cycles() []float64 {
	out := make([]float64, len(s.Samples))
	for i, r := range s.Samples {
		out[i] = r.Cycles
	}
	return out
}

// Iters returns the producer iteration counts in run order.
func (s *SampleSet) Iters() []float64 {
	out := make([]float64, len(s.Samples))
	for i, r := range s.Samples {
		out[i] = float64(r.Iters)
	}
	return out
}

// TotalSecs returns the producer total wall times in run order.
func (s *SampleSet) TotalSecs() []float64 {
	out := make([]float64, len(s.Samples))
	for i, r := range s.Samples {
		out[i] = r.TotalSec
	}
	return out
}

// Speed collects timing samples by invoking a speed benchmark binary
// repeatedly. Invocations are strictly sequential so runs do not
// perturb each other.
type Speed struct {
	Runner      Runner
	Suite       oqs.Suite
	Repetitions int
	// Timeout bounds each invocation; zero means no bound.
	Timeout time.Duration
	Log     *log.Logger
}

// Collect runs the speed binary Repetitions times for alg and
// returns one SampleSet per operation of the suite. One invocation
// reports all operations, so a run that fails outright is a failure
// for every operation, while a run whose output is missing or
// malformed for one operation fails only that operation.
//
// Collect returns an error only for invalid configuration or context
// cancellation; per-key total failure is reported by SampleSet.Failed.
func (c *Speed) Collect(ctx context.Context, alg string) (map[oqs.Operation]*SampleSet, error) {
	if c.Repetitions < 1 {
		return nil, fmt.Errorf("collect: repetitions must be >= 1 (got %d)", c.Repetitions)
	}
	ops := c.Suite.Operations()
	sets := make(map[oqs.Operation]*SampleSet, len(ops))
	for _, op := range ops {
		sets[op] = &SampleSet{Key: oqs.Key{Algorithm: alg, Op: op}, NTotal: c.Repetitions}
	}

	for run := 0; run < c.Repetitions; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := c.runOnce(ctx, alg)
		if err != nil {
			c.logf("%s run %d/%d failed: %v", alg, run+1, c.Repetitions, err)
			for _, op := range ops {
				set := sets[op]
				set.Failures = append(set.Failures, Failure{run, err})
			}
			continue
		}

		got, sizes, haveSizes := parseSpeedOutput(out, alg)
		for _, op := range ops {
			set := sets[op]
			if haveSizes {
				set.Sizes, set.HaveSizes = sizes, true
			}
			rec, ok := got[op]
			if !ok {
				err := fmt.Errorf("output has no valid %s row", op)
				c.logf("%s run %d/%d: %v", alg, run+1, c.Repetitions, err)
				set.Failures = append(set.Failures, Failure{run, err})
				continue
			}
			set.Samples = append(set.Samples, RawSample{
				Key:      set.Key,
				Run:      run,
				TimeUS:   rec.TimeUS,
				Cycles:   rec.Cycles,
				Iters:    rec.Iters,
				TotalSec: rec.TotalSec,
			})
		}
	}
	return sets, nil
}

func (c *Speed) runOnce(ctx context.Context, alg string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	// -i prints the mechanism size line; -d 1 bounds each
	// operation's internal measurement loop to one second.
	return c.Runner.Run(ctx, "-i", "-d", "1", alg)
}

// parseSpeedOutput scans one invocation's output and returns the
// valid operation rows. Malformed rows are simply absent from the
// result; the caller records the per-operation failure.
func parseSpeedOutput(out []byte, name string) (map[oqs.Operation]speedfmt.OpResult, speedfmt.Sizes, bool) {
	got := make(map[oqs.Operation]speedfmt.OpResult)
	r := speedfmt.NewReader(bytes.NewReader(out), name)
	for r.Scan() {
		rec, err := r.Result()
		if err != nil {
			continue
		}
		got[rec.Op] = *rec
	}
	sizes, haveSizes := r.Sizes()
	return got, sizes, haveSizes
}

func (c *Speed) logf(format string, args ...any) {
	if c.Log != nil {
		c.Log.Printf(format, args...)
	}
}
