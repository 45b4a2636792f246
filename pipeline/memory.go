// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pqcbench/pqcbench/benchmath"
	"github.com/pqcbench/pqcbench/collect"
	"github.com/pqcbench/pqcbench/massif"
	"github.com/pqcbench/pqcbench/oqs"
	"github.com/pqcbench/pqcbench/results"
)

// MemoryConfig configures one memory pipeline invocation.
type MemoryConfig struct {
	// Binary is the memory test executable the profiler wraps.
	// Valgrind is the profiler binary ("valgrind" when empty).
	// Runner, when non-nil, replaces the default subprocess
	// runner (tests use a fake).
	Binary   string
	Valgrind string
	Runner   collect.Runner

	Suite       oqs.Suite
	Algorithms  []string
	Repetitions int
	Confidence  float64
	Timeout     time.Duration

	Store *results.Store
}

// Memory runs the peak-memory pipeline: N independent full-process
// profiler runs per algorithm/operation, each reduced to one peak,
// outlier rejection on the peak-total series across runs, and one
// persisted record (row-oriented CSV plus structured JSON).
func Memory(ctx context.Context, env *Env, cfg MemoryConfig) (*results.Record, error) {
	if cfg.Repetitions < 1 {
		return nil, fmt.Errorf("mem: repetitions must be >= 1 (got %d)", cfg.Repetitions)
	}
	confidence := cfg.Confidence
	if confidence == 0 {
		confidence = benchmath.DefaultConfidence
	}
	algorithms := cfg.Algorithms
	if len(algorithms) == 0 {
		algorithms = oqs.DefaultSuites().Algorithms(cfg.Suite)
	}
	runner := cfg.Runner
	if runner == nil {
		valgrind := cfg.Valgrind
		if valgrind == "" {
			valgrind = "valgrind"
		}
		runner = &collect.ExecRunner{Path: valgrind}
	}

	collector := &collect.Memory{
		Runner:      runner,
		Binary:      cfg.Binary,
		ScratchDir:  env.ScratchDir,
		Repetitions: cfg.Repetitions,
		Timeout:     cfg.Timeout,
		Log:         env.Log,
	}

	rec := results.NewRecord("mem", cfg.Suite, cfg.Repetitions, confidence)
	for _, alg := range algorithms {
		for _, op := range cfg.Suite.Operations() {
			env.logf("=== %s/%s (%d runs)", alg, op, cfg.Repetitions)
			set, err := collector.Collect(ctx, alg, op)
			if err != nil {
				return nil, err
			}
			if err := set.Failed(); err != nil {
				env.logf("skipping: %v", err)
				continue
			}
			rec.Memory = append(rec.Memory, memoryStat(set, confidence))
		}
	}
	if len(rec.Memory) == 0 {
		return nil, fmt.Errorf("mem: no algorithm/operation produced results")
	}

	p := &results.Persister{Dir: filepath.Join(env.ResultsDir, "results_mem_"+rec.Suite)}
	csvPath, err := p.WriteMemoryCSV(rec)
	if err != nil {
		return nil, err
	}
	jsonPath, err := p.WriteMemoryJSON(rec)
	if err != nil {
		return nil, err
	}
	env.logf("wrote %s", csvPath)
	env.logf("wrote %s", jsonPath)
	if cfg.Store != nil {
		if err := cfg.Store.Put(rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// memoryStat filters one peak set on its peak-total series and
// reduces it to a statistic. The total footprint decides which runs
// are outliers; the same keep mask applies to every peak series so
// all figures describe the same runs.
func memoryStat(set *collect.PeakSet, confidence float64) results.MemoryStat {
	totals := set.Series(func(p massif.Peak) float64 { return float64(p.TotalB) / results.BytesPerMiB })
	out := benchmath.IQROutliers(totals)

	heaps := out.Apply(set.Series(func(p massif.Peak) float64 { return float64(p.HeapB) / results.BytesPerMiB }))
	extras := out.Apply(set.Series(func(p massif.Peak) float64 { return float64(p.HeapExtraB) / results.BytesPerMiB }))
	stacks := out.Apply(set.Series(func(p massif.Peak) float64 { return float64(p.StackB) / results.BytesPerMiB }))
	insts := out.Apply(set.Series(func(p massif.Peak) float64 { return float64(p.Insts) }))
	totalsF := out.Apply(totals)

	raw := make([]results.RunPeak, len(set.Peaks))
	for i, p := range set.Peaks {
		raw[i] = results.NewRunPeak(p.Run, p.Peak)
	}

	return results.MemoryStat{
		Algorithm:    set.Key.Algorithm,
		Operation:    set.Key.Op,
		NTotal:       set.NTotal,
		NUsed:        len(totalsF),
		HeapMiB:      benchmath.Summarize(heaps, confidence),
		ExtraHeapMiB: benchmath.Summarize(extras, confidence),
		StackMiB:     benchmath.Summarize(stacks, confidence),
		TotalMiB:     benchmath.Summarize(totalsF, confidence),
		Insts:        benchmath.Summarize(insts, confidence),
		Raw:          raw,
	}
}
