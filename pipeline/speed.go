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
	"github.com/pqcbench/pqcbench/oqs"
	"github.com/pqcbench/pqcbench/results"
)

// SpeedConfig configures one speed pipeline invocation.
type SpeedConfig struct {
	// Exec is the speed benchmark binary. Runner, when non-nil,
	// replaces the default subprocess runner (tests use a fake).
	Exec   string
	Runner collect.Runner

	Suite oqs.Suite
	// Algorithms defaults to the suite's built-in list.
	Algorithms  []string
	Repetitions int
	// Confidence defaults to benchmath.DefaultConfidence.
	Confidence float64
	// Timeout bounds each producer invocation.
	Timeout time.Duration

	// Store, when non-nil, also archives the record.
	Store *results.Store
}

// Speed runs the timing pipeline: collect N repetitions per
// algorithm, reject outliers on the time series, summarize, and
// persist one record. Algorithms whose every run failed are skipped
// with a log line; the rest still produce results.
func Speed(ctx context.Context, env *Env, cfg SpeedConfig) (*results.Record, error) {
	if cfg.Repetitions < 1 {
		return nil, fmt.Errorf("speed: repetitions must be >= 1 (got %d)", cfg.Repetitions)
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
		runner = &collect.ExecRunner{Path: cfg.Exec}
	}

	collector := &collect.Speed{
		Runner:      runner,
		Suite:       cfg.Suite,
		Repetitions: cfg.Repetitions,
		Timeout:     cfg.Timeout,
		Log:         env.Log,
	}

	rec := results.NewRecord("speed", cfg.Suite, cfg.Repetitions, confidence)
	for _, alg := range algorithms {
		env.logf("=== %s (%d runs)", alg, cfg.Repetitions)
		sets, err := collector.Collect(ctx, alg)
		if err != nil {
			return nil, err
		}
		for _, op := range cfg.Suite.Operations() {
			set := sets[op]
			if err := set.Failed(); err != nil {
				env.logf("skipping: %v", err)
				continue
			}
			rec.Speed = append(rec.Speed, speedStat(set, confidence))
		}
	}
	if len(rec.Speed) == 0 {
		return nil, fmt.Errorf("speed: no algorithm/operation produced results")
	}

	p := &results.Persister{Dir: filepath.Join(env.ResultsDir, "results_speed_"+rec.Suite)}
	path, err := p.WriteSpeedCSV(rec)
	if err != nil {
		return nil, err
	}
	env.logf("wrote %s", path)
	if cfg.Store != nil {
		if err := cfg.Store.Put(rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// speedStat filters one sample set on its time series and reduces it
// to a statistic. The time series decides which runs are outliers;
// the same keep mask applies to the parallel cycle and iteration
// series so all figures describe the same runs.
func speedStat(set *collect.SampleSet, confidence float64) results.SpeedStat {
	times := set.Times()
	out := benchmath.IQROutliers(times)

	timesF := out.Apply(times)
	cyclesF := out.Apply(set.Cycles())
	itersF := out.Apply(set.Iters())
	totalsF := out.Apply(set.TotalSecs())

	return results.SpeedStat{
		Algorithm:    set.Key.Algorithm,
		Operation:    set.Key.Op,
		NTotal:       set.NTotal,
		NUsed:        len(timesF),
		Time:         benchmath.Summarize(timesF, confidence),
		Cycles:       benchmath.Summarize(cyclesF, confidence),
		MeanIters:    benchmath.Summarize(itersF, confidence).Mean,
		MeanTotalSec: benchmath.Summarize(totalsF, confidence).Mean,
		Sizes:        set.Sizes,
		HaveSizes:    set.HaveSizes,
	}
}
