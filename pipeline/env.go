// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline wires the measurement stages together: sample
// collection, outlier rejection, aggregation, and persistence.
//
// Collector invocations for a given algorithm/operation are strictly
// sequential so measurements are not mutually perturbed by competing
// CPU or memory pressure. A per-key collection failure is logged and
// skipped; only a persistence failure aborts an invocation.
package pipeline

import (
	"fmt"
	"log"
	"os"
)

// An Env is the explicitly passed environment context for one
// pipeline lifetime: the results root and the profiler scratch
// directory. Create it with NewEnv and always Close it; Close runs on
// every exit path and removes the scratch directory with whatever
// artifacts crashed runs left behind.
type Env struct {
	ResultsDir string
	ScratchDir string
	Log        *log.Logger

	ownScratch bool
}

// NewEnv creates the results root (if missing) and a fresh profiler
// scratch directory.
func NewEnv(resultsDir string, logger *log.Logger) (*Env, error) {
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}
	scratch, err := os.MkdirTemp("", "pqcbench-massif-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	return &Env{
		ResultsDir: resultsDir,
		ScratchDir: scratch,
		Log:        logger,
		ownScratch: true,
	}, nil
}

// Close tears down the scratch directory. It is safe to call more
// than once.
func (e *Env) Close() error {
	if !e.ownScratch {
		return nil
	}
	e.ownScratch = false
	return os.RemoveAll(e.ScratchDir)
}

func (e *Env) logf(format string, args ...any) {
	if e.Log != nil {
		e.Log.Printf(format, args...)
	}
}
