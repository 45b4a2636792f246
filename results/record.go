// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package results defines the aggregated statistics records produced
// by the pipeline and persists them to durable storage.
//
// A Record is written once and never mutated; a re-run creates a new
// record under a new identifier rather than overwriting a prior one.
// Exports are row-oriented CSV (speed and memory), structured JSON
// (memory, with the raw per-run peaks preserved for downstream chart
// tooling), and an optional SQLite archive for longitudinal queries.
package results

import (
	"time"

	"github.com/google/uuid"

	"github.com/pqcbench/pqcbench/benchmath"
	"github.com/pqcbench/pqcbench/massif"
	"github.com/pqcbench/pqcbench/oqs"
	"github.com/pqcbench/pqcbench/speedfmt"
)

// BytesPerMiB converts profiler byte counts to the MiB figures used
// in exports.
const BytesPerMiB = 1 << 20

// A SpeedStat is the aggregated timing statistics for one
// algorithm/operation. It is written once and immutable.
type SpeedStat struct {
	Algorithm string        `json:"algorithm"`
	Operation oqs.Operation `json:"operation"`

	// NTotal is the number of runs requested; NUsed is the number
	// whose samples survived collection and outlier rejection and
	// so contributed to the statistics.
	NTotal int `json:"n_total"`
	NUsed  int `json:"n_used"`

	// Time is in microseconds; Cycles in CPU cycles.
	Time   benchmath.Summary `json:"time_us"`
	Cycles benchmath.Summary `json:"cycles"`

	MeanIters    float64 `json:"mean_iterations"`
	MeanTotalSec float64 `json:"mean_total_time_s"`

	Sizes     speedfmt.Sizes `json:"sizes"`
	HaveSizes bool           `json:"-"`
}

// A RunPeak is one run's peak figures scaled for export.
type RunPeak struct {
	Run          int     `json:"run"`
	HeapMiB      float64 `json:"heap_mib"`
	ExtraHeapMiB float64 `json:"extra_heap_mib"`
	StackMiB     float64 `json:"stack_mib"`
	TotalMiB     float64 `json:"total_mib"`
	Insts        int64   `json:"insts"`
}

// NewRunPeak scales one profiler peak to export units.
func NewRunPeak(run int, p massif.Peak) RunPeak {
	return RunPeak{
		Run:          run,
		HeapMiB:      float64(p.HeapB) / BytesPerMiB,
		ExtraHeapMiB: float64(p.HeapExtraB) / BytesPerMiB,
		StackMiB:     float64(p.StackB) / BytesPerMiB,
		TotalMiB:     float64(p.TotalB) / BytesPerMiB,
		Insts:        p.Insts,
	}
}

// A MemoryStat is the aggregated peak-memory statistics for one
// algorithm/operation, computed across independent full-process runs.
type MemoryStat struct {
	Algorithm string        `json:"algorithm"`
	Operation oqs.Operation `json:"operation"`

	NTotal int `json:"n_total"`
	NUsed  int `json:"n_used"`

	HeapMiB      benchmath.Summary `json:"heap_mib"`
	ExtraHeapMiB benchmath.Summary `json:"extra_heap_mib"`
	StackMiB     benchmath.Summary `json:"stack_mib"`
	TotalMiB     benchmath.Summary `json:"total_mib"`
	Insts        benchmath.Summary `json:"insts"`

	// Raw preserves the per-run peaks that fed the statistics,
	// including ones the outlier filter rejected.
	Raw []RunPeak `json:"raw"`
}

// A Record is one pipeline invocation's immutable export unit.
type Record struct {
	// ID embeds the creation timestamp plus a random suffix so
	// concurrent or repeated runs never collide.
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Mode        string    `json:"mode"` // "speed" or "mem"
	Suite       string    `json:"suite"`
	Repetitions int       `json:"repetitions_requested"`
	Confidence  float64   `json:"confidence"`

	Speed  []SpeedStat  `json:"speed,omitempty"`
	Memory []MemoryStat `json:"memory,omitempty"`
}

// NewRecord creates an empty record for one pipeline invocation.
func NewRecord(mode string, suite oqs.Suite, repetitions int, confidence float64) *Record {
	now := time.Now()
	return &Record{
		ID:          now.Format("20060102_150405") + "_" + uuid.NewString()[:8],
		CreatedAt:   now,
		Mode:        mode,
		Suite:       suite.String(),
		Repetitions: repetitions,
		Confidence:  confidence,
	}
}
