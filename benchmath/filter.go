// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchmath provides the statistical reductions used by the
// benchmark pipeline: interquartile-range outlier rejection and
// mean/confidence-interval summaries.
//
// Everything in this package is pure: given the same input sequence
// it always returns the same output, independent of collection order
// or wall-clock time.
package benchmath

import (
	"github.com/aclements/go-moremath/stats"
)

// An Outliers is the result of interquartile-range outlier rejection
// over one sample series. Keep is indexed like the input series and
// reports which elements survived, so the same rejection can be
// applied to parallel series measured by the same runs.
type Outliers struct {
	Keep     []bool
	NUsed    int
	NTotal   int
	Q1, Q3   float64
	Fallback bool // rejection would have emptied the set; kept all
}

// IQROutliers computes the acceptable band [Q1 - 1.5*IQR, Q3 +
// 1.5*IQR] over xs and marks the elements inside it.
//
// Quartiles are linearly interpolated on the sorted values, for any
// n >= 1; small samples degenerate but still filter
// deterministically. Two cases keep the full set: an IQR of zero
// (constant-valued samples carry no spread information), and a band
// that would reject every element (a summary must never be computed
// from an empty set).
func IQROutliers(xs []float64) Outliers {
	o := Outliers{
		Keep:   make([]bool, len(xs)),
		NTotal: len(xs),
	}
	if len(xs) == 0 {
		return o
	}

	sorted := stats.Sample{Xs: append([]float64(nil), xs...)}
	sorted.Sort()
	o.Q1 = sorted.Quantile(0.25)
	o.Q3 = sorted.Quantile(0.75)

	iqr := o.Q3 - o.Q1
	if iqr == 0 {
		return o.keepAll()
	}
	lo, hi := o.Q1-1.5*iqr, o.Q3+1.5*iqr
	for i, x := range xs {
		if lo <= x && x <= hi {
			o.Keep[i] = true
			o.NUsed++
		}
	}
	if o.NUsed == 0 {
		o.Fallback = true
		return o.keepAll()
	}
	return o
}

func (o Outliers) keepAll() Outliers {
	for i := range o.Keep {
		o.Keep[i] = true
	}
	o.NUsed = o.NTotal
	return o
}

// Apply returns the elements of xs marked kept by o. xs must be a
// series of the same length as the series o was computed from.
func (o Outliers) Apply(xs []float64) []float64 {
	if len(xs) != len(o.Keep) {
		panic("benchmath: series length does not match outlier mask")
	}
	out := make([]float64, 0, o.NUsed)
	for i, x := range xs {
		if o.Keep[i] {
			out = append(out, x)
		}
	}
	return out
}
