// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// DefaultConfidence is the confidence level used when a caller does
// not specify one.
const DefaultConfidence = 0.95

// normalApproxDF is the degrees-of-freedom threshold above which the
// t-distribution is replaced by the normal approximation.
const normalApproxDF = 100

// A Summary is the statistical reduction of one filtered sample
// series: sample mean, Bessel-corrected standard deviation, and a
// confidence interval for the mean.
type Summary struct {
	N          int     `json:"n"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std"`
	Lo         float64 `json:"ci_low"`
	Hi         float64 `json:"ci_high"`
	Confidence float64 `json:"confidence"`
}

// Summarize reduces xs to a Summary at the given confidence level
// (pass 0 for DefaultConfidence).
//
// The standard deviation uses the n-1 sample formula and is 0 when
// n == 1, in which case the interval collapses to the single value.
// The interval uses Student's t with n-1 degrees of freedom, or the
// normal approximation for large n. The result depends only on the
// multiset of values in xs, not their order.
func Summarize(xs []float64, confidence float64) Summary {
	if confidence == 0 {
		confidence = DefaultConfidence
	}
	s := Summary{N: len(xs), Confidence: confidence}
	if len(xs) == 0 {
		s.Mean, s.StdDev = math.NaN(), math.NaN()
		s.Lo, s.Hi = math.NaN(), math.NaN()
		return s
	}

	samp := stats.Sample{Xs: xs}
	s.Mean = samp.Mean()
	if len(xs) == 1 {
		s.StdDev = 0
		s.Lo, s.Hi = s.Mean, s.Mean
		return s
	}
	s.StdDev = samp.StdDev()

	t := tCritical(confidence, len(xs)-1)
	margin := t * s.StdDev / math.Sqrt(float64(len(xs)))
	s.Lo = s.Mean - margin
	s.Hi = s.Mean + margin
	return s
}

// tCritical returns the two-sided critical value at the given
// confidence level for Student's t with df degrees of freedom, using
// the normal approximation when df is large.
func tCritical(confidence float64, df int) float64 {
	p := 0.5 + confidence/2
	if df >= normalApproxDF {
		return invCDF(stats.StdNormal.CDF, p)
	}
	d := stats.TDist{V: float64(df)}
	return invCDF(d.CDF, p)
}

// invCDF inverts a continuous CDF by bisection. Both distributions
// used here are strictly increasing over the search bracket, which
// comfortably covers the t quantiles for any df >= 1 at practical
// confidence levels.
func invCDF(cdf func(float64) float64, p float64) float64 {
	lo, hi := -1e3, 1e3
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if cdf(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
