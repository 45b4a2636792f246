// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestIQROutliersProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	series := gen.SliceOf(gen.Float64Range(0, 1e9))
	nonEmpty := gen.SliceOfN(8, gen.Float64Range(0, 1e9))

	properties.Property("mask is indexed like the input", prop.ForAll(
		func(xs []float64) bool {
			out := IQROutliers(xs)
			return len(out.Keep) == len(xs) && out.NTotal == len(xs)
		},
		series,
	))

	properties.Property("filter never grows the set", prop.ForAll(
		func(xs []float64) bool {
			out := IQROutliers(xs)
			return out.NUsed <= out.NTotal && len(out.Apply(xs)) == out.NUsed
		},
		series,
	))

	properties.Property("filter never empties a nonempty set", prop.ForAll(
		func(xs []float64) bool {
			return IQROutliers(xs).NUsed >= 1
		},
		nonEmpty,
	))

	properties.Property("filter is deterministic", prop.ForAll(
		func(xs []float64) bool {
			a, b := IQROutliers(xs), IQROutliers(xs)
			if a.NUsed != b.NUsed || a.Q1 != b.Q1 || a.Q3 != b.Q3 {
				return false
			}
			for i := range a.Keep {
				if a.Keep[i] != b.Keep[i] {
					return false
				}
			}
			return true
		},
		series,
	))

	properties.TestingRun(t)
}
