// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speedfmt

import "fmt"

// ToMicros converts a timing value in the producer's reported unit to
// microseconds. All statistics downstream are computed in
// microseconds, whatever unit the producer uses.
func ToMicros(v float64, unit string) (float64, error) {
	switch unit {
	case "us", "µs", "usec":
		return v, nil
	case "ns", "nsec":
		return v / 1e3, nil
	case "ms", "msec":
		return v * 1e3, nil
	case "s", "sec":
		return v * 1e6, nil
	}
	return 0, fmt.Errorf("unknown time unit %q", unit)
}
