// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collect

import (
	"fmt"

	"github.com/pqcbench/pqcbench/oqs"
)

// A Failure records one skipped run. Failures are ordinary values
// collected alongside successful samples, so requested-versus-used
// accounting is structural rather than reconstructed from logs.
type Failure struct {
	Run int // 0-based run index
	Err error
}

func (f Failure) String() string {
	return fmt.Sprintf("run %d: %v", f.Run, f.Err)
}

// A CollectionError reports that every requested run failed for one
// algorithm/operation. The driver surfaces it and skips that key;
// other keys still produce results.
type CollectionError struct {
	Key  oqs.Key
	Runs int
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collect %s: all %d runs failed", e.Key, e.Runs)
}
