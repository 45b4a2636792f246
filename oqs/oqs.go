// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package oqs describes the benchmarked surface of a liboqs-style
// library: the mechanism suites (KEM and signature), the operations
// each suite exposes, and the algorithm identifiers the test binaries
// accept on their command line.
package oqs

import "fmt"

// A Suite identifies a family of mechanisms that share an operation
// set: key encapsulation or digital signature.
type Suite int

const (
	KEM Suite = iota
	SIG
)

func (s Suite) String() string {
	switch s {
	case KEM:
		return "kem"
	case SIG:
		return "sig"
	}
	return fmt.Sprintf("Suite(%d)", int(s))
}

// ParseSuite converts a suite name as used on the command line
// ("kem" or "sig") into a Suite.
func ParseSuite(name string) (Suite, error) {
	switch name {
	case "kem":
		return KEM, nil
	case "sig":
		return SIG, nil
	}
	return 0, fmt.Errorf("unknown suite %q (must be kem or sig)", name)
}

// An Operation is one primitive operation of a mechanism.
type Operation string

const (
	OpKeygen Operation = "keygen"
	OpEncaps Operation = "encaps"
	OpDecaps Operation = "decaps"
	OpSign   Operation = "sign"
	OpVerify Operation = "verify"
)

// Code returns the numeric operation selector the memory test
// binaries take as their second argument.
func (op Operation) Code() int {
	switch op {
	case OpKeygen:
		return 0
	case OpEncaps, OpSign:
		return 1
	case OpDecaps, OpVerify:
		return 2
	}
	return -1
}

// Operations returns the suite's operations in benchmark order.
func (s Suite) Operations() []Operation {
	switch s {
	case KEM:
		return []Operation{OpKeygen, OpEncaps, OpDecaps}
	case SIG:
		return []Operation{OpKeygen, OpSign, OpVerify}
	}
	return nil
}

// A Key identifies one measured algorithm/operation pair. Every raw
// sample, peak, and statistic in the pipeline carries a Key.
type Key struct {
	Algorithm string
	Op        Operation
}

func (k Key) String() string {
	return k.Algorithm + "/" + string(k.Op)
}
