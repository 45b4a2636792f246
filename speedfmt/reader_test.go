// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speedfmt

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pqcbench/pqcbench/oqs"
)

const kemOutput = `Configuration info
==================
Target platform:  x86_64-Linux
Compiler:         gcc (11.4.0)
OQS version:      0.12.0

Speed test
==========
Started at 2025-06-02 10:12:44
Operation                            | Iterations | Total time (s) | Time (us): mean | pop. stdev | CPU cycles: mean          | pop. stdev
ML-KEM-768                           |            |                |                 |            |                           |
keygen                               |     141462 |          1.000 |           7.069 |      0.521 |                    21 243 |       1572
encaps                               |     122353 |          1.000 |           8.173 |      0.488 |                    24 560 |       1468
decaps                               |     109512 |          1.000 |           9.131 |      0.502 |                    27 440 |       1509
Ended at 2025-06-02 10:12:47

public key bytes: 1184, ciphertext bytes: 1088, secret key bytes: 2400, shared secret key bytes: 32, NIST level: 3
`

func TestReaderKEM(t *testing.T) {
	r := NewReader(strings.NewReader(kemOutput), "speed_kem")
	var got []OpResult
	for r.Scan() {
		res, err := r.Result()
		if err != nil {
			t.Fatalf("Result: %v", err)
		}
		got = append(got, *res)
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}

	want := []OpResult{
		{Op: oqs.OpKeygen, Iters: 141462, TotalSec: 1.0, TimeUS: 7.069, Cycles: 21243},
		{Op: oqs.OpEncaps, Iters: 122353, TotalSec: 1.0, TimeUS: 8.173, Cycles: 24560},
		{Op: oqs.OpDecaps, Iters: 109512, TotalSec: 1.0, TimeUS: 9.131, Cycles: 27440},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	sizes, ok := r.Sizes()
	if !ok {
		t.Fatal("no sizes line parsed")
	}
	wantSizes := Sizes{
		PublicKeyBytes:    1184,
		SecretKeyBytes:    2400,
		CiphertextBytes:   1088,
		SharedSecretBytes: 32,
		NISTLevel:         3,
	}
	if sizes != wantSizes {
		t.Errorf("Sizes = %+v, want %+v", sizes, wantSizes)
	}
}

func TestReaderSIGSizes(t *testing.T) {
	input := `Falcon-512                           |            |                |                 |            |                           |
sign                                 |      17022 |          1.000 |          58.747 |      3.102 |                   176,501 |      10411
verify                               |     120111 |          1.000 |           8.326 |      0.377 |                    25 020 |       1020

public key bytes: 897, secret key bytes: 1281, signature bytes: 666, NIST level: 1
`
	r := NewReader(strings.NewReader(input), "speed_sig")
	n := 0
	for r.Scan() {
		res, err := r.Result()
		if err != nil {
			t.Fatalf("Result: %v", err)
		}
		n++
		if res.Op == oqs.OpSign && res.Cycles != 176501 {
			t.Errorf("sign cycles = %v, want 176501 (comma separators)", res.Cycles)
		}
	}
	if n != 2 {
		t.Fatalf("got %d rows, want 2", n)
	}
	sizes, ok := r.Sizes()
	if !ok {
		t.Fatal("no sizes line parsed")
	}
	if sizes.SignatureBytes != 666 || sizes.CiphertextBytes != 0 {
		t.Errorf("Sizes = %+v", sizes)
	}
}

func TestReaderTimeUnit(t *testing.T) {
	input := `Operation | Iterations | Total time (s) | Time (ns): mean | pop. stdev | CPU cycles: mean | pop. stdev
keygen    |       1000 |          1.000 |        7069.000 |    521.000 |            21243 | 1572
`
	r := NewReader(strings.NewReader(input), "")
	if !r.Scan() {
		t.Fatal("no row read")
	}
	res, err := r.Result()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.TimeUS-7.069) > 1e-9 {
		t.Errorf("TimeUS = %v, want 7.069 (ns normalized)", res.TimeUS)
	}
}

func TestReaderMalformedRowNonFatal(t *testing.T) {
	input := `keygen | oops |          1.000 |           7.069 |      0.521 | 21243 | 1572
encaps |  900 |          1.000 |           8.173 |      0.488 | 24560 | 1468
`
	r := NewReader(strings.NewReader(input), "speed_kem")

	if !r.Scan() {
		t.Fatal("first Scan = false")
	}
	_, err := r.Result()
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want *SyntaxError", err)
	}
	if serr.FileName != "speed_kem" || serr.Line != 1 {
		t.Errorf("position = %s:%d, want speed_kem:1", serr.FileName, serr.Line)
	}

	// The bad row does not stop the reader.
	if !r.Scan() {
		t.Fatal("second Scan = false")
	}
	res, err := r.Result()
	if err != nil {
		t.Fatal(err)
	}
	if res.Op != oqs.OpEncaps || res.Iters != 900 {
		t.Errorf("row after error = %+v", res)
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestToMicros(t *testing.T) {
	for _, tt := range []struct {
		v    float64
		unit string
		want float64
	}{
		{5, "us", 5},
		{5, "µs", 5},
		{5000, "ns", 5},
		{5, "ms", 5000},
		{2, "s", 2e6},
	} {
		got, err := ToMicros(tt.v, tt.unit)
		if err != nil {
			t.Errorf("ToMicros(%v, %q): %v", tt.v, tt.unit, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ToMicros(%v, %q) = %v, want %v", tt.v, tt.unit, got, tt.want)
		}
	}
	if _, err := ToMicros(1, "fortnights"); err == nil {
		t.Error("unknown unit did not error")
	}
}
