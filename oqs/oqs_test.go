// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package oqs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseSuite(t *testing.T) {
	for _, tt := range []struct {
		name string
		want Suite
		ok   bool
	}{
		{"kem", KEM, true},
		{"sig", SIG, true},
		{"KEM", 0, false},
		{"", 0, false},
	} {
		got, err := ParseSuite(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ParseSuite(%q) error = %v, want ok=%v", tt.name, err, tt.ok)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseSuite(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOperations(t *testing.T) {
	if got := KEM.Operations(); !reflect.DeepEqual(got, []Operation{OpKeygen, OpEncaps, OpDecaps}) {
		t.Errorf("KEM.Operations() = %v", got)
	}
	if got := SIG.Operations(); !reflect.DeepEqual(got, []Operation{OpKeygen, OpSign, OpVerify}) {
		t.Errorf("SIG.Operations() = %v", got)
	}
}

func TestOperationCode(t *testing.T) {
	for _, tt := range []struct {
		op   Operation
		want int
	}{
		{OpKeygen, 0},
		{OpEncaps, 1},
		{OpSign, 1},
		{OpDecaps, 2},
		{OpVerify, 2},
	} {
		if got := tt.op.Code(); got != tt.want {
			t.Errorf("%s.Code() = %d, want %d", tt.op, got, tt.want)
		}
	}
}

func TestKeyString(t *testing.T) {
	k := Key{Algorithm: "ML-KEM-768", Op: OpEncaps}
	if got := k.String(); got != "ML-KEM-768/encaps" {
		t.Errorf("Key.String() = %q", got)
	}
}

func TestDefaultSuites(t *testing.T) {
	s := DefaultSuites()
	if !s.Contains(KEM, "ML-KEM-768") {
		t.Error("default KEM list is missing ML-KEM-768")
	}
	if !s.Contains(SIG, "Falcon-512") {
		t.Error("default SIG list is missing Falcon-512")
	}
	if s.Contains(KEM, "Falcon-512") {
		t.Error("signature algorithm found in KEM list")
	}
}

func TestLoadSuites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suites.yaml")
	data := "kem:\n  - ML-KEM-512\n  - BIKE-L1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSuites(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"ML-KEM-512", "BIKE-L1"}; !reflect.DeepEqual(s.KEM, want) {
		t.Errorf("KEM = %v, want %v", s.KEM, want)
	}
	// The omitted suite keeps its built-in list.
	if !reflect.DeepEqual(s.SIG, DefaultSuites().SIG) {
		t.Errorf("SIG = %v, want defaults", s.SIG)
	}
}

func TestLoadSuitesMissingFile(t *testing.T) {
	if _, err := LoadSuites(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file did not error")
	}
}
