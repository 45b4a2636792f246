// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package oqs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultKEM and defaultSIG list the algorithms benchmarked when no
// suite file overrides them. The names are liboqs identifiers and are
// passed to the test binaries verbatim.
var defaultKEM = []string{
	"ML-KEM-512",
	"ML-KEM-768",
	"ML-KEM-1024",
	"HQC-128",
	"HQC-192",
	"HQC-256",
	"BIKE-L1",
	"BIKE-L3",
	"BIKE-L5",
	"FrodoKEM-640-AES",
	"FrodoKEM-640-SHAKE",
	"FrodoKEM-976-AES",
	"FrodoKEM-976-SHAKE",
	"FrodoKEM-1344-AES",
	"FrodoKEM-1344-SHAKE",
}

var defaultSIG = []string{
	"ML-DSA-44",
	"ML-DSA-65",
	"ML-DSA-87",
	"Falcon-512",
	"Falcon-1024",
	"Falcon-padded-512",
	"Falcon-padded-1024",
	"SPHINCS+-SHA2-128f-simple",
	"SPHINCS+-SHA2-128s-simple",
	"SPHINCS+-SHA2-192f-simple",
	"SPHINCS+-SHA2-192s-simple",
	"SPHINCS+-SHA2-256f-simple",
	"SPHINCS+-SHA2-256s-simple",
	"SPHINCS+-SHAKE-128f-simple",
	"SPHINCS+-SHAKE-128s-simple",
	"SPHINCS+-SHAKE-192f-simple",
	"SPHINCS+-SHAKE-192s-simple",
	"SPHINCS+-SHAKE-256f-simple",
	"SPHINCS+-SHAKE-256s-simple",
}

// Suites maps each suite to its algorithm list. The zero value is not
// useful; construct one with DefaultSuites or LoadSuites.
type Suites struct {
	KEM []string `yaml:"kem"`
	SIG []string `yaml:"sig"`
}

// DefaultSuites returns the built-in algorithm lists.
func DefaultSuites() *Suites {
	return &Suites{
		KEM: append([]string(nil), defaultKEM...),
		SIG: append([]string(nil), defaultSIG...),
	}
}

// LoadSuites reads algorithm lists from a YAML file with top-level
// "kem" and "sig" sequences. A suite omitted from the file keeps its
// built-in list.
func LoadSuites(path string) (*Suites, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading suites: %w", err)
	}
	s := new(Suites)
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing suites %s: %w", path, err)
	}
	def := DefaultSuites()
	if len(s.KEM) == 0 {
		s.KEM = def.KEM
	}
	if len(s.SIG) == 0 {
		s.SIG = def.SIG
	}
	return s, nil
}

// Algorithms returns the algorithm list for suite s.
func (c *Suites) Algorithms(s Suite) []string {
	switch s {
	case KEM:
		return c.KEM
	case SIG:
		return c.SIG
	}
	return nil
}

// Contains reports whether alg is in suite s's list.
func (c *Suites) Contains(s Suite, alg string) bool {
	for _, a := range c.Algorithms(s) {
		if a == alg {
			return true
		}
	}
	return false
}
