// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speedfmt

import (
	"strconv"
	"strings"
)

// Sizes holds the mechanism parameter sizes the speed binaries print
// after the measurement table. Fields the producer did not report are
// zero. The KEM binaries report ciphertext and shared secret sizes;
// the signature binaries report the signature size instead.
type Sizes struct {
	PublicKeyBytes    int
	SecretKeyBytes    int
	CiphertextBytes   int
	SharedSecretBytes int
	SignatureBytes    int
	NISTLevel         int
}

// parseSizesLine parses a comma-separated list of "name: value"
// pairs, e.g.
//
//	public key bytes: 800, ciphertext bytes: 768, secret key bytes: 1632, shared secret key bytes: 32, NIST level: 1
//
// Unrecognized names are ignored so new producer fields do not break
// parsing.
func (r *Reader) parseSizesLine(line string) {
	for _, part := range strings.Split(line, ",") {
		colon := strings.LastIndexByte(part, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(part[:colon])
		val, err := strconv.Atoi(strings.TrimSpace(part[colon+1:]))
		if err != nil {
			continue
		}
		switch name {
		case "public key bytes":
			r.sizes.PublicKeyBytes = val
		case "secret key bytes":
			r.sizes.SecretKeyBytes = val
		case "ciphertext bytes":
			r.sizes.CiphertextBytes = val
		case "shared secret key bytes", "shared secret bytes":
			r.sizes.SharedSecretBytes = val
		case "signature bytes":
			r.sizes.SignatureBytes = val
		case "NIST level":
			r.sizes.NISTLevel = val
		default:
			continue
		}
		r.haveSizes = true
	}
}
