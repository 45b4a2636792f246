// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package speedfmt parses the output of the liboqs speed test
// binaries (speed_kem, speed_sig).
//
// One invocation of a speed binary prints a table with one row per
// operation, carrying the iteration count, total wall time, mean time
// per operation, and mean CPU cycle count, followed by a line of
// key and ciphertext sizes. The Reader scans that output and yields
// one OpResult per operation row. Malformed rows produce a
// *SyntaxError from Result; such errors are non-fatal and the caller
// can keep scanning.
package speedfmt

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pqcbench/pqcbench/oqs"
)

// An OpResult is the parsed measurement row for one operation from
// one invocation of a speed binary.
type OpResult struct {
	Op       oqs.Operation
	Iters    int
	TotalSec float64
	// TimeUS is the mean time per operation, normalized to
	// microseconds regardless of the unit the producer reported.
	TimeUS float64
	// Cycles is the mean CPU cycle count per operation.
	Cycles float64
}

// A SyntaxError represents a malformed line in speed benchmark
// output.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// A Reader reads speed benchmark output.
//
// Its API is modeled on bufio.Scanner: Scan advances to the next
// operation row, Result returns it, and Err reports the first I/O
// error encountered.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	lineNum  int
	err      error // sticky I/O error

	timeUnit string

	result    OpResult
	resultErr error

	sizes     Sizes
	haveSizes bool
}

// NewReader constructs a reader that parses speed benchmark output
// from r. fileName is used in error messages; it is purely
// diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	return &Reader{
		s:        bufio.NewScanner(r),
		fileName: fileName,
		timeUnit: "us",
	}
}

var opNames = map[string]oqs.Operation{
	"keygen": oqs.OpKeygen,
	"encaps": oqs.OpEncaps,
	"decaps": oqs.OpDecaps,
	"sign":   oqs.OpSign,
	"verify": oqs.OpVerify,
}

var timeUnitRe = regexp.MustCompile(`Time \(([^)]+)\)`)

// Scan advances the reader to the next operation row and reports
// whether one was read. The caller should use Result to get the row.
// When Scan returns false the caller should check Err.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}

	for r.s.Scan() {
		r.lineNum++
		line := r.s.Text()

		bar := strings.IndexByte(line, '|')
		if bar >= 0 {
			head := strings.TrimSpace(line[:bar])
			if op, ok := opNames[head]; ok {
				r.resultErr = r.parseOpRow(op, line[bar+1:])
				return true
			}
			if m := timeUnitRe.FindStringSubmatch(line); m != nil {
				r.timeUnit = strings.TrimSpace(m[1])
			}
			// Algorithm name or header row.
			continue
		}
		if strings.Contains(line, "bytes:") || strings.Contains(line, "NIST level:") {
			r.parseSizesLine(line)
			continue
		}
		// Ignore the line.
	}

	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.lineNum, err)
	}
	return false
}

// parseOpRow parses the columns of an operation row, which follow
// the operation name: iterations | total time (s) | mean time |
// time stdev | mean cycles | cycles stdev.
func (r *Reader) parseOpRow(op oqs.Operation, rest string) error {
	cols := strings.Split(rest, "|")
	if len(cols) < 6 {
		return &SyntaxError{r.fileName, r.lineNum, fmt.Sprintf("%s row has %d columns, want 6", op, len(cols))}
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	iters, err := strconv.Atoi(cols[0])
	if err != nil {
		return &SyntaxError{r.fileName, r.lineNum, "parsing iteration count: " + err.Error()}
	}
	total, err := strconv.ParseFloat(cols[1], 64)
	if err != nil {
		return &SyntaxError{r.fileName, r.lineNum, "parsing total time: " + err.Error()}
	}
	mean, err := strconv.ParseFloat(cols[2], 64)
	if err != nil {
		return &SyntaxError{r.fileName, r.lineNum, "parsing mean time: " + err.Error()}
	}
	meanUS, err := ToMicros(mean, r.timeUnit)
	if err != nil {
		return &SyntaxError{r.fileName, r.lineNum, err.Error()}
	}
	// Cycle counts may use spaces or commas as group separators.
	cyclesStr := strings.NewReplacer(" ", "", ",", "").Replace(cols[4])
	cycles, err := strconv.ParseFloat(cyclesStr, 64)
	if err != nil {
		return &SyntaxError{r.fileName, r.lineNum, "parsing cycle count: " + err.Error()}
	}

	r.result = OpResult{
		Op:       op,
		Iters:    iters,
		TotalSec: total,
		TimeUS:   meanUS,
		Cycles:   cycles,
	}
	return nil
}

// Result returns the last operation row read, or an error if the row
// was malformed. Parse errors are non-fatal, so the caller can
// continue to call Scan.
func (r *Reader) Result() (*OpResult, error) {
	if r.resultErr != nil {
		return nil, r.resultErr
	}
	return &r.result, nil
}

// Err returns the first non-EOF I/O error encountered by the Reader.
func (r *Reader) Err() error {
	return r.err
}

// Sizes returns the key and ciphertext sizes parsed so far, and
// whether a sizes line has been seen.
func (r *Reader) Sizes() (Sizes, bool) {
	return r.sizes, r.haveSizes
}
