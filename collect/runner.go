// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collect invokes the external measurement producers (speed
// benchmark binaries and the Massif memory profiler) repeatedly and
// gathers their per-run observations.
//
// A single failed invocation (non-zero exit, unparseable output, a
// hung process hitting its timeout) is recorded as a per-run failure
// and skipped; the batch degrades to fewer samples rather than
// aborting. Only an algorithm/operation for which every run failed
// yields a *CollectionError.
package collect

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// A Runner invokes one external measurement producer and returns its
// standard output. It is the only seam between the statistical core
// and process execution; tests substitute a fake.
//
// Run blocks until the process exits or ctx is done. A ctx deadline
// must terminate a hung process; the resulting error is an ordinary
// per-run failure, never pipeline-fatal.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs a fixed executable as a subprocess.
type ExecRunner struct {
	Path string
	Dir  string
}

// A RunError describes one failed producer invocation.
type RunError struct {
	Path   string
	Args   []string
	Stderr string // trailing stderr, for diagnostics
	Err    error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("run %s %s: %v", e.Path, strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// Run executes the runner's binary with args, returning its stdout.
// Cancellation of ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// Prefer reporting the cancellation cause for timeouts.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &RunError{r.Path, args, lastLine(stderr.Bytes()), err}
	}
	return stdout.Bytes(), nil
}

// lastLine returns the last non-empty line of b.
func lastLine(b []byte) string {
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
