// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pqcbench measures execution speed and peak memory use of
// post-quantum cryptographic primitives and reduces the repeated raw
// measurements to statistically defensible summaries.
//
// Usage:
//
//	pqcbench -mode speed -exec path/to/speed_kem [flags]
//	pqcbench -mode mem -exec path/to/test_kem_mem [flags]
//
// In speed mode, pqcbench invokes the given liboqs speed binary -n
// times per algorithm and parses its per-operation timing table. In
// mem mode it runs the given memory test binary under Valgrind
// Massif, once per repetition, and reduces each run's snapshot trace
// to its peak heap and stack figures. Either way, per-series
// interquartile-range outlier rejection is applied before computing
// the mean, sample standard deviation, and a Student's t confidence
// interval, and the summary is written to a timestamped record under
// -out. Results report how many of the requested repetitions
// actually contributed (n_used/n_total), so a partially failed batch
// is visible rather than silent.
//
// Failed runs are skipped: an algorithm only disappears from the
// output if every one of its runs failed, and the rest of the batch
// still completes. Only a failure to write results aborts a run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pqcbench/pqcbench/oqs"
	"github.com/pqcbench/pqcbench/pipeline"
	"github.com/pqcbench/pqcbench/results"
)

func usage(flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(flags.Output(), `Usage: pqcbench -mode speed|mem -exec binary [flags]

pqcbench benchmarks post-quantum KEM and signature primitives for
speed (liboqs speed binaries) or peak memory (Valgrind Massif) and
writes timestamped statistical summaries.
`)
		flags.PrintDefaults()
	}
}

func main() {
	log.SetPrefix("pqcbench: ")
	log.SetFlags(0)
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("pqcbench", flag.ExitOnError)
	flags.Usage = usage(flags)
	flagMode := flags.String("mode", "speed", "measure `kind`: speed or mem")
	flagExec := flags.String("exec", "", "`path` to the speed or memory test binary")
	flagSuite := flags.String("suite", "kem", "mechanism `suite`: kem or sig")
	flagAlg := flags.String("alg", "", "benchmark only this `algorithm`")
	flagN := flags.Int("n", 20, "`repetitions` per algorithm/operation")
	flagConfidence := flags.Float64("confidence", 0.95, "confidence `level` for intervals")
	flagTimeout := flags.Duration("timeout", 10*time.Minute, "per-invocation `timeout` (0 for none)")
	flagOut := flags.String("out", "results", "results root `directory`")
	flagDB := flags.String("db", "", "also archive results in the SQLite database at `path`")
	flagSuites := flags.String("suites", "", "load algorithm lists from YAML `file`")
	flagValgrind := flags.String("valgrind", "valgrind", "`path` to the valgrind binary (mem mode)")
	flags.Parse(args)

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(2)
	}
	if *flagExec == "" {
		return fmt.Errorf("-exec is required")
	}
	if *flagConfidence <= 0 || *flagConfidence >= 1 {
		return fmt.Errorf("-confidence must be in range (0, 1)")
	}
	suite, err := oqs.ParseSuite(*flagSuite)
	if err != nil {
		return err
	}

	suites := oqs.DefaultSuites()
	if *flagSuites != "" {
		suites, err = oqs.LoadSuites(*flagSuites)
		if err != nil {
			return err
		}
	}
	algorithms := suites.Algorithms(suite)
	if *flagAlg != "" {
		if !suites.Contains(suite, *flagAlg) {
			return fmt.Errorf("algorithm %q is not in the %s suite", *flagAlg, suite)
		}
		algorithms = []string{*flagAlg}
	}

	var store *results.Store
	if *flagDB != "" {
		store, err = results.OpenStore(*flagDB)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	logger := log.New(wErr, "", 0)
	env, err := pipeline.NewEnv(*flagOut, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	var rec *results.Record
	switch *flagMode {
	case "speed":
		rec, err = pipeline.Speed(ctx, env, pipeline.SpeedConfig{
			Exec:        *flagExec,
			Suite:       suite,
			Algorithms:  algorithms,
			Repetitions: *flagN,
			Confidence:  *flagConfidence,
			Timeout:     *flagTimeout,
			Store:       store,
		})
	case "mem":
		rec, err = pipeline.Memory(ctx, env, pipeline.MemoryConfig{
			Binary:      *flagExec,
			Valgrind:    *flagValgrind,
			Suite:       suite,
			Algorithms:  algorithms,
			Repetitions: *flagN,
			Confidence:  *flagConfidence,
			Timeout:     *flagTimeout,
			Store:       store,
		})
	default:
		return fmt.Errorf("-mode must be speed or mem")
	}
	if err != nil {
		return err
	}

	printRecord(w, rec)
	return nil
}

// printRecord summarizes the record on stdout, one line per
// algorithm/operation, with the n_used/n_total accounting.
func printRecord(w io.Writer, rec *results.Record) {
	fmt.Fprintf(w, "record %s (%s %s)\n", rec.ID, rec.Mode, rec.Suite)
	for _, st := range rec.Speed {
		fmt.Fprintf(w, "%-40s %-7s %9.3f us ±%8.3f  [%9.3f, %9.3f]  n=%d/%d\n",
			st.Algorithm, st.Operation,
			st.Time.Mean, st.Time.StdDev, st.Time.Lo, st.Time.Hi,
			st.NUsed, st.NTotal)
	}
	for _, st := range rec.Memory {
		fmt.Fprintf(w, "%-40s %-7s heap %10.3f MiB ±%8.3f  stack %10.3f MiB ±%8.3f  n=%d/%d\n",
			st.Algorithm, st.Operation,
			st.HeapMiB.Mean, st.HeapMiB.StdDev,
			st.StackMiB.Mean, st.StackMiB.StdDev,
			st.NUsed, st.NTotal)
	}
}
