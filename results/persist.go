// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// A PersistError reports a failed durable write. It is the only
// failure class that aborts a pipeline invocation; no partial record
// is left published.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// A Persister writes records under a fixed directory. Filenames
// embed the record ID, so repeated runs never overwrite each other.
type Persister struct {
	Dir string
}

// publish writes via w to a temporary file in the destination
// directory and atomically renames it into place. On any error
// nothing is published.
func (p *Persister) publish(name string, w func(io.Writer) error) (string, error) {
	final := filepath.Join(p.Dir, name)
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", &PersistError{final, err}
	}
	f, err := os.CreateTemp(p.Dir, name+".tmp")
	if err != nil {
		return "", &PersistError{final, err}
	}
	tmp := f.Name()
	if err := w(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", &PersistError{final, err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", &PersistError{final, err}
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", &PersistError{final, err}
	}
	return final, nil
}

// WriteSpeedCSV publishes rec's speed statistics as one CSV row per
// algorithm/operation and returns the published path.
func (p *Persister) WriteSpeedCSV(rec *Record) (string, error) {
	name := fmt.Sprintf("results_speed_%s_%s.csv", rec.Suite, rec.ID)
	return p.publish(name, func(f io.Writer) error {
		w := csv.NewWriter(f)
		if err := w.Write([]string{
			"algorithm", "operation", "n_total", "n_used",
			"mean_iterations", "mean_total_time_s",
			"time_us_mean", "time_us_std", "time_us_ci_low", "time_us_ci_high",
			"cycles_mean", "cycles_std", "cycles_ci_low", "cycles_ci_high",
			"public_key_bytes", "secret_key_bytes", "ciphertext_bytes",
			"shared_secret_bytes", "signature_bytes", "nist_level",
		}); err != nil {
			return err
		}
		for _, st := range rec.Speed {
			err := w.Write([]string{
				st.Algorithm, string(st.Operation),
				strconv.Itoa(st.NTotal), strconv.Itoa(st.NUsed),
				ftoa(st.MeanIters), ftoa(st.MeanTotalSec),
				ftoa(st.Time.Mean), ftoa(st.Time.StdDev), ftoa(st.Time.Lo), ftoa(st.Time.Hi),
				ftoa(st.Cycles.Mean), ftoa(st.Cycles.StdDev), ftoa(st.Cycles.Lo), ftoa(st.Cycles.Hi),
				strconv.Itoa(st.Sizes.PublicKeyBytes), strconv.Itoa(st.Sizes.SecretKeyBytes),
				strconv.Itoa(st.Sizes.CiphertextBytes), strconv.Itoa(st.Sizes.SharedSecretBytes),
				strconv.Itoa(st.Sizes.SignatureBytes), strconv.Itoa(st.Sizes.NISTLevel),
			})
			if err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WriteMemoryCSV publishes rec's memory statistics as one CSV row
// per algorithm/operation and returns the published path.
func (p *Persister) WriteMemoryCSV(rec *Record) (string, error) {
	name := fmt.Sprintf("results_%s_mem_%s.csv", rec.Suite, rec.ID)
	return p.publish(name, func(f io.Writer) error {
		w := csv.NewWriter(f)
		if err := w.Write([]string{
			"algorithm", "operation", "n_total", "n_used",
			"insts_mean", "insts_std", "insts_ci_low", "insts_ci_high",
			"heap_mean_mib", "heap_std_mib", "heap_ci_low_mib", "heap_ci_high_mib",
			"extra_heap_mean_mib", "extra_heap_std_mib", "extra_heap_ci_low_mib", "extra_heap_ci_high_mib",
			"stack_mean_mib", "stack_std_mib", "stack_ci_low_mib", "stack_ci_high_mib",
			"total_mean_mib", "total_std_mib", "total_ci_low_mib", "total_ci_high_mib",
		}); err != nil {
			return err
		}
		for _, st := range rec.Memory {
			row := []string{
				st.Algorithm, string(st.Operation),
				strconv.Itoa(st.NTotal), strconv.Itoa(st.NUsed),
			}
			for _, s := range []struct{ Mean, Std, Lo, Hi float64 }{
				{st.Insts.Mean, st.Insts.StdDev, st.Insts.Lo, st.Insts.Hi},
				{st.HeapMiB.Mean, st.HeapMiB.StdDev, st.HeapMiB.Lo, st.HeapMiB.Hi},
				{st.ExtraHeapMiB.Mean, st.ExtraHeapMiB.StdDev, st.ExtraHeapMiB.Lo, st.ExtraHeapMiB.Hi},
				{st.StackMiB.Mean, st.StackMiB.StdDev, st.StackMiB.Lo, st.StackMiB.Hi},
				{st.TotalMiB.Mean, st.TotalMiB.StdDev, st.TotalMiB.Lo, st.TotalMiB.Hi},
			} {
				row = append(row, ftoa(s.Mean), ftoa(s.Std), ftoa(s.Lo), ftoa(s.Hi))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WriteMemoryJSON publishes rec as a structured document preserving
// the full numeric fields, including raw per-run peaks, and returns
// the published path.
func (p *Persister) WriteMemoryJSON(rec *Record) (string, error) {
	name := fmt.Sprintf("results_%s_mem_%s.json", rec.Suite, rec.ID)
	return p.publish(name, func(f io.Writer) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	})
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
