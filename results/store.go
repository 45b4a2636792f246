// Copyright 2025 The pqcbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package results

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// A Store archives records in a local SQLite database so results can
// be compared across machines and dates without scraping CSV files.
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS records (
	id           TEXT PRIMARY KEY,
	created_at   TEXT NOT NULL,
	mode         TEXT NOT NULL,
	suite        TEXT NOT NULL,
	repetitions  INTEGER NOT NULL,
	confidence   REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS speed_stats (
	record_id        TEXT NOT NULL REFERENCES records(id),
	algorithm        TEXT NOT NULL,
	operation        TEXT NOT NULL,
	n_total          INTEGER NOT NULL,
	n_used           INTEGER NOT NULL,
	time_us_mean     REAL, time_us_std REAL, time_us_ci_low REAL, time_us_ci_high REAL,
	cycles_mean      REAL, cycles_std REAL, cycles_ci_low REAL, cycles_ci_high REAL
);
CREATE TABLE IF NOT EXISTS memory_stats (
	record_id        TEXT NOT NULL REFERENCES records(id),
	algorithm        TEXT NOT NULL,
	operation        TEXT NOT NULL,
	n_total          INTEGER NOT NULL,
	n_used           INTEGER NOT NULL,
	heap_mean_mib    REAL, heap_std_mib REAL,
	stack_mean_mib   REAL, stack_std_mib REAL,
	total_mean_mib   REAL, total_std_mib REAL,
	insts_mean       REAL
);
`

// OpenStore opens (creating if necessary) the archive database at
// path. Pass ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening results store: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing results store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put archives rec. The insert is transactional: either the record
// and all of its statistics rows are committed, or nothing is.
func (s *Store) Put(rec *Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistError{"store", err}
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO records (id, created_at, mode, suite, repetitions, confidence) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), rec.Mode, rec.Suite, rec.Repetitions, rec.Confidence,
	)
	if err != nil {
		return &PersistError{"store", err}
	}
	for _, st := range rec.Speed {
		_, err = tx.Exec(
			`INSERT INTO speed_stats VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, st.Algorithm, string(st.Operation), st.NTotal, st.NUsed,
			st.Time.Mean, st.Time.StdDev, st.Time.Lo, st.Time.Hi,
			st.Cycles.Mean, st.Cycles.StdDev, st.Cycles.Lo, st.Cycles.Hi,
		)
		if err != nil {
			return &PersistError{"store", err}
		}
	}
	for _, st := range rec.Memory {
		_, err = tx.Exec(
			`INSERT INTO memory_stats VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, st.Algorithm, string(st.Operation), st.NTotal, st.NUsed,
			st.HeapMiB.Mean, st.HeapMiB.StdDev,
			st.StackMiB.Mean, st.StackMiB.StdDev,
			st.TotalMiB.Mean, st.TotalMiB.StdDev,
			st.Insts.Mean,
		)
		if err != nil {
			return &PersistError{"store", err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &PersistError{"store", err}
	}
	return nil
}

// RecordIDs returns the IDs of all archived records for mode, oldest
// first.
func (s *Store) RecordIDs(mode string) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM records WHERE mode = ? ORDER BY created_at, id`, mode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
