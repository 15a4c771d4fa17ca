package main

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed init.sql
var initSQL string

const insertSweep = `
INSERT INTO sweeps (
	name, start_time, end_time, feature_counts, load_ratios,
	trials_per_config, epoch_budget, mean, std_dev, seed, success_policy
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertCell = `
INSERT INTO cells (
	sweep_id, n, alpha, p, mode, successes, proportion, mean_epoch, std_epoch
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store persists finished sweeps in a sqlite database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(initSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("executing init.sql: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSweep writes the sweep row and all of its cells in one transaction and
// returns the new sweep id.
func (s *Store) SaveSweep(record SweepRecord, cells []CellRecord) (int64, error) {
	featureCounts, err := json.Marshal(record.FeatureCounts)
	if err != nil {
		return 0, err
	}
	loadRatios, err := json.Marshal(record.LoadRatios)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(insertSweep,
		record.Name,
		record.StartTime,
		record.EndTime,
		string(featureCounts),
		string(loadRatios),
		record.TrialsPerConfig,
		record.EpochBudget,
		record.Mean,
		record.StdDev,
		int64(record.Seed),
		record.SuccessPolicy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert sweep: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, c := range cells {
		if _, err := tx.Exec(insertCell, id, c.N, c.Alpha, c.P, c.Mode, c.Successes, c.Proportion, c.MeanEpoch, c.StdEpoch); err != nil {
			return 0, fmt.Errorf("insert cell N=%d alpha=%v %s: %w", c.N, c.Alpha, c.Mode, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Sweep loads one sweep row.
func (s *Store) Sweep(id int64) (SweepRecord, error) {
	var (
		rec                       SweepRecord
		featureCounts, loadRatios string
		seed                      int64
	)
	err := s.db.QueryRow(`
SELECT id, name, start_time, end_time, feature_counts, load_ratios,
	trials_per_config, epoch_budget, mean, std_dev, seed, success_policy
FROM sweeps WHERE id = ?`, id).Scan(
		&rec.ID, &rec.Name, &rec.StartTime, &rec.EndTime, &featureCounts, &loadRatios,
		&rec.TrialsPerConfig, &rec.EpochBudget, &rec.Mean, &rec.StdDev, &seed, &rec.SuccessPolicy)
	if err != nil {
		return SweepRecord{}, err
	}
	rec.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(featureCounts), &rec.FeatureCounts); err != nil {
		return SweepRecord{}, err
	}
	if err := json.Unmarshal([]byte(loadRatios), &rec.LoadRatios); err != nil {
		return SweepRecord{}, err
	}
	return rec, nil
}

// Cells loads the cells of a sweep ordered by N, alpha and mode.
func (s *Store) Cells(sweepID int64) ([]CellRecord, error) {
	rows, err := s.db.Query(`
SELECT sweep_id, n, alpha, p, mode, successes, proportion, mean_epoch, std_epoch
FROM cells WHERE sweep_id = ? ORDER BY n, alpha, mode DESC`, sweepID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CellRecord
	for rows.Next() {
		var c CellRecord
		if err := rows.Scan(&c.SweepID, &c.N, &c.Alpha, &c.P, &c.Mode, &c.Successes, &c.Proportion, &c.MeanEpoch, &c.StdEpoch); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
