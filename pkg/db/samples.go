package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yumyai/sangercheck/pkg/model"

	_ "modernc.org/sqlite"
)

const sampleSchema = `
	CREATE TABLE IF NOT EXISTS sample_pairs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		label          TEXT NOT NULL DEFAULT '',
		read_path      TEXT NOT NULL,
		reference_path TEXT NOT NULL,
		UNIQUE (read_path, reference_path)
	);
`

// SampleDB is the sqlite sample sheet: which read goes with which reference.
type SampleDB struct {
	sampleSQL *sql.DB
}

// OpenSampleDB opens (creating if needed) the sample sheet at path.
func OpenSampleDB(ctx context.Context, path string) (*SampleDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time is all sqlite gives us anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sampleSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sample_pairs: %w", err)
	}
	return &SampleDB{sampleSQL: db}, nil
}

func (s *SampleDB) Close() error {
	return s.sampleSQL.Close()
}

// AddPair inserts a pair; re-adding the same read/reference is a no-op.
func (s *SampleDB) AddPair(ctx context.Context, p model.Pair) error {
	qstring := `INSERT OR IGNORE INTO sample_pairs (label, read_path, reference_path) VALUES (?, ?, ?)`

	stm, err := s.sampleSQL.PrepareContext(ctx, qstring)
	if err != nil {
		return err
	}
	defer stm.Close()

	if _, err := stm.ExecContext(ctx, p.Label, p.Read, p.Reference); err != nil {
		return fmt.Errorf("insert pair %s: %w", p, err)
	}
	return nil
}

// Pairs lists the sample sheet in insertion order.
func (s *SampleDB) Pairs(ctx context.Context) ([]model.Pair, error) {
	qstring := `SELECT label, read_path, reference_path FROM sample_pairs ORDER BY id`

	stm, err := s.sampleSQL.PrepareContext(ctx, qstring)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Pair
	for rows.Next() {
		var p model.Pair
		if err := rows.Scan(&p.Label, &p.Read, &p.Reference); err != nil {
			return nil, fmt.Errorf("scan sample_pairs: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// DeletePair removes a pair by its read and reference paths.
func (s *SampleDB) DeletePair(ctx context.Context, p model.Pair) (bool, error) {
	res, err := s.sampleSQL.ExecContext(ctx,
		`DELETE FROM sample_pairs WHERE read_path = ? AND reference_path = ?`, p.Read, p.Reference)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
