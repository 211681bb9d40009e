// Package history keeps a local sqlite record of past runs, so
// repeated harvests can be inspected without trawling per-day
// metadata files.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/statdocs/harvester/internal/harvest"
)

// Store persists run summaries in a sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		download_directory TEXT NOT NULL,
		total_files INTEGER NOT NULL,
		successful_downloads INTEGER NOT NULL,
		failed_downloads INTEGER NOT NULL,
		failed_filenames TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert records one completed run.
func (s *Store) Insert(ctx context.Context, meta harvest.RunMetadata) error {
	failed, err := json.Marshal(meta.FailedFilenames)
	if err != nil {
		return fmt.Errorf("marshal failed filenames: %w", err)
	}

	query := `INSERT INTO runs
		(run_id, timestamp, download_directory, total_files, successful_downloads, failed_downloads, failed_filenames)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		meta.RunID,
		meta.Timestamp.Format(time.RFC3339),
		meta.DownloadDirectory,
		meta.TotalFiles,
		meta.SuccessfulDownloads,
		meta.FailedDownloads,
		string(failed),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", meta.RunID, err)
	}
	return nil
}

// List returns past runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]harvest.RunMetadata, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT run_id, timestamp, download_directory, total_files, successful_downloads, failed_downloads, failed_filenames
		FROM runs ORDER BY timestamp DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []harvest.RunMetadata
	for rows.Next() {
		var (
			meta   harvest.RunMetadata
			ts     string
			failed string
		)
		if err := rows.Scan(
			&meta.RunID,
			&ts,
			&meta.DownloadDirectory,
			&meta.TotalFiles,
			&meta.SuccessfulDownloads,
			&meta.FailedDownloads,
			&failed,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if meta.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(failed), &meta.FailedFilenames); err != nil {
			return nil, fmt.Errorf("unmarshal failed filenames: %w", err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
