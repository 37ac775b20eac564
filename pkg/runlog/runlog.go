// Package runlog keeps a local sqlite journal of completed passes, one row
// per site run, for operational inspection. Journal failures are never fatal
// to a crawl.
package runlog

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"kompare/pkg/pipeline"
)

type Journal struct {
	db *sql.DB
}

// Run is one recorded pass.
type Run struct {
	ID         int64
	Site       string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string // "completed" or "failed"
	Summary    pipeline.Summary
}

func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			site TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			processed INTEGER NOT NULL,
			created INTEGER NOT NULL,
			updated INTEGER NOT NULL,
			unchanged INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed_pages INTEGER NOT NULL,
			deleted INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Record(run Run) error {
	_, err := j.db.Exec(
		`INSERT INTO runs
			(site, started_at, finished_at, status,
			 processed, created, updated, unchanged, skipped, failed_pages, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Site, run.StartedAt, run.FinishedAt, run.Status,
		run.Summary.Processed, run.Summary.Created, run.Summary.Updated,
		run.Summary.Unchanged, run.Summary.Skipped, run.Summary.FailedPages,
		run.Summary.Deleted,
	)
	return err
}

// History returns the site's most recent runs, newest first.
func (j *Journal) History(site string, limit int) ([]Run, error) {
	rows, err := j.db.Query(
		`SELECT id, site, started_at, finished_at, status,
			processed, created, updated, unchanged, skipped, failed_pages, deleted
		 FROM runs WHERE site = ? ORDER BY id DESC LIMIT ?`,
		site, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		err := rows.Scan(&r.ID, &r.Site, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.Summary.Processed, &r.Summary.Created, &r.Summary.Updated,
			&r.Summary.Unchanged, &r.Summary.Skipped, &r.Summary.FailedPages,
			&r.Summary.Deleted)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
