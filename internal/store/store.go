package store

import (
	"context"
	"database/sql"
)

// Store archives one summary row per snapshot so rates can be compared
// across restarts. It never feeds data back into the pipeline.
type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store { return &Store{DB: db} }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	fetched_at TIMESTAMP NOT NULL,
	mode TEXT NOT NULL,
	total INTEGER NOT NULL,
	offers INTEGER NOT NULL,
	response_rate REAL NOT NULL,
	oa_rate REAL NOT NULL,
	interview_rate REAL NOT NULL,
	offer_rate REAL NOT NULL,
	rejection_rate REAL NOT NULL,
	acceptance_rate REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS run_stages (
	run_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY (run_id, stage),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS runs_fetched_at ON runs(fetched_at);
`)
	return err
}
