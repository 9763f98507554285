// Package store persists audit reports in SQLite.
package store

import (
	"database/sql"
	"errors"

	"github.com/hazyhaar/axsim/dbopen"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("store: report not found")

// Schema is the report store DDL.
const Schema = `
CREATE TABLE IF NOT EXISTS reports (
    id         TEXT PRIMARY KEY,
    source     TEXT NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    score      INTEGER NOT NULL,
    nodes      INTEGER NOT NULL,
    issues     INTEGER NOT NULL,
    body       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_source_time ON reports(source, created_at DESC);

CREATE TABLE IF NOT EXISTS report_issues (
    report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
    section   TEXT NOT NULL,
    type      TEXT NOT NULL,
    severity  TEXT NOT NULL,
    message   TEXT NOT NULL,
    node_id   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_issues_report ON report_issues(report_id);
CREATE INDEX IF NOT EXISTS idx_report_issues_type ON report_issues(type);
`

// Store is the report database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the report database at path.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	all := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)
	db, err := dbopen.Open(path, all...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
