package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/dbopen"
)

// Summary is one row of ListReports.
type Summary struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
	Nodes     int       `json:"nodes"`
	Issues    int       `json:"issues"`
}

// ListOptions filters ListReports.
type ListOptions struct {
	// Source restricts the list to one document.
	Source string
	// Limit defaults to 50.
	Limit int
}

// SaveReport stores r and its issues. Saving an id twice replaces it.
func (s *Store) SaveReport(ctx context.Context, r *audit.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: encode report: %w", err)
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, r.ID); err != nil {
			return fmt.Errorf("store: replace report: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reports (id, source, title, created_at, score, nodes, issues, body)
			VALUES (?,?,?,?,?,?,?,?)`,
			r.ID, r.Source, r.Title, r.CreatedAt.UnixMilli(), r.Score, r.Nodes, r.IssueCount(), string(body))
		if err != nil {
			return fmt.Errorf("store: insert report: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO report_issues (report_id, section, type, severity, message, node_id)
			VALUES (?,?,?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("store: prepare issues: %w", err)
		}
		defer stmt.Close()
		for _, sec := range r.Sections() {
			for _, is := range sec.Issues {
				if _, err := stmt.ExecContext(ctx, r.ID, sec.Name, is.Type, string(is.Severity), is.Message, is.NodeID); err != nil {
					return fmt.Errorf("store: insert issue: %w", err)
				}
			}
		}
		return nil
	})
}

// GetReport loads a report. The result has no tree attached.
func (s *Store) GetReport(ctx context.Context, id string) (*audit.Report, error) {
	var body string
	err := s.DB.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get report: %w", err)
	}
	var r audit.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("store: decode report %s: %w", id, err)
	}
	return &r, nil
}

// ListReports returns summaries, newest first.
func (s *Store) ListReports(ctx context.Context, opts ListOptions) ([]Summary, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	q := `SELECT id, source, title, created_at, score, nodes, issues FROM reports`
	var args []any
	if opts.Source != "" {
		q += ` WHERE source = ?`
		args = append(args, opts.Source)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, opts.Limit)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created int64
		if err := rows.Scan(&sum.ID, &sum.Source, &sum.Title, &created, &sum.Score, &sum.Nodes, &sum.Issues); err != nil {
			return nil, fmt.Errorf("store: scan report: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// IssueCounts returns how many stored issues of each type a report has.
func (s *Store) IssueCounts(ctx context.Context, id string) (map[string]int, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM report_issues WHERE report_id = ? GROUP BY type`, id)
	if err != nil {
		return nil, fmt.Errorf("store: issue counts: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("store: scan issue count: %w", err)
		}
		out[typ] = n
	}
	return out, rows.Err()
}

// DeleteReport removes a report and its issues.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
