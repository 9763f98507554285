// Package observability records audit timings and outcomes as a SQLite
// timeseries, next to the report store or in a database of its own.
//
// Recording never blocks the audit: datapoints are buffered and flushed in
// batches by a background goroutine, and a failing flush is logged and
// dropped.
package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Metric names written by axsim.
const (
	MetricAuditDuration   = "audit_duration_ms"
	MetricTreeNodes       = "tree_nodes"
	MetricAuditScore      = "audit_score"
	MetricAuditIssues     = "audit_issues"
	MetricRebuildDuration = "rebuild_duration_ms"
)

// Metric is a single datapoint.
type Metric struct {
	Name      string
	Timestamp time.Time
	Value     float64
	Labels    map[string]string
	Unit      string
}

// MetricsManager buffers metrics and flushes them to SQLite in batches.
type MetricsManager struct {
	db            *sql.DB
	logger        *slog.Logger
	bufferSize    int
	flushInterval time.Duration

	mu     sync.Mutex
	buffer []*Metric

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Option configures a MetricsManager.
type Option func(*MetricsManager)

// WithBufferSize flushes as soon as n datapoints are pending. Default 100.
func WithBufferSize(n int) Option { return func(m *MetricsManager) { m.bufferSize = n } }

// WithFlushInterval sets the periodic flush. Default 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(m *MetricsManager) { m.flushInterval = d }
}

// WithLogger sets the logger used for flush failures.
func WithLogger(l *slog.Logger) Option { return func(m *MetricsManager) { m.logger = l } }

// NewMetricsManager starts a manager writing to db. db must carry Schema.
func NewMetricsManager(db *sql.DB, opts ...Option) *MetricsManager {
	mm := &MetricsManager{
		db:            db,
		bufferSize:    100,
		flushInterval: 5 * time.Second,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, o := range opts {
		o(mm)
	}
	if mm.logger == nil {
		mm.logger = slog.Default()
	}
	if mm.bufferSize <= 0 {
		mm.bufferSize = 1
	}
	mm.buffer = make([]*Metric, 0, mm.bufferSize)
	go mm.flushLoop()
	return mm
}

// Record queues m. A zero Timestamp is set to now.
func (mm *MetricsManager) Record(m *Metric) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.buffer = append(mm.buffer, m)
	if len(mm.buffer) >= mm.bufferSize {
		mm.flushLocked()
	}
}

// Count records a unitless value.
func (mm *MetricsManager) Count(name string, v float64, labels map[string]string) {
	mm.Record(&Metric{Name: name, Value: v, Labels: labels, Unit: "count"})
}

// Duration records d in milliseconds.
func (mm *MetricsManager) Duration(name string, d time.Duration, labels map[string]string) {
	mm.Record(&Metric{
		Name:   name,
		Value:  float64(d.Microseconds()) / 1000,
		Labels: labels,
		Unit:   "milliseconds",
	})
}

// Flush writes pending datapoints now.
func (mm *MetricsManager) Flush() {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.flushLocked()
}

// Query returns stored datapoints, newest first. An empty name matches all
// metrics; since zero means unbounded.
func (mm *MetricsManager) Query(ctx context.Context, name string, since time.Time, limit int) ([]*Metric, error) {
	q := "SELECT metric_name, timestamp, value, labels, unit FROM metrics_timeseries WHERE 1=1"
	var args []any
	if name != "" {
		q += " AND metric_name = ?"
		args = append(args, name)
	}
	if !since.IsZero() {
		q += " AND timestamp >= ?"
		args = append(args, since.UnixMilli())
	}
	q += " ORDER BY timestamp DESC, metric_id DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := mm.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("observability: query: %w", err)
	}
	defer rows.Close()

	var out []*Metric
	for rows.Next() {
		var (
			m      Metric
			ts     int64
			labels sql.NullString
			unit   sql.NullString
		)
		if err := rows.Scan(&m.Name, &ts, &m.Value, &labels, &unit); err != nil {
			return nil, fmt.Errorf("observability: scan: %w", err)
		}
		m.Timestamp = time.UnixMilli(ts)
		m.Unit = unit.String
		if labels.Valid {
			_ = json.Unmarshal([]byte(labels.String), &m.Labels)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Close flushes what is pending and stops the flush loop. It is safe to call
// more than once.
func (mm *MetricsManager) Close() error {
	mm.once.Do(func() { close(mm.stop) })
	<-mm.done
	return nil
}

func (mm *MetricsManager) flushLoop() {
	defer close(mm.done)
	ticker := time.NewTicker(mm.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-mm.stop:
			mm.Flush()
			return
		case <-ticker.C:
			mm.Flush()
		}
	}
}

func (mm *MetricsManager) flushLocked() {
	if len(mm.buffer) == 0 {
		return
	}
	defer func() { mm.buffer = mm.buffer[:0] }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		mm.logger.Error("observability: begin tx", "error", err, "dropped", len(mm.buffer))
		return
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO metrics_timeseries (metric_name, timestamp, value, labels, unit) VALUES (?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		mm.logger.Error("observability: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, m := range mm.buffer {
		var labels sql.NullString
		if len(m.Labels) > 0 {
			if b, err := json.Marshal(m.Labels); err == nil {
				labels = sql.NullString{String: string(b), Valid: true}
			}
		}
		if _, err := stmt.ExecContext(ctx, m.Name, m.Timestamp.UnixMilli(), m.Value, labels, m.Unit); err != nil {
			mm.logger.Error("observability: insert", "error", err, "metric", m.Name)
		}
	}
	if err := tx.Commit(); err != nil {
		mm.logger.Error("observability: commit", "error", err)
	}
}
