package observability

import (
	"context"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/axsim/dbopen"
)

func TestRecordAndQuery(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	mm := NewMetricsManager(db, WithFlushInterval(time.Hour))

	mm.Duration(MetricAuditDuration, 1500*time.Microsecond, map[string]string{"source": "page.html"})
	mm.Count(MetricTreeNodes, 42, nil)
	mm.Close()
	mm.Close()

	ctx := context.Background()
	got, err := mm.Query(ctx, MetricAuditDuration, time.Time{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d datapoints", len(got))
	}
	if got[0].Value != 1.5 || got[0].Unit != "milliseconds" || got[0].Labels["source"] != "page.html" {
		t.Errorf("metric = %+v", got[0])
	}

	all, err := mm.Query(ctx, "", time.Time{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}
}

func TestFlushOnBufferSize(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	mm := NewMetricsManager(db, WithBufferSize(2), WithFlushInterval(time.Hour))
	defer mm.Close()

	mm.Count(MetricAuditIssues, 1, nil)
	mm.Count(MetricAuditIssues, 2, nil)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM metrics_timeseries`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2 after reaching the buffer size", n)
	}
}

func TestQuerySince(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	mm := NewMetricsManager(db, WithFlushInterval(time.Hour))
	defer mm.Close()

	now := time.Now()
	mm.Record(&Metric{Name: MetricAuditScore, Timestamp: now.Add(-2 * time.Hour), Value: 50})
	mm.Record(&Metric{Name: MetricAuditScore, Timestamp: now, Value: 90})
	mm.Flush()

	got, err := mm.Query(context.Background(), MetricAuditScore, now.Add(-time.Hour), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Value != 90 {
		t.Fatalf("got %+v", got)
	}
}
