package store

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/dbopen"
	"github.com/hazyhaar/axsim/source/htmldoc"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{DB: dbopen.OpenMemory(t, dbopen.WithSchema(Schema))}
}

func report(t *testing.T, id, src string, at time.Time) *audit.Report {
	t.Helper()
	doc, err := htmldoc.ParseString(`<h1>A</h1><h3>B</h3><img src="x.png">`)
	if err != nil {
		t.Fatal(err)
	}
	a := audit.New(
		audit.WithIDGenerator(func() string { return id }),
		audit.WithClock(func() time.Time { return at }),
	)
	r, err := a.Audit(context.Background(), src, doc)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestReportRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := report(t, "rpt_1", "a.html", at)

	if err := s.SaveReport(ctx, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetReport(ctx, "rpt_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != r.Score || got.Nodes != r.Nodes || got.IssueCount() != r.IssueCount() {
		t.Errorf("got %d/%d/%d, want %d/%d/%d",
			got.Score, got.Nodes, got.IssueCount(), r.Score, r.Nodes, r.IssueCount())
	}
	if !got.CreatedAt.Equal(at) || got.Tree() != nil {
		t.Errorf("created %v, tree %v", got.CreatedAt, got.Tree())
	}
	if len(got.Headings.Items) != 2 {
		t.Errorf("headings = %d", len(got.Headings.Items))
	}

	counts, err := s.IssueCounts(ctx, "rpt_1")
	if err != nil {
		t.Fatal(err)
	}
	if counts["skipped-level"] != 1 {
		t.Errorf("issue counts = %v", counts)
	}

	// Saving again replaces rather than duplicating issues.
	if err := s.SaveReport(ctx, r); err != nil {
		t.Fatalf("resave: %v", err)
	}
	again, _ := s.IssueCounts(ctx, "rpt_1")
	if again["skipped-level"] != 1 {
		t.Errorf("issues duplicated on resave: %v", again)
	}
}

func TestGetReportNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetReport(context.Background(), "rpt_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteReport(context.Background(), "rpt_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete err = %v, want ErrNotFound", err)
	}
}

func TestListReports(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, src := range []string{"a.html", "b.html", "a.html"} {
		r := report(t, "rpt_"+string(rune('1'+i)), src, base.Add(time.Duration(i)*time.Minute))
		if err := s.SaveReport(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListReports(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "rpt_3" || all[2].ID != "rpt_1" {
		t.Fatalf("list = %+v", all)
	}

	onlyA, err := s.ListReports(ctx, ListOptions{Source: "a.html", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyA) != 1 || onlyA[0].ID != "rpt_3" {
		t.Fatalf("filtered = %+v", onlyA)
	}

	if err := s.DeleteReport(ctx, "rpt_3"); err != nil {
		t.Fatal(err)
	}
	counts, _ := s.IssueCounts(ctx, "rpt_3")
	if len(counts) != 0 {
		t.Errorf("issues left after delete: %v", counts)
	}
}
