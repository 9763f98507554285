// Package audit runs the accessibility tree builder and every structural
// analyzer over one document and gathers the results into a Report.
//
// Audits are pure apart from logging and metrics: the same document always
// yields the same findings. A Session keeps the latest tree and report for
// a document that changes over time and is rebuilt on demand.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hazyhaar/axsim/analyze"
	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/idgen"
	"github.com/hazyhaar/axsim/observability"
	"github.com/hazyhaar/axsim/source"
)

// Report is the outcome of one audit.
type Report struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Nodes     int       `json:"nodes"`
	// Score is the rounded mean of the five analyzer scores.
	Score    int                      `json:"score"`
	Severity map[analyze.Severity]int `json:"severity"`

	ReadingOrder *analyze.Result[analyze.ReadingOrderItem] `json:"reading_order"`
	Landmarks    *analyze.Result[analyze.LandmarkInfo]     `json:"landmarks"`
	Headings     *analyze.Result[analyze.HeadingInfo]      `json:"headings"`
	Forms        *analyze.Result[analyze.FormFieldInfo]    `json:"forms"`
	LiveRegions  *analyze.Result[analyze.LiveRegionInfo]   `json:"live_regions"`

	tree *axtree.Tree
}

// Tree returns the tree the report was computed from. It is nil for
// reports loaded from a store.
func (r *Report) Tree() *axtree.Tree { return r.tree }

// Section is one analyzer's share of a report.
type Section struct {
	Name   string          `json:"name"`
	Score  int             `json:"score"`
	Issues []analyze.Issue `json:"issues"`
}

// Sections lists the analyzer results in a fixed order.
func (r *Report) Sections() []Section {
	return []Section{
		section("Reading order", r.ReadingOrder),
		section("Landmarks", r.Landmarks),
		section("Headings", r.Headings),
		section("Forms", r.Forms),
		section("Live regions", r.LiveRegions),
	}
}

func section[T any](name string, res *analyze.Result[T]) Section {
	if res == nil {
		return Section{Name: name}
	}
	return Section{Name: name, Score: res.Score, Issues: res.Issues}
}

// Count returns the number of issues of severity sev.
func (r *Report) Count(sev string) int { return r.Severity[analyze.Severity(sev)] }

// IssueCount is the total number of issues.
func (r *Report) IssueCount() int {
	n := 0
	for _, c := range r.Severity {
		n += c
	}
	return n
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(a *Auditor) { a.logger = l } }

// WithMetrics records durations, sizes and scores of every audit.
func WithMetrics(mm *observability.MetricsManager) Option { return func(a *Auditor) { a.metrics = mm } }

// WithBuilderOptions passes options to the tree builder.
func WithBuilderOptions(opts ...axtree.Option) Option {
	return func(a *Auditor) { a.builderOpts = append(a.builderOpts, opts...) }
}

// WithReadingOrderOptions passes options to the reading order analyzer.
func WithReadingOrderOptions(opts ...analyze.ReadingOrderOption) Option {
	return func(a *Auditor) { a.readingOpts = append(a.readingOpts, opts...) }
}

// WithLiveRegionOptions passes options to the live region analyzer.
func WithLiveRegionOptions(opts ...analyze.LiveRegionOption) Option {
	return func(a *Auditor) { a.liveOpts = append(a.liveOpts, opts...) }
}

// WithIDGenerator overrides report ids.
func WithIDGenerator(gen idgen.Generator) Option { return func(a *Auditor) { a.newID = gen } }

// WithClock overrides time.Now for CreatedAt.
func WithClock(now func() time.Time) Option { return func(a *Auditor) { a.now = now } }

// Auditor is safe for concurrent use.
type Auditor struct {
	logger      *slog.Logger
	metrics     *observability.MetricsManager
	builderOpts []axtree.Option
	readingOpts []analyze.ReadingOrderOption
	liveOpts    []analyze.LiveRegionOption
	newID       idgen.Generator
	now         func() time.Time
}

// New returns an Auditor.
func New(opts ...Option) *Auditor {
	a := &Auditor{newID: idgen.Report, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

type titled interface{ Title() string }

// Audit builds the accessibility tree of doc and runs every analyzer.
// name identifies the document in the report (a path or URL).
func (a *Auditor) Audit(ctx context.Context, name string, doc source.Document) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	b := axtree.NewBuilder(append([]axtree.Option{axtree.WithLogger(a.logger)}, a.builderOpts...)...)
	tree, err := b.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("audit: build %s: %w", name, err)
	}

	r := &Report{
		ID:           a.newID(),
		Source:       name,
		CreatedAt:    a.now().UTC(),
		Nodes:        tree.Len(),
		ReadingOrder: analyze.ReadingOrder(tree, a.readingOpts...),
		Landmarks:    analyze.Landmarks(tree),
		Headings:     analyze.Headings(tree),
		Forms:        analyze.Forms(tree),
		LiveRegions:  analyze.LiveRegions(tree, a.liveOpts...),
		tree:         tree,
	}
	if t, ok := doc.(titled); ok {
		r.Title = t.Title()
	}
	r.tally()

	elapsed := time.Since(start)
	a.logger.Info("audit: done",
		"id", r.ID, "source", name, "nodes", r.Nodes, "score", r.Score,
		"issues", r.IssueCount(), "elapsed", elapsed)
	if a.metrics != nil {
		labels := map[string]string{"source": name}
		a.metrics.Duration(observability.MetricAuditDuration, elapsed, labels)
		a.metrics.Count(observability.MetricTreeNodes, float64(r.Nodes), labels)
		a.metrics.Count(observability.MetricAuditScore, float64(r.Score), labels)
		a.metrics.Count(observability.MetricAuditIssues, float64(r.IssueCount()), labels)
	}
	return r, nil
}

// tally computes Score and Severity from the sections.
func (r *Report) tally() {
	r.Severity = map[analyze.Severity]int{
		analyze.Critical: 0, analyze.Serious: 0, analyze.Moderate: 0, analyze.Minor: 0,
	}
	secs := r.Sections()
	total := 0
	for _, s := range secs {
		total += s.Score
		for _, is := range s.Issues {
			r.Severity[is.Severity]++
		}
	}
	r.Score = int(math.Round(float64(total) / float64(len(secs))))
}
