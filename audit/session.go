package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/observability"
	"github.com/hazyhaar/axsim/source"
)

// Loader returns the current state of a document.
type Loader func(ctx context.Context) (source.Document, error)

// Session tracks one document whose content changes. Notification streams
// (file watchers, live page observers) call Rebuild; readers get the most
// recent successful tree and report. It is safe for concurrent use.
type Session struct {
	name    string
	load    Loader
	auditor *Auditor
	logger  *slog.Logger

	mu     sync.RWMutex
	tree   *axtree.Tree
	report *Report
	hooks  []func(*axtree.Tree, *Report)

	// build serialises Rebuild calls.
	build sync.Mutex
}

// NewSession returns a Session that has not been built yet.
func NewSession(name string, load Loader, a *Auditor) *Session {
	if a == nil {
		a = New()
	}
	return &Session{name: name, load: load, auditor: a, logger: a.logger}
}

// OnRebuild registers fn to run after every successful rebuild, in
// registration order. Simulators use it to receive fresh trees.
func (s *Session) OnRebuild(fn func(*axtree.Tree, *Report)) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Rebuild reloads the document and audits it again. On failure the
// previous tree and report are kept.
func (s *Session) Rebuild(ctx context.Context) (*Report, error) {
	s.build.Lock()
	defer s.build.Unlock()

	start := time.Now()
	doc, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: load %s: %w", s.name, err)
	}
	r, err := s.auditor.Audit(ctx, s.name, doc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tree, s.report = r.tree, r
	hooks := append([]func(*axtree.Tree, *Report){}, s.hooks...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(r.tree, r)
	}
	if mm := s.auditor.metrics; mm != nil {
		mm.Duration(observability.MetricRebuildDuration, time.Since(start), map[string]string{"source": s.name})
	}
	s.logger.Debug("audit: session rebuilt", "source", s.name, "report", r.ID)
	return r, nil
}

// Tree returns the latest tree, or nil before the first rebuild.
func (s *Session) Tree() *axtree.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Report returns the latest report, or nil before the first rebuild.
func (s *Session) Report() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}
