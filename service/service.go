// Package service exposes audits, trees and screen reader simulations over
// HTTP and MCP. Both transports share the same kit endpoints.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/config"
	"github.com/hazyhaar/axsim/internal/store"
	"github.com/hazyhaar/axsim/kit"
	"github.com/hazyhaar/axsim/screenreader"
	"github.com/hazyhaar/axsim/shield"
	"github.com/hazyhaar/axsim/source/htmldoc"
)

var (
	// ErrBadRequest marks caller errors.
	ErrBadRequest = errors.New("service: bad request")
	// ErrNoStore is returned by report lookups when no store is configured.
	ErrNoStore = errors.New("service: no report store")
)

// Service holds the shared endpoints.
type Service struct {
	cfg     *config.Config
	auditor *audit.Auditor
	store   *store.Store
	logger  *slog.Logger
	limiter *shield.RateLimiter

	audit    kit.Endpoint
	tree     kit.Endpoint
	simulate kit.Endpoint
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists audit reports and enables the report routes.
func WithStore(s *store.Store) Option { return func(svc *Service) { svc.store = s } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(svc *Service) { svc.logger = l } }

// WithConfig sets simulator and builder defaults. Default config.Default().
func WithConfig(c *config.Config) Option { return func(svc *Service) { svc.cfg = c } }

// New returns a Service auditing with a.
func New(a *audit.Auditor, opts ...Option) *Service {
	s := &Service{auditor: a}
	for _, o := range opts {
		o(s)
	}
	if s.cfg == nil {
		s.cfg = config.Default()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	rules := make(map[string]shield.Rule, len(s.cfg.Server.RateLimits))
	for endpoint, rl := range s.cfg.Server.RateLimits {
		rules[endpoint] = shield.Rule{MaxRequests: rl.MaxRequests, Window: rl.Window}
	}
	s.limiter = shield.NewRateLimiter(rules, s.logger)

	s.audit = kit.Logging(s.logger, "audit")(func(ctx context.Context, req any) (any, error) {
		return s.Audit(ctx, req.(*AuditRequest))
	})
	s.tree = kit.Logging(s.logger, "tree")(func(ctx context.Context, req any) (any, error) {
		return s.Tree(ctx, req.(*TreeRequest))
	})
	s.simulate = kit.Logging(s.logger, "simulate")(func(ctx context.Context, req any) (any, error) {
		return s.Simulate(ctx, req.(*SimulateRequest))
	})
	return s
}

// StartGC expires idle rate limit buckets until done is closed.
func (s *Service) StartGC(done <-chan struct{}) {
	s.limiter.StartGC(5*time.Minute, done)
}

// AuditRequest is the input of Audit.
type AuditRequest struct {
	Name     string `json:"name"`
	HTML     string `json:"html"`
	Sanitize bool   `json:"sanitize"`
}

// Audit parses the HTML, audits it and saves the report when a store is
// configured.
func (s *Service) Audit(ctx context.Context, req *AuditRequest) (*audit.Report, error) {
	doc, err := s.parse(req.HTML, req.Sanitize)
	if err != nil {
		return nil, err
	}
	name := req.Name
	if name == "" {
		name = "inline"
	}
	r, err := s.auditor.Audit(ctx, name, doc)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.SaveReport(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// TreeRequest is the input of Tree.
type TreeRequest struct {
	HTML     string `json:"html"`
	Sanitize bool   `json:"sanitize"`
}

// TreeResponse carries the accessibility tree in two shapes.
type TreeResponse struct {
	Nodes   int                `json:"nodes"`
	Outline string             `json:"outline"`
	Root    *axtree.ExportNode `json:"root"`
}

// Tree builds the accessibility tree of the HTML.
func (s *Service) Tree(_ context.Context, req *TreeRequest) (*TreeResponse, error) {
	t, err := s.build(req.HTML, req.Sanitize)
	if err != nil {
		return nil, err
	}
	return &TreeResponse{Nodes: t.Len(), Outline: t.Outline(), Root: t.Export()}, nil
}

// SimulateRequest is the input of Simulate. Empty fields fall back to the
// configured simulator defaults.
type SimulateRequest struct {
	HTML      string   `json:"html"`
	Sanitize  bool     `json:"sanitize"`
	Vendor    string   `json:"vendor"`
	Verbosity string   `json:"verbosity"`
	Platform  string   `json:"platform"`
	Browser   string   `json:"browser"`
	Commands  []string `json:"commands"`
}

// SimulateResponse is the utterance log of a simulation.
type SimulateResponse struct {
	Vendor        announce.Vendor         `json:"vendor"`
	Announcements []announce.Announcement `json:"announcements"`
	Spoken        []string                `json:"spoken"`
	Mode          screenreader.Mode       `json:"mode"`
	Current       int                     `json:"current"`
}

// Simulate runs commands against a fresh simulator. Without commands the
// document is read from top to bottom with "next".
func (s *Service) Simulate(_ context.Context, req *SimulateRequest) (*SimulateResponse, error) {
	t, err := s.build(req.HTML, req.Sanitize)
	if err != nil {
		return nil, err
	}

	sim := s.cfg.Simulator
	sim.Vendor = or(req.Vendor, sim.Vendor)
	sim.Verbosity = or(req.Verbosity, sim.Verbosity)
	sim.Platform = or(req.Platform, sim.Platform)
	sim.Browser = or(req.Browser, sim.Browser)
	cfg := *s.cfg
	cfg.Simulator = sim

	vendor, opts, err := cfg.SimulatorOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	sr, err := screenreader.New(vendor, append(opts, screenreader.WithLogger(s.logger), screenreader.WithTree(t))...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	var got []announce.Announcement
	if len(req.Commands) == 0 {
		got = sr.ReadAll()
	} else if got, err = screenreader.RunAll(sr, req.Commands); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	resp := &SimulateResponse{
		Vendor:        vendor,
		Announcements: got,
		Spoken:        make([]string, len(got)),
		Mode:          sr.Mode(),
		Current:       -1,
	}
	for i, a := range got {
		resp.Spoken[i] = a.Text
	}
	if n := sr.Current(); n != nil {
		resp.Current = n.ID
	}
	return resp, nil
}

func (s *Service) parse(html string, sanitize bool) (*htmldoc.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%w: empty document", ErrBadRequest)
	}
	var opts []htmldoc.Option
	if sanitize || s.cfg.Builder.Sanitize {
		opts = append(opts, htmldoc.WithSanitize())
	}
	doc, err := htmldoc.ParseString(html, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return doc, nil
}

func (s *Service) build(html string, sanitize bool) (*axtree.Tree, error) {
	doc, err := s.parse(html, sanitize)
	if err != nil {
		return nil, err
	}
	opts := append(s.cfg.BuilderOptions(), axtree.WithLogger(s.logger))
	t, err := axtree.NewBuilder(opts...).Build(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return t, nil
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
