// Package livepage drives a headless Chrome page through rod: it captures
// the rendered DOM as a snapshot document and reports debounced DOM
// mutations so callers can rebuild the accessibility tree as the page
// changes.
package livepage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/axsim/idgen"
	"github.com/hazyhaar/axsim/livepage/mutation"
	"github.com/hazyhaar/axsim/source/snapshot"
)

//go:embed capture.js
var captureJS string

//go:embed observer.js
var observerJS string

const bindingName = "__axsim_binding"

// ErrObserving is returned when Observe is called twice on one page.
var ErrObserving = errors.New("livepage: already observing")

// Config configures a live page.
type Config struct {
	// Remote is the DevTools websocket URL of a running Chrome. Empty
	// launches a local headless instance.
	Remote string
	// Stealth opens the tab with go-rod/stealth evasions.
	Stealth bool
	// LoadTimeout bounds navigation. Default 30s.
	LoadTimeout time.Duration
	// Block lists resource kinds to refuse: images, fonts, media, stylesheets.
	Block []string
	// Debounce is the quiet period before a mutation batch is emitted. Default 250ms.
	Debounce time.Duration
	// MaxBuffer flushes a batch early once this many records are pending. Default 1000.
	MaxBuffer int
	// NewID names batches. Default idgen.UUIDv7.
	NewID  idgen.Generator
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 30 * time.Second
	}
	if c.Debounce <= 0 {
		c.Debounce = 250 * time.Millisecond
	}
	if c.MaxBuffer <= 0 {
		c.MaxBuffer = 1000
	}
	if c.NewID == nil {
		c.NewID = idgen.UUIDv7()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Page is one browser tab navigated to a URL.
type Page struct {
	cfg     Config
	url     string
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	router  *rod.HijackRouter

	seq       atomic.Uint64
	observing atomic.Bool
	closeOnce sync.Once
}

// Open starts or connects to Chrome and navigates a new tab to url.
func Open(ctx context.Context, url string, cfg Config) (*Page, error) {
	cfg.defaults()
	p := &Page{cfg: cfg, url: url}

	wsURL := cfg.Remote
	if wsURL == "" {
		l := launcher.New().Headless(true).Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("livepage: launch: %w", err)
		}
		wsURL = u
		p.lnch = l
		cfg.Logger.Info("livepage: launched local chrome", "url", wsURL)
	} else {
		cfg.Logger.Info("livepage: connecting to remote", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		p.cleanup()
		return nil, fmt.Errorf("livepage: connect: %w", err)
	}
	p.browser = b

	var err error
	if cfg.Stealth {
		p.page, err = stealth.Page(b)
	} else {
		p.page, err = b.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		p.cleanup()
		return nil, fmt.Errorf("livepage: create tab: %w", err)
	}

	if len(cfg.Block) > 0 {
		p.router = blockResources(p.page, cfg.Block)
	}

	navCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
	defer cancel()
	if err := p.page.Context(navCtx).Navigate(url); err != nil {
		p.cleanup()
		return nil, fmt.Errorf("livepage: navigate %s: %w", url, err)
	}
	if err := p.page.Context(navCtx).WaitLoad(); err != nil {
		cfg.Logger.Warn("livepage: wait load", "url", url, "error", err)
	}
	return p, nil
}

// URL returns the address the page was opened on.
func (p *Page) URL() string { return p.url }

// Capture snapshots the rendered DOM. Element keys are stable for the
// lifetime of the document, so successive captures can be diffed.
func (p *Page) Capture(ctx context.Context) (*snapshot.Document, error) {
	res, err := p.page.Context(ctx).Eval(captureJS)
	if err != nil {
		return nil, fmt.Errorf("livepage: capture: %w", err)
	}
	var c snapshot.Capture
	if err := json.Unmarshal([]byte(res.Value.Str()), &c); err != nil {
		return nil, fmt.Errorf("livepage: capture: decode: %w", err)
	}
	c.CapturedAt = time.Now().UTC()
	doc, err := snapshot.New(&c)
	if err != nil {
		return nil, fmt.Errorf("livepage: capture: %w", err)
	}
	return doc, nil
}

// Observe injects a MutationObserver and calls fn with each debounced
// batch until ctx is done. fn runs on a single goroutine. The observer
// is re-injected after every page load.
func (p *Page) Observe(ctx context.Context, fn func(mutation.Batch)) error {
	if !p.observing.CompareAndSwap(false, true) {
		return ErrObserving
	}
	defer p.observing.Store(false)

	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(p.page); err != nil {
		p.cfg.Logger.Warn("livepage: add binding (may already exist)", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	raw := make(chan mutation.Record, 4096)
	wait := p.page.Context(ctx).EachEvent(
		func(e *proto.RuntimeBindingCalled) {
			if e.Name == bindingName {
				p.receive(ctx, e.Payload, raw)
			}
		},
		func(*proto.PageLoadEventFired) {
			go func() {
				if err := p.inject(ctx); err != nil {
					p.cfg.Logger.Warn("livepage: reinject observer", "error", err)
				}
			}()
		},
	)
	go wait()

	if err := p.inject(ctx); err != nil {
		return err
	}
	p.cfg.Logger.Debug("livepage: observing", "url", p.url)

	d := newDebouncer(p.cfg.Debounce, p.cfg.MaxBuffer, func(recs []mutation.Record) {
		fn(p.batch(recs))
	})
	d.run(ctx, raw)
	return nil
}

func (p *Page) inject(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(observerJS); err != nil {
		return fmt.Errorf("livepage: inject observer: %w", err)
	}
	return nil
}

func (p *Page) receive(ctx context.Context, payload string, out chan<- mutation.Record) {
	var recs []mutation.Record
	if err := json.Unmarshal([]byte(payload), &recs); err != nil {
		p.cfg.Logger.Warn("livepage: parse binding payload", "error", err)
		return
	}
	for _, r := range recs {
		select {
		case out <- r:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Page) batch(recs []mutation.Record) mutation.Batch {
	return mutation.Batch{
		ID:        p.cfg.NewID(),
		PageURL:   p.url,
		Seq:       p.seq.Add(1),
		Records:   recs,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Close closes the tab and, when it was launched locally, Chrome itself.
func (p *Page) Close() error {
	var err error
	p.closeOnce.Do(func() { err = p.cleanup() })
	return err
}

func (p *Page) cleanup() error {
	var errs []error
	if p.router != nil {
		errs = append(errs, p.router.Stop())
	}
	if p.page != nil {
		errs = append(errs, p.page.Close())
	}
	if p.browser != nil && p.lnch != nil {
		errs = append(errs, p.browser.Close())
	}
	if p.lnch != nil {
		p.lnch.Cleanup()
	}
	return errors.Join(errs...)
}
