// Package watch runs the "detect change, debounce, rebuild" loop that keeps
// an audit session in step with the document it reads from.
//
// A ChangeDetector returns a version token; two different tokens mean the
// document changed. Built-in detectors poll a file's stat or content, count
// fsnotify events, or read PRAGMA data_version from a report store.
//
//	w := watch.New(watch.Options{Detector: watch.FileStat("page.html"), Debounce: 300 * time.Millisecond})
//	go w.OnChange(ctx, func() error { _, err := session.Rebuild(ctx); return err })
package watch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ChangeDetector reads the current version token of the watched source.
type ChangeDetector func(ctx context.Context) (int64, error)

// Options tunes the watcher.
type Options struct {
	// Interval is the polling frequency. Default: 500ms.
	Interval time.Duration
	// Debounce is the quiet period after a change before the action fires.
	// A newer version during the window restarts it. 0 fires immediately.
	Debounce time.Duration
	// Detector is required.
	Detector ChangeDetector
	Logger   *slog.Logger
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Watcher polls a detector and runs an action when the version moves. It is
// safe for concurrent use.
type Watcher struct {
	opts Options

	version atomic.Int64

	versionMu   sync.Mutex
	versionCond *sync.Cond

	checks   atomic.Int64
	changes  atomic.Int64
	errors   atomic.Int64
	rebuilds atomic.Int64
	buildNs  atomic.Int64
}

// Stats are point-in-time counters.
type Stats struct {
	Checks          int64         `json:"checks"`
	ChangesDetected int64         `json:"changes_detected"`
	Errors          int64         `json:"errors"`
	Rebuilds        int64         `json:"rebuilds"`
	AvgRebuildTime  time.Duration `json:"avg_rebuild_time"`
}

// New creates a Watcher. Call OnChange to start the loop.
func New(opts Options) *Watcher {
	opts.defaults()
	w := &Watcher{opts: opts}
	w.version.Store(-1)
	w.versionCond = sync.NewCond(&w.versionMu)
	return w
}

// Stats returns the current counters.
func (w *Watcher) Stats() Stats {
	s := Stats{
		Checks:          w.checks.Load(),
		ChangesDetected: w.changes.Load(),
		Errors:          w.errors.Load(),
		Rebuilds:        w.rebuilds.Load(),
	}
	if s.Rebuilds > 0 {
		s.AvgRebuildTime = time.Duration(w.buildNs.Load() / s.Rebuilds)
	}
	return s
}

// Version returns the last version the action succeeded for, or -1.
func (w *Watcher) Version() int64 { return w.version.Load() }

// OnChange blocks until ctx is cancelled. The version seen at start is the
// baseline; the action is not run for it. When the action fails the version
// is not advanced and the next poll retries.
func (w *Watcher) OnChange(ctx context.Context, action func() error) {
	log := w.opts.Logger
	if w.opts.Detector == nil {
		log.Error("watch: no detector configured")
		return
	}

	if v, err := w.opts.Detector(ctx); err != nil {
		log.Warn("watch: initial version check failed", "error", err)
	} else {
		w.setVersion(v)
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	pending, hasPending := int64(0), false

	log.Info("watch: started", "interval", w.opts.Interval, "debounce", w.opts.Debounce)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			log.Info("watch: stopped")
			return

		case <-ticker.C:
			w.checks.Add(1)
			cur, err := w.opts.Detector(ctx)
			if err != nil {
				w.errors.Add(1)
				log.Warn("watch: version check failed", "error", err)
				continue
			}
			if cur == w.version.Load() || (hasPending && cur == pending) {
				continue
			}
			w.changes.Add(1)
			pending, hasPending = cur, true
			if w.opts.Debounce <= 0 {
				w.fire(log, action, pending)
				hasPending = false
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(w.opts.Debounce)
			debounceCh = debounce.C
			log.Debug("watch: change detected, debouncing", "pending_version", cur)

		case <-debounceCh:
			debounceCh = nil
			if hasPending {
				w.fire(log, action, pending)
				hasPending = false
			}
		}
	}
}

// WaitForVersion blocks until the action has succeeded for a version
// >= target, or ctx expires.
func (w *Watcher) WaitForVersion(ctx context.Context, target int64) error {
	if w.version.Load() >= target {
		return nil
	}

	stop := context.AfterFunc(ctx, func() {
		w.versionMu.Lock()
		w.versionCond.Broadcast()
		w.versionMu.Unlock()
	})
	defer stop()

	w.versionMu.Lock()
	defer w.versionMu.Unlock()
	for w.version.Load() < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.versionCond.Wait()
	}
	return nil
}

func (w *Watcher) fire(log *slog.Logger, action func() error, ver int64) {
	log.Info("watch: rebuilding", "old_version", w.version.Load(), "new_version", ver)
	start := time.Now()
	if err := action(); err != nil {
		w.errors.Add(1)
		log.Error("watch: rebuild failed", "error", err, "version", ver)
		return
	}
	elapsed := time.Since(start)
	w.rebuilds.Add(1)
	w.buildNs.Add(int64(elapsed))
	w.setVersion(ver)
	log.Info("watch: rebuild complete", "version", ver, "duration", elapsed)
}

func (w *Watcher) setVersion(v int64) {
	w.versionMu.Lock()
	w.version.Store(v)
	w.versionMu.Unlock()
	w.versionCond.Broadcast()
}
