package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/axsim/dbopen"
)

// counter is a detector the test controls directly.
type counter struct{ v atomic.Int64 }

func (c *counter) detect(context.Context) (int64, error) { return c.v.Load(), nil }

func TestOnChange_FiresOnVersionChange(t *testing.T) {
	var c counter
	var rebuilds atomic.Int32
	w := New(Options{Interval: 20 * time.Millisecond, Detector: c.detect})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.OnChange(ctx, func() error {
		rebuilds.Add(1)
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	if got := rebuilds.Load(); got != 0 {
		t.Fatalf("baseline version triggered %d rebuilds", got)
	}

	c.v.Store(1)
	time.Sleep(80 * time.Millisecond)
	if got := rebuilds.Load(); got != 1 {
		t.Fatalf("expected 1 rebuild, got %d", got)
	}

	c.v.Store(2)
	time.Sleep(80 * time.Millisecond)
	if got := rebuilds.Load(); got != 2 {
		t.Fatalf("expected 2 rebuilds, got %d", got)
	}

	time.Sleep(80 * time.Millisecond)
	if got := rebuilds.Load(); got != 2 {
		t.Fatalf("expected still 2, got %d", got)
	}
}

func TestOnChange_Debounce(t *testing.T) {
	var c counter
	var rebuilds atomic.Int32
	w := New(Options{
		Interval: 20 * time.Millisecond,
		Debounce: 100 * time.Millisecond,
		Detector: c.detect,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.OnChange(ctx, func() error {
		rebuilds.Add(1)
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	for i := 1; i <= 5; i++ {
		c.v.Store(int64(i))
		time.Sleep(15 * time.Millisecond)
	}
	if got := rebuilds.Load(); got != 0 {
		t.Fatalf("expected 0 rebuilds during debounce, got %d", got)
	}

	time.Sleep(200 * time.Millisecond)
	if got := rebuilds.Load(); got != 1 {
		t.Fatalf("expected exactly 1 debounced rebuild, got %d", got)
	}
	if v := w.Version(); v != 5 {
		t.Fatalf("version = %d, want 5", v)
	}
}

func TestOnChange_ErrorDoesNotAdvanceVersion(t *testing.T) {
	var c counter
	var calls atomic.Int32
	w := New(Options{Interval: 20 * time.Millisecond, Detector: c.detect})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.OnChange(ctx, func() error {
		if calls.Add(1) == 1 {
			return context.DeadlineExceeded
		}
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	c.v.Store(1)
	time.Sleep(120 * time.Millisecond)

	if got := calls.Load(); got < 2 {
		t.Fatalf("expected a failed and a successful call, got %d", got)
	}
	if v := w.Version(); v != 1 {
		t.Fatalf("expected version 1, got %d", v)
	}
	if s := w.Stats(); s.Errors == 0 || s.Rebuilds != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestWaitForVersion(t *testing.T) {
	var c counter
	w := New(Options{Interval: 20 * time.Millisecond, Detector: c.detect})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go w.OnChange(ctx, func() error { return nil })

	go func() {
		time.Sleep(80 * time.Millisecond)
		c.v.Store(10)
	}()
	if err := w.WaitForVersion(ctx, 10); err != nil {
		t.Fatalf("WaitForVersion: %v", err)
	}
	if v := w.Version(); v < 10 {
		t.Fatalf("expected version >= 10, got %d", v)
	}
}

func TestWaitForVersion_Timeout(t *testing.T) {
	var c counter
	w := New(Options{Interval: 20 * time.Millisecond, Detector: c.detect})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.OnChange(ctx, func() error { return nil })

	waitCtx, waitCancel := context.WithTimeout(ctx, 80*time.Millisecond)
	defer waitCancel()
	if err := w.WaitForVersion(waitCtx, 99); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFileDetectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	ctx := context.Background()

	for name, det := range map[string]ChangeDetector{
		"stat": FileStat(path),
		"hash": ContentHash(path),
	} {
		t.Run(name, func(t *testing.T) {
			os.Remove(path)
			v0, err := det(ctx)
			if err != nil || v0 != 0 {
				t.Fatalf("missing file: %d, %v", v0, err)
			}
			if err := os.WriteFile(path, []byte("<h1>a</h1>"), 0o644); err != nil {
				t.Fatal(err)
			}
			v1, err := det(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("<h1>ab</h1>"), 0o644); err != nil {
				t.Fatal(err)
			}
			v2, err := det(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if v1 == v0 || v2 == v1 {
				t.Fatalf("versions did not move: %d %d %d", v0, v1, v2)
			}
		})
	}
}

func TestContentHashIgnoresTouch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<p>same</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	det := ContentHash(path)
	v1, _ := det(context.Background())
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	v2, _ := det(context.Background())
	if v1 != v2 {
		t.Fatalf("touch changed the hash version")
	}
}

func TestFSNotify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	n, err := FSNotify(path)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	det := n.Detector()
	if v, _ := det(context.Background()); v != 0 {
		t.Fatalf("initial version = %d", v)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, _ := det(context.Background()); v > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no fsnotify event counted")
}

func TestDataVersion(t *testing.T) {
	db := dbopen.OpenMemory(t)
	v, err := DataVersion(db)(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v < 0 {
		t.Fatalf("expected non-negative version, got %d", v)
	}
}
