package livepage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/axsim/livepage/mutation"
)

type collector struct {
	mu      sync.Mutex
	batches [][]mutation.Record
}

func (c *collector) flush(recs []mutation.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, recs)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func TestDebouncerWindow(t *testing.T) {
	var c collector
	d := newDebouncer(50*time.Millisecond, 100, c.flush)

	in := make(chan mutation.Record)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.run(ctx, in)
		close(done)
	}()

	for _, v := range []string{"1", "2", "3"} {
		in <- mutation.Record{Op: mutation.OpText, XPath: "/p/text()", Value: v}
	}
	deadline := time.Now().Add(2 * time.Second)
	for c.len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if c.len() != 1 {
		t.Fatalf("batches = %d, want 1", c.len())
	}
	got := c.batches[0]
	if len(got) != 1 || got[0].Value != "3" {
		t.Errorf("batch = %+v, want one compressed text record", got)
	}
}

func TestDebouncerMaxBuffer(t *testing.T) {
	var c collector
	d := newDebouncer(time.Hour, 3, c.flush)

	for i := range 3 {
		full := d.add(mutation.Record{Op: mutation.OpInsert, XPath: "/ul/li", Tag: string(rune('a' + i))})
		if full != (i == 2) {
			t.Errorf("add %d full = %v", i, full)
		}
	}
	if c.len() != 1 || len(c.batches[0]) != 3 {
		t.Fatalf("batches = %+v, want one batch of 3", c.batches)
	}
	if d.timerC() != nil {
		t.Error("timer still armed after flush")
	}
}

func TestDebouncerFlushOnClose(t *testing.T) {
	var c collector
	d := newDebouncer(time.Hour, 100, c.flush)

	in := make(chan mutation.Record, 1)
	in <- mutation.Record{Op: mutation.OpRemove, XPath: "/div"}
	close(in)
	d.run(context.Background(), in)

	if c.len() != 1 {
		t.Fatalf("batches = %d, want pending records flushed on close", c.len())
	}
}

func TestShouldBlock(t *testing.T) {
	blocked := map[string]bool{"images": true, "fonts": true}
	tests := []struct {
		kind string
		want bool
	}{
		{"Image", true},
		{"Font", true},
		{"Stylesheet", false},
		{"Script", false},
	}
	for _, tt := range tests {
		if got := shouldBlock(blocked, tt.kind); got != tt.want {
			t.Errorf("shouldBlock(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
