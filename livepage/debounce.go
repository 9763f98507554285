package livepage

import (
	"context"
	"time"

	"github.com/hazyhaar/axsim/livepage/mutation"
)

// debouncer collects raw records and emits compressed record sets when the
// window expires after the last record or when the buffer fills.
type debouncer struct {
	window    time.Duration
	maxBuffer int
	records   []mutation.Record
	timer     *time.Timer
	timerCh   <-chan time.Time
	flushFn   func([]mutation.Record)
}

func newDebouncer(window time.Duration, maxBuffer int, flushFn func([]mutation.Record)) *debouncer {
	if window <= 0 {
		window = 250 * time.Millisecond
	}
	if maxBuffer <= 0 {
		maxBuffer = 1000
	}
	return &debouncer{
		window:    window,
		maxBuffer: maxBuffer,
		records:   make([]mutation.Record, 0, maxBuffer),
		flushFn:   flushFn,
	}
}

// add buffers rec and reports whether the buffer filled and was flushed.
func (d *debouncer) add(rec mutation.Record) bool {
	d.records = append(d.records, rec)
	if len(d.records) >= d.maxBuffer {
		d.flush()
		return true
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.NewTimer(d.window)
	d.timerCh = d.timer.C
	return false
}

func (d *debouncer) timerC() <-chan time.Time { return d.timerCh }

func (d *debouncer) flush() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		d.timerCh = nil
	}
	if len(d.records) == 0 {
		return
	}
	out := mutation.Compress(append([]mutation.Record(nil), d.records...))
	d.records = d.records[:0]
	d.flushFn(out)
}

// run drains in until ctx is done or in is closed, flushing what remains.
func (d *debouncer) run(ctx context.Context, in <-chan mutation.Record) {
	defer d.flush()
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-in:
			if !ok {
				return
			}
			d.add(rec)
		case <-d.timerC():
			d.flush()
		}
	}
}
