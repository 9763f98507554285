package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/axsim/analyze"
	"github.com/hazyhaar/axsim/config"
	"github.com/hazyhaar/axsim/livepage/mutation"
	"github.com/hazyhaar/axsim/source/htmldoc"
)

const page = `<html><head><title>T</title></head><body>
<nav aria-label="Main"><a href="/a">A</a></nav>
<main><h1>Title</h1><h2>Part</h2><button>Go</button></main>
</body></html>`

func setup(t *testing.T) string {
	t.Helper()
	cfg = config.Default()
	logger = slog.Default()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDocumentSnapshot(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "capture.json")
	capture := `{"root":{"tag":"body","native":{},"children":[
		{"tag":"button","text":"Save","native":{"focusable":true}}]}}`
	if err := os.WriteFile(path, []byte(capture), 0o644); err != nil {
		t.Fatal(err)
	}
	tr, err := buildTree(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tr.Outline(), "Save") {
		t.Errorf("outline = %q", tr.Outline())
	}
}

func TestWriteReport(t *testing.T) {
	path := setup(t)
	doc, err := loadDocument(path, false)
	if err != nil {
		t.Fatal(err)
	}
	r, err := newAuditor().Audit(context.Background(), "page.html", doc)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"source": "page.html"`},
		{"md", "# Accessibility report"},
		{"html", "<article>"},
		{"summary", "page.html score="},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := writeReport(&buf, r, tt.format); err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("%s output missing %q:\n%s", tt.format, tt.want, buf.String())
		}
	}
	if err := writeReport(&bytes.Buffer{}, r, "pdf"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestInteract(t *testing.T) {
	path := setup(t)
	cfg.Simulator.Vendor = "jaws"
	tr, err := buildTree(path, false)
	if err != nil {
		t.Fatal(err)
	}
	sr, err := newScreenReader()
	if err != nil {
		t.Fatal(err)
	}
	sr.SetTree(tr)

	in := strings.NewReader("next-heading\n\nfly\nnext-heading\nquit\nnext-heading\n")
	var out bytes.Buffer
	if err := interact(sr, in, &out); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q, want banner, two headings and an error", lines)
	}
	if !strings.Contains(lines[1], "Title") || !strings.Contains(lines[3], "Part") {
		t.Errorf("headings = %q, %q", lines[1], lines[3])
	}
	if !strings.Contains(lines[2], "fly") {
		t.Errorf("unknown command line = %q", lines[2])
	}
}

func TestLiveAuditorUpdateRate(t *testing.T) {
	setup(t)
	doc, err := htmldoc.ParseString(`<main><div id="s" role="status">Saved</div></main>`)
	if err != nil {
		t.Fatal(err)
	}
	key := uint64(doc.ResolveID("s").Key())

	tests := []struct {
		name    string
		updates int
		maxRate float64
		want    int
	}{
		{"quiet", 1, 1, 0},
		{"chatty", 5, 1, 1},
		{"configured limit", 5, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.LiveRegions.MaxUpdateRate = tt.maxRate
			start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			rates := mutation.NewRateCounter(func() time.Time { return start })
			for range tt.updates {
				rates.Add(mutation.Batch{Records: []mutation.Record{{Op: mutation.OpText, Key: key, Live: "polite"}}})
			}
			r, err := liveAuditor(rates).Audit(context.Background(), "live", doc)
			if err != nil {
				t.Fatal(err)
			}
			got := 0
			for _, is := range r.LiveRegions.Issues {
				if is.Type == analyze.IssueTooFrequentUpdates {
					got++
				}
			}
			if got != tt.want {
				t.Errorf("too-frequent-updates = %d, want %d", got, tt.want)
			}
		})
	}
}
