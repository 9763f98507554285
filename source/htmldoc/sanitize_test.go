package htmldoc_test

import (
	"slices"
	"testing"

	"github.com/hazyhaar/axsim/analyze"
	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/source/htmldoc"
)

func buildPage(t *testing.T, page string, opts ...htmldoc.Option) *axtree.Tree {
	t.Helper()
	doc, err := htmldoc.ParseString(page, opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tree, err := axtree.NewBuilder().Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tree
}

func TestSanitizePreservesResults(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"constraints", `<main><form>
			<label for="zip">Zip</label><input id="zip" pattern="[0-9]{5}">
			<label for="pw">Password</label><input id="pw" type="password" minlength="12" maxlength="64">
			<label for="qty">Quantity</label><input id="qty" type="number" min="1" max="9" step="1">
			</form></main>`},
		{"listbox select", `<main><label for="s">Pick</label>
			<select id="s" size="4"><option>a</option><option>b</option></select></main>`},
		{"landmarks and live", `<header>Top</header><nav aria-label="Site"><a href="/x">X</a></nav>
			<main><h1>Title</h1><div role="status" aria-live="polite">Saved</div></main>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := buildPage(t, tt.page)
			clean := buildPage(t, tt.page, htmldoc.WithSanitize())

			if got, want := clean.Outline(), raw.Outline(); got != want {
				t.Errorf("sanitized outline:\n%s\nwant:\n%s", got, want)
			}
			if got, want := issueTypes(analyze.Forms(clean).Issues), issueTypes(analyze.Forms(raw).Issues); !slices.Equal(got, want) {
				t.Errorf("sanitized form issues = %v, want %v", got, want)
			}
		})
	}
}

func TestSanitizeKeepsInstructionTriggers(t *testing.T) {
	const page = `<form>
		<label for="a">Code</label><input id="a" pattern="[A-Z]+">
		<label for="b">Name</label><input id="b" minlength="3">
		</form>`
	for _, opts := range [][]htmldoc.Option{nil, {htmldoc.WithSanitize()}} {
		res := analyze.Forms(buildPage(t, page, opts...))
		n := 0
		for _, is := range res.Issues {
			if is.Type == analyze.IssueMissingInstructions {
				n++
			}
		}
		if n != 2 {
			t.Errorf("sanitize=%v: missing-instructions = %d, want 2", len(opts) > 0, n)
		}
	}
}

func issueTypes(issues []analyze.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Type)
	}
	slices.Sort(out)
	return out
}
