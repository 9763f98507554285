package analyze

import (
	"fmt"
	"strings"
	"testing"
)

func TestReadingOrderRoundTrip(t *testing.T) {
	tree := build(t, `
		<h1 data-rect="0,0,100,20">Title</h1>
		<a href="#a" data-rect="0,30,50,20">A</a>
		<a href="#b" data-rect="60,30,50,20">B</a>
		<button data-rect="0,60,50,20">C</button>
		<p>unnamed paragraphs are skipped</p>`)

	res := ReadingOrder(tree)
	if len(res.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(res.Items))
	}
	for i, it := range res.Items {
		if it.Order != i || it.VisualRank != i || it.Deviation != 0 || it.IsOutOfOrder {
			t.Errorf("item %d = %+v", i, it)
		}
	}
	if len(res.Issues) != 0 || res.Score != 100 {
		t.Errorf("issues = %+v score = %d", res.Issues, res.Score)
	}
}

func TestReadingOrderReversed(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&sb, `<h2 data-rect="0,%d,100,20">H%d</h2>`, (5-i)*50, i)
	}
	res := ReadingOrder(build(t, sb.String()))

	out := 0
	for _, it := range res.Items {
		if it.IsOutOfOrder {
			out++
		}
	}
	if out != 4 {
		t.Errorf("out of order = %d, want 4", out)
	}
	is := findIssue(t, res.Issues, IssueVisualLogicalMismatch)
	if is.Severity != Critical || len(is.Nodes) != 4 {
		t.Errorf("issue = %+v", is)
	}
	if res.Score != 70 {
		t.Errorf("score = %d, want 70", res.Score)
	}
}

func TestReadingOrderRowTolerance(t *testing.T) {
	res := ReadingOrder(build(t, `
		<h2 data-rect="200,100,50,20">Right</h2>
		<h2 data-rect="0,105,50,20">Left</h2>`))

	if res.Items[1].VisualRank != 0 || res.Items[0].VisualRank != 1 {
		t.Errorf("same-row items should be ordered by x: %+v", res.Items)
	}
	for _, it := range res.Items {
		if it.IsOutOfOrder {
			t.Errorf("deviation %d should be tolerated", it.Deviation)
		}
	}

	strict := ReadingOrder(build(t, `
		<h2 data-rect="200,100,50,20">Right</h2>
		<h2 data-rect="0,105,50,20">Left</h2>`), WithRowTolerance(1))
	if strict.Items[0].VisualRank != 0 {
		t.Errorf("with 1px tolerance the rows split: %+v", strict.Items)
	}
}

func TestReadingOrderWithoutGeometry(t *testing.T) {
	res := ReadingOrder(build(t, `<a href="/1">one</a><a href="/2">two</a>`))
	for _, it := range res.Items {
		if it.VisualRank != -1 || it.VisualPosition != nil || it.Deviation != 0 {
			t.Errorf("item without bounds = %+v", it)
		}
	}
	if res.Score != 100 {
		t.Errorf("score = %d", res.Score)
	}
}

func TestFocusOrderAndTabindex(t *testing.T) {
	res := ReadingOrder(build(t, `
		<button data-rect="400,0,50,20">First</button>
		<button data-rect="0,0,50,20">Second</button>
		<button data-rect="0,500,50,20" tabindex="2">Far</button>`))

	if n := countType(res.Issues, IssueFocusOrderMismatch); n != 2 {
		t.Errorf("focus-order issues = %d, want 2: %+v", n, res.Issues)
	}
	abuse := findIssue(t, res.Issues, IssueTabindexAbuse)
	if abuse.Severity != Serious || len(abuse.Nodes) != 1 {
		t.Errorf("tabindex issue = %+v", abuse)
	}
}
