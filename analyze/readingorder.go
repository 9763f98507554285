package analyze

import (
	"fmt"
	"math"
	"sort"

	"github.com/hazyhaar/axsim/axtree"
)

// Point is a position on the page.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ReadingOrderItem places one node in both the logical and the visual
// sequence. Items without geometry keep VisualRank -1 and never deviate.
type ReadingOrderItem struct {
	Node           *axtree.Node `json:"-"`
	NodeID         int          `json:"node_id"`
	Order          int          `json:"order"`
	VisualPosition *Point       `json:"visual_position,omitempty"`
	VisualRank     int          `json:"visual_rank"`
	IsOutOfOrder   bool         `json:"is_out_of_order"`
	Deviation      int          `json:"deviation"`
}

type readingOrderConfig struct {
	rowTolerance       float64
	deviationTolerance int
	verticalJump       float64
	backwardJump       float64
}

// ReadingOrderOption tunes ReadingOrder.
type ReadingOrderOption func(*readingOrderConfig)

// WithRowTolerance sets the vertical distance under which two items share a
// row. Default 10px.
func WithRowTolerance(px float64) ReadingOrderOption {
	return func(c *readingOrderConfig) { c.rowTolerance = px }
}

// WithDeviationTolerance sets the rank distance above which an item is out
// of order. Default 2.
func WithDeviationTolerance(n int) ReadingOrderOption {
	return func(c *readingOrderConfig) { c.deviationTolerance = n }
}

// WithVerticalJump sets the focus move considered excessive. Default 200px.
func WithVerticalJump(px float64) ReadingOrderOption {
	return func(c *readingOrderConfig) { c.verticalJump = px }
}

// WithBackwardJump sets the leftward move within a row considered a focus
// order problem. Default 50px.
func WithBackwardJump(px float64) ReadingOrderOption {
	return func(c *readingOrderConfig) { c.backwardJump = px }
}

// ReadingOrder compares document order with visual order.
func ReadingOrder(t *axtree.Tree, opts ...ReadingOrderOption) *Result[ReadingOrderItem] {
	if t == nil {
		return nil
	}
	cfg := readingOrderConfig{
		rowTolerance:       10,
		deviationTolerance: 2,
		verticalJump:       200,
		backwardJump:       50,
	}
	for _, o := range opts {
		o(&cfg)
	}

	res := &Result[ReadingOrderItem]{Items: []ReadingOrderItem{}, Issues: []Issue{}}
	var placed []int
	for _, n := range t.Flatten() {
		if n.Hidden || !(n.Focusable || n.HasName()) {
			continue
		}
		it := ReadingOrderItem{Node: n, NodeID: n.ID, Order: len(res.Items), VisualRank: -1}
		if n.Bounds != nil {
			x, y := n.Bounds.Center()
			it.VisualPosition = &Point{X: x, Y: y}
			placed = append(placed, len(res.Items))
		}
		res.Items = append(res.Items, it)
	}

	for rank, logical := range visualOrder(res.Items, placed, cfg.rowTolerance) {
		it := &res.Items[logical]
		it.VisualRank = rank
		logicalRank := sort.SearchInts(placed, logical)
		it.Deviation = abs(rank - logicalRank)
		it.IsOutOfOrder = it.Deviation > cfg.deviationTolerance
	}

	var out []*axtree.Node
	for _, it := range res.Items {
		if it.IsOutOfOrder {
			out = append(out, it.Node)
		}
	}
	if len(out) > 0 {
		ratio := float64(len(out)) / float64(len(res.Items))
		is := newIssue(IssueVisualLogicalMismatch, mismatchSeverity(ratio), out[0],
			"%d of %d items (%.0f%%) are read in a different order than they appear", len(out), len(res.Items), ratio*100)
		is.Nodes = nodeIDs(out)
		res.Issues = append(res.Issues, is)
	}

	res.Issues = append(res.Issues, focusOrderIssues(res.Items, cfg)...)

	var positive []*axtree.Node
	for _, n := range t.Flatten() {
		if n.TabIndex > 0 && !n.Hidden {
			positive = append(positive, n)
		}
	}
	if len(positive) > 0 {
		is := newIssue(IssueTabindexAbuse, Serious, positive[0],
			"%d elements use a positive tabindex, which overrides the natural focus order", len(positive))
		is.Nodes = nodeIDs(positive)
		res.Issues = append(res.Issues, is)
	}

	res.Score = Score(res.Issues, 0)
	return res
}

// visualOrder returns the logical indexes of placed items sorted into rows.
// Items are sorted by y; a row continues while an item is less than tol
// below the first item of the row. Each row is then ordered by x.
func visualOrder(items []ReadingOrderItem, placed []int, tol float64) []int {
	order := make([]int, len(placed))
	copy(order, placed)
	sort.SliceStable(order, func(i, j int) bool {
		return items[order[i]].VisualPosition.Y < items[order[j]].VisualPosition.Y
	})

	start := 0
	for start < len(order) {
		bandY := items[order[start]].VisualPosition.Y
		end := start + 1
		for end < len(order) && items[order[end]].VisualPosition.Y-bandY < tol {
			end++
		}
		band := order[start:end]
		sort.SliceStable(band, func(i, j int) bool {
			return items[band[i]].VisualPosition.X < items[band[j]].VisualPosition.X
		})
		start = end
	}
	return order
}

func mismatchSeverity(ratio float64) Severity {
	switch {
	case ratio > 0.5:
		return Critical
	case ratio > 0.25:
		return Serious
	case ratio > 0.1:
		return Moderate
	}
	return Minor
}

// focusOrderIssues flags consecutive focus stops that move far backwards
// within a row or jump far vertically.
func focusOrderIssues(items []ReadingOrderItem, cfg readingOrderConfig) []Issue {
	var out []Issue
	var prev *ReadingOrderItem
	for i := range items {
		it := &items[i]
		if !it.Node.Focusable || it.VisualPosition == nil {
			continue
		}
		if prev != nil {
			dx := it.VisualPosition.X - prev.VisualPosition.X
			dy := it.VisualPosition.Y - prev.VisualPosition.Y
			switch {
			case math.Abs(dy) < cfg.rowTolerance && -dx > cfg.backwardJump:
				out = append(out, focusIssue(prev, it, fmt.Sprintf("moves %.0fpx left within the same row", -dx)))
			case math.Abs(dy) > cfg.verticalJump:
				out = append(out, focusIssue(prev, it, fmt.Sprintf("jumps %.0fpx vertically", math.Abs(dy))))
			}
		}
		prev = it
	}
	return out
}

func focusIssue(from, to *ReadingOrderItem, what string) Issue {
	is := newIssue(IssueFocusOrderMismatch, Moderate, to.Node,
		"focus from %s to %s %s", describe(from.Node), describe(to.Node), what)
	is.Nodes = []int{from.Node.ID, to.Node.ID}
	return is
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
