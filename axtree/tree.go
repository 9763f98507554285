package axtree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hazyhaar/axsim/source"
)

// Tree is one immutable build result.
type Tree struct {
	nodes []*Node
	byKey map[source.Key]int
	// order is the pre-order position of each node id, at its first visit.
	order []int
	flat  []*Node
}

func newTree() *Tree {
	return &Tree{byKey: make(map[source.Key]int)}
}

func (t *Tree) index() {
	t.order = make([]int, len(t.nodes))
	for i := range t.order {
		t.order[i] = -1
	}
	t.flat = t.flat[:0]
	t.Walk(func(n *Node, _ int) bool {
		t.order[n.ID] = len(t.flat)
		t.flat = append(t.flat, n)
		return true
	})
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if t == nil || len(t.nodes) == 0 {
		return nil
	}
	return t.nodes[0]
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id int) *Node {
	if t == nil || id < 0 || id >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Parent returns n's parent, or nil at the root.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil {
		return nil
	}
	return t.Node(n.Parent)
}

// Children resolves n.Children.
func (t *Tree) Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		if c := t.Node(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// FindNode returns the node built for el, or nil.
func (t *Tree) FindNode(el source.Element) *Node {
	if t == nil || el == nil {
		return nil
	}
	id, ok := t.byKey[el.Key()]
	if !ok {
		return nil
	}
	return t.nodes[id]
}

// NodeByKey returns the node built from the source element with key k, or
// nil.
func (t *Tree) NodeByKey(k source.Key) *Node {
	if t == nil {
		return nil
	}
	id, ok := t.byKey[k]
	if !ok {
		return nil
	}
	return t.nodes[id]
}

// Walk visits the tree in pre-order from the root. Each node is visited
// once, at its first position. Returning false from fn skips the node's
// children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	t.WalkFrom(t.Root(), fn)
}

// WalkFrom is Walk starting at root.
func (t *Tree) WalkFrom(root *Node, fn func(n *Node, depth int) bool) {
	if root == nil {
		return
	}
	seen := make([]bool, len(t.nodes))
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		if !fn(n, depth) {
			return
		}
		for _, id := range n.Children {
			walk(t.nodes[id], depth+1)
		}
	}
	walk(root, 0)
}

// Flatten returns every node in pre-order.
func (t *Tree) Flatten() []*Node {
	if t == nil {
		return nil
	}
	out := make([]*Node, len(t.flat))
	copy(out, t.flat)
	return out
}

// Index returns the pre-order position of n, or -1 when n is not part of t.
func (t *Tree) Index(n *Node) int {
	if t == nil || n == nil || n.ID < 0 || n.ID >= len(t.order) || t.nodes[n.ID] != n {
		return -1
	}
	return t.order[n.ID]
}

// Ancestors returns n's parents, nearest first.
func (t *Tree) Ancestors(n *Node) []*Node {
	var out []*Node
	seen := make(map[int]bool)
	for p := t.Parent(n); p != nil && !seen[p.ID]; p = t.Parent(p) {
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// Closest returns the nearest ancestor of n for which match is true.
func (t *Tree) Closest(n *Node, match func(*Node) bool) *Node {
	for _, a := range t.Ancestors(n) {
		if match(a) {
			return a
		}
	}
	return nil
}

// FocusableNodes returns the tab sequence under root: focusable, visible
// nodes with a non-negative tab index. Positive indexes come first in
// ascending order, then zero in traversal order.
func (t *Tree) FocusableNodes(root *Node) []*Node {
	var out []*Node
	t.WalkFrom(root, func(n *Node, _ int) bool {
		if n.Focusable && !n.Hidden && n.TabIndex >= 0 {
			out = append(out, n)
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].TabIndex, out[j].TabIndex
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})
	return out
}

// Outline renders the tree as an indented listing, one node per line.
func (t *Tree) Outline() string {
	var sb strings.Builder
	t.Walk(func(n *Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Role)
		if n.Level > 0 {
			fmt.Fprintf(&sb, " level=%d", n.Level)
		}
		if n.Name != "" {
			fmt.Fprintf(&sb, " %q", n.Name)
		}
		if n.Value != "" {
			fmt.Fprintf(&sb, " value=%q", n.Value)
		}
		if st := n.States(); len(st) > 0 {
			sb.WriteString(" [")
			sb.WriteString(strings.Join(st, " "))
			sb.WriteString("]")
		}
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

// ExportNode is the nested JSON form of a tree.
type ExportNode struct {
	*Node
	Kids []*ExportNode `json:"nodes,omitempty"`
}

// Export nests the arena for serialisation. A node shared through
// aria-owns is expanded only at its first position; later positions carry
// the node without children.
func (t *Tree) Export() *ExportNode {
	root := t.Root()
	if root == nil {
		return nil
	}
	seen := make([]bool, len(t.nodes))
	var build func(n *Node) *ExportNode
	build = func(n *Node) *ExportNode {
		e := &ExportNode{Node: n}
		if seen[n.ID] {
			return e
		}
		seen[n.ID] = true
		for _, id := range n.Children {
			e.Kids = append(e.Kids, build(t.nodes[id]))
		}
		return e
	}
	return build(root)
}
