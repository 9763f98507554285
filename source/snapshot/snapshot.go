// Package snapshot implements source.Document over a JSON capture of a
// rendered DOM. Captures are produced by the livepage package from a real
// browser, or written by hand for tests.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hazyhaar/axsim/source"
)

// ErrDuplicateKey is returned when two nodes of a capture share a key.
var ErrDuplicateKey = errors.New("snapshot: duplicate node key")

// ErrEmpty is returned when a capture has no root node.
var ErrEmpty = errors.New("snapshot: empty capture")

// Node is the wire form of one element.
type Node struct {
	Key      source.Key        `json:"key,omitempty"`
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Box      *source.Rect      `json:"box,omitempty"`
	Native   source.Native     `json:"native"`
	Labels   []source.Key      `json:"labels,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Capture is a full page snapshot.
type Capture struct {
	URL        string    `json:"url,omitempty"`
	Title      string    `json:"title,omitempty"`
	CapturedAt time.Time `json:"captured_at,omitempty"`
	Root       *Node     `json:"root"`
}

// Document is the source.Document view of a Capture.
type Document struct {
	capture *Capture
	root    *Element
	byKey   map[source.Key]*Element
	ids     map[string]*Element
	labels  []*Element
}

// Element implements source.Element over a Node.
type Element struct {
	doc      *Document
	n        *Node
	parent   *Element
	children []*Element
}

// Decode reads one JSON capture.
func Decode(r io.Reader) (*Document, error) {
	var c Capture
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return New(&c)
}

// Unmarshal is Decode over a byte slice.
func Unmarshal(data []byte) (*Document, error) {
	var c Capture
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return New(&c)
}

// New indexes c. Nodes without a key are numbered after the largest
// explicit key, in pre-order.
func New(c *Capture) (*Document, error) {
	if c == nil || c.Root == nil {
		return nil, ErrEmpty
	}
	d := &Document{
		capture: c,
		byKey:   make(map[source.Key]*Element),
		ids:     make(map[string]*Element),
	}

	var maxKey source.Key
	var scan func(*Node)
	scan = func(n *Node) {
		if n.Key > maxKey {
			maxKey = n.Key
		}
		for _, ch := range n.Children {
			if ch != nil {
				scan(ch)
			}
		}
	}
	scan(c.Root)

	var build func(n *Node, parent *Element) (*Element, error)
	build = func(n *Node, parent *Element) (*Element, error) {
		if n.Key == 0 {
			maxKey++
			n.Key = maxKey
		}
		if _, dup := d.byKey[n.Key]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateKey, n.Key)
		}
		n.Tag = strings.ToLower(n.Tag)
		el := &Element{doc: d, n: n, parent: parent}
		d.byKey[n.Key] = el
		if id := n.Attrs["id"]; id != "" {
			if _, seen := d.ids[id]; !seen {
				d.ids[id] = el
			}
		}
		if n.Tag == "label" {
			d.labels = append(d.labels, el)
		}
		for _, ch := range n.Children {
			if ch == nil {
				continue
			}
			ce, err := build(ch, el)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, ce)
		}
		return el, nil
	}

	root, err := build(c.Root, nil)
	if err != nil {
		return nil, err
	}
	d.root = root
	return d, nil
}

// Capture returns the underlying capture.
func (d *Document) Capture() *Capture { return d.capture }

// Root implements source.Document.
func (d *Document) Root() source.Element { return d.root }

// Element returns the element with key k, or nil.
func (d *Document) Element(k source.Key) source.Element {
	if el, ok := d.byKey[k]; ok {
		return el
	}
	return nil
}

// ResolveID implements source.Document.
func (d *Document) ResolveID(id string) source.Element {
	if el, ok := d.ids[id]; ok {
		return el
	}
	return nil
}

// LabelsFor implements source.Document. Explicit label keys recorded by the
// capture win; otherwise labels are matched by for=id or by wrapping.
func (d *Document) LabelsFor(target source.Element) []source.Element {
	el, ok := target.(*Element)
	if !ok || el.doc != d {
		return nil
	}
	if len(el.n.Labels) > 0 {
		var out []source.Element
		for _, k := range el.n.Labels {
			if l, ok := d.byKey[k]; ok {
				out = append(out, l)
			}
		}
		return out
	}
	if !labelable(el) {
		return nil
	}
	id := el.n.Attrs["id"]
	var out []source.Element
	for _, lbl := range d.labels {
		forID, hasFor := lbl.n.Attrs["for"]
		switch {
		case hasFor && id != "" && forID == id:
			out = append(out, lbl)
		case !hasFor && lbl.isAncestorOf(el):
			out = append(out, lbl)
		}
	}
	return out
}

func labelable(el *Element) bool {
	switch el.n.Tag {
	case "button", "meter", "output", "progress", "select", "textarea":
		return true
	case "input":
		return el.n.Native.InputType != "hidden"
	}
	return false
}

func (e *Element) isAncestorOf(other *Element) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

// Key implements source.Element.
func (e *Element) Key() source.Key { return e.n.Key }

// Tag implements source.Element.
func (e *Element) Tag() string { return e.n.Tag }

// Attr implements source.Element.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.n.Attrs[strings.ToLower(name)]
	return v, ok
}

// Children implements source.Element.
func (e *Element) Children() []source.Element {
	out := make([]source.Element, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

// Parent implements source.Element.
func (e *Element) Parent() source.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// Text implements source.Element. A node without captured text reads the
// text of its visible children.
func (e *Element) Text() string {
	if e.n.Text != "" {
		return source.CollapseSpace(e.n.Text)
	}
	var parts []string
	for _, c := range e.children {
		if c.n.Native.Hidden {
			continue
		}
		if t := c.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Bounds implements source.Element.
func (e *Element) Bounds() (source.Rect, bool) {
	if e.n.Box == nil {
		return source.Rect{}, false
	}
	return *e.n.Box, true
}

// Native implements source.Element.
func (e *Element) Native() source.Native { return e.n.Native }
