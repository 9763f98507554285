// Package htmldoc exposes a parsed HTML document as a source.Document.
//
// Static HTML carries no layout, so geometry is read from inline style
// (left/top/width/height in px) or from a data-rect="x,y,w,h" attribute.
// Elements without either report no bounds.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/axsim/source"
)

// Document is an immutable view over an x/net/html tree.
type Document struct {
	root   *Element
	nodes  map[*html.Node]*Element
	ids    map[string]*Element
	labels []*Element
	title  string
}

// Element wraps one html.ElementNode.
type Element struct {
	doc      *Document
	node     *html.Node
	key      source.Key
	parent   *Element
	children []*Element
}

type options struct {
	sanitize bool
}

// Option customises Parse.
type Option func(*options)

// WithSanitize strips scripts, event handlers and embedded frames before
// parsing. Structural, ARIA and geometry attributes are kept.
func WithSanitize() Option { return func(o *options) { o.sanitize = true } }

// Parse reads an HTML document.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	if o.sanitize {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("htmldoc: read: %w", err)
		}
		r = bytes.NewReader(sanitize(data))
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	return fromNode(root), nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// FromNode wraps an already parsed tree. The tree must not be mutated
// while the Document is in use.
func FromNode(n *html.Node) *Document {
	return fromNode(n)
}

func fromNode(n *html.Node) *Document {
	d := &Document{
		nodes: make(map[*html.Node]*Element),
		ids:   make(map[string]*Element),
	}

	var next source.Key
	var walk func(n *html.Node, parent *Element)
	walk = func(n *html.Node, parent *Element) {
		cur := parent
		if n.Type == html.ElementNode {
			next++
			el := &Element{doc: d, node: n, key: next, parent: parent}
			d.nodes[n] = el
			if parent != nil {
				parent.children = append(parent.children, el)
			}
			if id := getAttr(n, "id"); id != "" {
				if _, dup := d.ids[id]; !dup {
					d.ids[id] = el
				}
			}
			switch n.DataAtom {
			case atom.Label:
				d.labels = append(d.labels, el)
			case atom.Title:
				if d.title == "" {
					d.title = collectText(n)
				}
			}
			cur = el
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, cur)
		}
	}
	walk(n, nil)

	d.root = d.pickRoot()
	return d
}

// pickRoot prefers <body>, then <html>, then the first element.
func (d *Document) pickRoot() *Element {
	var body, htmlEl, first *Element
	for hn, el := range d.nodes {
		switch hn.DataAtom {
		case atom.Body:
			if body == nil || el.key < body.key {
				body = el
			}
		case atom.Html:
			if htmlEl == nil || el.key < htmlEl.key {
				htmlEl = el
			}
		}
		if first == nil || el.key < first.key {
			first = el
		}
	}
	switch {
	case body != nil:
		return body
	case htmlEl != nil:
		return htmlEl
	default:
		return first
	}
}

// Root implements source.Document. It returns nil for an empty document.
func (d *Document) Root() source.Element {
	if d.root == nil {
		return nil
	}
	return d.root
}

// Title returns the <title> text.
func (d *Document) Title() string { return d.title }

// ResolveID implements source.Document.
func (d *Document) ResolveID(id string) source.Element {
	if el, ok := d.ids[id]; ok {
		return el
	}
	return nil
}

// LabelsFor implements source.Document.
func (d *Document) LabelsFor(target source.Element) []source.Element {
	el, ok := target.(*Element)
	if !ok || el.doc != d || !isLabelable(el.node) {
		return nil
	}
	id := getAttr(el.node, "id")

	var out []source.Element
	for _, lbl := range d.labels {
		forID, hasFor := lbl.Attr("for")
		switch {
		case hasFor && id != "" && forID == id:
			out = append(out, lbl)
		case !hasFor && lbl.contains(el):
			out = append(out, lbl)
		}
	}
	return out
}

// Lookup returns the Element wrapping n, or nil.
func (d *Document) Lookup(n *html.Node) *Element {
	return d.nodes[n]
}

// Key implements source.Element.
func (e *Element) Key() source.Key { return e.key }

// Tag implements source.Element.
func (e *Element) Tag() string { return strings.ToLower(e.node.Data) }

// Node returns the wrapped html node.
func (e *Element) Node() *html.Node { return e.node }

// Attr implements source.Element.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
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

// Text implements source.Element. Script, style and hidden descendants do
// not contribute.
func (e *Element) Text() string {
	return collectText(e.node)
}

// Bounds implements source.Element.
func (e *Element) Bounds() (source.Rect, bool) {
	return parseBounds(e.node)
}

// Native implements source.Element.
func (e *Element) Native() source.Native {
	n := e.node
	nat := source.Native{
		Hidden: isHidden(n),
	}

	if n.DataAtom == atom.Input {
		nat.InputType = inputType(n)
		nat.Value = getAttr(n, "value")
		nat.Placeholder = getAttr(n, "placeholder")
		if nat.InputType == "checkbox" || nat.InputType == "radio" {
			nat.Checked = hasAttr(n, "checked")
		}
	}
	switch n.DataAtom {
	case atom.Textarea:
		nat.Value = rawText(n)
		nat.Placeholder = getAttr(n, "placeholder")
	case atom.Select:
		nat.Value = selectedOption(n)
	}

	nat.Disabled = e.nativelyDisabled()
	switch n.DataAtom {
	case atom.Input, atom.Select, atom.Textarea:
		nat.Required = hasAttr(n, "required")
	}
	switch n.DataAtom {
	case atom.Input, atom.Textarea:
		nat.ReadOnly = hasAttr(n, "readonly")
	}
	nat.Focusable = !nat.Disabled && !nat.Hidden && nativelyFocusable(n)
	return nat
}

func (e *Element) nativelyDisabled() bool {
	switch e.node.DataAtom {
	case atom.Button, atom.Input, atom.Select, atom.Textarea, atom.Optgroup, atom.Option, atom.Fieldset:
	default:
		return false
	}
	if hasAttr(e.node, "disabled") {
		return true
	}
	for p := e.parent; p != nil; p = p.parent {
		if p.node.DataAtom == atom.Fieldset && hasAttr(p.node, "disabled") {
			return true
		}
	}
	return false
}

func (e *Element) contains(other *Element) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

func isLabelable(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Button, atom.Meter, atom.Output, atom.Progress, atom.Select, atom.Textarea:
		return true
	case atom.Input:
		return inputType(n) != "hidden"
	}
	return false
}

func nativelyFocusable(n *html.Node) bool {
	switch n.DataAtom {
	case atom.A, atom.Area:
		return hasAttr(n, "href")
	case atom.Button, atom.Select, atom.Textarea, atom.Summary, atom.Iframe:
		return true
	case atom.Input:
		return inputType(n) != "hidden"
	}
	return strings.EqualFold(getAttr(n, "contenteditable"), "true")
}

func inputType(n *html.Node) string {
	t := strings.ToLower(strings.TrimSpace(getAttr(n, "type")))
	if t == "" {
		return "text"
	}
	return t
}

func selectedOption(sel *html.Node) string {
	var first, selected string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			text := collectText(n)
			if first == "" {
				first = text
			}
			if selected == "" && hasAttr(n, "selected") {
				selected = text
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(sel)
	if selected != "" {
		return selected
	}
	return first
}

// getAttr returns the value of an attribute on a node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasAttr checks if a node has a specific attribute.
func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
