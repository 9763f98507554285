// Package source defines the read-only document capability that the
// accessibility tree is derived from. Adapters live in sub-packages:
// htmldoc wraps x/net/html parse trees, snapshot wraps a JSON capture of a
// live browser DOM.
//
// Implementations must never mutate the document they expose.
package source

import "strings"

// Key is a stable per-document identity for an element. Two Element values
// that refer to the same underlying node must return the same Key.
type Key uint64

// Rect is a bounding box snapshot. X is the left edge, Y the top edge.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the box.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Native carries the host language semantics of an element, as opposed to
// its ARIA attributes.
type Native struct {
	Focusable bool `json:"focusable,omitempty"`
	Disabled  bool `json:"disabled,omitempty"`
	Required  bool `json:"required,omitempty"`
	ReadOnly  bool `json:"readonly,omitempty"`
	// Hidden reports a "not rendered" signal: display:none,
	// visibility:hidden, the hidden attribute, or a non-rendered element.
	Hidden      bool   `json:"hidden,omitempty"`
	InputType   string `json:"input_type,omitempty"`
	Value       string `json:"value,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Checked     bool   `json:"checked,omitempty"`
}

// Element is one node of the source tree.
type Element interface {
	Key() Key
	// Tag returns the lower-case tag name.
	Tag() string
	Attr(name string) (string, bool)
	// Children returns element children in source order.
	Children() []Element
	// Parent returns nil at the top of the document.
	Parent() Element
	// Text returns the rendered text content with whitespace collapsed.
	Text() string
	// Bounds returns false when no geometry is known.
	Bounds() (Rect, bool)
	Native() Native
}

// Document is the document-scoped view of a source tree.
type Document interface {
	Root() Element
	// ResolveID returns nil when no element carries the id.
	ResolveID(id string) Element
	// LabelsFor returns the native <label> elements associated with el,
	// either by wrapping it or through for=id.
	LabelsFor(el Element) []Element
}

// AttrValue returns the attribute value or "" when absent.
func AttrValue(el Element, name string) string {
	v, _ := el.Attr(name)
	return v
}

// HasAttr reports whether el carries the attribute, whatever its value.
func HasAttr(el Element, name string) bool {
	_, ok := el.Attr(name)
	return ok
}

// IDRefs splits an IDREFS attribute value.
func IDRefs(el Element, name string) []string {
	v, ok := el.Attr(name)
	if !ok {
		return nil
	}
	return strings.Fields(v)
}

// CollapseSpace trims s and folds every whitespace run into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
