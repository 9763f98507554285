package axtree

import (
	"fmt"

	"github.com/hazyhaar/axsim/source"
)

// NameSource records which step of the name computation produced Name.
type NameSource uint8

const (
	NameNone NameSource = iota
	NameFromLabelledBy
	NameFromAriaLabel
	NameFromNativeLabel
	NameFromAlt
	NameFromTitle
	NameFromContents
	NameFromValue
	NameFromPlaceholder
)

var nameSourceText = [...]string{
	NameNone:            "",
	NameFromLabelledBy:  "aria-labelledby",
	NameFromAriaLabel:   "aria-label",
	NameFromNativeLabel: "label",
	NameFromAlt:         "alt",
	NameFromTitle:       "title",
	NameFromContents:    "contents",
	NameFromValue:       "value",
	NameFromPlaceholder: "placeholder",
}

func (s NameSource) String() string {
	if int(s) < len(nameSourceText) {
		return nameSourceText[s]
	}
	return fmt.Sprintf("NameSource(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s NameSource) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *NameSource) UnmarshalText(b []byte) error {
	for i, txt := range nameSourceText {
		if txt == string(b) {
			*s = NameSource(i)
			return nil
		}
	}
	return fmt.Errorf("axtree: unknown name source %q", b)
}

// Node is one entry of the accessibility tree arena. Nodes are created by
// Builder.Build and must be treated as read-only afterwards.
type Node struct {
	ID     int            `json:"id"`
	Source source.Element `json:"-"`
	Tag    string         `json:"tag"`

	Role     string     `json:"role"`
	Level    int        `json:"level,omitempty"`
	Name     string     `json:"name,omitempty"`
	NameFrom NameSource `json:"name_from,omitempty"`

	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`

	Focusable bool `json:"focusable,omitempty"`
	Hidden    bool `json:"hidden,omitempty"`
	Disabled  bool `json:"disabled,omitempty"`
	ReadOnly  bool `json:"readonly,omitempty"`
	Required  bool `json:"required,omitempty"`
	Invalid   bool `json:"invalid,omitempty"`

	Expanded TriState `json:"expanded,omitzero"`
	Selected TriState `json:"selected,omitzero"`
	Checked  TriState `json:"checked,omitzero"`
	Pressed  TriState `json:"pressed,omitzero"`
	// Current holds the aria-current token; "" when absent or "false".
	Current  string `json:"current,omitempty"`
	HasPopup string `json:"haspopup,omitempty"`
	Modal    bool   `json:"modal,omitempty"`

	Live     string `json:"live,omitempty"`
	Atomic   bool   `json:"atomic,omitempty"`
	Relevant string `json:"relevant,omitempty"`
	Busy     bool   `json:"busy,omitempty"`

	PosInSet int `json:"posinset,omitempty"`
	SetSize  int `json:"setsize,omitempty"`

	Controls     []string `json:"controls,omitempty"`
	DescribedBy  []string `json:"describedby,omitempty"`
	LabelledBy   []string `json:"labelledby,omitempty"`
	Owns         []string `json:"owns,omitempty"`
	FlowTo       []string `json:"flowto,omitempty"`
	ErrorMessage []string `json:"errormessage,omitempty"`

	// Parent is the natural source parent, -1 at the root.
	Parent   int   `json:"parent"`
	Children []int `json:"children,omitempty"`

	Bounds   *source.Rect `json:"bounds,omitempty"`
	TabIndex int          `json:"tabindex"`

	ownedOnly bool
}

// HasName reports whether the name computation produced text.
func (n *Node) HasName() bool { return n.Name != "" }

// Attr proxies to the source element; it returns "" for detached nodes.
func (n *Node) Attr(name string) string {
	if n.Source == nil {
		return ""
	}
	return source.AttrValue(n.Source, name)
}

// States lists the set state flags in a fixed order, using ARIA names.
func (n *Node) States() []string {
	var out []string
	add := func(ok bool, s string) {
		if ok {
			out = append(out, s)
		}
	}
	add(n.Focusable, "focusable")
	add(n.Hidden, "hidden")
	add(n.Disabled, "disabled")
	add(n.ReadOnly, "readonly")
	add(n.Required, "required")
	add(n.Invalid, "invalid")
	for _, ts := range []struct {
		name string
		v    TriState
	}{
		{"expanded", n.Expanded},
		{"selected", n.Selected},
		{"checked", n.Checked},
		{"pressed", n.Pressed},
	} {
		if ts.v.IsSet() {
			out = append(out, ts.name+"="+ts.v.String())
		}
	}
	if n.Current != "" {
		out = append(out, "current="+n.Current)
	}
	if n.Live != "" {
		out = append(out, "live="+n.Live)
	}
	add(n.Busy, "busy")
	return out
}
