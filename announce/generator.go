// Package announce turns accessibility nodes into the text a screen reader
// would speak.
package announce

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/axsim/axtree"
)

// NavKind says how the user reached a node.
type NavKind string

const (
	NavElement   NavKind = "element"
	NavHeading   NavKind = "heading"
	NavLandmark  NavKind = "landmark"
	NavLink      NavKind = "link"
	NavFormField NavKind = "formfield"
	NavButton    NavKind = "button"
	NavTable     NavKind = "table"
	NavList      NavKind = "list"
	NavFocus     NavKind = "focus"
)

// Announcement is one utterance.
type Announcement struct {
	Text         string    `json:"text"`
	Role         string    `json:"role"`
	Name         string    `json:"name,omitempty"`
	State        []string  `json:"state"`
	Properties   []string  `json:"properties"`
	Context      []string  `json:"context"`
	Hint         string    `json:"hint,omitempty"`
	ScreenReader Vendor    `json:"screen_reader"`
	Browser      string    `json:"browser"`
	Verbosity    Verbosity `json:"verbosity"`
	// NodeID is -1 for status announcements.
	NodeID int `json:"node_id"`
}

// IsStatus reports a terminal or mode announcement rather than a node.
func (a Announcement) IsStatus() bool {
	return a.Role == "status" && a.Name == "" && a.NodeID < 0
}

// Status builds a terminal status announcement.
func Status(text string, v Vendor, browser string, verbosity Verbosity) Announcement {
	return Announcement{
		Text:         text,
		Role:         "status",
		State:        []string{},
		Properties:   []string{},
		Context:      []string{},
		ScreenReader: v,
		Browser:      browser,
		Verbosity:    verbosity,
		NodeID:       -1,
	}
}

// Generator renders announcements for nodes of one tree.
type Generator struct {
	tree *axtree.Tree
}

// NewGenerator returns a Generator over t. A nil tree disables context.
func NewGenerator(t *axtree.Tree) *Generator {
	return &Generator{tree: t}
}

// Parts computes the structured pieces of an announcement without
// assembling the text.
func (g *Generator) Parts(n *axtree.Node, v Vendor, browser string, verbosity Verbosity) Announcement {
	a := Announcement{
		Role:         RoleText(v, n),
		Name:         n.Name,
		State:        StateText(v, n),
		Properties:   []string{},
		Context:      []string{},
		ScreenReader: v,
		Browser:      browser,
		Verbosity:    verbosity,
		NodeID:       n.ID,
	}
	if a.State == nil {
		a.State = []string{}
	}
	if verbosity != Minimal {
		a.Properties = properties(n)
	}
	if verbosity == Verbose {
		a.Context = g.Context(n, v)
	}
	return a
}

// Generate renders n as vendor would announce it. VoiceOver speaks the role
// before the name; the other vendors speak the name first.
func (g *Generator) Generate(n *axtree.Node, v Vendor, browser string, verbosity Verbosity) Announcement {
	if n == nil {
		return Status("No element", v, browser, verbosity)
	}
	a := g.Parts(n, v, browser, verbosity)
	a.Text = Assemble(v, a)
	return a
}

// Assemble joins the pieces of a in vendor order.
func Assemble(v Vendor, a Announcement) string {
	var parts []string
	if v == VoiceOver {
		parts = append(parts, a.Role, a.Name)
	} else {
		parts = append(parts, a.Name, a.Role)
	}
	parts = append(parts, a.State...)
	parts = append(parts, a.Properties...)
	parts = append(parts, a.Context...)
	return join(parts)
}

// LiveRegion renders a live region update: only the content is spoken.
// A region without a name speaks its text content.
func (g *Generator) LiveRegion(n *axtree.Node, v Vendor, browser string, verbosity Verbosity) Announcement {
	if n == nil {
		return Status("No element", v, browser, verbosity)
	}
	a := g.Parts(n, v, browser, verbosity)
	a.Text = n.Name
	if a.Text == "" && n.Source != nil {
		a.Text = n.Source.Text()
	}
	return a
}

// Navigation renders n as reached by a navigation command. Structural jumps
// (heading, landmark, link) get one more level of detail.
func (g *Generator) Navigation(n *axtree.Node, v Vendor, browser string, kind NavKind, verbosity Verbosity) Announcement {
	switch kind {
	case NavHeading, NavLandmark, NavLink:
		verbosity = verbosity.elevate()
	}
	return g.Generate(n, v, browser, verbosity)
}

func properties(n *axtree.Node) []string {
	out := []string{}
	if n.Value != "" && n.Value != n.Name {
		out = append(out, n.Value)
	}
	if n.Description != "" {
		out = append(out, n.Description)
	}
	switch n.Current {
	case "":
	case "true":
		out = append(out, "current")
	default:
		out = append(out, "current "+n.Current)
	}
	return out
}

var groupingRoles = map[string]bool{
	"list": true, "group": true, "radiogroup": true, "table": true, "grid": true,
	"listbox": true, "menu": true, "menubar": true, "tablist": true, "tree": true,
	"toolbar": true, "dialog": true, "alertdialog": true,
}

var setRoles = map[string]bool{
	"listitem": true, "option": true, "tab": true, "treeitem": true, "radio": true,
	"menuitem": true, "menuitemcheckbox": true, "menuitemradio": true, "row": true,
}

// Context returns set position, enclosing group and enclosing landmark.
func (g *Generator) Context(n *axtree.Node, v Vendor) []string {
	out := []string{}
	if g.tree == nil || g.tree.Node(n.ID) != n {
		return out
	}
	if pos, size := g.position(n); pos > 0 && size > 0 {
		out = append(out, fmt.Sprintf("%d of %d", pos, size))
	}
	if grp := g.tree.Closest(n, func(a *axtree.Node) bool { return groupingRoles[a.Role] }); grp != nil {
		if s := containerText(v, grp); s != "" {
			out = append(out, "in "+s)
		}
	}
	if lm := g.tree.Closest(n, func(a *axtree.Node) bool { return axtree.IsLandmark(a.Role) }); lm != nil {
		if s := containerText(v, lm); s != "" {
			out = append(out, "in "+s)
		}
	}
	return out
}

func containerText(v Vendor, n *axtree.Node) string {
	return join2(RoleText(v, n), n.Name)
}

// position prefers aria-posinset/aria-setsize and otherwise counts
// siblings of the same role.
func (g *Generator) position(n *axtree.Node) (int, int) {
	if n.PosInSet > 0 && n.SetSize > 0 {
		return n.PosInSet, n.SetSize
	}
	if !setRoles[n.Role] {
		return 0, 0
	}
	parent := g.tree.Parent(n)
	if parent == nil {
		return 0, 0
	}
	pos, size := 0, 0
	for _, c := range g.tree.Children(parent) {
		if c.Role != n.Role || c.Hidden {
			continue
		}
		size++
		if c == n {
			pos = size
		}
	}
	if n.PosInSet > 0 {
		pos = n.PosInSet
	}
	if n.SetSize > 0 {
		size = n.SetSize
	}
	return pos, size
}

func join(parts []string) string {
	var keep []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, ", ")
}

func join2(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
