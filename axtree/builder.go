// Package axtree derives an accessibility tree from a source.Document.
//
// The tree is an arena: nodes live in one slice and refer to each other by
// index. A node reached through aria-owns may appear in two Children lists
// (its owner's and its natural parent's) while Parent records only one.
package axtree

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hazyhaar/axsim/source"
)

// ErrNilRoot is returned by Build when there is no document to walk.
var ErrNilRoot = errors.New("axtree: nil root")

type config struct {
	logger     *slog.Logger
	keepHidden bool
}

// Option configures a Builder.
type Option func(*config)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithHiddenNodes keeps excluded subtrees in the tree, flagged Hidden.
func WithHiddenNodes() Option { return func(c *config) { c.keepHidden = true } }

// Builder turns source documents into trees. Each Build starts from an
// empty cache; the previous tree stays valid for whoever holds it.
type Builder struct {
	cfg config

	mu   sync.Mutex
	last *Tree
}

// NewBuilder returns a Builder.
func NewBuilder(opts ...Option) *Builder {
	var c config
	for _, o := range opts {
		o(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return &Builder{cfg: c}
}

// Build walks doc once and returns the derived tree. An excluded root
// yields an empty tree.
func (b *Builder) Build(doc source.Document) (*Tree, error) {
	if doc == nil {
		return nil, ErrNilRoot
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNilRoot
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = nil

	start := time.Now()
	st := &buildState{
		cfg:    &b.cfg,
		doc:    doc,
		tree:   newTree(),
		active: make(map[int]bool),
	}
	st.visit(root, -1, true, false)
	st.tree.index()
	b.last = st.tree

	b.cfg.logger.Debug("axtree: built",
		"nodes", len(st.tree.nodes),
		"owns_edges", st.ownsEdges,
		"owns_cycles", st.cycles,
		"elapsed", time.Since(start))
	return st.tree, nil
}

// FindNode looks el up in the most recent tree. It returns nil when el was
// not part of that build.
func (b *Builder) FindNode(el source.Element) *Node {
	b.mu.Lock()
	t := b.last
	b.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.FindNode(el)
}

// Tree returns the most recent tree, or nil before the first Build.
func (b *Builder) Tree() *Tree {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

type buildState struct {
	cfg  *config
	doc  source.Document
	tree *Tree

	// active holds the ids currently on the recursion stack. An owns edge
	// back to one of them would make Children cyclic.
	active    map[int]bool
	ownsEdges int
	cycles    int
}

// visit returns the node id for el and whether el is part of the tree.
// natural is false when el is reached through aria-owns.
func (st *buildState) visit(el source.Element, parent int, natural, hiddenAncestor bool) (int, bool) {
	if id, ok := st.tree.byKey[el.Key()]; ok {
		if st.active[id] {
			st.cycles++
			return id, false
		}
		n := st.tree.nodes[id]
		if natural && n.ownedOnly && parent >= 0 {
			n.Parent = parent
			n.ownedOnly = false
		}
		return id, true
	}

	role := explicitRole(el)
	if role == "" {
		role = implicitRole(el)
	}

	hidden := hiddenAncestor || excluded(el, role)
	if !hidden && !natural && excludedAncestor(el) {
		hidden = true
	}
	if hidden && !st.cfg.keepHidden {
		return -1, false
	}

	n := st.newNode(el, role, parent)
	n.Hidden = hidden
	n.ownedOnly = !natural
	st.active[n.ID] = true
	defer delete(st.active, n.ID)

	if leafRoles[role] || isTextInput(el) {
		return n.ID, true
	}

	var kids []int
	seen := make(map[int]bool)
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			kids = append(kids, id)
		}
	}
	if !hidden {
		for _, ref := range n.Owns {
			target := st.doc.ResolveID(ref)
			if target == nil {
				continue
			}
			if id, ok := st.visit(target, n.ID, false, false); ok {
				st.ownsEdges++
				add(id)
			}
		}
	}
	for _, c := range el.Children() {
		if id, ok := st.visit(c, n.ID, true, hidden); ok {
			add(id)
		}
	}
	n.Children = kids
	return n.ID, true
}

// excluded applies the hidden-from-tree rules to el itself.
func excluded(el source.Element, role string) bool {
	if strings.EqualFold(strings.TrimSpace(source.AttrValue(el, "aria-hidden")), "true") {
		return true
	}
	if role == "none" || role == "presentation" {
		return true
	}
	return el.Native().Hidden
}

// excludedAncestor reports an ancestor that excluded would drop together
// with its subtree. Only owned elements need it: natural traversal never
// descends into one.
func excludedAncestor(el source.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if excluded(p, explicitRole(p)) {
			return true
		}
	}
	return false
}

func (st *buildState) newNode(el source.Element, role string, parent int) *Node {
	nat := el.Native()
	n := &Node{
		ID:     len(st.tree.nodes),
		Source: el,
		Tag:    el.Tag(),
		Role:   role,
		Parent: parent,
	}
	st.tree.nodes = append(st.tree.nodes, n)
	st.tree.byKey[el.Key()] = n.ID

	if role == "heading" {
		n.Level = headingLevel(el)
	} else if lvl := ariaInt(el, "aria-level"); lvl > 0 {
		n.Level = lvl
	}

	n.Name, n.NameFrom = computeName(st.doc, el, role)
	n.Description = computeDescription(st.doc, el)
	n.Value = computeValue(el, role)

	n.Disabled = ariaTrue(el, "aria-disabled") || nat.Disabled
	n.ReadOnly = ariaTrue(el, "aria-readonly") || nat.ReadOnly
	n.Required = ariaTrue(el, "aria-required") || nat.Required
	if v, ok := el.Attr("aria-invalid"); ok {
		v = strings.ToLower(strings.TrimSpace(v))
		n.Invalid = v != "" && v != "false"
	}

	n.TabIndex = -1
	tabAttr, hasTab := el.Attr("tabindex")
	ti, tabErr := strconv.Atoi(strings.TrimSpace(tabAttr))
	switch {
	case hasTab && tabErr == nil:
		n.TabIndex = ti
		n.Focusable = true
	case nat.Focusable:
		n.TabIndex = 0
		n.Focusable = true
	}
	if n.Disabled {
		n.Focusable = false
		n.TabIndex = -1
	}

	n.Expanded = ParseTriState(source.AttrValue(el, "aria-expanded"))
	if n.Expanded == Unset && el.Tag() == "details" {
		n.Expanded = False
		if source.HasAttr(el, "open") {
			n.Expanded = True
		}
	}
	n.Selected = ParseTriState(source.AttrValue(el, "aria-selected"))
	if n.Selected == Unset && el.Tag() == "option" && source.HasAttr(el, "selected") {
		n.Selected = True
	}
	n.Checked = ParseTriState(source.AttrValue(el, "aria-checked"))
	if n.Checked == Unset && el.Tag() == "input" && (role == "checkbox" || role == "radio") {
		n.Checked = False
		if nat.Checked {
			n.Checked = True
		}
	}
	n.Pressed = ParseTriState(source.AttrValue(el, "aria-pressed"))

	if v := strings.ToLower(strings.TrimSpace(source.AttrValue(el, "aria-current"))); v != "" && v != "false" {
		n.Current = v
	}
	if v := strings.ToLower(strings.TrimSpace(source.AttrValue(el, "aria-haspopup"))); v != "" && v != "false" {
		n.HasPopup = v
	}
	n.Modal = ariaTrue(el, "aria-modal")

	implicitLive, isLive := ImplicitLive(role)
	n.Live = strings.ToLower(strings.TrimSpace(source.AttrValue(el, "aria-live")))
	if n.Live == "" {
		n.Live = implicitLive
	}
	if v, ok := el.Attr("aria-atomic"); ok {
		n.Atomic = strings.EqualFold(strings.TrimSpace(v), "true")
	} else if isLive && (role == "alert" || role == "status") {
		n.Atomic = true
	}
	n.Relevant = strings.TrimSpace(source.AttrValue(el, "aria-relevant"))
	n.Busy = ariaTrue(el, "aria-busy")

	n.PosInSet = ariaInt(el, "aria-posinset")
	n.SetSize = ariaInt(el, "aria-setsize")

	n.Controls = source.IDRefs(el, "aria-controls")
	n.DescribedBy = source.IDRefs(el, "aria-describedby")
	n.LabelledBy = source.IDRefs(el, "aria-labelledby")
	n.Owns = source.IDRefs(el, "aria-owns")
	n.FlowTo = source.IDRefs(el, "aria-flowto")
	n.ErrorMessage = source.IDRefs(el, "aria-errormessage")

	if r, ok := el.Bounds(); ok {
		n.Bounds = &r
	}
	return n
}

func ariaTrue(el source.Element, name string) bool {
	return strings.EqualFold(strings.TrimSpace(source.AttrValue(el, name)), "true")
}
