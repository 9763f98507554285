// Package screenreader simulates how screen readers navigate and announce
// an accessibility tree.
//
// The three vendors share one Simulator that owns traversal, navigation
// state and list stepping. Each vendor contributes a Strategy (its modes,
// which nodes sequential navigation stops on, and how an arrival is
// phrased) plus a few commands of its own.
package screenreader

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/axtree"
)

// Mode is a navigation mode.
type Mode string

const (
	ModeBrowse      Mode = "browse"
	ModeFocus       Mode = "focus"
	ModeForms       Mode = "forms"
	ModeInteraction Mode = "interaction"
)

// DocumentOrder selects how "after the current node" is decided when the
// current node is not one of the candidates of a category jump.
type DocumentOrder int

const (
	// OrderTree compares pre-order positions in the tree.
	OrderTree DocumentOrder = iota
	// OrderGeometry compares bounding boxes top first, then left. It
	// reproduces what shipping screen readers approximate, and diverges
	// from tree order for reordered or absolutely positioned content.
	OrderGeometry
)

// State is a snapshot of a simulator's navigation state.
type State struct {
	Current   *axtree.Node            `json:"-"`
	CurrentID int                     `json:"current"`
	Mode      Mode                    `json:"mode"`
	Verbosity announce.Verbosity      `json:"verbosity"`
	History   []*axtree.Node          `json:"-"`
	Queue     []announce.Announcement `json:"queue"`
}

// HistoryIDs returns the node ids of History.
func (s State) HistoryIDs() []int {
	out := make([]int, len(s.History))
	for i, n := range s.History {
		out[i] = n.ID
	}
	return out
}

// Strategy is what distinguishes one vendor from another.
type Strategy struct {
	Vendor announce.Vendor
	// Modes lists the modes the vendor supports; the first is initial.
	Modes []Mode
	// Navigable decides where Next and Previous stop.
	Navigable func(*axtree.Node) bool
	// Format phrases the arrival on a node.
	Format func(n *axtree.Node, kind announce.NavKind) announce.Announcement
}

// DefaultNavigable stops on visible nodes that are focusable or named.
func DefaultNavigable(n *axtree.Node) bool {
	return !n.Hidden && (n.Focusable || n.HasName())
}

// Platform selects the VoiceOver host. Other vendors ignore it.
type Platform string

const (
	MacOS Platform = "macos"
	IOS   Platform = "ios"
)

// Option configures a Simulator.
type Option func(*Simulator)

// WithBrowser records the browser the simulation pretends to run in.
func WithBrowser(b string) Option { return func(s *Simulator) { s.browser = b } }

// WithPlatform sets the host platform, which changes VoiceOver hints.
func WithPlatform(p Platform) Option { return func(s *Simulator) { s.platform = p } }

// WithVerbosity sets the initial verbosity.
func WithVerbosity(v announce.Verbosity) Option {
	return func(s *Simulator) { s.state.Verbosity = v }
}

// WithDocumentOrder selects the document order comparison.
func WithDocumentOrder(o DocumentOrder) Option { return func(s *Simulator) { s.order = o } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Simulator) { s.logger = l } }

// WithTree sets the initial tree.
func WithTree(t *axtree.Tree) Option { return func(s *Simulator) { s.SetTree(t) } }

// Simulator is the vendor-neutral navigation engine. It is not safe for
// concurrent use; give each goroutine its own instance.
type Simulator struct {
	strategy Strategy
	tree     *axtree.Tree
	gen      *announce.Generator
	browser  string
	platform Platform
	order    DocumentOrder
	logger   *slog.Logger
	state    State
	// scope restricts Next and Previous to a widget subtree.
	scope *axtree.Node
	seq   sequenceCache
}

type sequenceCache struct {
	tree  *axtree.Tree
	scope *axtree.Node
	nodes []*axtree.Node
	valid bool
}

// NewSimulator returns a Simulator for strategy.
func NewSimulator(strategy Strategy, opts ...Option) *Simulator {
	if strategy.Navigable == nil {
		strategy.Navigable = DefaultNavigable
	}
	s := &Simulator{
		strategy: strategy,
		browser:  "chrome",
		platform: MacOS,
		gen:      announce.NewGenerator(nil),
		state: State{
			CurrentID: -1,
			Mode:      ModeBrowse,
			Verbosity: announce.Normal,
		},
	}
	if len(strategy.Modes) > 0 {
		s.state.Mode = strategy.Modes[0]
	}
	if s.strategy.Format == nil {
		s.strategy.Format = s.defaultFormat
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Vendor returns the simulated product.
func (s *Simulator) Vendor() announce.Vendor { return s.strategy.Vendor }

// Browser returns the simulated browser.
func (s *Simulator) Browser() string { return s.browser }

// Platform returns the simulated host platform.
func (s *Simulator) Platform() Platform { return s.platform }

// Tree returns the tree being navigated.
func (s *Simulator) Tree() *axtree.Tree { return s.tree }

// Generator returns the announcement generator bound to the current tree.
func (s *Simulator) Generator() *announce.Generator { return s.gen }

// SetTree supplies a freshly built tree. Navigation state is kept; the
// current node is carried over when its source element is still present.
func (s *Simulator) SetTree(t *axtree.Tree) {
	s.tree = t
	s.gen = announce.NewGenerator(t)
	if cur := s.state.Current; cur != nil && t != nil && cur.Source != nil {
		if n := t.FindNode(cur.Source); n != nil {
			s.setCurrent(n)
		}
	}
	s.scope = nil
	if s.state.Mode == ModeInteraction {
		s.state.Mode = ModeBrowse
	}
}

// State returns a copy of the navigation state.
func (s *Simulator) State() State {
	st := s.state
	st.History = slices.Clone(s.state.History)
	st.Queue = slices.Clone(s.state.Queue)
	return st
}

// Current returns the node under the virtual cursor.
func (s *Simulator) Current() *axtree.Node { return s.state.Current }

// Mode returns the current mode.
func (s *Simulator) Mode() Mode { return s.state.Mode }

// Verbosity returns the current verbosity.
func (s *Simulator) Verbosity() announce.Verbosity { return s.state.Verbosity }

// SetVerbosity changes the verbosity of later announcements.
func (s *Simulator) SetVerbosity(v announce.Verbosity) { s.state.Verbosity = v }

// ClearQueue empties the announcement queue.
func (s *Simulator) ClearQueue() { s.state.Queue = nil }

func (s *Simulator) setCurrent(n *axtree.Node) {
	s.state.Current = n
	s.state.CurrentID = -1
	if n != nil {
		s.state.CurrentID = n.ID
	}
}

func (s *Simulator) setMode(m Mode) { s.state.Mode = m }

func (s *Simulator) enqueue(a announce.Announcement) announce.Announcement {
	s.state.Queue = append(s.state.Queue, a)
	return a
}

// Status enqueues and returns a status announcement.
func (s *Simulator) Status(text string) announce.Announcement {
	return s.enqueue(announce.Status(text, s.strategy.Vendor, s.browser, s.state.Verbosity))
}

// NavigateTo moves the cursor to n and announces it.
func (s *Simulator) NavigateTo(n *axtree.Node, kind announce.NavKind) announce.Announcement {
	if n == nil {
		return s.Status("No element")
	}
	s.setCurrent(n)
	s.state.History = append(s.state.History, n)
	a := s.strategy.Format(n, kind)
	s.logger.Debug("screenreader: navigate",
		"vendor", s.strategy.Vendor, "node", n.ID, "role", n.Role, "kind", kind)
	return s.enqueue(a)
}

func (s *Simulator) defaultFormat(n *axtree.Node, kind announce.NavKind) announce.Announcement {
	return s.gen.Navigation(n, s.strategy.Vendor, s.browser, kind, s.state.Verbosity)
}

// sequence returns the nodes Next and Previous step through, sorted by
// tree position. It is rebuilt only when the tree or the scope changes.
func (s *Simulator) sequence() []*axtree.Node {
	if s.seq.valid && s.seq.tree == s.tree && s.seq.scope == s.scope {
		return s.seq.nodes
	}
	var out []*axtree.Node
	visit := func(n *axtree.Node, _ int) bool {
		if n != s.scope && s.strategy.Navigable(n) {
			out = append(out, n)
		}
		return true
	}
	if s.scope != nil {
		s.tree.WalkFrom(s.scope, visit)
	} else {
		s.tree.Walk(visit)
	}
	slices.SortStableFunc(out, func(a, b *axtree.Node) int {
		return cmp.Compare(s.tree.Index(a), s.tree.Index(b))
	})
	s.seq = sequenceCache{tree: s.tree, scope: s.scope, nodes: out, valid: true}
	return out
}

// seqAfter returns the position in seq of the first node after cur.
func (s *Simulator) seqAfter(seq []*axtree.Node, cur *axtree.Node) int {
	if cur == nil {
		return 0
	}
	ci := s.tree.Index(cur)
	i, _ := slices.BinarySearchFunc(seq, ci, func(n *axtree.Node, target int) int {
		if s.tree.Index(n) <= target {
			return -1
		}
		return 1
	})
	return i
}

// Next moves to the next navigable node in document order.
func (s *Simulator) Next() announce.Announcement {
	if s.tree == nil || s.tree.Root() == nil {
		return s.Status("No document")
	}
	seq := s.sequence()
	if i := s.seqAfter(seq, s.state.Current); i < len(seq) {
		return s.NavigateTo(seq[i], announce.NavElement)
	}
	return s.Status("End of document")
}

// Previous moves to the previous navigable node in document order.
func (s *Simulator) Previous() announce.Announcement {
	if s.tree == nil || s.tree.Root() == nil {
		return s.Status("No document")
	}
	cur := s.state.Current
	if cur == nil {
		return s.Status("Top of document")
	}
	seq := s.sequence()
	ci := s.tree.Index(cur)
	i, _ := slices.BinarySearchFunc(seq, ci, func(n *axtree.Node, target int) int {
		if s.tree.Index(n) < target {
			return -1
		}
		return 1
	})
	if i > 0 {
		return s.NavigateTo(seq[i-1], announce.NavElement)
	}
	return s.Status("Top of document")
}

// ReadAll steps with Next from the current node until a status is spoken
// and returns everything said, the status included.
func (s *Simulator) ReadAll() []announce.Announcement {
	var out []announce.Announcement
	limit := 1
	if s.tree != nil {
		limit += len(s.sequence())
	}
	for range limit {
		a := s.Next()
		out = append(out, a)
		if a.IsStatus() {
			break
		}
	}
	return out
}

// isAfter reports whether a comes after b in document order.
func (s *Simulator) isAfter(a, b *axtree.Node) bool {
	if s.order == OrderGeometry && a.Bounds != nil && b.Bounds != nil {
		if a.Bounds.Y != b.Bounds.Y {
			return a.Bounds.Y > b.Bounds.Y
		}
		return a.Bounds.X > b.Bounds.X
	}
	return s.tree.Index(a) > s.tree.Index(b)
}

// NavigateInList steps forward through candidates. With no candidates it
// says "No {type}s"; with no current node it goes to the first; on the last
// candidate it says "No more {type}s". When the current node is not a
// candidate, the first candidate after it in document order is chosen.
func (s *Simulator) NavigateInList(candidates []*axtree.Node, typeName string, kind announce.NavKind) announce.Announcement {
	if len(candidates) == 0 {
		return s.Status("No " + typeName + "s")
	}
	cur := s.state.Current
	if cur == nil {
		return s.NavigateTo(candidates[0], kind)
	}
	if i := slices.Index(candidates, cur); i >= 0 {
		if i == len(candidates)-1 {
			return s.Status("No more " + typeName + "s")
		}
		return s.NavigateTo(candidates[i+1], kind)
	}
	for _, c := range candidates {
		if s.isAfter(c, cur) {
			return s.NavigateTo(c, kind)
		}
	}
	return s.Status("No more " + typeName + "s")
}

// NavigateInListBackward mirrors NavigateInList.
func (s *Simulator) NavigateInListBackward(candidates []*axtree.Node, typeName string, kind announce.NavKind) announce.Announcement {
	if len(candidates) == 0 {
		return s.Status("No " + typeName + "s")
	}
	cur := s.state.Current
	if cur == nil {
		return s.NavigateTo(candidates[len(candidates)-1], kind)
	}
	if i := slices.Index(candidates, cur); i >= 0 {
		if i == 0 {
			return s.Status("No previous " + typeName + "s")
		}
		return s.NavigateTo(candidates[i-1], kind)
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if s.isAfter(cur, candidates[i]) {
			return s.NavigateTo(candidates[i], kind)
		}
	}
	return s.Status("No previous " + typeName + "s")
}

// Filter returns the visible nodes matching keep, in document order.
func (s *Simulator) Filter(keep func(*axtree.Node) bool) []*axtree.Node {
	if s.tree == nil {
		return nil
	}
	var out []*axtree.Node
	s.tree.Walk(func(n *axtree.Node, _ int) bool {
		if !n.Hidden && keep(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
