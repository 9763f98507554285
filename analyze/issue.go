// Package analyze runs structural checks over an accessibility tree.
//
// Every analyzer is a pure function of one tree and returns a Result with
// its projected items, advisory issues and a 0-100 score. A nil Result
// means the tree could not be analyzed; an empty issue list with a score
// means it was analyzed and nothing was found.
package analyze

import (
	"fmt"

	"github.com/hazyhaar/axsim/axtree"
)

// Severity ranks an issue.
type Severity string

const (
	Critical Severity = "critical"
	Serious  Severity = "serious"
	Moderate Severity = "moderate"
	Minor    Severity = "minor"
)

// Weight is the score penalty for one issue of this severity.
func (s Severity) Weight() int {
	switch s {
	case Critical:
		return 30
	case Serious:
		return 20
	case Moderate:
		return 10
	case Minor:
		return 5
	}
	return 0
}

// Issue types.
const (
	IssueVisualLogicalMismatch = "visual-logical-mismatch"
	IssueFocusOrderMismatch    = "focus-order-mismatch"
	IssueTabindexAbuse         = "tabindex-abuse"

	IssueMissingMain       = "missing-main"
	IssueMultipleMain      = "multiple-main"
	IssueMissingLabel      = "missing-label"
	IssueDuplicateLabel    = "duplicate-label"
	IssueNestedIncorrectly = "nested-incorrectly"
	IssueRedundantLandmark = "redundant-landmark"

	IssueMissingH1       = "missing-h1"
	IssueMultipleH1      = "multiple-h1"
	IssueSkippedLevel    = "skipped-level"
	IssueEmptyHeading    = "empty-heading"
	IssueImproperNesting = "improper-nesting"

	IssuePlaceholderAsLabel  = "placeholder-as-label"
	IssueTitleAsLabel        = "title-as-label"
	IssueMissingErrorMessage = "missing-error-message"
	IssueGenericError        = "generic-error"
	IssueMissingRequired     = "missing-required"
	IssueMissingInstructions = "missing-instructions"
	IssueUnlabeledGroup      = "unlabeled-group"
	IssueMissingRole         = "missing-role"
	IssueImproperPoliteness  = "improper-politeness"
	IssueTooFrequentUpdates  = "too-frequent-updates"
)

// Issue is one finding. NodeID is -1 for document level findings.
type Issue struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	NodeID   int      `json:"node_id"`
	Nodes    []int    `json:"nodes,omitempty"`
}

// Result is the output of one analyzer.
type Result[T any] struct {
	Items  []T     `json:"items"`
	Issues []Issue `json:"issues"`
	Score  int     `json:"score"`
}

// Score starts at 100, subtracts each issue's weight, adds bonus and
// clamps to [0, 100].
func Score(issues []Issue, bonus int) int {
	s := 100 + bonus
	for _, is := range issues {
		s -= is.Severity.Weight()
	}
	return min(max(s, 0), 100)
}

func newIssue(typ string, sev Severity, n *axtree.Node, format string, args ...any) Issue {
	id := -1
	if n != nil {
		id = n.ID
	}
	return Issue{Type: typ, Severity: sev, Message: fmt.Sprintf(format, args...), NodeID: id}
}

func nodeIDs(nodes []*axtree.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

// describe names a node for messages.
func describe(n *axtree.Node) string {
	if n.Name != "" {
		return fmt.Sprintf("%s %q", n.Role, n.Name)
	}
	return n.Role
}

// idIndex maps DOM ids to nodes of t.
func idIndex(t *axtree.Tree) map[string]*axtree.Node {
	idx := make(map[string]*axtree.Node)
	for _, n := range t.Flatten() {
		if id := n.Attr("id"); id != "" {
			if _, ok := idx[id]; !ok {
				idx[id] = n
			}
		}
	}
	return idx
}
