package analyze

import (
	"github.com/hazyhaar/axsim/axtree"
)

// HeadingInfo describes one heading.
type HeadingInfo struct {
	Node         *axtree.Node `json:"-"`
	NodeID       int          `json:"node_id"`
	Level        int          `json:"level"`
	Text         string       `json:"text"`
	SkippedLevel bool         `json:"skipped_level,omitempty"`
	IsEmpty      bool         `json:"is_empty,omitempty"`
	Nested       bool         `json:"nested,omitempty"`
}

// Headings checks the heading outline.
func Headings(t *axtree.Tree) *Result[HeadingInfo] {
	if t == nil {
		return nil
	}
	res := &Result[HeadingInfo]{Items: []HeadingInfo{}, Issues: []Issue{}}

	var h1s []*axtree.Node
	prevLevel := 0
	skipped := false
	for _, n := range t.Flatten() {
		if n.Hidden || n.Role != "heading" {
			continue
		}
		info := HeadingInfo{Node: n, NodeID: n.ID, Level: n.Level, Text: n.Name, IsEmpty: !n.HasName()}
		if prevLevel > 0 && n.Level > prevLevel+1 {
			info.SkippedLevel = true
			skipped = true
			res.Issues = append(res.Issues, newIssue(IssueSkippedLevel, Moderate, n,
				"heading level %d follows level %d", n.Level, prevLevel))
		}
		if info.IsEmpty {
			res.Issues = append(res.Issues, newIssue(IssueEmptyHeading, Serious, n,
				"level %d heading has no text", n.Level))
		}
		if t.Closest(n, func(a *axtree.Node) bool { return a.Role == "heading" }) != nil {
			info.Nested = true
			res.Issues = append(res.Issues, newIssue(IssueImproperNesting, Moderate, n,
				"heading %q is nested inside another heading", n.Name))
		}
		if n.Level == 1 {
			h1s = append(h1s, n)
		}
		prevLevel = n.Level
		res.Items = append(res.Items, info)
	}

	switch {
	case len(h1s) == 0:
		res.Issues = append(res.Issues, newIssue(IssueMissingH1, Serious, nil, "page has no level 1 heading"))
	case len(h1s) > 1:
		is := newIssue(IssueMultipleH1, Moderate, h1s[1], "page has %d level 1 headings", len(h1s))
		is.Nodes = nodeIDs(h1s)
		res.Issues = append(res.Issues, is)
	}

	bonus := 0
	if len(h1s) == 1 && !skipped {
		bonus = 5
	}
	res.Score = Score(res.Issues, bonus)
	return res
}
