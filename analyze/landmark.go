package analyze

import (
	"strings"

	"github.com/hazyhaar/axsim/axtree"
)

// LandmarkInfo describes one landmark region.
type LandmarkInfo struct {
	Node             *axtree.Node `json:"-"`
	NodeID           int          `json:"node_id"`
	Role             string       `json:"role"`
	Label            string       `json:"label,omitempty"`
	HasLabel         bool         `json:"has_label"`
	IsDuplicateLabel bool         `json:"is_duplicate_label,omitempty"`
	// Parent is the node id of the enclosing landmark, -1 at top level.
	Parent int `json:"parent"`
}

// Landmarks checks landmark structure.
func Landmarks(t *axtree.Tree) *Result[LandmarkInfo] {
	if t == nil {
		return nil
	}
	res := &Result[LandmarkInfo]{Items: []LandmarkInfo{}, Issues: []Issue{}}

	byRole := make(map[string][]int)
	for _, n := range t.Flatten() {
		if n.Hidden || !axtree.IsLandmark(n.Role) {
			continue
		}
		info := LandmarkInfo{
			Node:     n,
			NodeID:   n.ID,
			Role:     n.Role,
			Label:    n.Name,
			HasLabel: n.HasName(),
			Parent:   -1,
		}
		if p := t.Closest(n, func(a *axtree.Node) bool { return axtree.IsLandmark(a.Role) && !a.Hidden }); p != nil {
			info.Parent = p.ID
		}
		byRole[n.Role] = append(byRole[n.Role], len(res.Items))
		res.Items = append(res.Items, info)
	}

	mains := byRole["main"]
	switch {
	case len(mains) == 0:
		res.Issues = append(res.Issues, newIssue(IssueMissingMain, Serious, nil,
			"page has no main landmark"))
	case len(mains) > 1:
		nodes := make([]*axtree.Node, len(mains))
		for i, idx := range mains {
			nodes[i] = res.Items[idx].Node
		}
		is := newIssue(IssueMultipleMain, Serious, nodes[1], "page has %d main landmarks", len(mains))
		is.Nodes = nodeIDs(nodes)
		res.Issues = append(res.Issues, is)
	}

	for i := range res.Items {
		it := &res.Items[i]
		if it.HasLabel {
			continue
		}
		switch {
		case it.Role == "region" || it.Role == "form":
			res.Issues = append(res.Issues, newIssue(IssueMissingLabel, Moderate, it.Node,
				"%s landmark has no accessible name", it.Role))
		case len(byRole[it.Role]) > 1:
			res.Issues = append(res.Issues, newIssue(IssueMissingLabel, Moderate, it.Node,
				"%d %s landmarks exist and this one has no name to tell them apart", len(byRole[it.Role]), it.Role))
		}
	}

	type labelKey struct{ role, label string }
	dups := make(map[labelKey][]int)
	var keys []labelKey
	for i, it := range res.Items {
		if !it.HasLabel {
			continue
		}
		k := labelKey{it.Role, strings.ToLower(strings.TrimSpace(it.Label))}
		if _, ok := dups[k]; !ok {
			keys = append(keys, k)
		}
		dups[k] = append(dups[k], i)
	}
	for _, k := range keys {
		idxs := dups[k]
		if len(idxs) < 2 {
			continue
		}
		nodes := make([]*axtree.Node, len(idxs))
		for j, idx := range idxs {
			res.Items[idx].IsDuplicateLabel = true
			nodes[j] = res.Items[idx].Node
		}
		is := newIssue(IssueDuplicateLabel, Moderate, nodes[1], "%d %s landmarks share the label %q",
			len(idxs), k.role, res.Items[idxs[0]].Label)
		is.Nodes = nodeIDs(nodes)
		res.Issues = append(res.Issues, is)
	}

	for _, it := range res.Items {
		if it.Parent < 0 {
			continue
		}
		switch it.Role {
		case "main", "banner", "contentinfo":
			parent := t.Node(it.Parent)
			res.Issues = append(res.Issues, newIssue(IssueNestedIncorrectly, Moderate, it.Node,
				"%s landmark is nested inside %s", it.Role, describe(parent)))
		}
	}

	for _, role := range []string{"banner", "contentinfo"} {
		var top []*axtree.Node
		for _, idx := range byRole[role] {
			if res.Items[idx].Parent < 0 {
				top = append(top, res.Items[idx].Node)
			}
		}
		if len(top) > 1 {
			is := newIssue(IssueRedundantLandmark, Minor, top[1], "page has %d top-level %s landmarks", len(top), role)
			is.Nodes = nodeIDs(top)
			res.Issues = append(res.Issues, is)
		}
	}

	bonus := 0
	if len(mains) == 1 {
		bonus = 5
	}
	res.Score = Score(res.Issues, bonus)
	return res
}
