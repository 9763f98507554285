package analyze

import (
	"strings"
	"unicode"

	"github.com/hazyhaar/axsim/axtree"
)

// FormFieldInfo describes one form control.
type FormFieldInfo struct {
	Node            *axtree.Node      `json:"-"`
	NodeID          int               `json:"node_id"`
	Role            string            `json:"role"`
	Label           string            `json:"label,omitempty"`
	LabelSource     axtree.NameSource `json:"label_source,omitempty"`
	Required        bool              `json:"required,omitempty"`
	Invalid         bool              `json:"invalid,omitempty"`
	HasErrorMessage bool              `json:"has_error_message,omitempty"`
	HasInstructions bool              `json:"has_instructions,omitempty"`
	// Group is the node id of the enclosing group, -1 when ungrouped.
	Group int `json:"group"`
}

var genericErrors = map[string]bool{
	"error": true, "invalid": true, "invalid input": true, "invalid value": true,
	"invalid entry": true, "incorrect": true, "wrong": true, "not valid": true,
	"required": true, "this field is required": true, "please correct": true,
}

var formatInputTypes = map[string]bool{
	"date": true, "time": true, "datetime-local": true, "month": true, "week": true,
}

func isGroup(n *axtree.Node) bool {
	return (n.Role == "group" || n.Role == "radiogroup") && !n.Hidden
}

// Forms checks labelling and error handling of form controls.
func Forms(t *axtree.Tree) *Result[FormFieldInfo] {
	if t == nil {
		return nil
	}
	res := &Result[FormFieldInfo]{Items: []FormFieldInfo{}, Issues: []Issue{}}
	ids := idIndex(t)

	for _, n := range t.Flatten() {
		if n.Hidden || !axtree.IsFormField(n.Role) {
			continue
		}
		info := FormFieldInfo{
			Node:        n,
			NodeID:      n.ID,
			Role:        n.Role,
			Label:       n.Name,
			LabelSource: n.NameFrom,
			Required:    n.Required,
			Invalid:     n.Invalid,
			Group:       -1,
		}
		if g := t.Closest(n, isGroup); g != nil {
			info.Group = g.ID
		}

		errText := errorText(n, ids)
		info.HasErrorMessage = errText != ""
		info.HasInstructions = n.Description != ""

		switch n.NameFrom {
		case axtree.NameNone:
			res.Issues = append(res.Issues, newIssue(IssueMissingLabel, Critical, n,
				"%s has no accessible label", n.Role))
		case axtree.NameFromPlaceholder:
			res.Issues = append(res.Issues, newIssue(IssuePlaceholderAsLabel, Serious, n,
				"%s is labelled only by its placeholder %q", n.Role, n.Name))
		case axtree.NameFromTitle:
			res.Issues = append(res.Issues, newIssue(IssueTitleAsLabel, Moderate, n,
				"%s is labelled only by its title %q", n.Role, n.Name))
		}

		if n.Invalid {
			switch {
			case !info.HasErrorMessage:
				res.Issues = append(res.Issues, newIssue(IssueMissingErrorMessage, Serious, n,
					"%s is invalid but no error message is associated", describe(n)))
			case genericErrors[normalizeMessage(errText)]:
				res.Issues = append(res.Issues, newIssue(IssueGenericError, Moderate, n,
					"error message %q does not say how to fix %s", errText, describe(n)))
			}
		}

		if !n.Required && looksRequired(n.Name) {
			res.Issues = append(res.Issues, newIssue(IssueMissingRequired, Moderate, n,
				"label %q suggests a required field but it is not marked required", n.Name))
		}

		if !info.HasInstructions && needsInstructions(n) {
			res.Issues = append(res.Issues, newIssue(IssueMissingInstructions, Minor, n,
				"%s expects a specific format but gives no instructions", describe(n)))
		}

		res.Items = append(res.Items, info)
	}

	res.Issues = append(res.Issues, groupIssues(t, res.Items)...)
	res.Score = Score(res.Issues, 0)
	return res
}

// errorText returns the text of the aria-errormessage targets, falling
// back to the description.
func errorText(n *axtree.Node, ids map[string]*axtree.Node) string {
	var parts []string
	for _, id := range n.ErrorMessage {
		target, ok := ids[id]
		if !ok || target.Source == nil {
			continue
		}
		if s := target.Source.Text(); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return n.Description
}

func normalizeMessage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRightFunc(s, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSpace(r) })
}

func looksRequired(label string) bool {
	if strings.Contains(label, "*") {
		return true
	}
	return strings.Contains(strings.ToLower(label), "required")
}

func needsInstructions(n *axtree.Node) bool {
	if n.Attr("pattern") != "" || n.Attr("minlength") != "" {
		return true
	}
	if n.Tag == "input" {
		return formatInputTypes[strings.ToLower(n.Attr("type"))]
	}
	return false
}

// groupIssues flags nameless groups that hold fields, and radio sets that
// share a name without a named group around them.
func groupIssues(t *axtree.Tree, fields []FormFieldInfo) []Issue {
	var out []Issue
	flagged := make(map[int]bool)
	for _, f := range fields {
		if f.Group < 0 || flagged[f.Group] {
			continue
		}
		g := t.Node(f.Group)
		if !g.HasName() {
			flagged[g.ID] = true
			out = append(out, newIssue(IssueUnlabeledGroup, Moderate, g,
				"%s containing form fields has no accessible name", g.Role))
		}
	}

	radios := make(map[string][]*axtree.Node)
	var names []string
	for _, f := range fields {
		if f.Role != "radio" || f.Node.Tag != "input" {
			continue
		}
		name := f.Node.Attr("name")
		if name == "" {
			continue
		}
		if f.Group >= 0 && t.Node(f.Group).HasName() {
			continue
		}
		if _, ok := radios[name]; !ok {
			names = append(names, name)
		}
		radios[name] = append(radios[name], f.Node)
	}
	for _, name := range names {
		set := radios[name]
		if len(set) < 2 {
			continue
		}
		if flagged[closestGroupID(t, set[0])] {
			continue
		}
		is := newIssue(IssueUnlabeledGroup, Moderate, set[0],
			"%d radio buttons named %q are not inside a labelled group", len(set), name)
		is.Nodes = nodeIDs(set)
		out = append(out, is)
	}
	return out
}

func closestGroupID(t *axtree.Tree, n *axtree.Node) int {
	if g := t.Closest(n, isGroup); g != nil {
		return g.ID
	}
	return -1
}
