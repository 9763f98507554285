package axtree

import (
	"strings"

	"github.com/hazyhaar/axsim/source"
)

// computeName walks the name precedence: aria-labelledby, aria-label,
// native label, alt, title, contents, placeholder. The first non-empty
// result wins.
func computeName(doc source.Document, el source.Element, role string) (string, NameSource) {
	if s := joinRefs(doc, source.IDRefs(el, "aria-labelledby")); s != "" {
		return s, NameFromLabelledBy
	}
	if s := strings.TrimSpace(source.AttrValue(el, "aria-label")); s != "" {
		return s, NameFromAriaLabel
	}
	if isFormControl(el, role) {
		var parts []string
		for _, lbl := range doc.LabelsFor(el) {
			if t := lbl.Text(); t != "" {
				parts = append(parts, t)
			}
		}
		if s := strings.Join(parts, " "); s != "" {
			return s, NameFromNativeLabel
		}
	}
	if s := captionText(el); s != "" {
		return s, NameFromNativeLabel
	}
	if role == "img" || role == "image" || (el.Tag() == "input" && inputType(el) == "image") {
		if s := strings.TrimSpace(source.AttrValue(el, "alt")); s != "" {
			return s, NameFromAlt
		}
	}
	if s := strings.TrimSpace(source.AttrValue(el, "title")); s != "" {
		return s, NameFromTitle
	}
	if nameFromContentRoles[role] {
		if s := el.Text(); s != "" {
			return s, NameFromContents
		}
	}
	if el.Tag() == "input" {
		switch inputType(el) {
		case "submit", "reset", "button":
			if s := strings.TrimSpace(source.AttrValue(el, "value")); s != "" {
				return s, NameFromValue
			}
			switch inputType(el) {
			case "submit":
				return "Submit", NameFromValue
			case "reset":
				return "Reset", NameFromValue
			}
		}
	}
	if isFormControl(el, role) {
		ph := el.Native().Placeholder
		if ph == "" {
			ph = source.AttrValue(el, "placeholder")
		}
		if s := strings.TrimSpace(ph); s != "" {
			return s, NameFromPlaceholder
		}
	}
	return "", NameNone
}

// computeDescription joins aria-describedby targets, then falls back to
// aria-description.
func computeDescription(doc source.Document, el source.Element) string {
	if s := joinRefs(doc, source.IDRefs(el, "aria-describedby")); s != "" {
		return s
	}
	return strings.TrimSpace(source.AttrValue(el, "aria-description"))
}

// computeValue prefers aria-valuetext, then aria-valuenow, then the native
// value of value-bearing roles.
func computeValue(el source.Element, role string) string {
	if s := strings.TrimSpace(source.AttrValue(el, "aria-valuetext")); s != "" {
		return s
	}
	if s := strings.TrimSpace(source.AttrValue(el, "aria-valuenow")); s != "" {
		return s
	}
	if !valueRoles[role] {
		return ""
	}
	if v := el.Native().Value; v != "" {
		return v
	}
	switch el.Tag() {
	case "progress", "meter":
		return strings.TrimSpace(source.AttrValue(el, "value"))
	}
	return ""
}

// joinRefs concatenates the text of each resolvable id with single
// spaces. Unresolved ids are skipped.
func joinRefs(doc source.Document, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	var parts []string
	for _, id := range ids {
		target := doc.ResolveID(id)
		if target == nil {
			continue
		}
		if t := target.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

var captionTags = map[string]string{
	"fieldset": "legend",
	"figure":   "figcaption",
	"table":    "caption",
}

// captionText returns the first legend, figcaption or caption child text
// of the elements that take their name from one.
func captionText(el source.Element) string {
	want, ok := captionTags[el.Tag()]
	if !ok {
		return ""
	}
	for _, c := range el.Children() {
		if c.Tag() == want {
			return c.Text()
		}
	}
	return ""
}

func isFormControl(el source.Element, role string) bool {
	switch el.Tag() {
	case "input", "select", "textarea", "button", "meter", "output", "progress":
		return true
	}
	return formFieldRoles[role]
}
