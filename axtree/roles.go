package axtree

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/axsim/source"
)

// Roles with special meaning to the builder and its consumers.
var (
	// leafRoles never receive computed children.
	leafRoles = map[string]bool{
		"img": true, "image": true, "button": true, "checkbox": true, "radio": true,
		"textbox": true, "searchbox": true, "slider": true, "spinbutton": true,
	}

	landmarkRoles = map[string]bool{
		"banner": true, "navigation": true, "main": true, "complementary": true,
		"contentinfo": true, "region": true, "search": true, "form": true,
	}

	// liveRoles carry an implicit politeness.
	liveRoles = map[string]string{
		"alert":   "assertive",
		"status":  "polite",
		"log":     "polite",
		"timer":   "off",
		"marquee": "off",
	}

	compositeRoles = map[string]bool{
		"application": true, "toolbar": true, "menu": true, "menubar": true,
		"tree": true, "treegrid": true, "grid": true, "tablist": true,
		"listbox": true, "radiogroup": true,
	}

	formFieldRoles = map[string]bool{
		"textbox": true, "searchbox": true, "combobox": true, "listbox": true,
		"checkbox": true, "radio": true, "spinbutton": true, "slider": true,
		"switch": true,
	}

	nameFromContentRoles = map[string]bool{
		"button": true, "link": true, "heading": true,
		"cell": true, "columnheader": true, "rowheader": true,
	}

	valueRoles = map[string]bool{
		"textbox": true, "searchbox": true, "combobox": true, "spinbutton": true,
		"slider": true, "progressbar": true, "meter": true, "scrollbar": true,
	}
)

// IsLandmark reports whether role is one of the landmark region roles.
func IsLandmark(role string) bool { return landmarkRoles[role] }

// IsLeaf reports whether role is presented as a single unit.
func IsLeaf(role string) bool { return leafRoles[role] }

// IsComposite reports whether role is a widget container that a screen
// reader user can interact with.
func IsComposite(role string) bool { return compositeRoles[role] }

// IsFormField reports whether role is a data entry control.
func IsFormField(role string) bool { return formFieldRoles[role] }

// ImplicitLive returns the politeness implied by role, and whether role is a
// live region role at all.
func ImplicitLive(role string) (string, bool) {
	p, ok := liveRoles[role]
	return p, ok
}

// explicitRole returns the first token of the role attribute.
func explicitRole(el source.Element) string {
	v, ok := el.Attr("role")
	if !ok {
		return ""
	}
	fields := strings.Fields(strings.ToLower(v))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

var inputRoles = map[string]string{
	"button":   "button",
	"submit":   "button",
	"reset":    "button",
	"image":    "button",
	"checkbox": "checkbox",
	"radio":    "radio",
	"number":   "spinbutton",
	"range":    "slider",
	"search":   "searchbox",
	"text":     "textbox",
	"email":    "textbox",
	"tel":      "textbox",
	"url":      "textbox",
	"password": "textbox",
}

var tagRoles = map[string]string{
	"article":    "article",
	"aside":      "complementary",
	"blockquote": "blockquote",
	"body":       "document",
	"button":     "button",
	"caption":    "caption",
	"code":       "code",
	"datalist":   "listbox",
	"dd":         "definition",
	"del":        "deletion",
	"details":    "group",
	"dialog":     "dialog",
	"dt":         "term",
	"em":         "emphasis",
	"fieldset":   "group",
	"figure":     "figure",
	"hr":         "separator",
	"html":       "document",
	"ins":        "insertion",
	"li":         "listitem",
	"main":       "main",
	"math":       "math",
	"menu":       "list",
	"meter":      "meter",
	"nav":        "navigation",
	"ol":         "list",
	"optgroup":   "group",
	"option":     "option",
	"output":     "status",
	"p":          "paragraph",
	"progress":   "progressbar",
	"search":     "search",
	"strong":     "strong",
	"sub":        "subscript",
	"summary":    "button",
	"sup":        "superscript",
	"table":      "table",
	"tbody":      "rowgroup",
	"textarea":   "textbox",
	"tfoot":      "rowgroup",
	"thead":      "rowgroup",
	"time":       "time",
	"td":         "cell",
	"tr":         "row",
	"ul":         "list",
}

// implicitRole maps host language semantics to a role. Unmapped tags are
// generic.
func implicitRole(el source.Element) string {
	tag := el.Tag()
	switch tag {
	case "a", "area":
		if source.HasAttr(el, "href") {
			return "link"
		}
		return "generic"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "img":
		if alt, ok := el.Attr("alt"); ok && alt == "" && !hasAriaName(el) {
			return "presentation"
		}
		return "img"
	case "input":
		if r, ok := inputRoles[inputType(el)]; ok {
			return r
		}
		return "textbox"
	case "select":
		if source.HasAttr(el, "multiple") {
			return "listbox"
		}
		if n, err := strconv.Atoi(source.AttrValue(el, "size")); err == nil && n > 1 {
			return "listbox"
		}
		return "combobox"
	case "th":
		if strings.EqualFold(source.AttrValue(el, "scope"), "row") {
			return "rowheader"
		}
		return "columnheader"
	case "header":
		if inSectioningContent(el) {
			return "generic"
		}
		return "banner"
	case "footer":
		if inSectioningContent(el) {
			return "generic"
		}
		return "contentinfo"
	case "section":
		if hasAriaName(el) || source.HasAttr(el, "title") {
			return "region"
		}
		return "generic"
	case "form":
		if hasAriaName(el) || source.HasAttr(el, "title") {
			return "form"
		}
		return "generic"
	}
	if r, ok := tagRoles[tag]; ok {
		return r
	}
	return "generic"
}

func hasAriaName(el source.Element) bool {
	if strings.TrimSpace(source.AttrValue(el, "aria-label")) != "" {
		return true
	}
	return len(source.IDRefs(el, "aria-labelledby")) > 0
}

// inSectioningContent scopes header and footer: inside article, aside,
// main, nav or section they are not page level landmarks.
func inSectioningContent(el source.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		switch p.Tag() {
		case "article", "aside", "main", "nav", "section":
			return true
		}
		switch explicitRole(p) {
		case "article", "complementary", "main", "navigation", "region":
			return true
		}
	}
	return false
}

// headingLevel reads the level from aria-level, then the tag number, and
// defaults to 2.
func headingLevel(el source.Element) int {
	if lvl := ariaInt(el, "aria-level"); lvl > 0 {
		return lvl
	}
	tag := el.Tag()
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 2
}

// isTextInput reports native text entry elements, whatever their role.
func isTextInput(el source.Element) bool {
	switch el.Tag() {
	case "textarea":
		return true
	case "input":
		switch inputRoles[inputType(el)] {
		case "button", "checkbox", "radio":
			return false
		}
		return true
	}
	return false
}

// inputType prefers the adapter's native type and falls back to the
// attribute, defaulting to text.
func inputType(el source.Element) string {
	if t := el.Native().InputType; t != "" {
		return t
	}
	if t := strings.ToLower(strings.TrimSpace(source.AttrValue(el, "type"))); t != "" {
		return t
	}
	return "text"
}

func ariaInt(el source.Element, name string) int {
	v, ok := el.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
