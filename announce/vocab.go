package announce

import (
	"fmt"

	"github.com/hazyhaar/axsim/axtree"
)

// Vendor identifies a screen reader product.
type Vendor string

const (
	NVDA      Vendor = "nvda"
	JAWS      Vendor = "jaws"
	VoiceOver Vendor = "voiceover"
	Narrator  Vendor = "narrator"
)

// Vendors lists the supported products.
var Vendors = []Vendor{NVDA, JAWS, VoiceOver, Narrator}

// ParseVendor maps a name to a Vendor.
func ParseVendor(s string) (Vendor, error) {
	for _, v := range Vendors {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("announce: unknown screen reader %q", s)
}

// Verbosity controls how much detail an announcement carries.
type Verbosity string

const (
	Minimal Verbosity = "minimal"
	Normal  Verbosity = "normal"
	Verbose Verbosity = "verbose"
)

// ParseVerbosity maps a name to a Verbosity. Empty means Normal.
func ParseVerbosity(s string) (Verbosity, error) {
	switch Verbosity(s) {
	case Minimal, Normal, Verbose:
		return Verbosity(s), nil
	case "":
		return Normal, nil
	}
	return "", fmt.Errorf("announce: unknown verbosity %q", s)
}

func (v Verbosity) elevate() Verbosity {
	switch v {
	case Minimal:
		return Normal
	case Normal:
		return Verbose
	}
	return v
}

type vocabulary struct {
	roles  map[string]string
	states stateWords
}

type stateWords struct {
	checked, unchecked, mixed   string
	pressed, notPressed         string
	expanded, collapsed         string
	selected, notSelected       string
	disabled, required, invalid string
	readOnly, busy, hasPopup    string
}

var vocabularies = map[Vendor]vocabulary{
	NVDA: {
		roles: map[string]string{
			"link": "link", "button": "button", "textbox": "edit", "searchbox": "edit",
			"checkbox": "check box", "radio": "radio button", "combobox": "combo box",
			"listbox": "list", "option": "", "heading": "heading",
			"navigation": "navigation landmark", "main": "main landmark",
			"banner": "banner landmark", "contentinfo": "content info landmark",
			"complementary": "complementary landmark", "region": "region",
			"search": "search landmark", "form": "form landmark",
			"img": "graphic", "image": "graphic", "list": "list", "listitem": "",
			"table": "table", "row": "row", "cell": "", "columnheader": "column header",
			"rowheader": "row header", "dialog": "dialog", "alertdialog": "alert dialog",
			"alert": "alert", "slider": "slider", "spinbutton": "spin button",
			"progressbar": "progress bar", "tab": "tab", "tablist": "tab control",
			"tabpanel": "property page", "menu": "menu", "menubar": "menu bar",
			"menuitem": "menu item", "tree": "tree view", "treeitem": "tree view item",
			"switch": "toggle button", "toolbar": "tool bar", "grid": "table",
			"gridcell": "", "group": "grouping", "radiogroup": "grouping",
			"separator": "separator", "article": "article", "figure": "figure",
			"status": "", "log": "", "document": "document", "application": "application",
		},
		states: stateWords{
			checked: "checked", unchecked: "not checked", mixed: "half checked",
			pressed: "pressed", notPressed: "not pressed",
			expanded: "expanded", collapsed: "collapsed",
			selected: "selected", notSelected: "not selected",
			disabled: "unavailable", required: "required", invalid: "invalid entry",
			readOnly: "read only", busy: "busy", hasPopup: "submenu",
		},
	},
	JAWS: {
		roles: map[string]string{
			"link": "link", "button": "button", "textbox": "edit", "searchbox": "edit",
			"checkbox": "check box", "radio": "radio button", "combobox": "combo box",
			"listbox": "list box", "option": "", "heading": "heading",
			"navigation": "navigation region", "main": "main region",
			"banner": "banner region", "contentinfo": "content information region",
			"complementary": "complementary region", "region": "region",
			"search": "search region", "form": "form region",
			"img": "graphic", "image": "graphic", "list": "list", "listitem": "",
			"table": "table", "row": "row", "cell": "", "columnheader": "column header",
			"rowheader": "row header", "dialog": "dialog", "alertdialog": "alert dialog",
			"alert": "alert", "slider": "slider", "spinbutton": "spin box",
			"progressbar": "progress bar", "tab": "tab", "tablist": "tab control",
			"tabpanel": "tab panel", "menu": "menu", "menubar": "menu bar",
			"menuitem": "menu item", "tree": "tree view", "treeitem": "",
			"switch": "toggle button", "toolbar": "toolbar", "grid": "grid",
			"gridcell": "", "group": "group", "radiogroup": "group",
			"separator": "separator", "article": "article", "figure": "figure",
			"status": "", "log": "", "document": "", "application": "application",
		},
		states: stateWords{
			checked: "checked", unchecked: "not checked", mixed: "partially checked",
			pressed: "pressed", notPressed: "not pressed",
			expanded: "expanded", collapsed: "collapsed",
			selected: "selected", notSelected: "",
			disabled: "unavailable", required: "required", invalid: "invalid entry",
			readOnly: "read only", busy: "busy", hasPopup: "has popup",
		},
	},
	VoiceOver: {
		roles: map[string]string{
			"link": "link", "button": "button", "textbox": "text field",
			"searchbox": "search text field", "checkbox": "checkbox",
			"radio": "radio button", "combobox": "combo box", "listbox": "list box",
			"option": "", "heading": "heading",
			"navigation": "navigation", "main": "main", "banner": "banner",
			"contentinfo": "content information", "complementary": "complementary",
			"region": "region", "search": "search", "form": "form",
			"img": "image", "image": "image", "list": "list", "listitem": "",
			"table": "table", "row": "row", "cell": "cell", "columnheader": "column header",
			"rowheader": "row header", "dialog": "web dialog", "alertdialog": "alert dialog",
			"alert": "alert", "slider": "slider", "spinbutton": "stepper",
			"progressbar": "progress indicator", "tab": "tab", "tablist": "tab group",
			"tabpanel": "tab panel", "menu": "menu", "menubar": "menu bar",
			"menuitem": "menu item", "tree": "outline", "treeitem": "row",
			"switch": "switch", "toolbar": "toolbar", "grid": "grid",
			"gridcell": "cell", "group": "group", "radiogroup": "radio group",
			"separator": "separator", "article": "article", "figure": "figure",
			"status": "status", "log": "log", "document": "web content",
			"application": "application",
		},
		states: stateWords{
			checked: "checked", unchecked: "unchecked", mixed: "mixed",
			pressed: "selected", notPressed: "",
			expanded: "expanded", collapsed: "collapsed",
			selected: "selected", notSelected: "",
			disabled: "dimmed", required: "required", invalid: "invalid data",
			readOnly: "read only", busy: "busy", hasPopup: "pop up button",
		},
	},
	Narrator: {
		roles: map[string]string{
			"link": "link", "button": "button", "textbox": "edit", "searchbox": "edit",
			"checkbox": "check box", "radio": "radio button", "combobox": "combo box",
			"listbox": "list", "option": "", "heading": "heading",
			"navigation": "navigation landmark", "main": "main landmark",
			"banner": "banner landmark", "contentinfo": "content info landmark",
			"complementary": "complementary landmark", "region": "region landmark",
			"search": "search landmark", "form": "form landmark",
			"img": "image", "image": "image", "list": "list", "listitem": "",
			"table": "table", "row": "row", "cell": "", "columnheader": "column header",
			"rowheader": "row header", "dialog": "dialog", "alertdialog": "alert dialog",
			"alert": "alert", "slider": "slider", "spinbutton": "spinner",
			"progressbar": "progress bar", "tab": "tab item", "tablist": "tab",
			"tabpanel": "pane", "menu": "menu", "menubar": "menu bar",
			"menuitem": "menu item", "tree": "tree", "treeitem": "tree item",
			"switch": "toggle switch", "toolbar": "tool bar", "grid": "grid",
			"gridcell": "", "group": "group", "radiogroup": "group",
			"separator": "separator", "article": "article", "figure": "figure",
			"status": "", "log": "", "document": "", "application": "application",
		},
		states: stateWords{
			checked: "checked", unchecked: "non checked", mixed: "partially checked",
			pressed: "pressed", notPressed: "",
			expanded: "expanded", collapsed: "collapsed",
			selected: "selected", notSelected: "non selected",
			disabled: "disabled", required: "required", invalid: "invalid",
			readOnly: "read only", busy: "busy", hasPopup: "has pop up",
		},
	},
}

func vocabFor(v Vendor) vocabulary {
	if voc, ok := vocabularies[v]; ok {
		return voc
	}
	return vocabularies[NVDA]
}

// RoleText returns the spoken role of n for vendor. Unknown roles are
// silent; headings carry their level.
func RoleText(v Vendor, n *axtree.Node) string {
	return roleWord(v, n.Role, n.Level)
}

func roleWord(v Vendor, role string, level int) string {
	word := vocabFor(v).roles[role]
	if role == "heading" && level > 0 {
		return fmt.Sprintf("%s level %d", word, level)
	}
	return word
}

// StateText returns the spoken states of n for vendor, in a fixed order.
func StateText(v Vendor, n *axtree.Node) []string {
	w := vocabFor(v).states
	var out []string
	add := func(s string) {
		if s != "" {
			out = append(out, s)
		}
	}
	switch n.Checked {
	case axtree.True:
		add(w.checked)
	case axtree.False:
		add(w.unchecked)
	case axtree.Mixed:
		add(w.mixed)
	}
	switch n.Pressed {
	case axtree.True:
		add(w.pressed)
	case axtree.False:
		add(w.notPressed)
	case axtree.Mixed:
		add(w.mixed)
	}
	switch n.Expanded {
	case axtree.True:
		add(w.expanded)
	case axtree.False:
		add(w.collapsed)
	}
	switch n.Selected {
	case axtree.True:
		add(w.selected)
	case axtree.False:
		add(w.notSelected)
	}
	if n.HasPopup != "" {
		add(w.hasPopup)
	}
	if n.Disabled {
		add(w.disabled)
	}
	if n.ReadOnly {
		add(w.readOnly)
	}
	if n.Required {
		add(w.required)
	}
	if n.Invalid {
		add(w.invalid)
	}
	if n.Busy {
		add(w.busy)
	}
	return out
}
