package screenreader

import (
	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/axtree"
)

// NVDA simulates NV Access NVDA: browse and focus modes, switched
// explicitly or by tabbing onto an editable control.
type NVDA struct {
	*Simulator
}

// NewNVDA returns an NVDA simulator in browse mode.
func NewNVDA(opts ...Option) *NVDA {
	return &NVDA{Simulator: NewSimulator(Strategy{
		Vendor:    announce.NVDA,
		Modes:     []Mode{ModeBrowse, ModeFocus},
		Navigable: DefaultNavigable,
	}, opts...)}
}

var editableRoles = map[string]bool{
	"textbox": true, "searchbox": true, "combobox": true, "spinbutton": true,
	"slider": true, "listbox": true,
}

func modeText(m Mode) string {
	switch m {
	case ModeFocus:
		return "Focus mode"
	case ModeForms:
		return "Forms mode"
	}
	return "Browse mode"
}

// ToggleMode switches between browse and focus mode.
func (v *NVDA) ToggleMode() announce.Announcement {
	if v.Mode() == ModeBrowse {
		return v.SetMode(ModeFocus)
	}
	return v.SetMode(ModeBrowse)
}

// SetMode enters m and announces it. Unsupported modes are ignored.
func (v *NVDA) SetMode(m Mode) announce.Announcement {
	if m != ModeBrowse && m != ModeFocus {
		return v.Status(modeText(v.Mode()))
	}
	v.setMode(m)
	return v.Status(modeText(m))
}

// NextFocusable tabs to the next control. Landing on an editable control
// in browse mode switches to focus mode first.
func (v *NVDA) NextFocusable() announce.Announcement {
	a := v.Simulator.NextFocusable()
	v.autoFocusMode(a)
	return a
}

// PreviousFocusable is Shift+Tab with the same automatic mode switch.
func (v *NVDA) PreviousFocusable() announce.Announcement {
	a := v.Simulator.PreviousFocusable()
	v.autoFocusMode(a)
	return a
}

func (v *NVDA) autoFocusMode(a announce.Announcement) {
	if a.IsStatus() {
		return
	}
	cur := v.Current()
	if cur != nil && editableRoles[cur.Role] && !cur.ReadOnly && v.Mode() == ModeBrowse {
		v.SetMode(ModeFocus)
	}
	if cur != nil && !editableRoles[cur.Role] && v.Mode() == ModeFocus {
		v.SetMode(ModeBrowse)
	}
}

// ReadCurrentLine repeats the current node without moving.
func (v *NVDA) ReadCurrentLine() announce.Announcement {
	cur := v.Current()
	if v.Tree() == nil {
		return v.Status("No document")
	}
	if cur == nil {
		return v.Status("blank")
	}
	return v.enqueue(v.Generator().Generate(cur, announce.NVDA, v.Browser(), v.Verbosity()))
}

// ReadToEnd reads every navigable node after the current one, leaving the
// cursor on the last. The terminal status is not included.
func (v *NVDA) ReadToEnd() []announce.Announcement {
	if v.Tree() == nil {
		return []announce.Announcement{v.Status("No document")}
	}
	out := v.ReadAll()
	if n := len(out); n > 0 && out[n-1].IsStatus() {
		out = out[:n-1]
	}
	return out
}

// ElementsList returns NVDA's elements list for one category (links,
// headings, formfields, buttons, landmarks) without moving the cursor.
func (v *NVDA) ElementsList(category string) []*axtree.Node {
	switch category {
	case "links":
		return v.Links()
	case "headings":
		return v.Headings(0)
	case "formfields":
		return v.FormFields()
	case "buttons":
		return v.Filter(isButton)
	case "landmarks":
		return v.Landmarks()
	}
	return nil
}

var elementsListTitles = map[string]string{
	"links":      "Links",
	"headings":   "Headings",
	"formfields": "Form fields",
	"buttons":    "Buttons",
	"landmarks":  "Landmarks",
}

// elementsListItems phrases ElementsList entries: links by name, the other
// categories as "name, role".
func (v *NVDA) elementsListItems(category string) []string {
	var out []string
	for _, n := range v.ElementsList(category) {
		if category == "links" {
			out = append(out, label(n))
			continue
		}
		out = append(out, joinNonEmpty([]string{n.Name, announce.RoleText(announce.NVDA, n)}))
	}
	return out
}
