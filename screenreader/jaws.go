package screenreader

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/axtree"
)

// JAWS simulates Freedom Scientific JAWS: browse and forms modes, usage
// hints after every arrival, and list summaries.
type JAWS struct {
	*Simulator
}

// NewJAWS returns a JAWS simulator in browse mode.
func NewJAWS(opts ...Option) *JAWS {
	j := &JAWS{}
	j.Simulator = NewSimulator(Strategy{
		Vendor:    announce.JAWS,
		Modes:     []Mode{ModeBrowse, ModeForms},
		Navigable: DefaultNavigable,
		Format:    j.format,
	}, opts...)
	return j
}

var activatable = map[string]bool{
	"link": true, "button": true, "checkbox": true, "radio": true, "switch": true,
	"menuitem": true, "menuitemcheckbox": true, "menuitemradio": true, "tab": true,
	"option": true,
}

// hint returns the usage hint JAWS speaks after n in the current mode.
func (j *JAWS) hint(n *axtree.Node) string {
	switch {
	case n.Role == "cell" || n.Role == "gridcell":
		return "To move between table cells, press Control+Alt+Arrow keys."
	case editableRoles[n.Role] && !n.ReadOnly:
		return "Type in text."
	case activatable[n.Role] && j.Mode() == ModeBrowse:
		return "To activate press Enter."
	}
	return ""
}

func (j *JAWS) format(n *axtree.Node, kind announce.NavKind) announce.Announcement {
	g := j.Generator()
	a := g.Navigation(n, announce.JAWS, j.Browser(), kind, j.Verbosity())
	if kind == announce.NavHeading && n.Role == "heading" {
		rest := make([]string, 0, 1+len(a.State)+len(a.Properties)+len(a.Context))
		rest = append(rest, a.Name)
		rest = append(rest, a.State...)
		rest = append(rest, a.Properties...)
		rest = append(rest, a.Context...)
		a.Text = fmt.Sprintf("Heading level %d, %s", n.Level, joinNonEmpty(rest))
	}
	if h := j.hint(n); h != "" {
		a.Hint = h
		a.Text = a.Text + ". " + h
	}
	return a
}

// ToggleFormsMode switches between browse and forms mode.
func (j *JAWS) ToggleFormsMode() announce.Announcement {
	if j.Mode() == ModeForms {
		j.setMode(ModeBrowse)
		return j.Status("Forms mode off")
	}
	j.setMode(ModeForms)
	return j.Status("Forms mode on")
}

// ListHeadings returns "name, level N" for every heading. The cursor and
// queue are left untouched.
func (j *JAWS) ListHeadings() []string {
	var out []string
	for _, n := range j.Headings(0) {
		out = append(out, fmt.Sprintf("%s, level %d", label(n), n.Level))
	}
	return out
}

// ListLinks returns the name of every link.
func (j *JAWS) ListLinks() []string {
	var out []string
	for _, n := range j.Links() {
		out = append(out, label(n))
	}
	return out
}

// ListFormFields returns "name, role" for every form control.
func (j *JAWS) ListFormFields() []string {
	var out []string
	for _, n := range j.FormFields() {
		out = append(out, joinNonEmpty([]string{label(n), announce.RoleText(announce.JAWS, n)}))
	}
	return out
}

func label(n *axtree.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return "blank"
}

func joinNonEmpty(parts []string) string {
	var keep []string
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, ", ")
}
