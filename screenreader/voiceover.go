package screenreader

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/axtree"
)

// VoiceOver simulates Apple VoiceOver: one continuous browse mode, an
// explicit interaction mode for composite widgets, and the rotor.
type VoiceOver struct {
	*Simulator
}

// NewVoiceOver returns a VoiceOver simulator. WithPlatform selects macOS
// (the default) or iOS hints.
func NewVoiceOver(opts ...Option) *VoiceOver {
	vo := &VoiceOver{}
	vo.Simulator = NewSimulator(Strategy{
		Vendor:    announce.VoiceOver,
		Modes:     []Mode{ModeBrowse, ModeInteraction},
		Navigable: voiceOverNavigable,
		Format:    vo.format,
	}, opts...)
	return vo
}

var structuralRoles = map[string]bool{
	"list": true, "listitem": true, "table": true, "row": true, "cell": true,
	"heading": true, "navigation": true, "main": true, "banner": true,
}

func voiceOverNavigable(n *axtree.Node) bool {
	return DefaultNavigable(n) || (!n.Hidden && structuralRoles[n.Role])
}

// RotorCategory is one entry of the rotor summary.
type RotorCategory struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (vo *VoiceOver) format(n *axtree.Node, kind announce.NavKind) announce.Announcement {
	a := vo.Generator().Navigation(n, announce.VoiceOver, vo.Browser(), kind, vo.Verbosity())
	if vo.Verbosity() != announce.Minimal {
		a.Hint = vo.hint(n)
	}
	parts := []string{a.Role, a.Name}
	parts = append(parts, a.State...)
	parts = append(parts, a.Properties...)
	parts = append(parts, a.Context...)
	a.Text = joinNonEmpty(parts)
	if a.Hint != "" {
		a.Text += ". " + a.Hint
	}
	return a
}

func (vo *VoiceOver) hint(n *axtree.Node) string {
	ios := vo.Platform() == IOS
	switch {
	case axtree.IsComposite(n.Role) && vo.Mode() != ModeInteraction:
		if ios {
			return "Swipe right to move into this item."
		}
		return "To interact with this item, press Control-Option-Shift-Down Arrow."
	case n.Role == "link" || n.Role == "button" || n.Role == "tab" || n.Role == "menuitem":
		if ios {
			return "Double-tap to activate."
		}
		return fmt.Sprintf("To click this %s, press Control-Option-Space.", announce.RoleText(announce.VoiceOver, n))
	case n.Role == "checkbox" || n.Role == "switch" || n.Role == "radio":
		if ios {
			return "Double-tap to toggle setting."
		}
		return "To select or deselect this item, press Control-Option-Space."
	case editableRoles[n.Role] && !n.ReadOnly:
		if ios {
			return "Double-tap to edit."
		}
		return "You are currently on a text field. To enter text in this field, type."
	}
	return ""
}

func interactionText(n *axtree.Node) string {
	return strings.TrimSpace(announce.RoleText(announce.VoiceOver, n) + " " + n.Name)
}

// InteractWith enters the composite widget n (the current node when n is
// nil). Next and Previous stay inside it until StopInteracting.
func (vo *VoiceOver) InteractWith(n *axtree.Node) announce.Announcement {
	if n == nil {
		n = vo.Current()
	}
	if n == nil || !axtree.IsComposite(n.Role) {
		return vo.Status("Nothing to interact with")
	}
	vo.scope = n
	vo.setCurrent(n)
	vo.setMode(ModeInteraction)
	return vo.Status("Interacting with " + interactionText(n))
}

// StopInteracting leaves the widget and puts the cursor back on it.
func (vo *VoiceOver) StopInteracting() announce.Announcement {
	w := vo.scope
	if w == nil {
		return vo.Status("Not interacting")
	}
	vo.scope = nil
	vo.setCurrent(w)
	vo.setMode(ModeBrowse)
	return vo.Status("Stopped interacting with " + interactionText(w))
}

// Interacting returns the widget being interacted with, or nil.
func (vo *VoiceOver) Interacting() *axtree.Node { return vo.scope }

// OpenRotor summarises the rotor categories. The cursor does not move.
func (vo *VoiceOver) OpenRotor() ([]RotorCategory, announce.Announcement) {
	cats := []RotorCategory{
		{Name: "Headings", Count: len(vo.Headings(0))},
		{Name: "Links", Count: len(vo.Links())},
		{Name: "Form Controls", Count: len(vo.FormFields())},
		{Name: "Landmarks", Count: len(vo.Landmarks())},
		{Name: "Tables", Count: len(vo.Filter(isTable))},
	}
	parts := []string{"Rotor"}
	for _, c := range cats {
		parts = append(parts, fmt.Sprintf("%s %d", c.Name, c.Count))
	}
	return cats, vo.Status(joinNonEmpty(parts))
}
