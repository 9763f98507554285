package screenreader

import (
	"fmt"

	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/axtree"
)

func isHeading(level int) func(*axtree.Node) bool {
	return func(n *axtree.Node) bool {
		return n.Role == "heading" && (level <= 0 || n.Level == level)
	}
}

func headingType(level int) string {
	if level > 0 {
		return fmt.Sprintf("level %d heading", level)
	}
	return "heading"
}

func isLandmark(n *axtree.Node) bool  { return axtree.IsLandmark(n.Role) }
func isLink(n *axtree.Node) bool      { return n.Role == "link" }
func isButton(n *axtree.Node) bool    { return n.Role == "button" }
func isFormField(n *axtree.Node) bool { return axtree.IsFormField(n.Role) }

func isTable(n *axtree.Node) bool {
	return n.Role == "table" || n.Role == "grid" || n.Role == "treegrid"
}

func isList(n *axtree.Node) bool {
	return n.Role == "list" || n.Role == "listbox"
}

// Headings returns the headings of the tree, optionally only one level.
func (s *Simulator) Headings(level int) []*axtree.Node { return s.Filter(isHeading(level)) }

// Links returns the links of the tree.
func (s *Simulator) Links() []*axtree.Node { return s.Filter(isLink) }

// FormFields returns the form controls of the tree.
func (s *Simulator) FormFields() []*axtree.Node { return s.Filter(isFormField) }

// Landmarks returns the landmark regions of the tree.
func (s *Simulator) Landmarks() []*axtree.Node { return s.Filter(isLandmark) }

// NextHeading jumps to the next heading; level 0 matches any level.
func (s *Simulator) NextHeading(level int) announce.Announcement {
	return s.NavigateInList(s.Headings(level), headingType(level), announce.NavHeading)
}

// PreviousHeading jumps to the previous heading.
func (s *Simulator) PreviousHeading(level int) announce.Announcement {
	return s.NavigateInListBackward(s.Headings(level), headingType(level), announce.NavHeading)
}

// NextLandmark jumps to the next landmark.
func (s *Simulator) NextLandmark() announce.Announcement {
	return s.NavigateInList(s.Landmarks(), "landmark", announce.NavLandmark)
}

// PreviousLandmark jumps to the previous landmark.
func (s *Simulator) PreviousLandmark() announce.Announcement {
	return s.NavigateInListBackward(s.Landmarks(), "landmark", announce.NavLandmark)
}

// NextLink jumps to the next link.
func (s *Simulator) NextLink() announce.Announcement {
	return s.NavigateInList(s.Links(), "link", announce.NavLink)
}

// PreviousLink jumps to the previous link.
func (s *Simulator) PreviousLink() announce.Announcement {
	return s.NavigateInListBackward(s.Links(), "link", announce.NavLink)
}

// NextFormField jumps to the next form control.
func (s *Simulator) NextFormField() announce.Announcement {
	return s.NavigateInList(s.FormFields(), "form field", announce.NavFormField)
}

// PreviousFormField jumps to the previous form control.
func (s *Simulator) PreviousFormField() announce.Announcement {
	return s.NavigateInListBackward(s.FormFields(), "form field", announce.NavFormField)
}

// NextButton jumps to the next button.
func (s *Simulator) NextButton() announce.Announcement {
	return s.NavigateInList(s.Filter(isButton), "button", announce.NavButton)
}

// PreviousButton jumps to the previous button.
func (s *Simulator) PreviousButton() announce.Announcement {
	return s.NavigateInListBackward(s.Filter(isButton), "button", announce.NavButton)
}

// NextTable jumps to the next table.
func (s *Simulator) NextTable() announce.Announcement {
	return s.NavigateInList(s.Filter(isTable), "table", announce.NavTable)
}

// PreviousTable jumps to the previous table.
func (s *Simulator) PreviousTable() announce.Announcement {
	return s.NavigateInListBackward(s.Filter(isTable), "table", announce.NavTable)
}

// NextList jumps to the next list.
func (s *Simulator) NextList() announce.Announcement {
	return s.NavigateInList(s.Filter(isList), "list", announce.NavList)
}

// PreviousList jumps to the previous list.
func (s *Simulator) PreviousList() announce.Announcement {
	return s.NavigateInListBackward(s.Filter(isList), "list", announce.NavList)
}

// NextFocusable moves along the tab sequence, like pressing Tab.
func (s *Simulator) NextFocusable() announce.Announcement {
	return s.NavigateInList(s.tabSequence(), "focusable element", announce.NavFocus)
}

// PreviousFocusable moves back along the tab sequence, like Shift+Tab.
func (s *Simulator) PreviousFocusable() announce.Announcement {
	return s.NavigateInListBackward(s.tabSequence(), "focusable element", announce.NavFocus)
}

func (s *Simulator) tabSequence() []*axtree.Node {
	if s.tree == nil {
		return nil
	}
	return s.tree.FocusableNodes(s.tree.Root())
}
