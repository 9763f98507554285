package screenreader

import (
	"errors"
	"fmt"

	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/axtree"
)

// ErrUnsupportedVendor is returned by New for vendors that only have an
// announcement vocabulary.
var ErrUnsupportedVendor = errors.New("screenreader: unsupported vendor")

// ScreenReader is the surface shared by every vendor simulator.
type ScreenReader interface {
	Vendor() announce.Vendor
	Tree() *axtree.Tree
	SetTree(t *axtree.Tree)
	State() State
	Current() *axtree.Node
	Mode() Mode
	SetVerbosity(v announce.Verbosity)
	ClearQueue()
	NavigateTo(n *axtree.Node, kind announce.NavKind) announce.Announcement

	Next() announce.Announcement
	Previous() announce.Announcement
	NextHeading(level int) announce.Announcement
	PreviousHeading(level int) announce.Announcement
	NextLandmark() announce.Announcement
	PreviousLandmark() announce.Announcement
	NextLink() announce.Announcement
	PreviousLink() announce.Announcement
	NextFormField() announce.Announcement
	PreviousFormField() announce.Announcement
	NextButton() announce.Announcement
	PreviousButton() announce.Announcement
	NextTable() announce.Announcement
	PreviousTable() announce.Announcement
	NextList() announce.Announcement
	PreviousList() announce.Announcement
	NextFocusable() announce.Announcement
	PreviousFocusable() announce.Announcement
	ReadAll() []announce.Announcement
}

var (
	_ ScreenReader = (*NVDA)(nil)
	_ ScreenReader = (*JAWS)(nil)
	_ ScreenReader = (*VoiceOver)(nil)
)

// New returns the simulator for vendor.
func New(vendor announce.Vendor, opts ...Option) (ScreenReader, error) {
	switch vendor {
	case announce.NVDA:
		return NewNVDA(opts...), nil
	case announce.JAWS:
		return NewJAWS(opts...), nil
	case announce.VoiceOver:
		return NewVoiceOver(opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedVendor, vendor)
}
