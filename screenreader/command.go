package screenreader

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hazyhaar/axsim/announce"
)

// ErrUnknownCommand is returned by Run for commands the simulator does not
// understand.
var ErrUnknownCommand = errors.New("screenreader: unknown command")

var stepCommands = map[string]func(ScreenReader) announce.Announcement{
	"next":           ScreenReader.Next,
	"prev":           ScreenReader.Previous,
	"next-landmark":  ScreenReader.NextLandmark,
	"prev-landmark":  ScreenReader.PreviousLandmark,
	"next-link":      ScreenReader.NextLink,
	"prev-link":      ScreenReader.PreviousLink,
	"next-formfield": ScreenReader.NextFormField,
	"prev-formfield": ScreenReader.PreviousFormField,
	"next-button":    ScreenReader.NextButton,
	"prev-button":    ScreenReader.PreviousButton,
	"next-table":     ScreenReader.NextTable,
	"prev-table":     ScreenReader.PreviousTable,
	"next-list":      ScreenReader.NextList,
	"prev-list":      ScreenReader.PreviousList,
	"tab":            ScreenReader.NextFocusable,
	"shift-tab":      ScreenReader.PreviousFocusable,
}

// Commands lists the commands every simulator accepts. Vendor commands are
// toggle-mode, read-line, read-all and elements-list[-links|-headings|
// -formfields|-buttons|-landmarks] (NVDA), forms-mode, list-headings,
// list-links and list-formfields (JAWS), interact, stop-interacting and
// rotor (VoiceOver).
func Commands() []string {
	out := make([]string, 0, len(stepCommands)+2)
	for name := range stepCommands {
		out = append(out, name)
	}
	slices.Sort(out)
	out = append(out, "next-heading[-N]", "prev-heading[-N]")
	return out
}

// Run executes one keyboard-level command and returns what was spoken.
func Run(sr ScreenReader, cmd string) ([]announce.Announcement, error) {
	cmd = strings.ToLower(strings.TrimSpace(cmd))
	if fn, ok := stepCommands[cmd]; ok {
		return []announce.Announcement{fn(sr)}, nil
	}
	if level, ok := headingCommand(cmd, "next-heading"); ok {
		return []announce.Announcement{sr.NextHeading(level)}, nil
	}
	if level, ok := headingCommand(cmd, "prev-heading"); ok {
		return []announce.Announcement{sr.PreviousHeading(level)}, nil
	}

	switch v := sr.(type) {
	case *NVDA:
		switch cmd {
		case "toggle-mode":
			return one(v.ToggleMode()), nil
		case "read-line":
			return one(v.ReadCurrentLine()), nil
		case "read-all":
			return v.ReadToEnd(), nil
		}
		if category, ok := elementsListCommand(cmd); ok {
			return one(listing(v.Simulator, elementsListTitles[category], v.elementsListItems(category))), nil
		}
	case *JAWS:
		switch cmd {
		case "forms-mode":
			return one(v.ToggleFormsMode()), nil
		case "list-headings":
			return one(listing(v.Simulator, "Headings", v.ListHeadings())), nil
		case "list-links":
			return one(listing(v.Simulator, "Links", v.ListLinks())), nil
		case "list-formfields":
			return one(listing(v.Simulator, "Form fields", v.ListFormFields())), nil
		}
	case *VoiceOver:
		switch cmd {
		case "interact":
			return one(v.InteractWith(nil)), nil
		case "stop-interacting":
			return one(v.StopInteracting()), nil
		case "rotor":
			_, a := v.OpenRotor()
			return one(a), nil
		}
	}
	return nil, fmt.Errorf("%w: %q for %s", ErrUnknownCommand, cmd, sr.Vendor())
}

// RunAll executes cmds in order and stops at the first unknown command.
func RunAll(sr ScreenReader, cmds []string) ([]announce.Announcement, error) {
	var out []announce.Announcement
	for _, c := range cmds {
		got, err := Run(sr, c)
		if err != nil {
			return out, err
		}
		out = append(out, got...)
	}
	return out, nil
}

func one(a announce.Announcement) []announce.Announcement {
	return []announce.Announcement{a}
}

func headingCommand(cmd, prefix string) (int, bool) {
	if cmd == prefix {
		return 0, true
	}
	rest, ok := strings.CutPrefix(cmd, prefix+"-")
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0, false
	}
	return level, true
}

// elementsListCommand parses elements-list[-category]. The bare command
// opens on links, as NVDA+F7 does.
func elementsListCommand(cmd string) (string, bool) {
	if cmd == "elements-list" {
		return "links", true
	}
	category, ok := strings.CutPrefix(cmd, "elements-list-")
	if !ok || elementsListTitles[category] == "" {
		return "", false
	}
	return category, true
}

// listing renders a list dialog (JAWS lists, NVDA elements list). It is
// returned, not queued, so the navigation state is untouched.
func listing(s *Simulator, title string, items []string) announce.Announcement {
	text := fmt.Sprintf("%s list, %d items", title, len(items))
	if len(items) > 0 {
		text += ": " + strings.Join(items, "; ")
	}
	return announce.Status(text, s.Vendor(), s.Browser(), s.Verbosity())
}
