// Package idgen generates identifiers for stored reports and sessions.
package idgen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 version 7 UUIDs, which sort by
// creation time.
func UUIDv7() Generator {
	return func() string { return uuid.Must(uuid.NewV7()).String() }
}

// Prefixed prepends prefix to every id of gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string { return prefix + gen() }
}

// Report ids look like "rpt_0190c1f6-...".
var Report = Prefixed("rpt_", UUIDv7())

// Session ids look like "ses_0190c1f6-...".
var Session = Prefixed("ses_", UUIDv7())

// Parse checks that id is a known prefix followed by a UUID and returns the
// UUID part.
func Parse(id string) (string, error) {
	rest := id
	for _, p := range []string{"rpt_", "ses_"} {
		if s, ok := strings.CutPrefix(id, p); ok {
			rest = s
			break
		}
	}
	u, err := uuid.Parse(rest)
	if err != nil {
		return "", fmt.Errorf("idgen: invalid id %q: %w", id, err)
	}
	return u.String(), nil
}
