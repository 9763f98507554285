package axtree

import (
	"encoding/json"
	"strings"
)

// TriState is an ARIA true/false/mixed value that may also be absent.
type TriState uint8

const (
	Unset TriState = iota
	False
	True
	Mixed
)

// ParseTriState reads an ARIA token. Anything other than true, false or
// mixed is Unset, including "undefined".
func ParseTriState(v string) TriState {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return True
	case "false":
		return False
	case "mixed":
		return Mixed
	}
	return Unset
}

func (s TriState) String() string {
	switch s {
	case True:
		return "true"
	case False:
		return "false"
	case Mixed:
		return "mixed"
	}
	return ""
}

// IsSet reports whether the attribute carried a recognised value.
func (s TriState) IsSet() bool { return s != Unset }

// MarshalJSON encodes Unset as null, True/False as booleans and Mixed as
// the string "mixed".
func (s TriState) MarshalJSON() ([]byte, error) {
	switch s {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	case Mixed:
		return []byte(`"mixed"`), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (s *TriState) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		if x {
			*s = True
		} else {
			*s = False
		}
	case string:
		*s = ParseTriState(x)
	default:
		*s = Unset
	}
	return nil
}
