package idgen

import (
	"strings"
	"testing"
)

func TestReportIDs(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	prev := ""
	for i := 0; i < 100; i++ {
		id := Report()
		if !strings.HasPrefix(id, "rpt_") || len(id) != 40 {
			t.Fatalf("bad report id %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate at %d: %q", i, id)
		}
		seen[id] = struct{}{}
		if id < prev {
			t.Fatalf("ids not time ordered: %q < %q", id, prev)
		}
		prev = id
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{Report(), false},
		{Session(), false},
		{UUIDv7()(), false},
		{"rpt_nope", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := Parse(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}
