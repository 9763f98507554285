package mutation

import "testing"

func TestCompress(t *testing.T) {
	tests := []struct {
		name      string
		in        []Record
		wantLen   int
		wantValue string
		wantOld   string
	}{
		{
			name: "consecutive attr",
			in: []Record{
				{Op: OpAttr, XPath: "/div", Name: "aria-expanded", Value: "true", OldValue: "orig"},
				{Op: OpAttr, XPath: "/div", Name: "aria-expanded", Value: "false", OldValue: "true"},
				{Op: OpAttr, XPath: "/div", Name: "aria-expanded", Value: "true", OldValue: "false"},
			},
			wantLen: 1, wantValue: "true", wantOld: "orig",
		},
		{
			name: "consecutive text",
			in: []Record{
				{Op: OpText, XPath: "/p/text()", Value: "a", OldValue: "orig"},
				{Op: OpText, XPath: "/p/text()", Value: "final", OldValue: "a"},
			},
			wantLen: 1, wantValue: "final", wantOld: "orig",
		},
		{
			name: "different attribute names kept",
			in: []Record{
				{Op: OpAttr, XPath: "/div", Name: "role", Value: "tab"},
				{Op: OpAttr, XPath: "/div", Name: "aria-selected", Value: "true"},
			},
			wantLen: 2, wantValue: "tab",
		},
		{
			name: "inserts never folded",
			in: []Record{
				{Op: OpInsert, XPath: "/ul/li[1]"},
				{Op: OpInsert, XPath: "/ul/li[1]"},
				{Op: OpInsert, XPath: "/ul/li[1]"},
			},
			wantLen: 3,
		},
		{
			name: "interrupted run",
			in: []Record{
				{Op: OpText, XPath: "/p/text()", Value: "a"},
				{Op: OpRemove, XPath: "/span"},
				{Op: OpText, XPath: "/p/text()", Value: "b"},
			},
			wantLen: 3, wantValue: "a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compress(tt.in)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", got[0].Value, tt.wantValue)
			}
			if got[0].OldValue != tt.wantOld {
				t.Errorf("OldValue = %q, want %q", got[0].OldValue, tt.wantOld)
			}
		})
	}
}

func TestAffects(t *testing.T) {
	tests := []struct {
		rec  Record
		want bool
	}{
		{Record{Op: OpInsert}, true},
		{Record{Op: OpText}, true},
		{Record{Op: OpAttr, Name: "aria-hidden"}, true},
		{Record{Op: OpAttr, Name: "class"}, true},
		{Record{Op: OpAttr, Name: "data-rect"}, true},
		{Record{Op: OpAttr, Name: "data-track"}, false},
		{Record{Op: OpAttrDel, Name: "onclick"}, false},
	}
	for _, tt := range tests {
		if got := tt.rec.Affects(); got != tt.want {
			t.Errorf("%+v Affects = %v, want %v", tt.rec, got, tt.want)
		}
	}

	b := Batch{Records: []Record{{Op: OpAttr, Name: "data-x"}}}
	if b.Affects() {
		t.Error("inert batch reported as affecting the tree")
	}
	b.Records = append(b.Records, Record{Op: OpText})
	if !b.Affects() {
		t.Error("text batch reported as inert")
	}
}

func TestLiveKeys(t *testing.T) {
	b := Batch{Records: []Record{
		{Op: OpText, Key: 4, Live: "polite"},
		{Op: OpText, Key: 9},
		{Op: OpInsert, Key: 7, Live: "assertive"},
		{Op: OpText, Key: 4, Live: "polite"},
	}}
	got := b.LiveKeys()
	if len(got) != 2 || got[0] != 4 || got[1] != 7 {
		t.Errorf("LiveKeys = %v, want [4 7]", got)
	}
}
