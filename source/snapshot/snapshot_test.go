package snapshot

import (
	"errors"
	"strings"
	"testing"
)

const sample = `{
  "url": "https://example.test/",
  "title": "Example",
  "root": {
    "key": 1, "tag": "BODY",
    "children": [
      {"key": 2, "tag": "label", "attrs": {"for": "q"}, "text": "Search"},
      {"key": 3, "tag": "input", "attrs": {"id": "q"}, "native": {"focusable": true, "input_type": "search"},
       "box": {"x": 10, "y": 20, "width": 200, "height": 24}},
      {"tag": "div", "attrs": {"id": "wrap"}, "children": [
        {"tag": "span", "text": "one"},
        {"tag": "span", "text": "two", "native": {"hidden": true}},
        {"tag": "span", "text": "three"}
      ]},
      {"key": 9, "tag": "button", "labels": [2]}
    ]
  }
}`

func TestDecode(t *testing.T) {
	d, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Capture().Title != "Example" {
		t.Errorf("title = %q", d.Capture().Title)
	}
	if got := d.Root().Tag(); got != "body" {
		t.Errorf("root tag = %q", got)
	}

	q := d.ResolveID("q")
	if q == nil {
		t.Fatal("q not found")
	}
	if n := q.Native(); !n.Focusable || n.InputType != "search" {
		t.Errorf("native = %+v", n)
	}
	if r, ok := q.Bounds(); !ok || r.Width != 200 {
		t.Errorf("bounds = %+v %v", r, ok)
	}

	labels := d.LabelsFor(q)
	if len(labels) != 1 || labels[0].Text() != "Search" {
		t.Errorf("labels = %v", labels)
	}
}

func TestImplicitKeysAfterExplicit(t *testing.T) {
	d, err := Unmarshal([]byte(sample))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	wrap := d.ResolveID("wrap")
	if wrap.Key() <= 9 {
		t.Errorf("implicit key %d collides with explicit range", wrap.Key())
	}
	if d.Element(wrap.Key()) == nil {
		t.Error("lookup by implicit key failed")
	}
	if got := wrap.Text(); got != "one three" {
		t.Errorf("text = %q, hidden child should be skipped", got)
	}
}

func TestExplicitLabelKeys(t *testing.T) {
	d, err := Unmarshal([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	btn := d.Element(9)
	labels := d.LabelsFor(btn)
	if len(labels) != 1 || labels[0].Key() != 2 {
		t.Errorf("labels = %v", labels)
	}
}

func TestDuplicateKey(t *testing.T) {
	_, err := Unmarshal([]byte(`{"root":{"key":1,"tag":"body","children":[{"key":1,"tag":"p"}]}}`))
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestEmpty(t *testing.T) {
	if _, err := Unmarshal([]byte(`{}`)); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}
