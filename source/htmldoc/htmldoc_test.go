package htmldoc

import (
	"strings"
	"testing"

	"github.com/hazyhaar/axsim/source"
)

func mustParse(t *testing.T, s string, opts ...Option) *Document {
	t.Helper()
	d, err := ParseString(s, opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func byID(t *testing.T, d *Document, id string) source.Element {
	t.Helper()
	el := d.ResolveID(id)
	if el == nil {
		t.Fatalf("no element with id %q", id)
	}
	return el
}

func TestRootIsBody(t *testing.T) {
	d := mustParse(t, `<html><head><title> My  page </title></head><body><p>hi</p></body></html>`)
	if got := d.Root().Tag(); got != "body" {
		t.Errorf("root tag = %q, want body", got)
	}
	if d.Title() != "My page" {
		t.Errorf("title = %q", d.Title())
	}
}

func TestKeysStableAndPreOrder(t *testing.T) {
	d := mustParse(t, `<div id="a"><span id="b"></span></div><p id="c"></p>`)
	a, b, c := byID(t, d, "a"), byID(t, d, "b"), byID(t, d, "c")
	if !(a.Key() < b.Key() && b.Key() < c.Key()) {
		t.Errorf("keys not pre-order: %d %d %d", a.Key(), b.Key(), c.Key())
	}
	if d.ResolveID("a").Key() != a.Key() {
		t.Error("repeated lookup changed key")
	}
	if b.Parent().Key() != a.Key() {
		t.Error("parent mismatch")
	}
}

func TestDuplicateIDResolvesFirst(t *testing.T) {
	d := mustParse(t, `<p id="x">one</p><p id="x">two</p>`)
	if got := byID(t, d, "x").Text(); got != "one" {
		t.Errorf("got %q, want first element", got)
	}
	if d.ResolveID("missing") != nil {
		t.Error("missing id should resolve to nil")
	}
}

func TestTextSkipsHiddenAndScripts(t *testing.T) {
	d := mustParse(t, `<div id="d">Hello <script>var x;</script><span style="display:none">secret</span>
		<b>world</b><p>para</p></div>`)
	if got := byID(t, d, "d").Text(); got != "Hello world para" {
		t.Errorf("text = %q", got)
	}
}

func TestHiddenSignals(t *testing.T) {
	d := mustParse(t, `
		<div id="h1" hidden>a</div>
		<div id="h2" style="visibility: hidden">b</div>
		<div id="h3" style="color:red; display : none">c</div>
		<input id="h4" type="hidden">
		<div id="v1" style="display:block">d</div>
		<div id="v2" aria-hidden="true">e</div>`)
	for _, id := range []string{"h1", "h2", "h3", "h4"} {
		if !byID(t, d, id).Native().Hidden {
			t.Errorf("%s should be hidden", id)
		}
	}
	for _, id := range []string{"v1", "v2"} {
		if byID(t, d, id).Native().Hidden {
			t.Errorf("%s should not be natively hidden", id)
		}
	}
}

func TestBounds(t *testing.T) {
	d := mustParse(t, `
		<div id="s" style="position:absolute; left:10px; top: 20px; width:100px; height:30px"></div>
		<div id="r" data-rect="1, 2, 3, 4"></div>
		<div id="none" style="width:10px"></div>`)

	r, ok := byID(t, d, "s").Bounds()
	if !ok || r != (source.Rect{X: 10, Y: 20, Width: 100, Height: 30}) {
		t.Errorf("style bounds = %+v %v", r, ok)
	}
	r, ok = byID(t, d, "r").Bounds()
	if !ok || r != (source.Rect{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Errorf("data-rect bounds = %+v %v", r, ok)
	}
	if _, ok := byID(t, d, "none").Bounds(); ok {
		t.Error("width alone should not produce bounds")
	}
}

func TestNativeFormState(t *testing.T) {
	d := mustParse(t, `
		<input id="cb" type="checkbox" checked required>
		<input id="txt" value="abc" placeholder="Type" readonly>
		<fieldset disabled><button id="btn">Go</button></fieldset>
		<select id="sel"><option>A</option><option selected>B</option></select>
		<textarea id="ta">notes</textarea>
		<a id="link" href="/x">x</a><a id="anchor">y</a>`)

	cb := byID(t, d, "cb").Native()
	if cb.InputType != "checkbox" || !cb.Checked || !cb.Required || !cb.Focusable {
		t.Errorf("checkbox native = %+v", cb)
	}
	txt := byID(t, d, "txt").Native()
	if txt.InputType != "text" || txt.Value != "abc" || txt.Placeholder != "Type" || !txt.ReadOnly {
		t.Errorf("text native = %+v", txt)
	}
	btn := byID(t, d, "btn").Native()
	if !btn.Disabled || btn.Focusable {
		t.Errorf("button in disabled fieldset = %+v", btn)
	}
	if v := byID(t, d, "sel").Native().Value; v != "B" {
		t.Errorf("select value = %q", v)
	}
	if v := byID(t, d, "ta").Native().Value; v != "notes" {
		t.Errorf("textarea value = %q", v)
	}
	if !byID(t, d, "link").Native().Focusable {
		t.Error("a[href] should be focusable")
	}
	if byID(t, d, "anchor").Native().Focusable {
		t.Error("a without href should not be focusable")
	}
}

func TestLabelsFor(t *testing.T) {
	d := mustParse(t, `
		<label for="email">Email</label>
		<input id="email">
		<label>Name <input id="name"></label>
		<label for="other">Wrapped but pointing elsewhere <input id="inner"></label>
		<div id="plain"></div>`)

	labels := func(id string) []string {
		var out []string
		for _, l := range d.LabelsFor(byID(t, d, id)) {
			out = append(out, l.Text())
		}
		return out
	}

	if got := labels("email"); len(got) != 1 || got[0] != "Email" {
		t.Errorf("email labels = %v", got)
	}
	if got := labels("name"); len(got) != 1 || !strings.HasPrefix(got[0], "Name") {
		t.Errorf("name labels = %v", got)
	}
	if got := labels("inner"); len(got) != 0 {
		t.Errorf("inner labels = %v, want none", got)
	}
	if got := labels("plain"); got != nil {
		t.Errorf("div is not labelable, got %v", got)
	}
}

func TestSanitizeKeepsStructure(t *testing.T) {
	d := mustParse(t, `<main id="m" aria-label="Content" onclick="evil()">
		<script>alert(1)</script>
		<button id="b" aria-pressed="true" style="display:none">Go</button></main>`, WithSanitize())

	m := byID(t, d, "m")
	if source.AttrValue(m, "aria-label") != "Content" {
		t.Error("aria-label dropped")
	}
	if source.HasAttr(m, "onclick") {
		t.Error("event handler kept")
	}
	if strings.Contains(m.Text(), "alert") {
		t.Error("script content kept")
	}
	b := byID(t, d, "b")
	if source.AttrValue(b, "aria-pressed") != "true" {
		t.Error("aria-pressed dropped")
	}
	if !b.Native().Hidden {
		t.Error("display:none style dropped by sanitizer")
	}
}
