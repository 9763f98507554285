package htmldoc

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/axsim/source"
)

// hiddenStylePatterns match inline styles that remove an element from
// rendering and therefore from the accessibility tree.
var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|;)\s*display\s*:\s*none`),
	regexp.MustCompile(`(?i)(^|;)\s*visibility\s*:\s*(hidden|collapse)`),
}

var stylePxRe = regexp.MustCompile(`(?i)(^|;)\s*(left|top|width|height)\s*:\s*(-?[0-9.]+)\s*(px)?\s*(;|$)`)

func hasHiddenStyle(n *html.Node) bool {
	style := getAttr(n, "style")
	if style == "" {
		return false
	}
	for _, pat := range hiddenStylePatterns {
		if pat.MatchString(style) {
			return true
		}
	}
	return false
}

// isHidden reports whether n itself is not rendered. Ancestors are not
// consulted.
func isHidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Head, atom.Noscript,
		atom.Title, atom.Meta, atom.Link, atom.Base:
		return true
	case atom.Input:
		if inputType(n) == "hidden" {
			return true
		}
	}
	if hasAttr(n, "hidden") {
		return true
	}
	return hasHiddenStyle(n)
}

// blockAtoms break text runs so that "<p>a</p><p>b</p>" reads "a b".
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Main: true, atom.Aside: true,
	atom.Ul: true, atom.Ol: true, atom.Dt: true, atom.Dd: true, atom.Blockquote: true,
	atom.Figcaption: true, atom.Legend: true, atom.Caption: true, atom.Option: true,
}

// collectText gathers visible text under n with whitespace collapsed.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node, bool)
	walk = func(c *html.Node, top bool) {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			return
		case html.ElementNode:
			if !top && isHidden(c) {
				return
			}
			switch c.DataAtom {
			case atom.Script, atom.Style, atom.Template, atom.Noscript:
				return
			}
		}
		block := c.Type == html.ElementNode && blockAtoms[c.DataAtom]
		if block {
			sb.WriteByte(' ')
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch, false)
		}
		if block {
			sb.WriteByte(' ')
		}
	}
	walk(n, true)
	return source.CollapseSpace(sb.String())
}

// rawText returns the concatenated text children of n, untrimmed.
func rawText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// parseBounds reads data-rect first, then inline px offsets. A box needs at
// least a left and top offset.
func parseBounds(n *html.Node) (source.Rect, bool) {
	if v := getAttr(n, "data-rect"); v != "" {
		parts := strings.Split(v, ",")
		if len(parts) == 4 {
			var f [4]float64
			ok := true
			for i, p := range parts {
				x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					ok = false
					break
				}
				f[i] = x
			}
			if ok {
				return source.Rect{X: f[0], Y: f[1], Width: f[2], Height: f[3]}, true
			}
		}
	}

	style := getAttr(n, "style")
	if style == "" {
		return source.Rect{}, false
	}
	var r source.Rect
	var hasLeft, hasTop bool
	for _, decl := range strings.Split(style, ";") {
		m := stylePxRe.FindStringSubmatch(decl + ";")
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "left":
			r.X, hasLeft = v, true
		case "top":
			r.Y, hasTop = v, true
		case "width":
			r.Width = v
		case "height":
			r.Height = v
		}
	}
	if !hasLeft || !hasTop {
		return source.Rect{}, false
	}
	return r, true
}
