// Package markdown renders community post bodies into a light Markdown.
//
// The conversion is deliberately conservative: links (except @mentions),
// images, list items, inline code and block boundaries survive; every other
// tag contributes only its text.
package markdown

import (
	"net/url"
	"strings"

	"github.com/gaurav-prasanna/threadpipe/core/normalize"
)

var (
	blockBreakTags = map[string]bool{"p": true, "div": true, "section": true, "article": true}
	lineBreakTags  = map[string]bool{"br": true, "hr": true, "li": true}
	inlineTags     = map[string]bool{"strong": true, "b": true, "em": true, "i": true, "u": true, "span": true}
	skippedTags    = map[string]bool{"script": true, "style": true, "noscript": true}
)

// Render converts the subtree rooted at n. Relative link and image targets
// are resolved against baseURL. An empty result means no text survived.
func Render(n Node, baseURL string) string {
	if n == nil {
		return ""
	}
	w := &writer{}
	if base, err := url.Parse(baseURL); err == nil {
		w.base = base
	}
	w.walk(n)
	return normalize.Block(w.b.String())
}

// writer accumulates output and remembers whether the last piece written
// ended a line, which drives block-break insertion.
type writer struct {
	b    strings.Builder
	base *url.URL
	any  bool
	nl   bool
}

func (w *writer) write(s string) {
	w.b.WriteString(s)
	w.any = true
	w.nl = strings.HasSuffix(s, "\n")
}

func (w *writer) children(n Node) {
	for _, c := range n.Children() {
		w.walk(c)
	}
}

func (w *writer) walk(n Node) {
	if n.IsText() {
		w.write(n.Text())
		return
	}
	name := n.Tag()
	switch {
	case skippedTags[name]:
		return

	case name == "a":
		href := strings.TrimSpace(n.Attr("href"))
		text := textOf(n, " ")
		switch {
		case strings.HasPrefix(text, "@"):
			// Mentions are not links on the platform.
			w.write(text)
		case href != "":
			w.write("[" + text + "](" + w.resolve(href) + ")")
		default:
			w.write(text)
		}

	case name == "img":
		src := strings.TrimSpace(n.Attr("src"))
		if src == "" {
			return
		}
		alt := strings.TrimSpace(n.Attr("alt"))
		if alt == "" {
			alt = strings.TrimSpace(n.Attr("title"))
		}
		w.write("![" + alt + "](" + w.resolve(src) + ")")

	case name == "ul" || name == "ol":
		for _, c := range n.Children() {
			if !c.IsText() && c.Tag() == "li" {
				w.write("\n- ")
				w.walk(c)
			}
		}
		w.write("\n")

	case name == "code" || name == "kbd":
		w.write("`" + textOf(n, "") + "`")

	case inlineTags[name]:
		w.children(n)

	case blockBreakTags[name]:
		if w.any && !w.nl {
			w.write("\n")
		}
		w.children(n)
		if !(w.any && w.nl) {
			w.write("\n")
		}

	case lineBreakTags[name]:
		w.children(n)
		w.write("\n")

	default:
		w.children(n)
	}
}

// resolve absolutizes ref against the page URL, keeping it verbatim when
// either side does not parse.
func (w *writer) resolve(ref string) string {
	if w.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return w.base.ResolveReference(u).String()
}

// textOf joins the trimmed, non-empty text nodes below n with sep.
func textOf(n Node, sep string) string {
	var parts []string
	var collect func(Node)
	collect = func(n Node) {
		if n.IsText() {
			if t := strings.TrimSpace(n.Text()); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if skippedTags[n.Tag()] {
			return
		}
		for _, c := range n.Children() {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(parts, sep)
}
