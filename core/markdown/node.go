package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// Node is the read-only view of a document tree the renderer needs.
// Text nodes report IsText; element nodes expose a lower-case tag name,
// attributes and ordered children.
type Node interface {
	IsText() bool
	Text() string
	Tag() string
	Attr(name string) string
	Children() []Node
}

// FromHTML wraps a parsed x/net/html node.
func FromHTML(n *html.Node) Node {
	return htmlNode{n: n}
}

type htmlNode struct {
	n *html.Node
}

func (h htmlNode) IsText() bool { return h.n.Type == html.TextNode }

func (h htmlNode) Text() string {
	if h.n.Type != html.TextNode {
		return ""
	}
	return h.n.Data
}

func (h htmlNode) Tag() string {
	if h.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.n.Data)
}

func (h htmlNode) Attr(name string) string {
	for _, a := range h.n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// Children skips comments and doctypes; they never carry visible text.
func (h htmlNode) Children() []Node {
	var out []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode, html.ElementNode, html.DocumentNode:
			out = append(out, htmlNode{n: c})
		}
	}
	return out
}
