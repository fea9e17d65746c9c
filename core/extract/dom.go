package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// signal is one source for a field. Signals are tried in order and
// the first one reporting ok wins.
type signal[T any] func(s *goquery.Selection) (T, bool)

func firstOf[T any](s *goquery.Selection, signals ...signal[T]) (T, bool) {
	for _, p := range signals {
		if v, ok := p(s); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

var digits = regexp.MustCompile(`\d+`)

// firstInt returns the first run of digits in s.
func firstInt(s string) (int, bool) {
	m := digits.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// classMatches builds a goquery filter on the raw class attribute.
func classMatches(re *regexp.Regexp) func(int, *goquery.Selection) bool {
	return func(_ int, s *goquery.Selection) bool {
		return re.MatchString(s.AttrOr("class", ""))
	}
}

// eachText calls fn for every text node below s, skipping script and
// style content. fn returns false to stop.
func eachText(s *goquery.Selection, fn func(string) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		switch n.Type {
		case html.TextNode:
			return fn(n.Data)
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "script", "style", "noscript":
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	for _, n := range s.Nodes {
		if !walk(n) {
			return
		}
	}
}

// spacedText joins all visible text below s with single spaces between
// text nodes, so adjacent cells do not run together.
func spacedText(s *goquery.Selection) string {
	var parts []string
	eachText(s, func(t string) bool {
		parts = append(parts, t)
		return true
	})
	return strings.Join(parts, " ")
}
