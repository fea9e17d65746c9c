package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/threadpipe/core/normalize"
)

// isoPattern finds an ISO-8601 date-time anywhere in a string.
var isoPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+\-]\d{2}:\d{2})?`)

// textDatePattern matches the "2023 May 10 2:22 PM" style rendered by some
// templates directly in visible text.
var textDatePattern = regexp.MustCompile(`\b(\d{4}\s+[A-Za-z]{3}\s+\d{1,2}\s+\d{1,2}:\d{2}\s*(?i:AM|PM)?)\b`)

// meridiemPattern finds a trailing am/pm marker in any case.
var meridiemPattern = regexp.MustCompile(`(?i)\b[ap]m$`)

// humanLayouts are tried in order; the date-only layout yields midnight.
var humanLayouts = []string{
	"2006 Jan 2 3:04 PM",
	"2006 Jan 2 15:04",
	"Jan 2 2006 3:04 PM",
	"Jan 2 2006 15:04",
	"2006 Jan 2",
}

const isoSeconds = "2006-01-02T15:04:05"

// dateAttrMatcher finds elements whose attributes look date-bearing.
var dateAttrMatcher = cascadia.MustCompile(`[itemprop*="date"], [property*="date"], [data-lia-message-time], [data-lia-message-timestamp]`)

var dateAttrs = []string{"datetime", "content", "data-lia-message-time", "data-lia-message-timestamp", "title"}

// timestampSignals is the priority order for a message's creation time.
var timestampSignals = []signal[string]{
	timeElement,
	friendlyDate,
	localDateTime,
	dateAttributes,
	attributeScan,
	textScan,
}

// timestampOf resolves the creation time of a message container.
func timestampOf(s *goquery.Selection) string {
	v, _ := firstOf(s, timestampSignals...)
	return v
}

// parseHuman parses the platform's human-readable date formats and renders
// them as a zone-less ISO timestamp.
func parseHuman(s string) (string, bool) {
	s = normalize.Whitespace(s)
	if s == "" {
		return "", false
	}
	s = meridiemPattern.ReplaceAllStringFunc(s, strings.ToUpper)
	for _, layout := range humanLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoSeconds), true
		}
	}
	return "", false
}

// isoOrHuman prefers an embedded ISO value, kept verbatim, over the
// human-readable layouts.
func isoOrHuman(s string) (string, bool) {
	s = normalize.Whitespace(s)
	if s == "" {
		return "", false
	}
	if m := isoPattern.FindString(s); m != "" {
		return m, true
	}
	return parseHuman(s)
}

func timeElement(s *goquery.Selection) (string, bool) {
	t := s.Find("time").First()
	if t.Length() == 0 {
		return "", false
	}
	val := t.AttrOr("datetime", "")
	if val == "" {
		val = t.AttrOr("title", "")
	}
	return isoOrHuman(val)
}

func friendlyDate(s *goquery.Selection) (string, bool) {
	el := s.Find(".lia-message-post-date .DateTime .local-friendly-date[title]").First()
	if el.Length() == 0 {
		return "", false
	}
	return parseHuman(el.AttrOr("title", ""))
}

func localDateTime(s *goquery.Selection) (string, bool) {
	wrap := s.Find(".lia-message-post-date .DateTime").First()
	if wrap.Length() == 0 {
		return "", false
	}
	ld := wrap.Find("span.local-date").First()
	lt := wrap.Find("span.local-time").First()
	if ld.Length() == 0 || lt.Length() == 0 {
		return "", false
	}
	return parseHuman(normalize.Whitespace(ld.Text()) + " " + normalize.Whitespace(lt.Text()))
}

func dateAttributes(s *goquery.Selection) (v string, ok bool) {
	s.FindMatcher(dateAttrMatcher).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		for _, attr := range dateAttrs {
			if v, ok = isoOrHuman(el.AttrOr(attr, "")); ok {
				return false
			}
		}
		return true
	})
	return v, ok
}

func attributeScan(s *goquery.Selection) (v string, ok bool) {
	for _, n := range s.Find("*").Nodes {
		for _, a := range n.Attr {
			// Multi-valued attributes never hold dates.
			if a.Key == "class" || a.Key == "rel" {
				continue
			}
			if m := isoPattern.FindString(normalize.Whitespace(a.Val)); m != "" {
				return m, true
			}
		}
	}
	return "", false
}

func textScan(s *goquery.Selection) (string, bool) {
	text := normalize.Whitespace(spacedText(s))
	if m := isoPattern.FindString(text); m != "" {
		return m, true
	}
	if m := textDatePattern.FindStringSubmatch(text); m != nil {
		return parseHuman(m[1])
	}
	return "", false
}
