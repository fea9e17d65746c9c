package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	voteLabelPattern = regexp.MustCompile(`(?i)kudo|like|vote`)
	voteClassPattern = regexp.MustCompile(`(?i)kudo|likes?|vote|rating|count`)
)

var upvoteSignals = []signal[int]{
	voteAriaLabel,
	voteClass,
	kudosElement,
}

// upvotesOf returns the message's kudos count, nil when no widget is found.
func upvotesOf(s *goquery.Selection) *int {
	if n, ok := firstOf(s, upvoteSignals...); ok {
		return &n
	}
	return nil
}

func voteAriaLabel(s *goquery.Selection) (n int, ok bool) {
	s.Find("[aria-label]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		label := el.AttrOr("aria-label", "")
		if !voteLabelPattern.MatchString(label) {
			return true
		}
		n, ok = firstInt(label)
		return !ok
	})
	return n, ok
}

func voteClass(s *goquery.Selection) (n int, ok bool) {
	s.Find("[class]").FilterFunction(classMatches(voteClassPattern)).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if n, ok = firstInt(strings.TrimSpace(spacedText(el))); ok {
			return false
		}
		for _, a := range el.Nodes[0].Attr {
			if !strings.HasPrefix(a.Key, "data-") {
				continue
			}
			if n, ok = firstInt(a.Val); ok {
				return false
			}
		}
		return true
	})
	return n, ok
}

func kudosElement(s *goquery.Selection) (int, bool) {
	el := s.Find(`[id*="kudos"], [class*="kudos"]`).First()
	if el.Length() == 0 {
		return 0, false
	}
	return firstInt(spacedText(el))
}
