package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var (
	acceptedClassPattern = regexp.MustCompile(`(?i)\blia-accepted-solution\b|\blia-solution-accepted\b|\blia-message-accepted-solution\b|\blia-list-row-thread-solved\b|\baccepted\b|\bsolution\b`)
	acceptedHintPattern  = regexp.MustCompile(`(?i)\bAccepted\s+Solution\b|\bAccepted\s+Answers?\b`)
	messageViewPattern   = regexp.MustCompile(`\bMessageView\b`)
)

// hasAcceptedMarker reports the DOM signal for acceptance: the container's
// own classes, or those of its MessageView wrapper, or an "Accepted
// Solution" label rendered inside that wrapper.
func hasAcceptedMarker(s *goquery.Selection) bool {
	if acceptedClassPattern.MatchString(s.AttrOr("class", "")) {
		return true
	}
	mv := s.Find("div").FilterFunction(classMatches(messageViewPattern)).First()
	if mv.Length() == 0 {
		return false
	}
	if acceptedClassPattern.MatchString(mv.AttrOr("class", "")) {
		return true
	}
	found := false
	eachText(mv, func(t string) bool {
		found = acceptedHintPattern.MatchString(t)
		return !found
	})
	return found
}
