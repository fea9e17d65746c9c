package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var questionClassPattern = regexp.MustCompile(`qanda[- ]?question|message-view-qanda-question|thread-topic|lia-message-view-question`)

func isQuestionContainer(s *goquery.Selection) bool {
	return questionClassPattern.MatchString(strings.ToLower(s.AttrOr("class", "")))
}

// questionID picks the thread's question: the first container carrying a
// question marker, else the first identified message.
func questionID(containers []*goquery.Selection, set *messageSet) (string, bool) {
	for _, c := range containers {
		if !isQuestionContainer(c) {
			continue
		}
		if id, ok := messageID(c); ok {
			return id, true
		}
		break
	}
	return set.first()
}
