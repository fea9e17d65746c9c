package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/threadpipe/core"
	"github.com/gaurav-prasanna/threadpipe/core/markdown"
	"github.com/gaurav-prasanna/threadpipe/core/normalize"
)

var (
	containerMatcher = cascadia.MustCompile(`div[id^="message-"], div[data-lia-message-uid]`)

	// acceptedWrapperMatcher matches the widgets some templates use to
	// render the accepted message a second time.
	acceptedWrapperMatcher = cascadia.MustCompile(`div.ComponentToggler.lia-component-solutions-with-toggle, ` +
		`div.lia-accepted-solution, div.lia-message-accepted-solution, ` +
		`div.lia-solution-accepted, div.lia-list-row-thread-solved`)

	commentMatcher = cascadia.MustCompile(`div[class*="comment"] div[id^="message-"], div[id^="message-"].lia-message-comment`)
)

var (
	anchorIDPattern    = regexp.MustCompile(`^M(\d+)$`)
	containerIDPattern = regexp.MustCompile(`message-(\d+)`)
	authorClassPattern = regexp.MustCompile(`lia-user-name|lia-component-author-name`)
	bodyClassPattern   = regexp.MustCompile(`lia-message-body|lia-message-body-content|lia-article-body`)
)

// message is a partially resolved post, keyed by ID.
type message struct {
	ID        string
	Author    string
	CreatedAt string
	Text      string
	Upvotes   *int
	Accepted  bool
}

// merge folds a duplicate rendering of the same post into m. Values
// already present win; acceptance is sticky.
func (m *message) merge(o message) {
	m.Accepted = m.Accepted || o.Accepted
	if m.Author == "" {
		m.Author = o.Author
	}
	if m.Text == "" {
		m.Text = o.Text
	}
	if m.CreatedAt == "" {
		m.CreatedAt = o.CreatedAt
	}
	if m.Upvotes == nil {
		m.Upvotes = o.Upvotes
	}
}

func (m *message) answer(pageURL string) core.Answer {
	return core.Answer{
		MessageID:  m.ID,
		MessageURL: pageURL + "#M" + m.ID,
		Author:     m.Author,
		CreatedAt:  m.CreatedAt,
		Text:       m.Text,
		IsAccepted: m.Accepted,
		Upvotes:    m.Upvotes,
	}
}

// messageSet deduplicates messages by ID and remembers the order in which
// IDs first appeared.
type messageSet struct {
	byID  map[string]*message
	order []string
}

func newMessageSet() *messageSet {
	return &messageSet{byID: make(map[string]*message)}
}

func (s *messageSet) add(m message) {
	if existing, ok := s.byID[m.ID]; ok {
		existing.merge(m)
		return
	}
	s.byID[m.ID] = &m
	s.order = append(s.order, m.ID)
}

// remove takes id out of the set and its order.
func (s *messageSet) remove(id string) (message, bool) {
	m, ok := s.byID[id]
	if !ok {
		return message{}, false
	}
	delete(s.byID, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return *m, true
}

func (s *messageSet) has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *messageSet) first() (string, bool) {
	if len(s.order) == 0 {
		return "", false
	}
	return s.order[0], true
}

func (s *messageSet) markAccepted(ids map[string]bool) {
	for id := range ids {
		if m, ok := s.byID[id]; ok {
			m.Accepted = true
		}
	}
}

func (s *messageSet) answers(pageURL string) []core.Answer {
	out := make([]core.Answer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].answer(pageURL))
	}
	return out
}

// candidateContainers lists every message container in document order,
// followed by the containers nested in accepted-solution widgets.
func candidateContainers(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	collect := func(_ int, s *goquery.Selection) { out = append(out, s) }
	doc.FindMatcher(containerMatcher).Each(collect)
	doc.FindMatcher(acceptedWrapperMatcher).FindMatcher(containerMatcher).Each(collect)
	return out
}

var idSignals = []signal[string]{
	anchorElementID,
	anchorHref,
	messageUID,
	containerID,
}

// messageID resolves the platform message ID of a container.
func messageID(s *goquery.Selection) (string, bool) {
	return firstOf(s, idSignals...)
}

func anchorElementID(s *goquery.Selection) (id string, ok bool) {
	s.Find("[id]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if m := anchorIDPattern.FindStringSubmatch(el.AttrOr("id", "")); m != nil {
			id, ok = m[1], true
		}
		return !ok
	})
	return id, ok
}

func anchorHref(s *goquery.Selection) (id string, ok bool) {
	s.Find("a[href]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if m := messageFragment.FindStringSubmatch(el.AttrOr("href", "")); m != nil {
			id, ok = m[1], true
		}
		return !ok
	})
	return id, ok
}

func messageUID(s *goquery.Selection) (string, bool) {
	uid := s.AttrOr("data-lia-message-uid", "")
	return uid, uid != ""
}

func containerID(s *goquery.Selection) (string, bool) {
	if m := containerIDPattern.FindStringSubmatch(s.AttrOr("id", "")); m != nil {
		return m[1], true
	}
	return "", false
}

// authorOf returns the display name of the post's author.
func authorOf(s *goquery.Selection) string {
	el := s.Find("a, span").FilterFunction(classMatches(authorClassPattern)).First()
	if el.Length() == 0 {
		return ""
	}
	return normalize.Whitespace(el.Text())
}

// bodyOf renders the post body of a container. Scripts, styles and
// noscript blocks are removed from the body before rendering.
func bodyOf(s *goquery.Selection, pageURL string) string {
	body := s.Find("div").FilterFunction(classMatches(bodyClassPattern)).First()
	if body.Length() == 0 {
		return ""
	}
	body.Find("script, style, noscript").Remove()
	return markdown.Render(markdown.FromHTML(body.Get(0)), pageURL)
}

// buildMessage resolves every field of a container with a known ID.
func buildMessage(s *goquery.Selection, id, pageURL string) message {
	return message{
		ID:        id,
		Author:    authorOf(s),
		Text:      bodyOf(s, pageURL),
		CreatedAt: timestampOf(s),
		Upvotes:   upvotesOf(s),
		Accepted:  hasAcceptedMarker(s),
	}
}
