package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

// container returns the first element of body.
func container(t *testing.T, body string) *goquery.Selection {
	t.Helper()
	s := parse(t, body).Find("body").Children().First()
	require.Equal(t, 1, s.Length())
	return s
}

func intPtr(n int) *int { return &n }

func TestMessageMerge(t *testing.T) {
	base := message{ID: "55", Accepted: true}
	base.merge(message{ID: "55", Author: "Jane", Text: "Use config Y.", CreatedAt: "2023-05-10T14:22:00Z", Upvotes: intPtr(3)})

	assert.Equal(t, message{
		ID:        "55",
		Author:    "Jane",
		Text:      "Use config Y.",
		CreatedAt: "2023-05-10T14:22:00Z",
		Upvotes:   intPtr(3),
		Accepted:  true,
	}, base)

	// Present values win and acceptance never resets.
	base.merge(message{ID: "55", Author: "Other", Text: "later", Upvotes: intPtr(9), Accepted: false})
	assert.Equal(t, "Jane", base.Author)
	assert.Equal(t, "Use config Y.", base.Text)
	assert.Equal(t, 3, *base.Upvotes)
	assert.True(t, base.Accepted)
}

func TestMessageSet(t *testing.T) {
	set := newMessageSet()
	set.add(message{ID: "1", Text: "q"})
	set.add(message{ID: "2"})
	set.add(message{ID: "3", Text: "c"})
	set.add(message{ID: "2", Text: "b", Accepted: true})

	assert.Equal(t, []string{"1", "2", "3"}, set.order)
	assert.True(t, set.has("2"))

	q, ok := set.remove("1")
	require.True(t, ok)
	assert.Equal(t, "q", q.Text)
	_, ok = set.remove("1")
	assert.False(t, ok)
	assert.False(t, set.has("1"))

	set.markAccepted(map[string]bool{"3": true, "1": true, "404": true})

	answers := set.answers("https://x/t")
	require.Len(t, answers, 2)
	assert.Equal(t, "2", answers[0].MessageID)
	assert.Equal(t, "b", answers[0].Text)
	assert.True(t, answers[0].IsAccepted)
	assert.Equal(t, "https://x/t#M3", answers[1].MessageURL)
	assert.True(t, answers[1].IsAccepted)
}

func TestMessageID(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{"inner anchor id", `<div id="message-1" data-lia-message-uid="2"><a id="M3"></a><a href="/t#M4">x</a></div>`, "3", true},
		{"anchor href", `<div id="message-1" data-lia-message-uid="2"><a href="/t5/x/m-p/9#M4">x</a></div>`, "4", true},
		{"uid attribute", `<div id="message-1" data-lia-message-uid="2"></div>`, "2", true},
		{"container id", `<div id="message-17" class="lia-message"></div>`, "17", true},
		{"inner id must be exact", `<div id="x"><span id="M3a"></span></div>`, "", false},
		{"nothing", `<div class="lia-message"></div>`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := messageID(container(t, tt.html))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCandidateContainers_IncludesWrappedMessages(t *testing.T) {
	doc := parse(t, `<div id="message-1"></div>
<div class="lia-message-accepted-solution"><div data-lia-message-uid="2"></div></div>`)

	containers := candidateContainers(doc)

	require.Len(t, containers, 3)
	id, _ := messageID(containers[2])
	assert.Equal(t, "2", id)
}

func TestAuthorOf(t *testing.T) {
	s := container(t, `<div><span class="lia-component-author-name"> Jane&nbsp;Doe </span><a class="lia-user-name-link">Other</a></div>`)
	assert.Equal(t, "Jane Doe", authorOf(s))
	assert.Equal(t, "", authorOf(container(t, `<div><span>anon</span></div>`)))
}

func TestBodyOf_RemovesScripts(t *testing.T) {
	s := container(t, `<div><div class="lia-message-body-content"><p>Text</p><script>track()</script></div></div>`)
	assert.Equal(t, "Text", bodyOf(s, "https://x/t"))
	assert.Equal(t, 0, s.Find("script").Length())
	assert.Equal(t, "", bodyOf(container(t, `<div><p>no body</p></div>`), "https://x/t"))
}

func TestHasAcceptedMarker(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"own class", `<div class="lia-message lia-solution-accepted"></div>`, true},
		{"bare accepted class", `<div class="message accepted"></div>`, true},
		{"message view class", `<div><div class="MessageView lia-accepted-solution"></div></div>`, true},
		{"message view hint text", `<div><div class="MessageView"><p><span>Accepted   answers</span></p></div></div>`, true},
		{"hint outside message view", `<div><p>Accepted Solution</p></div>`, false},
		{"solutions widget is not a solution", `<div class="lia-component-solutions-with-toggle"></div>`, false},
		{"plain", `<div class="lia-message"><div class="MessageView"><p>Thanks</p></div></div>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasAcceptedMarker(container(t, tt.html)))
		})
	}
}

func TestIsQuestionContainer(t *testing.T) {
	assert.True(t, isQuestionContainer(container(t, `<div class="lia-message-view-QANDA-question"></div>`)))
	assert.True(t, isQuestionContainer(container(t, `<div class="lia-thread-topic"></div>`)))
	assert.True(t, isQuestionContainer(container(t, `<div class="qanda question"></div>`)))
	assert.False(t, isQuestionContainer(container(t, `<div class="lia-message-view-answer"></div>`)))
}

func TestBoardFromURL(t *testing.T) {
	assert.Equal(t, "hcm-questions", boardFromURL("https://community.example.com/t5/human-capital-management-q-a/x/qaq-p/1"))
	assert.Equal(t, "", boardFromURL("https://community.example.com/t5/enterprise-resource-planning-q-a/x/qaq-p/1"))
	assert.Equal(t, "", boardFromURL("https://community.example.com/t5"))
	assert.Equal(t, "hcm-questions", boardFromURL("https://community.example.com/t5/human-capital-management-q-a/100%zz/qaq-p/1"))
}

func TestURLPath(t *testing.T) {
	assert.Equal(t, "/t5/a/qaq-p/1", urlPath("https://community.example.com/t5/a/qaq-p/1?x=1#M2"))
	assert.Equal(t, "/t5/%zz/qaq-p/1", urlPath("https://community.example.com/t5/%zz/qaq-p/1?x=%zz#M2"))
	assert.Equal(t, "", urlPath("https://community.example.com%zz"))
	assert.Equal(t, "/t5/%zz", urlPath("/t5/%zz"))
}

func TestAppendUnique(t *testing.T) {
	var tags []string
	for _, v := range []string{"ABAP", " abap ", "", "Fiori", "FIORI", "abap"} {
		tags = appendUnique(tags, v)
	}
	assert.Equal(t, []string{"ABAP", "Fiori"}, tags)
}
