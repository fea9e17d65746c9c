package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/threadpipe/core"
)

// MarkdownRenderer writes a human-readable digest of the scraped pages.
// It is also the input of the PDF renderer.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render produces one section per page.
func (r *MarkdownRenderer) Render(items []core.ContentItem) ([]byte, error) {
	return []byte(digest(items)), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func digest(items []core.ContentItem) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		title := it.Title
		if title == "" {
			title = it.URL
		}
		fmt.Fprintf(&b, "# %s\n\n", title)

		fmt.Fprintf(&b, "- Source: %s\n", it.URL)
		fmt.Fprintf(&b, "- Type: %s\n", it.ContentType)
		writeField(&b, "Author", it.Author)
		writeField(&b, "Board", it.Board)
		writeField(&b, "Published", it.PublishedAt)
		writeField(&b, "Updated", it.UpdatedAt)
		writeField(&b, "Sitemap lastmod", it.LastmodFromSitemap)
		if len(it.Tags) > 0 {
			writeField(&b, "Tags", strings.Join(it.Tags, ", "))
		}
		if it.QuestionUpvotes != nil {
			fmt.Fprintf(&b, "- Kudos: %d\n", *it.QuestionUpvotes)
		}
		b.WriteString("\n")

		if it.QuestionText != "" {
			b.WriteString(it.QuestionText)
			b.WriteString("\n\n")
		}

		if len(it.Answers) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## Replies (%d)\n\n", it.ReplyCount)
		for _, a := range it.Answers {
			fmt.Fprintf(&b, "### %s\n\n", answerHeading(a))
			if a.Text != "" {
				b.WriteString(a.Text)
				b.WriteString("\n\n")
			}
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if value != "" {
		fmt.Fprintf(b, "- %s: %s\n", name, value)
	}
}

func answerHeading(a core.Answer) string {
	author := a.Author
	if author == "" {
		author = "unknown"
	}
	parts := []string{"M" + a.MessageID + " by " + author}
	if a.CreatedAt != "" {
		parts = append(parts, a.CreatedAt)
	}
	if a.Upvotes != nil {
		parts = append(parts, fmt.Sprintf("%d kudos", *a.Upvotes))
	}
	if a.IsAccepted {
		parts = append(parts, "accepted")
	}
	return strings.Join(parts, ", ")
}
