// Package extract implements the Extractor interface for community pages.
// It turns one fetched page into one normalized record by:
//  1. Dispatching on the URL shape (Q&A thread, blog article, anything else)
//  2. Finding and deduplicating message containers by message ID
//  3. Choosing the question and reconciling accepted-answer signals
//  4. Rendering bodies and resolving author, timestamp and kudos per message
//
// Extraction is pure: no I/O, no shared state, and malformed markup only
// ever produces empty fields.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/threadpipe/core"
	"github.com/gaurav-prasanna/threadpipe/core/markdown"
	"go.uber.org/zap"
)

// Extractor builds ContentItems from community HTML.
type Extractor struct {
	log *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for debug output about skipped signals.
func WithLogger(log *zap.Logger) Option {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DetectContentType classifies a page by its URL path. URLs that do not
// parse are matched on everything before the query or fragment.
func DetectContentType(rawURL string) core.ContentType {
	path := strings.ToLower(urlPath(rawURL))
	switch {
	case strings.Contains(path, "/qaq-p/") || strings.Contains(path, "/qa-p/"):
		return core.ContentQnA
	case strings.Contains(path, "/blogs/") || strings.Contains(path, "/blog/"):
		return core.ContentBlog
	default:
		return core.ContentOther
	}
}

// Extract parses html fetched from pageURL into a record. The sitemap
// lastmod is left for the caller to attach.
func (e *Extractor) Extract(pageURL string, html []byte) core.ContentItem {
	ctype := DetectContentType(pageURL)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		e.log.Debug("unparsable page", zap.String("url", pageURL), zap.Error(err))
		return newItem(pageURL, ctype, pageMetadata{Tags: []string{}})
	}

	switch ctype {
	case core.ContentQnA:
		return e.parseQnA(pageURL, doc)
	case core.ContentBlog:
		return e.parseBlog(pageURL, doc)
	default:
		return newItem(pageURL, core.ContentOther, extractMetadata(doc))
	}
}

func newItem(pageURL string, ctype core.ContentType, meta pageMetadata) core.ContentItem {
	return core.ContentItem{
		URL:         pageURL,
		ContentType: ctype,
		Title:       meta.Title,
		Author:      meta.Author,
		PublishedAt: meta.PublishedAt,
		UpdatedAt:   meta.UpdatedAt,
		Tags:        meta.Tags,
		Answers:     []core.Answer{},
	}
}

func (e *Extractor) parseQnA(pageURL string, doc *goquery.Document) core.ContentItem {
	item := newItem(pageURL, core.ContentQnA, extractMetadata(doc))
	item.Board = boardFromURL(pageURL)

	containers := candidateContainers(doc)
	set := newMessageSet()
	for _, c := range containers {
		id, ok := messageID(c)
		if !ok {
			continue
		}
		set.add(buildMessage(c, id, pageURL))
	}

	if qid, ok := questionID(containers, set); ok {
		if q, ok := set.remove(qid); ok {
			item.QuestionText = q.Text
			item.QuestionUpvotes = q.Upvotes
		}
	}

	// Structured data only ever promotes answers; the question is gone by now.
	set.markAccepted(acceptedIDs(e.jsonLDBlocks(doc)))

	item.Answers = set.answers(pageURL)
	item.ReplyCount = len(item.Answers)
	return item
}

func (e *Extractor) parseBlog(pageURL string, doc *goquery.Document) core.ContentItem {
	item := newItem(pageURL, core.ContentBlog, extractMetadata(doc))

	article := doc.Find("div").FilterFunction(classMatches(bodyClassPattern)).First()
	if article.Length() == 0 {
		article = doc.Find("article").First()
	}
	if article.Length() > 0 {
		item.QuestionText = markdown.Render(markdown.FromHTML(article.Get(0)), pageURL)
	}

	// Comments keep their first rendering; later duplicates are skipped,
	// not merged.
	set := newMessageSet()
	doc.FindMatcher(commentMatcher).Each(func(_ int, c *goquery.Selection) {
		id, ok := messageID(c)
		if !ok || set.has(id) {
			return
		}
		m := buildMessage(c, id, pageURL)
		// Blogs have no accepted-answer concept.
		m.Accepted = false
		set.add(m)
	})

	item.Answers = set.answers(pageURL)
	item.ReplyCount = len(item.Answers)
	return item
}
