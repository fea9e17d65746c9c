// Package core defines the record model and pipeline interfaces for ThreadPipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// ContentType classifies a community page.
type ContentType string

const (
	ContentQnA   ContentType = "qna"
	ContentBlog  ContentType = "blog"
	ContentOther ContentType = "other"
)

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	HTML        []byte
}

// Answer is one reply (or blog comment) of a thread.
// Empty strings and nil counts mean the signal was absent on the page.
// The persisted form is defined in record.go.
type Answer struct {
	MessageID  string
	MessageURL string
	Author     string
	CreatedAt  string // ISO8601
	Text       string // Markdown
	IsAccepted bool
	Upvotes    *int
}

// ContentItem is the normalized record produced for one page.
// The question is flattened into QuestionText/QuestionUpvotes and is never
// part of Answers.
type ContentItem struct {
	URL                string
	LastmodFromSitemap string
	ContentType        ContentType
	Title              string
	Author             string
	PublishedAt        string // ISO8601 if possible
	UpdatedAt          string // ISO8601 if possible
	Board              string
	Tags               []string

	QuestionText    string
	QuestionUpvotes *int

	Answers    []Answer
	ReplyCount int
}

// SitemapEntry is a page URL announced by a sitemap.
type SitemapEntry struct {
	Loc           string
	Lastmod       string
	SourceSitemap string
}

// Fetcher retrieves raw bytes from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor turns a fetched page into a record. It never fails on
// malformed markup; missing fields stay empty.
type Extractor interface {
	Extract(url string, html []byte) ContentItem
}

// Renderer converts a batch of records into a final output format.
type Renderer interface {
	Render(items []ContentItem) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".jsonl", ".pdf").
	Extension() string
}

// Sink persists a batch of records somewhere other than the filesystem.
type Sink interface {
	Save(ctx context.Context, items []ContentItem) error
}
