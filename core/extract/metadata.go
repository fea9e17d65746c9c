package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/threadpipe/core/normalize"
)

var (
	tagLinkMatcher = cascadia.MustCompile(`a[rel~="tag"], a[href*="/t5/tag/"], a[class*="Tag"]`)

	// associatedProductMatcher lists the managed product tags.
	associatedProductMatcher = cascadia.MustCompile(`div.custom-view-associated-products li.lia-link-navigation a`)
)

// boardSlugs maps URL board-slug prefixes to board identifiers.
var boardSlugs = []struct {
	prefix string
	board  string
}{
	{"human-capital-management-q-a", "hcm-questions"},
}

// pageMetadata holds the document-level fields shared by every page type.
type pageMetadata struct {
	Title       string
	Author      string
	PublishedAt string
	UpdatedAt   string
	Tags        []string
}

func extractMetadata(doc *goquery.Document) pageMetadata {
	var meta pageMetadata

	meta.Title = normalize.Whitespace(doc.Find("title").First().Text())
	if og := metaContent(doc, `meta[property="og:title"]`); og != "" {
		meta.Title = og
	}

	meta.Author = firstMetaContent(doc, `meta[name="author"]`, `meta[property="article:author"]`)
	meta.PublishedAt = firstMetaContent(doc,
		`meta[property="article:published_time"]`,
		`meta[property="og:article:published_time"]`)
	meta.UpdatedAt = firstMetaContent(doc,
		`meta[property="article:modified_time"]`,
		`meta[property="og:updated_time"]`)

	meta.Tags = []string{}
	for _, m := range []cascadia.Selector{tagLinkMatcher, associatedProductMatcher} {
		doc.FindMatcher(m).Each(func(_ int, a *goquery.Selection) {
			meta.Tags = appendUnique(meta.Tags, normalize.Whitespace(a.Text()))
		})
	}
	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	return normalize.Whitespace(doc.Find(selector).First().AttrOr("content", ""))
}

func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v := metaContent(doc, sel); v != "" {
			return v
		}
	}
	return ""
}

// appendUnique adds val unless a case-insensitive equal is already present.
func appendUnique(tags []string, val string) []string {
	val = strings.TrimSpace(val)
	if val == "" {
		return tags
	}
	for _, t := range tags {
		if strings.EqualFold(t, val) {
			return tags
		}
	}
	return append(tags, val)
}

// boardFromURL derives the board from the slug following the community
// root, e.g. /t5/human-capital-management-q-a/... .
// urlPath returns the path of rawURL. When the URL does not parse (bad
// percent escapes, for one), the path is cut out of the raw string.
func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Path
	}
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
		j := strings.IndexByte(p, '/')
		if j < 0 {
			return ""
		}
		p = p[j:]
	}
	return p
}

func boardFromURL(rawURL string) string {
	parts := strings.Split(strings.Trim(urlPath(rawURL), "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	for _, b := range boardSlugs {
		if strings.HasPrefix(parts[1], b.prefix) {
			return b.board
		}
	}
	return ""
}
