// Package crawl discovers community pages through their sitemaps and
// scrapes them into records, keeping discovery separate from extraction.
package crawl

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gaurav-prasanna/threadpipe/core"
	"go.uber.org/zap"
)

var gzipMagic = []byte{0x1f, 0x8b}

// lastmodLayouts are tried in order; sitemaps mostly use the first two.
var lastmodLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type sitemapLoc struct {
	Loc     string `xml:"loc"`
	Lastmod string `xml:"lastmod"`
}

// sitemapDoc matches both <urlset> and <sitemapindex> roots.
type sitemapDoc struct {
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

// Discover collects page entries from every sitemap, newest first,
// deduplicated by URL and truncated to limit (0 keeps all). Sitemaps that cannot be
// fetched or parsed are logged and skipped.
func Discover(ctx context.Context, sitemaps []string, limit int, fetcher core.Fetcher, log *zap.Logger) ([]core.SitemapEntry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var entries []core.SitemapEntry
	for _, sm := range sitemaps {
		doc, err := loadSitemap(ctx, sm, fetcher)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error("failed to parse sitemap", zap.String("sitemap", sm), zap.Error(err))
			continue
		}
		entries = append(entries, pageEntries(doc, sm)...)

		// One level of sitemap index.
		for _, child := range doc.Sitemaps {
			loc := strings.TrimSpace(child.Loc)
			if loc == "" || !IsSameDomain(loc, hostOf(sm)) {
				continue
			}
			sub, err := loadSitemap(ctx, loc, fetcher)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Error("failed to parse sitemap", zap.String("sitemap", loc), zap.Error(err))
				continue
			}
			entries = append(entries, pageEntries(sub, loc)...)
		}
	}

	if len(entries) == 0 {
		log.Warn("no entries found in provided sitemaps")
		return nil, nil
	}

	SortByLastmod(entries)
	if limit < 1 {
		limit = len(entries)
	}

	seen := NewSeenSet()
	out := make([]core.SitemapEntry, 0, min(limit, len(entries)))
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if !seen.Add(NormalizeURL(e.Loc)) {
			continue
		}
		out = append(out, e)
	}
	log.Info("discovered pages", zap.Int("entries", len(entries)), zap.Int("selected", len(out)))
	return out, nil
}

func loadSitemap(ctx context.Context, sitemapURL string, fetcher core.Fetcher) (*sitemapDoc, error) {
	res, err := fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	body := res.HTML
	if isGzip(sitemapURL, res.ContentType) || bytes.HasPrefix(body, gzipMagic) {
		body = gunzip(body)
	}
	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	return &doc, nil
}

func isGzip(sitemapURL, contentType string) bool {
	return strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") ||
		strings.HasPrefix(contentType, "application/x-gzip") ||
		strings.HasPrefix(contentType, "application/gzip")
}

// gunzip returns the decompressed payload, or the input unchanged when it
// is not valid gzip (servers often decompress transparently).
func gunzip(body []byte) []byte {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return body
	}
	return out
}

func pageEntries(doc *sitemapDoc, source string) []core.SitemapEntry {
	entries := make([]core.SitemapEntry, 0, len(doc.URLs))
	for _, u := range doc.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" || IsStaticAsset(loc) {
			continue
		}
		entries = append(entries, core.SitemapEntry{
			Loc:           loc,
			Lastmod:       strings.TrimSpace(u.Lastmod),
			SourceSitemap: source,
		})
	}
	return entries
}

// SortByLastmod orders entries newest first. Missing or unparsable
// lastmods sort as oldest; ties keep their sitemap order.
func SortByLastmod(entries []core.SitemapEntry) {
	keys := make(map[string]int64, len(entries))
	for _, e := range entries {
		keys[e.Lastmod] = lastmodKey(e.Lastmod)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return keys[entries[i].Lastmod] > keys[entries[j].Lastmod]
	})
}

func lastmodKey(lastmod string) int64 {
	if lastmod == "" {
		return 0
	}
	for _, layout := range lastmodLayouts {
		if t, err := time.Parse(layout, lastmod); err == nil {
			return t.Unix()
		}
	}
	return 0
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
