package crawl

import (
	"context"
	"time"

	"github.com/gaurav-prasanna/threadpipe/core"
	"github.com/gaurav-prasanna/threadpipe/core/fetch"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scraper fetches sitemap entries and turns them into records.
type Scraper struct {
	fetcher     core.Fetcher
	extractor   core.Extractor
	concurrency int
	delayMin    time.Duration
	delayMax    time.Duration
	log         *zap.Logger

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithDelay makes each worker pause for a random duration in [lo, hi]
// after every page it fetched.
func WithDelay(lo, hi time.Duration) ScraperOption {
	return func(s *Scraper) {
		if hi < lo {
			hi = lo
		}
		s.delayMin, s.delayMax = lo, hi
	}
}

// NewScraper creates a Scraper running up to concurrency fetches at once.
func NewScraper(fetcher core.Fetcher, extractor core.Extractor, concurrency int, log *zap.Logger, opts ...ScraperOption) *Scraper {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scraper{
		fetcher:     fetcher,
		extractor:   extractor,
		concurrency: concurrency,
		log:         log,
		sleep:       fetch.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run discovers up to limit pages from sitemaps and scrapes them.
func (s *Scraper) Run(ctx context.Context, sitemaps []string, limit int) ([]core.ContentItem, error) {
	entries, err := Discover(ctx, sitemaps, limit, s.fetcher, s.log)
	if err != nil {
		return nil, err
	}
	return s.Scrape(ctx, entries)
}

// Scrape fetches and extracts every entry. Pages that fail to fetch are
// logged and skipped. Records come back in entry order.
func (s *Scraper) Scrape(ctx context.Context, entries []core.SitemapEntry) ([]core.ContentItem, error) {
	results := make([]*core.ContentItem, len(entries))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			s.log.Info("fetching",
				zap.Int("index", i+1),
				zap.Int("total", len(entries)),
				zap.String("url", e.Loc))
			res, err := s.fetcher.Fetch(ctx, e.Loc)
			if err != nil {
				s.log.Warn("skipping page", zap.String("url", e.Loc), zap.Error(err))
				return nil
			}
			item := s.extractor.Extract(e.Loc, res.HTML)
			item.LastmodFromSitemap = e.Lastmod
			results[i] = &item

			// An interrupted pause only cuts the run short; the page is kept.
			_ = s.sleep(ctx, fetch.Jitter(s.delayMin, s.delayMax))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]core.ContentItem, 0, len(entries))
	for _, r := range results {
		if r != nil {
			items = append(items, *r)
		}
	}
	if err := ctx.Err(); err != nil {
		return items, err
	}
	s.log.Info("extracted items", zap.Int("count", len(items)))
	return items, nil
}
