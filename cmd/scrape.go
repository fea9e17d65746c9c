package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gaurav-prasanna/threadpipe/core"
	"github.com/gaurav-prasanna/threadpipe/core/config"
	"github.com/gaurav-prasanna/threadpipe/core/extract"
	"github.com/gaurav-prasanna/threadpipe/core/fetch"
	"github.com/gaurav-prasanna/threadpipe/core/logging"
	"github.com/gaurav-prasanna/threadpipe/core/output"
	"github.com/gaurav-prasanna/threadpipe/core/render"
	"github.com/gaurav-prasanna/threadpipe/core/store"
	"github.com/gaurav-prasanna/threadpipe/crawl"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig      string
	flagSitemaps    []string
	flagLimit       int
	flagTimeout     int
	flagSleepMin    float64
	flagSleepMax    float64
	flagRetries     int
	flagConcurrency int
	flagRateLimit   float64
	flagOutJSONL    string
	flagOutJSON     string
	flagOutMarkdown string
	flagOutPDF      string
	flagMongoURI    string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape pages announced by one or more sitemaps",
	Long: `Scrape reads the given sitemaps (.xml or .xml.gz), keeps the most recently
modified pages up to --limit, fetches each one and writes the extracted
records as JSON Lines and a JSON array, optionally also as a Markdown or PDF
digest and into MongoDB.

Examples:
  threadpipe scrape --sitemap https://community.example.com/sitemap_qna.xml.gz
  threadpipe scrape --config threadpipe.yaml --limit 50 --out-pdf digest.pdf`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	f := scrapeCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "YAML config file")
	f.StringArrayVar(&flagSitemaps, "sitemap", nil, "Sitemap URL (.xml or .xml.gz); repeatable")
	f.IntVar(&flagLimit, "limit", 10, "Max number of pages to fetch across all sitemaps")
	f.IntVar(&flagTimeout, "timeout", 30, "HTTP timeout in seconds")
	f.Float64Var(&flagSleepMin, "sleep-min", 1.0, "Min delay between requests in seconds")
	f.Float64Var(&flagSleepMax, "sleep-max", 2.0, "Max delay between requests in seconds")
	f.IntVar(&flagRetries, "retries", 3, "Max HTTP attempts per request")
	f.IntVar(&flagConcurrency, "concurrency", 1, "Pages fetched in parallel")
	f.Float64Var(&flagRateLimit, "rate-limit", 0, "Max requests per second (0 = unlimited)")
	f.StringVar(&flagOutJSONL, "out-jsonl", "sap_pages.jsonl", "Output JSONL file (empty to skip)")
	f.StringVar(&flagOutJSON, "out-json", "sap_pages.json", "Output JSON file (empty to skip)")
	f.StringVar(&flagOutMarkdown, "out-markdown", "", "Output Markdown digest")
	f.StringVar(&flagOutPDF, "out-pdf", "", "Output PDF digest")
	f.StringVar(&flagMongoURI, "mongo-uri", "", "MongoDB URI; records are upserted by url when set")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sleepMin, sleepMax := cfg.SleepRange()
	fetcher := fetch.New(fetch.Options{
		Timeout:           cfg.Timeout(),
		Retries:           cfg.Retries,
		SleepMin:          sleepMin,
		SleepMax:          sleepMax,
		RequestsPerSecond: cfg.RateLimit,
		Logger:            log,
	})
	extractor := extract.New(extract.WithLogger(log))
	scraper := crawl.NewScraper(fetcher, extractor, cfg.Concurrency, log, crawl.WithDelay(sleepMin, sleepMax))

	items, runErr := scraper.Run(ctx, cfg.Sitemaps, cfg.Limit)
	if runErr != nil && items == nil {
		return fmt.Errorf("scraping: %w", runErr)
	}
	if err := saveOutputs(context.WithoutCancel(ctx), cfg, items, log); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("scrape interrupted after %d pages: %w", len(items), runErr)
	}
	return nil
}

// loadConfig layers defaults, the optional config file and explicitly set
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("sitemap") {
		cfg.Sitemaps = flagSitemaps
	}
	if f.Changed("limit") {
		cfg.Limit = flagLimit
	}
	if f.Changed("timeout") {
		cfg.TimeoutSec = flagTimeout
	}
	if f.Changed("sleep-min") {
		cfg.SleepMin = flagSleepMin
	}
	if f.Changed("sleep-max") {
		cfg.SleepMax = flagSleepMax
	}
	if f.Changed("retries") {
		cfg.Retries = flagRetries
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = flagConcurrency
	}
	if f.Changed("rate-limit") {
		cfg.RateLimit = flagRateLimit
	}
	if f.Changed("out-jsonl") {
		cfg.Output.JSONL = flagOutJSONL
	}
	if f.Changed("out-json") {
		cfg.Output.JSON = flagOutJSON
	}
	if f.Changed("out-markdown") {
		cfg.Output.Markdown = flagOutMarkdown
	}
	if f.Changed("out-pdf") {
		cfg.Output.PDF = flagOutPDF
	}
	if f.Changed("mongo-uri") {
		cfg.Mongo.URI = flagMongoURI
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func saveOutputs(ctx context.Context, cfg *config.Config, items []core.ContentItem, log *zap.Logger) error {
	writer, err := output.New("")
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	targets := []struct {
		path     string
		renderer core.Renderer
	}{
		{cfg.Output.JSONL, render.NewJSONLRenderer()},
		{cfg.Output.JSON, render.NewJSONRenderer()},
		{cfg.Output.Markdown, render.NewMarkdownRenderer()},
		{cfg.Output.PDF, render.NewPDFRenderer()},
	}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		data, err := t.renderer.Render(items)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", t.path, err)
		}
		path, err := writer.WritePath(t.path, data)
		if err != nil {
			return err
		}
		log.Info("saved", zap.String("path", path), zap.Int("items", len(items)))
	}

	if cfg.Mongo.URI == "" {
		return nil
	}
	sink, err := store.NewMongoSink(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, log)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close(ctx) }()
	return sink.Save(ctx, items)
}
