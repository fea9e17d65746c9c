package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gaurav-prasanna/threadpipe/core/extract"
	"github.com/gaurav-prasanna/threadpipe/core/logging"
	"github.com/gaurav-prasanna/threadpipe/core/output"
	"github.com/spf13/cobra"
)

var (
	flagPageURL   string
	flagLastmod   string
	flagOutputDir string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.html>",
	Short: "Extract a record from a saved page",
	Long: `Extract runs the extraction engine on a local HTML file, as if it had been
fetched from --url, and prints the record as indented JSON. Useful to debug
markup drift without hitting the network.

Examples:
  threadpipe extract page.html --url https://community.example.com/t5/x/qaq-p/123
  threadpipe extract page.html --url https://community.example.com/t5/x/qaq-p/123 --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&flagPageURL, "url", "", "URL the page was fetched from (required)")
	extractCmd.Flags().StringVar(&flagLastmod, "lastmod", "", "Sitemap lastmod to attach")
	extractCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Write <page>.json into this directory instead of stdout")
	_ = extractCmd.MarkFlagRequired("url")
}

func runExtract(cmd *cobra.Command, args []string) error {
	html, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading page: %w", err)
	}

	level := flagLogLevel
	if level == "" {
		level = "warn"
	}
	log, err := logging.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	item := extract.New(extract.WithLogger(log)).Extract(flagPageURL, html)
	item.LastmodFromSitemap = flagLastmod

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(item); err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if flagOutputDir == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.WriteForURL(flagPageURL, buf.Bytes(), ".json")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	return nil
}
