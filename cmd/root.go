// Package cmd implements the CLI commands for ThreadPipe using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:   "threadpipe",
	Short: "ThreadPipe: turn community Q&A threads and blogs into structured records",
	Long: `ThreadPipe discovers community pages through their sitemaps, fetches them
politely and extracts one normalized record per page: question, answers,
accepted solution, authors, timestamps, kudos and tags.

Usage:
  threadpipe scrape --sitemap <url> [flags]
  threadpipe extract <file.html> --url <page url>`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
