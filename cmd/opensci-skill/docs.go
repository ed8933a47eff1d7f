package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/HughYau/opensci-skill/internal/crawl"
	"github.com/HughYau/opensci-skill/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 300 * time.Millisecond
	defaultUserAgent = "opensci-skill/1.0 (docs crawler)"
	defaultMaxPages  = 100
	defaultRetries   = 3
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Crawl a hosted documentation site into local Markdown",
	Long: `Docs crawls a library's hosted documentation breadth-first from a base
URL, converts each HTML page to Markdown, and saves the pages under the
output directory together with a URL manifest and a crawl session record.
Only pages under the base URL prefix are followed, and fetches are rate
limited to stay polite.`,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().String("url", "", "base URL of the documentation site (required)")
	docsCmd.Flags().String("lib", "", "library name, used for the default output directory (required)")
	docsCmd.Flags().Int("max-pages", defaultMaxPages, "maximum number of pages to fetch")
	docsCmd.Flags().Duration("delay", 0, "delay between page fetches (default 300ms)")
	docsCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	docsCmd.Flags().String("output", "", "output directory (default assets/docs-cache/<lib>)")
	_ = docsCmd.MarkFlagRequired("url")
	_ = docsCmd.MarkFlagRequired("lib")

	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("url")
	library, _ := cmd.Flags().GetString("lib")
	maxPages, _ := cmd.Flags().GetInt("max-pages")

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = filepath.Join("assets", "docs-cache", library)
	}

	cfg := types.CrawlConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    timeout,
			UserAgent:  defaultUserAgent,
			MaxRetries: defaultRetries,
		},
		BaseURL:   baseURL,
		Library:   library,
		MaxPages:  maxPages,
		Delay:     delay,
		OutputDir: output,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result, err := crawl.Crawl(context.Background(), client, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d page(s) failed", result.Failed)
	}
	return nil
}
