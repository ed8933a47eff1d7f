// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl fetches a library's hosted documentation site breadth-first
// and saves each page as local Markdown for offline skill assembly. The
// crawl stays under the base URL's prefix, respects a page budget and
// per-request delay, and records what it did in a manifest and a YAML
// session file.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/HughYau/opensci-skill/internal/httputil"
	"github.com/HughYau/opensci-skill/internal/textutil"
	"github.com/HughYau/opensci-skill/pkg/types"
)

const (
	// manifestFile lists every crawled page URL, one per line, in the
	// output directory.
	manifestFile = "_manifest.txt"

	// sessionFile records the crawl configuration and outcome.
	sessionFile = "_crawl.yaml"
)

// binaryExtRe matches resource URLs the crawler never fetches.
var binaryExtRe = regexp.MustCompile(`(?i)\.(pdf|zip|tar|gz|png|jpg|svg|css|js|woff|ico)$`)

// CrawlResult holds the outcome of one crawl run.
type CrawlResult struct {
	Saved   int
	Skipped int
	Failed  int

	// Manifest records the saved page URLs in crawl order.
	Manifest []string
}

// Total returns the number of URLs handled.
func (r CrawlResult) Total() int {
	return r.Saved + r.Skipped + r.Failed
}

// HasFailures reports whether any pages failed to fetch or save.
func (r CrawlResult) HasFailures() bool {
	return r.Failed > 0
}

// Crawl walks the documentation site rooted at cfg.BaseURL breadth-first
// and writes one Markdown file per HTML page into cfg.OutputDir. Only URLs
// under the base prefix are followed; binary resources and non-HTML
// responses are skipped; fetch failures are logged on w and never abort the
// crawl. A _manifest.txt of saved URLs and a _crawl.yaml session record are
// written alongside the pages.
func Crawl(ctx context.Context, client *http.Client, cfg types.CrawlConfig, w io.Writer) (CrawlResult, error) {
	if err := cfg.Validate(); err != nil {
		return CrawlResult{}, fmt.Errorf("crawl config: %w", err)
	}

	base, err := NormalizeURL(cfg.BaseURL)
	if err != nil {
		return CrawlResult{}, fmt.Errorf("parsing base URL: %w", err)
	}
	allowedPrefix := base + "/"

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return CrawlResult{}, fmt.Errorf("creating output directory: %w", err)
	}

	fmt.Fprintf(w, "Crawling:  %s\n", base)
	fmt.Fprintf(w, "Output:    %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "Max pages: %d\n\n", cfg.MaxPages)

	visited := make(map[string]bool)
	enqueued := map[string]bool{base: true}
	queue := []string{base}

	var result CrawlResult
	for len(queue) > 0 && len(visited) < cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pageURL := queue[0]
		queue = queue[1:]
		if visited[pageURL] {
			continue
		}
		if binaryExtRe.MatchString(pageURL) {
			result.Skipped++
			continue
		}
		visited[pageURL] = true

		page, contentType, err := fetchPage(ctx, client, pageURL, cfg)
		if err != nil {
			fmt.Fprintf(w, "  SKIP  %s  (%v)\n", pageURL, err)
			result.Failed++
			continue
		}
		if !strings.Contains(contentType, "html") {
			result.Skipped++
			continue
		}

		name := Slug(pageURL, base) + ".md"
		markdown := HTMLToMarkdown(page, pageURL)
		if err := os.WriteFile(filepath.Join(cfg.OutputDir, name), []byte(markdown), 0o644); err != nil {
			fmt.Fprintf(w, "  SKIP  %s  (%v)\n", pageURL, err)
			result.Failed++
			continue
		}
		result.Manifest = append(result.Manifest, pageURL)
		result.Saved++
		fmt.Fprintf(w, "  [%3d/%d]  %s\n", len(visited), cfg.MaxPages, pageURL)

		for _, link := range ExtractLinks(page, pageURL, allowedPrefix) {
			if !visited[link] && !enqueued[link] {
				enqueued[link] = true
				queue = append(queue, link)
			}
		}

		if cfg.Delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, manifestFile)
	content := strings.Join(result.Manifest, "\n") + "\n"
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		return result, fmt.Errorf("writing manifest: %w", err)
	}
	if err := writeSession(cfg, result); err != nil {
		return result, err
	}

	fmt.Fprintf(w, "\nCrawl summary: %d saved, %d skipped, %d failed (total: %d)\n",
		result.Saved, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// fetchPage retrieves one page through the retrying client and decodes the
// body to UTF-8 using the response charset.
func fetchPage(ctx context.Context, client *http.Client, pageURL string, cfg types.CrawlConfig) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	return textutil.DecodeHTML(body, contentType), contentType, nil
}

// sessionRecord is the on-disk representation of one crawl session. It lets
// a later run (or a human) see what produced the cached pages without
// re-crawling.
type sessionRecord struct {
	Config  sessionConfig  `yaml:"config"`
	Summary sessionSummary `yaml:"summary"`
}

type sessionConfig struct {
	BaseURL  string `yaml:"base_url"`
	Library  string `yaml:"library"`
	MaxPages int    `yaml:"max_pages"`
	Delay    string `yaml:"delay"`
}

type sessionSummary struct {
	Saved     int       `yaml:"saved"`
	Skipped   int       `yaml:"skipped"`
	Failed    int       `yaml:"failed"`
	Timestamp time.Time `yaml:"timestamp"`
}

func writeSession(cfg types.CrawlConfig, result CrawlResult) error {
	rec := sessionRecord{
		Config: sessionConfig{
			BaseURL:  cfg.BaseURL,
			Library:  cfg.Library,
			MaxPages: cfg.MaxPages,
			Delay:    cfg.Delay.String(),
		},
		Summary: sessionSummary{
			Saved:     result.Saved,
			Skipped:   result.Skipped,
			Failed:    result.Failed,
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marshaling session record: %w", err)
	}
	return os.WriteFile(filepath.Join(cfg.OutputDir, sessionFile), data, 0o644)
}
