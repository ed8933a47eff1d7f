// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// WriteReport renders a Markdown verification report to path. totalSnippets
// may exceed len(results) when the run stopped early.
func WriteReport(path, root string, meta SkillMeta, results []types.SnippetResult, totalSnippets int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	totals := Tally(results)

	var b strings.Builder
	b.WriteString("# Snippet Verification Report\n\n")
	if meta.Name != "" {
		fmt.Fprintf(&b, "- Skill: `%s`\n", meta.Name)
	}
	if meta.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", meta.Description)
	}
	fmt.Fprintf(&b, "- Generated: `%s`\n", time.Now().UTC().Format("2006-01-02 15:04:05Z"))
	fmt.Fprintf(&b, "- Root: `%s`\n", root)
	fmt.Fprintf(&b, "- Total snippets: `%d`\n", totalSnippets)
	fmt.Fprintf(&b, "- Passed: `%d`\n", totals.Passed)
	fmt.Fprintf(&b, "- Failed: `%d`\n", totals.Failed)
	fmt.Fprintf(&b, "- Timed out: `%d`\n\n", totals.TimedOut)

	b.WriteString("| Status | Location | Duration (s) | Details |\n")
	b.WriteString("|--------|----------|--------------|---------|\n")
	for _, r := range results {
		details := "ok"
		switch r.Status {
		case types.RunTimeout:
			details = "timeout"
		case types.RunFail:
			details = shortError(r.Stderr)
		}
		fmt.Fprintf(&b, "| %s | `%s` | %.2f | %s |\n", r.Status, r.Location(), r.Duration.Seconds(), details)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
