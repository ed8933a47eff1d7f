// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HughYau/opensci-skill/pkg/types"
)

func TestWriteReport(t *testing.T) {
	results := []types.SnippetResult{
		{
			Snippet:  types.Snippet{File: "SKILL.md", StartLine: 12, Lang: "go"},
			Status:   types.RunPass,
			Duration: 420 * time.Millisecond,
		},
		{
			Snippet:  types.Snippet{File: "references/api.md", StartLine: 30, Lang: "go"},
			Status:   types.RunFail,
			Duration: 1310 * time.Millisecond,
			ExitCode: 1,
			Stderr:   "./main.go:3:1: undefined: foo\nexit status 1\n",
		},
	}
	meta := SkillMeta{Name: "gonum", Description: "Scientific computing in Go"}
	path := filepath.Join(t.TempDir(), "assets", "snippet-verification.md")

	// The run stopped early, so totals exceed the rendered rows.
	require.NoError(t, WriteReport(path, "/skills/gonum", meta, results, 3))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	for _, want := range []string{
		"# Snippet Verification Report",
		"- Skill: `gonum`",
		"- Description: Scientific computing in Go",
		"- Root: `/skills/gonum`",
		"- Total snippets: `3`",
		"- Passed: `1`",
		"- Failed: `1`",
		"- Timed out: `0`",
		"| Status | Location | Duration (s) | Details |",
		"| pass | `SKILL.md:12` | 0.42 | ok |",
		"| fail | `references/api.md:30` | 1.31 | ./main.go:3:1: undefined: foo | exit status 1 |",
	} {
		assert.Contains(t, report, want)
	}
}

func TestWriteReportTimeoutRow(t *testing.T) {
	results := []types.SnippetResult{{
		Snippet:  types.Snippet{File: "SKILL.md", StartLine: 5, Lang: "go"},
		Status:   types.RunTimeout,
		Duration: 30 * time.Second,
	}}
	path := filepath.Join(t.TempDir(), "report.md")

	require.NoError(t, WriteReport(path, "/skills/x", SkillMeta{}, results, 1))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "| timeout | `SKILL.md:5` | 30.00 | timeout |")
	assert.NotContains(t, string(data), "- Skill:")
}
