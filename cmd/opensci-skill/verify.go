package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HughYau/opensci-skill/internal/snippets"
	"github.com/HughYau/opensci-skill/pkg/types"
)

const defaultSnippetTimeout = 30 * time.Second

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run fenced code snippets from skill documents",
	Long: `Verify extracts fenced code blocks from a skill's SKILL.md and
references/*.md, runs each one in an isolated workspace with go run, and
reports pass, fail, or timeout per snippet. A Markdown report is written
under the skill directory so stale snippets are caught before an agent
relies on them.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("root", "", "skill directory containing SKILL.md (required)")
	verifyCmd.Flags().Duration("timeout", 0, "per-snippet execution timeout (default 30s)")
	verifyCmd.Flags().Bool("fail-fast", false, "stop at the first failing snippet")
	verifyCmd.Flags().String("report", "assets/snippet-verification.md", "report file relative to the skill root (\"-\" disables)")
	verifyCmd.Flags().StringSlice("lang", []string{"go", "golang"}, "fence languages treated as runnable")
	_ = verifyCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultSnippetTimeout
	}
	failFast, _ := cmd.Flags().GetBool("fail-fast")
	reportPath, _ := cmd.Flags().GetString("report")
	langs, _ := cmd.Flags().GetStringSlice("lang")

	cfg := types.VerifyConfig{
		Root:       root,
		Timeout:    timeout,
		FailFast:   failFast,
		ReportPath: reportPath,
		Languages:  langs,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	snips, meta, err := snippets.Extract(cfg.Root, cfg.Languages)
	if err != nil {
		return err
	}
	if len(snips) == 0 {
		return fmt.Errorf("no fenced %s snippets found under %s", strings.Join(cfg.Languages, "/"), cfg.Root)
	}

	fmt.Printf("Skill root : %s\n", cfg.Root)
	fmt.Printf("Snippets   : %d\n", len(snips))
	fmt.Printf("Timeout    : %s\n\n", cfg.Timeout)

	results, err := snippets.NewRunner(cfg, os.Stdout).Run(context.Background(), snips)
	if err != nil {
		return err
	}
	totals := snippets.Tally(results)

	if cfg.ReportPath != "-" {
		path := cfg.ReportPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Root, path)
		}
		if err := snippets.WriteReport(path, cfg.Root, meta, results, len(snips)); err != nil {
			return err
		}
		fmt.Printf("\nReport     : %s\n", path)
	}

	fmt.Printf("\nSummary: %d passed, %d failed, %d timed out\n",
		totals.Passed, totals.Failed, totals.TimedOut)
	if totals.HasFailures() {
		return fmt.Errorf("%d snippet(s) failed verification", totals.Failed+totals.TimedOut)
	}
	return nil
}
