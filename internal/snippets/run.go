// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/HughYau/opensci-skill/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrLines    = 4
)

// executor abstracts snippet execution for testing.
type executor interface {
	// Run executes code inside dir and returns the process exit code with
	// its captured output. err is reserved for failures to execute at all.
	Run(ctx context.Context, dir, code string) (exitCode int, stdout, stderr string, err error)
}

// goExecutor runs snippets through the local Go toolchain.
type goExecutor struct{}

func (goExecutor) Run(ctx context.Context, dir, code string) (int, string, string, error) {
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte(code+"\n"), 0o644); err != nil {
		return -1, "", "", fmt.Errorf("writing snippet source: %w", err)
	}

	cmd := exec.CommandContext(ctx, "go", "run", "main.go")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exit := -1
	if cmd.ProcessState != nil {
		exit = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return exit, stdout.String(), stderr.String(), err
	}
	return exit, stdout.String(), stderr.String(), nil
}

var defaultExec executor = goExecutor{}

// Runner executes snippets one at a time, each in a fresh temp directory,
// and streams a status line per snippet to its writer.
type Runner struct {
	cfg  types.VerifyConfig
	exec executor
	out  io.Writer
}

// NewRunner returns a Runner writing progress to out.
func NewRunner(cfg types.VerifyConfig, out io.Writer) *Runner {
	return &Runner{cfg: cfg, exec: defaultExec, out: out}
}

// Run executes snippets in order and returns their results. When FailFast is
// set the run stops after the first snippet that does not pass, so the
// returned slice may be shorter than snippets.
func (r *Runner) Run(ctx context.Context, snips []types.Snippet) ([]types.SnippetResult, error) {
	results := make([]types.SnippetResult, 0, len(snips))
	for i, snip := range snips {
		result, err := r.runOne(ctx, snip)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		r.logResult(i+1, len(snips), result)

		if r.cfg.FailFast && result.Status != types.RunPass {
			break
		}
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, snip types.Snippet) (types.SnippetResult, error) {
	result := types.SnippetResult{Snippet: snip}

	dir, err := os.MkdirTemp("", "snippet-*")
	if err != nil {
		return result, fmt.Errorf("creating snippet workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	exitCode, stdout, stderr, err := r.exec.Run(runCtx, dir, snip.Code)
	result.Duration = time.Since(started)
	result.ExitCode = exitCode
	result.Stdout = stdout
	result.Stderr = stderr

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Status = types.RunTimeout
	case err != nil:
		return result, fmt.Errorf("running snippet %s: %w", snip.Location(), err)
	case exitCode == 0:
		result.Status = types.RunPass
	default:
		result.Status = types.RunFail
	}
	return result, nil
}

func (r *Runner) logResult(idx, total int, result types.SnippetResult) {
	loc := result.Location()
	secs := result.Duration.Seconds()

	switch result.Status {
	case types.RunPass:
		fmt.Fprintf(r.out, "PASS [%d/%d] %s (%.2fs)\n", idx, total, loc, secs)
	case types.RunTimeout:
		fmt.Fprintf(r.out, "TIMEOUT [%d/%d] %s (%.2fs)\n", idx, total, loc, secs)
	default:
		fmt.Fprintf(r.out, "FAIL [%d/%d] %s (exit=%d, %.2fs)\n", idx, total, loc, result.ExitCode, secs)
		fmt.Fprintf(r.out, "  stderr: %s\n", shortError(result.Stderr))
	}
}

// shortError flattens stderr to at most maxErrLines non-blank lines joined
// with " | ".
func shortError(text string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "(no stderr)"
	}
	if len(lines) <= maxErrLines {
		return strings.Join(lines, " | ")
	}
	return strings.Join(lines[:maxErrLines], " | ") + " | ..."
}

// Totals aggregates results by status.
type Totals struct {
	Passed   int
	Failed   int
	TimedOut int
}

// Tally counts results by status.
func Tally(results []types.SnippetResult) Totals {
	var t Totals
	for _, r := range results {
		switch r.Status {
		case types.RunPass:
			t.Passed++
		case types.RunTimeout:
			t.TimedOut++
		default:
			t.Failed++
		}
	}
	return t
}

// HasFailures reports whether any snippet failed or timed out.
func (t Totals) HasFailures() bool {
	return t.Failed > 0 || t.TimedOut > 0
}
