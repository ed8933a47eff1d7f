// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// fakeExecutor substitutes for the Go toolchain in runner tests.
type fakeExecutor struct {
	calls int
	dirs  []string
	delay time.Duration
	run   func(call int, code string) (int, string, string, error)
}

func (f *fakeExecutor) Run(ctx context.Context, dir, code string) (int, string, string, error) {
	f.calls++
	f.dirs = append(f.dirs, dir)

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return -1, "", "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.run == nil {
		return 0, "", "", nil
	}
	return f.run(f.calls, code)
}

func testRunner(cfg types.VerifyConfig, exec executor, out *strings.Builder) *Runner {
	return &Runner{cfg: cfg, exec: exec, out: out}
}

func testSnippets(n int) []types.Snippet {
	snips := make([]types.Snippet, 0, n)
	for i := 0; i < n; i++ {
		snips = append(snips, types.Snippet{
			File:      "SKILL.md",
			StartLine: 10 + i,
			Lang:      "go",
			Code:      fmt.Sprintf("package main // %d", i),
		})
	}
	return snips
}

func TestRunnerAllPass(t *testing.T) {
	fake := &fakeExecutor{}
	var out strings.Builder
	r := testRunner(types.VerifyConfig{}, fake, &out)

	results, err := r.Run(context.Background(), testSnippets(2))
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, types.RunPass, res.Status)
	}
	assert.Contains(t, out.String(), "PASS [1/2] SKILL.md:10")
	assert.Contains(t, out.String(), "PASS [2/2] SKILL.md:11")
}

func TestRunnerIsolatesWorkspaces(t *testing.T) {
	fake := &fakeExecutor{}
	var out strings.Builder
	r := testRunner(types.VerifyConfig{}, fake, &out)

	_, err := r.Run(context.Background(), testSnippets(2))
	require.NoError(t, err)

	require.Len(t, fake.dirs, 2)
	assert.NotEmpty(t, fake.dirs[0])
	assert.NotEqual(t, fake.dirs[0], fake.dirs[1], "each snippet should get a fresh workspace")
}

func TestRunnerFailure(t *testing.T) {
	fake := &fakeExecutor{
		run: func(call int, code string) (int, string, string, error) {
			return 1, "", "./main.go:3:1: undefined: foo\nexit status 1\n", nil
		},
	}
	var out strings.Builder
	r := testRunner(types.VerifyConfig{}, fake, &out)

	results, err := r.Run(context.Background(), testSnippets(1))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, types.RunFail, results[0].Status)
	assert.Equal(t, 1, results[0].ExitCode)
	assert.Contains(t, out.String(), "FAIL [1/1] SKILL.md:10 (exit=1")
	assert.Contains(t, out.String(), "stderr: ./main.go:3:1: undefined: foo | exit status 1")
}

func TestRunnerTimeout(t *testing.T) {
	fake := &fakeExecutor{delay: 100 * time.Millisecond}
	var out strings.Builder
	r := testRunner(types.VerifyConfig{Timeout: 10 * time.Millisecond}, fake, &out)

	results, err := r.Run(context.Background(), testSnippets(1))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, types.RunTimeout, results[0].Status)
	assert.Contains(t, out.String(), "TIMEOUT [1/1] SKILL.md:10")
}

func TestRunnerFailFast(t *testing.T) {
	tests := []struct {
		name        string
		failFast    bool
		wantResults int
		wantCalls   int
	}{
		{"stops at first failure", true, 2, 2},
		{"continues past failures", false, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExecutor{
				run: func(call int, code string) (int, string, string, error) {
					if call == 2 {
						return 1, "", "boom\n", nil
					}
					return 0, "", "", nil
				},
			}
			var out strings.Builder
			r := testRunner(types.VerifyConfig{FailFast: tt.failFast}, fake, &out)

			results, err := r.Run(context.Background(), testSnippets(3))
			require.NoError(t, err)
			assert.Len(t, results, tt.wantResults)
			assert.Equal(t, tt.wantCalls, fake.calls)
		})
	}
}

func TestRunnerExecutorError(t *testing.T) {
	fake := &fakeExecutor{
		run: func(call int, code string) (int, string, string, error) {
			return -1, "", "", errors.New(`exec: "go": executable file not found in $PATH`)
		},
	}
	var out strings.Builder
	r := testRunner(types.VerifyConfig{}, fake, &out)

	results, err := r.Run(context.Background(), testSnippets(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running snippet SKILL.md:10")
	assert.Empty(t, results)
}

func TestShortError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "(no stderr)"},
		{"whitespace only", "  \n\t\n", "(no stderr)"},
		{"single line", "boom\n", "boom"},
		{"joins lines", "a\nb\n", "a | b"},
		{"skips blank lines", "a\n\nb\n", "a | b"},
		{"caps at four lines", "1\n2\n3\n4\n5\n6\n", "1 | 2 | 3 | 4 | ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortError(tt.in))
		})
	}
}

func TestTally(t *testing.T) {
	results := []types.SnippetResult{
		{Status: types.RunPass},
		{Status: types.RunPass},
		{Status: types.RunFail},
		{Status: types.RunTimeout},
	}

	totals := Tally(results)
	assert.Equal(t, 2, totals.Passed)
	assert.Equal(t, 1, totals.Failed)
	assert.Equal(t, 1, totals.TimedOut)
	assert.True(t, totals.HasFailures())

	clean := Tally(results[:2])
	assert.False(t, clean.HasFailures())
}
