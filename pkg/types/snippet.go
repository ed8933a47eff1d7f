// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"time"
)

// RunStatus is the outcome of executing one snippet.
type RunStatus string

const (
	RunPass    RunStatus = "pass"
	RunFail    RunStatus = "fail"
	RunTimeout RunStatus = "timeout"
)

// Snippet is a fenced code block extracted from a skill document.
type Snippet struct {
	// File is the source document path relative to the skill root.
	File string `json:"file" yaml:"file"`

	// StartLine is the 1-based line of the first code line in the source
	// document, counting any frontmatter prologue.
	StartLine int `json:"start_line" yaml:"start_line"`

	// Lang is the fence info string (e.g. "go").
	Lang string `json:"lang" yaml:"lang"`

	// Code is the fence body.
	Code string `json:"code" yaml:"code"`
}

// Location renders the snippet position as file:line.
func (s Snippet) Location() string {
	return s.File + ":" + strconv.Itoa(s.StartLine)
}

// SnippetResult pairs a snippet with its execution outcome.
type SnippetResult struct {
	Snippet `yaml:",inline"`

	Status   RunStatus     `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	Stdout   string        `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty" yaml:"stderr,omitempty"`
}
