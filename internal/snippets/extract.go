// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snippets extracts fenced code blocks from skill documents and
// verifies them by running each one in an isolated subprocess.
package snippets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/HughYau/opensci-skill/pkg/types"
)

const skillFile = "SKILL.md"

// SkillMeta is the YAML frontmatter of SKILL.md.
type SkillMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Extract parses SKILL.md and references/*.md under root and returns every
// fenced block whose language tag is in langs. Snippet positions are 1-based
// line numbers in the original documents, counting any frontmatter prologue.
func Extract(root string, langs []string) ([]types.Snippet, SkillMeta, error) {
	var meta SkillMeta

	files, err := collectFiles(root)
	if err != nil {
		return nil, meta, err
	}

	langSet := make(map[string]bool, len(langs))
	for _, lang := range langs {
		langSet[strings.ToLower(lang)] = true
	}

	var snippets []types.Snippet
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return nil, meta, fmt.Errorf("reading %s: %w", rel, err)
		}

		var fm SkillMeta
		body, offset, err := stripFrontmatter(data, &fm)
		if err != nil {
			return nil, meta, fmt.Errorf("parsing %s frontmatter: %w", rel, err)
		}
		if rel == skillFile {
			meta = fm
		}

		snippets = append(snippets, extractFences(rel, body, offset, langSet)...)
	}
	return snippets, meta, nil
}

// collectFiles returns SKILL.md plus the sorted references/*.md files,
// relative to root. SKILL.md is required.
func collectFiles(root string) ([]string, error) {
	skillPath := filepath.Join(root, skillFile)
	if _, err := os.Stat(skillPath); err != nil {
		return nil, fmt.Errorf("missing required file: %s", skillPath)
	}
	files := []string{skillFile}

	refs, err := filepath.Glob(filepath.Join(root, "references", "*.md"))
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		files = append(files, filepath.ToSlash(filepath.Join("references", filepath.Base(ref))))
	}
	return files, nil
}

// stripFrontmatter removes a YAML frontmatter prologue from data and reports
// how many lines it consumed, so fence positions in the remaining body can be
// mapped back to the original document.
func stripFrontmatter(data []byte, meta *SkillMeta) ([]byte, int, error) {
	rest, err := frontmatter.Parse(bytes.NewReader(data), meta)
	if err != nil {
		return nil, 0, err
	}
	stripped := len(data) - len(rest)
	if stripped <= 0 {
		return data, 0, nil
	}
	return rest, bytes.Count(data[:stripped], []byte("\n")), nil
}

func extractFences(file string, src []byte, lineOffset int, langs map[string]bool) []types.Snippet {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var snippets []types.Snippet
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := strings.ToLower(string(fence.Language(src)))
		if !langs[lang] {
			return ast.WalkContinue, nil
		}

		lines := fence.Lines()
		code := strings.TrimSpace(string(lines.Value(src)))
		if code == "" {
			return ast.WalkContinue, nil
		}

		snippets = append(snippets, types.Snippet{
			File:      file,
			StartLine: lineAt(src, lines.At(0).Start) + lineOffset,
			Lang:      lang,
			Code:      code,
		})
		return ast.WalkContinue, nil
	})
	return snippets
}

// lineAt returns the 1-based line number of byte offset off in src.
func lineAt(src []byte, off int) int {
	return bytes.Count(src[:off], []byte("\n")) + 1
}
