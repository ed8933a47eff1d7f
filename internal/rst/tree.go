// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rst

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HughYau/opensci-skill/internal/textutil"
	"github.com/HughYau/opensci-skill/pkg/types"
)

// manifestFile lists every processed source path, one per line, in the
// output tree root.
const manifestFile = "_manifest.txt"

// TreeResult holds the outcome of one documentation-tree conversion run.
type TreeResult struct {
	Converted int
	Copied    int
	Failed    int

	// Manifest records the processed source paths relative to the tree
	// root, .rst files first, in processing order.
	Manifest []string
}

// Total returns the number of files processed.
func (r TreeResult) Total() int {
	return r.Converted + r.Copied + r.Failed
}

// HasFailures reports whether any files failed processing.
func (r TreeResult) HasFailures() bool {
	return r.Failed > 0
}

// ProcessTree walks cfg.SourceDir, converts every .rst file to Markdown,
// and copies every source .md file as-is (myst-parser sources mixed into
// modern doc trees). Output mirrors the source layout under cfg.OutputDir
// with .rst extensions replaced, and a manifest of processed paths is
// written alongside. Per-file failures are reported on w and never abort
// the batch.
func ProcessTree(cfg types.ConvertConfig, w io.Writer) (TreeResult, error) {
	info, err := os.Stat(cfg.SourceDir)
	if err != nil {
		return TreeResult{}, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return TreeResult{}, fmt.Errorf("source %s is not a directory", cfg.SourceDir)
	}

	rstFiles, mdFiles, err := findSources(cfg.SourceDir)
	if err != nil {
		return TreeResult{}, fmt.Errorf("scanning %s: %w", cfg.SourceDir, err)
	}
	if len(rstFiles) == 0 && len(mdFiles) == 0 {
		fmt.Fprintf(w, "warning: no .rst or .md files under %s\n", cfg.SourceDir)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return TreeResult{}, fmt.Errorf("creating output directory: %w", err)
	}

	conv := NewConverter()
	var result TreeResult

	for _, rel := range rstFiles {
		data, err := os.ReadFile(filepath.Join(cfg.SourceDir, rel))
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", rel, err)
			result.Failed++
			continue
		}

		md := conv.Convert(textutil.Normalize(data))
		outPath := filepath.Join(cfg.OutputDir, strings.TrimSuffix(rel, ".rst")+".md")
		if err := writeFile(outPath, []byte(md)); err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", rel, err)
			result.Failed++
			continue
		}

		result.Manifest = append(result.Manifest, filepath.ToSlash(rel))
		result.Converted++
		fmt.Fprintf(w, "converted: %s\n", rel)
	}

	for _, rel := range mdFiles {
		srcPath := filepath.Join(cfg.SourceDir, rel)
		outPath := filepath.Join(cfg.OutputDir, rel)

		// When the output tree is nested inside the source tree, its own
		// files show up in the scan; never copy a file onto itself.
		if samePath(srcPath, outPath) {
			continue
		}

		data, err := os.ReadFile(srcPath)
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", rel, err)
			result.Failed++
			continue
		}

		if err := writeFile(outPath, []byte(textutil.Normalize(data))); err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", rel, err)
			result.Failed++
			continue
		}

		result.Manifest = append(result.Manifest, filepath.ToSlash(rel))
		result.Copied++
		fmt.Fprintf(w, "copied:    %s\n", rel)
	}

	manifestPath := filepath.Join(cfg.OutputDir, manifestFile)
	content := strings.Join(result.Manifest, "\n") + "\n"
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		return result, fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d copied, %d failed (total: %d)\n",
		result.Converted, result.Copied, result.Failed, result.Total())
	return result, nil
}

// findSources returns the .rst and .md files under root as sorted paths
// relative to root.
func findSources(root string) (rstFiles, mdFiles []string, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		switch filepath.Ext(path) {
		case ".rst":
			rstFiles = append(rstFiles, rel)
		case ".md":
			mdFiles = append(mdFiles, rel)
		}
		return nil
	})
	sort.Strings(rstFiles)
	sort.Strings(mdFiles)
	return rstFiles, mdFiles, err
}

// samePath reports whether two paths resolve to the same absolute location.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// writeFile writes data to path, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
