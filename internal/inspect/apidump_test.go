// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inspect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HughYau/opensci-skill/pkg/types"
)

func TestWriteAPIDump(t *testing.T) {
	root := writeProbeModule(t)
	outPath := filepath.Join(t.TempDir(), "api-dump.md")
	var log bytes.Buffer

	result, err := WriteAPIDump(types.InspectConfig{SourceDir: root}, outPath, &log)
	if err != nil {
		t.Fatalf("WriteAPIDump: %v", err)
	}
	if result.Packages != 2 {
		t.Errorf("packages = %d, want 2", result.Packages)
	}
	if result.Entries != 5 {
		t.Errorf("entries = %d, want 5", result.Entries)
	}
	if result.Failures != 1 {
		t.Errorf("failures = %d, want 1", result.Failures)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	dump := string(data)

	if !strings.HasPrefix(dump, "# `example.com/probe` Public API\n\n*Generated by opensci-skill api*\n\n---\n") {
		t.Errorf("unexpected header:\n%s", dump[:min(len(dump), 120)])
	}
	for _, want := range []string{
		"\n## example.com/probe\n",
		"\n## example.com/probe/sub\n",
		"### `Client`  *(type)*",
		"**Signature:** `type Client struct`",
		"**Methods:** `Close`, `Dial`",
		"### `Greet`  *(func)*",
		"**Signature:** `Greet(name string) string`",
		"**Doc:**\n> Greet returns a greeting for name.",
		"### `Status`  *(type)*",
		"**Methods:** `Healthy`",
		"**Signature:** `Sum(xs ...int) int`",
		"*Parse failed: broken/broken.go",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q", want)
		}
	}
	for _, reject := range []string{"Vend", "### `Run`", "helper", "hidden", "Visible"} {
		if strings.Contains(dump, reject) {
			t.Errorf("dump should not contain %q", reject)
		}
	}

	// Entries are ordered case-insensitively within a package.
	idx := func(s string) int { return strings.Index(dump, s) }
	if !(idx("### `Client`") < idx("### `Clone`") && idx("### `Clone`") < idx("### `Greet`") && idx("### `Greet`") < idx("### `Status`")) {
		t.Error("entries out of order")
	}

	if !strings.Contains(log.String(), "example.com/probe/sub") {
		t.Errorf("progress log missing package line:\n%s", log.String())
	}
	if !strings.Contains(log.String(), "[  1/3]") {
		t.Errorf("progress log missing counter:\n%s", log.String())
	}
}

func TestWriteAPIDumpMaxDepth(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"go.mod":           "module example.com/layers\n\ngo 1.22\n",
		"layers.go":        "// Package layers is the root.\npackage layers\n\n// Top does nothing.\nfunc Top() {}\n",
		"mid/mid.go":       "// Package mid sits one level down.\npackage mid\n\n// Middle does nothing.\nfunc Middle() {}\n",
		"mid/deep/deep.go": "// Package deep sits two levels down.\npackage deep\n\n// Bottom does nothing.\nfunc Bottom() {}\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	outPath := filepath.Join(t.TempDir(), "api-dump.md")
	var log bytes.Buffer
	result, err := WriteAPIDump(types.InspectConfig{SourceDir: root, MaxDepth: 1}, outPath, &log)
	if err != nil {
		t.Fatalf("WriteAPIDump: %v", err)
	}
	if result.Packages != 2 {
		t.Errorf("packages = %d, want 2", result.Packages)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	dump := string(data)
	if !strings.Contains(dump, "## example.com/layers/mid\n") {
		t.Error("dump missing depth-1 package")
	}
	if strings.Contains(dump, "mid/deep") {
		t.Error("dump should not include packages beyond the depth cap")
	}
	if !strings.Contains(log.String(), "[  2/2]") || strings.Contains(log.String(), "mid/deep") {
		t.Errorf("progress log should cover only kept packages:\n%s", log.String())
	}
}

func TestWriteAPIDumpMethodCap(t *testing.T) {
	root := t.TempDir()
	var src strings.Builder
	src.WriteString("// Package wide has a type with many methods.\npackage wide\n\n// Grid is wide.\ntype Grid struct{}\n\n")
	for i := 1; i <= 17; i++ {
		fmt.Fprintf(&src, "func (g Grid) M%02d() {}\n\n", i)
	}
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/wide\n\ngo 1.22\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "wide.go"), []byte(src.String()), 0o644); err != nil {
		t.Fatalf("write wide.go: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "api-dump.md")
	if _, err := WriteAPIDump(types.InspectConfig{SourceDir: root}, outPath, &bytes.Buffer{}); err != nil {
		t.Fatalf("WriteAPIDump: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	dump := string(data)

	if !strings.Contains(dump, "`M15`, ... (2 more)") {
		t.Errorf("dump missing capped method list:\n%s", dump)
	}
	if strings.Contains(dump, "`M16`") {
		t.Error("methods beyond the cap should be elided")
	}
}
