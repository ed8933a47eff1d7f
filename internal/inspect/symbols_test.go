// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inspect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// writeProbeModule lays out a small Go module exercising every collector
// rule: exported and unexported declarations, pointer and value receivers,
// a generic function, a main package, skipped directories, and one file
// that does not parse.
func writeProbeModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"go.mod": `module example.com/probe

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	golang.org/x/text v0.14.0 // indirect
)
`,
		"probe.go": `// Package probe exercises the source inspector.
package probe

// DefaultName is used when no name is given.
const DefaultName = "world"

// Greet returns a greeting for name.
//
// The greeting is plain ASCII.
func Greet(name string) string {
	return "hello " + name
}

func helper() string { return "" }

// Client talks to the probe service.
type Client struct {
	addr string
}

// Dial opens a connection.
func (c *Client) Dial(addr string) error {
	c.addr = addr
	return nil
}

// Close shuts the client down.
func (c *Client) Close() error { return nil }

func (c *Client) reset() {}

type hidden struct{}

// Visible is exported but its receiver is not.
func (h hidden) Visible() {}
`,
		"status.go": `package probe

// Status reports connection health.
type Status string

// Healthy reports whether the status is ok.
func (s Status) Healthy() bool { return s == "ok" }
`,
		"clone.go": `package probe

// Clone returns a copy of xs.
func Clone[T any](xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	return out
}
`,
		"sub/sub.go": `// Package sub adds numbers.
package sub

// Sum adds xs together.
func Sum(xs ...int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
`,
		"cmd/probe/main.go": `package main

// Run starts the command.
func Run() {}

func main() {}
`,
		"vendor/vend/vend.go": `package vend

// Vend is vendored and must stay invisible.
func Vend() {}
`,
		"testdata/fixture.go": "not go source\n",
		"_attic/old.go":       "package old\n\n// Old is retired.\nfunc Old() {}\n",
		"broken/broken.go":    "package broken\n\nfunc Broken(\n",
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
	return root
}

func TestCollectSymbols(t *testing.T) {
	root := writeProbeModule(t)

	set, err := CollectSymbols(types.InspectConfig{SourceDir: root})
	if err != nil {
		t.Fatalf("CollectSymbols: %v", err)
	}
	if set.ModulePath != "example.com/probe" {
		t.Errorf("module path = %q, want example.com/probe", set.ModulePath)
	}
	if len(set.Failures) != 1 || !strings.Contains(set.Failures[0], "broken/broken.go") {
		t.Fatalf("failures = %v, want one entry for broken/broken.go", set.Failures)
	}
	records := set.Records

	want := []struct {
		symbol    string
		kind      types.SymbolKind
		signature string
	}{
		{"example.com/probe.Client", types.KindType, "type Client struct"},
		{"example.com/probe.Client.Close", types.KindMethod, "Close() error"},
		{"example.com/probe.Client.Dial", types.KindMethod, "Dial(addr string) error"},
		{"example.com/probe.Clone", types.KindFunc, "Clone[T any](xs []T) []T"},
		{"example.com/probe.Greet", types.KindFunc, "Greet(name string) string"},
		{"example.com/probe.Status", types.KindType, "type Status string"},
		{"example.com/probe.Status.Healthy", types.KindMethod, "Healthy() bool"},
		{"example.com/probe/sub.Sum", types.KindFunc, "Sum(xs ...int) int"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d:\n%+v", len(records), len(want), records)
	}
	for i, w := range want {
		got := records[i]
		if got.Symbol != w.symbol || got.Kind != w.kind || got.Signature != w.signature {
			t.Errorf("record %d = (%s, %s, %q), want (%s, %s, %q)",
				i, got.Symbol, got.Kind, got.Signature, w.symbol, w.kind, w.signature)
		}
		if got.Verification != "ast" {
			t.Errorf("record %d verification = %q, want %q", i, got.Verification, "ast")
		}
		if got.SourceLine <= 0 {
			t.Errorf("record %d (%s) has no source line", i, got.Symbol)
		}
	}

	byName := make(map[string]types.SymbolRecord, len(records))
	for _, r := range records {
		byName[r.Symbol] = r
	}
	greet := byName["example.com/probe.Greet"]
	if greet.Summary != "Greet returns a greeting for name." {
		t.Errorf("Greet summary = %q", greet.Summary)
	}
	if greet.SourceFile != "probe.go" {
		t.Errorf("Greet source file = %q, want probe.go", greet.SourceFile)
	}
	if greet.Package != "example.com/probe" {
		t.Errorf("Greet package = %q", greet.Package)
	}
	client := byName["example.com/probe.Client"]
	if client.Summary != "Client talks to the probe service." {
		t.Errorf("Client summary = %q", client.Summary)
	}
	sum := byName["example.com/probe/sub.Sum"]
	if sum.SourceFile != "sub/sub.go" {
		t.Errorf("Sum source file = %q, want sub/sub.go", sum.SourceFile)
	}
	if sum.Package != "example.com/probe/sub" {
		t.Errorf("Sum package = %q", sum.Package)
	}
}

func TestCollectSymbolsMissingSource(t *testing.T) {
	_, err := CollectSymbols(types.InspectConfig{SourceDir: filepath.Join(t.TempDir(), "absent")})
	if err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestCollectSymbolsSourceIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lone.go")
	if err := os.WriteFile(path, []byte("package lone\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := CollectSymbols(types.InspectConfig{SourceDir: path})
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Fatalf("err = %v, want not-a-directory error", err)
	}
}

func TestLoadModuleMetadata(t *testing.T) {
	root := writeProbeModule(t)

	mod, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mod.Path != "example.com/probe" {
		t.Errorf("module path = %q", mod.Path)
	}
	if mod.GoVersion != "1.22" {
		t.Errorf("go version = %q", mod.GoVersion)
	}
	if len(mod.Requires) != 1 || mod.Requires[0].Path != "github.com/spf13/cobra" {
		t.Errorf("requires = %+v, want direct cobra requirement only", mod.Requires)
	}

	var dirs []string
	for _, pkg := range mod.Packages {
		dirs = append(dirs, pkg.Dir)
	}
	if got, want := strings.Join(dirs, ","), ".,cmd/probe,sub"; got != want {
		t.Errorf("package dirs = %s, want %s", got, want)
	}
	if syn := mod.Packages[0].Synopsis(); syn != "Package probe exercises the source inspector." {
		t.Errorf("root synopsis = %q", syn)
	}
}
