package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grassfps/grassfps/internal/logging"
	"github.com/grassfps/grassfps/internal/patcher"
	"github.com/grassfps/grassfps/internal/record"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	var p configParams
	root, err := p.load(logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Categories) != 2 || root.Categories[1].Identifier != "Windy Grass" {
		t.Fatalf("expected the default categories, got %+v", root.Categories)
	}
}

func TestLoadWithPatch(t *testing.T) {
	p := configParams{
		configFiles: []string{writeFile(t, "config.yaml", `
categories:
  - identifier: a
    density: 1
`)},
		configPatch: writeFile(t, "patch.yaml", `
- op: replace
  path: /categories/0/identifier
  value: b
`),
	}

	root, err := p.load(logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if root.Categories[0].Identifier != "b" {
		t.Fatalf("expected patched identifier, got %q", root.Categories[0].Identifier)
	}
}

func TestLoadInvalid(t *testing.T) {
	p := configParams{
		configFiles: []string{writeFile(t, "config.yaml", "unknown: true\n")},
	}
	if _, err := p.load(logging.NewNop()); err == nil {
		t.Fatal("expected an error")
	}
}

func TestWriteDiff(t *testing.T) {
	orig := &record.Grass{Key: record.NewKey(1, "Skyrim.esm"), Density: 10}
	patched := orig.DeepCopy()
	patched.Density = 80

	var buf bytes.Buffer
	err := writeDiff(&buf, []patcher.Result{
		{Original: orig, Patched: patched, Changed: true},
		{Original: orig, Patched: orig},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, exp := range []string{"000001:Skyrim.esm", "-density: 10", "+density: 80"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected %q in diff:\n%s", exp, out)
		}
	}
	if strings.Count(out, "@@") != 2 {
		t.Fatalf("expected a single hunk:\n%s", out)
	}
}
