package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

const validDoc = "---\ntitle: T\nphase: 02-design\ntopic: auth\ndepth: surface\n---\n# T\n"

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "02-design/auth-surface.md", validDoc)
	writeFile(t, dir, "02-design/broken.md", "no frontmatter here\n")
	writeFile(t, dir, "06-operations/runbook.md", "---\ntitle: R\nphase: 06-operations\ntopic: runbooks\n---\n")
	writeFile(t, dir, "notes.txt", "not markdown")
	writeFile(t, dir, ".obsidian/workspace.md", validDoc)

	results, err := Scan(context.Background(), dir, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	wantPaths := []string{
		"02-design/auth-surface.md",
		"02-design/broken.md",
		"06-operations/runbook.md",
	}

	if len(results) != len(wantPaths) {
		t.Fatalf("got %d results, want %d: %+v", len(results), len(wantPaths), results)
	}

	for idx, want := range wantPaths {
		if results[idx].RelPath != want {
			t.Errorf("results[%d].RelPath = %q, want %q", idx, results[idx].RelPath, want)
		}
	}

	if !results[0].Valid() {
		t.Errorf("auth-surface should be valid: %+v", results[0])
	}

	if results[1].ParseErr == nil {
		t.Error("broken.md should have a parse error")
	}

	if !results[2].Valid() {
		t.Errorf("runbook should be valid: %+v", results[2])
	}
}

func TestScanExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "a.md", validDoc)
	writeFile(t, dir, "drafts/b.md", validDoc)

	results, err := Scan(context.Background(), dir, ScanOptions{Exclude: []string{"drafts/**"}})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(results) != 1 || results[0].RelPath != "a.md" {
		t.Fatalf("results = %+v, want only a.md", results)
	}
}

func TestScanBadPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Scan(context.Background(), dir, ScanOptions{Include: []string{"[unclosed"}})
	if err == nil {
		t.Fatal("Scan() should reject malformed patterns")
	}
}

func TestScanMissingDir(t *testing.T) {
	t.Parallel()

	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), ScanOptions{})
	if err == nil {
		t.Fatal("Scan() should fail for a missing corpus directory")
	}
}

func TestScanSingleWorkerMatchesDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, rel := range []string{"one.md", "two.md", "three.md"} {
		writeFile(t, dir, rel, validDoc)
	}

	parallel, err := Scan(context.Background(), dir, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	serial, err := Scan(context.Background(), dir, ScanOptions{Workers: 1})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(parallel) != len(serial) {
		t.Fatalf("parallel %d results, serial %d", len(parallel), len(serial))
	}

	for idx := range parallel {
		if parallel[idx].RelPath != serial[idx].RelPath {
			t.Errorf("order diverged at %d: %q vs %q", idx, parallel[idx].RelPath, serial[idx].RelPath)
		}
	}
}
