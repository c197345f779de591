package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"mdgraph/internal/frontmatter"
)

// Result holds the outcome of parsing and schema-validating one file.
// Exactly one of (Doc, ParseErr, FieldErrs) carries the interesting payload:
// ParseErr for files whose frontmatter could not be decoded at all, FieldErrs
// for schema violations, Doc otherwise.
type Result struct {
	Path      string // absolute path
	RelPath   string // corpus-relative, slash-separated
	Doc       Document
	ParseErr  error
	FieldErrs []FieldError
}

// Valid reports whether the file parsed and passed schema validation.
func (r Result) Valid() bool {
	return r.ParseErr == nil && len(r.FieldErrs) == 0
}

// ScanOptions configures corpus discovery.
type ScanOptions struct {
	// Include lists doublestar glob patterns matched against corpus-relative
	// paths. Empty means ["**/*.md"].
	Include []string

	// Exclude lists patterns removed after Include matching.
	Exclude []string

	// Workers bounds the parse/validate pool. 0 means runtime.NumCPU().
	Workers int
}

// defaultInclude matches every markdown file under the corpus root.
//
//nolint:gochecknoglobals // package-level constant
var defaultInclude = []string{"**/*.md"}

// Scan discovers all matching files under dir and parses and validates them
// on a bounded worker pool. Results are ordered by relative path, so the
// output is deterministic regardless of scheduling. Per-file problems land in
// the individual Result; the returned error is reserved for corpus-level
// failures (unreadable root, bad pattern).
func Scan(ctx context.Context, dir string, opts ScanOptions) ([]Result, error) {
	info, statErr := os.Stat(dir)
	if statErr != nil {
		return nil, fmt.Errorf("corpus directory: %w", statErr)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("corpus directory: %s is not a directory", dir)
	}

	paths, err := discover(dir, opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]Result, len(paths))
	jobs := make(chan int)

	var waitGroup sync.WaitGroup

	for w := 0; w < workers; w++ {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			for idx := range jobs {
				results[idx] = parseFile(dir, paths[idx])
			}
		}()
	}

	for idx := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			waitGroup.Wait()

			return nil, ctx.Err()
		case jobs <- idx:
		}
	}

	close(jobs)
	waitGroup.Wait()

	return results, nil
}

// discover walks dir and returns the sorted corpus-relative paths matching
// the include/exclude patterns.
func discover(dir string, opts ScanOptions) ([]string, error) {
	include := opts.Include
	if len(include) == 0 {
		include = defaultInclude
	}

	for _, pattern := range append(append([]string{}, include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %s", ErrBadIncludePattern, pattern)
		}
	}

	var paths []string

	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			// Hidden directories (.git, .obsidian) are never content.
			if path != dir && entry.Name()[0] == '.' {
				return filepath.SkipDir
			}

			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)

		if !matchesAny(include, rel) || matchesAny(opts.Exclude, rel) {
			return nil
		}

		paths = append(paths, rel)

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning corpus: %w", walkErr)
	}

	sort.Strings(paths)

	return paths, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		// Patterns were validated up front.
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	return false
}

// parseFile reads one file, splits its frontmatter, and runs the schema
// validator. Read-only over its own file; safe to call concurrently.
func parseFile(dir, rel string) Result {
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	result := Result{Path: abs, RelPath: rel}

	content, readErr := os.ReadFile(abs) //nolint:gosec // path comes from directory walk
	if readErr != nil {
		result.ParseErr = fmt.Errorf("reading document: %w", readErr)

		return result
	}

	fm, _, parseErr := frontmatter.Parse(content)
	if parseErr != nil {
		result.ParseErr = parseErr

		return result
	}

	doc, fieldErrs := Validate(fm)
	doc.Path = rel

	result.Doc = doc
	result.FieldErrs = fieldErrs

	return result
}
