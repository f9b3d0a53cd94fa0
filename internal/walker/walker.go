// Package walker finds the component source files under a project root.
package walker

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// IgnoreFile is the per-project ignore list read from the scan root.
const IgnoreFile = ".dupescanignore"

// File is a discovered source file.
type File struct {
	Path    string
	RelPath string // slash-separated, relative to the scan root
	Size    int64
}

// maxFileSize is the largest file we'll consider (1 MB).
const maxFileSize = 1 << 20

// DefaultIgnores apply when the project has no ignore file.
var DefaultIgnores = []string{
	".git",
	".hg",
	".svn",
	"node_modules",
	"bower_components",
	"dist",
	"build",
	"out",
	"coverage",
	".next",
	".nuxt",
	".turbo",
	".cache",
	"storybook-static",
	"*.d.ts",
	"*.min.js",
}

// Options controls a walk.
type Options struct {
	// Extensions lists accepted file extensions without the dot.
	Extensions map[string]bool
	// Ignore patterns are added to the project's ignore list.
	Ignore []string
}

// Walk traverses root and sends every accepted source file on the returned
// channel in lexical order. Directories and files matching an ignore
// pattern are skipped. The walk stops early when ctx is done.
func Walk(ctx context.Context, root string, opts Options) (<-chan File, <-chan error) {
	files := make(chan File, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}

		ignores := slices.Concat(LoadIgnorePatterns(absRoot), opts.Ignore)

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == absRoot {
					return err
				}
				return nil // unreadable entries are skipped
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			rel, _ := filepath.Rel(absRoot, path)
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path != absRoot && Ignored(d.Name(), rel, ignores) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if !opts.Extensions[ext] || Ignored(d.Name(), rel, ignores) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.Size() > maxFileSize || info.Size() == 0 {
				return nil
			}

			select {
			case files <- File{Path: path, RelPath: rel, Size: info.Size()}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, errs
}

// LoadIgnorePatterns reads the ignore file from root, falling back to
// DefaultIgnores when it is missing or empty.
func LoadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		return DefaultIgnores
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(line, "/"))
	}
	if len(patterns) == 0 {
		return DefaultIgnores
	}
	return patterns
}

// Ignored reports whether an entry's base name or slash-separated relative
// path matches any pattern. A pattern matches exact names, path prefixes
// ending at a separator, and globs.
func Ignored(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		if name == p || relPath == p {
			return true
		}
		if strings.HasPrefix(relPath, p+"/") {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
