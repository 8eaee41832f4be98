// Package walker enumerates the files eligible for stripping under a root.
package walker

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Classifier decides which files are scanned: the extension must be in the
// allow-list (case-insensitive) and the path must not match an exclude glob.
type Classifier struct {
	extensions map[string]bool
	excludes   []string
}

// NewClassifier builds a classifier from an extension allow-list and doublestar
// exclude globs.
func NewClassifier(extensions, excludes []string) *Classifier {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	var globs []string
	for _, g := range excludes {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		globs = append(globs, g, trimGlobPrefix(g))
	}

	return &Classifier{extensions: exts, excludes: globs}
}

// Extension returns the lowercase extension of name. A leading dot does not
// start an extension, so ".cs" and ".gitignore" have none.
func Extension(name string) string {
	base := path.Base(filepath.ToSlash(name))
	trimmed := strings.TrimLeft(base, ".")
	ext := path.Ext(trimmed)
	return strings.ToLower(ext)
}

// Eligible reports whether the file at rel (relative to the walk root) is scanned.
func (c *Classifier) Eligible(rel string) bool {
	ext := Extension(rel)
	if ext == "" || !c.extensions[ext] {
		return false
	}
	return !c.Excluded(rel)
}

// Excluded reports whether rel matches an exclude glob, by full relative path
// or by base name.
func (c *Classifier) Excluded(rel string) bool {
	if len(c.excludes) == 0 {
		return false
	}
	rp := filepath.ToSlash(rel)
	for _, g := range c.excludes {
		if ok, _ := doublestar.Match(g, rp); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, path.Base(rp)); ok {
			return true
		}
	}
	return false
}

// excludedDir reports whether a whole directory can be pruned: either the
// directory itself is excluded, or a glob ending in "/**" covers everything
// below it. The second check matches a synthetic child by full path only.
func (c *Classifier) excludedDir(rel string) bool {
	if c.Excluded(rel) {
		return true
	}
	child := path.Join(filepath.ToSlash(rel), "x")
	for _, g := range c.excludes {
		if !strings.HasSuffix(g, "/**") {
			continue
		}
		if ok, _ := doublestar.Match(g, child); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

// Walk visits every eligible regular file under root in lexical order. Entries
// that cannot be read are skipped. The walk stops when ctx is cancelled or
// visit returns an error.
func Walk(ctx context.Context, afs afero.Fs, root string, c *Classifier, visit func(path string) error) error {
	return afero.Walk(afs, root, func(p string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || info == nil {
			// unreadable entry; keep going
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}

		if info.IsDir() {
			if rel != "." && c.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !c.Eligible(rel) {
			return nil
		}
		return visit(p)
	})
}
