package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// WriteTree creates files under root on afs. Keys are slash-separated paths
// relative to root.
func WriteTree(t *testing.T, afs afero.Fs, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := afs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := afero.WriteFile(afs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write fixture %s: %v", rel, err)
		}
	}
}

// ReadTree returns the content of every regular file under root keyed by
// slash-separated relative path.
func ReadTree(t *testing.T, afs afero.Fs, root string) map[string]string {
	t.Helper()

	tree := map[string]string{}
	err := afero.Walk(afs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := afero.ReadFile(afs, path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return tree
}

// SortedKeys returns the keys of a tree in lexical order.
func SortedKeys(tree map[string]string) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
