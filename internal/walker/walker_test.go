package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultExts = []string{".cs", ".txt", ".json", ".md", ".py"}

func writeTree(t *testing.T, fs afero.Fs, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("x\n"), 0o644))
	}
}

func collect(t *testing.T, fs afero.Fs, root string, c *Classifier) []string {
	t.Helper()
	var visited []string
	err := Walk(context.Background(), fs, root, c, func(p string) error {
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)
	return visited
}

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"a.cs", ".cs"},
		{"A.CS", ".cs"},
		{"dir/b.Json", ".json"},
		{"archive.tar.gz", ".gz"},
		{".cs", ""},
		{".gitignore", ""},
		{"Makefile", ""},
		{"dir.d/file", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Extension(tc.name))
		})
	}
}

func TestClassifierEligible(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]string{".CS", ".txt"}, []string{"**/generated/**", "*.g.cs"})

	assert.True(t, c.Eligible("a.cs"))
	assert.True(t, c.Eligible("src/A.Cs"))
	assert.True(t, c.Eligible("notes.TXT"))
	assert.False(t, c.Eligible("b.bin"))
	assert.False(t, c.Eligible("README"))
	assert.False(t, c.Eligible("src/generated/x.cs"))
	assert.False(t, c.Eligible("src/Form.g.cs"))
}

func TestWalkVisitsOnlyEligibleFilesInOrder(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTree(t, fs,
		"/root/b.cs",
		"/root/a.cs",
		"/root/b.bin",
		"/root/sub/c.PY",
		"/root/sub/deeper/d.md",
		"/root/sub/image.png",
	)

	visited := collect(t, fs, "/root", NewClassifier(defaultExts, nil))

	assert.Equal(t, []string{
		"/root/a.cs",
		"/root/b.cs",
		"/root/sub/c.PY",
		"/root/sub/deeper/d.md",
	}, visited)
}

func TestWalkPrunesExcludedDirectories(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTree(t, fs,
		"/root/keep.cs",
		"/root/bin/Debug/out.cs",
		"/root/node_modules/pkg/index.json",
		"/root/src/app.cs",
	)

	c := NewClassifier(defaultExts, []string{"bin/**", "**/node_modules"})
	visited := collect(t, fs, "/root", c)

	assert.Equal(t, []string{"/root/keep.cs", "/root/src/app.cs"}, visited)
}

func TestWalkSingleCharacterGlobsDoNotPruneDirectories(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTree(t, fs,
		"/root/src/app.cs",
		"/root/lib/x",
		"/root/lib/util.cs",
	)

	for _, glob := range []string{"x", "?", "[a-z]", "*x"} {
		glob := glob
		t.Run(glob, func(t *testing.T) {
			t.Parallel()

			visited := collect(t, fs, "/root", NewClassifier(defaultExts, []string{glob}))
			assert.Equal(t, []string{"/root/lib/util.cs", "/root/src/app.cs"}, visited)
		})
	}
}

func TestClassifierExcludedDir(t *testing.T) {
	t.Parallel()

	c := NewClassifier(defaultExts, []string{"x", "bin/**", "**/node_modules/**", "obj"})

	assert.True(t, c.excludedDir("bin"))
	assert.True(t, c.excludedDir("a/node_modules"))
	assert.True(t, c.excludedDir("src/obj"))
	assert.True(t, c.excludedDir("x"))
	assert.False(t, c.excludedDir("src"))
	assert.False(t, c.excludedDir("lib"))
}

func TestWalkSkipsSymlinkedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "a.cs")
	require.NoError(t, os.WriteFile(target, []byte("x\n"), 0o644))
	if err := os.Symlink(target, filepath.Join(root, "link.cs")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	visited := collect(t, afero.NewOsFs(), root, NewClassifier(defaultExts, nil))
	assert.Equal(t, []string{target}, visited)
}

func TestWalkStopsOnVisitError(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTree(t, fs, "/root/a.cs", "/root/b.cs")

	boom := errors.New("boom")
	count := 0
	err := Walk(context.Background(), fs, "/root", NewClassifier(defaultExts, nil), func(string) error {
		count++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count)
}

func TestWalkStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTree(t, fs, "/root/a.cs")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Walk(ctx, fs, "/root", NewClassifier(defaultExts, nil), func(string) error {
		t.Fatal("visit must not be called")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWalkMissingRootVisitsNothing(t *testing.T) {
	t.Parallel()

	visited := collect(t, afero.NewMemMapFs(), "/missing", NewClassifier(defaultExts, nil))
	assert.Empty(t, visited)
}
