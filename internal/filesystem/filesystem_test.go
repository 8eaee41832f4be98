package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.cs", []byte("content\n"), 0o644))

	data, err := ReadFile(fs, "/src/a.cs")
	require.NoError(t, err)
	assert.Equal(t, []byte("content\n"), data)
}

func TestReadFile_NonExistent(t *testing.T) {
	t.Parallel()

	data, err := ReadFile(afero.NewMemMapFs(), "/missing.cs")

	assert.Nil(t, data)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to open /missing.cs")
}

func TestWriteFileAtomic_ReplacesContent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.cs", []byte("old\n"), 0o640))

	require.NoError(t, WriteFileAtomic(fs, "/src/a.cs", []byte("new\n")))

	data, err := afero.ReadFile(fs, "/src/a.cs")
	require.NoError(t, err)
	assert.Equal(t, []byte("new\n"), data)

	info, err := fs.Stat("/src/a.cs")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := afero.ReadDir(fs, "/src")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFileAtomic_MissingTarget(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic(afero.NewMemMapFs(), "/src/none.cs", []byte("x"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFileAtomic_ReadOnly(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/src/a.cs", []byte("old\n"), 0o644))
	fs := afero.NewReadOnlyFs(base)

	err := WriteFileAtomic(fs, "/src/a.cs", []byte("new\n"))
	require.Error(t, err)

	data, err := afero.ReadFile(base, "/src/a.cs")
	require.NoError(t, err)
	assert.Equal(t, []byte("old\n"), data)
}

func TestWriteFileAtomic_OSFilesystem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "b.cs")
	require.NoError(t, os.WriteFile(path, []byte("old\r\n"), 0o600))

	require.NoError(t, WriteFileAtomic(afero.NewOsFs(), path, []byte("new\r\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new\r\n"), data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
