package fs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryFileSystem(t *testing.T) {
	fs := NewMemoryFileSystem()
	assert.NotNil(t, fs)
	assert.IsType(t, &afero.MemMapFs{}, fs.Fs)
}

func TestNewOsFileSystem(t *testing.T) {
	fs := NewOsFileSystem("")
	assert.IsType(t, &afero.OsFs{}, fs.Fs)

	fs = NewOsFileSystem(t.TempDir())
	assert.IsType(t, &afero.BasePathFs{}, fs.Fs)
}

func TestWriteText(t *testing.T) {
	fs := NewMemoryFileSystem()
	written, err := fs.WriteText("test/file.txt", "Hello, World!", false)
	require.NoError(t, err)
	assert.True(t, written)

	content, ok, err := fs.ReadText("test/file.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hello, World!", content)
}

func TestWriteText_NoOverwrite(t *testing.T) {
	fs := NewMemoryFileSystem()
	_, err := fs.WriteText("a.txt", "first", false)
	require.NoError(t, err)

	written, err := fs.WriteText("a.txt", "second", false)
	require.NoError(t, err)
	assert.False(t, written)

	content, _, _ := fs.ReadText("a.txt")
	assert.Equal(t, "first", content)

	written, err = fs.WriteText("a.txt", "third", true)
	require.NoError(t, err)
	assert.True(t, written)
	content, _, _ = fs.ReadText("a.txt")
	assert.Equal(t, "third", content)
}

func TestReadText_Missing(t *testing.T) {
	fs := NewMemoryFileSystem()
	content, ok, err := fs.ReadText("missing.txt")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, content)
}

func TestReadOnlyFileSystem(t *testing.T) {
	base := NewMemoryFileSystem()
	ro := NewReadOnlyFileSystem(base)
	_, err := ro.WriteText("x/y.txt", "nope", true)
	assert.Error(t, err)
}

func TestIsDir(t *testing.T) {
	fs := NewMemoryFileSystem()
	require.NoError(t, fs.CreateDirectories("test/dir"))

	assert.True(t, fs.IsDir("test/dir"))
	assert.False(t, fs.IsDir("test/nonexistent"))
	assert.True(t, fs.Exists("test"))
}

func TestListDirAndWalk(t *testing.T) {
	fs := NewMemoryFileSystem()
	_, _ = fs.WriteText("root/b.kt", "b", false)
	_, _ = fs.WriteText("root/a.kt", "a", false)
	_, _ = fs.WriteText("root/sub/c.kt", "c", false)

	names, err := fs.ListDir("root")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.kt", "b.kt", "sub"}, names)

	files, err := fs.Walk("root")
	require.NoError(t, err)
	assert.Equal(t, []string{"root/a.kt", "root/b.kt", "root/sub/c.kt"}, files)

	names, err = fs.ListDir("absent")
	assert.NoError(t, err)
	assert.Empty(t, names)
}
