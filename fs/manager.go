package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// FileSystem wraps the Afero Fs interface
type FileSystem struct {
	Fs afero.Fs
}

// NewMemoryFileSystem creates a new in-memory file system
func NewMemoryFileSystem() *FileSystem {
	return &FileSystem{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOsFileSystem creates an OS-based file system rooted at root.
// Paths handed to the FileSystem are resolved relative to root.
func NewOsFileSystem(root string) *FileSystem {
	if root == "" || root == "." || root == "/" {
		return &FileSystem{Fs: afero.NewOsFs()}
	}
	return &FileSystem{
		Fs: afero.NewBasePathFs(afero.NewOsFs(), root),
	}
}

// NewReadOnlyFileSystem wraps base so every write fails.
func NewReadOnlyFileSystem(base *FileSystem) *FileSystem {
	return &FileSystem{Fs: afero.NewReadOnlyFs(base.Fs)}
}

// Exists reports whether a file or directory exists at path
func (fs *FileSystem) Exists(path string) bool {
	ok, err := afero.Exists(fs.Fs, path)
	return err == nil && ok
}

// IsDir checks if a path is a directory
func (fs *FileSystem) IsDir(path string) bool {
	info, err := fs.Fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CreateDirectories creates path and any missing parents
func (fs *FileSystem) CreateDirectories(path string) error {
	if err := fs.Fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", path, err)
	}
	return nil
}

// WriteText writes content to path, creating parent directories.
// When overwrite is false and the file already exists nothing is written and
// written is false.
func (fs *FileSystem) WriteText(path, content string, overwrite bool) (written bool, err error) {
	if !overwrite && fs.Exists(path) {
		return false, nil
	}
	if err := fs.CreateDirectories(filepath.Dir(path)); err != nil {
		return false, err
	}
	if err := afero.WriteFile(fs.Fs, path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("error writing file %s: %w", path, err)
	}
	return true, nil
}

// ReadText returns the content at path. ok is false when the file does not exist.
func (fs *FileSystem) ReadText(path string) (content string, ok bool, err error) {
	data, err := afero.ReadFile(fs.Fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return string(data), true, nil
}

// ListDir returns the sorted names of the entries directly under path.
// A missing directory yields no entries.
func (fs *FileSystem) ListDir(path string) ([]string, error) {
	if !fs.IsDir(path) {
		return nil, nil
	}
	infos, err := afero.ReadDir(fs.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", path, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Walk lists every regular file below root, slash separated and sorted.
func (fs *FileSystem) Walk(root string) ([]string, error) {
	var files []string
	err := afero.Walk(fs.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking file system: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Snapshot returns the content of every file below root keyed by path.
func (fs *FileSystem) Snapshot(root string) (map[string]string, error) {
	files, err := fs.Walk(root)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(files))
	for _, f := range files {
		content, _, err := fs.ReadText(f)
		if err != nil {
			return nil, err
		}
		out[f] = content
	}
	return out, nil
}
