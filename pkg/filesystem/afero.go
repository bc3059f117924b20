package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// NewOS returns the real filesystem.
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// Sandbox returns a filesystem rooted at dir. Paths that try to climb out of
// dir are rejected by afero.
func Sandbox(base afero.Fs, dir string) afero.Fs {
	return afero.NewBasePathFs(base, dir)
}

// ReadOnly wraps fsys so writes fail. Pack sources and patch directories are
// opened this way.
func ReadOnly(fsys afero.Fs) afero.Fs {
	return afero.NewReadOnlyFs(fsys)
}

// Exists reports whether name exists.
func Exists(fsys afero.Fs, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}

// IsDir reports whether name exists and is a directory.
func IsDir(fsys afero.Fs, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}

// IsFile reports whether name exists and is a regular file.
func IsFile(fsys afero.Fs, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// ReadDir lists a directory as fs.DirEntry values sorted by name.
func ReadDir(fsys afero.Fs, name string) ([]fs.DirEntry, error) {
	entries, err := afero.ReadDir(fsys, name)
	if err != nil {
		return nil, err
	}
	dirEntries := make([]fs.DirEntry, len(entries))
	for i, entry := range entries {
		dirEntries[i] = fs.FileInfoToDirEntry(entry)
	}
	return dirEntries, nil
}

// Files returns every regular file below root as slash separated paths
// relative to root, sorted.
func Files(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Clear removes dir with everything in it and recreates it empty.
func Clear(fsys afero.Fs, dir string) error {
	if err := fsys.RemoveAll(dir); err != nil {
		return err
	}
	return fsys.MkdirAll(dir, 0755)
}

// Rel turns a slash path into one usable with fsys, dropping any leading
// slash so it always stays relative to the filesystem root.
func Rel(p string) string {
	return filepath.FromSlash(strings.TrimPrefix(p, "/"))
}
