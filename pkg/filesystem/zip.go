package filesystem

import (
	"io"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Zip writes every file below root into a zip archive on w. Entries are
// stored with slash separated paths relative to root, in sorted order.
func Zip(fsys afero.Fs, root string, w io.Writer) error {
	files, err := Files(fsys, root)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, rel := range files {
		if err := addToZip(zw, fsys, filepath.Join(root, Rel(rel)), rel); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addToZip(zw *zip.Writer, fsys afero.Fs, path, name string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	in, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	_, err = io.Copy(entry, in)
	return err
}

// ZipFile archives root into the file at dst on dstFs, creating its parent
// directory.
func ZipFile(fsys afero.Fs, root string, dstFs afero.Fs, dst string) error {
	if err := dstFs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := dstFs.Create(dst)
	if err != nil {
		return err
	}
	if err := Zip(fsys, root, out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
