package filesystem

import (
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// Fingerprint hashes every file below root, path and content, in sorted
// order. Two trees with the same files yield the same digest.
func Fingerprint(fsys afero.Fs, root string) (uint64, error) {
	files, err := Files(fsys, root)
	if err != nil {
		return 0, err
	}

	d := xxhash.New()
	for _, rel := range files {
		_, _ = d.WriteString(rel)
		_, _ = d.Write([]byte{0})
		f, err := fsys.Open(filepath.Join(root, Rel(rel)))
		if err != nil {
			return 0, err
		}
		_, err = io.Copy(d, f)
		_ = f.Close()
		if err != nil {
			return 0, err
		}
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64(), nil
}
