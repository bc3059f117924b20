package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// CopyFile copies src from one filesystem to dst on another. When the
// destination directory does not exist yet it is created and the copy is
// retried once.
func CopyFile(srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
	err := copyFile(srcFs, src, dstFs, dst)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if _, statErr := srcFs.Stat(src); statErr != nil {
		return err
	}
	if mkErr := dstFs.MkdirAll(filepath.Dir(dst), 0755); mkErr != nil {
		return mkErr
	}
	return copyFile(srcFs, src, dstFs, dst)
}

func copyFile(srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
	in, err := srcFs.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := dstFs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CopyTree copies every file below srcRoot to the same relative path below
// dstRoot, replacing files already there. At most limit copies run at once
// (limit <= 0 means unbounded). The first error stops new copies from
// starting and is returned once the running ones finish. It returns the
// copied paths, relative and slash separated.
func CopyTree(ctx context.Context, srcFs afero.Fs, srcRoot string, dstFs afero.Fs, dstRoot string, limit int) ([]string, error) {
	files, err := Files(srcFs, srcRoot)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, rel := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return CopyFile(srcFs, filepath.Join(srcRoot, Rel(rel)), dstFs, filepath.Join(dstRoot, Rel(rel)))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
