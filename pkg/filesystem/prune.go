package filesystem

import (
	"os"
	"sort"

	"github.com/spf13/afero"
)

// PruneEmptyDirs removes every directory below root that is empty, or
// becomes empty once its empty children are gone. root itself is kept. It
// returns how many directories were removed.
func PruneEmptyDirs(fsys afero.Fs, root string) (int, error) {
	var dirs []string
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && p != root {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// deepest first so parents see their children already gone
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	removed := 0
	for _, d := range dirs {
		empty, err := afero.IsEmpty(fsys, d)
		if err != nil {
			return removed, err
		}
		if !empty {
			continue
		}
		if err := fsys.Remove(d); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
