// Package watch reruns builds when pack sources change.
//
// Every directory below the roots is registered with fsnotify. Events that
// arrive within the debounce window are coalesced, and OnChange runs once
// with the sorted set of changed paths. OnChange runs on the event loop, so
// changes made while it is running are queued for the next round.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

var defaultIgnores = []string{
	"**/.git",
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Roots are watched recursively. Missing roots are skipped.
	Roots []string
	// Exclude lists directories never watched, such as the build output.
	Exclude []string
	// Ignore holds extra doublestar patterns matched against slash paths
	// relative to their root.
	Ignore   []string
	Debounce time.Duration
	OnChange func(ctx context.Context, changed []string) error
	Logger   zerolog.Logger
}

// Watcher fires debounced callbacks for changes below its roots.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	roots    []string
	exclude  []string
	ignores  []string
	debounce time.Duration
}

// New registers every directory below cfg.Roots.
func New(cfg Config) (*Watcher, error) {
	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid ignore pattern %q", pat)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "create fsnotify watcher")
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(append([]string(nil), defaultIgnores...), cfg.Ignore...),
		debounce: cfg.Debounce,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	for _, ex := range cfg.Exclude {
		if abs, err := filepath.Abs(ex); err == nil {
			w.exclude = append(w.exclude, abs)
		}
	}

	for _, root := range cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			cfg.Logger.Warn().Str("path", abs).Msg("Watch root is not a directory, skipping")
			continue
		}
		w.roots = append(w.roots, abs)
		if err := w.addTree(abs); err != nil {
			fsw.Close() //nolint:errcheck
			return nil, err
		}
	}
	if len(w.roots) == 0 {
		fsw.Close() //nolint:errcheck
		return nil, errors.New(errors.ErrInvalidInput, "nothing to watch")
	}
	return w, nil
}

// Roots returns the absolute roots being watched.
func (w *Watcher) Roots() []string {
	return append([]string(nil), w.roots...)
}

// Run blocks until ctx is cancelled. Callback errors are logged, fsnotify
// failures end the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close() //nolint:errcheck

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New(errors.ErrInternal, "fsnotify event channel closed")
			}
			if !w.relevant(evt.Name) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addTree(evt.Name); err != nil {
						w.cfg.Logger.Warn().Err(err).Str("path", evt.Name).Msg("Could not watch new directory")
					}
				}
			}
			pending[evt.Name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			w.cfg.Logger.Info().Int("changed", len(changed)).Msg("Sources changed")
			if w.cfg.OnChange != nil {
				if err := w.cfg.OnChange(ctx, changed); err != nil {
					w.cfg.Logger.Error().Err(err).Msg("Rebuild failed")
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New(errors.ErrInternal, "fsnotify error channel closed")
			}
			w.cfg.Logger.Warn().Err(err).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.cfg.Logger.Debug().Err(err).Str("path", path).Msg("Skipping inaccessible path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if !w.relevant(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrap(err, errors.ErrFileAccess, "watch directory").WithDetail("path", path)
		}
		return nil
	})
}

// relevant reports whether path is below a root and neither excluded nor
// ignored.
func (w *Watcher) relevant(path string) bool {
	for _, ex := range w.exclude {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return false
		}
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, pat := range w.ignores {
			if ok, _ := doublestar.Match(pat, rel); ok {
				return false
			}
		}
		return true
	}
	return false
}
