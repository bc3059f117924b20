package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebounce(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0755))
	require.NoError(t, os.MkdirAll(out, 0755))

	var (
		mu        sync.Mutex
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Roots:    []string{dir},
		Exclude:  []string{out},
		Debounce: 100 * time.Millisecond,
		Logger:   zerolog.Nop(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			collected = append(collected, changed...)
			select {
			case <-done:
			default:
				close(done)
			}
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop a moment before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "a.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "b.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "ignored.zip"), []byte("x"), 0644))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	cancel()
	require.NoError(t, <-errCh)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, collected, filepath.Join(dir, "assets", "a.json"))
	assert.Contains(t, collected, filepath.Join(dir, "assets", "b.json"))
	assert.NotContains(t, collected, filepath.Join(out, "ignored.zip"))
}

func TestRelevant(t *testing.T) {
	w := &Watcher{
		roots:   []string{"/src"},
		exclude: []string{"/src/out"},
		ignores: append(defaultIgnores, "**/*.tmp"),
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/src/assets/a.json", true},
		{"/src", true},
		{"/src/out", false},
		{"/src/out/pack.zip", false},
		{"/src/outside.json", true},
		{"/src/.git", false},
		{"/src/.git/HEAD", false},
		{"/src/a.json.swp", false},
		{"/src/x.tmp", false},
		{"/elsewhere/a.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.path))
		})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(Config{Roots: []string{filepath.Join(t.TempDir(), "missing")}, Logger: zerolog.Nop()})
	assert.Error(t, err)

	_, err = New(Config{Roots: []string{t.TempDir()}, Ignore: []string{"[bad"}, Logger: zerolog.Nop()})
	assert.Error(t, err)
}
