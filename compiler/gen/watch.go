package gen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// DefaultDebounce is the quiet period Watch waits for after a change
// before regenerating, so editors that save in several steps trigger one
// run.
const DefaultDebounce = 200 * time.Millisecond

// Watch regenerates the files whenever they change, until ctx is done.
// It watches the parent directories, so files replaced by rename (as
// editors and the generator itself do) stay watched. onResult is called
// after every run; a failed run does not stop watching.
func (g *Generator) Watch(ctx context.Context, files []string, debounce time.Duration, onResult func(*Result, error)) error {
	if _, ok := g.cfg.Fs.(*afero.OsFs); !ok {
		return NewConfigError("Fs", nil, "watch requires the OS filesystem")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		targets[abs] = f
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	pending := make(map[string]*time.Timer)
	fire := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			file, watched := targets[filepath.Clean(event.Name)]
			if !watched || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if t, ok := pending[file]; ok {
				t.Reset(debounce)
				continue
			}
			pending[file] = time.AfterFunc(debounce, func() {
				select {
				case fire <- file:
				case <-ctx.Done():
				}
			})
		case file := <-fire:
			delete(pending, file)
			res, err := g.Run(ctx, file)
			if err != nil {
				g.log.Errorw("generation failed", "file", file, "error", err)
			}
			if onResult != nil {
				onResult(res, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.log.Warnw("file watcher error", "error", err)
		}
	}
}
