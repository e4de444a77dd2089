package builder

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher over roots and runs until ctx is
// cancelled. Events are debounced; after a quiet period onChange fires once.
// contentOnly reports whether every event in the window touched a path under
// contentRoot, which lets the caller skip rebuilds for spurious editor
// writes that did not change any source file.
//
// New directories created at runtime are added to the watch list, since
// fsnotify does not watch recursively on its own.
func Watch(ctx context.Context, roots []string, contentRoot string, debounce time.Duration, logger *slog.Logger, onChange func(contentOnly bool)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	absContent, err := filepath.Abs(contentRoot)
	if err != nil {
		return err
	}

	for _, root := range roots {
		if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
			logger.Debug("watcher: root missing, not watching", slog.String("path", root))
			continue
		}
		if err := addDirsRecursive(w, root); err != nil {
			return err
		}
	}

	logger.Info("watcher: started", slog.Any("roots", roots))

	var fireTimer *time.Timer
	var fireCh <-chan time.Time
	contentOnly := true

	scheduleFire := func() {
		if fireTimer == nil {
			fireTimer = time.NewTimer(debounce)
			fireCh = fireTimer.C
		} else {
			fireTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if fireTimer != nil {
				fireTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fireCh:
			onChange(contentOnly)
			contentOnly = true

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if !underDir(ev.Name, absContent) {
				contentOnly = false
			}
			logger.Debug("watcher: change",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			scheduleFire()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// addDirsRecursive adds root and every directory below it to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

func underDir(path, dir string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == dir || strings.HasPrefix(abs, dir+string(os.PathSeparator))
}
