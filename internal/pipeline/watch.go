// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pdiddy/literate/pkg/types"
)

// DefaultDebounce is how long Watch waits after the last change before
// exporting.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions tunes Watch.
type WatchOptions struct {
	Options
	Debounce time.Duration

	// OnBatch, when set, is called after every batch. Tests use it to wait
	// for exports.
	OnBatch func(BatchResult)
}

// Watch exports every notebook once and then re-exports notebooks as they
// change until ctx is done. Changes arriving within the debounce window are
// coalesced into one batch.
func Watch(ctx context.Context, cfg types.ProjectConfig, opts WatchOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer w.Close()

	root := cfg.SourcePath()
	if err := addTree(w, root, cfg); err != nil {
		return err
	}
	log.Info("watching notebooks", zap.String("dir", root))

	run := func(paths []string) error {
		res, err := RunBatch(ctx, cfg, paths, opts.Options)
		if err != nil {
			return err
		}
		if opts.OnBatch != nil {
			opts.OnBatch(res)
		}
		return nil
	}

	all, err := Discover(cfg)
	if err != nil {
		return err
	}
	if err := run(all); err != nil {
		return err
	}

	pending := map[string]bool{}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isWatchableDir(event.Name, cfg) {
				if err := addTree(w, event.Name, cfg); err != nil {
					log.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
				}
				continue
			}
			if filepath.Ext(event.Name) != ".ipynb" || strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("notebook changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			pending[event.Name] = true
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", zap.Error(err))

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				if fileExists(p) {
					paths = append(paths, p)
				}
			}
			clear(pending)
			if len(paths) == 0 {
				continue
			}
			sort.Strings(paths)
			if err := run(paths); err != nil {
				log.Error("export failed", zap.Error(err))
			}
		}
	}
}

// addTree watches dir and its non-hidden subdirectories, except the code
// and doc directories.
func addTree(w *fsnotify.Watcher, dir string, cfg types.ProjectConfig) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && !isWatchableDir(path, cfg) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func isWatchableDir(path string, cfg types.ProjectConfig) bool {
	if !dirExists(path) || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	roots := []string{filepath.Clean(cfg.CodePath())}
	if d := cfg.DocPath(); d != "" {
		roots = append(roots, filepath.Clean(d))
	}
	return !excluded(path, roots)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
