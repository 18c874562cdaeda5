package main

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/leporo/sqlbind/internal/config"
	"github.com/leporo/sqlbind/lint"
)

// watch checks the folder and repeats the check every time
// a watched file changes, until ctx is canceled.
func watch(ctx context.Context, root string, opts *lint.Options, cfg *config.Config, out io.Writer) error {
	log := opts.Logger
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addFolders(w, root, opts); err != nil {
		return err
	}

	recheck := func() {
		report, err := check(ctx, root, opts)
		if err != nil {
			log.Error("Check failed", zap.Error(err))
			return
		}
		if err := writeReport(out, cfg.Format, report); err != nil {
			log.Error("Failed to write report", zap.Error(err))
		}
	}
	recheck()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && !opts.NoRecurse {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addFolders(w, ev.Name, opts); err != nil {
						log.Warn("Failed to watch folder", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			if !slices.Contains(cfg.Extensions, filepath.Ext(ev.Name)) {
				continue
			}
			log.Debug("File changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(cfg.Debounce)
			} else {
				timer.Reset(cfg.Debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			recheck()
		}
	}
}

func addFolders(w *fsnotify.Watcher, root string, opts *lint.Options) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (opts.NoRecurse || (opts.Ignore != nil && opts.Ignore(path))) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
