package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 250 * time.Millisecond

// watchLocalizationFiles pushes translated documents to clients as soon as
// the pipeline drops them into the localization tree, instead of waiting
// for an explicit rescan request. Events are debounced into one scan pass
// because pipelines tend to land many files at once.
func (s *Server) watchLocalizationFiles(ctx context.Context) error {
	if err := os.MkdirAll(s.locDir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	addTree := func(root string) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if werr := watcher.Add(path); werr != nil {
				s.log.Warn("Cannot watch directory", zap.String("dir", path), zap.Error(werr))
			}
			return nil
		})
	}
	addTree(s.locDir)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error("Watcher error", zap.Error(err))
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					addTree(ev.Name)
					continue
				}
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if filepath.Ext(ev.Name) != ".json" {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				trigger = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case <-trigger:
			timer = nil
			trigger = nil
			if err := s.ScanLocalizationFiles(ctx, false, false); err != nil {
				s.log.Error("Localization scan failed", zap.Error(err))
			}
		}
	}
}
