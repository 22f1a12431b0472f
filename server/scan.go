package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ScanLocalizationFiles walks the localization tree and pushes every
// changed document to connected clients for parsing. initialize only
// primes the modtime cache; force pushes unchanged files too.
func (s *Server) ScanLocalizationFiles(ctx context.Context, initialize, force bool) error {
	if !initialize && s.hub.Clients() == 0 {
		s.log.Info("No clients connected; will skip scanning for changes")
		return nil
	}

	s.log.Info("Scanning localization files for changes")
	defer s.log.Info("Done scanning localization files for changes")

	if !initialize {
		if err := s.hub.Broadcast(command{Action: "startOfFileParsing"}); err != nil {
			return err
		}
		defer func() {
			if err := s.hub.Broadcast(command{Action: "endOfFileParsing"}); err != nil {
				s.log.Error("Broadcast failed", zap.Error(err))
			}
		}()
	}

	err := filepath.WalkDir(s.locDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		t := info.ModTime().UnixNano()

		s.modMu.Lock()
		known := s.modTimes[path]
		s.modTimes[path] = t
		s.modMu.Unlock()

		if initialize {
			return nil
		}
		if known != t {
			s.log.Info("File has changed", zap.String("file", path))
			return s.pushLocalizationFile(path)
		}
		if force {
			s.log.Info("Pushing unchanged file (forced mode)", zap.String("file", path))
			return s.pushLocalizationFile(path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// pushLocalizationFile sends one document to the clients, path relative to
// the localization root.
func (s *Server) pushLocalizationFile(path string) error {
	rel, err := filepath.Rel(s.locDir, path)
	if err != nil {
		return fmt.Errorf("unexpected file path %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.hub.Broadcast(command{
		Action: "parseFile",
		Path:   filepath.ToSlash(rel),
		Data:   string(data),
	})
}
