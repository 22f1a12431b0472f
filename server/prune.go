package server

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PruneAssets deletes artifact directories that no longer correspond to any
// live asset path. Every ancestor of a live path is kept too, so only whole
// abandoned subtrees go away.
func (s *Server) PruneAssets(assetPaths []string) error {
	s.log.Info("Processing assets change event", zap.Int("assets", len(assetPaths)))
	defer s.log.Info("Done processing assets change event")

	allowed := map[string]bool{}
	for _, p := range assetPaths {
		p = strings.Trim(path.Clean(filepath.ToSlash(p)), "/")
		if p == "" || p == "." || strings.Contains(p, "..") {
			continue
		}
		for ; p != "" && p != "."; p = strings.Trim(path.Dir(p), "/") {
			allowed[p] = true
		}
	}

	var errs error
	for _, dir := range []string{s.assetsDir, s.locDir, s.previewDir} {
		errs = multierr.Append(errs, s.pruneTree(dir, allowed))
	}
	return errs
}

func (s *Server) pruneTree(root string, allowed map[string]bool) error {
	var existing []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || p == root {
			return nil
		}
		existing = append(existing, p)
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}

	var errs error
	for _, dir := range existing {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			continue
		}
		if allowed[filepath.ToSlash(rel)] {
			continue
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			// parent already removed
			continue
		}
		s.log.Info("Deleting directory and its contents", zap.String("dir", dir))
		if err := os.RemoveAll(dir); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
