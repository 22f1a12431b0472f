package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/config"
)

func writeStatus(w http.ResponseWriter, log *zap.Logger, err error) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	if err == nil {
		body = []byte(`{"status":"ok"}`)
	} else {
		out, merr := json.Marshal(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{Status: "error", Message: err.Error()})
		if merr != nil {
			out = []byte(`{"status":"error","message":"internal error"}`)
		}
		w.WriteHeader(http.StatusInternalServerError)
		body = out
	}
	if _, werr := w.Write(body); werr != nil {
		log.Error("Writing response failed", zap.Error(werr))
	}
}

// handleAPI triggers a scan on connected clients and blocks until one of
// them reports idle.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, s.log, s.apiAction(r))
}

func (s *Server) apiAction(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}
	force := r.FormValue("force") == "1"

	ctx, cancel := context.WithTimeout(r.Context(), idleTimeout)
	defer cancel()

	switch action := r.FormValue("action"); action {
	case "scanAssets":
		if err := s.hub.Broadcast(command{Action: "scanAssets", Force: force}); err != nil {
			return err
		}
		return s.hub.WaitIdle(ctx)
	case "scanLocalizationFiles":
		if err := s.ScanLocalizationFiles(ctx, false, force); err != nil {
			return err
		}
		return s.hub.WaitIdle(ctx)
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

// handleUpload stores one artifact uploaded by a plugin client under the
// data root. Uploads into the localization tree refresh the modtime cache
// so the watcher does not echo the file back to the client that produced
// it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, s.log, s.upload(r))
}

func (s *Server) upload(r *http.Request) error {
	formFile, _, err := r.FormFile("file")
	if err != nil {
		return fmt.Errorf("failed to get uploaded file: %w", err)
	}
	defer formFile.Close()

	rel, err := sanitizeArtifactName(r.FormValue("filename"))
	if err != nil {
		return err
	}
	path := filepath.Join(s.cfg.DataRoot, rel)

	data, err := io.ReadAll(formFile)
	if err != nil {
		return fmt.Errorf("failed to read uploaded data: %w", err)
	}
	kind := "unknown"
	if t, err := filetype.Match(data); err == nil && t != filetype.Unknown {
		kind = t.MIME.Value
	}
	s.log.Info("Storing artifact",
		zap.String("file", rel), zap.Int("bytes", len(data)), zap.String("type", kind))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if !strings.HasPrefix(path, s.locDir+string(os.PathSeparator)) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	s.modMu.Lock()
	s.modTimes[path] = info.ModTime().UnixNano()
	s.modMu.Unlock()
	return nil
}

// handleProcess applies a pipeline-side event; the only kind today is the
// asset set change that triggers artifact pruning.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, s.log, s.process(r))
}

func (s *Server) process(r *http.Request) error {
	formFile, _, err := r.FormFile("file")
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	defer formFile.Close()

	data, err := io.ReadAll(formFile)
	if err != nil {
		return fmt.Errorf("failed to read event payload: %w", err)
	}

	switch kind := r.FormValue("kind"); kind {
	case "assetsChange":
		var paths []string
		if err := json.Unmarshal(data, &paths); err != nil {
			return fmt.Errorf("bad assetsChange payload: %w", err)
		}
		return s.PruneAssets(paths)
	default:
		return fmt.Errorf("unsupported kind %q", kind)
	}
}

// sanitizeArtifactName validates a client-supplied artifact path: only the
// three artifact trees are writable and every segment is cleaned of
// path-hostile characters.
func sanitizeArtifactName(name string) (string, error) {
	name = strings.Trim(filepath.ToSlash(name), "/")
	if name == "" {
		return "", errors.New("empty artifact name")
	}
	segs := strings.Split(name, "/")
	switch segs[0] {
	case "assets", "localization", "preview":
	default:
		return "", fmt.Errorf("artifact name %q outside known trees", name)
	}
	for i, seg := range segs {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("bad artifact name %q", name)
		}
		segs[i] = config.CleanFileName(seg)
	}
	return filepath.Join(segs...), nil
}
