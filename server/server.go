// Package server is the companion process bridging plugin clients and the
// artifact tree on disk: it accepts uploaded artifacts, pushes scan and
// parse commands over websocket, watches localization files for edits made
// by the translation pipeline and prunes artifacts of removed assets.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/config"
)

const idleTimeout = 5 * time.Minute

type Server struct {
	cfg config.ServerConfig
	log *zap.Logger
	hub *Hub

	assetsDir  string
	locDir     string
	previewDir string

	modMu    sync.Mutex
	modTimes map[string]int64
}

func New(cfg config.ServerConfig, log *zap.Logger) *Server {
	return &Server{
		cfg:        cfg,
		log:        log,
		hub:        NewHub(log),
		assetsDir:  filepath.Join(cfg.DataRoot, "assets"),
		locDir:     filepath.Join(cfg.DataRoot, "localization"),
		previewDir: filepath.Join(cfg.DataRoot, "preview"),
		modTimes:   map[string]int64{},
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.ScanLocalizationFiles(ctx, true, false); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.hub.ServeWS)
	r.Post("/api", s.handleAPI)
	r.Get("/api", s.handleAPI)
	r.Post("/upload", s.handleUpload)
	r.Post("/process", s.handleProcess)

	srv := &http.Server{
		Addr:    s.cfg.ListenAddress,
		Handler: r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	watchErr := make(chan error, 1)
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() { watchErr <- s.watchLocalizationFiles(watchCtx) }()

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("Listening", zap.String("address", s.cfg.ListenAddress), zap.String("root", s.cfg.DataRoot))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		cancelWatch()
		return multierr.Append(err, <-watchErr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if e := <-serveErr; e != nil && !errors.Is(e, http.ErrServerClosed) {
		err = multierr.Append(err, e)
	}
	return multierr.Append(err, <-watchErr)
}
