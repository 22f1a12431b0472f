// Package export drives the asset pipeline: rendering declared raster
// exports and interchange documents for every variant of an asset, change
// scanning, variant switching and ingestion of translated documents.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sink receives emitted artifacts under slash-separated relative names
// ("assets/...", "preview/...", "localization/...").
type Sink interface {
	Store(ctx context.Context, name string, data []byte) error
}

// DirSink writes artifacts into a directory tree.
type DirSink struct {
	Root string
}

func (d DirSink) Store(_ context.Context, name string, data []byte) error {
	if strings.Contains(name, "..") {
		return fmt.Errorf("refusing artifact name %q", name)
	}
	path := filepath.Join(d.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Clock abstracts the settle delays between cloning, variant refresh and
// rendering, so tests run without waiting.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// NewClock returns the wall clock.
func NewClock() Clock { return realClock{} }

// NopClock skips all settle delays.
type NopClock struct{}

func (NopClock) Sleep(context.Context, time.Duration) {}
