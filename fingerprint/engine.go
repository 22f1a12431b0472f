package fingerprint

import (
	"fmt"
	"hash/crc32"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/variants"
)

type Engine struct {
	g            scene.Graph
	vars         *variants.Store
	log          *zap.Logger
	previewScale float64
}

func New(g scene.Graph, vars *variants.Store, log *zap.Logger, previewScale float64) *Engine {
	return &Engine{g: g, vars: vars, log: log, previewScale: previewScale}
}

// Asset fingerprints one asset node: a low-resolution render seeds the hash
// so purely visual edits are caught, then every visible text node folds in
// its source text, its own attributes and its direct frame container's
// attributes, and finally the asset's translator comments.
func (e *Engine) Asset(asset *scene.Node) (int32, error) {
	preview, err := e.g.Render(asset, scene.ExportSetting{Format: "PNG", Scale: e.previewScale, ContentsOnly: true})
	if err != nil {
		return 0, fmt.Errorf("rendering %q for fingerprinting: %w", asset.Name, err)
	}
	h := int32(crc32.ChecksumIEEE(preview))

	for n := range scene.TextNodes(asset) {
		text, markup := e.vars.Rendered(n, common.SrcVariant)
		h = HashValue(h, map[string]any{"markup": markup, "text": text}, e.log)
		h = HashValue(h, n.Attributes(), e.log)
		if p := e.g.Parent(n); p != nil && p.Type == scene.NodeFrame {
			h = HashValue(h, p.Attributes(), e.log)
		}
	}

	return HashString(h, e.g.Data(asset).Get(common.DataComments)), nil
}

// AssetSet fingerprints the set of qualifying asset paths. Input order does
// not matter.
func (e *Engine) AssetSet(paths []string) int32 {
	sorted := append([]string(nil), paths...)
	slices.Sort(sorted)
	return HashValue(0, sorted, e.log)
}

// Stored reads a fingerprint previously persisted under key.
func (e *Engine) Stored(key string) (int32, bool) {
	raw, ok := e.g.Storage().Get(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		e.log.Warn("Discarding unreadable stored fingerprint", zap.String("key", key), zap.String("value", raw))
		return 0, false
	}
	return int32(v), true
}

// Store persists a fingerprint under key.
func (e *Engine) Store(key string, v int32) error {
	return e.g.Storage().Set(key, strconv.FormatInt(int64(v), 10))
}
