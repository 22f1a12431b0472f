package export

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/fingerprint"
	"github.com/loctools/figma-plugin/fit"
	"github.com/loctools/figma-plugin/locjson"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/variants"
)

// Options tune the export pipeline. The settle delays mirror host quirks:
// a freshly created page and a freshly refreshed layout both need a moment
// before rendering is trustworthy.
type Options struct {
	PageSettle   time.Duration
	LayoutSettle time.Duration
}

type Orchestrator struct {
	g     scene.Graph
	vars  *variants.Store
	fp    *fingerprint.Engine
	fit   *fit.Fitter
	sink  Sink
	clock Clock
	log   *zap.Logger
	opts  Options

	// OnAssetsChanged, when set, receives the full asset path list every
	// time the set of assets changes during a scan.
	OnAssetsChanged func(paths []string)
}

func New(g scene.Graph, vars *variants.Store, fp *fingerprint.Engine, fitter *fit.Fitter,
	sink Sink, clock Clock, log *zap.Logger, opts Options) *Orchestrator {
	if clock == nil {
		clock = NewClock()
	}
	return &Orchestrator{g: g, vars: vars, fp: fp, fit: fitter, sink: sink, clock: clock, log: log, opts: opts}
}

// ExportAsset renders and emits every artifact of one asset: raster exports
// and a preview per variant, plus the interchange document for the source
// variant. variant narrows the run to a single variant code; empty exports
// them all.
//
// The asset itself is never touched: a clone on a scratch page does the
// variant switching, and the scratch page is removed no matter how the
// export ends.
func (o *Orchestrator) ExportAsset(ctx context.Context, asset *scene.Node, variant string) (err error) {
	if !scene.IsAsset(o.g, asset) {
		return fmt.Errorf("node %s is not an exportable asset", asset.ID)
	}
	if o.g.Data(asset).Get(common.DataIsReady) != "1" {
		o.log.Info("Asset is not marked ready for translation, skipping", zap.String("asset", asset.Name))
		return nil
	}

	o.EnsureOriginalIDs(asset)
	o.BackfillSourceVariants(asset)

	page := scene.PageOf(o.g, asset)
	comments := o.g.Data(asset).Get(common.DataComments)

	scratch := o.g.CreatePage(scene.ScratchPagePrefix + uuid.NewString())
	prevPage := o.g.CurrentPage()
	prevSelection := o.g.Selection()
	// The host loads fonts for the current page only.
	o.g.SetCurrentPage(scratch)
	defer func() {
		o.g.SetCurrentPage(prevPage)
		o.g.SetSelection(prevSelection)
		o.log.Debug("Removing scratch page", zap.String("page", scratch.Name))
		o.g.Remove(scratch)
	}()

	clone := o.g.Clone(asset)
	o.g.AppendChild(scratch, clone)
	o.g.SetSelection([]*scene.Node{clone})
	o.backfillClonedComponentData(clone)

	o.clock.Sleep(ctx, o.opts.PageSettle)
	if err := ctx.Err(); err != nil {
		return err
	}

	codes := []string{variant}
	if variant == "" {
		codes = o.vars.ForAsset(asset)
	}
	for _, code := range codes {
		o.log.Info("Exporting asset variant", zap.String("asset", asset.Name), zap.String("variant", code))
		if err := o.vars.BeginTransition(clone); err != nil {
			return err
		}
		if err := o.RefreshAll(ctx, clone, code); err != nil {
			return err
		}
		o.vars.EndTransition(clone, code)

		o.clock.Sleep(ctx, o.opts.LayoutSettle)
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := o.exportImages(ctx, clone, page.Name); err != nil {
			return err
		}

		if code == common.SrcVariant {
			doc := locjson.Build(o.g, o.vars, clone, page.Name, string(asset.ID), comments, o.log)
			data, err := locjson.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshaling document for %q: %w", asset.Name, err)
			}
			path := append(scene.AssetPath(o.g, asset, page.Name), common.SrcVariant)
			name := "localization/" + strings.Join(path, "/") + ".json"
			if err := o.sink.Store(ctx, name, data); err != nil {
				return fmt.Errorf("storing %s: %w", name, err)
			}
		}
	}
	return nil
}

// exportImages renders the asset's declared exports plus a clipped,
// shadow-free preview for the variant it currently displays, and emits
// them with a sidecar JSON mapping original text node ids to their pixel
// rectangles within the preview.
func (o *Orchestrator) exportImages(ctx context.Context, asset *scene.Node, pageName string) error {
	code := o.vars.State(asset).Code
	if code == "" {
		code = common.SrcVariant
	}
	filePath := append(scene.AssetPath(o.g, asset, pageName), code)
	base := strings.Join(filePath, "/")

	var dropShadows []int
	for i, e := range asset.Effects {
		if e.Type == scene.EffectDropShadow && e.Visible {
			dropShadows = append(dropShadows, i)
		}
	}

	var preview []byte
	for _, es := range asset.Export {
		bytes, err := o.g.Render(asset, es)
		if err != nil {
			return fmt.Errorf("rendering %q: %w", asset.Name, err)
		}
		name := "assets/" + base + es.Suffix + "." + strings.ToLower(es.Format)
		if err := o.sink.Store(ctx, name, bytes); err != nil {
			return fmt.Errorf("storing %s: %w", name, err)
		}
		if preview == nil && es.Format == "PNG" && es.ContentsOnly &&
			asset.ClipsContent && len(dropShadows) == 0 {
			o.log.Debug("Reusing preview-compatible export", zap.String("asset", asset.Name))
			preview = bytes
		}
	}

	if preview == nil {
		scale := 1.0
		if len(asset.Export) > 0 && asset.Export[0].Scale > 0 {
			scale = asset.Export[0].Scale
		}
		restoreClip := false
		if !asset.ClipsContent {
			asset.ClipsContent = true
			restoreClip = true
		}
		for _, i := range dropShadows {
			asset.Effects[i].Visible = false
		}
		bytes, err := o.g.Render(asset, scene.ExportSetting{Format: "PNG", Scale: scale, ContentsOnly: true})
		if restoreClip {
			asset.ClipsContent = false
		}
		for _, i := range dropShadows {
			asset.Effects[i].Visible = true
		}
		if err != nil {
			return fmt.Errorf("rendering preview of %q: %w", asset.Name, err)
		}
		preview = bytes
	}

	if err := o.sink.Store(ctx, "preview/"+base+".png", preview); err != nil {
		return fmt.Errorf("storing preview: %w", err)
	}

	rects := map[string][4]int{}
	for n := range scene.TextNodes(asset) {
		origID := o.g.Data(n).Get(common.DataID)
		if origID == "" {
			o.log.Error("Text node has no original id, skipping preview rect", zap.String("node", string(n.ID)))
			continue
		}
		x, y := o.absolutePosition(n, asset)
		rects[origID] = [4]int{
			int(math.Round(x)),
			int(math.Round(y)),
			int(math.Round(n.Width)),
			int(math.Round(n.Height)),
		}
	}
	data, err := json.MarshalIndent(rects, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling preview rects: %w", err)
	}
	return o.sink.Store(ctx, "preview/"+base+".json", append(data, '\n'))
}

// absolutePosition sums parent-relative offsets of n up to (excluding)
// ancestor.
func (o *Orchestrator) absolutePosition(n, ancestor *scene.Node) (x, y float64) {
	for cur := n; cur != nil && cur != ancestor; cur = o.g.Parent(cur) {
		x += cur.X
		y += cur.Y
	}
	return x, y
}
