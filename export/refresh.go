package export

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
	"github.com/loctools/figma-plugin/variants"
)

// RefreshAll rewrites every text node under asset to display the given
// variant. Nodes are refreshed concurrently; a node that cannot be
// refreshed is logged and left as is so one broken node does not hold the
// whole asset hostage. Only cancellation aborts the pass.
func (o *Orchestrator) RefreshAll(ctx context.Context, asset *scene.Node, code string) error {
	grp, ctx := errgroup.WithContext(ctx)
	for n := range scene.TextNodes(asset) {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o.RefreshNode(ctx, n, code)
			return nil
		})
	}
	return grp.Wait()
}

// RefreshNode rewrites one text node to display the given variant, falling
// back to the source variant when the node does not carry the requested
// one. Failures are logged, never propagated.
func (o *Orchestrator) RefreshNode(_ context.Context, n *scene.Node, code string) {
	text := o.vars.Get(n, code)
	if text == nil && code != common.SrcVariant {
		text = o.vars.Get(n, common.SrcVariant)
	}
	if text == nil {
		o.log.Error("No variant text for node", zap.String("node", string(n.ID)), zap.String("variant", code))
		return
	}

	// Work on a copy: attaching the node-global style table must not leak
	// into the stored variant.
	t := *text
	if t.Styles == nil && t.Ranges != nil {
		t.Styles = o.vars.Styles(n)
		if t.Styles == nil {
			o.log.Warn("Styled variant without a style table", zap.String("node", string(n.ID)))
		}
	}

	runs := o.g.Runs(n)
	if err := styled.PreloadFonts(o.g, runs, &t); err != nil {
		o.log.Error("Font preloading failed", zap.String("node", string(n.ID)), zap.Error(err))
	}

	if err := runs.SetCharacters(variants.TrimTrailingSpace(t.Text)); err != nil {
		o.log.Error("Setting characters failed", zap.String("node", string(n.ID)), zap.Error(err))
		return
	}
	if t.Ranges != nil && t.Styles != nil {
		if err := styled.ApplyStyles(o.g, runs, &t, o.log); err != nil {
			o.log.Error("Style application failed",
				zap.String("node", string(n.ID)),
				zap.String("original", o.g.Data(n).Get(common.DataID)),
				zap.Error(err))
		}
	}

	if err := o.fit.Fit(n, &t); err != nil {
		o.log.Error("Text fitting failed", zap.String("node", string(n.ID)), zap.Error(err))
	}
}
