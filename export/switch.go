package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/variants"
)

// SwitchVariant makes the asset containing n display the given variant in
// place. When leaving the source variant the live text is captured first,
// so switching back restores it exactly. A switch racing a switch already
// in flight is refused.
func (o *Orchestrator) SwitchVariant(ctx context.Context, n *scene.Node, code string) error {
	asset := scene.AssetOf(o.g, n)
	if asset == nil {
		return fmt.Errorf("node %s does not belong to an exportable asset", n.ID)
	}

	st := o.vars.State(asset)
	if st.Transitioning {
		return fmt.Errorf("switching %q to %s: %w", asset.Name, code, variants.ErrTransitioning)
	}
	if st.Code == code {
		o.log.Debug("Asset already displays the target variant",
			zap.String("asset", asset.Name), zap.String("variant", code))
		return nil
	}
	if st.Code == common.SrcVariant {
		o.BackfillSourceVariants(asset)
	}

	if err := o.vars.BeginTransition(asset); err != nil {
		return err
	}
	if err := o.RefreshAll(ctx, asset, code); err != nil {
		// Leave the asset marked transitioning: its nodes are in a mixed
		// state and must not be scanned or captured as source.
		return fmt.Errorf("switching %q to %s: %w", asset.Name, code, err)
	}
	o.vars.EndTransition(asset, code)
	return nil
}
