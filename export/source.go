package export

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
)

// UpdateSourceVariant captures the node's live styled text as its source
// variant. The style table is hoisted into node-global plugin data so
// translated variants can reference it by index without duplicating it.
// The caller is responsible for only capturing while the asset displays
// the source variant.
func (o *Orchestrator) UpdateSourceVariant(n *scene.Node) error {
	runs := o.g.Runs(n)
	if runs == nil {
		return fmt.Errorf("node %s is not a text node", n.ID)
	}
	t, err := styled.Encode(runs)
	if err != nil {
		return fmt.Errorf("capturing source text of node %s: %w", n.ID, err)
	}
	o.vars.SetStyles(n, t.Styles)
	t.Styles = nil
	o.vars.Set(n, common.SrcVariant, t)
	return nil
}

// BackfillSourceVariants captures the source variant of every text node
// that does not have one yet. The asset must be stable on the source
// variant, otherwise the live text is a translation and capturing it would
// corrupt the source.
func (o *Orchestrator) BackfillSourceVariants(asset *scene.Node) {
	if st := o.vars.State(asset); st.Transitioning || st.Code != common.SrcVariant {
		o.log.Warn("Asset is not displaying the source variant, skipping source capture",
			zap.String("asset", asset.Name))
		return
	}
	for n := range scene.TextNodes(asset) {
		if o.vars.Get(n, common.SrcVariant) != nil {
			continue
		}
		if err := o.UpdateSourceVariant(n); err != nil {
			o.log.Error("Source capture failed", zap.String("node", string(n.ID)), zap.Error(err))
		}
	}
}
