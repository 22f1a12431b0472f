package export

import (
	"strings"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
)

// clonedDataKeys is the plugin data copied from an original component text
// node onto its instance.
var clonedDataKeys = []string{
	common.DataStyles,
	common.DataVariants,
	common.DataVariantCode,
	common.DataComments,
	common.DataIsReady,
	common.DataWasModified,
	common.DataID,
}

// EnsureOriginalIDs stamps every text node under asset with its own id.
// Interchange units are keyed by this stored id, so it must be captured
// before the asset is cloned for export. A stale stored id (the node was
// duplicated by hand) is reset to the node's real id.
func (o *Orchestrator) EnsureOriginalIDs(asset *scene.Node) {
	for n := range scene.TextNodes(asset) {
		if o.g.Data(n).Get(common.DataID) != string(n.ID) {
			o.log.Debug("Saving original node id", zap.String("node", string(n.ID)))
			o.g.Data(n).Set(common.DataID, string(n.ID))
		}
	}
}

// GuessOriginalID derives the original component node id from an instance
// node id. Instance ids chain ancestor ids with semicolons under a leading
// "I"; dropping the first hop yields the id of the node one level closer
// to the original.
func GuessOriginalID(id string) string {
	if !strings.HasPrefix(id, "I") {
		return ""
	}
	parts := strings.Split(id[1:], ";")[1:]
	if len(parts) == 0 {
		return ""
	}
	guessed := strings.Join(parts, ";")
	if len(parts) > 1 {
		guessed = "I" + guessed
	}
	return guessed
}

// backfillClonedComponentData copies plugin data onto component-instance
// text nodes that did not receive it when the asset was cloned, resolving
// each original node through its guessed id.
func (o *Orchestrator) backfillClonedComponentData(asset *scene.Node) {
	for n := range scene.TextNodes(asset) {
		if o.g.Data(n).Get(common.DataID) != "" {
			continue
		}
		guessed := GuessOriginalID(string(n.ID))
		if guessed == "" {
			o.log.Error("Cannot guess original id", zap.String("node", string(n.ID)))
			continue
		}
		orig := o.g.NodeByID(scene.NodeID(guessed))
		if orig == nil {
			o.log.Error("Guessed original node not found",
				zap.String("node", string(n.ID)), zap.String("guessed", guessed))
			continue
		}
		o.log.Debug("Copying plugin data from guessed original",
			zap.String("node", string(n.ID)), zap.String("original", guessed))
		for _, key := range clonedDataKeys {
			o.g.Data(n).Set(key, o.g.Data(orig).Get(key))
		}
	}
}
