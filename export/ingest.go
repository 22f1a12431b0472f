package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/locjson"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
)

// ApplyDocument ingests one translated interchange document. relPath is the
// document's path below the localization root ("project/page/asset/de.json");
// its last segment names the variant, the rest must still match the asset's
// live path, otherwise the file describes a renamed or moved asset and is
// stale.
//
// Units whose text did not change are left alone. A unit with malformed
// markup is skipped so the rest of the file still lands. When anything was
// updated the affected variant is re-exported.
func (o *Orchestrator) ApplyDocument(ctx context.Context, relPath string, raw []byte) error {
	doc, err := locjson.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", relPath, err)
	}
	if doc.Properties.AssetID == "" {
		return fmt.Errorf("%s: document carries no asset id", relPath)
	}
	asset := o.g.NodeByID(scene.NodeID(doc.Properties.AssetID))
	if asset == nil {
		return fmt.Errorf("%s: asset node %s not found", relPath, doc.Properties.AssetID)
	}

	dir, file := splitDocPath(relPath)
	variant := strings.TrimSuffix(file, ".json")
	if variant == "" {
		return fmt.Errorf("%s: cannot derive variant from path", relPath)
	}

	livePath := strings.Join(scene.AssetPath(o.g, asset, ""), "/")
	if dir != livePath {
		o.log.Warn("Document path does not match the asset's current path, file is stale",
			zap.String("document", dir), zap.String("asset", livePath))
		return nil
	}
	if variant == common.SrcVariant {
		o.log.Debug("Ignoring changes to the source variant document", zap.String("path", relPath))
		return nil
	}
	if len(doc.Units) == 0 {
		o.log.Warn("Document has no units", zap.String("path", relPath))
		return nil
	}

	assetCode := o.vars.State(asset)

	updated := false
	for _, u := range doc.Units {
		node := o.g.NodeByID(scene.NodeID(u.Key))
		if node == nil || o.g.Runs(node) == nil {
			o.log.Warn("Unit references an unknown text node", zap.String("key", u.Key))
			continue
		}
		text := u.Text()

		old, _ := o.vars.Rendered(node, variant)
		if old == text {
			continue
		}

		src := o.vars.Get(node, common.SrcVariant)
		isMarkup := src != nil && len(src.Ranges) > 0
		if !isMarkup && strings.Contains(text, "<style0>") {
			o.log.Warn("Variant text carries style markup but the source is plain",
				zap.String("key", u.Key))
		}

		var parsed *styled.Text
		if isMarkup {
			parsed, err = styled.DecodeMarkup(text)
			if err != nil {
				if errors.Is(err, styled.ErrMarkup) {
					o.log.Warn("Skipping unit with malformed markup",
						zap.String("key", u.Key), zap.String("text", text), zap.Error(err))
					continue
				}
				return fmt.Errorf("%s: unit %s: %w", relPath, u.Key, err)
			}
		} else {
			parsed = &styled.Text{Text: text}
		}

		o.log.Info("Updating variant text",
			zap.String("key", u.Key), zap.String("variant", variant))
		o.vars.Set(node, variant, parsed)
		if !assetCode.Transitioning && assetCode.Code == variant {
			o.RefreshNode(ctx, node, variant)
		}
		updated = true
	}

	if !updated {
		return nil
	}
	o.log.Info("Variant text updated, re-exporting", zap.String("asset", asset.Name), zap.String("variant", variant))
	return o.ExportAsset(ctx, asset, variant)
}

func splitDocPath(relPath string) (dir, file string) {
	relPath = strings.Trim(strings.ReplaceAll(relPath, "\\", "/"), "/")
	i := strings.LastIndexByte(relPath, '/')
	if i < 0 {
		return "", relPath
	}
	return relPath[:i], relPath[i+1:]
}
