package export

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
)

// Scan walks every qualifying asset in the document and re-exports the
// ones whose fingerprint moved since the last scan, plus the ones manually
// marked as modified. force exports everything regardless.
//
// Assets switched away from the source variant are skipped: their live
// text is a translation and fingerprinting it would thrash the stored
// fingerprints. A per-asset export failure is logged and leaves the old
// fingerprint in place, so the asset is retried on the next scan.
func (o *Orchestrator) Scan(ctx context.Context, force bool) error {
	var (
		paths []string
		todo  []*scene.Node
	)
	for asset := range scene.AssetNodes(o.g, o.g.Root()) {
		// The path list covers every asset, ready or not, so downstream
		// artifact pruning sees the full picture.
		paths = append(paths, strings.Join(scene.AssetPath(o.g, asset, ""), "/"))

		if o.g.Data(asset).Get(common.DataIsReady) != "1" {
			continue
		}
		if st := o.vars.State(asset); st.Transitioning || st.Code != common.SrcVariant {
			o.log.Info("Asset is switched to a non-source variant, skipping",
				zap.String("asset", asset.Name))
			continue
		}
		todo = append(todo, asset)
	}

	setFP := o.fp.AssetSet(paths)
	oldSetFP, ok := o.fp.Stored(common.StorageAssetsFingerprint)
	if force || !ok || setFP != oldSetFP {
		if o.OnAssetsChanged != nil {
			o.OnAssetsChanged(paths)
		}
		if err := o.fp.Store(common.StorageAssetsFingerprint, setFP); err != nil {
			return err
		}
	}

	for i, asset := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.log.Info("Scanning asset",
			zap.Int("index", i+1), zap.Int("total", len(todo)),
			zap.String("id", string(asset.ID)), zap.String("asset", asset.Name))

		wasModified := o.g.Data(asset).Get(common.DataWasModified) == "1"
		key := common.StorageAssetFingerprintPrefix + string(asset.ID)

		cur, err := o.fp.Asset(asset)
		if err != nil {
			o.log.Error("Fingerprinting failed, skipping asset",
				zap.String("asset", asset.Name), zap.Error(err))
			continue
		}
		old, ok := o.fp.Stored(key)
		if !wasModified && !force && ok && cur == old {
			continue
		}
		switch {
		case force:
			o.log.Info("Forced mode, exporting asset", zap.String("asset", asset.Name))
		case wasModified:
			o.log.Info("Asset was manually marked as modified, exporting", zap.String("asset", asset.Name))
		default:
			o.log.Info("Asset fingerprint has changed, exporting", zap.String("asset", asset.Name))
		}

		if err := o.ExportAsset(ctx, asset, ""); err != nil {
			if ctx.Err() != nil {
				return err
			}
			o.log.Error("Asset export failed", zap.String("asset", asset.Name), zap.Error(err))
			continue
		}
		if err := o.fp.Store(key, cur); err != nil {
			return err
		}
		if wasModified {
			o.g.Data(asset).Set(common.DataWasModified, "")
		}
	}
	return nil
}
