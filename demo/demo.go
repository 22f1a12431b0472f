// Package demo drives the full export pipeline against a built-in sample
// document, so the artifact layout can be inspected without a live design
// tool connection.
package demo

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/export"
	"github.com/loctools/figma-plugin/fingerprint"
	"github.com/loctools/figma-plugin/fit"
	"github.com/loctools/figma-plugin/memscene"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/state"
	"github.com/loctools/figma-plugin/styled"
	"github.com/loctools/figma-plugin/variants"
)

// Run executes the demo subcommand.
func Run(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	out := cmd.String("out")
	if out == "" {
		out = env.Cfg.Server.DataRoot
	}

	g := SampleScene()
	vars := variants.NewStore(g, env.Log)
	fp := fingerprint.New(g, vars, env.Log, env.Cfg.Export.PreviewScale)
	orch := export.New(g, vars, fp, fit.New(g, env.Log),
		export.DirSink{Root: out}, export.NopClock{}, env.Log, export.Options{})
	orch.OnAssetsChanged = func(paths []string) {
		env.Log.Info("Asset set", zap.Strings("paths", paths))
	}

	if err := orch.Scan(ctx, true); err != nil {
		return fmt.Errorf("demo scan failed: %w", err)
	}

	env.Log.Info("Artifacts written", zap.String("dir", out))
	return filepath.WalkDir(out, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(out, path)
		fmt.Println(rel)
		return nil
	})
}

// SampleScene builds a small document: one page with one ready asset
// holding a plain greeting, a styled headline and a translated variant.
func SampleScene() *memscene.Scene {
	g := memscene.New("Demo Project")
	page := g.AddPage("Screens")

	asset := g.Add(page, &scene.Node{
		Type: scene.NodeFrame, Name: "Welcome Banner", Visible: true,
		Width: 400, Height: 200, ClipsContent: true,
		Export: []scene.ExportSetting{{Format: "PNG", Scale: 1, ContentsOnly: true}},
	})
	g.Data(asset).Set(common.DataIsReady, "1")
	g.Data(asset).Set(common.DataComments, "Main onboarding banner.\nKeep the tone friendly.")

	greeting := g.AddText(asset, "greeting", "Welcome back!", 10, 20)
	styleVariants(g, greeting)

	headline := g.AddText(asset, "headline", "Ship faster", 10, 60)
	runs := g.Runs(headline)
	_ = runs.SetRangeValue(styled.PropFontName, 0, 4,
		map[string]any{"family": "Inter", "style": "Bold"})

	return g
}

func styleVariants(g *memscene.Scene, n *scene.Node) {
	log := zap.NewNop()
	vars := variants.NewStore(g, log)
	vars.Set(n, "de", &styled.Text{Text: "Willkommen zurück!"})
	vars.Set(n, "ja", &styled.Text{Text: "おかえりなさい！"})
}
