package scene_test

import (
	"slices"
	"testing"

	"github.com/loctools/figma-plugin/memscene"
	"github.com/loctools/figma-plugin/scene"
)

func names(seq func(yield func(*scene.Node) bool)) []string {
	var out []string
	for n := range seq {
		out = append(out, n.Name)
	}
	return out
}

func TestTextNodes(t *testing.T) {
	g := memscene.New("walk test")
	page := g.AddPage("page")
	asset := g.Add(page, &scene.Node{Type: scene.NodeFrame, Name: "asset", Visible: true, Width: 200, Height: 200})

	// added out of geometric order on purpose
	g.AddText(asset, "bottom", "3", 0, 100)
	g.AddText(asset, "top right", "2", 50, 0)
	g.AddText(asset, "top left", "1", 0, 0)

	nested := g.Add(asset, &scene.Node{Type: scene.NodeGroup, Name: "group", Visible: true, Y: 50})
	g.AddText(nested, "middle", "m", 0, 0)

	hiddenText := g.AddText(asset, "hidden", "h", 10, 10)
	hiddenText.Visible = false
	hiddenGroup := g.Add(asset, &scene.Node{Type: scene.NodeGroup, Name: "hidden group", Visible: false, Y: 60})
	g.AddText(hiddenGroup, "buried", "b", 0, 0)

	t.Run("geometric order, invisible skipped", func(t *testing.T) {
		want := []string{"top left", "top right", "middle", "bottom"}
		if got := names(scene.TextNodes(asset)); !slices.Equal(got, want) {
			t.Errorf("TextNodes() = %v, want %v", got, want)
		}
	})

	t.Run("stops when yield returns false", func(t *testing.T) {
		var got []string
		for n := range scene.TextNodes(asset) {
			got = append(got, n.Name)
			if len(got) == 2 {
				break
			}
		}
		if !slices.Equal(got, []string{"top left", "top right"}) {
			t.Errorf("partial walk = %v", got)
		}
	})
}

func TestAssetNodes(t *testing.T) {
	g := memscene.New("walk test")

	p2 := g.AddPage("page 10")
	p1 := g.AddPage("page 2")
	scratch := g.AddPage(scene.ScratchPagePrefix + "export")

	g.Add(p1, &scene.Node{Type: scene.NodeFrame, Name: "b", Visible: true})
	g.Add(p1, &scene.Node{Type: scene.NodeFrame, Name: "a", Visible: true})
	g.Add(p1, &scene.Node{Type: scene.NodeFrame, Name: "hidden", Visible: false})
	g.Add(p1, &scene.Node{Type: scene.NodeGroup, Name: "group", Visible: true})
	g.Add(p2, &scene.Node{Type: scene.NodeFrame, Name: "c", Visible: true})
	g.Add(scratch, &scene.Node{Type: scene.NodeFrame, Name: "clone", Visible: true})

	t.Run("document walk orders pages naturally", func(t *testing.T) {
		// natural order puts "page 2" before "page 10"
		want := []string{"a", "b", "c"}
		if got := names(scene.AssetNodes(g, g.Root())); !slices.Equal(got, want) {
			t.Errorf("AssetNodes(document) = %v, want %v", got, want)
		}
	})

	t.Run("single page walk", func(t *testing.T) {
		want := []string{"a", "b"}
		if got := names(scene.AssetNodes(g, p1)); !slices.Equal(got, want) {
			t.Errorf("AssetNodes(page) = %v, want %v", got, want)
		}
	})

	t.Run("scratch page yields nothing", func(t *testing.T) {
		if got := names(scene.AssetNodes(g, scratch)); got != nil {
			t.Errorf("AssetNodes(scratch) = %v", got)
		}
	})
}

func TestAssetHelpers(t *testing.T) {
	g := memscene.New("helpers")
	page := g.AddPage("page")
	asset := g.Add(page, &scene.Node{Type: scene.NodeFrame, Name: "asset", Visible: true})
	inner := g.Add(asset, &scene.Node{Type: scene.NodeFrame, Name: "inner", Visible: true})
	text := g.AddText(inner, "text", "x", 0, 0)
	group := g.Add(page, &scene.Node{Type: scene.NodeGroup, Name: "group", Visible: true})

	t.Run("IsAsset", func(t *testing.T) {
		if !scene.IsAsset(g, asset) {
			t.Error("top-level frame not recognized as asset")
		}
		if scene.IsAsset(g, inner) {
			t.Error("nested frame recognized as asset")
		}
		if scene.IsAsset(g, group) {
			t.Error("group recognized as asset")
		}
	})

	t.Run("AssetOf", func(t *testing.T) {
		if got := scene.AssetOf(g, text); got != asset {
			t.Errorf("AssetOf(text) = %v", got)
		}
		if got := scene.AssetOf(g, page); got != nil {
			t.Errorf("AssetOf(page) = %v", got)
		}
	})

	t.Run("PageOf", func(t *testing.T) {
		if got := scene.PageOf(g, text); got != page {
			t.Errorf("PageOf(text) = %v", got)
		}
	})
}
