package locjson_test

import (
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/locjson"
	"github.com/loctools/figma-plugin/memscene"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
	"github.com/loctools/figma-plugin/variants"
)

func buildDoc(t *testing.T, comments string) *locjson.Document {
	t.Helper()
	g := memscene.New("Demo File")
	page := g.AddPage("Main Page")
	asset := g.Add(page, &scene.Node{Type: scene.NodeFrame, Name: "Banner", Visible: true, Width: 300, Height: 200})
	log := zaptest.NewLogger(t)
	vars := variants.NewStore(g, log)

	title := g.AddText(asset, "title", "Hello", 0, 0)
	g.Data(title).Set(common.DataID, "10:1")
	vars.Set(title, common.SrcVariant, &styled.Text{Text: "Hello"})

	box := g.Add(asset, &scene.Node{Type: scene.NodeFrame, Name: "box", Visible: true, Width: 100, Height: 50})
	caption := g.AddText(box, "caption", "Hi there", 0, 0)
	g.Data(caption).Set(common.DataID, "10:2")
	vars.Set(caption, common.SrcVariant, &styled.Text{
		Text:   "Hi there",
		Ranges: []styled.Range{{Start: 0, End: 2, StyleIdx: styled.Idx(0)}, {Start: 2, End: 8, StyleIdx: styled.Idx(1)}},
	})

	// never assigned an original id: must not produce a unit
	orphan := g.AddText(asset, "orphan", "lost", 0, 100)
	vars.Set(orphan, common.SrcVariant, &styled.Text{Text: "lost"})

	return locjson.Build(g, vars, asset, "Main Page", "1:2", comments, log)
}

func unitByKey(t *testing.T, doc *locjson.Document, key string) *locjson.Unit {
	t.Helper()
	for i := range doc.Units {
		if doc.Units[i].Key == key {
			return &doc.Units[i]
		}
	}
	t.Fatalf("no unit with key %q in %+v", key, doc.Units)
	return nil
}

func TestBuild_Header(t *testing.T) {
	doc := buildDoc(t, "For the spring campaign\nKeep it short")

	want := []string{
		"This file was generated by Loctools Figma plugin.",
		"File: Demo File",
		"Page: Main Page",
		"Asset: Banner",
		"For the spring campaign",
		"Keep it short",
	}
	if !slices.Equal(doc.Properties.Comments, want) {
		t.Errorf("header comments = %q, want %q", doc.Properties.Comments, want)
	}
	if doc.Properties.AssetID != "1:2" {
		t.Errorf("asset id = %q", doc.Properties.AssetID)
	}
}

func TestBuild_Units(t *testing.T) {
	doc := buildDoc(t, "")
	if len(doc.Units) != 2 {
		t.Fatalf("got %d units, want 2 (node without original id must be skipped): %+v", len(doc.Units), doc.Units)
	}

	t.Run("plain unit", func(t *testing.T) {
		u := unitByKey(t, doc, "10:1")
		want := []string{
			"Path: title",
			"Source preview: {PREVIEW_URL_PREFIX}demo-file/main-page/banner/src.png#10:1",
		}
		if !slices.Equal(u.Properties.Comments, want) {
			t.Errorf("comments = %q, want %q", u.Properties.Comments, want)
		}
		if u.Text() != "Hello" {
			t.Errorf("Text() = %q", u.Text())
		}
	})

	t.Run("styled unit carries the markup rule", func(t *testing.T) {
		u := unitByKey(t, doc, "10:2")
		want := []string{
			"Text must be formatted according to XML rules",
			"Path: box > caption",
			"Source preview: {PREVIEW_URL_PREFIX}demo-file/main-page/banner/src.png#10:2",
		}
		if !slices.Equal(u.Properties.Comments, want) {
			t.Errorf("comments = %q, want %q", u.Properties.Comments, want)
		}
		if u.Text() != "<style0>Hi</style0><style1> there</style1>" {
			t.Errorf("Text() = %q", u.Text())
		}
	})
}

func TestBuild_LongSourceWrapped(t *testing.T) {
	g := memscene.New("f")
	page := g.AddPage("p")
	asset := g.Add(page, &scene.Node{Type: scene.NodeFrame, Name: "a", Visible: true, Width: 300, Height: 200})
	log := zaptest.NewLogger(t)
	vars := variants.NewStore(g, log)

	long := strings.Repeat("word ", 30)
	text := g.AddText(asset, "t", long, 0, 0)
	g.Data(text).Set(common.DataID, "10:9")
	vars.Set(text, common.SrcVariant, &styled.Text{Text: long})

	doc := locjson.Build(g, vars, asset, "p", "1:1", "", log)
	u := unitByKey(t, doc, "10:9")
	if len(u.Source) < 2 {
		t.Fatalf("long source not wrapped: %q", u.Source)
	}
	for i, line := range u.Source {
		if n := len([]rune(line)); n > locjson.LineLength {
			t.Errorf("line %d is %d runes long: %q", i, n, line)
		}
	}
	if u.Text() != long {
		t.Errorf("wrapped source does not rejoin: %q", u.Text())
	}
}

func TestMarshalParse(t *testing.T) {
	doc := buildDoc(t, "context")
	data, err := locjson.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("marshaled document lacks a trailing newline")
	}
	if !strings.Contains(string(data), "\n    \"properties\"") {
		t.Error("marshaled document is not four-space indented")
	}

	back, err := locjson.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !slices.Equal(back.Properties.Comments, doc.Properties.Comments) {
		t.Errorf("header comments changed in round trip: %q", back.Properties.Comments)
	}
	if len(back.Units) != len(doc.Units) {
		t.Fatalf("unit count changed: %d vs %d", len(back.Units), len(doc.Units))
	}
	for i := range doc.Units {
		if back.Units[i].Key != doc.Units[i].Key || back.Units[i].Text() != doc.Units[i].Text() {
			t.Errorf("unit %d changed: %+v vs %+v", i, back.Units[i], doc.Units[i])
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := locjson.Parse([]byte("{not json")); err == nil {
		t.Error("Parse() accepted malformed input")
	}
}
