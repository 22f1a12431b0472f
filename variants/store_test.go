package variants_test

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/memscene"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
	"github.com/loctools/figma-plugin/variants"
)

type fixture struct {
	g     *memscene.Scene
	store *variants.Store
	asset *scene.Node
	text1 *scene.Node
	text2 *scene.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := memscene.New("variants test")
	page := g.AddPage("page one")
	asset := g.Add(page, &scene.Node{Type: scene.NodeFrame, Name: "banner", Visible: true, Width: 300, Height: 100})
	return &fixture{
		g:     g,
		store: variants.NewStore(g, zaptest.NewLogger(t)),
		asset: asset,
		text1: g.AddText(asset, "title", "Hello", 0, 0),
		text2: g.AddText(asset, "subtitle", "World", 0, 40),
	}
}

func TestStore_SetGet(t *testing.T) {
	f := newFixture(t)

	if got := f.store.Get(f.text1, "de"); got != nil {
		t.Fatalf("Get() on empty store = %+v", got)
	}

	f.store.Set(f.text1, "de", &styled.Text{Text: "Hallo"})
	got := f.store.Get(f.text1, "de")
	if got == nil || got.Text != "Hallo" {
		t.Fatalf("Get() = %+v, want Hallo", got)
	}

	// empty text removes the entry
	f.store.Set(f.text1, "de", &styled.Text{})
	if got := f.store.Get(f.text1, "de"); got != nil {
		t.Errorf("Get() after delete = %+v", got)
	}
}

func TestStore_CodesAndForAsset(t *testing.T) {
	f := newFixture(t)
	f.store.Set(f.text1, common.SrcVariant, &styled.Text{Text: "Hello"})
	f.store.Set(f.text1, "de", &styled.Text{Text: "Hallo"})
	f.store.Set(f.text2, "ja", &styled.Text{Text: "世界"})

	if got := f.store.Codes(f.text1); !slices.Equal(got, []string{"de", "src"}) {
		t.Errorf("Codes() = %v", got)
	}
	if got := f.store.ForAsset(f.asset); !slices.Equal(got, []string{"de", "ja", "src"}) {
		t.Errorf("ForAsset() = %v", got)
	}
}

func TestStore_Rendered(t *testing.T) {
	f := newFixture(t)

	t.Run("falls back to live characters", func(t *testing.T) {
		text, markup := f.store.Rendered(f.text1, "de")
		if text != "Hello" || markup {
			t.Errorf("Rendered() = %q markup=%v", text, markup)
		}
	})

	t.Run("plain variant", func(t *testing.T) {
		f.store.Set(f.text1, "de", &styled.Text{Text: "Hallo"})
		text, markup := f.store.Rendered(f.text1, "de")
		if text != "Hallo" || markup {
			t.Errorf("Rendered() = %q markup=%v", text, markup)
		}
	})

	t.Run("styled variant renders markup", func(t *testing.T) {
		f.store.Set(f.text1, "fr", &styled.Text{
			Text:   "Salut",
			Ranges: []styled.Range{{Start: 0, End: 5, StyleIdx: styled.Idx(0)}},
		})
		text, markup := f.store.Rendered(f.text1, "fr")
		if text != "<style0>Salut</style0>" || !markup {
			t.Errorf("Rendered() = %q markup=%v", text, markup)
		}
	})
}

func TestStore_State(t *testing.T) {
	f := newFixture(t)

	if st := f.store.State(f.asset); st.Code != common.SrcVariant || st.Transitioning {
		t.Fatalf("fresh asset state = %+v", st)
	}

	if err := f.store.BeginTransition(f.asset); err != nil {
		t.Fatalf("BeginTransition() error = %v", err)
	}
	if st := f.store.State(f.asset); !st.Transitioning {
		t.Fatalf("state after BeginTransition = %+v", st)
	}

	// a second switch while one is in flight is refused
	if err := f.store.BeginTransition(f.asset); !errors.Is(err, variants.ErrTransitioning) {
		t.Fatalf("concurrent BeginTransition() error = %v, want ErrTransitioning", err)
	}

	f.store.EndTransition(f.asset, "de")
	if st := f.store.State(f.asset); st.Code != "de" || st.Transitioning {
		t.Fatalf("state after EndTransition = %+v", st)
	}
}

func TestStore_Manage(t *testing.T) {
	seed := func(t *testing.T) *fixture {
		f := newFixture(t)
		f.store.Set(f.text1, common.SrcVariant, &styled.Text{Text: "Hello"})
		f.store.Set(f.text2, common.SrcVariant, &styled.Text{Text: "World"})
		return f
	}

	t.Run("add seeds from source", func(t *testing.T) {
		f := seed(t)
		if err := f.store.Manage(common.ScopeAsset, common.ActionAdd, f.text1, "de"); err != nil {
			t.Fatalf("Manage() error = %v", err)
		}
		for _, n := range []*scene.Node{f.text1, f.text2} {
			got := f.store.Get(n, "de")
			if got == nil || got.Text != f.store.Get(n, common.SrcVariant).Text {
				t.Errorf("node %s de variant = %+v", n.Name, got)
			}
		}
	})

	t.Run("add does not overwrite", func(t *testing.T) {
		f := seed(t)
		f.store.Set(f.text1, "de", &styled.Text{Text: "Hallo"})
		if err := f.store.Manage(common.ScopeNode, common.ActionAdd, f.text1, "de"); err != nil {
			t.Fatalf("Manage() error = %v", err)
		}
		if got := f.store.Get(f.text1, "de"); got.Text != "Hallo" {
			t.Errorf("existing variant overwritten: %+v", got)
		}
	})

	t.Run("remove", func(t *testing.T) {
		f := seed(t)
		f.store.Set(f.text1, "de", &styled.Text{Text: "Hallo"})
		if err := f.store.Manage(common.ScopeNode, common.ActionRemove, f.text1, "de"); err != nil {
			t.Fatalf("Manage() error = %v", err)
		}
		if f.store.Get(f.text1, "de") != nil {
			t.Error("variant still present after remove")
		}
	})

	t.Run("source variant cannot be removed", func(t *testing.T) {
		f := seed(t)
		for _, scope := range []common.ManageScope{common.ScopeNode, common.ScopeAsset, common.ScopePage} {
			err := f.store.Manage(scope, common.ActionRemove, f.text1, common.SrcVariant)
			if !errors.Is(err, variants.ErrSourceVariant) {
				t.Errorf("scope %v: error = %v, want ErrSourceVariant", scope, err)
			}
		}
		if f.store.Get(f.text1, common.SrcVariant) == nil {
			t.Error("source variant lost")
		}
	})

	t.Run("remove other keeps source and target", func(t *testing.T) {
		f := seed(t)
		f.store.Set(f.text1, "de", &styled.Text{Text: "Hallo"})
		f.store.Set(f.text1, "fr", &styled.Text{Text: "Salut"})
		f.store.Set(f.text1, "ja", &styled.Text{Text: "やあ"})
		if err := f.store.Manage(common.ScopeNode, common.ActionRemoveOther, f.text1, "de"); err != nil {
			t.Fatalf("Manage() error = %v", err)
		}
		if got := f.store.Codes(f.text1); !slices.Equal(got, []string{"de", "src"}) {
			t.Errorf("Codes() after remove_other = %v", got)
		}
	})

	t.Run("page scope touches every asset", func(t *testing.T) {
		f := seed(t)
		page := scene.PageOf(f.g, f.asset)
		other := f.g.Add(page, &scene.Node{Type: scene.NodeFrame, Name: "other", Visible: true, Width: 100, Height: 50})
		text3 := f.g.AddText(other, "label", "Bye", 0, 0)
		f.store.Set(text3, common.SrcVariant, &styled.Text{Text: "Bye"})

		if err := f.store.Manage(common.ScopePage, common.ActionAdd, f.text1, "de"); err != nil {
			t.Fatalf("Manage() error = %v", err)
		}
		if f.store.Get(text3, "de") == nil {
			t.Error("asset on same page missed by page scope")
		}
	})

	t.Run("node scope requires text node", func(t *testing.T) {
		f := seed(t)
		if err := f.store.Manage(common.ScopeNode, common.ActionAdd, f.asset, "de"); err == nil {
			t.Error("Manage() accepted non-text node for node scope")
		}
	})
}
