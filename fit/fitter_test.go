package fit_test

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/loctools/figma-plugin/fit"
	"github.com/loctools/figma-plugin/memscene"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
)

// label builds the canonical fixed-label construction the fitter targets:
// a frame of the given extent with a single auto-resizing text child at
// the frame origin.
func label(t *testing.T, chars string, frameW, frameH float64, mode scene.AutoResize) (*memscene.Scene, *scene.Node, *scene.Node) {
	t.Helper()
	g := memscene.New("fit test")
	page := g.AddPage("page")
	frame := g.Add(page, &scene.Node{Type: scene.NodeFrame, Name: "label", Visible: true, Width: frameW, Height: frameH})
	text := g.AddText(frame, "text", "", 0, 0)
	text.AutoResize = mode
	if err := g.Runs(text).SetCharacters(chars); err != nil {
		t.Fatal(err)
	}
	return g, frame, text
}

func TestFit_LeavesFittingTextAlone(t *testing.T) {
	g, _, text := label(t, "short", 80, 20, scene.ResizeWidthAndHeight)
	f := fit.New(g, zaptest.NewLogger(t))

	if err := f.Fit(text, &styled.Text{Text: "short"}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := g.Runs(text).Characters(); got != "short" {
		t.Errorf("fitting text was modified: %q", got)
	}
}

func TestFit_SkipsIneligibleLayouts(t *testing.T) {
	long := strings.Repeat("overflow ", 5)

	t.Run("fixed-size text node", func(t *testing.T) {
		g, _, text := label(t, long, 80, 20, scene.ResizeNone)
		f := fit.New(g, zaptest.NewLogger(t))
		if err := f.Fit(text, &styled.Text{Text: long}); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		if got := g.Runs(text).Characters(); got != long {
			t.Errorf("text modified: %q", got)
		}
	})

	t.Run("text offset from origin", func(t *testing.T) {
		g, _, text := label(t, long, 80, 20, scene.ResizeWidthAndHeight)
		text.X = 10
		f := fit.New(g, zaptest.NewLogger(t))
		if err := f.Fit(text, &styled.Text{Text: long}); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		if got := g.Runs(text).Characters(); got != long {
			t.Errorf("text modified: %q", got)
		}
	})

	t.Run("sibling in the container", func(t *testing.T) {
		g, frame, text := label(t, long, 80, 20, scene.ResizeWidthAndHeight)
		g.AddText(frame, "sibling", "x", 0, 0)
		f := fit.New(g, zaptest.NewLogger(t))
		if err := f.Fit(text, &styled.Text{Text: long}); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		if got := g.Runs(text).Characters(); got != long {
			t.Errorf("text modified: %q", got)
		}
	})
}

func TestFit_TrimsToEllipsis(t *testing.T) {
	// The default measure grants 8 units per character, so an 80-wide
	// frame holds exactly 10: a 9-rune prefix plus the ellipsis.
	long := "Hello wonderful world"
	g, frame, text := label(t, long, 80, 20, scene.ResizeWidthAndHeight)
	f := fit.New(g, zaptest.NewLogger(t))

	if err := f.Fit(text, &styled.Text{Text: long}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	got := g.Runs(text).Characters()
	if got != "Hello won…" {
		t.Errorf("trimmed text = %q, want %q", got, "Hello won…")
	}
	if text.Width > frame.Width || text.Height > frame.Height {
		t.Errorf("trimmed node %gx%g still overflows %gx%g frame",
			text.Width, text.Height, frame.Width, frame.Height)
	}
}

func TestFit_AutoHeightIgnoresWidth(t *testing.T) {
	// An Auto Height node has a pinned width, so only vertical overflow
	// counts: the second line must go, the long first line may stay.
	long := "line one\nline two"
	g, _, text := label(t, long, 40, 14, scene.ResizeHeight)
	f := fit.New(g, zaptest.NewLogger(t))

	if err := f.Fit(text, &styled.Text{Text: long}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	got := g.Runs(text).Characters()
	if strings.Contains(got, "\n") {
		t.Errorf("trimmed text still spans lines: %q", got)
	}
	if got != "line one…" {
		t.Errorf("trimmed text = %q, want %q", got, "line one…")
	}
}

func TestFit_KeepsLastFitWhenNothingFits(t *testing.T) {
	// A frame too narrow even for the ellipsis alone: the search never
	// finds a fitting prefix and falls back to the shortest form.
	long := "unfittable"
	g, _, text := label(t, long, 4, 20, scene.ResizeWidthAndHeight)
	f := fit.New(g, zaptest.NewLogger(t))

	if err := f.Fit(text, &styled.Text{Text: long}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := g.Runs(text).Characters(); got != "…" {
		t.Errorf("fallback text = %q, want bare ellipsis", got)
	}
}

func TestFit_MeasuresLogarithmically(t *testing.T) {
	long := strings.Repeat("a", 200)
	g, _, text := label(t, long, 80, 20, scene.ResizeWidthAndHeight)

	var measures int
	g.SetMeasure(func(n *scene.Node, s string) (float64, float64) {
		measures++
		return memscene.DefaultMeasure(n, s)
	})
	f := fit.New(g, zaptest.NewLogger(t))
	if err := f.Fit(text, &styled.Text{Text: long}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Each probe costs at most two measurements (delete and insert); a
	// per-character walk over 200 runes would be an order of magnitude more.
	if measures > 40 {
		t.Errorf("%d measurements for a 200-rune string, expected a binary search", measures)
	}
	if got := g.Runs(text).Characters(); len([]rune(got)) != 10 {
		t.Errorf("trimmed to %d runes, want 10: %q", len([]rune(got)), got)
	}
}

func TestFit_ReappliesStylingToTrimmedHead(t *testing.T) {
	long := "Hello wonderful world"
	g, _, text := label(t, long, 80, 20, scene.ResizeWidthAndHeight)
	f := fit.New(g, zaptest.NewLogger(t))

	styledText := &styled.Text{
		Text: long,
		Ranges: []styled.Range{
			{Start: 0, End: 5, StyleIdx: styled.Idx(1)},
			{Start: 5, End: 21, StyleIdx: styled.Idx(0)},
		},
		Styles: []styled.Style{
			{styled.PropFontSize: 12.0},
			{styled.PropFontSize: 24.0},
		},
	}
	runs := g.Runs(text)
	if err := styled.ApplyStyles(g, runs, styledText, zaptest.NewLogger(t)); err != nil {
		t.Fatal(err)
	}
	if err := f.Fit(text, styledText); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	v, mixed, err := runs.RangeValue(styled.PropFontSize, 0, 5)
	if err != nil || mixed {
		t.Fatalf("RangeValue() = %v mixed=%v err=%v", v, mixed, err)
	}
	if v != 24.0 {
		t.Errorf("head font size after trim = %v, want 24", v)
	}
}
