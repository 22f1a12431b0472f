package styled

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/scene"
)

// FontLoader preloads a font so that subsequent host text mutations do not
// fail on a missing face.
type FontLoader interface {
	PreloadFont(family, style string) error
}

// PreloadFonts loads every font referenced by the style table. When the
// text is plain, or its first style carries no font, the font of the first
// character is loaded instead so the node can be written to at all.
func PreloadFonts(fl FontLoader, runs scene.TextRuns, t *Text) error {
	needFirst := len(t.Styles) == 0
	if !needFirst {
		_, _, ok := FontRef(t.Styles[0][PropFontName])
		needFirst = !ok
	}
	if needFirst && len(runs.Characters()) > 0 {
		v, _, err := runs.RangeValue(PropFontName, 0, 1)
		if err != nil {
			return fmt.Errorf("reading first character font: %w", err)
		}
		if family, style, ok := FontRef(v); ok {
			if err := fl.PreloadFont(family, style); err != nil {
				return err
			}
		}
	}
	for _, s := range t.Styles {
		if family, style, ok := FontRef(s[PropFontName]); ok {
			if err := fl.PreloadFont(family, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyStyles writes the run styling of t onto the host node. Ranges are
// clamped to the node's current length, so the same styled text can be
// re-applied to a trimmed rendition of itself. Runs starting past the end
// are skipped.
func ApplyStyles(fl FontLoader, runs scene.TextRuns, t *Text, log *zap.Logger) error {
	length := len([]rune(runs.Characters()))
	for _, r := range t.Ranges {
		idx := 0
		if r.StyleIdx != nil {
			idx = *r.StyleIdx
		}
		if idx >= len(t.Styles) {
			return fmt.Errorf("style index %d outside style table of %d", idx, len(t.Styles))
		}
		style := t.Styles[idx]
		if r.Start >= length {
			break
		}
		end := min(r.End, length)

		if family, fstyle, ok := FontRef(style[PropFontName]); ok {
			if err := fl.PreloadFont(family, fstyle); err != nil {
				return fmt.Errorf("preloading font %s %s: %w", family, fstyle, err)
			}
		}
		for _, d := range Properties {
			v, present := style[d.Name]
			if !present || v == nil {
				continue
			}
			if err := d.Set(runs, r.Start, end, v); err != nil {
				log.Error("Style application failed",
					zap.String("property", d.Name),
					zap.Int("start", r.Start),
					zap.Int("end", end),
					zap.String("characters", runs.Characters()))
				return fmt.Errorf("applying %s over [%d, %d): %w", d.Name, r.Start, end, err)
			}
		}
	}
	return nil
}
