package memscene

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/loctools/figma-plugin/scene"
)

// Render rasterizes a subtree to a PNG or JPEG whose pixels are a pure
// function of the subtree's visible content, so content changes move the
// image bytes and unrelated renders stay byte-identical.
func (s *Scene) Render(n *scene.Node, settings scene.ExportSetting) ([]byte, error) {
	s.renderMu.Lock()
	s.renders++
	s.renderMu.Unlock()

	scale := settings.Scale
	if scale <= 0 {
		scale = 1
	}
	w := max(1, int(math.Round(n.Width*scale)))
	h := max(1, int(math.Round(n.Height*scale)))

	var content strings.Builder
	s.describe(n, settings.ContentsOnly, &content)
	seed := crc32.ChecksumIEEE([]byte(content.String()))

	img := imaging.New(w, h, color.NRGBA{
		R: uint8(seed),
		G: uint8(seed >> 8),
		B: uint8(seed >> 16),
		A: 255,
	})
	// A single content-derived pixel in the corner keeps same-color images
	// of equal size from colliding.
	img.Set(0, 0, color.NRGBA{R: uint8(seed >> 24), G: uint8(seed), B: uint8(seed >> 8), A: 255})

	format, err := renderFormat(settings.Format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("encoding render of %q: %w", n.Name, err)
	}
	return buf.Bytes(), nil
}

func renderFormat(name string) (imaging.Format, error) {
	switch strings.ToUpper(name) {
	case "", "PNG":
		return imaging.PNG, nil
	case "JPG", "JPEG":
		return imaging.JPEG, nil
	default:
		return 0, fmt.Errorf("unsupported render format %q", name)
	}
}

func (s *Scene) describe(n *scene.Node, contentsOnly bool, b *strings.Builder) {
	if !n.Visible {
		return
	}
	fmt.Fprintf(b, "%s|%s|%.2f,%.2f,%.2f,%.2f|%v;", n.Type, n.Name, n.X, n.Y, n.Width, n.Height, contentsOnly)
	for _, e := range n.Effects {
		if e.Visible {
			fmt.Fprintf(b, "fx%d;", e.Type)
		}
	}
	if st, ok := s.text[n.ID]; ok {
		b.WriteString(string(st.runes))
		b.WriteByte(';')
	}
	// Visual order, not child-array order: reordering siblings that occupy
	// the same layout must not move the pixels.
	ch := slices.Clone(n.Children)
	slices.SortFunc(ch, scene.CompareGeometry)
	for _, c := range ch {
		s.describe(c, contentsOnly, b)
	}
}
