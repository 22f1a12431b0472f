package styled

import "github.com/loctools/figma-plugin/scene"

// Property names understood by the codec. The set is closed: the codec
// iterates this table instead of probing the host for arbitrary properties.
const (
	PropFillStyleID    = "fillStyleId"
	PropFills          = "fills"
	PropFontName       = "fontName"
	PropFontSize       = "fontSize"
	PropLetterSpacing  = "letterSpacing"
	PropLineHeight     = "lineHeight"
	PropTextCase       = "textCase"
	PropTextDecoration = "textDecoration"
	PropTextStyleID    = "textStyleId"
)

// Descriptor binds a property name to its getter/setter pair over a host
// text node.
type Descriptor struct {
	Name string
	Get  func(r scene.TextRuns, start, end int) (any, bool, error)
	Set  func(r scene.TextRuns, start, end int, v any) error
}

func describe(name string) Descriptor {
	return Descriptor{
		Name: name,
		Get: func(r scene.TextRuns, start, end int) (any, bool, error) {
			return r.RangeValue(name, start, end)
		},
		Set: func(r scene.TextRuns, start, end int, v any) error {
			return r.SetRangeValue(name, start, end, v)
		},
	}
}

// Properties is the static, ordered capability list of the codec.
var Properties = []Descriptor{
	describe(PropFillStyleID),
	describe(PropFills),
	describe(PropFontName),
	describe(PropFontSize),
	describe(PropLetterSpacing),
	describe(PropLineHeight),
	describe(PropTextCase),
	describe(PropTextDecoration),
	describe(PropTextStyleID),
}

// FontRef extracts a font reference from a property value as stored in a
// style dictionary ({"family": ..., "style": ...}).
func FontRef(v any) (family, style string, ok bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", "", false
	}
	family, okF := m["family"].(string)
	style, okS := m["style"].(string)
	if !okF || !okS {
		return "", "", false
	}
	return family, style, true
}
