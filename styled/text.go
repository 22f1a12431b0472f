// Package styled implements the style-run codec: it condenses per-character
// style variation queried from a host text node into a minimal ordered set
// of runs, and converts that form to and from the inline <styleN> markup
// used by interchange documents.
//
// All offsets count runes, not bytes; range ends are exclusive.
package styled

// Range is one contiguous span of text sharing a single style-table entry.
// A nil StyleIdx means the span carries no specific override and renders
// with the base style.
type Range struct {
	Start    int  `json:"start"`
	End      int  `json:"end"`
	StyleIdx *int `json:"styleIdx,omitempty"`
}

// Style is a dictionary of the enumerated style property names to concrete
// host values. Identical dictionaries are deduplicated by content.
type Style map[string]any

// Text is text plus optional style runs. Plain text (no per-character
// variation) carries neither ranges nor styles. When Ranges is present it
// is non-empty, sorted by Start and non-overlapping; every StyleIdx
// indexes Styles.
type Text struct {
	Text   string  `json:"text"`
	Ranges []Range `json:"ranges,omitempty"`
	Styles []Style `json:"styles,omitempty"`
}

// Plain reports whether t carries no style runs.
func (t *Text) Plain() bool {
	return len(t.Ranges) == 0
}

// Idx is a literal helper for optional style indexes.
func Idx(i int) *int {
	return &i
}

func sameIdx(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Equal compares text content and style-run assignment. Style dictionaries
// are not compared; runs referring to different indexes are unequal.
func (t *Text) Equal(o *Text) bool {
	if t.Text != o.Text || len(t.Ranges) != len(o.Ranges) {
		return false
	}
	for i, r := range t.Ranges {
		or := o.Ranges[i]
		if r.Start != or.Start || r.End != or.End || !sameIdx(r.StyleIdx, or.StyleIdx) {
			return false
		}
	}
	return true
}
