package locjson

import (
	"slices"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{
			name:  "short string stays whole",
			in:    "Hello",
			width: 50,
			want:  []string{"Hello"},
		},
		{
			name:  "zero width disables wrapping",
			in:    "no wrapping at all here",
			width: 0,
			want:  []string{"no wrapping at all here"},
		},
		{
			name:  "separator glued to preceding word",
			in:    "Hello wonderful world",
			width: 10,
			want:  []string{"Hello ", "wonderful ", "world"},
		},
		{
			name:  "real newline forces a break after it",
			in:    "one\ntwo",
			width: 50,
			want:  []string{"one\n", "two"},
		},
		{
			name:  "literal backslash-n token breaks too",
			in:    `one\ntwo`,
			width: 50,
			want:  []string{`one\n`, "two"},
		},
		{
			name:  "trailing newline does not split",
			in:    "abc\n",
			width: 50,
			want:  []string{"abc\n"},
		},
		{
			name:  "overlong token hard-split",
			in:    "abcdefghij",
			width: 4,
			want:  []string{"abcd", "efgh", "ij"},
		},
		{
			name:  "width counts runes",
			in:    "ééééé",
			width: 2,
			want:  []string{"éé", "éé", "é"},
		},
		{
			name:  "newline inside wrapped text",
			in:    "first line\nsecond line goes on",
			width: 12,
			want:  []string{"first line\n", "second line ", "goes on"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.in, tt.width); !slices.Equal(got, tt.want) {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrap_Rejoins(t *testing.T) {
	in := "The quick brown fox jumps over the lazy dog\nand keeps running"
	var joined string
	for _, line := range Wrap(in, 10) {
		joined += line
	}
	if joined != in {
		t.Errorf("wrapped lines do not rejoin: %q", joined)
	}
}
