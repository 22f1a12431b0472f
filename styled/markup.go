package styled

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMarkup is the base error of every markup format violation.
var ErrMarkup = errors.New("malformed style markup")

var (
	escaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	unescaper = strings.NewReplacer("&gt;", ">", "&lt;", "<", "&amp;", "&")

	reOpenTag  = regexp.MustCompile(`^style(\d+)$`)
	reCloseTag = regexp.MustCompile(`^/style(\d+)$`)
)

// EncodeMarkup renders styled text as inline <styleN> markup. Text without
// ranges yields the empty string: markup exists only to carry run
// boundaries, plain variants are stored and exchanged as bare text.
func EncodeMarkup(t *Text) string {
	if len(t.Ranges) == 0 {
		return ""
	}
	runes := []rune(t.Text)
	var b strings.Builder
	for _, r := range t.Ranges {
		idx := 0
		if r.StyleIdx != nil {
			idx = *r.StyleIdx
		}
		b.WriteString(fmt.Sprintf("<style%d>", idx))
		b.WriteString(escaper.Replace(string(runes[r.Start:r.End])))
		b.WriteString(fmt.Sprintf("</style%d>", idx))
	}
	return b.String()
}

// DecodeMarkup parses a <styleN> marked-up string back into styled text.
// A string without tag delimiters decodes to plain text with no ranges.
// The dialect does not nest: opening a scope inside a scope, closing with a
// mismatched index, unrecognized tag content outside a scope and an
// unclosed scope at end of input are all format errors.
func DecodeMarkup(s string) (*Text, error) {
	if !strings.ContainsAny(s, "<>") {
		return &Text{Text: unescaper.Replace(s)}, nil
	}

	var (
		out       strings.Builder
		ranges    []Range
		insideTag bool
		current   *int
		pos       int
	)
	for _, tok := range tokenize(s) {
		switch tok {
		case "<":
			insideTag = true
			continue
		case ">":
			insideTag = false
			continue
		}

		if insideTag {
			if m := reOpenTag.FindStringSubmatch(tok); m != nil {
				if current != nil {
					return nil, fmt.Errorf("%w: style%d opened inside style%d", ErrMarkup, atoi(m[1]), *current)
				}
				current = Idx(atoi(m[1]))
				continue
			}
			if m := reCloseTag.FindStringSubmatch(tok); m != nil {
				idx := atoi(m[1])
				if current == nil || *current != idx {
					return nil, fmt.Errorf("%w: closing tag /style%d does not match open scope", ErrMarkup, idx)
				}
				current = nil
				continue
			}
			if current == nil {
				return nil, fmt.Errorf("%w: unrecognized tag content [%s]", ErrMarkup, tok)
			}
			// Unknown tag content inside an active scope is dropped.
			continue
		}

		text := unescaper.Replace(tok)
		length := len([]rune(text))
		out.WriteString(text)
		ranges = append(ranges, Range{Start: pos, End: pos + length, StyleIdx: current})
		pos += length
	}

	if current != nil {
		return nil, fmt.Errorf("%w: style%d left unclosed at end of input", ErrMarkup, *current)
	}
	return &Text{Text: out.String(), Ranges: ranges}, nil
}

// tokenize splits on '<' and '>' keeping the delimiters as tokens and
// dropping empty fragments.
func tokenize(s string) []string {
	var tokens []string
	start := 0
	for i, r := range s {
		if r != '<' && r != '>' {
			continue
		}
		if i > start {
			tokens = append(tokens, s[start:i])
		}
		tokens = append(tokens, string(r))
		start = i + 1
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
