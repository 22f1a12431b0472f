package locjson

import "unicode"

// Wrap splits a translation source string into display lines of at most
// width characters. Both real newlines and the literal two-character "\n"
// sequence force a break after them; soft breaks happen at whitespace, with
// the separator glued to the word it follows. A single token longer than
// the width is hard-split.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	if head, tail, ok := splitNewline(s); ok {
		return append(Wrap(head, width), Wrap(tail, width)...)
	}
	runes := []rune(s)
	if len(runes) <= width {
		return []string{s}
	}

	chunks := splitSpace(runes)
	var (
		out   []string
		accum []rune
	)
	for i := 0; i < len(chunks); {
		chunk := chunks[i]
		i++
		if i < len(chunks) && isSpaceChunk(chunks[i]) {
			chunk = append(append([]rune(nil), chunk...), chunks[i]...)
			i++
		}
		if len(accum)+len(chunk) > width {
			if len(accum) > 0 {
				out = append(out, string(accum))
			}
			for len(chunk) >= width {
				out = append(out, string(chunk[:width]))
				chunk = chunk[width:]
			}
			accum = append([]rune(nil), chunk...)
		} else {
			accum = append(accum, chunk...)
		}
	}
	if len(accum) > 0 {
		out = append(out, string(accum))
	}
	return out
}

// splitNewline cuts s after its first newline token, provided something
// follows it. A token at the very end of the string does not split.
func splitNewline(s string) (head, tail string, ok bool) {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\n':
			if i+1 < len(s) {
				return s[:i+1], s[i+1:], true
			}
			return "", "", false
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == 'n':
			if i+2 < len(s) {
				return s[:i+2], s[i+2:], true
			}
			return "", "", false
		}
	}
	return "", "", false
}

// splitSpace partitions runes into maximal whitespace and non-whitespace
// chunks, in order.
func splitSpace(runes []rune) [][]rune {
	var chunks [][]rune
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || unicode.IsSpace(runes[i]) != unicode.IsSpace(runes[start]) {
			chunks = append(chunks, runes[start:i])
			start = i
		}
	}
	return chunks
}

func isSpaceChunk(chunk []rune) bool {
	return len(chunk) > 0 && unicode.IsSpace(chunk[0])
}
