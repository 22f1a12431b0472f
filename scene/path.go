package scene

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

var (
	reQuotes     = regexp.MustCompile("['\"`]+")
	reNonWord    = regexp.MustCompile(`[^\w\-./]`)
	reDotSlash   = regexp.MustCompile(`\.+/`)
	reManySlash  = regexp.MustCompile(`/{2,}`)
	reManyHyphen = regexp.MustCompile(`-{2,}`)
)

// PathFromName converts a free-form project/page/asset name into a stable
// path segment: case folded, accents stripped, quotes removed, non-word
// characters collapsed to hyphens and redundant separators collapsed.
// Anything that survives accent stripping as non-ASCII (Cyrillic and the
// like) is transliterated so that paths stay portable.
func PathFromName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripMarks(norm.NFKD.String(s))
	s = reQuotes.ReplaceAllString(s, "")
	s = transliterateSegments(s)
	s = reNonWord.ReplaceAllString(s, "-")
	s = reDotSlash.ReplaceAllString(s, "/")
	s = reManySlash.ReplaceAllString(s, "/")
	s = reManyHyphen.ReplaceAllString(s, "-")
	return s
}

func stripMarks(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
}

// transliterateSegments runs slug over non-ASCII path segments, keeping '/'
// and '.' intact (slug would eat both).
func transliterateSegments(s string) string {
	if isASCII(s) {
		return s
	}
	parts := strings.Split(s, "/")
	for i, part := range parts {
		if isASCII(part) {
			continue
		}
		dotted := strings.Split(part, ".")
		for j, d := range dotted {
			if !isASCII(d) {
				dotted[j] = slug.Make(d)
			}
		}
		parts[i] = strings.Join(dotted, ".")
	}
	return strings.Join(parts, "/")
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// AssetPath builds the deterministic path segments (project, page, asset)
// used for artifact placement and for matching interchange files back to
// their source asset. pageName overrides the live page name when exporting
// from a scratch page.
func AssetPath(g Graph, asset *Node, pageName string) []string {
	if pageName == "" {
		if page := PageOf(g, asset); page != nil {
			pageName = page.Name
		}
	}
	return []string{
		PathFromName(g.Root().Name),
		PathFromName(pageName),
		PathFromName(asset.Name),
	}
}
