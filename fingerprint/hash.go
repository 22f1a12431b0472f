// Package fingerprint computes structural change-detection hashes over
// assets and over the asset set. Fingerprints are 32-bit values kept in
// persistent storage between sessions; an asset whose fingerprint moved is
// due for re-export.
package fingerprint

import (
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"go.uber.org/zap"
)

// HashString folds a string into a running 32-bit hash, one UTF-16 code
// unit at a time, with h*31 mixing and wrap-on-overflow arithmetic.
func HashString(h int32, s string) int32 {
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	return h
}

// HashValue folds an arbitrary JSON-shaped value into a running hash.
// Map keys are visited in sorted order; the "parent" key is never
// descended into. Values that cannot be rendered are skipped with a
// warning rather than failing the whole fingerprint.
func HashValue(h int32, v any, log *zap.Logger) int32 {
	switch val := v.(type) {
	case nil:
		return h
	case bool:
		if val {
			return HashString(h, "true")
		}
		return HashString(h, "false")
	case string:
		return HashString(h, val)
	case int:
		return HashString(h, formatNumber(float64(val)))
	case int32:
		return HashString(h, formatNumber(float64(val)))
	case int64:
		return HashString(h, formatNumber(float64(val)))
	case float64:
		return HashString(h, formatNumber(val))
	case []any:
		for i, item := range val {
			h = HashString(h, strconv.Itoa(i))
			h = HashValue(h, item, log)
		}
		return h
	case []string:
		for i, item := range val {
			h = HashString(h, strconv.Itoa(i))
			h = HashString(h, item)
		}
		return h
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			if k == "parent" {
				continue
			}
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			h = HashString(h, k)
			h = HashValue(h, val[k], log)
		}
		return h
	default:
		rendered, ok := render(val)
		if !ok {
			if log != nil {
				log.Warn("Skipping unhashable value", zap.String("type", fmt.Sprintf("%T", v)))
			}
			return h
		}
		return HashString(h, rendered)
	}
}

func render(v any) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()
	return fmt.Sprint(v), true
}

// formatNumber renders a number the shortest way, without a trailing
// fractional part for integral values.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
