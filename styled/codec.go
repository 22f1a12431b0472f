package styled

import (
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/loctools/figma-plugin/scene"
)

// Encode reads per-character styling from a host text node and condenses it
// into a Text with a minimal run partition. If no property varies over the
// whole string only the text is returned, without any per-character
// inspection beyond the initial uniformity probes.
//
// Ranges always cover [0, N) with no gaps; in particular a trailing run is
// emitted even when it is a single character long.
func Encode(runs scene.TextRuns) (*Text, error) {
	s := runs.Characters()
	n := len([]rune(s))
	if n == 0 {
		return &Text{Text: s}, nil
	}

	var mixed []Descriptor
	for _, d := range Properties {
		_, isMixed, err := d.Get(runs, 0, n)
		if err != nil {
			return nil, fmt.Errorf("probing %s: %w", d.Name, err)
		}
		if isMixed {
			mixed = append(mixed, d)
		}
	}
	if len(mixed) == 0 {
		return &Text{Text: s}, nil
	}

	// One query pass: per-character dictionaries of the non-uniform
	// properties, deduplicated by a content hash of their canonical JSON.
	var (
		hashes   = make([]uint32, n)
		idxByKey = make(map[uint32]int)
		styles   []Style
	)
	for i := range n {
		props := make(Style, len(mixed))
		for _, d := range mixed {
			v, _, err := d.Get(runs, i, i+1)
			if err != nil {
				return nil, fmt.Errorf("reading %s at %d: %w", d.Name, i, err)
			}
			props[d.Name] = v
		}
		data, err := json.Marshal(props)
		if err != nil {
			return nil, fmt.Errorf("hashing style at %d: %w", i, err)
		}
		key := crc32.ChecksumIEEE(data)
		if _, seen := idxByKey[key]; !seen {
			idxByKey[key] = len(styles)
			styles = append(styles, props)
		}
		hashes[i] = key
	}

	// Run-building pass: close a run on every hash change, then flush the
	// final run unconditionally so the partition has no gap at the end.
	var (
		ranges []Range
		start  = 0
		prev   = hashes[0]
	)
	for i := 1; i < n; i++ {
		if hashes[i] != prev {
			ranges = append(ranges, Range{Start: start, End: i, StyleIdx: Idx(idxByKey[prev])})
			prev = hashes[i]
			start = i
		}
	}
	ranges = append(ranges, Range{Start: start, End: n, StyleIdx: Idx(idxByKey[prev])})

	return &Text{Text: s, Ranges: ranges, Styles: styles}, nil
}
