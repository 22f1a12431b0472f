// Package variants keeps per-node multilingual text variants inside the
// node's persistent plugin data and implements the scoped bulk operations
// over them. The variant map is stored as JSON under one key; the node's
// style table is stored separately so that translated variants do not have
// to duplicate it.
package variants

import (
	"encoding/json"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
)

type Store struct {
	g   scene.Graph
	log *zap.Logger
}

func NewStore(g scene.Graph, log *zap.Logger) *Store {
	return &Store{g: g, log: log}
}

func (s *Store) variantMap(n *scene.Node) map[string]*styled.Text {
	raw := s.g.Data(n).Get(common.DataVariants)
	if raw == "" {
		return map[string]*styled.Text{}
	}
	var m map[string]*styled.Text
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		s.log.Warn("Discarding unreadable variant map", zap.String("node", string(n.ID)), zap.Error(err))
		return map[string]*styled.Text{}
	}
	return m
}

func (s *Store) saveVariantMap(n *scene.Node, m map[string]*styled.Text) {
	data, err := json.Marshal(m)
	if err != nil {
		// map of plain data, cannot happen
		s.log.Error("Failed to marshal variant map", zap.String("node", string(n.ID)), zap.Error(err))
		return
	}
	s.g.Data(n).Set(common.DataVariants, string(data))
}

// Get returns the stored variant text, or nil when absent.
func (s *Store) Get(n *scene.Node, code string) *styled.Text {
	return s.variantMap(n)[code]
}

// Set stores a variant; empty text deletes the entry instead.
func (s *Store) Set(n *scene.Node, code string, t *styled.Text) {
	m := s.variantMap(n)
	if t != nil && t.Text != "" {
		m[code] = t
	} else {
		delete(m, code)
	}
	s.saveVariantMap(n, m)
}

// Codes returns the sorted variant codes present on one node.
func (s *Store) Codes(n *scene.Node) []string {
	m := s.variantMap(n)
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// ForAsset returns the sorted union of variant codes over every text node
// descendant of an asset.
func (s *Store) ForAsset(asset *scene.Node) []string {
	seen := map[string]bool{}
	for n := range scene.TextNodes(asset) {
		for code := range s.variantMap(n) {
			seen[code] = true
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Styles returns the node-global style table referenced by styled variants.
func (s *Store) Styles(n *scene.Node) []styled.Style {
	raw := s.g.Data(n).Get(common.DataStyles)
	if raw == "" {
		return nil
	}
	var styles []styled.Style
	if err := json.Unmarshal([]byte(raw), &styles); err != nil {
		s.log.Warn("Discarding unreadable style table", zap.String("node", string(n.ID)), zap.Error(err))
		return nil
	}
	return styles
}

// SetStyles replaces the node-global style table; nil deletes it.
func (s *Store) SetStyles(n *scene.Node, styles []styled.Style) {
	if len(styles) == 0 {
		s.g.Data(n).Set(common.DataStyles, "")
		return
	}
	data, err := json.Marshal(styles)
	if err != nil {
		s.log.Error("Failed to marshal style table", zap.String("node", string(n.ID)), zap.Error(err))
		return
	}
	s.g.Data(n).Set(common.DataStyles, string(data))
}

// Rendered returns the variant's text as it travels through interchange
// documents: inline markup when the variant carries style runs, bare text
// otherwise. A node without the requested variant renders its live
// characters.
func (s *Store) Rendered(n *scene.Node, code string) (text string, markup bool) {
	if v := s.Get(n, code); v != nil {
		if !v.Plain() {
			return styled.EncodeMarkup(v), true
		}
		return v.Text, false
	}
	if runs := s.g.Runs(n); runs != nil {
		return runs.Characters(), false
	}
	return "", false
}

// TrimTrailingSpace drops invisible trailing whitespace before content is
// written to a host node.
func TrimTrailingSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
