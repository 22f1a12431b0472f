// Package memscene is a self-contained in-memory scene graph host. It backs
// the demo pipeline and the test suites with deterministic geometry,
// deterministic rendering and per-character text styling, without a live
// design tool on the other side of the wire.
package memscene

import (
	"fmt"
	"strings"
	"sync"

	"github.com/loctools/figma-plugin/scene"
)

// MeasureFunc computes the auto-sized extent of a text node displaying s.
type MeasureFunc func(n *scene.Node, s string) (w, h float64)

// DefaultMeasure is a fixed-pitch model: 8 units per character of the
// longest line, 14 units per line.
func DefaultMeasure(_ *scene.Node, s string) (float64, float64) {
	lines := strings.Split(s, "\n")
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	return float64(8 * longest), float64(14 * len(lines))
}

type Scene struct {
	root      *scene.Node
	parents   map[*scene.Node]*scene.Node
	byID      map[scene.NodeID]*scene.Node
	current   *scene.Node
	selection []*scene.Node

	data map[scene.NodeID]map[string]string
	text map[scene.NodeID]*textState

	storageMu sync.Mutex
	storage   map[string]string

	fontMu    sync.Mutex
	loaded    map[string]bool
	failFonts map[string]bool

	measure MeasureFunc
	nextID  int

	renderMu sync.Mutex
	renders  int
}

var _ scene.Graph = (*Scene)(nil)

// New creates a scene with an empty document root named fileName.
func New(fileName string) *Scene {
	s := &Scene{
		parents:   map[*scene.Node]*scene.Node{},
		byID:      map[scene.NodeID]*scene.Node{},
		data:      map[scene.NodeID]map[string]string{},
		text:      map[scene.NodeID]*textState{},
		storage:   map[string]string{},
		loaded:    map[string]bool{},
		failFonts: map[string]bool{},
		measure:   DefaultMeasure,
	}
	s.root = &scene.Node{Type: scene.NodeDocument, Name: fileName, Visible: true}
	s.register(s.root)
	return s
}

// SetMeasure replaces the text measurement model.
func (s *Scene) SetMeasure(m MeasureFunc) { s.measure = m }

// FailFont makes subsequent preloads of the given family fail.
func (s *Scene) FailFont(family string) {
	s.fontMu.Lock()
	defer s.fontMu.Unlock()
	s.failFonts[family] = true
}

// Renders reports how many raster renders the scene has served.
func (s *Scene) Renders() int {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.renders
}

func (s *Scene) register(n *scene.Node) {
	if n.ID == "" {
		s.nextID++
		n.ID = scene.NodeID(fmt.Sprintf("%d:%d", s.nextID, s.nextID))
	}
	s.byID[n.ID] = n
	// Text state exists from registration on, so concurrent Runs callers
	// never touch the map.
	if n.Type == scene.NodeText {
		if _, ok := s.text[n.ID]; !ok {
			s.text[n.ID] = newTextState("")
		}
	}
	for _, c := range n.Children {
		s.parents[c] = n
		s.register(c)
	}
}

// AddPage appends a new page to the document and makes it current if the
// document had none.
func (s *Scene) AddPage(name string) *scene.Node {
	p := &scene.Node{Type: scene.NodePage, Name: name, Visible: true}
	s.AppendChild(s.root, p)
	if s.current == nil {
		s.current = p
	}
	return p
}

// Add registers a prebuilt subtree under parent and returns its root.
func (s *Scene) Add(parent, n *scene.Node) *scene.Node {
	s.AppendChild(parent, n)
	return n
}

// AddText registers a text node with the given characters, carrying one
// uniform (empty) style.
func (s *Scene) AddText(parent *scene.Node, name, chars string, x, y float64) *scene.Node {
	n := &scene.Node{Type: scene.NodeText, Name: name, Visible: true, X: x, Y: y}
	s.AppendChild(parent, n)
	st := newTextState(chars)
	s.text[n.ID] = st
	n.Width, n.Height = s.measure(n, chars)
	return n
}

func (s *Scene) Root() *scene.Node { return s.root }

func (s *Scene) NodeByID(id scene.NodeID) *scene.Node { return s.byID[id] }

func (s *Scene) Parent(n *scene.Node) *scene.Node { return s.parents[n] }

func (s *Scene) CurrentPage() *scene.Node { return s.current }

func (s *Scene) SetCurrentPage(p *scene.Node) { s.current = p }

func (s *Scene) Selection() []*scene.Node { return s.selection }

func (s *Scene) SetSelection(nodes []*scene.Node) { s.selection = nodes }

func (s *Scene) CreatePage(name string) *scene.Node {
	p := &scene.Node{Type: scene.NodePage, Name: name, Visible: true}
	s.AppendChild(s.root, p)
	return p
}

func (s *Scene) AppendChild(parent, child *scene.Node) {
	parent.Children = append(parent.Children, child)
	s.parents[child] = parent
	s.register(child)
}

// Clone deep-copies a subtree with fresh ids, carrying plugin data and text
// content along. The clone stays detached until appended.
func (s *Scene) Clone(n *scene.Node) *scene.Node {
	c := s.cloneNode(n)
	return c
}

func (s *Scene) cloneNode(n *scene.Node) *scene.Node {
	c := *n
	c.ID = ""
	c.Children = nil
	c.Effects = append([]scene.Effect(nil), n.Effects...)
	c.Export = append([]scene.ExportSetting(nil), n.Export...)
	s.register(&c)
	if src, ok := s.data[n.ID]; ok {
		dst := make(map[string]string, len(src))
		for k, v := range src {
			dst[k] = v
		}
		s.data[c.ID] = dst
	}
	if st, ok := s.text[n.ID]; ok {
		s.text[c.ID] = st.clone()
	}
	for _, child := range n.Children {
		cc := s.cloneNode(child)
		c.Children = append(c.Children, cc)
		s.parents[cc] = &c
	}
	return &c
}

// Remove detaches a subtree from its parent and drops it from the indexes.
func (s *Scene) Remove(n *scene.Node) {
	if p := s.parents[n]; p != nil {
		for i, c := range p.Children {
			if c == n {
				p.Children = append(p.Children[:i], p.Children[i+1:]...)
				break
			}
		}
	}
	s.unregister(n)
}

func (s *Scene) unregister(n *scene.Node) {
	delete(s.parents, n)
	delete(s.byID, n.ID)
	delete(s.data, n.ID)
	delete(s.text, n.ID)
	for _, c := range n.Children {
		s.unregister(c)
	}
}

func (s *Scene) Data(n *scene.Node) scene.PluginData {
	return pluginData{s: s, id: n.ID}
}

type pluginData struct {
	s  *Scene
	id scene.NodeID
}

func (d pluginData) Get(key string) string { return d.s.data[d.id][key] }

func (d pluginData) Set(key, value string) {
	m := d.s.data[d.id]
	if m == nil {
		m = map[string]string{}
		d.s.data[d.id] = m
	}
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}

func (s *Scene) Storage() scene.Storage { return sceneStorage{s} }

type sceneStorage struct{ s *Scene }

func (st sceneStorage) Get(key string) (string, bool) {
	st.s.storageMu.Lock()
	defer st.s.storageMu.Unlock()
	v, ok := st.s.storage[key]
	return v, ok
}

func (st sceneStorage) Set(key, value string) error {
	st.s.storageMu.Lock()
	defer st.s.storageMu.Unlock()
	st.s.storage[key] = value
	return nil
}

func (s *Scene) PreloadFont(family, style string) error {
	s.fontMu.Lock()
	defer s.fontMu.Unlock()
	if s.failFonts[family] {
		return fmt.Errorf("font %s %s is not available", family, style)
	}
	s.loaded[family+"/"+style] = true
	return nil
}

// FontLoaded reports whether a font was preloaded.
func (s *Scene) FontLoaded(family, style string) bool {
	s.fontMu.Lock()
	defer s.fontMu.Unlock()
	return s.loaded[family+"/"+style]
}
