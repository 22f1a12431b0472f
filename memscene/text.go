package memscene

import (
	"fmt"
	"reflect"

	"github.com/loctools/figma-plugin/scene"
)

// textState stores per-rune styling so mixed-style strings behave like a
// real host: every rune carries its own property dictionary.
type textState struct {
	runes []rune
	props []map[string]any
}

func newTextState(chars string) *textState {
	runes := []rune(chars)
	props := make([]map[string]any, len(runes))
	for i := range props {
		props[i] = map[string]any{}
	}
	return &textState{runes: runes, props: props}
}

func (st *textState) clone() *textState {
	c := &textState{
		runes: append([]rune(nil), st.runes...),
		props: make([]map[string]any, len(st.props)),
	}
	for i, p := range st.props {
		m := make(map[string]any, len(p))
		for k, v := range p {
			m[k] = v
		}
		c.props[i] = m
	}
	return c
}

func (s *Scene) Runs(n *scene.Node) scene.TextRuns {
	if n.Type != scene.NodeText || s.text[n.ID] == nil {
		return nil
	}
	return &memRuns{s: s, n: n}
}

type memRuns struct {
	s *Scene
	n *scene.Node
}

func (r *memRuns) state() *textState { return r.s.text[r.n.ID] }

func (r *memRuns) Characters() string { return string(r.state().runes) }

func (r *memRuns) SetCharacters(text string) error {
	st := r.state()
	var base map[string]any
	if len(st.props) > 0 {
		base = st.props[0]
	} else {
		base = map[string]any{}
	}
	st.runes = []rune(text)
	st.props = make([]map[string]any, len(st.runes))
	for i := range st.props {
		st.props[i] = copyProps(base)
	}
	r.remeasure()
	return nil
}

func (r *memRuns) Delete(start, end int) error {
	st := r.state()
	if err := checkRange(start, end, len(st.runes)); err != nil {
		return err
	}
	st.runes = append(st.runes[:start], st.runes[end:]...)
	st.props = append(st.props[:start], st.props[end:]...)
	r.remeasure()
	return nil
}

// Insert gives inserted characters the styling of the character before the
// insertion point, or of the former first character when inserting at 0.
func (r *memRuns) Insert(at int, text string) error {
	st := r.state()
	if at < 0 || at > len(st.runes) {
		return fmt.Errorf("insert position %d outside [0, %d]", at, len(st.runes))
	}
	ins := []rune(text)
	base := map[string]any{}
	if at > 0 {
		base = st.props[at-1]
	} else if len(st.props) > 0 {
		base = st.props[0]
	}
	insProps := make([]map[string]any, len(ins))
	for i := range insProps {
		insProps[i] = copyProps(base)
	}
	st.runes = append(st.runes[:at], append(ins, st.runes[at:]...)...)
	st.props = append(st.props[:at], append(insProps, st.props[at:]...)...)
	r.remeasure()
	return nil
}

func (r *memRuns) RangeValue(prop string, start, end int) (any, bool, error) {
	st := r.state()
	if err := checkRange(start, end, len(st.runes)); err != nil {
		return nil, false, err
	}
	first := st.props[start][prop]
	for i := start + 1; i < end; i++ {
		if !reflect.DeepEqual(st.props[i][prop], first) {
			return nil, true, nil
		}
	}
	return first, false, nil
}

func (r *memRuns) SetRangeValue(prop string, start, end int, value any) error {
	st := r.state()
	if err := checkRange(start, end, len(st.runes)); err != nil {
		return err
	}
	for i := start; i < end; i++ {
		st.props[i][prop] = value
	}
	return nil
}

// remeasure recomputes the node extent after a content change, honoring the
// auto-resize mode: Auto Width resizes both axes, Auto Height only the
// vertical one.
func (r *memRuns) remeasure() {
	if r.n.AutoResize == scene.ResizeNone {
		return
	}
	w, h := r.s.measure(r.n, string(r.state().runes))
	r.n.Height = h
	if r.n.AutoResize == scene.ResizeWidthAndHeight {
		r.n.Width = w
	}
}

func checkRange(start, end, length int) error {
	if start < 0 || end > length || start >= end {
		return fmt.Errorf("range [%d, %d) outside text of length %d", start, end, length)
	}
	return nil
}

func copyProps(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
