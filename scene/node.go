// Package scene models the host document tree and the capability surface
// the plugin consumes from it. Nodes own their children only; parent
// relationships are resolved through the Graph index so that generic
// traversals (hashing in particular) can never walk into a cycle.
package scene

// NodeID is the host-assigned node identifier.
type NodeID string

type NodeType int

const (
	NodeDocument NodeType = iota
	NodePage
	NodeFrame
	NodeGroup
	NodeComponent
	NodeText
	NodeOther
)

func (t NodeType) String() string {
	switch t {
	case NodeDocument:
		return "document"
	case NodePage:
		return "page"
	case NodeFrame:
		return "frame"
	case NodeGroup:
		return "group"
	case NodeComponent:
		return "component"
	case NodeText:
		return "text"
	default:
		return "other"
	}
}

// AutoResize is the automatic sizing mode of a text node.
type AutoResize int

const (
	ResizeNone AutoResize = iota
	// ResizeHeight grows the node vertically only ("Auto Height").
	ResizeHeight
	// ResizeWidthAndHeight grows the node in both directions ("Auto Width").
	ResizeWidthAndHeight
)

type EffectType int

const (
	EffectDropShadow EffectType = iota
	EffectInnerShadow
	EffectBlur
)

type Effect struct {
	Type    EffectType
	Visible bool
}

// ExportSetting describes one declared raster export of a subtree.
type ExportSetting struct {
	Format       string // "PNG", "JPG"
	Suffix       string
	Scale        float64
	ContentsOnly bool
}

// Node is one scene-graph node. Geometry is relative to the parent.
// Children are owned; there is deliberately no parent pointer here.
type Node struct {
	ID           NodeID
	Type         NodeType
	Name         string
	Visible      bool
	X, Y         float64
	Width        float64
	Height       float64
	ClipsContent bool
	AutoResize   AutoResize
	Effects      []Effect
	Export       []ExportSetting
	Children     []*Node
}

// Attributes returns the fixed bag of node state that participates in
// structural fingerprinting. Children and parents are excluded: subtree
// content is folded separately, and parent links must never be traversed.
func (n *Node) Attributes() map[string]any {
	attrs := map[string]any{
		"id":      string(n.ID),
		"type":    n.Type.String(),
		"name":    n.Name,
		"visible": n.Visible,
		"x":       n.X,
		"y":       n.Y,
		"width":   n.Width,
		"height":  n.Height,
	}
	if n.Type == NodeText {
		attrs["textAutoResize"] = int(n.AutoResize)
	}
	if n.Type == NodeFrame {
		attrs["clipsContent"] = n.ClipsContent
	}
	if len(n.Effects) > 0 {
		effects := make([]any, 0, len(n.Effects))
		for _, e := range n.Effects {
			effects = append(effects, map[string]any{"type": int(e.Type), "visible": e.Visible})
		}
		attrs["effects"] = effects
	}
	if len(n.Export) > 0 {
		settings := make([]any, 0, len(n.Export))
		for _, es := range n.Export {
			settings = append(settings, map[string]any{
				"format":       es.Format,
				"suffix":       es.Suffix,
				"scale":        es.Scale,
				"contentsOnly": es.ContentsOnly,
			})
		}
		attrs["exportSettings"] = settings
	}
	return attrs
}
