package scene

// PluginData is the per-node persistent string key-value store the host
// keeps inside the document. Missing keys read as "".
type PluginData interface {
	Get(key string) string
	Set(key, value string)
}

// Storage is the process-wide persistent key-value store (survives document
// close). Missing keys read as "" with ok=false.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// TextRuns gives per-character access to one text node's content and
// styling. Offsets count runes, end is exclusive. RangeValue reports
// mixed=true when the property is not uniform over [start, end); the
// returned value is then meaningless.
type TextRuns interface {
	Characters() string
	SetCharacters(s string) error
	Delete(start, end int) error
	Insert(at int, s string) error
	RangeValue(prop string, start, end int) (value any, mixed bool, err error)
	SetRangeValue(prop string, start, end int, value any) error
}

// Graph is the scene-graph collaborator surface consumed by the plugin
// core: tree access, cloning, rendering, fonts and persistent storage.
// All calls are synchronous from the caller's point of view; the host
// suspends the operation until they complete.
type Graph interface {
	Root() *Node
	NodeByID(id NodeID) *Node
	Parent(n *Node) *Node

	CurrentPage() *Node
	SetCurrentPage(p *Node)
	Selection() []*Node
	SetSelection(nodes []*Node)

	CreatePage(name string) *Node
	AppendChild(parent, child *Node)
	// Clone deep-copies a subtree including its plugin data, assigning
	// fresh ids. The clone is detached until appended somewhere.
	Clone(n *Node) *Node
	Remove(n *Node)

	Data(n *Node) PluginData
	Storage() Storage

	// Runs returns nil for non-text nodes.
	Runs(n *Node) TextRuns
	Render(n *Node, settings ExportSetting) ([]byte, error)
	PreloadFont(family, style string) error
}

// PageOf walks up to the page containing n, or nil for detached nodes.
func PageOf(g Graph, n *Node) *Node {
	for n != nil && n.Type != NodePage {
		n = g.Parent(n)
	}
	return n
}

// IsAsset reports whether n qualifies as an exportable / localizable asset:
// a visible frame placed directly on a page. Only frames qualify because
// preview generation needs content clipping, which groups do not support.
func IsAsset(g Graph, n *Node) bool {
	if n == nil || !n.Visible || n.Type != NodeFrame {
		return false
	}
	p := g.Parent(n)
	return p != nil && p.Type == NodePage
}

// AssetOf walks up from n to its enclosing asset node, or nil.
func AssetOf(g Graph, n *Node) *Node {
	for n != nil && !IsAsset(g, n) {
		n = g.Parent(n)
	}
	return n
}
