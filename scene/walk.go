package scene

import (
	"iter"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// ScratchPagePrefix names pages created for export-time clones. Pages with
// this prefix are excluded from asset discovery.
const ScratchPagePrefix = "__scratch__"

// CompareGeometry orders siblings top to bottom, then left to right, with a
// node-id tie break so siblings sharing coordinates keep a stable order.
func CompareGeometry(a, b *Node) int {
	if a.Y != b.Y {
		if a.Y < b.Y {
			return -1
		}
		return 1
	}
	if a.X != b.X {
		if a.X < b.X {
			return -1
		}
		return 1
	}
	return strings.Compare(string(a.ID), string(b.ID))
}

// compareNames orders nodes by natural name order, node id as tie break.
func compareNames(a, b *Node) int {
	if a.Name != b.Name {
		if natural.Less(a.Name, b.Name) {
			return -1
		}
		return 1
	}
	return strings.Compare(string(a.ID), string(b.ID))
}

// TextNodes yields every visible text node under root in deterministic
// geometric order. The sequence is a snapshot walk: mutate the tree and
// re-run the traversal rather than mutating mid-walk.
func TextNodes(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		walkTextNodes(root, yield)
	}
}

func walkTextNodes(n *Node, yield func(*Node) bool) bool {
	if n == nil || !n.Visible {
		return true
	}
	if n.Type == NodeText {
		return yield(n)
	}
	if len(n.Children) == 0 {
		return true
	}
	ch := slices.Clone(n.Children)
	slices.SortFunc(ch, CompareGeometry)
	for _, c := range ch {
		if !walkTextNodes(c, yield) {
			return false
		}
	}
	return true
}

// AssetNodes yields every qualifying asset node under root (a document or a
// single page), pages in natural name order and assets in name order within
// a page. Scratch pages are skipped.
func AssetNodes(g Graph, root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		switch root.Type {
		case NodeDocument:
			pages := slices.Clone(root.Children)
			slices.SortFunc(pages, compareNames)
			for _, p := range pages {
				if !yieldPageAssets(g, p, yield) {
					return
				}
			}
		case NodePage:
			yieldPageAssets(g, root, yield)
		}
	}
}

func yieldPageAssets(g Graph, page *Node, yield func(*Node) bool) bool {
	if strings.HasPrefix(page.Name, ScratchPagePrefix) {
		return true
	}
	ch := slices.Clone(page.Children)
	slices.SortFunc(ch, compareNames)
	for _, c := range ch {
		if IsAsset(g, c) {
			if !yield(c) {
				return false
			}
		}
	}
	return true
}
