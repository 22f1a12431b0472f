package variants

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
)

// ErrSourceVariant rejects removal of the source variant, in every scope.
var ErrSourceVariant = errors.New("source variant cannot be removed")

// Manage performs one bulk variant operation over the given scope. The
// target node anchors the scope: its own node, its enclosing asset, or
// every asset on its page. The source variant can be copied from but never
// removed; "remove other" always preserves both the source variant and the
// named code.
func (s *Store) Manage(scope common.ManageScope, action common.ManageAction, target *scene.Node, code string) error {
	if code == "" {
		return errors.New("empty variant code")
	}
	if code == common.SrcVariant && action != common.ActionAdd {
		return ErrSourceVariant
	}
	if _, err := language.Parse(code); err != nil && code != common.SrcVariant {
		s.log.Warn("Variant code is not a recognized language tag", zap.String("code", code))
	}

	switch scope {
	case common.ScopeNode:
		if target == nil || target.Type != scene.NodeText {
			return errors.New("node scope requires a text node")
		}
		s.manageNode(target, action, code)
		return nil
	case common.ScopeAsset:
		asset := scene.AssetOf(s.g, target)
		if asset == nil {
			return fmt.Errorf("node %q is not inside an asset", nodeName(target))
		}
		s.manageAsset(asset, action, code)
		return nil
	case common.ScopePage:
		page := scene.PageOf(s.g, target)
		if page == nil {
			page = s.g.CurrentPage()
		}
		for asset := range scene.AssetNodes(s.g, page) {
			s.manageAsset(asset, action, code)
		}
		return nil
	default:
		return fmt.Errorf("unknown manage scope %d", scope)
	}
}

func (s *Store) manageAsset(asset *scene.Node, action common.ManageAction, code string) {
	for n := range scene.TextNodes(asset) {
		s.manageNode(n, action, code)
	}
}

func (s *Store) manageNode(n *scene.Node, action common.ManageAction, code string) {
	m := s.variantMap(n)
	switch action {
	case common.ActionAdd:
		if _, ok := m[code]; ok {
			return
		}
		src, ok := m[common.SrcVariant]
		if !ok {
			s.log.Warn("No source variant to seed from", zap.String("node", string(n.ID)), zap.String("code", code))
			return
		}
		m[code] = src
	case common.ActionRemove:
		if _, ok := m[code]; !ok {
			return
		}
		delete(m, code)
	case common.ActionRemoveOther:
		for k := range m {
			if k != common.SrcVariant && k != code {
				delete(m, k)
			}
		}
	}
	s.saveVariantMap(n, m)
}

func nodeName(n *scene.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}
