package variants

import (
	"errors"
	"fmt"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
)

// ErrTransitioning rejects an operation on an asset whose displayed variant
// is being switched right now.
var ErrTransitioning = errors.New("asset variant is transitioning")

// transitioningMark is the persisted variant-code value of an asset caught
// mid-switch. It can never collide with a language code.
const transitioningMark = "__transitioning__"

// State describes which variant an asset currently displays. An asset is
// either stable on a concrete code, or transitioning between two codes
// while its text nodes are being rewritten.
type State struct {
	Code          string
	Transitioning bool
}

// State reports the displayed-variant state of an asset. An asset that was
// never switched is stable on the source variant.
func (s *Store) State(asset *scene.Node) State {
	switch v := s.g.Data(asset).Get(common.DataVariantCode); v {
	case common.UnknownVariant:
		return State{Code: common.SrcVariant}
	case transitioningMark:
		return State{Transitioning: true}
	default:
		return State{Code: v}
	}
}

// BeginTransition marks the asset as mid-switch. A second switch while one
// is in flight is refused rather than interleaved.
func (s *Store) BeginTransition(asset *scene.Node) error {
	if s.State(asset).Transitioning {
		return fmt.Errorf("%w: %s", ErrTransitioning, asset.Name)
	}
	s.g.Data(asset).Set(common.DataVariantCode, transitioningMark)
	return nil
}

// EndTransition records the variant the asset now displays.
func (s *Store) EndTransition(asset *scene.Node, code string) {
	s.g.Data(asset).Set(common.DataVariantCode, code)
}
