// Package fit trims translated text that overflows its fixed-size
// container, replacing the tail with an ellipsis. Trimming is a display
// concession only: the stored variant keeps the full text.
package fit

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/styled"
)

type Fitter struct {
	g   scene.Graph
	log *zap.Logger
}

func New(g scene.Graph, log *zap.Logger) *Fitter {
	return &Fitter{g: g, log: log}
}

// Fit trims the node's live text until it fits its container, assuming the
// node currently displays t. Only the canonical fixed-label construction is
// eligible: an auto-resizing text node pinned at the container origin as
// the container's sole child. Everything else is left alone.
func (f *Fitter) Fit(node *scene.Node, t *styled.Text) error {
	frame := f.g.Parent(node)
	if !eligible(node, frame) || f.fits(node, frame) {
		return nil
	}

	runs := f.g.Runs(node)
	runes := []rune(t.Text)
	start, end := 0, len(runes)
	lastFit := 0
	for end-start > 1 {
		mid := (start + end) / 2
		if err := f.setTrimmed(runs, t, string(runes[:mid])); err != nil {
			f.log.Error("Trim probe failed, keeping last fitting length",
				zap.String("node", node.Name), zap.Int("length", mid), zap.Error(err))
			break
		}
		if f.fits(node, frame) {
			lastFit = mid
			start = mid
		} else {
			end = mid
		}
	}
	if !f.fits(node, frame) {
		if err := f.setTrimmed(runs, t, string(runes[:lastFit])); err != nil {
			return fmt.Errorf("restoring last fitting text on %q: %w", node.Name, err)
		}
	}
	return nil
}

// eligible gates the trimming heuristic to nodes whose geometry makes
// overflow measurable: the text node auto-resizes, sits at the container
// origin and is the container's only child.
func eligible(node, frame *scene.Node) bool {
	if frame == nil {
		return false
	}
	switch frame.Type {
	case scene.NodeFrame, scene.NodeGroup, scene.NodeComponent:
	default:
		return false
	}
	if node.AutoResize == scene.ResizeNone {
		return false
	}
	if math.Round(node.X) != 0 || math.Round(node.Y) != 0 {
		return false
	}
	return len(frame.Children) == 1
}

// fits compares the auto-sized text extent against the fixed container.
// Auto Width compares both axes; Auto Height only the vertical one, since
// the width is pinned.
func (f *Fitter) fits(node, frame *scene.Node) bool {
	heightOK := math.Round(frame.Height) >= math.Round(node.Height)
	if node.AutoResize == scene.ResizeHeight {
		return heightOK
	}
	return heightOK && math.Round(frame.Width) >= math.Round(node.Width)
}

// setTrimmed displays prefix plus an ellipsis on the node, then re-applies
// run styling clamped to the shorter text.
func (f *Fitter) setTrimmed(runs scene.TextRuns, t *styled.Text, prefix string) error {
	if err := adjustCharacters(runs, prefix+common.Ellipsis); err != nil {
		return err
	}
	if len(t.Ranges) == 0 {
		return nil
	}
	return styled.ApplyStyles(f.g, runs, t, f.log)
}

// adjustCharacters rewrites the node's characters by editing only past the
// common prefix, so styling of the untouched head survives the edit.
func adjustCharacters(runs scene.TextRuns, next string) error {
	old := []rune(runs.Characters())
	want := []rune(next)
	i := 0
	for i < len(old) && i < len(want) && old[i] == want[i] {
		i++
	}
	if i < len(old) {
		if err := runs.Delete(i, len(old)); err != nil {
			return err
		}
	}
	if i < len(want) {
		if err := runs.Insert(i, string(want[i:])); err != nil {
			return err
		}
	}
	return nil
}
