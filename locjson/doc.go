// Package locjson builds and parses the LocJSON interchange documents that
// carry translatable text between the scene graph and a localization
// pipeline. One document describes one asset and one variant.
package locjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/loctools/figma-plugin/common"
	"github.com/loctools/figma-plugin/scene"
	"github.com/loctools/figma-plugin/variants"
)

const (
	// LineLength is the wrap width of translation source lines.
	LineLength = 50
	// IndentWidth is the marshaling indentation of emitted documents.
	IndentWidth = 4

	// PreviewURLPrefix is a placeholder the localization pipeline replaces
	// with the address previews are served from.
	PreviewURLPrefix = "{PREVIEW_URL_PREFIX}"
	previewFileExt   = ".png"
)

type Properties struct {
	Comments []string `json:"comments,omitempty"`
	AssetID  string   `json:"x-figma-asset-id,omitempty"`
}

type UnitProperties struct {
	Comments []string `json:"comments,omitempty"`
}

// Unit is one translatable string, keyed by the original node id so the
// unit survives export-time cloning.
type Unit struct {
	Key        string         `json:"key"`
	Properties UnitProperties `json:"properties"`
	Source     []string       `json:"source"`
}

type Document struct {
	Properties Properties `json:"properties"`
	Units      []Unit     `json:"units"`
}

// Build assembles the source-variant document for an asset. The asset may
// be an export-time clone: pageName names the original page and assetID the
// original asset node. Text nodes without an original id are skipped with
// an error log, never emitted under a clone-local key.
func Build(g scene.Graph, vars *variants.Store, asset *scene.Node, pageName, assetID, comments string, log *zap.Logger) *Document {
	doc := &Document{
		Properties: Properties{
			Comments: []string{
				"This file was generated by Loctools Figma plugin.",
				"File: " + g.Root().Name,
				"Page: " + pageName,
				"Asset: " + asset.Name,
			},
			AssetID: assetID,
		},
		Units: []Unit{},
	}
	if comments != "" {
		doc.Properties.Comments = append(doc.Properties.Comments, strings.Split(comments, "\n")...)
	}

	filePath := strings.Join(scene.AssetPath(g, asset, pageName), "/")

	for node := range scene.TextNodes(asset) {
		text, markup := vars.Rendered(node, common.SrcVariant)

		var unitComments []string
		if markup {
			unitComments = append(unitComments, "Text must be formatted according to XML rules")
		}
		unitComments = append(unitComments, "Path: "+strings.Join(pathWithin(g, node, asset), " > "))

		origID := g.Data(node).Get(common.DataID)
		if origID == "" {
			log.Error("Text node has no original id, skipping unit", zap.String("node", string(node.ID)))
			continue
		}
		unitComments = append(unitComments,
			"Source preview: "+PreviewURLPrefix+filePath+"/"+common.SrcVariant+previewFileExt+"#"+origID)

		doc.Units = append(doc.Units, Unit{
			Key:        origID,
			Properties: UnitProperties{Comments: unitComments},
			Source:     Wrap(text, LineLength),
		})
	}
	return doc
}

// pathWithin renders the ancestor chain of node below asset, nearest
// ancestor first. Unnamed nodes fall back to type plus original id.
func pathWithin(g scene.Graph, node, asset *scene.Node) []string {
	var path []string
	for n := node; n != nil && n != asset; n = g.Parent(n) {
		label := n.Name
		if label == "" {
			id := g.Data(n).Get(common.DataID)
			if id == "" {
				id = string(n.ID)
			}
			label = n.Type.String() + "#" + id
		}
		path = append([]string{label}, path...)
	}
	return path
}

// Marshal renders a document the way emitted files are compared: stable
// key order, four-space indentation, trailing newline.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", strings.Repeat(" ", IndentWidth))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Parse reads an interchange document received from the localization
// pipeline.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing localization document: %w", err)
	}
	return &doc, nil
}

// Text joins a unit's wrapped source lines back into the full string.
func (u *Unit) Text() string {
	return strings.Join(u.Source, "")
}
