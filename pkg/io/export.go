package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

type tree struct {
	Size  int    `json:"size" yaml:"size"`
	Nodes []node `json:"nodes" yaml:"nodes"`
}

// node mirrors pseudocode.Node. Content is a pointer so that an empty block
// ("content": []) stays distinct from a leaf (no content key).
type node struct {
	Value     string  `json:"value" yaml:"value"`
	Size      int     `json:"size" yaml:"size"`
	Line      int     `json:"line,omitempty" yaml:"line,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
	Content   *[]node `json:"content,omitempty" yaml:"content,omitempty"`
}

func fromForest(forest []*pseudocode.Node) []node {
	out := make([]node, len(forest))
	for i, n := range forest {
		out[i] = node{Value: n.Value, Size: n.Size, Line: n.Line, Synthetic: n.Synthetic}
		if n.IsBlock() {
			content := fromForest(n.Content)
			out[i].Content = &content
		}
	}
	return out
}

func encodeTree(forest []*pseudocode.Node) tree {
	return tree{Size: pseudocode.Size(forest), Nodes: fromForest(forest)}
}

// WriteJSON encodes a forest as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(forest []*pseudocode.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(encodeTree(forest)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a forest as YAML and writes it to w, using the same
// field names as [WriteJSON].
func WriteYAML(forest []*pseudocode.Node, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(encodeTree(forest)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes a forest to a JSON file at path.
func ExportJSON(forest []*pseudocode.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(forest, f)
}
