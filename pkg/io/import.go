package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cartastrutturata/pkg/errors"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// ReadJSON decodes a forest written by [WriteJSON].
//
// Each node must have a "value" and a "size"; blocks carry a "content"
// array, which may be empty. Sizes are checked with [pseudocode.Validate],
// so a hand-edited tree that no longer adds up is rejected with an
// INVALID_INPUT error. The top-level "size" must match the sum of the nodes.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]*pseudocode.Node, error) {
	var data tree
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}

	forest := toForest(data.Nodes)
	if err := pseudocode.Validate(forest); err != nil {
		return nil, err
	}
	if got := pseudocode.Size(forest); got != data.Size {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree size is %d, nodes add up to %d", data.Size, got)
	}
	return forest, nil
}

func toForest(nodes []node) []*pseudocode.Node {
	out := make([]*pseudocode.Node, len(nodes))
	for i, n := range nodes {
		out[i] = &pseudocode.Node{Value: n.Value, Size: n.Size, Line: n.Line, Synthetic: n.Synthetic}
		if n.Content != nil {
			out[i].Content = toForest(*n.Content)
		}
	}
	return out
}

// ImportJSON reads a forest from a JSON file at path.
func ImportJSON(path string) ([]*pseudocode.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
