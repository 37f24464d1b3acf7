package pipeline

import (
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// Parse builds the block tree of opts.Code. With opts.Strict set, an
// unbalanced program is rejected instead of repaired.
func Parse(opts Options) ([]*pseudocode.Node, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	var popts []pseudocode.Option
	if opts.Strict {
		popts = append(popts, pseudocode.WithStrict())
	}
	forest, err := pseudocode.Parse(opts.Code, popts...)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("built block tree", "nodes", countNodes(forest), "rows", pseudocode.Size(forest))
	return forest, nil
}

func countNodes(forest []*pseudocode.Node) int {
	n := 0
	pseudocode.Walk(forest, func(*pseudocode.Node, int) bool {
		n++
		return true
	})
	return n
}
