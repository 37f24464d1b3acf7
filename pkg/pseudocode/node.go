package pseudocode

import "github.com/matzehuels/cartastrutturata/pkg/errors"

// Node is one element of the block tree.
//
// Leaves have a nil Content; blocks (including synthetic ones) have a
// non-nil, possibly empty, Content. Size is the number of grid rows the node
// and all its descendants occupy when drawn.
type Node struct {
	Value   string  // trimmed source line, or a synthetic literal
	Size    int     // rows occupied in the diagram
	Content []*Node // children; nil for leaves

	Line      int  // 1-based source line, 0 for synthetic nodes
	Synthetic bool // inserted by the builder rather than read from input
}

// IsBlock reports whether n has a content list.
func (n *Node) IsBlock() bool { return n.Content != nil }

// Opener returns the keyword that opened block n, or "" for leaves and
// blocks that were not opened by a keyword (such as a program root).
func (n *Node) Opener() string {
	if !n.IsBlock() {
		return ""
	}
	kw, _ := openerOf(n.Value)
	return kw
}

// Size returns the total number of rows occupied by nodes.
func Size(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += n.Size
	}
	return total
}

// Root wraps a forest in a synthetic block labelled with the program title.
// The root reserves one row above and one below the program body.
func Root(title string, forest []*Node) *Node {
	if forest == nil {
		forest = []*Node{}
	}
	return &Node{
		Value:     title,
		Size:      Size(forest) + 2,
		Content:   forest,
		Synthetic: true,
	}
}

// Walk visits every node in depth-first pre-order. depth is 0 for the nodes
// of the given forest. Returning false from fn skips the node's children.
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	walk(forest, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int) bool) {
	for _, n := range nodes {
		if fn(n, depth) && n.IsBlock() {
			walk(n.Content, depth+1, fn)
		}
	}
}

// Flatten returns the values of all non-synthetic nodes in source order.
// For input that parsed without synthetic replacements this reproduces the
// trimmed input lines.
func Flatten(forest []*Node) []string {
	var out []string
	Walk(forest, func(n *Node, _ int) bool {
		if !n.Synthetic {
			out = append(out, n.Value)
		}
		return true
	})
	return out
}

// Stats summarises a forest.
type Stats struct {
	Blocks   int // nodes with content, synthetic included
	Leaves   int // nodes without content
	MaxDepth int // deepest nesting level reached (0 for a flat program)
	Rows     int // total rows occupied
}

// Summarize computes Stats for forest.
func Summarize(forest []*Node) Stats {
	s := Stats{Rows: Size(forest)}
	Walk(forest, func(n *Node, depth int) bool {
		if n.IsBlock() {
			s.Blocks++
		} else {
			s.Leaves++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		return true
	})
	return s
}

// Validate checks that every size in forest agrees with the sizing rules of
// the builder. It is used on trees that were not produced by Build, such as
// decoded JSON.
func Validate(forest []*Node) error {
	var err error
	Walk(forest, func(n *Node, _ int) bool {
		if err != nil {
			return false
		}
		want := leafSize(n.Value)
		if n.IsBlock() {
			kw := n.Opener()
			if kw == "" {
				err = errors.New(errors.ErrCodeInvalidInput, "block %q does not start with an opening keyword", n.Value)
				return false
			}
			want = padding(kw, Size(n.Content))
		}
		if n.Size != want {
			err = errors.New(errors.ErrCodeInvalidInput, "node %q has size %d, want %d", n.Value, n.Size, want)
		}
		return err == nil
	})
	return err
}
