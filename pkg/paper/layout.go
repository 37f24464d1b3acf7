package paper

import (
	"strings"

	"github.com/matzehuels/cartastrutturata/pkg/canvas"
	"github.com/matzehuels/cartastrutturata/pkg/highlight"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// DefaultActionLabel is the placeholder written where a block's action name
// goes. Users replace it by hand once the sheet is opened.
const DefaultActionLabel = "Nome Azione"

// Option configures Layout and Compose.
type Option func(*settings)

type settings struct {
	actionLabel string
	strict      bool
}

func newSettings(opts []Option) settings {
	s := settings{actionLabel: DefaultActionLabel}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithActionLabel replaces the block placeholder text. An empty label keeps
// the default.
func WithActionLabel(label string) Option {
	return func(s *settings) {
		if label != "" {
			s.actionLabel = label
		}
	}
}

// WithStrict makes Compose reject unbalanced programs instead of closing
// open blocks at the end of input.
func WithStrict() Option {
	return func(s *settings) { s.strict = true }
}

// Layout draws root at nesting level 0 starting at startRow and returns the
// first row below the diagram.
func Layout(c canvas.Canvas, root *pseudocode.Node, startRow int, opts ...Option) int {
	d := &destructurer{
		c:       c,
		label:   newSettings(opts).actionLabel,
		pending: make(map[int][]highlight.Run),
	}
	d.frame(root, startRow, 0)
	return startRow + root.Size
}

// destructurer holds the state of a single Layout call. Condition labels
// read from "SE" headers wait in pending, keyed by nesting level, until the
// ALLORA block at the same level consumes them.
type destructurer struct {
	c       canvas.Canvas
	label   string
	pending map[int][]highlight.Run
}

func (d *destructurer) text(row, col int, s string) {
	d.c.WriteText(row, col, highlight.Highlight(s, highlight.StructuredPaper), canvas.TextPlain)
}

// frame draws a block as a bracket with its action placeholder and lays its
// children out in the next lane.
func (d *destructurer) frame(n *pseudocode.Node, start, depth int) {
	if n.Size > 0 {
		d.c.WriteText(Center(start, n.Size), Lane(depth), highlight.Plain(d.label), canvas.TextPlain)
	}
	d.children(n, start, depth)
}

func (d *destructurer) children(n *pseudocode.Node, start, depth int) {
	drawBracket(d.c, start, BracketColumn(depth+1), n.Size-1)

	row := start + 1
	for _, child := range n.Content {
		d.node(child, row, depth+1)
		row += child.Size
	}
	// A header left unconsumed belongs to this content list only.
	delete(d.pending, depth+1)
}

func (d *destructurer) node(n *pseudocode.Node, start, depth int) {
	kw := n.Opener()
	flat := flattened(n, kw)
	center := Center(start, n.Size)
	lane := Lane(depth)

	if n.IsBlock() && n.Size > 0 && !flat {
		d.c.WriteText(center, lane, highlight.Plain(d.label), canvas.TextPlain)
	}

	switch {
	case kw == pseudocode.KeywordThen:
		if cond, ok := d.pending[depth]; ok {
			delete(d.pending, depth)
			d.c.WriteText(center+1, lane, cond, canvas.TextPlain)
		}
	case kw == pseudocode.KeywordElse:
		d.text(center+1, lane, "(ELSE)")
	case kw == pseudocode.KeywordUntil:
		d.text(center+1, lane, untilLabel(n.Value))
	case !n.IsBlock() && pseudocode.IsConditionHeader(n.Value):
		d.pending[depth] = highlight.Highlight("("+n.Value+")", highlight.StructuredPaper)
		return
	}

	switch {
	case flat:
		d.text(start, lane, n.Content[0].Value)
	case n.IsBlock():
		d.children(n, start, depth)
	case n.Value == pseudocode.SyntheticOr:
		d.text(start, lane+2, n.Value)
	case n.Size > 0:
		d.text(start, lane, n.Value)
	}
}

// flattened reports whether a conditional branch holding a single line is
// drawn inline instead of as a nested block.
func flattened(n *pseudocode.Node, kw string) bool {
	if kw != pseudocode.KeywordThen && kw != pseudocode.KeywordElse {
		return false
	}
	return len(n.Content) == 1 && !n.Content[0].IsBlock()
}

func untilLabel(value string) string {
	cond := strings.TrimSpace(strings.TrimPrefix(value, pseudocode.KeywordUntil))
	if cond == "" {
		return "(UNTIL)"
	}
	return "(UNTIL " + cond + ")"
}
