package pseudocode

import (
	"strings"

	"github.com/matzehuels/cartastrutturata/pkg/errors"
)

// Option configures [Build] and [Parse].
type Option func(*builder)

// WithStrict makes structural mismatches fail instead of being repaired.
// An unclosed block yields an error with code UNMATCHED_BLOCK; a SE header
// that is not followed by an ALLORA block yields ORPHAN_CONDITION.
func WithStrict() Option {
	return func(b *builder) { b.strict = true }
}

// Parse splits code into lines and builds the block tree. Windows line
// endings are accepted.
func Parse(code string, opts ...Option) ([]*Node, error) {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return Build(lines, opts...)
}

// Build turns a flat sequence of lines into a forest of nested blocks.
//
// In the default lenient mode Build never returns an error: a block that is
// still open when the input ends is closed there, with whatever children were
// collected.
func Build(lines []string, opts ...Option) ([]*Node, error) {
	b := &builder{cur: cursor{lines: lines}}
	for _, opt := range opts {
		opt(b)
	}

	forest, _ := b.block("")
	if b.strict {
		if b.err == nil {
			b.err = checkConditions(forest)
		}
		if b.err != nil {
			return nil, b.err
		}
	}
	return forest, nil
}

// cursor is the scan position shared by every level of one Build call.
//
// It only moves forward, except that the line which closed a block is left
// in place so the enclosing level examines it again. reentry marks that
// second look: a line closes at most one block, so the enclosing level
// must not treat it as its own closer.
type cursor struct {
	lines   []string
	pos     int
	reentry bool
}

func (c *cursor) done() bool   { return c.pos >= len(c.lines) }
func (c *cursor) text() string { return strings.TrimSpace(c.lines[c.pos]) }

type builder struct {
	cur    cursor
	strict bool
	err    error
}

// block collects nodes until a line closes opener. It returns the index of
// the closing line, which is not consumed, or -1 if the input ran out.
func (b *builder) block(opener string) ([]*Node, int) {
	nodes := make([]*Node, 0)
	for !b.cur.done() {
		value := b.cur.text()
		reentry := b.cur.reentry
		b.cur.reentry = false

		if opener != "" && !reentry && closes(value, opener) {
			return nodes, b.cur.pos
		}

		if kw, ok := openerOf(value); ok {
			nodes = b.open(nodes, kw, value)
			continue
		}

		nodes = append(nodes, &Node{Value: value, Size: leafSize(value), Line: b.cur.pos + 1})
		b.cur.pos++
	}
	return nodes, -1
}

// open consumes the block that starts at the cursor and appends it, with
// any synthetic siblings, to nodes.
func (b *builder) open(nodes []*Node, kw, value string) []*Node {
	line := b.cur.pos + 1
	b.cur.pos++

	children, closedAt := b.block(kw)

	if kw == KeywordElse {
		nodes = append(nodes, orNode())
	}
	nodes = append(nodes, &Node{
		Value:   value,
		Size:    padding(kw, Size(children)),
		Content: children,
		Line:    line,
	})

	closing := ""
	if closedAt >= 0 {
		closing = strings.TrimSpace(b.cur.lines[closedAt])
		b.cur.reentry = true
	} else {
		b.unmatched(kw, line)
	}

	// A THEN branch that ends without an ELSE gets an empty one.
	if kw == KeywordThen && (closedAt < 0 || hasKeywordSuffix(closing, KeywordEndIf)) {
		nodes = append(nodes, orNode(), skipBranch())
	}
	return nodes
}

// unmatched records the first block left open at end of input.
func (b *builder) unmatched(kw string, line int) {
	if !b.strict || b.err != nil {
		return
	}
	b.err = errors.New(errors.ErrCodeUnmatchedBlock,
		"%s opened at line %d is never closed (expected %s)",
		kw, line, strings.Join(Closers(kw), " or "))
}

// checkConditions reports the first SE header whose next non-blank sibling
// is not an ALLORA block.
func checkConditions(forest []*Node) error {
	var err error
	var check func(nodes []*Node)
	check = func(nodes []*Node) {
		for i, n := range nodes {
			if err != nil {
				return
			}
			if n.IsBlock() {
				check(n.Content)
				continue
			}
			if !IsConditionHeader(n.Value) {
				continue
			}
			if next := nextNonBlank(nodes, i+1); next == nil || next.Opener() != KeywordThen {
				err = errors.New(errors.ErrCodeOrphanCondition,
					"condition %q at line %d is not followed by %s", n.Value, n.Line, KeywordThen)
			}
		}
	}
	check(forest)
	return err
}

func nextNonBlank(nodes []*Node, from int) *Node {
	for _, n := range nodes[from:] {
		if n.Value != "" {
			return n
		}
	}
	return nil
}

func orNode() *Node {
	return &Node{Value: SyntheticOr, Size: 1, Synthetic: true}
}

func skipBranch() *Node {
	return &Node{
		Value:     KeywordElse,
		Size:      2,
		Content:   []*Node{{Value: SyntheticSkip, Size: 1, Synthetic: true}},
		Synthetic: true,
	}
}
