// Package nodelink renders a block tree as a node-link diagram.
//
// Where the structured paper shows nesting as brackets, this view draws the
// parse tree itself: every block is a box with arrows to its children. It is
// mostly useful to check how a program was parsed, including the synthetic
// OR and implicit ELSE nodes.
//
//	root := pseudocode.Root(title, forest)
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [RenderSVG] uses the Graphviz library bundled by go-graphviz, so no
// external binary is needed. [RenderPDF] and [RenderPNG] additionally need
// rsvg-convert.
package nodelink
