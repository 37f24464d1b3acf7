package paper

import "github.com/matzehuels/cartastrutturata/pkg/canvas"

// LaneWidth is the number of columns reserved for each nesting level.
const LaneWidth = 8

// Lane returns the first column of nesting level n.
func Lane(n int) int { return LaneWidth*n + 1 }

// BracketColumn returns the column holding the bracket of a block whose
// children sit at nesting level n.
func BracketColumn(n int) int { return LaneWidth * n }

// Center returns the row where the label of a block of the given size is
// written. It rounds half up, so a two-row block is labelled on its first row.
func Center(start, size int) int {
	return start + (size+1)/2 - 1
}

// drawBracket draws a left bracket spanning rows start through start+height
// on column col, with a tick on the previous column at its midpoint.
func drawBracket(c canvas.Canvas, start, col, height int) {
	c.DrawBorder(start, col, canvas.EdgeLeft|canvas.EdgeTop)
	for i := 1; i < height; i++ {
		c.DrawBorder(start+i, col, canvas.EdgeLeft)
	}
	c.DrawBorder(start+height, col, canvas.EdgeLeft|canvas.EdgeBottom)
	c.DrawBorder(start+height/2, col-1, canvas.EdgeBottom)
}
