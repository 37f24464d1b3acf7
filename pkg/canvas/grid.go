package canvas

import (
	"slices"

	"github.com/matzehuels/cartastrutturata/pkg/highlight"
)

// Cell is the content of one grid position.
type Cell struct {
	Runs  []highlight.Run
	Style TextStyle
	Edges Edge
}

// Text returns the plain text of the cell.
func (c Cell) Text() string { return highlight.String(c.Runs) }

// HasText reports whether a text operation targeted the cell.
func (c Cell) HasText() bool { return c.Runs != nil }

// Pos is a 1-based cell coordinate.
type Pos struct {
	Row, Col int
}

// Grid is an in-memory Canvas with spreadsheet semantics: a later text write
// to a cell replaces its text and a later border replaces its edges.
type Grid struct {
	cells  map[Pos]*Cell
	fills  map[int]Fill
	widths map[int]float64
	rows   int
	cols   int
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{
		cells:  make(map[Pos]*Cell),
		fills:  make(map[int]Fill),
		widths: make(map[int]float64),
	}
}

func (g *Grid) cell(row, col int) *Cell {
	if row < 1 || col < 1 {
		return nil
	}
	p := Pos{row, col}
	c, ok := g.cells[p]
	if !ok {
		c = &Cell{}
		g.cells[p] = c
	}
	g.rows = max(g.rows, row)
	g.cols = max(g.cols, col)
	return c
}

func (g *Grid) WriteText(row, col int, runs []highlight.Run, style TextStyle) {
	c := g.cell(row, col)
	if c == nil {
		return
	}
	if runs == nil {
		runs = []highlight.Run{}
	}
	c.Runs = slices.Clone(runs)
	c.Style = style
}

func (g *Grid) DrawBorder(row, col int, edges Edge) {
	if c := g.cell(row, col); c != nil {
		c.Edges = edges
	}
}

func (g *Grid) SetRowFill(row int, fill Fill) {
	if row < 1 {
		return
	}
	g.fills[row] = fill
	g.rows = max(g.rows, row)
}

func (g *Grid) SetColumnWidth(col int, width float64) {
	if col < 1 {
		return
	}
	g.widths[col] = width
}

// Cell returns the cell at (row, col) and whether anything was drawn there.
func (g *Grid) Cell(row, col int) (Cell, bool) {
	c, ok := g.cells[Pos{row, col}]
	if !ok {
		return Cell{}, false
	}
	return *c, true
}

// Rows returns the highest row that received an operation.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the highest column that holds a cell.
func (g *Grid) Cols() int { return g.cols }

// Fill returns the background of row, or "" when unset.
func (g *Grid) Fill(row int) Fill { return g.fills[row] }

// FilledRows returns the rows with a background, in ascending order.
func (g *Grid) FilledRows() []int {
	rows := make([]int, 0, len(g.fills))
	for r := range g.fills {
		rows = append(rows, r)
	}
	slices.Sort(rows)
	return rows
}

// ColumnWidth returns the width of col, or 0 when unset.
func (g *Grid) ColumnWidth(col int) float64 { return g.widths[col] }

// WidthColumns returns the columns with an explicit width, in ascending order.
func (g *Grid) WidthColumns() []int {
	cols := make([]int, 0, len(g.widths))
	for c := range g.widths {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols
}

// Positions returns every populated cell position in row-major order.
func (g *Grid) Positions() []Pos {
	out := make([]Pos, 0, len(g.cells))
	for p := range g.cells {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Pos) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return out
}
