package pipeline

import (
	"github.com/matzehuels/cartastrutturata/pkg/canvas"
	"github.com/matzehuels/cartastrutturata/pkg/paper"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// Sheet is a composed document: the grid it was drawn on and the
// operations that drew it, in order.
type Sheet struct {
	Title  string
	Forest []*pseudocode.Node
	Grid   *canvas.Grid
	Ops    []canvas.Op
	Rows   int // first row below the diagram
}

// Compose draws the sheet for forest.
func Compose(forest []*pseudocode.Node, opts Options) *Sheet {
	grid := canvas.NewGrid()
	rec := canvas.NewRecorder()

	doc := paper.Document{Title: opts.Title, Author: opts.Author, Code: opts.Code}
	rows := paper.ComposeForest(canvas.Multi(grid, rec), doc, forest, paper.WithActionLabel(opts.ActionLabel))

	return &Sheet{
		Title:  opts.Title,
		Forest: forest,
		Grid:   grid,
		Ops:    rec.Ops,
		Rows:   rows,
	}
}
