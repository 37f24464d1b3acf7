// Package sink turns a populated [canvas.Grid] into output files.
//
// # Formats
//
//   - XLSX: the structured-paper workbook, one sheet per program
//   - SVG: a static drawing of the same grid
//   - Text: a character grid for terminals, optionally styled with ANSI colours
//   - JSON: the ordered draw operations recorded by [canvas.Recorder]
//
// Every sink reads the grid with spreadsheet semantics: text written to a
// cell flows to the right over empty neighbours, borders belong to the cell
// that was drawn, and row fills span the whole row.
//
//	g := canvas.NewGrid()
//	_ = paper.Compose(g, doc)
//	data, err := sink.RenderXLSX(g, sink.WithSheetName(doc.Title))
//
// [canvas.Grid]: github.com/matzehuels/cartastrutturata/pkg/canvas.Grid
// [canvas.Recorder]: github.com/matzehuels/cartastrutturata/pkg/canvas.Recorder
package sink
