// Package pkg provides the libraries behind Carta Strutturata.
//
// # Overview
//
// Carta Strutturata turns Italian teaching pseudocode into "structured
// paper": a spreadsheet-like diagram in which every block is a bracket, the
// statements it contains sit one lane to the right, and conditions and
// loops are labelled next to the bracket that encloses them.
//
// # Architecture
//
// The typical data flow:
//
//	pseudocode text
//	     ↓
//	[pseudocode] package (block tree with row sizes)
//	     ↓
//	[paper] package (draw operations on a [canvas])
//	     ↓
//	[render/sink] package (XLSX, SVG, text, JSON)
//
// [pipeline] runs the three stages with caching ([cache]) and reports them
// to [observability] hooks. [render/nodelink] draws the block tree itself
// with Graphviz; [io] reads and writes it as JSON or YAML.
//
// # Quick Start
//
//	forest, err := pseudocode.Parse(code)
//	if err != nil {
//	    return err
//	}
//	grid := canvas.NewGrid()
//	paper.ComposeForest(grid, paper.Document{Title: "Somma", Code: code}, forest)
//	xlsx, err := sink.RenderXLSX(grid, sink.WithSheetName("Somma"))
//
// # Main Packages
//
// [pseudocode] - Keyword table, block tree builder (lenient or strict) and
// tree helpers.
//
// [highlight] - Splits a line into runs and marks the keyword runs.
//
// [canvas] - Drawing surface interface with an in-memory grid and an
// operation recorder.
//
// [paper] - Lane geometry, the structured-paper layout and the full sheet.
//
// [render/sink] - Output encoders for a drawn grid.
//
// [config] - TOML configuration file.
//
// [errors] - Coded errors shared by the CLI and the HTTP server.
package pkg
