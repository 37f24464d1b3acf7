package paper

import (
	"strings"

	"github.com/matzehuels/cartastrutturata/pkg/canvas"
	"github.com/matzehuels/cartastrutturata/pkg/highlight"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// Sheet geometry.
const (
	SheetColumns  = 100 // columns sized as square cells
	CellWidth     = 3   // width of a square cell, in character units
	TitleRow      = 1
	PseudocodeRow = 3
)

// Banner texts.
const (
	PseudocodeBanner = "PSEUDOCODIFICA"
	PaperBanner      = "CARTA STRUTTURATA"
)

// IndentWidth is the number of leading spaces per indentation level in the
// flat transcription. A tab counts as one full level.
const IndentWidth = 4

// Document is a program to be drawn on a sheet.
type Document struct {
	Title  string
	Author string
	Code   string
}

// Heading returns the text of the title row.
func (d Document) Heading() string {
	if d.Author == "" {
		return d.Title
	}
	return d.Author + " - " + d.Title
}

// Lines returns the program split into lines, without carriage returns.
func (d Document) Lines() []string {
	lines := strings.Split(d.Code, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Compose parses doc and draws the full sheet on c. It only fails when the
// strict option is set and the program is not balanced.
func Compose(c canvas.Canvas, doc Document, opts ...Option) error {
	var popts []pseudocode.Option
	if newSettings(opts).strict {
		popts = append(popts, pseudocode.WithStrict())
	}
	forest, err := pseudocode.Parse(doc.Code, popts...)
	if err != nil {
		return err
	}
	ComposeForest(c, doc, forest, opts...)
	return nil
}

// ComposeForest draws the sheet for an already parsed forest and returns the
// first row below the diagram.
func ComposeForest(c canvas.Canvas, doc Document, forest []*pseudocode.Node, opts ...Option) int {
	for col := 1; col <= SheetColumns; col++ {
		c.SetColumnWidth(col, CellWidth)
	}

	c.WriteText(TitleRow, 1, highlight.Plain(doc.Heading()), canvas.TextTitle)

	lines := doc.Lines()
	writePseudocode(c, PseudocodeRow, lines)

	band := PseudocodeRow + len(lines) + 2
	banner(c, band, PaperBanner)
	return Layout(c, pseudocode.Root(doc.Title, forest), band+2, opts...)
}

func banner(c canvas.Canvas, row int, text string) {
	c.WriteText(row, 1, highlight.Plain(text), canvas.TextBanner)
	c.SetRowFill(row, canvas.BannerFill)
}

func writePseudocode(c canvas.Canvas, row int, lines []string) {
	banner(c, row, PseudocodeBanner)
	for i, line := range lines {
		runs := highlight.Highlight(strings.TrimSpace(line), highlight.Pseudocode)
		c.WriteText(row+1+i, Indentation(line)+1, runs, canvas.TextPlain)
	}
}

// Indentation returns the indentation level of line: one level per
// IndentWidth leading spaces, with each tab worth IndentWidth spaces.
func Indentation(line string) int {
	spaces := 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			spaces += IndentWidth
		default:
			return spaces / IndentWidth
		}
	}
	return spaces / IndentWidth
}
