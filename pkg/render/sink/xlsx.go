package sink

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/cartastrutturata/pkg/canvas"
)

const (
	maxSheetName  = 31
	defaultSheet  = "Sheet1"
	invalidInName = `:\/?*[]`
)

// XLSXOption configures XLSX rendering via [RenderXLSX].
type XLSXOption func(*xlsxRenderer)

type xlsxRenderer struct {
	sheet string
	font  string
}

// WithSheetName names the worksheet. The name is sanitised with [SheetName].
func WithSheetName(name string) XLSXOption {
	return func(r *xlsxRenderer) { r.sheet = name }
}

// WithFont sets the font family of titles and banners.
func WithFont(family string) XLSXOption {
	return func(r *xlsxRenderer) {
		if family != "" {
			r.font = family
		}
	}
}

// RenderXLSX writes g as a single-sheet workbook.
func RenderXLSX(g *canvas.Grid, opts ...XLSXOption) ([]byte, error) {
	r := xlsxRenderer{font: DefaultFont}
	for _, opt := range opts {
		opt(&r)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(r.sheet)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	w := &xlsxWriter{file: f, sheet: sheet, font: r.font, styles: make(map[cellStyle]int)}
	if err := w.columns(g); err != nil {
		return nil, err
	}
	if err := w.rows(g); err != nil {
		return nil, err
	}
	if err := w.cells(g); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetName makes name a valid worksheet name: characters Excel rejects are
// replaced, leading and trailing apostrophes are removed and the result is
// cut to 31 characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidInName, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	if name == "" {
		return defaultSheet
	}
	return name
}

type cellStyle struct {
	edges canvas.Edge
	fill  canvas.Fill
}

type xlsxWriter struct {
	file   *excelize.File
	sheet  string
	font   string
	styles map[cellStyle]int
}

func (w *xlsxWriter) style(s cellStyle) (int, error) {
	if id, ok := w.styles[s]; ok {
		return id, nil
	}

	var st excelize.Style
	for _, side := range []struct {
		edge canvas.Edge
		name string
	}{
		{canvas.EdgeLeft, "left"},
		{canvas.EdgeTop, "top"},
		{canvas.EdgeBottom, "bottom"},
	} {
		if s.edges.Has(side.edge) {
			st.Border = append(st.Border, excelize.Border{Type: side.name, Color: BorderColor, Style: 1})
		}
	}
	if s.fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Color: []string{s.fill.RGB()}, Pattern: 1}
	}

	id, err := w.file.NewStyle(&st)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[s] = id
	return id, nil
}

func (w *xlsxWriter) columns(g *canvas.Grid) error {
	for _, col := range g.WidthColumns() {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(w.sheet, name, name, g.ColumnWidth(col)); err != nil {
			return fmt.Errorf("column %s width: %w", name, err)
		}
	}
	return nil
}

func (w *xlsxWriter) rows(g *canvas.Grid) error {
	for _, row := range g.FilledRows() {
		id, err := w.style(cellStyle{fill: g.Fill(row)})
		if err != nil {
			return err
		}
		if err := w.file.SetRowStyle(w.sheet, row, row, id); err != nil {
			return fmt.Errorf("row %d fill: %w", row, err)
		}
	}
	return nil
}

func (w *xlsxWriter) cells(g *canvas.Grid) error {
	for _, p := range g.Positions() {
		c, _ := g.Cell(p.Row, p.Col)
		name, err := excelize.CoordinatesToCellName(p.Col, p.Row)
		if err != nil {
			return err
		}

		// A cell style replaces the row style, so the fill is carried over.
		if s := (cellStyle{edges: c.Edges, fill: g.Fill(p.Row)}); s != (cellStyle{}) {
			id, err := w.style(s)
			if err != nil {
				return err
			}
			if err := w.file.SetCellStyle(w.sheet, name, name, id); err != nil {
				return fmt.Errorf("style %s: %w", name, err)
			}
		}

		if c.Text() == "" {
			continue
		}
		if err := w.file.SetCellRichText(w.sheet, name, w.richText(c)); err != nil {
			return fmt.Errorf("text %s: %w", name, err)
		}
	}
	return nil
}

func (w *xlsxWriter) richText(c canvas.Cell) []excelize.RichTextRun {
	runs := make([]excelize.RichTextRun, 0, len(c.Runs))
	for _, run := range c.Runs {
		var font *excelize.Font
		switch {
		case c.Style == canvas.TextTitle:
			font = &excelize.Font{Family: w.font, Bold: true}
		case c.Style == canvas.TextBanner:
			font = &excelize.Font{Family: w.font, Color: BannerText}
		case run.Keyword:
			font = &excelize.Font{Bold: true, Color: KeywordColor}
		}
		runs = append(runs, excelize.RichTextRun{Text: run.Text, Font: font})
	}
	return runs
}
