package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"unicode/utf8"

	"github.com/matzehuels/cartastrutturata/pkg/canvas"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	unit      float64 // pixels per character unit of column width
	rowHeight float64
	fontSize  float64
	font      string
}

// WithCellSize sets the pixels per column-width unit and the row height.
func WithCellSize(unit, rowHeight float64) SVGOption {
	return func(r *svgRenderer) {
		if unit > 0 {
			r.unit = unit
		}
		if rowHeight > 0 {
			r.rowHeight = rowHeight
		}
	}
}

// WithFontSize sets the text size in pixels.
func WithFontSize(size float64) SVGOption {
	return func(r *svgRenderer) {
		if size > 0 {
			r.fontSize = size
		}
	}
}

// RenderSVG draws g as a static SVG image.
func RenderSVG(g *canvas.Grid, opts ...SVGOption) []byte {
	r := svgRenderer{unit: 7, rowHeight: 20, fontSize: 12, font: DefaultFont}
	for _, opt := range opts {
		opt(&r)
	}

	x := r.columnOffsets(g)
	width := r.width(g, x)
	height := float64(g.Rows()) * r.rowHeight

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")

	for _, row := range g.FilledRows() {
		fmt.Fprintf(&buf, `  <rect x="0" y="%.1f" width="%.1f" height="%.1f" fill="#%s"/>`+"\n",
			r.top(row), width, r.rowHeight, g.Fill(row).RGB())
	}

	fmt.Fprintf(&buf, `  <g stroke="#%s" stroke-width="1">`+"\n", BorderColor)
	for _, p := range g.Positions() {
		c, _ := g.Cell(p.Row, p.Col)
		r.renderBorders(&buf, c.Edges, x[p.Col-1], x[p.Col], r.top(p.Row))
	}
	buf.WriteString("  </g>\n")

	fmt.Fprintf(&buf, `  <g font-family="%s, sans-serif" font-size="%.0f" xml:space="preserve">`+"\n", r.font, r.fontSize)
	for _, p := range g.Positions() {
		c, _ := g.Cell(p.Row, p.Col)
		if c.Text() != "" {
			r.renderText(&buf, c, x[p.Col-1]+2, r.top(p.Row)+r.rowHeight/2)
		}
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) top(row int) float64 { return float64(row-1) * r.rowHeight }

// columnOffsets returns the left edge of every column; x[c-1] is the left
// and x[c] the right edge of column c.
func (r *svgRenderer) columnOffsets(g *canvas.Grid) []float64 {
	cols := g.Cols()
	if wc := g.WidthColumns(); len(wc) > 0 {
		cols = max(cols, wc[len(wc)-1])
	}
	x := make([]float64, cols+1)
	for c := 1; c <= cols; c++ {
		w := g.ColumnWidth(c)
		if w == 0 {
			w = DefaultColumnWidth
		}
		x[c] = x[c-1] + w*r.unit
	}
	return x
}

// width is the drawing width: the sized columns or the longest text,
// whichever reaches further.
func (r *svgRenderer) width(g *canvas.Grid, x []float64) float64 {
	w := x[len(x)-1]
	charWidth := r.fontSize * 0.6
	for _, p := range g.Positions() {
		c, _ := g.Cell(p.Row, p.Col)
		end := x[p.Col-1] + 2 + float64(utf8.RuneCountInString(c.Text()))*charWidth
		w = max(w, end)
	}
	return w
}

func (r *svgRenderer) renderBorders(buf *bytes.Buffer, e canvas.Edge, left, right, top float64) {
	bottom := top + r.rowHeight
	if e.Has(canvas.EdgeTop) {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", left, top, right, top)
	}
	if e.Has(canvas.EdgeBottom) {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", left, bottom, right, bottom)
	}
	if e.Has(canvas.EdgeLeft) {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", left, top, left, bottom)
	}
}

func (r *svgRenderer) renderText(buf *bytes.Buffer, c canvas.Cell, x, y float64) {
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" dominant-baseline="middle"`, x, y)
	switch c.Style {
	case canvas.TextTitle:
		buf.WriteString(` font-weight="bold"`)
	case canvas.TextBanner:
		fmt.Fprintf(buf, ` fill="#%s"`, BannerText)
	}
	buf.WriteString(">")
	for _, run := range c.Runs {
		if run.Keyword && c.Style == canvas.TextPlain {
			fmt.Fprintf(buf, `<tspan font-weight="bold" fill="#%s">`, KeywordColor)
			escape(buf, run.Text)
			buf.WriteString("</tspan>")
			continue
		}
		escape(buf, run.Text)
	}
	buf.WriteString("</text>\n")
}

func escape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}
