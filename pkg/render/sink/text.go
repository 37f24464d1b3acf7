package sink

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cartastrutturata/pkg/canvas"
)

// TextOption configures text rendering via [RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	ansi bool
}

// WithANSI styles keywords, titles and banners with terminal colours.
func WithANSI() TextOption {
	return func(r *textRenderer) { r.ansi = true }
}

var (
	textKeyword = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#" + KeywordColor))
	textTitle   = lipgloss.NewStyle().Bold(true)
	textBanner  = lipgloss.NewStyle().Foreground(lipgloss.Color("#" + BannerText)).Background(lipgloss.Color("#b4b4b4"))
	textBorder  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type glyphKind uint8

const (
	glyphSpace glyphKind = iota
	glyphPlain
	glyphKeyword
	glyphTitle
	glyphBanner
	glyphBorder
)

type glyph struct {
	r    rune
	kind glyphKind
}

// RenderText draws g as a character grid, one character per column.
//
// Text flows to the right until the next cell holding text and takes
// precedence over borders. Trailing blanks are trimmed from every line.
func RenderText(g *canvas.Grid, opts ...TextOption) string {
	r := textRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	lines := make([][]glyph, g.Rows())
	put := func(row, col int, gl glyph) {
		line := lines[row-1]
		for len(line) < col {
			line = append(line, glyph{r: ' '})
		}
		line[col-1] = gl
		lines[row-1] = line
	}

	positions := g.Positions()
	for _, p := range positions {
		c, _ := g.Cell(p.Row, p.Col)
		if ch := borderRune(c.Edges); ch != 0 {
			put(p.Row, p.Col, glyph{r: ch, kind: glyphBorder})
		}
	}

	for i, p := range positions {
		c, _ := g.Cell(p.Row, p.Col)
		if c.Text() == "" {
			continue
		}
		limit := -1
		for _, q := range positions[i+1:] {
			if q.Row != p.Row {
				break
			}
			if next, _ := g.Cell(q.Row, q.Col); next.Text() != "" {
				limit = q.Col
				break
			}
		}

		col := p.Col
		for _, run := range c.Runs {
			kind := runKind(c.Style, run.Keyword)
			for _, ch := range run.Text {
				if limit > 0 && col >= limit {
					break
				}
				put(p.Row, col, glyph{r: ch, kind: kind})
				col++
			}
		}
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(r.line(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func runKind(style canvas.TextStyle, keyword bool) glyphKind {
	switch {
	case style == canvas.TextTitle:
		return glyphTitle
	case style == canvas.TextBanner:
		return glyphBanner
	case keyword:
		return glyphKeyword
	default:
		return glyphPlain
	}
}

// borderRune returns the box character for a set of cell edges.
func borderRune(e canvas.Edge) rune {
	switch e {
	case 0:
		return 0
	case canvas.EdgeLeft | canvas.EdgeTop:
		return '┌'
	case canvas.EdgeLeft | canvas.EdgeBottom:
		return '└'
	case canvas.EdgeLeft | canvas.EdgeTop | canvas.EdgeBottom:
		return '['
	case canvas.EdgeLeft:
		return '│'
	case canvas.EdgeBottom:
		return '_'
	case canvas.EdgeTop:
		return '‾'
	default:
		return '='
	}
}

func (r *textRenderer) line(glyphs []glyph) string {
	end := len(glyphs)
	for end > 0 && glyphs[end-1].r == ' ' {
		end--
	}
	glyphs = glyphs[:end]

	if !r.ansi {
		var sb strings.Builder
		for _, gl := range glyphs {
			sb.WriteRune(gl.r)
		}
		return sb.String()
	}

	var sb, seg strings.Builder
	kind := glyphSpace
	flush := func() {
		if seg.Len() > 0 {
			sb.WriteString(styleFor(kind).Render(seg.String()))
			seg.Reset()
		}
	}
	for _, gl := range glyphs {
		if gl.kind != kind {
			flush()
			kind = gl.kind
		}
		seg.WriteRune(gl.r)
	}
	flush()
	return sb.String()
}

func styleFor(kind glyphKind) lipgloss.Style {
	switch kind {
	case glyphKeyword:
		return textKeyword
	case glyphTitle:
		return textTitle
	case glyphBanner:
		return textBanner
	case glyphBorder:
		return textBorder
	default:
		return lipgloss.NewStyle()
	}
}
