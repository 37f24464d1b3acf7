package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/cartastrutturata/pkg/io"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
	"github.com/matzehuels/cartastrutturata/pkg/render"
	"github.com/matzehuels/cartastrutturata/pkg/render/nodelink"
	"github.com/matzehuels/cartastrutturata/pkg/render/sink"
)

// RenderSheet produces every format in opts.Formats from sheet.
func RenderSheet(ctx context.Context, sheet *Sheet, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	r := renderer{sheet: sheet, opts: opts}
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.render(ctx, format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// renderer memoizes the intermediate drawings shared by several formats.
type renderer struct {
	sheet   *Sheet
	opts    Options
	svg     []byte
	treeSVG []byte
}

func (r *renderer) render(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case FormatXLSX:
		return sink.RenderXLSX(r.sheet.Grid, sink.WithSheetName(r.sheet.Title))
	case FormatSVG:
		return r.paperSVG(), nil
	case FormatPDF:
		return render.ToPDF(ctx, r.paperSVG())
	case FormatPNG:
		return render.ToPNG(ctx, r.paperSVG(), r.opts.Scale)
	case FormatText:
		return []byte(sink.RenderText(r.sheet.Grid)), nil
	case FormatJSON:
		return sink.RenderJSON(r.sheet.Ops)
	case FormatTree:
		var buf bytes.Buffer
		if err := io.WriteJSON(r.sheet.Forest, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(r.dot()), nil
	case FormatTreeSVG:
		return r.diagram(ctx)
	case FormatTreePDF:
		return nodelink.RenderPDF(ctx, r.dot())
	case FormatTreePNG:
		return nodelink.RenderPNG(ctx, r.dot(), r.opts.Scale)
	default:
		return nil, ValidateFormat(format)
	}
}

func (r *renderer) paperSVG() []byte {
	if r.svg == nil {
		r.svg = sink.RenderSVG(r.sheet.Grid)
	}
	return r.svg
}

func (r *renderer) dot() string {
	return nodelink.ToDOT(pseudocode.Root(r.sheet.Title, r.sheet.Forest), nodelink.Options{Detailed: true})
}

func (r *renderer) diagram(ctx context.Context) ([]byte, error) {
	if r.treeSVG != nil {
		return r.treeSVG, nil
	}
	svg, err := nodelink.RenderSVG(ctx, r.dot())
	if err != nil {
		return nil, err
	}
	r.treeSVG = svg
	return svg, nil
}
