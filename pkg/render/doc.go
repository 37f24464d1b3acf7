// Package render holds format conversions shared by the renderers.
//
// Renderers live in subpackages:
//
//   - [sink]: the structured-paper grid as XLSX, SVG, text or JSON
//   - [nodelink]: the block tree as a Graphviz diagram
//
// [ToPDF] and [ToPNG] convert any SVG produced by them using the external
// rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(g)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [sink]: github.com/matzehuels/cartastrutturata/pkg/render/sink
// [nodelink]: github.com/matzehuels/cartastrutturata/pkg/render/nodelink
package render
