// Package render draws positioned graphs for people to look at.
//
// # Overview
//
// Renderers never touch the simulation. They consume a [Frame]: the nodes and
// links to draw (optionally culled to the screen), the current viewport
// transform, and the style strategies deciding colour and radius. Changing the
// transform and rendering again is all a pan or zoom costs.
//
//	f := render.NewFrame(g, vp.Transform(), 800, 600, style.DefaultConfig())
//	svg := render.SVG(f)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// # Backends
//
//   - [SVG]: edges then nodes under a translate/scale group; nodes with a Pie
//     breakdown are drawn as wedges
//   - [ToDOT] and [RenderDOT]: Graphviz export pinning every node at its
//     simulated position (neato, pos="x,y!")
//   - [ToPDF] and [ToPNG]: conversion of any SVG via rsvg-convert
//   - [TextCanvas]: a character raster used by the terminal explorer
//
// # Dependencies
//
// [RenderDOT] uses [github.com/goccy/go-graphviz] in-process. PDF and PNG
// conversion requires librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
package render
