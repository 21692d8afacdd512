// Package render draws the installed dependency graph of a converged
// closure.
//
// [ToDOT] produces Graphviz DOT source with one box per installed repository
// and one arrow per resolved dependency. Entry points are filled, archived
// and disabled repositories are dashed. [RenderSVG] lays the graph out
// in-process with [github.com/goccy/go-graphviz]; [ToPDF] and [ToPNG]
// convert the SVG with rsvg-convert from librsvg.
//
//	dot := render.ToDOT(state, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [Render] dispatches on a [Format] and is what the CLI calls.
package render
