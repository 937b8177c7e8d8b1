package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/style"
)

// pointsPerInch converts world units (treated as points) to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a positioned graph to Graphviz DOT. Every node is pinned
// with pos="x,y!" so neato reproduces the simulated layout instead of
// computing its own. The y axis is flipped since Graphviz grows upwards.
func ToDOT(g *graph.Graph, cl style.Classifiers, cfg style.Config) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", dotColor(cfg.Background, "transparent"))
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=circle, style=filled, label=\"\", fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=%s];\n", dotColor(cfg.LinkColor, style.DefaultLinkColor), fmtFloat(max(cfg.LinkWidth, 0.1)))
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		r := cfg.NodeRadius
		if cl.Radius != nil {
			r = cl.Radius.Radius(n)
		}
		fill := style.UnassignedColor
		if cl.Color != nil {
			fill = cl.Color.Color(n)
		}
		fmt.Fprintf(&buf, "  %q [pos=\"%s,%s!\", width=%s, fillcolor=%q, color=%q, tooltip=%q];\n",
			n.ID, fmtFloat(n.X), fmtFloat(-n.Y), fmtFloat(2*r/pointsPerInch),
			fill, dotColor(cfg.BorderColor, fill), n.ID)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.Source.ID, e.Target.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotColor(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// RenderDOT renders DOT source to SVG with the neato engine so pinned
// positions are honoured. Use [ToPDF] or [ToPNG] on the result for other
// formats.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([-0-9.]+)\s+([-0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root element (fixed pt sizes) with a
// unitless one so the output scales like [SVG] frames.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %.2f %.2f" width="%.0f" height="%.0f">`,
		match[1], match[2], w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
