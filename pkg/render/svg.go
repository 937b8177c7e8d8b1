package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

const selectionColor = "#ff5f00"

// SVG draws f as a standalone SVG document of f.Width by f.Height. World
// coordinates are mapped through f.Transform by a single group transform.
func SVG(f Frame) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	if f.Style.Background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(f.Style.Background))
	}
	t := f.Transform
	fmt.Fprintf(&buf, `  <g transform="translate(%.3f,%.3f) scale(%.5f)">`+"\n", t.X, t.Y, t.K)

	renderEdges(&buf, f)
	for _, n := range f.Nodes {
		renderNode(&buf, f, n)
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderEdges(buf *bytes.Buffer, f Frame) {
	if len(f.Edges) == 0 {
		return
	}
	color := f.Style.LinkColor
	if color == "" {
		color = "#aaaaaa"
	}
	fmt.Fprintf(buf, `    <g class="links" stroke="%s" stroke-width="%.3f">`+"\n", escapeXML(color), f.Style.LinkWidth)
	for _, e := range f.Edges {
		fmt.Fprintf(buf, `      <line x1="%.3f" y1="%.3f" x2="%.3f" y2="%.3f"/>`+"\n",
			e.Source.X, e.Source.Y, e.Target.X, e.Target.Y)
	}
	buf.WriteString("    </g>\n")
}

func renderNode(buf *bytes.Buffer, f Frame, n *graph.Node) {
	r := f.radius(n)
	stroke, width := f.Style.BorderColor, f.Style.BorderWidth
	if f.Selected == n {
		stroke, width = selectionColor, max(width, 1.5)
	}
	border := ""
	if width > 0 && stroke != "" {
		border = fmt.Sprintf(` stroke="%s" stroke-width="%.3f"`, escapeXML(stroke), width)
	}

	if len(n.Pie) == 0 {
		fmt.Fprintf(buf, `    <circle id="node-%s" cx="%.3f" cy="%.3f" r="%.3f" fill="%s"%s/>`+"\n",
			escapeXML(n.ID), n.X, n.Y, r, escapeXML(f.color(n)), border)
		return
	}

	fmt.Fprintf(buf, `    <g id="node-%s" class="pie">`+"\n", escapeXML(n.ID))
	renderPie(buf, f, n, r)
	if border != "" {
		fmt.Fprintf(buf, `      <circle cx="%.3f" cy="%.3f" r="%.3f" fill="none"%s/>`+"\n", n.X, n.Y, r, border)
	}
	buf.WriteString("    </g>\n")
}

// renderPie draws one wedge per positive entry of n.Pie, clockwise from
// twelve o'clock in key order.
func renderPie(buf *bytes.Buffer, f Frame, n *graph.Node, r float64) {
	keys := slices.Sorted(maps.Keys(n.Pie))
	var total float64
	for _, k := range keys {
		if v := n.Pie[k]; v > 0 && !math.IsInf(v, 0) {
			total += v
		}
	}
	if total == 0 {
		fmt.Fprintf(buf, `      <circle cx="%.3f" cy="%.3f" r="%.3f" fill="%s"/>`+"\n", n.X, n.Y, r, escapeXML(f.color(n)))
		return
	}

	angle := -math.Pi / 2
	for _, k := range keys {
		v := n.Pie[k]
		if v <= 0 || math.IsInf(v, 0) {
			continue
		}
		frac := v / total
		fill := escapeXML(f.sliceColor(k))
		if frac >= 1 {
			fmt.Fprintf(buf, `      <circle cx="%.3f" cy="%.3f" r="%.3f" fill="%s"/>`+"\n", n.X, n.Y, r, fill)
			return
		}
		end := angle + frac*2*math.Pi
		large := 0
		if frac > 0.5 {
			large = 1
		}
		fmt.Fprintf(buf, `      <path d="M%.3f,%.3f L%.3f,%.3f A%.3f,%.3f 0 %d 1 %.3f,%.3f Z" fill="%s"/>`+"\n",
			n.X, n.Y,
			n.X+r*math.Cos(angle), n.Y+r*math.Sin(angle),
			r, r, large,
			n.X+r*math.Cos(end), n.Y+r*math.Sin(end),
			fill)
		angle = end
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
