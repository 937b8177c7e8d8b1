package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Glyphs used by [TextCanvas.Draw].
const (
	GlyphNode     = '●'
	GlyphPinned   = '◆'
	GlyphSelected = '◉'
	GlyphLink     = '·'
)

// Cell is one character of a [TextCanvas].
type Cell struct {
	Rune  rune
	Color string
}

// TextCanvas is a character raster for terminals. Frame coordinates are
// scaled so the frame's Width by Height maps onto Cols by Rows cells.
type TextCanvas struct {
	Cols, Rows int
	cells      []Cell
}

// NewTextCanvas allocates a blank canvas.
func NewTextCanvas(cols, rows int) *TextCanvas {
	c := &TextCanvas{Cols: max(cols, 0), Rows: max(rows, 0)}
	c.cells = make([]Cell, c.Cols*c.Rows)
	c.Clear()
	return c
}

// Clear blanks every cell.
func (c *TextCanvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' '}
	}
}

// At returns the cell at (col, row); out of range cells are blank.
func (c *TextCanvas) At(col, row int) Cell {
	if !c.inside(col, row) {
		return Cell{Rune: ' '}
	}
	return c.cells[row*c.Cols+col]
}

// Set writes a cell; out of range writes are ignored.
func (c *TextCanvas) Set(col, row int, r rune, color string) {
	if c.inside(col, row) {
		c.cells[row*c.Cols+col] = Cell{Rune: r, Color: color}
	}
}

func (c *TextCanvas) inside(col, row int) bool {
	return col >= 0 && row >= 0 && col < c.Cols && row < c.Rows
}

// Line draws a Bresenham line without overwriting non-blank cells.
func (c *TextCanvas) Line(x0, y0, x1, y1 int, r rune, color string) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for steps := 0; steps <= c.Cols+c.Rows+dx-dy; steps++ {
		if c.inside(x0, y0) && c.At(x0, y0).Rune == ' ' {
			c.Set(x0, y0, r, color)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Cell maps a screen point of a frame sized width by height to a cell.
func (c *TextCanvas) Cell(sx, sy, width, height float64) (int, int) {
	if width <= 0 || height <= 0 {
		return -1, -1
	}
	return int(math.Floor(sx / width * float64(c.Cols))), int(math.Floor(sy / height * float64(c.Rows)))
}

// Draw rasterizes f: links first, then nodes on top, then the selection.
// Lines with both ends far off screen are clipped by the cell bounds.
func (c *TextCanvas) Draw(f Frame) {
	c.Clear()
	t := f.Transform
	cell := func(x, y float64) (int, int) {
		sx, sy := t.Apply(x, y)
		return c.Cell(sx, sy, f.Width, f.Height)
	}

	link := f.Style.LinkColor
	for _, e := range f.Edges {
		x0, y0 := cell(e.Source.X, e.Source.Y)
		x1, y1 := cell(e.Target.X, e.Target.Y)
		if !c.lineMayShow(x0, y0, x1, y1) {
			continue
		}
		c.Line(x0, y0, x1, y1, GlyphLink, link)
	}
	for _, n := range f.Nodes {
		col, row := cell(n.X, n.Y)
		glyph := GlyphNode
		if n.Pinned {
			glyph = GlyphPinned
		}
		c.Set(col, row, glyph, f.color(n))
	}
	if n := f.Selected; n != nil {
		col, row := cell(n.X, n.Y)
		c.Set(col, row, GlyphSelected, selectionColor)
	}
}

func (c *TextCanvas) lineMayShow(x0, y0, x1, y1 int) bool {
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) {
		return false
	}
	return !((x0 >= c.Cols && x1 >= c.Cols) || (y0 >= c.Rows && y1 >= c.Rows))
}

// String returns the canvas as plain text, one line per row.
func (c *TextCanvas) String() string {
	var b strings.Builder
	for row := range c.Rows {
		for col := range c.Cols {
			b.WriteRune(c.cells[row*c.Cols+col].Rune)
		}
		if row < c.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render returns the canvas with lipgloss foreground colours. Runs of equal
// colour on a row share one styled segment.
func (c *TextCanvas) Render() string {
	var b strings.Builder
	for row := range c.Rows {
		var run strings.Builder
		color := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run.String()))
			}
			run.Reset()
		}
		for col := range c.Cols {
			cell := c.cells[row*c.Cols+col]
			if cell.Color != color && cell.Rune != ' ' {
				flush()
				color = cell.Color
			}
			run.WriteRune(cell.Rune)
		}
		flush()
		if row < c.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
