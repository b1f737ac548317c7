package draw

import (
	"io"
	"math"
	"sort"
	"strings"
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// It scales from logical coordinates to terminal sub-pixels and only re-emits
// cells that changed since the previous Render.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int     // termHeight * 2
	pixels         []Color // [y * termWidth + x]
	prev           []cell  // last rendered frame, [row * termWidth + col]
	force          bool    // next Render repaints every cell

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets for centering the render area.
	offsetCol int
	offsetRow int

	renderBuf       strings.Builder
	numBuf          [20]byte
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

type cell struct {
	top, bottom Color
}

// NewCanvas creates an unscaled canvas for the given terminal dimensions.
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that maps logicalWidth x logicalHeight onto
// termWidth columns and termHeight*2 sub-pixel rows.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
// A size change forces a full repaint.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
		c.prev = make([]cell, termHeight*termWidth)
		c.force = true
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.force = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

func (c *Canvas) OffsetCol() int { return c.offsetCol }
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// ForceRedraw makes the next Render repaint every cell, e.g. after the
// terminal was cleared underneath it.
func (c *Canvas) ForceRedraw() { c.force = true }

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// Pixel returns the colour at sub-pixel (x, y), or 0 outside the canvas.
func (c *Canvas) Pixel(x, y int) Color {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		return c.pixels[y*c.termWidth+x]
	}
	return 0
}

func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Floor(x * c.scaleX)), int(math.Floor(y * c.scaleY))
}

// SetFloat sets the pixel covering logical point (x, y).
func (c *Canvas) SetFloat(x, y float64, col Color) {
	px, py := c.toPixel(x, y)
	c.setPixel(px, py, col)
}

// FillRect fills the logical rectangle. Any rectangle covers at least one pixel.
func (c *Canvas) FillRect(x, y, w, h float64, col Color) {
	x0, y0 := c.toPixel(x, y)
	x1 := int(math.Ceil((x+w)*c.scaleX)) - 1
	y1 := int(math.Ceil((y+h)*c.scaleY)) - 1
	for py := y0; py <= max(y0, y1); py++ {
		for px := x0; px <= max(x0, x1); px++ {
			c.setPixel(px, py, col)
		}
	}
}

// FillCircle fills a logical circle. Scaling differs per axis so the test is
// done on pixel centres mapped back to logical space.
func (c *Canvas) FillCircle(cx, cy, r float64, col Color) {
	x0, y0 := c.toPixel(cx-r, cy-r)
	x1, y1 := c.toPixel(cx+r, cy+r)
	r2 := r * r
	for py := y0; py <= y1; py++ {
		ly := (float64(py)+0.5)/c.scaleY - cy
		for px := x0; px <= x1; px++ {
			lx := (float64(px)+0.5)/c.scaleX - cx
			if lx*lx+ly*ly <= r2 {
				c.setPixel(px, py, col)
			}
		}
	}
	c.SetFloat(cx, cy, col)
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col Color) {
	x1, y1 := c.toPixel(p1.X, p1.Y)
	x2, y2 := c.toPixel(p2.X, p2.Y)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon outline, filling the interior when filled is set.
func (c *Canvas) DrawPolygon(points []Point, filled bool, col Color) {
	if len(points) < 3 {
		return
	}
	if filled {
		c.fillPolygon(points, col)
	}
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], col)
	}
}

// fillPolygon fills a polygon using a scanline pass in pixel space.
func (c *Canvas) fillPolygon(points []Point, col Color) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections
		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			for x := int(math.Ceil(intersections[i])); x <= int(math.Floor(intersections[i+1])); x++ {
				c.setPixel(x, y, col)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for smooth SSH/network flow.
const maxChunkSize = 1400

// Render writes the cells that changed since the last Render.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()

	var fg, bg Color
	lastRow, lastCol := -1, -1
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !c.force && c.prev[idx] == cur {
				continue
			}
			c.prev[idx] = cur

			ch, wantFg, wantBg := glyph(cur)
			if row != lastRow || col != lastCol+1 {
				writeCursor(&c.renderBuf, c.numBuf[:], col+1+c.offsetCol, row+1+c.offsetRow)
			}
			if wantFg != fg {
				writeSGR(&c.renderBuf, c.numBuf[:], 38, 39, wantFg)
				fg = wantFg
			}
			if wantBg != bg {
				writeSGR(&c.renderBuf, c.numBuf[:], 48, 49, wantBg)
				bg = wantBg
			}
			c.renderBuf.WriteRune(ch)
			lastRow, lastCol = row, col
		}
	}
	if fg != 0 || bg != 0 {
		c.renderBuf.WriteString(escReset)
	}
	c.force = false
	return writeChunked(w, c.renderBuf.String())
}

func glyph(c cell) (ch rune, fg, bg Color) {
	switch {
	case c.top != 0 && c.top == c.bottom:
		return BlockFull, c.top, 0
	case c.top != 0 && c.bottom != 0:
		return BlockUpperHalf, c.top, c.bottom
	case c.top != 0:
		return BlockUpperHalf, c.top, 0
	case c.bottom != 0:
		return BlockLowerHalf, c.bottom, 0
	}
	return ' ', 0, 0
}

// RenderBorder draws a box around the canvas when the terminal exceeds the
// render area on either axis.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	line := strings.Repeat("─", c.termWidth)
	move := func(row, col int) {
		writeCursor(&buf, c.numBuf[:], col, row)
	}

	if hasV {
		if hasH {
			move(top, left)
			buf.WriteString("┌" + line + "┐")
			move(bottom, left)
			buf.WriteString("└" + line + "┘")
		} else {
			move(top, c.offsetCol+1)
			buf.WriteString(line)
			move(bottom, c.offsetCol+1)
			buf.WriteString(line)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			move(row, left)
			buf.WriteString("│")
			move(row, right)
			buf.WriteString("│")
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func (c *Canvas) LogicalWidth() float64  { return c.logicalWidth }
func (c *Canvas) LogicalHeight() float64 { return c.logicalHeight }
func (c *Canvas) TerminalWidth() int     { return c.termWidth }
func (c *Canvas) TerminalHeight() int    { return c.termHeight }

// LogicalToTerminal converts logical coordinates to a 1-based canvas (col, row)
// for placing text next to drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}

// BorrowPoints returns a reusable slice of Points valid until the next call.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}
