package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Escape sequences shared by the canvas and the text overlays.
const (
	escClear      = "\033[H\033[2J"
	escReset      = "\033[0m"
	escHideCursor = "\033[?25l"
	escShowCursor = "\033[?25h"
)

// writeCursor appends a 1-based cursor position sequence to b.
func writeCursor(b *strings.Builder, scratch []byte, col, row int) {
	b.WriteString("\033[")
	b.Write(strconv.AppendInt(scratch[:0], int64(row), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(scratch[:0], int64(col), 10))
	b.WriteByte('H')
}

// writeSGR selects a truecolor foreground or background (code 38 or 48), or
// emits reset (39 or 49) for an unset colour.
func writeSGR(b *strings.Builder, scratch []byte, code, reset int, c Color) {
	b.WriteString("\033[")
	if !c.IsSet() {
		b.Write(strconv.AppendInt(scratch[:0], int64(reset), 10))
		b.WriteByte('m')
		return
	}
	r, g, bl := c.RGB()
	b.Write(strconv.AppendInt(scratch[:0], int64(code), 10))
	b.WriteString(";2;")
	b.Write(strconv.AppendInt(scratch[:0], int64(r), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(scratch[:0], int64(g), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(scratch[:0], int64(bl), 10))
	b.WriteByte('m')
}

// writeChunked writes data in pieces of at most maxChunkSize bytes so one
// frame does not stall a slow SSH channel.
func writeChunked(w io.Writer, data string) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

// ChunkWriter collects one frame (canvas, HUD rows and panel overlays) and
// sends it on Flush. Text positions are canvas-relative; the offset centres
// the canvas in a larger terminal.
type ChunkWriter struct {
	buf     strings.Builder
	bufw    *bufio.Writer
	scratch [20]byte
	offCol  int
	offRow  int
}

// NewChunkWriter creates a ChunkWriter that writes to w.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		bufw:   bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the text offset after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// Write lets the canvas render into the frame.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.buf.Write(p)
}

// WriteAt writes s starting at canvas cell (col, row), both 1-based.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	writeCursor(&cw.buf, cw.scratch[:], col+cw.offCol, row+cw.offRow)
	cw.buf.WriteString(s)
}

// WriteAtColor is WriteAt in foreground colour c. The colour is reset after s.
func (cw *ChunkWriter) WriteAtColor(col, row int, s string, c Color) {
	if !c.IsSet() {
		cw.WriteAt(col, row, s)
		return
	}
	writeCursor(&cw.buf, cw.scratch[:], col+cw.offCol, row+cw.offRow)
	writeSGR(&cw.buf, cw.scratch[:], 38, 39, c)
	cw.buf.WriteString(s)
	cw.buf.WriteString(escReset)
}

// Clear queues a full screen clear at the start of the frame.
func (cw *ChunkWriter) Clear() {
	cw.buf.WriteString(escClear)
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush sends the frame and resets the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	if err := writeChunked(cw.bufw, data); err != nil {
		return err
	}
	return cw.bufw.Flush()
}

// TermSizeFunc returns the terminal dimensions in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc reads the size of os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// FixedSize returns a TermSizeFunc that always reports width x height.
func FixedSize(width, height int) TermSizeFunc {
	return func() (int, int, error) { return width, height, nil }
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) error {
	_, err := io.WriteString(w, escClear)
	return err
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) error {
	_, err := io.WriteString(w, escHideCursor)
	return err
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) error {
	_, err := io.WriteString(w, escShowCursor)
	return err
}
