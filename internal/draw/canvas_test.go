package draw

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var red = RGB(0xFF, 0, 0)

func TestParseColor(t *testing.T) {
	assert.Equal(t, RGB(0x00, 0xFF, 0x41), ParseColor("#00FF41", White))
	assert.Equal(t, RGB(0xFF, 0xD7, 0x00), ParseColor("FFD700", White))
	assert.Equal(t, White, ParseColor("#12", White))
	assert.Equal(t, White, ParseColor("#GGGGGG", White))
	assert.Equal(t, "#00FF41", ParseColor("#00ff41", 0).Hex())
	assert.False(t, Color(0).IsSet())
	assert.True(t, RGB(0, 0, 0).IsSet(), "black is a real colour")
}

func TestColor_Scale(t *testing.T) {
	assert.Equal(t, RGB(0x80, 0, 0), red.Scale(0.5020))
	assert.Equal(t, RGB(0xFF, 0, 0), red.Scale(3))
	assert.Equal(t, Color(0), Color(0).Scale(2))
}

func TestCanvas_Glyphs(t *testing.T) {
	c := NewCanvas(4, 1)
	c.SetFloat(0, 0, red) // top only
	c.SetFloat(1, 1, red) // bottom only
	c.SetFloat(2, 0, red) // both, same colour
	c.SetFloat(2, 1, red)
	c.SetFloat(3, 0, red) // both, different
	c.SetFloat(3, 1, White)

	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()

	assert.Contains(t, out, "\033[1;1H")
	assert.Contains(t, out, "\033[38;2;255;0;0m▀▄█")
	assert.Contains(t, out, "\033[48;2;255;255;255m▀")
	assert.True(t, strings.HasSuffix(out, "\033[0m"))
}

func TestCanvas_RenderOnlyChanges(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillRect(0, 0, 2, 2, red)

	var buf bytes.Buffer
	c.Render(&buf)
	assert.NotEmpty(t, buf.String())

	buf.Reset()
	c.Render(&buf)
	assert.Empty(t, buf.String(), "unchanged frame writes nothing")

	c.ForceRedraw()
	c.Render(&buf)
	assert.Equal(t, 10*5, strings.Count(buf.String(), "█")+strings.Count(buf.String(), " "))

	buf.Reset()
	c.Clear()
	c.Render(&buf)
	assert.Equal(t, 2, strings.Count(buf.String(), " "), "erased cells are blanked")
}

func TestCanvas_Scaling(t *testing.T) {
	// 800x600 logical onto 100 columns x 80 sub-pixel rows.
	c := NewScaledCanvas(100, 40, 800, 600)
	c.SetFloat(404, 304, red)
	assert.Equal(t, red, c.Pixel(50, 40))

	col, row := c.LogicalToTerminal(404, 304)
	assert.Equal(t, 51, col)
	assert.Equal(t, 21, row)
}

func TestCanvas_ShapesCoverAtLeastOnePixel(t *testing.T) {
	c := NewScaledCanvas(10, 10, 1000, 1000)
	c.FillRect(505, 505, 1, 1, red)
	assert.Equal(t, red, c.Pixel(5, 10))

	c.Clear()
	c.FillCircle(505, 505, 0.5, red)
	assert.Equal(t, red, c.Pixel(5, 10))
}

func TestCanvas_FillCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.FillCircle(10, 10, 4, red)
	assert.Equal(t, red, c.Pixel(10, 10))
	assert.Equal(t, red, c.Pixel(7, 10))
	assert.Zero(t, c.Pixel(15, 10))
	assert.Zero(t, c.Pixel(13, 13))
}

func TestCanvas_DrawLineClipsOutside(t *testing.T) {
	c := NewCanvas(5, 5)
	c.DrawLine(Point{-10, 0}, Point{20, 0}, red)
	for x := 0; x < 5; x++ {
		assert.Equal(t, red, c.Pixel(x, 0))
	}
	assert.Zero(t, c.Pixel(0, 1))
}

func TestChunkWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 2, 1)
	cw.WriteAt(1, 1, "hi")
	cw.WriteAtColor(3, 4, "x", red)
	assert.Empty(t, buf.String(), "nothing is written before Flush")

	assert.NoError(t, cw.Flush())
	assert.Equal(t, "\033[2;3Hhi\033[5;5H\033[38;2;255;0;0mx\033[0m", buf.String())
}

// failAfter accepts n writes, then fails every write.
type failAfter struct {
	n      int
	writes int
}

var errBrokenPipe = errors.New("broken pipe")

func (f *failAfter) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.n {
		return 0, errBrokenPipe
	}
	return len(p), nil
}

func TestWriteChunked(t *testing.T) {
	var buf bytes.Buffer
	data := strings.Repeat("x", 2*maxChunkSize+1)
	assert.NoError(t, writeChunked(&buf, data))
	assert.Equal(t, data, buf.String())

	w := &failAfter{n: 1}
	assert.ErrorIs(t, writeChunked(w, data), errBrokenPipe)
	assert.Equal(t, 2, w.writes, "stops at the first failed chunk")
}

func TestRenderReportsWriteError(t *testing.T) {
	c := NewCanvas(4, 4)
	c.FillRect(0, 0, 4, 4, red)
	assert.ErrorIs(t, c.Render(&failAfter{}), errBrokenPipe)
}

func TestChunkWriter_ClearAndFlushError(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 0, 0)
	cw.Clear()
	cw.WriteAtColor(1, 1, "a", Color(0))
	assert.NoError(t, cw.Flush())
	assert.Equal(t, "\033[H\033[2J\033[1;1Ha", buf.String())

	cw = NewChunkWriter(&failAfter{}, 0, 0)
	cw.WriteAt(1, 1, "hi")
	assert.ErrorIs(t, cw.Flush(), errBrokenPipe)
}
