// Package client is the terminal front end for one game session. It maps
// keys to session actions and renders session snapshots every frame.
package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/draw"
	"github.com/tomz197/orbitclicker/internal/input"
	"github.com/tomz197/orbitclicker/internal/session"
)

const (
	// Max render area; larger terminals get a centred, bordered canvas.
	MaxTermWidth  = 160
	MaxTermHeight = 60
	// FrameTime is the client redraw interval.
	FrameTime = time.Second / 30
	// hudRows are reserved below the canvas for status text.
	hudRows = 4
	// messageFrames is how long a status message stays visible.
	messageFrames = 90
)

// Options configures the client.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Logger       *zap.Logger
}

// Client renders one session to a terminal and feeds it input.
type Client struct {
	session      *session.Session
	canvas       *draw.Canvas
	cw           *draw.ChunkWriter
	writer       io.Writer
	stream       *input.Stream
	termSizeFunc draw.TermSizeFunc
	logger       *zap.Logger
	state        uiState
}

type uiState struct {
	running    bool
	panel      bool // skill panel open
	cursor     int  // highlighted skill in the panel
	message    string
	messageTTL int
	dirty      bool // clear the terminal and repaint everything next frame
}

// New creates a client for s reading keys from r and drawing to w.
func New(s *session.Session, r io.ByteReader, w io.Writer, opts Options) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	snap := s.Snapshot()
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, snap.World.Width, snap.World.Height)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		session:      s,
		canvas:       canvas,
		cw:           draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		stream:       input.StartStream(r),
		termSizeFunc: termSizeFunc,
		logger:       logger,
		state:        uiState{running: true},
	}
}

// Run draws frames until the player quits, input closes, the session ends
// or ctx is cancelled. It does not step the session.
func (c *Client) Run(ctx context.Context) error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	ticker := time.NewTicker(FrameTime)
	defer ticker.Stop()

	for c.state.running {
		select {
		case <-ctx.Done():
			c.state.running = false
			continue
		case <-ticker.C:
		}

		c.handle(input.ReadInput(c.stream))
		if c.session.Phase() == session.PhaseEnded {
			c.state.running = false
		}
		c.updateScreen()
		if err := c.drawFrame(); err != nil {
			c.logger.Debug("render failed", zap.Error(err))
			return err
		}
	}

	draw.ClearScreen(c.writer)
	c.logger.Debug("client stopped", zap.String("session", c.session.ID()))
	return nil
}

// handle applies one frame of key events to the session and the UI.
func (c *Client) handle(in input.Input) {
	if in.Closed || in.Has(input.KeyQuit) {
		c.state.running = false
		return
	}

	for _, e := range in.Events {
		switch e.Key {
		case input.KeyFire:
			c.session.Fire()
		case input.KeyDigit:
			c.choose(e.Digit)
		case input.KeyToggle:
			c.togglePanel()
		case input.KeyEscape:
			if c.state.panel {
				c.togglePanel()
			}
		case input.KeyUp:
			c.moveCursor(-1)
		case input.KeyDown:
			c.moveCursor(1)
		case input.KeyBuy:
			if c.state.panel {
				c.buy()
			}
		}
	}

	if c.state.messageTTL > 0 {
		c.state.messageTTL--
		if c.state.messageTTL == 0 {
			c.state.message = ""
		}
	}
}

func (c *Client) notify(format string, args ...any) {
	c.state.message = fmt.Sprintf(format, args...)
	c.state.messageTTL = messageFrames
}

// choose selects the n-th (1-based) currently available decision.
func (c *Client) choose(n int) {
	choices := c.session.AvailableChoices()
	if n < 1 || n > len(choices) {
		c.notify("No choice %d", n)
		return
	}
	ch := choices[n-1]
	if err := c.session.CheckChoice(ch.ID); err != nil {
		c.notify("%s: %v", ch.Title, err)
		return
	}
	if c.session.Choose(ch.ID) {
		c.notify("Chose %s", ch.Title)
	}
}

func (c *Client) togglePanel() {
	c.state.panel = !c.state.panel
	c.state.dirty = true
}

func (c *Client) moveCursor(delta int) {
	if !c.state.panel {
		return
	}
	n := len(c.session.SkillStatuses())
	c.state.cursor = clamp(c.state.cursor+delta, 0, n-1)
}

// buy purchases the highlighted skill.
func (c *Client) buy() {
	skills := c.session.SkillStatuses()
	if len(skills) == 0 {
		return
	}
	c.state.cursor = clamp(c.state.cursor, 0, len(skills)-1)
	v := skills[c.state.cursor]
	if err := c.session.CheckPurchase(v.ID); err != nil {
		c.notify("%s: %v", v.Name, err)
		return
	}
	if c.session.Purchase(v.ID) {
		c.notify("Purchased %s", v.Name)
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.state.dirty = true
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.cw.SetOffset(offsetCol, offsetRow)
}

// clampTermSize returns the canvas size (terminal minus HUD rows, capped at
// the max resolution) and the offset that centres it.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, MaxTermWidth)
	total := min(termHeight, MaxTermHeight)
	renderHeight = max(total-hudRows, 1)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - total) / 2
	return
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
