package client

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomz197/orbitclicker/internal/draw"
	"github.com/tomz197/orbitclicker/internal/economy"
	"github.com/tomz197/orbitclicker/internal/object"
	"github.com/tomz197/orbitclicker/internal/progression"
	"github.com/tomz197/orbitclicker/internal/session"
)

var (
	orbitColor     = draw.RGB(0x30, 0x34, 0x48)
	satelliteColor = draw.RGB(0xE0, 0xE0, 0xFF)
	droneColor     = draw.RGB(0x00, 0xD9, 0xFF)
	textOK         = draw.ParseColor(object.ColorHigh, draw.White)
	textWarn       = draw.ParseColor(object.ColorMedium, draw.White)
	textBad        = draw.ParseColor(object.ColorLow, draw.White)
)

// drawFrame draws the current snapshot plus overlays and flushes it.
func (c *Client) drawFrame() error {
	if c.state.dirty {
		c.cw.Clear()
		c.canvas.ForceRedraw()
		c.state.dirty = false
	}

	snap := c.session.Snapshot()

	c.canvas.Clear()
	c.drawWorld(snap)
	if err := c.canvas.Render(c.cw); err != nil {
		return err
	}
	if err := c.canvas.RenderBorder(c.cw); err != nil {
		return err
	}

	c.drawHUD(snap)
	if c.state.panel {
		c.drawSkillPanel(snap)
	}
	return c.cw.Flush()
}

func (c *Client) drawWorld(snap *session.Snapshot) {
	cv := c.canvas

	for a := 0.0; a < 2*math.Pi; a += 0.04 {
		cv.SetFloat(snap.PlanetCenter.X+math.Cos(a)*snap.OrbitRadius, snap.PlanetCenter.Y+math.Sin(a)*snap.OrbitRadius, orbitColor)
	}

	for i := range snap.Blocks {
		b := &snap.Blocks[i]
		if b.Destroyed {
			continue
		}
		cv.FillRect(b.X, b.Y, b.EdgeLength()-1, b.EdgeLength()-1, draw.ParseColor(b.Color(), draw.White))
	}

	for _, set := range [][]object.Particle{snap.Trail, snap.Debris} {
		for i := range set {
			p := &set[i]
			col := draw.ParseColor(p.Color, draw.Gray).Scale(p.Alpha())
			cv.FillCircle(p.X, p.Y, p.DrawRadius(), col)
		}
	}

	for _, p := range snap.Projectiles {
		cv.FillCircle(p.X, p.Y, p.Size/2, draw.ParseColor(p.Color, draw.White))
	}

	for _, d := range snap.Companions {
		cv.FillCircle(d.X, d.Y, d.Size/2, droneColor)
	}

	sat := snap.Satellite
	cv.FillCircle(sat.X, sat.Y, sat.Size/2, satelliteColor)
}

// drawHUD writes the status rows below the canvas. Every row is padded to
// the full width so shorter text overwrites the previous frame.
func (c *Client) drawHUD(snap *session.Snapshot) {
	width := c.canvas.TerminalWidth()
	row := c.canvas.TerminalHeight() + 1
	cw := c.cw

	status := fmt.Sprintf("SOUL %-7d GODS %-3d SCORE %-7d BLOCKS %-6d CLICKS %-6d PLANET %d",
		snap.Currency.Soul, snap.Currency.Gods, snap.Score, snap.BlocksDestroyed, snap.TotalClicks, snap.PlanetGeneration)
	cw.WriteAtColor(1, row, pad(status, width), textOK)

	w := snap.Weapon
	weapon := fmt.Sprintf("SHIP %-16s DMG %.1f  BULLETS %d  RATE %.1f/s  %s  [%s E%d R%d]",
		snap.Ship, w.Damage, w.BulletCount, w.FireRate, strings.Join(w.SpecialAbilities, ", "),
		snap.Decisions.PathAlignment, snap.Decisions.EvilPoints, snap.Decisions.RedemptionPoints)
	cw.WriteAt(1, row+1, pad(weapon, width))

	cw.WriteAt(1, row+2, pad(c.choiceLine(snap.Currency), width))

	help := "SPACE fire  1-9 choose  TAB skills  Q quit"
	if c.state.panel {
		help = "W/S move  ENTER buy  TAB close  Q quit"
	}
	if c.state.message != "" {
		cw.WriteAtColor(1, row+3, pad(c.state.message, width), textWarn)
	} else {
		cw.WriteAt(1, row+3, pad(help, width))
	}
}

func (c *Client) choiceLine(wallet economy.Currency) string {
	choices := c.session.AvailableChoices()
	if len(choices) == 0 {
		return "No decisions available yet"
	}
	var b strings.Builder
	for i, ch := range choices {
		if i == 9 {
			break
		}
		mark := ""
		if !wallet.CanAfford(ch.Cost) {
			mark = "*"
		}
		fmt.Fprintf(&b, "%d) %s [%s]%s  ", i+1, ch.Title, ch.Cost, mark)
	}
	return b.String()
}

const panelWidth = 48

// drawSkillPanel overlays the skill list on the right of the canvas,
// scrolled so the cursor stays visible.
func (c *Client) drawSkillPanel(snap *session.Snapshot) {
	skills := c.session.SkillStatuses()
	width := min(panelWidth, c.canvas.TerminalWidth())
	col := c.canvas.TerminalWidth() - width + 1
	rows := c.canvas.TerminalHeight() - 1
	if rows < 2 || len(skills) == 0 {
		return
	}
	cw := c.cw

	header := fmt.Sprintf(" SKILLS  soul %d  gods %d", snap.Currency.Soul, snap.Currency.Gods)
	cw.WriteAtColor(col, 1, pad(header, width), textOK)

	first := clamp(c.state.cursor-rows/2, 0, max(0, len(skills)-rows))
	for i := 0; i < rows; i++ {
		idx := first + i
		if idx >= len(skills) {
			cw.WriteAt(col, 2+i, pad("", width))
			continue
		}
		v := skills[idx]
		cursor := " "
		if idx == c.state.cursor {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %-22s %-12s %s", cursor, v.Name, v.Cost, statusTag(v))
		cw.WriteAtColor(col, 2+i, pad(line, width), skillColor(v))
	}
}

func statusTag(v progression.SkillView) string {
	switch {
	case v.Status == progression.Purchased:
		return "owned"
	case v.Status == progression.Locked:
		return "locked"
	case v.Affordable:
		return "buy"
	}
	return "need funds"
}

func skillColor(v progression.SkillView) draw.Color {
	switch {
	case v.Status == progression.Purchased:
		return textOK
	case v.Status == progression.Available && v.Affordable:
		return textWarn
	case v.Status == progression.Locked:
		return draw.Gray
	}
	return textBad
}

// pad truncates or space-pads s to exactly width runes.
func pad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:max(width, 0)])
	}
	return s + strings.Repeat(" ", width-len(r))
}
