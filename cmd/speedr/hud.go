package main

import (
	"fmt"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

var (
	hudBg     = color.RGBA{0, 0, 0, 255}
	hudWhite  = color.RGBA{235, 235, 235, 255}
	hudGreen  = color.RGBA{80, 250, 123, 255}
	hudCyan   = color.RGBA{139, 233, 253, 255}
	hudYellow = color.RGBA{241, 250, 140, 255}
)

// HUD is the text overlay drawn over the top and bottom terminal rows.
type HUD struct {
	Title     string
	Triangles int
}

// hudStatus is the per-frame state shown by the HUD.
type hudStatus struct {
	FPS       float64
	DrawCalls int
	Particles int
	Texture   bool
	Wireframe bool
	LightMode bool
	Visible   bool
}

// text writes s starting at column x of row y, clipped to the screen width.
func text(scr uv.Screen, area uv.Rectangle, x, y int, s string, fg color.Color) {
	for _, r := range s {
		if x >= area.Max.X {
			return
		}
		if x >= area.Min.X {
			scr.SetCell(x, y, &uv.Cell{
				Content: string(r),
				Width:   1,
				Style:   uv.Style{Fg: fg, Bg: hudBg},
			})
		}
		x++
	}
}

// Draw paints the overlay. Light mode always shows its prompt; the rest
// only when the HUD is visible.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, st hudStatus) {
	width := area.Dx()
	top, bottom := area.Min.Y, area.Max.Y-1

	if st.LightMode {
		msg := " ◉ LIGHT MODE - move mouse to aim, click to set, Esc to cancel "
		text(scr, area, area.Min.X+max((width-len([]rune(msg)))/2, 0), bottom, msg, hudYellow)
		return
	}
	if !st.Visible {
		return
	}

	text(scr, area, area.Min.X, top, fmt.Sprintf(" %.0f FPS ", st.FPS), hudGreen)
	title := " " + h.Title + " "
	text(scr, area, area.Min.X+max((width-len([]rune(title)))/2, 0), top, title, hudWhite)
	polys := fmt.Sprintf(" %d polys ", h.Triangles)
	text(scr, area, area.Min.X+max(width-len(polys), 0), top, polys, hudCyan)

	mode := fmt.Sprintf(" %s Texture  %s X-Ray  %d draws  %d particles ",
		check(st.Texture && !st.Wireframe), check(st.Wireframe), st.DrawCalls, st.Particles)
	text(scr, area, area.Min.X, bottom, mode, hudWhite)
	hint := " L: position light "
	text(scr, area, area.Min.X+max(width-len(hint), 0), bottom, hint, hudYellow)
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}
