package render

import (
	"fmt"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Each terminal cell shows two framebuffer rows using an upper half block
// with the top pixel as foreground and the bottom pixel as background.
const halfBlock = "▀"

// CellSize returns the framebuffer size that fills cols×rows terminal cells.
func CellSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Draw writes the framebuffer into area of scr, two pixel rows per cell.
// Pixels outside the framebuffer are left untouched.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := 0; row < area.Dy() && row*2 < fb.Height; row++ {
		top, bot := row*2, row*2+1
		for col := 0; col < area.Dx() && col < fb.Width; col++ {
			scr.SetCell(area.Min.X+col, area.Min.Y+row, &uv.Cell{
				Content: halfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(col, top)),
					Bg: cellColor(fb.GetPixel(col, bot)),
				},
			})
		}
	}
}

// cellColor maps fully transparent pixels to the terminal default.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// TerminalPresenter shows frames on a terminal.
type TerminalPresenter struct {
	term       *uv.Terminal
	cols, rows int
}

// NewTerminalPresenter presents into a cols×rows terminal.
func NewTerminalPresenter(term *uv.Terminal, cols, rows int) *TerminalPresenter {
	return &TerminalPresenter{term: term, cols: cols, rows: rows}
}

// Resize updates the terminal size after a window change.
func (p *TerminalPresenter) Resize(cols, rows int) {
	p.cols, p.rows = cols, rows
}

// FramebufferSize returns the framebuffer size matching the terminal.
func (p *TerminalPresenter) FramebufferSize() (width, height int) {
	return CellSize(p.cols, p.rows)
}

// Overlay draws on top of a presented frame, such as a text HUD.
type Overlay func(scr uv.Screen, area uv.Rectangle)

// Present draws fb, then the overlays in order, and flushes the changes to
// the terminal.
func (p *TerminalPresenter) Present(fb *Framebuffer, overlays ...Overlay) error {
	area := uv.Rect(0, 0, p.cols, p.rows)
	fb.Draw(p.term, area)
	for _, o := range overlays {
		o(p.term, area)
	}
	if err := p.term.Display(); err != nil {
		return fmt.Errorf("display frame: %w", err)
	}
	return nil
}
