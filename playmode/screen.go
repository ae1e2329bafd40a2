// This file is part of Machina.
//
// Machina is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Machina is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Machina.  If not, see <https://www.gnu.org/licenses/>.

package playmode

import (
	"bytes"
	"fmt"
	"os"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/terminal/colorterm/easyterm"
	"github.com/machina-emu/machina/hardware/cores/mico"
)

// CSI sequences for the parts of terminal control that easyterm does not
// cover.
const (
	alternateScreen = "\033[?1049h"
	normalScreen    = "\033[?1049l"
	hideCursor      = "\033[?25l"
	showCursor      = "\033[?25h"
	cursorHome      = "\033[H"
	resetColor      = "\033[0m"
)

// the lower half block glyph, U+2584. the foreground colour paints the
// bottom half of the cell, the background colour shows through the top.
const halfBlock = "▄"

// screen draws the framebuffer into a terminal. two pixels per character
// cell, stacked vertically.
type screen struct {
	easyterm.EasyTerm

	output *os.File

	// a frame's worth of escape sequences and glyphs, assembled
	// off-screen and written in one go
	frame bytes.Buffer
}

// newScreen switches the output terminal to the alternate screen and the
// input terminal to raw mode. the terminal is unusable for anything else
// until end() is called.
func newScreen(input *os.File, output *os.File) (*screen, error) {
	scr := &screen{output: output}

	if err := scr.Initialise(input, output); err != nil {
		return nil, curated.Errorf("%v", err)
	}

	scr.RawMode()
	scr.TermPrint(alternateScreen)
	scr.TermPrint(hideCursor)

	return scr, nil
}

// end restores the terminal. leaving the alternate screen before the
// return to canonical mode means the shell prompt reappears exactly
// where the user left it.
func (scr *screen) end() {
	scr.TermPrint(resetColor)
	scr.TermPrint(showCursor)
	scr.TermPrint(normalScreen)
	scr.CleanUp()
}

// render draws one frame of the emulation.
func (scr *screen) render(fb []uint8) {
	scr.frame.Reset()
	buildFrame(&scr.frame, fb)
	_, _ = scr.output.Write(scr.frame.Bytes())
}

// buildFrame assembles the terminal codes for one frame. colour changes
// are the expensive part of terminal drawing so a colour code is only
// emitted when the colour differs from the cell before. for typical
// framebuffer content, long runs of a single colour, this cuts the frame
// to a fraction of its naive size.
func buildFrame(w *bytes.Buffer, fb []uint8) {
	w.WriteString(cursorHome)
	w.WriteString(resetColor)

	// colours of the previous cell. the leading reset code means no
	// colour is in effect for the first cell, whatever its value
	var lastBg, lastFg uint8
	first := true

	for y := 0; y < mico.ScreenHeight; y += 2 {
		for x := 0; x < mico.ScreenWidth; x++ {
			bg := fb[y*mico.ScreenWidth+x]
			fg := fb[(y+1)*mico.ScreenWidth+x]

			if first || bg != lastBg {
				r, g, b := mico.RGB(bg)
				fmt.Fprintf(w, "\033[48;2;%d;%d;%dm", r, g, b)
			}
			if first || fg != lastFg {
				r, g, b := mico.RGB(fg)
				fmt.Fprintf(w, "\033[38;2;%d;%d;%dm", r, g, b)
			}

			lastBg = bg
			lastFg = fg
			first = false

			w.WriteString(halfBlock)
		}

		// raw mode keeps output processing so a newline still implies a
		// carriage return
		w.WriteString("\n")
	}
}
