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

package sdlplay

import (
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"

	"github.com/veandco/go-sdl2/sdl"
)

// service drains the SDL event queue. servicing just one event per frame
// is not enough, queued events would take a frame or longer to resolve,
// so the loop runs until the queue is empty.
//
// MUST ONLY be called from the main goroutine.
func (scr *SdlPlay) service() {
	for {
		ev := sdl.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		// close window
		case *sdl.QuitEvent:
			scr.quit = true

		case *sdl.KeyboardEvent:
			scr.serviceKeyboard(ev)

		case *sdl.WindowEvent:
			switch ev.Event {
			case sdl.WINDOWEVENT_FOCUS_LOST:
				scr.setPaused(true)
			case sdl.WINDOWEVENT_FOCUS_GAINED:
				scr.setPaused(false)
			}
		}
	}
}

// serviceKeyboard translates keyboard events into pad state. the key map
// is the same as the terminal frontend's, with the arrow keys accepted
// as directions too.
func (scr *SdlPlay) serviceKeyboard(ev *sdl.KeyboardEvent) {
	// key repeat is the terminal frontend's problem. here every key has a
	// real up event
	if ev.Repeat != 0 {
		return
	}

	down := ev.Type == sdl.KEYDOWN

	switch ev.Keysym.Sym {
	case sdl.K_ESCAPE:
		if down {
			scr.quit = true
		}
	case sdl.K_w, sdl.K_UP:
		scr.mc.Pad.Set(peripherals.ButtonUp, down)
	case sdl.K_s, sdl.K_DOWN:
		scr.mc.Pad.Set(peripherals.ButtonDown, down)
	case sdl.K_a, sdl.K_LEFT:
		scr.mc.Pad.Set(peripherals.ButtonLeft, down)
	case sdl.K_d, sdl.K_RIGHT:
		scr.mc.Pad.Set(peripherals.ButtonRight, down)
	case sdl.K_n:
		scr.mc.Pad.Set(peripherals.ButtonB, down)
	case sdl.K_m:
		scr.mc.Pad.Set(peripherals.ButtonA, down)
	case sdl.K_j:
		scr.mc.Pad.Set(peripherals.ButtonStart, down)
	case sdl.K_k:
		scr.mc.Pad.Set(peripherals.ButtonSelect, down)
	}
}
