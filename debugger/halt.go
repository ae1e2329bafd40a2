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

package debugger

import (
	"github.com/machina-emu/machina/debugger/terminal"
)

// haltCoordination gathers the conditions that can stop a moving emulation
// into one place.
//
// breakpoints are not checked here. the machine checks those itself,
// before the instruction at the breakpoint address has had a chance to
// run. see Machine.SetBreakpointCheck().
type haltCoordination struct {
	dbg *Debugger

	// has a halt condition been met since the last reset()
	halt bool

	breakpoints *breakpoints
	watches     *watches
}

func newHaltCoordination(dbg *Debugger) *haltCoordination {
	h := &haltCoordination{dbg: dbg}
	h.breakpoints = newBreakpoints(dbg)
	h.watches = newWatches(dbg)
	return h
}

// reset the halt condition. called whenever the emulation is about to
// start moving again.
func (h *haltCoordination) reset() {
	h.halt = false
}

// check compares the current state of the emulation with the watch list.
// called after every step.
func (h *haltCoordination) check() {
	if msg := h.watches.check(); msg != "" {
		h.dbg.printLine(terminal.StyleFeedback, "%s", msg)
		h.halt = true
	}
}
