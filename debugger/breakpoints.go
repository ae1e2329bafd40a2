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
	"fmt"
	"strconv"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/dbgmem"
	"github.com/machina-emu/machina/debugger/terminal"
	"github.com/machina-emu/machina/debugger/terminal/commandline"
)

// breakpoints keeps track of all the currently defined breakers.
type breakpoints struct {
	dbg    *Debugger
	breaks []breaker
}

// breaker defines a single breakpoint.
type breaker struct {
	ai      *dbgmem.AddressInfo
	enabled bool
}

func (bk breaker) String() string {
	if !bk.enabled {
		return fmt.Sprintf("%s (disabled)", bk.ai)
	}
	return bk.ai.String()
}

// newBreakpoints is the preferred method of initialisation for breakpoints.
func newBreakpoints(dbg *Debugger) *breakpoints {
	bp := &breakpoints{dbg: dbg}
	bp.clear()
	return bp
}

// clear all breakpoints.
func (bp *breakpoints) clear() {
	bp.breaks = make([]breaker, 0, 10)
}

// drop the numbered breakpoint.
func (bp *breakpoints) drop(num int) error {
	if num < 0 || len(bp.breaks)-1 < num {
		return curated.Errorf("breakpoint #%d is not defined", num)
	}

	h := bp.breaks[:num]
	t := bp.breaks[num+1:]
	bp.breaks = make([]breaker, len(h)+len(t), cap(bp.breaks))
	copy(bp.breaks, h)
	copy(bp.breaks[len(h):], t)

	return nil
}

// find returns the index of the breakpoint on address, or -1 if there is
// no such breakpoint.
func (bp *breakpoints) find(address uint16) int {
	for i, bk := range bp.breaks {
		if bk.ai.Address == address {
			return i
		}
	}
	return -1
}

// match is attached to the machine with SetBreakpointCheck(). the machine
// consults it before every instruction, a true return value halts the
// machine before the instruction runs.
func (bp *breakpoints) match(address uint16) bool {
	for _, bk := range bp.breaks {
		if bk.enabled && bk.ai.Address == address {
			return true
		}
	}
	return false
}

// list currently defined breakpoints.
func (bp breakpoints) list() {
	if len(bp.breaks) == 0 {
		bp.dbg.printLine(terminal.StyleFeedback, "no breakpoints")
	} else {
		bp.dbg.printLine(terminal.StyleFeedback, "breakpoints:")
		for i := range bp.breaks {
			bp.dbg.printLine(terminal.StyleFeedback, "% 2d: %s", i, bp.breaks[i])
		}
	}
}

// parseCommand takes the remaining tokens of a BREAK command and adds a
// breakpoint for every address found. addresses can be numeric or
// symbolic.
func (bp *breakpoints) parseCommand(tokens *commandline.Tokens) error {
	added := false

	a, present := tokens.Get()
	for present {
		ai := bp.dbg.dbgmem.GetAddressInfo(a, true)
		if ai == nil {
			return curated.Errorf("invalid break address (%s)", a)
		}

		if bp.find(ai.Address) >= 0 {
			return curated.Errorf("breakpoint at %#04x already exists", ai.Address)
		}

		bp.breaks = append(bp.breaks, breaker{ai: ai, enabled: true})
		added = true

		a, present = tokens.Get()
	}

	if !added {
		return curated.Errorf("break address required")
	}

	return nil
}

// enableCommand takes the remaining tokens of a BREAK ENABLE or BREAK
// DISABLE command and flips the enabled state of every numbered
// breakpoint found.
func (bp *breakpoints) enableCommand(tokens *commandline.Tokens, enable bool) error {
	s, present := tokens.Get()
	if !present {
		return curated.Errorf("breakpoint number required")
	}

	for present {
		num, err := strconv.Atoi(s)
		if err != nil {
			return curated.Errorf("breakpoint number must be a decimal number (%s)", s)
		}
		if num < 0 || num >= len(bp.breaks) {
			return curated.Errorf("breakpoint #%d is not defined", num)
		}

		bp.breaks[num].enabled = enable

		s, present = tokens.Get()
	}

	return nil
}
