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
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/dbgmem"
	"github.com/machina-emu/machina/debugger/terminal"
	"github.com/machina-emu/machina/debugger/terminal/commandline"
)

type watchEvent int

const (
	watchEventAny watchEvent = iota
	watchEventRead
	watchEventWrite
)

func (ev watchEvent) String() string {
	switch ev {
	case watchEventRead:
		return "read-only"
	case watchEventWrite:
		return "write-only"
	}
	return ""
}

// watcher defines a single watch.
type watcher struct {
	ai *dbgmem.AddressInfo

	// whether the watch only matches when a specific value is seen on the
	// bus. a matchValue of false means any value matches
	matchValue bool
	value      uint8

	event watchEvent
}

func (wtr watcher) String() string {
	s := strings.Builder{}
	s.WriteString(wtr.ai.String())
	if ev := wtr.event.String(); ev != "" {
		s.WriteString(fmt.Sprintf(" %s", ev))
	}
	if wtr.matchValue {
		s.WriteString(fmt.Sprintf(" (value=%#02x)", wtr.value))
	}
	return s.String()
}

// watches keeps track of all the currently defined watchers.
//
// the bus records the most recent access made through the live Read() and
// Write() paths. the watch check compares that record against the watch
// list after every step.
type watches struct {
	dbg     *Debugger
	watches []watcher

	// the access count at the time of the last check. the same access
	// should not match a watch more than once
	lastAccessCount uint64
}

// newWatches is the preferred method of initialisation for watches.
func newWatches(dbg *Debugger) *watches {
	wtc := &watches{dbg: dbg}
	wtc.clear()
	return wtc
}

// clear all watches.
func (wtc *watches) clear() {
	wtc.watches = make([]watcher, 0, 10)
}

// drop the numbered watch.
func (wtc *watches) drop(num int) error {
	if num < 0 || len(wtc.watches)-1 < num {
		return curated.Errorf("watch #%d is not defined", num)
	}

	h := wtc.watches[:num]
	t := wtc.watches[num+1:]
	wtc.watches = make([]watcher, len(h)+len(t), cap(wtc.watches))
	copy(wtc.watches, h)
	copy(wtc.watches[len(h):], t)

	return nil
}

// check compares the most recent bus access with the watch list. the
// returned string is empty if no watch has matched.
//
// an instruction can access the bus more than once, the check sees the
// final access of the step.
func (wtc *watches) check() string {
	mem := wtc.dbg.mc.Mem

	// ignore an access that has been checked before
	if mem.AccessCount == wtc.lastAccessCount {
		return ""
	}
	wtc.lastAccessCount = mem.AccessCount

	for _, wtr := range wtc.watches {
		if wtr.ai.Address != mem.LastAccessAddress {
			continue
		}
		if wtr.event == watchEventRead && mem.LastAccessWrite {
			continue
		}
		if wtr.event == watchEventWrite && !mem.LastAccessWrite {
			continue
		}
		if wtr.matchValue && wtr.value != mem.LastAccessData {
			continue
		}

		if mem.LastAccessWrite {
			return fmt.Sprintf("watch at %s -> %#02x", wtr.ai, mem.LastAccessData)
		}
		return fmt.Sprintf("watch at %s", wtr.ai)
	}

	return ""
}

// list currently defined watches.
func (wtc watches) list() {
	if len(wtc.watches) == 0 {
		wtc.dbg.printLine(terminal.StyleFeedback, "no watches")
	} else {
		wtc.dbg.printLine(terminal.StyleFeedback, "watches:")
		for i := range wtc.watches {
			wtc.dbg.printLine(terminal.StyleFeedback, "% 2d: %s", i, wtc.watches[i])
		}
	}
}

// parseCommand takes the remaining tokens of a WATCH command and adds a
// new watch. the address can be numeric or symbolic.
func (wtc *watches) parseCommand(tokens *commandline.Tokens) error {
	var event watchEvent

	// event filter
	arg, present := tokens.Get()
	if present {
		switch strings.ToUpper(arg) {
		case "READ":
			event = watchEventRead
		case "WRITE":
			event = watchEventWrite
		default:
			event = watchEventAny
			tokens.Unget()
		}
	}

	// get address. required
	a, present := tokens.Get()
	if !present {
		return curated.Errorf("watch address required")
	}

	ai := wtc.dbg.dbgmem.GetAddressInfo(a, event != watchEventWrite)
	if ai == nil {
		return curated.Errorf("invalid watch address (%s)", a)
	}

	// get value if possible
	var matchValue bool
	var value uint64
	v, present := tokens.Get()
	if present {
		var err error
		value, err = strconv.ParseUint(v, 0, 8)
		if err != nil {
			return curated.Errorf("invalid watch value (%s)", v)
		}
		matchValue = true
	}

	nw := watcher{
		ai:         ai,
		matchValue: matchValue,
		value:      uint8(value),
		event:      event,
	}

	// check watch is not already defined
	for _, wtr := range wtc.watches {
		if wtr.ai.Address == nw.ai.Address && wtr.event == nw.event && wtr.matchValue == nw.matchValue && wtr.value == nw.value {
			return curated.Errorf("already being watched (%s)", wtr)
		}
	}

	wtc.watches = append(wtc.watches, nw)

	return nil
}
