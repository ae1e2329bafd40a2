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

package hardware

import (
	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/hardware/registers"
	"github.com/machina-emu/machina/hardware/timers"
)

// State stores a copy of the machine sub-systems. It is produced by the
// Snapshot() function and can be restored with the Plumb() function.
type State struct {
	CoreID string

	Regs *registers.File
	Mem  *bus.Bus
	TMR  *timers.Timers

	State execution.State
	Fault error
}

// Snapshot the state of the machine sub-systems.
func (m *Machine) Snapshot() *State {
	return &State{
		CoreID: m.Core.ID(),
		Regs:   m.Regs.Snapshot(),
		Mem:    m.Mem.Snapshot(),
		TMR:    m.TMR.Snapshot(),
		State:  m.state,
		Fault:  m.fault,
	}
}

// Plumb a previously snapshotted state back into the machine. Plumb copies
// out of the state, the same State value can be plumbed any number of
// times, which is what the rewind system relies on.
func (m *Machine) Plumb(state *State) error {
	if state == nil {
		panic("machine: cannot plumb in a nil state")
	}
	if state.CoreID != m.Core.ID() {
		return curated.Errorf("machine: plumb: state is for core %s, machine has core %s", state.CoreID, m.Core.ID())
	}

	if err := m.Regs.Plumb(state.Regs); err != nil {
		return curated.Errorf("machine: %v", err)
	}
	if err := m.Mem.Plumb(state.Mem); err != nil {
		return curated.Errorf("machine: %v", err)
	}
	if err := m.TMR.Plumb(state.TMR); err != nil {
		return curated.Errorf("machine: %v", err)
	}

	m.state = state.State
	m.fault = state.Fault
	m.lastResult = Result{}

	return nil
}
