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
	"github.com/machina-emu/machina/environment"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/hardware/registers"
	"github.com/machina-emu/machina/hardware/timers"
)

// Sentinel errors returned by the Machine type.
const (
	// NotRunnable is returned by the step functions when the machine is in
	// a state that cannot be stepped. Reset() makes a machine runnable
	// again.
	NotRunnable = "machine not runnable (%s)"

	// Breakpoint is returned by Step() when the breakpoint check matches
	// the current program counter. The machine has not been altered.
	Breakpoint = "breakpoint [%#04x]"

	// LoadOutOfBounds is returned by LoadProgram() when the program does
	// not fit the address space.
	LoadOutOfBounds = "load out of bounds: %#04x + %d bytes"
)

// Machine is the main container for the emulated components of a machine.
type Machine struct {
	Env *environment.Environment

	Core cores.Core
	Regs *registers.File
	Mem  *bus.Bus
	TMR  *timers.Timers

	state execution.State

	// the reason for the Faulted state. wrapped with the "machine" prefix
	// at the point the fault happens
	fault error

	// result of the most recent successful step
	lastResult Result

	// consulted by Step() before anything else happens. assigned by the
	// debugger, nil outside of a debugging session
	breakpointCheck func(address uint16) bool
}

// NewMachine assembles a machine from its major components. The register
// file is allocated here, according to the core's spec. The caller is
// responsible for the memory map, which is the machine specific part of
// the assembly.
//
// The new machine is not runnable until Reset() has been called.
func NewMachine(env *environment.Environment, core cores.Core, mem *bus.Bus, tmr *timers.Timers) (*Machine, error) {
	spec := core.RegisterSpec()
	if err := spec.Validate(); err != nil {
		return nil, curated.Errorf("machine: %v", err)
	}

	m := &Machine{
		Env:   env,
		Core:  core,
		Regs:  registers.NewFile(spec),
		Mem:   mem,
		TMR:   tmr,
		state: execution.Initialising,
	}

	return m, nil
}

// State returns the run condition of the machine.
func (m *Machine) State() execution.State {
	return m.state
}

// Fault returns the error that put the machine into the Faulted state, or
// nil if the machine has not faulted.
func (m *Machine) Fault() error {
	return m.fault
}

// LastResult returns the result of the most recent successful step.
func (m *Machine) LastResult() Result {
	return m.lastResult
}

// SetBreakpointCheck attaches the function consulted by Step() before an
// instruction runs. A nil function detaches the check.
func (m *Machine) SetBreakpointCheck(check func(address uint16) bool) {
	m.breakpointCheck = check
}

// SetPaused moves the machine between the Running and Paused states. It
// has no effect in any other state.
func (m *Machine) SetPaused(paused bool) {
	if paused && m.state == execution.Running {
		m.state = execution.Paused
	} else if !paused && m.state == execution.Paused {
		m.state = execution.Running
	}
}

// Reset emulates the reset switch on the machine. Registers take the
// core's power-on values, writable memory is cleared, timers disarm and
// any fault condition is forgotten.
//
// If the RandomState preference is enabled, writable memory and the
// scratch registers are filled with random values instead, the way real
// hardware powers up with undefined contents.
func (m *Machine) Reset() error {
	m.TMR.Reset()

	randomise := m.Env.Prefs.RandomState.Get().(bool)

	if randomise {
		m.Mem.Reset(func() uint8 {
			return uint8(m.Env.Random.NoRewind(0x100))
		})
	} else {
		m.Mem.Reset(nil)
	}

	m.Core.Reset(m.Regs)

	if randomise {
		spec := m.Regs.Spec()
		for i := 0; i < m.Regs.Len(); i++ {
			if i == spec.PC || i == spec.SP || i == spec.Status {
				continue
			}
			m.Regs.SetValue(i, uint16(m.Env.Random.NoRewind(0x10000)))
		}
	}

	m.state = execution.Running
	m.fault = nil
	m.lastResult = Result{}

	return nil
}

// LoadProgram patches a program image into memory at origin. Loading does
// not imply a reset, callers almost always want to Reset() afterwards.
func (m *Machine) LoadProgram(origin uint16, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if int(origin)+len(data) > 0x10000 {
		return curated.Errorf(LoadOutOfBounds, origin, len(data))
	}
	for i, d := range data {
		if err := m.Mem.Patch(origin+uint16(i), d); err != nil {
			return curated.Errorf("machine: %v", err)
		}
	}
	return nil
}
