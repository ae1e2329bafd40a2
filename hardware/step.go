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
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/execution"
)

// Step advances the machine by one instruction, or by one interrupt
// service if a raised vector is waiting and the core is accepting
// interrupts.
//
// The breakpoint check runs before anything else. When it matches, Step
// returns the Breakpoint error and the machine is exactly as it was, the
// instruction at the breakpoint has not run. Use StepInstruction() to step
// over the breakpoint.
func (m *Machine) Step() error {
	if m.breakpointCheck != nil && m.breakpointCheck(m.Regs.PC()) {
		return curated.Errorf(Breakpoint, m.Regs.PC())
	}
	return m.StepInstruction()
}

// StepInstruction is Step() without the breakpoint check.
func (m *Machine) StepInstruction() error {
	if m.state != execution.Running && m.state != execution.Paused {
		return curated.Errorf(NotRunnable, m.state)
	}

	// interrupt service wins over instruction execution. a serviced
	// interrupt consumes the whole step, the instruction at PC runs on the
	// next step (from inside the handler by then)
	if m.TMR.Pending() && m.Core.InterruptsEnabled(m.Regs) {
		vector, _ := m.TMR.Next()
		pc := m.Regs.PC()

		cycles, err := m.Core.ServiceInterrupt(vector, m.Regs, m.Mem)
		if err != nil {
			return m.toFault(err)
		}
		m.TMR.Tick(cycles)

		m.lastResult = Result{
			Address:   pc,
			Interrupt: true,
			Vector:    vector,
		}
		m.lastResult.Outcome.Cycles = cycles

		return nil
	}

	pc := m.Regs.PC()

	inst, err := m.Core.Decode(m.Mem, pc)
	if err != nil {
		return m.toFault(err)
	}

	// PC advances over the instruction before execution. relative
	// branches and subroutine calls rely on this
	m.Regs.SetPC(pc + uint16(inst.Length))

	out, err := m.Core.Execute(inst, m.Regs, m.Mem)
	if err != nil {
		// a software break is not a fault. the break instruction has run
		// and the machine can continue. what happens next is the
		// frontend's decision, a debugger halts, other frontends treat
		// the error as fatal
		if curated.Is(err, cores.SoftwareBreak) {
			m.TMR.Tick(out.Cycles)
			m.lastResult = Result{
				Address:     pc,
				Instruction: inst,
				Outcome:     out,
			}
			return err
		}
		return m.toFault(err)
	}

	// the timer subsystem only advances on success. a faulted step costs
	// no cycles
	m.TMR.Tick(out.Cycles)

	m.lastResult = Result{
		Address:     pc,
		Instruction: inst,
		Outcome:     out,
	}

	if out.Halted {
		m.state = execution.Halted
	}

	return nil
}

// toFault moves the machine into the Faulted state, recording cause. The
// returned error is the same value later available through Fault().
func (m *Machine) toFault(cause error) error {
	m.state = execution.Faulted
	m.fault = curated.Errorf("machine: %v", cause)
	return m.fault
}
