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
	"github.com/machina-emu/machina/debugger/govern"
	"github.com/machina-emu/machina/hardware/execution"
)

// The continueCheck() function only runs every PerformanceBrake steps. A
// full check on every instruction would dominate the running time of the
// emulation, and nothing a continue check looks at (GUI events, channel
// selects) needs instruction-level granularity.
const PerformanceBrake = 100

// Run steps the machine as quickly as possible until it stops being
// Running, or until continueCheck says otherwise.
//
// The return value is nil when the machine halted normally or the continue
// check asked for the end. A fault or a breakpoint is returned as the
// error from the step that hit it.
func (m *Machine) Run(continueCheck func() (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func() (govern.State, error) { return govern.Running, nil }
	}

	for {
		for i := 0; i < PerformanceBrake; i++ {
			if err := m.Step(); err != nil {
				return err
			}
			if m.state != execution.Running {
				return nil
			}
		}

		state, err := continueCheck()
		if err != nil {
			return err
		}
		if state != govern.Running {
			return nil
		}
	}
}

// RunCycles steps the machine until at least budget machine cycles have
// elapsed. The number of cycles actually consumed is returned, it can
// overshoot the budget by up to one instruction.
//
// Frame paced frontends call RunCycles once per frame with the machine's
// cycles-per-frame value.
func (m *Machine) RunCycles(budget int) (int, error) {
	start := m.TMR.Cycles()

	for m.TMR.Cycles()-start < uint64(budget) {
		if err := m.Step(); err != nil {
			return int(m.TMR.Cycles() - start), err
		}
		if m.state != execution.Running {
			break
		}
	}

	return int(m.TMR.Cycles() - start), nil
}

// RunForSteps steps the machine the specified number of times. Useful for
// performance measurement and regression tests. Not used by the debugger
// because breakpoints and traps are more flexible.
func (m *Machine) RunForSteps(numSteps int, continueCheck func(step int) (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func(step int) (govern.State, error) { return govern.Running, nil }
	}

	for i := 0; i < numSteps; i++ {
		if err := m.Step(); err != nil {
			return err
		}
		if m.state != execution.Running {
			return nil
		}

		state, err := continueCheck(i + 1)
		if err != nil {
			return err
		}
		if state != govern.Running {
			return nil
		}
	}

	return nil
}
