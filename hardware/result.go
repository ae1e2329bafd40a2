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
	"fmt"

	"github.com/machina-emu/machina/hardware/cores"
)

// Result records what a single call to one of the step functions did.
// Debuggers use it for the instruction trace and the "last result" display.
type Result struct {
	// the program counter before the step happened
	Address uint16

	// the decoded instruction and the outcome of executing it. not valid
	// when a step was consumed by an interrupt
	Instruction cores.Instruction
	Outcome     cores.Outcome

	// the step was consumed servicing an interrupt. Vector identifies
	// which one and Outcome.Cycles carries the cost of the transfer
	Interrupt bool
	Vector    uint8
}

// String returns the formatted result. The Machine type overrides this with
// the core's own formatting, String() here is only a fallback for when no
// core is in reach.
func (r Result) String() string {
	if r.Interrupt {
		return fmt.Sprintf("%04x  int vec %d", r.Address, r.Vector)
	}
	return fmt.Sprintf("%04x  op %02x", r.Address, r.Instruction.Opcode)
}

// FormatResult returns the assembly language trace line for a result,
// using the core's formatting.
func (m *Machine) FormatResult(r Result) string {
	if r.Interrupt {
		return fmt.Sprintf("%04x  int vec %d (%d cycles)", r.Address, r.Vector, r.Outcome.Cycles)
	}
	return fmt.Sprintf("%04x  %s (%d cycles)", r.Address,
		m.Core.FormatInstruction(r.Instruction, r.Address), r.Outcome.Cycles)
}
