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

package mico

import (
	"fmt"

	"github.com/machina-emu/machina/hardware/cores"
)

// FormatInstruction implements the cores.Core interface. The output is
// accepted back by the assembler, which is what lets the DISASM and ASM
// modes round-trip.
func (c *Core) FormatInstruction(inst cores.Instruction, address uint16) string {
	def, ok := Definitions[inst.Opcode]
	if !ok {
		return fmt.Sprintf(".byte $%02x", inst.Opcode)
	}

	switch def.Mode {
	case Implied:
		return def.Mnemonic

	case RegReg:
		return fmt.Sprintf("%s R%d,R%d", def.Mnemonic, inst.Operands[0], inst.Operands[1])

	case Reg:
		return fmt.Sprintf("%s R%d", def.Mnemonic, inst.Operands[0])

	case RegImm:
		return fmt.Sprintf("%s R%d,#$%04x", def.Mnemonic, inst.Operands[0], inst.Operands[1])

	case RegAddr:
		return fmt.Sprintf("%s R%d,[$%04x]", def.Mnemonic, inst.Operands[0], inst.Operands[1])

	case AddrReg:
		return fmt.Sprintf("%s [$%04x],R%d", def.Mnemonic, inst.Operands[1], inst.Operands[0])

	case RegInd:
		return fmt.Sprintf("%s R%d,[R%d]", def.Mnemonic, inst.Operands[0], inst.Operands[1])

	case IndReg:
		return fmt.Sprintf("%s [R%d],R%d", def.Mnemonic, inst.Operands[0], inst.Operands[1])

	case Address:
		return fmt.Sprintf("%s $%04x", def.Mnemonic, inst.Operands[0])

	case Relative:
		// displacements are relative to the end of the instruction.
		// showing the resolved target is more useful than the raw byte
		target := address + uint16(def.Length()) + inst.Operands[0]
		return fmt.Sprintf("%s $%04x", def.Mnemonic, target)
	}

	return def.Mnemonic
}
