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
	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/registers"
)

// push16 decrements SP and writes a word to the stack. SP only moves if
// the write succeeds.
func push16(regs *registers.File, mem *bus.Bus, val uint16) error {
	sp := regs.SP() - 2
	if err := mem.Write16(sp, val); err != nil {
		return err
	}
	regs.SetSP(sp)
	return nil
}

// pop16 reads a word from the stack and increments SP. SP only moves if
// the read succeeds.
func pop16(regs *registers.File, mem *bus.Bus) (uint16, error) {
	val, err := mem.Read16(regs.SP())
	if err != nil {
		return 0, err
	}
	regs.SetSP(regs.SP() + 2)
	return val, nil
}

// setZN sets the Z and N flags from a result, leaving C and V alone.
func setZN(regs *registers.File, val uint16) {
	st := regs.Status() &^ (FlagZ | FlagN)
	if val == 0 {
		st |= FlagZ
	}
	if val&0x8000 == 0x8000 {
		st |= FlagN
	}
	regs.SetStatus(st)
}

// setZNCV sets all four arithmetic flags explicitly.
func setZNCV(regs *registers.File, val uint16, carry bool, overflow bool) {
	st := regs.Status() &^ (FlagZ | FlagN | FlagC | FlagV)
	if val == 0 {
		st |= FlagZ
	}
	if val&0x8000 == 0x8000 {
		st |= FlagN
	}
	if carry {
		st |= FlagC
	}
	if overflow {
		st |= FlagV
	}
	regs.SetStatus(st)
}

// add performs a+b+carry and sets the arithmetic flags.
func add(regs *registers.File, a uint16, b uint16, carryIn uint16) uint16 {
	sum := uint32(a) + uint32(b) + uint32(carryIn)
	res := uint16(sum)
	setZNCV(regs, res,
		sum > 0xffff,
		(a^res)&(b^res)&0x8000 == 0x8000)
	return res
}

// sub performs a-b-borrow and sets the arithmetic flags. The C flag is set
// when a borrow happened.
func sub(regs *registers.File, a uint16, b uint16, borrowIn uint16) uint16 {
	diff := uint32(a) - uint32(b) - uint32(borrowIn)
	res := uint16(diff)
	setZNCV(regs, res,
		diff > 0xffff,
		(a^b)&(a^res)&0x8000 == 0x8000)
	return res
}

// Execute implements the cores.Core interface.
func (c *Core) Execute(inst cores.Instruction, regs *registers.File, mem *bus.Bus) (cores.Outcome, error) {
	out := cores.Outcome{Cycles: int(inst.Cycles)}

	// operand shorthands. rd and rs are register indices, not values
	rd := int(inst.Operands[0])
	rs := int(inst.Operands[1])

	carryIn := func() uint16 {
		if regs.Status()&FlagC == FlagC {
			return 1
		}
		return 0
	}

	branch := func(taken bool) {
		if taken {
			regs.SetPC(regs.PC() + inst.Operands[0])
			out.Cycles++
		}
	}

	switch inst.Opcode {
	case OpNOP:

	case OpHALT:
		out.Halted = true

	case OpEI:
		regs.SetStatus(regs.Status() | FlagI)

	case OpDI:
		regs.SetStatus(regs.Status() &^ FlagI)

	case OpBRK:
		// the break has run by the time the error is seen, which is why
		// an outcome accompanies it
		return out, curated.Errorf(cores.SoftwareBreak, regs.PC()-1)

	case OpRET:
		pc, err := pop16(regs, mem)
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetPC(pc)

	case OpRETI:
		st, err := pop16(regs, mem)
		if err != nil {
			return cores.Outcome{}, err
		}
		pc, err := pop16(regs, mem)
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetStatus(st)
		regs.SetPC(pc)

	case OpMOV:
		regs.SetValue(rd, regs.Value(rs))

	case OpLDI:
		regs.SetValue(rd, inst.Operands[1])

	case OpLD:
		val, err := mem.Read16(inst.Operands[1])
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetValue(rd, val)

	case OpST:
		if err := mem.Write16(inst.Operands[1], regs.Value(rd)); err != nil {
			return cores.Outcome{}, err
		}

	case OpLDB:
		val, err := mem.Read(inst.Operands[1])
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetValue(rd, uint16(val))

	case OpSTB:
		if err := mem.Write(inst.Operands[1], uint8(regs.Value(rd))); err != nil {
			return cores.Outcome{}, err
		}

	case OpLDX:
		val, err := mem.Read16(regs.Value(rs))
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetValue(rd, val)

	case OpSTX:
		if err := mem.Write16(regs.Value(rd), regs.Value(rs)); err != nil {
			return cores.Outcome{}, err
		}

	case OpLDBX:
		val, err := mem.Read(regs.Value(rs))
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetValue(rd, uint16(val))

	case OpSTBX:
		if err := mem.Write(regs.Value(rd), uint8(regs.Value(rs))); err != nil {
			return cores.Outcome{}, err
		}

	case OpADD:
		regs.SetValue(rd, add(regs, regs.Value(rd), regs.Value(rs), 0))

	case OpADC:
		regs.SetValue(rd, add(regs, regs.Value(rd), regs.Value(rs), carryIn()))

	case OpSUB:
		regs.SetValue(rd, sub(regs, regs.Value(rd), regs.Value(rs), 0))

	case OpSBC:
		regs.SetValue(rd, sub(regs, regs.Value(rd), regs.Value(rs), carryIn()))

	case OpAND:
		val := regs.Value(rd) & regs.Value(rs)
		regs.SetValue(rd, val)
		setZNCV(regs, val, false, false)

	case OpOR:
		val := regs.Value(rd) | regs.Value(rs)
		regs.SetValue(rd, val)
		setZNCV(regs, val, false, false)

	case OpXOR:
		val := regs.Value(rd) ^ regs.Value(rs)
		regs.SetValue(rd, val)
		setZNCV(regs, val, false, false)

	case OpCMP:
		sub(regs, regs.Value(rd), regs.Value(rs), 0)

	case OpCMPI:
		sub(regs, regs.Value(rd), inst.Operands[1], 0)

	case OpADDI:
		regs.SetValue(rd, add(regs, regs.Value(rd), inst.Operands[1], 0))

	case OpINC:
		val := regs.Value(rd) + 1
		regs.SetValue(rd, val)
		st := regs.Status() &^ (FlagZ | FlagN | FlagV)
		if val == 0 {
			st |= FlagZ
		}
		if val&0x8000 == 0x8000 {
			st |= FlagN
		}
		if val == 0x8000 {
			st |= FlagV
		}
		regs.SetStatus(st)

	case OpDEC:
		val := regs.Value(rd) - 1
		regs.SetValue(rd, val)
		st := regs.Status() &^ (FlagZ | FlagN | FlagV)
		if val == 0 {
			st |= FlagZ
		}
		if val&0x8000 == 0x8000 {
			st |= FlagN
		}
		if val == 0x7fff {
			st |= FlagV
		}
		regs.SetStatus(st)

	case OpNEG:
		old := regs.Value(rd)
		val := -old
		regs.SetValue(rd, val)
		setZNCV(regs, val, old != 0, old == 0x8000)

	case OpSHL:
		old := regs.Value(rd)
		val := old << 1
		regs.SetValue(rd, val)
		setZNCV(regs, val, old&0x8000 == 0x8000, false)

	case OpSHR:
		old := regs.Value(rd)
		val := old >> 1
		regs.SetValue(rd, val)
		setZNCV(regs, val, old&0x0001 == 0x0001, false)

	case OpMUL:
		prod := uint32(regs.Value(rd)) * uint32(regs.Value(rs))
		val := uint16(prod)
		regs.SetValue(rd, val)
		setZNCV(regs, val, prod > 0xffff, prod > 0xffff)

	case OpDIV:
		if regs.Value(rs) == 0 {
			return cores.Outcome{}, curated.Errorf(cores.ArithmeticTrap, "division by zero")
		}
		val := regs.Value(rd) / regs.Value(rs)
		regs.SetValue(rd, val)
		setZNCV(regs, val, false, false)

	case OpJMP:
		regs.SetPC(inst.Operands[0])

	case OpJR:
		regs.SetPC(regs.PC() + inst.Operands[0])

	case OpJRZ:
		branch(regs.Status()&FlagZ == FlagZ)

	case OpJRNZ:
		branch(regs.Status()&FlagZ == 0)

	case OpJRC:
		branch(regs.Status()&FlagC == FlagC)

	case OpJRNC:
		branch(regs.Status()&FlagC == 0)

	case OpCALL:
		if err := push16(regs, mem, regs.PC()); err != nil {
			return cores.Outcome{}, err
		}
		regs.SetPC(inst.Operands[0])

	case OpPUSH:
		if err := push16(regs, mem, regs.Value(rd)); err != nil {
			return cores.Outcome{}, err
		}

	case OpPOP:
		val, err := pop16(regs, mem)
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetValue(rd, val)

	default:
		// Decode() never produces an instruction outside the table
		return cores.Outcome{}, curated.Errorf(cores.InvalidOpcode, inst.Opcode, regs.PC())
	}

	return out, nil
}
