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
)

// The opcodes of the Mico instruction set.
const (
	OpNOP  = uint8(0x00)
	OpHALT = uint8(0x01)
	OpEI   = uint8(0x02)
	OpDI   = uint8(0x03)
	OpBRK  = uint8(0x04)
	OpRET  = uint8(0x05)
	OpRETI = uint8(0x06)

	OpMOV  = uint8(0x10)
	OpLDI  = uint8(0x11)
	OpLD   = uint8(0x12)
	OpST   = uint8(0x13)
	OpLDB  = uint8(0x14)
	OpSTB  = uint8(0x15)
	OpLDX  = uint8(0x16)
	OpSTX  = uint8(0x17)
	OpLDBX = uint8(0x18)
	OpSTBX = uint8(0x19)

	OpADD  = uint8(0x20)
	OpADC  = uint8(0x21)
	OpSUB  = uint8(0x22)
	OpSBC  = uint8(0x23)
	OpAND  = uint8(0x24)
	OpOR   = uint8(0x25)
	OpXOR  = uint8(0x26)
	OpCMP  = uint8(0x27)
	OpINC  = uint8(0x28)
	OpDEC  = uint8(0x29)
	OpNEG  = uint8(0x2a)
	OpSHL  = uint8(0x2b)
	OpSHR  = uint8(0x2c)
	OpMUL  = uint8(0x2d)
	OpDIV  = uint8(0x2e)
	OpCMPI = uint8(0x2f)
	OpADDI = uint8(0x30)

	OpJMP  = uint8(0x40)
	OpJR   = uint8(0x41)
	OpJRZ  = uint8(0x42)
	OpJRNZ = uint8(0x43)
	OpJRC  = uint8(0x44)
	OpJRNC = uint8(0x45)
	OpCALL = uint8(0x46)
	OpPUSH = uint8(0x47)
	OpPOP  = uint8(0x48)
)

// AddressingMode describes how an instruction encodes its operands.
type AddressingMode int

// List of addressing modes. The mode fixes the instruction length: one
// byte for Implied, three for Address, four for the immediate and
// absolute modes and two for everything else.
const (
	Implied AddressingMode = iota

	// one operand byte, destination register in the high nibble and
	// source register in the low nibble
	RegReg

	// one operand byte naming a single register
	Reg

	// register byte followed by a 16-bit immediate
	RegImm

	// register byte followed by a 16-bit absolute address
	RegAddr
	AddrReg

	// like RegReg but the second (or first) register holds an address
	RegInd
	IndReg

	// a 16-bit absolute address
	Address

	// a signed 8-bit displacement from the end of the instruction
	Relative
)

// Definition describes one instruction of the set. The assembler package
// works from the same table, which is what keeps the assembler and the
// core agreeing with each other.
type Definition struct {
	Mnemonic string
	Mode     AddressingMode

	// base cycle cost. conditional branches cost one cycle more when
	// taken
	Cycles uint8
}

// Length returns the instruction length in bytes implied by the mode.
func (d Definition) Length() uint8 {
	switch d.Mode {
	case Implied:
		return 1
	case Address:
		return 3
	case RegImm, RegAddr, AddrReg:
		return 4
	}
	return 2
}

// Definitions is the instruction table of the Mico, indexed by opcode.
var Definitions = map[uint8]Definition{
	OpNOP:  {Mnemonic: "NOP", Mode: Implied, Cycles: 1},
	OpHALT: {Mnemonic: "HALT", Mode: Implied, Cycles: 1},
	OpEI:   {Mnemonic: "EI", Mode: Implied, Cycles: 1},
	OpDI:   {Mnemonic: "DI", Mode: Implied, Cycles: 1},
	OpBRK:  {Mnemonic: "BRK", Mode: Implied, Cycles: 1},
	OpRET:  {Mnemonic: "RET", Mode: Implied, Cycles: 4},
	OpRETI: {Mnemonic: "RETI", Mode: Implied, Cycles: 5},

	OpMOV:  {Mnemonic: "MOV", Mode: RegReg, Cycles: 1},
	OpLDI:  {Mnemonic: "LDI", Mode: RegImm, Cycles: 2},
	OpLD:   {Mnemonic: "LD", Mode: RegAddr, Cycles: 3},
	OpST:   {Mnemonic: "ST", Mode: AddrReg, Cycles: 3},
	OpLDB:  {Mnemonic: "LDB", Mode: RegAddr, Cycles: 3},
	OpSTB:  {Mnemonic: "STB", Mode: AddrReg, Cycles: 3},
	OpLDX:  {Mnemonic: "LDX", Mode: RegInd, Cycles: 3},
	OpSTX:  {Mnemonic: "STX", Mode: IndReg, Cycles: 3},
	OpLDBX: {Mnemonic: "LDBX", Mode: RegInd, Cycles: 3},
	OpSTBX: {Mnemonic: "STBX", Mode: IndReg, Cycles: 3},

	OpADD:  {Mnemonic: "ADD", Mode: RegReg, Cycles: 1},
	OpADC:  {Mnemonic: "ADC", Mode: RegReg, Cycles: 1},
	OpSUB:  {Mnemonic: "SUB", Mode: RegReg, Cycles: 1},
	OpSBC:  {Mnemonic: "SBC", Mode: RegReg, Cycles: 1},
	OpAND:  {Mnemonic: "AND", Mode: RegReg, Cycles: 1},
	OpOR:   {Mnemonic: "OR", Mode: RegReg, Cycles: 1},
	OpXOR:  {Mnemonic: "XOR", Mode: RegReg, Cycles: 1},
	OpCMP:  {Mnemonic: "CMP", Mode: RegReg, Cycles: 1},
	OpINC:  {Mnemonic: "INC", Mode: Reg, Cycles: 1},
	OpDEC:  {Mnemonic: "DEC", Mode: Reg, Cycles: 1},
	OpNEG:  {Mnemonic: "NEG", Mode: Reg, Cycles: 1},
	OpSHL:  {Mnemonic: "SHL", Mode: Reg, Cycles: 1},
	OpSHR:  {Mnemonic: "SHR", Mode: Reg, Cycles: 1},
	OpMUL:  {Mnemonic: "MUL", Mode: RegReg, Cycles: 4},
	OpDIV:  {Mnemonic: "DIV", Mode: RegReg, Cycles: 8},
	OpCMPI: {Mnemonic: "CMPI", Mode: RegImm, Cycles: 2},
	OpADDI: {Mnemonic: "ADDI", Mode: RegImm, Cycles: 2},

	OpJMP:  {Mnemonic: "JMP", Mode: Address, Cycles: 2},
	OpJR:   {Mnemonic: "JR", Mode: Relative, Cycles: 2},
	OpJRZ:  {Mnemonic: "JRZ", Mode: Relative, Cycles: 1},
	OpJRNZ: {Mnemonic: "JRNZ", Mode: Relative, Cycles: 1},
	OpJRC:  {Mnemonic: "JRC", Mode: Relative, Cycles: 1},
	OpJRNC: {Mnemonic: "JRNC", Mode: Relative, Cycles: 1},
	OpCALL: {Mnemonic: "CALL", Mode: Address, Cycles: 4},
	OpPUSH: {Mnemonic: "PUSH", Mode: Reg, Cycles: 2},
	OpPOP:  {Mnemonic: "POP", Mode: Reg, Cycles: 2},
}

// Lookup finds an opcode by mnemonic. The comparison is case insensitive
// only in the sense that the assembler upper-cases before calling.
func Lookup(mnemonic string) (uint8, Definition, bool) {
	for opcode, def := range Definitions {
		if def.Mnemonic == mnemonic {
			return opcode, def, true
		}
	}
	return 0, Definition{}, false
}

// Decode implements the cores.Core interface.
func (c *Core) Decode(mem bus.Reader, address uint16) (cores.Instruction, error) {
	opcode, err := mem.Read(address)
	if err != nil {
		return cores.Instruction{}, err
	}

	def, ok := Definitions[opcode]
	if !ok {
		return cores.Instruction{}, curated.Errorf(cores.InvalidOpcode, opcode, address)
	}

	inst := cores.Instruction{
		Opcode: opcode,
		Length: def.Length(),
		Cycles: def.Cycles,
	}

	// operand bytes are fetched one at a time. instructions are byte
	// streams and are allowed to straddle region boundaries, unlike data
	// accesses
	operand := func(offset uint16) (uint8, error) {
		return mem.Read(address + offset)
	}

	switch def.Mode {
	case Implied:

	case RegReg, RegInd, IndReg:
		b, err := operand(1)
		if err != nil {
			return cores.Instruction{}, err
		}
		inst.Operands[0] = uint16((b >> 4) & 0x07)
		inst.Operands[1] = uint16(b & 0x07)

	case Reg:
		b, err := operand(1)
		if err != nil {
			return cores.Instruction{}, err
		}
		inst.Operands[0] = uint16(b & 0x07)

	case RegImm, RegAddr, AddrReg:
		b, err := operand(1)
		if err != nil {
			return cores.Instruction{}, err
		}
		lo, err := operand(2)
		if err != nil {
			return cores.Instruction{}, err
		}
		hi, err := operand(3)
		if err != nil {
			return cores.Instruction{}, err
		}
		inst.Operands[0] = uint16(b & 0x07)
		inst.Operands[1] = uint16(lo) | uint16(hi)<<8

	case Address:
		lo, err := operand(1)
		if err != nil {
			return cores.Instruction{}, err
		}
		hi, err := operand(2)
		if err != nil {
			return cores.Instruction{}, err
		}
		inst.Operands[0] = uint16(lo) | uint16(hi)<<8

	case Relative:
		b, err := operand(1)
		if err != nil {
			return cores.Instruction{}, err
		}
		inst.Operands[0] = uint16(int16(int8(b)))
	}

	return inst, nil
}
