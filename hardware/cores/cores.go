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

// Package cores defines the contract between the machine and a processor
// core. The machine knows how to step, run, snapshot and rewind any
// implementation of the Core interface. The core knows how to decode and
// execute the instructions of one specific processor.
//
// Core implementations register themselves with the Register() function,
// usually from an init() function, and are created by ID with Create().
package cores

import (
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/registers"
)

// Sentinel errors returned by Core implementations.
const (
	// InvalidOpcode is returned by Decode() when the byte at the decode
	// address is not a recognised instruction.
	InvalidOpcode = "invalid opcode: %#02x [%#04x]"

	// ArithmeticTrap is returned by Execute() when an instruction performs
	// an undefined arithmetic operation, division by zero for example.
	ArithmeticTrap = "arithmetic trap: %s"

	// SoftwareBreak is returned by Execute() for instructions whose whole
	// purpose is to stop a debugger, BRK and its relatives. Unlike other
	// Execute() errors it may be accompanied by a valid Outcome, the
	// break instruction itself has run.
	SoftwareBreak = "software break [%#04x]"
)

// Instruction is a single decoded instruction. Decoding never mutates the
// machine so an Instruction can be thrown away freely, the disassembler
// relies on this.
type Instruction struct {
	// the opcode byte and the decoded operand values. the meaning of the
	// operands depends on the opcode
	Opcode   uint8
	Operands [2]uint16

	// total length of the instruction in bytes, opcode included
	Length uint8

	// the base cycle cost of the instruction. Execute() reports the actual
	// cost, which may be higher
	Cycles uint8
}

// Outcome is the result of executing a single instruction.
type Outcome struct {
	// the number of machine cycles the instruction consumed
	Cycles int

	// Halted is true if the instruction has stopped the machine
	Halted bool
}

// Core is a processor implementation. A Core holds no mutable machine
// state of its own. Registers and memory are passed in by the machine,
// which is what makes machine level snapshots possible without the core's
// involvement.
type Core interface {
	// ID returns the name the core was registered under.
	ID() string

	// RegisterSpec describes the register file the core expects. The
	// machine allocates registers accordingly.
	RegisterSpec() registers.Spec

	// Reset puts the register file into the core's power-on state, the
	// reset values of PC and SP in particular.
	Reset(regs *registers.File)

	// Decode reads the instruction at address. It must not alter any
	// machine state. Errors are decode faults, InvalidOpcode or a memory
	// fault from the reader.
	Decode(mem bus.Reader, address uint16) (Instruction, error)

	// Execute performs a previously decoded instruction. The program
	// counter has already been advanced past the instruction by the time
	// Execute is called. An error means the machine faults.
	Execute(inst Instruction, regs *registers.File, mem *bus.Bus) (Outcome, error)

	// InterruptsEnabled is true if the core is currently accepting
	// interrupts, according to whatever mask the core keeps in its
	// registers.
	InterruptsEnabled(regs *registers.File) bool

	// ServiceInterrupt transfers control to the handler for vector,
	// saving whatever return state the core requires. It returns the
	// cycle cost of the transfer.
	ServiceInterrupt(vector uint8, regs *registers.File, mem *bus.Bus) (int, error)

	// FormatInstruction returns the assembly language for an instruction
	// decoded at address.
	FormatInstruction(inst Instruction, address uint16) string
}
