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

package mico_test

import (
	"testing"

	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/registers"
	"github.com/machina-emu/machina/test"
)

// harness for executing single instructions against a bare register file.
type harness struct {
	core *mico.Core
	regs *registers.File
	mem  *bus.Bus
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		core: &mico.Core{},
		mem:  bus.NewBus(bus.Fault),
	}
	h.regs = registers.NewFile(h.core.RegisterSpec())
	h.core.Reset(h.regs)
	test.DemandSuccess(t, h.mem.AddRegion("RAM", 0x0000, 0xffff, bus.ReadWrite))

	return h
}

// exec runs a single hand-built instruction through the core.
func (h *harness) exec(t *testing.T, opcode uint8, operands ...uint16) cores.Outcome {
	t.Helper()

	inst := cores.Instruction{Opcode: opcode, Cycles: mico.Definitions[opcode].Cycles}
	copy(inst.Operands[:], operands)

	out, err := h.core.Execute(inst, h.regs, h.mem)
	test.DemandSuccess(t, err)
	return out
}

func (h *harness) flags(t *testing.T, expected uint16) {
	t.Helper()
	test.ExpectEquality(t, h.regs.Status()&(mico.FlagZ|mico.FlagN|mico.FlagC|mico.FlagV), expected)
}

func TestAddFlags(t *testing.T) {
	h := newHarness(t)

	// 0x7fff + 1 overflows into the sign bit
	h.regs.SetValue(0, 0x7fff)
	h.regs.SetValue(1, 0x0001)
	h.exec(t, mico.OpADD, 0, 1)
	test.ExpectEquality(t, h.regs.Value(0), 0x8000)
	h.flags(t, mico.FlagN|mico.FlagV)

	// 0xffff + 1 wraps to zero with carry, no signed overflow
	h.regs.SetValue(0, 0xffff)
	h.exec(t, mico.OpADD, 0, 1)
	test.ExpectEquality(t, h.regs.Value(0), 0)
	h.flags(t, mico.FlagZ|mico.FlagC)

	// ADC folds the carry back in
	h.exec(t, mico.OpADC, 0, 1)
	test.ExpectEquality(t, h.regs.Value(0), 2)
	h.flags(t, 0)
}

func TestSubFlags(t *testing.T) {
	h := newHarness(t)

	// 5 - 10 borrows
	h.regs.SetValue(0, 5)
	h.regs.SetValue(1, 10)
	h.exec(t, mico.OpSUB, 0, 1)
	test.ExpectEquality(t, h.regs.Value(0), 0xfffb)
	h.flags(t, mico.FlagN|mico.FlagC)

	// CMP of equal values sets Z and leaves the register alone
	h.regs.SetValue(0, 10)
	h.exec(t, mico.OpCMP, 0, 1)
	test.ExpectEquality(t, h.regs.Value(0), 10)
	h.flags(t, mico.FlagZ)
}

func TestShifts(t *testing.T) {
	h := newHarness(t)

	h.regs.SetValue(0, 0x8001)
	h.exec(t, mico.OpSHL, 0)
	test.ExpectEquality(t, h.regs.Value(0), 0x0002)
	h.flags(t, mico.FlagC)

	h.exec(t, mico.OpSHR, 0)
	test.ExpectEquality(t, h.regs.Value(0), 0x0001)
	h.flags(t, 0)

	h.exec(t, mico.OpSHR, 0)
	test.ExpectEquality(t, h.regs.Value(0), 0x0000)
	h.flags(t, mico.FlagZ|mico.FlagC)
}

func TestMulDiv(t *testing.T) {
	h := newHarness(t)

	h.regs.SetValue(0, 0x1000)
	h.regs.SetValue(1, 0x0010)
	h.exec(t, mico.OpMUL, 0, 1)
	test.ExpectEquality(t, h.regs.Value(0), 0)
	h.flags(t, mico.FlagZ|mico.FlagC|mico.FlagV)

	h.regs.SetValue(0, 84)
	h.regs.SetValue(1, 2)
	h.exec(t, mico.OpDIV, 0, 1)
	test.ExpectEquality(t, h.regs.Value(0), 42)
	h.flags(t, 0)
}

func TestIncDec(t *testing.T) {
	h := newHarness(t)

	// INC does not disturb the carry
	h.regs.SetStatus(mico.FlagC)
	h.regs.SetValue(0, 0x7fff)
	h.exec(t, mico.OpINC, 0)
	test.ExpectEquality(t, h.regs.Value(0), 0x8000)
	h.flags(t, mico.FlagN|mico.FlagV|mico.FlagC)

	h.regs.SetValue(0, 1)
	h.exec(t, mico.OpDEC, 0)
	h.flags(t, mico.FlagZ|mico.FlagC)
}

func TestBranchCycles(t *testing.T) {
	h := newHarness(t)

	// a branch not taken costs the base cycle
	h.regs.SetStatus(0)
	out := h.exec(t, mico.OpJRZ, 0x0010)
	test.ExpectEquality(t, out.Cycles, 1)

	// taken costs one more and moves PC
	h.regs.SetPC(0x0100)
	h.regs.SetStatus(mico.FlagZ)
	out = h.exec(t, mico.OpJRZ, 0x0010)
	test.ExpectEquality(t, out.Cycles, 2)
	test.ExpectEquality(t, h.regs.PC(), 0x0110)

	// backwards displacements arrive sign extended from the decoder
	h.regs.SetPC(0x0100)
	out = h.exec(t, mico.OpJR, 0xfff0)
	test.ExpectEquality(t, out.Cycles, 2)
	test.ExpectEquality(t, h.regs.PC(), 0x00f0)
}

func TestDecode(t *testing.T) {
	h := newHarness(t)

	// place an LDI R3,#$1234 in memory and decode it
	for i, b := range []uint8{mico.OpLDI, 0x03, 0x34, 0x12} {
		test.DemandSuccess(t, h.mem.Poke(uint16(i), b))
	}

	inst, err := h.core.Decode(h.mem, 0x0000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, inst.Opcode, mico.OpLDI)
	test.ExpectEquality(t, inst.Length, 4)
	test.ExpectEquality(t, inst.Operands[0], 3)
	test.ExpectEquality(t, inst.Operands[1], 0x1234)

	// an unused opcode is an invalid opcode error
	test.DemandSuccess(t, h.mem.Poke(0x0010, 0xee))
	_, err = h.core.Decode(h.mem, 0x0010)
	test.ExpectFailure(t, err)

	// relative displacements are sign extended
	test.DemandSuccess(t, h.mem.Poke(0x0020, mico.OpJR))
	test.DemandSuccess(t, h.mem.Poke(0x0021, 0x80))
	inst, err = h.core.Decode(h.mem, 0x0020)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, inst.Operands[0], 0xff80)
}

func TestFormat(t *testing.T) {
	c := &mico.Core{}

	inst := cores.Instruction{Opcode: mico.OpLDI, Length: 4, Operands: [2]uint16{0, 0x0007}}
	test.ExpectEquality(t, c.FormatInstruction(inst, 0x0000), "LDI R0,#$0007")

	inst = cores.Instruction{Opcode: mico.OpST, Length: 4, Operands: [2]uint16{2, 0x4000}}
	test.ExpectEquality(t, c.FormatInstruction(inst, 0x0000), "ST [$4000],R2")

	inst = cores.Instruction{Opcode: mico.OpSTX, Length: 2, Operands: [2]uint16{1, 2}}
	test.ExpectEquality(t, c.FormatInstruction(inst, 0x0000), "STX [R1],R2")

	// relative branches show the resolved target
	inst = cores.Instruction{Opcode: mico.OpJRNZ, Length: 2, Operands: [2]uint16{0xfff6}}
	test.ExpectEquality(t, c.FormatInstruction(inst, 0x0041), "JRNZ $0039")
}
