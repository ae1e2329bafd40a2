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

package disassembly_test

import (
	"strings"
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/disassembly"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/test"
)

// a program with a byte that does not decode in the middle of it.
var program = []byte{
	0x11, 0x00, 0x34, 0x12, // LDI R0,#$1234
	0x20, 0x01, // ADD R0,R1
	0xee, // not an opcode
	0x01, // HALT
}

func newMico(t *testing.T) *mico.Mico {
	t.Helper()

	mc, err := mico.NewMico(nil)
	test.DemandSuccess(t, err)
	mc.Env.Normalise()

	test.DemandSuccess(t, mc.LoadProgram(0x0000, program))
	test.DemandSuccess(t, mc.Reset())

	return mc
}

func TestFromMachine(t *testing.T) {
	mc := newMico(t)

	regs := mc.Regs.String()
	cycles := mc.TMR.Cycles()

	dsm, err := disassembly.FromMachine(mc.Machine, 0x0000, 0x0007)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(dsm.Entries), 4)

	// disassembly is a pure read
	test.ExpectEquality(t, mc.Regs.String(), regs)
	test.ExpectEquality(t, mc.TMR.Cycles(), cycles)

	e := dsm.Entries[0]
	test.ExpectEquality(t, e.Addr, 0x0000)
	test.ExpectEquality(t, e.Mnemonic, "LDI")
	test.ExpectEquality(t, e.Operand, "R0,#$1234")
	test.ExpectEquality(t, e.Bytecode, "11 00 34 12")
	test.ExpectEquality(t, e.Cycles, "2")
	test.ExpectEquality(t, e.Length, 4)

	e = dsm.Entries[1]
	test.ExpectEquality(t, e.Addr, 0x0004)
	test.ExpectEquality(t, e.Mnemonic, "ADD")
	test.ExpectEquality(t, e.Operand, "R0,R1")

	// the undecodable byte appears as data
	e = dsm.Entries[2]
	test.ExpectEquality(t, e.Addr, 0x0006)
	test.ExpectSuccess(t, e.Data)
	test.ExpectEquality(t, e.Mnemonic, ".byte")
	test.ExpectEquality(t, e.Operand, "$ee")
	test.ExpectEquality(t, e.Bytecode, "ee")
	test.ExpectEquality(t, e.Length, 1)

	e = dsm.Entries[3]
	test.ExpectEquality(t, e.Addr, 0x0007)
	test.ExpectEquality(t, e.Mnemonic, "HALT")
	test.ExpectEquality(t, e.Operand, "")
}

func TestFindAddress(t *testing.T) {
	mc := newMico(t)

	dsm, err := disassembly.FromMachine(mc.Machine, 0x0000, 0x0007)
	test.DemandSuccess(t, err)

	e, ok := dsm.FindAddress(0x0004)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, e.Mnemonic, "ADD")

	// mid-instruction addresses are not entry points
	_, ok = dsm.FindAddress(0x0005)
	test.ExpectFailure(t, ok)
}

func TestWrite(t *testing.T) {
	mc := newMico(t)

	dsm, err := disassembly.FromMachine(mc.Machine, 0x0000, 0x0007)
	test.DemandSuccess(t, err)

	s := &strings.Builder{}
	test.DemandSuccess(t, dsm.Write(s, disassembly.WriteAttr{ByteCode: true}))

	expected := "$0000  11 00 34 12  LDI   R0,#$1234  2\n" +
		"$0004  20 01        ADD   R0,R1      1\n" +
		"$0006  ee           .byte $ee\n" +
		"$0007  01           HALT             1\n"
	test.ExpectEquality(t, s.String(), expected)
}

func TestApply(t *testing.T) {
	mc := newMico(t)

	dsm, err := disassembly.FromMachine(mc.Machine, 0x0000, 0x0007)
	test.DemandSuccess(t, err)

	dsm.Apply(map[string]uint16{"start": 0x0000, "next": 0x0004})

	test.ExpectEquality(t, dsm.Entries[0].Location, "start")
	test.ExpectEquality(t, dsm.Entries[1].Location, "next")
	test.ExpectEquality(t, dsm.Entries[2].Location, "")

	s := &strings.Builder{}
	test.DemandSuccess(t, dsm.Write(s, disassembly.WriteAttr{}))
	test.ExpectSuccess(t, strings.HasPrefix(s.String(), "start:\n"))
	test.ExpectSuccess(t, strings.Contains(s.String(), "next:\n"))
}

func TestUnreadableRange(t *testing.T) {
	mc := newMico(t)

	// the top of the address space is unmapped on the Mico
	_, err := disassembly.FromMachine(mc.Machine, 0xf800, 0xffff)
	test.ExpectSuccess(t, curated.Is(err, disassembly.NoDisassembly))
}
