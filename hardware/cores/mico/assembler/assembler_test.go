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

package assembler_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/cores/mico/assembler"
	"github.com/machina-emu/machina/test"
)

func assemble(t *testing.T, src string) *assembler.Program {
	t.Helper()
	prog, err := assembler.Assemble(strings.NewReader(src))
	test.DemandSuccess(t, err)
	return prog
}

func expectData(t *testing.T, prog *assembler.Program, expected []uint8) {
	t.Helper()
	if !test.ExpectEquality(t, len(prog.Data), len(expected)) {
		return
	}
	for i := range expected {
		test.ExpectEquality(t, prog.Data[i], expected[i], fmt.Sprintf("byte %d", i))
	}
}

func TestAssemble(t *testing.T) {
	prog := assemble(t, `
		LDI R0,#7
		HALT
	`)

	test.ExpectEquality(t, prog.Origin, 0)
	test.ExpectEquality(t, prog.Entry, 0)
	expectData(t, prog, []uint8{mico.OpLDI, 0x00, 0x07, 0x00, mico.OpHALT})
}

func TestLabels(t *testing.T) {
	prog := assemble(t, `
		LDI R0,#3
	loop:	DEC R0
		JRNZ loop
		HALT
	`)

	// the branch is taken from address 0x0006 and lands on 0x0004
	expectData(t, prog, []uint8{
		mico.OpLDI, 0x00, 0x03, 0x00,
		mico.OpDEC, 0x00,
		mico.OpJRNZ, 0xfc,
		mico.OpHALT,
	})
	test.ExpectEquality(t, prog.Symbols["loop"], 0x0004)
}

func TestForwardReference(t *testing.T) {
	prog := assemble(t, `
		JMP skip
		.byte $ff
	skip:	HALT
	`)

	expectData(t, prog, []uint8{mico.OpJMP, 0x04, 0x00, 0xff, mico.OpHALT})

	// entry is the first instruction even when data comes later
	test.ExpectEquality(t, prog.Entry, 0)
}

func TestDirectives(t *testing.T) {
	prog := assemble(t, `
		.org $4000
		.equ GREETING $48
	table:	.byte GREETING, $65, 108, 108, 111
		.word table, $ffff
		.fill 4, $aa
	msg:	.str "mico\n"
	`)

	test.ExpectEquality(t, prog.Origin, 0x4000)
	test.ExpectEquality(t, prog.Entry, 0x4000)
	expectData(t, prog, []uint8{
		0x48, 0x65, 0x6c, 0x6c, 0x6f,
		0x00, 0x40, 0xff, 0xff,
		0xaa, 0xaa, 0xaa, 0xaa,
		'm', 'i', 'c', 'o', '\n',
	})
	test.ExpectEquality(t, prog.Symbols["table"], 0x4000)
	test.ExpectEquality(t, prog.Symbols["msg"], 0x400d)
}

func TestExpressions(t *testing.T) {
	prog := assemble(t, `
		.equ WIDTH 128
		.equ VRAM $c000
		LDI R1,#(VRAM + WIDTH*2)
		HALT
	`)

	expectData(t, prog, []uint8{mico.OpLDI, 0x01, 0x00, 0xc1, mico.OpHALT})
}

func TestOrgGaps(t *testing.T) {
	prog := assemble(t, `
		.org $0010
		.byte 1
		.org $0014
		.byte 2
	`)

	// the gap between the two blocks is zero filled
	test.ExpectEquality(t, prog.Origin, 0x0010)
	expectData(t, prog, []uint8{1, 0, 0, 0, 2})
}

func TestErrors(t *testing.T) {
	fail := func(src string) error {
		_, err := assembler.Assemble(strings.NewReader(src))
		test.ExpectFailure(t, err)
		return err
	}

	err := fail("BOGUS R0")
	test.ExpectSuccess(t, curated.Is(err, assembler.AssemblyError))

	fail("dup: NOP\ndup: NOP")
	fail(".equ X Y")
	fail("LDI R0,#$12345\n")
	fail("LD R0,[R1]")
	fail(".str unquoted")
	fail("JRNZ done\n.org $200\ndone: HALT")

	_, err = assembler.Assemble(strings.NewReader("; comments only\n"))
	test.ExpectSuccess(t, curated.Is(err, assembler.NoProgram))
}

// imageReader lets the decoder walk an assembled program directly.
type imageReader struct {
	prog *assembler.Program
}

func (r imageReader) Read(address uint16) (uint8, error) {
	return r.prog.Data[address-r.prog.Origin], nil
}

func (r imageReader) Read16(address uint16) (uint16, error) {
	lo, _ := r.Read(address)
	hi, _ := r.Read(address + 1)
	return uint16(lo) | uint16(hi)<<8, nil
}

// every addressing mode, assembled, disassembled and assembled again. the
// two images must be identical.
func TestRoundTrip(t *testing.T) {
	prog := assemble(t, `
		.org 0
	start:	NOP
		LDI R0,#$1234
		MOV R1,R0
		LD R2,[$4000]
		ST [$4000],R2
		LDX R3,[R1]
		STX [R1],R3
		INC R0
		JMP next
	next:	JRNZ start
		HALT
	`)

	core := &mico.Core{}
	var listing strings.Builder
	listing.WriteString(".org 0\n")

	addr := prog.Origin
	end := prog.Origin + uint16(len(prog.Data))
	for addr < end {
		inst, err := core.Decode(imageReader{prog}, addr)
		test.DemandSuccess(t, err)
		listing.WriteString(core.FormatInstruction(inst, addr))
		listing.WriteString("\n")
		addr += uint16(inst.Length)
	}

	again := assemble(t, listing.String())
	test.ExpectEquality(t, again.Origin, prog.Origin)
	expectData(t, again, prog.Data)
}
