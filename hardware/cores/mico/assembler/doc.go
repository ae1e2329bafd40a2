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

// Package assembler implements a two pass assembler for the mico core.
// It works from the same instruction table as the decoder, which means
// anything produced by FormatInstruction() can be fed back through
// Assemble() unchanged.
//
// The dialect is conventional. Comments run from a semi-colon to the end
// of the line. Labels are identifiers followed by a colon and may share a
// line with an instruction. Mnemonics and register names are case
// insensitive, labels are not.
//
//	; clear the first row of the framebuffer
//	        LDI R0,#VRAM
//	        LDI R1,#WIDTH
//	loop:   STBX [R0],R2
//	        INC R0
//	        DEC R1
//	        JRNZ loop
//	        HALT
//
// Six directives are understood. .org moves the location counter, .equ
// defines a named constant, .byte and .word emit values, .fill emits a
// run of repeated bytes and .str emits a quoted string (Go escape
// sequences are honoured).
//
// Operand expressions are evaluated with starlark, so labels and equates
// can be combined arithmetically where a plain number would do:
//
//	.equ WIDTH 128
//	.equ VRAM $c000
//	LDI R1,#(VRAM + WIDTH*2)
//
// Hexadecimal values can be written either in the $ff style used by the
// disassembler or in the 0xff style starlark expects. Expressions used by
// .org, .equ and the count argument of .fill must be resolvable on the
// first pass. Everything else can refer to labels defined later in the
// source.
package assembler
