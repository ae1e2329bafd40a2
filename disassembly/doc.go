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

// Package disassembly turns a range of machine memory back into assembly
// language. It is used by the DISASSEMBLE command of the debugger and by
// the machina "disasm" mode.
//
// Disassembly is a pure read. Memory is accessed through the bus's peek
// path so mapped devices are never disturbed, and nothing is ever
// executed.
//
// Decoding is linear from the start of the requested range. Data bytes
// that happen to precede code will shear the instruction stream, just as
// they would in any linear disassembler. Bytes that do not decode are
// reported as data entries rather than errors so the output always
// accounts for every byte in the range.
package disassembly
