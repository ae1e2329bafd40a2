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

package disassembly

import (
	"fmt"
	"strings"

	"github.com/machina-emu/machina/hardware/cores"
)

// Entry is a single line of a disassembly. The formatted fields are
// filled at decode time so an Entry can be displayed without reference to
// the core that produced it.
type Entry struct {
	// the address the entry was decoded at and the number of bytes it
	// covers
	Addr   uint16
	Length uint8

	// the decoded instruction. undefined when Data is true
	Instruction cores.Instruction

	// Data is true when the byte at Addr did not decode. the entry then
	// covers exactly one byte
	Data bool

	// formatted fields
	Location string
	Address  string
	Bytecode string
	Mnemonic string
	Operand  string
	Cycles   string
}

// column widths for the formatted fields, updated as entries are added.
// the Write*() functions use them to keep output aligned.
type widths struct {
	location int
	bytecode int
	address  int
	mnemonic int
	operand  int
	cycles   int
}

func (w *widths) update(e *Entry) {
	if len(e.Location) > w.location {
		w.location = len(e.Location)
	}
	if len(e.Bytecode) > w.bytecode {
		w.bytecode = len(e.Bytecode)
	}
	if len(e.Address) > w.address {
		w.address = len(e.Address)
	}
	if len(e.Mnemonic) > w.mnemonic {
		w.mnemonic = len(e.Mnemonic)
	}
	if len(e.Operand) > w.operand {
		w.operand = len(e.Operand)
	}
	if len(e.Cycles) > w.cycles {
		w.cycles = len(e.Cycles)
	}
}

// Field identifies one part of a disassembly entry.
type Field int

// List of valid Field values.
const (
	FldLocation Field = iota
	FldAddress
	FldBytecode
	FldMnemonic
	FldOperand
	FldCycles
)

// GetField returns a field of the entry padded to the widest value of
// that field in the whole disassembly.
func (dsm *Disassembly) GetField(field Field, e *Entry) string {
	switch field {
	case FldLocation:
		return fmt.Sprintf("%-*s", dsm.widths.location, e.Location)
	case FldAddress:
		return fmt.Sprintf("%-*s", dsm.widths.address, e.Address)
	case FldBytecode:
		return fmt.Sprintf("%-*s", dsm.widths.bytecode, e.Bytecode)
	case FldMnemonic:
		return fmt.Sprintf("%-*s", dsm.widths.mnemonic, e.Mnemonic)
	case FldOperand:
		return fmt.Sprintf("%-*s", dsm.widths.operand, e.Operand)
	case FldCycles:
		return fmt.Sprintf("%-*s", dsm.widths.cycles, e.Cycles)
	}
	return ""
}

// build the formatted fields of an entry from the core's assembly
// language. the core gives us a single string, the column display wants
// the mnemonic and operand separately.
func (e *Entry) format(asm string) {
	e.Address = fmt.Sprintf("$%04x", e.Addr)

	s := strings.SplitN(asm, " ", 2)
	e.Mnemonic = s[0]
	if len(s) > 1 {
		e.Operand = s[1]
	}
}
