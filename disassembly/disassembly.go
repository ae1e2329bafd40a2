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

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
)

// NoDisassembly is returned when the requested range contains nothing
// that can be read.
const NoDisassembly = "disassembly: nothing to disassemble"

// Disassembly is the decoded view of a range of memory.
type Disassembly struct {
	Entries []*Entry
	widths  widths
}

// FromMachine disassembles a range of the machine's memory. Access is
// through the peek path so the machine is left exactly as it was.
func FromMachine(m *hardware.Machine, from uint16, to uint16) (*Disassembly, error) {
	return FromReader(m.Core, m.Mem.DebugReader(), from, to)
}

// FromReader disassembles the address range from to to, inclusive. The
// final instruction may run past the end of the range.
//
// Decoding stops early at the first unreadable address. An error is
// returned only if nothing at all could be decoded.
func FromReader(core cores.Core, mem bus.Reader, from uint16, to uint16) (*Disassembly, error) {
	dsm := &Disassembly{}

	addr := int(from)
	for addr <= int(to) {
		e := &Entry{Addr: uint16(addr)}

		inst, err := core.Decode(mem, uint16(addr))
		if err != nil {
			if !curated.Is(err, cores.InvalidOpcode) {
				// a memory fault. the readable range has ended
				break
			}

			// the byte does not decode so show it as data. the core
			// formats data bytes too, keeping the notation consistent
			// with its assembly dialect
			b, _ := mem.Read(uint16(addr))
			e.Data = true
			e.Length = 1
			e.Instruction = cores.Instruction{Opcode: b, Length: 1}
			e.format(core.FormatInstruction(e.Instruction, uint16(addr)))
			e.Bytecode = fmt.Sprintf("%02x", b)
		} else {
			e.Instruction = inst
			e.Length = inst.Length
			e.format(core.FormatInstruction(inst, uint16(addr)))
			e.Cycles = fmt.Sprintf("%d", inst.Cycles)

			s := strings.Builder{}
			for i := 0; i < int(inst.Length); i++ {
				if i > 0 {
					s.WriteRune(' ')
				}
				b, _ := mem.Read(uint16(addr + i))
				fmt.Fprintf(&s, "%02x", b)
			}
			e.Bytecode = s.String()
		}

		dsm.widths.update(e)
		dsm.Entries = append(dsm.Entries, e)
		addr += int(e.Length)
	}

	if len(dsm.Entries) == 0 {
		return nil, curated.Errorf(NoDisassembly)
	}

	return dsm, nil
}

// Apply the labels of an assembled program to the disassembly. A label
// whose address matches the start of an entry becomes the entry's
// location, shown on its own line by the Write functions.
func (dsm *Disassembly) Apply(symbols map[string]uint16) {
	byAddr := make(map[uint16]string, len(symbols))
	for name, addr := range symbols {
		// alphabetical tie break keeps the choice stable when two labels
		// share an address
		if prev, ok := byAddr[addr]; !ok || name < prev {
			byAddr[addr] = name
		}
	}

	for _, e := range dsm.Entries {
		if name, ok := byAddr[e.Addr]; ok {
			e.Location = name
			dsm.widths.update(e)
		}
	}
}

// FindAddress returns the entry that starts at the specified address.
func (dsm *Disassembly) FindAddress(addr uint16) (*Entry, bool) {
	for _, e := range dsm.Entries {
		if e.Addr == addr {
			return e, true
		}
	}
	return nil, false
}
