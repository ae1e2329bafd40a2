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
	"io"
	"strings"
)

// WriteAttr controls what the Write functions include on each line.
type WriteAttr struct {
	ByteCode bool
}

// Write the entire disassembly to output.
func (dsm *Disassembly) Write(output io.Writer, attr WriteAttr) error {
	for _, e := range dsm.Entries {
		if err := dsm.WriteEntry(output, attr, e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEntry writes a single entry to output. Columns are padded to the
// widths of the whole disassembly so consecutive entries line up.
func (dsm *Disassembly) WriteEntry(output io.Writer, attr WriteAttr, e *Entry) error {
	s := strings.Builder{}

	if e.Location != "" {
		s.WriteString(e.Location)
		s.WriteString(":\n")
	}

	s.WriteString(dsm.GetField(FldAddress, e))
	s.WriteString("  ")

	if attr.ByteCode {
		s.WriteString(dsm.GetField(FldBytecode, e))
		s.WriteString("  ")
	}

	s.WriteString(dsm.GetField(FldMnemonic, e))
	s.WriteString(" ")
	s.WriteString(dsm.GetField(FldOperand, e))
	s.WriteString("  ")
	s.WriteString(dsm.GetField(FldCycles, e))

	_, err := io.WriteString(output, strings.TrimRight(s.String(), " ")+"\n")
	return err
}
