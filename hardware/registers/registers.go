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

// Package registers implements the register file of an emulated machine.
// The registers a machine has are not fixed by this package, they are
// described by a Spec provided by the processor core. The well known
// registers (program counter, stack pointer, status) are identified by
// index in the Spec so that machine-agnostic tools can find them without
// knowing their names.
package registers

import (
	"fmt"
	"strings"

	"github.com/machina-emu/machina/curated"
)

// NoStatus is the value of Spec.Status for cores without a status register.
const NoStatus = -1

// Spec describes the register file of a processor core. The order of the
// Names field defines the register indices used everywhere else.
type Spec struct {
	Names []string

	// indices into Names of the well known registers. Status may be
	// NoStatus if the core has no status register.
	PC     int
	SP     int
	Status int
}

// Validate checks the spec for internal consistency.
func (spec Spec) Validate() error {
	if len(spec.Names) == 0 {
		return curated.Errorf("registers: spec has no registers")
	}
	if spec.PC < 0 || spec.PC >= len(spec.Names) {
		return curated.Errorf("registers: spec: PC index out of range (%d)", spec.PC)
	}
	if spec.SP < 0 || spec.SP >= len(spec.Names) {
		return curated.Errorf("registers: spec: SP index out of range (%d)", spec.SP)
	}
	if spec.Status != NoStatus && (spec.Status < 0 || spec.Status >= len(spec.Names)) {
		return curated.Errorf("registers: spec: status index out of range (%d)", spec.Status)
	}
	return nil
}

// File is a register file laid out according to a Spec. All registers are
// 16-bit values.
type File struct {
	spec Spec
	vals []uint16
}

// NewFile is the preferred method of initialisation for the File type. The
// spec must have passed Validate().
func NewFile(spec Spec) *File {
	return &File{
		spec: spec,
		vals: make([]uint16, len(spec.Names)),
	}
}

// Spec returns the spec the file was created with.
func (f *File) Spec() Spec {
	return f.spec
}

// Len returns the number of registers in the file.
func (f *File) Len() int {
	return len(f.vals)
}

// Name returns the canonical name of the register at idx.
func (f *File) Name(idx int) string {
	return f.spec.Names[idx]
}

// Value returns the content of the register at idx.
func (f *File) Value(idx int) uint16 {
	return f.vals[idx]
}

// SetValue writes the register at idx.
func (f *File) SetValue(idx int, val uint16) {
	f.vals[idx] = val
}

// Lookup finds a register index by name. The comparison is case
// insensitive.
func (f *File) Lookup(name string) (int, bool) {
	for i, n := range f.spec.Names {
		if strings.EqualFold(n, name) {
			return i, true
		}
	}
	return 0, false
}

// PC returns the program counter.
func (f *File) PC() uint16 {
	return f.vals[f.spec.PC]
}

// SetPC writes the program counter.
func (f *File) SetPC(val uint16) {
	f.vals[f.spec.PC] = val
}

// SP returns the stack pointer.
func (f *File) SP() uint16 {
	return f.vals[f.spec.SP]
}

// SetSP writes the stack pointer.
func (f *File) SetSP(val uint16) {
	f.vals[f.spec.SP] = val
}

// Status returns the status register, or zero if the core has none.
func (f *File) Status() uint16 {
	if f.spec.Status == NoStatus {
		return 0
	}
	return f.vals[f.spec.Status]
}

// SetStatus writes the status register. It is a no-op if the core has none.
func (f *File) SetStatus(val uint16) {
	if f.spec.Status == NoStatus {
		return
	}
	f.vals[f.spec.Status] = val
}

// Reset zeroes every register in the file.
func (f *File) Reset() {
	for i := range f.vals {
		f.vals[i] = 0
	}
}

func (f *File) String() string {
	s := strings.Builder{}
	for i, n := range f.spec.Names {
		if i > 0 {
			s.WriteString(" ")
		}
		s.WriteString(fmt.Sprintf("%s=%04x", n, f.vals[i]))
	}
	return s.String()
}

// Snapshot makes a deep copy of the register file.
func (f *File) Snapshot() *File {
	n := &File{
		spec: f.spec,
		vals: make([]uint16, len(f.vals)),
	}
	copy(n.vals, f.vals)
	return n
}

// Plumb restores the file to the state captured by a previous Snapshot.
func (f *File) Plumb(from *File) error {
	if len(from.vals) != len(f.vals) {
		return curated.Errorf("registers: plumb: register files differ")
	}
	copy(f.vals, from.vals)
	return nil
}
