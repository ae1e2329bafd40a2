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

// Package bus implements the memory bus of an emulated machine.
//
// The address space is a flat 16-bit space of byte cells, divided into
// regions. A region is either backed by plain memory (ReadOnly and ReadWrite
// regions) or by a Device implementation (MappedIO regions). Regions never
// overlap and there is no requirement for the address space to be fully
// mapped.
//
// Access to an unmapped address is governed by the bus policy. Under the
// Fault policy the access is a memory fault. Under the OpenBus policy reads
// return the OpenBusValue and writes are dropped.
//
// Multi-byte accesses are bound by the region of the first byte: the access
// must fit entirely inside that region or it is a memory fault. If the first
// byte is unmapped the whole access is governed by the bus policy.
//
// The Read() and Write() functions are the normal access path and can have
// side effects in MappedIO regions. The Peek() and Poke() functions are for
// debuggers: they never trigger side effects and a Poke() is allowed to
// alter ReadOnly regions. Patch() is the Poke() path used when loading
// programs.
package bus
