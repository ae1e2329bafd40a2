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

// Package mico implements the Mico, a 16-bit fantasy console. The Mico is
// the reference target of the emulation engine, every feature of the
// engine is exercised by it somewhere.
//
// The machine is built around a 2MHz processor with eight general purpose
// 16-bit registers, running a small load/store instruction set with fixed
// cycle costs. Words in memory are little-endian.
//
// Memory map:
//
//	0x0000 -> 0x3fff   ROM      program and vector table
//	0x4000 -> 0xbfff   RAM      includes the stack, SP resets to 0xbff0
//	0xc000 -> 0xefff   VRAM     128x96 framebuffer, one RGB-332 byte per pixel
//	0xf000 -> 0xf04f   IO       PAD, CONSOLE, TIMER, BEEP and SYNC devices
//	0xf100 -> 0xffff   unmapped
//
// The interrupt vector table lives at 0x0010, two bytes per vector, eight
// vectors. Servicing an interrupt pushes PC then STATUS, clears the I
// flag and jumps through the table. RETI pops STATUS then PC.
//
// The console device registers are documented in the peripherals package.
// The assembler for the instruction set is in the assembler package.
package mico
