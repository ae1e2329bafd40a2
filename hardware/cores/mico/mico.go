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

package mico

import (
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/registers"
)

// ID is the name the core registers itself under.
const ID = "mico"

// The clock and display timing of the console.
const (
	ClockHz         = 2000000
	FramesPerSecond = 60
	CyclesPerFrame  = ClockHz / FramesPerSecond
)

// The dimensions of the framebuffer. One byte per pixel, RGB-332.
const (
	ScreenWidth  = 128
	ScreenHeight = 96
)

// The memory map of the console.
const (
	OriginROM  = uint16(0x0000)
	MemtopROM  = uint16(0x3fff)
	OriginRAM  = uint16(0x4000)
	MemtopRAM  = uint16(0xbfff)
	OriginVRAM = uint16(0xc000)
	MemtopVRAM = uint16(0xefff)

	OriginPad     = uint16(0xf000)
	OriginConsole = uint16(0xf010)
	OriginTimer   = uint16(0xf020)
	OriginBeep    = uint16(0xf030)
	OriginSync    = uint16(0xf040)

	// each IO device occupies sixteen bytes
	ioDeviceSize = uint16(0x0010)
)

// The interrupt system of the console.
const (
	VectorTable         = uint16(0x0010)
	NumVectors          = 8
	NumTimerSlots       = 4
	InterruptQueueLimit = 8

	// cycle cost of transferring control to an interrupt handler
	InterruptCycles = 8
)

// Reset values of the well known registers.
const (
	ResetPC = uint16(0x0000)
	ResetSP = uint16(0xbff0)
)

// The bits of the STATUS register.
const (
	FlagZ = uint16(0x0001)
	FlagN = uint16(0x0002)
	FlagC = uint16(0x0004)
	FlagV = uint16(0x0008)
	FlagI = uint16(0x0010)
)

// NumRegisters is the number of general purpose registers, R0 to R7.
const NumRegisters = 8

func init() {
	cores.Register(ID, func() cores.Core { return &Core{} })
}

// Core implements the cores.Core interface for the Mico processor. The
// type holds no state of its own, every mutable part of the machine lives
// in the register file and on the bus.
type Core struct{}

// ID implements the cores.Core interface.
func (c *Core) ID() string {
	return ID
}

// RegisterSpec implements the cores.Core interface.
func (c *Core) RegisterSpec() registers.Spec {
	return registers.Spec{
		Names:  []string{"R0", "R1", "R2", "R3", "R4", "R5", "R6", "R7", "PC", "SP", "STATUS"},
		PC:     8,
		SP:     9,
		Status: 10,
	}
}

// Reset implements the cores.Core interface.
func (c *Core) Reset(regs *registers.File) {
	regs.Reset()
	regs.SetPC(ResetPC)
	regs.SetSP(ResetSP)
}

// InterruptsEnabled implements the cores.Core interface. Interrupts are
// accepted while the I flag is set. The flag is clear at reset, programs
// opt in with the EI instruction.
func (c *Core) InterruptsEnabled(regs *registers.File) bool {
	return regs.Status()&FlagI == FlagI
}

// ServiceInterrupt implements the cores.Core interface.
func (c *Core) ServiceInterrupt(vector uint8, regs *registers.File, mem *bus.Bus) (int, error) {
	if err := push16(regs, mem, regs.PC()); err != nil {
		return 0, err
	}
	if err := push16(regs, mem, regs.Status()); err != nil {
		return 0, err
	}
	regs.SetStatus(regs.Status() &^ FlagI)

	handler, err := mem.Read16(VectorTable + 2*uint16(vector))
	if err != nil {
		return 0, err
	}
	regs.SetPC(handler)

	return InterruptCycles, nil
}
