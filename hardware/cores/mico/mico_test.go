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

package mico_test

import (
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/test"
)

func newMico(t *testing.T) *mico.Mico {
	t.Helper()

	mc, err := mico.NewMico(nil)
	test.DemandSuccess(t, err)
	mc.Env.Normalise()

	return mc
}

func run(t *testing.T, mc *mico.Mico, prog []byte) {
	t.Helper()

	test.DemandSuccess(t, mc.LoadProgram(0x0000, prog))
	test.DemandSuccess(t, mc.Reset())
	test.DemandSuccess(t, mc.Run(nil))
}

func TestLoadImmediateAndHalt(t *testing.T) {
	mc := newMico(t)

	// LDI R0,#$0007 / HALT
	run(t, mc, []byte{
		mico.OpLDI, 0x00, 0x07, 0x00,
		mico.OpHALT,
	})

	test.ExpectEquality(t, mc.Regs.Value(0), 7)
	test.ExpectEquality(t, mc.State(), execution.Halted)
	test.ExpectEquality(t, mc.TMR.Cycles(), 3)
}

func TestUnmappedReadFaults(t *testing.T) {
	mc := newMico(t)

	// LD R0,[$ffff] on the default fault policy
	test.DemandSuccess(t, mc.LoadProgram(0x0000, []byte{
		mico.OpLD, 0x00, 0xff, 0xff,
	}))
	test.DemandSuccess(t, mc.Reset())

	err := mc.Run(nil)
	test.ExpectFailure(t, err)

	test.ExpectEquality(t, mc.State(), execution.Faulted)
	test.ExpectEquality(t, curated.Has(mc.Fault(), bus.MemoryFault), true)

	// the destination register is untouched. PC has advanced over the
	// faulting instruction, that happens before execution
	test.ExpectEquality(t, mc.Regs.Value(0), 0)
	test.ExpectEquality(t, mc.Regs.PC(), 0x0004)
}

func TestDivideByZero(t *testing.T) {
	mc := newMico(t)

	test.DemandSuccess(t, mc.LoadProgram(0x0000, []byte{
		mico.OpLDI, 0x00, 0x05, 0x00,
		mico.OpDIV, 0x01, // DIV R0,R1 with R1 zero
	}))
	test.DemandSuccess(t, mc.Reset())

	err := mc.Run(nil)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, mc.State(), execution.Faulted)
	test.ExpectEquality(t, curated.Has(mc.Fault(), cores.ArithmeticTrap), true)
}

func TestSoftwareBreak(t *testing.T) {
	mc := newMico(t)

	test.DemandSuccess(t, mc.LoadProgram(0x0000, []byte{
		mico.OpNOP,
		mico.OpBRK,
		mico.OpNOP,
	}))
	test.DemandSuccess(t, mc.Reset())

	test.ExpectSuccess(t, mc.Step())

	// the break runs and signals, the machine does not fault
	err := mc.Step()
	test.ExpectEquality(t, curated.Is(err, cores.SoftwareBreak), true)
	test.ExpectEquality(t, mc.State(), execution.Running)
	test.ExpectEquality(t, mc.Regs.PC(), 0x0002)
	test.ExpectEquality(t, mc.LastResult().Instruction.Opcode, mico.OpBRK)

	// and life goes on
	test.ExpectSuccess(t, mc.Step())
}

func TestCallAndReturn(t *testing.T) {
	mc := newMico(t)

	prog := make([]byte, 0x20)
	copy(prog[0x00:], []byte{
		mico.OpCALL, 0x10, 0x00,
		mico.OpHALT,
	})
	copy(prog[0x10:], []byte{
		mico.OpLDI, 0x00, 0x2a, 0x00,
		mico.OpRET,
	})

	run(t, mc, prog)

	test.ExpectEquality(t, mc.Regs.Value(0), 0x2a)
	test.ExpectEquality(t, mc.State(), execution.Halted)
	test.ExpectEquality(t, mc.Regs.SP(), mico.ResetSP)
}

func TestConsoleOutput(t *testing.T) {
	mc := newMico(t)

	run(t, mc, []byte{
		mico.OpLDI, 0x00, 'H', 0x00,
		mico.OpSTB, 0x00, 0x10, 0xf0,
		mico.OpLDI, 0x00, 'I', 0x00,
		mico.OpSTB, 0x00, 0x10, 0xf0,
		mico.OpHALT,
	})

	test.ExpectEquality(t, string(mc.Console.Contents()), "HI")
}

func TestFramebufferWrite(t *testing.T) {
	mc := newMico(t)

	// plot one pixel at the top left corner of VRAM through a register
	// indirect store
	run(t, mc, []byte{
		mico.OpLDI, 0x01, 0x00, 0xc0, // LDI R1,#$c000
		mico.OpLDI, 0x02, 0xe0, 0x00, // LDI R2,#$00e0 (red)
		mico.OpSTBX, 0x12, // STBX [R1],R2
		mico.OpHALT,
	})

	fb := mc.Framebuffer()
	test.DemandEquality(t, len(fb), mico.ScreenWidth*mico.ScreenHeight)
	test.ExpectEquality(t, fb[0], 0xe0)

	r, g, b := mico.RGB(fb[0])
	test.ExpectEquality(t, r, 255)
	test.ExpectEquality(t, g, 0)
	test.ExpectEquality(t, b, 0)
}

// the full interrupt round trip. a repeating hardware timer raises vector
// 2, the handler counts in RAM, the main loop spins until three
// interrupts have landed.
func TestTimerInterrupt(t *testing.T) {
	mc := newMico(t)

	prog := make([]byte, 0x60)

	// reset vector jumps over the vector table
	copy(prog[0x00:], []byte{mico.OpJMP, 0x20, 0x00})

	// vector 2 points at the handler
	prog[0x14] = 0x48
	prog[0x15] = 0x00

	copy(prog[0x20:], []byte{
		mico.OpLDI, 0x00, 0x64, 0x00, // LDI R0,#$0064
		mico.OpSTB, 0x00, 0x20, 0xf0, // STB [$f020],R0  period lo
		mico.OpLDI, 0x00, 0x00, 0x00, // LDI R0,#$0000
		mico.OpSTB, 0x00, 0x21, 0xf0, // STB [$f021],R0  period hi
		mico.OpLDI, 0x00, 0x23, 0x00, // LDI R0,#$0023   arm|repeat|vec2
		mico.OpSTB, 0x00, 0x22, 0xf0, // STB [$f022],R0  control
		mico.OpEI,
		// loop:
		mico.OpLD, 0x02, 0x00, 0x40, // LD R2,[$4000]
		mico.OpCMPI, 0x02, 0x03, 0x00, // CMPI R2,#$0003
		mico.OpJRNZ, 0xf6, // JRNZ loop
		mico.OpHALT,
	})

	// handler: increment the counter at $4000
	copy(prog[0x48:], []byte{
		mico.OpLD, 0x03, 0x00, 0x40,
		mico.OpINC, 0x03,
		mico.OpST, 0x03, 0x00, 0x40,
		mico.OpRETI,
	})

	run(t, mc, prog)

	test.ExpectEquality(t, mc.State(), execution.Halted)

	counter, err := mc.Mem.Peek16(0x4000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, counter, 3)

	// the stack unwound completely
	test.ExpectEquality(t, mc.Regs.SP(), mico.ResetSP)
}

// stepping the same program through two consoles must produce identical
// machines, interrupts included.
func TestMicoDeterminism(t *testing.T) {
	prog := make([]byte, 0x60)
	copy(prog[0x00:], []byte{mico.OpJMP, 0x20, 0x00})
	prog[0x14] = 0x48
	copy(prog[0x20:], []byte{
		mico.OpLDI, 0x00, 0x11, 0x00,
		mico.OpSTB, 0x00, 0x20, 0xf0,
		mico.OpLDI, 0x00, 0x23, 0x00,
		mico.OpSTB, 0x00, 0x22, 0xf0,
		mico.OpEI,
		// loop: keep some arithmetic in flight
		mico.OpINC, 0x01,
		mico.OpADD, 0x21, // ADD R2,R1
		mico.OpJR, 0xfa, // JR loop
	})
	copy(prog[0x48:], []byte{
		mico.OpINC, 0x07,
		mico.OpRETI,
	})

	exec := func() *mico.Mico {
		mc := newMico(t)
		test.DemandSuccess(t, mc.LoadProgram(0x0000, prog))
		test.DemandSuccess(t, mc.Reset())
		test.DemandSuccess(t, mc.RunForSteps(2000, nil))
		return mc
	}

	a := exec()
	b := exec()

	test.ExpectEquality(t, a.Regs.String(), b.Regs.String())
	test.ExpectEquality(t, a.TMR.Cycles(), b.TMR.Cycles())
}

func TestOpenBusPolicy(t *testing.T) {
	mc := newMico(t)

	// switch the preference and rebuild. the policy is latched at
	// machine build time
	test.DemandSuccess(t, mc.Env.Prefs.UnmappedPolicy.Set("openbus"))
	mc2, err := mico.NewMico(mc.Env.Prefs)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, mc2.LoadProgram(0x0000, []byte{
		mico.OpLDB, 0x00, 0xff, 0xff, // LDB R0,[$ffff]
		mico.OpHALT,
	}))
	test.DemandSuccess(t, mc2.Reset())

	test.ExpectSuccess(t, mc2.Run(nil))
	test.ExpectEquality(t, mc2.State(), execution.Halted)
	test.ExpectEquality(t, mc2.Regs.Value(0), uint16(bus.OpenBusValue))
}

func TestRegionTable(t *testing.T) {
	mc := newMico(t)

	regions := mc.Mem.Regions()
	test.DemandEquality(t, len(regions), 8)

	test.ExpectEquality(t, regions[0].Name, "ROM")
	test.ExpectEquality(t, regions[0].Kind, bus.ReadOnly)
	test.ExpectEquality(t, regions[2].Name, "VRAM")
	test.ExpectEquality(t, regions[3].Device.Label(), "PAD")
}

func TestSnapshotRestoresDevices(t *testing.T) {
	mc := newMico(t)

	run(t, mc, []byte{
		mico.OpLDI, 0x00, 0x42, 0x00,
		mico.OpSTB, 0x00, 0x30, 0xf0, // BEEP period lo
		mico.OpHALT,
	})

	snap := mc.Snapshot()

	// disturb the device and restore
	mc.Beep.Poke(0x00, 0x99)
	test.DemandSuccess(t, mc.Plumb(snap))

	test.ExpectEquality(t, mc.Beep.Peek(0x00), 0x42)
}
