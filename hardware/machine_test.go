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

package hardware_test

import (
	"fmt"
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/environment"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/hardware/registers"
	"github.com/machina-emu/machina/hardware/timers"
	"github.com/machina-emu/machina/test"
)

// testCore is a deliberately small processor. enough instructions to drive
// the machine through every state transition without the weight of a real
// instruction set.
type testCore struct{}

const (
	opNOP  = 0x00 // 1 cycle
	opINC  = 0x01 // R0++, 1 cycle
	opHALT = 0x02 // 1 cycle
	opLDA  = 0x03 // R0 = 8-bit read of operand address, 3 cycles
	opSTA  = 0x04 // 8-bit write of R0 to operand address, 3 cycles
	opJMP  = 0x05 // PC = operand address, 2 cycles
)

func (c *testCore) ID() string {
	return "testcore"
}

func (c *testCore) RegisterSpec() registers.Spec {
	return registers.Spec{
		Names:  []string{"R0", "PC", "SP"},
		PC:     1,
		SP:     2,
		Status: registers.NoStatus,
	}
}

func (c *testCore) Reset(regs *registers.File) {
	regs.Reset()
	regs.SetSP(0x1ff0)
}

func (c *testCore) Decode(mem bus.Reader, address uint16) (cores.Instruction, error) {
	opcode, err := mem.Read(address)
	if err != nil {
		return cores.Instruction{}, err
	}

	inst := cores.Instruction{Opcode: opcode, Length: 1, Cycles: 1}

	switch opcode {
	case opNOP, opINC, opHALT:
	case opLDA, opSTA, opJMP:
		inst.Operands[0], err = mem.Read16(address + 1)
		if err != nil {
			return cores.Instruction{}, err
		}
		inst.Length = 3
		inst.Cycles = 3
		if opcode == opJMP {
			inst.Cycles = 2
		}
	default:
		return cores.Instruction{}, curated.Errorf(cores.InvalidOpcode, opcode, address)
	}

	return inst, nil
}

func (c *testCore) Execute(inst cores.Instruction, regs *registers.File, mem *bus.Bus) (cores.Outcome, error) {
	out := cores.Outcome{Cycles: int(inst.Cycles)}

	switch inst.Opcode {
	case opNOP:
	case opINC:
		regs.SetValue(0, regs.Value(0)+1)
	case opHALT:
		out.Halted = true
	case opLDA:
		v, err := mem.Read(inst.Operands[0])
		if err != nil {
			return cores.Outcome{}, err
		}
		regs.SetValue(0, uint16(v))
	case opSTA:
		if err := mem.Write(inst.Operands[0], uint8(regs.Value(0))); err != nil {
			return cores.Outcome{}, err
		}
	case opJMP:
		regs.SetPC(inst.Operands[0])
	}

	return out, nil
}

func (c *testCore) InterruptsEnabled(regs *registers.File) bool {
	return true
}

func (c *testCore) ServiceInterrupt(vector uint8, regs *registers.File, mem *bus.Bus) (int, error) {
	regs.SetPC(0x0100 + uint16(vector)*0x10)
	return 4, nil
}

func (c *testCore) FormatInstruction(inst cores.Instruction, address uint16) string {
	return fmt.Sprintf("op %02x", inst.Opcode)
}

func newTestMachine(t *testing.T) *hardware.Machine {
	t.Helper()

	tmr := timers.NewTimers(2, 8, 4)

	env, err := environment.NewEnvironment(tmr, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	mem := bus.NewBus(bus.Fault)
	test.DemandSuccess(t, mem.AddRegion("ROM", 0x0000, 0x0fff, bus.ReadOnly))
	test.DemandSuccess(t, mem.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))

	m, err := hardware.NewMachine(env, &testCore{}, mem, tmr)
	test.DemandSuccess(t, err)

	return m
}

func TestNotRunnable(t *testing.T) {
	m := newTestMachine(t)

	// stepping before the first reset is an error
	err := m.Step()
	test.ExpectEquality(t, curated.Is(err, hardware.NotRunnable), true)

	test.ExpectSuccess(t, m.Reset())
	test.ExpectEquality(t, m.State(), execution.Running)
}

func TestStepAndHalt(t *testing.T) {
	m := newTestMachine(t)

	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opNOP, opINC, opINC, opHALT}))
	test.DemandSuccess(t, m.Reset())

	for i := 0; i < 4; i++ {
		test.ExpectSuccess(t, m.Step())
	}

	test.ExpectEquality(t, m.Regs.Value(0), 2)
	test.ExpectEquality(t, m.State(), execution.Halted)
	test.ExpectEquality(t, m.TMR.Cycles(), 4)

	// a halted machine cannot be stepped any further
	err := m.Step()
	test.ExpectEquality(t, curated.Is(err, hardware.NotRunnable), true)
}

func TestMemoryFault(t *testing.T) {
	m := newTestMachine(t)

	// LDA from an unmapped address faults the machine
	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opNOP, opLDA, 0xff, 0xff}))
	test.DemandSuccess(t, m.Reset())

	test.ExpectSuccess(t, m.Step())
	err := m.Step()
	test.ExpectFailure(t, err)

	test.ExpectEquality(t, m.State(), execution.Faulted)
	test.ExpectEquality(t, curated.Has(m.Fault(), bus.MemoryFault), true)

	// the faulted step cost no cycles
	test.ExpectEquality(t, m.TMR.Cycles(), 1)

	err = m.Step()
	test.ExpectEquality(t, curated.Is(err, hardware.NotRunnable), true)
}

func TestInvalidOpcode(t *testing.T) {
	m := newTestMachine(t)

	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{0xea}))
	test.DemandSuccess(t, m.Reset())

	err := m.Step()
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, m.State(), execution.Faulted)
	test.ExpectEquality(t, curated.Has(m.Fault(), cores.InvalidOpcode), true)
}

func TestBreakpointCheck(t *testing.T) {
	m := newTestMachine(t)

	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opINC, opINC, opHALT}))
	test.DemandSuccess(t, m.Reset())

	m.SetBreakpointCheck(func(address uint16) bool {
		return address == 0x0001
	})

	err := m.Run(nil)
	test.ExpectEquality(t, curated.Is(err, hardware.Breakpoint), true)

	// the machine halts before the instruction at the breakpoint runs
	test.ExpectEquality(t, m.Regs.PC(), 0x0001)
	test.ExpectEquality(t, m.Regs.Value(0), 1)
	test.ExpectEquality(t, m.State(), execution.Running)

	// StepInstruction ignores the breakpoint
	test.ExpectSuccess(t, m.StepInstruction())
	test.ExpectEquality(t, m.Regs.Value(0), 2)
}

func TestInterruptService(t *testing.T) {
	m := newTestMachine(t)

	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opNOP, opNOP}))
	test.DemandSuccess(t, m.Reset())

	test.DemandSuccess(t, m.TMR.Raise(3))
	test.DemandSuccess(t, m.TMR.Raise(5))

	// the first step services the oldest raised vector and runs no
	// instruction
	test.ExpectSuccess(t, m.Step())
	test.ExpectEquality(t, m.Regs.PC(), 0x0130)
	test.ExpectEquality(t, m.LastResult().Interrupt, true)
	test.ExpectEquality(t, m.LastResult().Vector, 3)
	test.ExpectEquality(t, m.TMR.Cycles(), 4)

	// the second raised vector is serviced on the next step, in raise
	// order
	test.ExpectSuccess(t, m.Step())
	test.ExpectEquality(t, m.Regs.PC(), 0x0150)
	test.ExpectEquality(t, m.LastResult().Vector, 5)
}

func TestRunCycles(t *testing.T) {
	m := newTestMachine(t)

	// an endless loop of INC instructions
	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opINC, opJMP, 0x00, 0x00}))
	test.DemandSuccess(t, m.Reset())

	consumed, err := m.RunCycles(100)
	test.ExpectSuccess(t, err)
	if consumed < 100 {
		t.Errorf("RunCycles() consumed %d cycles of a budget of 100", consumed)
	}
	test.ExpectEquality(t, uint64(consumed), m.TMR.Cycles())
}

func TestLoadProgram(t *testing.T) {
	m := newTestMachine(t)

	err := m.LoadProgram(0xfffe, []byte{0x00, 0x00, 0x00, 0x00})
	test.ExpectEquality(t, curated.Is(err, hardware.LoadOutOfBounds), true)

	// loading into unmapped memory fails with a memory fault
	err = m.LoadProgram(0x8000, []byte{0x00})
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, curated.Has(err, bus.MemoryFault), true)
}

func TestDeterminism(t *testing.T) {
	run := func() *hardware.Machine {
		m := newTestMachine(t)
		test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opINC, opSTA, 0x00, 0x10, opJMP, 0x00, 0x00}))
		test.DemandSuccess(t, m.Reset())
		test.DemandSuccess(t, m.TMR.Arm(0, 2, 17, true))
		test.DemandSuccess(t, m.RunForSteps(500, nil))
		return m
	}

	a := run()
	b := run()

	test.ExpectEquality(t, a.Regs.String(), b.Regs.String())
	test.ExpectEquality(t, a.TMR.Cycles(), b.TMR.Cycles())

	v1, _ := a.Mem.Peek(0x1000)
	v2, _ := b.Mem.Peek(0x1000)
	test.ExpectEquality(t, v1, v2)
}

func TestSnapshotDeterminism(t *testing.T) {
	m := newTestMachine(t)
	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opINC, opSTA, 0x00, 0x10, opJMP, 0x00, 0x00}))
	test.DemandSuccess(t, m.Reset())

	test.DemandSuccess(t, m.RunForSteps(100, nil))
	snap := m.Snapshot()

	test.DemandSuccess(t, m.RunForSteps(100, nil))
	after := m.Regs.String()
	afterCycles := m.TMR.Cycles()

	// plumbing the snapshot back and re-running the same number of steps
	// must land on the same state
	test.DemandSuccess(t, m.Plumb(snap))
	test.DemandSuccess(t, m.RunForSteps(100, nil))

	test.ExpectEquality(t, m.Regs.String(), after)
	test.ExpectEquality(t, m.TMR.Cycles(), afterCycles)
}

func TestPause(t *testing.T) {
	m := newTestMachine(t)
	test.DemandSuccess(t, m.LoadProgram(0x0000, []byte{opINC, opJMP, 0x00, 0x00}))
	test.DemandSuccess(t, m.Reset())

	m.SetPaused(true)
	test.ExpectEquality(t, m.State(), execution.Paused)

	// a paused machine can still be stepped by hand
	test.ExpectSuccess(t, m.StepInstruction())

	m.SetPaused(false)
	test.ExpectEquality(t, m.State(), execution.Running)
}
