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

package cores_test

import (
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/registers"
	"github.com/machina-emu/machina/test"
)

// stubCore is the minimum implementation of the Core interface.
type stubCore struct{}

func (c *stubCore) ID() string {
	return "stub"
}

func (c *stubCore) RegisterSpec() registers.Spec {
	return registers.Spec{
		Names:  []string{"PC", "SP"},
		PC:     0,
		SP:     1,
		Status: registers.NoStatus,
	}
}

func (c *stubCore) Reset(regs *registers.File) {
	regs.Reset()
}

func (c *stubCore) Decode(mem bus.Reader, address uint16) (cores.Instruction, error) {
	return cores.Instruction{Length: 1, Cycles: 1}, nil
}

func (c *stubCore) Execute(inst cores.Instruction, regs *registers.File, mem *bus.Bus) (cores.Outcome, error) {
	return cores.Outcome{Cycles: int(inst.Cycles)}, nil
}

func (c *stubCore) InterruptsEnabled(regs *registers.File) bool {
	return false
}

func (c *stubCore) ServiceInterrupt(vector uint8, regs *registers.File, mem *bus.Bus) (int, error) {
	return 0, nil
}

func (c *stubCore) FormatInstruction(inst cores.Instruction, address uint16) string {
	return "NOP"
}

func TestRegistry(t *testing.T) {
	cores.Register("stub", func() cores.Core { return &stubCore{} })

	c, err := cores.Create("stub")
	test.ExpectSuccess(t, err)
	test.DemandImplements(t, c, (cores.Core)(nil))
	test.ExpectEquality(t, c.ID(), "stub")

	_, err = cores.Create("no such core")
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, curated.Is(err, cores.UnknownCore), true)

	found := false
	for _, id := range cores.List() {
		if id == "stub" {
			found = true
		}
	}
	test.ExpectEquality(t, found, true)
}
