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

package registers_test

import (
	"testing"

	"github.com/machina-emu/machina/hardware/registers"
	"github.com/machina-emu/machina/test"
)

func testSpec() registers.Spec {
	return registers.Spec{
		Names:  []string{"R0", "R1", "PC", "SP", "STATUS"},
		PC:     2,
		SP:     3,
		Status: 4,
	}
}

func TestSpecValidation(t *testing.T) {
	test.ExpectSuccess(t, testSpec().Validate())

	spec := testSpec()
	spec.PC = 99
	test.ExpectFailure(t, spec.Validate())

	spec = testSpec()
	spec.Status = registers.NoStatus
	test.ExpectSuccess(t, spec.Validate())

	test.ExpectFailure(t, registers.Spec{}.Validate())
}

func TestFile(t *testing.T) {
	f := registers.NewFile(testSpec())

	f.SetValue(0, 0x1234)
	test.ExpectEquality(t, f.Value(0), 0x1234)

	f.SetPC(0xbeef)
	test.ExpectEquality(t, f.PC(), 0xbeef)
	test.ExpectEquality(t, f.Value(2), 0xbeef)

	f.SetSP(0xbff0)
	test.ExpectEquality(t, f.SP(), 0xbff0)

	f.SetStatus(0x0003)
	test.ExpectEquality(t, f.Status(), 0x0003)

	f.Reset()
	test.ExpectEquality(t, f.PC(), 0)
	test.ExpectEquality(t, f.Value(0), 0)
}

func TestLookup(t *testing.T) {
	f := registers.NewFile(testSpec())

	idx, ok := f.Lookup("r1")
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, idx, 1)

	idx, ok = f.Lookup("STATUS")
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, idx, 4)

	_, ok = f.Lookup("R9")
	test.ExpectEquality(t, ok, false)
}

func TestNoStatus(t *testing.T) {
	spec := testSpec()
	spec.Status = registers.NoStatus
	f := registers.NewFile(spec)

	// status access on a core without a status register is a no-op
	f.SetStatus(0xffff)
	test.ExpectEquality(t, f.Status(), 0)
}

func TestSnapshot(t *testing.T) {
	f := registers.NewFile(testSpec())
	f.SetPC(0x0100)
	f.SetValue(0, 0x0007)

	snap := f.Snapshot()

	f.SetPC(0x0200)
	f.SetValue(0, 0x0000)
	test.ExpectEquality(t, snap.PC(), 0x0100)

	test.ExpectSuccess(t, f.Plumb(snap))
	test.ExpectEquality(t, f.PC(), 0x0100)
	test.ExpectEquality(t, f.Value(0), 0x0007)
}
