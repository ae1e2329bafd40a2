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

package snapshot_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/snapshot"
	"github.com/machina-emu/machina/test"
)

// a program that counts in R0 forever. the machine is always mid-flight
// when a snapshot is taken.
var counting = []byte{
	0x11, 0x00, 0x00, 0x00, // LDI R0,#0
	0x28, 0x00, // loop: INC R0
	0x41, 0xfc, // JR loop
}

func newMico(t *testing.T) *mico.Mico {
	t.Helper()

	mc, err := mico.NewMico(nil)
	test.DemandSuccess(t, err)
	mc.Env.Normalise()

	test.DemandSuccess(t, mc.LoadProgram(0x0000, counting))
	test.DemandSuccess(t, mc.Reset())

	return mc
}

func TestRoundTrip(t *testing.T) {
	mc := newMico(t)

	_, err := mc.RunCycles(1000)
	test.DemandSuccess(t, err)

	saved := &bytes.Buffer{}
	test.DemandSuccess(t, snapshot.Save(mc.Machine, saved))

	wantRegs := mc.Regs.String()
	wantCycles := mc.TMR.Cycles()

	// let the machine move on before winding it back
	_, err = mc.RunCycles(1000)
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, mc.Regs.String(), wantRegs)

	test.DemandSuccess(t, snapshot.Load(mc.Machine, bytes.NewReader(saved.Bytes())))
	test.ExpectEquality(t, mc.Regs.String(), wantRegs)
	test.ExpectEquality(t, mc.TMR.Cycles(), wantCycles)

	// serialisation is canonical. saving the restored machine reproduces
	// the file byte for byte
	again := &bytes.Buffer{}
	test.DemandSuccess(t, snapshot.Save(mc.Machine, again))
	test.ExpectSuccess(t, bytes.Equal(saved.Bytes(), again.Bytes()))
}

func TestRoundTripFile(t *testing.T) {
	mc := newMico(t)

	_, err := mc.RunCycles(500)
	test.DemandSuccess(t, err)
	wantRegs := mc.Regs.String()

	filename := filepath.Join(t.TempDir(), "machine.msnp")
	test.DemandSuccess(t, snapshot.SaveFile(mc.Machine, filename))

	_, err = mc.RunCycles(500)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, snapshot.LoadFile(mc.Machine, filename))
	test.ExpectEquality(t, mc.Regs.String(), wantRegs)
}

// a failed load must leave the machine exactly as it was.
func expectUntouched(t *testing.T, mc *mico.Mico, data []byte, pattern string) {
	t.Helper()

	before := mc.Regs.String()
	beforeCycles := mc.TMR.Cycles()

	err := snapshot.Load(mc.Machine, bytes.NewReader(data))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, pattern), err)

	test.ExpectEquality(t, mc.Regs.String(), before)
	test.ExpectEquality(t, mc.TMR.Cycles(), beforeCycles)
}

func TestRejection(t *testing.T) {
	mc := newMico(t)
	_, err := mc.RunCycles(100)
	test.DemandSuccess(t, err)

	saved := &bytes.Buffer{}
	test.DemandSuccess(t, snapshot.Save(mc.Machine, saved))
	good := saved.Bytes()

	// not a snapshot at all
	expectUntouched(t, mc, []byte("not a snapshot"), snapshot.NotASnapshot)

	// a version from the future
	futures := append([]byte{}, good...)
	futures[4] = 99
	expectUntouched(t, mc, futures, snapshot.VersionMismatch)

	// truncated mid-file
	expectUntouched(t, mc, good[:len(good)/2], snapshot.Corrupt)

	// the state belongs to a different core. the core ID is a length
	// prefixed string directly after the version
	other := append([]byte{}, good...)
	other[9] = 'x'
	expectUntouched(t, mc, other, snapshot.Incompatible)
}

func TestFaultNote(t *testing.T) {
	mc := newMico(t)

	// fault the machine with a read of unmapped space
	test.DemandSuccess(t, mc.LoadProgram(0x0000, []byte{0x12, 0x00, 0xff, 0xff})) // LD R0,[$ffff]
	test.DemandSuccess(t, mc.Reset())
	_ = mc.Machine.Step()

	saved := &bytes.Buffer{}
	test.DemandSuccess(t, snapshot.Save(mc.Machine, saved))

	mc2 := newMico(t)
	test.DemandSuccess(t, snapshot.Load(mc2.Machine, bytes.NewReader(saved.Bytes())))

	test.ExpectEquality(t, mc2.State(), mc.State())
	f1 := mc.Fault()
	f2 := mc2.Fault()
	test.DemandSuccess(t, f1 != nil)
	test.DemandSuccess(t, f2 != nil)
	test.ExpectEquality(t, f2.Error(), f1.Error())
}
