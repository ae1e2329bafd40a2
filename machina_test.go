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

package main_test

import (
	"testing"

	"github.com/machina-emu/machina/hardware/cores/mico"
)

// an endless counting loop. the benchmarks measure the machine without
// any host in the way.
//
//	LDI R0,#0
//	INC R0
//	JR  -4
var counting = []byte{
	0x11, 0x00, 0x00, 0x00,
	0x28, 0x00,
	0x41, 0xfc,
}

func newBenchMachine(b *testing.B) *mico.Mico {
	b.Helper()

	mc, err := mico.NewMico(nil)
	if err != nil {
		b.Fatal(err)
	}
	if err := mc.Reset(); err != nil {
		b.Fatal(err)
	}
	if err := mc.LoadProgram(mico.OriginROM, counting); err != nil {
		b.Fatal(err)
	}

	return mc
}

func BenchmarkStep(b *testing.B) {
	mc := newBenchMachine(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := mc.Step(); err != nil {
			b.Fatal(err)
		}
	}
}

// one iteration is one frame's worth of cycles, the unit of work the
// frontends ask for.
func BenchmarkRunCycles(b *testing.B) {
	mc := newBenchMachine(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := mc.RunCycles(mico.CyclesPerFrame); err != nil {
			b.Fatal(err)
		}
	}
}
