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

package digest_test

import (
	"io"
	"strings"
	"testing"

	"github.com/machina-emu/machina/digest"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/test"
)

// the program counts in R0 forever.
var counting = []byte{
	0x11, 0x00, 0x00, 0x00, // LDI R0,#0
	0x28, 0x00, // loop: INC R0
	0x41, 0xfc, // JR loop
}

// build a fresh machine and run the counting program for the given number
// of steps, returning the state digest.
func runAndDigest(t *testing.T, steps int) string {
	t.Helper()

	mc, err := mico.NewMico(nil)
	test.DemandSuccess(t, err)
	mc.Env.Normalise()

	test.DemandSuccess(t, mc.LoadProgram(0x0000, counting))
	test.DemandSuccess(t, mc.Reset())
	test.DemandSuccess(t, mc.RunForSteps(steps, nil))

	d, err := digest.State(mc.Machine)
	test.DemandSuccess(t, err)
	return d
}

func TestStateDeterminism(t *testing.T) {
	// two machines, the same program, the same number of steps. the
	// digests must agree
	test.ExpectEquality(t, runAndDigest(t, 100), runAndDigest(t, 100))

	// one step of difference is visible
	test.ExpectInequality(t, runAndDigest(t, 100), runAndDigest(t, 101))
}

func TestOutput(t *testing.T) {
	dig := digest.NewOutput()
	test.DemandImplements(t, dig, (digest.Digest)(nil))
	test.DemandImplements(t, dig, (io.Writer)(nil))

	// nothing written yet
	test.ExpectEquality(t, dig.Hash(), strings.Repeat("0", 40))

	// the hash depends on the content of the stream, not on how it was
	// chunked into writes
	other := digest.NewOutput()
	_, _ = dig.Write([]byte("hello, world"))
	_, _ = other.Write([]byte("hello"))
	_, _ = other.Write([]byte(", "))
	_, _ = other.Write([]byte("world"))
	test.ExpectEquality(t, dig.Hash(), other.Hash())

	// different content, different hash
	dig.ResetDigest()
	other.ResetDigest()
	_, _ = dig.Write([]byte("ab"))
	_, _ = other.Write([]byte("ba"))
	test.ExpectInequality(t, dig.Hash(), other.Hash())
}

func TestOutputLongStream(t *testing.T) {
	// streams longer than the internal buffer chain correctly whatever
	// the write pattern
	long := strings.Repeat("0123456789abcdef", 1024)

	dig := digest.NewOutput()
	_, _ = dig.Write([]byte(long))

	other := digest.NewOutput()
	for i := 0; i < len(long); i += 100 {
		end := i + 100
		if end > len(long) {
			end = len(long)
		}
		_, _ = other.Write([]byte(long[i:end]))
	}

	test.ExpectEquality(t, dig.Hash(), other.Hash())

	// the truncated stream does not collide with the full stream
	other.ResetDigest()
	_, _ = other.Write([]byte(long[:len(long)-1]))
	test.ExpectInequality(t, dig.Hash(), other.Hash())
}
