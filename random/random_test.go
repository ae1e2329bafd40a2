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

package random_test

import (
	"testing"

	"github.com/machina-emu/machina/random"
	"github.com/machina-emu/machina/test"
)

type cycles struct {
	count uint64
}

func (c *cycles) Cycles() uint64 {
	return c.count
}

func TestRandom(t *testing.T) {
	a := random.NewRandom(&cycles{count: 1000})
	b := random.NewRandom(&cycles{count: 1000})
	a.ZeroSeed = true
	b.ZeroSeed = true

	// the same emulation point gives the same numbers
	for i := 1; i < 256; i++ {
		test.ExpectEquality(t, a.Rewindable(i), b.Rewindable(i))
	}
}

func TestRandomAdvance(t *testing.T) {
	c := &cycles{count: 1000}
	a := random.NewRandom(c)
	a.ZeroSeed = true

	before := a.Rewindable(1000000)

	// the generator follows the cycle source
	c.count = 2000
	after := a.Rewindable(1000000)
	test.ExpectInequality(t, before, after)

	// rewinding the emulation restores the sequence
	c.count = 1000
	test.ExpectEquality(t, a.Rewindable(1000000), before)
}
