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

package random

import (
	"math/rand"
	"time"
)

// CycleSource provides the current cycle count of an emulated machine. The
// cycle count is the emulation's sense of time and the only sense of time the
// Rewindable() function respects.
type CycleSource interface {
	Cycles() uint64
}

// the base seed for all random numbers.
var baseSeed int64

func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Random is a random number generator that is sensitive to time within the
// emulation. Required for the rewind system and for parallel emulations.
type Random struct {
	source CycleSource

	// use a zero base seed rather than the randomised base seed. useful for
	// normalised instances where random numbers must be predictable between
	// runs
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(source CycleSource) *Random {
	return &Random{
		source: source,
	}
}

func (rnd *Random) seed() int64 {
	if rnd.ZeroSeed {
		return int64(rnd.source.Cycles())
	}
	return baseSeed + int64(rnd.source.Cycles())
}

// Rewindable returns a random number in the range 0 to limit. The number is
// deterministic with respect to the emulation's cycle counter, meaning that a
// rewound emulation asking again at the same point will receive the same
// number.
func (rnd *Random) Rewindable(limit int) int {
	return rand.New(rand.NewSource(rnd.seed())).Intn(limit)
}

// NoRewind returns a random number in the range 0 to limit with no reference
// to the emulation's sense of time. Two calls at the same emulation point
// will very probably return different numbers.
func (rnd *Random) NoRewind(limit int) int {
	if rnd.ZeroSeed {
		return rand.New(rand.NewSource(0)).Intn(limit)
	}
	return rand.New(rand.NewSource(baseSeed + int64(time.Now().Nanosecond()))).Intn(limit)
}
