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

package performance

import (
	"github.com/machina-emu/machina/hardware/cores/mico"
)

// CalcSpeed takes a cycle count and a duration (in seconds) and returns
// the achieved clock rate in MHz, along with a comparison against the
// clock of the real console as a percentage.
func CalcSpeed(numCycles uint64, duration float64) (mhz float64, accuracy float64) {
	hz := float64(numCycles) / duration
	mhz = hz / 1e6
	accuracy = 100 * hz / mico.ClockHz
	return mhz, accuracy
}
