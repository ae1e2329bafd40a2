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

package playmode

import (
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"
)

// buttonForKey maps a keyboard character onto a pad button. wasd for the
// directions, n and m for the B and A buttons, j and k for start and
// select. the false return means the key is not part of the map.
func buttonForKey(k byte) (peripherals.Button, bool) {
	switch k {
	case 'w':
		return peripherals.ButtonUp, true
	case 's':
		return peripherals.ButtonDown, true
	case 'a':
		return peripherals.ButtonLeft, true
	case 'd':
		return peripherals.ButtonRight, true
	case 'n':
		return peripherals.ButtonB, true
	case 'm':
		return peripherals.ButtonA, true
	case 'j':
		return peripherals.ButtonStart, true
	case 'k':
		return peripherals.ButtonSelect, true
	}

	return 0, false
}
