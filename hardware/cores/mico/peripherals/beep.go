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

package peripherals

// BEEP register offsets.
const (
	BeepPeriodLo = uint16(0x00)
	BeepPeriodHi = uint16(0x01)
	BeepControl  = uint16(0x02)
)

// BeepControl bits. Volume sits in bits 4 to 7.
const (
	BeepControlGate = uint8(0x01)

	beepVolumeShift = 4
)

// Beep is the square wave beeper. The program latches a period, measured
// in machine cycles per half wave, and opens the gate. The device itself
// produces no sound, hosts read the register state through the Synth type
// and synthesise samples at whatever rate suits them.
type Beep struct {
	periodLo uint8
	periodHi uint8
	control  uint8
}

// NewBeep is the preferred method of initialisation for the Beep type.
func NewBeep() *Beep {
	return &Beep{}
}

// Period returns the latched period in machine cycles per half wave. A
// period of zero is returned as zero, the synth treats it as silence.
func (b *Beep) Period() uint16 {
	return uint16(b.periodLo) | uint16(b.periodHi)<<8
}

// Gate is true when the beeper is sounding.
func (b *Beep) Gate() bool {
	return b.control&BeepControlGate == BeepControlGate
}

// Volume returns the latched volume, 0 to 15.
func (b *Beep) Volume() uint8 {
	return b.control >> beepVolumeShift
}

// Read implements the bus.Device interface.
func (b *Beep) Read(offset uint16) (uint8, error) {
	return b.Peek(offset), nil
}

// Write implements the bus.Device interface.
func (b *Beep) Write(offset uint16, data uint8) error {
	b.Poke(offset, data)
	return nil
}

// Peek implements the bus.Device interface.
func (b *Beep) Peek(offset uint16) uint8 {
	switch offset {
	case BeepPeriodLo:
		return b.periodLo
	case BeepPeriodHi:
		return b.periodHi
	case BeepControl:
		return b.control
	}
	return 0
}

// Poke implements the bus.Device interface.
func (b *Beep) Poke(offset uint16, data uint8) {
	switch offset {
	case BeepPeriodLo:
		b.periodLo = data
	case BeepPeriodHi:
		b.periodHi = data
	case BeepControl:
		b.control = data
	}
}

// Reset implements the bus.Device interface.
func (b *Beep) Reset() {
	b.periodLo = 0
	b.periodHi = 0
	b.control = 0
}

// Label implements the bus.Device interface.
func (b *Beep) Label() string {
	return "BEEP"
}
