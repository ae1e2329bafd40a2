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

// TIMER register offsets.
const (
	TimerPeriodLo = uint16(0x00)
	TimerPeriodHi = uint16(0x01)
	TimerControl  = uint16(0x02)
	TimerStatus   = uint16(0x03)
)

// TimerControl bits. The vector the timer raises on expiry sits in bits 4
// to 6 of the control register.
const (
	TimerControlArm    = uint8(0x01)
	TimerControlRepeat = uint8(0x02)

	timerVectorShift = 4
	timerVectorMask  = uint8(0x70)
)

// TimerStatus bits.
const (
	TimerStatusArmed = uint8(0x01)
)

// Timer is the programmable interval timer device. It is a register level
// frontend to one slot of the engine's timer subsystem. Writing the
// control register with the arm bit set starts the countdown with the
// currently latched period.
//
// A period of zero counts as 0x10000 cycles, the longest interval the two
// period registers can express.
type Timer struct {
	periodLo uint8
	periodHi uint8
	control  uint8

	arm    func(vector uint8, interval uint64, repeat bool) error
	disarm func() error
	armed  func() bool
}

// NewTimer is the preferred method of initialisation for the Timer type.
// The three functions bind the device to a slot of the timer subsystem.
func NewTimer(arm func(vector uint8, interval uint64, repeat bool) error,
	disarm func() error, armed func() bool) *Timer {
	return &Timer{
		arm:    arm,
		disarm: disarm,
		armed:  armed,
	}
}

func (t *Timer) interval() uint64 {
	iv := uint64(t.periodLo) | uint64(t.periodHi)<<8
	if iv == 0 {
		iv = 0x10000
	}
	return iv
}

// Read implements the bus.Device interface.
func (t *Timer) Read(offset uint16) (uint8, error) {
	switch offset {
	case TimerPeriodLo:
		return t.periodLo, nil
	case TimerPeriodHi:
		return t.periodHi, nil
	case TimerControl:
		return t.control, nil
	case TimerStatus:
		if t.armed() {
			return TimerStatusArmed, nil
		}
		return 0, nil
	}
	return 0, nil
}

// Write implements the bus.Device interface.
func (t *Timer) Write(offset uint16, data uint8) error {
	switch offset {
	case TimerPeriodLo:
		t.periodLo = data
	case TimerPeriodHi:
		t.periodHi = data
	case TimerControl:
		t.control = data
		vector := (data & timerVectorMask) >> timerVectorShift
		if data&TimerControlArm == TimerControlArm {
			_ = t.arm(vector, t.interval(), data&TimerControlRepeat == TimerControlRepeat)
		} else {
			_ = t.disarm()
		}
	}
	return nil
}

// Peek implements the bus.Device interface.
func (t *Timer) Peek(offset uint16) uint8 {
	switch offset {
	case TimerPeriodLo:
		return t.periodLo
	case TimerPeriodHi:
		return t.periodHi
	case TimerControl:
		return t.control
	}
	return 0
}

// Poke implements the bus.Device interface. Poking the control register
// latches the value without arming or disarming anything, the engine side
// of the timer has its own snapshot path.
func (t *Timer) Poke(offset uint16, data uint8) {
	switch offset {
	case TimerPeriodLo:
		t.periodLo = data
	case TimerPeriodHi:
		t.periodHi = data
	case TimerControl:
		t.control = data
	}
}

// Reset implements the bus.Device interface.
func (t *Timer) Reset() {
	t.periodLo = 0
	t.periodHi = 0
	t.control = 0
}

// Label implements the bus.Device interface.
func (t *Timer) Label() string {
	return "TIMER"
}
