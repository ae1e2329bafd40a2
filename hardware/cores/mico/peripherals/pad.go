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

// Interrupt vectors raised by the peripherals. The timer device raises
// whatever vector the program selects, these two are fixed by the console
// design.
const (
	VectorSync = uint8(0)
	VectorPad  = uint8(1)
)

// Button is a single button on the Mico control pad.
type Button uint8

// The buttons of the Mico control pad, as bits of the PAD button register.
const (
	ButtonUp Button = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonStart
	ButtonSelect
)

// PAD register offsets.
const (
	PadButtons = uint16(0x00)
	PadControl = uint16(0x01)
)

// PadControl bits.
const (
	PadControlIRQ = uint8(0x01)
)

// Pad is the control pad device. Hosts press and release buttons with the
// Set() function, the program reads the bitmap from the button register.
// When the IRQ bit of the control register is set, a button press raises
// VectorPad.
type Pad struct {
	buttons uint8
	control uint8

	raise func(vector uint8) error
}

// NewPad is the preferred method of initialisation for the Pad type.
func NewPad(raise func(vector uint8) error) *Pad {
	return &Pad{raise: raise}
}

// Set presses or releases a button. Called by the host frontend, never by
// the emulated program.
func (p *Pad) Set(button Button, pressed bool) {
	prev := p.buttons
	if pressed {
		p.buttons |= uint8(button)
	} else {
		p.buttons &^= uint8(button)
	}

	// a press is a rising edge on any button bit
	if p.control&PadControlIRQ == PadControlIRQ && p.buttons&^prev != 0 {
		_ = p.raise(VectorPad)
	}
}

// Pressed returns the state of a single button.
func (p *Pad) Pressed(button Button) bool {
	return p.buttons&uint8(button) != 0
}

// Read implements the bus.Device interface.
func (p *Pad) Read(offset uint16) (uint8, error) {
	switch offset {
	case PadButtons:
		return p.buttons, nil
	case PadControl:
		return p.control, nil
	}
	return 0, nil
}

// Write implements the bus.Device interface. The button register belongs
// to the host, program writes to it are ignored.
func (p *Pad) Write(offset uint16, data uint8) error {
	if offset == PadControl {
		p.control = data
	}
	return nil
}

// Peek implements the bus.Device interface.
func (p *Pad) Peek(offset uint16) uint8 {
	v, _ := p.Read(offset)
	return v
}

// Poke implements the bus.Device interface.
func (p *Pad) Poke(offset uint16, data uint8) {
	switch offset {
	case PadButtons:
		p.buttons = data
	case PadControl:
		p.control = data
	}
}

// Reset implements the bus.Device interface.
func (p *Pad) Reset() {
	p.buttons = 0
	p.control = 0
}

// Label implements the bus.Device interface.
func (p *Pad) Label() string {
	return "PAD"
}
