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

// SYNC register offsets.
const (
	SyncFrameLo = uint16(0x00)
	SyncFrameHi = uint16(0x01)
	SyncControl = uint16(0x02)
)

// SyncControl bits.
const (
	SyncControlIRQ = uint8(0x01)
)

// Sync is the frame sync device. The host increments the frame counter
// once per displayed frame, giving the program a clock it can busy-wait
// on. With the IRQ bit of the control register set, each frame also
// raises VectorSync, the vertical blank interrupt of the console.
type Sync struct {
	frames  uint16
	control uint8

	raise func(vector uint8) error
}

// NewSync is the preferred method of initialisation for the Sync type.
func NewSync(raise func(vector uint8) error) *Sync {
	return &Sync{raise: raise}
}

// Frame advances the frame counter. Called by the host frontend once per
// displayed frame.
func (s *Sync) Frame() {
	s.frames++
	if s.control&SyncControlIRQ == SyncControlIRQ {
		_ = s.raise(VectorSync)
	}
}

// Frames returns the current frame counter.
func (s *Sync) Frames() uint16 {
	return s.frames
}

// Read implements the bus.Device interface.
func (s *Sync) Read(offset uint16) (uint8, error) {
	return s.Peek(offset), nil
}

// Write implements the bus.Device interface. The frame counter belongs to
// the host, program writes to it are ignored.
func (s *Sync) Write(offset uint16, data uint8) error {
	if offset == SyncControl {
		s.control = data
	}
	return nil
}

// Peek implements the bus.Device interface.
func (s *Sync) Peek(offset uint16) uint8 {
	switch offset {
	case SyncFrameLo:
		return uint8(s.frames)
	case SyncFrameHi:
		return uint8(s.frames >> 8)
	case SyncControl:
		return s.control
	}
	return 0
}

// Poke implements the bus.Device interface.
func (s *Sync) Poke(offset uint16, data uint8) {
	switch offset {
	case SyncFrameLo:
		s.frames = (s.frames & 0xff00) | uint16(data)
	case SyncFrameHi:
		s.frames = (s.frames & 0x00ff) | uint16(data)<<8
	case SyncControl:
		s.control = data
	}
}

// Reset implements the bus.Device interface.
func (s *Sync) Reset() {
	s.frames = 0
	s.control = 0
}

// Label implements the bus.Device interface.
func (s *Sync) Label() string {
	return "SYNC"
}
