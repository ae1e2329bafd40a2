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

import (
	"io"
)

// CONSOLE register offsets.
const (
	ConsoleData   = uint16(0x00)
	ConsoleStatus = uint16(0x01)
)

// the console transmit register is always ready.
const consoleReady = uint8(0x01)

// number of output bytes the console retains for inspection.
const consoleRetain = 4096

// Console is the debug output device. Bytes written to the data register
// are retained in a ring for later inspection and optionally echoed to an
// io.Writer. The hello-world of the Mico is a loop of writes to this
// device.
type Console struct {
	// ring of the most recent output. start marks the oldest byte once
	// the ring has wrapped
	retained []byte
	start    int
	wrapped  bool

	// last value written to the data register. what Peek() sees
	last uint8

	echo io.Writer
}

// NewConsole is the preferred method of initialisation for the Console
// type.
func NewConsole() *Console {
	return &Console{
		retained: make([]byte, 0, consoleRetain),
	}
}

// SetEcho attaches a writer that receives every byte as it is written. A
// nil writer detaches.
func (c *Console) SetEcho(echo io.Writer) {
	c.echo = echo
}

// Contents returns the retained output, oldest byte first.
func (c *Console) Contents() []byte {
	if !c.wrapped {
		return append([]byte{}, c.retained...)
	}
	r := make([]byte, 0, len(c.retained))
	r = append(r, c.retained[c.start:]...)
	r = append(r, c.retained[:c.start]...)
	return r
}

func (c *Console) put(data uint8) {
	c.last = data
	if len(c.retained) < consoleRetain {
		c.retained = append(c.retained, data)
	} else {
		c.retained[c.start] = data
		c.start++
		if c.start >= consoleRetain {
			c.start = 0
		}
		c.wrapped = true
	}
	if c.echo != nil {
		_, _ = c.echo.Write([]byte{data})
	}
}

// Read implements the bus.Device interface.
func (c *Console) Read(offset uint16) (uint8, error) {
	if offset == ConsoleStatus {
		return consoleReady, nil
	}
	return 0, nil
}

// Write implements the bus.Device interface.
func (c *Console) Write(offset uint16, data uint8) error {
	if offset == ConsoleData {
		c.put(data)
	}
	return nil
}

// Peek implements the bus.Device interface.
func (c *Console) Peek(offset uint16) uint8 {
	switch offset {
	case ConsoleData:
		return c.last
	case ConsoleStatus:
		return consoleReady
	}
	return 0
}

// Poke implements the bus.Device interface. Poking the data register does
// not count as output.
func (c *Console) Poke(offset uint16, data uint8) {
	if offset == ConsoleData {
		c.last = data
	}
}

// Reset implements the bus.Device interface.
func (c *Console) Reset() {
	c.retained = c.retained[:0]
	c.start = 0
	c.wrapped = false
	c.last = 0
}

// Label implements the bus.Device interface.
func (c *Console) Label() string {
	return "CONSOLE"
}
