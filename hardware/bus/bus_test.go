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

package bus_test

import (
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/test"
)

// mockDevice counts live accesses so tests can tell the Read/Write path
// apart from the Peek/Poke path.
type mockDevice struct {
	mem    [16]uint8
	reads  int
	writes int
}

func (d *mockDevice) Read(offset uint16) (uint8, error) {
	d.reads++
	return d.mem[offset], nil
}

func (d *mockDevice) Write(offset uint16, data uint8) error {
	d.writes++
	d.mem[offset] = data
	return nil
}

func (d *mockDevice) Peek(offset uint16) uint8 {
	return d.mem[offset]
}

func (d *mockDevice) Poke(offset uint16, data uint8) {
	d.mem[offset] = data
}

func (d *mockDevice) Reset() {
	for i := range d.mem {
		d.mem[i] = 0
	}
}

func (d *mockDevice) Label() string {
	return "MOCK"
}

func TestRegionTable(t *testing.T) {
	b := bus.NewBus(bus.Fault)

	test.ExpectSuccess(t, b.AddRegion("ROM", 0x0000, 0x0fff, bus.ReadOnly))
	test.ExpectSuccess(t, b.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))

	// overlapping regions are rejected
	test.ExpectFailure(t, b.AddRegion("BAD", 0x0800, 0x17ff, bus.ReadWrite))

	// inverted ranges are rejected
	test.ExpectFailure(t, b.AddRegion("BAD", 0x3000, 0x2000, bus.ReadWrite))

	// mapped IO requires a device
	test.ExpectFailure(t, b.AddRegion("BAD", 0x2000, 0x20ff, bus.MappedIO))
	test.ExpectFailure(t, b.AddDevice("BAD", 0x2000, 0x20ff, nil))

	test.ExpectEquality(t, len(b.Regions()), 2)
}

func TestReadWrite(t *testing.T) {
	b := bus.NewBus(bus.Fault)
	test.DemandSuccess(t, b.AddRegion("ROM", 0x0000, 0x0fff, bus.ReadOnly))
	test.DemandSuccess(t, b.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))

	test.ExpectSuccess(t, b.Write(0x1234, 0xab))
	v, err := b.Read(0x1234)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0xab)

	// writes to ROM fault. the target is unchanged
	err = b.Write(0x0100, 0xff)
	test.ExpectEquality(t, curated.Is(err, bus.MemoryFault), true)
	v, err = b.Read(0x0100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x00)

	// the patch path is allowed to alter ROM
	test.ExpectSuccess(t, b.Patch(0x0100, 0xff))
	v, _ = b.Read(0x0100)
	test.ExpectEquality(t, v, 0xff)
}

func TestUnmappedPolicy(t *testing.T) {
	// fault policy
	b := bus.NewBus(bus.Fault)
	test.DemandSuccess(t, b.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))

	_, err := b.Read(0x8000)
	test.ExpectEquality(t, curated.Is(err, bus.MemoryFault), true)
	err = b.Write(0x8000, 0x00)
	test.ExpectEquality(t, curated.Is(err, bus.MemoryFault), true)

	// openbus policy
	b = bus.NewBus(bus.OpenBus)
	test.DemandSuccess(t, b.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))

	v, err := b.Read(0x8000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, bus.OpenBusValue)
	test.ExpectSuccess(t, b.Write(0x8000, 0x00))

	w, err := b.Read16(0x8000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, w, 0xffff)
}

func TestWidthRule(t *testing.T) {
	b := bus.NewBus(bus.Fault)
	test.DemandSuccess(t, b.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))
	test.DemandSuccess(t, b.AddRegion("HI", 0x2000, 0x2fff, bus.ReadWrite))

	// a 16-bit access inside a single region works
	test.ExpectSuccess(t, b.Write16(0x1100, 0xbeef))
	w, err := b.Read16(0x1100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, w, 0xbeef)

	// little-endian byte order
	v, _ := b.Read(0x1100)
	test.ExpectEquality(t, v, 0xef)
	v, _ = b.Read(0x1101)
	test.ExpectEquality(t, v, 0xbe)

	// the access must fit the region of the first byte, even when the
	// second byte falls inside an adjacent region
	_, err = b.Read16(0x1fff)
	test.ExpectEquality(t, curated.Is(err, bus.MemoryFault), true)
	err = b.Write16(0x1fff, 0x0000)
	test.ExpectEquality(t, curated.Is(err, bus.MemoryFault), true)

	// the top of the address space can never fit a 16-bit access
	b = bus.NewBus(bus.Fault)
	test.DemandSuccess(t, b.AddRegion("RAM", 0xf000, 0xffff, bus.ReadWrite))
	_, err = b.Read16(0xffff)
	test.ExpectEquality(t, curated.Is(err, bus.MemoryFault), true)
}

func TestDevice(t *testing.T) {
	b := bus.NewBus(bus.Fault)
	dev := &mockDevice{}
	test.DemandSuccess(t, b.AddDevice("IO", 0xf000, 0xf00f, dev))

	// live accesses reach the device with region relative offsets
	test.ExpectSuccess(t, b.Write(0xf003, 0x5a))
	test.ExpectEquality(t, dev.writes, 1)
	test.ExpectEquality(t, dev.mem[3], 0x5a)

	v, err := b.Read(0xf003)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x5a)
	test.ExpectEquality(t, dev.reads, 1)

	// peek and poke do not trigger the live path
	v, err = b.Peek(0xf003)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x5a)
	test.ExpectSuccess(t, b.Poke(0xf004, 0x11))
	test.ExpectEquality(t, dev.reads, 1)
	test.ExpectEquality(t, dev.writes, 1)
	test.ExpectEquality(t, dev.mem[4], 0x11)

	// the debug reader uses the peek path
	v, err = b.DebugReader().Read(0xf003)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x5a)
	test.ExpectEquality(t, dev.reads, 1)
}

func TestLastAccess(t *testing.T) {
	b := bus.NewBus(bus.OpenBus)
	test.DemandSuccess(t, b.AddRegion("ROM", 0x0000, 0x0fff, bus.ReadOnly))
	test.DemandSuccess(t, b.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))

	test.DemandSuccess(t, b.Write(0x1200, 0x42))
	test.ExpectEquality(t, b.LastAccessAddress, 0x1200)
	test.ExpectEquality(t, b.LastAccessData, 0x42)
	test.ExpectEquality(t, b.LastAccessWrite, true)
	test.ExpectEquality(t, b.AccessCount, 1)

	_, err := b.Read(0x1200)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b.LastAccessAddress, 0x1200)
	test.ExpectEquality(t, b.LastAccessData, 0x42)
	test.ExpectEquality(t, b.LastAccessWrite, false)
	test.ExpectEquality(t, b.AccessCount, 2)

	// open bus reads are live accesses and are recorded
	_, err = b.Read(0x8000)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b.LastAccessAddress, 0x8000)
	test.ExpectEquality(t, b.LastAccessData, bus.OpenBusValue)
	test.ExpectEquality(t, b.AccessCount, 3)

	// a faulted access is not recorded
	err = b.Write(0x0100, 0x99)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, b.LastAccessAddress, 0x8000)
	test.ExpectEquality(t, b.AccessCount, 3)

	// peek and poke never touch the access fields
	test.DemandSuccess(t, b.Poke(0x1300, 0x77))
	_, err = b.Peek(0x1300)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b.LastAccessAddress, 0x8000)
	test.ExpectEquality(t, b.AccessCount, 3)

	// 16-bit accesses are recorded against the base address
	test.DemandSuccess(t, b.Write16(0x1400, 0x1234))
	test.ExpectEquality(t, b.LastAccessAddress, 0x1400)
	test.ExpectEquality(t, b.LastAccessData, 0x34)
	test.ExpectEquality(t, b.LastAccessWrite, true)
	test.ExpectEquality(t, b.AccessCount, 5)

	_, err = b.Read16(0x1400)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b.LastAccessAddress, 0x1400)
	test.ExpectEquality(t, b.LastAccessData, 0x34)
	test.ExpectEquality(t, b.LastAccessWrite, false)
	test.ExpectEquality(t, b.AccessCount, 7)
}

func TestSnapshot(t *testing.T) {
	b := bus.NewBus(bus.Fault)
	dev := &mockDevice{}
	test.DemandSuccess(t, b.AddRegion("RAM", 0x1000, 0x1fff, bus.ReadWrite))
	test.DemandSuccess(t, b.AddDevice("IO", 0xf000, 0xf00f, dev))

	test.DemandSuccess(t, b.Write(0x1000, 0x01))
	test.DemandSuccess(t, b.Write(0xf000, 0x02))

	snap := b.Snapshot()

	// mutate the live bus after the snapshot
	test.DemandSuccess(t, b.Write(0x1000, 0xaa))
	test.DemandSuccess(t, b.Write(0xf000, 0xbb))

	// the snapshot is unaffected by the mutation
	test.ExpectEquality(t, snap.Regions()[0].Data[0], 0x01)

	test.ExpectSuccess(t, b.Plumb(snap))

	v, _ := b.Read(0x1000)
	test.ExpectEquality(t, v, 0x01)
	v, _ = b.Peek(0xf000)
	test.ExpectEquality(t, v, 0x02)
}
