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

package bus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/machina-emu/machina/curated"
)

// MemoryFault is the sentinel error pattern for all illegal memory accesses.
const MemoryFault = "memory fault: %s [%#04x]"

// OpenBusValue is the value returned by reads of unmapped addresses when the
// bus policy is OpenBus.
const OpenBusValue = uint8(0xff)

// RegionKind describes how a region of the address space is backed.
type RegionKind int

// List of valid RegionKind values.
const (
	ReadOnly RegionKind = iota
	ReadWrite
	MappedIO
)

func (k RegionKind) String() string {
	switch k {
	case ReadOnly:
		return "ROM"
	case ReadWrite:
		return "RAM"
	case MappedIO:
		return "IO"
	}
	return "unknown"
}

// UnmappedPolicy describes how the bus responds to accesses of unmapped
// addresses.
type UnmappedPolicy int

// List of valid UnmappedPolicy values.
const (
	// Fault causes every access of an unmapped address to return a
	// MemoryFault error.
	Fault UnmappedPolicy = iota

	// OpenBus causes reads of unmapped addresses to return OpenBusValue and
	// writes to be dropped silently.
	OpenBus
)

func (p UnmappedPolicy) String() string {
	switch p {
	case Fault:
		return "fault"
	case OpenBus:
		return "openbus"
	}
	return "unknown"
}

// ParseUnmappedPolicy converts the string representation of a policy, as
// stored in the preferences file, to an UnmappedPolicy value.
func ParseUnmappedPolicy(s string) (UnmappedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fault":
		return Fault, nil
	case "openbus":
		return OpenBus, nil
	}
	return Fault, curated.Errorf("bus: unrecognised unmapped policy (%s)", s)
}

// Device is implemented by hardware that backs a MappedIO region. Offsets
// are relative to the origin of the region the device is attached to.
//
// Read() and Write() are the live access path and are allowed to have side
// effects. Peek() and Poke() must not have side effects beyond the stored
// value, they are used by debuggers and by the snapshot system.
type Device interface {
	Read(offset uint16) (uint8, error)
	Write(offset uint16, data uint8) error
	Peek(offset uint16) uint8
	Poke(offset uint16, data uint8)

	// Reset returns the device to its power-on state.
	Reset()

	// Label returns a short name for the device, suitable for the region
	// table shown by a debugger.
	Label() string
}

// Reader is the read-only view of the bus handed to an instruction decoder.
// The Bus type itself satisfies the interface with the live, side-effecting
// access path. The view returned by DebugReader() satisfies it with the
// Peek() path.
type Reader interface {
	Read(address uint16) (uint8, error)
	Read16(address uint16) (uint16, error)
}

// Region is a contiguous range of the address space. For ReadOnly and
// ReadWrite regions the backing store is the Data field. For MappedIO
// regions accesses are delegated to the Device field and Data is only used
// by the snapshot system.
type Region struct {
	Name   string
	Origin uint16
	Memtop uint16
	Kind   RegionKind

	Data   []uint8
	Device Device
}

func (r Region) String() string {
	sz := int(r.Memtop) - int(r.Origin) + 1
	label := r.Name
	if r.Kind == MappedIO && r.Device != nil {
		label = fmt.Sprintf("%s (%s)", r.Name, r.Device.Label())
	}
	return fmt.Sprintf("%04x -> %04x  %-4s %6d  %s", r.Origin, r.Memtop, r.Kind, sz, label)
}

// contains is true if address falls inside the region.
func (r Region) contains(address uint16) bool {
	return address >= r.Origin && address <= r.Memtop
}

// Bus is the memory bus of the emulated machine. Regions are added during
// machine construction and are fixed for the lifetime of the bus.
type Bus struct {
	policy  UnmappedPolicy
	regions []*Region

	// details of the most recent access through the live Read()/Write()
	// paths. the debugger's watch system compares these fields against its
	// watch list after every step. nothing in the emulation itself should
	// read them.
	//
	// Peek() and Poke() do not update these fields.
	LastAccessAddress uint16
	LastAccessData    uint8
	LastAccessWrite   bool

	// incremented on every live access. the watch system uses this to
	// recognise that a new access has taken place
	AccessCount uint64
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(policy UnmappedPolicy) *Bus {
	return &Bus{
		policy:  policy,
		regions: make([]*Region, 0, 8),
	}
}

// Policy returns the unmapped access policy the bus was created with.
func (b *Bus) Policy() UnmappedPolicy {
	return b.policy
}

func (b *Bus) String() string {
	s := strings.Builder{}
	for _, r := range b.regions {
		s.WriteString(r.String())
		s.WriteString("\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

// Regions returns the region table in address order. The returned slice must
// not be altered.
func (b *Bus) Regions() []*Region {
	return b.regions
}

// AddRegion maps a range of the address space to plain memory. An error is
// returned if the new region overlaps an existing region or if the range is
// invalid. Memory in the new region is initialised to zero.
func (b *Bus) AddRegion(name string, origin uint16, memtop uint16, kind RegionKind) error {
	if kind == MappedIO {
		return curated.Errorf("bus: region %s: mapped IO regions require a device", name)
	}
	r := &Region{
		Name:   name,
		Origin: origin,
		Memtop: memtop,
		Kind:   kind,
		Data:   make([]uint8, int(memtop)-int(origin)+1),
	}
	return b.addRegion(r)
}

// AddDevice maps a range of the address space to a Device. The same
// overlap rules as AddRegion apply.
func (b *Bus) AddDevice(name string, origin uint16, memtop uint16, dev Device) error {
	if dev == nil {
		return curated.Errorf("bus: region %s: nil device", name)
	}
	r := &Region{
		Name:   name,
		Origin: origin,
		Memtop: memtop,
		Kind:   MappedIO,
		Device: dev,
	}
	return b.addRegion(r)
}

func (b *Bus) addRegion(r *Region) error {
	if r.Memtop < r.Origin {
		return curated.Errorf("bus: region %s: memtop is below origin", r.Name)
	}
	for _, e := range b.regions {
		if r.Origin <= e.Memtop && e.Origin <= r.Memtop {
			return curated.Errorf("bus: region %s overlaps region %s", r.Name, e.Name)
		}
	}
	b.regions = append(b.regions, r)
	sort.Slice(b.regions, func(i int, j int) bool {
		return b.regions[i].Origin < b.regions[j].Origin
	})
	return nil
}

// region returns the region containing address, or nil if the address is
// unmapped. The region table is small so a linear scan is fine.
func (b *Bus) region(address uint16) *Region {
	for _, r := range b.regions {
		if r.contains(address) {
			return r
		}
	}
	return nil
}

// recordAccess notes a successful live access. faulted accesses are not
// recorded.
func (b *Bus) recordAccess(address uint16, data uint8, write bool) {
	b.LastAccessAddress = address
	b.LastAccessData = data
	b.LastAccessWrite = write
	b.AccessCount++
}

// Read is the live read path. Reads of a MappedIO region are delegated to
// the region's device and can have side effects.
func (b *Bus) Read(address uint16) (uint8, error) {
	r := b.region(address)
	if r == nil {
		if b.policy == OpenBus {
			b.recordAccess(address, OpenBusValue, false)
			return OpenBusValue, nil
		}
		return 0, curated.Errorf(MemoryFault, "read of unmapped address", address)
	}

	var data uint8
	if r.Kind == MappedIO {
		var err error
		data, err = r.Device.Read(address - r.Origin)
		if err != nil {
			return 0, err
		}
	} else {
		data = r.Data[address-r.Origin]
	}

	b.recordAccess(address, data, false)
	return data, nil
}

// Write is the live write path. Writes to a ReadOnly region are a memory
// fault regardless of the bus policy.
func (b *Bus) Write(address uint16, data uint8) error {
	r := b.region(address)
	if r == nil {
		if b.policy == OpenBus {
			b.recordAccess(address, data, true)
			return nil
		}
		return curated.Errorf(MemoryFault, "write to unmapped address", address)
	}

	switch r.Kind {
	case ReadOnly:
		return curated.Errorf(MemoryFault, "write to read-only address", address)
	case MappedIO:
		if err := r.Device.Write(address-r.Origin, data); err != nil {
			return err
		}
	default:
		r.Data[address-r.Origin] = data
	}

	b.recordAccess(address, data, true)
	return nil
}

// Read16 reads a 16-bit little-endian value. The access must fit entirely
// inside the region of the first byte.
func (b *Bus) Read16(address uint16) (uint16, error) {
	r := b.region(address)
	if r == nil {
		if b.policy == OpenBus {
			return uint16(OpenBusValue) | uint16(OpenBusValue)<<8, nil
		}
		return 0, curated.Errorf(MemoryFault, "read of unmapped address", address)
	}
	if address == 0xffff || !r.contains(address+1) {
		return 0, curated.Errorf(MemoryFault, "16-bit read crosses region boundary", address)
	}
	lo, err := b.Read(address)
	if err != nil {
		return 0, err
	}
	hi, err := b.Read(address + 1)
	if err != nil {
		return 0, err
	}

	// record the pair against the base address so that a watch on the
	// address the program named will match
	b.LastAccessAddress = address
	b.LastAccessData = lo

	return uint16(lo) | uint16(hi)<<8, nil
}

// Write16 writes a 16-bit little-endian value. The access must fit entirely
// inside the region of the first byte.
func (b *Bus) Write16(address uint16, data uint16) error {
	r := b.region(address)
	if r == nil {
		if b.policy == OpenBus {
			return nil
		}
		return curated.Errorf(MemoryFault, "write to unmapped address", address)
	}
	if r.Kind == ReadOnly {
		return curated.Errorf(MemoryFault, "write to read-only address", address)
	}
	if address == 0xffff || !r.contains(address+1) {
		return curated.Errorf(MemoryFault, "16-bit write crosses region boundary", address)
	}
	if err := b.Write(address, uint8(data)); err != nil {
		return err
	}
	if err := b.Write(address+1, uint8(data>>8)); err != nil {
		return err
	}

	// as with Read16, the pair is recorded against the base address
	b.LastAccessAddress = address
	b.LastAccessData = uint8(data)

	return nil
}

// Peek reads an address without triggering side effects. Unlike the live
// read path an error from Peek never means a machine fault, it simply means
// the address has no value to show.
func (b *Bus) Peek(address uint16) (uint8, error) {
	r := b.region(address)
	if r == nil {
		return 0, curated.Errorf(MemoryFault, "peek of unmapped address", address)
	}
	if r.Kind == MappedIO {
		return r.Device.Peek(address - r.Origin), nil
	}
	return r.Data[address-r.Origin], nil
}

// Peek16 reads a 16-bit little-endian value without side effects. The same
// width rule as Read16 applies.
func (b *Bus) Peek16(address uint16) (uint16, error) {
	r := b.region(address)
	if r == nil {
		return 0, curated.Errorf(MemoryFault, "peek of unmapped address", address)
	}
	if address == 0xffff || !r.contains(address+1) {
		return 0, curated.Errorf(MemoryFault, "16-bit peek crosses region boundary", address)
	}
	lo, _ := b.Peek(address)
	hi, _ := b.Peek(address + 1)
	return uint16(lo) | uint16(hi)<<8, nil
}

// Poke writes to an address without triggering side effects. Pokes to
// ReadOnly regions are allowed.
func (b *Bus) Poke(address uint16, data uint8) error {
	r := b.region(address)
	if r == nil {
		return curated.Errorf(MemoryFault, "poke of unmapped address", address)
	}
	if r.Kind == MappedIO {
		r.Device.Poke(address-r.Origin, data)
		return nil
	}
	r.Data[address-r.Origin] = data
	return nil
}

// Patch is the write path used by program loaders. It is the same as Poke
// but kept distinct so the two uses can be distinguished at the call site.
func (b *Bus) Patch(address uint16, data uint8) error {
	return b.Poke(address, data)
}

// Reset returns every region to its power-on state. ReadOnly regions are
// left untouched, ReadWrite regions are filled by the supplied function and
// MappedIO regions are delegated to the device's own Reset(). A nil fill
// function zeroes memory.
func (b *Bus) Reset(fill func() uint8) {
	for _, r := range b.regions {
		switch r.Kind {
		case ReadWrite:
			for i := range r.Data {
				if fill == nil {
					r.Data[i] = 0
				} else {
					r.Data[i] = fill()
				}
			}
		case MappedIO:
			r.Device.Reset()
		}
	}
}

// DebugReader returns a view of the bus that satisfies the Reader interface
// with the Peek() path. Disassemblers use it to decode memory without
// disturbing the machine.
func (b *Bus) DebugReader() Reader {
	return peekReader{bus: b}
}

type peekReader struct {
	bus *Bus
}

func (p peekReader) Read(address uint16) (uint8, error) {
	return p.bus.Peek(address)
}

func (p peekReader) Read16(address uint16) (uint16, error) {
	return p.bus.Peek16(address)
}

// Snapshot makes a copy of the bus suitable for later restoration with
// Plumb. MappedIO regions are captured as the image of the device's Peek()
// values.
func (b *Bus) Snapshot() *Bus {
	n := &Bus{
		policy:  b.policy,
		regions: make([]*Region, len(b.regions)),
	}
	for i, r := range b.regions {
		nr := &Region{
			Name:   r.Name,
			Origin: r.Origin,
			Memtop: r.Memtop,
			Kind:   r.Kind,
			Device: r.Device,
		}
		if r.Kind == MappedIO {
			nr.Data = make([]uint8, int(r.Memtop)-int(r.Origin)+1)
			for j := range nr.Data {
				nr.Data[j] = r.Device.Peek(uint16(j))
			}
		} else {
			nr.Data = make([]uint8, len(r.Data))
			copy(nr.Data, r.Data)
		}
		n.regions[i] = nr
	}
	return n
}

// Plumb restores the bus to the state captured by a previous Snapshot. Data
// regions are copied back and MappedIO regions are restored by Poking the
// captured image into the live device.
func (b *Bus) Plumb(from *Bus) error {
	if len(from.regions) != len(b.regions) {
		return curated.Errorf("bus: plumb: region tables differ")
	}
	for i, r := range b.regions {
		fr := from.regions[i]
		if fr.Origin != r.Origin || fr.Memtop != r.Memtop || fr.Kind != r.Kind {
			return curated.Errorf("bus: plumb: region %s does not match", r.Name)
		}
		if r.Kind == MappedIO {
			for j, d := range fr.Data {
				r.Device.Poke(uint16(j), d)
			}
		} else {
			copy(r.Data, fr.Data)
		}
	}
	return nil
}
