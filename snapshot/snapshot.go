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

// Package snapshot serialises machine state to a binary file and back.
//
// The format is versioned and self describing. It records the core the
// state belongs to, every register by name, the full region table with a
// gzip compressed image of each region, the timer subsystem and the
// execution state of the machine.
//
// Save() is a pure read of the machine. Load() is all or nothing: the file
// is decoded and validated against the live machine in its entirety before
// any part of the machine is touched. A machine that rejects a snapshot is
// the same machine it was before the attempt.
//
// Serialisation of the same machine state always produces the same bytes,
// which the regression system relies on when it digests a machine.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/hardware/timers"
)

const (
	magic   = "MSNP"
	version = 1
)

const (
	// NotASnapshot is returned when the file does not begin with the
	// snapshot magic number.
	NotASnapshot = "snapshot: not a snapshot file"

	// VersionMismatch is returned when the file was written by an
	// incompatible version of the codec.
	VersionMismatch = "snapshot: unsupported version (%d)"

	// Corrupt is returned when the file is structurally damaged. The
	// argument names the field that could not be read.
	Corrupt = "snapshot: corrupt file: %s"

	// Incompatible is returned when a well formed snapshot does not fit
	// the live machine it is being loaded into.
	Incompatible = "snapshot: incompatible: %v"
)

// Save writes the current machine state to w.
func Save(m *hardware.Machine, w io.Writer) error {
	state := m.Snapshot()

	buf := &bytes.Buffer{}
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, uint32(version))

	if err := writeName(buf, state.CoreID); err != nil {
		return err
	}
	buf.WriteByte(uint8(state.State))

	note := ""
	if state.Fault != nil {
		note = state.Fault.Error()
	}
	if len(note) > 0xffff {
		note = note[:0xffff]
	}
	binary.Write(buf, binary.LittleEndian, uint16(len(note)))
	buf.WriteString(note)

	// registers in specification order
	binary.Write(buf, binary.LittleEndian, uint32(state.Regs.Len()))
	for i := 0; i < state.Regs.Len(); i++ {
		if err := writeName(buf, state.Regs.Name(i)); err != nil {
			return err
		}
		binary.Write(buf, binary.LittleEndian, state.Regs.Value(i))
	}

	// timer subsystem
	binary.Write(buf, binary.LittleEndian, state.TMR.Cycles())
	binary.Write(buf, binary.LittleEndian, uint32(state.TMR.NumSlots()))
	for i := 0; i < state.TMR.NumSlots(); i++ {
		s := state.TMR.Slot(i)
		buf.WriteByte(flag(s.Armed))
		buf.WriteByte(s.Vector)
		buf.WriteByte(flag(s.Repeat))
		binary.Write(buf, binary.LittleEndian, s.Interval)
		binary.Write(buf, binary.LittleEndian, s.Remaining)
	}
	queued := state.TMR.Queued()
	binary.Write(buf, binary.LittleEndian, uint32(len(queued)))
	buf.Write(queued)

	// region table. mapped IO regions carry the peek image taken by the
	// machine snapshot
	regions := state.Mem.Regions()
	binary.Write(buf, binary.LittleEndian, uint32(len(regions)))
	for _, r := range regions {
		if err := writeName(buf, r.Name); err != nil {
			return err
		}
		binary.Write(buf, binary.LittleEndian, r.Origin)
		binary.Write(buf, binary.LittleEndian, r.Memtop)
		buf.WriteByte(uint8(r.Kind))

		comp := &bytes.Buffer{}
		gz := gzip.NewWriter(comp)
		if _, err := gz.Write(r.Data); err != nil {
			return curated.Errorf("snapshot: %v", err)
		}
		if err := gz.Close(); err != nil {
			return curated.Errorf("snapshot: %v", err)
		}
		binary.Write(buf, binary.LittleEndian, uint32(comp.Len()))
		buf.Write(comp.Bytes())
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return curated.Errorf("snapshot: %v", err)
	}

	return nil
}

// Load restores machine state previously written with Save(). The file is
// decoded and validated in full before the machine is touched.
func Load(m *hardware.Machine, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return curated.Errorf("snapshot: %v", err)
	}

	w := &walker{data: data}

	if b, err := w.take(len(magic), "magic number"); err != nil || string(b) != magic {
		return curated.Errorf(NotASnapshot)
	}
	v, err := w.uint32v("version")
	if err != nil {
		return err
	}
	if v != version {
		return curated.Errorf(VersionMismatch, v)
	}

	coreID, err := w.name("core ID")
	if err != nil {
		return err
	}
	mstate, err := w.uint8v("machine state")
	if err != nil {
		return err
	}
	if execution.State(mstate) > execution.Faulted {
		return curated.Errorf(Corrupt, "machine state")
	}
	note, err := w.longString("fault note")
	if err != nil {
		return err
	}

	// the snapshot of the live machine receives the decoded state. the
	// machine itself is not touched until the very last moment
	state := m.Snapshot()

	if coreID != state.CoreID {
		return curated.Errorf(Incompatible, fmt.Errorf("state is for core %s, machine has core %s", coreID, state.CoreID))
	}

	// registers must appear in specification order under their
	// specification names
	numRegs, err := w.uint32v("register count")
	if err != nil {
		return err
	}
	if int(numRegs) != state.Regs.Len() {
		return curated.Errorf(Incompatible, fmt.Errorf("register files differ"))
	}
	for i := 0; i < int(numRegs); i++ {
		name, err := w.name("register name")
		if err != nil {
			return err
		}
		if name != state.Regs.Name(i) {
			return curated.Errorf(Incompatible, fmt.Errorf("register %s does not match", name))
		}
		val, err := w.uint16v("register value")
		if err != nil {
			return err
		}
		state.Regs.SetValue(i, val)
	}

	// timer subsystem
	cycles, err := w.uint64v("cycle count")
	if err != nil {
		return err
	}
	numSlots, err := w.uint32v("timer slot count")
	if err != nil {
		return err
	}
	if int(numSlots) != state.TMR.NumSlots() {
		return curated.Errorf(Incompatible, fmt.Errorf("timer slots differ"))
	}
	for i := 0; i < int(numSlots); i++ {
		var s timers.Slot
		armed, err := w.uint8v("timer slot")
		if err != nil {
			return err
		}
		s.Armed = armed != 0
		if s.Vector, err = w.uint8v("timer slot"); err != nil {
			return err
		}
		repeat, err := w.uint8v("timer slot")
		if err != nil {
			return err
		}
		s.Repeat = repeat != 0
		if s.Interval, err = w.uint64v("timer slot"); err != nil {
			return err
		}
		if s.Remaining, err = w.uint64v("timer slot"); err != nil {
			return err
		}
		if err := state.TMR.RestoreSlot(i, s); err != nil {
			return curated.Errorf(Incompatible, err)
		}
	}
	numQueued, err := w.uint32v("interrupt queue length")
	if err != nil {
		return err
	}
	queued, err := w.take(int(numQueued), "interrupt queue")
	if err != nil {
		return err
	}
	if err := state.TMR.RestoreClock(cycles, queued); err != nil {
		return curated.Errorf(Incompatible, err)
	}

	// region table must match the live machine exactly
	numRegions, err := w.uint32v("region count")
	if err != nil {
		return err
	}
	regions := state.Mem.Regions()
	if int(numRegions) != len(regions) {
		return curated.Errorf(Incompatible, fmt.Errorf("region tables differ"))
	}
	for _, reg := range regions {
		name, err := w.name("region name")
		if err != nil {
			return err
		}
		origin, err := w.uint16v("region origin")
		if err != nil {
			return err
		}
		memtop, err := w.uint16v("region memtop")
		if err != nil {
			return err
		}
		kind, err := w.uint8v("region kind")
		if err != nil {
			return err
		}
		if name != reg.Name || origin != reg.Origin || memtop != reg.Memtop || int(kind) != int(reg.Kind) {
			return curated.Errorf(Incompatible, fmt.Errorf("region %s does not match", name))
		}

		compLen, err := w.uint32v("region payload length")
		if err != nil {
			return err
		}
		comp, err := w.take(int(compLen), "region payload")
		if err != nil {
			return err
		}
		gz, err := gzip.NewReader(bytes.NewReader(comp))
		if err != nil {
			return curated.Errorf(Corrupt, "region payload")
		}
		image, err := io.ReadAll(gz)
		gz.Close()
		if err != nil {
			return curated.Errorf(Corrupt, "region payload")
		}
		if len(image) != len(reg.Data) {
			return curated.Errorf(Incompatible, fmt.Errorf("region %s image is the wrong size", name))
		}
		copy(reg.Data, image)
	}

	state.State = execution.State(mstate)
	state.Fault = nil
	if note != "" {
		state.Fault = curated.Errorf("machine: %v", note)
	}

	// everything validated. the plumb is the first mutation of the machine
	return m.Plumb(state)
}

// SaveFile writes the current machine state to the named file.
func SaveFile(m *hardware.Machine, filename string) error {
	buf := &bytes.Buffer{}
	if err := Save(m, buf); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return curated.Errorf("snapshot: %v", err)
	}
	return nil
}

// LoadFile restores machine state from the named file.
func LoadFile(m *hardware.Machine, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return curated.Errorf("snapshot: %v", err)
	}
	defer f.Close()
	return Load(m, f)
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// names are length prefixed with a single byte.
func writeName(buf *bytes.Buffer, name string) error {
	if len(name) > 0xff {
		return curated.Errorf("snapshot: name too long (%s)", name)
	}
	buf.WriteByte(uint8(len(name)))
	buf.WriteString(name)
	return nil
}

// walker steps through the undecoded file, returning Corrupt errors that
// name the field that fell off the end.
type walker struct {
	data []byte
	pos  int
}

func (w *walker) take(n int, what string) ([]byte, error) {
	if n < 0 || w.pos+n > len(w.data) {
		return nil, curated.Errorf(Corrupt, what)
	}
	b := w.data[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

func (w *walker) uint8v(what string) (uint8, error) {
	b, err := w.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (w *walker) uint16v(what string) (uint16, error) {
	b, err := w.take(2, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (w *walker) uint32v(what string) (uint32, error) {
	b, err := w.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (w *walker) uint64v(what string) (uint64, error) {
	b, err := w.take(8, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (w *walker) name(what string) (string, error) {
	n, err := w.uint8v(what)
	if err != nil {
		return "", err
	}
	b, err := w.take(int(n), what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (w *walker) longString(what string) (string, error) {
	n, err := w.uint16v(what)
	if err != nil {
		return "", err
	}
	b, err := w.take(int(n), what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
