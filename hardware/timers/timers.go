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

// Package timers implements the timer and interrupt subsystem of an
// emulated machine. A fixed number of timer slots count down in machine
// cycles and raise an interrupt vector on expiry. Raised vectors join a
// bounded FIFO queue from which the machine services them between
// instructions.
//
// The subsystem is also the machine's cycle counter. The Cycles() function
// satisfies the random.CycleSource interface so random number state can be
// tied to a point in the emulation.
package timers

import (
	"fmt"
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/logger"
)

// Slot is a single countdown timer. Remaining is decremented once per
// machine cycle while the slot is armed. When it reaches zero the slot's
// vector is raised and the slot either reloads (repeating timers) or
// disarms (one-shot timers).
type Slot struct {
	Armed     bool
	Vector    uint8
	Interval  uint64
	Remaining uint64
	Repeat    bool
}

func (s Slot) String() string {
	if !s.Armed {
		return "unarmed"
	}
	m := "one-shot"
	if s.Repeat {
		m = "repeat"
	}
	return fmt.Sprintf("vec %d  %s  %d of %d cycles", s.Vector, m, s.Remaining, s.Interval)
}

// Timers is the timer and interrupt subsystem.
type Timers struct {
	slots   []Slot
	vectors int

	// raised vectors waiting to be serviced, oldest first. the queue is
	// bounded by queueLimit and raises beyond the bound are dropped
	pending    []uint8
	queueLimit int

	// total number of machine cycles since the last reset
	cycles uint64
}

// NewTimers is the preferred method of initialisation for the Timers type.
func NewTimers(numSlots int, numVectors int, queueLimit int) *Timers {
	return &Timers{
		slots:      make([]Slot, numSlots),
		vectors:    numVectors,
		pending:    make([]uint8, 0, queueLimit),
		queueLimit: queueLimit,
	}
}

// NumSlots returns the number of timer slots.
func (t *Timers) NumSlots() int {
	return len(t.slots)
}

// Slot returns a copy of the numbered slot. Used by debuggers for display.
func (t *Timers) Slot(slot int) Slot {
	return t.slots[slot]
}

// Arm starts the numbered slot counting down from interval. Any previous
// state of the slot is replaced.
func (t *Timers) Arm(slot int, vector uint8, interval uint64, repeat bool) error {
	if slot < 0 || slot >= len(t.slots) {
		return curated.Errorf("timers: no such slot (%d)", slot)
	}
	if int(vector) >= t.vectors {
		return curated.Errorf("timers: no such vector (%d)", vector)
	}
	if interval == 0 {
		return curated.Errorf("timers: interval must be at least one cycle")
	}
	t.slots[slot] = Slot{
		Armed:     true,
		Vector:    vector,
		Interval:  interval,
		Remaining: interval,
		Repeat:    repeat,
	}
	return nil
}

// Disarm stops the numbered slot.
func (t *Timers) Disarm(slot int) error {
	if slot < 0 || slot >= len(t.slots) {
		return curated.Errorf("timers: no such slot (%d)", slot)
	}
	t.slots[slot] = Slot{}
	return nil
}

// Raise queues an interrupt vector directly, without involving a timer
// slot. Devices use it to signal events like controller input or the start
// of the vertical blank.
func (t *Timers) Raise(vector uint8) error {
	if int(vector) >= t.vectors {
		return curated.Errorf("timers: no such vector (%d)", vector)
	}
	t.raise(vector)
	return nil
}

func (t *Timers) raise(vector uint8) {
	if len(t.pending) >= t.queueLimit {
		logger.Logf(logger.Allow, "timers", "interrupt queue full. vector %d dropped", vector)
		return
	}
	t.pending = append(t.pending, vector)
}

// Tick advances the machine clock by the given number of cycles. Slots are
// decremented one cycle at a time and, within a cycle, expire in slot
// order. The queue order of simultaneous expiries is therefore always the
// same for the same machine history.
func (t *Timers) Tick(cycles int) {
	for c := 0; c < cycles; c++ {
		t.cycles++
		for i := range t.slots {
			s := &t.slots[i]
			if !s.Armed {
				continue
			}
			s.Remaining--
			if s.Remaining == 0 {
				t.raise(s.Vector)
				if s.Repeat {
					s.Remaining = s.Interval
				} else {
					s.Armed = false
				}
			}
		}
	}
}

// Pending is true if at least one raised vector is waiting to be serviced.
func (t *Timers) Pending() bool {
	return len(t.pending) > 0
}

// Next pops the oldest raised vector from the queue. The boolean is false
// if the queue is empty.
func (t *Timers) Next() (uint8, bool) {
	if len(t.pending) == 0 {
		return 0, false
	}
	v := t.pending[0]
	t.pending = t.pending[1:]
	return v, true
}

// Queued returns a copy of the pending queue, oldest first. Used by
// debuggers for display.
func (t *Timers) Queued() []uint8 {
	q := make([]uint8, len(t.pending))
	copy(q, t.pending)
	return q
}

// Cycles returns the total number of machine cycles since the last reset.
// It satisfies the random.CycleSource interface.
func (t *Timers) Cycles() uint64 {
	return t.cycles
}

// Reset returns the subsystem to its power-on state. All slots are
// disarmed, the pending queue is emptied and the cycle count returns to
// zero.
func (t *Timers) Reset() {
	for i := range t.slots {
		t.slots[i] = Slot{}
	}
	t.pending = t.pending[:0]
	t.cycles = 0
}

// RestoreSlot replaces the numbered slot wholesale. Unlike Arm() a slot can
// be restored mid-countdown. Used by the snapshot codec.
func (t *Timers) RestoreSlot(slot int, s Slot) error {
	if slot < 0 || slot >= len(t.slots) {
		return curated.Errorf("timers: no such slot (%d)", slot)
	}
	if s.Armed {
		if int(s.Vector) >= t.vectors {
			return curated.Errorf("timers: no such vector (%d)", s.Vector)
		}
		if s.Remaining == 0 || s.Remaining > s.Interval {
			return curated.Errorf("timers: slot %d countdown is inconsistent", slot)
		}
	}
	t.slots[slot] = s
	return nil
}

// RestoreClock replaces the cycle counter and the pending queue wholesale.
// Used by the snapshot codec.
func (t *Timers) RestoreClock(cycles uint64, pending []uint8) error {
	if len(pending) > t.queueLimit {
		return curated.Errorf("timers: pending queue too long (%d)", len(pending))
	}
	for _, v := range pending {
		if int(v) >= t.vectors {
			return curated.Errorf("timers: no such vector (%d)", v)
		}
	}
	t.pending = append(t.pending[:0], pending...)
	t.cycles = cycles
	return nil
}

func (t *Timers) String() string {
	s := strings.Builder{}
	for i, slot := range t.slots {
		s.WriteString(fmt.Sprintf("T%d: %s\n", i, slot.String()))
	}
	s.WriteString(fmt.Sprintf("pending: %v", t.pending))
	return s.String()
}

// Snapshot makes a deep copy of the subsystem.
func (t *Timers) Snapshot() *Timers {
	n := &Timers{
		slots:      make([]Slot, len(t.slots)),
		vectors:    t.vectors,
		pending:    make([]uint8, len(t.pending)),
		queueLimit: t.queueLimit,
		cycles:     t.cycles,
	}
	copy(n.slots, t.slots)
	copy(n.pending, t.pending)
	return n
}

// Plumb restores the subsystem to the state captured by a previous
// Snapshot.
func (t *Timers) Plumb(from *Timers) error {
	if len(from.slots) != len(t.slots) {
		return curated.Errorf("timers: plumb: slot tables differ")
	}
	copy(t.slots, from.slots)
	t.pending = append(t.pending[:0], from.pending...)
	t.cycles = from.cycles
	return nil
}
