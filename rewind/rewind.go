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

// Package rewind allows a machine to be stepped backwards.
//
// The package keeps a bounded history of machine snapshots, one per
// executed instruction. Because a snapshot is taken at every step there is
// no need to re-execute anything to reach an intermediate state, stepping
// back is nothing more than plumbing an old snapshot into the machine.
//
// Stepping back rewrites history. Entries newer than the restored point
// are discarded and subsequent execution records a fresh timeline.
package rewind

import (
	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware"
)

// NotEnoughHistory is returned by StepBack() when the request reaches
// further back than the history held.
const NotEnoughHistory = "rewind: only %d steps of history"

// the maximum number of entries to store before the earliest steps are
// forgotten. there is an overhead of two entries to facilitate appending.
const overhead = 2
const maxEntries = 256 + overhead

// Rewind contains a history of machine states.
type Rewind struct {
	m *hardware.Machine

	// circular array of snapshotted entries
	entries [maxEntries]*hardware.State
	start   int
	end     int

	// the position of the entry most recently recorded or plumbed
	curr int
}

// NewRewind is the preferred method of initialisation for the Rewind type.
func NewRewind(m *hardware.Machine) *Rewind {
	r := &Rewind{m: m}
	r.Reset()
	return r
}

// Reset the rewind system, removing all entries and taking a snapshot of
// the machine as it now stands. This should be called whenever the machine
// itself is reset or has had a state plumbed in from outside the rewind
// system.
func (r *Rewind) Reset() {
	r.start = 0
	r.end = 0
	r.curr = maxEntries
	r.append(r.m.Snapshot())
}

// Record a snapshot of the machine. To be called after every step.
func (r *Rewind) Record() {
	r.append(r.m.Snapshot())
}

func (r *Rewind) append(s *hardware.State) {
	// append at current position
	e := r.curr + 1
	if e >= maxEntries {
		e = 0
	}

	r.entries[e] = s
	r.curr = e

	// next update point is recent update point plus one
	r.end = r.curr + 1
	if r.end >= maxEntries {
		r.end = 0
	}

	// push start index along
	if r.end == r.start {
		r.start++
		if r.start >= maxEntries {
			r.start = 0
		}
	}
}

// Available returns the number of steps the machine can currently be wound
// back.
func (r *Rewind) Available() int {
	d := r.curr - r.start
	if d < 0 {
		d += maxEntries
	}
	return d
}

// StepBack returns the machine to the state it was in n steps ago.
// Entries newer than that point are discarded.
func (r *Rewind) StepBack(n int) error {
	if n < 1 {
		return nil
	}
	if n > r.Available() {
		return curated.Errorf(NotEnoughHistory, r.Available())
	}

	idx := r.curr - n
	if idx < 0 {
		idx += maxEntries
	}

	// Plumb() copies out of the stored state, so the entry survives being
	// restored any number of times
	if err := r.m.Plumb(r.entries[idx]); err != nil {
		return curated.Errorf("rewind: %v", err)
	}

	r.curr = idx
	r.end = r.curr + 1
	if r.end >= maxEntries {
		r.end = 0
	}

	return nil
}
