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

// Package execution describes the run condition of an emulated machine.
//
// Note that this is the condition of the machine being emulated and not of
// the emulator itself. The emulator's condition is described by the govern
// package in the debugger tree.
package execution

// State describes the run condition of an emulated machine.
type State int

// List of possible machine states.
//
// Halted and Faulted are terminal states. A machine in a terminal state will
// not execute further instructions until it has been reset.
const (
	Initialising State = iota
	Running
	Paused
	Halted
	Faulted
)

func (s State) String() string {
	switch s {
	case Initialising:
		return "Initialising"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Halted:
		return "Halted"
	case Faulted:
		return "Faulted"
	}

	return ""
}

// Terminal returns true if the machine cannot execute further instructions
// without an intervening reset.
func (s State) Terminal() bool {
	return s == Halted || s == Faulted
}
