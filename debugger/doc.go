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

// Package debugger is the terminal debugger for the Machina emulation. It
// attaches a program to a machine and hands control of the emulation to
// the user: stepping, running, breakpoints, watches, memory and register
// inspection, disassembly, snapshots and rewind are all driven from a
// command prompt.
//
// The debugger is built around an input loop. When the emulation is
// halted the loop waits at the prompt for a command. When the emulation
// is moving the loop steps the machine and checks the halt conditions
// after every step. A breakpoint is special among the halt conditions in
// that it is checked by the machine itself, before the instruction at the
// breakpoint address has run. Watches are checked by the debugger after
// the step, by comparing the watch list with the most recent bus access.
//
// The terminal is abstracted through the terminal package. The colorterm
// implementation provides history, tab completion and ANSI colour, the
// plainterm implementation works anywhere. Command parsing is the
// responsibility of the commandline package, the commands themselves are
// defined by the commandTemplate in this package.
//
// Sessions can be recorded to a script file with SCRIPT RECORD, and
// played back with SCRIPT. A script records both the commands and their
// results, played back commands are echoed. The script package handles
// both directions.
//
// Errors from the machine do not end the session. An instruction that
// faults the machine leaves it in the Faulted state, available for
// inspection, and the fault is reported at the prompt. Callers that care
// can ask the debugger whether it left a faulted machine behind with
// HasFaulted().
package debugger
