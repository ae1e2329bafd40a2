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

package terminal

// Style is used to identify the category of text being sent to the
// TermPrintLine() function. The terminal implementation is free to interpret
// the style however it likes, including ignoring it altogether.
type Style int

// List of terminal styles.
const (
	// the normalised echo of whatever the user has just input. interactive
	// terminals have no need to print this, the user can already see what
	// they typed.
	StyleEcho Style = iota

	// help text
	StyleHelp

	// terminal feedback for acknowledged commands
	StyleFeedback

	// the outcome of a machine step
	StyleStep

	// information about the machine: registers, memory, timers
	StyleMachineInfo

	// information about the emulation rather than the machine
	StyleEmulatorInfo

	// lines replayed from the central log
	StyleLog

	// error messages. terminals should display these even when silenced
	StyleError
)

// IncludeInScriptOutput returns true if lines of this style should be
// written to any script being captured. input echoes are already written as
// input lines and log and error lines would not reproduce on replay.
func (sty Style) IncludeInScriptOutput() bool {
	switch sty {
	case StyleEcho:
		return false
	case StyleLog:
		return false
	case StyleError:
		return false
	}
	return true
}
