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

// Package script allows the debugger to record and replay debugging scripts.
// In this package we refer to this as scribing and rescribing.
//
// Scripts can of course be handwritten and be rescribed as though they had
// been scribed by the debugger. In this instance however, there is a risk
// that there will be errors. Invalid commands will not be written to the
// script file by the Scribe type but a handwritten script may contain them,
// in which case the appropriate error message is printed to the terminal
// when the line is replayed. Comment lines begin with the # symbol.
//
// Scripts can be run while scribing a new script. The command that runs the
// script is recorded in the new script but the replayed input and output is
// not.
//
// The Rescribe type satisfies the terminal.Input interface and is used as a
// source for the debugger package's input loop.
package script
