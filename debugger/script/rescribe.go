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

package script

import (
	"os"
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/terminal"
)

// lines prefixed with commentLine are skipped during playback. the Scribe
// type uses outputDelimiter when writing terminal output to a script, which
// turns the output into comment lines.
const (
	commentLine     = "#"
	outputDelimiter = "# "
)

// check if line should be skipped during playback. output lines are
// comments and an empty line is not a command, recording does not produce
// either as input.
func isSkipLine(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, commentLine)
}

// Rescribe represents a previously scribed script. The type implements the
// terminal.Input interface.
type Rescribe struct {
	scriptFile string
	lines      []string
	lineCt     int
}

// RescribeScript is the preferred method of initialisation for the Rescribe
// type.
func RescribeScript(scriptfile string) (*Rescribe, error) {
	buffer, err := os.ReadFile(scriptfile)
	if err != nil {
		return nil, curated.Errorf(ScriptFileUnavailable, err)
	}

	scr := &Rescribe{scriptFile: scriptfile}
	scr.lines = strings.Split(string(buffer), "\n")

	// pass over anything that is not a command, leaving the line counter
	// at the first input line
	for scr.lineCt < len(scr.lines) && isSkipLine(scr.lines[scr.lineCt]) {
		scr.lineCt++
	}

	return scr, nil
}

// IsInteractive implements the terminal.Input interface.
func (scr *Rescribe) IsInteractive() bool {
	return false
}

// TermReadCheck implements the terminal.Input interface.
func (scr *Rescribe) TermReadCheck() bool {
	return false
}

// TermRead implements the terminal.Input interface.
func (scr *Rescribe) TermRead(buffer []byte, _ terminal.Prompt, _ *terminal.ReadEvents) (int, error) {
	if scr.lineCt > len(scr.lines)-1 {
		return -1, curated.Errorf(ScriptEnd, scr.scriptFile)
	}

	command := len(scr.lines[scr.lineCt]) + 1
	copy(buffer, []byte(scr.lines[scr.lineCt]))
	scr.lineCt++

	// pass over anything that is not a command
	for scr.lineCt < len(scr.lines) && isSkipLine(scr.lines[scr.lineCt]) {
		scr.lineCt++
	}

	return command, nil
}
