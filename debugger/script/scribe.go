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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/machina-emu/machina/curated"
)

// Sentinel errors returned by the script package.
const (
	// ScriptEnd is how the Rescribe type indicates that the script is
	// exhausted. It is not a failure condition.
	ScriptEnd = "end of script (%s)"

	ScriptScribeError     = "script scribe: %v"
	ScriptFileError       = "script: %v"
	ScriptFileUnavailable = "script: cannot open script file (%v)"
)

// Scribe can be used again after a StartSession()/EndSession() cycle.
// IsActive() can be used to detect if a script is currently being captured
// but it is safe not to because most functions silently do nothing if there
// is no active session.
type Scribe struct {
	file       *os.File
	scriptfile string

	// the depth of script openings during the writing of a new script
	playbackDepth int

	inputLine  string
	outputLine string
}

// IsActive returns true if a script is currently being captured.
func (scr Scribe) IsActive() bool {
	return scr.file != nil
}

// StartSession begins the capture of a new script.
func (scr *Scribe) StartSession(scriptfile string) error {
	if scr.IsActive() {
		return curated.Errorf(ScriptScribeError, "already active")
	}

	scr.scriptfile = scriptfile

	_, err := os.Stat(scriptfile)
	if os.IsNotExist(err) {
		scr.file, err = os.Create(scriptfile)
		if err != nil {
			return curated.Errorf(ScriptScribeError, "cannot create new script file")
		}
	} else {
		return curated.Errorf(ScriptScribeError, "file already exists")
	}

	return nil
}

// EndSession the current scribe session.
func (scr *Scribe) EndSession() error {
	if !scr.IsActive() {
		return nil
	}

	defer func() {
		scr.file = nil
		scr.scriptfile = ""
		scr.playbackDepth = 0
		scr.inputLine = ""
		scr.outputLine = ""
	}()

	// make sure everything has been written to the output file
	err := scr.Commit()

	// if Commit() causes an error, continue with the Close() operation and
	// return the Commit() error if the close succeeds

	errClose := scr.file.Close()
	if errClose != nil {
		return curated.Errorf(ScriptScribeError, errClose)
	}

	return err
}

// StartPlayback indicates that a replayed script has begun. input and output
// during playback is not written to the new script, only the command that
// started the playback.
func (scr *Scribe) StartPlayback() {
	if !scr.IsActive() {
		return
	}
	scr.Commit()
	scr.playbackDepth++
}

// EndPlayback indicates that a replayed script has finished.
func (scr *Scribe) EndPlayback() {
	if !scr.IsActive() {
		return
	}
	scr.Commit()
	scr.playbackDepth--
}

// Rollback undoes calls to WriteInput() and WriteOutput() since the last
// Commit().
func (scr *Scribe) Rollback() {
	if !scr.IsActive() {
		return
	}

	scr.inputLine = ""
	scr.outputLine = ""
}

// WriteInput stages user input for the open script file. any previously
// staged lines are committed first.
func (scr *Scribe) WriteInput(command string) {
	if !scr.IsActive() || scr.playbackDepth > 0 {
		return
	}

	scr.Commit()
	if command != "" {
		scr.inputLine = fmt.Sprintf("%s\n", command)
	}
}

// WriteOutput stages terminal output for the open script file. output lines
// are prefixed such that they are skipped when the script is replayed.
func (scr *Scribe) WriteOutput(result string, args ...interface{}) {
	if !scr.IsActive() || scr.playbackDepth > 0 {
		return
	}

	if result == "" {
		return
	}

	result = fmt.Sprintf(result, args...)

	lines := strings.Split(result, "\n")
	for i := range lines {
		scr.outputLine = fmt.Sprintf("%s%s%s\n", scr.outputLine, outputDelimiter, lines[i])
	}
}

// Commit the most recent calls to WriteInput() and WriteOutput().
func (scr *Scribe) Commit() error {
	if !scr.IsActive() {
		return nil
	}

	defer func() {
		scr.inputLine = ""
		scr.outputLine = ""
	}()

	if scr.inputLine != "" {
		n, err := io.WriteString(scr.file, scr.inputLine)
		if err != nil {
			return curated.Errorf(ScriptScribeError, err)
		}
		if n != len(scr.inputLine) {
			return curated.Errorf(ScriptScribeError, "output truncated")
		}
	}

	if scr.outputLine != "" {
		n, err := io.WriteString(scr.file, scr.outputLine)
		if err != nil {
			return curated.Errorf(ScriptScribeError, err)
		}
		if n != len(scr.outputLine) {
			return curated.Errorf(ScriptScribeError, "output truncated")
		}
	}

	return nil
}
