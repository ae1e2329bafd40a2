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

package regression

import (
	"fmt"
	"io"
	"strconv"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/database"
	"github.com/machina-emu/machina/digest"
)

const stateEntryType = "state"

const (
	stateFieldProgram int = iota
	stateFieldSteps
	stateFieldDigest
	numStateFields
)

// StateRegression runs a program for a set number of steps and records the
// hash of the machine's complete state, taken through the snapshot
// encoding. Any change in the behaviour of the processor core, the bus or
// the timers shows up as a difference in the hash.
type StateRegression struct {
	Program string
	Steps   int

	digest string
}

func deserialiseStateEntry(fields []string) (database.Entry, error) {
	reg := &StateRegression{}

	// basic sanity check
	if len(fields) > numStateFields {
		return nil, curated.Errorf("state regression: too many fields")
	}
	if len(fields) < numStateFields {
		return nil, curated.Errorf("state regression: too few fields")
	}

	reg.Program = fields[stateFieldProgram]

	var err error
	reg.Steps, err = strconv.Atoi(fields[stateFieldSteps])
	if err != nil {
		return nil, curated.Errorf("state regression: invalid steps field [%s]", fields[stateFieldSteps])
	}

	reg.digest = fields[stateFieldDigest]

	return reg, nil
}

// ID implements the database.Entry interface.
func (reg StateRegression) ID() string {
	return stateEntryType
}

// String implements the database.Entry interface.
func (reg StateRegression) String() string {
	return fmt.Sprintf("[%s] %s steps=%d", reg.ID(), reg.Program, reg.Steps)
}

// Serialise implements the database.Entry interface.
func (reg *StateRegression) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{
			reg.Program,
			strconv.Itoa(reg.Steps),
			reg.digest,
		},
		nil
}

// CleanUp implements the database.Entry interface. There are no files to
// remove, the program file belongs to the user.
func (reg StateRegression) CleanUp() error {
	return nil
}

// regress implements the regression.Regressor interface.
func (reg *StateRegression) regress(newRegression bool, output io.Writer, msg string) (bool, error) {
	output.Write([]byte(msg))

	mc, err := runProgram(reg.Program, reg.Steps, output, msg, nil)
	if err != nil {
		return false, curated.Errorf("state regression: %v", err)
	}

	d, err := digest.State(mc.Machine)
	if err != nil {
		return false, curated.Errorf("state regression: %v", err)
	}

	if newRegression {
		reg.digest = d
		return true, nil
	}

	return d == reg.digest, nil
}
