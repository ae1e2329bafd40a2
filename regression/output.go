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

const outputEntryType = "output"

const (
	outputFieldProgram int = iota
	outputFieldSteps
	outputFieldDigest
	numOutputFields
)

// OutputRegression runs a program for a set number of steps and records the
// hash of everything the program writes to the console device. The test is
// blind to the machine state, only what the program chooses to say matters.
// The right type for test programs that print their own results.
type OutputRegression struct {
	Program string
	Steps   int

	digest string
}

func deserialiseOutputEntry(fields []string) (database.Entry, error) {
	reg := &OutputRegression{}

	// basic sanity check
	if len(fields) > numOutputFields {
		return nil, curated.Errorf("output regression: too many fields")
	}
	if len(fields) < numOutputFields {
		return nil, curated.Errorf("output regression: too few fields")
	}

	reg.Program = fields[outputFieldProgram]

	var err error
	reg.Steps, err = strconv.Atoi(fields[outputFieldSteps])
	if err != nil {
		return nil, curated.Errorf("output regression: invalid steps field [%s]", fields[outputFieldSteps])
	}

	reg.digest = fields[outputFieldDigest]

	return reg, nil
}

// ID implements the database.Entry interface.
func (reg OutputRegression) ID() string {
	return outputEntryType
}

// String implements the database.Entry interface.
func (reg OutputRegression) String() string {
	return fmt.Sprintf("[%s] %s steps=%d", reg.ID(), reg.Program, reg.Steps)
}

// Serialise implements the database.Entry interface.
func (reg *OutputRegression) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{
			reg.Program,
			strconv.Itoa(reg.Steps),
			reg.digest,
		},
		nil
}

// CleanUp implements the database.Entry interface. There are no files to
// remove, the program file belongs to the user.
func (reg OutputRegression) CleanUp() error {
	return nil
}

// regress implements the regression.Regressor interface.
func (reg *OutputRegression) regress(newRegression bool, output io.Writer, msg string) (bool, error) {
	output.Write([]byte(msg))

	dig := digest.NewOutput()

	if _, err := runProgram(reg.Program, reg.Steps, output, msg, dig); err != nil {
		return false, curated.Errorf("output regression: %v", err)
	}

	if newRegression {
		reg.digest = dig.Hash()
		return true, nil
	}

	return dig.Hash() == reg.digest, nil
}
