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
	"sort"
	"strconv"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/database"
	"github.com/machina-emu/machina/debugger/govern"
	"github.com/machina-emu/machina/debugger/terminal/colorterm/easyterm/ansi"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/loader"
	"github.com/machina-emu/machina/resources"
)

// the location of the regression files, relative to the resource path.
const (
	regressionPath   = "regression"
	regressionDBFile = "db"
	failsFile        = "fails"
)

// Regressor is the generic entry type in the regression database.
type Regressor interface {
	database.Entry

	// perform the regression test for the entry type. the newRegression
	// flag indicates that the test is being run for the first time and
	// that the reference result should be stored rather than compared
	//
	// message is the string that is to be printed during the regression
	regress(newRegression bool, output io.Writer, message string) (bool, error)
}

// when starting a database session we need to register what entries we will
// find in the database.
func initDBSession(db *database.Session) error {
	if err := db.RegisterEntryType(stateEntryType, deserialiseStateEntry); err != nil {
		return err
	}
	if err := db.RegisterEntryType(outputEntryType, deserialiseOutputEntry); err != nil {
		return err
	}
	return nil
}

func databasePath() (string, error) {
	p, err := resources.JoinPath(regressionPath, regressionDBFile)
	if err != nil {
		return "", curated.Errorf("regression: %v", err)
	}
	return p, nil
}

// RegressList displays all entries in the database.
func RegressList(output io.Writer) error {
	dbPth, err := databasePath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(dbPth, database.ActivityReading, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	return db.List(output)
}

// RegressAdd adds a new entry to the regression database. The test is run
// once to gather the reference result.
func RegressAdd(output io.Writer, reg Regressor) error {
	dbPth, err := databasePath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(dbPth, database.ActivityCreating, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	msg := fmt.Sprintf("adding: %s", reg)
	if _, err := reg.regress(true, output, msg); err != nil {
		return err
	}

	output.Write([]byte(ansi.ClearLine))
	output.Write([]byte(fmt.Sprintf("\radded: %s\n", reg)))

	return db.Add(reg)
}

// RegressDelete removes an entry from the regression database. The
// confirmation reader is consulted before anything is removed, a line
// beginning with y or Y confirms the deletion.
func RegressDelete(output io.Writer, confirmation io.Reader, key string) error {
	v, err := strconv.Atoi(key)
	if err != nil {
		return curated.Errorf("regression: invalid key [%s]", key)
	}

	dbPth, err := databasePath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(dbPth, database.ActivityModifying, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	ent, err := db.SelectKeys(nil, v)
	if err != nil {
		return err
	}

	output.Write([]byte(fmt.Sprintf("%s\ndelete? (y/n): ", ent)))

	confirm := make([]byte, 32)
	if _, err := confirmation.Read(confirm); err != nil {
		return curated.Errorf("regression: %v", err)
	}

	if confirm[0] == 'y' || confirm[0] == 'Y' {
		if err := db.Delete(v); err != nil {
			return err
		}
		output.Write([]byte(fmt.Sprintf("deleted test #%s from regression database\n", key)))
	}

	return nil
}

// RegressRunTests runs the tests in the regression database. The filterKeys
// list specifies which entries to test, an empty list means every entry.
// The keyword FAILS in the filter list stands for the keys that failed the
// previous run.
func RegressRunTests(output io.Writer, verbose bool, failOnError bool, filterKeys []string) error {
	dbPth, err := databasePath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(dbPth, database.ActivityReading, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	filterKeys, err = addFailsToKeys(filterKeys)
	if err != nil {
		if !curated.Is(err, noPreviousFails) {
			return err
		}
		output.Write([]byte("no previous fails\n"))
		return nil
	}

	// make sure any supplied keys are in order and without duplicates
	keysV := make([]int, 0, len(filterKeys))
	for i := range filterKeys {
		v, err := strconv.Atoi(filterKeys[i])
		if err != nil {
			return curated.Errorf("regression: invalid key [%s]", filterKeys[i])
		}
		keysV = append(keysV, v)
	}
	sort.Ints(keysV)

	keyList := make([]int, 0, len(keysV))
	for _, v := range keysV {
		if len(keyList) == 0 || v != keyList[len(keyList)-1] {
			keyList = append(keyList, v)
		}
	}

	numSucceed := 0
	numFail := 0
	numError := 0
	numSkipped := 0

	if len(keyList) == 0 {
		keyList = db.SortedKeyList()
	} else {
		numSkipped = db.NumEntries() - len(keyList)
	}

	defer func() {
		output.Write([]byte(fmt.Sprintf("regression tests: %d succeed, %d fail, %d skipped", numSucceed, numFail, numSkipped)))
		if numError > 0 {
			output.Write([]byte(" [with errors]"))
		}
		output.Write([]byte("\n"))
	}()

	// the keys that fail this run, stored for the FAILS keyword
	failKeys := []string{}

	for i, key := range keyList {
		ent, err := db.SelectKeys(nil, key)
		if err != nil {
			return err
		}

		reg, ok := ent.(Regressor)
		if !ok {
			return curated.Errorf("regression: database entry does not satisfy the Regressor interface")
		}

		// run regress() function with message. message does not have a
		// trailing newline
		msg := fmt.Sprintf("running: %s", reg)
		ok, err = reg.regress(false, output, msg)

		// once regress() has completed we clear the line ready for the
		// completion message
		output.Write([]byte(ansi.ClearLine))

		if err != nil {
			numError++
			output.Write([]byte(fmt.Sprintf("\r ERROR: %s\n", reg)))
			if verbose {
				output.Write([]byte(fmt.Sprintf("%s\n", err)))
			}

			failKeys = append(failKeys, strconv.Itoa(key))

			if failOnError {
				numSkipped += len(keyList) - i - 1
				break
			}
		} else if !ok {
			numFail++
			output.Write([]byte(fmt.Sprintf("\rfailure: %s\n", reg)))
			failKeys = append(failKeys, strconv.Itoa(key))
		} else {
			numSucceed++
			output.Write([]byte(fmt.Sprintf("\rsucceed: %s\n", reg)))
		}
	}

	return saveFails(failKeys)
}

// report progress at most once for every interval of steps.
const progressInterval = 65536

// runProgram builds a fresh machine, loads the named program and runs it
// for the specified number of steps, or until the program halts of its own
// accord. Bytes written to the console device are echoed to echo, which can
// be nil.
//
// Regression results must not depend on the host so the machine environment
// is normalised before the program is loaded.
func runProgram(program string, steps int, output io.Writer, msg string, echo io.Writer) (*mico.Mico, error) {
	mc, err := mico.NewMico(nil)
	if err != nil {
		return nil, err
	}
	mc.Env.Normalise()

	if echo != nil {
		mc.Console.SetEcho(echo)
	}

	ld := loader.NewLoader(program, "")
	if err := ld.Attach(mc.Machine); err != nil {
		return nil, err
	}

	err = mc.RunForSteps(steps, func(step int) (govern.State, error) {
		if step%progressInterval == 0 {
			output.Write([]byte(fmt.Sprintf("\r%s [%d%%]", msg, step*100/steps)))
		}
		return govern.Running, nil
	})
	if err != nil {
		return nil, err
	}

	return mc, nil
}
