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

package database_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/database"
	"github.com/machina-emu/machina/test"
)

// a minimal entry type for exercising the database.
type testEntry struct {
	label string
	value int
}

func deserialiseTestEntry(fields []string) (database.Entry, error) {
	if len(fields) != 2 {
		return nil, curated.Errorf("test entry: wrong number of fields")
	}

	ent := &testEntry{label: fields[0]}

	var err error
	ent.value, err = strconv.Atoi(fields[1])
	if err != nil {
		return nil, curated.Errorf("test entry: invalid value field [%s]", fields[1])
	}

	return ent, nil
}

func (ent *testEntry) ID() string {
	return "test"
}

func (ent *testEntry) String() string {
	return fmt.Sprintf("%s=%d", ent.label, ent.value)
}

func (ent *testEntry) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{ent.label, strconv.Itoa(ent.value)}, nil
}

func (ent *testEntry) CleanUp() error {
	return nil
}

func initTestSession(db *database.Session) error {
	return db.RegisterEntryType("test", deserialiseTestEntry)
}

func TestCreateAndReload(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(pth, database.ActivityCreating, initTestSession)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, db.NumEntries(), 0)

	test.ExpectSuccess(t, db.Add(&testEntry{label: "alpha", value: 1}))
	test.ExpectSuccess(t, db.Add(&testEntry{label: "beta", value: 2}))
	test.ExpectSuccess(t, db.EndSession(true))

	// keys are assigned in order from zero
	b, err := os.ReadFile(pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(b), "000,test,alpha,1\n001,test,beta,2\n")

	db, err = database.StartSession(pth, database.ActivityReading, initTestSession)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, db.NumEntries(), 2)

	s := &strings.Builder{}
	test.ExpectSuccess(t, db.List(s))
	test.ExpectEquality(t, s.String(), "000 alpha=1\n001 beta=2\nTotal: 2\n")

	test.ExpectSuccess(t, db.EndSession(false))
}

func TestReadOnlyCommit(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "db")

	// creating session establishes the file
	db, err := database.StartSession(pth, database.ActivityCreating, initTestSession)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, db.EndSession(true))

	db, err = database.StartSession(pth, database.ActivityReading, initTestSession)
	test.DemandSuccess(t, err)

	err = db.EndSession(true)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, "database: cannot commit to a read-only session"))

	// the session has ended despite the error
	test.ExpectFailure(t, db.EndSession(false))
}

func TestDeleteAndKeyReuse(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(pth, database.ActivityCreating, initTestSession)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, db.Add(&testEntry{label: "alpha", value: 1}))
	test.ExpectSuccess(t, db.Add(&testEntry{label: "beta", value: 2}))
	test.ExpectSuccess(t, db.EndSession(true))

	db, err = database.StartSession(pth, database.ActivityModifying, initTestSession)
	test.DemandSuccess(t, err)

	err = db.Delete(99)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, "database: key not available (%d)"))

	test.ExpectSuccess(t, db.Delete(0))

	// a new entry takes the key freed by the deletion
	test.ExpectSuccess(t, db.Add(&testEntry{label: "gamma", value: 3}))
	test.ExpectSuccess(t, db.EndSession(true))

	db, err = database.StartSession(pth, database.ActivityReading, initTestSession)
	test.DemandSuccess(t, err)

	s := &strings.Builder{}
	test.ExpectSuccess(t, db.List(s))
	test.ExpectEquality(t, s.String(), "000 gamma=3\n001 beta=2\nTotal: 2\n")

	test.ExpectSuccess(t, db.EndSession(false))
}

func TestSelect(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(pth, database.ActivityCreating, initTestSession)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, db.Add(&testEntry{label: "alpha", value: 1}))
	test.ExpectSuccess(t, db.Add(&testEntry{label: "beta", value: 2}))
	test.ExpectSuccess(t, db.Add(&testEntry{label: "gamma", value: 3}))

	// SelectAll visits every entry in key order
	visited := []string{}
	_, err = db.SelectAll(func(ent database.Entry) error {
		visited = append(visited, ent.String())
		return nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, strings.Join(visited, " "), "alpha=1 beta=2 gamma=3")

	// a single key returns the matching entry
	ent, err := db.SelectKeys(nil, 1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ent.String(), "beta=2")

	// a missing key stops the selection
	_, err = db.SelectKeys(nil, 99)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, "database: key not available (%d)"))

	test.ExpectSuccess(t, db.EndSession(false))
}

func TestBadDatabaseFile(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "db")

	// an entry type the session does not recognise
	test.DemandSuccess(t, os.WriteFile(pth, []byte("000,mystery,alpha,1\n"), 0600))

	_, err := database.StartSession(pth, database.ActivityReading, initTestSession)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, "database: unrecognised entry type [%s] at line %d"))

	// a key that is not a number
	test.DemandSuccess(t, os.WriteFile(pth, []byte("xxx,test,alpha,1\n"), 0600))

	_, err = database.StartSession(pth, database.ActivityReading, initTestSession)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, "database: invalid key [%s] at line %d"))

	// the same key twice
	test.DemandSuccess(t, os.WriteFile(pth, []byte("000,test,alpha,1\n000,test,beta,2\n"), 0600))

	_, err = database.StartSession(pth, database.ActivityReading, initTestSession)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, "database: duplicate key [%d] at line %d"))
}

func TestDuplicateEntryType(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "db")

	_, err := database.StartSession(pth, database.ActivityCreating, func(db *database.Session) error {
		if err := db.RegisterEntryType("test", deserialiseTestEntry); err != nil {
			return err
		}
		return db.RegisterEntryType("test", deserialiseTestEntry)
	})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, "database: duplicate entry type [%s]"))
}
