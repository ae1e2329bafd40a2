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

package database

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/machina-emu/machina/curated"
)

// Activity describes the kind of work a session expects to do. The
// activity decides how the database file is opened and whether changes can
// be committed at the end of the session.
type Activity int

// Valid activities. ActivityCreating creates the database file if it does
// not already exist, otherwise it is equivalent to ActivityModifying.
const (
	ActivityReading Activity = iota
	ActivityCreating
	ActivityModifying
)

// Session keeps track of a database session.
type Session struct {
	dbfile   *os.File
	activity Activity

	entries map[int]Entry

	entryTypes map[string]deserialiser
}

// StartSession starts/initialises a new database session. The init
// function is called once the database file has been opened but before
// any entries have been read. It is the opportunity to register entry
// types with RegisterEntryType().
func StartSession(path string, activity Activity, init func(*Session) error) (*Session, error) {
	var err error

	db := &Session{activity: activity}
	db.entryTypes = make(map[string]deserialiser)

	var flags int
	switch activity {
	case ActivityReading:
		flags = os.O_RDONLY
	case ActivityCreating:
		flags = os.O_RDWR | os.O_CREATE
	case ActivityModifying:
		flags = os.O_RDWR
	}

	db.dbfile, err = os.OpenFile(path, flags, 0600)
	if err != nil {
		return nil, curated.Errorf("database: %v", err)
	}

	// from here on, closing of db.dbfile requires a call to EndSession()

	if init != nil {
		if err := init(db); err != nil {
			_ = db.dbfile.Close()
			return nil, err
		}
	}

	if err := db.readDBFile(); err != nil {
		_ = db.dbfile.Close()
		return nil, err
	}

	return db, nil
}

// EndSession closes the database. Changes to the database are written to
// the database file if commitChanges is true. Committing a session opened
// with ActivityReading is an error.
//
// The session cannot be used after EndSession() has returned, whatever
// the outcome.
func (db *Session) EndSession(commitChanges bool) error {
	if db.dbfile == nil {
		return curated.Errorf("database: no session open")
	}

	// the file is closed whatever happens below
	defer func() {
		_ = db.dbfile.Close()
		db.dbfile = nil
		db.entries = nil
	}()

	if !commitChanges {
		return nil
	}

	if db.activity == ActivityReading {
		return curated.Errorf("database: cannot commit to a read-only session")
	}

	if err := db.dbfile.Truncate(0); err != nil {
		return curated.Errorf("database: %v", err)
	}
	if _, err := db.dbfile.Seek(0, io.SeekStart); err != nil {
		return curated.Errorf("database: %v", err)
	}

	for _, key := range db.SortedKeyList() {
		ser, err := db.entries[key].Serialise()
		if err != nil {
			return err
		}

		s := strings.Builder{}
		s.WriteString(recordHeader(key, db.entries[key].ID()))
		for i := 0; i < len(ser); i++ {
			s.WriteString(fieldSep)
			s.WriteString(ser[i])
		}
		s.WriteString(entrySep)

		if _, err := db.dbfile.WriteString(s.String()); err != nil {
			return curated.Errorf("database: %v", err)
		}
	}

	return nil
}

func (db *Session) readDBFile() error {
	// readDBFile() clobbers the contents of db.entries
	db.entries = make(map[int]Entry)

	// make sure we're at the beginning of the file
	if _, err := db.dbfile.Seek(0, io.SeekStart); err != nil {
		return curated.Errorf("database: %v", err)
	}

	buffer, err := io.ReadAll(db.dbfile)
	if err != nil {
		return curated.Errorf("database: %v", err)
	}

	lines := strings.Split(string(buffer), entrySep)

	for i := 0; i < len(lines); i++ {
		lines[i] = strings.TrimSpace(lines[i])
		if len(lines[i]) == 0 {
			continue
		}

		// the leader fields are common to every entry type. the remainder
		// of the line belongs to the deserialiser
		fields := strings.SplitN(lines[i], fieldSep, numLeaderFields+1)
		if len(fields) != numLeaderFields+1 {
			return curated.Errorf("database: missing fields at line %d", i+1)
		}

		key, err := strconv.Atoi(fields[leaderFieldKey])
		if err != nil {
			return curated.Errorf("database: invalid key [%s] at line %d", fields[leaderFieldKey], i+1)
		}

		if _, ok := db.entries[key]; ok {
			return curated.Errorf("database: duplicate key [%d] at line %d", key, i+1)
		}

		des, ok := db.entryTypes[fields[leaderFieldID]]
		if !ok {
			return curated.Errorf("database: unrecognised entry type [%s] at line %d", fields[leaderFieldID], i+1)
		}

		ent, err := des(strings.Split(fields[numLeaderFields], fieldSep))
		if err != nil {
			return err
		}

		db.entries[key] = ent
	}

	return nil
}
