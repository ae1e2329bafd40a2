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

package prefs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/machina-emu/machina/curated"
)

// WarningBoilerPlate is the first line in a prefs file. The file is plain
// text and editable but editing is not encouraged.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// DefaultPrefsFile is the default filename of the main prefs file, relative
// to the resources base path.
const DefaultPrefsFile = "machina.prefs"

// the string that separates the key from the value in a prefs file entry.
const keySep = " :: "

// sentinal error returned by Load() when the prefs file does not exist.
const NoPrefsFile = "prefs: no prefs file (%s)"

// Disk represents the preference values that are synchronised to a file on
// disk. Multiple Disk instances can point to the same file, with each
// instance responsible for its own keys. Keys in the file that belong to
// another instance are preserved on Save().
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type. The
// path argument is the path to the prefs file. The file does not need to
// exist at this point.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add a prefs value to the Disk instance, keyed with the supplied name. Keys
// are dotted strings by convention ("debugger.colorterm", etc.)
func (dsk *Disk) Add(key string, p pref) error {
	key = strings.TrimSpace(key)

	if key == "" {
		return curated.Errorf("prefs: add: empty key")
	}
	if strings.Contains(key, keySep) {
		return curated.Errorf("prefs: add: key contains the separator string (%s)", key)
	}
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf("prefs: add: key already registered (%s)", key)
	}

	dsk.entries[key] = p

	return nil
}

// String returns the current values of the registered keys, one per line,
// sorted by key.
func (dsk *Disk) String() string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k].String()))
	}
	return s.String()
}

// load all entries in the prefs file regardless of which Disk instance they
// belong to.
func (dsk *Disk) loadEntries() (map[string]string, error) {
	entries := make(map[string]string)

	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, curated.Errorf(NoPrefsFile, dsk.path)
		}
		return entries, curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s := scanner.Text()
		if s == WarningBoilerPlate {
			continue
		}

		kv := strings.SplitN(s, keySep, 2)
		if len(kv) == 2 {
			entries[kv[0]] = kv[1]
		}
	}

	return entries, nil
}

// HasEntry returns true if the prefs file contains the named key, regardless
// of which Disk instance is responsible for it.
func (dsk *Disk) HasEntry(key string) (bool, error) {
	entries, err := dsk.loadEntries()
	if err != nil {
		if curated.Is(err, NoPrefsFile) {
			return false, nil
		}
		return false, err
	}

	_, ok := entries[key]
	return ok, nil
}

// Save current values to the prefs file. Entries in the file belonging to
// other Disk instances are preserved, defunct entries are dropped.
func (dsk *Disk) Save() error {
	existing, err := dsk.loadEntries()
	if err != nil && !curated.Is(err, NoPrefsFile) {
		return err
	}

	for k, p := range dsk.entries {
		existing[k] = p.String()
	}

	for k := range existing {
		if isDefunct(k) {
			delete(existing, k)
		}
	}

	keys := make([]string, 0, len(existing))
	for k := range existing {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	fmt.Fprintln(f, WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(f, "%s%s%s\n", k, keySep, existing[k])
	}

	return nil
}

// Load values from the prefs file. Values in the command line stack take
// precedence over values in the file.
//
// If saveOnError is true then a missing or unreadable prefs file is replaced
// with a file containing the current values, rather than returning an error.
func (dsk *Disk) Load(saveOnError bool) error {
	entries, err := dsk.loadEntries()
	if err != nil {
		if saveOnError {
			return dsk.Save()
		}
		return err
	}

	for k, p := range dsk.entries {
		if v, ok := entries[k]; ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf("prefs: load: %v", err)
			}
		}
	}

	// command line values override the file
	for k, p := range dsk.entries {
		if ok, v := GetCommandLinePref(k); ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf("prefs: load: %v", err)
			}
		}
	}

	return nil
}
