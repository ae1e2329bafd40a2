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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/machina-emu/machina/prefs"
	"github.com/machina-emu/machina/test"
)

func cmpPrefsFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	if err != nil {
		t.Errorf("error reading prefs file: %v", err)
		return
	}

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)

	if expected != string(data) {
		t.Errorf("expected data and data in prefs file do not match")
		fmt.Println("expected:")
		fmt.Println(expected)
		fmt.Println("\nin file:")
		fmt.Println(string(data))
	}
}

func TestBool(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "machina.prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	var x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))
	test.ExpectSuccess(t, dsk.Add("testC", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("true"))

	test.ExpectSuccess(t, dsk.Save())
	cmpPrefsFile(t, fn, "test :: true\ntestB :: false\ntestC :: true\n")
}

func TestString(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "machina.prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.String
	test.ExpectSuccess(t, dsk.Add("foo", &v))

	test.ExpectSuccess(t, v.Set("bar"))
	test.ExpectSuccess(t, dsk.Save())
	cmpPrefsFile(t, fn, "foo :: bar\n")

	// max length truncates the stored value
	v.SetMaxLen(2)
	test.ExpectEquality(t, v.String(), "ba")
}

func TestInt(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "machina.prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	test.ExpectSuccess(t, dsk.Add("num", &v))

	test.ExpectSuccess(t, v.Set(10))
	test.ExpectSuccess(t, v.Set("99"))
	test.ExpectFailure(t, v.Set("not a number"))
	test.ExpectEquality(t, v.Get().(int), 99)

	test.ExpectSuccess(t, dsk.Save())
	cmpPrefsFile(t, fn, "num :: 99\n")
}

func TestLoadSave(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "machina.prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	var w prefs.Int
	test.ExpectSuccess(t, dsk.Add("flag", &v))
	test.ExpectSuccess(t, dsk.Add("num", &w))
	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set(42))
	test.ExpectSuccess(t, dsk.Save())

	// a second disk instance pointing at the same file sees the saved values
	dsk2, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v2 prefs.Bool
	var w2 prefs.Int
	test.ExpectSuccess(t, dsk2.Add("flag", &v2))
	test.ExpectSuccess(t, dsk2.Add("num", &w2))
	test.ExpectSuccess(t, dsk2.Load(false))
	test.ExpectEquality(t, v2.Get().(bool), true)
	test.ExpectEquality(t, w2.Get().(int), 42)

	// entries belonging to other disk instances survive a save
	dsk3, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var x prefs.String
	test.ExpectSuccess(t, dsk3.Add("other", &x))
	test.ExpectSuccess(t, x.Set("value"))
	test.ExpectSuccess(t, dsk3.Save())
	cmpPrefsFile(t, fn, "flag :: true\nnum :: 42\nother :: value\n")
}

func TestLoadMissingFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "machina.prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("flag", &v))

	// without saveOnError the missing file is an error
	test.ExpectFailure(t, dsk.Load(false))

	// with saveOnError the file is created with current values
	test.ExpectSuccess(t, dsk.Load(true))
	cmpPrefsFile(t, fn, "flag :: false\n")
}

func TestCommandLineOverride(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "machina.prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("flag", &v))
	test.ExpectSuccess(t, v.Set(false))
	test.ExpectSuccess(t, dsk.Save())

	prefs.PushCommandLineStack("flag::true")
	defer prefs.PopCommandLineStack()

	test.ExpectSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, v.Get().(bool), true)
}
