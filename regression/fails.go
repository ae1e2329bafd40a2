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
	"io"
	"os"
	"sort"
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/resources"
)

// the FAILS keyword stands in for the keys that failed the previous run.
const failsKeyword = "FAILS"

// returned by addFailsToKeys() when the FAILS keyword is used but no fails
// have been recorded.
const noPreviousFails = "regression: no previous fails"

// sort a list of keys, removing duplicates and blank lines.
func compactKeys(keys []string) []string {
	sort.Strings(keys)

	c := make([]string, 0, len(keys))
	for _, v := range keys {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if len(c) > 0 && v == c[len(c)-1] {
			continue
		}
		c = append(c, v)
	}

	return c
}

// saveFails stores the keys of failed tests so that the next run can ask
// for them with the FAILS keyword. An empty list truncates the file.
func saveFails(keys []string) error {
	p, err := resources.JoinPath(regressionPath, failsFile)
	if err != nil {
		return curated.Errorf("regression: save fails: %v", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return curated.Errorf("regression: save fails: %v", err)
	}
	defer f.Close()

	for _, v := range compactKeys(keys) {
		if _, err := f.WriteString(v + "\n"); err != nil {
			return curated.Errorf("regression: save fails: %v", err)
		}
	}

	return nil
}

// loadFails retrieves the keys stored by saveFails(). A missing file is not
// an error, it means no fails have been recorded.
func loadFails() ([]string, error) {
	p, err := resources.JoinPath(regressionPath, failsFile)
	if err != nil {
		return nil, curated.Errorf("regression: load fails: %v", err)
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, curated.Errorf("regression: load fails: %v", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, curated.Errorf("regression: load fails: %v", err)
	}

	return compactKeys(strings.Split(string(b), "\n")), nil
}

// addFailsToKeys replaces the FAILS keyword in a list of filter keys with
// the keys recorded by the previous run.
func addFailsToKeys(keys []string) ([]string, error) {
	found := false

	c := make([]string, 0, len(keys))
	for _, v := range keys {
		if strings.ToUpper(v) == failsKeyword {
			found = true
			continue
		}
		c = append(c, v)
	}

	if !found {
		return keys, nil
	}

	prevFails, err := loadFails()
	if err != nil {
		return c, err
	}
	if len(prevFails) == 0 {
		return c, curated.Errorf(noPreviousFails)
	}

	return append(c, prevFails...), nil
}
