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

package cores

import (
	"fmt"
	"sort"

	"github.com/machina-emu/machina/curated"
)

// UnknownCore is the sentinel error returned by Create() when no core has
// been registered under the requested ID.
const UnknownCore = "unknown core: %s"

var registry = make(map[string]func() Core)

// Register makes a core available to Create() under the given ID.
// Registration normally happens from the core package's init() function. A
// duplicate ID is a programming error and causes a panic.
func Register(id string, create func() Core) {
	if create == nil {
		panic("cores: Register with nil create function")
	}
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("cores: Register called twice for %s", id))
	}
	registry[id] = create
}

// Create returns a new instance of the core registered under id.
func Create(id string) (Core, error) {
	create, ok := registry[id]
	if !ok {
		return nil, curated.Errorf(UnknownCore, id)
	}
	return create(), nil
}

// List returns the IDs of every registered core, sorted alphabetically.
func List() []string {
	l := make([]string, 0, len(registry))
	for id := range registry {
		l = append(l, id)
	}
	sort.Strings(l)
	return l
}
