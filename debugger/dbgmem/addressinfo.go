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

package dbgmem

import (
	"fmt"
	"strings"
)

// AddressInfo is returned by dbgmem functions. The String() function
// provides a normalised presentation of the information.
type AddressInfo struct {
	Address uint16

	// the symbol the address was resolved from, or the symbol that names the
	// address. the empty string if there is no such symbol
	Symbol string

	// the name of the bus region containing the address, or "unmapped"
	Area string

	// whether the address was resolved in a read or a write context
	Read bool

	// the data at the address. if peeked is false then data is not valid
	Peeked bool
	Data   uint8
}

func (ai AddressInfo) String() string {
	s := strings.Builder{}

	s.WriteString(fmt.Sprintf("%#04x", ai.Address))

	if ai.Symbol != "" {
		s.WriteString(fmt.Sprintf(" (%s)", ai.Symbol))
	}

	s.WriteString(fmt.Sprintf(" (%s)", ai.Area))

	if ai.Peeked {
		s.WriteString(fmt.Sprintf(" -> %#02x", ai.Data))
	}

	return s.String()
}
