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

// Package dbgmem sits between the debugger and the machine's memory bus. In
// the context of the debugger it is more useful to address memory through
// this package than to use the bus package directly.
//
// The key type provided by the package is the AddressInfo type. It gathers
// everything the debugger might want to show about an address. The String()
// function provides a normalised presentation of that information.
//
// GetAddressInfo() is the basic way to create an AddressInfo. The address
// argument can be numeric or a string. Strings are resolved first against
// the symbols read from the program file, then against the names of the bus
// regions, and only then parsed as a number.
//
// The Peek() and Poke() functions access memory without triggering side
// effects. The Read() and Write() functions use the live bus path and so
// will trigger whatever side effects a mapped device has. All four accept
// symbols as well as numeric addresses.
package dbgmem
