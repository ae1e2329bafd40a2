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

// Package peripherals implements the IO devices of the Mico console. Each
// device satisfies the bus.Device interface and is mapped into the IO page
// by the machine builder in the mico package.
//
// The devices follow a shared set of conventions. Register offsets beyond
// the documented registers read as zero and ignore writes, no device ever
// faults the machine. Events that should interrupt the program are raised
// through a function the device was constructed with, keeping this package
// free of any dependency on the timer subsystem.
package peripherals
