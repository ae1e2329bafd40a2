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

// Package random should be used in preference to the math/rand package when a
// random number is required inside the emulation.
//
// There are two functions belonging to the Random type that return random
// numbers:
//
// Rewindable() returns numbers based on the emulation's cycle counter. It
// will always return the same number at the same point in the emulation. As
// such it is compatible with the rewind system.
//
// NoRewind() returns random numbers regardless of the emulation's cycle
// counter. It is therefore not compatible with the rewind system.
//
// If the same random numbers are required every single time then set ZeroSeed
// to true. This is useful for testing and regression purposes.
package random
