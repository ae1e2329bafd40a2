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

// Package regression facilitates the regression testing of emulation code.
// By adding test results to a database, the tests can be rerun automatically
// and checked for consistency.
//
// Two main types of test are supported. First the state test. This runs a
// program for a set number of steps and records the hash of the machine's
// complete state, taken through the snapshot encoding. Any change to the
// behaviour of the processor core, the bus or the timers will show up as a
// different hash.
//
// The second test is the output test. This runs a program in the same way
// but hashes the stream of bytes the program writes to the console device.
// The state test is sensitive to every part of the machine, the output test
// only to what the program chooses to say, which makes it the better type
// for test programs that print their own results.
//
// The emulation is normalised before either test type runs, so results do
// not depend on the host machine or on user preferences.
package regression
