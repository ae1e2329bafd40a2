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

// Package test contains helper functions to remove common boilerplate from
// package tests.
//
// The ExpectSuccess and ExpectFailure functions test a value for success and
// failure conditions appropriate to its type. The documentation for the
// expect() function describes the supported types.
//
// It is worth describing how these functions handle the nil type because it
// is not obvious. The nil type is considered a success, meaning
// ExpectFailure(t, nil) fails and ExpectSuccess(t, nil) succeeds. This is a
// consequence of how errors are usually written (nil indicating no error).
//
// ExpectEquality and ExpectInequality compare two values of the same
// comparable type. ExpectApproximate compares numeric values within a
// tolerance.
//
// The Demand versions of these functions treat a failed test as a fatality,
// ending the test immediately. Useful when the remainder of a test function
// depends on the demanded condition.
//
// The CompareWriter type implements io.Writer and is used to capture output
// for comparison against predefined strings. RingWriter and CappedWriter are
// io.Writer implementations that bound the amount of data retained, keeping
// the most recent and the earliest writes respectively.
package test
