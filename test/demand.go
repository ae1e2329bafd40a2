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

package test

import "testing"

// DemandEquality tests equality between one value and another. Unlike
// ExpectEquality a failure is a test fatality.
//
// Useful when later parts of the test depend on the tested values being
// correct. For example, checking the lengths of two slices before iterating
// over them in unison.
func DemandEquality[T comparable](t *testing.T, v T, expectedValue T, tags ...any) {
	t.Helper()

	if v != expectedValue {
		t.Fatalf("%sequality test of type %T failed: '%v' does not equal '%v'", id(tags...), v, v, expectedValue)
	}
}

// DemandSuccess tests whether v is a 'success' value for its type. Unlike
// ExpectSuccess a failure is a test fatality. See the expect() function for
// supported types.
func DemandSuccess(t *testing.T, v any, tags ...any) {
	t.Helper()

	if !expect(t, v, tags...) {
		t.Fatalf("%sa success value is demanded for type %T (%v)", id(tags...), v, v)
	}
}

// DemandFailure tests whether v is a 'failure' value for its type. Unlike
// ExpectFailure a failure is a test fatality. See the expect() function for
// supported types.
func DemandFailure(t *testing.T, v any, tags ...any) {
	t.Helper()

	if expect(t, v, tags...) {
		t.Fatalf("%sa failure value is demanded for type %T", id(tags...), v)
	}
}

// DemandImplements tests whether an instance is an implementation of type T.
func DemandImplements[T any](t *testing.T, instance any, implements T, tags ...any) {
	t.Helper()

	if _, ok := instance.(T); !ok {
		t.Fatalf("%simplementation test failed: type %T does not implement %T", id(tags...), instance, implements)
	}
}
