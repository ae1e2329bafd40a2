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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. The function is
// similar to Errorf() in the fmt package, taking a formatting pattern and
// placeholder values, but the pattern is retained so the error can be
// identified later.
//
// The Is() function checks whether an error is a curated error with a
// specific pattern. For example:
//
//	e := curated.Errorf("value too large (%d)", a)
//	if curated.Is(e, "value too large (%d)") {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks whether the pattern appears
// anywhere in the error chain, rather than just at the head:
//
//	f := curated.Errorf("machine: %v", e)
//	curated.Is(f, "value too large (%d))	-> false
//	curated.Has(f, "value too large (%d)")	-> true
//
// The IsAny() function answers whether the error was created by
// curated.Errorf() at all. Errors not created this way can be thought of as
// 'uncurated' and therefore unexpected by the program.
//
// The Error() function normalises the message chain by removing duplicate
// adjacent parts. This alleviates the problem of when and how to wrap errors
// as they move up the call stack: wrapping the same context twice does not
// produce a stuttering message.
//
// For the purposes of this package an error chain is composed of parts
// separated by the sub-string ': ', as suggested on p239 of "The Go
// Programming Language" (Donovan, Kernighan).
//
// Sentinel patterns should be stored as const strings, suitably named and
// commented, next to the package that generates them.
package curated
