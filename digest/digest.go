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

// Package digest produces cryptographic hashes of machine activity. The
// hashes can be used to compare emulation runs; if a new hash differs from a
// previously recorded value then something has changed. The regression
// package uses this as the basis of its tests.
//
// The State() function hashes a machine's complete state through the
// snapshot encoding. The Output type hashes a stream of console output as it
// is written.
//
// Note that the use of SHA-1 is fine for this application because this is
// not a cryptographic task.
package digest

// Digest implementations return a cryptographic hash in response to a Hash()
// request. How the hash is generated is the business of the implementation.
type Digest interface {
	Hash() string
	ResetDigest()
}
