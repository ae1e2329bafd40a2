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

package digest

import (
	"crypto/sha1"
	"fmt"
)

// the length of the buffer isn't critical but it must be longer than
// sha1.Size bytes.
const outputBufferLength = 1024 + sha1.Size

// to allow digests of output streams longer than outputBufferLength, the
// previous digest value is stuffed into the head of the buffer and included
// in the next sum.
const outputBufferStart = sha1.Size

// Output is an io.Writer that maintains a running hash of everything written
// to it. Attach to a console device with SetEcho() to fingerprint a
// program's output.
type Output struct {
	digest   [sha1.Size]byte
	buffer   []uint8
	bufferCt int
}

// NewOutput is the preferred method of initialisation for the Output type.
func NewOutput() *Output {
	dig := &Output{}
	dig.buffer = make([]uint8, outputBufferLength)
	dig.bufferCt = outputBufferStart
	return dig
}

// Hash implements the digest.Digest interface. Any buffered bytes are folded
// into the digest value before it is returned.
func (dig *Output) Hash() string {
	dig.flush()
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the digest.Digest interface.
func (dig *Output) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.bufferCt = outputBufferStart
}

// Write implements the io.Writer interface.
func (dig *Output) Write(p []byte) (int, error) {
	for _, b := range p {
		dig.buffer[dig.bufferCt] = b
		dig.bufferCt++
		if dig.bufferCt >= len(dig.buffer) {
			dig.flush()
		}
	}
	return len(p), nil
}

// fold the buffered bytes into the digest value. the previous digest is at
// the head of the buffer so the new value chains from it.
func (dig *Output) flush() {
	if dig.bufferCt == outputBufferStart {
		return
	}
	copy(dig.buffer, dig.digest[:])
	dig.digest = sha1.Sum(dig.buffer[:dig.bufferCt])
	dig.bufferCt = outputBufferStart
}
