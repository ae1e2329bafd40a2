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

package colorterm

import (
	"bufio"
	"io"
)

// readRune is the type returned by the runeReader channel. it boxes the rune
// together with any error encountered while reading it.
type readRune struct {
	r   rune
	err error
}

// runeReader is a channel of runes read from the input stream. decoupling
// reading from the TermRead() loop means the loop can select on other
// channels (signals in particular) while waiting for keyboard input.
type runeReader chan readRune

// initRuneReader starts a goroutine that reads runes from input for as long
// as the program is running. reads from the underlying stream cannot be
// interrupted so the goroutine is never explicitly stopped, it ends when the
// input stream is closed.
func initRuneReader(input io.Reader) runeReader {
	buf := bufio.NewReader(input)
	reader := make(runeReader)

	go func() {
		for {
			r, _, err := buf.ReadRune()
			reader <- readRune{r: r, err: err}
			if err != nil {
				return
			}
		}
	}()

	return reader
}
