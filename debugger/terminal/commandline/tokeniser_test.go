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

package commandline_test

import (
	"testing"

	"github.com/machina-emu/machina/debugger/terminal/commandline"
	"github.com/machina-emu/machina/test"
)

func TestTokeniser(t *testing.T) {
	toks := commandline.TokeniseInput("  BREAK   0x1000  $2f00 ")

	test.ExpectEquality(t, toks.Remaining(), 3)

	tok, ok := toks.Get()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, tok, "BREAK")

	tok, _ = toks.Get()
	test.ExpectEquality(t, tok, "0x1000")

	// dollar prefix hex is normalised to 0x notation
	tok, _ = toks.Get()
	test.ExpectEquality(t, tok, "0x2f00")

	_, ok = toks.Get()
	test.ExpectEquality(t, ok, false)
	test.ExpectSuccess(t, toks.IsEnd())
}

func TestTokensTraversal(t *testing.T) {
	toks := commandline.TokeniseInput("POKE 0x4000 1 2 3")

	toks.Get()
	toks.Get()
	test.ExpectEquality(t, toks.Remainder(), "1 2 3")
	test.ExpectEquality(t, toks.Remaining(), 3)

	toks.Unget()
	tok, _ := toks.Peek()
	test.ExpectEquality(t, tok, "0x4000")

	toks.Reset()
	tok, _ = toks.Get()
	test.ExpectEquality(t, tok, "POKE")

	toks.End()
	test.ExpectSuccess(t, toks.IsEnd())
}

func TestTokensReplaceEnd(t *testing.T) {
	toks := commandline.TokeniseInput("SCRIPT recording")
	toks.ReplaceEnd("playback")
	test.ExpectEquality(t, toks.String(), "SCRIPT playback")
}
