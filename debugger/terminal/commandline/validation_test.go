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

func compileTestCommands(t *testing.T) *commandline.Commands {
	t.Helper()

	cmds, err := commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"QUIT":     "",
		"BREAK":    "%*",
		"DROP":     "[BREAK|WATCH] %V",
		"LIST":     "[BREAKS|WATCHES]",
		"LOG":      "[CLEAR|]",
		"SNAPSHOT": "[SAVE|LOAD] %F",
		"STEP":     "[%V]",
		"WATCH":    "[READ|WRITE|] %*",
		"WRITE":    "%S %V",
	}, "HELP")
	test.DemandSuccess(t, err)

	return cmds
}

func TestValidation(t *testing.T) {
	cmds := compileTestCommands(t)

	test.ExpectSuccess(t, cmds.Validate("QUIT"))
	test.ExpectSuccess(t, cmds.Validate("quit"))

	// unknown command
	test.ExpectFailure(t, cmds.Validate("EXPLODE"))

	// empty input is fine
	test.ExpectSuccess(t, cmds.Validate(""))

	// too many arguments
	test.ExpectFailure(t, cmds.Validate("QUIT NOW"))
	test.ExpectFailure(t, cmds.Validate("DROP BREAK 1 2"))
}

func TestValidationArguments(t *testing.T) {
	cmds := compileTestCommands(t)

	// indeterminate arguments
	test.ExpectSuccess(t, cmds.Validate("BREAK 0x1000"))
	test.ExpectSuccess(t, cmds.Validate("BREAK 0x1000 0x2000 start"))
	test.ExpectFailure(t, cmds.Validate("BREAK"))

	// required keyword and numeric argument
	test.ExpectSuccess(t, cmds.Validate("DROP BREAK 1"))
	test.ExpectSuccess(t, cmds.Validate("drop watch 2"))
	test.ExpectFailure(t, cmds.Validate("DROP TRAP 1"))
	test.ExpectFailure(t, cmds.Validate("DROP BREAK"))
	test.ExpectFailure(t, cmds.Validate("DROP BREAK one"))

	// hex notation in numeric arguments. the dollar prefix is normalised
	// by the tokeniser
	test.ExpectSuccess(t, cmds.Validate("WRITE 0x4000 0xff"))
	test.ExpectSuccess(t, cmds.Validate("WRITE 0x4000 $ff"))
	test.ExpectFailure(t, cmds.Validate("WRITE 0x4000 maybe"))

	// required option list
	test.ExpectSuccess(t, cmds.Validate("LIST BREAKS"))
	test.ExpectFailure(t, cmds.Validate("LIST"))
	test.ExpectFailure(t, cmds.Validate("LIST TRAPS"))

	// optional option list
	test.ExpectSuccess(t, cmds.Validate("LOG"))
	test.ExpectSuccess(t, cmds.Validate("LOG CLEAR"))
	test.ExpectFailure(t, cmds.Validate("LOG FOO"))

	// optional keyword before an indeterminate list
	test.ExpectSuccess(t, cmds.Validate("WATCH 0x4000"))
	test.ExpectSuccess(t, cmds.Validate("WATCH READ 0x4000"))
	test.ExpectSuccess(t, cmds.Validate("WATCH WRITE 0x4000 0xff"))

	// optional numeric argument
	test.ExpectSuccess(t, cmds.Validate("STEP"))
	test.ExpectSuccess(t, cmds.Validate("STEP 10"))
	test.ExpectFailure(t, cmds.Validate("STEP lots"))
	test.ExpectFailure(t, cmds.Validate("STEP 10 10"))

	// missing filename
	test.ExpectSuccess(t, cmds.Validate("SNAPSHOT SAVE state.msnp"))
	test.ExpectFailure(t, cmds.Validate("SNAPSHOT SAVE"))
	test.ExpectFailure(t, cmds.Validate("SNAPSHOT state.msnp"))
}

func TestValidationHelp(t *testing.T) {
	cmds := compileTestCommands(t)

	test.ExpectSuccess(t, cmds.Validate("HELP"))
	test.ExpectSuccess(t, cmds.Validate("HELP BREAK"))
	test.ExpectSuccess(t, cmds.Validate("HELP HELP"))
	test.ExpectFailure(t, cmds.Validate("HELP FOO"))
}

func TestValidationTokensReset(t *testing.T) {
	cmds := compileTestCommands(t)

	// validation walks the token list but the caller expects to walk it
	// again from the beginning
	toks := commandline.TokeniseInput("DROP BREAK 1")
	test.ExpectSuccess(t, cmds.ValidateTokens(toks))

	tok, ok := toks.Get()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, tok, "DROP")
}
