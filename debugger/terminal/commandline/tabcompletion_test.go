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

func TestCompletion(t *testing.T) {
	cmds, err := commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"QUIT":  "",
		"RESET": "",
		"DROP":  "[BREAK|WATCH] %V",
	}, "")
	test.DemandSuccess(t, err)

	tbc := commandline.NewTabCompletion(cmds)

	// command word completion
	test.ExpectEquality(t, tbc.Complete("QU"), "QUIT ")
	tbc.Reset()

	// keyword argument completion
	test.ExpectEquality(t, tbc.Complete("DROP BR"), "DROP BREAK ")
	tbc.Reset()

	// case insensitive trigger, completed option is upper case
	test.ExpectEquality(t, tbc.Complete("drop wa"), "drop WATCH ")
	tbc.Reset()

	// no completion for numeric arguments
	test.ExpectEquality(t, tbc.Complete("DROP BREAK 1"), "DROP BREAK 1")
	tbc.Reset()

	// no completion when the input ends with a space
	test.ExpectEquality(t, tbc.Complete("DROP "), "DROP ")
	tbc.Reset()

	// no options at all
	test.ExpectEquality(t, tbc.Complete("ZZ"), "ZZ")
}

func TestCompletionCycling(t *testing.T) {
	cmds, err := commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"RUN":   "",
		"RESET": "",
	}, "")
	test.DemandSuccess(t, err)

	tbc := commandline.NewTabCompletion(cmds)

	// both commands match the trigger. repeated completion of the previous
	// guess cycles through the options and wraps around
	first := tbc.Complete("R")
	second := tbc.Complete(first)
	test.ExpectInequality(t, second, first)
	third := tbc.Complete(second)
	test.ExpectEquality(t, third, first)
}
