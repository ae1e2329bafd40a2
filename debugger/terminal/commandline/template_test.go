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
	"strings"
	"testing"

	"github.com/machina-emu/machina/debugger/terminal/commandline"
	"github.com/machina-emu/machina/test"
)

func TestCompile(t *testing.T) {
	template := commandline.CommandTemplate{
		"QUIT":  "",
		"LOAD":  "%F",
		"STEP":  "%*",
		"DROP":  "[BREAK|WATCH] %V",
		"WATCH": "[READ|WRITE|] %*",
	}

	cmds, err := commandline.CompileCommandTemplate(template, "HELP")
	test.DemandSuccess(t, err)

	// keywords are sorted and include the help command
	keys := cmds.Keywords()
	test.ExpectEquality(t, len(keys), 6)
	test.ExpectEquality(t, keys[0], "DROP")
	test.ExpectEquality(t, keys[1], "HELP")
	test.ExpectEquality(t, keys[5], "WATCH")
}

func TestCompileErrors(t *testing.T) {
	// unclosed option list
	_, err := commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"LIST": "[BREAKS|WATCHES",
	}, "")
	test.ExpectFailure(t, err)

	// option list with no alternatives
	_, err = commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"LIST": "[BREAKS]",
	}, "")
	test.ExpectFailure(t, err)

	// option list that is all empty alternatives
	_, err = commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"LIST": "[|]",
	}, "")
	test.ExpectFailure(t, err)

	// unrecognised placeholder
	_, err = commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"LOAD": "%Q",
	}, "")
	test.ExpectFailure(t, err)

	// %* must be the last argument
	_, err = commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"POKE": "%* %V",
	}, "")
	test.ExpectFailure(t, err)

	// help keyword clashing with a command
	_, err = commandline.CompileCommandTemplate(commandline.CommandTemplate{
		"HELP": "",
	}, "HELP")
	test.ExpectFailure(t, err)
}

func TestHelp(t *testing.T) {
	template := commandline.CommandTemplate{
		"QUIT": "",
		"LOAD": "%F",
	}

	cmds, err := commandline.CompileCommandTemplate(template, "HELP")
	test.DemandSuccess(t, err)

	cmds.AddHelp(map[string]string{
		"QUIT": "quits the debugger",
		"LOAD": "loads a program",
	})

	// overview lists every keyword
	overview := cmds.HelpOverview()
	test.ExpectSuccess(t, strings.Contains(overview, "QUIT"))
	test.ExpectSuccess(t, strings.Contains(overview, "LOAD"))
	test.ExpectSuccess(t, strings.Contains(overview, "HELP"))

	// help for a command with a usage template
	h := cmds.Help("load")
	test.ExpectSuccess(t, strings.Contains(h, "loads a program"))
	test.ExpectSuccess(t, strings.Contains(h, "Usage: LOAD %F"))

	// no usage line for commands without arguments
	h = cmds.Help("QUIT")
	test.ExpectSuccess(t, strings.Contains(h, "quits the debugger"))
	test.ExpectSuccess(t, !strings.Contains(h, "Usage"))

	// unknown keyword
	h = cmds.Help("FOO")
	test.ExpectEquality(t, h, "no help for FOO")
}
