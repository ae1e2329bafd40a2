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

package commandline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/machina-emu/machina/curated"
)

// CommandTemplate maps command keywords to the template of their arguments.
//
// The template is a space separated list of elements, each element being
// one of:
//
//	%F        a filename
//	%S        a string (a symbol or an address, for example)
//	%V        a numeric value
//	[%S]      an optional string
//	[%V]      an optional numeric value
//	%*        any number of remaining arguments (must be last)
//	[A|B|C]   one of the listed keywords. a trailing empty alternative,
//	          [A|B|], makes the argument optional
//
// A command that takes no arguments has the empty string as its template.
type CommandTemplate map[string]string

// CompileCommandTemplate creates a new instance of Commands from an
// instance of CommandTemplate. If no help command is required, use the
// empty string for the helpKeyword argument.
func CompileCommandTemplate(template CommandTemplate, helpKeyword string) (*Commands, error) {
	commands := &Commands{
		cmds:   make(map[string]argList),
		usages: make(map[string]string),
		helps:  make(map[string]string),
	}

	for k, v := range template {
		k = strings.ToUpper(k)
		if _, ok := commands.cmds[k]; ok {
			return nil, curated.Errorf("commandline: duplicate keyword (%s)", k)
		}

		args, err := compileArgList(v)
		if err != nil {
			return nil, curated.Errorf("commandline: %s: %v", k, err)
		}

		commands.cmds[k] = args
		commands.usages[k] = v
		commands.keys = append(commands.keys, k)
	}

	if helpKeyword != "" {
		helpKeyword = strings.ToUpper(helpKeyword)
		if _, ok := commands.cmds[helpKeyword]; ok {
			return nil, curated.Errorf("commandline: duplicate keyword (%s)", helpKeyword)
		}
		commands.helpCommand = helpKeyword
		commands.keys = append(commands.keys, helpKeyword)
	}

	sort.Strings(commands.keys)

	// the help command takes any of the other commands, or itself, as an
	// optional argument. the option list must be built after the keys list
	// is complete
	if helpKeyword != "" {
		commands.cmds[helpKeyword] = argList{
			commandArg{typ: argKeyword, required: false, options: commands.keys},
		}
	}

	// sizing information for the help overview
	longest := 0
	for _, k := range commands.keys {
		if len(k) > longest {
			longest = len(k)
		}
	}
	commands.helpCols = 80 / (longest + 3)
	commands.helpColFmt = fmt.Sprintf("%%%ds", longest+3)

	return commands, nil
}

// AddHelp attaches help text to the compiled commands. The map is keyed by
// command keyword.
func (cmds *Commands) AddHelp(helps map[string]string) {
	for k, v := range helps {
		cmds.helps[strings.ToUpper(k)] = v
	}
}

// compileArgList converts a single command template into an argList.
func compileArgList(template string) (argList, error) {
	args := argList{}

	for _, elem := range strings.Fields(template) {
		// only the last argument can soak up an indeterminate number of
		// tokens
		if len(args) > 0 && args[len(args)-1].typ == argIndeterminate {
			return nil, fmt.Errorf("%%* must be the last argument")
		}

		switch {
		case elem == "%F":
			args = append(args, commandArg{typ: argFile, required: true})

		case elem == "%S":
			args = append(args, commandArg{typ: argString, required: true})

		case elem == "%V":
			args = append(args, commandArg{typ: argValue, required: true})

		case elem == "[%S]":
			args = append(args, commandArg{typ: argString, required: false})

		case elem == "[%V]":
			args = append(args, commandArg{typ: argValue, required: false})

		case elem == "%*":
			args = append(args, commandArg{typ: argIndeterminate, required: true})

		case strings.HasPrefix(elem, "["):
			if !strings.HasSuffix(elem, "]") {
				return nil, fmt.Errorf("unclosed option list (%s)", elem)
			}

			options := strings.Split(elem[1:len(elem)-1], "|")
			if len(options) == 1 {
				// note: Split() returns a slice containing only the input
				// string if the separator cannot be found. an option list
				// with no alternatives is meaningless
				return nil, fmt.Errorf("not an option list (%s)", elem)
			}

			// an empty alternative makes the argument optional
			req := true
			compiled := make([]string, 0, len(options))
			for _, o := range options {
				if o == "" {
					req = false
					continue
				}
				compiled = append(compiled, strings.ToUpper(o))
			}
			if len(compiled) == 0 {
				return nil, fmt.Errorf("empty option list (%s)", elem)
			}

			args = append(args, commandArg{typ: argKeyword, required: req, options: compiled})

		default:
			return nil, fmt.Errorf("unrecognised template element (%s)", elem)
		}
	}

	return args, nil
}
