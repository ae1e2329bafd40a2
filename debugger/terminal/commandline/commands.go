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
	"strings"
)

// Commands is the compiled form of a CommandTemplate. Instances are created
// with the CompileCommandTemplate() function.
type Commands struct {
	cmds map[string]argList

	// command keywords in alphabetical order. used for the help overview,
	// for tab completion of the first word of the input and for the
	// argument options of the help command itself
	keys []string

	// the original template string for each keyword. displayed as part of
	// the command's help
	usages map[string]string

	helpCommand string
	helps       map[string]string
	helpCols    int
	helpColFmt  string
}

// argType defines the expected argument type.
type argType int

// The possible values for argType.
const (
	argKeyword argType = iota
	argFile
	argValue
	argString
	argIndeterminate
)

func (typ argType) String() string {
	switch typ {
	case argKeyword:
		return "keyword"
	case argFile:
		return "filename"
	case argValue:
		return "numeric argument"
	}
	return "argument"
}

// commandArg specifies the type and properties of an individual argument.
type commandArg struct {
	typ      argType
	required bool

	// the list of allowed values for an argKeyword argument
	options []string
}

// match returns true if the token is one of the allowed keyword options.
func (a commandArg) match(tok string) bool {
	tok = strings.ToUpper(tok)
	for _, o := range a.options {
		if tok == o {
			return true
		}
	}
	return false
}

// argList is the sequence of arguments for a single command.
type argList []commandArg

// maximumLen returns the maximum number of arguments allowed for the
// command.
func (a argList) maximumLen() int {
	if len(a) == 0 {
		return 0
	}
	if a[len(a)-1].typ == argIndeterminate {
		return int(^uint(0) >> 1)
	}
	return len(a)
}

// requiredLen returns the number of arguments required for the command. in
// other words, the command may allow more but it must have at least the
// returned number.
func (a argList) requiredLen() (m int) {
	for i := 0; i < len(a); i++ {
		if !a[i].required {
			return
		}
		m++
	}
	return
}

// Keywords returns the list of command keywords in alphabetical order.
func (cmds *Commands) Keywords() []string {
	return cmds.keys
}

// String returns the verbose representation of the compiled commands. Use
// this only for testing/validation purposes. HelpOverview() is more useful
// to the end user.
func (cmds *Commands) String() string {
	s := strings.Builder{}
	for _, k := range cmds.keys {
		if u := cmds.usages[k]; u != "" {
			s.WriteString(fmt.Sprintf("%s %s\n", k, u))
		} else {
			s.WriteString(fmt.Sprintf("%s\n", k))
		}
	}
	return strings.TrimRight(s.String(), "\n")
}

// HelpOverview returns a columnised list of all command keywords.
func (cmds *Commands) HelpOverview() string {
	s := strings.Builder{}
	for c, k := range cmds.keys {
		s.WriteString(fmt.Sprintf(cmds.helpColFmt, k))
		if c%cmds.helpCols == cmds.helpCols-1 {
			s.WriteString("\n")
		}
	}
	return strings.TrimRight(s.String(), "\n")
}

// Help returns the help text for the command, and the usage for the command
// if a template was defined for it.
func (cmds *Commands) Help(keyword string) string {
	keyword = strings.ToUpper(keyword)

	helpTxt, ok := cmds.helps[keyword]
	if !ok {
		return fmt.Sprintf("no help for %s", keyword)
	}

	s := strings.Builder{}
	s.WriteString(helpTxt)
	if u := cmds.usages[keyword]; u != "" {
		s.WriteString(fmt.Sprintf("\n\n  Usage: %s %s", keyword, u))
	}

	return s.String()
}
