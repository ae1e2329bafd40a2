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
	"strconv"
	"strings"

	"github.com/machina-emu/machina/curated"
)

// Validate input string against the command definitions.
func (cmds *Commands) Validate(input string) error {
	return cmds.ValidateTokens(TokeniseInput(input))
}

// ValidateTokens is like Validate() but works on tokens rather than an
// input string.
//
// The token traversal is reset on entry and again before returning, so the
// caller can walk the tokens from the beginning once validation has passed.
func (cmds *Commands) ValidateTokens(tokens *Tokens) error {
	tokens.Reset()
	defer tokens.Reset()

	cmd, ok := tokens.Get()
	if !ok {
		return nil
	}
	cmd = strings.ToUpper(cmd)

	args, ok := cmds.cmds[cmd]
	if !ok {
		return curated.Errorf("unrecognised command (%s)", cmd)
	}

	// length checks before the type checks. too few arguments names the
	// first argument that is missing
	if tokens.Remaining() > args.maximumLen() {
		return curated.Errorf("too many arguments for %s", cmd)
	}
	if tokens.Remaining() < args.requiredLen() {
		return curated.Errorf("%s required for %s", args[tokens.Remaining()].typ, cmd)
	}

	// type check the tokens that are present
	for _, arg := range args {
		tok, ok := tokens.Get()
		if !ok {
			break
		}

		switch arg.typ {
		case argKeyword:
			if !arg.match(tok) {
				if arg.required {
					return curated.Errorf("unrecognised argument (%s) for %s", tok, cmd)
				}

				// the optional keyword is absent. try the token against
				// the next argument
				tokens.Unget()
			}

		case argValue:
			if _, err := strconv.ParseUint(tok, 0, 64); err != nil {
				if arg.required {
					return curated.Errorf("numeric argument required for %s (%s)", cmd, tok)
				}

				// the optional value is absent. try the token against the
				// next argument
				tokens.Unget()
			}

		case argFile, argString:
			// any token will do

		case argIndeterminate:
			tokens.End()
		}
	}

	if !tokens.IsEnd() {
		tok, _ := tokens.Get()

		// special handling for the help command
		if cmd == cmds.helpCommand {
			return curated.Errorf("no help for %s", strings.ToUpper(tok))
		}

		return curated.Errorf("unrecognised argument (%s) for %s", tok, cmd)
	}

	return nil
}
