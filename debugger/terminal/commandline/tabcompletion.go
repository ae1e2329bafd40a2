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
	"strings"
	"time"
)

// repeated completion requests within this duration cycle through the
// options from the previous request.
const cycleDuration = 500 * time.Millisecond

// TabCompletion keeps track of the most recent tab completion attempt.
type TabCompletion struct {
	cmds *Commands

	options    []string
	lastOption int

	// lastGuess is the last string generated and returned by the Complete()
	// function. we use it to help decide whether to start a new completion
	// session
	lastGuess string

	lastCompletionTime time.Time
}

// NewTabCompletion is the preferred method of initialisation for the
// TabCompletion type.
func NewTabCompletion(cmds *Commands) *TabCompletion {
	tc := &TabCompletion{cmds: cmds}
	tc.options = make([]string, 0, len(cmds.keys))
	return tc
}

// Complete transforms the input such that the last word in the input is
// expanded to meet the closest match in the list of allowed strings.
func (tc *TabCompletion) Complete(input string) string {
	p := tokeniseInput(input)
	if len(p) == 0 {
		return input
	}

	// if the input string is the same as the string last returned by this
	// function AND the request has arrived within cycleDuration, then cycle
	// to the next option
	if input == tc.lastGuess && time.Since(tc.lastCompletionTime) < cycleDuration {
		// if there was only one option then there is nothing to cycle to
		if len(tc.options) <= 1 {
			return input
		}

		// shorten the input by one word (getting rid of the last completion
		// effort) and step to the next option
		p = p[:len(p)-1]
		tc.lastOption++
		if tc.lastOption >= len(tc.options) {
			tc.lastOption = 0
		}
	} else {
		// a new completion session only makes sense when the user is
		// part-way through a word
		if strings.HasSuffix(input, " ") {
			return input
		}

		tc.options = tc.options[:0]
		tc.lastOption = 0

		// trigger is the word we're trying to complete on
		trigger := strings.ToUpper(p[len(p)-1])

		// the list of strings the trigger can match against
		var selection []string

		if len(p) == 1 {
			// completing the command word itself
			selection = tc.cmds.keys
		} else if args, ok := tc.cmds.cmds[strings.ToUpper(p[0])]; ok {
			// the argument the trigger corresponds to. only keyword
			// arguments can be completed
			n := len(p) - 2
			if n < len(args) && args[n].typ == argKeyword {
				selection = args[n].options
			}
		}

		p = p[:len(p)-1]

		for _, k := range selection {
			if len(trigger) <= len(k) && trigger == k[:len(trigger)] {
				tc.options = append(tc.options, k)
			}
		}

		// no completion options - return input unchanged
		if len(tc.options) == 0 {
			return input
		}
	}

	// add the guessed word to the end of the input-list and rejoin to form
	// the output
	p = append(p, tc.options[tc.lastOption])
	tc.lastGuess = strings.Join(p, " ") + " "

	// note the current time. we'll use this to help decide whether to cycle
	// through a list of options or to begin a new completion session
	tc.lastCompletionTime = time.Now()

	return tc.lastGuess
}

// Reset forgets the current completion session.
func (tc *TabCompletion) Reset() {
	tc.options = tc.options[:0]
	tc.lastOption = 0
	tc.lastGuess = ""
	tc.lastCompletionTime = time.Time{}
}
