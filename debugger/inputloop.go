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

package debugger

import (
	"io"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/script"
	"github.com/machina-emu/machina/debugger/terminal"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/hardware/cores"
	"github.com/machina-emu/machina/hardware/execution"
)

// the number of iterations of the input loop between event checks.
// checking for events every iteration would slow a moving emulation down
// considerably.
const inputCtDelay = 50

// inputLoop is the heart of the debugger. control stays inside it until
// the session ends. a second instance of the loop runs during script
// playback, with the script as the inputter.
func (dbg *Debugger) inputLoop(inputter terminal.Input) error {
	inputCt := 0

	for dbg.running {
		// check for events every inputCtDelay iterations
		inputCt++
		if inputCt >= inputCtDelay {
			inputCt = 0
			if err := dbg.checkEvents(inputter); err != nil {
				dbg.printLine(terminal.StyleError, "%s", err)
				dbg.halting.halt = true
			}
			if !dbg.running {
				break // for loop
			}
		}

		// decide whether the emulation should continue moving. a machine
		// in a terminal state halts unconditionally, there is nothing left
		// to step
		haltEmulation := dbg.halting.halt ||
			dbg.lastStepError ||
			dbg.haltImmediately ||
			dbg.mc.State().Terminal()

		// a STEP command with a count keeps the emulation moving until the
		// count is exhausted. RUN keeps it moving regardless
		if !dbg.runUntilHalt && dbg.stepsRemaining <= 0 {
			haltEmulation = true
		}

		if haltEmulation {
			// the emulation has just halted if continueEmulation is still
			// set from the previous command
			if dbg.continueEmulation && dbg.commandOnHalt != "" {
				if _, err := dbg.parseInput(dbg.commandOnHalt, false, true); err != nil {
					dbg.printLine(terminal.StyleError, "%s", err)
				}
			}

			// reset halt conditions before the next command
			dbg.halting.reset()
			dbg.haltImmediately = false
			dbg.runUntilHalt = false
			dbg.continueEmulation = false
			dbg.lastStepError = false
			dbg.stepsRemaining = 0

			// get user input
			inputLen, err := inputter.TermRead(dbg.input, dbg.buildPrompt(), dbg.events)

			// errors returned by TermRead() can be rich. the following
			// block interprets the error carefully and proceeds
			// appropriately
			if err != nil {
				if !curated.IsAny(err) {
					switch err {
					case io.EOF:
						// treat EOF events the same as UserQuit events
						err = curated.Errorf(terminal.UserQuit)
					default:
						// the error is probably serious. exit the input
						// loop with the error
						return err
					}
				}

				if curated.Is(err, terminal.UserInterrupt) {
					// user interrupts are used to quit, or to abandon a
					// script recording
					dbg.handleInterrupt(inputter)
				} else if curated.Is(err, terminal.UserQuit) {
					dbg.running = false
				} else if curated.Is(err, script.ScriptEnd) {
					// the script has run out of commands. that is not an
					// error
					dbg.printLine(terminal.StyleFeedback, "%s", err)
					return nil
				} else {
					return err
				}
			}

			// TermRead can return zero bytes read. filter that out before
			// parsing anything
			if inputLen > 0 {
				dbg.continueEmulation, err = dbg.parseInput(string(dbg.input[:inputLen-1]), inputter.IsInteractive(), false)
				if err != nil {
					dbg.printLine(terminal.StyleError, "%s", err)
				}
			}

			continue // for loop
		}

		// the emulation is moving
		if err := dbg.step(); err != nil {
			return err
		}
		if dbg.stepsRemaining > 0 {
			dbg.stepsRemaining--
		}
	}

	return nil
}

// step the machine once, directing the outcome to the terminal. an error
// return means the input loop itself should end, errors in the machine
// are reported to the user instead.
func (dbg *Debugger) step() error {
	var err error

	// a breakpoint that has just halted the emulation would halt it again
	// without any progress being made. step over it with the unchecked
	// form and return to checked stepping afterwards
	if dbg.stepOverBreakpoint >= 0 && int(dbg.mc.Regs.PC()) == dbg.stepOverBreakpoint {
		dbg.stepOverBreakpoint = -1
		err = dbg.mc.StepInstruction()
	} else {
		dbg.stepOverBreakpoint = -1
		err = dbg.mc.Step()
	}

	if err != nil {
		if !curated.IsAny(err) {
			return err
		}

		// a breakpoint has matched. the instruction at the breakpoint
		// address has not run and the machine has not changed at all
		if curated.Is(err, hardware.Breakpoint) {
			dbg.printLine(terminal.StyleFeedback, "%s", err)
			dbg.stepOverBreakpoint = int(dbg.mc.Regs.PC())
			dbg.halting.halt = true
			return nil
		}

		// a software break has executed like any other instruction. the
		// machine can continue afterwards if the user wants it to
		if curated.Is(err, cores.SoftwareBreak) {
			dbg.rwnd.Record()
			dbg.lastResult = dbg.mc.FormatResult(dbg.mc.LastResult())
			dbg.printLine(terminal.StyleStep, "%s", dbg.lastResult)
			dbg.printLine(terminal.StyleFeedback, "%s", err)
			dbg.halting.halt = true
			return nil
		}

		// any other error means the machine has faulted. a faulted machine
		// stays around for inspection, the error does not end the
		// debugging session
		dbg.lastStepError = true
		dbg.printLine(terminal.StyleError, "%s", err)
		return nil
	}

	// record the new state in the rewind history and check the watch list
	dbg.rwnd.Record()
	dbg.lastResult = dbg.mc.FormatResult(dbg.mc.LastResult())
	dbg.halting.check()

	// print the instruction result when single stepping. also when a
	// running emulation has just been halted by a watch, the result shows
	// the instruction responsible
	if !dbg.runUntilHalt || dbg.halting.halt {
		dbg.printLine(terminal.StyleStep, "%s", dbg.lastResult)
	}

	if dbg.mc.State() == execution.Halted {
		dbg.printLine(terminal.StyleFeedback, "machine halted")
	}

	if dbg.commandOnStep != "" && !dbg.runUntilHalt {
		if _, err := dbg.parseInput(dbg.commandOnStep, false, true); err != nil {
			dbg.printLine(terminal.StyleError, "%s", err)
		}
	}

	return nil
}

// checkEvents monitors the signal channel and asks the terminal whether
// any input is waiting. input arriving while the emulation is moving is a
// request to halt.
func (dbg *Debugger) checkEvents(inputter terminal.Input) error {
	select {
	case sig := <-dbg.events.Signal:
		if dbg.events.SignalHandler != nil {
			err := dbg.events.SignalHandler(sig)
			if err != nil {
				if curated.Is(err, terminal.UserInterrupt) {
					dbg.halting.halt = true
					return nil
				}
				return err
			}
		}
	default:
	}

	if inputter.TermReadCheck() {
		dbg.halting.halt = true
	}

	return nil
}

// interrupt signals need some special handling depending on the current
// state of the debugger.
func (dbg *Debugger) handleInterrupt(inputter terminal.Input) {
	if dbg.scriptScribe.IsActive() {
		// a script recording is in progress so we take the interrupt to
		// mean "end the recording"
		if _, err := dbg.parseInput("SCRIPT END", inputter.IsInteractive(), false); err != nil {
			dbg.printLine(terminal.StyleError, "%s", err)
		}
		return
	}

	if !inputter.IsInteractive() {
		// there is nobody to ask for confirmation. quit the debugger as
		// soon as possible
		dbg.running = false
		return
	}

	// terminal is interactive so we ask for quit confirmation
	confirm := make([]byte, 1)
	_, err := inputter.TermRead(confirm,
		terminal.Prompt{
			Content: "really quit (y/n) ",
			Type:    terminal.PromptTypeConfirm,
		}, dbg.events)
	if err != nil {
		if !curated.IsAny(err) {
			dbg.printLine(terminal.StyleError, "%s", err)
		}

		// another interrupt during the confirmation is the same as a 'y'
		// response
		if curated.Is(err, terminal.UserInterrupt) {
			confirm[0] = 'y'
		}
	}

	if confirm[0] == 'y' || confirm[0] == 'Y' {
		dbg.running = false
	}
}
