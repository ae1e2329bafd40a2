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
	"os"
	"os/signal"
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/dbgmem"
	"github.com/machina-emu/machina/debugger/script"
	"github.com/machina-emu/machina/debugger/terminal"
	"github.com/machina-emu/machina/debugger/terminal/commandline"
	"github.com/machina-emu/machina/disassembly"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/loader"
	"github.com/machina-emu/machina/logger"
	"github.com/machina-emu/machina/rewind"
)

// Debugger is the basic debugging frontend for the emulation.
type Debugger struct {
	// the machine being debugged
	mc *mico.Mico

	// the program attached to the machine
	prog loader.Loader

	// the terminal the user is talking to us with
	term terminal.Terminal

	// events is monitored by the terminal during TermRead() and by the
	// input loop while the emulation is moving
	events *terminal.ReadEvents

	// symbolic access to the machine's memory
	dbgmem *dbgmem.DbgMem

	// the disassembly of the loaded program
	disasm *disassembly.Disassembly

	// the rewind history. a snapshot is recorded after every step
	rwnd *rewind.Rewind

	// halting coordinates the conditions that halt a moving emulation
	halting *haltCoordination

	// scriptScribe records user input to a script file
	scriptScribe script.Scribe

	// the auto-commands that run when the emulation halts and after every
	// step. the stored versions are remembered across an OFF so that a
	// bare ONHALT/ONSTEP can restore them
	commandOnHalt       string
	commandOnHaltStored string
	commandOnStep       string
	commandOnStepStored string

	// buffer for user input
	input []byte

	// the debugging session is active for as long as running is true
	running bool

	// continue the emulation on the next iteration of the input loop
	continueEmulation bool

	// halt the emulation as soon as possible
	haltImmediately bool

	// run the emulation until a halt condition is met
	runUntilHalt bool

	// the number of steps left before the most recent STEP command is
	// satisfied
	stepsRemaining int

	// the most recent step ended in error and the machine is not in a
	// state to continue
	lastStepError bool

	// the address of a breakpoint that has just halted the emulation. the
	// next step goes over it, or the same breakpoint would halt the
	// emulation again without any progress being made. a value of -1
	// means there is no such breakpoint
	stepOverBreakpoint int

	// formatted result of the most recent step, for the LAST command
	lastResult string
}

// NewDebugger creates and initialises everything required by the debugger.
func NewDebugger(mc *mico.Mico, term terminal.Terminal) (*Debugger, error) {
	dbg := &Debugger{
		mc:                 mc,
		term:               term,
		input:              make([]byte, 255),
		stepOverBreakpoint: -1,
	}

	// halt coordination. the machine checks breakpoints itself, before
	// the instruction at the breakpoint address has run
	dbg.halting = newHaltCoordination(dbg)
	dbg.mc.SetBreakpointCheck(dbg.halting.breakpoints.match)

	dbg.dbgmem = &dbgmem.DbgMem{
		Mem: dbg.mc.Mem,
	}

	dbg.rwnd = rewind.NewRewind(dbg.mc.Machine)

	// interrupt signals raised while the terminal is reading, or while
	// the emulation is moving, are translated into a curated error for
	// the input loop to interpret
	dbg.events = &terminal.ReadEvents{
		Signal: make(chan os.Signal, 1),
		SignalHandler: func(sig os.Signal) error {
			if sig == os.Interrupt {
				return curated.Errorf(terminal.UserInterrupt)
			}
			return nil
		},
	}
	signal.Notify(dbg.events.Signal, os.Interrupt)

	dbg.term.RegisterTabCompletion(commandline.NewTabCompletion(debuggerCommands))

	return dbg, nil
}

// Start the debugger session with the supplied program. The function
// returns when the session has ended.
//
// The initScript is a script of debugger commands run, silently, before
// the session proper begins. The empty string means no such script.
func (dbg *Debugger) Start(initScript string, prog loader.Loader) error {
	dbg.prog = prog

	if err := dbg.loadProgram(); err != nil {
		return curated.Errorf("debugger: %v", err)
	}

	if err := dbg.term.Initialise(); err != nil {
		return curated.Errorf("debugger: %v", err)
	}
	defer dbg.term.CleanUp()

	dbg.running = true

	// run initialisation script
	if initScript != "" {
		scr, err := script.RescribeScript(initScript)
		if err == nil {
			dbg.term.Silence(true)
			err = dbg.inputLoop(scr)
			if err != nil {
				dbg.term.Silence(false)
				return curated.Errorf("debugger: %v", err)
			}
			dbg.term.Silence(false)
		}
	}

	if err := dbg.run(); err != nil {
		return curated.Errorf("debugger: %v", err)
	}

	return nil
}

// HasFaulted returns true if the machine being debugged is in the Faulted
// state. Useful to the caller once the session has ended, a session that
// leaves a faulted machine behind is reflected in the exit code.
func (dbg *Debugger) HasFaulted() bool {
	return dbg.mc.State() == execution.Faulted
}

// run the main input loop until the session ends.
func (dbg *Debugger) run() error {
	// the user may quit while a script recording is in progress. end the
	// recording gracefully rather than lose it
	defer func() {
		if err := dbg.scriptScribe.EndSession(); err != nil {
			logger.Logf(logger.Allow, "debugger", "%v", err)
		}
	}()

	return dbg.inputLoop(dbg.term)
}

// loadProgram attaches the program to the machine and prepares the
// debugger state that depends on it. also used by the RESET command,
// resetting and reattaching are the same thing.
func (dbg *Debugger) loadProgram() error {
	if err := dbg.prog.Attach(dbg.mc.Machine); err != nil {
		return err
	}

	dbg.dbgmem.Symbols = dbg.prog.Symbols

	// disassemble the program area once. the DISASSEMBLE command can work
	// on any address range but the plain form uses this
	from := dbg.prog.Origin
	to := uint16(int(dbg.prog.Origin) + len(dbg.prog.Data) - 1)
	d, err := disassembly.FromMachine(dbg.mc.Machine, from, to)
	if err != nil {
		if !curated.Is(err, disassembly.NoDisassembly) {
			return err
		}
	} else {
		d.Apply(dbg.prog.Symbols)
		dbg.disasm = d
	}

	// rewind history restarts from the reset state
	dbg.rwnd.Reset()

	dbg.lastStepError = false
	dbg.stepOverBreakpoint = -1
	dbg.lastResult = ""

	return nil
}

// parseInput splits the input into individual commands and processes each
// in turn. auto is true if the input is from an ONHALT or ONSTEP command
// rather than the user, auto commands are never recorded by the script
// scribe.
//
// the returned bool indicates whether the emulation should continue on
// the next iteration of the input loop.
func (dbg *Debugger) parseInput(input string, interactive bool, auto bool) (bool, error) {
	var stepNext bool

	input = strings.TrimSpace(input)

	// ignore comments
	if strings.HasPrefix(input, "#") {
		return false, nil
	}

	// divide input into commands. combinations of commands are separated
	// by semicolons
	commands := strings.Split(input, ";")

	for i := 0; i < len(commands); i++ {
		step, err := dbg.parseCommand(commands[i], interactive, !auto)
		if err != nil {
			// a bad command must not make it into a script recording
			dbg.scriptScribe.Rollback()
			return false, err
		}
		stepNext = stepNext || step
	}

	return stepNext, nil
}
