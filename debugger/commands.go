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
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/script"
	"github.com/machina-emu/machina/debugger/terminal"
	"github.com/machina-emu/machina/debugger/terminal/commandline"
	"github.com/machina-emu/machina/disassembly"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/logger"
	"github.com/machina-emu/machina/snapshot"
)

// debugger keywords.
const (
	cmdBreak       = "BREAK"
	cmdClear       = "CLEAR"
	cmdDisassemble = "DISASSEMBLE"
	cmdDrop        = "DROP"
	cmdGraph       = "GRAPH"
	cmdHalt        = "HALT"
	cmdHelp        = "HELP"
	cmdLast        = "LAST"
	cmdList        = "LIST"
	cmdLog         = "LOG"
	cmdMemMap      = "MEMMAP"
	cmdOnHalt      = "ONHALT"
	cmdOnStep      = "ONSTEP"
	cmdPeek        = "PEEK"
	cmdPoke        = "POKE"
	cmdQuit        = "QUIT"
	cmdRead        = "READ"
	cmdRegisters   = "REGISTERS"
	cmdReset       = "RESET"
	cmdRun         = "RUN"
	cmdScript      = "SCRIPT"
	cmdSnapshot    = "SNAPSHOT"
	cmdStep        = "STEP"
	cmdStepBack    = "STEPBACK"
	cmdTimers      = "TIMERS"
	cmdWatch       = "WATCH"
	cmdWrite       = "WRITE"
)

var commandTemplate = commandline.CommandTemplate{
	cmdBreak:       "[ENABLE|DISABLE|] %*",
	cmdClear:       "[BREAKS|WATCHES|ALL]",
	cmdDisassemble: "[%V] [%V]",
	cmdDrop:        "[BREAK|WATCH] %V",
	cmdGraph:       "%F",
	cmdHalt:        "",
	cmdLast:        "",
	cmdList:        "[BREAKS|WATCHES]",
	cmdLog:         "[CLEAR|]",
	cmdMemMap:      "",
	cmdOnHalt:      "[OFF|ECHO|] %*",
	cmdOnStep:      "[OFF|ECHO|] %*",
	cmdPeek:        "%*",
	cmdPoke:        "%S %*",
	cmdQuit:        "",
	cmdRead:        "%S",
	cmdRegisters:   "[%S] [%V]",
	cmdReset:       "",
	cmdRun:         "",
	cmdScript:      "[RECORD|END|] %*",
	cmdSnapshot:    "[SAVE|LOAD] %F",
	cmdStep:        "[%V]",
	cmdStepBack:    "[%V]",
	cmdTimers:      "",
	cmdWatch:       "[READ|WRITE|] %*",
	cmdWrite:       "%S %V",
}

var helps = map[string]string{
	cmdBreak:       "Set a breakpoint on an address. The machine halts before the instruction at the address runs. Addresses can be numeric or symbolic. The ENABLE and DISABLE options take breakpoint numbers, as shown by LIST BREAKS.",
	cmdClear:       "Clear all breakpoints, all watches, or both.",
	cmdDisassemble: "Print a disassembly. With no arguments the disassembly covers the loaded program. With one address the disassembly starts there, with two addresses it covers the range.",
	cmdDrop:        "Drop a single breakpoint or watch. The number is as shown by the LIST command.",
	cmdGraph:       "Write a graph of the machine's internal structure, in graphviz dot format, to the named file.",
	cmdHalt:        "Halt the machine as soon as possible.",
	cmdHelp:        "Detailed help for debugger commands.",
	cmdLast:        "Print the result of the most recently executed instruction.",
	cmdList:        "List the currently defined breakpoints or watches.",
	cmdLog:         "Print the contents of the log. The CLEAR option empties the log.",
	cmdMemMap:      "Print the map of the machine's address space.",
	cmdOnHalt:      "Commands to run whenever the machine halts. Commands are separated by commas. The OFF option stops the behaviour, ECHO shows the current commands, and ONHALT with no arguments restores the most recent commands.",
	cmdOnStep:      "Commands to run after every step. Commands are separated by commas. The OFF option stops the behaviour, ECHO shows the current commands, and ONSTEP with no arguments restores the most recent commands.",
	cmdPeek:        "Print the contents of one or more memory addresses, without disturbing the machine. Addresses can be numeric or symbolic.",
	cmdPoke:        "Write one or more values into memory, without disturbing the machine. Successive values go to successive addresses. Unlike WRITE, a poke can alter read-only memory.",
	cmdQuit:        "End the debugging session.",
	cmdRead:        "Read a memory address through the live bus. A mapped device sees the read, unlike PEEK.",
	cmdRegisters:   "Print or change registers. With no arguments all registers are printed. With a register name the single register is printed, and with a name and a value the register is changed first.",
	cmdReset:       "Reset the machine and reattach the loaded program.",
	cmdRun:         "Run the machine until a halt condition is met.",
	cmdScript:      "Run a script of debugger commands, or record one. SCRIPT RECORD begins a recording, SCRIPT END finishes it. A recording captures every command and every result.",
	cmdSnapshot:    "Save the complete machine state to a file, or restore it. A restore replaces the rewind history.",
	cmdStep:        "Step the machine by one instruction, or by the given number of instructions. Pressing return at an empty prompt is the same as a bare STEP.",
	cmdStepBack:    "Step the machine backwards through the rewind history.",
	cmdTimers:      "Print the state of the timer slots and the interrupt queue.",
	cmdWatch:       "Watch a memory address for access. The machine halts after a step that touches the address. The READ and WRITE options restrict the watch to one direction and an optional value restricts it to matching data.",
	cmdWrite:       "Write a value to a memory address through the live bus. A mapped device sees the write, unlike POKE.",
}

// debuggerCommands is the complete list of commands used by the debugger.
var debuggerCommands *commandline.Commands

func init() {
	var err error

	debuggerCommands, err = commandline.CompileCommandTemplate(commandTemplate, cmdHelp)
	if err != nil {
		panic(fmt.Errorf("error compiling command template: %w", err))
	}
	debuggerCommands.AddHelp(helps)
}

// parseCommand tokenises the input and processes the single command it
// contains. interactive means the command has been typed at a terminal by
// a real user, scribe means the command is a candidate for any script
// being recorded.
//
// the returned bool indicates whether the emulation should continue on the
// next iteration of the input loop.
func (dbg *Debugger) parseCommand(cmdStr string, interactive bool, scribe bool) (bool, error) {
	tokens := commandline.TokeniseInput(cmdStr)

	// no tokens. the user has pressed return at an empty prompt, which we
	// treat the same as a bare STEP command
	if tokens.Remaining() == 0 {
		dbg.stepsRemaining = 1
		dbg.stepOverBreakpoint = int(dbg.mc.Regs.PC())
		return true, nil
	}

	// check validity of tokenised input
	if err := debuggerCommands.ValidateTokens(tokens); err != nil {
		return false, err
	}

	// print normalised input when the command is not coming from the user
	// directly. it shows which commands an ONHALT, ONSTEP or script is
	// running
	if !interactive {
		dbg.printLine(terminal.StyleEcho, tokens.String())
	}

	// the validation above means we don't need to worry too much about the
	// success of tokens.Get() in the command implementations below

	tokens.Reset()
	command, _ := tokens.Get()
	command = strings.ToUpper(command)

	// write normalised input to any script being recorded. the script
	// commands look after themselves, SCRIPT RECORD and SCRIPT END must
	// not appear in the recording
	if scribe && command != cmdScript {
		dbg.scriptScribe.WriteInput(tokens.String())
	}

	switch command {
	case cmdHelp:
		keyword, present := tokens.Get()
		if present {
			dbg.printLine(terminal.StyleHelp, debuggerCommands.Help(keyword))
		} else {
			dbg.printLine(terminal.StyleHelp, debuggerCommands.HelpOverview())
		}

	case cmdQuit:
		dbg.running = false

	case cmdReset:
		if err := dbg.loadProgram(); err != nil {
			return false, err
		}
		dbg.printLine(terminal.StyleFeedback, "machine reset")

	case cmdRun:
		if dbg.mc.State().Terminal() {
			return false, curated.Errorf(hardware.NotRunnable, dbg.mc.State())
		}
		dbg.runUntilHalt = true
		return true, nil

	case cmdHalt:
		dbg.haltImmediately = true

	case cmdStep:
		num := 1
		if arg, present := tokens.Get(); present {
			n, err := strconv.ParseUint(arg, 0, 16)
			if err != nil || n == 0 {
				return false, curated.Errorf("invalid step count (%s)", arg)
			}
			num = int(n)
		}

		// a STEP always executes the instruction at PC, even when a
		// breakpoint is attached to it
		dbg.stepsRemaining = num
		dbg.stepOverBreakpoint = int(dbg.mc.Regs.PC())

		return true, nil

	case cmdStepBack:
		num := 1
		if arg, present := tokens.Get(); present {
			n, err := strconv.ParseUint(arg, 0, 16)
			if err != nil || n == 0 {
				return false, curated.Errorf("invalid step count (%s)", arg)
			}
			num = int(n)
		}

		if err := dbg.rwnd.StepBack(num); err != nil {
			return false, err
		}

		// the machine is now in an older state. forget everything we knew
		// about the state we have left
		dbg.lastStepError = false
		dbg.stepOverBreakpoint = -1
		dbg.lastResult = ""

		dbg.printLine(terminal.StyleFeedback, "stepped back to %#04x", dbg.mc.Regs.PC())

	case cmdRegisters:
		regs := dbg.mc.Regs

		name, present := tokens.Get()
		if !present {
			dbg.printLine(terminal.StyleMachineInfo, "%s", regs.String())
			break // switch
		}

		idx, ok := regs.Lookup(name)
		if !ok {
			return false, curated.Errorf("unknown register (%s)", name)
		}

		if v, present := tokens.Get(); present {
			val, err := strconv.ParseUint(v, 0, 16)
			if err != nil {
				return false, curated.Errorf("invalid register value (%s)", v)
			}
			regs.SetValue(idx, uint16(val))
		}

		dbg.printLine(terminal.StyleMachineInfo, "%s = %#04x", regs.Name(idx), regs.Value(idx))

	case cmdPeek:
		// loop through all addresses
		a, present := tokens.Get()
		for present {
			ai, err := dbg.dbgmem.Peek(a)
			if err != nil {
				dbg.printLine(terminal.StyleError, "%s", err)
			} else {
				dbg.printLine(terminal.StyleMachineInfo, "%s", ai)
			}
			a, present = tokens.Get()
		}

	case cmdPoke:
		a, _ := tokens.Get()

		ai := dbg.dbgmem.GetAddressInfo(a, false)
		if ai == nil {
			return false, curated.Errorf("invalid poke address (%s)", a)
		}

		// poke successive values into successive addresses
		addr := ai.Address
		v, present := tokens.Get()
		for present {
			val, err := strconv.ParseUint(v, 0, 8)
			if err != nil {
				dbg.printLine(terminal.StyleError, "invalid poke value (%s)", v)
			} else {
				ai, err := dbg.dbgmem.Poke(addr, uint8(val))
				if err != nil {
					dbg.printLine(terminal.StyleError, "%s", err)
				} else {
					dbg.printLine(terminal.StyleMachineInfo, "%s", ai)
				}
				addr++
			}
			v, present = tokens.Get()
		}

	case cmdRead:
		a, _ := tokens.Get()

		ai, err := dbg.dbgmem.Read(a)
		if err != nil {
			return false, err
		}
		dbg.printLine(terminal.StyleMachineInfo, "%s", ai)

	case cmdWrite:
		a, _ := tokens.Get()
		v, _ := tokens.Get()

		val, err := strconv.ParseUint(v, 0, 8)
		if err != nil {
			return false, curated.Errorf("invalid write value (%s)", v)
		}

		ai, err := dbg.dbgmem.Write(a, uint8(val))
		if err != nil {
			return false, err
		}
		dbg.printLine(terminal.StyleMachineInfo, "%s", ai)

	case cmdDisassemble:
		// with no arguments print the stored disassembly of the loaded
		// program, symbols applied
		if tokens.Remaining() == 0 {
			if dbg.disasm == nil {
				return false, curated.Errorf("no disassembly available")
			}
			if err := dbg.disasm.Write(dbg.printStyle(terminal.StyleMachineInfo), disassembly.WriteAttr{ByteCode: true}); err != nil {
				return false, err
			}
			break // switch
		}

		arg, _ := tokens.Get()
		n, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return false, curated.Errorf("invalid disassembly address (%s)", arg)
		}
		from := uint16(n)

		// a single address disassembles a short stretch of memory from
		// that point
		to := from + 0x1f
		if to < from {
			to = 0xffff
		}

		if arg, present := tokens.Get(); present {
			n, err := strconv.ParseUint(arg, 0, 16)
			if err != nil {
				return false, curated.Errorf("invalid disassembly address (%s)", arg)
			}
			to = uint16(n)
		}

		if to < from {
			return false, curated.Errorf("invalid disassembly range (%#04x to %#04x)", from, to)
		}

		d, err := disassembly.FromMachine(dbg.mc.Machine, from, to)
		if err != nil {
			return false, err
		}
		d.Apply(dbg.prog.Symbols)

		if err := d.Write(dbg.printStyle(terminal.StyleMachineInfo), disassembly.WriteAttr{ByteCode: true}); err != nil {
			return false, err
		}

	case cmdGraph:
		filename, _ := tokens.Get()

		f, err := os.Create(filename)
		if err != nil {
			return false, curated.Errorf("graph: %v", err)
		}

		memviz.Map(f, dbg.mc.Machine)

		if err := f.Close(); err != nil {
			return false, curated.Errorf("graph: %v", err)
		}

		dbg.printLine(terminal.StyleFeedback, "machine graph written to %s", filename)

	case cmdLast:
		if dbg.lastResult == "" {
			dbg.printLine(terminal.StyleFeedback, "no instruction has been executed yet")
		} else {
			dbg.printLine(terminal.StyleStep, "%s", dbg.lastResult)
		}

	case cmdMemMap:
		dbg.printLine(terminal.StyleMachineInfo, "%s", dbg.mc.Mem.String())

	case cmdTimers:
		dbg.printLine(terminal.StyleMachineInfo, "%s", dbg.mc.TMR.String())

	case cmdLog:
		option, present := tokens.Get()
		if present && strings.ToUpper(option) == "CLEAR" {
			logger.Clear()
		} else {
			logger.Write(dbg.printStyle(terminal.StyleLog))
		}

	case cmdBreak:
		option, _ := tokens.Peek()
		switch strings.ToUpper(option) {
		case "ENABLE":
			tokens.Get()
			if err := dbg.halting.breakpoints.enableCommand(tokens, true); err != nil {
				return false, err
			}
		case "DISABLE":
			tokens.Get()
			if err := dbg.halting.breakpoints.enableCommand(tokens, false); err != nil {
				return false, err
			}
		default:
			if err := dbg.halting.breakpoints.parseCommand(tokens); err != nil {
				return false, err
			}
		}

	case cmdWatch:
		if err := dbg.halting.watches.parseCommand(tokens); err != nil {
			return false, err
		}

	case cmdList:
		list, _ := tokens.Get()
		switch strings.ToUpper(list) {
		case "BREAKS":
			dbg.halting.breakpoints.list()
		case "WATCHES":
			dbg.halting.watches.list()
		}

	case cmdClear:
		clear, _ := tokens.Get()
		switch strings.ToUpper(clear) {
		case "BREAKS":
			dbg.halting.breakpoints.clear()
			dbg.printLine(terminal.StyleFeedback, "breakpoints cleared")
		case "WATCHES":
			dbg.halting.watches.clear()
			dbg.printLine(terminal.StyleFeedback, "watches cleared")
		case "ALL":
			dbg.halting.breakpoints.clear()
			dbg.halting.watches.clear()
			dbg.printLine(terminal.StyleFeedback, "breakpoints and watches cleared")
		}

	case cmdDrop:
		drop, _ := tokens.Get()

		s, _ := tokens.Get()
		num, err := strconv.Atoi(s)
		if err != nil {
			return false, curated.Errorf("drop attribute must be a decimal number (%s)", s)
		}

		switch strings.ToUpper(drop) {
		case "BREAK":
			if err := dbg.halting.breakpoints.drop(num); err != nil {
				return false, err
			}
			dbg.printLine(terminal.StyleFeedback, "breakpoint #%d dropped", num)
		case "WATCH":
			if err := dbg.halting.watches.drop(num); err != nil {
				return false, err
			}
			dbg.printLine(terminal.StyleFeedback, "watch #%d dropped", num)
		}

	case cmdOnHalt:
		if tokens.Remaining() == 0 {
			if dbg.commandOnHaltStored == "" {
				return false, curated.Errorf("no stored ONHALT command")
			}
			dbg.commandOnHalt = dbg.commandOnHaltStored
			dbg.printLine(terminal.StyleFeedback, "auto-command on halt: %s", dbg.commandOnHalt)
			break // switch
		}

		option, _ := tokens.Peek()
		switch strings.ToUpper(option) {
		case "OFF":
			dbg.commandOnHalt = ""
			dbg.printLine(terminal.StyleFeedback, "no auto-command on halt")
			return false, nil
		case "ECHO":
			if dbg.commandOnHalt == "" {
				dbg.printLine(terminal.StyleFeedback, "no auto-command on halt")
			} else {
				dbg.printLine(terminal.StyleFeedback, "auto-command on halt: %s", dbg.commandOnHalt)
			}
			return false, nil
		}

		// use the remaining tokens as the new auto-command. commands are
		// separated by commas on input so that the semicolons of a command
		// combination do not cut the ONHALT command itself short
		dbg.commandOnHalt = strings.Replace(tokens.Remainder(), ",", ";", -1)
		dbg.commandOnHaltStored = dbg.commandOnHalt

		dbg.printLine(terminal.StyleFeedback, "auto-command on halt: %s", dbg.commandOnHalt)

		// run the new commands once immediately
		_, err := dbg.parseInput(dbg.commandOnHalt, false, true)
		return false, err

	case cmdOnStep:
		if tokens.Remaining() == 0 {
			if dbg.commandOnStepStored == "" {
				return false, curated.Errorf("no stored ONSTEP command")
			}
			dbg.commandOnStep = dbg.commandOnStepStored
			dbg.printLine(terminal.StyleFeedback, "auto-command on step: %s", dbg.commandOnStep)
			break // switch
		}

		option, _ := tokens.Peek()
		switch strings.ToUpper(option) {
		case "OFF":
			dbg.commandOnStep = ""
			dbg.printLine(terminal.StyleFeedback, "no auto-command on step")
			return false, nil
		case "ECHO":
			if dbg.commandOnStep == "" {
				dbg.printLine(terminal.StyleFeedback, "no auto-command on step")
			} else {
				dbg.printLine(terminal.StyleFeedback, "auto-command on step: %s", dbg.commandOnStep)
			}
			return false, nil
		}

		dbg.commandOnStep = strings.Replace(tokens.Remainder(), ",", ";", -1)
		dbg.commandOnStepStored = dbg.commandOnStep

		dbg.printLine(terminal.StyleFeedback, "auto-command on step: %s", dbg.commandOnStep)

	case cmdScript:
		option, _ := tokens.Peek()
		switch strings.ToUpper(option) {
		case "RECORD":
			tokens.Get()
			filename, present := tokens.Get()
			if !present {
				return false, curated.Errorf("script filename required")
			}
			if err := dbg.scriptScribe.StartSession(filename); err != nil {
				return false, err
			}
			dbg.printLine(terminal.StyleFeedback, "recording to %s", filename)
			return false, nil

		case "END":
			tokens.Get()
			if err := dbg.scriptScribe.EndSession(); err != nil {
				return false, err
			}
			dbg.printLine(terminal.StyleFeedback, "script recording ended")
			return false, nil
		}

		// run a script
		filename, present := tokens.Get()
		if !present {
			return false, curated.Errorf("script filename required")
		}

		if dbg.scriptScribe.IsActive() {
			// if we're currently recording a script we want this command
			// to be written to the new script but not the commands the
			// script itself will run
			dbg.scriptScribe.WriteInput(tokens.String())
			dbg.scriptScribe.StartPlayback()
			defer dbg.scriptScribe.EndPlayback()
		}

		plb, err := script.RescribeScript(filename)
		if err != nil {
			return false, err
		}

		if err := dbg.inputLoop(plb); err != nil {
			return false, err
		}

	case cmdSnapshot:
		option, _ := tokens.Get()
		filename, _ := tokens.Get()
		switch strings.ToUpper(option) {
		case "SAVE":
			if err := snapshot.SaveFile(dbg.mc.Machine, filename); err != nil {
				return false, err
			}
			dbg.printLine(terminal.StyleFeedback, "machine state saved to %s", filename)

		case "LOAD":
			if err := snapshot.LoadFile(dbg.mc.Machine, filename); err != nil {
				return false, err
			}

			// the machine is now in a state the rewind history knows
			// nothing about
			dbg.rwnd.Reset()
			dbg.lastStepError = false
			dbg.stepOverBreakpoint = -1
			dbg.lastResult = ""

			dbg.printLine(terminal.StyleFeedback, "machine state loaded from %s", filename)
		}
	}

	return false, nil
}
