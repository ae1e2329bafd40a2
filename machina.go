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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/machina-emu/machina/debugger"
	"github.com/machina-emu/machina/debugger/terminal"
	"github.com/machina-emu/machina/debugger/terminal/colorterm"
	"github.com/machina-emu/machina/debugger/terminal/plainterm"
	"github.com/machina-emu/machina/disassembly"
	"github.com/machina-emu/machina/gui/sdlplay"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/cores/mico/assembler"
	"github.com/machina-emu/machina/hardware/preferences"
	"github.com/machina-emu/machina/loader"
	"github.com/machina-emu/machina/logger"
	"github.com/machina-emu/machina/modalflag"
	"github.com/machina-emu/machina/performance"
	"github.com/machina-emu/machina/playmode"
	"github.com/machina-emu/machina/regression"
	"github.com/machina-emu/machina/resources"
	"github.com/machina-emu/machina/statsview"
	"github.com/machina-emu/machina/version"
)

// the debugger runs this script, if it exists, before the session begins.
// the name is relative to the resources path.
const defaultInitScript = "debuggerInit"

func main() {
	// SDL needs window creation and event handling to happen on the main
	// thread. whether the GUI mode has been chosen is not known until the
	// arguments have been parsed, so the main goroutine is always pinned
	runtime.LockOSThread()

	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "PLAY", "GUI", "DEBUG", "DISASM", "ASM", "PERF", "REGRESS", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		fallthrough

	case "PLAY":
		err = play(md)

	case "GUI":
		err = guiPlay(md)

	case "DEBUG":
		err = debug(md)

	case "DISASM":
		err = disasm(md)

	case "ASM":
		err = asm(md)

	case "PERF":
		err = perform(md)

	case "REGRESS":
		err = regress(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// programLoader creates a loader for the named program. common to every
// mode that runs or examines a program.
func programLoader(filename string, format string, origin uint) (loader.Loader, error) {
	if origin > 0xffff {
		return loader.Loader{}, fmt.Errorf("origin must be a 16 bit address (%#x)", origin)
	}

	ld := loader.NewLoader(filename, format)
	ld.Origin = uint16(origin)

	return ld, nil
}

func play(md *modalflag.Modes) error {
	md.NewMode()

	format := md.AddString("format", "AUTO", "force use of program format: BIN, MPRG, MASM")
	origin := md.AddUint("origin", 0, "load address of raw binary images")
	wav := md.AddString("wav", "", "record audio to wav file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program required for %s mode", md)
	case 1:
		ld, err := programLoader(md.GetArg(0), *format, *origin)
		if err != nil {
			return err
		}

		return playmode.Play(ld, *wav)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func guiPlay(md *modalflag.Modes) error {
	md.NewMode()

	format := md.AddString("format", "AUTO", "force use of program format: BIN, MPRG, MASM")
	origin := md.AddUint("origin", 0, "load address of raw binary images")
	scale := md.AddInt("scale", sdlplay.DefaultScale, "window scale")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program required for %s mode", md)
	case 1:
		ld, err := programLoader(md.GetArg(0), *format, *origin)
		if err != nil {
			return err
		}

		return sdlplay.Play(ld, *scale)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func debug(md *modalflag.Modes) error {
	md.NewMode()

	defInitScript, err := resources.JoinPath(defaultInitScript)
	if err != nil {
		return err
	}

	format := md.AddString("format", "AUTO", "force use of program format: BIN, MPRG, MASM")
	origin := md.AddUint("origin", 0, "load address of raw binary images")
	termType := md.AddString("term", "COLOR", "terminal type to use in debug mode: COLOR, PLAIN")
	initScript := md.AddString("initscript", defInitScript, "script to run on debugger start")
	profile := md.AddString("profile", "none", "run debugger through profiler: cpu, mem, trace, all")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	var term terminal.Terminal
	switch strings.ToUpper(*termType) {
	default:
		fmt.Printf("! unknown terminal type (%s) defaulting to plain\n", *termType)
		fallthrough
	case "PLAIN":
		term = &plainterm.PlainTerminal{}
	case "COLOR":
		term = &colorterm.ColorTerminal{}
	}

	prf, err := preferences.NewPreferences()
	if err != nil {
		return err
	}

	mc, err := mico.NewMico(prf)
	if err != nil {
		return err
	}

	dbg, err := debugger.NewDebugger(mc, term)
	if err != nil {
		return err
	}

	prof, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program required for %s mode", md)
	case 1:
		ld, err := programLoader(md.GetArg(0), *format, *origin)
		if err != nil {
			return err
		}

		err = performance.RunProfiler(prof, "debugger", func() error {
			return dbg.Start(*initScript, ld)
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	// a session that ends leaving a faulted machine behind is reflected
	// in the exit code
	if dbg.HasFaulted() {
		return mc.Fault()
	}

	return nil
}

func disasm(md *modalflag.Modes) error {
	md.NewMode()

	format := md.AddString("format", "AUTO", "force use of program format: BIN, MPRG, MASM")
	origin := md.AddUint("origin", 0, "load address of raw binary images")
	bytecode := md.AddBool("bytecode", false, "include bytecode in disassembly")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program required for %s mode", md)
	case 1:
		ld, err := programLoader(md.GetArg(0), *format, *origin)
		if err != nil {
			return err
		}

		mc, err := mico.NewMico(nil)
		if err != nil {
			return err
		}

		if err := ld.Attach(mc.Machine); err != nil {
			return err
		}

		dsm, err := disassembly.FromMachine(mc.Machine, ld.Origin, ld.Origin+uint16(len(ld.Data))-1)
		if err != nil {
			return err
		}

		// labels from assembled programs appear in the listing
		dsm.Apply(ld.Symbols)

		err = dsm.Write(md.Output, disassembly.WriteAttr{ByteCode: *bytecode})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func asm(md *modalflag.Modes) error {
	md.NewMode()

	output := md.AddString("output", "", "output filename. defaults to the source filename with an mprg extension")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("assembly source file required for %s mode", md)
	case 1:
		prog, err := assembler.AssembleFile(md.GetArg(0))
		if err != nil {
			return err
		}

		fn := *output
		if fn == "" {
			src := md.GetArg(0)
			fn = strings.TrimSuffix(src, filepath.Ext(src)) + ".mprg"
		}

		img := loader.EncodeMPRG(prog.Origin, prog.Entry, prog.Data)
		if err := os.WriteFile(fn, img, 0644); err != nil {
			return err
		}

		fmt.Fprintf(md.Output, "%s: %d bytes, origin %#04x, entry %#04x\n",
			fn, len(prog.Data), prog.Origin, prog.Entry)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	format := md.AddString("format", "AUTO", "force use of program format: BIN, MPRG, MASM")
	origin := md.AddUint("origin", 0, "load address of raw binary images")
	duration := md.AddString("duration", "5s", "run duration (note: there is a 2s overhead)")
	profile := md.AddString("profile", "none", "profile the run: cpu, mem, trace, all")
	stats := md.AddBool("statsview", false, "run stats server")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		statsview.Launch(md.Output)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program required for %s mode", md)
	case 1:
		ld, err := programLoader(md.GetArg(0), *format, *origin)
		if err != nil {
			return err
		}

		prof, err := performance.ParseProfile(*profile)
		if err != nil {
			return err
		}

		return performance.Check(md.Output, prof, ld, *duration)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

// yesReader feeds the regression DELETE confirmation with an unprompted
// yes.
type yesReader struct{}

func (*yesReader) Read(p []byte) (n int, err error) {
	p[0] = 'y'
	return 1, nil
}

func regress(md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("RUN", "LIST", "DELETE", "ADD")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch md.Mode() {
	case "RUN":
		md.NewMode()

		verbose := md.AddBool("verbose", false, "output error messages for failed entries")
		failOnError := md.AddBool("failonerror", false, "stop the run on the first error")

		md.AdditionalHelp(
			`Keys of the entries to run can be listed after the flags. The keyword FAILS stands
for the keys that failed the previous run. An empty list runs every entry.`)

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		err = regression.RegressRunTests(md.Output, *verbose, *failOnError, md.RemainingArgs())
		if err != nil {
			return err
		}

	case "LIST":
		md.NewMode()

		// no additional arguments

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			err := regression.RegressList(md.Output)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("no additional arguments required for %s mode", md)
		}

	case "DELETE":
		md.NewMode()

		answerYes := md.AddBool("yes", false, "answer yes to confirmation")

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			return fmt.Errorf("database key required for %s mode", md)
		case 1:
			// use stdin for confirmation unless the yes flag has been sent
			var confirmation io.Reader
			if *answerYes {
				confirmation = &yesReader{}
			} else {
				confirmation = os.Stdin
			}

			err := regression.RegressDelete(md.Output, confirmation, md.GetArg(0))
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("only one entry can be deleted at a time")
		}

	case "ADD":
		return regressAdd(md)
	}

	return nil
}

func regressAdd(md *modalflag.Modes) error {
	md.NewMode()

	mode := md.AddString("mode", "STATE", "type of regression entry: STATE, OUTPUT")
	steps := md.AddInt("steps", 1000, "number of steps to run")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	md.AdditionalHelp(
		`A STATE entry runs the program for the specified number of steps and records a
digest of the machine state at the end of the run. An OUTPUT entry runs the same
way but records a digest of the bytes the program wrote to the console device.

Note that asking for log output will suppress regression progress meters.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
		md.Output = &nopWriter{}
	} else {
		logger.SetEcho(nil, false)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program required for %s mode", md)
	case 1:
		var reg regression.Regressor

		switch strings.ToUpper(*mode) {
		case "STATE":
			reg = &regression.StateRegression{
				Program: md.GetArg(0),
				Steps:   *steps,
			}
		case "OUTPUT":
			reg = &regression.OutputRegression{
				Program: md.GetArg(0),
				Steps:   *steps,
			}
		default:
			return fmt.Errorf("unknown regression type (%s)", *mode)
		}

		err := regression.RegressAdd(md.Output, reg)
		if err != nil {
			// carriage return (without newline) at the beginning of the
			// error message so the error overwrites the last progress
			// output from RegressAdd()
			return fmt.Errorf("\rerror adding regression test: %v", err)
		}
	default:
		return fmt.Errorf("regression tests can only be added one at a time")
	}

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("revision", false, "display vcs revision")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	vrsn, rev, _ := version.Version()
	fmt.Fprintf(md.Output, "%s %s\n", version.ApplicationName, vrsn)
	if *revision {
		fmt.Fprintf(md.Output, "%s\n", rev)
	}

	return nil
}

// nopWriter is an empty writer.
type nopWriter struct{}

func (*nopWriter) Write(p []byte) (n int, err error) {
	return 0, nil
}
