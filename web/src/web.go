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

//go:build js && wasm
// +build js,wasm

package main

import (
	"time"

	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/loader"

	"syscall/js"
)

// the program image is fetched over HTTP from the same development
// server that serves the wasm binary
const programURL = "http://localhost:8080/program.bin"

func main() {
	worker := js.Global().Get("self")
	scr := NewCanvas(worker)

	mc, err := mico.NewMico(nil)
	if err != nil {
		panic(err)
	}

	ld := loader.NewLoader(programURL, "")
	if err := ld.Attach(mc.Machine); err != nil {
		panic(err)
	}

	// message handler - implements the pad. the page posts keyDown and
	// keyUp messages so unlike the terminal frontend we get real release
	// events
	messageHandler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		data := args[0].Get("data")
		switch data.Get("cmd").String() {
		case "keyDown":
			if b, ok := buttonForCode(data.Get("key").Int()); ok {
				mc.Pad.Set(b, true)
			}
		case "keyUp":
			if b, ok := buttonForCode(data.Get("key").Int()); ok {
				mc.Pad.Set(b, false)
			}
		default:
			worker.Call("log", args[0].String())
		}

		return nil
	})
	defer func() {
		worker.Call("removeEventListener", "message", messageHandler, false)
		messageHandler.Release()
	}()
	worker.Call("addEventListener", "message", messageHandler, false)

	// run emulation
	if err := run(mc, scr); err != nil {
		panic(err)
	}
}

// run advances the machine a frame's worth of cycles per iteration until
// it reaches a terminal state. for the halt instruction this is the
// normal end of the program and the canvas keeps the final frame.
func run(mc *mico.Mico, scr *Canvas) error {
	const frameDuration = time.Second / mico.FramesPerSecond

	for {
		frameStart := time.Now()

		if _, err := mc.RunCycles(mico.CyclesPerFrame); err != nil {
			return err
		}

		mc.Sync.Frame()
		scr.render(mc.Framebuffer())

		if mc.State() != execution.Running {
			scr.worker.Call("updateDebug", "state", mc.State().String())
			return nil
		}

		// the sleep paces the loop and yields the worker. the message
		// handler never runs while we hog the goroutine so there is a
		// floor on the sleep even when emulation is behind
		sleep := frameDuration - time.Since(frameStart)
		if sleep < time.Millisecond {
			sleep = time.Millisecond
		}
		time.Sleep(sleep)
	}
}

// buttonForCode maps a javascript keyCode to a pad button. the letter
// keys match the terminal frontend, with the arrow keys as alternatives
// for the direction buttons.
func buttonForCode(key int) (peripherals.Button, bool) {
	switch key {
	case 87, 38: // w, up arrow
		return peripherals.ButtonUp, true
	case 83, 40: // s, down arrow
		return peripherals.ButtonDown, true
	case 65, 37: // a, left arrow
		return peripherals.ButtonLeft, true
	case 68, 39: // d, right arrow
		return peripherals.ButtonRight, true
	case 78: // n
		return peripherals.ButtonB, true
	case 77: // m
		return peripherals.ButtonA, true
	case 74: // j
		return peripherals.ButtonStart, true
	case 75: // k
		return peripherals.ButtonSelect, true
	}

	return 0, false
}
