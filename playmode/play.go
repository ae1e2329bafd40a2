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

package playmode

import (
	"os"
	"os/signal"
	"time"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/hardware/preferences"
	"github.com/machina-emu/machina/loader"
	"github.com/machina-emu/machina/wavwriter"
)

// number of keypresses that can wait in the keys channel before the
// reader goroutine blocks. more than anyone can type in a frame.
const keyQueueLen = 32

type playmode struct {
	mc  *mico.Mico
	scr *screen

	// bytes from the stdin reader goroutine
	keys chan byte

	// for non-keyboard interrupts. ctrl-c never arrives this way while
	// the terminal is in raw mode
	intChan chan os.Signal

	// keys seen during the current and the previous frame. a key in one
	// set but not the other is an edge, and edges are what the pad wants
	pressed  map[byte]bool
	previous map[byte]bool

	// number of frames displayed so far
	frames uint64

	// audio capture. synth and wav are nil when no capture was requested
	synth   *peripherals.Synth
	wav     *wavwriter.WavWriter
	wavBuf  []int16
	sampled uint64
}

// Play runs the loader's program until it halts, faults, or the user
// quits with the 'q' key.
//
// The wavFile argument is the name of a file to write beeper audio to.
// The empty string means no audio capture.
func Play(ld loader.Loader, wavFile string) error {
	prf, err := preferences.NewPreferences()
	if err != nil {
		return curated.Errorf("playmode: %v", err)
	}

	mc, err := mico.NewMico(prf)
	if err != nil {
		return curated.Errorf("playmode: %v", err)
	}

	if err := ld.Attach(mc.Machine); err != nil {
		return curated.Errorf("playmode: %v", err)
	}

	pl := &playmode{
		mc:       mc,
		keys:     make(chan byte, keyQueueLen),
		intChan:  make(chan os.Signal, 1),
		pressed:  make(map[byte]bool),
		previous: make(map[byte]bool),
	}

	if wavFile != "" {
		pl.wav, err = wavwriter.New(wavFile)
		if err != nil {
			return curated.Errorf("playmode: %v", err)
		}
		pl.synth = peripherals.NewSynth(mc.Beep, mico.ClockHz, wavwriter.SampleRate)
	}

	pl.scr, err = newScreen(os.Stdin, os.Stdout)
	if err != nil {
		return curated.Errorf("playmode: %v", err)
	}
	defer pl.scr.end()

	signal.Notify(pl.intChan, os.Interrupt)
	defer signal.Stop(pl.intChan)

	// the reader goroutine cannot be stopped cleanly, a blocked read on
	// stdin has no way of being interrupted. it dies with the program
	go func() {
		b := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(b)
			if err != nil {
				return
			}
			if n == 1 {
				pl.keys <- b[0]
			}
		}
	}()

	err = pl.run()

	// the capture file is written whatever the reason for the session
	// ending. a fault that cuts a capture short is exactly when the
	// audio so far is interesting
	if pl.wav != nil {
		if endErr := pl.wav.End(); endErr != nil && err == nil {
			err = endErr
		}
	}

	if err != nil {
		return curated.Errorf("playmode: %v", err)
	}

	return nil
}

// run is the heart of playmode. one loop iteration is one frame of the
// console: gather input, advance the machine by a frame's worth of
// cycles, draw the framebuffer, and sleep away whatever is left of the
// frame's time allowance.
func (pl *playmode) run() error {
	const frameDuration = time.Second / mico.FramesPerSecond

	for {
		frameStart := time.Now()

		quit := pl.readKeys()
		if quit {
			return nil
		}
		pl.applyEdges()

		if _, err := pl.mc.RunCycles(mico.CyclesPerFrame); err != nil {
			return err
		}

		pl.mc.Sync.Frame()
		pl.frames++

		pl.scr.render(pl.mc.Framebuffer())

		if pl.wav != nil {
			pl.captureAudio()
		}

		// a machine in a terminal state will never run again. for the
		// halt instruction this is the normal end of the program
		if pl.mc.State() != execution.Running {
			return nil
		}

		if sleep := frameDuration - time.Since(frameStart); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// readKeys gathers the keys pressed since the previous frame. the return
// value is true when the user has asked to quit.
func (pl *playmode) readKeys() bool {
	for {
		select {
		case <-pl.intChan:
			return true
		case k := <-pl.keys:
			switch k {
			case 'q':
				return true
			case 0x03:
				// raw mode disables the terminal's signal keys so
				// ctrl-c arrives as a plain byte
				return true
			default:
				pl.pressed[k] = true
			}
		default:
			return false
		}
	}
}

// applyEdges presses and releases pad buttons by comparing the keys seen
// this frame with the keys seen in the previous frame.
func (pl *playmode) applyEdges() {
	for k := range pl.previous {
		if !pl.pressed[k] {
			if b, ok := buttonForKey(k); ok {
				pl.mc.Pad.Set(b, false)
			}
		}
	}

	for k := range pl.pressed {
		if !pl.previous[k] {
			if b, ok := buttonForKey(k); ok {
				pl.mc.Pad.Set(b, true)
			}
		}
	}

	pl.previous, pl.pressed = pl.pressed, pl.previous
	for k := range pl.pressed {
		delete(pl.pressed, k)
	}
}

// captureAudio brings the wav file up to date with the frame count.
func (pl *playmode) captureAudio() {
	n := samplesOwed(pl.frames, pl.sampled)
	if n <= 0 {
		return
	}

	if cap(pl.wavBuf) < n {
		pl.wavBuf = make([]int16, n)
	}
	buf := pl.wavBuf[:n]

	pl.synth.Fill(buf)
	pl.wav.Write(buf)
	pl.sampled += uint64(n)
}

// samplesOwed returns the number of samples a capture is behind after the
// given number of frames. the sample rate is not a whole multiple of the
// frame rate so the answer varies from frame to frame.
func samplesOwed(frames uint64, sampled uint64) int {
	return int(frames*wavwriter.SampleRate/mico.FramesPerSecond - sampled)
}
