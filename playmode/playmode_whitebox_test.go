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
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"
	"github.com/machina-emu/machina/test"
	"github.com/machina-emu/machina/wavwriter"
)

func TestButtonForKey(t *testing.T) {
	for _, m := range []struct {
		key    byte
		button peripherals.Button
	}{
		{'w', peripherals.ButtonUp},
		{'s', peripherals.ButtonDown},
		{'a', peripherals.ButtonLeft},
		{'d', peripherals.ButtonRight},
		{'n', peripherals.ButtonB},
		{'m', peripherals.ButtonA},
		{'j', peripherals.ButtonStart},
		{'k', peripherals.ButtonSelect},
	} {
		b, ok := buttonForKey(m.key)
		test.ExpectSuccess(t, ok)
		test.ExpectEquality(t, b, m.button)
	}

	// keys with a meaning of their own must never reach the pad
	for _, k := range []byte{'q', 0x03, 'x', ' '} {
		_, ok := buttonForKey(k)
		test.ExpectFailure(t, ok)
	}
}

func TestReadKeys(t *testing.T) {
	pl := &playmode{
		keys:     make(chan byte, keyQueueLen),
		intChan:  make(chan os.Signal, 1),
		pressed:  make(map[byte]bool),
		previous: make(map[byte]bool),
	}

	// nothing waiting
	test.ExpectEquality(t, pl.readKeys(), false)
	test.ExpectEquality(t, len(pl.pressed), 0)

	pl.keys <- 'w'
	pl.keys <- 'd'
	test.ExpectEquality(t, pl.readKeys(), false)
	test.ExpectSuccess(t, pl.pressed['w'])
	test.ExpectSuccess(t, pl.pressed['d'])
	test.ExpectEquality(t, len(pl.pressed), 2)

	// q quits. keys read before it still count
	pl.keys <- 's'
	pl.keys <- 'q'
	test.ExpectEquality(t, pl.readKeys(), true)
	test.ExpectSuccess(t, pl.pressed['s'])

	// ctrl-c arrives as a plain byte in raw mode
	pl.keys <- 0x03
	test.ExpectEquality(t, pl.readKeys(), true)
}

func TestEdgeDetection(t *testing.T) {
	mc, err := mico.NewMico(nil)
	test.DemandSuccess(t, err)

	pl := &playmode{
		mc:       mc,
		pressed:  make(map[byte]bool),
		previous: make(map[byte]bool),
	}

	// frame one. the key goes down
	pl.pressed['w'] = true
	pl.applyEdges()
	test.ExpectSuccess(t, mc.Pad.Pressed(peripherals.ButtonUp))

	// frame two. keyboard repeat delivers the key again, the button
	// stays down
	pl.pressed['w'] = true
	pl.applyEdges()
	test.ExpectSuccess(t, mc.Pad.Pressed(peripherals.ButtonUp))

	// frame three. the key is absent so the button is released
	pl.applyEdges()
	test.ExpectFailure(t, mc.Pad.Pressed(peripherals.ButtonUp))

	// the current set is emptied by every call
	test.ExpectEquality(t, len(pl.pressed), 0)

	// two keys at once
	pl.pressed['a'] = true
	pl.pressed['m'] = true
	pl.applyEdges()
	test.ExpectSuccess(t, mc.Pad.Pressed(peripherals.ButtonLeft))
	test.ExpectSuccess(t, mc.Pad.Pressed(peripherals.ButtonA))

	// one key released, the other held
	pl.pressed['m'] = true
	pl.applyEdges()
	test.ExpectFailure(t, mc.Pad.Pressed(peripherals.ButtonLeft))
	test.ExpectSuccess(t, mc.Pad.Pressed(peripherals.ButtonA))
}

func TestBuildFrame(t *testing.T) {
	fb := make([]uint8, mico.ScreenWidth*mico.ScreenHeight)
	frame := &bytes.Buffer{}

	buildFrame(frame, fb)
	s := frame.String()

	// every pixel pair drawn, every row on its own line
	test.ExpectEquality(t, strings.Count(s, halfBlock), mico.ScreenWidth*mico.ScreenHeight/2)
	test.ExpectEquality(t, strings.Count(s, "\n"), mico.ScreenHeight/2)

	// a uniform framebuffer needs exactly one colour code per ground
	test.ExpectEquality(t, strings.Count(s, "\033[48;2;"), 1)
	test.ExpectEquality(t, strings.Count(s, "\033[38;2;"), 1)
	test.ExpectSuccess(t, strings.Contains(s, "\033[48;2;0;0;0m"))

	// a single odd pixel needs a change into its colour and a change
	// back out again
	fb[5] = 0xff
	frame.Reset()
	buildFrame(frame, fb)
	s = frame.String()

	test.ExpectEquality(t, strings.Count(s, "\033[48;2;"), 3)
	test.ExpectEquality(t, strings.Count(s, "\033[38;2;"), 1)
	test.ExpectSuccess(t, strings.Contains(s, "\033[48;2;255;255;255m"))
}

func TestBuildFramePixelPairing(t *testing.T) {
	// the upper pixel of a pair is the cell background, the lower pixel
	// the foreground of the half block glyph
	fb := make([]uint8, mico.ScreenWidth*mico.ScreenHeight)
	for x := 0; x < mico.ScreenWidth; x++ {
		fb[x] = 0xff
	}

	frame := &bytes.Buffer{}
	buildFrame(frame, fb)

	prefix := cursorHome + resetColor + "\033[48;2;255;255;255m" + "\033[38;2;0;0;0m" + halfBlock
	test.ExpectSuccess(t, strings.HasPrefix(frame.String(), prefix))
}

func TestSamplesOwed(t *testing.T) {
	lo := uint64(wavwriter.SampleRate / mico.FramesPerSecond)
	var sampled uint64

	// one second of frames yields exactly the sample rate
	for f := uint64(1); f <= mico.FramesPerSecond; f++ {
		n := samplesOwed(f, sampled)
		test.ExpectSuccess(t, uint64(n) == lo || uint64(n) == lo+1)
		sampled += uint64(n)
	}
	test.ExpectEquality(t, sampled, uint64(wavwriter.SampleRate))

	// a second second yields exactly double
	for f := uint64(mico.FramesPerSecond + 1); f <= 2*mico.FramesPerSecond; f++ {
		sampled += uint64(samplesOwed(f, sampled))
	}
	test.ExpectEquality(t, sampled, uint64(2*wavwriter.SampleRate))
}
