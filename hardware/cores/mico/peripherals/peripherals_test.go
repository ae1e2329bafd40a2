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

package peripherals_test

import (
	"strings"
	"testing"

	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"
	"github.com/machina-emu/machina/test"
)

// raises records vectors raised by a device under test.
type raises struct {
	vectors []uint8
}

func (r *raises) raise(vector uint8) error {
	r.vectors = append(r.vectors, vector)
	return nil
}

func TestPad(t *testing.T) {
	r := &raises{}
	pad := peripherals.NewPad(r.raise)
	test.DemandImplements(t, pad, (bus.Device)(nil))

	pad.Set(peripherals.ButtonA, true)
	v, err := pad.Read(peripherals.PadButtons)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(peripherals.ButtonA))

	// no raise without the IRQ bit
	test.ExpectEquality(t, len(r.vectors), 0)

	test.ExpectSuccess(t, pad.Write(peripherals.PadControl, peripherals.PadControlIRQ))

	// releases never raise, presses do
	pad.Set(peripherals.ButtonA, false)
	test.ExpectEquality(t, len(r.vectors), 0)
	pad.Set(peripherals.ButtonStart, true)
	test.ExpectEquality(t, len(r.vectors), 1)
	test.ExpectEquality(t, r.vectors[0], peripherals.VectorPad)

	// holding a button is not a new press
	pad.Set(peripherals.ButtonStart, true)
	test.ExpectEquality(t, len(r.vectors), 1)

	// program writes to the button register are ignored
	test.ExpectSuccess(t, pad.Write(peripherals.PadButtons, 0xff))
	v, _ = pad.Read(peripherals.PadButtons)
	test.ExpectEquality(t, v, uint8(peripherals.ButtonStart))
}

func TestConsole(t *testing.T) {
	con := peripherals.NewConsole()
	test.DemandImplements(t, con, (bus.Device)(nil))

	echo := &strings.Builder{}
	con.SetEcho(echo)

	for _, b := range []byte("hello mico") {
		test.ExpectSuccess(t, con.Write(peripherals.ConsoleData, b))
	}

	test.ExpectEquality(t, string(con.Contents()), "hello mico")
	test.ExpectEquality(t, echo.String(), "hello mico")

	// the status register is always ready
	v, err := con.Read(peripherals.ConsoleStatus)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x01)

	// a poke is not output
	con.Poke(peripherals.ConsoleData, 'x')
	test.ExpectEquality(t, string(con.Contents()), "hello mico")
	test.ExpectEquality(t, con.Peek(peripherals.ConsoleData), 'x')
}

func TestConsoleRetention(t *testing.T) {
	con := peripherals.NewConsole()

	// overflow the retained ring and check the oldest bytes are the ones
	// that have gone
	for i := 0; i < 5000; i++ {
		_ = con.Write(peripherals.ConsoleData, uint8(i))
	}

	contents := con.Contents()
	test.ExpectEquality(t, len(contents), 4096)
	test.ExpectEquality(t, contents[0], uint8((5000-4096)%256))
	test.ExpectEquality(t, contents[4095], uint8(4999%256))
}

func TestTimerDevice(t *testing.T) {
	var armedVector uint8
	var armedInterval uint64
	var armedRepeat bool
	armed := false

	dev := peripherals.NewTimer(
		func(vector uint8, interval uint64, repeat bool) error {
			armed = true
			armedVector = vector
			armedInterval = interval
			armedRepeat = repeat
			return nil
		},
		func() error {
			armed = false
			return nil
		},
		func() bool { return armed },
	)
	test.DemandImplements(t, dev, (bus.Device)(nil))

	test.ExpectSuccess(t, dev.Write(peripherals.TimerPeriodLo, 0x34))
	test.ExpectSuccess(t, dev.Write(peripherals.TimerPeriodHi, 0x12))

	// arm with vector 5, repeating
	control := peripherals.TimerControlArm | peripherals.TimerControlRepeat | (5 << 4)
	test.ExpectSuccess(t, dev.Write(peripherals.TimerControl, control))

	test.ExpectEquality(t, armed, true)
	test.ExpectEquality(t, armedVector, 5)
	test.ExpectEquality(t, armedInterval, 0x1234)
	test.ExpectEquality(t, armedRepeat, true)

	v, _ := dev.Read(peripherals.TimerStatus)
	test.ExpectEquality(t, v, peripherals.TimerStatusArmed)

	// clearing the arm bit disarms
	test.ExpectSuccess(t, dev.Write(peripherals.TimerControl, 0))
	test.ExpectEquality(t, armed, false)

	// a poke latches the control register without arming
	dev.Poke(peripherals.TimerControl, control)
	test.ExpectEquality(t, armed, false)
}

func TestTimerZeroPeriod(t *testing.T) {
	var armedInterval uint64

	dev := peripherals.NewTimer(
		func(vector uint8, interval uint64, repeat bool) error {
			armedInterval = interval
			return nil
		},
		func() error { return nil },
		func() bool { return false },
	)

	// a zero period arms with the longest expressible interval
	test.ExpectSuccess(t, dev.Write(peripherals.TimerControl, peripherals.TimerControlArm))
	test.ExpectEquality(t, armedInterval, 0x10000)
}

func TestSync(t *testing.T) {
	r := &raises{}
	sync := peripherals.NewSync(r.raise)
	test.DemandImplements(t, sync, (bus.Device)(nil))

	sync.Frame()
	sync.Frame()
	sync.Frame()

	test.ExpectEquality(t, sync.Frames(), 3)
	lo, _ := sync.Read(peripherals.SyncFrameLo)
	test.ExpectEquality(t, lo, 3)

	// frames only raise once the IRQ bit is set
	test.ExpectEquality(t, len(r.vectors), 0)
	test.ExpectSuccess(t, sync.Write(peripherals.SyncControl, peripherals.SyncControlIRQ))
	sync.Frame()
	test.ExpectEquality(t, len(r.vectors), 1)
	test.ExpectEquality(t, r.vectors[0], peripherals.VectorSync)
}

func TestBeepSynth(t *testing.T) {
	beep := peripherals.NewBeep()
	test.DemandImplements(t, beep, (bus.Device)(nil))

	synth := peripherals.NewSynth(beep, 2000000, 22050)

	// gate closed means silence
	buf := make([]int16, 64)
	synth.Fill(buf)
	for _, s := range buf {
		test.DemandEquality(t, s, 0)
	}

	// a 1kHz-ish tone at full volume. period of 1000 cycles per half wave
	// at a 2MHz clock
	test.ExpectSuccess(t, beep.Write(peripherals.BeepPeriodLo, 0xe8))
	test.ExpectSuccess(t, beep.Write(peripherals.BeepPeriodHi, 0x03))
	test.ExpectSuccess(t, beep.Write(peripherals.BeepControl, peripherals.BeepControlGate|0xf0))

	test.ExpectEquality(t, beep.Period(), 1000)
	test.ExpectEquality(t, beep.Gate(), true)
	test.ExpectEquality(t, beep.Volume(), 15)

	synth.Fill(buf)

	// the wave must move and must only take the two amplitude values
	high := false
	low := false
	for _, s := range buf {
		switch s {
		case 15 * 1024:
			high = true
		case -15 * 1024:
			low = true
		default:
			t.Fatalf("unexpected sample value %d", s)
		}
	}
	test.ExpectEquality(t, high, true)
	test.ExpectEquality(t, low, true)
}
