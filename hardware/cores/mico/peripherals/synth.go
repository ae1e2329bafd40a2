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

package peripherals

// Synth turns the register state of a Beep device into PCM samples. One
// Synth instance serves one host, the SDL frontend and the WAV recorder
// each keep their own so their sample clocks stay independent.
type Synth struct {
	beep *Beep

	// machine cycles per second and samples per second
	clock int
	rate  int

	// position within the square wave, in machine cycles. the wave is
	// high while phase < period
	phase uint64

	// fixed point remainder of the cycles per sample division
	acc int
}

// NewSynth is the preferred method of initialisation for the Synth type.
func NewSynth(beep *Beep, clock int, sampleRate int) *Synth {
	return &Synth{
		beep:  beep,
		clock: clock,
		rate:  sampleRate,
	}
}

// Fill writes samples of the current beeper state into buf. Silence when
// the gate is closed or the period is zero.
func (s *Synth) Fill(buf []int16) {
	period := uint64(s.beep.Period())
	if !s.beep.Gate() || period == 0 {
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	// volume 0 to 15 maps onto a comfortable slice of the int16 range
	amplitude := int16(s.beep.Volume()) * 1024

	for i := range buf {
		// advance the phase by the number of whole machine cycles in one
		// sample period
		s.acc += s.clock
		s.phase += uint64(s.acc / s.rate)
		s.acc %= s.rate
		s.phase %= period * 2

		if s.phase < period {
			buf[i] = amplitude
		} else {
			buf[i] = -amplitude
		}
	}
}
