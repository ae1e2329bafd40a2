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

package sdlplay

import (
	"encoding/binary"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"

	"github.com/veandco/go-sdl2/sdl"
)

// samples per second put to the SDL queue.
const sampleRate = 22050

// the device buffer length is a balance. too long and the sound lags the
// image, too short and a slow frame causes an underflow click. this value
// was found by trial and error, the precise value is not critical.
const bufferLength = 1024

// the queue level above which no more samples are added for the moment.
// the level rises when rendering stalls, frames taking longer than the
// audio they queue, and a deep queue is nothing but lag.
const maxQueueBytes = sampleRate

// sound synthesises the beeper into the SDL audio queue.
type sound struct {
	id    sdl.AudioDeviceID
	spec  sdl.AudioSpec
	synth *peripherals.Synth

	// sample accounting. frames and sampled keep the queue in step with
	// the frame count, the sample rate not being a whole multiple of the
	// frame rate
	frames  uint64
	sampled uint64

	buf []int16
	enc []byte
}

// newSound is the preferred method of initialisation for the sound type.
//
// prerequisite: SDL_INIT_AUDIO must be included in the call to sdl.Init().
func newSound(mc *mico.Mico) (*sound, error) {
	snd := &sound{
		synth: peripherals.NewSynth(mc.Beep, mico.ClockHz, sampleRate),
	}

	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  uint16(bufferLength),
	}

	var err error
	var actualSpec sdl.AudioSpec

	snd.id, err = sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return nil, curated.Errorf("sdlplay: audio: %v", err)
	}
	snd.spec = actualSpec

	sdl.PauseAudioDevice(snd.id, false)

	return snd, nil
}

// frame queues the audio for one frame of emulation.
func (snd *sound) frame() error {
	snd.frames++

	n := int(snd.frames*sampleRate/mico.FramesPerSecond - snd.sampled)
	if n <= 0 {
		return nil
	}
	snd.sampled += uint64(n)

	if sdl.GetQueuedAudioSize(snd.id) > maxQueueBytes {
		return nil
	}

	if cap(snd.buf) < n {
		snd.buf = make([]int16, n)
		snd.enc = make([]byte, n*2)
	}

	buf := snd.buf[:n]
	snd.synth.Fill(buf)

	// AUDIO_S16LSB regardless of host byte order, so the encoding here
	// is fixed too
	enc := snd.enc[:n*2]
	for i, s := range buf {
		binary.LittleEndian.PutUint16(enc[i*2:], uint16(s))
	}

	if err := sdl.QueueAudio(snd.id, enc); err != nil {
		return curated.Errorf("sdlplay: audio: %v", err)
	}

	return nil
}

// pause stops and starts the audio device.
func (snd *sound) pause(paused bool) {
	sdl.PauseAudioDevice(snd.id, paused)
}

// end closes the audio device.
func (snd *sound) end() {
	sdl.ClearQueuedAudio(snd.id)
	sdl.CloseAudioDevice(snd.id)
}
