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

// Package sdlplay is the windowed frontend to the emulation. An SDL
// window shows the framebuffer, the keyboard drives the control pad and
// the beeper plays through the SDL audio queue.
//
// Unlike the terminal frontend the keyboard here has real keydown and
// keyup events, so holding a button works properly. The emulation pauses
// while the window does not have focus.
//
// Everything runs on the calling goroutine. SDL wants its event handling
// on the main thread and the machine is not safe for concurrent
// stepping, so a single loop serves both.
package sdlplay

import (
	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/hardware/execution"
	"github.com/machina-emu/machina/hardware/preferences"
	"github.com/machina-emu/machina/loader"
	"github.com/machina-emu/machina/performance/limiter"

	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "Machina"

// RGBA bytes per pixel.
const pixelDepth = 4

// DefaultScale is the window scale used when the caller asks for no
// scale in particular.
const DefaultScale = 4

// SdlPlay is the SDL implementation of the playing window.
type SdlPlay struct {
	mc *mico.Mico

	// limit screen updates to the frame rate of the console
	lmtr *limiter.FpsLimiter

	// all audio is handled by the sound type
	snd *sound

	// sdl stuff
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	// the byte array we copy to the texture before applying to the
	// renderer. it is equal to ScreenWidth * ScreenHeight * pixelDepth
	pixels []byte

	// emulation stalls while the window does not have focus
	paused bool

	// set by the service loop when the session should end
	quit bool
}

// NewSdlPlay is the preferred method of initialisation for the SdlPlay
// type. A scale of zero or less means DefaultScale.
//
// MUST ONLY be called from the main goroutine.
func NewSdlPlay(mc *mico.Mico, scale int) (*SdlPlay, error) {
	scr := &SdlPlay{mc: mc}

	if scale <= 0 {
		scale = DefaultScale
	}

	var err error

	// set up sdl
	err = sdl.Init(sdl.INIT_EVERYTHING)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.window, err = sdl.CreateWindow(windowTitle,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(mico.ScreenWidth*scale), int32(mico.ScreenHeight*scale),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.renderer, err = sdl.CreateRenderer(scr.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	// the texture is the same size as the framebuffer. the renderer
	// stretches it over the window, whatever size the window is
	scr.texture, err = scr.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING),
		mico.ScreenWidth, mico.ScreenHeight)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.pixels = make([]byte, mico.ScreenWidth*mico.ScreenHeight*pixelDepth)

	// preset alpha channel - we never change the value of this channel
	for i := pixelDepth - 1; i < len(scr.pixels); i += pixelDepth {
		scr.pixels[i] = 255
	}

	// initialise the sound system
	scr.snd, err = newSound(mc)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.lmtr, err = limiter.NewFPSLimiter(mico.FramesPerSecond)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	return scr, nil
}

// Play runs the loader's program in an SDL window. The session ends
// when the user closes the window or presses escape; a machine that
// halts stays on screen, showing its final frame, until then. A fault
// ends the session with the fault as the returned error.
//
// MUST ONLY be called from the main goroutine.
func Play(ld loader.Loader, scale int) error {
	prf, err := preferences.NewPreferences()
	if err != nil {
		return curated.Errorf("sdlplay: %v", err)
	}

	mc, err := mico.NewMico(prf)
	if err != nil {
		return curated.Errorf("sdlplay: %v", err)
	}

	if err := ld.Attach(mc.Machine); err != nil {
		return curated.Errorf("sdlplay: %v", err)
	}

	scr, err := NewSdlPlay(mc, scale)
	if err != nil {
		return err
	}
	defer scr.end()

	return scr.run()
}

// run is the combined event and emulation loop. one iteration is one
// frame of the console.
func (scr *SdlPlay) run() error {
	for !scr.quit {
		scr.service()

		if !scr.paused && scr.mc.State() == execution.Running {
			if _, err := scr.mc.RunCycles(mico.CyclesPerFrame); err != nil {
				return curated.Errorf("sdlplay: %v", err)
			}
			scr.mc.Sync.Frame()

			if err := scr.snd.frame(); err != nil {
				return curated.Errorf("sdlplay: %v", err)
			}
		}

		if err := scr.newFrame(); err != nil {
			return curated.Errorf("sdlplay: %v", err)
		}

		scr.lmtr.Wait()
	}

	return nil
}

// newFrame converts the framebuffer into texture pixels and presents
// the result.
func (scr *SdlPlay) newFrame() error {
	for i, px := range scr.mc.Framebuffer() {
		r, g, b := mico.RGB(px)
		o := i * pixelDepth
		scr.pixels[o] = r
		scr.pixels[o+1] = g
		scr.pixels[o+2] = b
	}

	err := scr.texture.Update(nil, scr.pixels, mico.ScreenWidth*pixelDepth)
	if err != nil {
		return err
	}

	err = scr.renderer.Copy(scr.texture, nil, nil)
	if err != nil {
		return err
	}

	scr.renderer.Present()

	return nil
}

// setPaused stalls the emulation and the audio queue.
func (scr *SdlPlay) setPaused(paused bool) {
	scr.paused = paused
	scr.snd.pause(paused)
	scr.mc.SetPaused(paused)
}

// end releases all SDL resources.
func (scr *SdlPlay) end() {
	scr.snd.end()
	_ = scr.texture.Destroy()
	_ = scr.renderer.Destroy()
	_ = scr.window.Destroy()
	sdl.Quit()
}
