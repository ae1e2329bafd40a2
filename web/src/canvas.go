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
	"encoding/base64"

	"github.com/machina-emu/machina/hardware/cores/mico"

	"syscall/js"
)

const pixelDepth = 4

// Canvas mirrors the machine framebuffer onto an HTML canvas. Pixels
// are expanded to RGBA here and travel to the page as a base64 string
// through the worker's updateCanvas function. Scaling up to a
// comfortable size is the page's job.
type Canvas struct {
	// the worker in which our WASM application is running
	worker js.Value

	image  []byte
	frames int
}

// NewCanvas is the preferred method of initialisation for the Canvas
// type.
func NewCanvas(worker js.Value) *Canvas {
	scr := &Canvas{worker: worker}

	scr.image = make([]byte, mico.ScreenWidth*mico.ScreenHeight*pixelDepth)

	// preset alpha channel - we never change the value of this channel
	for i := pixelDepth - 1; i < len(scr.image); i += pixelDepth {
		scr.image[i] = 255
	}

	// size the HTML canvas to match the framebuffer
	scr.worker.Call("updateCanvasSize", mico.ScreenWidth, mico.ScreenHeight)

	return scr
}

// render sends the current framebuffer to the page.
func (scr *Canvas) render(fb []uint8) {
	for i, px := range fb {
		r, g, b := mico.RGB(px)
		o := i * pixelDepth
		scr.image[o] = r
		scr.image[o+1] = g
		scr.image[o+2] = b
	}

	scr.frames++
	scr.worker.Call("updateDebug", "frame", scr.frames)

	encodedImage := base64.StdEncoding.EncodeToString(scr.image)
	scr.worker.Call("updateCanvas", encodedImage)
}
