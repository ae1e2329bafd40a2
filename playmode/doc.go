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

// Package playmode is the terminal frontend to the emulation. The
// machine runs with no debugging features, the framebuffer is drawn
// directly into the terminal and the keyboard drives the control pad.
//
// The terminal is switched to the alternate screen and put into raw mode
// for the duration of the session. Each character cell displays two
// pixels, the lower half block glyph showing one pixel over its
// background colour showing the other. The 'q' key ends the session.
//
// A terminal cannot report key releases so the pad is driven by edges: a
// key seen in one frame but not the next is taken to mean the key has
// been released. Holding a key relies on the keyboard repeat of the
// terminal, which is good enough for the sort of program the console
// runs but is no substitute for the SDL frontend.
package playmode
