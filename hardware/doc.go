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

// Package hardware is the base package for the machine emulation. It and
// its sub-packages contain everything required for a headless emulation.
//
// The Machine type is the root of the emulation. It ties a processor core
// to a register file, a memory bus and the timer subsystem, and knows how
// to step the whole ensemble one instruction at a time. The Run() group of
// functions put Step() in a loop for the common use cases.
//
// Nothing in the package starts a goroutine. The emulation advances only
// when the caller asks it to, which is what makes stepping, rewinding and
// the regression tools deterministic.
package hardware
