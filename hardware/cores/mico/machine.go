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

package mico

import (
	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/environment"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/hardware/bus"
	"github.com/machina-emu/machina/hardware/cores/mico/peripherals"
	"github.com/machina-emu/machina/hardware/preferences"
	"github.com/machina-emu/machina/hardware/timers"
)

// Mico is a fully assembled console: the machine with typed access to the
// IO devices that hosts need to reach, the pad for input and the beeper
// for sound in particular.
type Mico struct {
	*hardware.Machine

	Pad     *peripherals.Pad
	Console *peripherals.Console
	Timer   *peripherals.Timer
	Beep    *peripherals.Beep
	Sync    *peripherals.Sync
}

// NewMico builds the console. The prefs argument can be nil, in which case
// a fresh Preferences instance is created, see environment.NewEnvironment.
//
// The returned console is not runnable until Reset() has been called.
func NewMico(prefs *preferences.Preferences) (*Mico, error) {
	tmr := timers.NewTimers(NumTimerSlots, NumVectors, InterruptQueueLimit)

	env, err := environment.NewEnvironment(tmr, prefs)
	if err != nil {
		return nil, curated.Errorf("mico: %v", err)
	}

	policy, err := bus.ParseUnmappedPolicy(env.Prefs.UnmappedPolicy.String())
	if err != nil {
		return nil, curated.Errorf("mico: %v", err)
	}

	mem := bus.NewBus(policy)
	for _, r := range []struct {
		name   string
		origin uint16
		memtop uint16
		kind   bus.RegionKind
	}{
		{"ROM", OriginROM, MemtopROM, bus.ReadOnly},
		{"RAM", OriginRAM, MemtopRAM, bus.ReadWrite},
		{"VRAM", OriginVRAM, MemtopVRAM, bus.ReadWrite},
	} {
		if err := mem.AddRegion(r.name, r.origin, r.memtop, r.kind); err != nil {
			return nil, curated.Errorf("mico: %v", err)
		}
	}

	mc := &Mico{
		Pad:     peripherals.NewPad(tmr.Raise),
		Console: peripherals.NewConsole(),
		Beep:    peripherals.NewBeep(),
		Sync:    peripherals.NewSync(tmr.Raise),
	}

	// the timer device drives slot 0 of the timer subsystem. the
	// remaining slots are free for future devices
	mc.Timer = peripherals.NewTimer(
		func(vector uint8, interval uint64, repeat bool) error {
			return tmr.Arm(0, vector, interval, repeat)
		},
		func() error {
			return tmr.Disarm(0)
		},
		func() bool {
			return tmr.Slot(0).Armed
		},
	)

	for _, d := range []struct {
		name   string
		origin uint16
		dev    bus.Device
	}{
		{"PAD", OriginPad, mc.Pad},
		{"CONSOLE", OriginConsole, mc.Console},
		{"TIMER", OriginTimer, mc.Timer},
		{"BEEP", OriginBeep, mc.Beep},
		{"SYNC", OriginSync, mc.Sync},
	} {
		if err := mem.AddDevice(d.name, d.origin, d.origin+ioDeviceSize-1, d.dev); err != nil {
			return nil, curated.Errorf("mico: %v", err)
		}
	}

	mc.Machine, err = hardware.NewMachine(env, &Core{}, mem, tmr)
	if err != nil {
		return nil, err
	}

	return mc, nil
}

// Framebuffer returns the live VRAM contents, ScreenWidth*ScreenHeight
// bytes in row-major order. The slice aliases machine memory, hosts must
// treat it as read-only.
func (mc *Mico) Framebuffer() []uint8 {
	for _, r := range mc.Mem.Regions() {
		if r.Name == "VRAM" {
			return r.Data
		}
	}
	return nil
}

// RGB expands an RGB-332 pixel into its 8-bit colour channels.
func RGB(pixel uint8) (uint8, uint8, uint8) {
	r := uint16(pixel>>5) & 0x07
	g := uint16(pixel>>2) & 0x07
	b := uint16(pixel) & 0x03
	return uint8(r * 255 / 7), uint8(g * 255 / 7), uint8(b * 255 / 3)
}
