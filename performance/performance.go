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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/debugger/govern"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/hardware/cores/mico"
	"github.com/machina-emu/machina/loader"
)

// sentinal error returned by the Run() callback when the measurement
// period has elapsed.
const timedOut = "performance: timed out"

// the flat-out rate of a machine settles down over the first second or
// so of a run. nothing is counted until the lead-in has passed.
const leadInDuration = 2 * time.Second

// Check the performance of the emulator using the supplied program.
//
// The machine runs flat out for the lead-in plus the specified duration
// and the achieved rate over the measured window is written to output.
// CPU and memory profiles, a trace, or a combination of those are
// created as defined by the profile argument.
func Check(output io.Writer, profile Profile, ld loader.Loader, duration string) error {
	mc, err := mico.NewMico(nil)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	if err := ld.Attach(mc.Machine); err != nil {
		return curated.Errorf("performance: %v", err)
	}

	// parse supplied duration
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	// results of the measured window. filled in by the runner
	var numSteps uint64
	var numCycles uint64
	var elapsed time.Duration
	var measuring bool

	runner := func() error {
		// expires twice: false when the lead-in has passed and the
		// measurement should begin, true when the measurement is over.
		// the second timer starts when the first expiry is consumed, so
		// the measured window really is the asked-for duration
		timerChan := make(chan bool)

		time.AfterFunc(leadInDuration, func() {
			timerChan <- false

			time.AfterFunc(dur, func() {
				timerChan <- true
			})
		})

		var startCycles uint64
		var startTime time.Time

		// the continue check runs once every PerformanceBrake steps, so
		// counting invocations counts steps. checking the timer channel
		// is cheap enough at that rate
		err := mc.Run(func() (govern.State, error) {
			if measuring {
				numSteps += hardware.PerformanceBrake
			}

			select {
			case v := <-timerChan:
				if v {
					elapsed = time.Since(startTime)
					return govern.Ending, curated.Errorf(timedOut)
				}

				// lead-in has passed. measurement begins now
				measuring = true
				startCycles = mc.TMR.Cycles()
				startTime = time.Now()
			default:
			}

			return govern.Running, nil
		})

		numCycles = mc.TMR.Cycles() - startCycles

		// the machine halting during the measured window ends the run
		// early. measure what we got
		if err == nil && measuring {
			elapsed = time.Since(startTime)
		}

		return err
	}

	// launch runner directly or through the profiler, depending on the
	// supplied arguments
	err = RunProfiler(profile, "performance", runner)
	if err != nil && !curated.Is(err, timedOut) {
		return curated.Errorf("performance: %v", err)
	}

	if !measuring {
		return curated.Errorf("performance: program ended before measurement began")
	}

	// calculate performance
	seconds := elapsed.Seconds()
	mhz, accuracy := CalcSpeed(numCycles, seconds)

	output.Write([]byte(fmt.Sprintf("%.0f steps/s; %.0f cycles/s; %.2f MHz (%.1f%% of full speed)\n",
		float64(numSteps)/seconds, float64(numCycles)/seconds, mhz, accuracy)))

	return nil
}
