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

// Package performance contains helper functions relating to performance.
//
// Check() runs a program flat out for a fixed duration of time and
// reports the rate the machine achieved against the rate of the real
// console. It will optionally generate profiling information.
//
// RunProfiler() can be used to generate the various profile types. On
// its own it will not limit the amount of time the program runs for, so
// it is useful for more real-world situations.
//
// CalcSpeed() converts a cycle count and duration into a clock rate.
// Probably not suitable for "live" speed monitoring.
package performance
