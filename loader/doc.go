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

// Package loader fetches program files and attaches them to a machine.
//
// Three program formats are understood. A raw binary image (.bin or .rom)
// is placed at the loader's origin address, ROM base by default. An MPRG
// container (.mprg) is a binary image with a small header recording where
// the image loads and where execution starts. Assembly source (.masm or
// .asm) is assembled on the fly, so small test programs can be run without
// a separate assembly step.
//
// Files are named by local path or by http/https URL. The SHA1 hash of
// the file is recorded on load and can be checked against an expected
// value, which is how the regression system pins its test programs.
package loader
