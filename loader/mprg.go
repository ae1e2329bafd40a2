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

package loader

import (
	"encoding/binary"

	"github.com/machina-emu/machina/curated"
)

// The MPRG container is a program image with a header saying where the
// image loads and where execution starts. All values little endian:
//
//	offset 0   magic "MPRG"
//	offset 4   format version, uint32
//	offset 8   load origin, uint16
//	offset 10  entry address, uint16
//	offset 12  program image
const (
	mprgMagic      = "MPRG"
	mprgVersion    = 1
	mprgHeaderSize = 12
)

// Sentinel errors returned when decoding an MPRG file.
const (
	// NotAnMPRG is returned for files that do not carry the MPRG magic.
	NotAnMPRG = "loader: %s: not an MPRG file"

	// MPRGVersion is returned for MPRG files written by a future version
	// of the format.
	MPRGVersion = "loader: %s: unsupported MPRG version (%d)"
)

// EncodeMPRG wraps a program image in an MPRG container. The asm mode of
// the machina binary uses it to write assembled programs to disk.
func EncodeMPRG(origin uint16, entry uint16, data []byte) []byte {
	b := make([]byte, mprgHeaderSize, mprgHeaderSize+len(data))
	copy(b, mprgMagic)
	binary.LittleEndian.PutUint32(b[4:], mprgVersion)
	binary.LittleEndian.PutUint16(b[8:], origin)
	binary.LittleEndian.PutUint16(b[10:], entry)
	return append(b, data...)
}

func (cl *Loader) decodeMPRG(raw []byte) error {
	if len(raw) < mprgHeaderSize || string(raw[:len(mprgMagic)]) != mprgMagic {
		return curated.Errorf(NotAnMPRG, cl.ShortName())
	}

	if v := binary.LittleEndian.Uint32(raw[4:]); v != mprgVersion {
		return curated.Errorf(MPRGVersion, cl.ShortName(), v)
	}

	cl.Origin = binary.LittleEndian.Uint16(raw[8:])
	cl.Entry = binary.LittleEndian.Uint16(raw[10:])
	cl.Data = raw[mprgHeaderSize:]

	return nil
}
