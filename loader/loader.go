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
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/hardware/cores/mico/assembler"
)

// Program formats accepted by the Format field of the Loader type.
const (
	FormatAuto = "AUTO"
	FormatBin  = "BIN"
	FormatMPRG = "MPRG"
	FormatMASM = "MASM"
)

// Sentinel errors returned by the loader package.
const (
	// HashMismatch is returned by Load() when the loaded data does not
	// match the expected hash.
	HashMismatch = "loader: %s: unexpected hash value"

	// NoData is returned by Load() when the named file contains no
	// program at all.
	NoData = "loader: %s: no program data"

	// DoesNotFit is returned by Attach() when a program image runs past
	// the end of the memory region it loads into.
	DoesNotFit = "loader: %d bytes at %#04x does not fit in %s"
)

// Loader is used to specify the program to attach to the machine.
type Loader struct {
	// filename or URL of the program
	Filename string

	// one of the Format constants. FormatAuto means the format is taken
	// from the file extension, with a fingerprint of the data deciding
	// when the extension is no help
	Format string

	// the address the program image loads at. for raw binary images this
	// is taken at face value, ROM base by default. MPRG and assembled
	// programs know their own origin and overwrite this field on load
	Origin uint16

	// the address execution starts at after Attach(). filled on load
	Entry uint16

	// expected hash of the file. the empty string means the hash is not
	// checked. after a load the field holds the hash of the loaded file
	Hash string

	// the program image. for assembly source this is the assembled
	// program, not the source text
	Data []byte

	// label addresses of an assembled program. nil for binary formats
	Symbols map[string]uint16
}

// NewLoader is the preferred method of initialisation for the Loader
// type.
//
// The format argument will be used to set the Format field, unless the
// argument is either "AUTO" or the empty string, in which case the file
// extension decides. Extensions are matched case insensitively.
func NewLoader(filename string, format string) Loader {
	cl := Loader{
		Filename: filename,
		Format:   FormatAuto,
	}

	format = strings.TrimSpace(strings.ToUpper(format))
	if format != FormatAuto && format != "" {
		cl.Format = format
		return cl
	}

	switch strings.ToLower(path.Ext(filename)) {
	case ".bin", ".rom":
		cl.Format = FormatBin
	case ".mprg":
		cl.Format = FormatMPRG
	case ".masm", ".asm":
		cl.Format = FormatMASM
	}

	return cl
}

// FileExtensions is the list of file extensions that are recognised by
// the loader package.
var FileExtensions = [...]string{".bin", ".rom", ".mprg", ".masm", ".asm"}

// ShortName returns a shortened version of the loader's filename,
// suitable for titles and log lines.
func (cl Loader) ShortName() string {
	n := path.Base(cl.Filename)
	return strings.TrimSuffix(n, path.Ext(n))
}

// HasLoaded returns true if Load() has been successfully called.
func (cl Loader) HasLoaded() bool {
	return len(cl.Data) > 0
}

// Load the program data. Loader filenames with a valid scheme will use
// that method to load the data. Currently supported schemes are HTTP(S)
// and local files.
//
// Loading again after a successful load does nothing.
func (cl *Loader) Load() error {
	if cl.HasLoaded() {
		return nil
	}

	scheme := "file"
	if u, err := url.Parse(cl.Filename); err == nil {
		scheme = u.Scheme
	}

	var raw []byte

	switch scheme {
	case "http", "https":
		resp, err := http.Get(cl.Filename)
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}
		defer resp.Body.Close()

		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}

	case "file", "":
		var err error
		raw, err = os.ReadFile(cl.Filename)
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}

	default:
		return curated.Errorf("loader: unsupported URL scheme (%s)", scheme)
	}

	// the hash is always of the file as fetched. for MPRG that includes
	// the header and for assembly source it is the source text
	hash := fmt.Sprintf("%x", sha1.Sum(raw))
	if cl.Hash != "" && cl.Hash != hash {
		return curated.Errorf(HashMismatch, cl.ShortName())
	}
	cl.Hash = hash

	// an unhelpful file extension leaves the format undecided until now.
	// MPRG files are self announcing, anything else is a raw image
	if cl.Format == FormatAuto {
		if bytes.HasPrefix(raw, []byte(mprgMagic)) {
			cl.Format = FormatMPRG
		} else {
			cl.Format = FormatBin
		}
	}

	switch cl.Format {
	case FormatBin:
		cl.Data = raw
		cl.Entry = cl.Origin

	case FormatMPRG:
		if err := cl.decodeMPRG(raw); err != nil {
			return err
		}

	case FormatMASM:
		prog, err := assembler.Assemble(bytes.NewReader(raw))
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}
		cl.Origin = prog.Origin
		cl.Entry = prog.Entry
		cl.Data = prog.Data
		cl.Symbols = prog.Symbols

	default:
		return curated.Errorf("loader: unknown format (%s)", cl.Format)
	}

	if len(cl.Data) == 0 {
		return curated.Errorf(NoData, cl.ShortName())
	}

	return nil
}

// Attach the program to the machine. The machine is reset, the program
// image is patched into memory and the program counter is set to the
// program's entry address. Load() is called first if necessary.
//
// Raw images must fit inside the memory region they load into. Assembled
// programs place every byte at an address chosen by the source so the
// only requirement is that those addresses are mapped.
func (cl *Loader) Attach(m *hardware.Machine) error {
	if err := cl.Load(); err != nil {
		return err
	}

	if cl.Format != FormatMASM {
		fit := false
		for _, r := range m.Mem.Regions() {
			if cl.Origin >= r.Origin && cl.Origin <= r.Memtop {
				fit = int(cl.Origin)+len(cl.Data)-1 <= int(r.Memtop)
				if !fit {
					return curated.Errorf(DoesNotFit, len(cl.Data), cl.Origin, r.Name)
				}
				break
			}
		}
		if !fit {
			return curated.Errorf(DoesNotFit, len(cl.Data), cl.Origin, "unmapped memory")
		}
	}

	// reset before patching. memory reset would destroy any part of the
	// image outside of a ROM region
	if err := m.Reset(); err != nil {
		return err
	}

	if err := m.LoadProgram(cl.Origin, cl.Data); err != nil {
		return curated.Errorf("loader: %v", err)
	}

	m.Regs.SetPC(cl.Entry)

	return nil
}
