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

package dbgmem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/bus"
)

// DbgMem is a front-end to the machine's memory bus. it allows addressing by
// symbol name and uses the AddressInfo type for easier presentation.
type DbgMem struct {
	Mem *bus.Bus

	// symbols read from the program file. may be nil
	Symbols map[string]uint16
}

// Sentinel errors returned by the dbgmem package.
const (
	PeekError  = "cannot peek address (%v)"
	PokeError  = "cannot poke address (%v)"
	ReadError  = "cannot read address (%v)"
	WriteError = "cannot write address (%v)"
)

// lookupSymbol resolves a symbol to an address. program symbols are searched
// first, then the names and device labels of the bus regions. comparison is
// case insensitive.
func (dbgmem DbgMem) lookupSymbol(symbol string) (uint16, string, bool) {
	for sym, addr := range dbgmem.Symbols {
		if strings.EqualFold(sym, symbol) {
			return addr, sym, true
		}
	}
	for _, r := range dbgmem.Mem.Regions() {
		if strings.EqualFold(r.Name, symbol) {
			return r.Origin, r.Name, true
		}
		if r.Kind == bus.MappedIO && r.Device != nil && strings.EqualFold(r.Device.Label(), symbol) {
			return r.Origin, r.Device.Label(), true
		}
	}
	return 0, "", false
}

// symbolForAddress is the reverse of lookupSymbol. when more than one symbol
// names the address the lexically smallest is returned, so that repeated
// lookups always show the same symbol.
func (dbgmem DbgMem) symbolForAddress(address uint16) string {
	match := ""
	for sym, addr := range dbgmem.Symbols {
		if addr == address {
			if match == "" || sym < match {
				match = sym
			}
		}
	}
	return match
}

// area returns the name of the bus region containing the address.
func (dbgmem DbgMem) area(address uint16) string {
	for _, r := range dbgmem.Mem.Regions() {
		if address >= r.Origin && address <= r.Memtop {
			return r.Name
		}
	}
	return "unmapped"
}

// GetAddressInfo allows addressing by symbols in addition to numerically. A
// nil return value means the address could not be resolved.
func (dbgmem DbgMem) GetAddressInfo(address any, read bool) *AddressInfo {
	ai := &AddressInfo{Read: read}

	switch address := address.(type) {
	case uint16:
		ai.Address = address
		ai.Symbol = dbgmem.symbolForAddress(address)
	case string:
		if addr, sym, ok := dbgmem.lookupSymbol(address); ok {
			ai.Address = addr
			ai.Symbol = sym
		} else {
			// this may be a string representation of a numerical address
			addr, err := strconv.ParseUint(address, 0, 16)
			if err != nil {
				return nil
			}
			ai.Address = uint16(addr)
			ai.Symbol = dbgmem.symbolForAddress(ai.Address)
		}
	default:
		panic(fmt.Sprintf("unsupported address type (%T)", address))
	}

	ai.Area = dbgmem.area(ai.Address)

	return ai
}

// Peek returns the contents of the memory address, without triggering any
// side effects. The supplied address can be numeric or symbolic.
func (dbgmem DbgMem) Peek(address any) (*AddressInfo, error) {
	ai := dbgmem.GetAddressInfo(address, true)
	if ai == nil {
		return nil, curated.Errorf(PeekError, address)
	}

	var err error
	ai.Data, err = dbgmem.Mem.Peek(ai.Address)
	if err != nil {
		if curated.Is(err, bus.MemoryFault) {
			return nil, curated.Errorf(PeekError, address)
		}
		return nil, err
	}

	ai.Peeked = true

	return ai, nil
}

// Poke writes a value to the specified address without triggering any side
// effects. The supplied address can be numeric or symbolic.
func (dbgmem DbgMem) Poke(address any, data uint8) (*AddressInfo, error) {
	ai := dbgmem.GetAddressInfo(address, false)
	if ai == nil {
		return nil, curated.Errorf(PokeError, address)
	}

	err := dbgmem.Mem.Poke(ai.Address, data)
	if err != nil {
		if curated.Is(err, bus.MemoryFault) {
			return nil, curated.Errorf(PokeError, address)
		}
		return nil, err
	}

	ai.Data = data
	ai.Peeked = true

	return ai, nil
}

// Read reads the memory address through the live bus path, triggering any
// side effects a mapped device has. The supplied address can be numeric or
// symbolic.
func (dbgmem DbgMem) Read(address any) (*AddressInfo, error) {
	ai := dbgmem.GetAddressInfo(address, true)
	if ai == nil {
		return nil, curated.Errorf(ReadError, address)
	}

	var err error
	ai.Data, err = dbgmem.Mem.Read(ai.Address)
	if err != nil {
		if curated.Is(err, bus.MemoryFault) {
			return nil, curated.Errorf(ReadError, address)
		}
		return nil, err
	}

	ai.Peeked = true

	return ai, nil
}

// Write writes a value to the specified address through the live bus path,
// triggering any side effects a mapped device has. The supplied address can
// be numeric or symbolic.
func (dbgmem DbgMem) Write(address any, data uint8) (*AddressInfo, error) {
	ai := dbgmem.GetAddressInfo(address, false)
	if ai == nil {
		return nil, curated.Errorf(WriteError, address)
	}

	err := dbgmem.Mem.Write(ai.Address, data)
	if err != nil {
		if curated.Is(err, bus.MemoryFault) {
			return nil, curated.Errorf(WriteError, address)
		}
		return nil, err
	}

	ai.Data = data
	ai.Peeked = true

	return ai, nil
}
