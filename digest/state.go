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

package digest

import (
	"bytes"
	"crypto/sha1"
	"fmt"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware"
	"github.com/machina-emu/machina/snapshot"
)

// State returns the hash of the machine's complete state. The state is run
// through the snapshot encoding, meaning that two machines with the same
// hash would also produce identical snapshot files.
func State(m *hardware.Machine) (string, error) {
	buf := &bytes.Buffer{}
	if err := snapshot.Save(m, buf); err != nil {
		return "", curated.Errorf("digest: %v", err)
	}
	return fmt.Sprintf("%x", sha1.Sum(buf.Bytes())), nil
}
