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

package debugger

import (
	"fmt"
	"strings"

	"github.com/machina-emu/machina/debugger/terminal"
	"github.com/machina-emu/machina/hardware/execution"
)

// buildPrompt returns a prompt suitable for the current state of the
// machine. the prompt contains the disassembly of the instruction the
// next step will execute.
func (dbg *Debugger) buildPrompt() terminal.Prompt {
	content := strings.Builder{}

	pc := dbg.mc.Regs.PC()
	content.WriteString(fmt.Sprintf("%#04x", pc))

	// decode through the side-effect free bus reader. a decode failure
	// leaves the bare address in the prompt, the user will discover the
	// problem soon enough when they step
	inst, err := dbg.mc.Core.Decode(dbg.mc.Mem.DebugReader(), pc)
	if err == nil {
		content.WriteString(fmt.Sprintf("  %s", dbg.mc.Core.FormatInstruction(inst, pc)))
	}

	switch dbg.mc.State() {
	case execution.Halted:
		content.WriteString(" (halted)")
	case execution.Faulted:
		content.WriteString(" (faulted)")
	}

	return terminal.Prompt{
		Content:   content.String(),
		Type:      terminal.PromptTypeStep,
		Recording: dbg.scriptScribe.IsActive(),
	}
}
