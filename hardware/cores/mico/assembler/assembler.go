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

package assembler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/machina-emu/machina/curated"
	"github.com/machina-emu/machina/hardware/cores/mico"

	"go.starlark.net/starlark"
)

const (
	// AssemblyError is returned for any problem in the source text. line
	// numbers count from one.
	AssemblyError = "assembly: line %d: %v"

	// NoProgram is returned when the source emits no instructions or data
	// at all.
	NoProgram = "assembly: nothing to assemble"
)

// Program is the output of a successful assembly.
type Program struct {
	// Origin is the lowest address touched by the source. Data is the
	// contiguous image from that address. gaps between .org blocks are
	// zero filled.
	Origin uint16
	Data   []uint8

	// Entry is the address of the first instruction in the source, or
	// Origin for a source with no instructions.
	Entry uint16

	// Symbols collects labels and equates for the benefit of debuggers.
	Symbols map[string]uint16
}

// Assemble reads mico assembly language and produces a Program.
func Assemble(src io.Reader) (*Program, error) {
	a := &assembly{
		symbols: make(map[string]uint16),
		origin:  -1,
		entry:   -1,
	}

	// first pass. parse every line, sizing statements and gathering labels
	scanner := bufio.NewScanner(src)
	lineno := 0
	for scanner.Scan() {
		lineno++
		if err := a.parseLine(scanner.Text(), lineno); err != nil {
			return nil, curated.Errorf(AssemblyError, lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf("assembly: %v", err)
	}

	if a.origin < 0 {
		return nil, curated.Errorf(NoProgram)
	}

	// second pass. every label now has a value so operands can be encoded
	for i := range a.stmts {
		s := &a.stmts[i]
		if err := a.encode(s); err != nil {
			return nil, curated.Errorf(AssemblyError, s.line, err)
		}
	}

	prog := &Program{
		Origin:  uint16(a.origin),
		Entry:   uint16(a.origin),
		Symbols: a.symbols,
	}
	if a.entry >= 0 {
		prog.Entry = uint16(a.entry)
	}
	prog.Data = make([]uint8, a.memtop-a.origin+1)
	copy(prog.Data, a.image[a.origin:a.memtop+1])

	return prog, nil
}

// AssembleFile assembles the contents of the named file.
func AssembleFile(filename string) (*Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, curated.Errorf("assembly: %v", err)
	}
	defer f.Close()
	return Assemble(f)
}

// statement is a single sized item from the first pass. a statement is
// either an instruction or a data directive, decided by the directive
// field.
type statement struct {
	line int
	addr uint16

	// instructions
	opcode   uint8
	def      mico.Definition
	operands []string

	// directives
	directive string
	args      []string
	fill      int
}

type assembly struct {
	symbols map[string]uint16
	stmts   []statement

	// the location counter and the extent of everything emitted so far.
	// origin and entry are -1 until the first emission
	pc     int
	origin int
	memtop int
	entry  int

	image [0x10000]uint8
}

var labelPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):`)

// parseLine handles one line of source during the first pass.
func (a *assembly) parseLine(text string, lineno int) error {
	line := strings.TrimSpace(stripComment(text))

	for {
		m := labelPattern.FindStringSubmatch(line)
		if m == nil {
			break
		}
		if err := a.define(m[1], uint16(a.pc)); err != nil {
			return err
		}
		line = strings.TrimSpace(line[len(m[0]):])
	}

	if line == "" {
		return nil
	}

	head, tail := splitHead(line)

	if strings.HasPrefix(head, ".") {
		return a.directive(strings.ToLower(head), tail, lineno)
	}

	opcode, def, ok := mico.Lookup(strings.ToUpper(head))
	if !ok {
		return fmt.Errorf("unrecognised instruction '%s'", head)
	}

	if a.entry < 0 {
		a.entry = a.pc
	}

	a.stmts = append(a.stmts, statement{
		line:     lineno,
		addr:     uint16(a.pc),
		opcode:   opcode,
		def:      def,
		operands: splitOperands(tail),
	})

	return a.advance(int(def.Length()))
}

// directive handles the dot directives. sizes must be decided here, on
// the first pass, but values other than those used by .org, .equ and the
// .fill count can wait for the second.
func (a *assembly) directive(name string, args string, lineno int) error {
	switch name {
	case ".org":
		v, err := a.evalWord(args)
		if err != nil {
			return err
		}
		a.pc = int(v)
		return nil

	case ".equ":
		sym, expr := splitHead(args)
		sym = strings.TrimSuffix(sym, ",")
		if sym == "" || expr == "" {
			return fmt.Errorf(".equ wants a name and a value")
		}
		v, err := a.evalWord(expr)
		if err != nil {
			return err
		}
		return a.define(sym, v)

	case ".byte", ".word":
		ops := splitOperands(args)
		if len(ops) == 0 {
			return fmt.Errorf("%s wants at least one value", name)
		}
		stmt := statement{line: lineno, addr: uint16(a.pc), directive: name, args: ops}
		a.stmts = append(a.stmts, stmt)
		size := len(ops)
		if name == ".word" {
			size *= 2
		}
		return a.advance(size)

	case ".fill":
		ops := splitOperands(args)
		if len(ops) < 1 || len(ops) > 2 {
			return fmt.Errorf(".fill wants a count and an optional value")
		}
		n, err := a.eval(ops[0])
		if err != nil {
			return fmt.Errorf(".fill count must be resolvable on the first pass (%v)", err)
		}
		if n < 0 {
			return fmt.Errorf(".fill count is negative")
		}
		if n == 0 {
			return nil
		}
		stmt := statement{line: lineno, addr: uint16(a.pc), directive: name, fill: n, args: ops[1:]}
		a.stmts = append(a.stmts, stmt)
		return a.advance(n)

	case ".str":
		ops := splitOperands(args)
		if len(ops) == 0 {
			return fmt.Errorf(".str wants at least one quoted string")
		}
		var b strings.Builder
		for _, op := range ops {
			s, err := strconv.Unquote(op)
			if err != nil {
				return fmt.Errorf(".str wants a quoted string, not '%s'", op)
			}
			b.WriteString(s)
		}
		stmt := statement{line: lineno, addr: uint16(a.pc), directive: name, args: []string{b.String()}}
		a.stmts = append(a.stmts, stmt)
		return a.advance(b.Len())
	}

	return fmt.Errorf("unrecognised directive '%s'", name)
}

// advance moves the location counter over an emission of the given size,
// growing the recorded extent of the program.
func (a *assembly) advance(size int) error {
	if size == 0 {
		return nil
	}
	if a.pc+size > len(a.image) {
		return fmt.Errorf("program runs past the end of memory")
	}
	if a.origin < 0 || a.pc < a.origin {
		a.origin = a.pc
	}
	if a.pc+size-1 > a.memtop {
		a.memtop = a.pc + size - 1
	}
	a.pc += size
	return nil
}

// define adds a symbol, rejecting duplicates and names that would shadow
// a register.
func (a *assembly) define(name string, val uint16) error {
	if _, ok := parseRegister(name); ok {
		return fmt.Errorf("'%s' is a register name", name)
	}
	if _, ok := a.symbols[name]; ok {
		return fmt.Errorf("'%s' is defined twice", name)
	}
	a.symbols[name] = val
	return nil
}

// encode is the second pass for a single statement.
func (a *assembly) encode(s *statement) error {
	if s.directive != "" {
		return a.data(s)
	}
	return a.instruction(s)
}

func (a *assembly) data(s *statement) error {
	addr := int(s.addr)

	switch s.directive {
	case ".byte":
		for i, op := range s.args {
			v, err := a.evalByte(op)
			if err != nil {
				return err
			}
			a.image[addr+i] = v
		}

	case ".word":
		for i, op := range s.args {
			v, err := a.evalWord(op)
			if err != nil {
				return err
			}
			a.image[addr+i*2] = uint8(v)
			a.image[addr+i*2+1] = uint8(v >> 8)
		}

	case ".fill":
		var v uint8
		if len(s.args) == 1 {
			var err error
			v, err = a.evalByte(s.args[0])
			if err != nil {
				return err
			}
		}
		for i := 0; i < s.fill; i++ {
			a.image[addr+i] = v
		}

	case ".str":
		copy(a.image[addr:], s.args[0])
	}

	return nil
}

func (a *assembly) instruction(s *statement) error {
	need := func(n int) error {
		if len(s.operands) != n {
			return fmt.Errorf("%s wants %d operand(s)", s.def.Mnemonic, n)
		}
		return nil
	}
	register := func(op string) (uint8, error) {
		r, ok := parseRegister(op)
		if !ok {
			return 0, fmt.Errorf("%s wants a register, not '%s'", s.def.Mnemonic, op)
		}
		return r, nil
	}
	memory := func(op string) (uint16, error) {
		inner, ok := bracketed(op)
		if !ok {
			return 0, fmt.Errorf("%s wants a memory operand, eg. [$4000]", s.def.Mnemonic)
		}
		if _, ok := parseRegister(inner); ok {
			return 0, fmt.Errorf("%s cannot take a register indirect operand", s.def.Mnemonic)
		}
		return a.evalWord(inner)
	}
	indirect := func(op string) (uint8, error) {
		inner, ok := bracketed(op)
		if !ok {
			return 0, fmt.Errorf("%s wants a register indirect operand, eg. [R1]", s.def.Mnemonic)
		}
		return register(inner)
	}

	buf := make([]uint8, 0, 4)
	buf = append(buf, s.opcode)

	switch s.def.Mode {
	case mico.Implied:
		if len(s.operands) != 0 {
			return fmt.Errorf("%s takes no operands", s.def.Mnemonic)
		}

	case mico.RegReg:
		if err := need(2); err != nil {
			return err
		}
		ra, err := register(s.operands[0])
		if err != nil {
			return err
		}
		rb, err := register(s.operands[1])
		if err != nil {
			return err
		}
		buf = append(buf, ra<<4|rb)

	case mico.Reg:
		if err := need(1); err != nil {
			return err
		}
		r, err := register(s.operands[0])
		if err != nil {
			return err
		}
		buf = append(buf, r)

	case mico.RegImm:
		if err := need(2); err != nil {
			return err
		}
		r, err := register(s.operands[0])
		if err != nil {
			return err
		}
		imm := s.operands[1]
		if !strings.HasPrefix(imm, "#") {
			return fmt.Errorf("%s wants an immediate operand, eg. #%s", s.def.Mnemonic, imm)
		}
		v, err := a.evalWord(imm[1:])
		if err != nil {
			return err
		}
		buf = append(buf, r, uint8(v), uint8(v>>8))

	case mico.RegAddr:
		if err := need(2); err != nil {
			return err
		}
		r, err := register(s.operands[0])
		if err != nil {
			return err
		}
		v, err := memory(s.operands[1])
		if err != nil {
			return err
		}
		buf = append(buf, r, uint8(v), uint8(v>>8))

	case mico.AddrReg:
		if err := need(2); err != nil {
			return err
		}
		v, err := memory(s.operands[0])
		if err != nil {
			return err
		}
		r, err := register(s.operands[1])
		if err != nil {
			return err
		}
		buf = append(buf, r, uint8(v), uint8(v>>8))

	case mico.RegInd:
		if err := need(2); err != nil {
			return err
		}
		r, err := register(s.operands[0])
		if err != nil {
			return err
		}
		p, err := indirect(s.operands[1])
		if err != nil {
			return err
		}
		buf = append(buf, r<<4|p)

	case mico.IndReg:
		if err := need(2); err != nil {
			return err
		}
		p, err := indirect(s.operands[0])
		if err != nil {
			return err
		}
		r, err := register(s.operands[1])
		if err != nil {
			return err
		}
		buf = append(buf, p<<4|r)

	case mico.Address:
		if err := need(1); err != nil {
			return err
		}
		v, err := a.evalWord(s.operands[0])
		if err != nil {
			return err
		}
		buf = append(buf, uint8(v), uint8(v>>8))

	case mico.Relative:
		if err := need(1); err != nil {
			return err
		}
		target, err := a.evalWord(s.operands[0])
		if err != nil {
			return err
		}
		disp := int(target) - (int(s.addr) + int(s.def.Length()))
		if disp < -128 || disp > 127 {
			return fmt.Errorf("branch target out of range (%d bytes away)", disp)
		}
		buf = append(buf, uint8(disp))
	}

	copy(a.image[s.addr:], buf)
	return nil
}

var hexLiteral = regexp.MustCompile(`\$[0-9a-fA-F]+`)

// eval resolves an operand expression to an integer. simple forms are
// handled directly and anything more elaborate is handed to starlark with
// the symbol table predeclared.
func (a *assembly) eval(expr string) (int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("missing value")
	}

	if expr[0] == '$' {
		if v, err := strconv.ParseUint(expr[1:], 16, 16); err == nil {
			return int(v), nil
		}
	}
	if v, err := strconv.ParseInt(expr, 0, 32); err == nil {
		return int(v), nil
	}
	if v, ok := a.symbols[expr]; ok {
		return int(v), nil
	}

	// $ff hex literals are rewritten to the 0xff form starlark understands
	src := hexLiteral.ReplaceAllStringFunc(expr, func(m string) string {
		return "0x" + m[1:]
	})

	env := starlark.StringDict{}
	for name, val := range a.symbols {
		env[name] = starlark.MakeInt(int(val))
	}

	v, err := starlark.Eval(&starlark.Thread{Name: "assembler"}, "expression", src, env)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate '%s' (%v)", expr, err)
	}
	i, ok := v.(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("expression '%s' is not a number", expr)
	}
	n, ok := i.Int64()
	if !ok {
		return 0, fmt.Errorf("expression '%s' is out of range", expr)
	}

	return int(n), nil
}

func (a *assembly) evalWord(expr string) (uint16, error) {
	v, err := a.eval(expr)
	if err != nil {
		return 0, err
	}
	if v < -0x8000 || v > 0xffff {
		return 0, fmt.Errorf("value %d does not fit in 16 bits", v)
	}
	return uint16(v), nil
}

func (a *assembly) evalByte(expr string) (uint8, error) {
	v, err := a.eval(expr)
	if err != nil {
		return 0, err
	}
	if v < -0x80 || v > 0xff {
		return 0, fmt.Errorf("value %d does not fit in 8 bits", v)
	}
	return uint8(v), nil
}

// stripComment removes a trailing comment, leaving semi-colons inside
// string literals alone.
func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch {
		case inString:
			if s[i] == '\\' {
				i++
			} else if s[i] == '"' {
				inString = false
			}
		case s[i] == '"':
			inString = true
		case s[i] == ';':
			return s[:i]
		}
	}
	return s
}

// splitHead divides a line into its first field and the rest.
func splitHead(s string) (string, string) {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// splitOperands divides an operand field at commas, leaving commas inside
// brackets, parentheses and string literals alone.
func splitOperands(s string) []string {
	var out []string
	var depth int
	var inString bool

	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			out = append(out, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if f := strings.TrimSpace(s[start:]); f != "" || len(out) > 0 {
		out = append(out, f)
	}

	return out
}

func parseRegister(s string) (uint8, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 2 && (s[0] == 'R' || s[0] == 'r') && s[1] >= '0' && s[1] <= '7' {
		return s[1] - '0', true
	}
	return 0, false
}

// bracketed returns the text inside a [bracketed] operand.
func bracketed(op string) (string, bool) {
	if len(op) >= 2 && op[0] == '[' && op[len(op)-1] == ']' {
		return strings.TrimSpace(op[1 : len(op)-1]), true
	}
	return "", false
}
