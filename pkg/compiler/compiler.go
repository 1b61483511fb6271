package compiler

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/brenoafb/tinypascal/pkg/ir"
	"github.com/brenoafb/tinypascal/pkg/symtab"
)

const (
	wordsize       = 4
	stringBufSize  = 128
	entryLabel     = "_main"
	printRoutine   = "_printf"
	scanRoutine    = "_scanf"
	exitRoutine    = "_exit"
	intOutFormat   = "fmtIntOut"
	strOutFormat   = "fmtStrOut"
	intInFormat    = "fmtIntIn"
	strInFormat    = "fmtStrIn"
	instructionPad = "    "
	userPrefix     = "v_"
)

type format struct {
	label string
	value string
}

var formats = []format{
	{label: intOutFormat, value: "%d\n"},
	{label: strOutFormat, value: "%s\n"},
	{label: intInFormat, value: "%d"},
	{label: strInFormat, value: "%s"},
}

// Compiler lowers a recorded program to NASM assembly for 32-bit Windows
// and the C runtime (cdecl).
type Compiler struct {
	W     io.Writer
	table *symtab.Table
	buf   *Buffer
	log   zerolog.Logger
}

type Option func(*Compiler)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) {
		c.log = logger
	}
}

func NewCompiler(w io.Writer, table *symtab.Table, opts ...Option) *Compiler {
	c := &Compiler{
		W:     w,
		table: table,
		buf:   &Buffer{},
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile fills the code buffer from prog and the symbol table, then
// writes every section to W.
func (c *Compiler) Compile(prog *ir.Program) error {
	c.preamble()
	c.data()
	c.bss()

	c.label(entryLabel)
	if err := c.compileUnit(prog.Main); err != nil {
		return fmt.Errorf("error compiling program '%s': %w", prog.Name, err)
	}
	c.call(exitRoutine, "0")

	for _, u := range prog.Procs {
		c.label(userPrefix + u.Label)
		if err := c.compileUnit(u); err != nil {
			return fmt.Errorf("error compiling procedure '%s': %w", u.Name, err)
		}
		c.emit("ret")
	}

	n, err := c.buf.WriteTo(c.W)
	if err != nil {
		return fmt.Errorf("error writing assembly: %w", err)
	}

	c.log.Debug().Int64("bytes", n).Str("program", prog.Name).Msg("assembly written")
	return nil
}

func (c *Compiler) compileUnit(u *ir.Unit) error {
	for i, op := range u.Ops {
		lower, ok := lowerings[op.Kind]
		if !ok {
			return fmt.Errorf("unsupported op at index %d: %s", i, op)
		}
		if err := lower(c, op); err != nil {
			return fmt.Errorf("error lowering '%s': %w", op, err)
		}
	}
	return nil
}

func (c *Compiler) preamble() {
	c.buf.Append(Exports, "global "+entryLabel)
	for _, routine := range []string{printRoutine, scanRoutine, exitRoutine} {
		c.buf.Append(Imports, "extern "+routine)
	}
}

func (c *Compiler) data() {
	for _, f := range formats {
		c.buf.Append(Data, fmt.Sprintf("%s%s db %s", instructionPad, f.label, dbString(f.value)))
	}

	for _, sym := range c.table.Symbols() {
		if sym.Type == symtab.StringType && sym.Literal != nil {
			c.buf.Append(Data, fmt.Sprintf("%s%s db %s", instructionPad, symLabel(sym), dbString(*sym.Literal)))
		}
	}
}

// bss reserves one dword per int or boolean scalar and one fixed buffer
// per string without a literal. Arrays and procedures get no storage.
func (c *Compiler) bss() {
	for _, sym := range c.table.Symbols() {
		if sym.Class == symtab.Procedure || sym.Class == symtab.ArrayVar {
			continue
		}

		switch sym.Type.Kind {
		case symtab.Int, symtab.Boolean:
			c.buf.Append(BSS, fmt.Sprintf("%s%s resd 1", instructionPad, symLabel(sym)))
		case symtab.String:
			if sym.Literal == nil {
				c.buf.Append(BSS, fmt.Sprintf("%s%s resb %d", instructionPad, symLabel(sym), stringBufSize))
			}
		}
	}
}

func (c *Compiler) emit(format string, args ...any) {
	c.buf.Append(Text, instructionPad+fmt.Sprintf(format, args...))
}

func (c *Compiler) label(name string) {
	c.buf.Append(Text, name+":")
}

// call pushes args right to left, calls routine and pops the arguments.
func (c *Compiler) call(routine string, args ...string) {
	for i := len(args) - 1; i >= 0; i-- {
		c.emit("push %s", args[i])
	}
	c.emit("call %s", routine)
	c.emit("add esp, %d", wordsize*len(args))
}

// symLabel is the assembly name of sym. Source names get userPrefix so
// they never clash with NASM keywords or runtime labels. Synthetic names
// start with '_', which no identifier can.
func symLabel(sym *symtab.Symbol) string {
	if sym.Synthetic {
		return sym.Label
	}
	return userPrefix + sym.Label
}

func memory(sym *symtab.Symbol) string {
	return fmt.Sprintf("dword [%s]", symLabel(sym))
}

// operand renders o as an immediate, a memory reference or an address.
func (c *Compiler) operand(o ir.Operand) (string, error) {
	switch o.Kind {
	case ir.OperandInt:
		return strconv.Itoa(int(o.Int)), nil
	case ir.OperandBool:
		if o.Bool {
			return "1", nil
		}
		return "0", nil
	case ir.OperandVar, ir.OperandTemp:
		return memory(o.Sym), nil
	case ir.OperandString:
		if o.Sym == nil {
			return "", fmt.Errorf("string literal %q has no data symbol", o.Str)
		}
		return symLabel(o.Sym), nil
	}
	return "", fmt.Errorf("operand %s cannot be lowered", o)
}
