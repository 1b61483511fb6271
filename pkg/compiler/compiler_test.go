package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/brenoafb/tinypascal/pkg/diag"
	"github.com/brenoafb/tinypascal/pkg/ir"
	"github.com/brenoafb/tinypascal/pkg/parser"
	"github.com/brenoafb/tinypascal/pkg/scanner"
	"github.com/brenoafb/tinypascal/pkg/symtab"
	"github.com/brenoafb/tinypascal/pkg/token"
)

func TestCompileOp(t *testing.T) {
	table := symtab.New()
	table.Enter()

	declare := func(name string, typ symtab.Type) *symtab.Symbol {
		sym := &symtab.Symbol{Name: name, Type: typ, Class: symtab.Scalar}
		require.NoError(t, table.Declare(sym))
		return sym
	}

	x := declare("x", symtab.IntType)
	y := declare("y", symtab.IntType)
	s := declare("s", symtab.StringType)
	u := declare("u", symtab.StringType)
	flag := declare("flag", symtab.BooleanType)

	arena := symtab.NewArena()
	t0 := arena.Temp(table, token.Pos{})
	hi := arena.Literal(table, "hi", token.Pos{})

	tests := []struct {
		name     string
		op       ir.Op
		expected string
	}{
		{
			name: "store int",
			op:   ir.Store(x, ir.N(14)),
			expected: `    mov dword [v_x], 14
`,
		},
		{
			name: "store bool",
			op:   ir.Store(flag, ir.B(true)),
			expected: `    mov dword [v_flag], 1
`,
		},
		{
			name: "store var",
			op:   ir.Store(x, ir.Var(y)),
			expected: `    mov eax, dword [v_y]
    mov dword [v_x], eax
`,
		},
		{
			name: "store string var",
			op:   ir.Store(s, ir.Var(u)),
			expected: `    mov esi, v_u
    mov edi, v_s
    mov ecx, 128
    rep movsb
`,
		},
		{
			name: "add",
			op:   ir.Binary(t0, ir.Add, ir.Var(x), ir.N(1)),
			expected: `    mov eax, dword [v_x]
    add eax, 1
    mov dword [_t0], eax
`,
		},
		{
			name: "sub",
			op:   ir.Binary(t0, ir.Sub, ir.N(0), ir.Var(y)),
			expected: `    mov eax, 0
    sub eax, dword [v_y]
    mov dword [_t0], eax
`,
		},
		{
			name: "mul",
			op:   ir.Binary(t0, ir.Mul, ir.Var(x), ir.Var(y)),
			expected: `    mov eax, dword [v_x]
    imul eax, dword [v_y]
    mov dword [_t0], eax
`,
		},
		{
			name: "div",
			op:   ir.Binary(t0, ir.Div, ir.Var(x), ir.N(3)),
			expected: `    mov eax, dword [v_x]
    cdq
    mov ecx, 3
    idiv ecx
    mov dword [_t0], eax
`,
		},
		{
			name: "store accumulator",
			op:   ir.StoreAcc(y),
			expected: `    mov dword [v_y], eax
`,
		},
		{
			name: "print int",
			op:   ir.Print(ir.Var(x)),
			expected: `    push dword [v_x]
    push fmtIntOut
    call _printf
    add esp, 8
`,
		},
		{
			name: "print literal",
			op:   ir.Print(ir.N(7)),
			expected: `    push 7
    push fmtIntOut
    call _printf
    add esp, 8
`,
		},
		{
			name: "print string literal",
			op:   ir.Print(ir.Operand{Kind: ir.OperandString, Str: "hi", Sym: hi}),
			expected: `    push _s0
    push fmtStrOut
    call _printf
    add esp, 8
`,
		},
		{
			name: "print string var",
			op:   ir.Print(ir.Var(s)),
			expected: `    push v_s
    push fmtStrOut
    call _printf
    add esp, 8
`,
		},
		{
			name: "read int",
			op:   ir.Read(x),
			expected: `    push v_x
    push fmtIntIn
    call _scanf
    add esp, 8
`,
		},
		{
			name: "read string",
			op:   ir.Read(s),
			expected: `    push v_s
    push fmtStrIn
    call _scanf
    add esp, 8
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompiler(&bytes.Buffer{}, table)

			u := &ir.Unit{Name: "test"}
			u.Append(tt.op)

			err := c.compileUnit(u)
			require.NoError(t, err)
			require.Equal(t, tt.expected, strings.Join(c.buf.Lines(Text), "\n")+"\n")
		})
	}
}

func TestCompileOpErrors(t *testing.T) {
	table := symtab.New()
	table.Enter()

	flag := &symtab.Symbol{Name: "flag", Type: symtab.BooleanType, Class: symtab.Scalar}
	require.NoError(t, table.Declare(flag))

	tests := []struct {
		name string
		op   ir.Op
	}{
		{name: "read boolean", op: ir.Read(flag)},
		{name: "store nothing", op: ir.Store(flag, ir.None())},
		{name: "print nothing", op: ir.Print(ir.None())},
		{name: "unbound string literal", op: ir.Print(ir.S("dangling"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompiler(&bytes.Buffer{}, table)
			u := &ir.Unit{Name: "test"}
			u.Append(tt.op)
			require.Error(t, c.compileUnit(u))
		})
	}
}

func compileSource(t *testing.T, code string) string {
	t.Helper()

	diags := diag.NewReporter(zerolog.Nop())
	table := symtab.New()
	sc := scanner.New(strings.NewReader(code), scanner.WithReporter(diags))
	p := parser.New(sc, table, diags)

	prog, ok := p.Parse()
	require.True(t, ok, "diagnostics: %v", diags.Diagnostics())
	require.Zero(t, diags.Len(), "diagnostics: %v", diags.Diagnostics())

	w := &bytes.Buffer{}
	c := NewCompiler(w, table)
	require.NoError(t, c.Compile(prog))

	return w.String()
}

func TestCompileProgram(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name: "string assignment prints",
			code: `program hello;
var s: string;
begin
  s := "hi"
end.`,
			expected: `global _main
extern _printf
extern _scanf
extern _exit

section .data
    fmtIntOut db "%d", 10, 0
    fmtStrOut db "%s", 10, 0
    fmtIntIn db "%d", 0
    fmtStrIn db "%s", 0
    _s0 db "hi", 0

section .bss
    v_s resb 128

section .text
_main:
    push _s0
    push fmtStrOut
    call _printf
    add esp, 8
    push 0
    call _exit
    add esp, 4
`,
		},
		{
			name: "folded and temporary arithmetic",
			code: `program calc;
var x, y: int;
begin
  x := 2 + 3 * 4;
  y := x * 2;
  write(y)
end.`,
			expected: `global _main
extern _printf
extern _scanf
extern _exit

section .data
    fmtIntOut db "%d", 10, 0
    fmtStrOut db "%s", 10, 0
    fmtIntIn db "%d", 0
    fmtStrIn db "%s", 0

section .bss
    v_x resd 1
    v_y resd 1
    _t0 resd 1

section .text
_main:
    mov dword [v_x], 14
    mov eax, dword [v_x]
    imul eax, 2
    mov dword [_t0], eax
    mov dword [v_y], eax
    push dword [v_y]
    push fmtIntOut
    call _printf
    add esp, 8
    push 0
    call _exit
    add esp, 4
`,
		},
		{
			name: "procedure body follows exit",
			code: `program procs;
var n: int;
procedure show(int v);
var n: int;
begin
  n := 1;
  write("in")
end;
begin
  n := 2
end.`,
			expected: `global _main
extern _printf
extern _scanf
extern _exit

section .data
    fmtIntOut db "%d", 10, 0
    fmtStrOut db "%s", 10, 0
    fmtIntIn db "%d", 0
    fmtStrIn db "%s", 0
    _s0 db "in", 0

section .bss
    v_n resd 1
    v_v resd 1
    v_n@2 resd 1

section .text
_main:
    mov dword [v_n], 2
    push 0
    call _exit
    add esp, 4
v_show:
    mov dword [v_n@2], 1
    push _s0
    push fmtStrOut
    call _printf
    add esp, 8
    ret
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, compileSource(t, tt.code))
		})
	}
}

func TestDBString(t *testing.T) {
	require.Equal(t, `"hi", 0`, dbString("hi"))
	require.Equal(t, `"%d", 10, 0`, dbString("%d\n"))
	require.Equal(t, `"a", 10, "b", 0`, dbString("a\nb"))
	require.Equal(t, `0`, dbString(""))
}
