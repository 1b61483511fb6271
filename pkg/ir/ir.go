package ir

import (
	"github.com/brenoafb/tinypascal/pkg/symtab"
)

type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandInt
	OperandString
	OperandBool
	OperandVar
	OperandTemp
)

// Operand is a value an op reads. OperandNone marks a value that was
// recognized and type checked but is never lowered (relational and
// boolean results, array elements).
type Operand struct {
	Kind OperandKind
	Int  int32
	Bool bool
	Str  string
	Sym  *symtab.Symbol
}

func None() Operand {
	return Operand{Kind: OperandNone}
}

func N(n int32) Operand {
	return Operand{Kind: OperandInt, Int: n}
}

func B(b bool) Operand {
	return Operand{Kind: OperandBool, Bool: b}
}

// S is a string literal. Sym is filled in once the literal is given a
// data symbol.
func S(s string) Operand {
	return Operand{Kind: OperandString, Str: s}
}

func Var(sym *symtab.Symbol) Operand {
	return Operand{Kind: OperandVar, Sym: sym}
}

func Temp(sym *symtab.Symbol) Operand {
	return Operand{Kind: OperandTemp, Sym: sym}
}

// IsMemory reports whether the operand lives in a data symbol.
func (o Operand) IsMemory() bool {
	return o.Kind == OperandVar || o.Kind == OperandTemp
}

type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
)

func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	}
	return "?"
}

type OpKind int

const (
	// Binary computes Left Operator Right into Dst, leaving the result in
	// the accumulator.
	OpBinary OpKind = iota
	// Store copies a literal, variable or temporary into Dst.
	OpStore
	// StoreAcc copies the accumulator into Dst.
	OpStoreAcc
	// Print writes Src with the printf routine.
	OpPrint
	// Read reads Dst with the scanf routine.
	OpRead
)

type Op struct {
	Kind     OpKind
	Operator Operator
	Dst      *symtab.Symbol
	Left     Operand
	Right    Operand
	Src      Operand
}

func Binary(dst *symtab.Symbol, op Operator, left, right Operand) Op {
	return Op{Kind: OpBinary, Operator: op, Dst: dst, Left: left, Right: right}
}

func Store(dst *symtab.Symbol, src Operand) Op {
	return Op{Kind: OpStore, Dst: dst, Src: src}
}

func StoreAcc(dst *symtab.Symbol) Op {
	return Op{Kind: OpStoreAcc, Dst: dst}
}

func Print(src Operand) Op {
	return Op{Kind: OpPrint, Src: src}
}

func Read(dst *symtab.Symbol) Op {
	return Op{Kind: OpRead, Dst: dst}
}

// Unit is a straight-line body: the main program or one procedure.
type Unit struct {
	Name  string
	Label string
	Ops   []Op
}

func (u *Unit) Append(op Op) {
	u.Ops = append(u.Ops, op)
}

// Last returns the most recently appended op.
func (u *Unit) Last() (Op, bool) {
	if len(u.Ops) == 0 {
		return Op{}, false
	}
	return u.Ops[len(u.Ops)-1], true
}

type Program struct {
	Name  string
	Main  *Unit
	Procs []*Unit
}

func NewProgram(name string) *Program {
	return &Program{
		Name: name,
		Main: &Unit{Name: name},
	}
}
