package parser

import (
	"github.com/brenoafb/tinypascal/pkg/ir"
	"github.com/brenoafb/tinypascal/pkg/symtab"
	"github.com/brenoafb/tinypascal/pkg/token"
)

// value is the result of recognizing an expression. A NoType value means
// an error was already reported for one of its parts.
type value struct {
	op  ir.Operand
	typ symtab.Type
}

var invalid = value{op: ir.None(), typ: symtab.NoType}

var arithmetic = map[token.Kind]ir.Operator{
	token.Plus:   ir.Add,
	token.Minus:  ir.Sub,
	token.Astrsk: ir.Mul,
	token.Slash:  ir.Div,
}

// evaluation is the operand stack of one expression level. Operands and
// operators are pushed in recognition order and reduced as soon as two
// operands and an operator are available.
type evaluation struct {
	operands  []value
	operators []token.Token
}

func (e *evaluation) pushOperand(v value) {
	e.operands = append(e.operands, v)
}

func (e *evaluation) pushOperator(t token.Token) {
	e.operators = append(e.operators, t)
}

func (e *evaluation) reducible() bool {
	return len(e.operands) >= 2 && len(e.operators) >= 1
}

func (e *evaluation) reduce(p *Parser) {
	n := len(e.operands)
	left, right := e.operands[n-2], e.operands[n-1]
	op := e.operators[len(e.operators)-1]

	e.operands = e.operands[:n-2]
	e.operators = e.operators[:len(e.operators)-1]

	e.pushOperand(p.binary(left, op, right))
}

func (e *evaluation) result() value {
	if len(e.operands) != 1 || len(e.operators) != 0 {
		panic("unbalanced expression stack")
	}
	return e.operands[0]
}

// expr := simpleExpr [relop simpleExpr]
func (p *Parser) expr() (value, bool) {
	left, ok := p.simpleExpr()
	if !ok {
		return invalid, false
	}

	if !token.IsRelational(p.cur.Kind) {
		return left, true
	}

	opTok := p.cur
	p.advance()

	right, ok := p.simpleExpr()
	if !ok {
		return invalid, false
	}

	return p.relational(left, opTok, right), true
}

// simpleExpr := ['+'|'-'] term {('+'|'-'|'or') term}
func (p *Parser) simpleExpr() (value, bool) {
	var sign token.Token
	if p.cur.Kind == token.Plus || p.cur.Kind == token.Minus {
		sign = p.cur
		p.advance()
	}

	first, ok := p.term()
	if !ok {
		return invalid, false
	}
	if sign.Kind == token.Minus {
		first = p.negate(sign, first)
	}

	var ev evaluation
	ev.pushOperand(first)

	for p.cur.Is(token.Plus, token.Minus, token.Or) {
		ev.pushOperator(p.cur)
		p.advance()

		next, ok := p.term()
		if !ok {
			return invalid, false
		}
		ev.pushOperand(next)

		if ev.reducible() {
			ev.reduce(p)
		}
	}

	return ev.result(), true
}

// term := factor {('*'|'/'|'and') factor}
func (p *Parser) term() (value, bool) {
	first, ok := p.factor()
	if !ok {
		return invalid, false
	}

	var ev evaluation
	ev.pushOperand(first)

	for p.cur.Is(token.Astrsk, token.Slash, token.And) {
		ev.pushOperator(p.cur)
		p.advance()

		next, ok := p.factor()
		if !ok {
			return invalid, false
		}
		ev.pushOperand(next)

		if ev.reducible() {
			ev.reduce(p)
		}
	}

	return ev.result(), true
}

func (p *Parser) factor() (value, bool) {
	switch p.cur.Kind {
	case token.Ident:
		v, ok := p.variable()
		if !ok {
			return invalid, false
		}
		return v.value(), true
	case token.IntConst:
		n := intValue(p.cur)
		p.advance()
		return value{op: ir.N(n), typ: symtab.IntType}, true
	case token.StrConst:
		s := p.cur.Lexeme
		p.advance()
		return value{op: ir.S(s), typ: symtab.StringType}, true
	case token.True, token.False:
		b := p.cur.Kind == token.True
		p.advance()
		return value{op: ir.B(b), typ: symtab.BooleanType}, true
	case token.LParen:
		p.advance()
		v, ok := p.expr()
		if !ok || !p.expect(token.RParen) {
			return invalid, false
		}
		return v, true
	case token.Not:
		notTok := p.cur
		p.advance()
		v, ok := p.factor()
		if !ok {
			return invalid, false
		}
		if v.typ.Kind == symtab.None {
			return invalid, true
		}
		if v.typ != symtab.BooleanType {
			p.diags.Semantic(notTok.Pos, "operator 'not' needs a boolean operand, found %s", v.typ)
			return invalid, true
		}
		return value{op: ir.None(), typ: symtab.BooleanType}, true
	}

	p.unexpected("expression")
	return invalid, false
}

// binary folds or records one reduction of left op right.
func (p *Parser) binary(left value, opTok token.Token, right value) value {
	if left.typ.Kind == symtab.None || right.typ.Kind == symtab.None {
		return invalid
	}

	if opTok.Kind == token.And || opTok.Kind == token.Or {
		if left.typ != symtab.BooleanType || right.typ != symtab.BooleanType {
			p.diags.Semantic(
				opTok.Pos,
				"operator '%s' needs boolean operands, found %s and %s",
				opTok.Lexeme, left.typ, right.typ,
			)
			return invalid
		}
		return value{op: ir.None(), typ: symtab.BooleanType}
	}

	operator := arithmetic[opTok.Kind]

	if left.typ != symtab.IntType || right.typ != symtab.IntType {
		p.diags.Semantic(
			opTok.Pos,
			"operator '%s' needs int operands, found %s and %s",
			opTok.Lexeme, left.typ, right.typ,
		)
		return invalid
	}

	if left.op.Kind == ir.OperandNone || right.op.Kind == ir.OperandNone {
		return value{op: ir.None(), typ: symtab.IntType}
	}

	if left.op.Kind == ir.OperandInt && right.op.Kind == ir.OperandInt {
		n, ok := fold(operator, left.op.Int, right.op.Int)
		if !ok {
			p.diags.Semantic(opTok.Pos, "division by zero")
			return invalid
		}
		return value{op: ir.N(n), typ: symtab.IntType}
	}

	tmp := p.arena.Temp(p.table, opTok.Pos)
	p.unit.Append(ir.Binary(tmp, operator, left.op, right.op))

	return value{op: ir.Temp(tmp), typ: symtab.IntType}
}

// fold evaluates a literal operation with 32-bit wrap-around. Division
// truncates toward zero.
func fold(op ir.Operator, a, b int32) (int32, bool) {
	switch op {
	case ir.Add:
		return a + b, true
	case ir.Sub:
		return a - b, true
	case ir.Mul:
		return a * b, true
	case ir.Div:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}
	return 0, false
}

func (p *Parser) negate(sign token.Token, v value) value {
	if v.typ.Kind == symtab.None {
		return invalid
	}

	if v.typ != symtab.IntType {
		p.diags.Semantic(sign.Pos, "unary '-' needs an int operand, found %s", v.typ)
		return invalid
	}

	if v.op.Kind == ir.OperandInt {
		return value{op: ir.N(-v.op.Int), typ: symtab.IntType}
	}

	zero := value{op: ir.N(0), typ: symtab.IntType}
	return p.binary(zero, sign, v)
}

func (p *Parser) relational(left value, opTok token.Token, right value) value {
	if left.typ.Kind == symtab.None || right.typ.Kind == symtab.None {
		return invalid
	}

	if left.typ != right.typ || !left.typ.Scalar() {
		p.diags.Semantic(opTok.Pos, "cannot compare %s with %s", left.typ, right.typ)
		return invalid
	}

	return value{op: ir.None(), typ: symtab.BooleanType}
}

// variable is a recognized "ident ['[' Expr {',' Expr} ']']". sym is nil
// when the name is not visible; that has already been reported.
type variable struct {
	tok     token.Token
	sym     *symtab.Symbol
	indexed bool
}

func (v variable) typ() symtab.Type {
	if v.sym == nil {
		return symtab.NoType
	}
	if v.indexed {
		return v.sym.Type.ElemType()
	}
	return v.sym.Type
}

func (v variable) value() value {
	switch {
	case v.sym == nil || v.sym.Class == symtab.Procedure:
		return invalid
	case v.indexed:
		return value{op: ir.None(), typ: v.typ()}
	default:
		return value{op: ir.Var(v.sym), typ: v.sym.Type}
	}
}

func (p *Parser) variable() (variable, bool) {
	v := variable{tok: p.cur}
	p.advance()

	sym, found := p.table.Lookup(v.tok.Lexeme)
	if !found {
		p.diags.Semantic(v.tok.Pos, "'%s' is not declared in this scope", v.tok.Lexeme)
	}
	v.sym = sym

	if p.cur.Kind != token.LBrack {
		if found && sym.Class == symtab.Procedure {
			p.diags.Semantic(v.tok.Pos, "procedure '%s' cannot be used as a variable", sym.Name)
		}
		return v, true
	}

	p.advance()
	v.indexed = true

	count := 0
	for {
		pos := p.cur.Pos
		idx, ok := p.expr()
		if !ok {
			return v, false
		}
		if idx.typ.Kind != symtab.None && idx.typ != symtab.IntType {
			p.diags.Semantic(pos, "array index must be int, found %s", idx.typ)
		}
		count++

		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}

	if !p.expect(token.RBrack) {
		return v, false
	}

	if !found {
		return v, true
	}

	if sym.Class != symtab.ArrayVar {
		p.diags.Semantic(v.tok.Pos, "'%s' is not an array", sym.Name)
		v.sym = nil
		return v, true
	}

	if count != len(sym.Dims) {
		p.diags.Semantic(v.tok.Pos, "'%s' needs %d indices, found %d", sym.Name, len(sym.Dims), count)
		v.sym = nil
	}

	return v, true
}
