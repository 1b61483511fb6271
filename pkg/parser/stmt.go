package parser

import (
	"github.com/brenoafb/tinypascal/pkg/diag"
	"github.com/brenoafb/tinypascal/pkg/ir"
	"github.com/brenoafb/tinypascal/pkg/symtab"
	"github.com/brenoafb/tinypascal/pkg/token"
)

func (p *Parser) compound() bool {
	if !p.expect(token.Begin) {
		return false
	}

	for p.cur.Kind != token.End {
		if !p.statement() {
			return false
		}
		if p.cur.Kind != token.Semicolon {
			break
		}
		p.advance()
	}

	return p.expect(token.End)
}

func (p *Parser) statement() bool {
	switch p.cur.Kind {
	case token.Ident:
		if p.peek.Kind == token.LParen {
			return p.simple(p.procCall)
		}
		return p.simple(p.assign)
	case token.Read:
		return p.simple(p.read)
	case token.Write:
		return p.simple(p.write)
	case token.Begin:
		return p.compound()
	case token.If:
		return p.ifStmt()
	case token.Switch:
		return p.switchStmt()
	case token.While:
		return p.whileStmt()
	}

	p.unexpected("statement")
	return false
}

type checkpoint struct {
	ops   int
	syms  int
	errs  int
	arena symtab.Checkpoint
}

// simple runs a statement that contains no other statement. If it
// reports a semantic error, the ops, temporaries and string data it
// recorded are all dropped.
func (p *Parser) simple(stmt func() bool) bool {
	cp := checkpoint{
		ops:   len(p.unit.Ops),
		syms:  p.table.Len(),
		errs:  p.diags.Count(diag.Semantic),
		arena: p.arena.Checkpoint(),
	}

	if !stmt() {
		return false
	}

	if p.diags.Count(diag.Semantic) > cp.errs {
		p.unit.Ops = p.unit.Ops[:cp.ops]
		p.table.Truncate(cp.syms)
		p.arena.Rewind(cp.arena)
	}
	return true
}

func (p *Parser) assign() bool {
	v, ok := p.variable()
	if !ok {
		return false
	}

	if !p.expect(token.Assign) {
		return false
	}

	val, ok := p.expr()
	if !ok {
		return false
	}

	p.lowerAssign(v, val)
	return true
}

func (p *Parser) lowerAssign(v variable, val value) {
	if v.sym == nil || val.typ.Kind == symtab.None {
		return
	}

	dst := v.sym
	if dst.Class == symtab.Procedure {
		return
	}

	if v.typ() != val.typ {
		p.diags.Semantic(
			v.tok.Pos,
			"type mismatch: cannot assign %s to '%s' of type %s",
			val.typ, dst.Name, v.typ(),
		)
		return
	}

	if v.indexed {
		p.log.Debug().Str("name", dst.Name).Msg("array element assignment is not lowered")
		return
	}

	if dst.Type.Kind == symtab.Array {
		p.diags.Semantic(v.tok.Pos, "cannot assign whole array '%s'", dst.Name)
		return
	}

	switch val.op.Kind {
	case ir.OperandInt, ir.OperandBool, ir.OperandVar:
		p.unit.Append(ir.Store(dst, val.op))
	case ir.OperandString:
		// assigning a string literal prints it instead of storing it
		p.unit.Append(ir.Print(p.literal(val.op, v.tok.Pos)))
	case ir.OperandTemp:
		if last, ok := p.unit.Last(); ok && last.Kind == ir.OpBinary && last.Dst == val.op.Sym {
			p.unit.Append(ir.StoreAcc(dst))
		} else {
			p.unit.Append(ir.Store(dst, val.op))
		}
	case ir.OperandNone:
		p.log.Debug().Str("name", dst.Name).Msg("value has no lowering, assignment skipped")
	}
}

// literal gives a string literal operand its data symbol.
func (p *Parser) literal(op ir.Operand, pos token.Pos) ir.Operand {
	op.Sym = p.arena.Literal(p.table, op.Str, pos)
	return op
}

func (p *Parser) procCall() bool {
	nameTok := p.cur
	p.advance()

	if sym, ok := p.table.Lookup(nameTok.Lexeme); !ok {
		p.diags.Semantic(nameTok.Pos, "'%s' is not declared in this scope", nameTok.Lexeme)
	} else if sym.Class != symtab.Procedure {
		p.diags.Semantic(nameTok.Pos, "'%s' is not a procedure", nameTok.Lexeme)
	}

	if !p.expect(token.LParen) {
		return false
	}

	if p.cur.Kind != token.RParen {
		for {
			if _, ok := p.expr(); !ok {
				return false
			}
			if p.cur.Kind != token.Comma {
				break
			}
			p.advance()
		}
	}

	p.log.Debug().Str("name", nameTok.Lexeme).Msg("procedure call is not lowered")

	return p.expect(token.RParen)
}

func (p *Parser) read() bool {
	p.advance()

	if !p.expect(token.LParen) {
		return false
	}

	for {
		if p.cur.Kind != token.Ident {
			p.unexpected("variable")
			return false
		}

		v, ok := p.variable()
		if !ok {
			return false
		}
		p.lowerRead(v)

		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}

	return p.expect(token.RParen)
}

func (p *Parser) lowerRead(v variable) {
	if v.sym == nil || v.sym.Class == symtab.Procedure {
		return
	}

	typ := v.typ()
	if typ != symtab.IntType && typ != symtab.StringType {
		p.diags.Semantic(v.tok.Pos, "cannot read a value of type %s into '%s'", typ, v.sym.Name)
		return
	}

	if v.indexed {
		p.log.Debug().Str("name", v.sym.Name).Msg("array element read is not lowered")
		return
	}

	p.unit.Append(ir.Read(v.sym))
}

func (p *Parser) write() bool {
	p.advance()

	if !p.expect(token.LParen) {
		return false
	}

	for {
		pos := p.cur.Pos
		val, ok := p.expr()
		if !ok {
			return false
		}
		p.lowerWrite(val, pos)

		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}

	return p.expect(token.RParen)
}

func (p *Parser) lowerWrite(val value, pos token.Pos) {
	if val.typ.Kind == symtab.Array {
		p.diags.Semantic(pos, "cannot write a value of type %s", val.typ)
		return
	}

	switch val.op.Kind {
	case ir.OperandInt, ir.OperandBool, ir.OperandVar, ir.OperandTemp:
		p.unit.Append(ir.Print(val.op))
	case ir.OperandString:
		p.unit.Append(ir.Print(p.literal(val.op, pos)))
	case ir.OperandNone:
		p.log.Debug().Msg("value has no lowering, write skipped")
	}
}

// condition parses a boolean guard. Guards are checked but never lowered.
func (p *Parser) condition() bool {
	pos := p.cur.Pos
	val, ok := p.expr()
	if !ok {
		return false
	}

	if val.typ.Kind != symtab.None && val.typ != symtab.BooleanType {
		p.diags.Semantic(pos, "condition must be boolean, found %s", val.typ)
	}
	return true
}

func (p *Parser) ifStmt() bool {
	p.advance()

	if !p.condition() || !p.expect(token.Then) {
		return false
	}

	if !p.statement() {
		return false
	}

	if p.cur.Kind == token.Else {
		p.advance()
		return p.statement()
	}

	return true
}

func (p *Parser) whileStmt() bool {
	p.advance()

	if !p.condition() || !p.expect(token.Do) {
		return false
	}

	return p.statement()
}

func (p *Parser) switchStmt() bool {
	p.advance()

	subject, ok := p.expr()
	if !ok {
		return false
	}

	if !p.expect(token.Of) {
		return false
	}

	if !p.caseArm(subject.typ) {
		return false
	}

	return p.expect(token.End)
}

func (p *Parser) caseArm(subject symtab.Type) bool {
	switch p.cur.Kind {
	case token.Case:
		p.advance()

		pos := p.cur.Pos
		typ, ok := p.constant()
		if !ok {
			return false
		}
		if subject.Kind != symtab.None && typ != subject {
			p.diags.Semantic(pos, "case label of type %s does not match %s", typ, subject)
		}

		if !p.expect(token.Colon) || !p.statement() {
			return false
		}

		if p.cur.Kind != token.Semicolon {
			return true
		}
		p.advance()

		if p.cur.Kind == token.End {
			return true
		}
		return p.caseArm(subject)
	case token.Default:
		p.advance()
		if !p.expect(token.Colon) {
			return false
		}
		return p.statement()
	}

	p.unexpected("'case' or 'default'")
	return false
}

func (p *Parser) constant() (symtab.Type, bool) {
	var typ symtab.Type

	switch p.cur.Kind {
	case token.IntConst:
		typ = symtab.IntType
	case token.StrConst:
		typ = symtab.StringType
	case token.True, token.False:
		typ = symtab.BooleanType
	default:
		p.unexpected("constant")
		return symtab.NoType, false
	}

	p.advance()
	return typ, true
}
