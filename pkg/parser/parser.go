package parser

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/brenoafb/tinypascal/pkg/diag"
	"github.com/brenoafb/tinypascal/pkg/ir"
	"github.com/brenoafb/tinypascal/pkg/scanner"
	"github.com/brenoafb/tinypascal/pkg/symtab"
	"github.com/brenoafb/tinypascal/pkg/token"
)

// Parser is a predictive recursive descent recognizer. It always holds
// two tokens: cur and the lookahead peek.
//
// Every production returns false after reporting a syntax error, and the
// caller gives up as well. Semantic errors are reported without stopping
// the parse; the statement that caused them records no ops.
type Parser struct {
	sc   *scanner.Scanner
	cur  token.Token
	peek token.Token

	table *symtab.Table
	arena *symtab.Arena
	diags *diag.Reporter
	log   zerolog.Logger

	prog *ir.Program
	unit *ir.Unit
}

type Option func(*Parser)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.log = logger
	}
}

func WithArena(arena *symtab.Arena) Option {
	return func(p *Parser) {
		p.arena = arena
	}
}

// New reads the first two tokens from sc. Lexical errors are expected to
// be reported by sc itself (see scanner.WithReporter), so the parser does
// not report Illegal tokens again.
func New(sc *scanner.Scanner, table *symtab.Table, diags *diag.Reporter, opts ...Option) *Parser {
	p := &Parser{
		sc:    sc,
		table: table,
		arena: symtab.NewArena(),
		diags: diags,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.cur = sc.Next()
	p.peek = sc.Next()

	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.sc.Next()
}

func (p *Parser) expect(k token.Kind) bool {
	if p.cur.Kind != k {
		p.unexpected(describeKind(k))
		return false
	}
	p.advance()
	return true
}

func (p *Parser) unexpected(want string) {
	if p.cur.Kind == token.Illegal {
		return
	}
	p.diags.Syntax(p.cur.Pos, "expected %s but found %s", want, describeToken(p.cur))
}

func (p *Parser) declare(sym *symtab.Symbol) bool {
	if err := p.table.Declare(sym); err != nil {
		p.diags.Semantic(sym.Pos, "'%s' is already declared in this scope", sym.Name)
		return false
	}
	p.log.Debug().
		Str("name", sym.Name).
		Str("class", sym.Class.String()).
		Str("type", sym.Type.String()).
		Int("scope", sym.Scope).
		Msg("declared")
	return true
}

// Parse recognizes a whole program.
func (p *Parser) Parse() (*ir.Program, bool) {
	if _, ok := p.Header(); !ok {
		return p.prog, false
	}
	return p.Body()
}

// Header recognizes "program ident ;". The name is returned as soon as
// the identifier has been scanned, even if the semicolon is missing.
func (p *Parser) Header() (string, bool) {
	if !p.expect(token.Program) {
		return "", false
	}

	if p.cur.Kind != token.Ident {
		p.unexpected("program name")
		return "", false
	}

	name := p.cur.Lexeme
	p.prog = ir.NewProgram(name)
	p.unit = p.prog.Main
	p.advance()

	return name, p.expect(token.Semicolon)
}

// Body recognizes "Block ." after a successful Header.
func (p *Parser) Body() (*ir.Program, bool) {
	if !p.block(nil) {
		return p.prog, false
	}

	if !p.expect(token.Dot) {
		return p.prog, false
	}

	if p.cur.Kind != token.EOF {
		p.unexpected("end of file")
		return p.prog, false
	}

	return p.prog, true
}

// block opens a new scope for its declarations. onEnter runs right after
// the scope is opened and is used to declare procedure parameters.
func (p *Parser) block(onEnter func()) bool {
	p.table.Enter()
	defer p.table.Exit()

	if onEnter != nil {
		onEnter()
	}

	if p.cur.Kind == token.Var {
		if !p.varSection() {
			return false
		}
	}

	for p.cur.Kind == token.Procedure {
		if !p.procDecl() {
			return false
		}
	}

	if p.cur.Kind == token.Begin {
		return p.compound()
	}

	return true
}

func (p *Parser) varSection() bool {
	p.advance()

	if !p.varDecl() || !p.expect(token.Semicolon) {
		return false
	}

	for p.cur.Kind == token.Ident {
		if !p.varDecl() || !p.expect(token.Semicolon) {
			return false
		}
	}

	return true
}

// varDecl buffers the identifiers of "a, b, c : T" and commits them all
// once the type is known.
func (p *Parser) varDecl() bool {
	pending := make([]token.Token, 0, 1)

	for {
		if p.cur.Kind != token.Ident {
			p.unexpected("identifier")
			return false
		}
		pending = append(pending, p.cur)
		p.advance()

		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}

	if !p.expect(token.Colon) {
		return false
	}

	typ, dims, ok := p.typeSpec()
	if !ok {
		return false
	}

	class := symtab.Scalar
	if typ.Kind == symtab.Array {
		class = symtab.ArrayVar
	}

	for _, t := range pending {
		p.declare(&symtab.Symbol{
			Name:  t.Lexeme,
			Type:  typ,
			Class: class,
			Pos:   t.Pos,
			Dims:  dims,
		})
	}

	return true
}

func (p *Parser) typeSpec() (symtab.Type, []symtab.Dim, bool) {
	if p.cur.Kind != token.Array {
		typ, ok := p.simpleType()
		return typ, nil, ok
	}

	p.advance()

	if !p.expect(token.LBrack) {
		return symtab.NoType, nil, false
	}

	dims := make([]symtab.Dim, 0, 1)
	for {
		d, ok := p.arrayRange()
		if !ok {
			return symtab.NoType, nil, false
		}
		dims = append(dims, d)

		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}

	if !p.expect(token.RBrack) || !p.expect(token.Of) {
		return symtab.NoType, nil, false
	}

	elem, ok := p.simpleType()
	if !ok {
		return symtab.NoType, nil, false
	}

	return symtab.ArrayOf(elem.Kind), dims, true
}

func (p *Parser) arrayRange() (symtab.Dim, bool) {
	if p.cur.Kind != token.IntConst {
		p.unexpected("lower bound")
		return symtab.Dim{}, false
	}
	lowTok := p.cur
	p.advance()

	if !p.expect(token.Range) {
		return symtab.Dim{}, false
	}

	if p.cur.Kind != token.IntConst {
		p.unexpected("upper bound")
		return symtab.Dim{}, false
	}
	highTok := p.cur
	p.advance()

	d := symtab.Dim{Lower: intValue(lowTok), Upper: intValue(highTok)}
	if d.Lower > d.Upper {
		p.diags.Semantic(lowTok.Pos, "array lower bound %d exceeds upper bound %d", d.Lower, d.Upper)
	}

	return d, true
}

func (p *Parser) simpleType() (symtab.Type, bool) {
	var typ symtab.Type

	switch p.cur.Kind {
	case token.Int:
		typ = symtab.IntType
	case token.Boolean:
		typ = symtab.BooleanType
	case token.String:
		typ = symtab.StringType
	default:
		p.unexpected("type")
		return symtab.NoType, false
	}

	p.advance()
	return typ, true
}

type paramDecl struct {
	tok  token.Token
	typ  symtab.Type
	mode symtab.Mode
}

func (p *Parser) procDecl() bool {
	p.advance()

	if p.cur.Kind != token.Ident {
		p.unexpected("procedure name")
		return false
	}
	nameTok := p.cur
	p.advance()

	if !p.expect(token.LParen) {
		return false
	}

	params, ok := p.paramList()
	if !ok {
		return false
	}

	if !p.expect(token.RParen) || !p.expect(token.Semicolon) {
		return false
	}

	sym := &symtab.Symbol{
		Name:  nameTok.Lexeme,
		Type:  symtab.NoType,
		Class: symtab.Procedure,
		Pos:   nameTok.Pos,
	}
	for _, prm := range params {
		sym.Params = append(sym.Params, symtab.Param{
			Name: prm.tok.Lexeme,
			Type: prm.typ,
			Mode: prm.mode,
		})
	}
	declared := p.declare(sym)

	unit := &ir.Unit{Name: sym.Name, Label: sym.Label}
	outer := p.unit
	p.unit = unit

	ok = p.block(func() {
		for _, prm := range params {
			class := symtab.ValueParam
			if prm.mode == symtab.ByRef {
				class = symtab.RefParam
			}
			p.declare(&symtab.Symbol{
				Name:  prm.tok.Lexeme,
				Type:  prm.typ,
				Class: class,
				Pos:   prm.tok.Pos,
			})
		}
	})

	p.unit = outer

	if !ok {
		return false
	}

	if declared {
		p.prog.Procs = append(p.prog.Procs, unit)
	}

	return p.expect(token.Semicolon)
}

func (p *Parser) paramList() ([]paramDecl, bool) {
	params := make([]paramDecl, 0)

	if p.cur.Kind == token.RParen {
		return params, true
	}

	for {
		typ, ok := p.simpleType()
		if !ok {
			return nil, false
		}

		mode := symtab.ByValue
		if p.cur.Kind == token.Astrsk {
			mode = symtab.ByRef
			p.advance()
		}

		if p.cur.Kind != token.Ident {
			p.unexpected("parameter name")
			return nil, false
		}
		params = append(params, paramDecl{tok: p.cur, typ: typ, mode: mode})
		p.advance()

		if p.cur.Kind != token.Comma {
			return params, true
		}
		p.advance()
	}
}

// intValue converts an INTCONST lexeme. The scanner only produces
// INTCONST tokens that fit in 32 bits.
func intValue(t token.Token) int32 {
	n, err := strconv.ParseInt(t.Lexeme, 10, 32)
	if err != nil {
		panic("malformed integer constant " + t.Lexeme)
	}
	return int32(n)
}
