package parser

import (
	"fmt"
	"strings"

	"github.com/brenoafb/tinypascal/pkg/token"
)

var spellings = map[token.Kind]string{
	token.Range:     "..",
	token.Assign:    ":=",
	token.Leq:       "<=",
	token.Geq:       ">=",
	token.Neq:       "<>",
	token.Plus:      "+",
	token.Minus:     "-",
	token.Eql:       "=",
	token.LParen:    "(",
	token.RParen:    ")",
	token.Semicolon: ";",
	token.Colon:     ":",
	token.Comma:     ",",
	token.LBrack:    "[",
	token.RBrack:    "]",
	token.Dot:       ".",
	token.Less:      "<",
	token.Greater:   ">",
	token.Astrsk:    "*",
	token.Slash:     "/",
}

func describeKind(k token.Kind) string {
	switch k {
	case token.Ident:
		return "identifier"
	case token.IntConst:
		return "integer constant"
	case token.StrConst:
		return "string constant"
	case token.EOF:
		return "end of file"
	}
	if s, ok := spellings[k]; ok {
		return "'" + s + "'"
	}
	return "'" + strings.ToLower(k.String()) + "'"
}

func describeToken(t token.Token) string {
	switch t.Kind {
	case token.Ident:
		return fmt.Sprintf("identifier '%s'", t.Lexeme)
	case token.IntConst:
		return fmt.Sprintf("integer constant %s", t.Lexeme)
	case token.StrConst:
		return fmt.Sprintf("string constant %q", t.Lexeme)
	case token.EOF:
		return "end of file"
	}
	return "'" + t.Lexeme + "'"
}
