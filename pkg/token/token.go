package token

import "fmt"

type Kind int

const (
	And Kind = iota
	Array
	Begin
	Boolean
	Case
	Default
	Do
	Else
	End
	False
	If
	Int
	Not
	Of
	Or
	Procedure
	Program
	Read
	String
	Switch
	Then
	True
	Var
	While
	Write
	Range
	Assign
	Leq
	Geq
	Neq
	IntConst
	StrConst
	Plus
	Minus
	Eql
	LParen
	RParen
	Semicolon
	Colon
	Comma
	LBrack
	RBrack
	Dot
	Less
	Greater
	Astrsk
	Slash
	Ident
	Illegal
	EOF
)

var names = [...]string{
	And:       "AND",
	Array:     "ARRAY",
	Begin:     "BEGIN",
	Boolean:   "BOOLEAN",
	Case:      "CASE",
	Default:   "DEFAULT",
	Do:        "DO",
	Else:      "ELSE",
	End:       "END",
	False:     "FALSE",
	If:        "IF",
	Int:       "INT",
	Not:       "NOT",
	Of:        "OF",
	Or:        "OR",
	Procedure: "PROCEDURE",
	Program:   "PROGRAM",
	Read:      "READ",
	String:    "STRING",
	Switch:    "SWITCH",
	Then:      "THEN",
	True:      "TRUE",
	Var:       "VAR",
	While:     "WHILE",
	Write:     "WRITE",
	Range:     "RANGE",
	Assign:    "ASSIGN",
	Leq:       "LEQ",
	Geq:       "GEQ",
	Neq:       "NEQ",
	IntConst:  "INTCONST",
	StrConst:  "STRCONST",
	Plus:      "PLUS",
	Minus:     "MINUS",
	Eql:       "EQL",
	LParen:    "LPAREN",
	RParen:    "RPAREN",
	Semicolon: "SEMICOLON",
	Colon:     "COLON",
	Comma:     "COMMA",
	LBrack:    "LBRACK",
	RBrack:    "RBRACK",
	Dot:       "DOT",
	Less:      "LESS",
	Greater:   "GREATER",
	Astrsk:    "ASTRSK",
	Slash:     "SLASH",
	Ident:     "IDENT",
	Illegal:   "ILLEGAL",
	EOF:       "EOF",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

// keywords maps lower-cased reserved words to their kind.
var keywords = map[string]Kind{
	"and":       And,
	"array":     Array,
	"begin":     Begin,
	"boolean":   Boolean,
	"case":      Case,
	"default":   Default,
	"do":        Do,
	"else":      Else,
	"end":       End,
	"false":     False,
	"if":        If,
	"int":       Int,
	"not":       Not,
	"of":        Of,
	"or":        Or,
	"procedure": Procedure,
	"program":   Program,
	"read":      Read,
	"string":    String,
	"switch":    Switch,
	"then":      Then,
	"true":      True,
	"var":       Var,
	"while":     While,
	"write":     Write,
}

// Lookup returns the keyword kind for word, or Ident.
func Lookup(word string) Kind {
	if k, ok := keywords[word]; ok {
		return k
	}
	return Ident
}

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Pos
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, IntConst, StrConst, Illegal:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Lexeme)
	default:
		return t.Kind.String()
	}
}

// Is reports whether the token has one of the given kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}

func IsRelational(k Kind) bool {
	switch k {
	case Eql, Neq, Less, Leq, Greater, Geq:
		return true
	}
	return false
}
