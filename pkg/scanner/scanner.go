package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brenoafb/tinypascal/pkg/diag"
	"github.com/brenoafb/tinypascal/pkg/token"
)

var twoChar = map[string]token.Kind{
	"..": token.Range,
	":=": token.Assign,
	"<=": token.Leq,
	">=": token.Geq,
	"<>": token.Neq,
}

var oneChar = map[rune]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Astrsk,
	'/': token.Slash,
	'=': token.Eql,
	'(': token.LParen,
	')': token.RParen,
	';': token.Semicolon,
	':': token.Colon,
	',': token.Comma,
	'[': token.LBrack,
	']': token.RBrack,
	'.': token.Dot,
	'<': token.Less,
	'>': token.Greater,
}

// Scanner reads its input one physical line at a time and never rewinds.
type Scanner struct {
	r       *bufio.Reader
	line    []rune
	hasLine bool
	lineNum int
	col     int
	done    bool
	err     error
	diags   *diag.Reporter
}

type Option func(*Scanner)

// WithReporter makes the scanner report a lexical diagnostic for every
// Illegal token it produces.
func WithReporter(r *diag.Reporter) Option {
	return func(s *Scanner) {
		s.diags = r
	}
}

func New(r io.Reader, opts ...Option) *Scanner {
	s := &Scanner{r: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Err returns the first read error other than io.EOF.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) readLine() bool {
	if s.done {
		return false
	}

	text, err := s.r.ReadString('\n')
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = fmt.Errorf("error reading source: %w", err)
		}
		if text == "" {
			return false
		}
	}

	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	s.line = []rune(text)
	s.lineNum++
	s.col = 0
	s.hasLine = true
	return true
}

func (s *Scanner) pos() token.Pos {
	return token.Pos{Line: s.lineNum, Column: s.col + 1}
}

func (s *Scanner) peekRune() rune {
	if s.col+1 >= len(s.line) {
		return 0
	}
	return s.line[s.col+1]
}

// Next returns the next token. Once the input is exhausted it keeps
// returning EOF.
func (s *Scanner) Next() token.Token {
	for {
		if !s.hasLine && !s.readLine() {
			return token.Token{Kind: token.EOF, Pos: s.pos()}
		}

		for s.col < len(s.line) && (s.line[s.col] == ' ' || s.line[s.col] == '\t') {
			s.col++
		}

		if s.col >= len(s.line) {
			s.hasLine = false
			continue
		}

		c := s.line[s.col]

		if c == '/' && s.peekRune() == '/' {
			s.hasLine = false
			continue
		}

		if c == '/' && s.peekRune() == '*' {
			start := s.pos()
			if !s.skipBlockComment() {
				return s.illegal(start, "/*", "unterminated comment")
			}
			continue
		}

		return s.scanToken()
	}
}

func (s *Scanner) skipBlockComment() bool {
	s.col += 2
	for {
		rest := string(s.line[s.col:])
		if i := strings.Index(rest, "*/"); i >= 0 {
			s.col += len([]rune(rest[:i])) + 2
			return true
		}
		if !s.readLine() {
			s.hasLine = false
			return false
		}
	}
}

func (s *Scanner) scanToken() token.Token {
	start := s.pos()
	c := s.line[s.col]

	switch {
	case isLetter(c):
		return s.scanIdent(start)
	case isDigit(c):
		return s.scanNumber(start, "")
	case c == '-' && isDigit(s.peekRune()) && !s.digitBefore():
		s.col++
		return s.scanNumber(start, "-")
	case c == '"':
		return s.scanString(start)
	}

	if s.col+1 < len(s.line) {
		lexeme := string(s.line[s.col : s.col+2])
		if k, ok := twoChar[lexeme]; ok {
			s.col += 2
			return token.Token{Kind: k, Lexeme: lexeme, Pos: start}
		}
	}

	s.col++
	if k, ok := oneChar[c]; ok {
		return token.Token{Kind: k, Lexeme: string(c), Pos: start}
	}

	return s.illegal(start, string(c), fmt.Sprintf("illegal character '%c'", c))
}

// digitBefore reports whether the nearest non-blank character to the left
// of the cursor on the current line is a digit. A '-' right after a digit
// is subtraction, otherwise it is the sign of the literal that follows.
func (s *Scanner) digitBefore() bool {
	for i := s.col - 1; i >= 0; i-- {
		if s.line[i] == ' ' || s.line[i] == '\t' {
			continue
		}
		return isDigit(s.line[i])
	}
	return false
}

func (s *Scanner) scanIdent(start token.Pos) token.Token {
	begin := s.col
	for s.col < len(s.line) && (isLetter(s.line[s.col]) || isDigit(s.line[s.col]) || s.line[s.col] == '_') {
		s.col++
	}

	word := strings.ToLower(string(s.line[begin:s.col]))

	return token.Token{Kind: token.Lookup(word), Lexeme: word, Pos: start}
}

func (s *Scanner) scanNumber(start token.Pos, sign string) token.Token {
	begin := s.col
	for s.col < len(s.line) && isDigit(s.line[s.col]) {
		s.col++
	}

	digits := string(s.line[begin:s.col])
	lexeme := sign + digits

	if len(digits) > 1 && digits[0] == '0' {
		return s.illegal(start, lexeme, fmt.Sprintf("integer literal %s has leading zeros", lexeme))
	}

	if _, err := strconv.ParseInt(lexeme, 10, 32); err != nil {
		return s.illegal(start, lexeme, fmt.Sprintf("integer literal %s is out of range", lexeme))
	}

	return token.Token{Kind: token.IntConst, Lexeme: lexeme, Pos: start}
}

func (s *Scanner) scanString(start token.Pos) token.Token {
	s.col++

	var b strings.Builder
	for {
		for s.col < len(s.line) {
			c := s.line[s.col]
			s.col++
			if c == '"' {
				return token.Token{Kind: token.StrConst, Lexeme: b.String(), Pos: start}
			}
			b.WriteRune(c)
		}

		if !s.readLine() {
			s.hasLine = false
			return s.illegal(start, `"`+b.String(), "unterminated string literal")
		}
		b.WriteByte('\n')
	}
}

func (s *Scanner) illegal(pos token.Pos, lexeme, msg string) token.Token {
	if s.diags != nil {
		s.diags.Lexical(pos, "%s", msg)
	}
	return token.Token{Kind: token.Illegal, Lexeme: lexeme, Pos: pos}
}

func isLetter(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// Tokenize scans code to the end and returns every token, EOF included.
func Tokenize(code string, opts ...Option) []token.Token {
	s := New(strings.NewReader(code), opts...)

	tokens := make([]token.Token, 0)
	for {
		t := s.Next()
		tokens = append(tokens, t)
		if t.Kind == token.EOF {
			return tokens
		}
	}
}
