package diag

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/brenoafb/tinypascal/pkg/token"
)

type Class int

const (
	Lexical Class = iota
	Syntax
	Semantic
)

func (c Class) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

type Diagnostic struct {
	Class   Class
	Message string
	Pos     token.Pos
}

func (d Diagnostic) String() string {
	return fmt.Sprintf(
		"Error: %s. Occured at Line: %d Column: %d",
		d.Message,
		d.Pos.Line,
		d.Pos.Column,
	)
}

// Reporter accumulates diagnostics in the order they are reported.
type Reporter struct {
	diags  []Diagnostic
	logger zerolog.Logger
}

func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

func (r *Reporter) report(class Class, pos token.Pos, format string, args ...any) {
	d := Diagnostic{
		Class:   class,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
	r.diags = append(r.diags, d)
	r.logger.Debug().
		Str("class", class.String()).
		Int("line", pos.Line).
		Int("column", pos.Column).
		Msg(d.Message)
}

func (r *Reporter) Lexical(pos token.Pos, format string, args ...any) {
	r.report(Lexical, pos, format, args...)
}

func (r *Reporter) Syntax(pos token.Pos, format string, args ...any) {
	r.report(Syntax, pos, format, args...)
}

func (r *Reporter) Semantic(pos token.Pos, format string, args ...any) {
	r.report(Semantic, pos, format, args...)
}

func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

func (r *Reporter) Len() int {
	return len(r.diags)
}

func (r *Reporter) Count(class Class) int {
	n := 0
	for _, d := range r.diags {
		if d.Class == class {
			n++
		}
	}
	return n
}

// WriteTo writes one line per diagnostic.
func (r *Reporter) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, d := range r.diags {
		n, err := fmt.Fprintln(w, d.String())
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("error writing diagnostics: %w", err)
		}
	}
	return total, nil
}
