package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/brenoafb/tinypascal/pkg/compiler"
	"github.com/brenoafb/tinypascal/pkg/diag"
	"github.com/brenoafb/tinypascal/pkg/ir"
	"github.com/brenoafb/tinypascal/pkg/parser"
	"github.com/brenoafb/tinypascal/pkg/scanner"
	"github.com/brenoafb/tinypascal/pkg/symtab"
	"github.com/brenoafb/tinypascal/pkg/token"
)

var (
	// ErrNoProgramName means the program header never produced a name,
	// so no output file was created.
	ErrNoProgramName = errors.New("program name could not be determined")
	// ErrCompilation means at least one diagnostic was reported.
	ErrCompilation = errors.New("compilation failed")
)

type Options struct {
	// Filesystem receives <name>.asm and <name>.err.
	Filesystem billy.Filesystem
	Logger     zerolog.Logger
}

type Result struct {
	Program     string
	AsmPath     string
	ErrPath     string
	Diagnostics []diag.Diagnostic
	Table       *symtab.Table
	IR          *ir.Program
}

// Compile compiles one source file. The output files are created as soon
// as the program name is known and are closed on every return path.
func Compile(src io.Reader, opts Options) (res *Result, err error) {
	logger := opts.Logger
	diags := diag.NewReporter(logger)
	table := symtab.New()

	sc := scanner.New(src, scanner.WithReporter(diags))
	p := parser.New(sc, table, diags, parser.WithLogger(logger))

	res = &Result{Table: table}

	name, headerOK := p.Header()
	if name == "" {
		res.Diagnostics = diags.Diagnostics()
		if err := sc.Err(); err != nil {
			return res, err
		}
		return res, ErrNoProgramName
	}

	res.Program = name
	res.AsmPath = name + ".asm"
	res.ErrPath = name + ".err"

	errFile, err := opts.Filesystem.Create(res.ErrPath)
	if err != nil {
		return res, fmt.Errorf("cannot create %s: %w", res.ErrPath, err)
	}
	defer closeFile(errFile, &err)

	asmFile, err := opts.Filesystem.Create(res.AsmPath)
	if err != nil {
		return res, fmt.Errorf("cannot create %s: %w", res.AsmPath, err)
	}
	defer closeFile(asmFile, &err)

	var prog *ir.Program
	ok := headerOK
	if ok {
		prog, ok = p.Body()
	}
	res.IR = prog
	res.Diagnostics = diags.Diagnostics()

	if err := sc.Err(); err != nil {
		return res, err
	}

	if _, err := diags.WriteTo(errFile); err != nil {
		return res, err
	}

	if ok {
		c := compiler.NewCompiler(asmFile, table, compiler.WithLogger(logger))
		if err := c.Compile(prog); err != nil {
			return res, err
		}
	}

	logger.Debug().
		Str("program", name).
		Bool("parsed", ok).
		Int("diagnostics", diags.Len()).
		Int("symbols", table.Len()).
		Msg("compiled")

	if diags.Len() > 0 {
		return res, fmt.Errorf("%w: %d error(s)", ErrCompilation, diags.Len())
	}

	return res, nil
}

// Check parses src and reports its diagnostics without creating any
// output file.
func Check(src io.Reader, logger zerolog.Logger) (*Result, error) {
	diags := diag.NewReporter(logger)
	table := symtab.New()

	sc := scanner.New(src, scanner.WithReporter(diags))
	p := parser.New(sc, table, diags, parser.WithLogger(logger))

	prog, _ := p.Parse()

	res := &Result{
		Table:       table,
		IR:          prog,
		Diagnostics: diags.Diagnostics(),
	}
	if prog != nil {
		res.Program = prog.Name
	}

	if err := sc.Err(); err != nil {
		return res, err
	}
	if prog == nil {
		return res, ErrNoProgramName
	}
	if diags.Len() > 0 {
		return res, fmt.Errorf("%w: %d error(s)", ErrCompilation, diags.Len())
	}
	return res, nil
}

func closeFile(f billy.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("cannot close %s: %w", f.Name(), cerr)
	}
}

// Tokens writes one line per token of src to w, position first, and
// returns the number of lexical errors found.
func Tokens(src io.Reader, w io.Writer) (int, error) {
	diags := diag.NewReporter(zerolog.Nop())
	sc := scanner.New(src, scanner.WithReporter(diags))

	for {
		t := sc.Next()
		if _, err := fmt.Fprintf(w, "%s\t%s\n", t.Pos, t); err != nil {
			return diags.Len(), err
		}

		if t.Kind == token.EOF {
			return diags.Len(), sc.Err()
		}
	}
}
