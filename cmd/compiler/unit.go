package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/go-git/go-billy/v5"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/brenoafb/tinypascal/pkg/config"
	"github.com/brenoafb/tinypascal/pkg/diag"
	"github.com/brenoafb/tinypascal/pkg/driver"
)

// unit compiles one source file at a time with shared settings.
type unit struct {
	cfg    config.Config
	opts   options
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
	out    billy.Filesystem
}

func (u *unit) compile(file string) error {
	src, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("cannot open source: %w", err)
	}
	defer src.Close()

	log := u.log.With().Str("file", file).Logger()

	start := time.Now()
	defer func() {
		log.Info().Dur("elapsed", time.Since(start)).Msg("finished")
	}()

	var errs []error
	if u.opts.parses() {
		errs = append(errs, u.parse(src, log))
	}

	if u.opts.scan {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("cannot rewind source: %w", err)
		}
		errs = append(errs, u.scan(src))
	}

	return errors.Join(errs...)
}

func (u *unit) scan(src io.Reader) error {
	n, err := driver.Tokens(src, u.stdout)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%d lexical error(s)", n)
	}
	return nil
}

func (u *unit) parse(src io.Reader, log zerolog.Logger) error {
	var (
		res *driver.Result
		err error
	)
	if u.opts.writes() {
		res, err = driver.Compile(src, driver.Options{Filesystem: u.out, Logger: log})
	} else {
		res, err = driver.Check(src, log)
	}

	if perr := u.printDiagnostics(res.Diagnostics); perr != nil {
		return perr
	}

	if u.cfg.Verbose && res.Table != nil {
		if _, werr := res.Table.WriteTo(u.stdout); werr != nil {
			log.Error().Err(werr).Msg("cannot dump symbol table")
		}
	}

	switch {
	case errors.Is(err, driver.ErrNoProgramName):
		log.Error().Msg("no output written, program name not found")
	case err == nil && u.opts.writes():
		log.Info().
			Str("asm", filepath.Join(u.cfg.OutputDir, res.AsmPath)).
			Str("err", filepath.Join(u.cfg.OutputDir, res.ErrPath)).
			Msg("compiled")
	}

	if u.opts.showAsm && res.AsmPath != "" {
		if aerr := u.printAsm(res.AsmPath); aerr != nil {
			log.Error().Err(aerr).Msg("cannot print assembly")
		}
	}

	return err
}

func (u *unit) printDiagnostics(diags []diag.Diagnostic) error {
	if u.opts.format == "json" {
		return diag.WriteJSON(u.stdout, diags)
	}

	profile := termenv.Ascii
	if u.cfg.Color {
		profile = termenv.ANSI
	}
	out := termenv.NewOutput(u.stderr, termenv.WithProfile(profile))

	for _, d := range diags {
		class := out.String(strings.ToUpper(d.Class.String())).Bold()
		switch d.Class {
		case diag.Lexical:
			class = class.Foreground(out.Color("5"))
		case diag.Syntax:
			class = class.Foreground(out.Color("1"))
		case diag.Semantic:
			class = class.Foreground(out.Color("3"))
		}
		fmt.Fprintf(u.stderr, "%s %s\n", class, d)
	}

	return nil
}

// printAsm reads the written assembly back and prints it, highlighted
// when colour is on.
func (u *unit) printAsm(path string) error {
	f, err := u.out.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	if !u.cfg.Color {
		_, err = u.stdout.Write(b)
		return err
	}
	return quick.Highlight(u.stdout, string(b), "nasm", "terminal256", "monokai")
}
