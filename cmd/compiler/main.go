package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/brenoafb/tinypascal/pkg/config"
)

const configRelPath = "tinypascal/config.yaml"

// isTerminal decides the colour default when no config file sets it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

type options struct {
	file       string
	configPath string
	outDir     string
	format     string
	scan       bool
	parse      bool
	check      bool
	verbose    bool
	color      bool
	showAsm    bool
}

// parses reports whether the parser runs. Scanning alone skips it.
func (o options) parses() bool {
	return o.parse || o.check || !o.scan
}

// writes reports whether <name>.asm and <name>.err are produced.
func (o options) writes() bool {
	return o.parses() && !o.check
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "tpc -f <source|glob>",
		Short:        "Compile programs to 32-bit NASM assembly",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "source file or glob (e.g. 'tests/**/*.pas')")
	flags.BoolVarP(&opts.scan, "scan", "s", false, "print the token stream and stop")
	flags.BoolVarP(&opts.parse, "parse", "p", false, "run the parser and write <name>.asm and <name>.err (the default unless -s is given)")
	flags.BoolVarP(&opts.check, "check", "c", false, "run the parser without writing output files")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging and a symbol table dump")
	flags.StringVarP(&opts.outDir, "out", "o", ".", "directory receiving <name>.asm and <name>.err")
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file (default $XDG_CONFIG_HOME/"+configRelPath+")")
	flags.BoolVar(&opts.color, "color", true, "colour diagnostics on the terminal")
	flags.StringVar(&opts.format, "format", "text", "diagnostics format on the terminal: text or json")
	flags.BoolVarP(&opts.showAsm, "asm", "a", false, "print the generated assembly")
	cmd.MarkFlagsMutuallyExclusive("check", "asm")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg := config.Default()
	cfg.Color = isTerminal()

	path := opts.configPath
	if path == "" {
		if found, err := xdg.SearchConfigFile(configRelPath); err == nil {
			path = found
		}
	}

	if path != "" {
		dir, name := filepath.Split(path)
		if dir == "" {
			dir = "."
		}

		var err error
		cfg, err = config.LoadFile(osfs.New(dir), name, cfg)
		if err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutputDir = opts.outDir
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("color") {
		cfg.Color = opts.color
	}

	return cfg, nil
}

func newLogger(cfg config.Config) (zerolog.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return zerolog.Nop(), err
	}

	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.NoColor = !cfg.Color
		w.TimeFormat = "15:04:05"
	})

	return zerolog.New(console).Level(lvl).With().Timestamp().Logger(), nil
}

// sources expands pattern into the files to compile. A pattern without
// glob metacharacters names exactly one file, which must exist.
func sources(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no source file matches %q: %w", pattern, os.ErrNotExist)
	}
	return matches, nil
}

func run(cmd *cobra.Command, opts options) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown diagnostics format %q", opts.format)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	files, err := sources(opts.file)
	if err != nil {
		return err
	}

	if opts.writes() {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}

	u := &unit{
		cfg:    cfg,
		opts:   opts,
		log:    logger,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		out:    osfs.New(cfg.OutputDir),
	}

	var errs []error
	for _, file := range files {
		if err := u.compile(file); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}
	}

	if len(files) > 1 {
		logger.Info().Int("files", len(files)).Int("failed", len(errs)).Msg("done")
	}

	return errors.Join(errs...)
}
