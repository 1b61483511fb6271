package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the compiler CLI settings. Command line flags override
// every value read from a file.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	Verbose   bool   `yaml:"verbose"`
	Color     bool   `yaml:"color"`
	LogLevel  string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		OutputDir: ".",
		Color:     true,
		LogLevel:  zerolog.LevelInfoValue,
	}
}

// Load decodes r over base, so keys missing from the document keep the
// value base has. Unknown keys are rejected and an empty document yields
// base itself.
func Load(r io.Reader, base Config) (Config, error) {
	cfg := base

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}

	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func LoadFile(fs billy.Filesystem, path string, base Config) (Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot open config %s: %w", path, err)
	}
	defer f.Close()

	return Load(f, base)
}

// Level is the log level to run with. Verbose always means debug.
func (c Config) Level() (zerolog.Level, error) {
	if c.Verbose {
		return zerolog.DebugLevel, nil
	}

	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
