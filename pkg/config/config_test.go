package config

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected Config
	}{
		{
			name:     "empty",
			doc:      "",
			expected: Default(),
		},
		{
			name: "partial",
			doc:  "output_dir: build\n",
			expected: Config{
				OutputDir: "build",
				Color:     true,
				LogLevel:  "info",
			},
		},
		{
			name: "full",
			doc: `output_dir: out
verbose: true
color: false
log_level: warn
`,
			expected: Config{
				OutputDir: "out",
				Verbose:   true,
				Color:     false,
				LogLevel:  "warn",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(strings.NewReader(tt.doc), Default())
			require.NoError(t, err)
			require.Equal(t, tt.expected, cfg)
		})
	}
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(strings.NewReader("outdir: x\n"), Default())
	assert.Error(t, err, "unknown key")

	_, err = Load(strings.NewReader("log_level: loud\n"), Default())
	assert.Error(t, err, "bad level")

	_, err = Load(strings.NewReader("verbose: [1, 2]\n"), Default())
	assert.Error(t, err, "bad type")
}

func TestLoadKeepsBase(t *testing.T) {
	base := Default()
	base.Color = false

	cfg, err := Load(strings.NewReader("output_dir: build\n"), base)
	require.NoError(t, err)
	assert.False(t, cfg.Color)
	assert.Equal(t, "build", cfg.OutputDir)

	cfg, err = Load(strings.NewReader("color: true\n"), base)
	require.NoError(t, err)
	assert.True(t, cfg.Color)
}

func TestLevel(t *testing.T) {
	cfg := Default()

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	cfg.Verbose = true
	lvl, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoadFile(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "tpc.yaml", []byte("color: false\n"), 0o644))

	cfg, err := LoadFile(fs, "tpc.yaml", Default())
	require.NoError(t, err)
	assert.False(t, cfg.Color)
	assert.Equal(t, ".", cfg.OutputDir)

	_, err = LoadFile(fs, "missing.yaml", Default())
	assert.Error(t, err)
}
