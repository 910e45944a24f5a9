package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/casesheet/pkg/compression"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
)

func withMemory(t *testing.T, avail uint64, err error) {
	t.Helper()
	orig := availableMemory
	availableMemory = func() (uint64, error) { return avail, err }
	t.Cleanup(func() { availableMemory = orig })
}

func TestResolveResidentPages(t *testing.T) {
	p := Default().Paging
	p.PageRows = 1000
	p.MemoryFraction = 0.5

	n, err := p.ResolveResidentPages(16)
	require.NoError(t, err)
	assert.Equal(t, 256, n, "explicit budget passes through")

	p.MaxResidentPages = AutoResidentPages
	withMemory(t, 16_000_000, nil)
	n, err = p.ResolveResidentPages(16)
	require.NoError(t, err)
	assert.Equal(t, 500, n)

	withMemory(t, 1000, nil)
	n, err = p.ResolveResidentPages(16)
	require.NoError(t, err)
	assert.Equal(t, MinAutoResidentPages, n)

	withMemory(t, 1<<50, nil)
	n, err = p.ResolveResidentPages(16)
	require.NoError(t, err)
	assert.Equal(t, MaxAutoResidentPages, n)

	withMemory(t, 0, errors.New("no /proc"))
	_, err = p.ResolveResidentPages(16)
	assert.True(t, errs.IsType(err, errs.ErrorTypeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"page rows", func(c *Config) { c.Paging.PageRows = 0 }},
		{"resident pages", func(c *Config) { c.Paging.MaxResidentPages = -2 }},
		{"memory fraction", func(c *Config) {
			c.Paging.MaxResidentPages = AutoResidentPages
			c.Paging.MemoryFraction = 1.5
		}},
		{"compression", func(c *Config) { c.Paging.Compression = "brotli" }},
		{"separator", func(c *Config) { c.Import.Separator = ";;" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.True(t, errs.IsType(cfg.Validate(), errs.ErrorTypeConfig))
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadSubstitutesEnvironment(t *testing.T) {
	t.Setenv("CASESHEET_TEST_ROWS", "64")
	path := filepath.Join(t.TempDir(), "casesheet.yaml")
	doc := "paging:\n  page_rows: ${CASESHEET_TEST_ROWS}\n  temp_dir: ${CASESHEET_TEST_UNSET:-/var/tmp}\n  compression: lz4\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Paging.PageRows)
	assert.Equal(t, "/var/tmp", cfg.Paging.TempDir)

	cc, err := cfg.Paging.CompressionConfig()
	require.NoError(t, err)
	assert.Equal(t, compression.LZ4, cc.Algorithm)
	assert.Equal(t, compression.Default, cc.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Paging.PageRows = 77
	require.NoError(t, Save(path, cfg))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errs.IsType(err, errs.ErrorTypeConfig))
}
