package config

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ajitpratap0/casesheet/pkg/compression"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/logger"
)

// AutoResidentPages asks ResolveResidentPages to size the page cache from
// available system memory.
const AutoResidentPages = -1

// Resident page budget limits applied to the automatic budget.
const (
	MinAutoResidentPages = 4
	MaxAutoResidentPages = 65536
)

// Config is the root configuration document.
type Config struct {
	Paging  PagingConfig  `yaml:"paging" json:"paging"`
	Logging logger.Config `yaml:"logging" json:"logging"`
	Import  ImportConfig  `yaml:"import" json:"import"`
}

// PagingConfig controls how datasheets keep rows in memory.
type PagingConfig struct {
	// PageRows is the number of rows per page
	PageRows int `yaml:"page_rows" json:"page_rows"`
	// MaxResidentPages bounds the page cache: 0 = unbounded, -1 = automatic
	MaxResidentPages int `yaml:"max_resident_pages" json:"max_resident_pages"`
	// MemoryFraction is the share of available memory the automatic budget may use
	MemoryFraction float64 `yaml:"memory_fraction" json:"memory_fraction"`
	// TempDir holds spill files; empty means the system temp directory
	TempDir string `yaml:"temp_dir" json:"temp_dir"`
	// Compression selects the spill codec (none, gzip, snappy, lz4, zstd, s2)
	Compression string `yaml:"compression" json:"compression"`
	// CompressionLevel sets compression ratio vs speed (1-9)
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
}

// ImportConfig holds defaults for delimited text import.
type ImportConfig struct {
	// Separator is a single character; empty means auto-detect
	Separator string `yaml:"separator" json:"separator"`
	// Header reports whether the first record names the variables
	Header bool `yaml:"header" json:"header"`
	// ChunkRecords is the number of records processed per import step
	ChunkRecords int `yaml:"chunk_records" json:"chunk_records"`
}

// Default returns a configuration with production defaults.
func Default() *Config {
	return &Config{
		Paging: PagingConfig{
			PageRows:         1024,
			MaxResidentPages: 256,
			MemoryFraction:   0.25,
			Compression:      string(compression.None),
			CompressionLevel: int(compression.Default),
		},
		Logging: logger.DefaultConfig(),
		Import: ImportConfig{
			Header:       true,
			ChunkRecords: 4096,
		},
	}
}

// Validate checks ranges and names in the configuration.
func (c *Config) Validate() error {
	p := c.Paging
	if p.PageRows <= 0 {
		return errs.New(errs.ErrorTypeConfig, "paging.page_rows must be positive")
	}
	if p.MaxResidentPages < AutoResidentPages {
		return errs.New(errs.ErrorTypeConfig, "paging.max_resident_pages must be -1, 0 or positive")
	}
	if p.MaxResidentPages == AutoResidentPages && (p.MemoryFraction <= 0 || p.MemoryFraction > 1) {
		return errs.New(errs.ErrorTypeConfig, "paging.memory_fraction must be in (0, 1]")
	}
	if _, err := compression.ParseAlgorithm(p.Compression); err != nil {
		return errs.Wrap(err, errs.ErrorTypeConfig, "paging.compression")
	}
	if len(c.Import.Separator) > 1 {
		return errs.New(errs.ErrorTypeConfig, "import.separator must be a single character")
	}
	if c.Import.ChunkRecords < 0 {
		return errs.New(errs.ErrorTypeConfig, "import.chunk_records cannot be negative")
	}
	return nil
}

// CompressionConfig returns the spill codec configuration.
func (p PagingConfig) CompressionConfig() (*compression.Config, error) {
	algo, err := compression.ParseAlgorithm(p.Compression)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrorTypeConfig, "paging.compression")
	}
	level := compression.Level(p.CompressionLevel)
	if level == 0 {
		level = compression.Default
	}
	return &compression.Config{Algorithm: algo, Level: level}, nil
}

// availableMemory is replaced in tests.
var availableMemory = func() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// ResolveResidentPages returns the effective page budget for rows of
// rowBytes encoded bytes. Explicit budgets are returned unchanged; the
// automatic budget takes MemoryFraction of available memory divided by the
// page size, clamped to [MinAutoResidentPages, MaxAutoResidentPages].
func (p PagingConfig) ResolveResidentPages(rowBytes int) (int, error) {
	if p.MaxResidentPages != AutoResidentPages {
		return p.MaxResidentPages, nil
	}
	avail, err := availableMemory()
	if err != nil {
		return 0, errs.Wrap(err, errs.ErrorTypeConfig, "failed to read system memory")
	}
	if rowBytes <= 0 {
		rowBytes = 8
	}
	pageBytes := uint64(p.PageRows) * uint64(rowBytes)
	if pageBytes == 0 {
		pageBytes = 1
	}
	pages := uint64(float64(avail)*p.MemoryFraction) / pageBytes
	switch {
	case pages < MinAutoResidentPages:
		return MinAutoResidentPages, nil
	case pages > MaxAutoResidentPages:
		return MaxAutoResidentPages, nil
	}
	return int(pages), nil
}
