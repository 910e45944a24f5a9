package datasheet

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/compression"
	"github.com/ajitpratap0/casesheet/pkg/config"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/logger"
)

// DefaultPageRows is the page size used when Options.PageRows is zero.
const DefaultPageRows = 1024

// Options configures a Datasheet.
type Options struct {
	// PageRows is the maximum number of rows per page
	PageRows int
	// MaxResidentPages bounds the pages held in memory; 0 means unbounded
	MaxResidentPages int
	// TempDir holds the spill file when Backing is nil
	TempDir string
	// Backing replaces the temp file; the datasheet takes ownership
	Backing Backing
	// Compression selects the spill codec; nil means none
	Compression *compression.Config
	// Logger defaults to the global logger
	Logger *zap.Logger
}

// DefaultOptions returns unbounded in-memory paging with default page size.
func DefaultOptions() Options {
	return Options{PageRows: DefaultPageRows}
}

// OptionsFromConfig derives options from the paging configuration,
// resolving an automatic resident budget for rows of proto's shape.
func OptionsFromConfig(p config.PagingConfig, proto *cases.Proto) (Options, error) {
	budget, err := p.ResolveResidentPages(proto.RowBytes())
	if err != nil {
		return Options{}, err
	}
	comp, err := p.CompressionConfig()
	if err != nil {
		return Options{}, err
	}
	return Options{
		PageRows:         p.PageRows,
		MaxResidentPages: budget,
		TempDir:          p.TempDir,
		Compression:      comp,
	}, nil
}

func (o Options) validate() error {
	if o.PageRows < 0 {
		return errs.New(errs.ErrorTypeValidation, "page rows cannot be negative")
	}
	if o.MaxResidentPages < 0 {
		return errs.New(errs.ErrorTypeValidation, "max resident pages cannot be negative")
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.PageRows == 0 {
		o.PageRows = DefaultPageRows
	}
	o.Logger = logger.Or(o.Logger).Named("datasheet")
	return o
}

func (o Options) opener() func() (Backing, error) {
	if o.Backing != nil {
		b := o.Backing
		return func() (Backing, error) { return b, nil }
	}
	dir := o.TempDir
	return func() (Backing, error) {
		b, err := newTempFileBacking(dir)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
