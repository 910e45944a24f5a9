// Package casesheet is a case-oriented store for tabular data sets.
//
// A data set is a dictionary of variables plus a sequence of cases, one
// value per variable. Cases live in a datasheet: a paged table that keeps a
// bounded number of pages in memory and spills the rest, compressed, to a
// temporary file. Sheet models expose the dictionary and the cases as
// editable grids and forward every change to their subscribers.
//
// # Packages
//
//	pkg/value       - numeric and fixed-width string values
//	pkg/format      - print and input formats (F, COMMA, DOLLAR, A, ...)
//	pkg/cases       - case prototypes, cases, readers and case maps
//	pkg/dictionary  - variables, value labels, missing values
//	pkg/datasheet   - paged, spillable case storage
//	pkg/notify      - change events and the subscription hub
//	pkg/sheet       - grid models over the dictionary and the cases
//	pkg/clipboard   - copy, cut and paste of cell ranges
//	pkg/textimport  - delimited text import with type inference
//	pkg/config      - YAML configuration
//	pkg/logger      - structured logging
//	pkg/metrics     - Prometheus paging metrics
//
// # Quick Start
//
//	cfg := config.Default()
//	imp, _ := textimport.New(f, cfg.Import, opts)
//	dict, reader, _ := imp.Result()
//
//	opts, _ := datasheet.OptionsFromConfig(cfg.Paging, dict.Proto())
//	ds, _ := sheet.NewDataStore(dict, opts)
//	_ = ds.SetReader(reader)
//	text, _ := ds.GetString(0, 0)
//
// The casesheet command wraps the same steps:
//
//	casesheet import data.csv --stats
//	casesheet export data.csv --format html
//	casesheet dict data.csv --json
package casesheet
