// Package textimport reads delimited text into a dictionary and a case
// reader.
//
// The importer works in steps so a caller can report progress or stop
// between chunks:
//
//	imp, err := textimport.New(f, cfg.Import, opts)
//	if err != nil {
//		return err
//	}
//	for !imp.Done() {
//		if err := imp.Step(cfg.Import.ChunkRecords); err != nil {
//			return err
//		}
//	}
//	dict, reader, err := imp.Result()
//
// Records are staged as string cases in a paged datasheet while they are
// read, so an import holds no more in memory than the paging options allow.
// Column types are inferred once all records are read: a column is numeric
// when every non-empty field reads as a number, otherwise it is a string as
// wide as its widest field.
package textimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/config"
	"github.com/ajitpratap0/casesheet/pkg/datasheet"
	"github.com/ajitpratap0/casesheet/pkg/dictionary"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/logger"
	"github.com/ajitpratap0/casesheet/pkg/metrics"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// sampleBytes is how much input separator detection looks at.
const sampleBytes = 64 * 1024

// DefaultChunkRecords is the step size used when Step is given n <= 0 and
// the configuration names none.
const DefaultChunkRecords = 4096

// column collects what type inference needs to know about one field
// position.
type column struct {
	numeric  bool
	maxLen   int
	decimals int
}

// Importer reads delimited records in steps.
type Importer struct {
	cfg        config.ImportConfig
	opts       datasheet.Options
	r          *csv.Reader
	sep        rune
	header     []string
	cols       []*column
	stage      *datasheet.Datasheet
	pending    []*cases.Case
	done       bool
	taken      bool
	err        error
	throughput *metrics.ThroughputTracker
	log        *zap.Logger
}

// New prepares an import of r. The separator comes from cfg, from a
// leading "sep=X" line, or from the contents of the first chunk of input.
func New(r io.Reader, cfg config.ImportConfig, opts datasheet.Options) (*Importer, error) {
	if len(cfg.Separator) > 1 {
		return nil, errs.New(errs.ErrorTypeConfig, "separator must be a single character")
	}
	br := bufio.NewReaderSize(r, sampleBytes)
	sample, err := br.Peek(sampleBytes)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errs.Wrap(err, errs.ErrorTypeIO, "failed to read import input")
	}
	if bytes.HasPrefix(sample, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		sample = sample[len(bomUTF8):]
	}

	stageOpts := opts
	stageOpts.Backing = nil
	stage, err := datasheet.New(cases.NewProto(), stageOpts)
	if err != nil {
		return nil, err
	}
	imp := &Importer{
		cfg:        cfg,
		opts:       opts,
		stage:      stage,
		throughput: metrics.NewThroughputTracker(metrics.ImportThroughput),
		log:        logger.Or(opts.Logger).Named("textimport"),
	}
	switch {
	case cfg.Separator != "":
		imp.sep = rune(cfg.Separator[0])
	default:
		line := firstLine(sample)
		if sep, ok := parseSepHeader(line); ok {
			imp.sep = sep
			_, _ = br.Discard(len(line))
		} else {
			imp.sep = detectSeparator(sample)
		}
	}

	imp.r = csv.NewReader(br)
	imp.r.Comma = imp.sep
	imp.r.FieldsPerRecord = -1
	imp.r.LazyQuotes = true
	imp.log.Debug("import started", zap.String("separator", string(imp.sep)), zap.Bool("header", cfg.Header))
	return imp, nil
}

// Separator returns the field separator in use.
func (imp *Importer) Separator() rune { return imp.sep }

// Records returns the number of data records read so far.
func (imp *Importer) Records() int {
	if imp.stage == nil {
		return 0
	}
	return imp.stage.Rows() + len(imp.pending)
}

// Done reports whether the input is exhausted or failed.
func (imp *Importer) Done() bool { return imp.done }

// Step reads at most n records. It returns the read error, if any, which
// also ends the import.
func (imp *Importer) Step(n int) error {
	if imp.done {
		return imp.err
	}
	if n <= 0 {
		n = imp.cfg.ChunkRecords
	}
	if n <= 0 {
		n = DefaultChunkRecords
	}
	for i := 0; i < n; i++ {
		rec, err := imp.r.Read()
		if err == io.EOF {
			imp.done = true
			break
		}
		if err != nil {
			imp.fail(errs.Wrap(err, errs.ErrorTypeIO, "failed to read record").
				WithDetail("record", imp.Records()+1))
			break
		}
		if err := imp.add(rec); err != nil {
			imp.fail(err)
			break
		}
	}
	if imp.err == nil {
		if err := imp.flush(); err != nil {
			imp.fail(err)
		}
	}
	rate := imp.throughput.GetAndReset()
	imp.log.Debug("import step", zap.Int("records", imp.Records()), zap.Float64("records_per_second", rate))
	return imp.err
}

func (imp *Importer) fail(err error) {
	imp.done = true
	imp.err = err
	imp.log.Warn("import stopped", zap.Error(err))
	_ = imp.release()
}

// widen adds staging columns for a record of len(lens) fields and grows the
// columns narrower than the byte widths in lens.
func (imp *Importer) widen(lens []int) error {
	p := imp.stage.Proto()
	grow := len(lens) > p.N()
	for i := 0; !grow && i < len(lens); i++ {
		grow = lens[i] > p.Width(i)
	}
	if !grow {
		return nil
	}
	if err := imp.flush(); err != nil {
		return err
	}
	for imp.stage.Columns() < len(lens) {
		if err := imp.stage.InsertColumn(nil, 1, imp.stage.Columns()); err != nil {
			return err
		}
	}
	for i, w := range lens {
		if w > imp.stage.Proto().Width(i) {
			if err := imp.stage.ResizeColumn(i, w, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// flush appends the records staged since the last flush.
func (imp *Importer) flush() error {
	if len(imp.pending) == 0 {
		return nil
	}
	// The sheet keeps the slice as page rows, so it is never reused.
	err := imp.stage.InsertRows(imp.stage.Rows(), imp.pending)
	imp.pending = nil
	return err
}

func (imp *Importer) add(rec []string) error {
	for len(imp.cols) < len(rec) {
		imp.cols = append(imp.cols, &column{numeric: true})
	}
	if imp.cfg.Header && imp.header == nil {
		imp.header = append([]string{}, rec...)
		return nil
	}
	lens := make([]int, len(rec))
	for i, field := range rec {
		imp.cols[i].observe(field)
		lens[i] = max(1, min(len(field), value.MaxStringWidth))
	}
	if err := imp.widen(lens); err != nil {
		return err
	}
	p := imp.stage.Proto()
	c := cases.New(p)
	for i, field := range rec {
		if err := c.Set(i, value.String(field, p.Width(i))); err != nil {
			return err
		}
	}
	imp.pending = append(imp.pending, c)
	imp.throughput.Increment(1)
	return nil
}

func (c *column) observe(field string) {
	if n := len(field); n > c.maxLen {
		c.maxLen = n
	}
	text := strings.TrimSpace(field)
	if text == "" || !c.numeric {
		return
	}
	if _, err := format.Input(text, numericProbe); err != nil {
		c.numeric = false
		return
	}
	if d := decimalsOf(text); d > c.decimals {
		c.decimals = d
	}
}

var numericProbe = format.Spec{Type: format.F, W: format.MaxNumericWidth}

// decimalsOf counts the digits after the decimal point of a plain number.
func decimalsOf(text string) int {
	if strings.ContainsAny(text, "eE") {
		return 0
	}
	i := strings.LastIndexAny(text, ".,")
	if i < 0 {
		return 0
	}
	return len(text) - i - 1
}

// spec returns the variable width and the print format of the column.
func (c *column) spec() (int, format.Spec) {
	if !c.numeric {
		w := c.maxLen
		if w < 1 {
			w = 1
		}
		if w > value.MaxStringWidth {
			w = value.MaxStringWidth
		}
		return w, format.Default(w)
	}
	d := c.decimals
	if d > format.MaxDecimals {
		d = format.MaxDecimals
	}
	w := c.maxLen
	if w < 8 {
		w = 8
	}
	if w < d+2 {
		w = d + 2
	}
	if w > format.MaxNumericWidth {
		w = format.MaxNumericWidth
	}
	return 0, format.Spec{Type: format.F, W: w, D: d}
}

// names assigns a valid, unique variable name to every column, falling back
// to generated names for blank, invalid or repeated header fields.
func (imp *Importer) names() []string {
	out := make([]string, len(imp.cols))
	seen := make(map[string]bool)
	for i := range imp.cols {
		var name string
		if i < len(imp.header) {
			name = sanitize(imp.header[i])
		}
		if name == "" || dictionary.ValidName(name) != nil || seen[strings.ToUpper(name)] {
			name = ""
		}
		out[i] = name
		if name != "" {
			seen[strings.ToUpper(name)] = true
		}
	}
	n := 0
	for i := range out {
		for out[i] == "" {
			n++
			candidate := fmt.Sprintf("VAR%05d", n)
			if !seen[strings.ToUpper(candidate)] {
				out[i] = candidate
				seen[strings.ToUpper(candidate)] = true
			}
		}
	}
	return out
}

// sanitize turns header text into a candidate name: blanks become
// underscores and the result is cut to the longest allowed name.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return '_'
		}
		return r
	}, s)
	s = strings.TrimRight(s, "._")
	for len(s) > dictionary.MaxNameLen {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

// Result finishes the import and returns the inferred dictionary with a
// reader over the cases. It can be called once.
func (imp *Importer) Result() (*dictionary.Dictionary, cases.Reader, error) {
	if imp.taken {
		return nil, nil, errs.New(errs.ErrorTypeConsumed, "import result already taken")
	}
	for !imp.done {
		if err := imp.Step(0); err != nil {
			return nil, nil, err
		}
	}
	if imp.err != nil {
		return nil, nil, imp.err
	}
	imp.taken = true
	defer imp.release()

	d := dictionary.New(imp.log)
	for i, name := range imp.names() {
		width, pf := imp.cols[i].spec()
		if _, err := d.CreateVar(name, width); err != nil {
			return nil, nil, err
		}
		if err := d.SetFormats(i, pf, pf); err != nil {
			return nil, nil, err
		}
	}

	w, err := datasheet.NewWriter(d.Proto(), imp.opts)
	if err != nil {
		return nil, nil, err
	}
	if err := imp.retype(d, w); err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	r, err := w.MakeReader()
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	imp.log.Info("import finished",
		zap.Int("variables", d.VarCount()),
		zap.Int("cases", r.Len()))
	return d, r, nil
}

// retype converts the staged string cases to the dictionary's shape.
func (imp *Importer) retype(d *dictionary.Dictionary, w *datasheet.Writer) error {
	staged, err := imp.stage.MakeReader()
	if err != nil {
		return err
	}
	defer staged.Close()
	for {
		src, err := staged.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		c, err := toCase(d, src)
		src.Unref()
		if err != nil {
			return err
		}
		if err := w.Write(c); err != nil {
			return err
		}
	}
}

func toCase(d *dictionary.Dictionary, src *cases.Case) (*cases.Case, error) {
	c := cases.New(d.Proto())
	for i := 0; i < src.N(); i++ {
		v := d.Var(i)
		field := src.Value(i).Str()
		var val value.Value
		if v.IsNumeric() {
			parsed, err := format.Input(field, numericProbe)
			if err != nil {
				return nil, err
			}
			val = parsed
		} else {
			val = value.String(field, v.Width())
		}
		if err := c.Set(v.CaseIndex(), val); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Close releases the staged records of an import whose result was never
// taken. It is safe to call after Result.
func (imp *Importer) Close() error {
	imp.done = true
	return imp.release()
}

func (imp *Importer) release() error {
	for _, c := range imp.pending {
		c.Unref()
	}
	imp.pending = nil
	if imp.stage == nil {
		return nil
	}
	err := imp.stage.Close()
	imp.stage = nil
	return err
}
