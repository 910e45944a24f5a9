// Package clipboard holds copies of rectangular ranges of a data store.
//
// A Snapshot owns its dictionary and cases. Copy leaves the source alone,
// Cut blanks the copied cells afterwards. The snapshot renders itself as
// tab separated text, HTML or JSON, and TakeReader hands its cases to a new
// owner exactly once.
//
//	snap, err := clipboard.Copy(store, clipboard.Range{Row0: 0, Col0: 0, Row1: 9, Col1: 2}, opts)
//	if err != nil {
//		return err
//	}
//	defer snap.Close()
//	fmt.Print(snap.Text())
package clipboard

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/datasheet"
	"github.com/ajitpratap0/casesheet/pkg/dictionary"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/logger"
	"github.com/ajitpratap0/casesheet/pkg/sheet"
)

// Store is the part of a data store the clipboard reads and writes.
type Store interface {
	RowCount() int
	ColumnCount() int
	Dictionary() *dictionary.Dictionary
	Case(row int) (*cases.Case, error)
	Clear(row, col int) error
	SetString(row, col int, text string) error
	InsertCase(pos int) error
}

var _ Store = (*sheet.DataStore)(nil)

// Range is an inclusive rectangle of display cells. The corners may be
// given in either order.
type Range struct {
	Row0, Col0 int
	Row1, Col1 int
}

// Cell returns the range covering one cell.
func Cell(row, col int) Range { return Range{Row0: row, Col0: col, Row1: row, Col1: col} }

func (r Range) normalized() Range {
	if r.Row0 > r.Row1 {
		r.Row0, r.Row1 = r.Row1, r.Row0
	}
	if r.Col0 > r.Col1 {
		r.Col0, r.Col1 = r.Col1, r.Col0
	}
	return r
}

// clamp limits r to rows and cols. It reports false when nothing remains.
func (r Range) clamp(rows, cols int) (Range, bool) {
	r = r.normalized()
	if r.Row0 < 0 || r.Col0 < 0 || rows == 0 || cols == 0 || r.Row0 >= rows || r.Col0 >= cols {
		return r, false
	}
	if r.Row1 >= rows {
		r.Row1 = rows - 1
	}
	if r.Col1 >= cols {
		r.Col1 = cols - 1
	}
	return r, true
}

// Snapshot is an owned copy of a range of cases and the variables of its
// columns.
type Snapshot struct {
	dict  *dictionary.Dictionary
	cases *datasheet.Datasheet
	taken bool
	log   *zap.Logger
}

// Copy snapshots the cells of rg that hold data. Parts of the range beyond
// the last case or variable are dropped; a range with no data at all is a
// bounds error.
func Copy(s Store, rg Range, opts datasheet.Options) (*Snapshot, error) {
	log := logger.Or(opts.Logger).Named("clipboard")
	r, ok := rg.clamp(s.RowCount(), s.ColumnCount())
	if !ok {
		return nil, errs.New(errs.ErrorTypeBounds, "range holds no data").
			WithDetail("rows", s.RowCount()).WithDetail("columns", s.ColumnCount())
	}
	dict, m, err := s.Dictionary().Clone(r.Col0, r.Col1)
	if err != nil {
		return nil, err
	}
	w, err := datasheet.NewWriter(dict.Proto(), opts)
	if err != nil {
		return nil, err
	}
	for row := r.Row0; row <= r.Row1; row++ {
		c, err := s.Case(row)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		out := m.Execute(c)
		c.Unref()
		if err := w.Write(out); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	reader, err := w.MakeReader()
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	sheetOpts := opts
	sheetOpts.Backing = nil
	cs, err := datasheet.FromReader(reader, sheetOpts)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}
	log.Debug("range copied",
		zap.Int("rows", r.Row1-r.Row0+1),
		zap.Int("columns", r.Col1-r.Col0+1))
	return &Snapshot{dict: dict, cases: cs, log: log}, nil
}

// Cut copies rg and then blanks every copied cell in the store.
func Cut(s Store, rg Range, opts datasheet.Options) (*Snapshot, error) {
	snap, err := Copy(s, rg, opts)
	if err != nil {
		return nil, err
	}
	r, _ := rg.clamp(s.RowCount(), s.ColumnCount())
	for row := r.Row0; row <= r.Row1; row++ {
		for col := r.Col0; col <= r.Col1; col++ {
			if err := s.Clear(row, col); err != nil {
				return snap, err
			}
		}
	}
	return snap, nil
}

// Dictionary returns the variables of the copied columns.
func (s *Snapshot) Dictionary() *dictionary.Dictionary { return s.dict }

// Rows returns the number of copied cases, or 0 once the cases are taken.
func (s *Snapshot) Rows() int {
	if s.taken {
		return 0
	}
	return s.cases.Rows()
}

// TakeReader transfers the copied cases to the caller. It succeeds once.
func (s *Snapshot) TakeReader() (cases.Reader, error) {
	if s.taken {
		return nil, errs.New(errs.ErrorTypeConsumed, "clipboard cases already taken")
	}
	r, err := s.cases.MakeReader()
	if err != nil {
		return nil, err
	}
	s.taken = true
	return r, nil
}

// Close releases the copied cases.
func (s *Snapshot) Close() error {
	if s.taken {
		return nil
	}
	s.taken = true
	return s.cases.Close()
}
