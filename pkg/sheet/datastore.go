package sheet

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/datasheet"
	"github.com/ajitpratap0/casesheet/pkg/dictionary"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/logger"
	"github.com/ajitpratap0/casesheet/pkg/notify"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// DataStore presents the cases of a datasheet through its dictionary.
type DataStore struct {
	dict       *dictionary.Dictionary
	sheet      *datasheet.Datasheet
	opts       datasheet.Options
	hub        notify.Hub
	dictSub    *notify.Subscription
	showLabels bool
	log        *zap.Logger
}

// NewDataStore creates an empty datasheet shaped by dict and binds it.
func NewDataStore(dict *dictionary.Dictionary, opts datasheet.Options) (*DataStore, error) {
	s, err := datasheet.New(dict.Proto(), opts)
	if err != nil {
		return nil, err
	}
	ds := &DataStore{dict: dict, opts: opts, log: logger.Or(opts.Logger).Named("datastore")}
	if err := ds.attach(s); err != nil {
		_ = s.Close()
		return nil, err
	}
	ds.dictSub = dict.Subscribe(notify.ObserverFunc(ds.hub.Emit))
	return ds, nil
}

func (ds *DataStore) attach(s *datasheet.Datasheet) error {
	if err := ds.dict.Bind(s); err != nil {
		return err
	}
	ds.sheet = s
	return nil
}

func (ds *DataStore) ready() error {
	if ds.sheet == nil {
		return errs.New(errs.ErrorTypeConsumed, "data store has no datasheet")
	}
	return nil
}

// Dictionary returns the dictionary the store presents.
func (ds *DataStore) Dictionary() *dictionary.Dictionary { return ds.dict }

// Stats reports the paging counters of the underlying datasheet.
func (ds *DataStore) Stats() datasheet.Stats {
	if ds.sheet == nil {
		return datasheet.Stats{}
	}
	return ds.sheet.Stats()
}

// Subscribe registers o for case and dictionary changes in display space.
func (ds *DataStore) Subscribe(o notify.Observer) *notify.Subscription {
	return ds.hub.Subscribe(o)
}

// RowCount returns the number of cases.
func (ds *DataStore) RowCount() int {
	if ds.sheet == nil {
		return 0
	}
	return ds.sheet.Rows()
}

// ColumnCount returns the number of variables.
func (ds *DataStore) ColumnCount() int { return ds.dict.VarCount() }

// ShowLabels reports whether cells show value labels instead of values.
func (ds *DataStore) ShowLabels() bool { return ds.showLabels }

// SetShowLabels switches value-label display and invalidates every cell.
func (ds *DataStore) SetShowLabels(on bool) {
	if ds.showLabels == on {
		return
	}
	ds.showLabels = on
	ds.hub.Emit(notify.Event{Kind: notify.CellsChanged, Rows: notify.All, Cols: notify.All, CaseIndex: -1, OldWidth: -1})
}

func (ds *DataStore) cell(row, col int) (*dictionary.Variable, error) {
	if err := ds.ready(); err != nil {
		return nil, err
	}
	v := ds.dict.Var(col)
	if v == nil {
		return nil, errs.Bounds("column", col, ds.dict.VarCount())
	}
	if row < 0 || row >= ds.sheet.Rows() {
		return nil, errs.Bounds("row", row, ds.sheet.Rows())
	}
	return v, nil
}

// Value returns the value at a display cell.
func (ds *DataStore) Value(row, col int) (value.Value, error) {
	v, err := ds.cell(row, col)
	if err != nil {
		return value.Value{}, err
	}
	return ds.sheet.Value(row, v.CaseIndex())
}

// Case returns the case at row. It shares storage with the sheet until
// either side writes.
func (ds *DataStore) Case(row int) (*cases.Case, error) {
	if err := ds.ready(); err != nil {
		return nil, err
	}
	return ds.sheet.Row(row)
}

// GetString renders a cell with its variable's print format, or its value
// label when labels are shown. Trailing blanks are dropped.
func (ds *DataStore) GetString(row, col int) (string, error) {
	v, err := ds.cell(row, col)
	if err != nil {
		return "", err
	}
	val, err := ds.sheet.Value(row, v.CaseIndex())
	if err != nil {
		return "", err
	}
	if ds.showLabels {
		if label, ok := v.LookupValueLabel(val); ok {
			return label, nil
		}
	}
	return chomp(format.Output(val, v.PrintFormat())), nil
}

// SetString parses text with the variable's print format and stores it.
// Writing one row past the end appends a blank case first.
func (ds *DataStore) SetString(row, col int, text string) error {
	if err := ds.ready(); err != nil {
		return err
	}
	v := ds.dict.Var(col)
	if v == nil {
		return errs.Bounds("column", col, ds.dict.VarCount())
	}
	n := ds.sheet.Rows()
	if row < 0 || row > n {
		return errs.Bounds("row", row, n+1)
	}
	val, err := format.Input(text, v.PrintFormat())
	if err != nil {
		return err
	}
	if row == n {
		if err := ds.InsertCase(row); err != nil {
			return err
		}
	}
	if err := ds.sheet.SetValue(row, v.CaseIndex(), val); err != nil {
		return err
	}
	ds.hub.Emit(notify.CellEvent(row, col))
	return nil
}

// Clear sets a cell to the missing value of its width.
func (ds *DataStore) Clear(row, col int) error {
	v, err := ds.cell(row, col)
	if err != nil {
		return err
	}
	if err := ds.sheet.SetValue(row, v.CaseIndex(), value.Missing(v.Width())); err != nil {
		return err
	}
	ds.hub.Emit(notify.CellEvent(row, col))
	return nil
}

// IsEditable reports whether col names a variable. Every case is editable.
func (ds *DataStore) IsEditable(_, col int) bool { return col >= 0 && col < ds.dict.VarCount() }

// RowTitle returns the 1-based case number.
func (ds *DataStore) RowTitle(row int) string { return strconv.Itoa(row + 1) }

// ColumnTitle returns the variable name, or "var" past the last variable.
func (ds *DataStore) ColumnTitle(col int) string {
	if v := ds.dict.Var(col); v != nil {
		return v.Name()
	}
	return "var"
}

// ColumnSubtitle returns the variable label.
func (ds *DataStore) ColumnSubtitle(col int) string {
	if v := ds.dict.Var(col); v != nil {
		label, _ := v.Label()
		return label
	}
	return ""
}

// RowSensitive reports whether row holds a case.
func (ds *DataStore) RowSensitive(row int) bool { return row >= 0 && row < ds.RowCount() }

// ColumnSensitive reports whether col names a variable.
func (ds *DataStore) ColumnSensitive(col int) bool { return col >= 0 && col < ds.dict.VarCount() }

// ColumnJustification follows the variable's alignment.
func (ds *DataStore) ColumnJustification(col int) Justification {
	if v := ds.dict.Var(col); v != nil {
		return justify(v.Alignment())
	}
	return JustifyLeft
}

// RowOverstrike reports whether the filter variable excludes row, that is
// it holds 0 there.
func (ds *DataStore) RowOverstrike(row int) bool {
	f := ds.dict.Filter()
	if f == nil || ds.sheet == nil {
		return false
	}
	v, err := ds.sheet.Value(row, f.CaseIndex())
	return err == nil && v.IsNumeric() && v.Float() == 0
}

// InsertCase inserts a blank case before pos.
func (ds *DataStore) InsertCase(pos int) error {
	if err := ds.ready(); err != nil {
		return err
	}
	proto := ds.dict.Proto()
	if proto.N() == 0 {
		return errs.New(errs.ErrorTypeValidation, "cannot insert a case without variables")
	}
	if pos < 0 || pos > ds.sheet.Rows() {
		return errs.Bounds("case position", pos, ds.sheet.Rows()+1)
	}
	if err := ds.sheet.InsertRows(pos, []*cases.Case{cases.New(proto)}); err != nil {
		ds.log.Warn("cannot insert case", zap.Int("position", pos), zap.Error(err))
		return err
	}
	ds.hub.Emit(notify.RowEvent(notify.RowsInserted, pos, 1))
	return nil
}

// DeleteCases removes n cases starting at first.
func (ds *DataStore) DeleteCases(first, n int) error {
	if err := ds.ready(); err != nil {
		return err
	}
	if err := ds.sheet.DeleteRows(first, n); err != nil {
		return err
	}
	if n > 0 {
		ds.hub.Emit(notify.RowEvent(notify.RowsDeleted, first, n))
	}
	return nil
}

// InsertVariable inserts a numeric variable with the next free name at
// display position pos.
func (ds *DataStore) InsertVariable(pos int) (*dictionary.Variable, error) {
	return ds.dict.InsertVar(pos, ds.dict.NextName(), 0)
}

// DeleteVariables removes n variables starting at display position first.
func (ds *DataStore) DeleteVariables(first, n int) error {
	return ds.dict.DeleteVars(first, n)
}

// GetReader hands the cases over as a reader. The store keeps its
// dictionary, unbound, and offers no cases until SetReader.
func (ds *DataStore) GetReader() (cases.Reader, error) {
	if err := ds.ready(); err != nil {
		return nil, err
	}
	r, err := ds.sheet.MakeReader()
	if err != nil {
		return nil, err
	}
	ds.dict.Unbind()
	ds.sheet = nil
	ds.log.Debug("cases handed over to reader", zap.Int("rows", r.Len()))
	return r, nil
}

// SetReader replaces the cases with those of r, whose shape must be the
// dictionary's. Nothing is read until the cases are accessed, except for a
// reader of unknown length, which is drained at once. If draining fails the
// cases read so far replace the old ones and the read error is returned.
func (ds *DataStore) SetReader(r cases.Reader) error {
	if !r.Proto().Equal(ds.dict.Proto()) {
		return errs.Newf(errs.ErrorTypeShape, "reader shape %s does not match dictionary shape %s", r.Proto(), ds.dict.Proto())
	}
	s, readErr := datasheet.FromReader(r, ds.opts)
	if s == nil {
		return readErr
	}
	old := ds.sheet
	ds.dict.Unbind()
	if err := ds.attach(s); err != nil {
		_ = s.Close()
		if old != nil {
			_ = ds.attach(old)
		}
		return err
	}
	if old != nil {
		if err := old.Close(); err != nil {
			ds.log.Warn("closing replaced datasheet", zap.Error(err))
		}
	}
	if readErr != nil {
		ds.log.Warn("reader failed, keeping the cases read", zap.Int("rows", s.Rows()), zap.Error(readErr))
	}
	ds.hub.Emit(notify.ResetEvent())
	return readErr
}

// ClearAll drops every case and every variable.
func (ds *DataStore) ClearAll() error {
	if ds.sheet != nil {
		ds.dict.Unbind()
		if err := ds.sheet.Close(); err != nil {
			ds.log.Warn("closing datasheet", zap.Error(err))
		}
		ds.sheet = nil
	}
	if err := ds.dict.Clear(); err != nil {
		return err
	}
	s, err := datasheet.New(ds.dict.Proto(), ds.opts)
	if err != nil {
		return err
	}
	if err := ds.attach(s); err != nil {
		_ = s.Close()
		return err
	}
	ds.hub.Emit(notify.ResetEvent())
	return nil
}

// Close releases the datasheet and stops forwarding dictionary events.
func (ds *DataStore) Close() error {
	ds.dictSub.Cancel()
	if ds.sheet == nil {
		return nil
	}
	ds.dict.Unbind()
	s := ds.sheet
	ds.sheet = nil
	return s.Close()
}
