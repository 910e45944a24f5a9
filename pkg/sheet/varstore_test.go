package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/casesheet/pkg/dictionary"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/notify"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

func newVarStore(t *testing.T, vars ...any) (*dictionary.Dictionary, *VarStore) {
	t.Helper()
	d, _ := newStore(t, vars...)
	vs := NewVarStore(d)
	t.Cleanup(vs.Close)
	return d, vs
}

func TestVarStoreColumns(t *testing.T) {
	d, vs := newVarStore(t, "age", 0, "city", 12)
	require.NoError(t, d.SetLabel(0, "Age in years"))

	labels := dictionary.NewValueLabels(0)
	require.NoError(t, labels.Set(value.Number(99), "refused"))
	require.NoError(t, labels.Set(value.Number(1), "infant"))
	require.NoError(t, d.SetValueLabels(0, labels))

	mv := dictionary.NewMissingValues(0)
	require.NoError(t, mv.Add(value.Number(99)))
	require.NoError(t, d.SetMissingValues(0, mv))

	assert.Equal(t, 2, vs.RowCount())
	assert.Equal(t, 10, vs.ColumnCount())

	tests := []struct {
		row, col int
		want     string
	}{
		{0, ColName, "age"},
		{0, ColType, "Numeric"},
		{0, ColWidth, "8"},
		{0, ColDecimals, "2"},
		{0, ColLabel, "Age in years"},
		{0, ColValues, "{1.00,`infant'}_"},
		{0, ColMissing, "99.00"},
		{0, ColColumns, "8"},
		{0, ColAlign, "Right"},
		{0, ColMeasure, "Scale"},
		{1, ColType, "String"},
		{1, ColWidth, "12"},
		{1, ColValues, "None"},
		{1, ColMissing, "None"},
		{1, ColColumns, "12"},
		{1, ColAlign, "Left"},
		{1, ColMeasure, "Nominal"},
	}
	for _, tt := range tests {
		t.Run(vs.ColumnTitle(tt.col), func(t *testing.T) {
			assert.Equal(t, tt.want, cellText(t, vs, tt.row, tt.col))
		})
	}

	_, err := vs.GetString(2, 0)
	assert.True(t, errs.IsBounds(err))
}

func TestVarStoreRename(t *testing.T) {
	d, vs := newVarStore(t, "a", 0, "b", 0)

	require.NoError(t, vs.SetString(1, ColName, " total "))
	assert.Equal(t, "total", d.Var(1).Name())
	assert.NotNil(t, d.Lookup("TOTAL"))

	err := vs.SetString(1, ColName, "A")
	assert.True(t, errs.IsConflict(err))
	assert.Equal(t, "total", d.Var(1).Name())

	assert.Error(t, vs.SetString(1, ColName, "1bad"))
}

func TestVarStoreWidthAndDecimals(t *testing.T) {
	d, vs := newVarStore(t, "x", 0, "s", 4)

	require.NoError(t, vs.SetString(0, ColWidth, "10"))
	require.NoError(t, vs.SetString(0, ColDecimals, "3"))
	assert.Equal(t, format.Spec{Type: format.F, W: 10, D: 3}, d.Var(0).PrintFormat())
	assert.Equal(t, d.Var(0).PrintFormat(), d.Var(0).WriteFormat())

	assert.Error(t, vs.SetString(0, ColDecimals, "10"))
	assert.Error(t, vs.SetString(0, ColDecimals, "-1"))
	assert.Error(t, vs.SetString(0, ColWidth, "41"))
	assert.Error(t, vs.SetString(0, ColWidth, "0"))
	assert.Error(t, vs.SetString(0, ColWidth, "wide"))

	require.NoError(t, vs.SetString(1, ColWidth, "6"))
	assert.Equal(t, 6, d.Var(1).Width())
	assert.Equal(t, 6, d.Proto().Width(d.Var(1).CaseIndex()))
	assert.Equal(t, "A6", d.Var(1).PrintFormat().String())

	assert.False(t, vs.IsEditable(1, ColDecimals))
	assert.True(t, vs.IsEditable(0, ColDecimals))
	assert.Error(t, vs.SetString(1, ColDecimals, "1"))
}

func TestVarStoreNarrowingDecimalsWithWidth(t *testing.T) {
	d, vs := newVarStore(t, "x", 0)
	require.NoError(t, vs.SetString(0, ColDecimals, "6"))
	require.NoError(t, vs.SetString(0, ColWidth, "4"))
	pf := d.Var(0).PrintFormat()
	assert.Equal(t, 4, pf.W)
	assert.LessOrEqual(t, pf.D, format.MaxDecimalsFor(format.F, 4))
}

func TestVarStoreColumnsAndLabel(t *testing.T) {
	d, vs := newVarStore(t, "x", 0)

	require.NoError(t, vs.SetString(0, ColColumns, "12"))
	assert.Equal(t, 12, d.Var(0).DisplayWidth())
	assert.Error(t, vs.SetString(0, ColColumns, "0"))

	require.NoError(t, vs.SetString(0, ColLabel, "Weight"))
	label, ok := d.Var(0).Label()
	assert.True(t, ok)
	assert.Equal(t, "Weight", label)

	require.NoError(t, vs.Clear(0, ColLabel))
	_, ok = d.Var(0).Label()
	assert.False(t, ok)

	assert.True(t, errs.IsType(vs.Clear(0, ColName), errs.ErrorTypeValidation))
	assert.True(t, errs.IsType(vs.SetString(0, ColMeasure, "Ordinal"), errs.ErrorTypeValidation))
}

func TestVarStoreTranslatesEvents(t *testing.T) {
	d, vs := newVarStore(t, "a", 0, "b", 0)
	rec := &recorder{}
	vs.Subscribe(rec)

	_, err := vs.InsertVariable(1)
	require.NoError(t, err)
	require.NoError(t, vs.SetString(0, ColLabel, "first"))
	require.NoError(t, d.SetWidth(2, 3))
	require.NoError(t, vs.DeleteVariables(0, 2))
	require.NoError(t, d.Clear())

	assert.Equal(t, []notify.Kind{
		notify.RowsInserted, notify.CellsChanged, notify.CellsChanged, notify.RowsDeleted, notify.Reset,
	}, rec.kinds())
	assert.Equal(t, notify.Range(1, 1), rec.events[0].Rows)
	assert.Equal(t, notify.ScopeAll, rec.events[0].Cols.Scope)
	assert.Equal(t, notify.Range(0, 1), rec.events[1].Rows)
	assert.Equal(t, 0, rec.events[2].OldWidth)
	assert.Equal(t, notify.Range(0, 2), rec.events[3].Rows)
	assert.Zero(t, vs.RowCount())
}

func TestVarStoreTitles(t *testing.T) {
	_, vs := newVarStore(t, "a", 0)
	assert.Equal(t, "Name", vs.ColumnTitle(ColName))
	assert.Equal(t, "Measure", vs.ColumnTitle(ColMeasure))
	assert.Equal(t, "", vs.ColumnTitle(10))
	assert.Equal(t, "1", vs.RowTitle(0))
	assert.True(t, vs.RowSensitive(0))
	assert.False(t, vs.RowSensitive(1))
	assert.Equal(t, JustifyLeft, vs.ColumnJustification(ColWidth))
}
