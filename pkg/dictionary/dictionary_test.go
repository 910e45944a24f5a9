package dictionary

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/datasheet"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/notify"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

var _ ColumnStore = (*datasheet.Datasheet)(nil)

// fakeStore records column calls and can be told to fail them once ok
// calls have succeeded.
type fakeStore struct {
	proto *cases.Proto
	calls int
	ok    int
	fail  error
}

func (f *fakeStore) failing() bool { return f.fail != nil && f.calls > f.ok }

func (f *fakeStore) Proto() *cases.Proto { return f.proto }

func (f *fakeStore) InsertColumn(_ *value.Value, width, before int) error {
	f.calls++
	if f.failing() {
		return f.fail
	}
	f.proto = f.proto.Insert(before, width)
	return nil
}

func (f *fakeStore) DeleteColumns(first, count int) error {
	f.calls++
	if f.failing() {
		return f.fail
	}
	f.proto = f.proto.Remove(first, count)
	return nil
}

func (f *fakeStore) ResizeColumn(col, width int, _ value.RemapFunc) error {
	f.calls++
	if f.failing() {
		return f.fail
	}
	f.proto = f.proto.SetWidth(col, width)
	return nil
}

func newDict(t *testing.T, vars ...any) *Dictionary {
	t.Helper()
	d := New(zap.NewNop())
	for i := 0; i < len(vars); i += 2 {
		_, err := d.CreateVar(vars[i].(string), vars[i+1].(int))
		require.NoError(t, err)
	}
	return d
}

func bindSheet(t *testing.T, d *Dictionary, rows ...[]value.Value) *datasheet.Datasheet {
	t.Helper()
	s, err := datasheet.New(d.Proto(), datasheet.Options{Logger: zap.NewNop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	cs := make([]*cases.Case, len(rows))
	for i, r := range rows {
		cs[i] = cases.MustFromValues(d.Proto(), r...)
	}
	require.NoError(t, s.InsertRows(0, cs))
	require.NoError(t, d.Bind(s))
	return s
}

func names(d *Dictionary) []string {
	var out []string
	for _, v := range d.Vars() {
		out = append(out, v.Name())
	}
	return out
}

func TestInsertVarTakesNextCaseIndex(t *testing.T) {
	d := newDict(t, "a", 0, "b", 8)
	v, err := d.InsertVar(0, "c", 4)
	require.NoError(t, err)

	assert.Equal(t, "c", v.Name())
	assert.Equal(t, []string{"c", "a", "b"}, names(d))
	assert.Equal(t, 2, v.CaseIndex())
	assert.Equal(t, 0, v.Index())
	assert.Equal(t, 1, d.Lookup("A").Index())
	assert.Equal(t, "[0 8 4]", d.Proto().String())
	assert.Equal(t, format.Spec{Type: format.A, W: 4}, v.PrintFormat())
}

func TestInsertVarFillsStoreWithMissing(t *testing.T) {
	d := newDict(t, "s", 4)
	s := bindSheet(t, d, []value.Value{value.String("ab", 4)}, []value.Value{value.String("cd", 4)})

	_, err := d.InsertVar(0, "n", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Columns())
	assert.True(t, s.Proto().Equal(d.Proto()))
	for r, want := range []string{"ab  ", "cd  "} {
		got, err := s.Value(r, 0)
		require.NoError(t, err)
		assert.Equal(t, want, got.Str())
		got, err = s.Value(r, 1)
		require.NoError(t, err)
		assert.True(t, got.IsSysMis())
	}
}

func TestDeleteVarsRenumbersCaseIndices(t *testing.T) {
	d := newDict(t, "a", 0, "b", 0, "c", 3)
	s := bindSheet(t, d, []value.Value{value.Number(1), value.Number(2), value.String("xyz", 3)})

	require.NoError(t, d.DeleteVars(1, 1))
	assert.Equal(t, []string{"a", "c"}, names(d))
	assert.Equal(t, 1, d.Lookup("c").CaseIndex())
	assert.Equal(t, 1, d.Lookup("c").Index())
	assert.Nil(t, d.Lookup("b"))
	assert.True(t, s.Proto().Equal(d.Proto()))

	got, err := s.Value(0, d.Lookup("c").CaseIndex())
	require.NoError(t, err)
	assert.Equal(t, "xyz", got.Str())
}

func TestDeleteVarsWithScatteredCaseIndices(t *testing.T) {
	d := newDict(t, "a", 0, "b", 0, "c", 0, "d", 0)
	s := bindSheet(t, d, []value.Value{value.Number(0), value.Number(1), value.Number(2), value.Number(3)})
	// Display order d, a, b, c; case indices 3, 0, 1, 2.
	require.NoError(t, d.MoveVar(3, 0))
	require.NoError(t, d.DeleteVars(0, 2))

	assert.Equal(t, []string{"b", "c"}, names(d))
	assert.True(t, s.Proto().Equal(d.Proto()))
	for _, v := range d.Vars() {
		got, err := s.Value(0, v.CaseIndex())
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"b": 1, "c": 2}[v.Name()], got.Float())
	}
}

func TestDeleteVarsSendsAdjacentColumnsAsOneCall(t *testing.T) {
	d := newDict(t, "a", 0, "b", 0, "c", 0, "d", 0)
	store := &fakeStore{proto: d.Proto(), ok: 1, fail: errs.New(errs.ErrorTypeIO, "boom")}
	require.NoError(t, d.Bind(store))

	require.NoError(t, d.DeleteVars(0, 3))
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, []string{"d"}, names(d))
	assert.Zero(t, d.Lookup("d").CaseIndex())
	assert.True(t, store.proto.Equal(d.Proto()))
}

func TestDeleteVarsBlockFailureChangesNothing(t *testing.T) {
	d := newDict(t, "a", 0, "b", 0, "c", 0)
	store := &fakeStore{proto: d.Proto(), fail: errs.New(errs.ErrorTypeIO, "boom")}
	require.NoError(t, d.Bind(store))

	assert.True(t, errs.IsIO(d.DeleteVars(0, 3)))
	assert.Equal(t, []string{"a", "b", "c"}, names(d))
	assert.Equal(t, "[0 0 0]", d.Proto().String())
}

func TestRenameConflictIsRejected(t *testing.T) {
	d := New(zap.NewNop())
	_, err := d.CreateVar("age", 0)
	require.NoError(t, err)
	_, err = d.CreateVar("name", 8)
	require.NoError(t, err)
	store := &fakeStore{proto: d.Proto()}
	require.NoError(t, d.Bind(store))

	var events []notify.Event
	d.Subscribe(notify.ObserverFunc(func(e notify.Event) { events = append(events, e) }))

	err = d.RenameVar(1, "AGE")
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
	assert.Equal(t, []string{"age", "name"}, names(d))
	assert.Same(t, d.Var(1), d.Lookup("name"))
	assert.Zero(t, store.calls)
	assert.Empty(t, events)

	require.NoError(t, d.RenameVar(0, "Age"))
	assert.Equal(t, "Age", d.Var(0).Name())
	require.NoError(t, d.RenameVar(1, "surname"))
	assert.Nil(t, d.Lookup("name"))
	assert.Len(t, events, 2)
	assert.Zero(t, store.calls)
}

func TestInvalidNames(t *testing.T) {
	d := newDict(t, "x", 0)
	for _, name := range []string{"", "1abc", "a b", "with", "x_", "a-b", string(make([]byte, MaxNameLen+1))} {
		_, err := d.CreateVar(name, 0)
		assert.Error(t, err, "%q", name)
	}
	for _, name := range []string{"x1", "@tmp", "$sys", "a.b", "Zähler"} {
		assert.NoError(t, ValidName(name), name)
	}
}

func TestStoreFailureLeavesDictionaryUnchanged(t *testing.T) {
	d := newDict(t, "a", 0, "b", 5)
	store := &fakeStore{proto: d.Proto(), fail: errs.New(errs.ErrorTypeIO, "boom")}
	require.NoError(t, d.Bind(store))

	_, err := d.CreateVar("c", 0)
	assert.True(t, errs.IsIO(err))
	assert.Nil(t, d.Lookup("c"))
	assert.Equal(t, 2, d.VarCount())

	assert.True(t, errs.IsIO(d.DeleteVars(0, 1)))
	assert.Equal(t, []string{"a", "b"}, names(d))

	assert.True(t, errs.IsIO(d.SetWidth(1, 9)))
	assert.Equal(t, 5, d.Var(1).Width())
	assert.Equal(t, "[0 5]", d.Proto().String())
}

func TestValidationHappensBeforeStore(t *testing.T) {
	d := newDict(t, "a", 0)
	store := &fakeStore{proto: d.Proto()}
	require.NoError(t, d.Bind(store))

	_, err := d.InsertVar(5, "b", 0)
	assert.True(t, errs.IsBounds(err))
	_, err = d.CreateVar("b", value.MaxStringWidth+1)
	assert.Error(t, err)
	assert.True(t, errs.IsBounds(d.DeleteVars(0, 2)))
	assert.True(t, errs.IsBounds(d.SetWidth(3, 1)))
	assert.Zero(t, store.calls)
}

func TestBindChecksShape(t *testing.T) {
	d := newDict(t, "a", 0)
	err := d.Bind(&fakeStore{proto: cases.NewProto(0, 4)})
	assert.True(t, errs.IsShape(err))
	assert.False(t, d.Bound())
	require.NoError(t, d.Bind(&fakeStore{proto: cases.NewProto(0)}))
	assert.True(t, d.Bound())
	d.Unbind()
	assert.False(t, d.Bound())
}

func TestSetWidthResizesStore(t *testing.T) {
	d := newDict(t, "s", 3, "n", 0)
	s := bindSheet(t, d, []value.Value{value.String("abc", 3), value.Number(7)})

	vl := NewValueLabels(3)
	require.NoError(t, vl.Set(value.String("abc", 3), "first"))
	require.NoError(t, d.SetValueLabels(0, vl))

	var events []notify.Event
	d.Subscribe(notify.ObserverFunc(func(e notify.Event) { events = append(events, e) }))

	require.NoError(t, d.SetWidth(0, 5))
	got, err := s.Value(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc  ", got.Str())
	assert.Equal(t, 5, d.Var(0).PrintFormat().W)
	label, ok := d.Var(0).LookupValueLabel(value.String("abc", 5))
	assert.True(t, ok)
	assert.Equal(t, "first", label)
	require.Len(t, events, 1)
	assert.Equal(t, notify.ColumnsResized, events[0].Kind)
	assert.Equal(t, 3, events[0].OldWidth)

	// Numeric to string and back loses the number.
	require.NoError(t, d.SetWidth(1, 4))
	require.NoError(t, d.SetWidth(1, 0))
	got, err = s.Value(0, 1)
	require.NoError(t, err)
	assert.True(t, got.IsSysMis())
	assert.Equal(t, format.Default(0), d.Var(1).PrintFormat())
	assert.True(t, s.Proto().Equal(d.Proto()))
}

func TestFormatsAndDisplay(t *testing.T) {
	d := newDict(t, "n", 0, "s", 4)

	require.NoError(t, d.SetFormats(0, format.Spec{Type: format.Comma, W: 10, D: 1}, format.Spec{Type: format.F, W: 10, D: 1}))
	assert.Equal(t, "COMMA10.1", d.Var(0).PrintFormat().String())
	assert.True(t, errs.IsShape(d.SetFormats(0, format.Spec{Type: format.A, W: 4}, format.Default(0))))
	assert.True(t, errs.IsShape(d.SetFormats(1, format.Spec{Type: format.A, W: 5}, format.Spec{Type: format.A, W: 5})))

	require.NoError(t, d.SetDisplayWidth(1, 12))
	assert.Equal(t, 12, d.Var(1).DisplayWidth())
	assert.Error(t, d.SetDisplayWidth(1, 0))

	require.NoError(t, d.SetAlignment(1, AlignCenter))
	assert.Equal(t, AlignCenter, d.Var(1).Alignment())
	assert.Error(t, d.SetAlignment(1, Alignment(9)))

	assert.Error(t, d.SetMeasure(1, Scale))
	require.NoError(t, d.SetMeasure(1, Ordinal))
	require.NoError(t, d.SetMeasure(0, Nominal))

	require.NoError(t, d.SetLabel(0, "Income  \n"))
	label, ok := d.Var(0).Label()
	assert.True(t, ok)
	assert.Equal(t, "Income", label)
	require.NoError(t, d.ClearLabel(0))
	_, ok = d.Var(0).Label()
	assert.False(t, ok)
}

func TestMissingValues(t *testing.T) {
	mv := NewMissingValues(0)
	require.NoError(t, mv.Add(value.Number(9)))
	require.NoError(t, mv.SetRange(90, 99))
	assert.Error(t, mv.Add(value.Number(8)), "range leaves room for one value")
	assert.True(t, mv.IsMissing(value.Number(95)))
	assert.True(t, mv.IsMissing(value.Number(9)))
	assert.True(t, mv.IsMissing(value.SystemMissing()))
	assert.False(t, mv.IsMissing(value.Number(10)))
	assert.Equal(t, "90 - 99, 9", mv.String(plainText))

	smv := NewMissingValues(2)
	assert.Error(t, smv.SetRange(1, 2))
	assert.True(t, errs.IsShape(smv.Add(value.Number(1))))
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, smv.Add(value.String(s, 2)))
	}
	assert.Error(t, smv.Add(value.String("d", 2)))

	d := newDict(t, "s", 2)
	require.NoError(t, d.SetMissingValues(0, smv))
	assert.True(t, d.Var(0).IsMissing(value.String("b", 2)))
	assert.True(t, errs.IsShape(d.SetMissingValues(0, mv)))

	require.NoError(t, d.SetWidth(0, 1))
	assert.Len(t, d.Var(0).MissingValues().Values(), 3)
	require.NoError(t, d.SetWidth(0, 0))
	assert.True(t, d.Var(0).MissingValues().IsEmpty())
}

func TestFilter(t *testing.T) {
	d := newDict(t, "f", 0, "s", 3)
	assert.Error(t, d.SetFilter(1))
	require.NoError(t, d.SetFilter(0))
	assert.Same(t, d.Var(0), d.Filter())
	assert.Error(t, d.SetWidth(0, 2))

	require.NoError(t, d.DeleteVars(0, 1))
	assert.Nil(t, d.Filter())
}

func TestEvents(t *testing.T) {
	d := newDict(t, "a", 0)
	var events []notify.Event
	d.Subscribe(notify.ObserverFunc(func(e notify.Event) { events = append(events, e) }))

	_, err := d.InsertVar(0, "b", 0)
	require.NoError(t, err)
	require.NoError(t, d.MoveVar(0, 1))
	require.NoError(t, d.DeleteVars(0, 2))

	require.Len(t, events, 3)
	assert.Equal(t, notify.ColumnsInserted, events[0].Kind)
	assert.Equal(t, notify.Range(0, 1), events[0].Cols)
	assert.Equal(t, notify.All, events[0].Rows)
	assert.Equal(t, 1, events[0].CaseIndex)
	assert.Equal(t, notify.ColumnsChanged, events[1].Kind)
	assert.Equal(t, notify.Range(0, 2), events[1].Cols)
	assert.Equal(t, notify.ColumnsDeleted, events[2].Kind)
	assert.Equal(t, notify.Range(0, 2), events[2].Cols)
}

func TestCloneProjectsCases(t *testing.T) {
	d := newDict(t, "a", 0, "b", 3, "c", 0)
	require.NoError(t, d.MoveVar(2, 0)) // c, a, b

	sub, m, err := d.Clone(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, names(sub))
	assert.Equal(t, "[0 0]", sub.Proto().String())
	assert.Equal(t, 0, sub.Lookup("c").CaseIndex())
	assert.False(t, sub.Bound())

	src := cases.MustFromValues(d.Proto(), value.Number(1), value.String("xyz", 3), value.Number(3))
	out := m.Execute(src)
	assert.Equal(t, 3.0, out.Value(0).Float())
	assert.Equal(t, 1.0, out.Value(1).Float())

	// The clone is independent of its source.
	require.NoError(t, sub.RenameVar(0, "z"))
	assert.NotNil(t, d.Lookup("c"))

	_, _, err = d.Clone(2, 3)
	assert.True(t, errs.IsBounds(err))
}

func TestNextName(t *testing.T) {
	d := New(zap.NewNop())
	assert.Equal(t, "VAR00001", d.NextName())
	_, err := d.CreateVar(d.NextName(), 0)
	require.NoError(t, err)
	_, err = d.CreateVar("VAR00003", 0)
	require.NoError(t, err)
	assert.Equal(t, "VAR00004", d.NextName())
	require.NoError(t, d.DeleteVars(1, 1))
	assert.Equal(t, "VAR00002", d.NextName())
}

func TestClear(t *testing.T) {
	d := newDict(t, "a", 0, "b", 2)
	s := bindSheet(t, d, []value.Value{value.Number(1), value.String("x", 2)})
	require.NoError(t, d.Clear())
	assert.Zero(t, d.VarCount())
	assert.Zero(t, s.Columns())
	assert.Equal(t, 1, s.Rows())
	_, err := d.CreateVar("a", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Columns())
}

func TestMarshalJSON(t *testing.T) {
	d := newDict(t, "age", 0, "name", 8)
	vl := NewValueLabels(0)
	require.NoError(t, vl.Set(value.Number(1), "one"))
	require.NoError(t, d.SetValueLabels(0, vl))
	require.NoError(t, d.SetFilter(0))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var out struct {
		Variables []struct {
			Name        string `json:"name"`
			Print       string `json:"print_format"`
			ValueLabels []struct {
				Value float64 `json:"value"`
				Label string  `json:"label"`
			} `json:"value_labels"`
		} `json:"variables"`
		Filter string `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Variables, 2)
	assert.Equal(t, "age", out.Variables[0].Name)
	assert.Equal(t, "F8.2", out.Variables[0].Print)
	assert.Equal(t, "A8", out.Variables[1].Print)
	require.Len(t, out.Variables[0].ValueLabels, 1)
	assert.Equal(t, "one", out.Variables[0].ValueLabels[0].Label)
	assert.Equal(t, "age", out.Filter)
}

func TestValueLabelsSorted(t *testing.T) {
	vl := NewValueLabels(0)
	require.NoError(t, vl.Set(value.Number(3), "c"))
	require.NoError(t, vl.Set(value.Number(1), "a"))
	require.NoError(t, vl.Set(value.Number(2), "b"))
	assert.True(t, errs.IsShape(vl.Set(value.String("x", 1), "x")))

	var got []string
	for _, l := range vl.Sorted() {
		got = append(got, l.Label)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	vl.Remove(value.Number(2))
	assert.Equal(t, 2, vl.Len())
	_, ok := vl.Lookup(value.Number(2))
	assert.False(t, ok)
}
