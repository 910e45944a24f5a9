package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ajitpratap0/casesheet/pkg/dictionary"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/notify"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Columns of the variable view.
const (
	ColName = iota
	ColType
	ColWidth
	ColDecimals
	ColLabel
	ColValues
	ColMissing
	ColColumns
	ColAlign
	ColMeasure
	numVarColumns
)

var varColumnTitles = [numVarColumns]string{
	"Name", "Type", "Width", "Decimals", "Label", "Values", "Missing", "Columns", "Align", "Measure",
}

const none = "None"

// VarStore presents the variables of a dictionary, one per row.
type VarStore struct {
	dict *dictionary.Dictionary
	hub  notify.Hub
	sub  *notify.Subscription
}

// NewVarStore returns a variable view of dict. Dictionary column events are
// re-emitted as row events.
func NewVarStore(dict *dictionary.Dictionary) *VarStore {
	vs := &VarStore{dict: dict}
	vs.sub = dict.Subscribe(notify.ObserverFunc(vs.translate))
	return vs
}

func (vs *VarStore) translate(e notify.Event) {
	out := notify.Event{Kind: e.Kind, Rows: e.Cols, Cols: notify.All, CaseIndex: e.CaseIndex, OldWidth: e.OldWidth}
	switch e.Kind {
	case notify.ColumnsInserted:
		out.Kind = notify.RowsInserted
	case notify.ColumnsDeleted:
		out.Kind = notify.RowsDeleted
	case notify.ColumnsChanged, notify.ColumnsResized:
		out.Kind = notify.CellsChanged
	case notify.Reset:
		out.Rows = notify.All
	}
	vs.hub.Emit(out)
}

// Close stops following the dictionary.
func (vs *VarStore) Close() { vs.sub.Cancel() }

// Subscribe registers o for changes, with dictionary column events turned
// into row events.
func (vs *VarStore) Subscribe(o notify.Observer) *notify.Subscription {
	return vs.hub.Subscribe(o)
}

// RowCount returns the number of variables.
func (vs *VarStore) RowCount() int { return vs.dict.VarCount() }

// ColumnCount returns the number of attribute columns.
func (vs *VarStore) ColumnCount() int { return numVarColumns }

func (vs *VarStore) variable(row, col int) (*dictionary.Variable, error) {
	v := vs.dict.Var(row)
	if v == nil {
		return nil, errs.Bounds("variable", row, vs.dict.VarCount())
	}
	if col < 0 || col >= numVarColumns {
		return nil, errs.Bounds("column", col, numVarColumns)
	}
	return v, nil
}

// valueText renders val with v's print format, without padding.
func valueText(v *dictionary.Variable, val value.Value) string {
	return strings.TrimSpace(format.Output(val, v.PrintFormat()))
}

// GetString returns the text of one attribute of the variable at row.
func (vs *VarStore) GetString(row, col int) (string, error) {
	v, err := vs.variable(row, col)
	if err != nil {
		return "", err
	}
	pf := v.PrintFormat()
	switch col {
	case ColName:
		return v.Name(), nil
	case ColType:
		return pf.Type.GUIName(), nil
	case ColWidth:
		return strconv.Itoa(pf.W), nil
	case ColDecimals:
		return strconv.Itoa(pf.D), nil
	case ColLabel:
		label, _ := v.Label()
		return label, nil
	case ColValues:
		labels := v.ValueLabels().Sorted()
		if len(labels) == 0 {
			return none, nil
		}
		return fmt.Sprintf("{%s,`%s'}_", valueText(v, labels[0].Value), labels[0].Label), nil
	case ColMissing:
		mv := v.MissingValues()
		if mv.IsEmpty() {
			return none, nil
		}
		return mv.String(func(x value.Value) string { return valueText(v, x) }), nil
	case ColColumns:
		return strconv.Itoa(v.DisplayWidth()), nil
	case ColAlign:
		return v.Alignment().String(), nil
	default:
		return v.Measure().String(), nil
	}
}

func atoi(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errs.Wrap(err, errs.ErrorTypeValidation, "expected a whole number")
	}
	return n, nil
}

// SetString edits one attribute. Name, Width, Decimals, Columns and Label
// are editable as text; the rest need their dedicated setters.
func (vs *VarStore) SetString(row, col int, text string) error {
	v, err := vs.variable(row, col)
	if err != nil {
		return err
	}
	switch col {
	case ColName:
		return vs.dict.RenameVar(row, strings.TrimSpace(text))
	case ColColumns:
		n, err := atoi(text)
		if err != nil {
			return err
		}
		return vs.dict.SetDisplayWidth(row, n)
	case ColWidth:
		n, err := atoi(text)
		if err != nil {
			return err
		}
		return vs.setWidth(v, n)
	case ColDecimals:
		n, err := atoi(text)
		if err != nil {
			return err
		}
		if !vs.IsEditable(row, col) {
			return errs.Newf(errs.ErrorTypeValidation, "string variable %s has no decimals", v.Name())
		}
		pf := v.PrintFormat()
		if n < 0 || n > format.MaxDecimalsFor(pf.Type, pf.W) {
			return errs.Newf(errs.ErrorTypeValidation, "%s allows 0 to %d decimals",
				pf, format.MaxDecimalsFor(pf.Type, pf.W))
		}
		pf.D = n
		return vs.dict.SetFormats(row, pf, pf)
	case ColLabel:
		return vs.dict.SetLabel(row, text)
	}
	return errs.Newf(errs.ErrorTypeValidation, "%s cannot be edited as text", varColumnTitles[col])
}

// setWidth resizes a string variable, or re-widths a numeric variable's
// formats within the limits of its format type.
func (vs *VarStore) setWidth(v *dictionary.Variable, w int) error {
	if !v.IsNumeric() {
		if w < 1 || w > value.MaxStringWidth {
			return errs.Newf(errs.ErrorTypeValidation, "string width must be between 1 and %d", value.MaxStringWidth)
		}
		return vs.dict.SetWidth(v.Index(), w)
	}
	pf := v.PrintFormat()
	if w < format.MinWidth(pf.Type) || w > format.MaxWidth(pf.Type) {
		return errs.Newf(errs.ErrorTypeValidation, "%s width must be between %d and %d",
			pf.Type, format.MinWidth(pf.Type), format.MaxWidth(pf.Type))
	}
	pf = pf.WithWidth(w)
	return vs.dict.SetFormats(v.Index(), pf, pf)
}

// Clear removes the label; no other attribute can be cleared.
func (vs *VarStore) Clear(row, col int) error {
	if _, err := vs.variable(row, col); err != nil {
		return err
	}
	if col != ColLabel {
		return errs.Newf(errs.ErrorTypeValidation, "%s cannot be cleared", varColumnTitles[col])
	}
	return vs.dict.ClearLabel(row)
}

// IsEditable is false only for the decimals of string variables.
func (vs *VarStore) IsEditable(row, col int) bool {
	v := vs.dict.Var(row)
	if v == nil {
		return true
	}
	return !(col == ColDecimals && !v.IsNumeric())
}

// RowTitle returns the 1-based variable position.
func (vs *VarStore) RowTitle(row int) string { return strconv.Itoa(row + 1) }

// ColumnTitle returns the attribute name of col, or "" out of range.
func (vs *VarStore) ColumnTitle(col int) string {
	if col < 0 || col >= numVarColumns {
		return ""
	}
	return varColumnTitles[col]
}

// RowSensitive reports whether row names a variable.
func (vs *VarStore) RowSensitive(row int) bool { return row >= 0 && row < vs.dict.VarCount() }

// ColumnSensitive reports whether col is an attribute column.
func (vs *VarStore) ColumnSensitive(col int) bool { return col >= 0 && col < numVarColumns }

// ColumnJustification is left for every attribute.
func (vs *VarStore) ColumnJustification(int) Justification { return JustifyLeft }

// InsertVariable inserts a numeric variable with the next free name.
func (vs *VarStore) InsertVariable(pos int) (*dictionary.Variable, error) {
	return vs.dict.InsertVar(pos, vs.dict.NextName(), 0)
}

// DeleteVariables removes n variables starting at row first.
func (vs *VarStore) DeleteVariables(first, n int) error {
	return vs.dict.DeleteVars(first, n)
}
