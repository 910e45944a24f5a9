package dictionary

import (
	"strings"

	"go.uber.org/zap"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/notify"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// SetWidth changes the value width of the variable at i and resizes its
// store column. Crossing the numeric/string boundary resets the formats and
// drops data, value labels and missing values, none of which survive.
func (d *Dictionary) SetWidth(i, width int) error {
	return d.SetWidthRemap(i, width, nil)
}

// SetWidthRemap is SetWidth with a custom conversion of the stored values.
// A nil remap uses value.Resize.
func (d *Dictionary) SetWidthRemap(i, width int, remap value.RemapFunc) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if err := checkWidth(width); err != nil {
		return err
	}
	v := d.vars[i]
	old := v.width
	if width == old {
		return nil
	}
	if d.filter == v && width != 0 {
		return errs.Newf(errs.ErrorTypeValidation, "filter variable %s must stay numeric", v.name)
	}
	if d.store != nil {
		if err := d.store.ResizeColumn(v.caseIndex, width, remap); err != nil {
			return err
		}
	}

	v.width = width
	if (width == 0) != (old == 0) {
		v.print, v.write = format.Default(width), format.Default(width)
		v.setDefaultDisplay()
	} else if width != 0 {
		v.print.W, v.write.W = width, width
	}
	v.labels = v.labels.resized(width)
	v.missing = v.missing.resized(width)
	d.proto = d.proto.SetWidth(v.caseIndex, width)

	d.log.Debug("variable resized",
		zap.String("name", v.name), zap.Int("from", old), zap.Int("to", width))
	e := notify.ColumnEvent(notify.ColumnsResized, i, 1, v.caseIndex)
	e.OldWidth = old
	d.hub.Emit(e)
	return nil
}

// SetFormats sets the print and write formats of the variable at i. Both
// must fit the variable's width.
func (d *Dictionary) SetFormats(i int, pf, wf format.Spec) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	v := d.vars[i]
	if err := pf.CheckWidth(v.width); err != nil {
		return err
	}
	if err := wf.CheckWidth(v.width); err != nil {
		return err
	}
	v.print, v.write = pf, wf
	d.changed(i)
	return nil
}

// SetLabel sets the variable label. Trailing white space is dropped, the
// label is cut to MaxLabelLen bytes and an empty label clears it.
func (d *Dictionary) SetLabel(i int, label string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	label = strings.TrimRight(label, " \t\r\n")
	if len(label) > MaxLabelLen {
		label = label[:MaxLabelLen]
	}
	v := d.vars[i]
	v.label, v.hasLabel = label, label != ""
	d.changed(i)
	return nil
}

// ClearLabel removes the variable label.
func (d *Dictionary) ClearLabel(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	v := d.vars[i]
	v.label, v.hasLabel = "", false
	d.changed(i)
	return nil
}

// SetValueLabels replaces the value labels. nil removes them.
func (d *Dictionary) SetValueLabels(i int, labels *ValueLabels) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	v := d.vars[i]
	if labels != nil && labels.Width() != v.width {
		return errs.Newf(errs.ErrorTypeShape, "value labels of width %d for variable %s of width %d",
			labels.Width(), v.name, v.width)
	}
	if labels.Len() == 0 {
		labels = nil
	}
	v.labels = labels.Clone()
	d.changed(i)
	return nil
}

// SetMissingValues replaces the user-missing values.
func (d *Dictionary) SetMissingValues(i int, mv MissingValues) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	v := d.vars[i]
	if mv.Width() != v.width {
		return errs.Newf(errs.ErrorTypeShape, "missing values of width %d for variable %s of width %d",
			mv.Width(), v.name, v.width)
	}
	mv.values = mv.Values()
	v.missing = mv
	d.changed(i)
	return nil
}

// SetDisplayWidth sets the number of character columns the variable takes
// on screen.
func (d *Dictionary) SetDisplayWidth(i, w int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if w < 1 || w > MaxDisplayWidth {
		return errs.Newf(errs.ErrorTypeValidation, "display width %d is out of range 1..%d", w, MaxDisplayWidth)
	}
	d.vars[i].displayWidth = w
	d.changed(i)
	return nil
}

// SetAlignment sets the alignment of variable i.
func (d *Dictionary) SetAlignment(i int, a Alignment) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if a < AlignLeft || a > AlignCenter {
		return errs.Newf(errs.ErrorTypeValidation, "unknown alignment %d", int(a))
	}
	d.vars[i].align = a
	d.changed(i)
	return nil
}

// SetMeasure sets the measurement level. String variables cannot be Scale.
func (d *Dictionary) SetMeasure(i int, m Measure) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if m < Nominal || m > Scale {
		return errs.Newf(errs.ErrorTypeValidation, "unknown measure %d", int(m))
	}
	v := d.vars[i]
	if m == Scale && !v.IsNumeric() {
		return errs.Newf(errs.ErrorTypeValidation, "string variable %s cannot have scale measure", v.name)
	}
	v.measure = m
	d.changed(i)
	return nil
}
