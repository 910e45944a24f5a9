package dictionary

import (
	"sort"
	"strconv"
	"strings"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// ValueLabel pairs a value with its label.
type ValueLabel struct {
	Value value.Value
	Label string
}

// ValueLabels maps values of one width to labels.
type ValueLabels struct {
	width int
	m     map[value.Value]string
}

// NewValueLabels returns an empty set for values of the given width.
func NewValueLabels(width int) *ValueLabels {
	return &ValueLabels{width: width, m: make(map[value.Value]string)}
}

// Width returns the width of the labeled values.
func (l *ValueLabels) Width() int { return l.width }

// Len returns the number of labels.
func (l *ValueLabels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.m)
}

// Set labels v, replacing an existing label.
func (l *ValueLabels) Set(v value.Value, label string) error {
	if v.Width() != l.width {
		return errs.Newf(errs.ErrorTypeShape, "value of width %d cannot label a variable of width %d", v.Width(), l.width)
	}
	l.m[v] = label
	return nil
}

// Remove deletes the label of v.
func (l *ValueLabels) Remove(v value.Value) { delete(l.m, v) }

// Lookup returns the label of v.
func (l *ValueLabels) Lookup(v value.Value) (string, bool) {
	if l == nil {
		return "", false
	}
	s, ok := l.m[v]
	return s, ok
}

// Sorted returns the labels in value order.
func (l *ValueLabels) Sorted() []ValueLabel {
	if l == nil {
		return nil
	}
	out := make([]ValueLabel, 0, len(l.m))
	for v, s := range l.m {
		out = append(out, ValueLabel{Value: v, Label: s})
	}
	sort.Slice(out, func(i, j int) bool { return value.Compare(out[i].Value, out[j].Value) < 0 })
	return out
}

// Clone returns an independent copy.
func (l *ValueLabels) Clone() *ValueLabels {
	if l == nil {
		return nil
	}
	c := NewValueLabels(l.width)
	for v, s := range l.m {
		c.m[v] = s
	}
	return c
}

// resized converts the labels to a new width. Labels cannot cross the
// numeric/string boundary, and a string label survives narrowing only when
// the cut-off part is blank; nil is returned when nothing is left.
func (l *ValueLabels) resized(width int) *ValueLabels {
	if l == nil || (width == 0) != (l.width == 0) {
		return nil
	}
	c := NewValueLabels(width)
	for v, s := range l.m {
		if nv, ok := resizeString(v, width); ok {
			c.m[nv] = s
		}
	}
	if c.Len() == 0 {
		return nil
	}
	return c
}

func resizeString(v value.Value, width int) (value.Value, bool) {
	if v.IsNumeric() {
		return v, true
	}
	if width < v.Width() && strings.TrimRight(v.Str()[width:], " ") != "" {
		return value.Value{}, false
	}
	return value.String(v.Str(), width), true
}

// MaxMissingValues is the number of discrete user-missing values a variable
// may have.
const MaxMissingValues = 3

// MissingValues is a variable's user-missing set: up to three
// discrete values, or for numerics one range plus at most one discrete
// value.
type MissingValues struct {
	width    int
	values   []value.Value
	hasRange bool
	lo, hi   float64
}

// NewMissingValues returns an empty set for the given width.
func NewMissingValues(width int) MissingValues {
	return MissingValues{width: width}
}

// Width returns the width of the values.
func (m MissingValues) Width() int { return m.width }

// IsEmpty reports whether nothing is user-missing.
func (m MissingValues) IsEmpty() bool { return len(m.values) == 0 && !m.hasRange }

// Values returns the discrete missing values.
func (m MissingValues) Values() []value.Value {
	return append([]value.Value(nil), m.values...)
}

// Range returns the missing range, if any.
func (m MissingValues) Range() (lo, hi float64, ok bool) {
	return m.lo, m.hi, m.hasRange
}

// Add appends a discrete missing value.
func (m *MissingValues) Add(v value.Value) error {
	if v.Width() != m.width {
		return errs.Newf(errs.ErrorTypeShape, "missing value of width %d for a variable of width %d", v.Width(), m.width)
	}
	limit := MaxMissingValues
	if m.hasRange {
		limit = 1
	}
	if len(m.values) >= limit {
		return errs.New(errs.ErrorTypeValidation, "too many missing values")
	}
	m.values = append(m.values, v)
	return nil
}

// SetRange makes [lo, hi] user-missing. Only numeric variables have ranges.
func (m *MissingValues) SetRange(lo, hi float64) error {
	switch {
	case m.width != 0:
		return errs.New(errs.ErrorTypeValidation, "string variables cannot have a missing range")
	case lo > hi:
		return errs.Newf(errs.ErrorTypeValidation, "missing range %g to %g is empty", lo, hi)
	case len(m.values) > 1:
		return errs.New(errs.ErrorTypeValidation, "a missing range allows only one discrete value")
	}
	m.hasRange, m.lo, m.hi = true, lo, hi
	return nil
}

// Clear removes every missing value.
func (m *MissingValues) Clear() {
	m.values = nil
	m.hasRange = false
}

// IsMissing reports whether v is system-missing or user-missing.
func (m MissingValues) IsMissing(v value.Value) bool {
	if v.IsSysMis() {
		return true
	}
	if m.hasRange && v.IsNumeric() && v.Float() >= m.lo && v.Float() <= m.hi {
		return true
	}
	for _, x := range m.values {
		if x.Equal(v) {
			return true
		}
	}
	return false
}

func (m MissingValues) resized(width int) MissingValues {
	out := NewMissingValues(width)
	if (width == 0) != (m.width == 0) {
		return out
	}
	out.hasRange, out.lo, out.hi = m.hasRange, m.lo, m.hi
	for _, v := range m.values {
		if nv, ok := resizeString(v, width); ok {
			out.values = append(out.values, nv)
		}
	}
	return out
}

// String renders the missing values with text produced by show, for example
// "1, 2" or "5 - 9, 99".
func (m MissingValues) String(show func(value.Value) string) string {
	var parts []string
	if m.hasRange {
		parts = append(parts, show(value.Number(m.lo))+" - "+show(value.Number(m.hi)))
	}
	for _, v := range m.values {
		parts = append(parts, show(v))
	}
	return strings.Join(parts, ", ")
}

func plainText(v value.Value) string {
	if v.IsNumeric() {
		if v.IsSysMis() {
			return "."
		}
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	}
	return strings.TrimRight(v.Str(), " ")
}
