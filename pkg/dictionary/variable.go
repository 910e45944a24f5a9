package dictionary

import (
	"strings"
	"unicode"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Alignment is the horizontal alignment of a variable's cells.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignRight:
		return "Right"
	case AlignCenter:
		return "Center"
	}
	return "Unknown"
}

// Measure is a variable's level of measurement.
type Measure int

const (
	Nominal Measure = iota
	Ordinal
	Scale
)

func (m Measure) String() string {
	switch m {
	case Nominal:
		return "Nominal"
	case Ordinal:
		return "Ordinal"
	case Scale:
		return "Scale"
	}
	return "Unknown"
}

const (
	// MaxNameLen is the longest variable name in bytes.
	MaxNameLen = 64
	// MaxLabelLen is the longest variable label in bytes.
	MaxLabelLen = 255
	// MaxDisplayWidth bounds the display width of a column.
	MaxDisplayWidth = 255
)

var reservedNames = map[string]bool{
	"ALL": true, "AND": true, "BY": true, "EQ": true, "GE": true, "GT": true, "LE": true,
	"LT": true, "NE": true, "NOT": true, "OR": true, "TO": true, "WITH": true,
}

// ValidName checks that name can name a variable: it starts with a letter
// or one of "@#$", continues with letters, digits or "._$#@", is no longer
// than MaxNameLen and is not a reserved word.
func ValidName(name string) error {
	if name == "" {
		return errs.New(errs.ErrorTypeValidation, "variable name is empty")
	}
	if len(name) > MaxNameLen {
		return errs.Newf(errs.ErrorTypeValidation, "variable name %q is longer than %d bytes", name, MaxNameLen)
	}
	for i, r := range name {
		ok := unicode.IsLetter(r) || strings.ContainsRune("@#$", r)
		if i > 0 {
			ok = ok || unicode.IsDigit(r) || strings.ContainsRune("._", r)
		}
		if !ok {
			return errs.Newf(errs.ErrorTypeValidation, "variable name %q contains %q", name, r)
		}
	}
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, "_") {
		return errs.Newf(errs.ErrorTypeValidation, "variable name %q may not end in %q", name, name[len(name)-1:])
	}
	if reservedNames[strings.ToUpper(name)] {
		return errs.Newf(errs.ErrorTypeValidation, "%q is a reserved word", name)
	}
	return nil
}

// Variable describes one column. Its fields change only through the owning
// Dictionary.
type Variable struct {
	name         string
	width        int
	caseIndex    int
	index        int
	print, write format.Spec
	displayWidth int
	align        Alignment
	measure      Measure
	label        string
	hasLabel     bool
	labels       *ValueLabels
	missing      MissingValues
}

func newVariable(name string, width int) *Variable {
	f := format.Default(width)
	v := &Variable{
		name:    name,
		width:   width,
		print:   f,
		write:   f,
		missing: NewMissingValues(width),
	}
	v.setDefaultDisplay()
	return v
}

func (v *Variable) setDefaultDisplay() {
	if v.width == 0 {
		v.displayWidth, v.align, v.measure = 8, AlignRight, Scale
		return
	}
	v.displayWidth = v.width
	if v.displayWidth > 32 {
		v.displayWidth = 32
	}
	v.align, v.measure = AlignLeft, Nominal
}

// Name returns the variable name as spelled when it was set.
func (v *Variable) Name() string { return v.name }

// Width returns 0 for numeric variables and the string length otherwise.
func (v *Variable) Width() int { return v.width }

// IsNumeric reports whether the variable holds numbers.
func (v *Variable) IsNumeric() bool { return v.width == 0 }

// CaseIndex returns the position of the variable's value within a case.
func (v *Variable) CaseIndex() int { return v.caseIndex }

// PrintFormat returns the format used to display values.
func (v *Variable) PrintFormat() format.Spec { return v.print }

// WriteFormat returns the format used when values are written out.
func (v *Variable) WriteFormat() format.Spec { return v.write }

// DisplayWidth returns the column width in characters.
func (v *Variable) DisplayWidth() int { return v.displayWidth }

// Alignment returns the horizontal alignment of displayed values.
func (v *Variable) Alignment() Alignment { return v.align }

// Measure returns the level of measurement.
func (v *Variable) Measure() Measure { return v.measure }

// Index returns the display position of v in its dictionary.
func (v *Variable) Index() int { return v.index }

// Label returns the variable label and whether one is set.
func (v *Variable) Label() (string, bool) { return v.label, v.hasLabel }

// ValueLabels returns a copy of the value labels, or nil.
func (v *Variable) ValueLabels() *ValueLabels { return v.labels.Clone() }

// HasValueLabels reports whether any value is labeled.
func (v *Variable) HasValueLabels() bool { return v.labels.Len() > 0 }

// LookupValueLabel returns the label of val.
func (v *Variable) LookupValueLabel(val value.Value) (string, bool) {
	return v.labels.Lookup(val)
}

// MissingValues returns the user-missing values.
func (v *Variable) MissingValues() MissingValues {
	m := v.missing
	m.values = m.Values()
	return m
}

// IsMissing reports whether val is system- or user-missing for v.
func (v *Variable) IsMissing(val value.Value) bool { return v.missing.IsMissing(val) }

func (v *Variable) clone() *Variable {
	c := *v
	c.labels = v.labels.Clone()
	c.missing.values = v.missing.Values()
	return &c
}
