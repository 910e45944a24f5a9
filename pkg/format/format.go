// Package format describes print and write formats of variables and converts
// between values and their text form.
package format

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Type is a format type.
type Type int

const (
	F Type = iota
	Comma
	Dot
	Dollar
	Pct
	E
	N
	A
)

var typeNames = [...]string{"F", "COMMA", "DOT", "DOLLAR", "PCT", "E", "N", "A"}

var guiNames = [...]string{"Numeric", "Comma", "Dot", "Dollar", "Percent", "Scientific", "Restricted", "String"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// GUIName returns the name shown in the variable view.
func (t Type) GUIName() string {
	if t < 0 || int(t) >= len(guiNames) {
		return t.String()
	}
	return guiNames[t]
}

// IsString reports whether t formats string values.
func (t Type) IsString() bool { return t == A }

// ParseType parses a format type name, case-insensitively.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(s, n) {
			return Type(i), nil
		}
	}
	return 0, errs.Newf(errs.ErrorTypeValidation, "unknown format type %q", s)
}

const (
	// MaxNumericWidth is the widest numeric format.
	MaxNumericWidth = 40
	// MaxDecimals bounds D for every numeric type.
	MaxDecimals = 16
)

// Spec is a format: type, width and decimal places.
type Spec struct {
	Type Type `json:"type"`
	W    int  `json:"width"`
	D    int  `json:"decimals"`
}

// Default returns the default format for a variable of the given width:
// F8.2 for numerics and A<width> for strings.
func Default(width int) Spec {
	if width == 0 {
		return Spec{Type: F, W: 8, D: 2}
	}
	return Spec{Type: A, W: width}
}

// MinWidth returns the narrowest width t accepts.
func MinWidth(t Type) int {
	switch t {
	case Dollar, Pct:
		return 2
	case E:
		return 6
	}
	return 1
}

// MaxWidth returns the widest width t accepts.
func MaxWidth(t Type) int {
	if t == A {
		return value.MaxStringWidth
	}
	return MaxNumericWidth
}

// MaxDecimalsFor returns the most decimal places t allows at width w.
func MaxDecimalsFor(t Type, w int) int {
	var d int
	switch t {
	case A:
		return 0
	case F, Comma, Dot:
		d = w - 1
	case Dollar, Pct:
		d = w - 2
	case E:
		d = w - 7
	case N:
		d = w
	}
	if d < 0 {
		d = 0
	}
	if d > MaxDecimals {
		d = MaxDecimals
	}
	return d
}

// VarWidth returns the value width a variable with this format has.
func (s Spec) VarWidth() int {
	if s.Type == A {
		return s.W
	}
	return 0
}

// Validate checks s on its own terms.
func (s Spec) Validate() error {
	if s.Type < F || s.Type > A {
		return errs.Newf(errs.ErrorTypeValidation, "unknown format type %d", int(s.Type))
	}
	if s.W < MinWidth(s.Type) || s.W > MaxWidth(s.Type) {
		return errs.Newf(errs.ErrorTypeValidation, "format %s: width must be between %d and %d",
			s, MinWidth(s.Type), MaxWidth(s.Type))
	}
	if s.D < 0 || s.D > MaxDecimalsFor(s.Type, s.W) {
		return errs.Newf(errs.ErrorTypeValidation, "format %s: at most %d decimals allowed",
			s, MaxDecimalsFor(s.Type, s.W))
	}
	return nil
}

// CheckWidth reports whether s can format values of the given variable width.
func (s Spec) CheckWidth(width int) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.VarWidth() != width {
		return errs.Newf(errs.ErrorTypeShape, "format %s does not fit a variable of width %d", s, width)
	}
	return nil
}

// WithWidth returns s at width w, clamping D to what w allows.
func (s Spec) WithWidth(w int) Spec {
	s.W = w
	if m := MaxDecimalsFor(s.Type, w); s.D > m {
		s.D = m
	}
	return s
}

func (s Spec) String() string {
	if s.Type == A {
		return fmt.Sprintf("%s%d", s.Type, s.W)
	}
	return fmt.Sprintf("%s%d.%d", s.Type, s.W, s.D)
}

// Parse reads a format such as "F8.2", "COMMA10" or "A16".
func Parse(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return Spec{}, errs.Newf(errs.ErrorTypeValidation, "malformed format %q", text)
	}
	t, err := ParseType(text[:i])
	if err != nil {
		return Spec{}, err
	}
	ws, ds, hasD := strings.Cut(text[i:], ".")
	w, err := strconv.Atoi(ws)
	if err != nil {
		return Spec{}, errs.Wrap(err, errs.ErrorTypeValidation, "malformed format width")
	}
	spec := Spec{Type: t, W: w}
	if hasD {
		if spec.D, err = strconv.Atoi(ds); err != nil {
			return Spec{}, errs.Wrap(err, errs.ErrorTypeValidation, "malformed format decimals")
		}
	}
	return spec, spec.Validate()
}
