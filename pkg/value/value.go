// Package value implements the datum stored in every cell of a case: either
// a double precision number or a fixed width byte string.
//
// Width 0 denotes a numeric value, a width of 1..MaxStringWidth denotes a
// string of exactly that many bytes. Values are immutable; every operation
// that changes a value returns a new one.
package value

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// MaxStringWidth is the widest string value a column may hold.
const MaxStringWidth = 32767

// SysMis is the reserved numeric bit pattern meaning "system missing".
var SysMis = -math.MaxFloat64

// Value is a numeric or string datum. The zero Value is numeric 0.
type Value struct {
	width int
	f     float64
	s     string
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{f: f}
}

// SystemMissing returns the numeric system-missing value.
func SystemMissing() Value {
	return Value{f: SysMis}
}

// String returns a string value of the given width. s is right-padded with
// spaces or truncated to width bytes. A width of 0 returns SystemMissing.
func String(s string, width int) Value {
	if width <= 0 {
		return SystemMissing()
	}
	return Value{width: width, s: pad(s, width)}
}

// Missing returns the blank value for a column of the given width: SYSMIS
// for numerics and all spaces for strings.
func Missing(width int) Value {
	if width == 0 {
		return SystemMissing()
	}
	return Value{width: width, s: strings.Repeat(" ", width)}
}

// ValidWidth reports whether w is an acceptable column width.
func ValidWidth(w int) bool {
	return w >= 0 && w <= MaxStringWidth
}

// Width returns 0 for numbers and the byte length for strings.
func (v Value) Width() int { return v.width }

// IsNumeric reports whether v is a number.
func (v Value) IsNumeric() bool { return v.width == 0 }

// Float returns the numeric content. It is SysMis for string values.
func (v Value) Float() float64 {
	if v.width != 0 {
		return SysMis
	}
	return v.f
}

// Str returns the padded string content, or "" for numbers.
func (v Value) Str() string { return v.s }

// IsSysMis reports whether v is the numeric system-missing value.
func (v Value) IsSysMis() bool {
	return v.width == 0 && v.f == SysMis
}

// IsBlank reports whether v is the missing value of its width.
func (v Value) IsBlank() bool {
	if v.width == 0 {
		return v.f == SysMis
	}
	return strings.TrimRight(v.s, " ") == ""
}

// Equal reports whether v and o have the same width and compare equal.
func (v Value) Equal(o Value) bool {
	return v.width == o.width && Compare(v, o) == 0
}

// Compare orders two values of the same kind. Numbers compare by IEEE order
// with SYSMIS after every ordinary number. Strings compare byte-wise after
// right-padding the shorter operand with spaces. A number sorts before a
// string.
func Compare(a, b Value) int {
	switch {
	case a.width == 0 && b.width == 0:
		return compareNumbers(a.f, b.f)
	case a.width == 0:
		return -1
	case b.width == 0:
		return 1
	}
	as, bs := a.s, b.s
	if len(as) < len(bs) {
		as = pad(as, len(bs))
	} else if len(bs) < len(as) {
		bs = pad(bs, len(as))
	}
	return bytes.Compare([]byte(as), []byte(bs))
}

func compareNumbers(a, b float64) int {
	aMis, bMis := a == SysMis, b == SysMis
	switch {
	case aMis && bMis:
		return 0
	case aMis:
		return 1
	case bMis:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders v for diagnostics.
func (v Value) String() string {
	if v.width != 0 {
		return strconv.Quote(v.s)
	}
	if v.f == SysMis {
		return "SYSMIS"
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
